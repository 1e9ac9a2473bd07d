package cmd

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/anicoll/ev-reimbursement/internal/pkg/model"
	"github.com/anicoll/ev-reimbursement/internal/pkg/pricing"
	"github.com/anicoll/ev-reimbursement/internal/pkg/reimbursement"
)

// ReimbursementService defines what run expects from the reimbursement service.
type ReimbursementService interface {
	Location() *time.Location
	Employee(ctx context.Context, id uuid.UUID) (model.Employee, error)
	ImportSessions(ctx context.Context, employeeID uuid.UUID, sessions []model.ChargingSession) (int, error)
	Calculate(ctx context.Context, employeeID uuid.UUID, month model.Month) (pricing.MonthlyReport, error)
	Reimburse(ctx context.Context, employeeID uuid.UUID, month model.Month) (pricing.MonthlyReport, model.Reimbursement, error)
	Quote(ctx context.Context, req reimbursement.QuoteRequest) (reimbursement.Quote, error)
	SpotPrices(ctx context.Context, area model.PriceArea, from, to model.Date) (model.SpotPrices, error)
	// FetchDay stores the day's spot prices for every area.
	FetchDay(ctx context.Context, areas []model.PriceArea, date model.Date) error
}

// Store defines the database operations used by the HTTP server and cron jobs.
type Store interface {
	Ping(ctx context.Context) error
	UpsertEmployee(ctx context.Context, e model.Employee) error
	GetTariffProfiles(ctx context.Context, organizationID uuid.UUID) (model.TariffProfiles, error)
	UpsertTariffProfile(ctx context.Context, profile model.TariffProfile) error
	GetReimbursement(ctx context.Context, employeeID uuid.UUID, month model.Month) (model.Reimbursement, error)
	Cleanup(ctx context.Context, retentionDays int) error
}

type priceSource interface {
	GetPricesRange(ctx context.Context, area model.PriceArea, from, to model.Date) (model.SpotPrices, error)
}
