package server

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/anicoll/ev-reimbursement/internal/pkg/model"
	"github.com/anicoll/ev-reimbursement/internal/pkg/pricing"
	"github.com/anicoll/ev-reimbursement/internal/pkg/reimbursement"
)

type mockService struct {
	loc                *time.Location
	EmployeeFunc       func(ctx context.Context, id uuid.UUID) (model.Employee, error)
	ImportSessionsFunc func(ctx context.Context, employeeID uuid.UUID, sessions []model.ChargingSession) (int, error)
	CalculateFunc      func(ctx context.Context, employeeID uuid.UUID, month model.Month) (pricing.MonthlyReport, error)
	ReimburseFunc      func(ctx context.Context, employeeID uuid.UUID, month model.Month) (pricing.MonthlyReport, model.Reimbursement, error)
	QuoteFunc          func(ctx context.Context, req reimbursement.QuoteRequest) (reimbursement.Quote, error)
	SpotPricesFunc     func(ctx context.Context, area model.PriceArea, from, to model.Date) (model.SpotPrices, error)
}

func (m *mockService) Location() *time.Location {
	return m.loc
}

func (m *mockService) Employee(ctx context.Context, id uuid.UUID) (model.Employee, error) {
	return m.EmployeeFunc(ctx, id)
}

func (m *mockService) ImportSessions(ctx context.Context, employeeID uuid.UUID, sessions []model.ChargingSession) (int, error) {
	return m.ImportSessionsFunc(ctx, employeeID, sessions)
}

func (m *mockService) Calculate(ctx context.Context, employeeID uuid.UUID, month model.Month) (pricing.MonthlyReport, error) {
	return m.CalculateFunc(ctx, employeeID, month)
}

func (m *mockService) Reimburse(ctx context.Context, employeeID uuid.UUID, month model.Month) (pricing.MonthlyReport, model.Reimbursement, error) {
	return m.ReimburseFunc(ctx, employeeID, month)
}

func (m *mockService) Quote(ctx context.Context, req reimbursement.QuoteRequest) (reimbursement.Quote, error) {
	return m.QuoteFunc(ctx, req)
}

func (m *mockService) SpotPrices(ctx context.Context, area model.PriceArea, from, to model.Date) (model.SpotPrices, error) {
	return m.SpotPricesFunc(ctx, area, from, to)
}

type mockStore struct {
	PingFunc                func(ctx context.Context) error
	UpsertEmployeeFunc      func(ctx context.Context, e model.Employee) error
	GetTariffProfilesFunc   func(ctx context.Context, organizationID uuid.UUID) (model.TariffProfiles, error)
	UpsertTariffProfileFunc func(ctx context.Context, profile model.TariffProfile) error
	GetReimbursementFunc    func(ctx context.Context, employeeID uuid.UUID, month model.Month) (model.Reimbursement, error)
}

func (m *mockStore) Ping(ctx context.Context) error {
	if m.PingFunc == nil {
		return nil
	}
	return m.PingFunc(ctx)
}

func (m *mockStore) UpsertEmployee(ctx context.Context, e model.Employee) error {
	return m.UpsertEmployeeFunc(ctx, e)
}

func (m *mockStore) GetTariffProfiles(ctx context.Context, organizationID uuid.UUID) (model.TariffProfiles, error) {
	return m.GetTariffProfilesFunc(ctx, organizationID)
}

func (m *mockStore) UpsertTariffProfile(ctx context.Context, profile model.TariffProfile) error {
	return m.UpsertTariffProfileFunc(ctx, profile)
}

func (m *mockStore) GetReimbursement(ctx context.Context, employeeID uuid.UUID, month model.Month) (model.Reimbursement, error) {
	return m.GetReimbursementFunc(ctx, employeeID, month)
}
