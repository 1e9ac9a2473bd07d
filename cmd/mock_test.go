package cmd

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/anicoll/ev-reimbursement/internal/pkg/model"
	"github.com/anicoll/ev-reimbursement/internal/pkg/pricing"
	"github.com/anicoll/ev-reimbursement/internal/pkg/reimbursement"
)

// MockReimbursementService only implements what run and the scheduler touch directly.
type MockReimbursementService struct {
	loc          *time.Location
	FetchDayFunc func(ctx context.Context, areas []model.PriceArea, date model.Date) error
}

func (m *MockReimbursementService) Location() *time.Location {
	return m.loc
}

func (m *MockReimbursementService) Employee(context.Context, uuid.UUID) (model.Employee, error) {
	return model.Employee{}, nil
}

func (m *MockReimbursementService) ImportSessions(context.Context, uuid.UUID, []model.ChargingSession) (int, error) {
	return 0, nil
}

func (m *MockReimbursementService) Calculate(context.Context, uuid.UUID, model.Month) (pricing.MonthlyReport, error) {
	return pricing.MonthlyReport{}, nil
}

func (m *MockReimbursementService) Reimburse(context.Context, uuid.UUID, model.Month) (pricing.MonthlyReport, model.Reimbursement, error) {
	return pricing.MonthlyReport{}, model.Reimbursement{}, nil
}

func (m *MockReimbursementService) Quote(context.Context, reimbursement.QuoteRequest) (reimbursement.Quote, error) {
	return reimbursement.Quote{}, nil
}

func (m *MockReimbursementService) SpotPrices(context.Context, model.PriceArea, model.Date, model.Date) (model.SpotPrices, error) {
	return nil, nil
}

func (m *MockReimbursementService) FetchDay(ctx context.Context, areas []model.PriceArea, date model.Date) error {
	if m.FetchDayFunc == nil {
		return nil
	}
	return m.FetchDayFunc(ctx, areas, date)
}

type MockStore struct {
	CleanupFunc func(ctx context.Context, retentionDays int) error
}

func (m *MockStore) Ping(context.Context) error {
	return nil
}

func (m *MockStore) UpsertEmployee(context.Context, model.Employee) error {
	return nil
}

func (m *MockStore) GetTariffProfiles(context.Context, uuid.UUID) (model.TariffProfiles, error) {
	return nil, nil
}

func (m *MockStore) UpsertTariffProfile(context.Context, model.TariffProfile) error {
	return nil
}

func (m *MockStore) GetReimbursement(context.Context, uuid.UUID, model.Month) (model.Reimbursement, error) {
	return model.Reimbursement{}, nil
}

func (m *MockStore) Cleanup(ctx context.Context, retentionDays int) error {
	if m.CleanupFunc == nil {
		return nil
	}
	return m.CleanupFunc(ctx, retentionDays)
}

type mockPriceSource struct {
	GetPricesRangeFunc func(ctx context.Context, area model.PriceArea, from, to model.Date) (model.SpotPrices, error)
}

func (m *mockPriceSource) GetPricesRange(ctx context.Context, area model.PriceArea, from, to model.Date) (model.SpotPrices, error) {
	return m.GetPricesRangeFunc(ctx, area, from, to)
}
