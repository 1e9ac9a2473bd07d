package reimbursement

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/anicoll/ev-reimbursement/internal/pkg/model"
)

type mockStore struct {
	GetEmployeeFunc       func(ctx context.Context, id uuid.UUID) (model.Employee, error)
	GetTariffProfilesFunc func(ctx context.Context, organizationID uuid.UUID) (model.TariffProfiles, error)
	GetSessionsFunc       func(ctx context.Context, employeeID uuid.UUID, from, to time.Time) (model.ChargingSessions, error)
	WriteSessionsFunc     func(ctx context.Context, sessions []model.ChargingSession) (int, error)
	GetSpotPricesFunc     func(ctx context.Context, area model.PriceArea, from, to time.Time) (model.SpotPrices, error)
	WriteSpotPricesFunc   func(ctx context.Context, prices model.SpotPrices) error
}

func (m *mockStore) GetEmployee(ctx context.Context, id uuid.UUID) (model.Employee, error) {
	return m.GetEmployeeFunc(ctx, id)
}

func (m *mockStore) GetTariffProfiles(ctx context.Context, organizationID uuid.UUID) (model.TariffProfiles, error) {
	if m.GetTariffProfilesFunc == nil {
		return nil, nil
	}
	return m.GetTariffProfilesFunc(ctx, organizationID)
}

func (m *mockStore) GetSessions(ctx context.Context, employeeID uuid.UUID, from, to time.Time) (model.ChargingSessions, error) {
	if m.GetSessionsFunc == nil {
		return nil, nil
	}
	return m.GetSessionsFunc(ctx, employeeID, from, to)
}

func (m *mockStore) WriteSessions(ctx context.Context, sessions []model.ChargingSession) (int, error) {
	return m.WriteSessionsFunc(ctx, sessions)
}

func (m *mockStore) GetSpotPrices(ctx context.Context, area model.PriceArea, from, to time.Time) (model.SpotPrices, error) {
	if m.GetSpotPricesFunc == nil {
		return nil, nil
	}
	return m.GetSpotPricesFunc(ctx, area, from, to)
}

func (m *mockStore) WriteSpotPrices(ctx context.Context, prices model.SpotPrices) error {
	if m.WriteSpotPricesFunc == nil {
		return nil
	}
	return m.WriteSpotPricesFunc(ctx, prices)
}

type mockPriceSource struct {
	GetPricesFunc func(ctx context.Context, area model.PriceArea, date model.Date) (model.SpotPrices, error)
	calls         []model.Date
}

func (m *mockPriceSource) GetPrices(ctx context.Context, area model.PriceArea, date model.Date) (model.SpotPrices, error) {
	m.calls = append(m.calls, date)
	return m.GetPricesFunc(ctx, area, date)
}

type mockPublisher struct {
	PublishFunc func(ctx context.Context, r model.Reimbursement) error
	published   []model.Reimbursement
	registered  []model.Employee
}

func (m *mockPublisher) Publish(ctx context.Context, r model.Reimbursement) error {
	m.published = append(m.published, r)
	if m.PublishFunc != nil {
		return m.PublishFunc(ctx, r)
	}
	return nil
}

func (m *mockPublisher) RegisterEmployee(employee model.Employee) error {
	m.registered = append(m.registered, employee)
	return nil
}
