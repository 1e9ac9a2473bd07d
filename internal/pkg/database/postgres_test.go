//go:build integration

package database

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/anicoll/ev-reimbursement/internal/pkg/database/migration"
	"github.com/anicoll/ev-reimbursement/internal/pkg/model"
	"github.com/anicoll/ev-reimbursement/internal/pkg/tou"
)

func newTestDatabase(t *testing.T) *Database {
	t.Helper()
	ctx := context.Background()

	ctr, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("reimbursement"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		postgres.BasicWaitStrategies(),
	)
	testcontainers.CleanupContainer(t, ctr)
	require.NoError(t, err)

	dsn, err := ctr.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	folder, err := filepath.Abs("../../../migrations")
	require.NoError(t, err)
	require.NoError(t, migration.Migrate(dsn, folder))
	// Applying twice is a no-op.
	require.NoError(t, migration.Migrate(dsn, folder))

	db, err := NewDatabase(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestDatabase_RoundTrip(t *testing.T) {
	db := newTestDatabase(t)
	ctx := context.Background()
	loc, err := time.LoadLocation("Europe/Oslo")
	require.NoError(t, err)

	employee := model.Employee{
		ID:             uuid.New(),
		OrganizationID: uuid.New(),
		Name:           "Ola Nordmann",
		PriceArea:      model.NO1,
		Policy:         model.SpotWithSubsidyPolicy(),
	}
	require.NoError(t, db.UpsertEmployee(ctx, employee))

	got, err := db.GetEmployee(ctx, employee.ID)
	require.NoError(t, err)
	assert.Equal(t, employee, got)

	_, err = db.GetEmployee(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)

	t.Run("tariff profiles", func(t *testing.T) {
		from := model.NewDate(2024, time.January, 1)
		to := model.NewDate(2024, time.December, 31)
		timeRate := 5.0
		profile := model.TariffProfile{
			ID:             uuid.New(),
			OrganizationID: employee.OrganizationID,
			Name:           "Elvia 2024",
			EffectiveFrom:  &from,
			EffectiveTo:    &to,
			Holidays:       []model.Date{model.NewDate(2024, time.May, 17)},
			Windows: []model.TariffWindow{
				{DayOfWeek: model.Monday, Start: model.MustParseClockTime("06:00"), End: model.MustParseClockTime("22:00"), EnergyRateOre: 40, TimeRateOre: &timeRate},
				{DayOfWeek: model.Monday, Start: model.MustParseClockTime("22:00"), End: model.MustParseClockTime("06:00"), EnergyRateOre: 20},
			},
		}
		require.NoError(t, db.UpsertTariffProfile(ctx, profile))

		profiles, err := db.GetTariffProfiles(ctx, employee.OrganizationID)
		require.NoError(t, err)
		require.Len(t, profiles, 1)
		assert.Equal(t, profile, profiles[0])

		overlapping := profile
		overlapping.ID = uuid.New()
		overlapping.Name = "duplicate"
		assert.ErrorIs(t, db.UpsertTariffProfile(ctx, overlapping), tou.ErrOverlappingProfiles)

		// Updating the same profile replaces its windows.
		profile.Windows = profile.Windows[:1]
		require.NoError(t, db.UpsertTariffProfile(ctx, profile))
		profiles, err = db.GetTariffProfiles(ctx, employee.OrganizationID)
		require.NoError(t, err)
		require.Len(t, profiles, 1)
		assert.Len(t, profiles[0].Windows, 1)
	})

	t.Run("sessions", func(t *testing.T) {
		s, err := model.NewChargingSession("TAG-1", time.Date(2024, 3, 1, 22, 0, 0, 0, loc), time.Date(2024, 3, 2, 1, 0, 0, 0, loc), 11)
		require.NoError(t, err)
		s.EmployeeID = employee.ID

		n, err := db.WriteSessions(ctx, []model.ChargingSession{s})
		require.NoError(t, err)
		assert.Equal(t, 1, n)

		dup := s
		dup.ID = uuid.New()
		n, err = db.WriteSessions(ctx, []model.ChargingSession{dup})
		require.NoError(t, err)
		assert.Zero(t, n)

		from, to := model.Month{Year: 2024, Month: time.March}.Range(loc)
		sessions, err := db.GetSessions(ctx, employee.ID, from, to)
		require.NoError(t, err)
		require.Len(t, sessions, 1)
		assert.Equal(t, s.ID, sessions[0].ID)
		assert.True(t, s.Start.Equal(sessions[0].Start))
	})

	t.Run("spot prices", func(t *testing.T) {
		hour := time.Date(2024, 3, 1, 22, 0, 0, 0, loc)
		prices := model.SpotPrices{
			{Area: model.NO1, HourStart: hour, NokPerKwh: 0.9, FetchedAt: time.Now()},
			{Area: model.NO1, HourStart: hour.Add(time.Hour), NokPerKwh: 1.1, FetchedAt: time.Now()},
		}
		require.NoError(t, db.WriteSpotPrices(ctx, prices))
		prices[0].NokPerKwh = 0.95
		require.NoError(t, db.WriteSpotPrices(ctx, prices[:1]))

		got, err := db.GetSpotPrices(ctx, model.NO1, hour, hour.Add(2*time.Hour))
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.InDelta(t, 0.95, got[0].NokPerKwh, 1e-9)

		require.NoError(t, db.Cleanup(ctx, 1))
		got, err = db.GetSpotPrices(ctx, model.NO1, hour, hour.Add(2*time.Hour))
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("reimbursements", func(t *testing.T) {
		month := model.Month{Year: 2024, Month: time.March}
		r := model.Reimbursement{
			ID:             model.ReimbursementID(employee.ID, month),
			EmployeeID:     employee.ID,
			OrganizationID: employee.OrganizationID,
			Month:          month,
			PriceBreakdown: model.PriceBreakdown{Kwh: 11, EnergyNok: 8, GridNok: 3, TotalNok: 11, PriceArea: model.NO1, Policy: model.PolicySpotWithSubsidy},
			SessionCount:   1,
			CalculatedAt:   time.Now().UTC().Truncate(time.Microsecond),
		}
		require.NoError(t, db.WriteReimbursement(ctx, r))
		r2 := r
		r2.TotalNok = 12
		require.NoError(t, db.WriteReimbursement(ctx, r2))

		got, err := db.GetReimbursement(ctx, employee.ID, month)
		require.NoError(t, err)
		assert.Equal(t, model.ReimbursementID(employee.ID, month), got.ID)
		assert.InDelta(t, 12, got.TotalNok, 1e-9)

		_, err = db.GetReimbursement(ctx, employee.ID, model.Month{Year: 2024, Month: time.April})
		assert.ErrorIs(t, err, ErrNotFound)
	})
}
