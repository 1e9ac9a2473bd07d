package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/anicoll/ev-reimbursement/internal/pkg/model"
	"github.com/anicoll/ev-reimbursement/internal/pkg/tou"
)

func (db *Database) UpsertEmployee(ctx context.Context, e model.Employee) error {
	if err := e.Policy.Validate(); err != nil {
		return err
	}
	_, err := db.pool.Exec(ctx, `
		INSERT INTO employees (id, organization_id, name, price_area, policy_type, flat_rate, subsidy_threshold, subsidy_share)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			price_area = EXCLUDED.price_area,
			policy_type = EXCLUDED.policy_type,
			flat_rate = EXCLUDED.flat_rate,
			subsidy_threshold = EXCLUDED.subsidy_threshold,
			subsidy_share = EXCLUDED.subsidy_share,
			updated_at = NOW();`,
		e.ID, e.OrganizationID, e.Name, string(e.PriceArea), string(e.Policy.Type),
		e.Policy.FlatRateInclTax, e.Policy.SubsidyThreshold, e.Policy.SubsidyShare)
	return err
}

// UpsertTariffProfile replaces the profile and its windows. The organization's profile
// set is validated as a whole so overlapping profiles never reach the table.
func (db *Database) UpsertTariffProfile(ctx context.Context, profile model.TariffProfile) error {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	// Serialises concurrent writers for the same organization.
	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1::text))`, profile.OrganizationID.String()); err != nil {
		return err
	}

	rows, err := tx.Query(ctx, `
		SELECT p.id, p.organization_id, p.name, p.effective_from, p.effective_to, p.holidays,
			p.include_public_holidays, p.rates_include_tax,
			w.day_of_week, w.start_time, w.end_time, w.energy_rate, w.time_rate
		FROM tariff_profiles p
		LEFT JOIN tariff_windows w ON w.profile_id = p.id
		WHERE p.organization_id = $1 AND p.id <> $2
		ORDER BY p.effective_from NULLS FIRST, p.created_at, p.id, w.position;`,
		profile.OrganizationID, profile.ID)
	if err != nil {
		return err
	}
	existing, err := scanTariffProfiles(rows)
	rows.Close()
	if err != nil {
		return err
	}
	if err := tou.ValidateProfiles(append(existing, profile)); err != nil {
		return err
	}

	holidays := make([]time.Time, 0, len(profile.Holidays))
	for _, h := range profile.Holidays {
		holidays = append(holidays, h.In(time.UTC))
	}
	if _, err := tx.Exec(ctx, `
		INSERT INTO tariff_profiles (id, organization_id, name, effective_from, effective_to, holidays, include_public_holidays, rates_include_tax)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			effective_from = EXCLUDED.effective_from,
			effective_to = EXCLUDED.effective_to,
			holidays = EXCLUDED.holidays,
			include_public_holidays = EXCLUDED.include_public_holidays,
			rates_include_tax = EXCLUDED.rates_include_tax;`,
		profile.ID, profile.OrganizationID, profile.Name, fromDate(profile.EffectiveFrom), fromDate(profile.EffectiveTo),
		holidays, profile.IncludePublicHolidays, profile.RatesIncludeTax); err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, `DELETE FROM tariff_windows WHERE profile_id = $1`, profile.ID); err != nil {
		return err
	}
	batch := &pgx.Batch{}
	for i, w := range profile.Windows {
		batch.Queue(`
			INSERT INTO tariff_windows (profile_id, position, day_of_week, start_time, end_time, energy_rate, time_rate)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			profile.ID, i, w.DayOfWeek, w.Start.String(), w.End.String(), w.EnergyRateOre, w.TimeRateOre)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("writing tariff windows: %w", err)
	}
	return tx.Commit(ctx)
}

// WriteSessions stores sessions, skipping ones already imported. It returns how many were new.
func (db *Database) WriteSessions(ctx context.Context, sessions []model.ChargingSession) (int, error) {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	inserted := 0
	for _, s := range sessions {
		tag, err := tx.Exec(ctx, `
			INSERT INTO charging_sessions (id, employee_id, rfid, start_time, end_time, kwh)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (employee_id, rfid, start_time) DO NOTHING`,
			s.ID, s.EmployeeID, s.RFID, s.Start, s.End, s.Kwh)
		if err != nil {
			return 0, err
		}
		inserted += int(tag.RowsAffected())
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return inserted, nil
}

func (db *Database) WriteSpotPrices(ctx context.Context, prices model.SpotPrices) error {
	if len(prices) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, p := range prices {
		batch.Queue(`
			INSERT INTO spot_prices (area, hour_start, nok_per_kwh, fetched_at)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (area, hour_start) DO UPDATE SET
				nok_per_kwh = EXCLUDED.nok_per_kwh,
				fetched_at = EXCLUDED.fetched_at`,
			string(p.Area), p.HourStart, p.NokPerKwh, p.FetchedAt)
	}
	return db.pool.SendBatch(ctx, batch).Close()
}

// WriteReimbursement stores the month's ledger row, replacing an earlier calculation.
func (db *Database) WriteReimbursement(ctx context.Context, r model.Reimbursement) error {
	_, err := db.pool.Exec(ctx, `
		INSERT INTO reimbursements (id, employee_id, organization_id, month, kwh, energy_nok, grid_nok, subsidy_nok,
			total_nok, price_area, policy, session_count, calculated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (employee_id, month) DO UPDATE SET
			kwh = EXCLUDED.kwh,
			energy_nok = EXCLUDED.energy_nok,
			grid_nok = EXCLUDED.grid_nok,
			subsidy_nok = EXCLUDED.subsidy_nok,
			total_nok = EXCLUDED.total_nok,
			price_area = EXCLUDED.price_area,
			policy = EXCLUDED.policy,
			session_count = EXCLUDED.session_count,
			calculated_at = EXCLUDED.calculated_at;`,
		r.ID, r.EmployeeID, r.OrganizationID, r.Month.String(), r.Kwh, r.EnergyNok, r.GridNok, r.SubsidyNok,
		r.TotalNok, string(r.PriceArea), string(r.Policy), r.SessionCount, r.CalculatedAt)
	return err
}

func fromDate(d *model.Date) *time.Time {
	if d == nil {
		return nil
	}
	t := d.In(time.UTC)
	return &t
}

// Publish lets the database act as the reimbursement ledger publisher.
func (db *Database) Publish(ctx context.Context, r model.Reimbursement) error {
	return db.WriteReimbursement(ctx, r)
}
