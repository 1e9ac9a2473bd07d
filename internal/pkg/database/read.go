package database

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/anicoll/ev-reimbursement/internal/pkg/model"
)

func (db *Database) GetEmployee(ctx context.Context, id uuid.UUID) (model.Employee, error) {
	const query = `
	SELECT id, organization_id, name, price_area, policy_type, flat_rate, subsidy_threshold, subsidy_share
	FROM employees
	WHERE id = $1;
	`
	var e model.Employee
	var area, policy string
	err := db.pool.QueryRow(ctx, query, id).Scan(&e.ID, &e.OrganizationID, &e.Name, &area, &policy,
		&e.Policy.FlatRateInclTax, &e.Policy.SubsidyThreshold, &e.Policy.SubsidyShare)
	if err != nil {
		return model.Employee{}, notFound(err, "employee "+id.String())
	}
	e.PriceArea = model.PriceArea(area)
	e.Policy.Type = model.PolicyType(policy)
	return e, nil
}

// GetTariffProfiles returns the organization's profiles in selection order, oldest effective date first.
func (db *Database) GetTariffProfiles(ctx context.Context, organizationID uuid.UUID) (model.TariffProfiles, error) {
	const query = `
	SELECT p.id, p.organization_id, p.name, p.effective_from, p.effective_to, p.holidays,
		p.include_public_holidays, p.rates_include_tax,
		w.day_of_week, w.start_time, w.end_time, w.energy_rate, w.time_rate
	FROM tariff_profiles p
	LEFT JOIN tariff_windows w ON w.profile_id = p.id
	WHERE p.organization_id = $1
	ORDER BY p.effective_from NULLS FIRST, p.created_at, p.id, w.position;
	`
	rows, err := db.pool.Query(ctx, query, organizationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTariffProfiles(rows)
}

func scanTariffProfiles(rows pgx.Rows) (model.TariffProfiles, error) {
	var profiles model.TariffProfiles
	for rows.Next() {
		var (
			p                    model.TariffProfile
			from, to             *time.Time
			holidays             []time.Time
			day                  *int16
			start, end           *string
			energyRate, timeRate *float64
		)
		if err := rows.Scan(&p.ID, &p.OrganizationID, &p.Name, &from, &to, &holidays,
			&p.IncludePublicHolidays, &p.RatesIncludeTax,
			&day, &start, &end, &energyRate, &timeRate); err != nil {
			return nil, err
		}

		if n := len(profiles); n == 0 || profiles[n-1].ID != p.ID {
			p.EffectiveFrom = toDate(from)
			p.EffectiveTo = toDate(to)
			for _, h := range holidays {
				p.Holidays = append(p.Holidays, model.DateOf(h))
			}
			profiles = append(profiles, p)
		}
		if day == nil {
			continue
		}
		w := model.TariffWindow{DayOfWeek: int(*day), TimeRateOre: timeRate}
		if energyRate != nil {
			w.EnergyRateOre = *energyRate
		}
		var err error
		if w.Start, err = model.ParseClockTime(*start); err != nil {
			return nil, err
		}
		if w.End, err = model.ParseClockTime(*end); err != nil {
			return nil, err
		}
		last := &profiles[len(profiles)-1]
		last.Windows = append(last.Windows, w)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return profiles, nil
}

// GetSessions returns the employee's sessions starting in [from, to).
func (db *Database) GetSessions(ctx context.Context, employeeID uuid.UUID, from, to time.Time) (model.ChargingSessions, error) {
	const query = `
	SELECT id, employee_id, rfid, start_time, end_time, kwh
	FROM charging_sessions
	WHERE employee_id = $1 AND start_time >= $2 AND start_time < $3
	ORDER BY start_time;
	`
	rows, err := db.pool.Query(ctx, query, employeeID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions model.ChargingSessions
	for rows.Next() {
		var s model.ChargingSession
		if err := rows.Scan(&s.ID, &s.EmployeeID, &s.RFID, &s.Start, &s.End, &s.Kwh); err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return sessions, nil
}

// GetSpotPrices returns the stored prices for hours starting in [from, to).
func (db *Database) GetSpotPrices(ctx context.Context, area model.PriceArea, from, to time.Time) (model.SpotPrices, error) {
	const query = `
	SELECT area, hour_start, nok_per_kwh, fetched_at
	FROM spot_prices
	WHERE area = $1 AND hour_start >= $2 AND hour_start < $3
	ORDER BY hour_start;
	`
	rows, err := db.pool.Query(ctx, query, string(area), from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var prices model.SpotPrices
	for rows.Next() {
		var p model.SpotPrice
		var a string
		if err := rows.Scan(&a, &p.HourStart, &p.NokPerKwh, &p.FetchedAt); err != nil {
			return nil, err
		}
		p.Area = model.PriceArea(a)
		prices = append(prices, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return prices, nil
}

func (db *Database) GetReimbursement(ctx context.Context, employeeID uuid.UUID, month model.Month) (model.Reimbursement, error) {
	const query = `
	SELECT id, employee_id, organization_id, kwh, energy_nok, grid_nok, subsidy_nok, total_nok,
		price_area, policy, session_count, calculated_at
	FROM reimbursements
	WHERE employee_id = $1 AND month = $2;
	`
	r := model.Reimbursement{Month: month}
	var area, policy string
	err := db.pool.QueryRow(ctx, query, employeeID, month.String()).Scan(&r.ID, &r.EmployeeID, &r.OrganizationID,
		&r.Kwh, &r.EnergyNok, &r.GridNok, &r.SubsidyNok, &r.TotalNok, &area, &policy, &r.SessionCount, &r.CalculatedAt)
	if err != nil {
		return model.Reimbursement{}, notFound(err, "reimbursement "+month.String())
	}
	r.PriceArea = model.PriceArea(area)
	r.Policy = model.PolicyType(policy)
	return r, nil
}

func toDate(t *time.Time) *model.Date {
	if t == nil {
		return nil
	}
	d := model.DateOf(*t)
	return &d
}
