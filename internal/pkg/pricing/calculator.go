package pricing

import (
	"context"
	"fmt"
	"runtime"
	"slices"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/anicoll/ev-reimbursement/internal/pkg/model"
	"github.com/anicoll/ev-reimbursement/internal/pkg/timesplit"
	"github.com/anicoll/ev-reimbursement/internal/pkg/tou"
)

// Request carries everything needed to price sessions for one employee.
type Request struct {
	Area     model.PriceArea
	Policy   model.PricingPolicy
	Profiles []model.TariffProfile
	Prices   model.HourlyPrices
}

type FragmentResult struct {
	model.TimeFragment
	SpotPriceExTax  float64 `json:"spot_price_ex_tax"`
	GridRateInclTax float64 `json:"grid_rate_incl_tax"`
	GridFallback    bool    `json:"grid_fallback"`
	FragmentPrice
}

type SessionResult struct {
	Session   model.ChargingSession `json:"session"`
	Fragments []FragmentResult      `json:"fragments"`
	model.PriceBreakdown
	Warnings []string `json:"warnings,omitempty"`
}

type MonthlyReport struct {
	Employee model.Employee  `json:"employee"`
	Month    model.Month     `json:"month"`
	Sessions []SessionResult `json:"sessions"`
	model.PriceBreakdown
	Warnings []string `json:"warnings,omitempty"`
}

// Reimbursement converts the report into a ledger row.
func (r MonthlyReport) Reimbursement(calculatedAt time.Time) model.Reimbursement {
	return model.Reimbursement{
		ID:             model.ReimbursementID(r.Employee.ID, r.Month),
		EmployeeID:     r.Employee.ID,
		OrganizationID: r.Employee.OrganizationID,
		Month:          r.Month,
		PriceBreakdown: r.PriceBreakdown,
		SessionCount:   len(r.Sessions),
		CalculatedAt:   calculatedAt,
	}
}

type Calculator struct {
	matcher *tou.Matcher
	workers int
	logger  *zap.Logger
}

func WithWorkers(n int) func(*Calculator) {
	return func(c *Calculator) {
		if n > 0 {
			c.workers = n
		}
	}
}

func New(matcher *tou.Matcher, opts ...func(*Calculator)) *Calculator {
	c := &Calculator{
		matcher: matcher,
		workers: runtime.GOMAXPROCS(0),
		logger:  zap.L(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *Calculator) Location() *time.Location {
	return c.matcher.Location()
}

// In returns a calculator that splits and matches in loc.
func (c *Calculator) In(loc *time.Location) *Calculator {
	cp := *c
	cp.matcher = c.matcher.In(loc)
	return &cp
}

// PriceSession splits the session into hourly fragments and prices each one.
func (c *Calculator) PriceSession(req Request, session model.ChargingSession) SessionResult {
	loc := c.matcher.Location()
	policy := req.Policy.WithDefaults()
	split := timesplit.SplitSession(session, loc)

	res := SessionResult{
		Session:   session,
		Fragments: make([]FragmentResult, 0, len(split.Fragments)),
		PriceBreakdown: model.PriceBreakdown{
			PriceArea: req.Area,
			Policy:    policy.Type,
		},
		Warnings: slices.Clone(split.Warnings),
	}

	for _, frag := range split.Fragments {
		grid := c.matcher.Resolve(frag.Hour, req.Profiles)
		spot, warning := spotPriceFor(req.Prices, frag.Hour, loc, policy)
		if warning != "" {
			res.Warnings = append(res.Warnings, warning)
		}
		price := PriceFragment(frag.Kwh, grid.RateInclTax, spot, policy)

		res.Fragments = append(res.Fragments, FragmentResult{
			TimeFragment:    frag,
			SpotPriceExTax:  spot,
			GridRateInclTax: grid.RateInclTax,
			GridFallback:    grid.Fallback,
			FragmentPrice:   price,
		})
		res.Kwh += frag.Kwh
		res.EnergyNok += price.EnergyNok
		res.GridNok += price.GridNok
		res.SubsidyNok += price.SubsidyNok
		res.TotalNok += price.TotalNok()
	}
	return res
}

// PriceSessions prices sessions concurrently, keeping input order.
func (c *Calculator) PriceSessions(ctx context.Context, req Request, sessions []model.ChargingSession) ([]SessionResult, error) {
	results := make([]SessionResult, len(sessions))
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(c.workers)
	for i, s := range sessions {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = c.PriceSession(req, s)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// CalculateMonth prices the employee's sessions that start within the month and sums them.
func (c *Calculator) CalculateMonth(ctx context.Context, req Request, employee model.Employee, month model.Month, sessions []model.ChargingSession) (MonthlyReport, error) {
	loc := c.matcher.Location()
	from, to := month.Range(loc)

	report := MonthlyReport{
		Employee: employee,
		Month:    month,
		PriceBreakdown: model.PriceBreakdown{
			PriceArea: req.Area,
			Policy:    req.Policy.Type,
		},
	}

	inMonth := make([]model.ChargingSession, 0, len(sessions))
	for _, s := range sessions {
		start := s.Start.In(loc)
		if start.Before(from) || !start.Before(to) {
			report.Warnings = append(report.Warnings, fmt.Sprintf("session %s starts outside %s", s.ID, month))
			continue
		}
		inMonth = append(inMonth, s)
	}
	slices.SortFunc(inMonth, func(a, b model.ChargingSession) int {
		return a.Start.Compare(b.Start)
	})

	results, err := c.PriceSessions(ctx, req, inMonth)
	if err != nil {
		return MonthlyReport{}, err
	}
	report.Sessions = results
	for _, r := range results {
		report.PriceBreakdown.Add(r.PriceBreakdown)
		for _, w := range r.Warnings {
			report.Warnings = append(report.Warnings, fmt.Sprintf("session %s: %s", r.Session.ID, w))
		}
	}

	c.logger.Debug("calculated monthly reimbursement",
		zap.String("employee", employee.ID.String()),
		zap.Stringer("month", month),
		zap.Int("sessions", len(results)),
		zap.Float64("total_nok", report.TotalNok))
	return report, nil
}

// spotPriceFor looks up the hourly spot price, falling back to the mean of the day.
// Norgespris does not depend on the spot price, so gaps are not reported for it.
func spotPriceFor(prices model.HourlyPrices, hour time.Time, loc *time.Location, policy model.PricingPolicy) (float64, string) {
	if p, ok := prices.At(hour); ok {
		return p, ""
	}
	if policy.Type != model.PolicySpotWithSubsidy {
		return 0, ""
	}
	local := hour.In(loc).Format("2006-01-02 15:04")
	if mean, ok := prices.DayMean(hour, loc); ok {
		return mean, fmt.Sprintf("missing spot price for %s, using daily mean", local)
	}
	return 0, fmt.Sprintf("missing spot price for %s", local)
}
