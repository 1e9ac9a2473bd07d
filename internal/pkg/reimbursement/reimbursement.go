package reimbursement

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/anicoll/ev-reimbursement/internal/pkg/metrics"
	"github.com/anicoll/ev-reimbursement/internal/pkg/model"
	"github.com/anicoll/ev-reimbursement/internal/pkg/pricing"
	"github.com/anicoll/ev-reimbursement/internal/pkg/spotprice"
)

type store interface {
	GetEmployee(ctx context.Context, id uuid.UUID) (model.Employee, error)
	GetTariffProfiles(ctx context.Context, organizationID uuid.UUID) (model.TariffProfiles, error)
	GetSessions(ctx context.Context, employeeID uuid.UUID, from, to time.Time) (model.ChargingSessions, error)
	WriteSessions(ctx context.Context, sessions []model.ChargingSession) (int, error)
	GetSpotPrices(ctx context.Context, area model.PriceArea, from, to time.Time) (model.SpotPrices, error)
	WriteSpotPrices(ctx context.Context, prices model.SpotPrices) error
}

type priceSource interface {
	GetPrices(ctx context.Context, area model.PriceArea, date model.Date) (model.SpotPrices, error)
}

type publisher interface {
	Publish(ctx context.Context, r model.Reimbursement) error
	RegisterEmployee(employee model.Employee) error
}

// Quote is the result of pricing sessions that are not stored.
type Quote struct {
	Sessions []pricing.SessionResult `json:"sessions"`
	model.PriceBreakdown
	Warnings []string `json:"warnings,omitempty"`
}

// QuoteRequest prices ad hoc sessions. Prices missing from Prices are looked up.
type QuoteRequest struct {
	pricing.Request
	Sessions []model.ChargingSession
	Location *time.Location
}

type service struct {
	store     store
	prices    priceSource
	calc      *pricing.Calculator
	publisher publisher
	now       func() time.Time
	logger    *zap.Logger
}

func WithPublisher(p publisher) func(*service) {
	return func(s *service) {
		s.publisher = p
	}
}

func WithClock(now func() time.Time) func(*service) {
	return func(s *service) {
		s.now = now
	}
}

func New(st store, prices priceSource, calc *pricing.Calculator, opts ...func(*service)) *service {
	s := &service{
		store:  st,
		prices: prices,
		calc:   calc,
		now:    time.Now,
		logger: zap.L(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *service) Location() *time.Location {
	return s.calc.Location()
}

func (s *service) Employee(ctx context.Context, id uuid.UUID) (model.Employee, error) {
	return s.store.GetEmployee(ctx, id)
}

// ImportSessions assigns the sessions to the employee and stores the new ones.
func (s *service) ImportSessions(ctx context.Context, employeeID uuid.UUID, sessions []model.ChargingSession) (int, error) {
	if _, err := s.store.GetEmployee(ctx, employeeID); err != nil {
		return 0, err
	}
	for i := range sessions {
		sessions[i].EmployeeID = employeeID
	}
	n, err := s.store.WriteSessions(ctx, sessions)
	if err != nil {
		return 0, fmt.Errorf("storing sessions: %w", err)
	}
	metrics.AddSessionsImported(n)
	s.logger.Info("imported sessions",
		zap.String("employee", employeeID.String()),
		zap.Int("received", len(sessions)),
		zap.Int("new", n))
	return n, nil
}

// Calculate prices the employee's stored sessions for the month.
func (s *service) Calculate(ctx context.Context, employeeID uuid.UUID, month model.Month) (pricing.MonthlyReport, error) {
	started := time.Now()
	report, err := s.calculate(ctx, employeeID, month)
	metrics.ObserveCalculation(err, time.Since(started))
	return report, err
}

func (s *service) calculate(ctx context.Context, employeeID uuid.UUID, month model.Month) (pricing.MonthlyReport, error) {
	employee, err := s.store.GetEmployee(ctx, employeeID)
	if err != nil {
		return pricing.MonthlyReport{}, err
	}

	loc := s.calc.Location()
	from, to := month.Range(loc)

	var (
		profiles model.TariffProfiles
		sessions model.ChargingSessions
	)
	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		var err error
		profiles, err = s.store.GetTariffProfiles(egCtx, employee.OrganizationID)
		return err
	})
	eg.Go(func() error {
		var err error
		sessions, err = s.store.GetSessions(egCtx, employee.ID, from, to)
		return err
	})
	if err := eg.Wait(); err != nil {
		return pricing.MonthlyReport{}, err
	}

	req := pricing.Request{
		Area:     employee.PriceArea,
		Policy:   employee.Policy,
		Profiles: profiles,
		Prices:   model.HourlyPrices{},
	}
	if employee.Policy.Type == model.PolicySpotWithSubsidy && len(sessions) > 0 {
		last := slices.MaxFunc(sessions, func(a, b model.ChargingSession) int {
			return a.End.Compare(b.End)
		})
		prices, err := s.SpotPrices(ctx, employee.PriceArea, model.DateOf(from), model.DateOf(last.End.In(loc)))
		if err != nil {
			return pricing.MonthlyReport{}, err
		}
		req.Prices = prices.Hourly()
	}

	return s.calc.CalculateMonth(ctx, req, employee, month, sessions)
}

// Reimburse calculates the month and publishes the resulting ledger row.
func (s *service) Reimburse(ctx context.Context, employeeID uuid.UUID, month model.Month) (pricing.MonthlyReport, model.Reimbursement, error) {
	report, err := s.Calculate(ctx, employeeID, month)
	if err != nil {
		return pricing.MonthlyReport{}, model.Reimbursement{}, err
	}
	r := report.Reimbursement(s.now())
	if s.publisher != nil {
		if err := s.publisher.RegisterEmployee(report.Employee); err != nil {
			s.logger.Warn("failed to register employee", zap.Error(err))
		}
		if err := s.publisher.Publish(ctx, r); err != nil {
			return report, r, fmt.Errorf("publishing reimbursement: %w", err)
		}
	}
	s.logger.Info("reimbursement calculated",
		zap.String("employee", employeeID.String()),
		zap.Stringer("month", month),
		zap.Int("sessions", r.SessionCount),
		zap.Float64("total_nok", r.TotalNok),
		zap.Int("warnings", len(report.Warnings)))
	return report, r, nil
}

// Quote prices sessions supplied by the caller.
func (s *service) Quote(ctx context.Context, req QuoteRequest) (Quote, error) {
	calc := s.calc
	if req.Location != nil {
		calc = s.calc.In(req.Location)
	}
	loc := calc.Location()

	prices := model.HourlyPrices{}
	if req.Policy.Type == model.PolicySpotWithSubsidy && len(req.Sessions) > 0 {
		for _, d := range missingDates(req.Sessions, req.Prices, loc) {
			fetched, err := s.SpotPrices(ctx, req.Area, d, d)
			if err != nil {
				return Quote{}, err
			}
			prices.Merge(fetched.Hourly())
		}
	}
	// Prices given by the caller win over fetched ones.
	prices.Merge(req.Prices)
	req.Request.Prices = prices

	results, err := calc.PriceSessions(ctx, req.Request, req.Sessions)
	if err != nil {
		return Quote{}, err
	}
	q := Quote{
		Sessions: results,
		PriceBreakdown: model.PriceBreakdown{
			PriceArea: req.Area,
			Policy:    req.Policy.Type,
		},
	}
	for _, r := range results {
		q.PriceBreakdown.Add(r.PriceBreakdown)
		for _, w := range r.Warnings {
			q.Warnings = append(q.Warnings, fmt.Sprintf("session %s: %s", r.Session.ID, w))
		}
	}
	return q, nil
}

// missingDates lists the local days touched by sessions that lack a price for any hour.
func missingDates(sessions []model.ChargingSession, prices model.HourlyPrices, loc *time.Location) []model.Date {
	seen := map[model.Date]struct{}{}
	var out []model.Date
	for _, s := range sessions {
		last := model.DateOf(s.End.In(loc))
		for d := model.DateOf(s.Start.In(loc)); !d.After(last); d = d.AddDays(1) {
			if _, ok := seen[d]; ok {
				continue
			}
			seen[d] = struct{}{}
			if !prices.CoversDay(d, loc) {
				out = append(out, d)
			}
		}
	}
	slices.SortFunc(out, func(a, b model.Date) int {
		return a.In(time.UTC).Compare(b.In(time.UTC))
	})
	return out
}

// SpotPrices returns stored prices for the local dates from..to, fetching and storing
// days that are missing or incomplete. Days not yet published are left out.
func (s *service) SpotPrices(ctx context.Context, area model.PriceArea, from, to model.Date) (model.SpotPrices, error) {
	loc := s.calc.Location()
	stored, err := s.store.GetSpotPrices(ctx, area, from.In(loc), to.AddDays(1).In(loc))
	if err != nil {
		return nil, err
	}
	byHour := make(map[time.Time]model.SpotPrice, len(stored))
	perDay := map[model.Date]int{}
	for _, p := range stored {
		byHour[p.HourStart.UTC()] = p
		perDay[model.DateOf(p.HourStart.In(loc))]++
	}

	for d := from; !d.After(to); d = d.AddDays(1) {
		if perDay[d] >= model.HoursIn(d, loc) {
			continue
		}
		fetched, err := s.prices.GetPrices(ctx, area, d)
		if errors.Is(err, spotprice.ErrNotPublished) {
			s.logger.Warn("spot prices not available", zap.Stringer("area", area), zap.Stringer("date", d))
			continue
		}
		if err != nil {
			return nil, err
		}
		if err := s.store.WriteSpotPrices(ctx, fetched); err != nil {
			return nil, fmt.Errorf("storing spot prices: %w", err)
		}
		for _, p := range fetched {
			byHour[p.HourStart.UTC()] = p
		}
	}

	out := make(model.SpotPrices, 0, len(byHour))
	for _, p := range byHour {
		out = append(out, p)
	}
	slices.SortFunc(out, func(a, b model.SpotPrice) int {
		return a.HourStart.Compare(b.HourStart)
	})
	return out, nil
}

// FetchDay stores the prices for date in every area. Used by the daily cron job.
func (s *service) FetchDay(ctx context.Context, areas []model.PriceArea, date model.Date) error {
	var errs []error
	for _, area := range areas {
		if _, err := s.SpotPrices(ctx, area, date, date); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", area, err))
		}
	}
	return errors.Join(errs...)
}
