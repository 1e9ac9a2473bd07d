package tou

import (
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/anicoll/ev-reimbursement/internal/pkg/model"
)

// Resolution describes how a grid rate was found.
type Resolution struct {
	RateInclTax float64              // NOK/kWh.
	Profile     *model.TariffProfile // nil when falling back.
	Window      *model.TariffWindow  // nil when falling back.
	DayOfWeek   int                  // after holiday override.
	Holiday     bool
	Fallback    bool
}

type Matcher struct {
	loc                *time.Location
	defaultRateOre     float64
	applyTaxToFallback bool
	logger             *zap.Logger
}

func WithFallbackTax(apply bool) func(*Matcher) {
	return func(m *Matcher) {
		m.applyTaxToFallback = apply
	}
}

func WithLogger(l *zap.Logger) func(*Matcher) {
	return func(m *Matcher) {
		m.logger = l
	}
}

// NewMatcher builds a matcher for the given timezone. defaultRateOre is used when no
// profile or window covers an hour.
func NewMatcher(loc *time.Location, defaultRateOre float64, opts ...func(*Matcher)) *Matcher {
	if loc == nil {
		loc = time.UTC
	}
	m := &Matcher{
		loc:            loc,
		defaultRateOre: defaultRateOre,
		logger:         zap.L(),
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

func (m *Matcher) Location() *time.Location {
	return m.loc
}

// In returns a copy of the matcher that resolves hours in loc.
func (m *Matcher) In(loc *time.Location) *Matcher {
	cp := *m
	if loc != nil {
		cp.loc = loc
	}
	return &cp
}

// ResolveGridRate returns the grid rate in NOK/kWh including VAT for the hour at t.
func (m *Matcher) ResolveGridRate(t time.Time, profiles []model.TariffProfile) float64 {
	return m.Resolve(t, profiles).RateInclTax
}

func (m *Matcher) Resolve(t time.Time, profiles []model.TariffProfile) Resolution {
	local := t.In(m.loc)
	date := model.DateOf(local)

	profile, found := SelectProfile(date, profiles)
	if !found {
		return m.fallback(model.DayOfWeek(local.Weekday()))
	}

	dow := model.DayOfWeek(local.Weekday())
	holiday := profile.IsHoliday(date) || (profile.IncludePublicHolidays && IsNorwegianHoliday(date))
	if holiday {
		dow = model.Sunday
	}

	window, found := MatchWindow(profile.Windows, dow, model.ClockOf(local))
	if !found {
		m.logger.Debug("no tariff window matched",
			zap.String("profile", profile.Name),
			zap.Time("at", local),
			zap.Int("day_of_week", dow))
		res := m.fallback(dow)
		res.Holiday = holiday
		return res
	}

	rate := window.RateOre() / 100
	if !profile.RatesIncludeTax {
		rate *= model.TaxMultiplier
	}
	return Resolution{
		RateInclTax: rate,
		Profile:     &profile,
		Window:      &window,
		DayOfWeek:   dow,
		Holiday:     holiday,
	}
}

// fallback keeps the historical behaviour of returning the default rate without VAT
// unless the matcher was configured to apply it.
func (m *Matcher) fallback(dow int) Resolution {
	rate := m.defaultRateOre / 100
	if m.applyTaxToFallback {
		rate *= model.TaxMultiplier
	}
	return Resolution{RateInclTax: rate, DayOfWeek: dow, Fallback: true}
}

// ResolveGridRate is the function form of Matcher.ResolveGridRate.
func ResolveGridRate(t time.Time, profiles []model.TariffProfile, defaultRateExTax float64, loc *time.Location) float64 {
	return NewMatcher(loc, defaultRateExTax).ResolveGridRate(t, profiles)
}

// SelectProfile returns the first profile whose effective range contains the date.
// Overlapping ranges are rejected by ValidateProfiles when profiles are stored, so the
// order only matters for unvalidated input.
func SelectProfile(date model.Date, profiles []model.TariffProfile) (model.TariffProfile, bool) {
	return lo.Find(profiles, func(p model.TariffProfile) bool {
		return p.Covers(date)
	})
}

// MatchWindow finds the first window for the day of week that contains the clock time.
func MatchWindow(windows []model.TariffWindow, dayOfWeek int, clock model.ClockTime) (model.TariffWindow, bool) {
	return lo.Find(windows, func(w model.TariffWindow) bool {
		return w.DayOfWeek == dayOfWeek && w.Contains(clock)
	})
}
