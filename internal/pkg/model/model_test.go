package model

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewChargingSession(t *testing.T) {
	start := time.Date(2024, time.January, 15, 20, 0, 0, 0, time.UTC)
	tests := map[string]struct {
		end     time.Time
		kwh     float64
		wantErr error
	}{
		"valid":        {end: start.Add(2 * time.Hour), kwh: 10},
		"zero energy":  {end: start.Add(time.Hour), kwh: 0},
		"end at start": {end: start, kwh: 10, wantErr: ErrInvalidSessionWindow},
		"end before":   {end: start.Add(-time.Minute), kwh: 10, wantErr: ErrInvalidSessionWindow},
		"negative kwh": {end: start.Add(time.Hour), kwh: -1, wantErr: ErrNegativeEnergy},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			s, err := NewChargingSession("TAG", start, tc.end, tc.kwh)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.NotEqual(t, uuid.Nil, s.ID)
			assert.Equal(t, tc.end.Sub(start), s.Duration())
		})
	}
}

func TestParseClockTime(t *testing.T) {
	tests := map[string]struct {
		in      string
		want    ClockTime
		wantErr bool
	}{
		"hours and minutes": {in: "22:00", want: ClockTime{Hour: 22}},
		"with seconds":      {in: "06:30:15", want: ClockTime{Hour: 6, Minute: 30, Second: 15}},
		"end of day":        {in: "24:00", want: ClockTime{Hour: 24}},
		"past end of day":   {in: "24:01", wantErr: true},
		"bad minute":        {in: "12:60", wantErr: true},
		"no minutes":        {in: "12", wantErr: true},
		"garbage":           {in: "noon", wantErr: true},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := ParseClockTime(tc.in)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestTariffWindow_Contains(t *testing.T) {
	night := TariffWindow{Start: MustParseClockTime("22:00"), End: MustParseClockTime("06:00")}
	allDay := TariffWindow{Start: MustParseClockTime("00:00"), End: MustParseClockTime("00:00")}
	untilMidnight := TariffWindow{Start: MustParseClockTime("06:00"), End: MustParseClockTime("24:00")}

	assert.True(t, night.Wraps())
	assert.True(t, night.Contains(MustParseClockTime("23:30")))
	assert.True(t, night.Contains(MustParseClockTime("05:59")))
	assert.False(t, night.Contains(MustParseClockTime("06:00")))
	assert.False(t, night.Contains(MustParseClockTime("12:00")))

	assert.True(t, allDay.Contains(MustParseClockTime("13:37")))

	assert.False(t, untilMidnight.Wraps())
	assert.True(t, untilMidnight.Contains(MustParseClockTime("23:59")))
	assert.False(t, untilMidnight.Contains(MustParseClockTime("05:00")))
}

func TestDayOfWeek(t *testing.T) {
	assert.Equal(t, Monday, DayOfWeek(time.Monday))
	assert.Equal(t, Saturday, DayOfWeek(time.Saturday))
	assert.Equal(t, Sunday, DayOfWeek(time.Sunday))
}

func TestMonth(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Oslo")
	require.NoError(t, err)

	m, err := ParseMonth("2024-02")
	require.NoError(t, err)
	assert.Equal(t, "2024-02", m.String())
	assert.Len(t, m.Dates(), 29)

	from, to := m.Range(loc)
	assert.Equal(t, time.Date(2024, time.February, 1, 0, 0, 0, 0, loc), from)
	assert.Equal(t, time.Date(2024, time.March, 1, 0, 0, 0, 0, loc), to)

	_, err = ParseMonth("2024-13")
	assert.Error(t, err)
}

func TestTariffProfile_Covers(t *testing.T) {
	from, to := NewDate(2024, time.January, 1), NewDate(2024, time.June, 30)
	p := TariffProfile{EffectiveFrom: &from, EffectiveTo: &to}

	assert.True(t, p.Covers(from))
	assert.True(t, p.Covers(to))
	assert.False(t, p.Covers(NewDate(2023, time.December, 31)))
	assert.False(t, p.Covers(NewDate(2024, time.July, 1)))
	assert.True(t, TariffProfile{}.Covers(from))
}

func TestHourlyPrices_DayMean(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Oslo")
	require.NoError(t, err)
	day := time.Date(2024, time.January, 15, 0, 0, 0, 0, loc)
	prices := SpotPrices{
		{Area: NO1, HourStart: day, NokPerKwh: 1.0},
		{Area: NO1, HourStart: day.Add(time.Hour), NokPerKwh: 2.0},
		{Area: NO1, HourStart: day.Add(24 * time.Hour), NokPerKwh: 9.0},
	}.Hourly()

	p, ok := prices.At(day.Add(90 * time.Minute))
	require.True(t, ok)
	assert.Equal(t, 2.0, p)

	mean, ok := prices.DayMean(day.Add(20*time.Hour), loc)
	require.True(t, ok)
	assert.InDelta(t, 1.5, mean, 1e-9)

	_, ok = prices.DayMean(day.Add(-time.Hour), loc)
	assert.False(t, ok)
}

func TestPricingPolicy(t *testing.T) {
	bare := PricingPolicy{Type: PolicySpotWithSubsidy}
	assert.Equal(t, DefaultSubsidyThreshold, bare.Threshold())
	assert.Equal(t, DefaultSubsidyShare, bare.Share())

	p := bare.WithDefaults()
	require.NotNil(t, p.SubsidyThreshold)
	require.NotNil(t, p.SubsidyShare)
	assert.Equal(t, DefaultSubsidyThreshold, *p.SubsidyThreshold)
	assert.Equal(t, DefaultSubsidyShare, *p.SubsidyShare)
	assert.Nil(t, p.FlatRateInclTax)
	assert.NoError(t, p.Validate())

	assert.Equal(t, DefaultNorgesprisRate, PricingPolicy{Type: PolicyNorgespris}.WithDefaults().FlatRate())

	assert.ErrorIs(t, PricingPolicy{Type: "fixed"}.Validate(), ErrUnknownPolicy)
	assert.Error(t, PricingPolicy{Type: PolicySpotWithSubsidy, SubsidyShare: lo.ToPtr(1.5)}.Validate())
	assert.Error(t, PricingPolicy{Type: PolicyNorgespris, FlatRateInclTax: lo.ToPtr(-0.1)}.Validate())

	area, err := ParsePriceArea(" no3 ")
	require.NoError(t, err)
	assert.Equal(t, NO3, area)
}

func TestPricingPolicy_ExplicitZeroIsKept(t *testing.T) {
	tests := map[string]struct {
		policy   PricingPolicy
		check    func(PricingPolicy) float64
		expected float64
	}{
		"zero share": {
			policy:   PricingPolicy{Type: PolicySpotWithSubsidy, SubsidyShare: lo.ToPtr(0.0)},
			check:    PricingPolicy.Share,
			expected: 0,
		},
		"zero threshold": {
			policy:   PricingPolicy{Type: PolicySpotWithSubsidy, SubsidyThreshold: lo.ToPtr(0.0)},
			check:    PricingPolicy.Threshold,
			expected: 0,
		},
		"free norgespris": {
			policy:   NorgesprisPolicy(0),
			check:    PricingPolicy.FlatRate,
			expected: 0,
		},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.check(tc.policy))
			assert.Equal(t, tc.expected, tc.check(tc.policy.WithDefaults()))
			assert.NoError(t, tc.policy.Validate())
		})
	}
}

func TestHourlyPrices_CoversDay(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Oslo")
	require.NoError(t, err)

	tests := map[string]struct {
		date  Date
		hours int
	}{
		"regular day":  {date: NewDate(2024, time.June, 3), hours: 24},
		"spring ahead": {date: NewDate(2024, time.March, 31), hours: 23},
		"fall back":    {date: NewDate(2024, time.October, 27), hours: 25},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.hours, HoursIn(tc.date, loc))

			var prices SpotPrices
			start := tc.date.In(loc)
			for i := range tc.hours {
				prices = append(prices, SpotPrice{Area: NO1, HourStart: start.Add(time.Duration(i) * time.Hour), NokPerKwh: 1})
			}
			assert.True(t, prices.Hourly().CoversDay(tc.date, loc))
			assert.False(t, prices[1:].Hourly().CoversDay(tc.date, loc))
		})
	}
}

func TestReimbursementID(t *testing.T) {
	employeeID := uuid.MustParse("0d4b4f2e-8a55-4c44-9d3c-7a5d1fcf0c01")
	march := Month{Year: 2024, Month: time.March}

	assert.Equal(t, ReimbursementID(employeeID, march), ReimbursementID(employeeID, march))
	assert.NotEqual(t, ReimbursementID(employeeID, march), ReimbursementID(employeeID, Month{Year: 2024, Month: time.April}))
	assert.NotEqual(t, ReimbursementID(employeeID, march), ReimbursementID(uuid.New(), march))
}
