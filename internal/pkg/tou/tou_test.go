package tou

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/anicoll/ev-reimbursement/internal/pkg/model"
)

const epsilon = 1e-9

func oslo(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Europe/Oslo")
	require.NoError(t, err)
	return loc
}

func window(day int, start, end string, energy float64) model.TariffWindow {
	return model.TariffWindow{
		DayOfWeek:     day,
		Start:         model.MustParseClockTime(start),
		End:           model.MustParseClockTime(end),
		EnergyRateOre: energy,
	}
}

func datePtr(y int, m time.Month, d int) *model.Date {
	date := model.NewDate(y, m, d)
	return &date
}

func TestTariffWindow_OvernightWrap(t *testing.T) {
	w := window(model.Wednesday, "22:00", "06:00", 20)

	tests := map[string]struct {
		clock string
		want  bool
	}{
		"late evening":  {"23:30", true},
		"early morning": {"05:30", true},
		"on start":      {"22:00", true},
		"on end":        {"06:00", false},
		"midday":        {"12:00", false},
		"midnight":      {"00:00", true},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tt.want, w.Contains(model.MustParseClockTime(tt.clock)))
		})
	}
}

func TestMatchWindow(t *testing.T) {
	windows := []model.TariffWindow{
		window(model.Monday, "06:00", "22:00", 40),
		window(model.Monday, "22:00", "06:00", 20),
		window(model.Sunday, "00:00", "24:00", 15),
	}

	w, ok := MatchWindow(windows, model.Monday, model.MustParseClockTime("23:30"))
	require.True(t, ok)
	assert.Equal(t, 20.0, w.EnergyRateOre)

	w, ok = MatchWindow(windows, model.Monday, model.MustParseClockTime("05:30"))
	require.True(t, ok)
	assert.Equal(t, 20.0, w.EnergyRateOre)

	w, ok = MatchWindow(windows, model.Monday, model.MustParseClockTime("12:00"))
	require.True(t, ok)
	assert.Equal(t, 40.0, w.EnergyRateOre)

	w, ok = MatchWindow(windows, model.Sunday, model.MustParseClockTime("23:59:59"))
	require.True(t, ok)
	assert.Equal(t, 15.0, w.EnergyRateOre)

	_, ok = MatchWindow(windows, model.Tuesday, model.MustParseClockTime("12:00"))
	assert.False(t, ok)
}

func TestMatcher_ResolveGridRate(t *testing.T) {
	loc := oslo(t)
	timeRate := 10.0
	profiles := []model.TariffProfile{
		{
			Name:          "2023",
			EffectiveFrom: datePtr(2023, 1, 1),
			EffectiveTo:   datePtr(2023, 12, 31),
			Windows: []model.TariffWindow{
				window(model.Monday, "00:00", "00:00", 100),
			},
		},
		{
			Name:          "2024",
			EffectiveFrom: datePtr(2024, 1, 1),
			Windows: []model.TariffWindow{
				{DayOfWeek: model.Monday, Start: model.MustParseClockTime("06:00"), End: model.MustParseClockTime("22:00"), EnergyRateOre: 30, TimeRateOre: &timeRate},
				window(model.Monday, "22:00", "06:00", 20),
			},
		},
		{
			Name:            "tax inclusive",
			EffectiveFrom:   datePtr(2020, 1, 1),
			EffectiveTo:     datePtr(2020, 12, 31),
			RatesIncludeTax: true,
			Windows: []model.TariffWindow{
				window(model.Wednesday, "00:00", "24:00", 50),
			},
		},
	}

	tests := map[string]struct {
		at   time.Time
		want float64
	}{
		"day window with time rate": {
			at:   time.Date(2024, 1, 15, 12, 0, 0, 0, loc), // Monday
			want: (30 + 10) / 100.0 * 1.25,
		},
		"night window": {
			at:   time.Date(2024, 1, 15, 23, 0, 0, 0, loc),
			want: 20 / 100.0 * 1.25,
		},
		"older profile": {
			at:   time.Date(2023, 6, 5, 12, 0, 0, 0, loc), // Monday
			want: 100 / 100.0 * 1.25,
		},
		"rates already include tax": {
			at:   time.Date(2020, 1, 1, 8, 0, 0, 0, loc), // Wednesday
			want: 0.5,
		},
		"no window for day falls back without tax": {
			at:   time.Date(2024, 1, 16, 12, 0, 0, 0, loc), // Tuesday
			want: 0.45,
		},
		"no profile falls back without tax": {
			at:   time.Date(2019, 1, 7, 12, 0, 0, 0, loc),
			want: 0.45,
		},
		"utc instant resolved in local time": {
			// 22:30 UTC on Monday is 23:30 Monday in Oslo.
			at:   time.Date(2024, 1, 15, 22, 30, 0, 0, time.UTC),
			want: 20 / 100.0 * 1.25,
		},
	}
	m := NewMatcher(loc, 45, WithLogger(zaptest.NewLogger(t)))
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			assert.InDelta(t, tt.want, m.ResolveGridRate(tt.at, profiles), epsilon)
			assert.InDelta(t, tt.want, ResolveGridRate(tt.at, profiles, 45, loc), epsilon)
		})
	}
}

func TestMatcher_FallbackTax(t *testing.T) {
	loc := oslo(t)
	at := time.Date(2024, 1, 16, 12, 0, 0, 0, loc)

	plain := NewMatcher(loc, 40).Resolve(at, nil)
	assert.True(t, plain.Fallback)
	assert.InDelta(t, 0.40, plain.RateInclTax, epsilon)

	taxed := NewMatcher(loc, 40, WithFallbackTax(true)).Resolve(at, nil)
	assert.True(t, taxed.Fallback)
	assert.InDelta(t, 0.50, taxed.RateInclTax, epsilon)
}

func TestMatcher_HolidayOverride(t *testing.T) {
	loc := oslo(t)
	profile := model.TariffProfile{
		Name: "holidays",
		Windows: []model.TariffWindow{
			window(model.Wednesday, "00:00", "24:00", 40),
			window(model.Sunday, "00:00", "24:00", 10),
		},
		Holidays: []model.Date{model.NewDate(2024, 12, 25)}, // Wednesday
	}
	m := NewMatcher(loc, 0)

	holiday := m.Resolve(time.Date(2024, 12, 25, 14, 0, 0, 0, loc), []model.TariffProfile{profile})
	assert.True(t, holiday.Holiday)
	assert.Equal(t, model.Sunday, holiday.DayOfWeek)
	assert.InDelta(t, 10/100.0*1.25, holiday.RateInclTax, epsilon)

	ordinary := m.Resolve(time.Date(2024, 12, 18, 14, 0, 0, 0, loc), []model.TariffProfile{profile})
	assert.False(t, ordinary.Holiday)
	assert.InDelta(t, 40/100.0*1.25, ordinary.RateInclTax, epsilon)
}

func TestMatcher_PublicHolidays(t *testing.T) {
	loc := oslo(t)
	profile := model.TariffProfile{
		Name:                  "public holidays",
		IncludePublicHolidays: true,
		Windows: []model.TariffWindow{
			window(model.Friday, "00:00", "24:00", 40),
			window(model.Sunday, "00:00", "24:00", 10),
		},
	}
	// 17 May 2024 is a Friday.
	res := NewMatcher(loc, 0).Resolve(time.Date(2024, 5, 17, 9, 0, 0, 0, loc), []model.TariffProfile{profile})
	assert.True(t, res.Holiday)
	assert.InDelta(t, 0.125, res.RateInclTax, epsilon)
}

func TestNorwegianHolidays(t *testing.T) {
	tests := map[string]struct {
		date    model.Date
		holiday bool
	}{
		"new year":             {date: model.NewDate(2024, time.January, 1), holiday: true},
		"maundy thursday":      {date: model.NewDate(2024, time.March, 28), holiday: true},
		"good friday":          {date: model.NewDate(2024, time.March, 29), holiday: true},
		"easter sunday":        {date: model.NewDate(2024, time.March, 31), holiday: true},
		"easter monday":        {date: model.NewDate(2024, time.April, 1), holiday: true},
		"labour day":           {date: model.NewDate(2024, time.May, 1), holiday: true},
		"ascension":            {date: model.NewDate(2024, time.May, 9), holiday: true},
		"constitution day":     {date: model.NewDate(2024, time.May, 17), holiday: true},
		"whit monday":          {date: model.NewDate(2024, time.May, 20), holiday: true},
		"boxing day":           {date: model.NewDate(2024, time.December, 26), holiday: true},
		"easter sunday 2025":   {date: model.NewDate(2025, time.April, 20), holiday: true},
		"tuesday after easter": {date: model.NewDate(2024, time.April, 2), holiday: false},
		"christmas eve":        {date: model.NewDate(2024, time.December, 24), holiday: false},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.holiday, IsNorwegianHoliday(tc.date))
			_, listed := NorwegianHolidays(tc.date.Year)[tc.date]
			assert.Equal(t, tc.holiday, listed)
		})
	}
}

func TestSelectProfile_FirstMatchWins(t *testing.T) {
	profiles := []model.TariffProfile{
		{Name: "a", EffectiveFrom: datePtr(2024, 1, 1)},
		{Name: "b", EffectiveFrom: datePtr(2024, 6, 1)},
	}
	p, ok := SelectProfile(model.NewDate(2024, 7, 1), profiles)
	require.True(t, ok)
	assert.Equal(t, "a", p.Name)

	_, ok = SelectProfile(model.NewDate(2023, 7, 1), profiles)
	assert.False(t, ok)
}

func TestValidateProfiles(t *testing.T) {
	tests := map[string]struct {
		profiles []model.TariffProfile
		wantErr  error
	}{
		"valid": {
			profiles: []model.TariffProfile{
				{Name: "a", EffectiveFrom: datePtr(2023, 1, 1), EffectiveTo: datePtr(2023, 12, 31), Windows: []model.TariffWindow{
					window(model.Monday, "06:00", "22:00", 1),
					window(model.Monday, "22:00", "06:00", 1),
				}},
				{Name: "b", EffectiveFrom: datePtr(2024, 1, 1)},
			},
		},
		"overlapping ranges": {
			profiles: []model.TariffProfile{
				{Name: "a", EffectiveFrom: datePtr(2023, 1, 1)},
				{Name: "b", EffectiveFrom: datePtr(2024, 1, 1), EffectiveTo: datePtr(2024, 12, 31)},
			},
			wantErr: ErrOverlappingProfiles,
		},
		"two open profiles": {
			profiles: []model.TariffProfile{{Name: "a"}, {Name: "b"}},
			wantErr:  ErrOverlappingProfiles,
		},
		"overlapping windows": {
			profiles: []model.TariffProfile{
				{Name: "a", Windows: []model.TariffWindow{
					window(model.Monday, "06:00", "22:00", 1),
					window(model.Monday, "21:00", "07:00", 1),
				}},
			},
			wantErr: ErrOverlappingWindows,
		},
		"bad day": {
			profiles: []model.TariffProfile{
				{Name: "a", Windows: []model.TariffWindow{window(7, "06:00", "22:00", 1)}},
			},
			wantErr: ErrInvalidWindow,
		},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			err := ValidateProfiles(tt.profiles)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}
}

func TestLoadTariffFile(t *testing.T) {
	const doc = `
default_rate: 42.5
profiles:
  - name: Elvia 2024
    effective_from: 2024-01-01
    rates_include_tax: false
    holidays: ["2024-12-24"]
    windows:
      - {day_of_week: 0, start_time: "06:00", end_time: "22:00", energy_rate: 35.5}
      - {day_of_week: 0, start_time: "22:00", end_time: "06:00", energy_rate: 25.5, time_rate: 2}
`
	f, err := LoadTariffFile(strings.NewReader(doc))
	require.NoError(t, err)
	assert.Equal(t, 42.5, f.DefaultRateOre)
	require.Len(t, f.Profiles, 1)

	p := f.Profiles[0]
	assert.Equal(t, "Elvia 2024", p.Name)
	require.NotNil(t, p.EffectiveFrom)
	assert.Equal(t, model.NewDate(2024, 1, 1), *p.EffectiveFrom)
	assert.Nil(t, p.EffectiveTo)
	assert.Equal(t, []model.Date{model.NewDate(2024, 12, 24)}, p.Holidays)
	require.Len(t, p.Windows, 2)
	assert.Equal(t, model.MustParseClockTime("22:00"), p.Windows[1].Start)
	require.NotNil(t, p.Windows[1].TimeRateOre)
	assert.Equal(t, 27.5, p.Windows[1].RateOre())
}

func TestLoadTariffFile_RejectsOverlap(t *testing.T) {
	const doc = `
profiles:
  - name: a
  - name: b
`
	_, err := LoadTariffFile(strings.NewReader(doc))
	assert.ErrorIs(t, err, ErrOverlappingProfiles)
}
