package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Day of week indices used by tariff windows. Monday is 0.
const (
	Monday = iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

const secondsPerDay = 24 * 60 * 60

// DayOfWeek converts a Go weekday (Sunday=0) into a tariff day index (Monday=0).
func DayOfWeek(wd time.Weekday) int {
	return (int(wd) + 6) % 7
}

// ClockTime is a time of day without a date, e.g. "22:00".
type ClockTime struct {
	Hour   int
	Minute int
	Second int
}

// ParseClockTime accepts "HH:MM" or "HH:MM:SS". "24:00" is accepted as end of day.
func ParseClockTime(s string) (ClockTime, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return ClockTime{}, fmt.Errorf("invalid clock time %q", s)
	}
	vals := make([]int, 3)
	for i, p := range parts {
		v, err := strconv.Atoi(p)
		if err != nil {
			return ClockTime{}, fmt.Errorf("invalid clock time %q: %w", s, err)
		}
		vals[i] = v
	}
	c := ClockTime{Hour: vals[0], Minute: vals[1], Second: vals[2]}
	if c.Minute < 0 || c.Minute > 59 || c.Second < 0 || c.Second > 59 || c.Hour < 0 || c.Hour > 24 {
		return ClockTime{}, fmt.Errorf("invalid clock time %q", s)
	}
	if c.Hour == 24 && (c.Minute != 0 || c.Second != 0) {
		return ClockTime{}, fmt.Errorf("invalid clock time %q", s)
	}
	return c, nil
}

// MustParseClockTime panics on invalid input. Only use it with constants.
func MustParseClockTime(s string) ClockTime {
	c, err := ParseClockTime(s)
	if err != nil {
		panic(err)
	}
	return c
}

// ClockOf returns the local clock time of t.
func ClockOf(t time.Time) ClockTime {
	return ClockTime{Hour: t.Hour(), Minute: t.Minute(), Second: t.Second()}
}

// Seconds since midnight.
func (c ClockTime) Seconds() int {
	return c.Hour*3600 + c.Minute*60 + c.Second
}

func (c ClockTime) String() string {
	if c.Second != 0 {
		return fmt.Sprintf("%02d:%02d:%02d", c.Hour, c.Minute, c.Second)
	}
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

func (c ClockTime) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *ClockTime) UnmarshalText(b []byte) error {
	parsed, err := ParseClockTime(string(b))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// TariffWindow is a day-of-week and time-of-day rate rule. Rates are in øre per kWh.
type TariffWindow struct {
	DayOfWeek     int       `json:"day_of_week" yaml:"day_of_week"`
	Start         ClockTime `json:"start_time" yaml:"start_time"`
	End           ClockTime `json:"end_time" yaml:"end_time"` // may be before Start, wrapping past midnight.
	EnergyRateOre float64   `json:"energy_rate" yaml:"energy_rate"`
	TimeRateOre   *float64  `json:"time_rate,omitempty" yaml:"time_rate,omitempty"`
}

// Wraps reports whether the window spans midnight.
func (w TariffWindow) Wraps() bool {
	return w.End.Seconds() < w.Start.Seconds()
}

// Contains reports whether the clock time falls within [Start, End).
// A window with equal start and end covers the whole day.
func (w TariffWindow) Contains(c ClockTime) bool {
	start, end, t := w.Start.Seconds(), w.End.Seconds(), c.Seconds()
	switch {
	case start == end || (start == 0 && end == secondsPerDay):
		return true
	case end < start:
		return t >= start || t < end
	default:
		return t >= start && t < end
	}
}

// RateOre is the sum of the energy rate and the optional time rate.
func (w TariffWindow) RateOre() float64 {
	rate := w.EnergyRateOre
	if w.TimeRateOre != nil {
		rate += *w.TimeRateOre
	}
	return rate
}

// TariffProfile is a versioned grid tariff schedule for an organization.
// EffectiveFrom and EffectiveTo are inclusive calendar dates; nil means open ended.
type TariffProfile struct {
	ID                    uuid.UUID      `json:"id" yaml:"-"`
	OrganizationID        uuid.UUID      `json:"organization_id" yaml:"-"`
	Name                  string         `json:"name" yaml:"name"`
	EffectiveFrom         *Date          `json:"effective_from,omitempty" yaml:"effective_from,omitempty"`
	EffectiveTo           *Date          `json:"effective_to,omitempty" yaml:"effective_to,omitempty"`
	Windows               []TariffWindow `json:"windows" yaml:"windows"`
	Holidays              []Date         `json:"holidays,omitempty" yaml:"holidays,omitempty"`
	IncludePublicHolidays bool           `json:"include_public_holidays" yaml:"include_public_holidays"`
	RatesIncludeTax       bool           `json:"rates_include_tax" yaml:"rates_include_tax"`
}

// Covers reports whether the local calendar date d lies inside the effective range.
func (p TariffProfile) Covers(d Date) bool {
	if p.EffectiveFrom != nil && d.Before(*p.EffectiveFrom) {
		return false
	}
	if p.EffectiveTo != nil && d.After(*p.EffectiveTo) {
		return false
	}
	return true
}

func (p TariffProfile) IsHoliday(d Date) bool {
	for _, h := range p.Holidays {
		if h == d {
			return true
		}
	}
	return false
}

type TariffProfiles []TariffProfile
