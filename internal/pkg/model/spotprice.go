package model

import (
	"fmt"
	"strings"
	"time"
)

// PriceArea is one of the five Norwegian bidding zones.
type PriceArea string

const (
	NO1 PriceArea = "NO1" // Øst
	NO2 PriceArea = "NO2" // Sør
	NO3 PriceArea = "NO3" // Midt
	NO4 PriceArea = "NO4" // Nord
	NO5 PriceArea = "NO5" // Vest
)

var PriceAreas = []PriceArea{NO1, NO2, NO3, NO4, NO5}

func ParsePriceArea(s string) (PriceArea, error) {
	a := PriceArea(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range PriceAreas {
		if a == known {
			return a, nil
		}
	}
	return "", fmt.Errorf("unknown price area %q", s)
}

func (a PriceArea) String() string {
	return string(a)
}

// SpotPrice is the day-ahead price for one hour, NOK/kWh without VAT.
type SpotPrice struct {
	Area      PriceArea `json:"area"`
	HourStart time.Time `json:"hour_start"`
	NokPerKwh float64   `json:"nok_per_kwh"`
	FetchedAt time.Time `json:"fetched_at"`
}

type SpotPrices []SpotPrice

// HourlyPrices maps the UTC start of an hour to its spot price.
type HourlyPrices map[time.Time]float64

func (s SpotPrices) Hourly() HourlyPrices {
	out := make(HourlyPrices, len(s))
	for _, p := range s {
		out[p.HourStart.UTC().Truncate(time.Hour)] = p.NokPerKwh
	}
	return out
}

// At returns the price for the hour containing t.
func (h HourlyPrices) At(t time.Time) (float64, bool) {
	p, ok := h[t.UTC().Truncate(time.Hour)]
	return p, ok
}

// DayMean averages the known prices for the local calendar day of t.
func (h HourlyPrices) DayMean(t time.Time, loc *time.Location) (float64, bool) {
	local := t.In(loc)
	dayStart := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	dayEnd := dayStart.AddDate(0, 0, 1)
	var sum float64
	var n int
	for cur := dayStart; cur.Before(dayEnd); cur = cur.Add(time.Hour) {
		if p, ok := h.At(cur); ok {
			sum += p
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}

// HoursIn is the number of clock hours on date d in loc, 23 or 25 on DST changes.
func HoursIn(d Date, loc *time.Location) int {
	return int(d.AddDays(1).In(loc).Sub(d.In(loc)) / time.Hour)
}

// CoversDay reports whether every hour of the local date d has a price.
func (h HourlyPrices) CoversDay(d Date, loc *time.Location) bool {
	start := d.In(loc)
	for i := range HoursIn(d, loc) {
		if _, ok := h.At(start.Add(time.Duration(i) * time.Hour)); !ok {
			return false
		}
	}
	return true
}

func (h HourlyPrices) Merge(o HourlyPrices) {
	for k, v := range o {
		h[k] = v
	}
}
