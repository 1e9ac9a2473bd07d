package tou

import (
	"errors"
	"fmt"

	"github.com/anicoll/ev-reimbursement/internal/pkg/model"
)

var (
	ErrOverlappingProfiles = errors.New("tariff profiles have overlapping effective ranges")
	ErrOverlappingWindows  = errors.New("tariff windows overlap")
	ErrInvalidWindow       = errors.New("invalid tariff window")
)

// ValidateProfiles checks that at most one profile is active on any date and that no
// two windows in a profile claim the same time on the same day.
func ValidateProfiles(profiles []model.TariffProfile) error {
	var errs []error
	for i := range profiles {
		if err := ValidateProfile(profiles[i]); err != nil {
			errs = append(errs, err)
		}
		for j := i + 1; j < len(profiles); j++ {
			if rangesOverlap(profiles[i], profiles[j]) {
				errs = append(errs, fmt.Errorf("%w: %q and %q", ErrOverlappingProfiles, profiles[i].Name, profiles[j].Name))
			}
		}
	}
	return errors.Join(errs...)
}

func ValidateProfile(p model.TariffProfile) error {
	var errs []error
	if p.EffectiveFrom != nil && p.EffectiveTo != nil && p.EffectiveTo.Before(*p.EffectiveFrom) {
		errs = append(errs, fmt.Errorf("profile %q: effective_to is before effective_from", p.Name))
	}

	type segment struct{ from, to int }
	byDay := map[int][]segment{}
	for i, w := range p.Windows {
		if w.DayOfWeek < model.Monday || w.DayOfWeek > model.Sunday {
			errs = append(errs, fmt.Errorf("%w: profile %q window %d: day_of_week %d", ErrInvalidWindow, p.Name, i, w.DayOfWeek))
			continue
		}
		if w.EnergyRateOre < 0 || (w.TimeRateOre != nil && *w.TimeRateOre < 0) {
			errs = append(errs, fmt.Errorf("%w: profile %q window %d: negative rate", ErrInvalidWindow, p.Name, i))
		}
		start, end := w.Start.Seconds(), w.End.Seconds()
		var segs []segment
		switch {
		case start == end:
			segs = []segment{{0, 24 * 3600}}
		case end < start:
			segs = []segment{{start, 24 * 3600}, {0, end}}
		default:
			segs = []segment{{start, end}}
		}
		for _, s := range segs {
			for _, o := range byDay[w.DayOfWeek] {
				if s.from < o.to && o.from < s.to {
					errs = append(errs, fmt.Errorf("%w: profile %q day %d window %s-%s", ErrOverlappingWindows, p.Name, w.DayOfWeek, w.Start, w.End))
				}
			}
		}
		byDay[w.DayOfWeek] = append(byDay[w.DayOfWeek], segs...)
	}
	return errors.Join(errs...)
}

func rangesOverlap(a, b model.TariffProfile) bool {
	aStartsBeforeBEnds := a.EffectiveFrom == nil || b.EffectiveTo == nil || !a.EffectiveFrom.After(*b.EffectiveTo)
	bStartsBeforeAEnds := b.EffectiveFrom == nil || a.EffectiveTo == nil || !b.EffectiveFrom.After(*a.EffectiveTo)
	return aStartsBeforeBEnds && bStartsBeforeAEnds
}
