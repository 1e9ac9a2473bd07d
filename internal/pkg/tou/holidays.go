package tou

import (
	"sync"
	"time"

	"github.com/rickar/cal/v2"
	"github.com/rickar/cal/v2/no"

	"github.com/anicoll/ev-reimbursement/internal/pkg/model"
)

var (
	norway       = newNorwegianCalendar()
	holidayCache sync.Map // year -> map[model.Date]string
)

func newNorwegianCalendar() *cal.BusinessCalendar {
	c := cal.NewBusinessCalendar()
	c.AddHoliday(no.Holidays...)
	return c
}

// NorwegianHolidays returns the public holidays (helligdager) for the year, keyed by date.
func NorwegianHolidays(year int) map[model.Date]string {
	if cached, ok := holidayCache.Load(year); ok {
		return cached.(map[model.Date]string)
	}
	days := make(map[model.Date]string, len(no.Holidays))
	for _, h := range no.Holidays {
		actual, _ := h.Calc(year)
		if actual.IsZero() {
			continue
		}
		days[model.DateOf(actual)] = h.Name
	}
	holidayCache.Store(year, days)
	return days
}

func IsNorwegianHoliday(d model.Date) bool {
	actual, _, _ := norway.IsHoliday(d.In(time.UTC))
	return actual
}
