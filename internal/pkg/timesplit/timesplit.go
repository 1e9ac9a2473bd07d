package timesplit

import (
	"time"

	"github.com/anicoll/ev-reimbursement/internal/pkg/model"
)

const DSTWarning = "session crosses DST boundary"

type Result struct {
	Fragments []model.TimeFragment `json:"fragments"`
	Warnings  []string             `json:"warnings,omitempty"`
}

// Split divides [start, end) into local clock-hour fragments and apportions totalKwh
// by the minutes each fragment covers. An empty or inverted window yields no fragments.
func Split(start, end time.Time, totalKwh float64, loc *time.Location) Result {
	if loc == nil {
		loc = time.UTC
	}
	res := Result{Fragments: []model.TimeFragment{}}
	if !end.After(start) {
		return res
	}

	start = start.In(loc)
	end = end.In(loc)
	totalMinutes := end.Sub(start).Minutes()

	_, startOffset := start.Zone()
	_, endOffset := end.Zone()
	crossesDST := startOffset != endOffset

	for cursor := start; cursor.Before(end); {
		hourStart := truncateLocalHour(cursor)
		hourEnd := hourStart.Add(time.Hour)

		fragEnd := end
		if hourEnd.Before(end) {
			fragEnd = hourEnd
		}
		minutes := fragEnd.Sub(cursor).Minutes()

		res.Fragments = append(res.Fragments, model.TimeFragment{
			Hour:            hourStart,
			Kwh:             totalKwh * (minutes / totalMinutes),
			Minutes:         minutes,
			IsDSTTransition: crossesDST,
		})
		cursor = hourEnd
	}

	if crossesDST {
		res.Warnings = append(res.Warnings, DSTWarning)
	}
	return res
}

// SplitSession splits a validated charging session.
func SplitSession(s model.ChargingSession, loc *time.Location) Result {
	return Split(s.Start, s.End, s.Kwh, loc)
}

// truncateLocalHour steps back to the top of the local hour in absolute time, so the
// repeated hour on a fall-back day is not confused with its twin.
func truncateLocalHour(t time.Time) time.Time {
	back := time.Duration(t.Minute())*time.Minute +
		time.Duration(t.Second())*time.Second +
		time.Duration(t.Nanosecond())
	return t.Add(-back)
}
