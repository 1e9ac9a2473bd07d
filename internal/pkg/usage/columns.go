package usage

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
)

type columns struct {
	start, end, kwh, rfid int
}

// Header names seen in charger portal exports (Easee, Zaptec, Elvia), normalised to lower case.
var (
	startHeaders = []string{"start", "started", "start time", "start date", "starttid", "startet", "fra", "from", "session start", "startdato"}
	endHeaders   = []string{"end", "ended", "end time", "end date", "stop", "stopped", "stop time", "sluttid", "slutt", "stopptid", "til", "to", "session end", "sluttdato"}
	kwhHeaders   = []string{"kwh", "energy", "energi", "forbruk", "consumption", "energy (kwh)", "energi (kwh)", "forbruk (kwh)", "energy kwh"}
	rfidHeaders  = []string{"rfid", "rfid tag", "tag", "key", "nøkkel", "brikke", "id tag", "token", "authorization"}
)

func normaliseHeader(h string) string {
	h = strings.TrimPrefix(h, "\ufeff")
	return strings.Join(strings.Fields(strings.ToLower(h)), " ")
}

func detectColumns(header []string) (columns, error) {
	names := lo.Map(header, func(h string, _ int) string {
		return normaliseHeader(h)
	})
	find := func(aliases []string) int {
		_, idx, ok := lo.FindIndexOf(names, func(n string) bool {
			return lo.Contains(aliases, n)
		})
		if !ok {
			return -1
		}
		return idx
	}

	cols := columns{
		start: find(startHeaders),
		end:   find(endHeaders),
		kwh:   find(kwhHeaders),
		rfid:  find(rfidHeaders),
	}
	if cols.kwh < 0 {
		_, cols.kwh, _ = lo.FindIndexOf(names, func(n string) bool {
			return strings.Contains(n, "kwh")
		})
	}

	var missing []string
	if cols.start < 0 {
		missing = append(missing, "start")
	}
	if cols.end < 0 {
		missing = append(missing, "end")
	}
	if cols.kwh < 0 {
		missing = append(missing, "kwh")
	}
	if cols.rfid < 0 {
		missing = append(missing, "rfid")
	}
	if len(missing) > 0 {
		return columns{}, fmt.Errorf("%w: %s (header %q)", ErrMissingColumns, strings.Join(missing, ", "), header)
	}
	return cols, nil
}
