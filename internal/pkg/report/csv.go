package report

import (
	"encoding/csv"
	"io"
	"time"

	"github.com/anicoll/ev-reimbursement/internal/pkg/pricing"
)

var csvHeader = []string{"session", "rfid", "start", "slutt", "kwh", "energi_nok", "nett_nok", "stromstotte_nok", "totalt_nok"}

// WriteCSV writes one row per session and a closing total row, semicolon separated with
// decimal commas so spreadsheets with Norwegian locale read it directly.
func WriteCSV(w io.Writer, r pricing.MonthlyReport, loc *time.Location) error {
	cw := csv.NewWriter(w)
	cw.Comma = ';'

	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, s := range r.Sessions {
		if err := cw.Write([]string{
			s.Session.ID.String(),
			s.Session.RFID,
			s.Session.Start.In(loc).Format(timeLayout),
			s.Session.End.In(loc).Format(timeLayout),
			norwegian(Kwh(s.Kwh), 3),
			norwegian(Nok(s.EnergyNok), 2),
			norwegian(Nok(s.GridNok), 2),
			norwegian(Nok(s.SubsidyNok), 2),
			norwegian(Nok(s.TotalNok), 2),
		}); err != nil {
			return err
		}
	}
	if err := cw.Write([]string{
		"TOTALT", "", "", "",
		norwegian(Kwh(r.Kwh), 3),
		norwegian(Nok(r.EnergyNok), 2),
		norwegian(Nok(r.GridNok), 2),
		norwegian(Nok(r.SubsidyNok), 2),
		norwegian(Nok(r.TotalNok), 2),
	}); err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}
