package report

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/anicoll/ev-reimbursement/internal/pkg/pricing"
)

// WriteXLSX renders a workbook with a summary sheet and a sessions sheet.
func WriteXLSX(w io.Writer, r pricing.MonthlyReport, loc *time.Location) error {
	f := excelize.NewFile()
	defer f.Close()

	summarySheet := "oppsummering"
	sessionsSheet := "okter"
	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return err
	}
	if _, err := f.NewSheet(sessionsSheet); err != nil {
		return err
	}

	summary := [][]any{
		{"Ansatt", r.Employee.Name},
		{"Måned", r.Month.String()},
		{"Prisområde", string(r.PriceArea)},
		{"Prismodell", string(r.Policy)},
		{"kWh", Kwh(r.Kwh).InexactFloat64()},
		{"Energi (NOK)", Nok(r.EnergyNok).InexactFloat64()},
		{"Nett (NOK)", Nok(r.GridNok).InexactFloat64()},
		{"Strømstøtte (NOK)", Nok(r.SubsidyNok).InexactFloat64()},
		{"Totalt (NOK)", Nok(r.TotalNok).InexactFloat64()},
	}
	for i, row := range summary {
		if err := f.SetSheetRow(summarySheet, fmt.Sprintf("A%d", i+1), &row); err != nil {
			return err
		}
	}

	header := []any{"Start", "Slutt", "RFID", "kWh", "Energi (NOK)", "Nett (NOK)", "Strømstøtte (NOK)", "Totalt (NOK)"}
	if err := f.SetSheetRow(sessionsSheet, "A1", &header); err != nil {
		return err
	}
	for i, s := range r.Sessions {
		row := []any{
			s.Session.Start.In(loc).Format(timeLayout),
			s.Session.End.In(loc).Format(timeLayout),
			s.Session.RFID,
			Kwh(s.Kwh).InexactFloat64(),
			Nok(s.EnergyNok).InexactFloat64(),
			Nok(s.GridNok).InexactFloat64(),
			Nok(s.SubsidyNok).InexactFloat64(),
			Nok(s.TotalNok).InexactFloat64(),
		}
		if err := f.SetSheetRow(sessionsSheet, fmt.Sprintf("A%d", i+2), &row); err != nil {
			return err
		}
	}

	return f.Write(w)
}
