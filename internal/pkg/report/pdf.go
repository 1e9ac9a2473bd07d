package report

import (
	"fmt"
	"io"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/anicoll/ev-reimbursement/internal/pkg/pricing"
)

var pdfColumns = []struct {
	title string
	width float64
	align string
}{
	{"Start", 32, "L"},
	{"Slutt", 32, "L"},
	{"kWh", 20, "R"},
	{"Energi", 24, "R"},
	{"Nett", 22, "R"},
	{"Strømstøtte", 28, "R"},
	{"Totalt", 24, "R"},
}

// WritePDF renders an A4 reimbursement statement.
func WritePDF(w io.Writer, r pricing.MonthlyReport, loc *time.Location) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	// Core fonts are cp1252, which covers æ, ø and å.
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(tr(fmt.Sprintf("Refusjon lading %s", r.Month)), false)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 14)
	pdf.Cell(0, 8, tr("Refusjon av hjemmelading"))
	pdf.Ln(10)

	pdf.SetFont("Arial", "", 10)
	for _, line := range []string{
		fmt.Sprintf("Ansatt: %s", r.Employee.Name),
		fmt.Sprintf("Måned: %s", r.Month),
		fmt.Sprintf("Prisområde: %s", r.PriceArea),
		fmt.Sprintf("Prismodell: %s", r.Policy),
	} {
		pdf.Cell(0, 6, tr(line))
		pdf.Ln(5)
	}
	pdf.Ln(4)

	pdf.SetFont("Arial", "B", 9)
	for _, c := range pdfColumns {
		pdf.CellFormat(c.width, 6, tr(c.title), "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	for _, s := range r.Sessions {
		values := []string{
			s.Session.Start.In(loc).Format(timeLayout),
			s.Session.End.In(loc).Format(timeLayout),
			norwegian(Kwh(s.Kwh), 3),
			norwegian(Nok(s.EnergyNok), 2),
			norwegian(Nok(s.GridNok), 2),
			norwegian(Nok(s.SubsidyNok), 2),
			norwegian(Nok(s.TotalNok), 2),
		}
		for i, c := range pdfColumns {
			pdf.CellFormat(c.width, 6, values[i], "1", 0, c.align, false, 0, "")
		}
		pdf.Ln(-1)
	}

	pdf.SetFont("Arial", "B", 9)
	totals := []string{
		"Totalt", "",
		norwegian(Kwh(r.Kwh), 3),
		norwegian(Nok(r.EnergyNok), 2),
		norwegian(Nok(r.GridNok), 2),
		norwegian(Nok(r.SubsidyNok), 2),
		norwegian(Nok(r.TotalNok), 2),
	}
	for i, c := range pdfColumns {
		pdf.CellFormat(c.width, 6, totals[i], "1", 0, c.align, false, 0, "")
	}
	pdf.Ln(10)

	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, tr(fmt.Sprintf("Til utbetaling: %s kr", norwegian(Nok(r.TotalNok), 2))))
	pdf.Ln(5)
	if r.SubsidyNok > 0 {
		pdf.Cell(0, 6, tr(fmt.Sprintf("Strømstøtte trukket fra: %s kr", norwegian(Nok(r.SubsidyNok), 2))))
		pdf.Ln(5)
	}
	if len(r.Warnings) > 0 {
		pdf.Ln(4)
		pdf.SetFont("Arial", "I", 8)
		for _, warning := range r.Warnings {
			pdf.MultiCell(0, 4, tr(warning), "", "L", false)
		}
	}

	return pdf.Output(w)
}
