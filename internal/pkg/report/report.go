package report

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gosimple/slug"
	"github.com/shopspring/decimal"

	"github.com/anicoll/ev-reimbursement/internal/pkg/pricing"
)

var ErrUnknownFormat = errors.New("unknown report format")

type Format string

const (
	FormatPDF  Format = "pdf"
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatPDF, FormatCSV, FormatXLSX:
		return f, nil
	case "":
		return FormatPDF, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv; charset=utf-8"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "application/pdf"
	}
}

// FileName builds a download name such as "refusjon-kari-nordmann-2024-03.pdf".
func FileName(r pricing.MonthlyReport, f Format) string {
	return slug.Make(fmt.Sprintf("refusjon %s %s", r.Employee.Name, r.Month)) + "." + string(f)
}

// Write renders the monthly report. Timestamps are printed in loc.
func Write(w io.Writer, f Format, r pricing.MonthlyReport, loc *time.Location) error {
	switch f {
	case FormatPDF:
		return WritePDF(w, r, loc)
	case FormatCSV:
		return WriteCSV(w, r, loc)
	case FormatXLSX:
		return WriteXLSX(w, r, loc)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, f)
	}
}

// Nok rounds an amount to whole øre, half away from zero.
func Nok(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v).Round(2)
}

// Kwh rounds energy to three decimals.
func Kwh(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v).Round(3)
}

// norwegian prints d with a decimal comma.
func norwegian(d decimal.Decimal, places int32) string {
	return strings.Replace(d.StringFixed(places), ".", ",", 1)
}

const timeLayout = "02.01.2006 15:04"
