package usage

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// ImportXLSX reads the first sheet of a workbook. Date cells are read as Excel serial
// numbers and interpreted as wall clock time in the importer's location.
func (i *importer) ImportXLSX(r io.Reader) (Result, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return Result{}, fmt.Errorf("opening workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return Result{}, ErrEmptyFile
	}
	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return Result{}, fmt.Errorf("reading sheet %s: %w", sheets[0], err)
	}
	date1904 := false
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		date1904 = *props.Date1904
	}

	return i.fromRows(rows, 1, func(s string) (time.Time, error) {
		serial, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return ParseTime(s, i.loc)
		}
		t, err := excelize.ExcelDateToTime(serial, date1904)
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: %q", ErrUnparseableTime, s)
		}
		t = t.Round(time.Second)
		return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, i.loc), nil
	})
}
