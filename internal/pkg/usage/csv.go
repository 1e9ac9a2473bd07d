package usage

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"time"
)

// ImportCSV reads a comma, semicolon or tab separated usage export.
func (i *importer) ImportCSV(r io.Reader) (Result, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Result{}, err
	}
	data = bytes.TrimPrefix(data, []byte("\ufeff"))
	if len(bytes.TrimSpace(data)) == 0 {
		return Result{}, ErrEmptyFile
	}

	cr := csv.NewReader(bytes.NewReader(data))
	cr.Comma = sniffDelimiter(data)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return Result{}, fmt.Errorf("reading csv: %w", err)
	}
	return i.fromRows(records, 1, func(s string) (time.Time, error) {
		return ParseTime(s, i.loc)
	})
}

// sniffDelimiter picks the separator that occurs most often in the header line.
func sniffDelimiter(data []byte) rune {
	sc := bufio.NewScanner(bytes.NewReader(data))
	if !sc.Scan() {
		return ','
	}
	header := sc.Bytes()
	best, count := ',', bytes.Count(header, []byte{','})
	for _, d := range []rune{';', '\t'} {
		if n := bytes.Count(header, []byte(string(d))); n > count {
			best, count = d, n
		}
	}
	return best
}
