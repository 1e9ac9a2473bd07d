package usage

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/anicoll/ev-reimbursement/internal/pkg/model"
)

var (
	ErrEmptyFile         = errors.New("usage file has no rows")
	ErrMissingColumns    = errors.New("usage file is missing required columns")
	ErrUnsupportedFormat = errors.New("unsupported usage file format")
	ErrInvalidRFID       = errors.New("invalid rfid")
	ErrMissingRFID       = errors.New("missing rfid")
	ErrUnparseableTime   = errors.New("unparseable timestamp")
	ErrUnparseableEnergy = errors.New("unparseable energy value")
	errRowFilteredByRFID = errors.New("filtered")
)

type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

var rfidPattern = regexp.MustCompile(`^[A-Za-z0-9:_\-]{1,64}$`)

// RowError describes a data row that could not be turned into a session.
type RowError struct {
	Line int   `json:"line"`
	Err  error `json:"-"`
}

func (e RowError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e RowError) Unwrap() error {
	return e.Err
}

func (e RowError) MarshalText() ([]byte, error) {
	return []byte(e.Error()), nil
}

type Result struct {
	Sessions []model.ChargingSession `json:"sessions"`
	Skipped  []RowError              `json:"skipped,omitempty"`
	Filtered int                     `json:"filtered"`
}

type importer struct {
	loc    *time.Location
	rfid   string
	logger *zap.Logger
}

// WithRFID keeps only rows charged with the given key/tag.
func WithRFID(rfid string) func(*importer) {
	return func(i *importer) {
		i.rfid = strings.TrimSpace(rfid)
	}
}

// New returns an importer that reads naive timestamps in loc.
func New(loc *time.Location, opts ...func(*importer)) *importer {
	i := &importer{
		loc:    loc,
		logger: zap.L(),
	}
	for _, o := range opts {
		o(i)
	}
	return i
}

// DetectFormat guesses the file type from its name, content type and leading bytes.
func DetectFormat(filename, contentType string, head []byte) (Format, error) {
	switch {
	case bytes.HasPrefix(head, []byte("PK\x03\x04")):
		return FormatXLSX, nil
	case strings.Contains(contentType, "spreadsheetml"), strings.EqualFold(filepath.Ext(filename), ".xlsx"):
		return FormatXLSX, nil
	case strings.Contains(contentType, "csv"), strings.HasPrefix(contentType, "text/"),
		strings.EqualFold(filepath.Ext(filename), ".csv"), len(head) > 0:
		return FormatCSV, nil
	}
	return "", ErrUnsupportedFormat
}

func (i *importer) Import(r io.Reader, format Format) (Result, error) {
	switch format {
	case FormatCSV:
		return i.ImportCSV(r)
	case FormatXLSX:
		return i.ImportXLSX(r)
	default:
		return Result{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// fromRows turns a header row and data rows into sessions. firstLine is the line number of the header.
func (i *importer) fromRows(records [][]string, firstLine int, parseTime func(string) (time.Time, error)) (Result, error) {
	if len(records) == 0 {
		return Result{}, ErrEmptyFile
	}
	cols, err := detectColumns(records[0])
	if err != nil {
		return Result{}, err
	}

	res := Result{}
	for n, rec := range records[1:] {
		line := firstLine + n + 1
		if blank(rec) {
			continue
		}
		s, err := i.parseRow(cols, rec, parseTime)
		if errors.Is(err, errRowFilteredByRFID) {
			res.Filtered++
			continue
		}
		if err != nil {
			res.Skipped = append(res.Skipped, RowError{Line: line, Err: err})
			continue
		}
		res.Sessions = append(res.Sessions, s)
	}

	i.logger.Info("imported usage file",
		zap.Int("sessions", len(res.Sessions)),
		zap.Int("skipped", len(res.Skipped)),
		zap.Int("filtered", res.Filtered))
	return res, nil
}

func (i *importer) parseRow(cols columns, rec []string, parseTime func(string) (time.Time, error)) (model.ChargingSession, error) {
	rfid := strings.TrimSpace(field(rec, cols.rfid))
	if rfid == "" {
		return model.ChargingSession{}, ErrMissingRFID
	}
	if !rfidPattern.MatchString(rfid) {
		return model.ChargingSession{}, fmt.Errorf("%w: %q", ErrInvalidRFID, rfid)
	}
	if i.rfid != "" && !strings.EqualFold(rfid, i.rfid) {
		return model.ChargingSession{}, errRowFilteredByRFID
	}

	start, err := parseTime(field(rec, cols.start))
	if err != nil {
		return model.ChargingSession{}, err
	}
	end, err := parseTime(field(rec, cols.end))
	if err != nil {
		return model.ChargingSession{}, err
	}
	kwh, err := ParseDecimal(field(rec, cols.kwh))
	if err != nil {
		return model.ChargingSession{}, err
	}
	return model.NewChargingSession(rfid, start, end, kwh)
}

var timeLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"02.01.2006 15:04:05",
	"02.01.2006 15:04",
	"02.01.2006 kl. 15:04",
	"02/01/2006 15:04:05",
	"02/01/2006 15:04",
}

// ParseTime reads an exported timestamp. Values with an offset keep it, naive values are read in loc.
func ParseTime(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrUnparseableTime, s)
}

// ParseDecimal accepts both "12.5" and the Norwegian "12,5" and "1 234,5" notations.
func ParseDecimal(s string) (float64, error) {
	v := strings.TrimSpace(s)
	v = strings.TrimSuffix(strings.TrimSuffix(v, "kWh"), "kwh")
	v = strings.NewReplacer(" ", "", "\u00a0", "", "\u202f", "").Replace(v)
	if strings.Contains(v, ",") {
		v = strings.ReplaceAll(v, ".", "")
		v = strings.ReplaceAll(v, ",", ".")
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrUnparseableEnergy, s)
	}
	return f, nil
}

func field(rec []string, idx int) string {
	if idx < 0 || idx >= len(rec) {
		return ""
	}
	return rec[idx]
}

func blank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
