package domain

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

// ErrMalformedRow is returned in strict mode when a data line's field count
// differs from the header's.
var ErrMalformedRow = errors.New("malformed row")

// IngestOptions controls CSV normalization.
type IngestOptions struct {
	// Location is the zone timestamps are rendered in. Nil means UTC+8.
	Location *time.Location
	// Strict rejects rows whose field count differs from the header and
	// timestamps that cannot be parsed, instead of normalizing them inline.
	Strict bool
}

// IngestResult holds the normalized records and counts of the anomalies that
// were absorbed while producing them.
type IngestResult struct {
	Records        []Record
	ShortRows      int // rows with fewer fields than the header
	LongRows       int // rows with more fields than the header
	InvalidTimes   int
	InvalidNumbers int
}

// Ingest converts raw CSV text into normalized records using the default
// lenient options.
func Ingest(raw string) []Record {
	res, _ := ParseCSV(raw, IngestOptions{})
	return res.Records
}

// ParseCSV converts comma-separated text into one Record per data line, in
// file order.
//
// The whole text is trimmed, then split on "\n" only; carriage returns are
// left in place and removed later by Sanitize. Fields are split on "," with no
// quoting support: a comma inside a value shifts every later column. Values
// are zipped with header names by position and coerced by column name:
//
//	time                 parsed as an instant, rendered in opts.Location as CanonicalLayout
//	weight, height, bmi  ParseNumber (NaN when not numeric)
//	anything else        copied verbatim
//
// In lenient mode (the default) a short row yields nil for the missing
// fields, surplus values are dropped, and an unparseable timestamp is kept
// verbatim. Empty or header-only input returns no records and no error.
func ParseCSV(raw string, opts IngestOptions) (IngestResult, error) {
	loc := opts.Location
	if loc == nil {
		loc = ChinaStandardTime
	}

	var res IngestResult
	text := strings.TrimSpace(raw)
	if text == "" {
		res.Records = []Record{}
		return res, nil
	}

	lines := strings.Split(text, "\n")
	headers := strings.Split(lines[0], ",")
	res.Records = make([]Record, 0, len(lines)-1)

	for i, line := range lines[1:] {
		lineNum := i + 2
		values := strings.Split(line, ",")
		switch {
		case len(values) < len(headers):
			res.ShortRows++
		case len(values) > len(headers):
			res.LongRows++
		}
		if opts.Strict && len(values) != len(headers) {
			return IngestResult{}, fmt.Errorf("line %d: %w: %d fields, header has %d",
				lineNum, ErrMalformedRow, len(values), len(headers))
		}

		rec := NewRecord(len(headers))
		for idx, header := range headers {
			if idx >= len(values) {
				rec.Set(header, missingValue(header))
				if header == FieldTime {
					res.InvalidTimes++
				} else if isNumericColumn(header) {
					res.InvalidNumbers++
				}
				continue
			}
			value := values[idx]

			switch {
			case header == FieldTime:
				normalized, err := NormalizeTime(value, loc)
				if err != nil {
					if opts.Strict {
						return IngestResult{}, fmt.Errorf("line %d: %w", lineNum, err)
					}
					res.InvalidTimes++
					rec.Set(header, value)
					continue
				}
				rec.Set(header, normalized)
			case isNumericColumn(header):
				n := ParseNumber(value)
				if math.IsNaN(n) {
					res.InvalidNumbers++
				}
				rec.Set(header, n)
			default:
				rec.Set(header, value)
			}
		}
		res.Records = append(res.Records, rec)
	}
	return res, nil
}

func isNumericColumn(header string) bool {
	switch header {
	case FieldWeight, FieldHeight, FieldBMI:
		return true
	default:
		return false
	}
}

// missingValue is what a short row stores for a column it has no value for.
func missingValue(header string) any {
	if isNumericColumn(header) {
		return math.NaN()
	}
	return nil
}
