package domain

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// CanonicalLayout is the normalized timestamp format used in every file the
// pipeline writes: zero-padded, 24-hour, space separated.
const CanonicalLayout = "2006-01-02 15:04:05"

// ChinaStandardTime is the fixed UTC+8 zone all timestamps are rendered in.
// It is an explicit offset so output never depends on the host's zone database.
var ChinaStandardTime = time.FixedZone("UTC+8", 8*60*60)

// ErrInvalidTime is returned when a timestamp cannot be parsed as an instant.
var ErrInvalidTime = errors.New("invalid timestamp")

// numberPrefixRe matches the longest leading decimal literal, mirroring the
// lenient prefix parse used by the spreadsheet exports this data comes from.
var numberPrefixRe = regexp.MustCompile(`^[+-]?(?:Infinity|(?:\d+\.?\d*|\.\d+)(?:[eE][+-]?\d+)?)`)

// NormalizeTime parses value as an absolute instant and renders it in loc using
// CanonicalLayout. Input without an explicit offset is read as UTC.
func NormalizeTime(value string, loc *time.Location) (string, error) {
	t, err := ParseInstant(value)
	if err != nil {
		return "", err
	}
	if loc == nil {
		loc = ChinaStandardTime
	}
	return t.In(loc).Format(CanonicalLayout), nil
}

// ParseInstant parses an ISO-8601-like timestamp with an optional offset.
// RFC 3339 is tried first; everything else goes through dateparse with UTC
// as the zone for offset-less input.
func ParseInstant(value string) (time.Time, error) {
	s := strings.TrimSpace(value)
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: empty", ErrInvalidTime)
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	t, err := dateparse.ParseIn(s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q: %w", ErrInvalidTime, value, err)
	}
	return t, nil
}

// ParseCanonical parses a CanonicalLayout timestamp in loc.
func ParseCanonical(value string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = ChinaStandardTime
	}
	t, err := time.ParseInLocation(CanonicalLayout, value, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTime, value)
	}
	return t, nil
}

// ParseNumber reads the leading decimal literal of s, skipping leading
// whitespace. Trailing text is ignored ("70.5kg" is 70.5). Text without a
// numeric prefix yields NaN, the not-a-number sentinel. "Infinity" with an
// optional sign is read as ±Inf.
func ParseNumber(s string) float64 {
	m := numberPrefixRe.FindString(strings.TrimLeft(s, " \t\n\v\f\r"))
	if m == "" {
		return math.NaN()
	}
	// The regexp guarantees syntax; a range error still yields ±Inf.
	v, _ := strconv.ParseFloat(m, 64)
	return v
}
