package domain

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
	"time"
)

// MorningWindow is a half-open range of clock hours, [StartHour, EndHour).
type MorningWindow struct {
	StartHour int
	EndHour   int
}

// DefaultMorningWindow is 07:00:00 through 08:59:59.
var DefaultMorningWindow = MorningWindow{StartHour: 7, EndHour: 9}

// Contains reports whether hour falls inside the window.
func (w MorningWindow) Contains(hour int) bool {
	return hour >= w.StartHour && hour < w.EndHour
}

// Validate checks the window describes a non-empty range of a single day.
func (w MorningWindow) Validate() error {
	if w.StartHour < 0 || w.EndHour > 24 || w.StartHour >= w.EndHour {
		return fmt.Errorf("invalid morning window [%d, %d)", w.StartHour, w.EndHour)
	}
	return nil
}

// SampleOptions controls daily sampling.
type SampleOptions struct {
	Window MorningWindow
	// Location is the zone canonical timestamps are interpreted in when the
	// output is ordered. Nil means UTC+8.
	Location *time.Location
	// DropUnweighedDays omits days where no candidate has a numeric weight.
	// When false the earliest candidate of such a day is kept.
	DropUnweighedDays bool
}

// DefaultSampleOptions returns the standard morning window in UTC+8.
func DefaultSampleOptions() SampleOptions {
	return SampleOptions{Window: DefaultMorningWindow, Location: ChinaStandardTime}
}

// SampleResult holds the selected daily samples and what was filtered out.
type SampleResult struct {
	Samples []Record
	// Candidates is the number of records inside the morning window.
	Candidates int
	// Skipped counts records without a usable canonical timestamp.
	Skipped int
	// UnweighedDays counts days whose candidates all had a NaN weight.
	UnweighedDays int
}

// Sample selects the lightest morning record of every day using the default
// options.
func Sample(records []Record) []Record {
	return SampleWith(records, DefaultSampleOptions()).Samples
}

// SampleWith reduces records to at most one per calendar day:
//
//  1. keep records whose hour lies in opts.Window;
//  2. group them by the date part (first 10 characters) of time;
//  3. per group, take the minimum weight, ties going to the earliest record;
//  4. sanitize the chosen record;
//  5. order the result chronologically.
//
// Days without a morning record produce nothing. NaN weights sort after
// every numeric weight, so a day with at least one numeric weight always
// yields its numeric minimum.
func SampleWith(records []Record, opts SampleOptions) SampleResult {
	loc := opts.Location
	if loc == nil {
		loc = ChinaStandardTime
	}

	var res SampleResult
	groups := make(map[string][]Record)
	var dates []string

	for _, rec := range records {
		ts, ok := rec.Time()
		if !ok {
			res.Skipped++
			continue
		}
		date, hour, ok := splitCanonical(ts)
		if !ok {
			res.Skipped++
			continue
		}
		if !opts.Window.Contains(hour) {
			continue
		}
		res.Candidates++
		if _, seen := groups[date]; !seen {
			dates = append(dates, date)
		}
		groups[date] = append(groups[date], rec)
	}

	samples := make([]Record, 0, len(dates))
	for _, date := range dates {
		lightest := slices.MinFunc(groups[date], compareWeight)
		if math.IsNaN(lightest.Weight()) {
			res.UnweighedDays++
			if opts.DropUnweighedDays {
				continue
			}
		}
		samples = append(samples, sanitizeRecord(lightest))
	}

	slices.SortStableFunc(samples, func(a, b Record) int {
		return sampleTime(a, loc).Compare(sampleTime(b, loc))
	})
	res.Samples = samples
	return res
}

// compareWeight orders records by ascending weight with NaN after numbers.
func compareWeight(a, b Record) int {
	wa, wb := a.Weight(), b.Weight()
	aNaN, bNaN := math.IsNaN(wa), math.IsNaN(wb)
	switch {
	case aNaN && bNaN:
		return 0
	case aNaN:
		return 1
	case bNaN:
		return -1
	case wa < wb:
		return -1
	case wa > wb:
		return 1
	default:
		return 0
	}
}

// splitCanonical extracts the date key and hour from a canonical timestamp.
func splitCanonical(ts string) (date string, hour int, ok bool) {
	if len(ts) < len(CanonicalLayout) || ts[10] != ' ' {
		return "", 0, false
	}
	clock := ts[11:]
	colon := strings.IndexByte(clock, ':')
	if colon <= 0 {
		return "", 0, false
	}
	h, err := strconv.Atoi(clock[:colon])
	if err != nil {
		return "", 0, false
	}
	return ts[:10], h, true
}

func sampleTime(r Record, loc *time.Location) time.Time {
	ts, _ := r.Time()
	t, err := ParseCanonical(ts, loc)
	if err != nil {
		return time.Time{}
	}
	return t
}
