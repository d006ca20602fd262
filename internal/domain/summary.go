package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"time"
)

// Range selects a trailing window of samples relative to now.
type Range string

// Supported ranges.
const (
	RangeAll         Range = "all"
	RangeThreeMonths Range = "3m"
	RangeOneMonth    Range = "1m"
	RangeTwoWeeks    Range = "2w"
)

// ParseRange validates a range name. An empty string means RangeAll.
func ParseRange(s string) (Range, error) {
	switch r := Range(s); r {
	case "":
		return RangeAll, nil
	case RangeAll, RangeThreeMonths, RangeOneMonth, RangeTwoWeeks:
		return r, nil
	default:
		return "", fmt.Errorf("unknown range %q (use all, 3m, 1m or 2w)", s)
	}
}

// Start returns the earliest instant included in r, or the zero time for RangeAll.
func (r Range) Start(now time.Time) time.Time {
	switch r {
	case RangeThreeMonths:
		return now.AddDate(0, -3, 0)
	case RangeOneMonth:
		return now.AddDate(0, -1, 0)
	case RangeTwoWeeks:
		return now.AddDate(0, 0, -14)
	default:
		return time.Time{}
	}
}

// FilterRange keeps the samples whose time is at or after r's start.
// Samples with an unparseable time are dropped from bounded ranges.
func FilterRange(samples []Record, r Range, now time.Time) []Record {
	if r == RangeAll || r == "" {
		return samples
	}
	start := r.Start(now)
	out := make([]Record, 0, len(samples))
	for _, s := range samples {
		ts, _ := s.Time()
		t, err := ParseCanonical(ts, ChinaStandardTime)
		if err != nil || t.Before(start) {
			continue
		}
		out = append(out, s)
	}
	return out
}

// Summary is the headline statistics for a set of daily samples.
type Summary struct {
	Count         int     `json:"count"`
	StartWeight   float64 `json:"start_weight"`
	CurrentWeight float64 `json:"current_weight"`
	MaxWeight     float64 `json:"max_weight"`
	MinWeight     float64 `json:"min_weight"`
	AvgWeight     float64 `json:"avg_weight"`
	WeightChange  float64 `json:"weight_change"`
	CurrentBMI    float64 `json:"current_bmi"`
	TotalDays     int     `json:"total_days"`
	LastUpdate    string  `json:"last_update"`
}

// Summarize computes Summary over samples, which must be in chronological
// order. Samples with a NaN weight count toward Count and TotalDays but are
// left out of the weight aggregates.
func Summarize(samples []Record) Summary {
	s := Summary{Count: len(samples)}
	if len(samples) == 0 {
		return s
	}

	days := make(map[string]struct{}, len(samples))
	var sum float64
	var weighed int
	s.StartWeight = math.NaN()
	s.CurrentWeight = math.NaN()
	s.MinWeight = math.Inf(1)
	s.MaxWeight = math.Inf(-1)

	for _, rec := range samples {
		if ts, ok := rec.Time(); ok && len(ts) >= 10 {
			days[ts[:10]] = struct{}{}
		}
		w := rec.Weight()
		if math.IsNaN(w) {
			continue
		}
		if weighed == 0 {
			s.StartWeight = w
		}
		s.CurrentWeight = w
		s.MinWeight = math.Min(s.MinWeight, w)
		s.MaxWeight = math.Max(s.MaxWeight, w)
		sum += w
		weighed++
	}

	last := samples[len(samples)-1]
	s.LastUpdate, _ = last.Time()
	s.CurrentBMI = last.Number(FieldBMI)
	s.TotalDays = len(days)
	if weighed == 0 {
		s.MinWeight, s.MaxWeight, s.AvgWeight, s.WeightChange = math.NaN(), math.NaN(), math.NaN(), math.NaN()
		return s
	}
	s.AvgWeight = sum / float64(weighed)
	s.WeightChange = s.CurrentWeight - s.StartWeight
	return s
}

// MarshalJSON writes NaN aggregates as null.
func (s Summary) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Count         int      `json:"count"`
		StartWeight   *float64 `json:"start_weight"`
		CurrentWeight *float64 `json:"current_weight"`
		MaxWeight     *float64 `json:"max_weight"`
		MinWeight     *float64 `json:"min_weight"`
		AvgWeight     *float64 `json:"avg_weight"`
		WeightChange  *float64 `json:"weight_change"`
		CurrentBMI    *float64 `json:"current_bmi"`
		TotalDays     int      `json:"total_days"`
		LastUpdate    string   `json:"last_update"`
	}{
		Count:         s.Count,
		StartWeight:   finite(s.StartWeight),
		CurrentWeight: finite(s.CurrentWeight),
		MaxWeight:     finite(s.MaxWeight),
		MinWeight:     finite(s.MinWeight),
		AvgWeight:     finite(s.AvgWeight),
		WeightChange:  finite(s.WeightChange),
		CurrentBMI:    finite(s.CurrentBMI),
		TotalDays:     s.TotalDays,
		LastUpdate:    s.LastUpdate,
	})
}

func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
