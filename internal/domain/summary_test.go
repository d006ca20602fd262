package domain

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func summarySamples() []Record {
	last := measurement("d4", "2024-05-30 07:30:00", 68)
	last.Set(FieldBMI, 22.5)
	return []Record{
		measurement("d1", "2024-03-01 07:30:00", 70),
		measurement("d2", "2024-05-20 07:30:00", 69),
		measurement("d3", "2024-05-25 07:30:00", math.NaN()),
		last,
	}
}

func TestSummarize(t *testing.T) {
	t.Run("aggregates ignore NaN weights", func(t *testing.T) {
		s := Summarize(summarySamples())

		assert.Equal(t, 4, s.Count)
		assert.Equal(t, 4, s.TotalDays)
		assert.Equal(t, 70.0, s.StartWeight)
		assert.Equal(t, 68.0, s.CurrentWeight)
		assert.Equal(t, 70.0, s.MaxWeight)
		assert.Equal(t, 68.0, s.MinWeight)
		assert.InDelta(t, 69.0, s.AvgWeight, 1e-9)
		assert.Equal(t, -2.0, s.WeightChange)
		assert.Equal(t, 22.5, s.CurrentBMI)
		assert.Equal(t, "2024-05-30 07:30:00", s.LastUpdate)
	})

	t.Run("empty", func(t *testing.T) {
		assert.Equal(t, Summary{}, Summarize(nil))
	})

	t.Run("no weights encode as null", func(t *testing.T) {
		s := Summarize([]Record{measurement("x", "2024-05-01 07:30:00", math.NaN())})
		assert.Equal(t, 1, s.Count)
		assert.True(t, math.IsNaN(s.AvgWeight))

		data, err := json.Marshal(s)
		require.NoError(t, err)
		var decoded map[string]any
		require.NoError(t, json.Unmarshal(data, &decoded))
		assert.Nil(t, decoded["avg_weight"])
		assert.Nil(t, decoded["current_bmi"])
		assert.Equal(t, "2024-05-01 07:30:00", decoded["last_update"])
	})
}

func TestFilterRange(t *testing.T) {
	SetClock(clockwork.NewFakeClockAt(time.Date(2024, 6, 1, 0, 0, 0, 0, ChinaStandardTime)))
	defer SetClock(nil)

	samples := summarySamples()
	tests := []struct {
		r    Range
		want []string
	}{
		{RangeAll, []string{"d1", "d2", "d3", "d4"}},
		{RangeThreeMonths, []string{"d1", "d2", "d3", "d4"}},
		{RangeOneMonth, []string{"d2", "d3", "d4"}},
		{RangeTwoWeeks, []string{"d2", "d3", "d4"}},
	}
	for _, tt := range tests {
		t.Run(string(tt.r), func(t *testing.T) {
			assert.Equal(t, tt.want, ids(FilterRange(samples, tt.r, Now())))
		})
	}

	t.Run("unparseable times dropped from bounded ranges", func(t *testing.T) {
		bad := []Record{measurement("bad", "not a time", 70)}
		assert.Empty(t, FilterRange(bad, RangeTwoWeeks, Now()))
		assert.Len(t, FilterRange(bad, RangeAll, Now()), 1)
	})
}

func TestParseRange(t *testing.T) {
	r, err := ParseRange("")
	require.NoError(t, err)
	assert.Equal(t, RangeAll, r)

	r, err = ParseRange("2w")
	require.NoError(t, err)
	assert.Equal(t, RangeTwoWeeks, r)

	_, err = ParseRange("1y")
	assert.Error(t, err)
}

func TestSetClock(t *testing.T) {
	t.Run("set custom clock", func(t *testing.T) {
		fixedTime := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		SetClock(clockwork.NewFakeClockAt(fixedTime))
		defer SetClock(nil)

		assert.Equal(t, fixedTime, Now())
	})

	t.Run("reset to real clock", func(t *testing.T) {
		SetClock(clockwork.NewFakeClockAt(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)))
		SetClock(nil)

		assert.True(t, time.Since(Now()) < time.Second)
	})
}
