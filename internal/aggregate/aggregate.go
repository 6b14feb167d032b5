// Package aggregate computes mood statistics over a snapshot of journal entries.
//
// Every function here is a pure function of its input slice: no I/O, no shared
// state, safe to call concurrently. Absence of data degrades to an empty
// result, never to an error.
package aggregate

import (
	"encoding/json"
	"math"
	"slices"
	"strconv"
	"time"

	"github.com/empowerguard/moodjournal/internal/tone"
)

// NoDataMoodValue is the trend value for entries without a recognized tone.
// It sits outside the 1..4 mood range so charts can render it as a gap.
const NoDataMoodValue = 0

// NotAvailable is rendered in place of an average when no entry has a recognized tone.
const NotAvailable = "not available"

// EntryView is the slice of an entry that aggregation reads.
type EntryView struct {
	Date time.Time
	Tone string
}

// TrendPoint is one point of the mood trend series.
type TrendPoint struct {
	Date      time.Time `json:"date"`
	MoodValue int       `json:"mood_value"`
}

// Distribution returns the percentage of recognized entries per canonical
// tone, rounded to one decimal. Unrecognized entries are excluded from both
// numerator and denominator. Returns an empty map when nothing is recognized.
func Distribution(entries []EntryView) map[tone.Tone]float64 {
	counts := make(map[tone.Tone]int)
	total := 0
	for _, e := range entries {
		t := tone.Normalize(e.Tone)
		if !t.Recognized() {
			continue
		}
		counts[t]++
		total++
	}

	out := make(map[tone.Tone]float64, len(counts))
	if total == 0 {
		return out
	}
	for t, n := range counts {
		out[t] = round(float64(n)/float64(total)*100, 1)
	}
	return out
}

// AverageMoodScore returns the mean mood value of recognized entries rounded
// to two decimals. ok is false when no entry has a recognized tone.
func AverageMoodScore(entries []EntryView) (score float64, ok bool) {
	sum, count := 0, 0
	for _, e := range entries {
		v, recognized := tone.Normalize(e.Tone).MoodValue()
		if !recognized {
			continue
		}
		sum += v
		count++
	}
	if count == 0 {
		return 0, false
	}
	return round(float64(sum)/float64(count), 2), true
}

// TrendSeries returns one point per entry, sorted ascending by date. The sort
// is stable so entries sharing a date keep their input order. Unrecognized
// tones map to NoDataMoodValue rather than being dropped.
func TrendSeries(entries []EntryView) []TrendPoint {
	sorted := slices.Clone(entries)
	slices.SortStableFunc(sorted, func(a, b EntryView) int {
		return a.Date.Compare(b.Date)
	})

	points := make([]TrendPoint, len(sorted))
	for i, e := range sorted {
		v, ok := tone.Normalize(e.Tone).MoodValue()
		if !ok {
			v = NoDataMoodValue
		}
		points[i] = TrendPoint{Date: e.Date, MoodValue: v}
	}
	return points
}

// MoodMeter returns the normalized tone of a single entry and how full its
// meter is (mood value as a percentage of the maximum; 0 when unrecognized).
func MoodMeter(raw string) (tone.Tone, float64) {
	t := tone.Normalize(raw)
	v, ok := t.MoodValue()
	if !ok {
		return t, 0
	}
	return t, float64(v) / tone.MaxMoodValue * 100
}

// Score is an average mood score that may be unavailable.
type Score struct {
	Value     float64
	Available bool
}

// MarshalJSON renders the score as a number, or the string "not available".
func (s Score) MarshalJSON() ([]byte, error) {
	if !s.Available {
		return json.Marshal(NotAvailable)
	}
	return json.Marshal(s.Value)
}

// String formats the score with two decimals, or "not available".
func (s Score) String() string {
	if !s.Available {
		return NotAvailable
	}
	return strconv.FormatFloat(s.Value, 'f', 2, 64)
}

// Snapshot bundles the three aggregates. It is a derived view, recomputed per request.
type Snapshot struct {
	EntryCount       int                   `json:"entry_count"`
	Distribution     map[tone.Tone]float64 `json:"distribution"`
	AverageMoodScore Score                 `json:"average_mood_score"`
	TrendSeries      []TrendPoint          `json:"trend_series"`
}

// Compute builds a Snapshot from entries.
func Compute(entries []EntryView) Snapshot {
	score, ok := AverageMoodScore(entries)
	return Snapshot{
		EntryCount:       len(entries),
		Distribution:     Distribution(entries),
		AverageMoodScore: Score{Value: score, Available: ok},
		TrendSeries:      TrendSeries(entries),
	}
}

// round rounds half away from zero at the given number of decimals.
func round(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}
