package aggregate

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/empowerguard/moodjournal/internal/tone"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func views(tones ...string) []EntryView {
	out := make([]EntryView, len(tones))
	base := day("2024-01-01")
	for i, t := range tones {
		out[i] = EntryView{Date: base.AddDate(0, 0, i), Tone: t}
	}
	return out
}

func TestDistribution_EndToEnd(t *testing.T) {
	got := Distribution(views("Happy", "Happy", "Sad", "Angry"))
	require.Equal(t, map[tone.Tone]float64{
		tone.Happy: 50.0,
		tone.Sad:   25.0,
		tone.Angry: 25.0,
	}, got)
}

func TestDistribution_ExcludesUnrecognized(t *testing.T) {
	got := Distribution(views("Happy", "Not provided", "unknown", "", "sad"))
	require.Equal(t, map[tone.Tone]float64{
		tone.Happy: 50.0,
		tone.Sad:   50.0,
	}, got)
}

func TestDistribution_MergesSynonyms(t *testing.T) {
	got := Distribution(views("anger", "ANGRY", "positive", "Happy"))
	require.Equal(t, 50.0, got[tone.Angry])
	require.Equal(t, 50.0, got[tone.Happy])
}

func TestDistribution_Empty(t *testing.T) {
	require.Empty(t, Distribution(nil))
	require.Empty(t, Distribution(views("unknown", "Not provided")))
	require.NotNil(t, Distribution(nil))
}

func TestDistribution_SumsNearHundred(t *testing.T) {
	// Each share is rounded on its own, so these sets land within 0.1 of 100.
	sets := [][]string{
		{"Happy", "Sad", "Neutral"},
		{"Happy", "Happy", "Sad", "Neutral", "Angry", "Angry", "Angry"},
		{"Sad"},
		{"Happy", "Sad", "Sad", "Neutral", "Neutral", "Neutral", "unknown"},
	}
	for _, set := range sets {
		sum := 0.0
		for _, pct := range Distribution(views(set...)) {
			sum += pct
		}
		require.InDelta(t, 100.0, sum, 0.1+1e-9, "set %v", set)
	}
}

func TestDistribution_RoundingDrift(t *testing.T) {
	// 1, 1, 1 and 13 of 16: 6.25 and 81.25 both round up.
	set := []string{"Happy", "Sad", "Angry"}
	for range 13 {
		set = append(set, "Neutral")
	}

	got := Distribution(views(set...))
	require.Equal(t, map[tone.Tone]float64{
		tone.Happy:   6.3,
		tone.Sad:     6.3,
		tone.Angry:   6.3,
		tone.Neutral: 81.3,
	}, got)

	sum := 0.0
	for _, pct := range got {
		sum += pct
	}
	require.InDelta(t, 100.2, sum, 1e-9)
}

func TestDistribution_OneDecimal(t *testing.T) {
	got := Distribution(views("Happy", "Sad", "Neutral"))
	require.Equal(t, 33.3, got[tone.Happy])
	require.Equal(t, 33.3, got[tone.Sad])
	require.Equal(t, 33.3, got[tone.Neutral])
}

func TestAverageMoodScore_EndToEnd(t *testing.T) {
	score, ok := AverageMoodScore(views("Happy", "Happy", "Sad", "Angry"))
	require.True(t, ok)
	require.Equal(t, 2.75, score)
}

func TestAverageMoodScore_ExcludesUnrecognized(t *testing.T) {
	score, ok := AverageMoodScore(views("Happy", "unknown", "Not provided", ""))
	require.True(t, ok)
	require.Equal(t, 4.0, score)
}

func TestAverageMoodScore_TwoDecimals(t *testing.T) {
	score, ok := AverageMoodScore(views("Happy", "Sad", "Sad"))
	require.True(t, ok)
	require.Equal(t, 2.67, score)
}

func TestAverageMoodScore_NotAvailable(t *testing.T) {
	_, ok := AverageMoodScore(nil)
	require.False(t, ok)

	_, ok = AverageMoodScore(views("unknown", "surprised"))
	require.False(t, ok)
}

func TestAverageMoodScore_Bounds(t *testing.T) {
	sets := [][]string{
		{"Angry"},
		{"Happy"},
		{"Angry", "Happy", "unknown"},
		{"Sad", "Neutral", "Neutral", "positive"},
	}
	for _, set := range sets {
		score, ok := AverageMoodScore(views(set...))
		require.True(t, ok)
		require.GreaterOrEqual(t, score, 1.0)
		require.LessOrEqual(t, score, 4.0)
	}
}

func TestTrendSeries_OrderAndSentinel(t *testing.T) {
	entries := []EntryView{
		{Date: day("2024-01-03"), Tone: "Sad"},
		{Date: day("2024-01-01"), Tone: "Happy"},
		{Date: day("2024-01-02"), Tone: "Not provided"},
	}

	got := TrendSeries(entries)
	require.Equal(t, []TrendPoint{
		{Date: day("2024-01-01"), MoodValue: 4},
		{Date: day("2024-01-02"), MoodValue: 0},
		{Date: day("2024-01-03"), MoodValue: 2},
	}, got)

	// input untouched
	require.Equal(t, "Sad", entries[0].Tone)
}

func TestTrendSeries_StableForEqualDates(t *testing.T) {
	d := day("2024-02-01")
	entries := []EntryView{
		{Date: d, Tone: "Angry"},
		{Date: day("2024-01-31"), Tone: "Neutral"},
		{Date: d, Tone: "Happy"},
		{Date: d, Tone: "Sad"},
	}

	got := TrendSeries(entries)
	values := make([]int, len(got))
	for i, p := range got {
		values[i] = p.MoodValue
	}
	require.Equal(t, []int{3, 1, 4, 2}, values)
}

func TestTrendSeries_NonDecreasing(t *testing.T) {
	entries := []EntryView{
		{Date: day("2024-03-10"), Tone: "Happy"},
		{Date: day("2023-12-25"), Tone: "Sad"},
		{Date: day("2024-01-15"), Tone: "x"},
		{Date: day("2024-01-14"), Tone: "Neutral"},
	}
	got := TrendSeries(entries)
	for i := 1; i < len(got); i++ {
		require.False(t, got[i].Date.Before(got[i-1].Date))
	}
}

func TestTrendSeries_Empty(t *testing.T) {
	got := TrendSeries(nil)
	require.NotNil(t, got)
	require.Empty(t, got)
}

func TestMoodMeter(t *testing.T) {
	tn, fill := MoodMeter("Happy")
	require.Equal(t, tone.Happy, tn)
	require.Equal(t, 100.0, fill)

	tn, fill = MoodMeter("sad")
	require.Equal(t, tone.Sad, tn)
	require.Equal(t, 50.0, fill)

	tn, fill = MoodMeter("Not provided")
	require.Equal(t, tone.Unrecognized, tn)
	require.Equal(t, 0.0, fill)
}

func TestCompute_JSON(t *testing.T) {
	snap := Compute(views("Happy", "Happy", "Sad", "Angry"))
	require.Equal(t, 4, snap.EntryCount)
	require.True(t, snap.AverageMoodScore.Available)
	require.Equal(t, "2.75", snap.AverageMoodScore.String())

	data, err := json.Marshal(snap)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Equal(t, 2.75, decoded["average_mood_score"])
	dist := decoded["distribution"].(map[string]any)
	require.Equal(t, 50.0, dist["Happy"])
	require.Len(t, decoded["trend_series"], 4)
}

func TestCompute_NoData(t *testing.T) {
	snap := Compute(nil)
	require.Equal(t, NotAvailable, snap.AverageMoodScore.String())

	data, err := json.Marshal(snap)
	require.NoError(t, err)
	require.Contains(t, string(data), `"average_mood_score":"not available"`)
	require.Contains(t, string(data), `"distribution":{}`)
	require.Contains(t, string(data), `"trend_series":[]`)
}

func TestCompute_Concurrent(t *testing.T) {
	entries := views("Happy", "Sad", "Neutral", "Angry", "unknown")
	want := Compute(entries)

	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got := Compute(entries)
			if got.AverageMoodScore != want.AverageMoodScore {
				t.Errorf("concurrent Compute mismatch: %v != %v", got.AverageMoodScore, want.AverageMoodScore)
			}
		}()
	}
	wg.Wait()
}
