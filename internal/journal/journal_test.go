package journal

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	fallback := time.Date(2024, 3, 9, 15, 4, 5, 0, time.UTC)

	got, err := ParseDate("2024-01-02", fallback)
	require.NoError(t, err)
	require.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), got)

	got, err = ParseDate("2024-01-02T10:00:00+02:00", fallback)
	require.NoError(t, err)
	require.Equal(t, time.Date(2024, 1, 2, 8, 0, 0, 0, time.UTC), got)

	got, err = ParseDate("  ", fallback)
	require.NoError(t, err)
	require.Equal(t, fallback, got)

	_, err = ParseDate("01/02/2024", fallback)
	require.Error(t, err)
}

func TestFormatDate(t *testing.T) {
	require.Equal(t, "2024-01-02", FormatDate(time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)))
	require.Equal(t, "2024-01-02T08:30:00Z", FormatDate(time.Date(2024, 1, 2, 8, 30, 0, 0, time.UTC)))
}

func TestNormalizeTags(t *testing.T) {
	require.Equal(t, []string{"work", "family time"}, NormalizeTags([]string{" Work ", "", "family   TIME", "work"}))
	require.Equal(t, []string{"a", "b"}, SplitTags("a, b,,A"))
	require.Equal(t, []string{}, SplitTags(""))
}

func TestResolveTone(t *testing.T) {
	faces := []FaceLogEntry{
		{Emotion: "Happy", Timestamp: "t1"},
		{Emotion: "Sad", Timestamp: "t2"},
		{Emotion: "", Timestamp: "t3"},
	}

	require.Equal(t, "Angry", ResolveTone("Angry", faces, SourceText))
	require.Equal(t, "Sad", ResolveTone("Angry", faces, SourceFace))
	require.Equal(t, "Angry", ResolveTone("Angry", nil, SourceFace))
	require.Equal(t, "Angry", ResolveTone("Angry", faces, ""))
}

func TestEntry_ViewAndSummary(t *testing.T) {
	e := Entry{
		ID:           "01HZY",
		Title:        "Morning",
		Content:      "Slept well.",
		ContentChars: 11,
		Date:         time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
		EmotionalContext: EmotionalContext{
			Tone:            "joy",
			Recommendations: []string{"Keep it up."},
			FaceLog:         []FaceLogEntry{},
		},
	}

	v := e.View()
	require.Equal(t, e.Date, v.Date)
	require.Equal(t, "joy", v.Tone)

	s := e.ToSummary()
	require.Equal(t, "2024-01-02", s.Date)
	require.Equal(t, "joy", s.Tone)
	require.InDelta(t, 100.0, s.MoodFill, 1e-9)

	require.Len(t, Views([]Entry{e, e}), 2)
}

func TestNewEmotionalContext(t *testing.T) {
	ec := NewEmotionalContext()
	require.Equal(t, "Not provided", ec.Tone)

	b, err := json.Marshal(ec)
	require.NoError(t, err)
	require.JSONEq(t, `{"tone":"Not provided","recommendations":[],"face_log":[]}`, string(b))
}

func TestExportRecord_RoundTripRecomputes(t *testing.T) {
	e := &Entry{
		ID:               "01HZY",
		Title:            "T",
		Content:          "héllo",
		ContentChars:     99,
		Tags:             []string{"x"},
		Date:             time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
		Weather:          json.RawMessage(`{"temp":21}`),
		MediaFiles:       []string{"a.jpg"},
		EmotionalContext: NewEmotionalContext(),
		CreatedAt:        1700000000,
	}

	got := EntryToExportRecord(e).ToEntry()
	require.Equal(t, 5, got.ContentChars)
	require.Equal(t, e.Date, got.Date)
	require.JSONEq(t, `{"temp":21}`, string(got.Weather))

	bare := (&ExportRecord{ID: "x", Content: "c"}).ToEntry()
	require.Equal(t, "Not provided", bare.EmotionalContext.Tone)
	require.NotNil(t, bare.MediaFiles)
}
