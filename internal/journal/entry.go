// Package journal defines the journal entry model and its derived views.
package journal

import (
	"encoding/json"
	"time"

	"github.com/empowerguard/moodjournal/internal/aggregate"
	"github.com/empowerguard/moodjournal/internal/tone"
)

// Entry is a single journal entry with its inferred emotional context.
type Entry struct {
	// ID is a ULID that uniquely identifies this entry
	ID string `json:"id"`

	Title   string `json:"title"`
	Content string `json:"content"`

	// ContentChars is the character count (runes, not bytes)
	ContentChars int `json:"content_chars"`

	Tags []string `json:"tags"`

	// Date is the day the entry is about, which may differ from CreatedAt.
	Date time.Time `json:"date"`

	Geolocation *Geolocation `json:"geolocation,omitempty"`

	// Weather is an arbitrary JSON object captured by the client.
	Weather json.RawMessage `json:"weather,omitempty"`

	MediaFiles []string `json:"media_files"`

	EmotionalContext EmotionalContext `json:"emotional_context"`

	// CreatedAt is the Unix timestamp when the entry was saved
	CreatedAt int64 `json:"created_at"`
}

// Geolocation is where the entry was written.
type Geolocation struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// EmotionalContext holds the tone stored with an entry.
type EmotionalContext struct {
	Tone            string         `json:"tone"`
	Recommendations []string       `json:"recommendations"`
	FaceLog         []FaceLogEntry `json:"face_log"`
}

// FaceLogEntry is one emotion tag captured by a face-expression client.
type FaceLogEntry struct {
	Emotion   string `json:"emotion"`
	Timestamp string `json:"timestamp"`
}

// NewEmotionalContext returns the context of an entry that has not been
// analyzed yet.
func NewEmotionalContext() EmotionalContext {
	return EmotionalContext{
		Tone:            tone.NotProvided,
		Recommendations: []string{},
		FaceLog:         []FaceLogEntry{},
	}
}

// View projects the entry onto what aggregation reads.
func (e *Entry) View() aggregate.EntryView {
	return aggregate.EntryView{Date: e.Date, Tone: e.EmotionalContext.Tone}
}

// Views projects entries for aggregation.
func Views(entries []Entry) []aggregate.EntryView {
	out := make([]aggregate.EntryView, len(entries))
	for i := range entries {
		out[i] = entries[i].View()
	}
	return out
}
