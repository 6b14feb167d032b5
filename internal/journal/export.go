package journal

import (
	"encoding/json"
	"time"
)

// ExportSchemaVersion is written in the export header line.
const ExportSchemaVersion = "1.0"

// ExportRecord is one line of a JSONL export. The first line is a header with
// MoodJournalExport set; the rest are entries.
type ExportRecord struct {
	// Header detection field - true only for header line
	MoodJournalExport bool `json:"_moodjournal_export,omitempty"`

	// Header fields (only present in header line)
	SchemaVersion string `json:"schema_version,omitempty"`
	ExportedAt    int64  `json:"exported_at,omitempty"`

	ID               string           `json:"id"`
	Title            string           `json:"title"`
	Content          string           `json:"content"`
	ContentChars     int              `json:"content_chars"` // IGNORED on import, recomputed
	Tags             []string         `json:"tags"`
	Date             time.Time        `json:"date"`
	Geolocation      *Geolocation     `json:"geolocation,omitempty"`
	Weather          json.RawMessage  `json:"weather,omitempty"`
	MediaFiles       []string         `json:"media_files"`
	EmotionalContext EmotionalContext `json:"emotional_context"`
	CreatedAt        int64            `json:"created_at"`
}

// ToEntry converts an ExportRecord to an Entry, recomputing derived fields.
func (r *ExportRecord) ToEntry() *Entry {
	e := &Entry{
		ID:               r.ID,
		Title:            r.Title,
		Content:          r.Content,
		ContentChars:     CountChars(r.Content),
		Tags:             NormalizeTags(r.Tags),
		Date:             r.Date.UTC(),
		Geolocation:      r.Geolocation,
		Weather:          r.Weather,
		MediaFiles:       r.MediaFiles,
		EmotionalContext: r.EmotionalContext,
		CreatedAt:        r.CreatedAt,
	}
	if e.Date.IsZero() && r.CreatedAt > 0 {
		e.Date = time.Unix(r.CreatedAt, 0).UTC()
	}
	if e.MediaFiles == nil {
		e.MediaFiles = []string{}
	}
	if e.EmotionalContext.Tone == "" {
		e.EmotionalContext = NewEmotionalContext()
	}
	if e.EmotionalContext.Recommendations == nil {
		e.EmotionalContext.Recommendations = []string{}
	}
	if e.EmotionalContext.FaceLog == nil {
		e.EmotionalContext.FaceLog = []FaceLogEntry{}
	}
	return e
}

// EntryToExportRecord converts an Entry to an ExportRecord for export.
func EntryToExportRecord(e *Entry) *ExportRecord {
	return &ExportRecord{
		ID:               e.ID,
		Title:            e.Title,
		Content:          e.Content,
		ContentChars:     e.ContentChars,
		Tags:             e.Tags,
		Date:             e.Date,
		Geolocation:      e.Geolocation,
		Weather:          e.Weather,
		MediaFiles:       e.MediaFiles,
		EmotionalContext: e.EmotionalContext,
		CreatedAt:        e.CreatedAt,
	}
}
