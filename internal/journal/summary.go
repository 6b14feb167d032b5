package journal

import "github.com/empowerguard/moodjournal/internal/aggregate"

// EntrySummary is an entry without its content, for list views.
type EntrySummary struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Date         string   `json:"date"`
	Tags         []string `json:"tags,omitempty"`
	ContentChars int      `json:"content_chars"`
	Tone         string   `json:"tone"`
	MoodFill     float64  `json:"mood_fill"`
	CreatedAt    int64    `json:"created_at"`
}

// ToSummary converts an Entry to an EntrySummary by stripping the content.
func (e *Entry) ToSummary() EntrySummary {
	_, fill := aggregate.MoodMeter(e.EmotionalContext.Tone)
	return EntrySummary{
		ID:           e.ID,
		Title:        e.Title,
		Date:         FormatDate(e.Date),
		Tags:         e.Tags,
		ContentChars: e.ContentChars,
		Tone:         e.EmotionalContext.Tone,
		MoodFill:     fill,
		CreatedAt:    e.CreatedAt,
	}
}
