package ops

import (
	"context"
	"database/sql"
	"strings"

	"github.com/empowerguard/moodjournal/internal/db"
	"github.com/empowerguard/moodjournal/internal/errors"
	"github.com/empowerguard/moodjournal/internal/journal"
	"github.com/empowerguard/moodjournal/internal/tone"
)

// FetchInput contains parameters for the Fetch operation.
type FetchInput struct {
	ID string
}

// FetchOutput contains the result of the Fetch operation.
type FetchOutput struct {
	journal.Entry

	// MoodFill is the mood meter fill percentage for the entry's tone.
	MoodFill     float64     `json:"mood_fill"`
	SupportLinks []tone.Link `json:"support_links"`
}

// Fetch retrieves an entry by ID.
func Fetch(ctx context.Context, database *sql.DB, input FetchInput) (*FetchOutput, error) {
	id := strings.TrimSpace(input.ID)
	if id == "" {
		return nil, errors.NewInvalidRequest("id is required")
	}

	e, err := db.GetByID(ctx, database, id)
	if err != nil {
		return nil, err
	}

	links := tone.SupportLinks(e.EmotionalContext.Tone)
	if links == nil {
		links = []tone.Link{}
	}
	return &FetchOutput{
		Entry:        *e,
		MoodFill:     e.ToSummary().MoodFill,
		SupportLinks: links,
	}, nil
}
