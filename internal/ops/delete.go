package ops

import (
	"context"
	"database/sql"
	"strings"

	"github.com/empowerguard/moodjournal/internal/db"
	"github.com/empowerguard/moodjournal/internal/errors"
	"github.com/empowerguard/moodjournal/internal/journal"
)

// DeleteInput contains parameters for the Delete operation.
type DeleteInput struct {
	ID string
}

// DeleteOutput contains the result of the Delete operation.
type DeleteOutput struct {
	Deleted bool          `json:"deleted"`
	ID      string        `json:"id"`
	Entry   journal.Entry `json:"entry"`
}

// Delete permanently removes an entry. A missing ID is NOT_FOUND.
func Delete(ctx context.Context, database *sql.DB, input DeleteInput) (*DeleteOutput, error) {
	id := strings.TrimSpace(input.ID)
	if id == "" {
		return nil, errors.NewInvalidRequest("id is required")
	}

	e, err := db.Delete(ctx, database, id)
	if err != nil {
		return nil, err
	}

	return &DeleteOutput{
		Deleted: true,
		ID:      e.ID,
		Entry:   *e,
	}, nil
}
