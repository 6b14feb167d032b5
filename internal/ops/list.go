package ops

import (
	"context"
	"database/sql"

	"github.com/empowerguard/moodjournal/internal/db"
	"github.com/empowerguard/moodjournal/internal/journal"
)

// ListInput contains parameters for the List operation.
type ListInput struct {
	Limit  int // default: 20, max: 100
	Offset int // default: 0
}

// ListOutput contains the result of the List operation.
type ListOutput struct {
	Items      []journal.EntrySummary `json:"items"`
	Pagination Pagination             `json:"pagination"`
	Sort       string                 `json:"sort"`
}

// List retrieves entry summaries, newest first, with pagination.
func List(ctx context.Context, database *sql.DB, input ListInput) (*ListOutput, error) {
	limit, offset := clampPage(input.Limit, input.Offset)

	entries, total, err := db.List(ctx, database, limit, offset)
	if err != nil {
		return nil, err
	}

	items := make([]journal.EntrySummary, 0, len(entries))
	for i := range entries {
		items = append(items, entries[i].ToSummary())
	}

	return &ListOutput{
		Items: items,
		Pagination: Pagination{
			Limit:   limit,
			Offset:  offset,
			HasMore: offset+len(items) < total,
			Total:   total,
		},
		Sort: "created_at_desc",
	}, nil
}

// ListEntries is List with full entries, for views that render content.
func ListEntries(ctx context.Context, database *sql.DB, input ListInput) ([]journal.Entry, Pagination, error) {
	limit, offset := clampPage(input.Limit, input.Offset)

	entries, total, err := db.List(ctx, database, limit, offset)
	if err != nil {
		return nil, Pagination{}, err
	}
	return entries, Pagination{
		Limit:   limit,
		Offset:  offset,
		HasMore: offset+len(entries) < total,
		Total:   total,
	}, nil
}
