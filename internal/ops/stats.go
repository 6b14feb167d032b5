package ops

import (
	"context"
	"database/sql"

	"github.com/empowerguard/moodjournal/internal/aggregate"
	"github.com/empowerguard/moodjournal/internal/db"
	"github.com/empowerguard/moodjournal/internal/journal"
)

// StatsOutput contains the result of the Stats operation.
type StatsOutput struct {
	aggregate.Snapshot
}

// Stats computes distribution, average mood score and trend over all entries.
func Stats(ctx context.Context, database *sql.DB) (*StatsOutput, error) {
	entries, err := db.ListAll(ctx, database)
	if err != nil {
		return nil, err
	}
	return &StatsOutput{Snapshot: aggregate.Compute(journal.Views(entries))}, nil
}
