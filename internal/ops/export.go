package ops

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/empowerguard/moodjournal/internal/config"
	"github.com/empowerguard/moodjournal/internal/db"
	"github.com/empowerguard/moodjournal/internal/errors"
	"github.com/empowerguard/moodjournal/internal/journal"
)

// ExportInput contains parameters for the Export operation.
type ExportInput struct {
	Path  string // optional, default: ~/.moodjournal/exports/<label>-<timestamp>.jsonl
	Label string // optional file name prefix for the default path, default: journal
}

// ExportOutput contains the result of the Export operation.
type ExportOutput struct {
	Path       string `json:"path"`
	Count      int    `json:"count"`
	ExportedAt int64  `json:"exported_at"`
}

// ExportHeader is the first line of a JSONL export file.
type ExportHeader struct {
	MoodJournalExport bool   `json:"_moodjournal_export"`
	SchemaVersion     string `json:"schema_version"`
	ExportedAt        int64  `json:"exported_at"`
}

// Export writes all entries to a JSONL file: a header line, then one entry per
// line, oldest first.
func Export(ctx context.Context, database *sql.DB, cfg *config.Config, input ExportInput) (*ExportOutput, error) {
	now := time.Now()

	path := input.Path
	if path == "" {
		var err error
		if path, err = defaultExportPath(input.Label, now); err != nil {
			return nil, err
		}
	}
	if err := ValidatePath(path, PathCheckWrite, cfg); err != nil {
		return nil, err
	}

	entries, err := db.ListAll(ctx, database)
	if err != nil {
		return nil, err
	}

	err = writeFileAtomic(path, func(enc *json.Encoder) error {
		header := ExportHeader{
			MoodJournalExport: true,
			SchemaVersion:     journal.ExportSchemaVersion,
			ExportedAt:        now.Unix(),
		}
		if err := enc.Encode(header); err != nil {
			return errors.NewInternal(err)
		}
		for i := range entries {
			if ctx.Err() != nil {
				return errors.NewCancelled("export")
			}
			if err := enc.Encode(journal.EntryToExportRecord(&entries[i])); err != nil {
				return errors.NewInternal(err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &ExportOutput{Path: path, Count: len(entries), ExportedAt: now.Unix()}, nil
}

func defaultExportPath(label string, now time.Time) (string, error) {
	dir, err := DefaultExportsDir()
	if err != nil {
		return "", err
	}
	if label = strings.TrimSpace(label); label == "" {
		label = "journal"
	} else {
		label = SanitizeForFilename(label)
	}
	return filepath.Join(dir, label+"-"+now.Format("2006-01-02T150405")+".jsonl"), nil
}

// writeFileAtomic streams JSON lines into a temp file next to path and renames
// it into place once fsynced. The temp file is removed on any failure.
func writeFileAtomic(path string, write func(*json.Encoder) error) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return errors.NewInternal(fmt.Errorf("failed to create export directory: %w", err))
	}

	suffix, err := generateULID()
	if err != nil {
		return errors.NewInternal(fmt.Errorf("failed to generate temp file name: %w", err))
	}
	tmp := path + "." + strings.ToLower(suffix) + ".tmp"
	file, err := openFileNoFollow(tmp, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0600)
	if err != nil {
		return errors.NewInternal(fmt.Errorf("failed to create export file: %w", err))
	}
	defer func() {
		if file != nil {
			file.Close()
		}
		if err != nil {
			os.Remove(tmp)
		}
	}()

	if err := write(json.NewEncoder(file)); err != nil {
		return err
	}
	if err := file.Sync(); err != nil {
		return errors.NewInternal(err)
	}
	closeErr := file.Close()
	file = nil
	if closeErr != nil {
		return errors.NewInternal(fmt.Errorf("failed to close export file: %w", closeErr))
	}

	// os.Rename would follow a symlinked destination.
	if isSymlink(path) {
		return errors.NewInvalidRequest("export path is a symlink")
	}
	if err := os.Rename(tmp, path); err != nil {
		if _, statErr := os.Stat(path); runtime.GOOS == "windows" && statErr == nil {
			return errors.NewInvalidRequest("export destination already exists; choose a new path or delete the existing file")
		}
		return errors.NewInternal(fmt.Errorf("failed to finalize export: %w", err))
	}
	return nil
}
