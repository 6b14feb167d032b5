package ops

import (
	"bufio"
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"

	"github.com/empowerguard/moodjournal/internal/config"
	"github.com/empowerguard/moodjournal/internal/db"
	"github.com/empowerguard/moodjournal/internal/errors"
	"github.com/empowerguard/moodjournal/internal/journal"
)

// ImportMode controls collision behavior during import.
type ImportMode string

const (
	ImportModeError   ImportMode = "error"   // fail on any collision or bad line (atomic)
	ImportModeReplace ImportMode = "replace" // overwrite entries with the same ID
	ImportModeRename  ImportMode = "rename"  // give colliding entries a new ID
)

func (m ImportMode) valid() bool {
	switch m {
	case ImportModeError, ImportModeReplace, ImportModeRename:
		return true
	}
	return false
}

// maxImportLine bounds one JSONL line. Entries are capped by content_max_chars,
// so this only guards against garbage input.
const maxImportLine = 4 << 20

// ImportInput contains parameters for the Import operation.
type ImportInput struct {
	Path string     // required
	Mode ImportMode // default: error
}

// ImportOutput contains the result of the Import operation.
type ImportOutput struct {
	Imported int           `json:"imported"`
	Skipped  int           `json:"skipped"`
	Errors   []ImportError `json:"errors"`
}

// ImportError represents an error that occurred during import.
type ImportError struct {
	Line    int    `json:"line"`
	ID      string `json:"id,omitempty"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Import loads entries from a JSONL export file.
func Import(ctx context.Context, database *sql.DB, cfg *config.Config, input ImportInput) (*ImportOutput, error) {
	if input.Mode == "" {
		input.Mode = ImportModeError
	}
	if !input.Mode.valid() {
		return nil, errors.NewInvalidRequest("mode must be one of: error, replace, rename")
	}
	if err := ValidatePath(input.Path, PathCheckRead, cfg); err != nil {
		return nil, err
	}

	file, err := openFileNoFollowRead(input.Path)
	if err != nil {
		var jErr *errors.JournalError
		if stderrors.As(err, &jErr) {
			return nil, err
		}
		return nil, errors.NewInternal(fmt.Errorf("failed to open import file: %w", err))
	}
	defer file.Close()

	records, parseErrors := parseExportFile(file)

	if input.Mode == ImportModeError && len(parseErrors) > 0 {
		return &ImportOutput{Errors: parseErrors}, nil
	}

	tx, err := database.BeginTx(ctx, nil)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer tx.Rollback() //nolint:errcheck

	out := &ImportOutput{Errors: parseErrors, Skipped: len(parseErrors)}

	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return nil, errors.NewCancelled("import")
		}

		e := rec.record.ToEntry()
		collision, err := resolveCollision(ctx, tx, e, input.Mode)
		if err != nil {
			return nil, err
		}
		if collision {
			return &ImportOutput{Errors: []ImportError{{
				Line:    rec.line,
				ID:      e.ID,
				Code:    "ID_COLLISION",
				Message: fmt.Sprintf("entry with id %q already exists", e.ID),
			}}}, nil
		}

		if err := db.Insert(ctx, tx, e); err != nil {
			if input.Mode == ImportModeError {
				return nil, err
			}
			out.Errors = append(out.Errors, ImportError{
				Line:    rec.line,
				ID:      e.ID,
				Code:    "INSERT_FAILED",
				Message: err.Error(),
			})
			out.Skipped++
			continue
		}
		out.Imported++
	}

	if err := tx.Commit(); err != nil {
		return nil, errors.NewInternal(err)
	}
	if out.Errors == nil {
		out.Errors = []ImportError{}
	}
	return out, nil
}

// resolveCollision applies mode to an entry whose ID is already stored:
// replace removes the stored entry, rename assigns e a fresh ID. It reports
// true only for a collision under ImportModeError.
func resolveCollision(ctx context.Context, tx *sql.Tx, e *journal.Entry, mode ImportMode) (bool, error) {
	exists, err := db.Exists(ctx, tx, e.ID)
	if err != nil || !exists {
		return false, err
	}
	switch mode {
	case ImportModeReplace:
		_, err = db.Remove(ctx, tx, e.ID)
	case ImportModeRename:
		if e.ID, err = generateULID(); err != nil {
			err = errors.NewInternal(err)
		}
	default:
		return true, nil
	}
	return false, err
}

type parsedRecord struct {
	line   int
	record journal.ExportRecord
}

// parseExportFile parses JSONL into records, skipping the header line.
func parseExportFile(r io.Reader) ([]parsedRecord, []ImportError) {
	var records []parsedRecord
	var parseErrors []ImportError

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxImportLine)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var record journal.ExportRecord
		if err := json.Unmarshal(line, &record); err != nil {
			parseErrors = append(parseErrors, ImportError{
				Line:    lineNum,
				Code:    "PARSE_ERROR",
				Message: fmt.Sprintf("invalid JSON: %v", err),
			})
			continue
		}

		if record.MoodJournalExport {
			continue
		}

		if record.ID == "" {
			parseErrors = append(parseErrors, ImportError{
				Line:    lineNum,
				Code:    "INVALID_RECORD",
				Message: "missing id field",
			})
			continue
		}
		if record.Content == "" {
			parseErrors = append(parseErrors, ImportError{
				Line:    lineNum,
				ID:      record.ID,
				Code:    "INVALID_RECORD",
				Message: "missing content field",
			})
			continue
		}

		records = append(records, parsedRecord{line: lineNum, record: record})
	}

	if err := scanner.Err(); err != nil {
		parseErrors = append(parseErrors, ImportError{
			Line:    lineNum,
			Code:    "READ_ERROR",
			Message: fmt.Sprintf("failed to read file: %v", err),
		})
	}

	return records, parseErrors
}
