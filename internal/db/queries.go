package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"github.com/empowerguard/moodjournal/internal/errors"
	"github.com/empowerguard/moodjournal/internal/journal"
)

const entryColumns = `id, title, content, content_chars, tags_json, entry_date,
	latitude, longitude, weather_json, media_json,
	tone, recommendations_json, face_log_json, created_at`

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Insert stores a new entry. An ID collision returns ALREADY_EXISTS.
func Insert(ctx context.Context, db DBTX, e *journal.Entry) error {
	tagsJSON, err := toJSON(e.Tags)
	if err != nil {
		return errors.NewInternal(err)
	}
	mediaJSON, err := toJSON(e.MediaFiles)
	if err != nil {
		return errors.NewInternal(err)
	}
	recsJSON, err := toJSON(e.EmotionalContext.Recommendations)
	if err != nil {
		return errors.NewInternal(err)
	}
	faceJSON, err := toJSON(e.EmotionalContext.FaceLog)
	if err != nil {
		return errors.NewInternal(err)
	}

	var weather sql.NullString
	if len(e.Weather) > 0 && string(e.Weather) != "null" {
		weather = sql.NullString{String: string(e.Weather), Valid: true}
	}

	var lat, long sql.NullFloat64
	if e.Geolocation != nil {
		lat = sql.NullFloat64{Float64: e.Geolocation.Latitude, Valid: true}
		long = sql.NullFloat64{Float64: e.Geolocation.Longitude, Valid: true}
	}

	query := `INSERT INTO entries (` + entryColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = db.ExecContext(ctx, query,
		e.ID, e.Title, e.Content, e.ContentChars, tagsJSON, e.Date.UTC().Format(time.RFC3339Nano),
		lat, long, weather, mediaJSON,
		e.EmotionalContext.Tone, recsJSON, faceJSON, e.CreatedAt,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return errors.NewAlreadyExists(e.ID)
		}
		return errors.NewInternal(err)
	}
	return nil
}

// isUniqueConstraintError checks if the error is a SQLite UNIQUE constraint violation.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "PRIMARY KEY constraint failed")
}

// GetByID retrieves an entry by its ULID.
func GetByID(ctx context.Context, db *sql.DB, id string) (*journal.Entry, error) {
	row := db.QueryRowContext(ctx, `SELECT `+entryColumns+` FROM entries WHERE id = ?`, id)
	e, err := scanEntry(row)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound(id)
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return e, nil
}

// List returns one page of entries, newest first, plus the total count.
func List(ctx context.Context, db *sql.DB, limit, offset int) ([]journal.Entry, int, error) {
	var total int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM entries`).Scan(&total); err != nil {
		return nil, 0, errors.NewInternal(err)
	}

	rows, err := db.QueryContext(ctx,
		`SELECT `+entryColumns+` FROM entries ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`,
		limit, offset)
	if err != nil {
		return nil, 0, errors.NewInternal(err)
	}
	entries, err := scanEntries(rows)
	if err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

// MaxSearchQueryChars bounds the free-text part of a search.
const MaxSearchQueryChars = 200

// SearchFilters narrows Search. Empty fields match everything.
type SearchFilters struct {
	Query string // case-insensitive substring of title, content or any tag
	Tag   string // exact (normalized) tag
}

// Search returns one page of entries matching filters, newest first, plus
// the total number of matches.
func Search(ctx context.Context, db *sql.DB, filters SearchFilters, limit, offset int) ([]journal.Entry, int, error) {
	pattern := "%" + escapeLike(filters.Query) + "%"
	where := ` FROM entries
		WHERE (?1 = '' OR title LIKE ?2 ESCAPE '\' OR content LIKE ?2 ESCAPE '\'
		       OR EXISTS (SELECT 1 FROM json_each(entries.tags_json) WHERE json_each.value LIKE ?2 ESCAPE '\'))
		  AND (?3 = '' OR EXISTS (SELECT 1 FROM json_each(entries.tags_json) WHERE json_each.value = ?3))`

	var total int
	err := db.QueryRowContext(ctx, `SELECT COUNT(*)`+where, filters.Query, pattern, filters.Tag).Scan(&total)
	if err != nil {
		return nil, 0, errors.NewInternal(err)
	}

	rows, err := db.QueryContext(ctx,
		`SELECT `+entryColumns+where+` ORDER BY created_at DESC, id DESC LIMIT ?4 OFFSET ?5`,
		filters.Query, pattern, filters.Tag, limit, offset)
	if err != nil {
		return nil, 0, errors.NewInternal(err)
	}
	entries, err := scanEntries(rows)
	if err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

// escapeLike escapes LIKE wildcards so the query matches literally.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`).Replace(s)
}

// ListAll returns every entry ordered by creation (oldest first).
func ListAll(ctx context.Context, db *sql.DB) ([]journal.Entry, error) {
	rows, err := db.QueryContext(ctx, `SELECT `+entryColumns+` FROM entries ORDER BY created_at ASC, id ASC`)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return scanEntries(rows)
}

// Delete removes an entry permanently and returns what was removed.
func Delete(ctx context.Context, db *sql.DB, id string) (*journal.Entry, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer func() { _ = tx.Rollback() }()

	e, err := scanEntry(tx.QueryRowContext(ctx, `SELECT `+entryColumns+` FROM entries WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound(id)
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM entries WHERE id = ?`, id); err != nil {
		return nil, errors.NewInternal(err)
	}
	if err := tx.Commit(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return e, nil
}

// Remove deletes an entry by ID and reports whether a row was removed.
func Remove(ctx context.Context, db DBTX, id string) (bool, error) {
	result, err := db.ExecContext(ctx, `DELETE FROM entries WHERE id = ?`, id)
	if err != nil {
		return false, errors.NewInternal(err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, errors.NewInternal(err)
	}
	return n > 0, nil
}

// Exists reports whether an entry with id is stored.
func Exists(ctx context.Context, db DBTX, id string) (bool, error) {
	var one int
	err := db.QueryRowContext(ctx, `SELECT 1 FROM entries WHERE id = ? LIMIT 1`, id).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, errors.NewInternal(err)
	}
	return true, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntries(rows *sql.Rows) ([]journal.Entry, error) {
	defer rows.Close()
	entries := []journal.Entry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, errors.NewInternal(err)
		}
		entries = append(entries, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return entries, nil
}

// scanEntry scans a single row into an Entry struct.
func scanEntry(row rowScanner) (*journal.Entry, error) {
	var (
		e         journal.Entry
		tagsJSON  sql.NullString
		entryDate string
		lat, long sql.NullFloat64
		weather   sql.NullString
		mediaJSON sql.NullString
		recsJSON  sql.NullString
		faceJSON  sql.NullString
	)

	err := row.Scan(
		&e.ID, &e.Title, &e.Content, &e.ContentChars, &tagsJSON, &entryDate,
		&lat, &long, &weather, &mediaJSON,
		&e.EmotionalContext.Tone, &recsJSON, &faceJSON, &e.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if e.Date, err = time.Parse(time.RFC3339Nano, entryDate); err != nil {
		return nil, err
	}
	if lat.Valid && long.Valid {
		e.Geolocation = &journal.Geolocation{Latitude: lat.Float64, Longitude: long.Float64}
	}
	if weather.Valid {
		e.Weather = json.RawMessage(weather.String)
	}

	e.Tags = []string{}
	e.MediaFiles = []string{}
	e.EmotionalContext.Recommendations = []string{}
	e.EmotionalContext.FaceLog = []journal.FaceLogEntry{}
	if err := fromJSON(tagsJSON, &e.Tags); err != nil {
		return nil, err
	}
	if err := fromJSON(mediaJSON, &e.MediaFiles); err != nil {
		return nil, err
	}
	if err := fromJSON(recsJSON, &e.EmotionalContext.Recommendations); err != nil {
		return nil, err
	}
	if err := fromJSON(faceJSON, &e.EmotionalContext.FaceLog); err != nil {
		return nil, err
	}

	return &e, nil
}

// toJSON stores empty slices as NULL.
func toJSON[T any](items []T) (sql.NullString, error) {
	if len(items) == 0 {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(items)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

func fromJSON[T any](ns sql.NullString, dst *[]T) error {
	if !ns.Valid || ns.String == "" {
		return nil
	}
	return json.Unmarshal([]byte(ns.String), dst)
}
