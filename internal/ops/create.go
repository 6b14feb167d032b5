package ops

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"github.com/empowerguard/moodjournal/internal/config"
	"github.com/empowerguard/moodjournal/internal/db"
	"github.com/empowerguard/moodjournal/internal/errors"
	"github.com/empowerguard/moodjournal/internal/inference"
	"github.com/empowerguard/moodjournal/internal/journal"
)

// CreateInput contains parameters for the Create operation.
type CreateInput struct {
	Title       string
	Content     string // required
	Tags        []string
	Date        string // RFC3339 or YYYY-MM-DD; default: now
	Geolocation *journal.Geolocation
	Weather     json.RawMessage // must be a JSON object when set
	MediaFiles  []string
	FaceLog     []journal.FaceLogEntry
}

// CreateOutput contains the result of the Create operation.
type CreateOutput struct {
	Entry journal.Entry `json:"entry"`
}

// Create analyzes the content and saves a new entry. Inference failures never
// block the save: the analyzer degrades to the "unknown" tone and the entry
// gets the default recommendations.
func Create(ctx context.Context, database *sql.DB, cfg *config.Config, analyzer Analyzer, input CreateInput) (*CreateOutput, error) {
	if strings.TrimSpace(input.Content) == "" {
		return nil, errors.NewInvalidRequest("content is required")
	}
	chars := journal.CountChars(input.Content)
	if cfg.ContentMaxChars > 0 && chars > cfg.ContentMaxChars {
		return nil, errors.NewContentTooLarge(cfg.ContentMaxChars, chars)
	}

	now := time.Now()
	date, err := journal.ParseDate(input.Date, now)
	if err != nil {
		return nil, errors.NewInvalidRequest(err.Error())
	}

	weather, err := cleanWeather(input.Weather)
	if err != nil {
		return nil, err
	}

	id, err := generateULID()
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	faceLog := input.FaceLog
	if faceLog == nil {
		faceLog = []journal.FaceLogEntry{}
	}
	mediaFiles := input.MediaFiles
	if mediaFiles == nil {
		mediaFiles = []string{}
	}

	result := analyzer.Analyze(ctx, input.Content)
	recs := result.Recommendations
	if len(recs) == 0 {
		recs = inference.DefaultRecommendations()
	}

	e := &journal.Entry{
		ID:           id,
		Title:        strings.TrimSpace(input.Title),
		Content:      input.Content,
		ContentChars: chars,
		Tags:         journal.NormalizeTags(input.Tags),
		Date:         date,
		Geolocation:  input.Geolocation,
		Weather:      weather,
		MediaFiles:   mediaFiles,
		EmotionalContext: journal.EmotionalContext{
			Tone:            journal.ResolveTone(result.Tone, faceLog, cfg.ToneSource),
			Recommendations: recs,
			FaceLog:         faceLog,
		},
		CreatedAt: now.Unix(),
	}

	if err := db.Insert(ctx, database, e); err != nil {
		return nil, err
	}
	return &CreateOutput{Entry: *e}, nil
}

// cleanWeather accepts a JSON object or nothing.
func cleanWeather(raw json.RawMessage) (json.RawMessage, error) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return nil, nil
	}
	var obj map[string]any
	if err := json.Unmarshal([]byte(trimmed), &obj); err != nil {
		return nil, errors.NewInvalidRequest("weather must be a JSON object")
	}
	return json.RawMessage(trimmed), nil
}
