package web

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/empowerguard/moodjournal/internal/aggregate"
	"github.com/empowerguard/moodjournal/internal/config"
	"github.com/empowerguard/moodjournal/internal/errors"
	"github.com/empowerguard/moodjournal/internal/journal"
	"github.com/empowerguard/moodjournal/internal/ops"
	"github.com/empowerguard/moodjournal/internal/tone"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 1 << 20

// Handlers contains HTTP route handlers for the dashboard and the API.
type Handlers struct {
	db       *sql.DB
	cfg      *config.Config
	analyzer ops.Analyzer
	logger   *zap.Logger
	renderer *Renderer
}

// createRequest is the POST /api/journal body.
type createRequest struct {
	Title       string                 `json:"title"`
	Content     string                 `json:"content"`
	Tags        []string               `json:"tags"`
	Date        string                 `json:"date"`
	Geolocation *journal.Geolocation   `json:"geolocation"`
	Weather     json.RawMessage        `json:"weather"`
	MediaFiles  []string               `json:"media_files"`
	FaceLog     []journal.FaceLogEntry `json:"face_log"`
}

// HandleDashboard handles GET /dashboard.
func (h *Handlers) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := ops.Stats(r.Context(), h.db)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	entries, page, err := ops.ListEntries(r.Context(), h.db, ops.ListInput{
		Limit:  parseIntParam(r, "limit", ops.DefaultListLimit),
		Offset: parseIntParam(r, "offset", 0),
	})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	cards := make([]EntryCard, 0, len(entries))
	for i := range entries {
		cards = append(cards, newEntryCard(&entries[i]))
	}

	h.renderer.renderPage(w, r, "dashboard", DashboardPageData{
		PageData: PageData{
			Title:   "Dashboard",
			Version: h.renderer.version,
			Nav:     "dashboard",
		},
		EntryCount:   stats.EntryCount,
		Average:      stats.AverageMoodScore,
		Distribution: distributionRows(stats.Distribution),
		Trend:        newTrendChart(stats.TrendSeries),
		Cards:        cards,
		Pagination:   page,
	})
}

// HandleDetail handles GET /entries/{id}.
func (h *Handlers) HandleDetail(w http.ResponseWriter, r *http.Request) {
	out, err := ops.Fetch(r.Context(), h.db, ops.FetchInput{ID: r.PathValue("id")})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	h.renderer.renderPage(w, r, "detail", DetailPageData{
		PageData: PageData{
			Title:   displayTitle(out.Title, out.ID),
			Version: h.renderer.version,
			Nav:     "dashboard",
		},
		Entry:        out,
		Card:         newEntryCard(&out.Entry),
		RenderedHTML: renderMarkdown(out.Content),
	})
}

// HandleCreate handles POST /api/journal. Responds 201 with the saved entry.
func (h *Handlers) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("invalid JSON body: "+err.Error()))
		return
	}

	out, err := ops.Create(r.Context(), h.db, h.cfg, h.analyzer, ops.CreateInput{
		Title:       req.Title,
		Content:     req.Content,
		Tags:        req.Tags,
		Date:        req.Date,
		Geolocation: req.Geolocation,
		Weather:     req.Weather,
		MediaFiles:  req.MediaFiles,
		FaceLog:     req.FaceLog,
	})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	h.logger.Info("entry created",
		zap.String("id", out.Entry.ID),
		zap.String("tone", out.Entry.EmotionalContext.Tone),
	)
	renderJSON(w, http.StatusCreated, out.Entry)
}

// HandleList handles GET /api/journal. A q or tag parameter turns the listing
// into a search.
func (h *Handlers) HandleList(w http.ResponseWriter, r *http.Request) {
	limit := parseIntParam(r, "limit", ops.DefaultListLimit)
	offset := parseIntParam(r, "offset", 0)

	var (
		out any
		err error
	)
	if q, tag := r.URL.Query().Get("q"), r.URL.Query().Get("tag"); q != "" || tag != "" {
		out, err = ops.Search(r.Context(), h.db, ops.SearchInput{Query: q, Tag: tag, Limit: limit, Offset: offset})
	} else {
		out, err = ops.List(r.Context(), h.db, ops.ListInput{Limit: limit, Offset: offset})
	}
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	renderJSON(w, http.StatusOK, out)
}

// HandleFetch handles GET /api/journal/{id}.
func (h *Handlers) HandleFetch(w http.ResponseWriter, r *http.Request) {
	out, err := ops.Fetch(r.Context(), h.db, ops.FetchInput{ID: r.PathValue("id")})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	renderJSON(w, http.StatusOK, out)
}

// HandleDelete handles DELETE /api/journal/{id}. A missing entry is 404.
func (h *Handlers) HandleDelete(w http.ResponseWriter, r *http.Request) {
	out, err := ops.Delete(r.Context(), h.db, ops.DeleteInput{ID: r.PathValue("id")})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	h.logger.Info("entry deleted", zap.String("id", out.ID))
	renderJSON(w, http.StatusOK, map[string]any{
		"deleted": out.Deleted,
		"id":      out.ID,
	})
}

// HandleStats handles GET /api/stats.
func (h *Handlers) HandleStats(w http.ResponseWriter, r *http.Request) {
	out, err := ops.Stats(r.Context(), h.db)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	renderJSON(w, http.StatusOK, out)
}

// HandleAnalyze handles POST /api/analyze: inference only, nothing is stored.
func (h *Handlers) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
	}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("invalid JSON body: "+err.Error()))
		return
	}

	out, err := ops.Analyze(r.Context(), h.analyzer, ops.AnalyzeInput{Text: req.Text})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	renderJSON(w, http.StatusOK, out)
}

// newEntryCard builds the dashboard card for an entry.
func newEntryCard(e *journal.Entry) EntryCard {
	t, fill := aggregate.MoodMeter(e.EmotionalContext.Tone)
	return EntryCard{
		ID:        e.ID,
		Title:     displayTitle(e.Title, e.ID),
		Date:      journal.FormatDate(e.Date),
		Tags:      e.Tags,
		RawTone:   e.EmotionalContext.Tone,
		Tone:      t.String(),
		MoodFill:  fill,
		Links:     tone.SupportLinks(e.EmotionalContext.Tone),
		Excerpt:   excerpt(e.Content, 180),
		CreatedAt: e.CreatedAt,
	}
}

// parseIntParam parses an integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	s := r.URL.Query().Get(name)
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return defaultVal
	}
	return v
}

// displayTitle returns the title if present, or a truncated ID.
func displayTitle(title, id string) string {
	if title != "" {
		return title
	}
	if len(id) > 10 {
		return id[:10] + "..."
	}
	return id
}
