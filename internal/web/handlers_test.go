package web

import (
	"context"
	"encoding/json"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/empowerguard/moodjournal/internal/aggregate"
	"github.com/empowerguard/moodjournal/internal/config"
	"github.com/empowerguard/moodjournal/internal/db"
	"github.com/empowerguard/moodjournal/internal/inference"
	"github.com/empowerguard/moodjournal/internal/ops"
	"github.com/empowerguard/moodjournal/internal/tone"
)

// stubService answers every prompt with the given model output.
func stubService(out string) inference.Service {
	return inference.ServiceFunc(func(context.Context, string) (string, error) {
		return out, nil
	})
}

func setupTest(t *testing.T, svc inference.Service) *Handlers {
	t.Helper()
	database, err := db.Init(t.TempDir())
	if err != nil {
		t.Fatalf("db.Init: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	templateSub, err := fs.Sub(templateFS, "templates")
	if err != nil {
		t.Fatalf("template sub-FS: %v", err)
	}

	return &Handlers{
		db:       database,
		cfg:      config.DefaultConfig(),
		analyzer: inference.NewPipeline(svc, nil),
		logger:   zap.NewNop(),
		renderer: NewRenderer(templateSub, "test", nil),
	}
}

func newTestServer(t *testing.T, svc inference.Service) (*Handlers, http.Handler) {
	t.Helper()
	h := setupTest(t, svc)
	srv := NewServer(h.db, h.cfg, h.analyzer, nil, Options{Version: "test", Bind: "127.0.0.1", Port: 0})
	return h, srv.Handler
}

func seedEntry(t *testing.T, h *Handlers, title, content, date string) string {
	t.Helper()
	out, err := ops.Create(context.Background(), h.db, h.cfg, h.analyzer, ops.CreateInput{
		Title:   title,
		Content: content,
		Date:    date,
	})
	if err != nil {
		t.Fatalf("seed entry %q: %v", title, err)
	}
	return out.Entry.ID
}

func do(t *testing.T, handler http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

// --- routing and middleware ---

func TestRootRedirectsToDashboard(t *testing.T) {
	_, handler := newTestServer(t, inference.Disabled)

	rec := do(t, handler, "GET", "/", "")
	if rec.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/dashboard" {
		t.Errorf("Location = %q, want /dashboard", loc)
	}
}

func TestSecurityAndCORSHeaders(t *testing.T) {
	_, handler := newTestServer(t, inference.Disabled)

	rec := do(t, handler, "GET", "/api/journal", "")
	for _, name := range []string{"Content-Security-Policy", "X-Content-Type-Options", "X-Frame-Options"} {
		if rec.Header().Get(name) == "" {
			t.Errorf("missing %s header", name)
		}
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Access-Control-Allow-Origin = %q, want *", got)
	}
}

func TestCORSPreflight(t *testing.T) {
	_, handler := newTestServer(t, inference.Disabled)

	rec := do(t, handler, "OPTIONS", "/api/journal", "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
	if !strings.Contains(rec.Header().Get("Access-Control-Allow-Methods"), "DELETE") {
		t.Error("expected DELETE in allowed methods")
	}
}

func TestStaticStylesheet(t *testing.T) {
	_, handler := newTestServer(t, inference.Disabled)

	rec := do(t, handler, "GET", "/static/style.css", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), ".meter") {
		t.Error("expected stylesheet body")
	}
}

// --- JSON API ---

func TestCreate_Returns201WithEntry(t *testing.T) {
	_, handler := newTestServer(t, stubService(`{"tone":"joyful","recommendations":["Keep a gratitude list"]}`))

	rec := do(t, handler, "POST", "/api/journal",
		`{"title":"Good day","content":"Went hiking with friends.","tags":["Outdoors"],"date":"2026-03-01"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201; body=%s", rec.Code, rec.Body.String())
	}

	var got struct {
		ID               string   `json:"id"`
		Title            string   `json:"title"`
		Tags             []string `json:"tags"`
		EmotionalContext struct {
			Tone            string   `json:"tone"`
			Recommendations []string `json:"recommendations"`
		} `json:"emotional_context"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.ID == "" {
		t.Error("expected an id")
	}
	if got.Title != "Good day" {
		t.Errorf("title = %q", got.Title)
	}
	if got.EmotionalContext.Tone != "joyful" {
		t.Errorf("tone = %q, want joyful", got.EmotionalContext.Tone)
	}
	if len(got.EmotionalContext.Recommendations) != 1 {
		t.Errorf("recommendations = %v", got.EmotionalContext.Recommendations)
	}
}

func TestCreate_InferenceFailureStillSaves(t *testing.T) {
	h, handler := newTestServer(t, inference.Disabled)

	rec := do(t, handler, "POST", "/api/journal", `{"content":"Quiet evening."}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201; body=%s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"tone":"unknown"`) {
		t.Errorf("expected unknown tone, got %s", rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), inference.DefaultRecommendations()[0]) {
		t.Errorf("expected default recommendations, got %s", rec.Body.String())
	}

	out, err := ops.List(context.Background(), h.db, ops.ListInput{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if out.Pagination.Total != 1 {
		t.Errorf("total = %d, want 1", out.Pagination.Total)
	}
}

func TestCreate_Errors(t *testing.T) {
	_, handler := newTestServer(t, inference.Disabled)

	tests := []struct {
		name string
		body string
		code string
	}{
		{"malformed json", `{"content":`, "INVALID_REQUEST"},
		{"missing content", `{"title":"x"}`, "INVALID_REQUEST"},
		{"bad date", `{"content":"x","date":"yesterday"}`, "INVALID_REQUEST"},
		{"weather not object", `{"content":"x","weather":[1,2]}`, "INVALID_REQUEST"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, handler, "POST", "/api/journal", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400; body=%s", rec.Code, rec.Body.String())
			}
			if !strings.Contains(rec.Body.String(), tt.code) {
				t.Errorf("expected %s in body, got %s", tt.code, rec.Body.String())
			}
		})
	}
}

func TestList_NewestFirst(t *testing.T) {
	h, handler := newTestServer(t, stubService(`{"tone":"calm","recommendations":["Rest"]}`))
	seedEntry(t, h, "first", "one", "2026-01-01")
	seedEntry(t, h, "second", "two", "2026-01-02")

	rec := do(t, handler, "GET", "/api/journal?limit=1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var got ops.ListOutput
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got.Items) != 1 || got.Items[0].Title != "second" {
		t.Fatalf("items = %+v, want [second]", got.Items)
	}
	if !got.Pagination.HasMore || got.Pagination.Total != 2 {
		t.Errorf("pagination = %+v", got.Pagination)
	}
}

func TestList_SearchQuery(t *testing.T) {
	h, handler := newTestServer(t, stubService(`{"tone":"calm","recommendations":["Rest"]}`))
	seedEntry(t, h, "Beach day", "Sun and sand.", "2026-01-01")
	seedEntry(t, h, "Office", "Quarterly review.", "2026-01-02")
	seedEntry(t, h, "Evening", "Walked along the beach.", "2026-01-03")

	rec := do(t, handler, "GET", "/api/journal?q=BEACH", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body=%s", rec.Code, rec.Body.String())
	}

	var got ops.SearchOutput
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got.Items) != 2 || got.Items[0].Title != "Evening" || got.Items[1].Title != "Beach day" {
		t.Fatalf("items = %+v, want [Evening, Beach day]", got.Items)
	}
	if got.Items[0].Snippet != "Walked along the beach." {
		t.Errorf("snippet = %q", got.Items[0].Snippet)
	}

	rec = do(t, handler, "GET", "/api/journal?tag=%20", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("blank tag status = %d, want 400", rec.Code)
	}
}

func TestFetch_NotFound(t *testing.T) {
	_, handler := newTestServer(t, inference.Disabled)

	rec := do(t, handler, "GET", "/api/journal/01ARZ3NDEKTSV4RRFFQ69G5FAV", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "NOT_FOUND") {
		t.Errorf("expected NOT_FOUND, got %s", rec.Body.String())
	}
}

func TestDelete(t *testing.T) {
	h, handler := newTestServer(t, inference.Disabled)
	id := seedEntry(t, h, "doomed", "bye", "")

	rec := do(t, handler, "DELETE", "/api/journal/"+id, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body=%s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"deleted":true`) {
		t.Errorf("unexpected body %s", rec.Body.String())
	}

	rec = do(t, handler, "DELETE", "/api/journal/"+id, "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("second delete status = %d, want 404", rec.Code)
	}
}

func TestStats_EmptyJournal(t *testing.T) {
	_, handler := newTestServer(t, inference.Disabled)

	rec := do(t, handler, "GET", "/api/stats", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `"average_mood_score":"not available"`) {
		t.Errorf("expected unavailable average, got %s", body)
	}
	if !strings.Contains(body, `"entry_count":0`) {
		t.Errorf("expected zero entries, got %s", body)
	}
}

func TestStats_WithEntries(t *testing.T) {
	h, handler := newTestServer(t, stubService(`{"tone":"happy","recommendations":["Share it"]}`))
	seedEntry(t, h, "a", "sunny", "2026-02-01")
	seedEntry(t, h, "b", "sunny again", "2026-02-02")

	rec := do(t, handler, "GET", "/api/stats", "")
	var got struct {
		EntryCount       int                `json:"entry_count"`
		Distribution     map[string]float64 `json:"distribution"`
		AverageMoodScore float64            `json:"average_mood_score"`
		TrendSeries      []json.RawMessage  `json:"trend_series"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v; body=%s", err, rec.Body.String())
	}
	if got.EntryCount != 2 {
		t.Errorf("entry_count = %d", got.EntryCount)
	}
	if got.Distribution["Happy"] != 100 {
		t.Errorf("distribution = %v", got.Distribution)
	}
	if got.AverageMoodScore != 4 {
		t.Errorf("average = %v, want 4", got.AverageMoodScore)
	}
	if len(got.TrendSeries) != 2 {
		t.Errorf("trend points = %d, want 2", len(got.TrendSeries))
	}
}

func TestAnalyze_DoesNotStore(t *testing.T) {
	h, handler := newTestServer(t, stubService(`{"tone":"furious","recommendations":["Take a walk"]}`))

	rec := do(t, handler, "POST", "/api/analyze", `{"text":"Everything went wrong"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body=%s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"canonical":"Angry"`) {
		t.Errorf("expected canonical Angry, got %s", rec.Body.String())
	}

	out, err := ops.List(context.Background(), h.db, ops.ListInput{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if out.Pagination.Total != 0 {
		t.Errorf("analyze stored %d entries", out.Pagination.Total)
	}
}

// --- HTML pages ---

func TestDashboard_Empty(t *testing.T) {
	h := setupTest(t, inference.Disabled)

	rec := httptest.NewRecorder()
	h.HandleDashboard(rec, httptest.NewRequest("GET", "/dashboard", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "not available") {
		t.Error("expected 'not available' average")
	}
	if !strings.Contains(body, "Nothing written yet") {
		t.Error("expected empty state")
	}
}

func TestDashboard_CardsAndSupportLinks(t *testing.T) {
	h := setupTest(t, stubService(`{"tone":"sad","recommendations":["Call a friend"]}`))
	seedEntry(t, h, "Rainy", "Missed the bus and felt low.", "2026-04-10")

	rec := httptest.NewRecorder()
	h.HandleDashboard(rec, httptest.NewRequest("GET", "/dashboard", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{"Rainy", "2026-04-10", "Coping with Sadness", "<polyline", "tone-Sad"} {
		if !strings.Contains(body, want) {
			t.Errorf("expected %q in dashboard", want)
		}
	}
}

func TestDetail_RendersMarkdown(t *testing.T) {
	h := setupTest(t, stubService(`{"tone":"neutral","recommendations":["Keep writing"]}`))
	id := seedEntry(t, h, "Notes", "# Heading\n\nSome *emphasis* here.", "")

	req := httptest.NewRequest("GET", "/entries/"+id, nil)
	req.SetPathValue("id", id)
	rec := httptest.NewRecorder()
	h.HandleDetail(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "<h1>Heading</h1>") {
		t.Error("expected rendered heading")
	}
	if !strings.Contains(body, "<em>emphasis</em>") {
		t.Error("expected rendered emphasis")
	}
	if !strings.Contains(body, "Keep writing") {
		t.Error("expected recommendations")
	}
}

func TestDetail_NotFoundPage(t *testing.T) {
	h := setupTest(t, inference.Disabled)

	req := httptest.NewRequest("GET", "/entries/missing", nil)
	req.SetPathValue("id", "missing")
	rec := httptest.NewRecorder()
	h.HandleDetail(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type = %q, want html", ct)
	}
}

func TestDetail_NotFoundJSON(t *testing.T) {
	h := setupTest(t, inference.Disabled)

	req := httptest.NewRequest("GET", "/entries/missing", nil)
	req.SetPathValue("id", "missing")
	req.Header.Set("Accept", "application/json")
	rec := httptest.NewRecorder()
	h.HandleDetail(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"code":"NOT_FOUND"`) {
		t.Errorf("unexpected body %s", rec.Body.String())
	}
}

// --- helpers ---

func TestDistributionRows(t *testing.T) {
	rows := distributionRows(map[tone.Tone]float64{tone.Happy: 50, tone.Angry: 25, tone.Sad: 25})
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(rows))
	}
	if rows[0].Tone != "Angry" || rows[1].Tone != "Sad" || rows[2].Tone != "Happy" {
		t.Errorf("order = %v", rows)
	}
	if rows[2].Offset != 50 {
		t.Errorf("happy offset = %v, want 50", rows[2].Offset)
	}
}

func TestNewTrendChart(t *testing.T) {
	if c := newTrendChart(nil); len(c.Points) != 0 || c.Polyline != "" {
		t.Errorf("empty series produced %+v", c)
	}

	c := newTrendChart([]aggregate.TrendPoint{{MoodValue: 4}, {MoodValue: 0}})
	if len(c.Points) != 2 {
		t.Fatalf("points = %d", len(c.Points))
	}
	if c.Points[0].Y != chartPadding {
		t.Errorf("max mood y = %v, want top padding", c.Points[0].Y)
	}
	if c.Points[1].Y != chartHeight-chartPadding {
		t.Errorf("zero mood y = %v, want bottom", c.Points[1].Y)
	}
	if c.Points[0].X >= c.Points[1].X {
		t.Error("points should go left to right")
	}
}

func TestExcerpt(t *testing.T) {
	if got := excerpt("short\n text", 20); got != "short text" {
		t.Errorf("excerpt = %q", got)
	}
	if got := excerpt("abcdefghij", 4); got != "abcd…" {
		t.Errorf("excerpt = %q", got)
	}
}

func TestFormatTime(t *testing.T) {
	if got := formatTime(0); got != "1970-01-01 00:00" {
		t.Errorf("formatTime(0) = %q", got)
	}
}
