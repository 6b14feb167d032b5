package web

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/yuin/goldmark"
	"go.uber.org/zap"

	"github.com/empowerguard/moodjournal/internal/aggregate"
	"github.com/empowerguard/moodjournal/internal/errors"
	"github.com/empowerguard/moodjournal/internal/journal"
	"github.com/empowerguard/moodjournal/internal/ops"
	"github.com/empowerguard/moodjournal/internal/tone"
)

// PageData contains common fields used across all page templates.
type PageData struct {
	Title   string
	Version string
	Nav     string
}

// EntryCard is one entry as shown on the dashboard.
type EntryCard struct {
	ID        string
	Title     string
	Date      string
	Tags      []string
	RawTone   string
	Tone      string
	MoodFill  float64
	Links     []tone.Link
	Excerpt   string
	CreatedAt int64
}

// DistributionRow is one segment of the distribution bar.
type DistributionRow struct {
	Tone    string
	Percent float64
	Offset  float64 // running sum of the previous segments
}

// TrendChart holds precomputed SVG coordinates for the trend series.
type TrendChart struct {
	Width, Height int
	Points        []ChartPoint
	Polyline      string
}

// ChartPoint is a plotted trend point.
type ChartPoint struct {
	X, Y      float64
	Date      string
	MoodValue int
}

// DashboardPageData is the template data for the dashboard.
type DashboardPageData struct {
	PageData
	EntryCount   int
	Average      aggregate.Score
	Distribution []DistributionRow
	Trend        TrendChart
	Cards        []EntryCard
	Pagination   ops.Pagination
}

// DetailPageData is the template data for the entry detail page.
type DetailPageData struct {
	PageData
	Entry        *ops.FetchOutput
	Card         EntryCard
	RenderedHTML template.HTML
}

// ErrorPageData is the template data for the error page.
type ErrorPageData struct {
	PageData
	StatusCode int
	Message    string
}

// Renderer manages template parsing and rendering.
type Renderer struct {
	templates map[string]*template.Template
	version   string
	logger    *zap.Logger
}

// NewRenderer creates a Renderer by parsing templates from the given FS.
func NewRenderer(templateFS fs.FS, version string, logger *zap.Logger) *Renderer {
	if logger == nil {
		logger = zap.NewNop()
	}
	funcMap := template.FuncMap{
		"add":        func(a, b int) int { return a + b },
		"sub":        func(a, b int) int { return a - b },
		"formatTime": formatTime,
		"percent":    func(v float64) string { return strconv.FormatFloat(v, 'f', 1, 64) },
		"coord":      func(v float64) string { return strconv.FormatFloat(v, 'f', 1, 64) },
	}

	layoutTmpl := template.Must(template.New("layout").Funcs(funcMap).ParseFS(templateFS, "layout.html"))

	pages := map[string]string{
		"dashboard": "dashboard.html",
		"detail":    "detail.html",
		"error":     "error.html",
	}

	templates := make(map[string]*template.Template, len(pages))
	for name, file := range pages {
		t := template.Must(layoutTmpl.Clone())
		template.Must(t.ParseFS(templateFS, file))
		templates[name] = t
	}

	return &Renderer{
		templates: templates,
		version:   version,
		logger:    logger,
	}
}

// renderPage renders a named page template with HTTP 200.
func (r *Renderer) renderPage(w http.ResponseWriter, req *http.Request, name string, data any) {
	r.renderPageStatus(w, req, http.StatusOK, name, data)
}

func (r *Renderer) renderPageStatus(w http.ResponseWriter, _ *http.Request, status int, name string, data any) {
	t, ok := r.templates[name]
	if !ok {
		r.logger.Error("template not found", zap.String("template", name))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		r.logger.Error("template execution failed", zap.String("template", name), zap.Error(err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

// renderError renders an error as JSON for API routes and JSON clients,
// otherwise as the error page.
func (r *Renderer) renderError(w http.ResponseWriter, req *http.Request, err error) {
	var jErr *errors.JournalError
	if !stderrors.As(err, &jErr) {
		jErr = errors.NewInternal(err)
	}
	if jErr.Status >= 500 {
		r.logger.Error("request failed",
			zap.String("path", req.URL.Path),
			zap.String("code", string(jErr.Code)),
			zap.Error(err),
		)
	}

	if wantsJSON(req) {
		renderJSON(w, jErr.Status, map[string]any{
			"error": map[string]any{
				"code":    string(jErr.Code),
				"message": jErr.Message,
				"status":  jErr.Status,
			},
		})
		return
	}

	r.renderPageStatus(w, req, jErr.Status, "error", ErrorPageData{
		PageData: PageData{
			Title:   fmt.Sprintf("Error %d", jErr.Status),
			Version: r.version,
		},
		StatusCode: jErr.Status,
		Message:    jErr.Message,
	})
}

func wantsJSON(req *http.Request) bool {
	return strings.HasPrefix(req.URL.Path, "/api/") ||
		strings.Contains(req.Header.Get("Accept"), "application/json")
}

// renderJSON writes a JSON response.
func renderJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// renderMarkdown converts markdown text to HTML using goldmark.
// Raw HTML in the source is omitted by goldmark's default renderer.
func renderMarkdown(md string) template.HTML {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(md), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(md))
	}
	return template.HTML(buf.String())
}

// formatTime formats a Unix timestamp as "2006-01-02 15:04" UTC.
func formatTime(unix int64) string {
	return time.Unix(unix, 0).UTC().Format("2006-01-02 15:04")
}

// excerpt returns at most n runes of s on a single line.
func excerpt(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return strings.TrimSpace(string(r[:n])) + "…"
}

// distributionRows orders the distribution low mood to high mood and drops
// empty segments.
func distributionRows(dist map[tone.Tone]float64) []DistributionRow {
	rows := make([]DistributionRow, 0, len(dist))
	offset := 0.0
	for _, t := range tone.All() {
		pct, ok := dist[t]
		if !ok || pct == 0 {
			continue
		}
		rows = append(rows, DistributionRow{Tone: t.String(), Percent: pct, Offset: offset})
		offset += pct
	}
	return rows
}

const (
	chartWidth   = 600
	chartHeight  = 160
	chartPadding = 16
)

// newTrendChart lays out trend points left to right in date order, with
// mood value 0 at the bottom and the maximum at the top.
func newTrendChart(series []aggregate.TrendPoint) TrendChart {
	chart := TrendChart{Width: chartWidth, Height: chartHeight}
	if len(series) == 0 {
		return chart
	}

	plotW := float64(chartWidth - 2*chartPadding)
	plotH := float64(chartHeight - 2*chartPadding)
	step := 0.0
	if len(series) > 1 {
		step = plotW / float64(len(series)-1)
	}

	coords := make([]string, 0, len(series))
	for i, p := range series {
		x := float64(chartPadding) + step*float64(i)
		if len(series) == 1 {
			x = float64(chartWidth) / 2
		}
		y := float64(chartPadding) + plotH*(1-float64(p.MoodValue)/tone.MaxMoodValue)
		chart.Points = append(chart.Points, ChartPoint{
			X:         x,
			Y:         y,
			Date:      journal.FormatDate(p.Date),
			MoodValue: p.MoodValue,
		})
		coords = append(coords, strconv.FormatFloat(x, 'f', 1, 64)+","+strconv.FormatFloat(y, 'f', 1, 64))
	}
	chart.Polyline = strings.Join(coords, " ")
	return chart
}
