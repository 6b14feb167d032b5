package ops

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/empowerguard/moodjournal/internal/db"
	"github.com/empowerguard/moodjournal/internal/errors"
	"github.com/empowerguard/moodjournal/internal/journal"
	"github.com/empowerguard/moodjournal/internal/tone"
)

// Search limits
const (
	MaxQueryLength  = db.MaxSearchQueryChars
	MaxSnippetChars = 160
)

// SearchInput contains parameters for the Search operation.
type SearchInput struct {
	Query  string // matched against title, tags and content
	Tag    string // optional exact tag filter
	Limit  int    // default: 20, max: 100
	Offset int    // default: 0
}

// SearchResultItem is an entry summary with the content around the first match.
type SearchResultItem struct {
	journal.EntrySummary
	Snippet string `json:"snippet,omitempty"`
}

// SearchOutput contains the result of the Search operation.
type SearchOutput struct {
	Items      []SearchResultItem `json:"items"`
	Pagination Pagination         `json:"pagination"`
	Sort       string             `json:"sort"`
}

// Search finds entries whose title, tags or content contain the query
// (case-insensitive), optionally restricted to one tag. Newest first.
// At least one of query and tag is required.
func Search(ctx context.Context, database *sql.DB, input SearchInput) (*SearchOutput, error) {
	query := strings.TrimSpace(input.Query)
	tag := tone.Clean(input.Tag)
	if query == "" && tag == "" {
		return nil, errors.NewInvalidRequest("query or tag is required")
	}
	if utf8.RuneCountInString(query) > MaxQueryLength {
		return nil, errors.NewInvalidRequest(fmt.Sprintf("query exceeds maximum length of %d characters", MaxQueryLength))
	}

	limit, offset := clampPage(input.Limit, input.Offset)
	entries, total, err := db.Search(ctx, database, db.SearchFilters{Query: query, Tag: tag}, limit, offset)
	if err != nil {
		return nil, err
	}

	items := make([]SearchResultItem, len(entries))
	for i := range entries {
		items[i] = SearchResultItem{
			EntrySummary: entries[i].ToSummary(),
			Snippet:      snippet(entries[i].Content, query, MaxSnippetChars),
		}
	}

	return &SearchOutput{
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

// snippet returns up to maxChars runes of content centred on the first
// case-insensitive occurrence of query, with "..." marking cut ends. It is
// empty when query is empty or only matched the title or tags.
func snippet(content, query string, maxChars int) string {
	if query == "" {
		return ""
	}
	runes := []rune(content)
	lower := []rune(strings.ToLower(content))
	q := []rune(strings.ToLower(query))
	// ToLower can change rune counts for a few scripts; fall back to no snippet.
	if len(lower) != len(runes) {
		return ""
	}

	at := indexRunes(lower, q)
	if at < 0 {
		return ""
	}

	start := max(at-max((maxChars-len(q))/2, 0), 0)
	end := min(start+maxChars, len(runes))
	start = max(end-maxChars, 0)

	// Cut at word boundaries.
	if start > 0 {
		if sp := strings.IndexRune(string(runes[start:at]), ' '); sp >= 0 {
			start += utf8.RuneCountInString(string(runes[start:at])[:sp]) + 1
		}
	}
	if end < len(runes) && end > at+len(q) {
		tail := string(runes[at+len(q) : end])
		if sp := strings.LastIndex(tail, " "); sp >= 0 {
			end = at + len(q) + utf8.RuneCountInString(tail[:sp])
		}
	}

	out := strings.TrimSpace(string(runes[start:end]))
	if start > 0 {
		out = "..." + out
	}
	if end < len(runes) {
		out += "..."
	}
	return out
}

func indexRunes(s, sub []rune) int {
	for i := 0; i+len(sub) <= len(s); i++ {
		match := true
		for j := range sub {
			if s[i+j] != sub[j] {
				match = false
				break
			}
		}
		if match {
			return i
		}
	}
	return -1
}
