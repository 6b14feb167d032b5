package journal

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/empowerguard/moodjournal/internal/tone"
)

// DateLayout is the calendar-day form accepted and printed for entry dates.
const DateLayout = "2006-01-02"

// CountChars returns the character count as runes (not bytes).
func CountChars(text string) int {
	return utf8.RuneCountInString(text)
}

// ParseDate accepts RFC3339 or YYYY-MM-DD and returns the time in UTC.
// An empty string yields fallback.
func ParseDate(s string, fallback time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return fallback.UTC(), nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("date %q must be RFC3339 or %s", s, DateLayout)
}

// FormatDate prints a date as YYYY-MM-DD when it falls on midnight UTC and
// as RFC3339 otherwise.
func FormatDate(t time.Time) string {
	t = t.UTC()
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
		return t.Format(DateLayout)
	}
	return t.Format(time.RFC3339)
}

// NormalizeTags trims and lowercases tags, drops empties and keeps the
// first occurrence of duplicates.
func NormalizeTags(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = tone.Clean(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

// SplitTags parses a comma separated tag list.
func SplitTags(s string) []string {
	if strings.TrimSpace(s) == "" {
		return []string{}
	}
	return NormalizeTags(strings.Split(s, ","))
}
