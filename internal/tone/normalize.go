package tone

import (
	"regexp"
	"strings"
)

// whitespaceRegex matches one or more whitespace characters
var whitespaceRegex = regexp.MustCompile(`\s+`)

// synonyms maps lower-cased raw labels onto canonical tones.
// Covers model vocabulary and face-expression classifier tags.
var synonyms = map[string]Tone{
	"anger":     Angry,
	"mad":       Angry,
	"furious":   Angry,
	"sadness":   Sad,
	"unhappy":   Sad,
	"depressed": Sad,
	"calm":      Neutral,
	"positive":  Happy,
	"joy":       Happy,
	"joyful":    Happy,
}

// Clean trims, lowercases and collapses internal whitespace.
func Clean(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ToLower(s)
	return whitespaceRegex.ReplaceAllString(s, " ")
}

// Normalize maps a raw tone label onto the taxonomy.
// Empty input and the "Not provided" sentinel map to Unrecognized, as does
// anything neither a synonym nor a canonical name. It never fails.
func Normalize(raw string) Tone {
	s := Clean(raw)
	if s == "" || s == strings.ToLower(NotProvided) {
		return Unrecognized
	}
	if t, ok := synonyms[s]; ok {
		return t
	}
	for _, t := range All() {
		if s == strings.ToLower(t.String()) {
			return t
		}
	}
	return Unrecognized
}
