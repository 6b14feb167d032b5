package tone

import "strings"

// Link is a support resource shown next to an entry.
type Link struct {
	Text string `json:"text"`
	URL  string `json:"url"`
}

var (
	hopelessLinks = []Link{
		{Text: "Depression Help", URL: "https://www.depression.org"},
		{Text: "Talk to a Counselor", URL: "https://www.betterhelp.com"},
	}
	angryLinks = []Link{
		{Text: "Calm Down Techniques", URL: "https://www.anger.com"},
		{Text: "Mindfulness Meditation", URL: "https://www.headspace.com/meditation/mindfulness"},
	}
	sadLinks = []Link{
		{Text: "Coping with Sadness", URL: "https://www.samaritans.org"},
		{Text: "Crisis Support", URL: "https://www.crisistextline.org"},
	}
)

// SupportLinks returns resources for a raw tone label, matched by substring
// on the unnormalized label so model phrasing like "hopeless and tired" still
// matches. Returns nil when nothing applies.
func SupportLinks(raw string) []Link {
	s := strings.ToLower(raw)
	var links []Link
	switch {
	case strings.Contains(s, "hopeless"), strings.Contains(s, "depress"):
		links = hopelessLinks
	case strings.Contains(s, "angry"):
		links = angryLinks
	case strings.Contains(s, "sad"):
		links = sadLinks
	default:
		return nil
	}
	out := make([]Link, len(links))
	copy(out, links)
	return out
}
