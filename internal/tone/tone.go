// Package tone defines the canonical tone taxonomy and the normalizer that maps
// raw tone labels (model output, facial-expression tags) onto it.
package tone

// Tone is a canonical tone category, or Unrecognized.
type Tone int

const (
	// Unrecognized means the tone was absent or could not be mapped.
	Unrecognized Tone = iota
	Angry
	Sad
	Neutral
	Happy
)

// NotProvided is the sentinel stored on entries that never received a tone.
const NotProvided = "Not provided"

// Unknown is the tone the inference pipeline reports when classification failed.
const Unknown = "unknown"

// MaxMoodValue is the mood value of the highest canonical tone.
const MaxMoodValue = 4

var names = [...]string{
	Unrecognized: "Unrecognized",
	Angry:        "Angry",
	Sad:          "Sad",
	Neutral:      "Neutral",
	Happy:        "Happy",
}

// All returns the canonical tones ordered low mood to high mood.
func All() []Tone {
	return []Tone{Angry, Sad, Neutral, Happy}
}

// String returns the canonical name.
func (t Tone) String() string {
	if t < Unrecognized || t > Happy {
		return names[Unrecognized]
	}
	return names[t]
}

// MoodValue returns the 1..4 mood value. ok is false for Unrecognized.
func (t Tone) MoodValue() (value int, ok bool) {
	if t < Angry || t > Happy {
		return 0, false
	}
	return int(t), true
}

// Recognized reports whether t is one of the four canonical tones.
func (t Tone) Recognized() bool {
	_, ok := t.MoodValue()
	return ok
}

// MarshalText lets Tone be used as a JSON object key and value.
func (t Tone) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText parses any raw label through Normalize, so it never fails.
func (t *Tone) UnmarshalText(b []byte) error {
	*t = Normalize(string(b))
	return nil
}
