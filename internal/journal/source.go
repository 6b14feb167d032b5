package journal

// Tone sources accepted by ResolveTone.
const (
	SourceText = "text"
	SourceFace = "face"
)

// ResolveTone picks the tone stored on an entry. With source "face" and a
// non-empty face log, the most recent face tag wins; otherwise the text tone
// is kept. The face log itself is always preserved by the caller.
func ResolveTone(textTone string, faceLog []FaceLogEntry, source string) string {
	if source != SourceFace {
		return textTone
	}
	for i := len(faceLog) - 1; i >= 0; i-- {
		if faceLog[i].Emotion != "" {
			return faceLog[i].Emotion
		}
	}
	return textTone
}
