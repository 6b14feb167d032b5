package inference

import "strings"

// promptHeader is the fixed counselor instruction placed before the entry text.
const promptHeader = `You are an expert mental health counselor.
Analyze the following journal entry text and determine the emotional tone.
Always provide at least one recommendation in the "recommendations" array, even if the tone is positive.
Return only a JSON object with exactly the keys "tone" and "recommendations".
The JSON object must follow this structure without any additional text:
{
  "tone": string,
  "recommendations": string[]
}
Journal Entry:
`

// BuildPrompt embeds journal text in the fixed instruction prompt.
func BuildPrompt(journalText string) string {
	var sb strings.Builder
	sb.Grow(len(promptHeader) + len(journalText) + 1)
	sb.WriteString(promptHeader)
	sb.WriteString(journalText)
	sb.WriteString("\n")
	return sb.String()
}
