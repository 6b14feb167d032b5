package inference

import (
	"bytes"
	"encoding/json"

	"github.com/empowerguard/moodjournal/internal/errors"
)

// Result is a tone classification with coping recommendations.
// Tone holds the model's own vocabulary; canonicalization happens at aggregation time.
type Result struct {
	Tone            string   `json:"tone" jsonschema:"description=Overall emotional tone of the journal entry in one word"`
	Recommendations []string `json:"recommendations" jsonschema:"description=Coping recommendations for the writer; at least one"`
}

// Validate parses raw model output into a Result.
//
// The whole output must be one JSON object with a string "tone" and an array
// of strings "recommendations". Extra fields are ignored. Anything else fails
// with a MALFORMED_RESPONSE error. An empty recommendations array is valid;
// the fallback policy belongs to the caller.
func Validate(rawOutput string) (Result, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(rawOutput), &fields); err != nil {
		return Result{}, errors.NewMalformedResponse("output is not a JSON object", err)
	}
	if fields == nil {
		return Result{}, errors.NewMalformedResponse("output is not a JSON object", nil)
	}

	rawTone, ok := fields["tone"]
	if !ok {
		return Result{}, errors.NewMalformedResponse(`missing field "tone"`, nil)
	}
	tone, err := decodeString(rawTone)
	if err != nil {
		return Result{}, errors.NewMalformedResponse(`field "tone" must be a string`, err)
	}

	rawRecs, ok := fields["recommendations"]
	if !ok {
		return Result{}, errors.NewMalformedResponse(`missing field "recommendations"`, nil)
	}
	recs, err := decodeStringArray(rawRecs)
	if err != nil {
		return Result{}, errors.NewMalformedResponse(`field "recommendations" must be an array of strings`, err)
	}

	return Result{Tone: tone, Recommendations: recs}, nil
}

// decodeString rejects null and non-string values, which json.Unmarshal
// would otherwise accept (null) or coerce into the zero value.
func decodeString(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '"' {
		return "", errNotString
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", err
	}
	return s, nil
}

func decodeStringArray(raw json.RawMessage) ([]string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '[' {
		return nil, errNotArray
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, err
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		s, err := decodeString(item)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}
