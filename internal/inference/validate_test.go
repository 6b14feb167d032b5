package inference

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/empowerguard/moodjournal/internal/errors"
)

func TestValidate_Accepts(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Result
	}{
		{
			name: "well formed",
			raw:  `{"tone":"Happy","recommendations":["Keep a gratitude list."]}`,
			want: Result{Tone: "Happy", Recommendations: []string{"Keep a gratitude list."}},
		},
		{
			name: "empty recommendations",
			raw:  `{"tone":"Sad","recommendations":[]}`,
			want: Result{Tone: "Sad", Recommendations: []string{}},
		},
		{
			name: "extra fields ignored",
			raw:  `{"tone":"calm","recommendations":["Walk."],"confidence":0.9}`,
			want: Result{Tone: "calm", Recommendations: []string{"Walk."}},
		},
		{
			name: "surrounding whitespace",
			raw:  "  \n{\"tone\":\"Angry\",\"recommendations\":[\"Breathe.\"]}\n",
			want: Result{Tone: "Angry", Recommendations: []string{"Breathe."}},
		},
		{
			name: "tone kept verbatim",
			raw:  `{"tone":"  Melancholy ","recommendations":["Rest."]}`,
			want: Result{Tone: "  Melancholy ", Recommendations: []string{"Rest."}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Validate(tt.raw)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestValidate_Rejects(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"prose", "The tone is happy."},
		{"empty", ""},
		{"prose around json", `Sure! {"tone":"Happy","recommendations":[]}`},
		{"code fence", "```json\n{\"tone\":\"Happy\",\"recommendations\":[]}\n```"},
		{"array", `[{"tone":"Happy"}]`},
		{"null", "null"},
		{"missing tone", `{"recommendations":["x"]}`},
		{"missing recommendations", `{"tone":"Happy"}`},
		{"tone not string", `{"tone":3,"recommendations":[]}`},
		{"tone null", `{"tone":null,"recommendations":[]}`},
		{"recommendations not array", `{"tone":"Happy","recommendations":"rest"}`},
		{"recommendations null", `{"tone":"Happy","recommendations":null}`},
		{"recommendation not string", `{"tone":"Happy","recommendations":["ok",2]}`},
		{"truncated", `{"tone":"Happy","recommendations":["ok"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Validate(tt.raw)
			require.Error(t, err)
			require.True(t, errors.Is(err, errors.ErrMalformedResponse), "got %v", err)
		})
	}
}
