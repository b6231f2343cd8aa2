package extract

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"hiredly/internal/errors"
	"hiredly/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractObjectFromNoisyText(t *testing.T) {
	payload := `{"name": "Jane Doe", "skills": ["Python", "Go"], "meta": {"years": 3}}`

	tests := []struct {
		name string
		raw  string
	}{
		{name: "bare", raw: payload},
		{name: "preamble", raw: "Here is the JSON you asked for:\n" + payload},
		{name: "trailing prose", raw: payload + "\n\nLet me know if you need anything else!"},
		{name: "code fence", raw: "```json\n" + payload + "\n```"},
		{name: "prose on both sides", raw: "Sure. " + payload + " Hope this helps."},
		{name: "surrounding whitespace", raw: "\n\t  " + payload + "  \n"},
	}

	var want any
	require.NoError(t, json.Unmarshal([]byte(payload), &want))

	x := New(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, want, x.Extract(tt.raw, ShapeObject))
		})
	}
}

func TestExtractUsesLastClosingDelimiter(t *testing.T) {
	// The stray "}" in the prose comes before the real payload's own close.
	raw := "Note: I removed the } character from your input. Result: {\"ats_score\": 72, \"tags\": {\"a\": 1}}"

	got := New(nil).Extract(raw, ShapeObject)

	obj, ok := got.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(72), obj["ats_score"])
	assert.Equal(t, map[string]any{"a": float64(1)}, obj["tags"])
}

func TestExtractArray(t *testing.T) {
	raw := "Questions below.\n[{\"question\": \"Why Go?\", \"category\": \"Technical\", \"tips\": \"Be concrete\"}]\nGood luck!"

	got := New(nil).Extract(raw, ShapeArray)

	arr, ok := got.([]any)
	require.True(t, ok)
	require.Len(t, arr, 1)
	assert.Equal(t, "Why Go?", arr[0].(map[string]any)["question"])
}

func TestExtractReturnsEmptyValue(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		shape Shape
		want  any
	}{
		{name: "empty object input", raw: "", shape: ShapeObject, want: map[string]any{}},
		{name: "empty array input", raw: "", shape: ShapeArray, want: []any{}},
		{name: "whitespace", raw: "   \n", shape: ShapeObject, want: map[string]any{}},
		{name: "no delimiters", raw: "I cannot help with that.", shape: ShapeObject, want: map[string]any{}},
		{name: "close before open", raw: "} then {", shape: ShapeObject, want: map[string]any{}},
		{name: "malformed json", raw: "{\"name\": \"Jane\",}", shape: ShapeObject, want: map[string]any{}},
		{name: "truncated array", raw: "[{\"question\": \"Why", shape: ShapeArray, want: []any{}},
		{name: "array when object expected", raw: "[1, 2]", shape: ShapeObject, want: map[string]any{}},
		{name: "object when array expected", raw: "{\"a\": 1}", shape: ShapeArray, want: []any{}},
	}

	x := New(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				assert.Equal(t, tt.want, x.Extract(tt.raw, tt.shape))
			})
		})
	}
}

func TestExtractDiagnosticsOnFailure(t *testing.T) {
	var logs bytes.Buffer
	var hooked []string

	x := New(errors.NewLoggerTo(&logs, slog.LevelDebug), WithFailureHook(func(shape Shape, reason string) {
		hooked = append(hooked, shape.String())
	}))

	x.Extract("not json at all", ShapeArray)
	x.Extract("", ShapeObject) // empty input is not a parse failure

	assert.Equal(t, []string{"array"}, hooked)
	assert.Contains(t, logs.String(), "Structured extraction fell back to empty value")
}

func TestDecodeTyped(t *testing.T) {
	raw := "```json\n{\"ats_score\": \"85%\", \"keyword_match_percentage\": 140, \"strengths\": [\"Go\"]}\n```"

	result, ok := Decode[types.ATSResult](New(nil), raw, ShapeObject)

	require.True(t, ok)
	assert.Equal(t, types.Score(85), result.ATSScore)
	assert.Equal(t, types.Score(140), result.KeywordMatchPercentage, "out of range scores are kept")
	assert.Equal(t, []string{"Go"}, result.Strengths)
}

func TestDecodeKeepsFieldsAroundTypeMismatch(t *testing.T) {
	raw := `{"name": "Jane", "phone": 5551234, "skills": ["Go"], "email": "jane@example.com"}`

	record, ok := Decode[types.ResumeRecord](New(nil), raw, ShapeObject)

	require.True(t, ok)
	assert.Equal(t, "Jane", record.Name)
	assert.Equal(t, "jane@example.com", record.Email)
	assert.Equal(t, []string{"Go"}, record.Skills)
	assert.Empty(t, record.Phone)
}

func TestDecodeFlattensObjectEntries(t *testing.T) {
	raw := `Here you go: {"name": "Jane", "experience": [{"title": "Dev", "company": "Acme"}, "Globex 2022", ""],
		"education": [{"degree": "BSc", "year": 2019}], "skills": "Python"}`

	record, ok := Decode[types.ResumeRecord](New(nil), raw, ShapeObject)

	require.True(t, ok)
	assert.Equal(t, []string{"Dev, Acme", "Globex 2022"}, record.Experience)
	assert.Equal(t, []string{"BSc, 2019"}, record.Education)
	assert.Equal(t, []string{"Python"}, record.Skills)
}

func TestDecodeFailure(t *testing.T) {
	record, ok := Decode[types.ResumeRecord](New(nil), "the model refused", ShapeObject)

	assert.False(t, ok)
	assert.True(t, record.IsEmpty())
}

func FuzzExtractNeverPanics(f *testing.F) {
	for _, seed := range []string{"", "{", "}{", "[]", "{\"a\":[1,2,{}]}", strings.Repeat("}", 10)} {
		f.Add(seed)
	}
	x := New(nil)
	f.Fuzz(func(t *testing.T, raw string) {
		if x.Extract(raw, ShapeObject) == nil {
			t.Fatal("object extraction returned nil")
		}
		if x.Extract(raw, ShapeArray) == nil {
			t.Fatal("array extraction returned nil")
		}
	})
}
