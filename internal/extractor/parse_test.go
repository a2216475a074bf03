package extractor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"meeting-assistant-go/internal/llm"
)

func TestStripCodeFences(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"```json\n{\"a\":1}\n```", `{"a":1}`},
		{"```\n{\"a\":1}\n```", `{"a":1}`},
		{"  {\"a\":1}  ", `{"a":1}`},
		{"```json {\"a\":1}```", `{"a":1}`},
		{"\r\n```json\r\n[1]\r\n```", `[1]`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, stripCodeFences(tt.in), "input %q", tt.in)
	}
}

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`prefix {"a":{"b":1}} suffix`, `{"a":{"b":1}}`},
		{`{"s":"a } inside"} tail`, `{"s":"a } inside"}`},
		{`{"s":"quote \" and }"}`, `{"s":"quote \" and }"}`},
		{`list: [{"a":1},{"a":2}] done`, `[{"a":1},{"a":2}]`},
		{`no json here`, ``},
		{`{"unterminated": 1`, ``},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, extractJSON(tt.in), "input %q", tt.in)
	}
}

func TestAdapterFor(t *testing.T) {
	assert.IsType(t, strictJSON{}, adapterFor(llm.KindOpenAI))
	assert.IsType(t, fencedJSON{}, adapterFor(llm.KindGemini))

	assert.Equal(t, " keep ", strictJSON{}.text(" keep "))
	assert.Equal(t, "trim", fencedJSON{}.text("\n trim \n"))
}

func TestFencedJSON_Decode(t *testing.T) {
	var v struct {
		Summary string `json:"summary"`
	}
	require.NoError(t, fencedJSON{}.decodeJSON("```json\n{\"summary\":\"ok\"}\n```", &v))
	assert.Equal(t, "ok", v.Summary)

	err := fencedJSON{}.decodeJSON("nothing useful", &v)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no JSON found")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 5))
	assert.Equal(t, "ab...", truncate("abcdef", 2))
}
