package extractor

import (
	"encoding/json"
	"fmt"
	"strings"

	"meeting-assistant-go/internal/llm"
)

// adapter turns one provider's raw output into values the analyzer can use.
type adapter interface {
	// decodeJSON parses a structured response into v.
	decodeJSON(raw string, v any) error
	// text normalizes a free-text response.
	text(raw string) string
}

func adapterFor(kind llm.Kind) adapter {
	if kind == llm.KindOpenAI {
		return strictJSON{}
	}
	return fencedJSON{}
}

// strictJSON is used when the backend enforces JSON output.
type strictJSON struct{}

func (strictJSON) decodeJSON(raw string, v any) error {
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return fmt.Errorf("parse model output: %w", err)
	}
	return nil
}

func (strictJSON) text(raw string) string { return raw }

// fencedJSON is used when the backend answers in free text that usually wraps
// JSON in Markdown code fences.
type fencedJSON struct{}

func (fencedJSON) decodeJSON(raw string, v any) error {
	cleaned := stripCodeFences(raw)
	if err := json.Unmarshal([]byte(cleaned), v); err == nil {
		return nil
	}
	candidate := extractJSON(cleaned)
	if candidate == "" {
		return fmt.Errorf("parse model output: no JSON found in %q", truncate(raw, 200))
	}
	if err := json.Unmarshal([]byte(candidate), v); err != nil {
		return fmt.Errorf("parse model output: %w", err)
	}
	return nil
}

func (fencedJSON) text(raw string) string { return strings.TrimSpace(raw) }

// stripCodeFences removes a surrounding ``` block (with or without a language tag).
func stripCodeFences(s string) string {
	s = strings.TrimSpace(strings.ReplaceAll(s, "\r\n", "\n"))
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.Index(s, "\n"); nl >= 0 {
		s = s[nl+1:]
	} else {
		s = strings.TrimPrefix(strings.TrimSpace(s), "json")
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// extractJSON finds the first balanced JSON object or array in a string and
// returns it. Brackets inside string literals are skipped.
func extractJSON(s string) string {
	start := strings.IndexAny(s, "{[")
	if start == -1 {
		return ""
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		ch := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{', '[':
			depth++
		case '}', ']':
			depth--
			if depth == 0 {
				return strings.TrimSpace(s[start : i+1])
			}
		}
	}

	// no balanced found
	return ""
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
