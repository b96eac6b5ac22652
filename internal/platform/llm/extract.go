package llm

import (
	"encoding/json"
	"fmt"
)

// ParseError reports that a model response did not contain a usable JSON
// block. It is the only error type returned by ExtractJSON, so callers
// can treat it as the narrow "unusable output" signal that triggers
// their deterministic fallback.
type ParseError struct {
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("no parseable JSON block in model output: %s", e.Reason)
}

// ExtractJSON returns the first balanced {...} span in s that parses as
// a JSON object. Model responses routinely wrap the structured block in
// prose or markdown fences; everything outside the first balanced span
// is ignored. Brace counting is string- and escape-aware so braces
// inside JSON strings do not unbalance the scan.
func ExtractJSON(s string) (json.RawMessage, error) {
	start := -1
	depth := 0
	inString := false
	escaped := false

	for i := 0; i < len(s); i++ {
		c := s[i]

		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			if depth > 0 {
				inString = true
			}
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			if depth == 0 {
				continue
			}
			depth--
			if depth == 0 {
				candidate := s[start : i+1]
				if !json.Valid([]byte(candidate)) {
					return nil, &ParseError{Reason: "first balanced span is not valid JSON"}
				}
				return json.RawMessage(candidate), nil
			}
		}
	}

	if start >= 0 {
		return nil, &ParseError{Reason: "unterminated JSON object"}
	}
	return nil, &ParseError{Reason: "no opening brace found"}
}
