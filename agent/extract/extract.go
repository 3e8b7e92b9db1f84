// Package extract pulls structured fragments out of free-form model text.
// Models give no output-shape guarantee, so every caller pairs one of these
// scans with an explicit deterministic fallback branch.
package extract

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	contractx "github.com/lenslink/lenslink-agent/agent/contract"
)

var numberPattern = regexp.MustCompile(`\d+\.?\d*`)

// JSONObject finds the outermost brace-delimited span of text and decodes it
// into out. The scan is permissive: first opening brace to the matching close,
// falling back to the last closing brace in the text, so surrounding prose and
// markdown fences are ignored.
func JSONObject(text string, out any) error {
	raw, err := braceSpan(text)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return fmt.Errorf("%w: decode extracted object: %v", contractx.ErrParseFailure, err)
	}
	return nil
}

// FirstNumber returns the first decimal number appearing in text.
func FirstNumber(text string) (float64, error) {
	raw := numberPattern.FindString(text)
	if raw == "" {
		return 0, fmt.Errorf("%w: no numeric value in completion", contractx.ErrParseFailure)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: parse %q: %v", contractx.ErrParseFailure, raw, err)
	}
	return v, nil
}

func braceSpan(text string) (string, error) {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return "", fmt.Errorf("%w: no JSON object in completion", contractx.ErrParseFailure)
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
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
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1], nil
			}
		}
	}

	// Unbalanced output: take everything up to the last closing brace and let
	// the JSON decoder decide.
	end := strings.LastIndexByte(text, '}')
	if end <= start {
		return "", fmt.Errorf("%w: unterminated JSON object in completion", contractx.ErrParseFailure)
	}
	return text[start : end+1], nil
}
