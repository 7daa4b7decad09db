package utils

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
)

// Completion parse errors
var (
	ErrEmptyCompletion     = errors.New("empty completion")
	ErrMalformedCompletion = errors.New("malformed completion")
)

// fencedBlock matches a whole input that is one markdown code block,
// optionally tagged json
var fencedBlock = regexp.MustCompile("(?s)^```(?:json|JSON)?[ \t]*\r?\n?(.*?)\r?\n?```$")

// ParseCompletionJSON decodes model output into target. The input must be a
// single JSON object, optionally wrapped in one fenced code block. Surrounding
// prose, trailing data, unknown fields and syntax repairs are all rejected.
func ParseCompletionJSON(input string, target interface{}) error {
	s := strings.TrimSpace(strings.TrimPrefix(input, "\ufeff"))
	if s == "" {
		return ErrEmptyCompletion
	}

	if strings.HasPrefix(s, "```") {
		matches := fencedBlock.FindStringSubmatch(s)
		if matches == nil {
			return fmt.Errorf("%w: unterminated or trailing text around code block", ErrMalformedCompletion)
		}
		s = strings.TrimSpace(matches[1])
		if strings.Contains(s, "```") {
			return fmt.Errorf("%w: more than one code block", ErrMalformedCompletion)
		}
	}

	if !strings.HasPrefix(s, "{") {
		return fmt.Errorf("%w: not a JSON object: %s", ErrMalformedCompletion, truncateString(s, 60))
	}

	dec := json.NewDecoder(bytes.NewReader([]byte(s)))
	dec.DisallowUnknownFields()
	if err := dec.Decode(target); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedCompletion, err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: trailing data after JSON object", ErrMalformedCompletion)
	}
	return nil
}

// truncateString truncates a string to maxLen characters
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
