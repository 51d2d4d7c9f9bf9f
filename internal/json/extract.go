// Package json provides JSON extraction utilities for parsing LLM responses.
//
// Models asked for a JSON object sometimes wrap it in markdown fences or
// surround it with a sentence of commentary. These helpers recover the
// object in those cases and reject everything else.
package json

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrNoObject is returned when no JSON object can be recovered from a response.
var ErrNoObject = errors.New("no JSON object in response")

// extractObject finds and returns the JSON object in a response string.
// It handles:
// 1. Pure JSON object - returns it unchanged
// 2. Object wrapped in markdown code blocks (```json ... ```)
// 3. Object embedded in text - first '{' to last '}', unless the text is
//    itself valid JSON
//
// Arrays and scalars are rejected even when they are valid JSON.
func extractObject(response string) (string, error) {
	response = stripMarkdownCodeBlocks(response)

	if isObject(response) {
		return response, nil
	}
	// Valid JSON that is not an object (an array, a string) is never searched
	// for an inner object.
	if json.Valid([]byte(response)) {
		return "", fmt.Errorf("%w: response is JSON but not an object", ErrNoObject)
	}

	start := strings.Index(response, "{")
	end := strings.LastIndex(response, "}")
	if start != -1 && end > start {
		candidate := response[start : end+1]
		if isObject(candidate) {
			return candidate, nil
		}
	}

	preview := response
	if len(preview) > 100 {
		preview = preview[:100] + "..."
	}
	return "", fmt.Errorf("%w: %q", ErrNoObject, preview)
}

func isObject(s string) bool {
	var obj map[string]json.RawMessage
	return json.Unmarshal([]byte(s), &obj) == nil && obj != nil
}

// stripMarkdownCodeBlocks removes markdown code block markers from a response.
// Handles patterns like ```json\n...\n``` or ```\n...\n```
func stripMarkdownCodeBlocks(response string) string {
	trimmed := strings.TrimSpace(response)

	if strings.HasPrefix(trimmed, "```json") {
		trimmed = strings.TrimSpace(strings.TrimPrefix(trimmed, "```json"))
	} else if strings.HasPrefix(trimmed, "```") {
		trimmed = strings.TrimSpace(strings.TrimPrefix(trimmed, "```"))
	}

	if strings.HasSuffix(trimmed, "```") {
		trimmed = strings.TrimSpace(strings.TrimSuffix(trimmed, "```"))
	}

	return trimmed
}

// ExtractJSONFromResponse extracts the JSON object from an LLM response and
// decodes it into T.
func ExtractJSONFromResponse[T any](response string) (T, error) {
	var result T
	jsonStr, err := extractObject(response)
	if err != nil {
		return result, err
	}
	if err := json.Unmarshal([]byte(jsonStr), &result); err != nil {
		return result, fmt.Errorf("failed to unmarshal JSON: %w", err)
	}
	return result, nil
}

// ExtractJSON returns the raw JSON object text embedded in a response.
func ExtractJSON(response string) (string, error) {
	return extractObject(response)
}
