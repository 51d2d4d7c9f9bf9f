package search

import (
	"fmt"
	"strings"
)

// NoResults is what the model reads when a search came back empty.
const NoResults = "No search results found."

const formatContentRunes = 300

// Format renders results as a numbered, model-readable listing.
func Format(results []Result) string {
	if len(results) == 0 {
		return NoResults
	}

	entries := make([]string, 0, len(results))
	for i, r := range results {
		entries = append(entries, fmt.Sprintf(
			"%d. %s\n   URL: %s\n   Content: %s...\n",
			i+1, r.Title, r.URL, clip(r.Content, formatContentRunes),
		))
	}
	return strings.Join(entries, "\n")
}

// clip cuts s to at most n runes.
func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
