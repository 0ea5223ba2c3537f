// Package search looks up web results for the research pipeline.
package search

import (
	"context"
	"fmt"
	"strings"
)

// Result is one web search hit.
type Result struct {
	Title   string
	URL     string
	Snippet string
}

// Searcher returns at most max results for query.
type Searcher interface {
	Search(ctx context.Context, query string, max int) ([]Result, error)
}

// FormatResults renders results as "title: url" lines.
func FormatResults(results []Result) string {
	lines := make([]string, 0, len(results))
	for _, r := range results {
		lines = append(lines, fmt.Sprintf("%s: %s", r.Title, r.URL))
	}
	return strings.Join(lines, "\n")
}
