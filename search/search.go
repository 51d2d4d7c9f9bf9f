// Package search maps a text query to ranked web results.
//
// A Searcher tries its primary backend first and falls through to the
// secondary only when the primary is missing, fails, or finds nothing.
// Failures never reach the caller: an exhausted chain yields no results.
package search

import (
	"context"
	"errors"
	"time"

	"github.com/richinex/slidesmith/internal/logger"
)

// DefaultMaxResults is used when the caller asks for zero or fewer results.
const DefaultMaxResults = 5

// DefaultTimeout bounds a single backend call.
const DefaultTimeout = 10 * time.Second

// ErrNoBackend is reported by Searcher.Backends when nothing is configured.
var ErrNoBackend = errors.New("no search backend configured")

// Result is a single ranked search hit.
type Result struct {
	Title   string  `json:"title"`
	URL     string  `json:"url"`
	Content string  `json:"content"`
	Score   float64 `json:"score"`
}

// Backend is one web search provider.
type Backend interface {
	Name() string
	Search(ctx context.Context, query string, maxResults int) ([]Result, error)
}

// Searcher runs the primary/secondary fallback chain.
type Searcher struct {
	primary   Backend
	secondary Backend
	timeout   time.Duration
	logger    *logger.Logger
}

// NewSearcher creates a searcher. Either backend may be nil.
func NewSearcher(primary, secondary Backend, timeout time.Duration, log *logger.Logger) *Searcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Searcher{
		primary:   primary,
		secondary: secondary,
		timeout:   timeout,
		logger:    log,
	}
}

// Backends returns the configured backend names in fallback order.
func (s *Searcher) Backends() ([]string, error) {
	var names []string
	for _, b := range []Backend{s.primary, s.secondary} {
		if b != nil {
			names = append(names, b.Name())
		}
	}
	if len(names) == 0 {
		return nil, ErrNoBackend
	}
	return names, nil
}

// Search returns up to maxResults results. It never fails; an empty slice
// means no backend produced anything.
func (s *Searcher) Search(ctx context.Context, query string, maxResults int) []Result {
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}

	if results := s.try(ctx, s.primary, query, maxResults); len(results) > 0 {
		return results
	}
	if results := s.try(ctx, s.secondary, query, maxResults); len(results) > 0 {
		return results
	}
	return []Result{}
}

func (s *Searcher) try(ctx context.Context, backend Backend, query string, maxResults int) []Result {
	if backend == nil {
		return nil
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	results, err := backend.Search(callCtx, query, maxResults)
	if err != nil {
		s.logger.Warn("search backend failed",
			"backend", backend.Name(),
			"query", query,
			"error", err,
		)
		return nil
	}

	s.logger.Debug("search backend answered",
		"backend", backend.Name(),
		"results", len(results),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	if len(results) > maxResults {
		results = results[:maxResults]
	}
	return results
}
