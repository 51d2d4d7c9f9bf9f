// Package images maps a text query to slide-ready image URLs.
//
// Lookup runs through three tiers: a photo search backend, a seeded
// placeholder generator, and a single text placeholder. Every tier failure
// is absorbed here, so Find always returns at least one URL.
package images

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/richinex/slidesmith/internal/logger"
)

const (
	// DefaultMaxResults is used when the caller asks for zero or fewer images.
	DefaultMaxResults = 3
	DefaultTimeout    = 10 * time.Second

	Width  = 1200
	Height = 800

	seedSpace = 1000
)

// ErrNoImages is returned by a tier that produced nothing usable.
var ErrNoImages = errors.New("no images found")

// Backend is a photo search provider.
type Backend interface {
	Name() string
	Search(ctx context.Context, query string, maxResults int) ([]string, error)
}

// PlaceholderFunc produces count deterministic placeholder URLs for query.
type PlaceholderFunc func(query string, count int) ([]string, error)

// Finder runs the image fallback chain.
type Finder struct {
	backend     Backend
	placeholder PlaceholderFunc
	timeout     time.Duration
	logger      *logger.Logger
}

// Option configures a Finder.
type Option func(*Finder)

// WithPlaceholder replaces the seeded placeholder tier.
func WithPlaceholder(fn PlaceholderFunc) Option {
	return func(f *Finder) { f.placeholder = fn }
}

// NewFinder creates a finder. backend may be nil, in which case lookups go
// straight to placeholders.
func NewFinder(backend Backend, timeout time.Duration, log *logger.Logger, opts ...Option) *Finder {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if log == nil {
		log = logger.Nop()
	}
	f := &Finder{
		backend:     backend,
		placeholder: SeededPlaceholders,
		timeout:     timeout,
		logger:      log,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Find returns image URLs for query, never an empty slice.
func (f *Finder) Find(ctx context.Context, query string, maxResults int) []string {
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}

	if urls := f.fromBackend(ctx, query, maxResults); len(urls) > 0 {
		return urls
	}

	urls, err := f.placeholder(query, maxResults)
	if err == nil && len(urls) > 0 {
		return urls
	}
	f.logger.Warn("placeholder generation failed", "query", query, "error", err)

	return []string{TextPlaceholder(query)}
}

func (f *Finder) fromBackend(ctx context.Context, query string, maxResults int) []string {
	if f.backend == nil {
		return nil
	}

	callCtx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	urls, err := f.backend.Search(callCtx, query, maxResults)
	if err != nil {
		f.logger.Warn("image backend failed",
			"backend", f.backend.Name(),
			"query", query,
			"error", err,
		)
		return nil
	}
	if len(urls) > maxResults {
		urls = urls[:maxResults]
	}
	return urls
}

// Seed derives the stable placeholder seed for query.
func Seed(query string) uint64 {
	return xxhash.Sum64String(query) % seedSpace
}

// SeededPlaceholders returns count picsum URLs seeded at Seed(query),
// Seed(query)+1, and so on.
func SeededPlaceholders(query string, count int) ([]string, error) {
	if count <= 0 {
		return nil, ErrNoImages
	}
	seed := Seed(query)
	urls := make([]string, count)
	for i := range urls {
		urls[i] = fmt.Sprintf("https://picsum.photos/seed/%d/%d/%d", seed+uint64(i), Width, Height)
	}
	return urls, nil
}

// TextPlaceholder is the last-resort image carrying the query as its label.
func TextPlaceholder(query string) string {
	return fmt.Sprintf("https://via.placeholder.com/%dx%d/4F46E5/FFFFFF?text=%s",
		Width, Height, url.QueryEscape(query))
}
