package search

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"
)

const tavilyEndpoint = "https://api.tavily.com/search"

// TavilyBackend searches via the Tavily API.
type TavilyBackend struct {
	apiKey   string
	endpoint string
	client   *resty.Client
}

func NewTavilyBackend(apiKey string, client *resty.Client) *TavilyBackend {
	return &TavilyBackend{
		apiKey:   apiKey,
		endpoint: tavilyEndpoint,
		client:   client,
	}
}

// WithEndpoint overrides the API URL.
func (b *TavilyBackend) WithEndpoint(endpoint string) *TavilyBackend {
	b.endpoint = endpoint
	return b
}

func (b *TavilyBackend) Name() string { return "tavily" }

type tavilyRequest struct {
	Query       string `json:"query"`
	MaxResults  int    `json:"max_results"`
	SearchDepth string `json:"search_depth"`
}

type tavilyResponse struct {
	Results []struct {
		Title   string  `json:"title"`
		URL     string  `json:"url"`
		Content string  `json:"content"`
		Score   float64 `json:"score"`
	} `json:"results"`
}

func (b *TavilyBackend) Search(ctx context.Context, query string, maxResults int) ([]Result, error) {
	var parsed tavilyResponse
	resp, err := b.client.R().
		SetContext(ctx).
		SetAuthToken(b.apiKey).
		SetHeader("Content-Type", "application/json").
		SetBody(tavilyRequest{
			Query:       query,
			MaxResults:  maxResults,
			SearchDepth: "advanced",
		}).
		SetResult(&parsed).
		Post(b.endpoint)
	if err != nil {
		return nil, fmt.Errorf("tavily request failed: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("tavily API status %d: %s", resp.StatusCode(), resp.String())
	}

	results := make([]Result, 0, len(parsed.Results))
	for _, r := range parsed.Results {
		results = append(results, Result{
			Title:   r.Title,
			URL:     r.URL,
			Content: r.Content,
			Score:   r.Score,
		})
	}
	return results, nil
}

var _ Backend = (*TavilyBackend)(nil)
