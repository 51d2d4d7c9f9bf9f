package search

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"
)

const (
	exaEndpoint = "https://api.exa.ai/search"
	// Exa returns whole page text; only the head is worth keeping.
	exaMaxTextRunes = 500
)

// ExaBackend searches via the Exa API with page contents.
type ExaBackend struct {
	apiKey   string
	endpoint string
	client   *resty.Client
}

func NewExaBackend(apiKey string, client *resty.Client) *ExaBackend {
	return &ExaBackend{
		apiKey:   apiKey,
		endpoint: exaEndpoint,
		client:   client,
	}
}

// WithEndpoint overrides the API URL.
func (b *ExaBackend) WithEndpoint(endpoint string) *ExaBackend {
	b.endpoint = endpoint
	return b
}

func (b *ExaBackend) Name() string { return "exa" }

type exaRequest struct {
	Query      string `json:"query"`
	NumResults int    `json:"numResults"`
	Contents   struct {
		Text bool `json:"text"`
	} `json:"contents"`
}

type exaResponse struct {
	Results []struct {
		Title string   `json:"title"`
		URL   string   `json:"url"`
		Text  string   `json:"text"`
		Score *float64 `json:"score"`
	} `json:"results"`
}

func (b *ExaBackend) Search(ctx context.Context, query string, maxResults int) ([]Result, error) {
	body := exaRequest{Query: query, NumResults: maxResults}
	body.Contents.Text = true

	var parsed exaResponse
	resp, err := b.client.R().
		SetContext(ctx).
		SetHeader("x-api-key", b.apiKey).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		SetResult(&parsed).
		Post(b.endpoint)
	if err != nil {
		return nil, fmt.Errorf("exa request failed: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("exa API status %d: %s", resp.StatusCode(), resp.String())
	}

	results := make([]Result, 0, len(parsed.Results))
	for _, r := range parsed.Results {
		score := 0.0
		if r.Score != nil {
			score = *r.Score
		}
		results = append(results, Result{
			Title:   r.Title,
			URL:     r.URL,
			Content: clip(r.Text, exaMaxTextRunes),
			Score:   score,
		})
	}
	return results, nil
}

var _ Backend = (*ExaBackend)(nil)
