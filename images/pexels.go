package images

import (
	"context"
	"fmt"
	"strconv"

	"github.com/go-resty/resty/v2"
)

const pexelsEndpoint = "https://api.pexels.com/v1/search"

// PexelsBackend searches landscape photos on Pexels.
type PexelsBackend struct {
	apiKey   string
	endpoint string
	client   *resty.Client
}

func NewPexelsBackend(apiKey string, client *resty.Client) *PexelsBackend {
	return &PexelsBackend{
		apiKey:   apiKey,
		endpoint: pexelsEndpoint,
		client:   client,
	}
}

// WithEndpoint overrides the API URL.
func (b *PexelsBackend) WithEndpoint(endpoint string) *PexelsBackend {
	b.endpoint = endpoint
	return b
}

func (b *PexelsBackend) Name() string { return "pexels" }

type pexelsResponse struct {
	Photos []struct {
		Src struct {
			Large string `json:"large"`
		} `json:"src"`
	} `json:"photos"`
}

func (b *PexelsBackend) Search(ctx context.Context, query string, maxResults int) ([]string, error) {
	var parsed pexelsResponse
	resp, err := b.client.R().
		SetContext(ctx).
		SetHeader("Authorization", b.apiKey).
		SetQueryParams(map[string]string{
			"query":       query,
			"per_page":    strconv.Itoa(maxResults),
			"orientation": "landscape",
		}).
		SetResult(&parsed).
		Get(b.endpoint)
	if err != nil {
		return nil, fmt.Errorf("pexels request failed: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("pexels API status %d: %s", resp.StatusCode(), resp.String())
	}

	urls := make([]string, 0, len(parsed.Photos))
	for _, p := range parsed.Photos {
		if p.Src.Large != "" {
			urls = append(urls, p.Src.Large)
		}
	}
	if len(urls) == 0 {
		return nil, ErrNoImages
	}
	return urls, nil
}

var _ Backend = (*PexelsBackend)(nil)
