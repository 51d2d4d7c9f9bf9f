// Package httpclient builds the resty clients used by the search and image
// backends.
package httpclient

import (
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

type Options struct {
	Timeout    time.Duration
	MaxRetries int
	UserAgent  string
}

// New returns a resty client that retries transport errors and 5xx
// responses with a short backoff. The caller's context still bounds the
// whole exchange.
func New(opts Options) *resty.Client {
	client := resty.New().
		SetTimeout(opts.Timeout).
		SetRetryCount(opts.MaxRetries).
		SetRetryWaitTime(200 * time.Millisecond).
		SetRetryMaxWaitTime(2 * time.Second).
		AddRetryCondition(func(resp *resty.Response, err error) bool {
			if err != nil {
				return true
			}
			return resp.StatusCode() >= http.StatusInternalServerError
		})

	if opts.UserAgent != "" {
		client.SetHeader("User-Agent", opts.UserAgent)
	}
	return client
}
