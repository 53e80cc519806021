package scraper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
)

// Fetcher retrieves the body of a URL in a single attempt.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// StatusError reports a response other than 200 OK.
type StatusError struct {
	Code int
	URL  string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d for %s", e.Code, e.URL)
}

// HTTPFetcher fetches pages over HTTP. It never retries.
type HTTPFetcher struct {
	Client    *http.Client
	UserAgent string
	Limiter   *RateLimiter
}

// NewHTTPFetcher returns a fetcher using client, or http.DefaultClient when
// client is nil.
func NewHTTPFetcher(client *http.Client, userAgent string, rl *RateLimiter) *HTTPFetcher {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPFetcher{Client: client, UserAgent: userAgent, Limiter: rl}
}

// Fetch returns the body of url when it answers 200. Any other status is a
// *StatusError; transport failures are returned wrapped.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (string, error) {
	if f.Limiter != nil {
		if err := f.Limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("rate limiter: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	if f.UserAgent != "" {
		req.Header.Set("User-Agent", f.UserAgent)
	}

	resp, err := f.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &StatusError{Code: resp.StatusCode, URL: url}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", url, err)
	}
	return string(body), nil
}

// Describe renders a fetch failure for a log message: the bare status code
// for a *StatusError, otherwise the error text.
func Describe(err error) string {
	var se *StatusError
	if errors.As(err, &se) {
		return strconv.Itoa(se.Code)
	}
	return err.Error()
}
