// Package fetcher loads pages and remote block-lists over HTTP, or from disk
// when the source is a local path.
package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/bnema/subreddit-filter/internal/log"
	"github.com/bnema/subreddit-filter/internal/models"
)

// UserAgent is sent with every request
const UserAgent = "subreddit-filter/1.0"

// Fetcher downloads pages and block-lists
type Fetcher struct {
	client  *http.Client
	retries int
	backoff time.Duration
}

// New creates a new fetcher from config
func New(cfg models.HTTPConfig) *Fetcher {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	retries := cfg.Retries
	if retries == 0 {
		retries = 3
	}

	return &Fetcher{
		client: &http.Client{
			Timeout: timeout,
		},
		retries: retries,
		backoff: time.Second,
	}
}

// StatusError is returned for a non-200 response
type StatusError struct {
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.Code, e.Status)
}

// IsRemote reports whether src is an http or https URL
func IsRemote(src string) bool {
	u, err := url.Parse(src)
	if err != nil {
		return false
	}
	return u.Scheme == "http" || u.Scheme == "https"
}

// Open returns the content of src, fetched when it is a URL and read from
// disk otherwise
func (f *Fetcher) Open(ctx context.Context, src string) ([]byte, error) {
	if IsRemote(src) {
		return f.Fetch(ctx, src)
	}
	data, err := os.ReadFile(src)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", src, err)
	}
	return data, nil
}

// Fetch downloads content from a URL with retries
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	var lastErr error

	for i := 0; i < f.retries; i++ {
		if i > 0 {
			// Linear backoff
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(i) * f.backoff):
			}
		}

		data, err := f.doFetch(ctx, url)
		if err == nil {
			log.Debug(map[string]any{"url": url, "bytes": len(data)}, "fetched")
			return data, nil
		}
		lastErr = err
		log.Warn(map[string]any{"url": url, "attempt": i + 1, "error": err.Error()}, "fetch failed")
	}

	return nil, fmt.Errorf("failed after %d retries: %w", f.retries, lastErr)
}

func (f *Fetcher) doFetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("User-Agent", UserAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{Code: resp.StatusCode, Status: resp.Status}
	}

	return io.ReadAll(resp.Body)
}
