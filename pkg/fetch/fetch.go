package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"

	"f1dashboard/log"
	"f1dashboard/pkg/cache"
)

// Getter returns the raw body of a GET request.
type Getter interface {
	Get(ctx context.Context, url string) ([]byte, error)
}

// StatusError is returned for non 2xx responses.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: unexpected status %d", e.URL, e.StatusCode)
}

type Client struct {
	http  *http.Client
	store cache.Store
	ttl   time.Duration
}

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.http = c }
}

// WithCache caches successful responses in store for ttl.
func WithCache(store cache.Store, ttl time.Duration) Option {
	return func(cl *Client) {
		cl.store = store
		cl.ttl = ttl
	}
}

func NewClient(opts ...Option) *Client {
	c := &Client{http: http.DefaultClient, store: cache.Nop{}}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	if body, ok, err := c.store.Get(ctx, url); err != nil {
		log.Warn("cache lookup failed", log.String("url", url), log.ErrorField(err))
	} else if ok {
		return body, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrap(err, "creating request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "GET %s", url)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// drain so the connection can be reused
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &StatusError{URL: url, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", url)
	}

	if err := c.store.Set(ctx, url, body, c.ttl); err != nil {
		log.Warn("cache store failed", log.String("url", url), log.ErrorField(err))
	}
	return body, nil
}

// GetJSON fetches url and decodes the body into v.
func GetJSON(ctx context.Context, g Getter, url string, v any) error {
	body, err := g.Get(ctx, url)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return errors.Wrapf(err, "decoding %s", url)
	}
	return nil
}
