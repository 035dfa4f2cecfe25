package integrations

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/matzehuels/pkggraph/pkg/cache"
	"github.com/matzehuels/pkggraph/pkg/httputil"
	"github.com/matzehuels/pkggraph/pkg/observability"
)

// maxBodySize caps a single response. Repository indexes are a few MB.
const maxBodySize = 256 << 20

// Client provides shared HTTP functionality for repository clients.
// It handles caching, retry logic, and common request headers.
//
// A Client is safe for concurrent use if its cache is.
type Client struct {
	http      *http.Client
	cache     cache.Cache
	keyer     cache.Keyer
	namespace string
	ttl       time.Duration
	headers   map[string]string
	backoff   httputil.Backoff
	maxBody   int64
}

// NewClient creates a Client that caches bodies in c under namespace for ttl.
// Headers are applied to all requests made through this client.
// A nil cache disables caching.
func NewClient(c cache.Cache, namespace string, ttl time.Duration, headers map[string]string) *Client {
	if c == nil {
		c = cache.NewNullCache()
	}
	return &Client{
		http:      NewHTTPClient(),
		cache:     c,
		keyer:     cache.NewDefaultKeyer(),
		namespace: namespace,
		ttl:       ttl,
		headers:   headers,
		backoff:   httputil.DefaultBackoff,
		maxBody:   maxBodySize,
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func (c *Client) WithHTTPClient(h *http.Client) *Client {
	c.http = h
	return c
}

// WithKeyer replaces the cache key layout.
func (c *Client) WithKeyer(k cache.Keyer) *Client {
	if k != nil {
		c.keyer = k
	}
	return c
}

// WithRetry sets the attempt count and the initial delay between attempts.
func (c *Client) WithRetry(attempts int, delay time.Duration) *Client {
	c.backoff = httputil.Backoff{Attempts: attempts, Delay: delay}
	return c
}

// Cached returns the cached body for key, or calls fetch and caches its
// result. If refresh is true, the cache is bypassed but still updated.
// Cache failures are not fatal: a broken cache behaves like an empty one.
func (c *Client) Cached(ctx context.Context, key string, refresh bool, fetch func(context.Context) ([]byte, error)) ([]byte, error) {
	k := c.keyer.HTTPKey(c.namespace, key)
	hooks := observability.Cache()

	if !refresh {
		if data, ok, err := c.cache.Get(ctx, k); err == nil && ok {
			hooks.OnCacheHit(ctx, "http")
			return data, nil
		}
		hooks.OnCacheMiss(ctx, "http")
	}

	data, err := fetch(ctx)
	if err != nil {
		return nil, err
	}
	if err := c.cache.Set(ctx, k, data, c.ttl); err == nil {
		hooks.OnCacheSet(ctx, "http", len(data))
	}
	return data, nil
}

// Fetch performs a cached GET of rawURL and returns the body.
func (c *Client) Fetch(ctx context.Context, rawURL string, refresh bool) ([]byte, error) {
	return c.Cached(ctx, rawURL, refresh, func(ctx context.Context) ([]byte, error) {
		return c.GetBytes(ctx, rawURL)
	})
}

// GetBytes performs an uncached GET with retries and returns the body.
//
// Returns [ErrNotFound] for 404 responses and an error wrapping [ErrNetwork]
// for transport failures and other non-200 statuses. Transport failures and
// 5xx responses are retried. A body over the size limit fails with
// [ErrTooLarge] and is not retried.
func (c *Client) GetBytes(ctx context.Context, rawURL string) ([]byte, error) {
	var body []byte
	err := c.backoff.Do(ctx, func() error {
		b, err := c.get(ctx, rawURL)
		if err != nil {
			return err
		}
		body = b
		return nil
	})
	return body, err
}

func (c *Client) get(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	host, path := req.URL.Host, req.URL.Path
	hooks := observability.HTTP()
	hooks.OnRequest(ctx, req.Method, host, path)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		hooks.OnError(ctx, req.Method, host, path, err)
		return nil, httputil.Transient(fmt.Errorf("%w: %v", ErrNetwork, err))
	}
	defer resp.Body.Close()
	hooks.OnResponse(ctx, req.Method, host, path, resp.StatusCode, time.Since(start))

	if err := checkStatus(resp.StatusCode); err != nil {
		return nil, err
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody+1))
	if err != nil {
		return nil, httputil.Transient(fmt.Errorf("%w: read body: %v", ErrNetwork, err))
	}
	if int64(len(body)) > c.maxBody {
		return nil, fmt.Errorf("%w: %s exceeds %d bytes", ErrTooLarge, rawURL, c.maxBody)
	}
	return body, nil
}

func checkStatus(code int) error {
	switch {
	case code == http.StatusOK:
		return nil
	case code == http.StatusNotFound:
		return ErrNotFound
	case code >= 500:
		return httputil.Transient(fmt.Errorf("%w: status %d", ErrNetwork, code))
	default:
		return fmt.Errorf("%w: status %d", ErrNetwork, code)
	}
}
