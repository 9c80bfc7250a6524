package integrations

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/matzehuels/libmirror/pkg/cache"
	"github.com/matzehuels/libmirror/pkg/httputil"
	"github.com/matzehuels/libmirror/pkg/observability"
)

// Client provides shared HTTP functionality for repository clients.
// It handles document caching, retry logic, and common request headers.
type Client struct {
	http    *http.Client
	timeout time.Duration
	cache   cache.Cache
	headers map[string]string
}

// errStalled cancels a download that stopped receiving data.
var errStalled = errors.New("download stalled")

// NewClient creates a Client with the given cache, timeout and default headers.
// Headers are applied to all requests made through this client.
// Pass nil for c to disable caching and nil for headers if none are needed.
func NewClient(c cache.Cache, timeout time.Duration, headers map[string]string) *Client {
	if c == nil {
		c = cache.NewNullCache()
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		http:    NewHTTPClient(timeout),
		timeout: timeout,
		cache:   c,
		headers: headers,
	}
}

// DocumentOptions controls how [Client.Document] fetches and caches.
type DocumentOptions struct {
	KeyType string          // Label reported to cache hooks ("index", "pom")
	TTL     time.Duration   // Cache lifetime; 0 means the entry never expires
	Refresh bool            // Skip the cache read (the result is still stored)
	NoCache bool            // Neither read nor store the document
	Retry   httputil.Policy // Zero value means a single attempt
}

// Document fetches the document at url and hands its body to parse.
//
// A cached body is used when present and opts.Refresh is false. A freshly
// fetched body is stored only after parse accepts it, so malformed documents
// never enter the cache; a cached body that parse rejects is evicted.
// Transient failures are retried according to opts.Retry.
func (c *Client) Document(ctx context.Context, url string, opts DocumentOptions, parse func([]byte) error) error {
	key := cache.DocumentKey(url)

	if !opts.Refresh && !opts.NoCache {
		if data, ok, err := c.cache.Get(ctx, key); err == nil && ok {
			observability.Cache().OnCacheHit(ctx, opts.KeyType)
			if err := parse(data); err == nil {
				return nil
			}
			_ = c.cache.Delete(ctx, key)
		} else {
			observability.Cache().OnCacheMiss(ctx, opts.KeyType)
		}
	}

	var data []byte
	err := opts.Retry.Do(ctx, func() error {
		var err error
		data, err = c.GetBytes(ctx, url)
		return err
	})
	if err != nil {
		return err
	}
	if err := parse(data); err != nil {
		return err
	}
	if opts.NoCache {
		return nil
	}

	if err := c.cache.Set(ctx, key, data, opts.TTL); err == nil {
		observability.Cache().OnCacheSet(ctx, opts.KeyType, len(data))
	}
	return nil
}

// GetBytes performs a single HTTP GET and returns the whole response body.
// The whole exchange is bounded by the client timeout.
func (c *Client) GetBytes(ctx context.Context, url string) ([]byte, error) {
	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	body, err := c.doRequest(reqCtx, url)
	if err != nil {
		if ctx.Err() == nil && errors.Is(err, context.DeadlineExceeded) {
			return nil, httputil.Retryable(fmt.Errorf("%w: GET %s: %w after %s", ErrNetwork, url, ErrTimeout, c.timeout))
		}
		return nil, err
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, readError(url, err)
	}
	return data, nil
}

// Download performs a single HTTP GET and streams the body into w.
// The transfer may take as long as it needs, but fails once no data has
// arrived for the client timeout. Errors while reading the body, stalls
// included, are retryable; errors from w are not.
func (c *Client) Download(ctx context.Context, url string, w io.Writer) (int64, error) {
	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)
	watchdog := time.AfterFunc(c.timeout, func() { cancel(errStalled) })
	defer watchdog.Stop()

	body, err := c.doRequest(ctx, url)
	if err != nil {
		return 0, stallError(ctx, url, err)
	}
	defer body.Close()

	n, err := io.Copy(w, &bodyReader{r: body, url: url, progress: func() { watchdog.Reset(c.timeout) }})
	if err != nil {
		err = stallError(ctx, url, err)
	}
	return n, err
}

// stallError replaces err with a retryable network error when ctx was
// cancelled by the download watchdog.
func stallError(ctx context.Context, url string, err error) error {
	if errors.Is(context.Cause(ctx), errStalled) {
		return httputil.Retryable(fmt.Errorf("%w: GET %s: %w: %v", ErrNetwork, url, ErrTimeout, errStalled))
	}
	return err
}

func (c *Client) doRequest(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	host, path := splitURL(rawURL)
	hooks := observability.HTTP()
	hooks.OnRequest(ctx, req.Method, host, path)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		hooks.OnError(ctx, req.Method, host, path, err)
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, httputil.Retryable(fmt.Errorf("%w: GET %s: %v", ErrNetwork, rawURL, err))
	}
	hooks.OnResponse(ctx, req.Method, host, path, resp.StatusCode, time.Since(start))

	if err := checkStatus(rawURL, resp.StatusCode); err != nil {
		resp.Body.Close()
		return nil, err
	}
	return resp.Body, nil
}

func checkStatus(url string, code int) error {
	switch {
	case code == http.StatusOK:
		return nil
	case code == http.StatusNotFound:
		return fmt.Errorf("%w: GET %s", ErrNotFound, url)
	case code >= 500:
		return httputil.Retryable(fmt.Errorf("%w: GET %s: status %d", ErrNetwork, url, code))
	default:
		return fmt.Errorf("%w: GET %s: status %d", ErrNetwork, url, code)
	}
}

// bodyReader marks transport failures in the middle of a body as retryable.
type bodyReader struct {
	r        io.Reader
	url      string
	progress func()
}

func (b *bodyReader) Read(p []byte) (int, error) {
	n, err := b.r.Read(p)
	if n > 0 && b.progress != nil {
		b.progress()
	}
	if err != nil && !errors.Is(err, io.EOF) {
		err = readError(b.url, err)
	}
	return n, err
}

func readError(url string, err error) error {
	return httputil.Retryable(fmt.Errorf("%w: read %s: %v", ErrNetwork, url, err))
}

func splitURL(raw string) (host, path string) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", raw
	}
	return u.Host, u.Path
}
