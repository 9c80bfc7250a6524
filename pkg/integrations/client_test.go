package integrations

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/matzehuels/libmirror/pkg/cache"
	"github.com/matzehuels/libmirror/pkg/httputil"
)

func testClient(t *testing.T, server *httptest.Server) (*Client, cache.Cache) {
	t.Helper()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	client := NewClient(c, time.Second, map[string]string{"User-Agent": "libmirror-test"})
	client.http = server.Client()
	return client, c
}

func accept(dst *string) func([]byte) error {
	return func(b []byte) error {
		*dst = string(b)
		return nil
	}
}

func TestNewClient(t *testing.T) {
	client := NewClient(nil, 0, nil)
	if client.timeout != DefaultTimeout {
		t.Errorf("NewClient() timeout = %v, want %v", client.timeout, DefaultTimeout)
	}
	if client.http.Timeout != 0 {
		t.Errorf("http.Client.Timeout = %v, want 0 (body reads bounded by context)", client.http.Timeout)
	}
	transport, ok := client.http.Transport.(*http.Transport)
	if !ok || transport.ResponseHeaderTimeout != DefaultTimeout {
		t.Errorf("transport = %#v, want ResponseHeaderTimeout %v", client.http.Transport, DefaultTimeout)
	}
	if _, ok := client.cache.(*cache.NullCache); !ok {
		t.Errorf("NewClient(nil cache) = %T, want *cache.NullCache", client.cache)
	}
}

func TestClientHeaders(t *testing.T) {
	var ua string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ua = r.Header.Get("User-Agent")
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	client, _ := testClient(t, server)
	if _, err := client.GetBytes(context.Background(), server.URL); err != nil {
		t.Fatalf("GetBytes() error: %v", err)
	}
	if ua != "libmirror-test" {
		t.Errorf("User-Agent = %q", ua)
	}
}

func TestClientStatusErrors(t *testing.T) {
	tests := []struct {
		status    int
		sentinel  error
		retryable bool
	}{
		{http.StatusNotFound, ErrNotFound, false},
		{http.StatusForbidden, ErrNetwork, false},
		{http.StatusInternalServerError, ErrNetwork, true},
		{http.StatusBadGateway, ErrNetwork, true},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer server.Close()

			client, _ := testClient(t, server)
			_, err := client.GetBytes(context.Background(), server.URL+"/x.pom")
			if !errors.Is(err, tt.sentinel) {
				t.Errorf("error = %v, want %v", err, tt.sentinel)
			}
			if httputil.IsRetryable(err) != tt.retryable {
				t.Errorf("IsRetryable = %v, want %v", httputil.IsRetryable(err), tt.retryable)
			}
			if !strings.Contains(err.Error(), "/x.pom") {
				t.Errorf("error should name the URL: %v", err)
			}
		})
	}
}

func TestClientDocumentCaches(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte("<metadata/>"))
	}))
	defer server.Close()

	client, _ := testClient(t, server)
	ctx := context.Background()

	var got string
	for i := 0; i < 2; i++ {
		if err := client.Document(ctx, server.URL, DocumentOptions{KeyType: "index"}, accept(&got)); err != nil {
			t.Fatalf("Document() error: %v", err)
		}
	}
	if got != "<metadata/>" {
		t.Errorf("Document() body = %q", got)
	}
	if hits.Load() != 1 {
		t.Errorf("server hits = %d, want 1 (second read cached)", hits.Load())
	}

	if err := client.Document(ctx, server.URL, DocumentOptions{Refresh: true}, accept(&got)); err != nil {
		t.Fatalf("Document(refresh) error: %v", err)
	}
	if hits.Load() != 2 {
		t.Errorf("server hits = %d, want 2 after refresh", hits.Load())
	}
}

func TestClientDocumentDoesNotCacheRejected(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte("<html>"))
	}))
	defer server.Close()

	client, c := testClient(t, server)
	ctx := context.Background()
	reject := func([]byte) error { return errors.New("not xml") }

	for i := 0; i < 2; i++ {
		if err := client.Document(ctx, server.URL, DocumentOptions{}, reject); err == nil {
			t.Fatal("Document() should return the parse error")
		}
	}
	if hits.Load() != 2 {
		t.Errorf("server hits = %d, want 2", hits.Load())
	}
	if _, ok, _ := c.Get(ctx, cache.DocumentKey(server.URL)); ok {
		t.Error("rejected document was cached")
	}
}

func TestClientDocumentRetryPolicy(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("<project/>"))
	}))
	defer server.Close()

	client, _ := testClient(t, server)
	ctx := context.Background()
	var got string

	if err := client.Document(ctx, server.URL, DocumentOptions{Retry: httputil.NoRetry}, accept(&got)); err == nil {
		t.Fatal("NoRetry should surface the first 503")
	}
	if hits.Load() != 1 {
		t.Errorf("hits = %d, want 1", hits.Load())
	}

	policy := httputil.Policy{Attempts: 3, Delay: time.Millisecond}
	if err := client.Document(ctx, server.URL, DocumentOptions{Retry: policy}, accept(&got)); err != nil {
		t.Fatalf("Document() with retries error: %v", err)
	}
	if hits.Load() != 3 {
		t.Errorf("hits = %d, want 3", hits.Load())
	}
}

func TestClientDownload(t *testing.T) {
	payload := bytes.Repeat([]byte{0xCA, 0xFE}, 4096)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(payload)
	}))
	defer server.Close()

	client, _ := testClient(t, server)

	var buf bytes.Buffer
	n, err := client.Download(context.Background(), server.URL, &buf)
	if err != nil {
		t.Fatalf("Download() error: %v", err)
	}
	if n != int64(len(payload)) || !bytes.Equal(buf.Bytes(), payload) {
		t.Errorf("Download() wrote %d bytes, want %d", n, len(payload))
	}
}

func TestClientTransportErrorIsRetryable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	client, _ := testClient(t, server)
	server.Close()

	_, err := client.GetBytes(context.Background(), server.URL)
	if !errors.Is(err, ErrNetwork) || !httputil.IsRetryable(err) {
		t.Errorf("error = %v, want retryable ErrNetwork", err)
	}
}

func TestClientDownloadOutlivesTimeoutWhileDataFlows(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		flusher := w.(http.Flusher)
		for range 6 {
			w.Write([]byte("chunk"))
			flusher.Flush()
			time.Sleep(50 * time.Millisecond)
		}
	}))
	defer server.Close()

	client, _ := testClient(t, server)
	client.timeout = 150 * time.Millisecond

	var buf bytes.Buffer
	n, err := client.Download(context.Background(), server.URL+"/big.aar", &buf)
	if err != nil {
		t.Fatalf("Download() error: %v", err)
	}
	if n != 30 || buf.String() != strings.Repeat("chunk", 6) {
		t.Errorf("Download() = %d %q", n, buf.String())
	}
}

func TestClientDownloadStallIsRetryable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("partial"))
		w.(http.Flusher).Flush()
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	}))
	defer server.Close()

	client, _ := testClient(t, server)
	client.timeout = 100 * time.Millisecond

	var buf bytes.Buffer
	_, err := client.Download(context.Background(), server.URL+"/stuck.aar", &buf)
	if !httputil.IsRetryable(err) || !errors.Is(err, ErrNetwork) {
		t.Fatalf("Download() error = %v, want retryable network error", err)
	}
	if !strings.Contains(err.Error(), "stalled") {
		t.Errorf("Download() error = %v, want stall reported", err)
	}
}

func TestClientGetBytesTimeoutIsRetryable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	}))
	defer server.Close()

	client, _ := testClient(t, server)
	client.timeout = 50 * time.Millisecond

	_, err := client.GetBytes(context.Background(), server.URL+"/master-index.xml")
	if !httputil.IsRetryable(err) || !errors.Is(err, ErrNetwork) {
		t.Fatalf("GetBytes() error = %v, want retryable network error", err)
	}
}
