package integrations

import (
	"errors"
	"net"
	"net/http"
	"time"
)

// DefaultTimeout bounds a single request when the caller does not choose one.
const DefaultTimeout = 120 * time.Second

var (
	// ErrNotFound is returned when a document or artifact doesn't exist in the repository.
	ErrNotFound = errors.New("resource not found")

	// ErrNetwork is returned for HTTP failures (timeouts, connection errors, unexpected statuses).
	ErrNetwork = errors.New("network error")

	// ErrTimeout accompanies ErrNetwork when a request ran out of time or a
	// download stopped receiving data.
	ErrTimeout = errors.New("timed out")
)

// NewHTTPClient creates an HTTP client whose transport bounds connecting,
// the TLS handshake and waiting for response headers by timeout. Reading the
// body is bounded by the request context instead, so large downloads are not
// cut off while data keeps arriving. A non-positive timeout falls back to
// [DefaultTimeout].
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.DialContext = (&net.Dialer{Timeout: timeout, KeepAlive: 30 * time.Second}).DialContext
	transport.TLSHandshakeTimeout = timeout
	transport.ResponseHeaderTimeout = timeout
	return &http.Client{Transport: transport}
}
