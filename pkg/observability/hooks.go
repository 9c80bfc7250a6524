// Package observability provides hooks for metrics, tracing, and logging.
//
// Libraries emit events through globally registered hooks; the defaults are
// no-ops. The CLI registers logging hooks under --verbose, and tests register
// recording hooks to assert on traffic.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetHTTPHooks(&myHTTPHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Mirror().OnGroupStart(ctx, group, len(libs))
//	// ... mirror versions ...
//	observability.Mirror().OnVersionComplete(ctx, coord, outcome, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// Outcome values reported by [MirrorHooks.OnVersionComplete].
const (
	OutcomeMirrored = "mirrored" // At least one file was written
	OutcomeSkipped  = "skipped"  // Both files already existed
	OutcomeFailed   = "failed"   // The recoverable tier caught an error
)

// =============================================================================
// Mirror Hooks
// =============================================================================

// MirrorHooks receives events from the mirror pipeline.
type MirrorHooks interface {
	OnRunStart(ctx context.Context, runID string, groups int)
	OnGroupStart(ctx context.Context, group string, libraries int)
	OnVersionComplete(ctx context.Context, coordinate, outcome string, duration time.Duration, err error)
	OnRunComplete(ctx context.Context, runID string, duration time.Duration, err error)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from document cache lookups.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from HTTP client operations.
type HTTPHooks interface {
	// OnRequest records an outgoing HTTP request.
	OnRequest(ctx context.Context, method, host, path string)

	// OnResponse records an HTTP response.
	OnResponse(ctx context.Context, method, host, path string, statusCode int, duration time.Duration)

	// OnError records an HTTP error (network failure, timeout).
	OnError(ctx context.Context, method, host, path string, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopMirrorHooks is a no-op implementation of MirrorHooks.
type NoopMirrorHooks struct{}

func (NoopMirrorHooks) OnRunStart(context.Context, string, int)   {}
func (NoopMirrorHooks) OnGroupStart(context.Context, string, int) {}
func (NoopMirrorHooks) OnVersionComplete(context.Context, string, string, time.Duration, error) {
}
func (NoopMirrorHooks) OnRunComplete(context.Context, string, time.Duration, error) {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnError(context.Context, string, string, string, error)                 {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	mirrorHooks MirrorHooks = NoopMirrorHooks{}
	cacheHooks  CacheHooks  = NoopCacheHooks{}
	httpHooks   HTTPHooks   = NoopHTTPHooks{}
	hooksMu     sync.RWMutex
)

// SetMirrorHooks registers custom mirror hooks.
// This should be called once at application startup before any mirror run.
func SetMirrorHooks(h MirrorHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		mirrorHooks = h
	}
}

// SetCacheHooks registers custom cache hooks.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetHTTPHooks registers custom HTTP hooks.
func SetHTTPHooks(h HTTPHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		httpHooks = h
	}
}

// Mirror returns the registered mirror hooks.
func Mirror() MirrorHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return mirrorHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return httpHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	mirrorHooks = NoopMirrorHooks{}
	cacheHooks = NoopCacheHooks{}
	httpHooks = NoopHTTPHooks{}
}
