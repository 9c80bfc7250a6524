package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/libmirror/pkg/observability"
)

// newLogger creates a new logger with timestamp formatting.
// The logger writes to w and filters messages at the specified level.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress tracks the start time of an operation and logs completion with elapsed duration.
// It is safe for sequential use by a single goroutine.
type progress struct {
	logger *log.Logger
	start  time.Time
}

// newProgress creates a progress tracker that captures the current time as start.
func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg along with the elapsed time since progress was created.
// Example output: "Mirrored 42 versions (1.234s)"
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, p.elapsed())
}

func (p *progress) elapsed() time.Duration {
	return time.Since(p.start).Round(time.Millisecond)
}

// =============================================================================
// Debug Hooks
// =============================================================================

// logHooks writes pipeline, cache and HTTP events to a logger at debug level.
type logHooks struct {
	logger *log.Logger
}

// registerLogHooks routes all observability events to l.
func registerLogHooks(l *log.Logger) {
	h := logHooks{logger: l.WithPrefix("trace")}
	observability.SetMirrorHooks(h)
	observability.SetCacheHooks(h)
	observability.SetHTTPHooks(h)
}

func (h logHooks) OnRunStart(_ context.Context, runID string, groups int) {
	h.logger.Debug("run started", "run", runID, "groups", groups)
}

func (h logHooks) OnGroupStart(_ context.Context, group string, libraries int) {
	h.logger.Debug("group started", "group", group, "libraries", libraries)
}

func (h logHooks) OnVersionComplete(_ context.Context, coordinate, outcome string, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("version done", "coordinate", coordinate, "outcome", outcome, "duration", d.Round(time.Millisecond), "error", err)
		return
	}
	h.logger.Debug("version done", "coordinate", coordinate, "outcome", outcome, "duration", d.Round(time.Millisecond))
}

func (h logHooks) OnRunComplete(_ context.Context, runID string, d time.Duration, err error) {
	h.logger.Debug("run complete", "run", runID, "duration", d.Round(time.Millisecond), "error", err)
}

func (h logHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h logHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h logHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "type", keyType, "bytes", size)
}

func (h logHooks) OnRequest(_ context.Context, method, host, path string) {
	h.logger.Debug("request", "method", method, "host", host, "path", path)
}

func (h logHooks) OnResponse(_ context.Context, method, host, path string, status int, d time.Duration) {
	h.logger.Debug("response", "method", method, "path", path, "status", status, "duration", d.Round(time.Millisecond))
}

func (h logHooks) OnError(_ context.Context, method, host, path string, err error) {
	h.logger.Debug("request failed", "method", method, "host", host, "path", path, "error", err)
}
