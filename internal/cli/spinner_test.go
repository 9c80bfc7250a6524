package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"
)

func TestSpinnerSilentOffTerminal(t *testing.T) {
	var buf bytes.Buffer
	s := newSpinner(context.Background(), &buf, "Fetching...")
	s.Start()
	time.Sleep(100 * time.Millisecond)
	s.Stop()

	if buf.Len() != 0 {
		t.Errorf("spinner wrote %q to a non-terminal", buf.String())
	}
	if s.Cancelled() {
		t.Error("Cancelled() = true after plain Stop")
	}
}

func TestSpinnerAnimates(t *testing.T) {
	var buf bytes.Buffer
	s := newSpinner(context.Background(), &buf, "Fetching...")
	s.animate = true
	s.Start()
	time.Sleep(200 * time.Millisecond)
	s.Stop()

	out := buf.String()
	if !strings.Contains(out, "Fetching...") {
		t.Errorf("output = %q, want message", out)
	}
	if !strings.HasSuffix(out, "\r") {
		t.Errorf("output = %q, want cleared line", out)
	}
}

func TestSpinnerWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	var buf bytes.Buffer
	s := newSpinner(ctx, &buf, "Testing with context...")
	s.animate = true
	s.Start()
	cancel()
	time.Sleep(100 * time.Millisecond)

	if !s.Cancelled() {
		t.Error("Spinner should be cancelled after context cancellation")
	}
	s.Stop()
}

func TestSpinnerStopIsIdempotent(t *testing.T) {
	s := newSpinner(context.Background(), &bytes.Buffer{}, "Testing idempotent stop...")
	s.animate = true
	s.Start()

	s.Stop()
	s.Stop()
	s.Stop()
}

func TestSpinnerStopWithoutStart(t *testing.T) {
	s := newSpinner(context.Background(), &bytes.Buffer{}, "never started")
	done := make(chan struct{})
	go func() {
		s.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop() without Start() blocked")
	}
}
