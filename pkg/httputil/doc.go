// Package httputil provides retry helpers for repository HTTP clients.
//
// # Retry
//
// [Retry] re-runs an operation when it fails with a [RetryableError]:
//
//   - Transport errors (connection reset, timeout)
//   - 5xx server errors
//
// Anything else (404, malformed documents) is returned after the first
// attempt. The delay doubles after every failed attempt:
//
//	err := httputil.Retry(ctx, 3, time.Second, func() error {
//	    return fetch(ctx, url)
//	})
//
// A [Policy] carries the same two knobs as a value so that callers can pick
// per call site whether to retry at all. libmirror retries packaging and
// artifact fetches and never retries index fetches:
//
//	httputil.NoRetry.Do(ctx, fetchIndex)
//	httputil.DefaultPolicy.Do(ctx, fetchPOM)
package httputil
