// Package integrations provides the HTTP plumbing for remote repository clients.
//
// # Overview
//
// [Client] is shared by repository clients (see [maven]). It provides:
//
//   - Connect and header timeouts, plus a stall watchdog on downloads ([NewHTTPClient], [Client.Download])
//   - Document fetches with caching and optional retry ([Client.Document])
//   - Streaming downloads for binary artifacts ([Client.Download])
//   - HTTP events reported to [observability] hooks
//
// # Errors
//
// Failures wrap one of two sentinels so callers can branch with errors.Is:
//
//   - [ErrNotFound]: the repository answered 404
//   - [ErrNetwork]: transport failure or any other non-200 status
//
// Transport failures and 5xx responses are additionally wrapped in
// [httputil.RetryableError]; whether they are actually retried is decided by
// the [httputil.Policy] the caller passes in.
//
// [maven]: github.com/matzehuels/libmirror/pkg/integrations/maven
// [observability]: github.com/matzehuels/libmirror/pkg/observability
// [httputil.RetryableError]: github.com/matzehuels/libmirror/pkg/httputil.RetryableError
// [httputil.Policy]: github.com/matzehuels/libmirror/pkg/httputil.Policy
package integrations
