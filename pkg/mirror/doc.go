// Package mirror walks a Maven-layout repository and materializes each
// accepted version as an artifact file plus a library.xml descriptor.
//
// # Pipeline
//
//	master index -> group index -> version filter -> POM -> artifact -> descriptor
//
// [Runner.Run] drives this loop sequentially under an exclusive lock on the
// destination. Errors fall into two tiers:
//
//   - Fatal: the master index or a group index cannot be read. The run
//     stops and Run returns the error with the partial [Result].
//   - Recoverable: resolving, downloading or describing one version fails.
//     The error is logged, recorded in [Result.Failures] and the walk
//     continues with the next version. Only this tier retries.
//
// A version whose artifact and descriptor already exist is skipped without
// downloading, so re-running over a complete mirror only reads indexes and
// (cached) POMs.
package mirror
