// Package busan provides executor-style task coordination for Go concurrency.
//
// It combines:
//   - Task, a cancellable and awaitable handle wrapping a plain function
//   - Pool, an errgroup-backed executor with an optional concurrency limit
//   - CompletionQueue, which yields handles in completion order
//   - Service, the coordination front: Submit, InvokeAny, InvokeAll
//
// Core behavior:
//   - wrap one function with Submit and await or cancel it via its Handle
//   - race many functions with InvokeAny and keep the first success
//   - run many functions with InvokeAll and inspect every handle afterward
//
// Semantics:
//   - a handle reaches exactly one terminal state: succeeded, failed, or
//     cancelled; later transitions are no-ops
//   - Cancel is advisory: it cancels the context the function runs under
//     and the function decides when to stop
//   - InvokeAny cancels every handle it created before returning, on every
//     exit path; so does InvokeAll for handles that are not yet terminal
//   - InvokeAnyTimeout reports ErrTimeout when the budget runs out first;
//     InvokeAllTimeout instead returns the full handle slice and leaves
//     exhaustion visible as non-succeeded handle states
//
// Policy options:
//   - WithMaxWorkers(n): bound Pool concurrency; submission blocks at the limit
//   - WithNonblocking(true): Pool rejects with ErrRejected instead of blocking
//   - WithPanicToError(true): convert task panic to task error (default)
//   - WithPanicToError(false): rethrow panic
package busan
