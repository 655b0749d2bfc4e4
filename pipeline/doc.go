// Package pipeline implements the ordering controller at the heart of
// inferpipe.
//
// The Pipeline submits frames to a fixed-size pool of reusable executor
// slots, collects their completions (which may arrive out of order and from
// background goroutines) and hands results back to the caller strictly in
// submission order. A later-finishing earlier frame holds back already
// finished later frames until its predecessor has been drained.
//
// # Concurrency model
//
// A single mutex plus condition variable coordinates everything: submission
// bookkeeping, the completion buffer, the frame sequencer and the fault
// latch. Completion handlers fire on executor goroutines, record the result,
// release the slot and broadcast; blocked callers wake when a fault latched,
// an idle slot appeared, or the next expected frame completed. Submission
// itself never blocks; exhausted capacity is reported as core.ErrNoCapacity
// so the producer can back off (or use SubmitWait).
//
// # Failure semantics
//
// The first error raised by any completion handler is latched and surfaced to
// every retrieval from then on; the pipeline is permanently degraded and the
// remedy is Close plus reconstruction, not per-frame retries.
package pipeline
