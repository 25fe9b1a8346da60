// Package roster owns the process-wide duty schedule snapshot and the
// background task that keeps it fresh.
//
// # Refresh model
//
// One cron-driven job re-fetches the morning and evening worksheets on a
// fixed interval (default 60s), scans and merges them outside any lock, and
// installs the finished snapshot under a short mutex hold. Readers only ever
// take that mutex to copy out the current snapshot reference; they never
// wait on the network.
//
// A single-slot atomic guard makes overlapping triggers a no-op: while one
// refresh is in flight, further triggers (timer tick, workbook change,
// manual) return immediately.
//
// # Bootstrap
//
// Start() runs one synchronous refresh before scheduling the timer, so the
// HTTP layer comes up with data already loaded when the source is healthy.
// Reads never trigger fetches.
//
// # Failure policy
//
// A missing worksheet degrades that sheet's contribution to empty and the
// cycle still succeeds. Any other fetch error fails the whole cycle: the
// previous snapshot stays in place (stale-but-available over
// empty-but-fresh) with the error recorded for /api/health.
package roster
