// Package logx is a small zerolog-backed logger used by the runtime
// supervisor, where a zero-value-safe logger with explicit fields is more
// convenient than threading *slog.Logger through goroutine plumbing.
package logx
