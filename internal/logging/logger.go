// Package logging is the structured logger seen by every other package.
// SlogLogger backs it with log/slog; tests plug in their own no-op types.
package logging

import "context"

// Logger takes a message plus alternating key/value attributes:
//
//	l.Info(ctx, "request", "method", r.Method, "status", 200)
//
// The context is handed to the underlying handler unchanged.
type Logger interface {
	Debug(ctx context.Context, msg string, args ...any)
	Info(ctx context.Context, msg string, args ...any)
	Warn(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)

	// With returns a logger that adds args to every record, e.g. the
	// owning module.
	With(args ...any) Logger
}
