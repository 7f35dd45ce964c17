// Package obslog wraps log/slog so call sites keep the teacher's terse,
// prefixed-message shape ("eventbus: handler %q error for %s: %v") while
// emitting structured fields a real collector can key on.
package obslog

import (
	"context"
	"log/slog"
	"os"
)

var base = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

// SetLevel adjusts the minimum logged level; intended for cmd/kg flags.
func SetLevel(level slog.Level) {
	base = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// For returns a logger scoped to a component name, e.g. obslog.For("eventbus").
func For(component string) *slog.Logger {
	return base.With("component", component)
}

// Errorf logs a prefixed error message with structured args, matching the
// "component: message: err" shape used throughout the store and eventbus.
func Errorf(ctx context.Context, component, msg string, args ...any) {
	For(component).ErrorContext(ctx, msg, args...)
}
