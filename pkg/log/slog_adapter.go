package log

import (
	"context"
	"log/slog"
)

// SlogAdapter writes gateway events to an slog.Logger.
// Useful for development when you want to see events in console.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter creates a new SlogAdapter that writes to the given slog.Logger.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	return &SlogAdapter{logger: logger}
}

// Log writes the event to the slog logger. Errors are logged at Error level,
// warnings at Warn, everything else at Debug.
func (a *SlogAdapter) Log(event Event) {
	attrs := []slog.Attr{
		slog.String("session_id", event.SessionID),
		slog.String("category", event.Category.String()),
	}

	if event.GatewayModel != "" {
		attrs = append(attrs, slog.String("gateway_model", event.GatewayModel))
	}
	if event.SID != "" {
		attrs = append(attrs, slog.String("sid", event.SID))
	}
	if event.Command != "" {
		attrs = append(attrs, slog.String("command", event.Command))
	}
	if event.Property != "" {
		attrs = append(attrs, slog.String("property", event.Property))
	}
	if event.Action != "" {
		attrs = append(attrs, slog.String("action", event.Action))
	}
	if event.Detail != "" {
		attrs = append(attrs, slog.String("detail", event.Detail))
	}
	if event.Err != "" {
		attrs = append(attrs, slog.String("error", event.Err))
	}

	level := slog.LevelDebug
	switch event.Category {
	case CategoryWarning:
		level = slog.LevelWarn
	case CategoryError:
		level = slog.LevelError
	}

	a.logger.LogAttrs(context.Background(), level, "gateway event", attrs...)
}

// Compile-time interface satisfaction check.
var _ Logger = (*SlogAdapter)(nil)
