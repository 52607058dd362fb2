package log

import (
	"context"
	"log/slog"
)

// SlogAdapter writes events to an slog.Logger: successful steps at Debug,
// failed steps at Warn.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter creates an adapter writing to logger.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	return &SlogAdapter{logger: logger}
}

// Log writes the event.
func (a *SlogAdapter) Log(event Event) {
	attrs := []slog.Attr{
		slog.String("session", event.SessionID),
		slog.String("stage", event.Stage.String()),
		slog.String("outcome", event.Outcome.String()),
	}
	if event.Document != "" {
		attrs = append(attrs, slog.String("document", event.Document))
	}
	if event.Partname != "" {
		attrs = append(attrs, slog.String("device", event.Partname))
	}
	if event.Duration > 0 {
		attrs = append(attrs, slog.Duration("duration", event.Duration))
	}

	switch {
	case event.Load != nil:
		attrs = append(attrs,
			slog.String("format", event.Load.Format),
			slog.Int("devices", event.Load.Devices),
		)
	case event.Resolve != nil:
		attrs = append(attrs,
			slog.Int("drivers", event.Resolve.Drivers),
			slog.Int("keys", event.Resolve.Keys),
		)
	case event.Lint != nil:
		attrs = append(attrs,
			slog.Int("errors", event.Lint.Errors),
			slog.Int("warnings", event.Lint.Warnings),
			slog.Int("infos", event.Lint.Infos),
		)
	case event.Index != nil:
		attrs = append(attrs,
			slog.String("store", event.Index.Store),
			slog.Int("entries", event.Index.Entries),
		)
	case event.Error != nil:
		attrs = append(attrs,
			slog.String("error_stage", event.Error.Stage.String()),
			slog.String("error", event.Error.Message),
		)
		if event.Error.Context != "" {
			attrs = append(attrs, slog.String("error_context", event.Error.Context))
		}
	}

	level := slog.LevelDebug
	if event.Outcome == OutcomeFailed {
		level = slog.LevelWarn
	}
	a.logger.LogAttrs(context.Background(), level, "resolution", attrs...)
}

// Compile-time interface satisfaction check.
var _ Logger = (*SlogAdapter)(nil)
