package internal

import (
	"context"
	"log/slog"
)

// LevelTrace is a more granular level than [slog.LevelDebug], used for
// per-segment and per-tick chatter that would otherwise drown out ordinary
// debug logging.
const LevelTrace slog.Level = slog.LevelDebug - 2

// LogEnabled reports whether l would emit a record at lvl, treating a nil
// logger as always disabled.
func LogEnabled(l *slog.Logger, lvl slog.Level) bool {
	return l != nil && l.Handler().Enabled(context.Background(), lvl)
}

// LogAttrs logs msg with attrs at level through l, doing nothing if l is nil.
func LogAttrs(l *slog.Logger, level slog.Level, msg string, attrs ...slog.Attr) {
	if l != nil {
		l.LogAttrs(context.Background(), level, msg, attrs...)
	}
}
