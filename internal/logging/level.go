package logging

import "log/slog"

// LevelTrace is more verbose than Debug. It is used for per-lookup store
// and compile events.
const LevelTrace = slog.LevelDebug - 4

// LevelFromVerbosity maps the count of -v flags to a level:
// 0 is Warn, 1 is Info, 2 is Debug and 3 or more is Trace.
func LevelFromVerbosity(v int) slog.Level {
	switch {
	case v <= 0:
		return slog.LevelWarn
	case v == 1:
		return slog.LevelInfo
	case v == 2:
		return slog.LevelDebug
	default:
		return LevelTrace
	}
}

func levelName(l slog.Level) string {
	if l <= LevelTrace {
		return "TRACE"
	}
	return l.String()
}
