package logging

// Level represents a log level. Its value hierarchy is designed to be
// ordered and comparable by value: logging at level L is enabled whenever
// the logger's configured level is >= L.
type Level uint

const (
	// LevelError indicates that only fatal and non-fatal errors are logged.
	LevelError Level = iota
	// LevelWarn indicates that warnings are logged in addition to errors.
	LevelWarn
	// LevelInfo indicates that basic execution information is logged (in
	// addition to warnings and errors). This is the default level.
	LevelInfo
	// LevelDebug indicates that per-component diagnostic information is
	// logged (in addition to all of the above), e.g. which visited-tree
	// branch or origin-selection rule fired for a given file.
	LevelDebug
	// LevelTrace indicates that low-level execution information is logged
	// (in addition to all of the above), e.g. individual queue dequeues.
	LevelTrace
)

// LevelForVerbosity maps a repeated -v/--verbose flag count onto a Level,
// starting from LevelInfo (the default with zero occurrences).
func LevelForVerbosity(count int) Level {
	level := LevelInfo + Level(count)
	if level > LevelTrace {
		level = LevelTrace
	}
	return level
}

// String provides a human-readable representation of a log level.
func (l Level) String() string {
	switch l {
	case LevelError:
		return "error"
	case LevelWarn:
		return "warn"
	case LevelInfo:
		return "info"
	case LevelDebug:
		return "debug"
	case LevelTrace:
		return "trace"
	default:
		return "unknown"
	}
}
