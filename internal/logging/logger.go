// Package logging provides a small, nil-safe leveled logger used throughout
// the dedup engine. Every component accepts a *Logger rather than writing to
// stderr directly, so tests can pass nil and get silence.
package logging

import (
	"bytes"
	"fmt"
	"io"
	"log"

	"github.com/fatih/color"
)

// writer is an io.Writer that splits its input stream into lines and
// forwards each complete line to a callback.
type writer struct {
	callback func(string)
	buffer   []byte
}

func trimCarriageReturn(b []byte) []byte {
	if len(b) > 0 && b[len(b)-1] == '\r' {
		return b[:len(b)-1]
	}
	return b
}

// Write implements io.Writer.Write.
func (w *writer) Write(data []byte) (int, error) {
	w.buffer = append(w.buffer, data...)

	var processed int
	remaining := w.buffer
	for {
		index := bytes.IndexByte(remaining, '\n')
		if index == -1 {
			break
		}
		w.callback(string(trimCarriageReturn(remaining[:index])))
		processed += index + 1
		remaining = remaining[index+1:]
	}

	if processed > 0 {
		leftover := len(w.buffer) - processed
		if leftover > 0 {
			copy(w.buffer[:leftover], w.buffer[processed:])
		}
		w.buffer = w.buffer[:leftover]
	}

	return len(data), nil
}

// Logger is the main logger type. It has the property that it still
// functions if nil, but logs nothing — components can always be handed a
// logger, even in contexts (tests, library use) where no output is wanted.
// It is safe for concurrent use, since it defers to the standard log
// package's own locking.
type Logger struct {
	prefix string
	level  *Level
}

// RootLogger is the root logger from which all other loggers derive. Its
// level defaults to LevelInfo; adjust it once at startup via SetLevel.
var RootLogger = &Logger{level: new(Level)}

func init() {
	*RootLogger.level = LevelInfo
}

// SetLevel sets the logging level for this logger and all loggers derived
// from it via Sublogger (the level pointer is shared).
func (l *Logger) SetLevel(level Level) {
	if l == nil {
		return
	}
	*l.level = level
}

// Sublogger creates a new named sub-logger. The returned logger shares its
// parent's level.
func (l *Logger) Sublogger(name string) *Logger {
	if l == nil {
		return nil
	}
	prefix := name
	if l.prefix != "" {
		prefix = l.prefix + "." + name
	}
	return &Logger{prefix: prefix, level: l.level}
}

func (l *Logger) enabled(level Level) bool {
	return l != nil && l.level != nil && *l.level >= level
}

func (l *Logger) output(calldepth int, line string) {
	if l.prefix != "" {
		line = fmt.Sprintf("[%s] %s", l.prefix, line)
	}
	log.Output(calldepth, line)
}

// Errorf logs a fatal-class error, unconditionally (errors are always
// logged when a logger is non-nil).
func (l *Logger) Errorf(format string, v ...any) {
	if l == nil {
		return
	}
	l.output(3, color.RedString("Error: "+format, v...))
}

// Warnf logs a non-fatal warning.
func (l *Logger) Warnf(format string, v ...any) {
	if !l.enabled(LevelWarn) {
		return
	}
	l.output(3, color.YellowString("Warning: "+format, v...))
}

// Infof logs basic execution information.
func (l *Logger) Infof(format string, v ...any) {
	if !l.enabled(LevelInfo) {
		return
	}
	l.output(3, fmt.Sprintf(format, v...))
}

// Debugf logs per-component diagnostic information.
func (l *Logger) Debugf(format string, v ...any) {
	if !l.enabled(LevelDebug) {
		return
	}
	l.output(3, fmt.Sprintf(format, v...))
}

// Tracef logs low-level execution information.
func (l *Logger) Tracef(format string, v ...any) {
	if !l.enabled(LevelTrace) {
		return
	}
	l.output(3, fmt.Sprintf(format, v...))
}

// Writer returns an io.Writer that logs each line written to it at Debug
// level. It is intended for adapting APIs that want an io.Writer (e.g.
// piping subprocess output) into the logger.
func (l *Logger) Writer() io.Writer {
	if l == nil {
		return io.Discard
	}
	return &writer{callback: func(s string) { l.Debugf("%s", s) }}
}
