// Package progress implements best-effort progress reporting for the
// dedup engine, gated on both the --no-progress flag and whether output
// is actually a terminal (no point emitting carriage-return updates into a
// log file).
package progress

import (
	"fmt"
	"io"
	"os"
	"sync/atomic"

	"github.com/mattn/go-isatty"
)

// Tracker counts files processed by the worker pool and, when attached to
// a terminal, prints a single updating status line.
type Tracker struct {
	processed uint64
	out       io.Writer
	live      bool
}

// New creates a Tracker. If disabled is true, or out is not a terminal,
// the tracker still counts but never prints.
func New(out *os.File, disabled bool) *Tracker {
	live := !disabled && isatty.IsTerminal(out.Fd())
	return &Tracker{out: out, live: live}
}

// Increment records that one more file has been processed.
func (t *Tracker) Increment() {
	n := atomic.AddUint64(&t.processed, 1)
	if t.live {
		fmt.Fprintf(t.out, "\rscanned %d files", n)
	}
}

// Processed returns the current count.
func (t *Tracker) Processed() uint64 {
	return atomic.LoadUint64(&t.processed)
}

// Finish clears the live status line, if one was being shown.
func (t *Tracker) Finish() {
	if t.live {
		fmt.Fprint(t.out, "\r\033[K")
	}
}
