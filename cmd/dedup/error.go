package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

// warning prints a colorized, non-fatal warning to the given writer.
func warning(w io.Writer, message string) {
	fmt.Fprintln(w, color.YellowString("Warning:"), message)
}

// usageError is returned by the root command for bad flags or arguments;
// main maps it to exit code 1.
type usageError struct {
	err error
}

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }
