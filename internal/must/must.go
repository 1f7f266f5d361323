// Package must provides best-effort cleanup helpers: operations whose
// failure is worth a warning but must never block or fail the caller.
// The replacer relies on these for unlinking a staging file after a
// failed clone attempt: the original replacement error is what gets
// reported, not a secondary failure to clean up.
package must

import (
	"io"
	"os"

	"github.com/ttkb-oss/dedup/internal/logging"
)

// OSRemove removes a file, logging (rather than returning) any failure.
func OSRemove(path string, logger *logging.Logger) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		logger.Warnf("unable to remove %s: %v", path, err)
	}
}

// Close closes c, logging rather than returning any failure.
func Close(c io.Closer, logger *logging.Logger) {
	if err := c.Close(); err != nil {
		logger.Warnf("unable to close: %v", err)
	}
}
