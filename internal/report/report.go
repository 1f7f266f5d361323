// Package report formats the final run summary printed to stdout, using
// go-humanize for the optional human-readable byte counts.
package report

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
)

// Counters holds the run's three summary metrics.
type Counters struct {
	Found        int
	Saved        uint64
	AlreadySaved uint64
}

// Summary renders the two-line final summary: "duplicates found: N" on its
// own line, followed by "bytes saved: M, already saved: K". When human is
// true, M and K are rendered with SI-like unit suffixes (bytes/kB/MB/...)
// instead of as raw integers.
func Summary(c Counters, human bool) string {
	return fmt.Sprintf("duplicates found: %d\nbytes saved: %s, already saved: %s\n",
		c.Found, formatBytes(c.Saved, human), formatBytes(c.AlreadySaved, human))
}

// sub-kB label humanize.Bytes uses; formatBytes relabels it as " bytes".
const humanizeByteSuffix = " B"

func formatBytes(n uint64, human bool) string {
	if !human {
		return fmt.Sprintf("%d", n)
	}
	s := humanize.Bytes(n)
	if strings.HasSuffix(s, humanizeByteSuffix) {
		s = strings.TrimSuffix(s, humanizeByteSuffix) + " bytes"
	}
	return s
}
