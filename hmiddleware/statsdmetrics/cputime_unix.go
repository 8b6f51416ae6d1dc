//go:build unix

package statsdmetrics

import (
	"time"

	"golang.org/x/sys/unix"
)

// processCPUTime returns the user plus system CPU time consumed by the
// process so far, or 0 if it can't be read.
func processCPUTime() time.Duration {
	var ru unix.Rusage
	if err := unix.Getrusage(unix.RUSAGE_SELF, &ru); err != nil {
		return 0
	}
	return time.Duration(ru.Utime.Nano() + ru.Stime.Nano())
}
