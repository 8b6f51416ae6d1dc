//go:build !unix

package statsdmetrics

import "time"

// processCPUTime is not supported on this platform.
func processCPUTime() time.Duration { return 0 }
