package scheduler

import (
	"github.com/mbalug7/go-sensor-node/pkg/hal"
)

// Flusher drains buffered debug output, Flush reports true once nothing is left
type Flusher interface {
	Flush() bool
}

// DebugSerialTask pushes buffered debug output to the debug port
func DebugSerialTask(f Flusher) Task {
	return TaskFunc(f.Flush)
}

// WatchdogTask refreshes the watchdog once per sample period
func WatchdogTask(wd hal.Watchdog) Task {
	return TaskFunc(func() bool {
		wd.Refresh()
		return true
	})
}
