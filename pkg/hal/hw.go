package hal

import (
	"errors"
	"time"
)

// SleepMode is the low power state selected by the scheduler after a pass
type SleepMode int

const (
	SleepNone SleepMode = iota
	SleepIdle
	SleepPowerSave
	SleepPowerDown
)

func (m SleepMode) String() string {
	switch m {
	case SleepNone:
		return "none"
	case SleepIdle:
		return "idle"
	case SleepPowerSave:
		return "power-save"
	case SleepPowerDown:
		return "power-down"
	}
	return "unknown"
}

// ErrBusy is returned by a peripheral that is still serving a previous request
var ErrBusy = errors.New("resource busy")

// Line is a single GPIO output. *gpiod.Line satisfies it.
type Line interface {
	SetValue(value int) error
}

// Timer is a one-shot countdown. It must be restarted for every new wait.
type Timer interface {
	Start(d time.Duration)
	Expired() bool
	Stop()
}

// Watchdog guards the scheduler loop
type Watchdog interface {
	Enable()
	Disable()
	Refresh()
}

// ADC starts a conversion on a channel and reports the result by polling
type ADC interface {
	Start(channel int) error
	Poll() (uint16, bool)
}

// Bus is an exclusive, polled transaction bus (I2C)
type Bus interface {
	Acquire() bool
	Release()
	Start(address uint8, write []byte, readLen int) error
	Poll() ([]byte, bool, error)
}

// DebugSink receives diagnostic output. Implementations must not block protocol logic.
type DebugSink interface {
	LogString(msg string)
	LogBytes(data []byte)
	LogErrorCode(code uint8)
}
