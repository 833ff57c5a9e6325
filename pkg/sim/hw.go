// Package sim provides in-memory stand-ins for the node hardware. They are
// used by the tests and by the simulated runner.
package sim

import (
	"time"

	"github.com/mbalug7/go-sensor-node/pkg/hal"
)

// Line records every value written to a GPIO output
type Line struct {
	Values []int
	Err    error
}

func (obj *Line) SetValue(value int) error {
	if obj.Err != nil {
		return obj.Err
	}
	obj.Values = append(obj.Values, value)
	return nil
}

// Value returns the last written value, -1 if never written
func (obj *Line) Value() int {
	if len(obj.Values) == 0 {
		return -1
	}
	return obj.Values[len(obj.Values)-1]
}

// Timer is a manually fired hal.Timer
type Timer struct {
	Starts  []time.Duration
	running bool
	expired bool
}

func (obj *Timer) Start(d time.Duration) {
	obj.Starts = append(obj.Starts, d)
	obj.running = true
	obj.expired = false
}

func (obj *Timer) Expired() bool {
	return obj.expired
}

func (obj *Timer) Stop() {
	obj.running = false
	obj.expired = false
}

// Fire expires a running timer
func (obj *Timer) Fire() {
	if obj.running {
		obj.running = false
		obj.expired = true
	}
}

func (obj *Timer) Running() bool {
	return obj.running
}

// Last returns the most recent started duration
func (obj *Timer) Last() time.Duration {
	if len(obj.Starts) == 0 {
		return 0
	}
	return obj.Starts[len(obj.Starts)-1]
}

// Watchdog counts watchdog operations
type Watchdog struct {
	Enabled   bool
	Refreshes int
	Disables  int
	Enables   int
}

func NewWatchdog() *Watchdog {
	return &Watchdog{Enabled: true}
}

func (obj *Watchdog) Enable() {
	obj.Enabled = true
	obj.Enables++
}

func (obj *Watchdog) Disable() {
	obj.Enabled = false
	obj.Disables++
}

func (obj *Watchdog) Refresh() {
	obj.Refreshes++
}

// ADC converts after Latency polls
type ADC struct {
	Value    uint16
	Latency  int
	Busy     bool
	Channels []int
	pending  int
	active   bool
}

func (obj *ADC) Start(channel int) error {
	if obj.Busy || obj.active {
		return hal.ErrBusy
	}
	obj.Channels = append(obj.Channels, channel)
	obj.active = true
	obj.pending = obj.Latency
	return nil
}

func (obj *ADC) Poll() (uint16, bool) {
	if !obj.active {
		return 0, false
	}
	if obj.pending > 0 {
		obj.pending--
		return 0, false
	}
	obj.active = false
	return obj.Value, true
}

// Bus is an exclusive I2C bus answering every read with Response
type Bus struct {
	Response []byte
	Latency  int
	Err      error
	Writes   [][]byte
	Acquires int
	owned    bool
	active   bool
	pending  int
	readLen  int
}

func (obj *Bus) Acquire() bool {
	if obj.owned {
		return false
	}
	obj.owned = true
	obj.Acquires++
	return true
}

func (obj *Bus) Release() {
	obj.owned = false
	obj.active = false
}

func (obj *Bus) Owned() bool {
	return obj.owned
}

func (obj *Bus) Start(address uint8, write []byte, readLen int) error {
	if obj.active {
		return hal.ErrBusy
	}
	obj.Writes = append(obj.Writes, append([]byte{address}, write...))
	obj.active = true
	obj.pending = obj.Latency
	obj.readLen = readLen
	return nil
}

func (obj *Bus) Poll() ([]byte, bool, error) {
	if !obj.active {
		return nil, false, nil
	}
	if obj.pending > 0 {
		obj.pending--
		return nil, false, nil
	}
	obj.active = false
	if obj.Err != nil {
		return nil, true, obj.Err
	}
	out := make([]byte, obj.readLen)
	copy(out, obj.Response)
	return out, true, nil
}

// Sink records debug output
type Sink struct {
	Strings []string
	Bytes   [][]byte
	Codes   []uint8
}

func (obj *Sink) LogString(msg string) {
	obj.Strings = append(obj.Strings, msg)
}

func (obj *Sink) LogBytes(data []byte) {
	obj.Bytes = append(obj.Bytes, append([]byte(nil), data...))
}

func (obj *Sink) LogErrorCode(code uint8) {
	obj.Codes = append(obj.Codes, code)
}

// Has reports whether code was logged
func (obj *Sink) Has(code uint8) bool {
	for _, c := range obj.Codes {
		if c == code {
			return true
		}
	}
	return false
}
