package sampling

import (
	"github.com/mbalug7/go-sensor-node/pkg/protocol"
)

// Status is the result of one non-blocking driver step
type Status uint8

const (
	Pending Status = iota
	Ready
	Failed
)

func (s Status) String() string {
	switch s {
	case Pending:
		return "pending"
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// Driver acquires one sample in three polled steps:
//
//	Start  power up the sensor
//	Begin  claim the converter or the bus and trigger an acquisition
//	Poll   collect the result into data
//
// Stop is called once the sample is done and undoes Start.
type Driver interface {
	DataLength() int
	// Averaged reports whether data[0] is accumulated over the slot average
	// count, otherwise every word is copied as is.
	Averaged() bool
	Start() Status
	Begin() Status
	Poll(data []uint16) Status
	Stop()
}

// Registry maps sensor ids to their drivers
type Registry struct {
	drivers map[protocol.SensorID]Driver
}

func NewRegistry() *Registry {
	return &Registry{drivers: make(map[protocol.SensorID]Driver)}
}

func (obj *Registry) Register(id protocol.SensorID, d Driver) *Registry {
	obj.drivers[id] = d
	return obj
}

// Lookup returns the driver for id, ids without a driver get a no-op one
func (obj *Registry) Lookup(id protocol.SensorID) Driver {
	if d, ok := obj.drivers[id]; ok {
		return d
	}
	return Null{}
}

// Resetter is implemented by drivers holding resources across passes
type Resetter interface {
	Reset()
}

// Reset drops the in flight state of every driver
func (obj *Registry) Reset() {
	for _, d := range obj.drivers {
		if r, ok := d.(Resetter); ok {
			r.Reset()
		}
	}
}

// Null completes every step immediately and produces no data
type Null struct{}

func (Null) DataLength() int           { return 0 }
func (Null) Averaged() bool            { return true }
func (Null) Start() Status             { return Ready }
func (Null) Begin() Status             { return Ready }
func (Null) Poll(data []uint16) Status { return Ready }
func (Null) Stop()                     {}
