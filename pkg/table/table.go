package table

import (
	"github.com/mbalug7/go-sensor-node/pkg/protocol"
)

// SlotState is the per sensor sampling state
type SlotState uint8

const (
	SlotOff SlotState = iota
	SlotStart
	SlotRunLvl0
	SlotRun
)

func (s SlotState) String() string {
	switch s {
	case SlotOff:
		return "off"
	case SlotStart:
		return "start"
	case SlotRunLvl0:
		return "run-lvl0"
	case SlotRun:
		return "run"
	}
	return "unknown"
}

// Slot holds the schedule and the sampling state of one sensor. AvgCounter
// never exceeds AvgTotal, when they are equal Data[0] holds the finished
// average and the accumulator is reset by the next collection.
type Slot struct {
	ID            protocol.SensorID `yaml:"id"`
	Control       uint8             `yaml:"control"`
	SampleDivisor uint8             `yaml:"sample_divisor"`
	RadioDivisor  uint8             `yaml:"radio_divisor"`
	AvgTotal      uint8             `yaml:"average"`

	SampleCounter uint8                                `yaml:"-"`
	RadioCounter  uint8                                `yaml:"-"`
	State         SlotState                            `yaml:"-"`
	Data          [protocol.MaxSensorDataLength]uint16 `yaml:"-"`
	DataLen       int                                  `yaml:"-"`
	Accumulator   uint32                               `yaml:"-"`
	AvgCounter    uint8                                `yaml:"-"`
}

// Arm resets the counters so the slot samples on the very next sampling tick
func (obj *Slot) Arm() {
	obj.SampleCounter = obj.SampleDivisor
	obj.RadioCounter = 0
	obj.AvgCounter = 0
	obj.Accumulator = 0
	obj.State = SlotOff
	obj.Data = [protocol.MaxSensorDataLength]uint16{}
	obj.DataLen = protocol.DataLength(obj.ID)
}

// AverageDone reports whether the running average reached its target
func (obj *Slot) AverageDone() bool {
	return obj.AvgCounter >= obj.AvgTotal
}

// Table is the active execution table
type Table struct {
	SampleClock  uint16           `yaml:"sample_clock_hz"`
	RadioDivisor uint16           `yaml:"radio_divisor"`
	CommTimeout  uint16           `yaml:"comm_timeout_ms"`
	Channel      protocol.Channel `yaml:"channel"`
	AlwaysOn     bool             `yaml:"-"`
	Slots        []Slot           `yaml:"sensors"`
}

const (
	defaultSampleClock  = 1
	defaultRadioDivisor = 5
	defaultCommTimeout  = 1000
)

// Default returns the boot table, it only drives execution table requests
func Default() *Table {
	return &Table{
		SampleClock:  defaultSampleClock,
		RadioDivisor: defaultRadioDivisor,
		CommTimeout:  defaultCommTimeout,
		Channel:      protocol.ChannelSlowDown,
	}
}

// Arm prepares every slot for a fresh start
func (obj *Table) Arm() {
	for i := range obj.Slots {
		obj.Slots[i].Arm()
	}
}

// ResetStates puts every slot back to Off, in flight acquisitions are dropped
func (obj *Table) ResetStates() {
	for i := range obj.Slots {
		obj.Slots[i].State = SlotOff
	}
}

// AllOff reports whether no slot is sampling
func (obj *Table) AllOff() bool {
	for i := range obj.Slots {
		if obj.Slots[i].State != SlotOff {
			return false
		}
	}
	return true
}

func (obj *Table) Clone() *Table {
	c := *obj
	c.Slots = append([]Slot(nil), obj.Slots...)
	return &c
}
