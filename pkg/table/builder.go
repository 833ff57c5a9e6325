package table

import (
	"github.com/mbalug7/go-sensor-node/pkg/protocol"
)

// Builder stages an execution table, starting from the default one
type Builder struct {
	staged *Table
}

// NewBuilder constructs Builder
func NewBuilder() *Builder {
	return &Builder{staged: Default()}
}

// FromTable stages a copy of t
func FromTable(t *Table) *Builder {
	return &Builder{staged: t.Clone()}
}

// SampleClock set sample clock frequency in Hz
func (obj *Builder) SampleClock(hz uint16) *Builder {
	obj.staged.SampleClock = hz
	return obj
}

// RadioDivisor set number of radio clock occurrences between downloads
func (obj *Builder) RadioDivisor(divisor uint16) *Builder {
	obj.staged.RadioDivisor = divisor
	return obj
}

// CommTimeout set the reply wait time in milliseconds
func (obj *Builder) CommTimeout(ms uint16) *Builder {
	obj.staged.CommTimeout = ms
	return obj
}

// Channel set download link
func (obj *Builder) Channel(ch protocol.Channel) *Builder {
	obj.staged.Channel = ch
	return obj
}

// Sensor appends a sensor slot, slots are sampled in insertion order
func (obj *Builder) Sensor(id protocol.SensorID, sampleDivisor uint8, average uint8, radioDivisor uint8) *Builder {
	obj.staged.Slots = append(obj.staged.Slots, Slot{
		ID:            id,
		SampleDivisor: sampleDivisor,
		AvgTotal:      average,
		RadioDivisor:  radioDivisor,
	})
	return obj
}

// Build returns the armed table
func (obj *Builder) Build() *Table {
	t := obj.staged.Clone()
	t.Arm()
	return t
}

// Upload encodes the staged table as a new execution table frame, the way
// the console sends it. Status bytes appended by the radio are not included.
func (obj *Builder) Upload() []byte {
	t := obj.staged
	n := protocol.ETFirstSensor + protocol.ETSensorStride*len(t.Slots)
	frame := make([]byte, n)
	frame[protocol.IndexLength] = byte(n - 1)
	frame[protocol.IndexHeader] = byte(protocol.MsgNewET)
	frame[protocol.IndexDataLength] = byte(n)
	frame[protocol.IndexDescriptor] = protocol.Descriptor{Seq: 1, TxID: protocol.ChannelUplink, Last: true}.Encode()
	frame[protocol.ETMasterID] = protocol.MasterControllerID
	frame[protocol.ETSampleClock] = byte(t.SampleClock >> 8)
	frame[protocol.ETSampleClock+1] = byte(t.SampleClock)
	control := byte(t.RadioDivisor>>8) & 0x01
	if t.Channel == protocol.ChannelFastDown {
		control |= protocol.ETFastChannelMask
	}
	frame[protocol.ETControl] = control
	frame[protocol.ETRadioDivisor] = byte(t.RadioDivisor)
	frame[protocol.ETCommTimeout] = byte(t.CommTimeout >> 8)
	frame[protocol.ETCommTimeout+1] = byte(t.CommTimeout)
	for i, s := range t.Slots {
		rec := frame[protocol.ETFirstSensor+i*protocol.ETSensorStride:]
		rec[0] = byte(s.ID)
		rec[protocol.ETSensorControl] = s.Control
		rec[protocol.ETSensorDivisor] = s.SampleDivisor
		rec[protocol.ETSensorAverage] = s.AvgTotal
		rec[protocol.ETSensorRadioDiv] = s.RadioDivisor
	}
	return frame
}
