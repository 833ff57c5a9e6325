// Package sampling runs the per sensor acquisition state machines on the
// sample clock cadence.
package sampling

import (
	"github.com/mbalug7/go-sensor-node/pkg/node"
	"github.com/mbalug7/go-sensor-node/pkg/protocol"
	"github.com/mbalug7/go-sensor-node/pkg/table"
	"go.uber.org/zap"
)

// Task is the sampling scheduler task
type Task struct {
	ctx      *node.Context
	registry *Registry
	log      *zap.Logger
	buf      [protocol.MaxSensorDataLength]uint16
}

func NewTask(ctx *node.Context, registry *Registry, log *zap.Logger) *Task {
	return &Task{
		ctx:      ctx,
		registry: registry,
		log:      log.Named("sampling"),
	}
}

// Run advances every sampling slot by one pass, it is done when all slots are off
func (obj *Task) Run() bool {
	slots := obj.ctx.Table.Slots
	if obj.ctx.SampleDue {
		obj.ctx.SampleDue = false
		for i := range slots {
			obj.trigger(&slots[i])
		}
	}
	for i := range slots {
		if slots[i].State != table.SlotOff {
			obj.step(&slots[i])
		}
	}
	return obj.ctx.Table.AllOff()
}

// trigger advances the sample divisor and starts a new acquisition when it wraps
func (obj *Task) trigger(slot *table.Slot) {
	slot.SampleCounter++
	if slot.SampleCounter < slot.SampleDivisor {
		return
	}
	slot.SampleCounter = 0
	if slot.State != table.SlotOff {
		// previous acquisition still running
		obj.ctx.Flag(protocol.ErrSamplingOverrun)
		return
	}
	if slot.AvgCounter < slot.AvgTotal {
		slot.State = table.SlotStart
	}
}

// step runs the slot state machine until a driver step is pending
func (obj *Task) step(slot *table.Slot) {
	d := obj.registry.Lookup(slot.ID)
	for {
		switch slot.State {
		case table.SlotStart:
			switch d.Start() {
			case Ready:
				slot.State = table.SlotRunLvl0
			case Failed:
				obj.abort(slot, d, protocol.ErrAdcNotFree)
				return
			default:
				return
			}
		case table.SlotRunLvl0:
			switch d.Begin() {
			case Ready:
				slot.State = table.SlotRun
			case Failed:
				// retried on the next pass
				obj.ctx.Flag(protocol.ErrAdcNotFree)
				return
			default:
				return
			}
		case table.SlotRun:
			obj.buf = [protocol.MaxSensorDataLength]uint16{}
			switch d.Poll(obj.buf[:]) {
			case Ready:
				obj.store(slot, d)
				slot.State = table.SlotOff
				d.Stop()
			case Failed:
				obj.abort(slot, d, protocol.ErrAdcMismatch)
			}
			return
		default:
			return
		}
	}
}

func (obj *Task) store(slot *table.Slot, d Driver) {
	if !d.Averaged() {
		slot.AvgCounter = slot.AvgTotal
		n := d.DataLength()
		if n > len(slot.Data) {
			n = len(slot.Data)
		}
		copy(slot.Data[:n], obj.buf[:n])
		return
	}
	slot.Accumulator += uint32(obj.buf[0])
	slot.AvgCounter++
	if slot.AvgCounter >= slot.AvgTotal {
		slot.AvgCounter = slot.AvgTotal
		slot.Data[0] = uint16(slot.Accumulator / uint32(slot.AvgTotal))
	}
}

func (obj *Task) abort(slot *table.Slot, d Driver, code protocol.ErrorCode) {
	obj.log.Debug("sample aborted", zap.Uint8("sensor", uint8(slot.ID)), zap.Stringer("code", code))
	obj.ctx.Report(code)
	slot.State = table.SlotOff
	d.Stop()
}
