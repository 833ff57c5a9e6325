package collect

import (
	"github.com/mbalug7/go-sensor-node/pkg/node"
	"github.com/mbalug7/go-sensor-node/pkg/protocol"
	"github.com/mbalug7/go-sensor-node/pkg/table"
	"go.uber.org/zap"
)

// Task is the data collection scheduler task. It runs once per radio
// divisor period and hands a complete packet bank to the download task.
type Task struct {
	ctx *node.Context
	log *zap.Logger
}

func NewTask(ctx *node.Context, log *zap.Logger) *Task {
	return &Task{ctx: ctx, log: log.Named("collect")}
}

// Run walks the slots once, every call completes
func (obj *Task) Run() bool {
	ctx := obj.ctx
	ctx.RadioDue = false
	if ctx.PacketReady {
		// previous bank not downloaded yet
		ctx.Flag(protocol.ErrRadioDivisorOverrun)
		return true
	}

	slots := ctx.Table.Slots
	w := NewWriter(&ctx.Packets, ctx.Table.Channel)
	due := false
	for i := range slots {
		if obj.collect(w, &slots[i]) {
			due = true
		}
		next := i + 1
		if next >= len(slots) {
			break
		}
		if !w.Fits(slots[next].DataLen) {
			if w.Full() {
				ctx.Report(protocol.ErrDeveloper)
				obj.log.Warn("packet bank exhausted, remaining entries dropped", zap.Int("slot", next))
				break
			}
			w.Finalize(false)
		}
	}
	if !due {
		return true
	}
	w.Finalize(true)

	ctx.Comm.TotalPackets = w.Count()
	ctx.PacketReady = true
	obj.log.Debug("packets ready", zap.Uint8("count", w.Count()))
	return true
}

// collect writes the slot entry when its radio divisor wraps
func (obj *Task) collect(w *Writer, slot *table.Slot) bool {
	slot.RadioCounter++
	if slot.RadioCounter < slot.RadioDivisor {
		return false
	}
	slot.RadioCounter = 0
	w.Put(slot.ID, slot.Data[:slot.DataLen])
	slot.Data = [protocol.MaxSensorDataLength]uint16{}
	if slot.AverageDone() {
		slot.AvgCounter = 0
		slot.Accumulator = 0
	}
	return true
}
