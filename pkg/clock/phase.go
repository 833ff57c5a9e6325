package clock

import (
	"time"

	"github.com/mbalug7/go-sensor-node/pkg/hal"
	"github.com/mbalug7/go-sensor-node/pkg/node"
	"go.uber.org/zap"
)

// Phases per sample clock period
const Phases = 8

const (
	phaseSample     = 0
	phaseETRequest  = 1
	phaseCollection = 6
	phaseDownload   = 7
)

// Source delivers periodic ticks
type Source interface {
	Start(period time.Duration, tick func())
	Stop()
}

// Clock splits one sample clock period into 8 phases and activates the
// scheduler tasks on their divisor cadence.
type Clock struct {
	ctx          *node.Context
	src          Source
	pin          hal.Line
	log          *zap.Logger
	phase        uint8
	radioCounter uint16
	freq         uint16
	running      bool
	pinValue     int
}

func New(ctx *node.Context, src Source, pin hal.Line, log *zap.Logger) *Clock {
	return &Clock{
		ctx: ctx,
		src: src,
		pin: pin,
		log: log.Named("clock"),
	}
}

// Period returns the phase length for a sample clock frequency in Hz
func Period(freq uint16) time.Duration {
	if freq == 0 {
		freq = 1
	}
	ms := 1000 / (int(freq) * Phases)
	if ms < 1 {
		ms = 1
	}
	return time.Duration(ms) * time.Millisecond
}

// Configure restarts the clock at freq from phase 0
func (obj *Clock) Configure(freq uint16) {
	obj.Stop()
	obj.freq = freq
	obj.phase = 0
	obj.radioCounter = 0
	obj.running = true
	if obj.src != nil {
		obj.src.Start(Period(freq), obj.Tick)
	}
	obj.log.Info("sample clock configured", zap.Uint16("hz", freq), zap.Duration("phase", Period(freq)))
}

func (obj *Clock) Stop() {
	if !obj.running {
		return
	}
	obj.running = false
	if obj.src != nil {
		obj.src.Stop()
	}
}

func (obj *Clock) Running() bool {
	return obj.running
}

func (obj *Clock) Phase() uint8 {
	return obj.phase
}

func (obj *Clock) RadioCounter() uint16 {
	return obj.radioCounter
}

// Tick is the phase timer interrupt handler
func (obj *Clock) Tick() {
	if !obj.running {
		return
	}
	obj.togglePin()
	ctx := obj.ctx
	switch obj.phase {
	case phaseSample:
		if ctx.Enabled.Has(node.TaskSampling) {
			ctx.SampleDue = true
			ctx.Activate(node.TaskSampling)
		}
		ctx.Activate(node.TaskWatchdog)
	case phaseETRequest:
		if ctx.Enabled.Has(node.TaskETRequest) && obj.radioDue() {
			ctx.Activate(node.TaskETRequest)
		}
	case phaseCollection:
		if ctx.Enabled.Has(node.TaskCollection) && obj.radioDue() {
			ctx.RadioDue = true
			ctx.Activate(node.TaskCollection)
		}
	case phaseDownload:
		if obj.radioCounter == 0 && ctx.Enabled.Has(node.TaskDownload) {
			ctx.Activate(node.TaskDownload)
		}
	}
	obj.phase = (obj.phase + 1) % Phases
}

// radioDue advances the radio clock counter, the divisor is read on every
// comparison so a new table takes effect on the next occurrence
func (obj *Clock) radioDue() bool {
	obj.radioCounter++
	if obj.radioCounter >= obj.ctx.Table.RadioDivisor {
		obj.radioCounter = 0
		return true
	}
	return false
}

func (obj *Clock) togglePin() {
	if obj.pin == nil {
		return
	}
	obj.pinValue ^= 1
	if err := obj.pin.SetValue(obj.pinValue); err != nil {
		obj.log.Debug("failed to toggle test point", zap.Error(err))
	}
}
