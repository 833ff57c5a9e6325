package radio

import (
	"errors"

	"github.com/mbalug7/go-sensor-node/pkg/node"
	"github.com/mbalug7/go-sensor-node/pkg/protocol"
	"github.com/mbalug7/go-sensor-node/pkg/table"
	"go.uber.org/zap"
)

// Clock is the sample clock as seen by the validator
type Clock interface {
	Stop()
	Configure(freq uint16)
}

// Resetter drops resources held by in flight sampling
type Resetter interface {
	Reset()
}

// Validator installs execution tables received from the console
type Validator struct {
	ctx       *node.Context
	clock     Clock
	resources Resetter
	log       *zap.Logger
}

func NewValidator(ctx *node.Context, clock Clock, resources Resetter, log *zap.Logger) *Validator {
	return &Validator{
		ctx:       ctx,
		clock:     clock,
		resources: resources,
		log:       log.Named("validator"),
	}
}

// Apply validates frame and installs it as the active table. Sampling stops
// while the frame is checked, a rejected frame restarts the clock with the
// table that was active before.
func (obj *Validator) Apply(frame []byte) bool {
	ctx := obj.ctx
	obj.clock.Stop()
	obj.release()

	t, err := table.Decode(frame, ctx.Flag)
	if err != nil {
		code := protocol.ErrDeveloper
		errors.As(err, &code)
		ctx.Flag(code)
		obj.log.Warn("execution table rejected", zap.Error(err))
		obj.clock.Configure(ctx.Table.SampleClock)
		return false
	}
	ctx.Install(t)
	obj.log.Info("execution table installed",
		zap.Uint16("sample_clock_hz", t.SampleClock),
		zap.Uint16("radio_divisor", t.RadioDivisor),
		zap.Uint16("comm_timeout_ms", t.CommTimeout),
		zap.Stringer("channel", t.Channel),
		zap.Int("sensors", len(t.Slots)))
	obj.clock.Configure(t.SampleClock)
	return true
}

// release frees everything sampling and collection may hold
func (obj *Validator) release() {
	ctx := obj.ctx
	ctx.Power.ResetUsage()
	ctx.Table.ResetStates()
	if obj.resources != nil {
		obj.resources.Reset()
	}
	ctx.PacketReady = false
	ctx.SampleDue = false
	ctx.RadioDue = false
}
