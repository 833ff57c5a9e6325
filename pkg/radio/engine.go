// Package radio drives the half duplex exchange with the remote console:
// packet download with acknowledgements, execution table requests and loopback.
package radio

import (
	"errors"
	"time"

	"github.com/mbalug7/go-sensor-node/pkg/cc112x"
	"github.com/mbalug7/go-sensor-node/pkg/hal"
	"github.com/mbalug7/go-sensor-node/pkg/node"
	"github.com/mbalug7/go-sensor-node/pkg/power"
	"github.com/mbalug7/go-sensor-node/pkg/protocol"
	"go.uber.org/zap"
)

// State is the RF engine state
type State uint8

const (
	StateEntryPoint State = iota
	StatePowerCheck
	StateLinkSelect
	StateTx
	StateTxTimeout
	StateRx
	StateEtReplyMode
	StateEtReplyTimeOut
	StateLoopbackEcho
)

var stateNames = [...]string{
	"entry-point",
	"power-check",
	"link-select",
	"tx",
	"tx-timeout",
	"rx",
	"et-reply",
	"et-reply-timeout",
	"loopback-echo",
}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "unknown"
}

// loopback steps
const (
	loopbackOff uint8 = iota
	loopbackEcho
	loopbackStop
)

// result of one state handler
type result uint8

const (
	stay result = iota
	next
	done
)

// Engine is the RF protocol state machine. It transmits the packets of the
// shared packet bank in order and never blocks, Step returns whenever it has
// to wait for the chip, the reply timer or the power rail.
type Engine struct {
	ctx       *node.Context
	radio     hal.Radio
	timer     hal.Timer
	validator *Validator
	log       *zap.Logger

	state    State
	loopback uint8
	ack      bool
	rx       [protocol.MaxPacketSize + 2]byte
	rxLen    int
}

func NewEngine(ctx *node.Context, radio hal.Radio, timer hal.Timer, validator *Validator, log *zap.Logger) *Engine {
	return &Engine{
		ctx:       ctx,
		radio:     radio,
		timer:     timer,
		validator: validator,
		log:       log.Named("rf"),
	}
}

func (obj *Engine) State() State {
	return obj.state
}

// Loopback returns the current loopback step, 0 when not looping back
func (obj *Engine) Loopback() uint8 {
	return obj.loopback
}

// Begin starts a new exchange from the first packet of the bank
func (obj *Engine) Begin() {
	c := &obj.ctx.Comm
	c.PacketIndex = 0
	c.Retry = 0
	c.Timeout = obj.ctx.Table.CommTimeout
	c.DoubleCount = 0
	obj.ack = false
	obj.state = StatePowerCheck
}

// Step advances the exchange and reports whether it terminated
func (obj *Engine) Step() bool {
	for {
		from := obj.state
		r := obj.step()
		if obj.state != from {
			obj.log.Debug("state", zap.Stringer("from", from), zap.Stringer("to", obj.state))
		}
		switch r {
		case done:
			obj.timer.Stop()
			obj.state = StateEntryPoint
			return true
		case stay:
			return false
		}
	}
}

func (obj *Engine) step() result {
	switch obj.state {
	case StatePowerCheck:
		return obj.powerCheck()
	case StateLinkSelect:
		return obj.linkSelect()
	case StateTx:
		return obj.transmit()
	case StateTxTimeout:
		return obj.txTimeout()
	case StateRx:
		return obj.receive()
	case StateLoopbackEcho:
		return obj.loopbackEcho()
	case StateEtReplyMode:
		return obj.etReply()
	case StateEtReplyTimeOut:
		return obj.etReplyTimeout()
	}
	return done
}

func (obj *Engine) powerCheck() result {
	if !obj.ctx.Power.Request(power.IdentityCC1125) {
		return stay
	}
	obj.state = StateLinkSelect
	return next
}

func (obj *Engine) linkSelect() result {
	ch := obj.ctx.Table.Channel
	if ch == protocol.ChannelSlowDown {
		if err := obj.radio.Configure(uint8(ch)); err != nil {
			code := protocol.ErrChipNotReady
			errors.As(err, &code)
			obj.log.Warn("failed to configure radio", zap.Error(err))
			obj.ctx.Flag(code)
			return stay
		}
	}
	obj.state = StateTx
	return next
}

func (obj *Engine) strobe(cmd hal.Strobe) {
	if err := obj.radio.Strobe(cmd); err != nil {
		obj.log.Debug("failed to strobe", zap.Uint8("cmd", uint8(cmd)), zap.Error(err))
	}
}

// load writes the frame into the TX FIFO and reports whether the chip accepted it
func (obj *Engine) load(frame []byte) bool {
	if err := obj.radio.WriteFIFO(frame); err != nil {
		obj.log.Warn("failed to write tx fifo", zap.Error(err))
		return false
	}
	marc, err := obj.radio.ReadRegister(cc112x.MARCSTATE)
	if err != nil {
		obj.log.Warn("failed to read marc state", zap.Error(err))
		return false
	}
	return marc&cc112x.MarcStateMask != cc112x.MarcStateTxFifoError
}

func (obj *Engine) transmit() result {
	ctx := obj.ctx
	obj.strobe(cc112x.SFTX)
	obj.strobe(cc112x.SIDLE)

	p := &ctx.Packets[ctx.Comm.PacketIndex]
	if obj.loopback == loopbackOff {
		ctx.Comm.Check = ctx.Comm.Check.WithMsgSeq(ctx.Comm.Retry)
		p.SetErrorControl(ctx.Comm.Check)
		// the overrun travels once
		ctx.Comm.Check = ctx.Comm.Check.WithOverrun(protocol.NoError)
	}
	if !obj.load(p.Bytes()) {
		obj.strobe(cc112x.SFTX)
		ctx.Report(protocol.ErrTxFifo)
		return stay
	}
	obj.strobe(cc112x.STX)
	obj.timer.Start(protocol.TxCompleteTimeout)
	obj.state = StateTxTimeout
	return stay
}

func (obj *Engine) txTimeout() result {
	ctx := obj.ctx
	if obj.radio.TxComplete() {
		obj.timer.Stop()
		obj.state = StateRx
		wait := time.Duration(ctx.Comm.Timeout) * time.Millisecond
		if obj.loopback != loopbackOff {
			wait = protocol.LoopbackTimeout
		}
		obj.timer.Start(wait)
		return stay
	}
	if !obj.timer.Expired() {
		return stay
	}
	obj.strobe(cc112x.SFTX)
	ctx.Report(protocol.ErrTxGpioInterrupt)
	return obj.retry()
}

// retry sends the current packet again while attempts remain
func (obj *Engine) retry() result {
	obj.ctx.Comm.Retry++
	if obj.ctx.Comm.Retry < protocol.MaxCommRetry {
		obj.state = StateTx
		return next
	}
	obj.log.Warn("retries exhausted", zap.Uint8("packet", obj.ctx.Comm.PacketIndex))
	return done
}

func (obj *Engine) receive() result {
	ctx := obj.ctx
	if obj.radio.RxAvailable() {
		obj.timer.Stop()
		frame, ok := obj.read()
		if !ok || !frame.CRCOK() {
			ctx.Report(protocol.ErrCrcMismatch)
			return obj.retry()
		}
		ctx.UplinkRSSI = frame.RSSI()
		if obj.loopback != loopbackOff {
			ctx.Comm.Retry = 0
			obj.state = StateLoopbackEcho
			return next
		}
		return obj.dispatch(frame)
	}
	if !obj.timer.Expired() {
		return stay
	}
	return obj.replyTimeout()
}

func (obj *Engine) read() (protocol.Frame, bool) {
	n, err := obj.radio.ReadRegister(cc112x.NUM_RXBYTES)
	if err != nil || int(n) > len(obj.rx) {
		obj.strobe(cc112x.SFRX)
		obj.rxLen = 0
		return nil, false
	}
	if err := obj.radio.ReadFIFO(obj.rx[:n]); err != nil {
		obj.log.Warn("failed to read rx fifo", zap.Error(err))
		obj.rxLen = 0
		return nil, false
	}
	obj.rxLen = int(n)
	frame := protocol.Frame(obj.rx[:n])
	return frame, frame.Valid()
}

func (obj *Engine) dispatch(frame protocol.Frame) result {
	ctx := obj.ctx
	switch t := frame.Type(); t {
	case protocol.MsgAckData:
		ctx.Comm.Retry = 0
		ctx.Comm.PacketIndex++
		if ctx.Comm.PacketIndex < ctx.Comm.TotalPackets {
			obj.state = StateTx
			return next
		}
		return done
	case protocol.MsgNackInvalidPacket, protocol.MsgNackInvalidFormat, protocol.MsgNackOutOfSequence:
		ctx.Report(protocol.ErrNackReceived)
		return obj.retry()
	case protocol.MsgNackStopSending, protocol.MsgNoNewET:
		ctx.Comm.Retry = 0
		return done
	case protocol.MsgTerminateDownload:
		ctx.Comm.Retry = 0
		ctx.LoadDefault()
		return done
	case protocol.MsgNewET:
		ctx.Comm.Retry = 0
		obj.ack = obj.validator.Apply(frame)
		obj.state = StateEtReplyMode
		return next
	case protocol.MsgLoopbackSlow, protocol.MsgLoopbackFast:
		ctx.Comm.Retry = 0
		ctx.Watchdog.Disable()
		obj.loopback = loopbackEcho
		obj.ack = true
		obj.state = StateEtReplyMode
		return next
	default:
		obj.log.Warn("unexpected message", zap.Uint8("type", uint8(t)))
		ctx.Report(protocol.ErrHeaderUndefined)
		return done
	}
}

// replyTimeout handles a console that stayed silent
func (obj *Engine) replyTimeout() result {
	ctx := obj.ctx
	if obj.loopback != loopbackOff {
		obj.loopback = loopbackOff
		ctx.LoadDefault()
		ctx.Watchdog.Enable()
		return done
	}
	ctx.Report(protocol.ErrCommWaitTimeout)
	ctx.Comm.Retry++
	if ctx.Comm.Retry < protocol.MaxCommRetry {
		obj.state = StateTx
		return next
	}
	if ctx.Comm.DoubleCount < protocol.CommTimeoutDoublings {
		ctx.Comm.DoubleCount++
		timeout := uint32(ctx.Comm.Timeout) * 2
		if timeout > protocol.MaxCommTimeout {
			timeout = protocol.MaxCommTimeout
		}
		ctx.Comm.Timeout = uint16(timeout)
		ctx.Comm.Retry = 0
		ctx.Flag(protocol.ErrCommWaitTimeMismatch)
		obj.log.Info("reply timeout doubled", zap.Uint16("ms", ctx.Comm.Timeout))
		obj.state = StateTx
		return next
	}
	obj.log.Warn("console unreachable", zap.Uint8("packet", ctx.Comm.PacketIndex))
	return done
}

func (obj *Engine) loopbackEcho() result {
	ctx := obj.ctx
	frame := protocol.Frame(obj.rx[:obj.rxLen])
	switch frame.Type() {
	case protocol.MsgStopLoopbackIdle:
		obj.loopback = loopbackStop
		ctx.Watchdog.Enable()
		ctx.LoadDefault()
		obj.ack = true
		obj.state = StateEtReplyMode
		return next
	case protocol.MsgStopLoopbackLoad:
		obj.loopback = loopbackStop
		ctx.Watchdog.Enable()
		obj.ack = true
		obj.state = StateEtReplyMode
		return next
	}
	// echo the frame without the status bytes
	p := &ctx.Packets[0]
	p.Reset()
	n := int(frame[protocol.IndexLength]) + 1
	if n > len(frame) {
		n = len(frame)
	}
	copy(p[:], frame[:n])
	ctx.Comm.PacketIndex = 0
	obj.state = StateTx
	return next
}

func (obj *Engine) etReply() result {
	ctx := obj.ctx
	obj.strobe(cc112x.SIDLE)
	var reply protocol.Packet
	header := protocol.MsgNackET
	if obj.ack {
		header = protocol.MsgAckET
	}
	reply.SetHeader(header)
	reply.SetLen(protocol.ETReplyLength)
	reply.SetDescriptor(protocol.Descriptor{Seq: 1, TxID: protocol.ChannelUplink, Last: true})
	reply.SetErrorControl(ctx.Comm.Check)
	if !obj.load(reply.Bytes()) {
		obj.strobe(cc112x.SFTX)
		ctx.Report(protocol.ErrTxFifo)
		return done
	}
	obj.strobe(cc112x.STX)
	obj.timer.Start(protocol.TxCompleteTimeout)
	obj.state = StateEtReplyTimeOut
	return stay
}

func (obj *Engine) etReplyTimeout() result {
	ctx := obj.ctx
	if obj.radio.TxComplete() {
		obj.timer.Stop()
		switch obj.loopback {
		case loopbackEcho:
			obj.state = StateRx
			obj.timer.Start(protocol.LoopbackTimeout)
			return stay
		case loopbackStop:
			obj.loopback = loopbackOff
			return done
		}
		if obj.ack {
			ctx.Enabled &^= node.TaskETRequest
			ctx.Active &^= node.TaskETRequest
			ctx.Enabled |= node.TaskSampling | node.TaskCollection | node.TaskDownload
			obj.log.Info("execution table accepted")
		} else {
			ctx.LoadDefault()
		}
		return done
	}
	if !obj.timer.Expired() {
		return stay
	}
	obj.strobe(cc112x.SFTX)
	ctx.Report(protocol.ErrTxGpioInterrupt)
	if obj.loopback != loopbackOff {
		obj.loopback = loopbackOff
		ctx.Watchdog.Enable()
	}
	return done
}
