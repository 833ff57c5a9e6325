package radio

import (
	"github.com/mbalug7/go-sensor-node/pkg/node"
	"github.com/mbalug7/go-sensor-node/pkg/protocol"
)

// DownloadTask sends the packet bank filled by the collection task
type DownloadTask struct {
	ctx    *node.Context
	engine *Engine
}

func NewDownloadTask(ctx *node.Context, engine *Engine) *DownloadTask {
	return &DownloadTask{ctx: ctx, engine: engine}
}

func (obj *DownloadTask) Run() bool {
	ctx := obj.ctx
	// an accepted table clears the bank while its reply is still pending
	if !ctx.PacketReady && obj.engine.State() == StateEntryPoint {
		// collection may still produce a bank in this pass
		return !ctx.Active.Has(node.TaskCollection)
	}
	if obj.engine.State() == StateEntryPoint {
		obj.engine.Begin()
	}
	if !obj.engine.Step() {
		return false
	}
	ctx.Power.Release()
	ctx.PacketReady = false
	return true
}

// ETRequestTask asks the console for a new execution table
type ETRequestTask struct {
	ctx    *node.Context
	engine *Engine
}

func NewETRequestTask(ctx *node.Context, engine *Engine) *ETRequestTask {
	return &ETRequestTask{ctx: ctx, engine: engine}
}

func (obj *ETRequestTask) Run() bool {
	ctx := obj.ctx
	if obj.engine.State() == StateEntryPoint {
		p := &ctx.Packets[0]
		p.Reset()
		p.SetHeader(protocol.MsgRequestET)
		p.SetLen(protocol.ETRequestLength)
		p.SetDescriptor(protocol.Descriptor{Seq: 1, TxID: protocol.ChannelSlowDown, Last: true})
		ctx.Comm.TotalPackets = 1
		obj.engine.Begin()
	}
	if !obj.engine.Step() {
		return false
	}
	ctx.Power.Release()
	return true
}
