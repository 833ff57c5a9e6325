package sensors

import (
	"github.com/mbalug7/go-sensor-node/pkg/node"
	"github.com/mbalug7/go-sensor-node/pkg/sampling"
)

// UplinkRSSI reports the signal strength of the last frame received from the console
type UplinkRSSI struct {
	ctx *node.Context
}

func NewUplinkRSSI(ctx *node.Context) *UplinkRSSI {
	return &UplinkRSSI{ctx: ctx}
}

func (obj *UplinkRSSI) DataLength() int        { return 1 }
func (obj *UplinkRSSI) Averaged() bool         { return true }
func (obj *UplinkRSSI) Start() sampling.Status { return sampling.Ready }
func (obj *UplinkRSSI) Begin() sampling.Status { return sampling.Ready }
func (obj *UplinkRSSI) Stop()                  {}

func (obj *UplinkRSSI) Poll(data []uint16) sampling.Status {
	data[0] = uint16(obj.ctx.UplinkRSSI)
	return sampling.Ready
}
