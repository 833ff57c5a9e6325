package collect

import (
	"testing"

	"github.com/mbalug7/go-sensor-node/pkg/node"
	"github.com/mbalug7/go-sensor-node/pkg/protocol"
	"github.com/mbalug7/go-sensor-node/pkg/sim"
	"github.com/mbalug7/go-sensor-node/pkg/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newContext(t *testing.T, channel protocol.Channel, slots ...table.Slot) (*node.Context, *sim.Sink) {
	t.Helper()
	sink := &sim.Sink{}
	ctx := node.NewContext(zap.NewNop(), sink, node.NewInterrupts(4), nil, sim.NewWatchdog())
	ctx.LoadDefault()
	tbl := table.Default()
	tbl.Channel = channel
	tbl.Slots = slots
	ctx.Install(tbl)
	return ctx, sink
}

func gyroSlots(n int, radioDivisor uint8) []table.Slot {
	slots := make([]table.Slot, n)
	for i := range slots {
		slots[i] = table.Slot{ID: protocol.SensorGyro, SampleDivisor: 1, AvgTotal: 1, RadioDivisor: radioDivisor}
	}
	return slots
}

func TestConcatenation(t *testing.T) {
	ctx, _ := newContext(t, protocol.ChannelSlowDown,
		table.Slot{ID: protocol.SensorChamberTemperature, SampleDivisor: 1, AvgTotal: 2, RadioDivisor: 1},
		table.Slot{ID: protocol.SensorGyro, SampleDivisor: 1, AvgTotal: 1, RadioDivisor: 1},
	)
	temp := &ctx.Table.Slots[0]
	temp.Data[0] = 0x0102
	temp.AvgCounter = 2
	temp.Accumulator = 0x0204
	copy(ctx.Table.Slots[1].Data[:], []uint16{0xAABB, 0xCCDD, 0xEEFF})

	assert.True(t, NewTask(ctx, zap.NewNop()).Run())
	require.True(t, ctx.PacketReady)
	assert.Equal(t, uint8(1), ctx.Comm.TotalPackets)

	p := &ctx.Packets[0]
	assert.Equal(t, protocol.MsgSlowDownload, p.Header())
	assert.Equal(t, 15, p.Len())
	assert.Equal(t, byte(15), p[protocol.IndexDataLength])
	assert.Equal(t, byte(11), p[protocol.IndexDownloadSize])
	assert.Equal(t, protocol.Descriptor{Seq: 1, TxID: protocol.ChannelSlowDown, Last: true}, p.Descriptor())
	assert.Equal(t, []byte{1, 0x01, 0x02, 7, 0xAA, 0xBB, 0xCC, 0xDD, 0xEE, 0xFF}, p.Payload())

	// collected data is consumed and finished averages restart
	assert.Equal(t, uint16(0), temp.Data[0])
	assert.Equal(t, uint8(0), temp.AvgCounter)
	assert.Equal(t, uint32(0), temp.Accumulator)
}

func TestFastChannelHeader(t *testing.T) {
	ctx, _ := newContext(t, protocol.ChannelFastDown, gyroSlots(1, 1)...)
	NewTask(ctx, zap.NewNop()).Run()
	require.True(t, ctx.PacketReady)
	assert.Equal(t, protocol.MsgFastDownload, ctx.Packets[0].Header())
	assert.Equal(t, protocol.ChannelFastDown, ctx.Packets[0].Descriptor().TxID)
}

func TestRadioDivisor(t *testing.T) {
	ctx, _ := newContext(t, protocol.ChannelSlowDown, gyroSlots(1, 3)...)
	task := NewTask(ctx, zap.NewNop())

	task.Run()
	task.Run()
	assert.False(t, ctx.PacketReady)
	task.Run()
	assert.True(t, ctx.PacketReady)
}

func TestBackpressure(t *testing.T) {
	ctx, sink := newContext(t, protocol.ChannelSlowDown, gyroSlots(1, 1)...)
	ctx.PacketReady = true
	ctx.RadioDue = true

	assert.True(t, NewTask(ctx, zap.NewNop()).Run())
	assert.True(t, sink.Has(uint8(protocol.ErrRadioDivisorOverrun)))
	assert.Equal(t, protocol.ErrRadioDivisorOverrun, ctx.Comm.Check.Overrun())
	assert.False(t, ctx.RadioDue)
	// the pending bank is left untouched
	assert.Equal(t, uint8(0), ctx.Table.Slots[0].RadioCounter)
}

func TestMultiplePackets(t *testing.T) {
	ctx, _ := newContext(t, protocol.ChannelSlowDown, gyroSlots(40, 1)...)
	NewTask(ctx, zap.NewNop()).Run()

	require.Equal(t, uint8(3), ctx.Comm.TotalPackets)
	lastFlags := 0
	for i := 0; i < 3; i++ {
		d := ctx.Packets[i].Descriptor()
		assert.Equal(t, uint8(i+1), d.Seq)
		if d.Last {
			lastFlags++
		}
	}
	assert.Equal(t, 1, lastFlags)
	assert.True(t, ctx.Packets[2].Descriptor().Last)

	// 17 entries of 7 bytes fill a packet
	assert.Equal(t, 124, ctx.Packets[0].Len())
	assert.Equal(t, 124, ctx.Packets[1].Len())
	assert.Equal(t, 6+6*7-1, ctx.Packets[2].Len())
	for i := 0; i < 3; i++ {
		assert.LessOrEqual(t, ctx.Packets[i].Len(), protocol.LastDataByteIndex)
	}
}

func TestEmptyTrailingPacket(t *testing.T) {
	// the full check looks at the next slot even when it is not due
	slots := append(gyroSlots(17, 1), table.Slot{ID: protocol.SensorGyro, SampleDivisor: 1, AvgTotal: 1, RadioDivisor: 5})
	ctx, _ := newContext(t, protocol.ChannelSlowDown, slots...)
	NewTask(ctx, zap.NewNop()).Run()

	require.Equal(t, uint8(2), ctx.Comm.TotalPackets)
	assert.False(t, ctx.Packets[0].Descriptor().Last)
	last := &ctx.Packets[1]
	assert.True(t, last.Descriptor().Last)
	assert.Equal(t, protocol.IndexDownloadSize, last.Len())
	assert.Equal(t, byte(1), last[protocol.IndexDownloadSize])
	assert.Empty(t, last.Payload())
}

func TestPacketBankLimit(t *testing.T) {
	ctx, sink := newContext(t, protocol.ChannelSlowDown, gyroSlots(150, 1)...)
	NewTask(ctx, zap.NewNop()).Run()

	assert.True(t, sink.Has(uint8(protocol.ErrDeveloper)))
	require.Equal(t, uint8(protocol.MaxPacketCount), ctx.Comm.TotalPackets)
	assert.True(t, ctx.Packets[protocol.MaxPacketCount-1].Descriptor().Last)
	assert.False(t, ctx.Packets[protocol.MaxPacketCount-2].Descriptor().Last)
}

func TestNothingDue(t *testing.T) {
	ctx, _ := newContext(t, protocol.ChannelSlowDown)
	assert.True(t, NewTask(ctx, zap.NewNop()).Run())
	assert.False(t, ctx.PacketReady)
}
