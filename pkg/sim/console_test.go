package sim_test

import (
	"testing"

	"github.com/mbalug7/go-sensor-node/pkg/cc112x"
	"github.com/mbalug7/go-sensor-node/pkg/node"
	"github.com/mbalug7/go-sensor-node/pkg/power"
	"github.com/mbalug7/go-sensor-node/pkg/protocol"
	"github.com/mbalug7/go-sensor-node/pkg/radio"
	"github.com/mbalug7/go-sensor-node/pkg/sim"
	"github.com/mbalug7/go-sensor-node/pkg/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type nopClock struct{}

func (nopClock) Stop()                 {}
func (nopClock) Configure(freq uint16) {}

func newExchange(t *testing.T, console *sim.Console) (*node.Context, *sim.Radio, *sim.Watchdog, func() bool) {
	t.Helper()
	powerTimer := &sim.Timer{}
	pm := power.NewManager(&sim.Line{}, &sim.Line{}, powerTimer, zap.NewNop())
	wd := sim.NewWatchdog()
	ctx := node.NewContext(zap.NewNop(), &sim.Sink{}, node.NewInterrupts(4), pm, wd)
	ctx.LoadDefault()
	rf := &sim.Radio{Respond: console.Respond}
	timer := &sim.Timer{}
	engine := radio.NewEngine(ctx, rf, timer, radio.NewValidator(ctx, nopClock{}, nil, zap.NewNop()), zap.NewNop())
	task := radio.NewETRequestTask(ctx, engine)
	run := func() bool {
		for i := 0; i < 100; i++ {
			if task.Run() {
				return true
			}
			timer.Fire()
			powerTimer.Fire()
		}
		return false
	}
	return ctx, rf, wd, run
}

func TestConsoleUpload(t *testing.T) {
	upload := table.NewBuilder().SampleClock(4).RadioDivisor(3).CommTimeout(200).Upload()
	console := sim.NewConsole(upload, zap.NewNop())
	ctx, rf, _, run := newExchange(t, console)

	require.True(t, run())
	assert.Equal(t, uint16(4), ctx.Table.SampleClock)
	require.Len(t, rf.Sent, 2)
	assert.Equal(t, byte(protocol.MsgAckET), rf.Sent[1][protocol.IndexHeader])
	assert.Len(t, console.Received, 2)
}

func TestConsoleNoTable(t *testing.T) {
	console := sim.NewConsole(nil, zap.NewNop())
	ctx, rf, _, run := newExchange(t, console)
	require.True(t, run())
	assert.Len(t, rf.Sent, 1)
	assert.True(t, ctx.Enabled.Has(node.TaskETRequest))
}

func TestConsoleDropsReplies(t *testing.T) {
	console := sim.NewConsole(nil, zap.NewNop())
	console.DropEvery = 1
	_, rf, _, run := newExchange(t, console)
	require.True(t, run())
	// every reply lost: three attempts per reply timeout, four timeouts
	assert.Len(t, rf.Sent, 12)
}

func TestConsoleLoopback(t *testing.T) {
	console := sim.NewConsole(nil, zap.NewNop())
	console.LoopbackEvery = 1
	_, rf, wd, run := newExchange(t, console)

	require.True(t, run())
	// request, loopback ack, two echoed payloads, stop ack
	require.Len(t, rf.Sent, 5)
	for _, echoed := range rf.Sent[2:4] {
		assert.Equal(t, byte(0x30), echoed[protocol.IndexHeader])
		assert.Len(t, echoed, 10)
	}
	assert.Equal(t, byte(protocol.MsgAckET), rf.Sent[4][protocol.IndexHeader])
	assert.True(t, wd.Enabled)
}

func TestRadioFrames(t *testing.T) {
	f := sim.Frame(0x07, []byte{1, 2}, 0x40, true)
	assert.Equal(t, []byte{3, 0x07, 1, 2, 0x40, 0x80}, f)
	frame := protocol.Frame(f)
	assert.True(t, frame.CRCOK())
	assert.Equal(t, uint8(0x40), frame.RSSI())

	bad := protocol.Frame(sim.WithStatus([]byte{1, 0x07}, 0x10, false))
	assert.False(t, bad.CRCOK())
}

func TestRadioEdges(t *testing.T) {
	edges := 0
	rf := &sim.Radio{
		Respond: func(sent []byte) []byte { return sim.Frame(0x07, nil, 0x40, true) },
		OnEdge:  func() { edges++ },
	}
	require.NoError(t, rf.WriteFIFO([]byte{3, 0x84, 3, 0x80}))
	require.NoError(t, rf.Strobe(cc112x.STX))
	assert.Equal(t, 1, edges)
	assert.False(t, rf.RxAvailable(), "reply waits for the end of the transmission")

	require.True(t, rf.TxComplete())
	assert.Equal(t, 2, edges)
	assert.True(t, rf.RxAvailable())
}
