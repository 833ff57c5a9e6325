package clock

import (
	"context"
	"testing"
	"time"

	"github.com/mbalug7/go-sensor-node/pkg/node"
	"github.com/mbalug7/go-sensor-node/pkg/sim"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeSource struct {
	periods []time.Duration
	stops   int
}

func (obj *fakeSource) Start(period time.Duration, tick func()) {
	obj.periods = append(obj.periods, period)
}

func (obj *fakeSource) Stop() {
	obj.stops++
}

func newContext() *node.Context {
	ctx := node.NewContext(zap.NewNop(), &sim.Sink{}, node.NewInterrupts(4), nil, sim.NewWatchdog())
	ctx.LoadDefault()
	return ctx
}

// runPeriods ticks n whole sample clock periods and counts the activations of every task
func runPeriods(ctx *node.Context, c *Clock, n int) map[node.TaskSet]int {
	counts := map[node.TaskSet]int{}
	for i := 0; i < n*Phases; i++ {
		c.Tick()
		for _, t := range []node.TaskSet{node.TaskSampling, node.TaskCollection, node.TaskDownload, node.TaskETRequest, node.TaskWatchdog} {
			if ctx.Active.Has(t) {
				counts[t]++
			}
		}
		ctx.Active = node.TasksNone
	}
	return counts
}

func TestPeriod(t *testing.T) {
	tests := []struct {
		freq uint16
		want time.Duration
	}{
		{freq: 0, want: 125 * time.Millisecond},
		{freq: 1, want: 125 * time.Millisecond},
		{freq: 10, want: 12 * time.Millisecond},
		{freq: 125, want: time.Millisecond},
		{freq: 500, want: time.Millisecond},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Period(tt.freq), "freq %d", tt.freq)
	}
}

func TestDefaultCadence(t *testing.T) {
	ctx := newContext()
	c := New(ctx, nil, nil, zap.NewNop())
	c.Configure(ctx.Table.SampleClock)

	counts := runPeriods(ctx, c, 10)
	// default radio divisor is 5
	assert.Equal(t, 2, counts[node.TaskETRequest])
	assert.Equal(t, 10, counts[node.TaskWatchdog])
	assert.Zero(t, counts[node.TaskSampling])
	assert.Zero(t, counts[node.TaskCollection])
	assert.Zero(t, counts[node.TaskDownload])
	assert.False(t, ctx.SampleDue)
}

func TestRunningCadence(t *testing.T) {
	ctx := newContext()
	ctx.Table.RadioDivisor = 3
	ctx.Enabled = node.TaskSampling | node.TaskCollection | node.TaskDownload | node.TaskDebugSerial | node.TaskWatchdog
	c := New(ctx, nil, nil, zap.NewNop())
	c.Configure(4)

	counts := runPeriods(ctx, c, 6)
	assert.Equal(t, 6, counts[node.TaskSampling])
	assert.Equal(t, 2, counts[node.TaskCollection])
	assert.Equal(t, 2, counts[node.TaskDownload])
	assert.Zero(t, counts[node.TaskETRequest])
	assert.True(t, ctx.SampleDue)
	assert.True(t, ctx.RadioDue)
}

func TestDivisorChangeTakesEffect(t *testing.T) {
	ctx := newContext()
	ctx.Enabled = node.TaskCollection
	c := New(ctx, nil, nil, zap.NewNop())
	c.Configure(1)

	ctx.Table.RadioDivisor = 4
	runPeriods(ctx, c, 2)
	assert.Equal(t, uint16(2), c.RadioCounter())

	// the next comparison reads the new divisor
	ctx.Table.RadioDivisor = 2
	counts := runPeriods(ctx, c, 1)
	assert.Equal(t, 1, counts[node.TaskCollection])
	assert.Zero(t, c.RadioCounter())
}

func TestTestPointToggles(t *testing.T) {
	ctx := newContext()
	pin := &sim.Line{}
	c := New(ctx, nil, pin, zap.NewNop())
	c.Configure(1)
	for i := 0; i < 3; i++ {
		c.Tick()
	}
	assert.Equal(t, []int{1, 0, 1}, pin.Values)
}

func TestConfigureRestarts(t *testing.T) {
	ctx := newContext()
	src := &fakeSource{}
	c := New(ctx, src, nil, zap.NewNop())

	c.Stop()
	assert.Zero(t, src.stops, "stopping an idle clock leaves the source alone")

	c.Configure(10)
	require.True(t, c.Running())
	assert.Equal(t, []time.Duration{12 * time.Millisecond}, src.periods)
	for i := 0; i < 3; i++ {
		c.Tick()
	}
	assert.Equal(t, uint8(3), c.Phase())

	c.Configure(1)
	assert.Equal(t, 1, src.stops)
	assert.Zero(t, c.Phase())
	assert.Zero(t, c.RadioCounter())

	c.Stop()
	c.Tick()
	assert.Zero(t, c.Phase(), "a stopped clock ignores ticks")
	assert.False(t, c.Running())
}

func TestTickerRaisesInterrupts(t *testing.T) {
	irq := node.NewInterrupts(4)
	defer irq.Close()
	ticker := NewTicker(irq)

	ticks := 0
	ticker.Start(time.Millisecond, func() { ticks++ })
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	for ticks < 3 {
		require.NoError(t, irq.Wait(ctx))
	}
	ticker.Stop()
	ticker.Stop()
	assert.GreaterOrEqual(t, ticks, 3)
}
