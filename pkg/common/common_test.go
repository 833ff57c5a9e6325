package common

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mbalug7/go-sensor-node/pkg/hal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/periph/conn/i2c/i2ctest"
)

func TestI2CBus(t *testing.T) {
	playback := &i2ctest.Playback{
		Ops: []i2ctest.IO{
			{Addr: 0x28, W: []byte{0x00}, R: []byte{0x12, 0x34}},
		},
	}
	bus := NewI2CBus(playback)

	require.True(t, bus.Acquire())
	assert.False(t, bus.Acquire())
	data, done, err := bus.Poll()
	assert.False(t, done)
	require.NoError(t, err)
	assert.Nil(t, data)

	require.NoError(t, bus.Start(0x28, []byte{0x00}, 2))
	assert.ErrorIs(t, bus.Start(0x28, []byte{0x00}, 2), hal.ErrBusy)
	data, done, err = bus.Poll()
	require.NoError(t, err)
	assert.True(t, done)
	assert.Equal(t, []byte{0x12, 0x34}, data)

	bus.Release()
	assert.True(t, bus.Acquire())
	require.NoError(t, playback.Close())
}

func TestI2CBusError(t *testing.T) {
	bus := NewI2CBus(&i2ctest.Playback{DontPanic: true})
	require.NoError(t, bus.Start(0x68, []byte{0x22}, 6))
	_, done, err := bus.Poll()
	assert.True(t, done)
	assert.Error(t, err)
}

func TestIIOADC(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "in_voltage2_raw"), []byte("1023\n"), 0o644))
	adc := NewIIOADC(dir)

	_, ok := adc.Poll()
	assert.False(t, ok)
	require.NoError(t, adc.Start(2))
	assert.ErrorIs(t, adc.Start(2), hal.ErrBusy)
	v, ok := adc.Poll()
	assert.True(t, ok)
	assert.Equal(t, uint16(1023), v)

	assert.Error(t, adc.Start(5))
}

func TestWatchdog(t *testing.T) {
	var expired atomic.Int32
	wd := NewWatchdog(100*time.Millisecond, func() { expired.Add(1) })

	wd.Enable()
	for i := 0; i < 5; i++ {
		time.Sleep(20 * time.Millisecond)
		wd.Refresh()
	}
	assert.Zero(t, expired.Load())

	wd.Disable()
	time.Sleep(150 * time.Millisecond)
	assert.Zero(t, expired.Load())

	wd.Enable()
	assert.Eventually(t, func() bool { return expired.Load() == 1 }, time.Second, 5*time.Millisecond)
	wd.Disable()
}
