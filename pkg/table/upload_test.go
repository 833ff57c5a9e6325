package table

import (
	"testing"

	"github.com/mbalug7/go-sensor-node/pkg/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validBuilder() *Builder {
	return NewBuilder().
		SampleClock(10).
		RadioDivisor(4).
		CommTimeout(500).
		Sensor(protocol.SensorChamberTemperature, 2, 4, 1).
		Sensor(protocol.SensorGyro, 1, 1, 2)
}

func TestDecodeValid(t *testing.T) {
	var reported []protocol.ErrorCode
	tbl, err := Decode(validBuilder().Upload(), func(c protocol.ErrorCode) { reported = append(reported, c) })
	require.NoError(t, err)
	assert.Empty(t, reported)

	assert.Equal(t, uint16(10), tbl.SampleClock)
	assert.Equal(t, uint16(4), tbl.RadioDivisor)
	assert.Equal(t, uint16(500), tbl.CommTimeout)
	assert.Equal(t, protocol.ChannelSlowDown, tbl.Channel)
	assert.True(t, tbl.AlwaysOn)
	require.Len(t, tbl.Slots, 2)

	for _, s := range tbl.Slots {
		// every sensor fires on the very next sampling tick
		assert.Equal(t, s.SampleDivisor, s.SampleCounter)
		assert.Zero(t, s.RadioCounter)
		assert.Zero(t, s.AvgCounter)
		assert.Zero(t, s.Accumulator)
		assert.Equal(t, SlotOff, s.State)
	}
	assert.Equal(t, 1, tbl.Slots[0].DataLen)
	assert.Equal(t, 3, tbl.Slots[1].DataLen)
	assert.Equal(t, uint8(4), tbl.Slots[0].AvgTotal)
}

func TestDecodeRejects(t *testing.T) {
	tests := []struct {
		name  string
		frame func() []byte
		want  protocol.ErrorCode
	}{
		{
			name:  "zero sample clock",
			frame: func() []byte { return validBuilder().SampleClock(0).Upload() },
			want:  protocol.ErrSamplingOverrun,
		},
		{
			name:  "radio divisor below minimum",
			frame: func() []byte { return validBuilder().RadioDivisor(2).Upload() },
			want:  protocol.ErrRadioDivisorOverrun,
		},
		{
			name:  "comm timeout below minimum",
			frame: func() []byte { return validBuilder().CommTimeout(149).Upload() },
			want:  protocol.ErrCommWaitTimeMismatch,
		},
		{
			name: "foreign master id",
			frame: func() []byte {
				f := validBuilder().Upload()
				f[protocol.ETMasterID] = 0x01
				return f
			},
			want: protocol.ErrHeaderUndefined,
		},
		{
			name:  "truncated",
			frame: func() []byte { return validBuilder().Upload()[:10] },
			want:  protocol.ErrDeveloper,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl, err := Decode(tt.frame(), nil)
			assert.Nil(t, tbl)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestDecodeFieldRules(t *testing.T) {
	t.Run("sample clock clamped", func(t *testing.T) {
		tbl, err := Decode(validBuilder().SampleClock(400).Upload(), nil)
		require.NoError(t, err)
		assert.Equal(t, uint16(protocol.MaxSampleClock), tbl.SampleClock)
	})
	t.Run("radio divisor high bit", func(t *testing.T) {
		tbl, err := Decode(validBuilder().RadioDivisor(0x1FF).Upload(), nil)
		require.NoError(t, err)
		assert.Equal(t, uint16(0x1FF), tbl.RadioDivisor)
	})
	t.Run("fast channel", func(t *testing.T) {
		tbl, err := Decode(validBuilder().Channel(protocol.ChannelFastDown).Upload(), nil)
		require.NoError(t, err)
		assert.Equal(t, protocol.ChannelFastDown, tbl.Channel)
	})
	t.Run("zero sample divisor skipped", func(t *testing.T) {
		tbl, err := Decode(validBuilder().Sensor(protocol.SensorChamberPressure, 0, 1, 1).Upload(), nil)
		require.NoError(t, err)
		assert.Len(t, tbl.Slots, 2)
	})
	t.Run("average count out of range", func(t *testing.T) {
		var reported []protocol.ErrorCode
		frame := NewBuilder().
			SampleClock(1).
			RadioDivisor(3).
			CommTimeout(150).
			Sensor(protocol.SensorChamberPressure, 1, 0, 1).
			Sensor(protocol.SensorChamberTemperature, 1, 51, 1).
			Sensor(protocol.SensorUplinkRSSI, 1, 50, 1).
			Upload()
		tbl, err := Decode(frame, func(c protocol.ErrorCode) { reported = append(reported, c) })
		require.NoError(t, err)
		require.Len(t, tbl.Slots, 3)
		assert.Equal(t, uint8(1), tbl.Slots[0].AvgTotal)
		assert.Equal(t, uint8(1), tbl.Slots[1].AvgTotal)
		assert.Equal(t, uint8(50), tbl.Slots[2].AvgTotal)
		assert.Equal(t, []protocol.ErrorCode{protocol.ErrSampleAverageExceeds, protocol.ErrSampleAverageExceeds}, reported)
	})
	t.Run("unknown sensor kept with zero length", func(t *testing.T) {
		var reported []protocol.ErrorCode
		tbl, err := Decode(validBuilder().Sensor(42, 1, 1, 1).Upload(), func(c protocol.ErrorCode) { reported = append(reported, c) })
		require.NoError(t, err)
		require.Len(t, tbl.Slots, 3)
		assert.Zero(t, tbl.Slots[2].DataLen)
		assert.Equal(t, []protocol.ErrorCode{protocol.ErrSensorIDUndefined}, reported)
	})
	t.Run("battery temperature has no data", func(t *testing.T) {
		tbl, err := Decode(validBuilder().Sensor(protocol.SensorBatteryTemperature, 1, 1, 1).Upload(), nil)
		require.NoError(t, err)
		assert.Zero(t, tbl.Slots[2].DataLen)
	})
}

func TestDefault(t *testing.T) {
	d := Default()
	assert.Equal(t, uint16(1), d.SampleClock)
	assert.Equal(t, uint16(5), d.RadioDivisor)
	assert.Equal(t, uint16(1000), d.CommTimeout)
	assert.Equal(t, protocol.ChannelSlowDown, d.Channel)
	assert.Empty(t, d.Slots)
	assert.True(t, d.AllOff())
}

func TestParseYAML(t *testing.T) {
	data := []byte(`
sample_clock_hz: 4
radio_divisor: 3
comm_timeout_ms: 800
channel: 3
sensors:
  - id: 1
    sample_divisor: 1
    average: 2
    radio_divisor: 1
  - id: 6
    sample_divisor: 2
    average: 1
    radio_divisor: 2
`)
	tbl, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, uint16(4), tbl.SampleClock)
	assert.Equal(t, protocol.ChannelFastDown, tbl.Channel)
	require.Len(t, tbl.Slots, 2)
	assert.Equal(t, protocol.SensorUplinkRSSI, tbl.Slots[1].ID)
	assert.Equal(t, uint8(2), tbl.Slots[1].SampleCounter)

	_, err = Parse([]byte("radio_divisor: 1\n"))
	assert.ErrorIs(t, err, protocol.ErrRadioDivisorOverrun)

	out, err := Marshal(tbl)
	require.NoError(t, err)
	assert.Contains(t, string(out), "sample_clock_hz: 4")
}

func TestFromTable(t *testing.T) {
	src := NewBuilder().
		SampleClock(20).
		RadioDivisor(6).
		CommTimeout(300).
		Channel(protocol.ChannelFastDown).
		Sensor(protocol.SensorGyro, 2, 1, 3).
		Build()

	decoded, err := Decode(FromTable(src).Upload(), nil)
	require.NoError(t, err)
	assert.Equal(t, src.SampleClock, decoded.SampleClock)
	assert.Equal(t, src.RadioDivisor, decoded.RadioDivisor)
	assert.Equal(t, src.Channel, decoded.Channel)
	require.Len(t, decoded.Slots, 1)
	assert.Equal(t, src.Slots[0].ID, decoded.Slots[0].ID)

	// staging copies the slots
	FromTable(src).Sensor(protocol.SensorUplinkRSSI, 1, 1, 1)
	assert.Len(t, src.Slots, 1)
}
