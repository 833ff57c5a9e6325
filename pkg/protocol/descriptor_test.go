package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDescriptorEncode(t *testing.T) {
	tests := []struct {
		name string
		d    Descriptor
		want byte
	}{
		{"zero", Descriptor{}, 0x00},
		{"seq only", Descriptor{Seq: 1}, 0x04},
		{"max seq", Descriptor{Seq: 7}, 0x1C},
		{"slow tx id", Descriptor{TxID: ChannelSlowDown}, 0x40},
		{"fast tx id", Descriptor{TxID: ChannelFastDown}, 0x60},
		{"last", Descriptor{Last: true}, 0x80},
		{"et request", Descriptor{Seq: 1, TxID: ChannelSlowDown, Last: true}, 0xC4},
		{"seq overflow is masked", Descriptor{Seq: 9}, 0x04},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.d.Encode())
		})
	}
}

func TestDescriptorDecodeIgnoresReserved(t *testing.T) {
	d := DecodeDescriptor(0xC4 | 0x03)
	assert.Equal(t, Descriptor{Seq: 1, TxID: ChannelSlowDown, Last: true}, d)
}

func TestErrorControl(t *testing.T) {
	t.Run("outgoing", func(t *testing.T) {
		e := Outgoing(2, ErrSamplingOverrun)
		b := e.Encode()
		assert.Equal(t, byte(2|uint8(ErrSamplingOverrun)<<3), b)
		got := DecodeErrorControl(b)
		assert.Equal(t, uint8(2), got.MsgSeq())
		assert.Equal(t, ErrSamplingOverrun, got.Overrun())
	})
	t.Run("reflected", func(t *testing.T) {
		got := DecodeErrorControl(Reflected(5, 31).Encode())
		assert.Equal(t, uint8(5), got.Ack())
		assert.Equal(t, uint8(31), got.ReceiveCounter())
	})
	t.Run("largest error code fits", func(t *testing.T) {
		got := DecodeErrorControl(Outgoing(7, ErrCalibration).Encode())
		assert.Equal(t, ErrCalibration, got.Overrun())
		assert.Equal(t, uint8(7), got.MsgSeq())
	})
	t.Run("with overrun keeps sequence", func(t *testing.T) {
		e := Outgoing(3, NoError).WithOverrun(ErrCrcMismatch)
		assert.Equal(t, uint8(3), e.MsgSeq())
		assert.Equal(t, ErrCrcMismatch, e.Overrun())
		assert.Equal(t, NoError, e.WithOverrun(NoError).Overrun())
	})
}

func TestErrorCodeOrder(t *testing.T) {
	assert.Equal(t, ErrorCode(0), NoError)
	assert.Equal(t, ErrorCode(17), ErrSamplingOverrun)
	assert.Equal(t, ErrorCode(18), ErrRadioDivisorOverrun)
	assert.Equal(t, ErrorCode(19), ErrCommWaitTimeMismatch)
	assert.Equal(t, ErrorCode(24), ErrCalibration)
	assert.Equal(t, "crc mismatch", ErrCrcMismatch.Error())
	assert.Equal(t, "error code 99", ErrorCode(99).String())
}

func TestPacketAndFrame(t *testing.T) {
	var p Packet
	p.SetHeader(MsgSlowDownload)
	p.SetLen(9)
	p[IndexPayload] = byte(SensorChamberTemperature)
	p[IndexPayload+1] = 0x01
	p[IndexPayload+2] = 0x02
	p[IndexPayload+3] = byte(SensorUplinkRSSI)
	assert.Equal(t, byte(9), p[IndexDataLength])
	assert.Len(t, p.Bytes(), 10)
	assert.Equal(t, []byte{1, 0x01, 0x02, 6}, p.Payload())

	f := Frame{4, byte(MsgAckData), 4, 0xC4, 0x00, 0xB0, 0x80}
	assert.True(t, f.Valid())
	assert.True(t, f.CRCOK())
	assert.Equal(t, MsgAckData, f.Type())
	assert.Equal(t, uint8(0xB0), f.RSSI())
	assert.False(t, Frame{1, 2}.Valid())
	assert.False(t, MsgAckData.FromDevice())
	assert.True(t, MsgSlowDownload.FromDevice())
}
