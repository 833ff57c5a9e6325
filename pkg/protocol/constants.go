package protocol

import "time"

// Channel identifies the radio link a packet travels on
type Channel uint8

const (
	ChannelUplink   Channel = 0x01
	ChannelSlowDown Channel = 0x02 // CC1125
	ChannelFastDown Channel = 0x03 // CC2520
)

func (c Channel) String() string {
	switch c {
	case ChannelUplink:
		return "uplink"
	case ChannelSlowDown:
		return "slow"
	case ChannelFastDown:
		return "fast"
	}
	return "unknown"
}

// MsgType is the header byte of a packet
type MsgType uint8

// device -> console
const (
	MsgStatus           MsgType = 0x80
	MsgRequestET        MsgType = 0x81
	MsgAckET            MsgType = 0x82
	MsgNackET           MsgType = 0x83
	MsgSlowDownload     MsgType = 0x84
	MsgFastDownload     MsgType = 0x85
	MsgDataTerminated   MsgType = 0x86
	MsgLoopbackSlowEcho MsgType = 0x87
	MsgLoopbackFastEcho MsgType = 0x88
	MsgRFCMLoopback     MsgType = 0x89
	MsgRFCMStatus       MsgType = 0x8A
)

// console -> device
const (
	MsgHardReset         MsgType = 0x01
	MsgRequestStatus     MsgType = 0x02
	MsgNoNewET           MsgType = 0x03
	MsgNewET             MsgType = 0x04
	MsgETUploadDone      MsgType = 0x05
	MsgTerminateDownload MsgType = 0x06
	MsgAckData           MsgType = 0x07
	MsgNackInvalidPacket MsgType = 0x08
	MsgNackInvalidFormat MsgType = 0x09
	MsgNackOutOfSequence MsgType = 0x0A
	MsgNackStopSending   MsgType = 0x0B
	MsgStopLoopbackIdle  MsgType = 0x76
	MsgStopLoopbackLoad  MsgType = 0x77
	MsgLoopbackSlow      MsgType = 0x7D
	MsgLoopbackFast      MsgType = 0x7E
)

// FromDevice reports whether the type belongs to the device -> console range
func (t MsgType) FromDevice() bool {
	return t >= MsgStatus && t <= MsgRFCMStatus
}

// packet byte indexes
const (
	IndexLength       = 0
	IndexHeader       = 1
	IndexDataLength   = 2
	IndexDescriptor   = 3
	IndexErrorControl = 4
	IndexDownloadSize = 5
	IndexPayload      = 6
)

const (
	MaxSensorDataLength = 5
	MaxPacketCount      = 8
	MaxPacketSize       = 135
	MaxSensorCount      = 127
	LastDataByteIndex   = 128
	MaxRadioPacket      = 128
	ETRequestLength     = 4
	ETReplyLength       = 4
)

const (
	MaxCommRetry          = 3
	MinRadioDivisor       = 3
	MinCommTimeout        = 150
	MaxCommTimeout        = 65500
	CommTimeoutDoublings  = 3
	MaxSampleAverage      = 50
	MaxSampleClock        = 125
	KeepPowerOnSampleFreq = 1
	TxCompleteTimeout     = 500 * time.Millisecond
	LoopbackTimeout       = 15000 * time.Millisecond
	PowerStabilization    = 80 * time.Millisecond
)

// execution table upload offsets
const (
	ETMasterID       = 5
	ETSampleClock    = 7
	ETControl        = 9
	ETRadioDivisor   = 10
	ETCommTimeout    = 11
	ETFirstSensor    = 13
	ETSensorStride   = 6
	ETSensorControl  = 2
	ETSensorDivisor  = 3
	ETSensorAverage  = 4
	ETSensorRadioDiv = 5

	MasterControllerID = 0x00
	ETFastChannelMask  = 0xC0
)
