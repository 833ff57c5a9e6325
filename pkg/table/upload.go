package table

import (
	"github.com/mbalug7/go-sensor-node/pkg/protocol"
)

// Reporter receives non fatal findings while a frame is decoded
type Reporter func(code protocol.ErrorCode)

// Decode validates a new execution table frame and builds an armed table from
// it. A rejected frame returns a protocol.ErrorCode, the caller keeps its
// current table in that case.
func Decode(frame []byte, report Reporter) (*Table, error) {
	if len(frame) < protocol.ETFirstSensor {
		return nil, protocol.ErrDeveloper
	}
	if frame[protocol.ETMasterID] != protocol.MasterControllerID {
		return nil, protocol.ErrHeaderUndefined
	}

	t := &Table{}
	t.SampleClock = be16(frame[protocol.ETSampleClock:])
	if t.SampleClock == 0 {
		return nil, protocol.ErrSamplingOverrun
	}
	if t.SampleClock > protocol.MaxSampleClock {
		t.SampleClock = protocol.MaxSampleClock
	}

	control := frame[protocol.ETControl]
	t.Channel = protocol.ChannelSlowDown
	if control&protocol.ETFastChannelMask != 0 {
		t.Channel = protocol.ChannelFastDown
	}
	t.RadioDivisor = uint16(control&0x01)<<8 | uint16(frame[protocol.ETRadioDivisor])
	if t.RadioDivisor < protocol.MinRadioDivisor {
		return nil, protocol.ErrRadioDivisorOverrun
	}

	t.CommTimeout = be16(frame[protocol.ETCommTimeout:])
	if t.CommTimeout < protocol.MinCommTimeout {
		return nil, protocol.ErrCommWaitTimeMismatch
	}

	t.AlwaysOn = t.SampleClock >= protocol.KeepPowerOnSampleFreq

	end := int(frame[protocol.IndexDataLength])
	for i := protocol.ETFirstSensor; i < end; i += protocol.ETSensorStride {
		if i+protocol.ETSensorStride > len(frame) || len(t.Slots) >= protocol.MaxSensorCount {
			break
		}
		rec := frame[i : i+protocol.ETSensorStride]
		if rec[protocol.ETSensorDivisor] == 0 {
			continue
		}
		s := Slot{
			ID:            protocol.SensorID(rec[0]),
			Control:       rec[protocol.ETSensorControl],
			SampleDivisor: rec[protocol.ETSensorDivisor],
			AvgTotal:      rec[protocol.ETSensorAverage],
			RadioDivisor:  rec[protocol.ETSensorRadioDiv],
		}
		if s.AvgTotal == 0 || s.AvgTotal > protocol.MaxSampleAverage {
			s.AvgTotal = 1
			if report != nil {
				report(protocol.ErrSampleAverageExceeds)
			}
		}
		if !protocol.Known(s.ID) && report != nil {
			report(protocol.ErrSensorIDUndefined)
		}
		s.Arm()
		t.Slots = append(t.Slots, s)
	}
	return t, nil
}

func be16(b []byte) uint16 {
	return uint16(b[0])<<8 | uint16(b[1])
}
