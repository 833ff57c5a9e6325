package sim

import (
	"github.com/mbalug7/go-sensor-node/pkg/cc112x"
	"github.com/mbalug7/go-sensor-node/pkg/hal"
)

// Responder answers a transmitted packet with a received frame, nil means silence
type Responder func(sent []byte) []byte

// Radio is an in-memory CC112x. Transmissions complete on STX unless
// DropTx is set, and the Responder reply becomes available right after.
type Radio struct {
	Respond      Responder
	DropTx       bool
	FifoError    bool
	ConfigureErr error
	RSSI         uint8
	OnEdge       func() // called where the chip would raise GPIO0

	Sent       [][]byte
	Strobes    []hal.Strobe
	Configured []uint8

	fifo   []byte
	rx     [][]byte
	txDone bool
}

func (obj *Radio) Strobe(cmd hal.Strobe) error {
	obj.Strobes = append(obj.Strobes, cmd)
	switch cmd {
	case cc112x.SFTX:
		obj.fifo = nil
	case cc112x.SFRX:
		obj.rx = nil
	case cc112x.STX:
		frame := obj.fifo
		obj.fifo = nil
		if obj.DropTx {
			return nil
		}
		obj.Sent = append(obj.Sent, frame)
		obj.txDone = true
		if obj.Respond != nil {
			if reply := obj.Respond(frame); reply != nil {
				obj.rx = append(obj.rx, reply)
			}
		}
		obj.edge()
	}
	return nil
}

func (obj *Radio) WriteFIFO(data []byte) error {
	obj.fifo = append(obj.fifo, data...)
	return nil
}

func (obj *Radio) ReadFIFO(buf []byte) error {
	if len(obj.rx) == 0 {
		return nil
	}
	copy(buf, obj.rx[0])
	obj.rx = obj.rx[1:]
	return nil
}

func (obj *Radio) ReadRegister(addr hal.RegAddress) (uint8, error) {
	switch addr {
	case cc112x.MARCSTATE:
		if obj.FifoError {
			return cc112x.MarcStateTxFifoError, nil
		}
		return cc112x.MarcStateIdle, nil
	case cc112x.NUM_RXBYTES:
		if len(obj.rx) == 0 {
			return 0, nil
		}
		return uint8(len(obj.rx[0])), nil
	}
	return 0, nil
}

func (obj *Radio) TxComplete() bool {
	done := obj.txDone
	obj.txDone = false
	// the queued reply raises its own edge once the chip is back in receive
	if done && len(obj.rx) > 0 {
		obj.edge()
	}
	return done
}

func (obj *Radio) edge() {
	if obj.OnEdge != nil {
		obj.OnEdge()
	}
}

func (obj *Radio) RxAvailable() bool {
	return !obj.txDone && len(obj.rx) > 0
}

func (obj *Radio) ReadRSSI() uint8 {
	return obj.RSSI
}

func (obj *Radio) Configure(channel uint8) error {
	obj.Configured = append(obj.Configured, channel)
	return obj.ConfigureErr
}

// Inject queues a received frame as if it arrived over the air
func (obj *Radio) Inject(frame []byte) {
	obj.rx = append(obj.rx, frame)
}

// Frame builds a received frame: length, header, body, then the RSSI and CRC status bytes
func Frame(header uint8, body []byte, rssi uint8, crcOK bool) []byte {
	f := make([]byte, 0, len(body)+4)
	f = append(f, byte(len(body)+1), header)
	f = append(f, body...)
	status := byte(0)
	if crcOK {
		status = cc112x.CRCOKMask
	}
	return append(f, rssi, status)
}

// WithStatus appends the RSSI and CRC status bytes to a raw packet
func WithStatus(packet []byte, rssi uint8, crcOK bool) []byte {
	f := append([]byte(nil), packet...)
	status := byte(0)
	if crcOK {
		status = cc112x.CRCOKMask
	}
	return append(f, rssi, status)
}
