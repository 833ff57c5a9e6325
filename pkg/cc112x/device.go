package cc112x

import (
	"fmt"

	"github.com/mbalug7/go-sensor-node/pkg/hal"
	"github.com/mbalug7/go-sensor-node/pkg/protocol"
	"go.uber.org/zap"
	"periph.io/x/periph/conn/physic"
	"periph.io/x/periph/conn/spi"
	"periph.io/x/periph/conn/spi/spireg"
	"periph.io/x/periph/host"
)

const (
	headerRead     = 0x80
	headerBurst    = 0x40
	extendedPrefix = 0x2F
	spiFrequency   = 4 * physic.MegaHertz
	calPollLimit   = 1000
)

// Conn is the SPI transfer used by Device, spi.Conn satisfies it
type Conn interface {
	Tx(w, r []byte) error
}

// Device drives a CC112x transceiver over SPI. The GPIO0 edge is reported
// through Edge, which must run on the scheduler goroutine.
type Device struct {
	conn   Conn
	port   spi.PortCloser
	log    *zap.Logger
	verify bool
	edge   bool
}

// Open initializes the host drivers and connects to the named SPI port, an
// empty name selects the first one.
func Open(portName string, verify bool, log *zap.Logger) (*Device, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("failed to init periph host: %w", err)
	}
	port, err := spireg.Open(portName)
	if err != nil {
		return nil, fmt.Errorf("failed to open SPI port: %w", err)
	}
	conn, err := port.Connect(spiFrequency, spi.Mode0, 8)
	if err != nil {
		port.Close()
		return nil, fmt.Errorf("failed to connect SPI port: %w", err)
	}
	dev := New(conn, verify, log)
	dev.port = port
	return dev, nil
}

func New(conn Conn, verify bool, log *zap.Logger) *Device {
	return &Device{
		conn:   conn,
		verify: verify,
		log:    log.Named("cc112x"),
	}
}

func (obj *Device) Close() error {
	if obj.port == nil {
		return nil
	}
	if err := obj.port.Close(); err != nil {
		return fmt.Errorf("failed to close SPI port: %w", err)
	}
	return nil
}

// Edge is the GPIO0 interrupt handler
func (obj *Device) Edge() {
	obj.edge = true
}

func (obj *Device) Strobe(cmd hal.Strobe) error {
	r := make([]byte, 1)
	if err := obj.conn.Tx([]byte{byte(cmd)}, r); err != nil {
		return fmt.Errorf("failed to send strobe 0x%02X: %w", byte(cmd), err)
	}
	return nil
}

func (obj *Device) WriteFIFO(data []byte) error {
	return obj.burst(TXFIFO, data, false)
}

func (obj *Device) ReadFIFO(buf []byte) error {
	return obj.burst(TXFIFO, buf, true)
}

func (obj *Device) ReadRegister(addr hal.RegAddress) (uint8, error) {
	buf := []byte{0}
	if err := obj.access(addr, buf, true); err != nil {
		return 0, err
	}
	return buf[0], nil
}

func (obj *Device) WriteRegister(addr hal.RegAddress, value uint8) error {
	return obj.access(addr, []byte{value}, false)
}

// TxComplete consumes the edge raised at the end of a transmission and puts the chip back in receive
func (obj *Device) TxComplete() bool {
	if !obj.edge {
		return false
	}
	obj.edge = false
	if err := obj.Strobe(SRX); err != nil {
		obj.log.Error("failed to enter receive", zap.Error(err))
	}
	return true
}

// RxAvailable consumes the edge raised by a reception and checks the RX FIFO state
func (obj *Device) RxAvailable() bool {
	if !obj.edge {
		return false
	}
	obj.edge = false
	n, err := obj.ReadRegister(NUM_RXBYTES)
	if err != nil || n == 0 {
		return false
	}
	state, err := obj.ReadRegister(MARCSTATE)
	if err != nil {
		return false
	}
	if state&MarcStateMask == MarcStateRxFifoError {
		obj.log.Warn("rx fifo error, flushing")
		if err := obj.Strobe(SFRX); err != nil {
			obj.log.Error("failed to flush rx fifo", zap.Error(err))
		}
		return false
	}
	return true
}

// ReadRSSI returns the current RSSI, 0 when the chip reports it as not valid
func (obj *Device) ReadRSSI() uint8 {
	valid, err := obj.ReadRegister(RSSI0)
	if err != nil || valid&RSSIValidMask == 0 {
		return 0
	}
	rssi, err := obj.ReadRegister(RSSI1)
	if err != nil {
		return 0
	}
	return rssi
}

// Configure writes the register set and runs the VCO calibration. Only the
// slow link is served by this chip.
func (obj *Device) Configure(channel uint8) error {
	if protocol.Channel(channel) != protocol.ChannelSlowDown {
		return nil
	}
	if err := obj.Strobe(SRES); err != nil {
		return protocol.ErrChipNotReady
	}
	for _, reg := range PreferredSettings() {
		if err := obj.WriteRegister(reg.GetAddress(), reg.GetValue()); err != nil {
			return protocol.ErrChipNotReady
		}
		if !obj.verify {
			continue
		}
		got, err := obj.ReadRegister(reg.GetAddress())
		if err != nil {
			return protocol.ErrChipNotReady
		}
		if got != reg.GetValue() {
			obj.log.Error("register verify failed", zap.Uint16("address", uint16(reg.GetAddress())),
				zap.Uint8("want", reg.GetValue()), zap.Uint8("got", got))
			return protocol.ErrRegisterInit
		}
	}
	return obj.calibrate()
}

type calResult struct {
	vco2 uint8
	vco4 uint8
	chp  uint8
}

// calibrate runs the VCO calibration twice, starting from a high and from the
// nominal VCDAC value, and keeps the result with the higher FS_VCO2.
func (obj *Device) calibrate() error {
	nominal, err := obj.ReadRegister(FS_CAL2)
	if err != nil {
		return protocol.ErrChipNotReady
	}
	high, err := obj.calibrateFrom(nominal + vcdacOffset)
	if err != nil {
		return err
	}
	mid, err := obj.calibrateFrom(nominal)
	if err != nil {
		return err
	}
	best := mid
	if high.vco2 > mid.vco2 {
		best = high
	}
	for _, w := range []struct {
		addr  hal.RegAddress
		value uint8
	}{{FS_VCO2, best.vco2}, {FS_VCO4, best.vco4}, {FS_CHP, best.chp}} {
		if err := obj.WriteRegister(w.addr, w.value); err != nil {
			return protocol.ErrCalibration
		}
	}
	return nil
}

func (obj *Device) calibrateFrom(vcdac uint8) (calResult, error) {
	var res calResult
	if err := obj.WriteRegister(FS_VCO2, 0); err != nil {
		return res, protocol.ErrCalibration
	}
	if err := obj.WriteRegister(FS_CAL2, vcdac); err != nil {
		return res, protocol.ErrCalibration
	}
	if err := obj.Strobe(SCAL); err != nil {
		return res, protocol.ErrCalibration
	}
	idle := false
	for i := 0; i < calPollLimit; i++ {
		state, err := obj.ReadRegister(MARCSTATE)
		if err != nil {
			return res, protocol.ErrCalibration
		}
		if state == MarcStateIdle {
			idle = true
			break
		}
	}
	if !idle {
		return res, protocol.ErrCalibration
	}
	var err error
	if res.vco2, err = obj.ReadRegister(FS_VCO2); err != nil {
		return res, protocol.ErrCalibration
	}
	if res.vco4, err = obj.ReadRegister(FS_VCO4); err != nil {
		return res, protocol.ErrCalibration
	}
	if res.chp, err = obj.ReadRegister(FS_CHP); err != nil {
		return res, protocol.ErrCalibration
	}
	return res, nil
}

// access performs a single register transfer, extended registers take an address byte after the prefix
func (obj *Device) access(addr hal.RegAddress, buf []byte, read bool) error {
	var header []byte
	rw := byte(0)
	if read {
		rw = headerRead
	}
	if len(buf) > 1 {
		rw |= headerBurst
	}
	if addr>>8 == extendedPrefix {
		header = []byte{rw | extendedPrefix, byte(addr)}
	} else {
		header = []byte{rw | byte(addr&0x3F)}
	}
	w := make([]byte, len(header)+len(buf))
	copy(w, header)
	if !read {
		copy(w[len(header):], buf)
	}
	r := make([]byte, len(w))
	if err := obj.conn.Tx(w, r); err != nil {
		return fmt.Errorf("failed to access register 0x%04X: %w", uint16(addr), err)
	}
	if read {
		copy(buf, r[len(header):])
	}
	return nil
}

func (obj *Device) burst(fifo hal.RegAddress, buf []byte, read bool) error {
	if len(buf) == 0 {
		return nil
	}
	header := byte(fifo&0x3F) | headerBurst
	if read {
		header |= headerRead
	}
	w := make([]byte, len(buf)+1)
	w[0] = header
	if !read {
		copy(w[1:], buf)
	}
	r := make([]byte, len(w))
	if err := obj.conn.Tx(w, r); err != nil {
		return fmt.Errorf("failed to access fifo: %w", err)
	}
	if read {
		copy(buf, r[1:])
	}
	return nil
}
