package protocol

// Packet is one radio packet buffer. Byte 0 holds the chip framing length,
// i.e. the index of the last written byte.
type Packet [MaxPacketSize]byte

func (p *Packet) Header() MsgType {
	return MsgType(p[IndexHeader])
}

func (p *Packet) SetHeader(t MsgType) {
	p[IndexHeader] = byte(t)
}

// Len returns the chip framing length
func (p *Packet) Len() int {
	return int(p[IndexLength])
}

// SetLen writes both length fields, byte 2 mirrors byte 0
func (p *Packet) SetLen(n uint8) {
	p[IndexLength] = n
	p[IndexDataLength] = n
}

func (p *Packet) Descriptor() Descriptor {
	return DecodeDescriptor(p[IndexDescriptor])
}

func (p *Packet) SetDescriptor(d Descriptor) {
	p[IndexDescriptor] = d.Encode()
}

func (p *Packet) ErrorControl() ErrorControl {
	return DecodeErrorControl(p[IndexErrorControl])
}

func (p *Packet) SetErrorControl(e ErrorControl) {
	p[IndexErrorControl] = e.Encode()
}

// Bytes returns the length byte followed by Len() bytes, as loaded into the TX FIFO
func (p *Packet) Bytes() []byte {
	n := p.Len() + 1
	if n > len(p) {
		n = len(p)
	}
	return p[:n]
}

// Payload returns the download entries of a data packet
func (p *Packet) Payload() []byte {
	end := p.Len() + 1
	if end <= IndexPayload {
		return nil
	}
	return p[IndexPayload:end]
}

func (p *Packet) Reset() {
	*p = Packet{}
}

// Bank is the fixed set of packets produced by one collection cycle
type Bank [MaxPacketCount]Packet

func (b *Bank) Reset() {
	for i := range b {
		b[i].Reset()
	}
}

// Frame is a received radio frame: the length byte, the packet bytes and the
// two status bytes appended by the chip (RSSI, then CRC/LQI).
type Frame []byte

// Valid reports whether the frame is long enough to carry a header and the status bytes
func (f Frame) Valid() bool {
	return len(f) >= 4
}

func (f Frame) Type() MsgType {
	return MsgType(f[IndexHeader])
}

func (f Frame) CRCOK() bool {
	return f[len(f)-1]&0x80 != 0
}

func (f Frame) RSSI() uint8 {
	return f[len(f)-2]
}
