package protocol

// Descriptor is byte 3 of a packet.
//
//	bits 0-1 reserved
//	bits 2-4 packet sequence number
//	bits 5-6 transmitter id
//	bit  7   last packet flag
type Descriptor struct {
	Seq  uint8
	TxID Channel
	Last bool
}

func (d Descriptor) Encode() byte {
	b := (d.Seq&0x07)<<2 | (uint8(d.TxID)&0x03)<<5
	if d.Last {
		b |= 0x80
	}
	return b
}

func DecodeDescriptor(b byte) Descriptor {
	return Descriptor{
		Seq:  (b >> 2) & 0x07,
		TxID: Channel((b >> 5) & 0x03),
		Last: b&0x80 != 0,
	}
}

// ErrorControl is byte 4 of a packet. Only one reading is valid at a time:
// outgoing packets carry (message sequence, overrun error id), status
// reflections carry (ack code, receive counter). Both share the layout
//
//	bits 0-2 low field
//	bits 3-7 high field
type ErrorControl struct {
	low  uint8
	high uint8
}

// Outgoing builds the sending interpretation
func Outgoing(msgSeq uint8, overrun ErrorCode) ErrorControl {
	return ErrorControl{low: msgSeq & 0x07, high: uint8(overrun) & 0x1F}
}

// Reflected builds the status interpretation
func Reflected(ack uint8, receiveCounter uint8) ErrorControl {
	return ErrorControl{low: ack & 0x07, high: receiveCounter & 0x1F}
}

func (e ErrorControl) Encode() byte {
	return e.low | e.high<<3
}

func DecodeErrorControl(b byte) ErrorControl {
	return ErrorControl{low: b & 0x07, high: b >> 3}
}

func (e ErrorControl) MsgSeq() uint8 { return e.low }
func (e ErrorControl) Overrun() ErrorCode { return ErrorCode(e.high) }
func (e ErrorControl) Ack() uint8 { return e.low }
func (e ErrorControl) ReceiveCounter() uint8 { return e.high }

// WithOverrun replaces the overrun id, keeping the sequence field
func (e ErrorControl) WithOverrun(code ErrorCode) ErrorControl {
	e.high = uint8(code) & 0x1F
	return e
}

// WithMsgSeq replaces the sequence field, keeping the overrun id
func (e ErrorControl) WithMsgSeq(seq uint8) ErrorControl {
	e.low = seq & 0x07
	return e
}
