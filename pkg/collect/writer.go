// Package collect assembles the finished sensor samples into the download packet bank.
package collect

import (
	"github.com/mbalug7/go-sensor-node/pkg/protocol"
)

// Writer appends download entries to the packet bank, one packet at a time
type Writer struct {
	bank    *protocol.Bank
	channel protocol.Channel
	index   uint8
	cursor  int
	count   uint8
}

func NewWriter(bank *protocol.Bank, channel protocol.Channel) *Writer {
	w := &Writer{bank: bank, channel: channel}
	w.open()
	return w
}

func (obj *Writer) open() {
	obj.bank[obj.index].Reset()
	obj.cursor = protocol.IndexPayload
}

// Fits reports whether an entry of n data words still fits the current packet
func (obj *Writer) Fits(n int) bool {
	return obj.cursor+2*n+1 <= protocol.LastDataByteIndex
}

// Put writes one entry: the sensor id followed by the words, high byte first
func (obj *Writer) Put(id protocol.SensorID, words []uint16) {
	p := &obj.bank[obj.index]
	p[obj.cursor] = byte(id)
	obj.cursor++
	for _, w := range words {
		p[obj.cursor] = byte(w >> 8)
		p[obj.cursor+1] = byte(w)
		obj.cursor += 2
	}
}

// Index is the position of the packet being written
func (obj *Writer) Index() uint8 {
	return obj.index
}

// Full reports whether the bank has no room for another packet
func (obj *Writer) Full() bool {
	return int(obj.index) >= protocol.MaxPacketCount-1
}

// Finalize stamps the framing bytes of the current packet. A packet that is
// not the last one opens the next packet in the bank.
func (obj *Writer) Finalize(last bool) {
	p := &obj.bank[obj.index]
	header := protocol.MsgSlowDownload
	if obj.channel == protocol.ChannelFastDown {
		header = protocol.MsgFastDownload
	}
	p.SetHeader(header)
	p.SetDescriptor(protocol.Descriptor{Seq: obj.index + 1, TxID: obj.channel, Last: last})
	end := uint8(obj.cursor - 1)
	p.SetLen(end)
	p[protocol.IndexDownloadSize] = end - protocol.IndexErrorControl
	obj.count = obj.index + 1
	if last {
		return
	}
	obj.index++
	obj.open()
}

// Count returns the number of finalized packets
func (obj *Writer) Count() uint8 {
	return obj.count
}
