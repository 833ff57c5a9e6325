package logging

import (
	"io"

	"github.com/mbalug7/go-sensor-node/pkg/protocol"
	"go.uber.org/zap"
)

const (
	sinkBufferSize = 512
	flushChunk     = 64

	// marks an error code frame on the debug port
	errorCodeMarker = 0xEE
)

// Sink is the node debug sink. Every entry goes to the zap logger and is
// buffered for the debug port, the debug serial task drains the buffer in
// chunks so a slow port never stalls protocol logic.
type Sink struct {
	log     *zap.Logger
	port    io.Writer
	buf     []byte
	dropped int
}

// NewSink returns a sink mirroring to port, port may be nil
func NewSink(log *zap.Logger, port io.Writer) *Sink {
	return &Sink{
		log:  log.Named("debug"),
		port: port,
		buf:  make([]byte, 0, sinkBufferSize),
	}
}

func (obj *Sink) LogString(msg string) {
	obj.log.Debug(msg)
	obj.queue(append([]byte(msg), '\r', '\n'))
}

func (obj *Sink) LogBytes(data []byte) {
	obj.log.Debug("bytes", zap.Binary("data", data))
	obj.queue(data)
}

func (obj *Sink) LogErrorCode(code uint8) {
	obj.log.Warn("error reported", zap.Stringer("code", protocol.ErrorCode(code)))
	obj.queue([]byte{errorCodeMarker, code})
}

func (obj *Sink) queue(data []byte) {
	if obj.port == nil {
		return
	}
	if len(obj.buf)+len(data) > sinkBufferSize {
		obj.dropped += len(data)
		return
	}
	obj.buf = append(obj.buf, data...)
}

// Pending returns the number of buffered bytes
func (obj *Sink) Pending() int {
	return len(obj.buf)
}

// Flush writes one chunk to the port and reports whether the buffer is empty
func (obj *Sink) Flush() bool {
	if obj.dropped > 0 {
		obj.log.Warn("debug port overflow", zap.Stringer("code", protocol.ErrUartOverflow), zap.Int("dropped", obj.dropped))
		obj.dropped = 0
	}
	if len(obj.buf) == 0 {
		return true
	}
	n := len(obj.buf)
	if n > flushChunk {
		n = flushChunk
	}
	written, err := obj.port.Write(obj.buf[:n])
	if err != nil {
		obj.log.Debug("failed to write debug port", zap.Error(err))
		// the debug port is best effort
		written = n
	}
	obj.buf = append(obj.buf[:0], obj.buf[written:]...)
	return len(obj.buf) == 0
}
