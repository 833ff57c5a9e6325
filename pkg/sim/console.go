package sim

import (
	"github.com/mazen160/go-random"
	"github.com/mbalug7/go-sensor-node/pkg/protocol"
	"go.uber.org/zap"
)

const (
	loopbackPayloadType   = 0x30
	loopbackPayloadLength = 8
	loopbackEchoes        = 3
)

// Console plays the remote console for the simulated runner. It answers
// execution table requests with Upload and acknowledges every data packet.
type Console struct {
	Upload        []byte // execution table frame, nil answers "no new table"
	DropEvery     int    // every nth reply is lost, 0 never
	LoopbackEvery int    // every nth table request opens a loopback session, 0 never
	RSSI          uint8

	Received [][]byte
	Acked    int

	log      *zap.Logger
	replies  int
	requests int
	echoes   int
}

func NewConsole(upload []byte, log *zap.Logger) *Console {
	return &Console{Upload: upload, RSSI: 0x50, log: log.Named("console")}
}

// Respond is the Responder of the simulated radio
func (obj *Console) Respond(sent []byte) []byte {
	obj.Received = append(obj.Received, sent)
	obj.replies++
	if obj.DropEvery > 0 && obj.replies%obj.DropEvery == 0 {
		obj.log.Debug("reply dropped", zap.Int("reply", obj.replies))
		return nil
	}
	if len(sent) <= protocol.IndexHeader {
		return nil
	}
	t := protocol.MsgType(sent[protocol.IndexHeader])
	switch t {
	case protocol.MsgRequestET:
		obj.requests++
		if obj.LoopbackEvery > 0 && obj.requests%obj.LoopbackEvery == 0 {
			obj.echoes = loopbackEchoes
			return obj.reply(protocol.MsgLoopbackSlow)
		}
		if obj.Upload == nil {
			return obj.reply(protocol.MsgNoNewET)
		}
		return WithStatus(obj.Upload, obj.RSSI, true)
	case protocol.MsgSlowDownload, protocol.MsgFastDownload:
		obj.Acked++
		obj.log.Debug("data packet acknowledged", zap.Binary("packet", sent))
		return obj.reply(protocol.MsgAckData)
	case protocol.MsgAckET, protocol.MsgNackET:
		if obj.echoes > 0 {
			return obj.echo()
		}
		return nil
	}
	if obj.echoes > 0 {
		return obj.echo()
	}
	obj.log.Debug("unexpected packet", zap.Uint8("type", uint8(t)))
	return nil
}

func (obj *Console) reply(t protocol.MsgType) []byte {
	return Frame(uint8(t), nil, obj.RSSI, true)
}

// echo returns the next loopback payload, the last one stops the session
func (obj *Console) echo() []byte {
	obj.echoes--
	if obj.echoes == 0 {
		return obj.reply(protocol.MsgStopLoopbackLoad)
	}
	payload, err := random.String(loopbackPayloadLength)
	if err != nil {
		payload = "loopback"
	}
	return Frame(loopbackPayloadType, []byte(payload), obj.RSSI, true)
}
