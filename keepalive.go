package rsocket

var _ frameBody = (*KeepaliveFrame)(nil)

// KeepaliveFrame is exchanged on stream 0 to keep the connection alive and
// to carry the resumption position.
//
// https://rsocket.io/about/protocol/#keepalive-frame-0x03
type KeepaliveFrame struct {
	respond      bool
	lastPosition uint64
	data         []byte
}

// NewKeepaliveFrame builds a KEEPALIVE frame. respond=true requests an
// echoed KEEPALIVE(respond=false) from the peer (spec.md §4.3).
func NewKeepaliveFrame(respond bool, data []byte) *KeepaliveFrame {
	return &KeepaliveFrame{respond: respond, data: data}
}

func (k *KeepaliveFrame) Header() FrameHeader {
	flags := FrameFlags(0)
	if k.respond {
		flags |= FlagRespond
	}
	return FrameHeader{StreamID: 0, Type: FrameKeepalive, Flags: flags}
}

func (k *KeepaliveFrame) Reset() { *k = KeepaliveFrame{} }

func (k *KeepaliveFrame) Respond() bool           { return k.respond }
func (k *KeepaliveFrame) LastReceivedPosition() uint64 { return k.lastPosition }
func (k *KeepaliveFrame) Data() []byte            { return k.data }

func (k *KeepaliveFrame) SetLastReceivedPosition(pos uint64) { k.lastPosition = pos }

func (k *KeepaliveFrame) appendBody(dst []byte) ([]byte, FrameFlags) {
	var b [8]byte
	for i := 0; i < 8; i++ {
		b[i] = byte(k.lastPosition >> uint(56-8*i))
	}
	dst = append(dst, b[:]...)
	dst = append(dst, k.data...)
	flags := FrameFlags(0)
	if k.respond {
		flags |= FlagRespond
	}
	return dst, flags
}

func (k *KeepaliveFrame) readBody(h FrameHeader, body []byte) error {
	if len(body) < 8 {
		return newCodecErr(ErrInsufficientBytes, "truncated KEEPALIVE frame")
	}
	var pos uint64
	for i := 0; i < 8; i++ {
		pos = pos<<8 | uint64(body[i])
	}
	k.lastPosition = pos
	k.data = append([]byte(nil), body[8:]...)
	k.respond = h.Flags.Has(FlagRespond)
	return nil
}
