package rsocket

import "github.com/dgrr/rsocket/internal/wireutil"

var _ frameBody = (*RequestNFrame)(nil)

// RequestNFrame grants additional demand on a request/stream or
// request/channel interaction.
//
// https://rsocket.io/about/protocol/#request_n-frame-0x08
type RequestNFrame struct {
	streamID uint32
	n        uint32
}

func NewRequestNFrame(streamID, n uint32) *RequestNFrame {
	return &RequestNFrame{streamID: streamID, n: n}
}

func (f *RequestNFrame) Header() FrameHeader {
	return FrameHeader{StreamID: f.streamID, Type: FrameRequestN}
}

func (f *RequestNFrame) Reset()   { *f = RequestNFrame{} }
func (f *RequestNFrame) N() uint32 { return f.n }

func (f *RequestNFrame) appendBody(dst []byte) ([]byte, FrameFlags) {
	return wireutil.AppendUint32Bytes(dst, f.n), 0
}

func (f *RequestNFrame) readBody(h FrameHeader, body []byte) error {
	if len(body) < 4 {
		return newCodecErr(ErrInsufficientBytes, "truncated REQUEST_N frame")
	}
	f.streamID = h.StreamID
	f.n = wireutil.BytesToUint32(body[:4])
	return nil
}
