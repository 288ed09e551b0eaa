package rsocket

import "github.com/dgrr/rsocket/internal/wireutil"

var _ frameBody = (*ErrorFrame)(nil)

// ErrorFrame is terminal for the stream it targets (or for the whole
// connection, on stream 0).
//
// https://rsocket.io/about/protocol/#error-frame-0x0b
type ErrorFrame struct {
	streamID uint32
	code     ErrorCode
	data     string
}

func NewErrorFrame(streamID uint32, code ErrorCode, data string) *ErrorFrame {
	return &ErrorFrame{streamID: streamID, code: code, data: data}
}

func (f *ErrorFrame) Header() FrameHeader {
	return FrameHeader{StreamID: f.streamID, Type: FrameError}
}

func (f *ErrorFrame) Reset()           { *f = ErrorFrame{} }
func (f *ErrorFrame) Code() ErrorCode  { return f.code }
func (f *ErrorFrame) Data() string     { return f.data }
func (f *ErrorFrame) AsError() *RSocketError { return NewError(f.code, f.data) }

func (f *ErrorFrame) appendBody(dst []byte) ([]byte, FrameFlags) {
	dst = wireutil.AppendUint32Bytes(dst, uint32(f.code))
	dst = append(dst, f.data...)
	return dst, 0
}

func (f *ErrorFrame) readBody(h FrameHeader, body []byte) error {
	if len(body) < 4 {
		return newCodecErr(ErrInsufficientBytes, "truncated ERROR frame")
	}
	f.streamID = h.StreamID
	f.code = ErrorCode(wireutil.BytesToUint32(body[:4]))
	f.data = string(body[4:])
	return nil
}
