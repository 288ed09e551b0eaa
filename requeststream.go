package rsocket

import "github.com/dgrr/rsocket/internal/wireutil"

var _ frameBody = (*RequestStreamFrame)(nil)

// RequestStreamFrame initiates a request/stream interaction with an
// initial demand.
//
// https://rsocket.io/about/protocol/#request_stream-frame-0x06
type RequestStreamFrame struct {
	streamID        uint32
	initialRequestN uint32
	payload         Payload
	follows         bool
}

func NewRequestStreamFrame(streamID uint32, initialRequestN uint32, p Payload) *RequestStreamFrame {
	return &RequestStreamFrame{streamID: streamID, initialRequestN: initialRequestN, payload: p}
}

func (f *RequestStreamFrame) Header() FrameHeader {
	flags := FrameFlags(0)
	if f.payload.hasMetadata {
		flags |= FlagMetadata
	}
	if f.follows {
		flags |= FlagFollows
	}
	return FrameHeader{StreamID: f.streamID, Type: FrameRequestStream, Flags: flags}
}

func (f *RequestStreamFrame) Reset()                 { *f = RequestStreamFrame{} }
func (f *RequestStreamFrame) InitialRequestN() uint32 { return f.initialRequestN }
func (f *RequestStreamFrame) Payload() Payload        { return f.payload }
func (f *RequestStreamFrame) Follows() bool           { return f.follows }

func (f *RequestStreamFrame) appendBody(dst []byte) ([]byte, FrameFlags) {
	dst = wireutil.AppendUint32Bytes(dst, f.initialRequestN)
	return appendPayloadBody(dst, f.payload)
}

func (f *RequestStreamFrame) readBody(h FrameHeader, body []byte) error {
	if len(body) < 4 {
		return newCodecErr(ErrInsufficientBytes, "truncated REQUEST_STREAM frame")
	}
	f.streamID = h.StreamID
	f.follows = h.Flags.Has(FlagFollows)
	f.initialRequestN = wireutil.BytesToUint32(body[:4])
	p, err := readPayloadBody(body[4:], h.Flags.Has(FlagMetadata))
	if err != nil {
		return err
	}
	f.payload = p
	return nil
}
