package rsocket

import "github.com/dgrr/rsocket/internal/wireutil"

var _ frameBody = (*RequestChannelFrame)(nil)

// RequestChannelFrame initiates a bidirectional request/channel
// interaction.
//
// https://rsocket.io/about/protocol/#request_channel-frame-0x07
type RequestChannelFrame struct {
	streamID        uint32
	initialRequestN uint32
	payload         Payload
	follows         bool
	complete        bool
}

func NewRequestChannelFrame(streamID uint32, initialRequestN uint32, p Payload, isCompleted bool) *RequestChannelFrame {
	return &RequestChannelFrame{streamID: streamID, initialRequestN: initialRequestN, payload: p, complete: isCompleted}
}

func (f *RequestChannelFrame) Header() FrameHeader {
	flags := FrameFlags(0)
	if f.payload.hasMetadata {
		flags |= FlagMetadata
	}
	if f.follows {
		flags |= FlagFollows
	}
	if f.complete {
		flags |= FlagComplete
	}
	return FrameHeader{StreamID: f.streamID, Type: FrameRequestChannel, Flags: flags}
}

func (f *RequestChannelFrame) Reset()                 { *f = RequestChannelFrame{} }
func (f *RequestChannelFrame) InitialRequestN() uint32 { return f.initialRequestN }
func (f *RequestChannelFrame) Payload() Payload        { return f.payload }
func (f *RequestChannelFrame) Follows() bool           { return f.follows }
func (f *RequestChannelFrame) Complete() bool          { return f.complete }

func (f *RequestChannelFrame) appendBody(dst []byte) ([]byte, FrameFlags) {
	dst = wireutil.AppendUint32Bytes(dst, f.initialRequestN)
	return appendPayloadBody(dst, f.payload)
}

func (f *RequestChannelFrame) readBody(h FrameHeader, body []byte) error {
	if len(body) < 4 {
		return newCodecErr(ErrInsufficientBytes, "truncated REQUEST_CHANNEL frame")
	}
	f.streamID = h.StreamID
	f.follows = h.Flags.Has(FlagFollows)
	f.complete = h.Flags.Has(FlagComplete)
	f.initialRequestN = wireutil.BytesToUint32(body[:4])
	p, err := readPayloadBody(body[4:], h.Flags.Has(FlagMetadata))
	if err != nil {
		return err
	}
	f.payload = p
	return nil
}
