package rsocket

var _ frameBody = (*RequestResponseFrame)(nil)

// RequestResponseFrame initiates a single-response request/response
// interaction.
//
// https://rsocket.io/about/protocol/#request_response-frame-0x04
type RequestResponseFrame struct {
	streamID uint32
	payload  Payload
}

func NewRequestResponseFrame(streamID uint32, p Payload) *RequestResponseFrame {
	return &RequestResponseFrame{streamID: streamID, payload: p}
}

func (f *RequestResponseFrame) Header() FrameHeader {
	flags := FrameFlags(0)
	if f.payload.hasMetadata {
		flags |= FlagMetadata
	}
	return FrameHeader{StreamID: f.streamID, Type: FrameRequestResponse, Flags: flags}
}

func (f *RequestResponseFrame) Reset()          { *f = RequestResponseFrame{} }
func (f *RequestResponseFrame) Payload() Payload { return f.payload }

func (f *RequestResponseFrame) appendBody(dst []byte) ([]byte, FrameFlags) {
	return appendPayloadBody(dst, f.payload)
}

func (f *RequestResponseFrame) readBody(h FrameHeader, body []byte) error {
	f.streamID = h.StreamID
	p, err := readPayloadBody(body, h.Flags.Has(FlagMetadata))
	if err != nil {
		return err
	}
	f.payload = p
	return nil
}
