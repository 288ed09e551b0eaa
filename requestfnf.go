package rsocket

var _ frameBody = (*RequestFNFFrame)(nil)

// RequestFNFFrame initiates a fire-and-forget request: no response is
// expected.
//
// https://rsocket.io/about/protocol/#request_fnf-frame-0x05
type RequestFNFFrame struct {
	streamID uint32
	payload  Payload
	follows  bool
}

func NewRequestFNFFrame(streamID uint32, p Payload) *RequestFNFFrame {
	return &RequestFNFFrame{streamID: streamID, payload: p}
}

func (f *RequestFNFFrame) Header() FrameHeader {
	flags := FrameFlags(0)
	if f.payload.hasMetadata {
		flags |= FlagMetadata
	}
	if f.follows {
		flags |= FlagFollows
	}
	return FrameHeader{StreamID: f.streamID, Type: FrameRequestFNF, Flags: flags}
}

func (f *RequestFNFFrame) Reset()          { *f = RequestFNFFrame{} }
func (f *RequestFNFFrame) Payload() Payload { return f.payload }
func (f *RequestFNFFrame) Follows() bool    { return f.follows }

func (f *RequestFNFFrame) appendBody(dst []byte) ([]byte, FrameFlags) {
	return appendPayloadBody(dst, f.payload)
}

func (f *RequestFNFFrame) readBody(h FrameHeader, body []byte) error {
	f.streamID = h.StreamID
	f.follows = h.Flags.Has(FlagFollows)
	p, err := readPayloadBody(body, h.Flags.Has(FlagMetadata))
	if err != nil {
		return err
	}
	f.payload = p
	return nil
}
