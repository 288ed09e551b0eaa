package rsocket

var _ frameBody = (*PayloadFrame)(nil)

// PayloadFrame carries a NEXT and/or COMPLETE payload for any of the four
// interaction models, and also carries fragmentation continuations
// (FOLLOWS) regardless of the logical request's original frame type.
//
// https://rsocket.io/about/protocol/#payload-frame-0x0a
type PayloadFrame struct {
	streamID uint32
	next     bool
	complete bool
	follows  bool
	payload  Payload
}

func NewPayloadFrame(streamID uint32, p Payload, next, complete bool) *PayloadFrame {
	return &PayloadFrame{streamID: streamID, payload: p, next: next, complete: complete}
}

func (f *PayloadFrame) Header() FrameHeader {
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
	if f.next {
		flags |= FlagNext
	}
	return FrameHeader{StreamID: f.streamID, Type: FramePayload, Flags: flags}
}

func (f *PayloadFrame) Reset()          { *f = PayloadFrame{} }
func (f *PayloadFrame) Next() bool      { return f.next }
func (f *PayloadFrame) Complete() bool  { return f.complete }
func (f *PayloadFrame) Follows() bool   { return f.follows }
func (f *PayloadFrame) Payload() Payload { return f.payload }

// SetFollows marks this PAYLOAD frame as a fragmentation continuation.
func (f *PayloadFrame) SetFollows(v bool) { f.follows = v }

func (f *PayloadFrame) appendBody(dst []byte) ([]byte, FrameFlags) {
	return appendPayloadBody(dst, f.payload)
}

func (f *PayloadFrame) readBody(h FrameHeader, body []byte) error {
	f.streamID = h.StreamID
	f.next = h.Flags.Has(FlagNext)
	f.complete = h.Flags.Has(FlagComplete)
	f.follows = h.Flags.Has(FlagFollows)
	p, err := readPayloadBody(body, h.Flags.Has(FlagMetadata))
	if err != nil {
		return err
	}
	f.payload = p
	return nil
}
