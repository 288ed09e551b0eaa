package rsocket

import "sync"

// headerSize is the fixed 48-bit (6 byte) FrameHeader: 32-bit StreamID
// (top bit reserved) followed by a 16-bit word packing the 6-bit FrameType
// and 10-bit FrameFlags (spec.md §4.1).
const headerSize = 6

// FrameHeader is the decoded form of the 48-bit header shared by every
// frame. It is a plain value — unlike the teacher's pooled *FrameHeader,
// nothing here owns a payload buffer, so there is nothing to release.
type FrameHeader struct {
	StreamID uint32
	Type     FrameType
	Flags    FrameFlags
}

// Frame is implemented by every decoded frame body. encode/decode (codec.go)
// are the only pure functions that convert between Frame and wire octets.
type Frame interface {
	// Header returns the frame's StreamID/Type/Flags.
	Header() FrameHeader
}

// frameBody is the internal contract each concrete frame type satisfies so
// the codec can serialize/deserialize it generically. Reset clears a
// pooled instance back to its zero value before reuse.
type frameBody interface {
	Frame
	appendBody(dst []byte) ([]byte, FrameFlags)
	readBody(h FrameHeader, body []byte) error
	Reset()
}

func newPool(new func() frameBody) *sync.Pool {
	return &sync.Pool{New: func() interface{} { return new() }}
}

var framePools = map[FrameType]*sync.Pool{
	FrameSetup:           newPool(func() frameBody { return &SetupFrame{} }),
	FrameLease:           newPool(func() frameBody { return &LeaseFrame{} }),
	FrameKeepalive:       newPool(func() frameBody { return &KeepaliveFrame{} }),
	FrameRequestResponse: newPool(func() frameBody { return &RequestResponseFrame{} }),
	FrameRequestFNF:      newPool(func() frameBody { return &RequestFNFFrame{} }),
	FrameRequestStream:   newPool(func() frameBody { return &RequestStreamFrame{} }),
	FrameRequestChannel:  newPool(func() frameBody { return &RequestChannelFrame{} }),
	FrameRequestN:        newPool(func() frameBody { return &RequestNFrame{} }),
	FrameCancel:          newPool(func() frameBody { return &CancelFrame{} }),
	FramePayload:         newPool(func() frameBody { return &PayloadFrame{} }),
	FrameError:           newPool(func() frameBody { return &ErrorFrame{} }),
	FrameMetadataPush:    newPool(func() frameBody { return &MetadataPushFrame{} }),
	FrameResume:          newPool(func() frameBody { return &ResumeFrame{} }),
	FrameResumeOK:        newPool(func() frameBody { return &ResumeOKFrame{} }),
}

// acquireFrame gets a pooled, reset frame body for t. Returns nil for a
// frame type this codec does not model (EXT, RESERVED).
func acquireFrame(t FrameType) frameBody {
	pool, ok := framePools[t]
	if !ok {
		return nil
	}
	fb := pool.Get().(frameBody)
	fb.Reset()
	return fb
}

// ReleaseFrame returns f to its type's pool so a future Decode can reuse
// the frame struct (acquireFrame resets it, so its field buffers are not
// carried over). Only call this once the frame is no longer
// referenced by application code (payload data is copied out via
// Payload.Clone when it must outlive the frame).
func ReleaseFrame(f Frame) {
	fb, ok := f.(frameBody)
	if !ok {
		return
	}
	pool, ok := framePools[f.Header().Type]
	if !ok {
		return
	}
	pool.Put(fb)
}
