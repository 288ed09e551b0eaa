package rsocket

var _ frameBody = (*CancelFrame)(nil)

// CancelFrame cancels an outstanding request. Idempotent: a second CANCEL
// on an already-terminated stream is a late frame (spec.md §4.5).
//
// https://rsocket.io/about/protocol/#cancel-frame-0x09
type CancelFrame struct {
	streamID uint32
}

func NewCancelFrame(streamID uint32) *CancelFrame {
	return &CancelFrame{streamID: streamID}
}

func (f *CancelFrame) Header() FrameHeader {
	return FrameHeader{StreamID: f.streamID, Type: FrameCancel}
}

func (f *CancelFrame) Reset() { *f = CancelFrame{} }

func (f *CancelFrame) appendBody(dst []byte) ([]byte, FrameFlags) { return dst, 0 }

func (f *CancelFrame) readBody(h FrameHeader, body []byte) error {
	f.streamID = h.StreamID
	return nil
}
