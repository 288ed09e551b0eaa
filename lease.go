package rsocket

import "github.com/dgrr/rsocket/internal/wireutil"

var _ frameBody = (*LeaseFrame)(nil)

// LeaseFrame grants the peer permission to make N requests within a TTL.
// Treated as advisory per spec.md §9: this codec models the wire shape but
// the connection state machine does not enforce lease-gated admission.
//
// https://rsocket.io/about/protocol/#lease-frame-0x02
type LeaseFrame struct {
	ttlMs    uint32
	numReqs  uint32
	metadata []byte
	hasMeta  bool
}

func NewLeaseFrame(ttlMs, numRequests uint32, metadata []byte) *LeaseFrame {
	l := &LeaseFrame{ttlMs: ttlMs, numReqs: numRequests}
	if metadata != nil {
		l.metadata = metadata
		l.hasMeta = true
	}
	return l
}

func (l *LeaseFrame) Header() FrameHeader {
	flags := FrameFlags(0)
	if l.hasMeta {
		flags |= FlagMetadata
	}
	return FrameHeader{StreamID: 0, Type: FrameLease, Flags: flags}
}

func (l *LeaseFrame) Reset() { *l = LeaseFrame{} }

func (l *LeaseFrame) TTL() uint32            { return l.ttlMs }
func (l *LeaseFrame) NumberOfRequests() uint32 { return l.numReqs }
func (l *LeaseFrame) Metadata() ([]byte, bool) { return l.metadata, l.hasMeta }

func (l *LeaseFrame) appendBody(dst []byte) ([]byte, FrameFlags) {
	dst = wireutil.AppendUint32Bytes(dst, l.ttlMs)
	dst = wireutil.AppendUint32Bytes(dst, l.numReqs)
	var flags FrameFlags
	if l.hasMeta {
		flags |= FlagMetadata
		dst = append(dst, l.metadata...)
	}
	return dst, flags
}

func (l *LeaseFrame) readBody(h FrameHeader, body []byte) error {
	if len(body) < 8 {
		return newCodecErr(ErrInsufficientBytes, "truncated LEASE frame")
	}
	l.ttlMs = wireutil.BytesToUint32(body[0:4])
	l.numReqs = wireutil.BytesToUint32(body[4:8])
	body = body[8:]
	l.hasMeta = h.Flags.Has(FlagMetadata)
	if l.hasMeta {
		l.metadata = append([]byte(nil), body...)
	}
	return nil
}
