package rsocket

import "github.com/dgrr/rsocket/internal/wireutil"

var (
	_ frameBody = (*ResumeFrame)(nil)
	_ frameBody = (*ResumeOKFrame)(nil)
)

// ResumeFrame requests resumption of a previously-interrupted connection.
// The core implements only the wire shape (spec.md §1 scopes resumption
// itself out); an integrator wanting real resumption owns the session
// store and replays state before handing the connection back to the loop.
//
// https://rsocket.io/about/protocol/#resume-frame-0x0d
type ResumeFrame struct {
	major, minor          uint16
	token                 []byte
	lastServerPosition    uint64
	firstClientPosition   uint64
}

func NewResumeFrame(token []byte, lastServerPosition, firstClientPosition uint64) *ResumeFrame {
	return &ResumeFrame{major: 1, minor: 0, token: token, lastServerPosition: lastServerPosition, firstClientPosition: firstClientPosition}
}

func (f *ResumeFrame) Header() FrameHeader {
	return FrameHeader{StreamID: 0, Type: FrameResume}
}

func (f *ResumeFrame) Reset() { *f = ResumeFrame{} }
func (f *ResumeFrame) Token() []byte { return f.token }
func (f *ResumeFrame) LastServerPosition() uint64 { return f.lastServerPosition }
func (f *ResumeFrame) FirstClientPosition() uint64 { return f.firstClientPosition }

func appendUint64(dst []byte, n uint64) []byte {
	var b [8]byte
	for i := 0; i < 8; i++ {
		b[i] = byte(n >> uint(56-8*i))
	}
	return append(dst, b[:]...)
}

func readUint64(b []byte) uint64 {
	var n uint64
	for i := 0; i < 8; i++ {
		n = n<<8 | uint64(b[i])
	}
	return n
}

func (f *ResumeFrame) appendBody(dst []byte) ([]byte, FrameFlags) {
	var b [4]byte
	wireutil.Uint16ToBytes(b[:2], f.major)
	dst = append(dst, b[0], b[1])
	wireutil.Uint16ToBytes(b[:2], f.minor)
	dst = append(dst, b[0], b[1])
	dst = append(dst, byte(len(f.token)>>8), byte(len(f.token)))
	dst = append(dst, f.token...)
	dst = appendUint64(dst, f.lastServerPosition)
	dst = appendUint64(dst, f.firstClientPosition)
	return dst, 0
}

func (f *ResumeFrame) readBody(h FrameHeader, body []byte) error {
	if len(body) < 4+2 {
		return newCodecErr(ErrInsufficientBytes, "truncated RESUME frame")
	}
	f.major = wireutil.BytesToUint16(body[0:2])
	f.minor = wireutil.BytesToUint16(body[2:4])
	body = body[4:]
	n := int(wireutil.BytesToUint16(body[:2]))
	body = body[2:]
	if len(body) < n+16 {
		return newCodecErr(ErrInsufficientBytes, "truncated RESUME token/positions")
	}
	f.token = append([]byte(nil), body[:n]...)
	body = body[n:]
	f.lastServerPosition = readUint64(body[:8])
	f.firstClientPosition = readUint64(body[8:16])
	return nil
}

// ResumeOKFrame acknowledges a RESUME request.
//
// https://rsocket.io/about/protocol/#resume_ok-frame-0x0e
type ResumeOKFrame struct {
	lastReceivedClientPosition uint64
}

func NewResumeOKFrame(lastReceivedClientPosition uint64) *ResumeOKFrame {
	return &ResumeOKFrame{lastReceivedClientPosition: lastReceivedClientPosition}
}

func (f *ResumeOKFrame) Header() FrameHeader {
	return FrameHeader{StreamID: 0, Type: FrameResumeOK}
}

func (f *ResumeOKFrame) Reset() { *f = ResumeOKFrame{} }
func (f *ResumeOKFrame) LastReceivedClientPosition() uint64 { return f.lastReceivedClientPosition }

func (f *ResumeOKFrame) appendBody(dst []byte) ([]byte, FrameFlags) {
	return appendUint64(dst, f.lastReceivedClientPosition), 0
}

func (f *ResumeOKFrame) readBody(h FrameHeader, body []byte) error {
	if len(body) < 8 {
		return newCodecErr(ErrInsufficientBytes, "truncated RESUME_OK frame")
	}
	f.lastReceivedClientPosition = readUint64(body[:8])
	return nil
}
