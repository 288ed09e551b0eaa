package rsocket

import (
	"github.com/dgrr/rsocket/internal/wireutil"
)

var _ frameBody = (*SetupFrame)(nil)

// SetupFrame is the client-initiated handshake frame, always on stream 0.
//
// https://rsocket.io/about/protocol/#setup-frame-0x01
type SetupFrame struct {
	honorsLease  bool
	resume       bool
	major, minor uint16
	keepaliveMs  uint32
	maxLifetime  uint32
	resumeToken  []byte
	metadataMime string
	dataMime     string
	payload      Payload
}

// NewSetupFrame builds a SetupFrame with the given negotiated parameters.
func NewSetupFrame(keepaliveMs, maxLifetimeMs uint32, metadataMime, dataMime string, p Payload) *SetupFrame {
	return &SetupFrame{
		major:        1,
		minor:        0,
		keepaliveMs:  keepaliveMs,
		maxLifetime:  maxLifetimeMs,
		metadataMime: metadataMime,
		dataMime:     dataMime,
		payload:      p,
	}
}

func (s *SetupFrame) Header() FrameHeader {
	flags := FrameFlags(0)
	if s.honorsLease {
		flags |= FlagLease
	}
	if s.resume {
		flags |= FlagResume
	}
	if s.payload.hasMetadata {
		flags |= FlagMetadata
	}
	return FrameHeader{StreamID: 0, Type: FrameSetup, Flags: flags}
}

func (s *SetupFrame) Reset() {
	*s = SetupFrame{}
}

func (s *SetupFrame) KeepaliveInterval() uint32 { return s.keepaliveMs }
func (s *SetupFrame) MaxLifetime() uint32        { return s.maxLifetime }
func (s *SetupFrame) MetadataMimeType() string   { return s.metadataMime }
func (s *SetupFrame) DataMimeType() string       { return s.dataMime }
func (s *SetupFrame) Payload() Payload           { return s.payload }
func (s *SetupFrame) HonorsLease() bool          { return s.honorsLease }
func (s *SetupFrame) ResumeToken() ([]byte, bool) {
	return s.resumeToken, s.resume
}
func (s *SetupFrame) Version() (major, minor uint16) { return s.major, s.minor }

// SetHonorsLease sets the LEASE flag.
func (s *SetupFrame) SetHonorsLease(v bool) { s.honorsLease = v }

// SetResumeToken sets the RESUME flag and attaches the resume token.
func (s *SetupFrame) SetResumeToken(token []byte) {
	s.resume = true
	s.resumeToken = token
}

func (s *SetupFrame) appendBody(dst []byte) ([]byte, FrameFlags) {
	var b [4]byte
	wireutil.Uint16ToBytes(b[:2], s.major)
	dst = append(dst, b[0], b[1])
	wireutil.Uint16ToBytes(b[:2], s.minor)
	dst = append(dst, b[0], b[1])

	dst = wireutil.AppendUint32Bytes(dst, s.keepaliveMs)
	dst = wireutil.AppendUint32Bytes(dst, s.maxLifetime)

	if s.resume {
		dst = append(dst, byte(len(s.resumeToken)>>8), byte(len(s.resumeToken)))
		dst = append(dst, s.resumeToken...)
	}

	dst = append(dst, byte(len(s.metadataMime)))
	dst = append(dst, s.metadataMime...)
	dst = append(dst, byte(len(s.dataMime)))
	dst = append(dst, s.dataMime...)

	var flags FrameFlags
	dst, flags = appendPayloadBody(dst, s.payload)
	return dst, flags
}

func (s *SetupFrame) readBody(h FrameHeader, body []byte) error {
	if len(body) < 4+4+4 {
		return newCodecErr(ErrInsufficientBytes, "truncated SETUP frame")
	}
	s.major = wireutil.BytesToUint16(body[0:2])
	s.minor = wireutil.BytesToUint16(body[2:4])
	body = body[4:]

	s.keepaliveMs = wireutil.BytesToUint32(body[0:4])
	s.maxLifetime = wireutil.BytesToUint32(body[4:8])
	body = body[8:]

	s.honorsLease = h.Flags.Has(FlagLease)
	s.resume = h.Flags.Has(FlagResume)
	if s.resume {
		if len(body) < 2 {
			return newCodecErr(ErrInsufficientBytes, "truncated resume token length")
		}
		n := int(wireutil.BytesToUint16(body[:2]))
		body = body[2:]
		if len(body) < n {
			return newCodecErr(ErrInsufficientBytes, "truncated resume token")
		}
		s.resumeToken = append([]byte(nil), body[:n]...)
		body = body[n:]
	}

	if len(body) < 1 {
		return newCodecErr(ErrInsufficientBytes, "truncated metadata MIME length")
	}
	n := int(body[0])
	body = body[1:]
	if len(body) < n {
		return newCodecErr(ErrInsufficientBytes, "truncated metadata MIME")
	}
	s.metadataMime = string(body[:n])
	body = body[n:]

	if len(body) < 1 {
		return newCodecErr(ErrInsufficientBytes, "truncated data MIME length")
	}
	n = int(body[0])
	body = body[1:]
	if len(body) < n {
		return newCodecErr(ErrInsufficientBytes, "truncated data MIME")
	}
	s.dataMime = string(body[:n])
	body = body[n:]

	p, err := readPayloadBody(body, h.Flags.Has(FlagMetadata))
	if err != nil {
		return err
	}
	s.payload = p
	return nil
}
