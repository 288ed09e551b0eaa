package rsocket

import (
	"github.com/dgrr/rsocket/internal/wireutil"
)

// Encode serializes f to its wire octets (header + body), validating the
// stream-ID/frame-type pairing mandated by spec.md §4.1 before writing
// anything.
func Encode(f Frame) ([]byte, error) {
	h := f.Header()
	if err := validateStreamID(h); err != nil {
		return nil, err
	}

	fb, ok := f.(frameBody)
	if !ok {
		return nil, newCodecErr(ErrUnsupportedFrameType, h.Type.String())
	}

	buf := acquireBuffer()
	defer releaseBuffer(buf)

	var derivedFlags FrameFlags
	buf.B, derivedFlags = fb.appendBody(buf.B[:0])
	h.Flags |= derivedFlags

	out := make([]byte, headerSize, headerSize+len(buf.B))
	writeHeader(out, h)
	out = append(out, buf.B...)
	return out, nil
}

// Decode parses the wire octets of exactly one frame (header + body, with
// no outer length prefix — that belongs to the transport, spec.md §6) into
// a Frame.
func Decode(b []byte) (Frame, error) {
	if len(b) < headerSize {
		return nil, newCodecErr(ErrInsufficientBytes, "frame shorter than header")
	}

	h := readHeader(b)
	body := b[headerSize:]

	if h.Type > maxFrameType {
		return nil, newCodecErr(ErrUnsupportedFrameType, h.Type.String())
	}

	fb := acquireFrame(h.Type)
	if fb == nil {
		if h.Flags.Has(FlagIgnore) {
			return nil, nil
		}
		return nil, newCodecErr(ErrUnsupportedFrameType, h.Type.String())
	}

	if err := validateStreamID(h); err != nil {
		return nil, err
	}

	if err := fb.readBody(h, body); err != nil {
		return nil, err
	}
	return fb, nil
}

// validateStreamID enforces the per-frame-type stream-ID rule of
// spec.md §3/§4.1: connection frames on stream 0, request/response/etc. on
// a non-zero stream. ERROR is the one type that may legally appear on
// either (connection-level vs. per-stream error).
func validateStreamID(h FrameHeader) error {
	switch h.Type {
	case FrameSetup, FrameLease, FrameKeepalive, FrameMetadataPush, FrameResume, FrameResumeOK:
		if h.StreamID != 0 {
			return newCodecErr(ErrInvalidStreamID, h.Type.String()+" must use stream 0")
		}
	case FrameError:
		// either stream 0 (connection error) or a live stream ID.
	default:
		if h.StreamID == 0 {
			return newCodecErr(ErrInvalidStreamID, h.Type.String()+" requires a non-zero stream")
		}
	}
	return nil
}

func writeHeader(dst []byte, h FrameHeader) {
	wireutil.Uint32ToBytes(dst[0:4], h.StreamID&(1<<31-1))
	word := uint16(h.Type&0x3F)<<10 | uint16(h.Flags&flagsMask)
	wireutil.Uint16ToBytes(dst[4:6], word)
}

func readHeader(src []byte) FrameHeader {
	streamID := wireutil.BytesToUint32Masked(src[0:4])
	word := wireutil.BytesToUint16(src[4:6])
	return FrameHeader{
		StreamID: streamID,
		Type:     FrameType(word >> 10),
		Flags:    FrameFlags(word) & flagsMask,
	}
}
