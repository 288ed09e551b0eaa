package rsocket

import (
	"github.com/valyala/bytebufferpool"

	"github.com/dgrr/rsocket/internal/wireutil"
)

// Payload is the opaque metadata/data pair carried by SETUP, request, and
// PAYLOAD frames. Metadata presence, not its length, is what distinguishes
// "no metadata" from "zero-length metadata" — see HasMetadata.
type Payload struct {
	metadata    []byte
	hasMetadata bool
	data        []byte
}

// NewPayload builds a Payload with data only.
func NewPayload(data []byte) Payload {
	return Payload{data: data}
}

// NewPayloadWithMetadata builds a Payload carrying metadata (possibly
// zero-length, which is still distinct from absent metadata).
func NewPayloadWithMetadata(data, metadata []byte) Payload {
	return Payload{data: data, metadata: metadata, hasMetadata: true}
}

// Data returns the payload's data octets.
func (p Payload) Data() []byte { return p.data }

// Metadata returns the payload's metadata octets and whether metadata was
// present at all.
func (p Payload) Metadata() ([]byte, bool) { return p.metadata, p.hasMetadata }

// HasMetadata reports whether metadata is present (even if zero-length).
func (p Payload) HasMetadata() bool { return p.hasMetadata }

// Clone deep-copies the payload's backing buffers so it outlives a pooled
// frame buffer.
func (p Payload) Clone() Payload {
	out := Payload{hasMetadata: p.hasMetadata}
	if p.data != nil {
		out.data = append([]byte(nil), p.data...)
	}
	if p.hasMetadata {
		out.metadata = append([]byte(nil), p.metadata...)
	}
	return out
}

// appendPayloadBody appends the wire encoding of a payload (optional 24-bit
// metadata length + metadata, then data) to dst, returning the flags that
// must be OR'd into the frame header.
func appendPayloadBody(dst []byte, p Payload) ([]byte, FrameFlags) {
	var flags FrameFlags
	if p.hasMetadata {
		flags |= FlagMetadata
		dst = wireutil.AppendUint24Bytes(dst, uint32(len(p.metadata)))
		dst = append(dst, p.metadata...)
	}
	dst = append(dst, p.data...)
	return dst, flags
}

// readPayloadBody decodes the optional-metadata + data body starting at
// body, given whether the METADATA flag was set on the frame header.
func readPayloadBody(body []byte, hasMetadata bool) (Payload, error) {
	if !hasMetadata {
		return Payload{data: body}, nil
	}
	if len(body) < 3 {
		return Payload{}, newCodecErr(ErrInvalidMetadataLength, "truncated metadata length")
	}
	mlen := int(wireutil.BytesToUint24(body[:3]))
	body = body[3:]
	if mlen > len(body) {
		return Payload{}, newCodecErr(ErrInvalidMetadataLength, "metadata length exceeds frame body")
	}
	return Payload{
		metadata:    body[:mlen],
		hasMetadata: true,
		data:        body[mlen:],
	}, nil
}

// bufferPool supplies the scratch buffer Encode assembles a frame body in
// before copying it to the returned slice — the same role
// valyala/bytebufferpool plays, as a transitive fasthttp dependency, in the
// teacher's byte handling. Fragment reassembly does not draw from it.
var bufferPool bytebufferpool.Pool

func acquireBuffer() *bytebufferpool.ByteBuffer {
	return bufferPool.Get()
}

func releaseBuffer(b *bytebufferpool.ByteBuffer) {
	bufferPool.Put(b)
}
