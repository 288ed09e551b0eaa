// Package wireutil holds the low-level byte-order helpers shared by the
// frame codec. Kept separate from the core package the way dgrr/http2 keeps
// its http2utils package separate from the frame types that use it.
package wireutil

import (
	"github.com/valyala/fastrand"
)

// Uint24ToBytes writes the 24-bit big-endian form of n into b.
func Uint24ToBytes(b []byte, n uint32) {
	_ = b[2] // bound check hint
	b[0] = byte(n >> 16)
	b[1] = byte(n >> 8)
	b[2] = byte(n)
}

// BytesToUint24 reads a 24-bit big-endian value from b.
func BytesToUint24(b []byte) uint32 {
	_ = b[2]
	return uint32(b[0])<<16 | uint32(b[1])<<8 | uint32(b[2])
}

// Uint32ToBytes writes the 32-bit big-endian form of n into b.
func Uint32ToBytes(b []byte, n uint32) {
	_ = b[3]
	b[0] = byte(n >> 24)
	b[1] = byte(n >> 16)
	b[2] = byte(n >> 8)
	b[3] = byte(n)
}

// BytesToUint32 reads a 32-bit big-endian value from b, all 32 bits
// included; see BytesToUint32Masked for stream IDs.
func BytesToUint32(b []byte) uint32 {
	_ = b[3]
	n := uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
	return n
}

// BytesToUint32Masked reads a 32-bit big-endian value and clears the
// reserved top bit, as required for stream IDs on the wire.
func BytesToUint32Masked(b []byte) uint32 {
	return BytesToUint32(b) & (1<<31 - 1)
}

// AppendUint32Bytes appends the 32-bit big-endian form of n to dst.
func AppendUint32Bytes(dst []byte, n uint32) []byte {
	return append(dst, byte(n>>24), byte(n>>16), byte(n>>8), byte(n))
}

// AppendUint24Bytes appends the 24-bit big-endian form of n to dst.
func AppendUint24Bytes(dst []byte, n uint32) []byte {
	return append(dst, byte(n>>16), byte(n>>8), byte(n))
}

// Uint16ToBytes writes the 16-bit big-endian form of n into b.
func Uint16ToBytes(b []byte, n uint16) {
	_ = b[1]
	b[0] = byte(n >> 8)
	b[1] = byte(n)
}

// BytesToUint16 reads a 16-bit big-endian value from b.
func BytesToUint16(b []byte) uint16 {
	_ = b[1]
	return uint16(b[0])<<8 | uint16(b[1])
}

// AddSaturating adds delta to n, clamping at the 31-bit saturation point
// mandated for inbound demand accounting instead of wrapping.
func AddSaturating(n, delta uint32) uint32 {
	const max31 = 1<<31 - 1
	sum := uint64(n) + uint64(delta)
	if sum > max31 {
		return max31
	}
	return uint32(sum)
}

// JitterMillis returns interval plus up to +/-10% pseudo-random jitter,
// using fastrand the way http2utils.AddPadding uses it for non-crypto,
// hot-path randomness.
func JitterMillis(interval uint32) uint32 {
	if interval == 0 {
		return 0
	}
	spread := interval / 10
	if spread == 0 {
		return interval
	}
	delta := int64(fastrand.Uint32n(2*spread+1)) - int64(spread)
	result := int64(interval) + delta
	if result < 1 {
		result = 1
	}
	return uint32(result)
}
