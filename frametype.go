package rsocket

// FrameType is the 6-bit frame type field of a FrameHeader.
//
// https://rsocket.io/about/protocol/#frame-header-format
type FrameType uint8

const (
	FrameReserved         FrameType = 0x00
	FrameSetup            FrameType = 0x01
	FrameLease            FrameType = 0x02
	FrameKeepalive        FrameType = 0x03
	FrameRequestResponse  FrameType = 0x04
	FrameRequestFNF       FrameType = 0x05
	FrameRequestStream    FrameType = 0x06
	FrameRequestChannel   FrameType = 0x07
	FrameRequestN         FrameType = 0x08
	FrameCancel           FrameType = 0x09
	FramePayload          FrameType = 0x0A
	FrameError            FrameType = 0x0B
	FrameMetadataPush     FrameType = 0x0C
	FrameResume           FrameType = 0x0D
	FrameResumeOK         FrameType = 0x0E
	FrameExt              FrameType = 0x3F

	minFrameType FrameType = FrameReserved
	maxFrameType FrameType = FrameExt
)

var frameTypeNames = map[FrameType]string{
	FrameReserved:        "RESERVED",
	FrameSetup:           "SETUP",
	FrameLease:           "LEASE",
	FrameKeepalive:       "KEEPALIVE",
	FrameRequestResponse: "REQUEST_RESPONSE",
	FrameRequestFNF:      "REQUEST_FNF",
	FrameRequestStream:   "REQUEST_STREAM",
	FrameRequestChannel:  "REQUEST_CHANNEL",
	FrameRequestN:        "REQUEST_N",
	FrameCancel:          "CANCEL",
	FramePayload:         "PAYLOAD",
	FrameError:           "ERROR",
	FrameMetadataPush:    "METADATA_PUSH",
	FrameResume:          "RESUME",
	FrameResumeOK:        "RESUME_OK",
	FrameExt:             "EXT",
}

func (t FrameType) String() string {
	if name, ok := frameTypeNames[t]; ok {
		return name
	}
	return "UNKNOWN"
}

// FrameFlags is the 10-bit flags field of a FrameHeader.
type FrameFlags uint16

const (
	FlagMetadata FrameFlags = 1 << 8
	FlagFollows  FrameFlags = 1 << 7
	FlagComplete FrameFlags = 1 << 6
	FlagNext     FrameFlags = 1 << 5
	FlagIgnore   FrameFlags = 1 << 9
	FlagRespond  FrameFlags = 1 << 7
	FlagLease    FrameFlags = 1 << 6
	FlagResume   FrameFlags = 1 << 7

	flagsMask FrameFlags = 1<<10 - 1
)

// Has reports whether f contains every bit in mask.
func (f FrameFlags) Has(mask FrameFlags) bool {
	return f&mask == mask
}

// Add returns f with mask set.
func (f FrameFlags) Add(mask FrameFlags) FrameFlags {
	return f | mask
}

// Clear returns f with mask cleared.
func (f FrameFlags) Clear(mask FrameFlags) FrameFlags {
	return f &^ mask
}
