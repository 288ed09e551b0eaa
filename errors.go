package rsocket

import (
	"fmt"
)

// ErrorCode is the 32-bit error code carried by an ERROR frame.
//
// https://rsocket.io/about/protocol/#error-codes
type ErrorCode uint32

// Known error codes (spec.md §4.1).
const (
	ErrorCodeInvalidSetup      ErrorCode = 0x00000001
	ErrorCodeUnsupportedSetup  ErrorCode = 0x00000002
	ErrorCodeRejectedSetup     ErrorCode = 0x00000003
	ErrorCodeRejectedResume    ErrorCode = 0x00000004
	ErrorCodeConnectionError   ErrorCode = 0x00000101
	ErrorCodeConnectionClose   ErrorCode = 0x00000102
	ErrorCodeApplicationError  ErrorCode = 0x00000201
	ErrorCodeRejected          ErrorCode = 0x00000202
	ErrorCodeCanceled          ErrorCode = 0x00000203
	ErrorCodeInvalid           ErrorCode = 0x00000204
)

var errorCodeNames = map[ErrorCode]string{
	ErrorCodeInvalidSetup:     "INVALID_SETUP",
	ErrorCodeUnsupportedSetup: "UNSUPPORTED_SETUP",
	ErrorCodeRejectedSetup:    "REJECTED_SETUP",
	ErrorCodeRejectedResume:   "REJECTED_RESUME",
	ErrorCodeConnectionError:  "CONNECTION_ERROR",
	ErrorCodeConnectionClose:  "CONNECTION_CLOSE",
	ErrorCodeApplicationError: "APPLICATION_ERROR",
	ErrorCodeRejected:         "REJECTED",
	ErrorCodeCanceled:         "CANCELED",
	ErrorCodeInvalid:          "INVALID",
}

func (c ErrorCode) String() string {
	if name, ok := errorCodeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("ERROR_CODE(0x%08x)", uint32(c))
}

// RSocketError is the application-visible representation of an ERROR frame,
// either received from the peer or synthesized locally (e.g. on connection
// shutdown). It implements error.
type RSocketError struct {
	Code ErrorCode
	Data string
}

func (e *RSocketError) Error() string {
	if e.Data == "" {
		return e.Code.String()
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Data)
}

// NewError builds an *RSocketError for the given code and message.
func NewError(code ErrorCode, data string) *RSocketError {
	return &RSocketError{Code: code, Data: data}
}

// CodecErrorKind enumerates the fatal decode failures from spec.md §4.1/§7.
type CodecErrorKind int

const (
	ErrInsufficientBytes CodecErrorKind = iota + 1
	ErrInvalidHeader
	ErrInvalidStreamID
	ErrUnsupportedFrameType
	ErrInvalidMetadataLength
)

func (k CodecErrorKind) String() string {
	switch k {
	case ErrInsufficientBytes:
		return "InsufficientBytes"
	case ErrInvalidHeader:
		return "InvalidHeader"
	case ErrInvalidStreamID:
		return "InvalidStreamID"
	case ErrUnsupportedFrameType:
		return "UnsupportedFrameType"
	case ErrInvalidMetadataLength:
		return "InvalidMetadataLength"
	}
	return "Unknown"
}

// CodecError is returned by Decode/Encode for malformed wire data. Every
// CodecError is fatal at the connection level (spec.md §7): the caller is
// expected to send ERROR(CONNECTION_ERROR) on stream 0 and close.
type CodecError struct {
	Kind CodecErrorKind
	Msg  string
}

func (e *CodecError) Error() string {
	if e.Msg == "" {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func newCodecErr(kind CodecErrorKind, msg string) *CodecError {
	return &CodecError{Kind: kind, Msg: msg}
}
