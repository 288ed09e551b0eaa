package rsocket

import "time"

// ConnState is the connection-level lifecycle (spec.md §4.3).
type ConnState int32

const (
	StateAwaitingSetup ConnState = iota
	StateEstablishing
	StateActive
	StateClosing
	StateClosed
)

func (s ConnState) String() string {
	switch s {
	case StateAwaitingSetup:
		return "AwaitingSetup"
	case StateEstablishing:
		return "Establishing"
	case StateActive:
		return "Active"
	case StateClosing:
		return "Closing"
	case StateClosed:
		return "Closed"
	}
	return "Unknown"
}

// SetupInfo is what a server-side integrator's ShouldAcceptClient callback
// receives, taken straight off the inbound SETUP frame.
type SetupInfo struct {
	Major, Minor             uint16
	KeepaliveInterval        time.Duration
	MaxLifetime              time.Duration
	MetadataMimeType         string
	DataMimeType             string
	Payload                  Payload
	HonorsLease              bool
	ResumeToken              []byte
	HasResumeToken           bool
}

// AcceptDecision is returned by ShouldAcceptClient.
type AcceptDecision struct {
	accept  bool
	code    ErrorCode
	message string
}

// Accept admits the client.
func Accept() AcceptDecision { return AcceptDecision{accept: true} }

// Reject refuses the client with the given ERROR frame code/message.
func Reject(code ErrorCode, message string) AcceptDecision {
	return AcceptDecision{accept: false, code: code, message: message}
}

// Responder is the set of callbacks invoked when the peer initiates a new
// request on this connection (spec.md §4.6). Every method is invoked on
// the connection loop and must not block.
type Responder interface {
	// HandleFireAndForget delivers a REQUEST_FNF payload; there is nothing
	// to respond with.
	HandleFireAndForget(p Payload)
	// HandleRequestResponse must eventually call exactly one of
	// handle.Complete/handle.Error.
	HandleRequestResponse(p Payload, handle StreamHandle)
	// HandleRequestStream may call handle.Next any number of times
	// (bounded by granted demand) followed by exactly one of
	// handle.Complete/handle.Error.
	HandleRequestStream(p Payload, initialRequestN uint32, handle StreamHandle)
	// HandleRequestChannel returns the Sink that receives the requester's
	// own NEXT/COMPLETE/ERROR/CANCEL/REQUEST_N events; the responder uses
	// handle to emit its own side of the channel.
	HandleRequestChannel(p Payload, initialRequestN uint32, isCompleted bool, handle StreamHandle) Sink
}

// UnimplementedResponder rejects every request/response, request/stream
// and request/channel with ErrorCodeRejected and drops fire-and-forget
// payloads (there is no response to reject them with); embed it to implement only the methods a given integrator cares about,
// mirroring the teacher's habit of leaving unimplemented HTTP/2 frame
// handlers as explicit no-ops rather than letting a nil interface panic.
type UnimplementedResponder struct{}

func (UnimplementedResponder) HandleFireAndForget(Payload) {}

func (UnimplementedResponder) HandleRequestResponse(p Payload, handle StreamHandle) {
	handle.Error(ErrorCodeRejected, "not implemented")
}

func (UnimplementedResponder) HandleRequestStream(p Payload, initialRequestN uint32, handle StreamHandle) {
	handle.Error(ErrorCodeRejected, "not implemented")
}

func (UnimplementedResponder) HandleRequestChannel(p Payload, initialRequestN uint32, isCompleted bool, handle StreamHandle) Sink {
	handle.Error(ErrorCodeRejected, "not implemented")
	return NopSink{}
}

// ConnOpts configures a Connection. Zero-value ConnOpts is a usable
// (if minimal) client configuration; server configurations must set
// ShouldAcceptClient.
type ConnOpts struct {
	KeepaliveInterval time.Duration
	MaxLifetime       time.Duration
	MetadataMimeType  string
	DataMimeType      string
	SetupPayload      Payload
	HonorsLease       bool
	UseResumeToken    bool

	// ShouldAcceptClient gates an inbound SETUP on the server side
	// (spec.md §4.3). Required for server connections.
	ShouldAcceptClient func(info SetupInfo) AcceptDecision

	// InitializeConnection, if set, lets the server defer going Active
	// until async setup (e.g. provisioning session state) completes.
	// Frames received in the meantime are buffered and replayed in order
	// (spec.md §4.3, testable property 6). The channel must eventually
	// receive exactly one value.
	InitializeConnection func(info SetupInfo, c *Connection) <-chan error

	Responder Responder

	RequesterLateFrameHandler func(Frame)
	ResponderLateFrameHandler func(Frame)

	// MaxConcurrentStreams bounds responder-side admission; 0 means
	// unbounded (spec.md §4.4). Exceeding it answers the request
	// initiation with ERROR(REJECTED) instead of creating a stream.
	MaxConcurrentStreams int

	// FragmentReassemblyCap bounds the total bytes a fragmented payload
	// may reassemble to before the stream is failed with
	// ERROR(CANCELED); 0 means unbounded (spec.md §4.5, §9).
	FragmentReassemblyCap int

	Logger Logger
}

func (o *ConnOpts) logger() Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return nopLogger{}
}

func (o *ConnOpts) responder() Responder {
	if o.Responder != nil {
		return o.Responder
	}
	return UnimplementedResponder{}
}

func (o *ConnOpts) requesterLate() func(Frame) {
	if o.RequesterLateFrameHandler != nil {
		return o.RequesterLateFrameHandler
	}
	return func(Frame) {}
}

func (o *ConnOpts) responderLate() func(Frame) {
	if o.ResponderLateFrameHandler != nil {
		return o.ResponderLateFrameHandler
	}
	return func(Frame) {}
}

const (
	defaultKeepaliveInterval = 20 * time.Second
	defaultMaxLifetime       = 90 * time.Second
)
