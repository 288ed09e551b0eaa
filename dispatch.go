package rsocket

import (
	"time"

	"github.com/dgrr/rsocket/internal/wireutil"
)

// handleRawFrame decodes one wire frame and routes it — the demultiplexer
// (spec.md §4.2). Always called from the connection loop.
func (c *Connection) handleRawFrame(raw []byte) {
	c.lastInboundAt = time.Now()

	f, err := Decode(raw)
	if err != nil {
		c.opts.logger().Warnf("rsocket: decode: %v", err)
		c.shutdown(NewError(ErrorCodeConnectionError, err.Error()), true)
		return
	}

	h := f.Header()
	if h.StreamID == 0 {
		c.handleConnFrame(f)
	} else {
		c.handleStreamFrame(h, f)
	}
	ReleaseFrame(f)
}

func (c *Connection) handleConnFrame(f Frame) {
	switch frame := f.(type) {
	case *KeepaliveFrame:
		if frame.Respond() {
			c.sendFrameNow(NewKeepaliveFrame(false, frame.Data()))
		}
	case *LeaseFrame:
		// LEASE is advisory only in this module (spec.md Non-goals, resumption
		// and flow-control leasing): noted, not enforced.
		c.opts.logger().Debugf("rsocket: lease ttl=%dms requests=%d (advisory)", frame.TTL(), frame.NumberOfRequests())
	case *ErrorFrame:
		c.shutdown(frame.AsError(), false)
	case *MetadataPushFrame:
		c.opts.logger().Debugf("rsocket: metadata push (%d bytes)", len(frame.Metadata()))
	case *ResumeFrame, *ResumeOKFrame:
		c.sendFrameNow(NewErrorFrame(0, ErrorCodeRejectedResume, "resumption not supported"))
		c.shutdown(NewError(ErrorCodeRejectedResume, "resumption not supported"), false)
	case *SetupFrame:
		c.shutdown(NewError(ErrorCodeInvalidSetup, "duplicate SETUP"), true)
	default:
		c.opts.logger().Warnf("rsocket: unexpected connection-level frame %s", f.Header().Type)
	}
}

func (c *Connection) handleStreamFrame(h FrameHeader, f Frame) {
	entry := c.registry.get(h.StreamID)
	if entry == nil {
		c.handleUnknownStream(h, f)
		return
	}

	switch frame := f.(type) {
	case *PayloadFrame:
		c.handlePayload(entry, frame)
	case *RequestNFrame:
		if entry.local == HalfClosed {
			c.lateFrameHandler(entry)(f)
			return
		}
		entry.outboundDemand = wireutil.AddSaturating(entry.outboundDemand, frame.N())
		entry.sink.OnRequestN(frame.N())
	case *CancelFrame:
		if entry.local == HalfClosed {
			return
		}
		entry.local = HalfClosed
		entry.sink.OnCancel()
		c.registry.reapIfTerminated(entry)
	case *ErrorFrame:
		entry.local = HalfClosed
		entry.remote = HalfClosed
		entry.sink.OnError(frame.AsError())
		c.registry.reapIfTerminated(entry)
	default:
		c.opts.logger().Warnf("rsocket: unexpected frame %s on stream %d", h.Type, h.StreamID)
	}
}

// handlePayload applies a PAYLOAD frame to an existing stream entry,
// including fragment reassembly (spec.md §4.5 fragmentation rules).
func (c *Connection) handlePayload(entry *streamEntry, frame *PayloadFrame) {
	if entry.remote == HalfClosed {
		c.lateFrameHandler(entry)(frame)
		return
	}

	p := frame.Payload()

	if frame.Follows() {
		if entry.fragment == nil {
			entry.fragment = newFragmentAssembly(FramePayload, c.opts.FragmentReassemblyCap)
		}
		if err := entry.fragment.append(p); err != nil {
			entry.remote = HalfClosed
			entry.local = HalfClosed
			entry.sink.OnError(NewError(ErrorCodeCanceled, err.Error()))
			c.registry.reapIfTerminated(entry)
		}
		return
	}

	if entry.fragment != nil {
		if err := entry.fragment.append(p); err != nil {
			entry.fragment = nil
			entry.remote = HalfClosed
			entry.local = HalfClosed
			entry.sink.OnError(NewError(ErrorCodeCanceled, err.Error()))
			c.registry.reapIfTerminated(entry)
			return
		}
		p = entry.fragment.finish()
		entry.fragment = nil
	}

	if frame.Next() {
		entry.sink.OnNext(p, frame.Complete())
	}
	if frame.Complete() {
		entry.remote = HalfClosed
		if !frame.Next() {
			entry.sink.OnComplete()
		}
		c.registry.reapIfTerminated(entry)
	}
}

// lateFrameHandler picks the callback for a late frame arriving on a known
// registry entry: requesterLate if we initiated the stream (we are its
// requester), responderLate if the peer did (we are its responder) — the
// same role distinction handleUnknownStream draws via isOwnParity for
// stream IDs with no entry left at all.
func (c *Connection) lateFrameHandler(entry *streamEntry) func(Frame) {
	if entry.initiatedByUs {
		return c.opts.requesterLate()
	}
	return c.opts.responderLate()
}

// handleUnknownStream decides, for a frame naming a stream ID with no live
// registry entry, whether it initiates a new responder-side stream or is a
// late frame for one already reaped (spec.md §4.2 Open Question, resolved
// by stream-ID parity: an ID of our own parity can only have been one we
// allocated as requester, so any frame for it once gone is a requester-side
// late frame; an ID of the peer's parity was either never used or was a
// responder-side stream we've since reaped).
func (c *Connection) handleUnknownStream(h FrameHeader, f Frame) {
	if c.isOwnParity(h.StreamID) {
		c.opts.requesterLate()(f)
		return
	}

	switch frame := f.(type) {
	case *RequestResponseFrame:
		c.acceptNewResponderStream(h.StreamID, KindRequestResponse, frame.Payload(), 0, false)
	case *RequestFNFFrame:
		if frame.Follows() {
			c.opts.logger().Warnf("rsocket: fragmented REQUEST_FNF on unknown stream %d unsupported", h.StreamID)
			return
		}
		c.opts.responder().HandleFireAndForget(frame.Payload())
	case *RequestStreamFrame:
		c.acceptNewResponderStream(h.StreamID, KindRequestStream, frame.Payload(), frame.InitialRequestN(), false)
	case *RequestChannelFrame:
		c.acceptNewResponderStream(h.StreamID, KindRequestChannel, frame.Payload(), frame.InitialRequestN(), frame.Complete())
	default:
		c.opts.responderLate()(f)
	}
}

func (c *Connection) acceptNewResponderStream(id uint32, kind StreamKind, p Payload, initialRequestN uint32, remoteComplete bool) {
	if c.opts.MaxConcurrentStreams > 0 && c.registry.len() >= c.opts.MaxConcurrentStreams {
		c.sendFrameNow(NewErrorFrame(id, ErrorCodeRejected, "MAX_CONCURRENT_STREAMS exceeded"))
		return
	}

	entry := &streamEntry{
		id:             id,
		kind:           kind,
		initiatedByUs:  false,
		outboundDemand: initialRequestN,
	}
	// Request/response has exactly one inbound frame; the remote half is
	// already closed the moment it's accepted (spec.md §4.5 RR), same as
	// a channel whose initiating frame carried COMPLETE.
	if remoteComplete || kind == KindRequestResponse {
		entry.remote = HalfClosed
	}
	c.registry.insert(entry)

	handle := StreamHandle{id: id, conn: c}

	switch kind {
	case KindRequestResponse:
		entry.sink = newGuardedSink(NopSink{})
		c.opts.responder().HandleRequestResponse(p, handle)
	case KindRequestStream:
		entry.sink = newGuardedSink(NopSink{})
		c.opts.responder().HandleRequestStream(p, initialRequestN, handle)
	case KindRequestChannel:
		sink := c.opts.responder().HandleRequestChannel(p, initialRequestN, remoteComplete, handle)
		entry.sink = newGuardedSink(sink)
	}

	c.registry.reapIfTerminated(entry)
}
