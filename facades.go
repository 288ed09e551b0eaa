package rsocket

import "github.com/dgrr/rsocket/internal/wireutil"

// StreamHandle is the loop-bound handle for one stream's local half. A
// Responder callback uses it to emit its side of an interaction; the
// Requester facade hands one back to the caller so they can cancel or grant
// demand (spec.md §4.6 C6). All methods submit onto the connection loop and
// return immediately — none block on the peer.
type StreamHandle struct {
	id   uint32
	conn *Connection
}

// ID returns the stream's wire ID.
func (h StreamHandle) ID() uint32 { return h.id }

// Next emits PAYLOAD(NEXT) carrying p. A no-op once this side's half has
// already closed. For request/stream and request/channel interactions this
// consumes one unit of granted demand (spec.md §4.5 demand-safety); a call
// made with no demand available is dropped rather than sent, since this
// side must never emit more than the peer has granted via REQUEST_N.
// Request/response has no explicit demand to track and is never gated.
func (h StreamHandle) Next(p Payload) {
	h.conn.submit(func(c *Connection) {
		e := c.registry.get(h.id)
		if e == nil || e.local == HalfClosed {
			return
		}
		if e.kind != KindRequestResponse {
			if e.outboundDemand == 0 {
				return
			}
			e.outboundDemand--
		}
		c.sendFrameNow(NewPayloadFrame(h.id, p, true, false))
	})
}

// Complete closes this side's half, optionally carrying a final payload
// (PAYLOAD(NEXT|COMPLETE)) when p is non-nil, or a bare PAYLOAD(COMPLETE)
// when it is nil.
func (h StreamHandle) Complete(p *Payload) {
	h.conn.submit(func(c *Connection) {
		e := c.registry.get(h.id)
		if e == nil || e.local == HalfClosed {
			return
		}
		e.local = HalfClosed
		if p != nil {
			c.sendFrameNow(NewPayloadFrame(h.id, *p, true, true))
		} else {
			c.sendFrameNow(NewPayloadFrame(h.id, Payload{}, false, true))
		}
		c.registry.reapIfTerminated(e)
	})
}

// Error terminates the whole stream (both halves) with ERROR(code,
// message), per spec.md §4.5 ERROR terminality.
func (h StreamHandle) Error(code ErrorCode, message string) {
	h.conn.submit(func(c *Connection) {
		e := c.registry.get(h.id)
		if e == nil || e.local == HalfClosed {
			return
		}
		e.local = HalfClosed
		e.remote = HalfClosed
		c.sendFrameNow(NewErrorFrame(h.id, code, message))
		c.registry.reapIfTerminated(e)
	})
}

// Cancel closes both halves of the stream and tells the peer to stop
// sending (spec.md §4.5/§5: CANCEL emitted by the requester closes local
// and remote). Idempotent.
func (h StreamHandle) Cancel() {
	h.conn.submit(func(c *Connection) {
		e := c.registry.get(h.id)
		if e == nil || e.remote == HalfClosed {
			return
		}
		e.local = HalfClosed
		e.remote = HalfClosed
		c.sendFrameNow(NewCancelFrame(h.id))
		c.registry.reapIfTerminated(e)
	})
}

// RequestN grants the peer n additional units of demand to emit with. A
// no-op for n == 0 or once the peer's half has already closed.
func (h StreamHandle) RequestN(n uint32) {
	if n == 0 {
		return
	}
	h.conn.submit(func(c *Connection) {
		e := c.registry.get(h.id)
		if e == nil || e.remote == HalfClosed {
			return
		}
		e.inboundDemand = wireutil.AddSaturating(e.inboundDemand, n)
		c.sendFrameNow(NewRequestNFrame(h.id, n))
	})
}

// Requester is the facade an application uses to initiate interactions on
// a Connection (spec.md §4.6 C6). Safe for concurrent use from any
// goroutine — every call crosses into the connection loop via submit.
type Requester struct {
	conn *Connection
}

// allocateAndInsert runs on the connection loop: it allocates the next
// stream ID of this side's parity, inserts a registry entry for it, and
// returns the new entry (or an error if the ID space is exhausted). Stream
// ID exhaustion is fatal to the whole connection (spec.md §4.4/§7): it
// announces ERROR(CONNECTION_ERROR) and shuts down rather than merely
// failing the one request.
func (c *Connection) allocateAndInsert(kind StreamKind, sink Sink, inboundDemand uint32) (*streamEntry, error) {
	id, err := c.allocator.allocate(c.registry.has)
	if err != nil {
		c.shutdown(NewError(ErrorCodeConnectionError, err.Error()), true)
		return nil, err
	}
	e := &streamEntry{
		id:            id,
		kind:          kind,
		initiatedByUs: true,
		inboundDemand: inboundDemand,
		sink:          newGuardedSink(sink),
	}
	c.registry.insert(e)
	return e, nil
}

// FireAndForget sends a REQUEST_FNF; there is no response to wait for.
func (r *Requester) FireAndForget(p Payload) error {
	var retErr error
	r.conn.submitWait(func(c *Connection) {
		id, err := c.allocator.allocate(c.registry.has)
		if err != nil {
			c.shutdown(NewError(ErrorCodeConnectionError, err.Error()), true)
			retErr = err
			return
		}
		retErr = c.sendFrameNow(NewRequestFNFFrame(id, p))
	})
	return retErr
}

// RequestResponse initiates a request/response interaction. sink receives
// exactly one terminal event (OnNext(isCompletion=true), OnComplete, or
// OnError) via the returned StreamHandle's connection.
func (r *Requester) RequestResponse(p Payload, sink Sink) (StreamHandle, error) {
	var handle StreamHandle
	var retErr error
	r.conn.submitWait(func(c *Connection) {
		e, err := c.allocateAndInsert(KindRequestResponse, sink, 0)
		if err != nil {
			retErr = err
			return
		}
		if err := c.sendFrameNow(NewRequestResponseFrame(e.id, p)); err != nil {
			retErr = err
			return
		}
		// Request/response has exactly one frame in each direction: once
		// it's sent, this side's half is already closed (spec.md §4.5 RR).
		e.local = HalfClosed
		c.registry.reapIfTerminated(e)
		handle = StreamHandle{id: e.id, conn: c}
	})
	return handle, retErr
}

// RequestStream initiates a request/stream interaction, granting
// initialRequestN items of demand up front.
func (r *Requester) RequestStream(p Payload, initialRequestN uint32, sink Sink) (StreamHandle, error) {
	var handle StreamHandle
	var retErr error
	r.conn.submitWait(func(c *Connection) {
		e, err := c.allocateAndInsert(KindRequestStream, sink, initialRequestN)
		if err != nil {
			retErr = err
			return
		}
		if err := c.sendFrameNow(NewRequestStreamFrame(e.id, initialRequestN, p)); err != nil {
			retErr = err
			return
		}
		handle = StreamHandle{id: e.id, conn: c}
	})
	return handle, retErr
}

// RequestChannel initiates a bidirectional request/channel interaction.
// sink receives the responder's NEXT/COMPLETE/ERROR/REQUEST_N events; the
// returned StreamHandle emits this side's own NEXT/COMPLETE/CANCEL. Set
// isCompleted when the caller's very first payload is also its last.
func (r *Requester) RequestChannel(p Payload, initialRequestN uint32, isCompleted bool, sink Sink) (StreamHandle, error) {
	var handle StreamHandle
	var retErr error
	r.conn.submitWait(func(c *Connection) {
		e, err := c.allocateAndInsert(KindRequestChannel, sink, initialRequestN)
		if err != nil {
			retErr = err
			return
		}
		if isCompleted {
			e.local = HalfClosed
		}
		if err := c.sendFrameNow(NewRequestChannelFrame(e.id, initialRequestN, p, isCompleted)); err != nil {
			retErr = err
			return
		}
		handle = StreamHandle{id: e.id, conn: c}
	})
	return handle, retErr
}

// MetadataPush sends connection-level metadata with no associated stream.
func (r *Requester) MetadataPush(metadata []byte) error {
	var retErr error
	r.conn.submitWait(func(c *Connection) {
		retErr = c.sendFrameNow(NewMetadataPushFrame(metadata))
	})
	return retErr
}
