package rsocket

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/dgrr/rsocket/internal/wireutil"
	"github.com/dgrr/rsocket/transport"
)

// Connection is one RSocket connection: the demultiplexer (C2), the
// connection-level state machine (C3), and the stream registry (C4) all
// live here, serialized on a single "connection loop" goroutine per
// spec.md §5 — the same event-loop shape the teacher's Conn/serverConn
// give their reader goroutine feeding a single writer.
type Connection struct {
	role Role
	tp   transport.Conn
	opts ConnOpts

	allocator *streamIDAllocator
	registry  streamRegistry

	state atomic.Int32

	rawIn chan []byte
	work  chan func(*Connection)

	closeOnce sync.Once
	closeCh   chan struct{}
	closeErr  error
	closeMu   sync.Mutex

	lastInboundAt time.Time

	connected    chan struct{}
	connectedErr error
	connectOnce  sync.Once

	requester *Requester
}

// Dial establishes a client connection: it starts the connection loop and
// submits SETUP as the loop's first work item (it is always the first
// outbound frame on a client connection, spec.md §5). Dial returns once
// SETUP has been written (or the connection has closed), so Connected()
// has already fired by the time the caller gets the Requester.
func Dial(tc transport.Conn, opts ConnOpts) *Connection {
	c := newConnection(RoleClient, tc, opts)
	c.requester = &Requester{conn: c}

	go c.readLoop()
	go c.loop()

	c.submitWait(func(cc *Connection) {
		cc.sendSetup()
		cc.state.Store(int32(StateActive))
		cc.markConnected(nil)
	})

	return c
}

// Accept wraps an already-accepted server-side net.Conn/transport.Conn and
// starts the connection loop in StateAwaitingSetup.
func Accept(tc transport.Conn, opts ConnOpts) *Connection {
	c := newConnection(RoleServer, tc, opts)
	c.requester = &Requester{conn: c}

	go c.readLoop()
	go c.loop()

	return c
}

func newConnection(role Role, tc transport.Conn, opts ConnOpts) *Connection {
	if opts.KeepaliveInterval <= 0 {
		opts.KeepaliveInterval = defaultKeepaliveInterval
	}
	if opts.MaxLifetime <= 0 {
		opts.MaxLifetime = defaultMaxLifetime
	}
	c := &Connection{
		role:          role,
		tp:            tc,
		opts:          opts,
		allocator:     newStreamIDAllocator(role),
		rawIn:         make(chan []byte, 64),
		work:          make(chan func(*Connection), 64),
		closeCh:       make(chan struct{}),
		connected:     make(chan struct{}),
		lastInboundAt: time.Now(),
	}
	initialState := StateAwaitingSetup
	if role == RoleClient {
		initialState = StateEstablishing
	}
	c.state.Store(int32(initialState))
	return c
}

// Role reports which side of the handshake this connection played.
func (c *Connection) Role() Role { return c.role }

// State reports the current connection-level state.
func (c *Connection) State() ConnState { return ConnState(c.state.Load()) }

// Requester returns the facade used to initiate interactions on this
// connection (spec.md §4.6 C6).
func (c *Connection) Requester() *Requester { return c.requester }

// Connected returns a channel closed once the SETUP handshake completes
// (client: immediately after sending SETUP; server: once the connection
// reaches StateActive). Err returns the reason it failed, if any.
func (c *Connection) Connected() <-chan struct{} { return c.connected }

// Err returns the error (nil on a clean accept) observed once Connected
// fires.
func (c *Connection) Err() error {
	<-c.connected
	return c.connectedErr
}

func (c *Connection) markConnected(err error) {
	c.connectOnce.Do(func() {
		c.connectedErr = err
		close(c.connected)
	})
}

// submit enqueues fn to run on the connection loop, returning without
// waiting for it to execute. This is the "explicit submit primitive"
// spec.md §5 requires for crossing from an application goroutine into the
// loop.
func (c *Connection) submit(fn func(*Connection)) {
	select {
	case c.work <- fn:
	case <-c.closeCh:
	}
}

// submitWait is like submit but blocks the caller until fn has run (or the
// connection closes first). Used internally where the caller needs a
// result back, e.g. stream ID allocation.
func (c *Connection) submitWait(fn func(*Connection)) {
	done := make(chan struct{})
	c.submit(func(cc *Connection) {
		fn(cc)
		close(done)
	})
	select {
	case <-done:
	case <-c.closeCh:
	}
}

func (c *Connection) readLoop() {
	for {
		raw, err := c.tp.ReadFrame()
		if err != nil {
			close(c.rawIn)
			return
		}
		select {
		case c.rawIn <- raw:
		case <-c.closeCh:
			return
		}
	}
}

func (c *Connection) loop() {
	// Jitter the ticker interval so many connections opened back-to-back
	// (e.g. a client reconnecting a pool) don't all tick in lockstep.
	jittered := wireutil.JitterMillis(uint32(c.opts.KeepaliveInterval / time.Millisecond))
	keepaliveTicker := time.NewTicker(time.Duration(jittered) * time.Millisecond)
	defer keepaliveTicker.Stop()

	for {
		select {
		case raw, ok := <-c.rawIn:
			if !ok {
				c.shutdown(NewError(ErrorCodeConnectionError, "transport closed"), false)
				return
			}
			if c.State() == StateAwaitingSetup {
				c.establishServer(raw)
				if c.State() == StateClosed {
					return
				}
				continue
			}
			c.handleRawFrame(raw)
			if c.State() == StateClosed {
				return
			}
		case fn := <-c.work:
			fn(c)
			if c.State() == StateClosed {
				return
			}
		case <-keepaliveTicker.C:
			c.onKeepaliveTick()
		case <-c.closeCh:
			return
		}
	}
}

func (c *Connection) onKeepaliveTick() {
	if time.Since(c.lastInboundAt) > c.opts.MaxLifetime {
		c.shutdown(NewError(ErrorCodeConnectionError, "keepalive deadline exceeded"), true)
		return
	}
	c.sendFrameNow(NewKeepaliveFrame(true, nil))
}

// --- setup handshake -------------------------------------------------

func (c *Connection) sendSetup() {
	sf := NewSetupFrame(uint32(c.opts.KeepaliveInterval/time.Millisecond), uint32(c.opts.MaxLifetime/time.Millisecond),
		c.opts.MetadataMimeType, c.opts.DataMimeType, c.opts.SetupPayload)
	sf.SetHonorsLease(c.opts.HonorsLease)
	if c.opts.UseResumeToken {
		sf.SetResumeToken([]byte(uuid.NewString()))
	}
	c.sendFrameNow(sf)
}

func buildSetupInfo(sf *SetupFrame) SetupInfo {
	major, minor := sf.Version()
	token, hasToken := sf.ResumeToken()
	return SetupInfo{
		Major:             major,
		Minor:             minor,
		KeepaliveInterval: time.Duration(sf.KeepaliveInterval()) * time.Millisecond,
		MaxLifetime:       time.Duration(sf.MaxLifetime()) * time.Millisecond,
		MetadataMimeType:  sf.MetadataMimeType(),
		DataMimeType:      sf.DataMimeType(),
		Payload:           sf.Payload(),
		HonorsLease:       sf.HonorsLease(),
		ResumeToken:       token,
		HasResumeToken:    hasToken,
	}
}

// establishServer runs the server-side SETUP handshake of spec.md §4.3,
// including the deferred-replay behavior while InitializeConnection is
// pending (testable property 6).
func (c *Connection) establishServer(raw []byte) {
	f, err := Decode(raw)
	if err != nil {
		c.shutdown(NewError(ErrorCodeConnectionError, err.Error()), true)
		return
	}
	sf, ok := f.(*SetupFrame)
	if !ok {
		c.shutdown(NewError(ErrorCodeInvalidSetup, "first frame was not SETUP"), true)
		return
	}

	info := buildSetupInfo(sf)
	ReleaseFrame(sf)

	if c.opts.ShouldAcceptClient == nil {
		c.shutdown(NewError(ErrorCodeRejectedSetup, "server has no ShouldAcceptClient"), true)
		return
	}
	decision := c.opts.ShouldAcceptClient(info)
	if !decision.accept {
		c.sendFrameNow(NewErrorFrame(0, decision.code, decision.message))
		c.shutdown(NewError(decision.code, decision.message), false)
		return
	}

	c.opts.KeepaliveInterval = info.KeepaliveInterval
	c.opts.MaxLifetime = info.MaxLifetime

	if c.opts.InitializeConnection == nil {
		c.state.Store(int32(StateActive))
		c.markConnected(nil)
		return
	}

	c.state.Store(int32(StateEstablishing))
	doneCh := c.opts.InitializeConnection(info, c)

	var buffered [][]byte
	for {
		select {
		case raw, ok := <-c.rawIn:
			if !ok {
				c.shutdown(NewError(ErrorCodeConnectionError, "transport closed during setup"), false)
				return
			}
			buffered = append(buffered, raw)
		case fn := <-c.work:
			fn(c)
		case err := <-doneCh:
			if err != nil {
				c.sendFrameNow(NewErrorFrame(0, ErrorCodeRejectedSetup, err.Error()))
				c.shutdown(NewError(ErrorCodeRejectedSetup, err.Error()), false)
				return
			}
			c.state.Store(int32(StateActive))
			c.markConnected(nil)
			for _, bufRaw := range buffered {
				c.handleRawFrame(bufRaw)
				if c.State() == StateClosed {
					return
				}
			}
			return
		case <-c.closeCh:
			return
		}
	}
}

// --- outbound frame emission ------------------------------------------

// sendFrameNow encodes and writes f, flushing immediately. Only ever
// called from the connection loop, so outbound wire order equals the
// order these calls happen in (spec.md §5).
func (c *Connection) sendFrameNow(f Frame) error {
	b, err := Encode(f)
	if err != nil {
		c.opts.logger().Errorf("rsocket: encode %s: %v", f.Header().Type, err)
		return err
	}
	if err := c.tp.WriteFrame(b); err != nil {
		c.opts.logger().Warnf("rsocket: write %s: %v", f.Header().Type, err)
		return err
	}
	return c.tp.Flush()
}

// --- shutdown ----------------------------------------------------------

// Close gracefully shuts down the connection: it sends ERROR(CONNECTION_CLOSE)
// on stream 0 and then closes the transport (spec.md §4.3).
func (c *Connection) Close() error {
	done := make(chan struct{})
	var retErr error
	c.submit(func(cc *Connection) {
		retErr = cc.shutdown(NewError(ErrorCodeConnectionClose, "local close"), true)
		close(done)
	})
	select {
	case <-done:
	case <-c.closeCh:
	}
	return retErr
}

// shutdown transitions to Closed, optionally announcing the reason to the
// peer, fans the synthetic error out to every live stream, and tears down
// the transport. Safe to call more than once; only the first call acts.
func (c *Connection) shutdown(reason *RSocketError, announce bool) error {
	var err error
	c.closeOnce.Do(func() {
		c.state.Store(int32(StateClosing))
		if announce {
			err = c.sendFrameNow(NewErrorFrame(0, reason.Code, reason.Data))
		}
		for _, e := range c.registry.all() {
			if e.sink != nil {
				e.sink.OnError(reason)
			}
		}
		c.registry.list = nil
		c.state.Store(int32(StateClosed))
		c.markConnected(errors.Wrap(reason, "rsocket: connection closed"))
		closeErr := c.tp.Close()
		if err == nil {
			err = closeErr
		}
		close(c.closeCh)
	})
	return err
}

// isOwnParity reports whether id has the parity this side allocates —
// used to route late frames for unknown stream IDs (spec.md §4.2): an ID
// of our own parity names a stream we must have initiated as requester and
// since reaped, while the peer's parity names one we'd have had to accept
// as responder and since reaped.
func (c *Connection) isOwnParity(id uint32) bool {
	if c.role == RoleClient {
		return id%2 == 1
	}
	return id%2 == 0
}
