package rsocket

import (
	"net"
	"sync"
	"testing"
	"time"

	"github.com/dgrr/rsocket/transport"
)

type chanSink struct {
	ch      chan Payload
	errCh   chan *RSocketError
	cancels int
}

func (s *chanSink) OnNext(p Payload, isCompletion bool) { s.ch <- p.Clone() }
func (s *chanSink) OnComplete()                         {}
func (s *chanSink) OnError(err *RSocketError)           { s.errCh <- err }
func (s *chanSink) OnCancel()                           { s.cancels++ }
func (s *chanSink) OnRequestN(uint32)                   {}

func newChanSink() *chanSink {
	return &chanSink{ch: make(chan Payload, 4), errCh: make(chan *RSocketError, 4)}
}

type echoResponder struct {
	UnimplementedResponder
}

func (echoResponder) HandleRequestResponse(p Payload, handle StreamHandle) {
	out := p.Clone()
	handle.Complete(&out)
}

func (echoResponder) HandleRequestStream(p Payload, initialRequestN uint32, handle StreamHandle) {
	for i := uint32(0); i < initialRequestN; i++ {
		handle.Next(NewPayload([]byte("item")))
	}
	handle.Complete(nil)
}

func pipeConns() (transport.Conn, transport.Conn, func()) {
	nc1, nc2 := net.Pipe()
	return transport.WrapConn(nc1), transport.WrapConn(nc2), func() {
		nc1.Close()
		nc2.Close()
	}
}

func TestConnectionHandshakeAndRequestResponse(t *testing.T) {
	clientTP, serverTP, closeFn := pipeConns()
	defer closeFn()

	serverOpts := ConnOpts{
		ShouldAcceptClient: func(SetupInfo) AcceptDecision { return Accept() },
		Responder:          echoResponder{},
	}
	server := Accept(serverTP, serverOpts)
	client := Dial(clientTP, ConnOpts{})
	defer client.Close()
	defer server.Close()

	select {
	case <-client.Connected():
	case <-time.After(2 * time.Second):
		t.Fatal("client did not connect")
	}
	select {
	case <-server.Connected():
	case <-time.After(2 * time.Second):
		t.Fatal("server did not connect")
	}
	if err := server.Err(); err != nil {
		t.Fatalf("unexpected server handshake error: %v", err)
	}

	sink := newChanSink()
	if _, err := client.Requester().RequestResponse(NewPayload([]byte("ping")), sink); err != nil {
		t.Fatalf("RequestResponse: %v", err)
	}

	select {
	case p := <-sink.ch:
		if string(p.Data()) != "ping" {
			t.Fatalf("unexpected echoed payload %q", p.Data())
		}
	case err := <-sink.errCh:
		t.Fatalf("unexpected error: %v", err)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for response")
	}
}

func TestConnectionRequestStreamDemand(t *testing.T) {
	clientTP, serverTP, closeFn := pipeConns()
	defer closeFn()

	server := Accept(serverTP, ConnOpts{
		ShouldAcceptClient: func(SetupInfo) AcceptDecision { return Accept() },
		Responder:          echoResponder{},
	})
	client := Dial(clientTP, ConnOpts{})
	defer client.Close()
	defer server.Close()

	<-client.Connected()
	<-server.Connected()

	sink := newChanSink()
	if _, err := client.Requester().RequestStream(NewPayload([]byte("go")), 3, sink); err != nil {
		t.Fatalf("RequestStream: %v", err)
	}

	for i := 0; i < 3; i++ {
		select {
		case p := <-sink.ch:
			if string(p.Data()) != "item" {
				t.Fatalf("unexpected item %q", p.Data())
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for item %d", i)
		}
	}
}

func TestConnectionServerRejectsSetup(t *testing.T) {
	clientTP, serverTP, closeFn := pipeConns()
	defer closeFn()

	server := Accept(serverTP, ConnOpts{
		ShouldAcceptClient: func(SetupInfo) AcceptDecision {
			return Reject(ErrorCodeRejectedSetup, "no thanks")
		},
	})
	client := Dial(clientTP, ConnOpts{})
	defer client.Close()

	select {
	case <-server.Connected():
	case <-time.After(2 * time.Second):
		t.Fatal("server handshake did not resolve")
	}
	if err := server.Err(); err == nil {
		t.Fatal("expected server handshake to report rejection")
	}
}

func TestConnectionSetupDeferredReplay(t *testing.T) {
	clientTP, serverTP, closeFn := pipeConns()
	defer closeFn()

	doneCh := make(chan error, 1)
	server := Accept(serverTP, ConnOpts{
		ShouldAcceptClient: func(SetupInfo) AcceptDecision { return Accept() },
		InitializeConnection: func(info SetupInfo, c *Connection) <-chan error {
			return doneCh
		},
		Responder: echoResponder{},
	})
	client := Dial(clientTP, ConnOpts{})
	defer client.Close()
	defer server.Close()

	<-client.Connected()

	sink := newChanSink()
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if _, err := client.Requester().RequestResponse(NewPayload([]byte("buffered")), sink); err != nil {
			t.Errorf("RequestResponse: %v", err)
		}
	}()

	time.Sleep(20 * time.Millisecond)
	if server.State() != StateEstablishing {
		t.Fatalf("expected server still Establishing, got %s", server.State())
	}

	doneCh <- nil

	select {
	case <-server.Connected():
	case <-time.After(2 * time.Second):
		t.Fatal("server handshake did not resolve after InitializeConnection completed")
	}

	select {
	case p := <-sink.ch:
		if string(p.Data()) != "buffered" {
			t.Fatalf("unexpected echoed payload %q", p.Data())
		}
	case err := <-sink.errCh:
		t.Fatalf("unexpected error: %v", err)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for buffered request to be replayed")
	}
	wg.Wait()
}

// silentResponder accepts request/response interactions and never answers
// them, so the stream stays live until the connection closes.
type silentResponder struct {
	UnimplementedResponder
}

func (silentResponder) HandleRequestResponse(Payload, StreamHandle) {}

func TestConnectionCloseFansOutErrorToLiveStreams(t *testing.T) {
	clientTP, serverTP, closeFn := pipeConns()
	defer closeFn()

	server := Accept(serverTP, ConnOpts{
		ShouldAcceptClient: func(SetupInfo) AcceptDecision { return Accept() },
		Responder:          silentResponder{},
	})
	client := Dial(clientTP, ConnOpts{})
	defer server.Close()

	<-client.Connected()
	<-server.Connected()

	sink := newChanSink()
	if _, err := client.Requester().RequestResponse(NewPayload([]byte("never answered")), sink); err != nil {
		t.Fatalf("RequestResponse: %v", err)
	}

	if err := client.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	select {
	case err := <-sink.errCh:
		if err == nil {
			t.Fatal("expected non-nil synthetic error")
		}
	case p := <-sink.ch:
		t.Fatalf("unexpected payload on a closed connection: %q", p.Data())
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for synthetic error on close")
	}
}
