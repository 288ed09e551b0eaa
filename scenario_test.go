package rsocket

import (
	"testing"
	"time"
)

// Scenario tests exercising the concrete end-to-end walkthroughs: metadata
// push, fire-and-forget, request/channel echo, and mid-stream application
// error.

func TestScenarioMetadataPush(t *testing.T) {
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

	if err := client.Requester().MetadataPush([]byte("Hello World")); err != nil {
		t.Fatalf("MetadataPush: %v", err)
	}

	// METADATA_PUSH carries no response; the connection must still be live
	// afterwards, so drive an ordinary request/response across it.
	sink := newChanSink()
	if _, err := client.Requester().RequestResponse(NewPayload([]byte("still alive")), sink); err != nil {
		t.Fatalf("RequestResponse after MetadataPush: %v", err)
	}
	select {
	case p := <-sink.ch:
		if string(p.Data()) != "still alive" {
			t.Fatalf("unexpected echoed payload %q", p.Data())
		}
	case err := <-sink.errCh:
		t.Fatalf("unexpected error: %v", err)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for response after metadata push")
	}
}

type fnfResponder struct {
	UnimplementedResponder
	got chan Payload
}

func (r *fnfResponder) HandleFireAndForget(p Payload) {
	r.got <- p.Clone()
}

func TestScenarioFireAndForget(t *testing.T) {
	clientTP, serverTP, closeFn := pipeConns()
	defer closeFn()

	responder := &fnfResponder{got: make(chan Payload, 1)}
	server := Accept(serverTP, ConnOpts{
		ShouldAcceptClient: func(SetupInfo) AcceptDecision { return Accept() },
		Responder:          responder,
	})
	client := Dial(clientTP, ConnOpts{})
	defer client.Close()
	defer server.Close()

	<-client.Connected()
	<-server.Connected()

	if err := client.Requester().FireAndForget(NewPayload([]byte("Hello World"))); err != nil {
		t.Fatalf("FireAndForget: %v", err)
	}

	select {
	case p := <-responder.got:
		if string(p.Data()) != "Hello World" {
			t.Fatalf("unexpected payload %q", p.Data())
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for fire-and-forget delivery")
	}
}

// channelEchoResponder grants the requester enough demand to send its
// remaining letters, then echoes every payload it receives back to the
// requester, completing once the requester completes.
type channelEchoResponder struct {
	UnimplementedResponder
}

type channelEchoSink struct {
	handle StreamHandle
}

func (s *channelEchoSink) OnNext(p Payload, isCompletion bool) {
	s.handle.Next(p.Clone())
	if isCompletion {
		s.handle.Complete(nil)
	}
}
func (s *channelEchoSink) OnComplete()           { s.handle.Complete(nil) }
func (s *channelEchoSink) OnError(*RSocketError) {}
func (s *channelEchoSink) OnCancel()             {}
func (s *channelEchoSink) OnRequestN(uint32)     {}

func (channelEchoResponder) HandleRequestChannel(p Payload, initialRequestN uint32, isCompleted bool, handle StreamHandle) Sink {
	handle.RequestN(32)
	handle.Next(p.Clone())
	if isCompleted {
		handle.Complete(nil)
	}
	return &channelEchoSink{handle: handle}
}

func TestScenarioRequestChannelEcho(t *testing.T) {
	clientTP, serverTP, closeFn := pipeConns()
	defer closeFn()

	server := Accept(serverTP, ConnOpts{
		ShouldAcceptClient: func(SetupInfo) AcceptDecision { return Accept() },
		Responder:          channelEchoResponder{},
	})
	client := Dial(clientTP, ConnOpts{})
	defer client.Close()
	defer server.Close()

	<-client.Connected()
	<-server.Connected()

	sink := newChanSink()
	handle, err := client.Requester().RequestChannel(NewPayload([]byte("Hello")), 32, false, sink)
	if err != nil {
		t.Fatalf("RequestChannel: %v", err)
	}

	rest := []string{" ", "W", "o", "r", "l", "d"}
	want := append([]string{"Hello"}, rest...)

	// give the responder's initial REQUEST_N a moment to land before this
	// side tries to spend demand sending the remaining letters.
	time.Sleep(20 * time.Millisecond)
	for _, letter := range rest {
		handle.Next(NewPayload([]byte(letter)))
	}
	handle.Complete(nil)

	var got []string
	for i := 0; i < len(want); i++ {
		select {
		case p := <-sink.ch:
			got = append(got, string(p.Data()))
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for echoed item %d, got so far: %v", i, got)
		}
	}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("mismatch at %d: got %q want %q (full: %v)", i, got[i], want[i], got)
		}
	}
}

type errorMidStreamResponder struct {
	UnimplementedResponder
}

func (errorMidStreamResponder) HandleRequestStream(p Payload, initialRequestN uint32, handle StreamHandle) {
	handle.Next(NewPayload([]byte("Hello")))
	handle.Error(ErrorCodeApplicationError, "enough for today")
}

func TestScenarioApplicationErrorMidStream(t *testing.T) {
	clientTP, serverTP, closeFn := pipeConns()
	defer closeFn()

	server := Accept(serverTP, ConnOpts{
		ShouldAcceptClient: func(SetupInfo) AcceptDecision { return Accept() },
		Responder:          errorMidStreamResponder{},
	})
	client := Dial(clientTP, ConnOpts{})
	defer client.Close()
	defer server.Close()

	<-client.Connected()
	<-server.Connected()

	sink := newChanSink()
	if _, err := client.Requester().RequestStream(NewPayload([]byte("go")), 10, sink); err != nil {
		t.Fatalf("RequestStream: %v", err)
	}

	select {
	case p := <-sink.ch:
		if string(p.Data()) != "Hello" {
			t.Fatalf("unexpected NEXT payload %q", p.Data())
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for NEXT")
	}

	select {
	case err := <-sink.errCh:
		if err.Code != ErrorCodeApplicationError || err.Data != "enough for today" {
			t.Fatalf("unexpected error: %+v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for ERROR")
	}

	select {
	case <-sink.ch:
		t.Fatal("expected no further NEXT after terminal ERROR")
	case <-time.After(100 * time.Millisecond):
	}
}
