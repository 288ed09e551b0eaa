package rsocket

import (
	"net"
	"testing"
	"time"

	"github.com/dgrr/rsocket/transport"
)

// TestKeepaliveRespondEchoesData verifies spec.md §8 testable property 5: a
// received KEEPALIVE(respond=true) always produces a KEEPALIVE(respond=false)
// as the next outbound frame on that connection, carrying the same data.
func TestKeepaliveRespondEchoesData(t *testing.T) {
	nc1, nc2 := net.Pipe()
	defer nc1.Close()
	defer nc2.Close()

	serverTP := transport.WrapConn(nc2)
	server := Accept(serverTP, ConnOpts{
		ShouldAcceptClient: func(SetupInfo) AcceptDecision { return Accept() },
	})
	defer server.Close()

	clientTP := transport.WrapConn(nc1)

	// Drive the handshake directly over the raw transport so this test can
	// also observe the server's very next outbound frame afterwards.
	sf := NewSetupFrame(uint32(defaultKeepaliveInterval/time.Millisecond), uint32(defaultMaxLifetime/time.Millisecond), "", "", Payload{})
	b, err := Encode(sf)
	if err != nil {
		t.Fatalf("encode setup: %v", err)
	}
	if err := clientTP.WriteFrame(b); err != nil {
		t.Fatalf("write setup: %v", err)
	}
	if err := clientTP.Flush(); err != nil {
		t.Fatalf("flush setup: %v", err)
	}

	<-server.Connected()
	if err := server.Err(); err != nil {
		t.Fatalf("unexpected handshake error: %v", err)
	}

	kf := NewKeepaliveFrame(true, []byte("ping-data"))
	kb, err := Encode(kf)
	if err != nil {
		t.Fatalf("encode keepalive: %v", err)
	}
	if err := clientTP.WriteFrame(kb); err != nil {
		t.Fatalf("write keepalive: %v", err)
	}
	if err := clientTP.Flush(); err != nil {
		t.Fatalf("flush keepalive: %v", err)
	}

	raw, err := clientTP.ReadFrame()
	if err != nil {
		t.Fatalf("read response frame: %v", err)
	}
	f, err := Decode(raw)
	if err != nil {
		t.Fatalf("decode response frame: %v", err)
	}
	reply, ok := f.(*KeepaliveFrame)
	if !ok {
		t.Fatalf("expected KeepaliveFrame in reply, got %T", f)
	}
	if reply.Respond() {
		t.Fatal("expected reply KEEPALIVE to have respond=false")
	}
	if string(reply.Data()) != "ping-data" {
		t.Fatalf("expected echoed data %q, got %q", "ping-data", reply.Data())
	}
}
