package rsocket

import "testing"

type countingSink struct {
	nextN, completeN, errorN, cancelN, requestNN int
}

func (s *countingSink) OnNext(Payload, bool)  { s.nextN++ }
func (s *countingSink) OnComplete()           { s.completeN++ }
func (s *countingSink) OnError(*RSocketError) { s.errorN++ }
func (s *countingSink) OnCancel()             { s.cancelN++ }
func (s *countingSink) OnRequestN(uint32)     { s.requestNN++ }

func TestGuardedSinkAtMostOneTerminal(t *testing.T) {
	inner := &countingSink{}
	g := newGuardedSink(inner)

	g.OnNext(NewPayload([]byte("a")), false)
	g.OnComplete()
	g.OnError(NewError(ErrorCodeApplicationError, "late"))
	g.OnCancel()
	g.OnComplete()

	if inner.nextN != 1 {
		t.Fatalf("expected 1 OnNext, got %d", inner.nextN)
	}
	terminalCount := inner.completeN + inner.errorN + inner.cancelN
	if terminalCount != 1 {
		t.Fatalf("expected exactly 1 terminal event, got %d (complete=%d error=%d cancel=%d)",
			terminalCount, inner.completeN, inner.errorN, inner.cancelN)
	}
	if inner.completeN != 1 {
		t.Fatalf("expected the first terminal call (OnComplete) to win, got complete=%d error=%d cancel=%d",
			inner.completeN, inner.errorN, inner.cancelN)
	}
}

func TestGuardedSinkOnNextWithCompletionIsTerminal(t *testing.T) {
	inner := &countingSink{}
	g := newGuardedSink(inner)

	g.OnNext(NewPayload([]byte("last")), true)
	g.OnNext(NewPayload([]byte("after")), false)
	g.OnComplete()

	if inner.nextN != 1 {
		t.Fatalf("expected exactly 1 OnNext, got %d", inner.nextN)
	}
	if inner.completeN != 0 {
		t.Fatalf("expected no separate OnComplete once NEXT carried completion, got %d", inner.completeN)
	}
}

func TestGuardedSinkOnRequestNIgnoredAfterTerminal(t *testing.T) {
	inner := &countingSink{}
	g := newGuardedSink(inner)

	g.OnError(NewError(ErrorCodeRejected, "no"))
	g.OnRequestN(10)

	if inner.requestNN != 0 {
		t.Fatalf("expected OnRequestN to be dropped post-terminal, got %d calls", inner.requestNN)
	}
}

func TestNewGuardedSinkNilInnerDefaultsToNop(t *testing.T) {
	g := newGuardedSink(nil)
	g.OnNext(NewPayload(nil), false)
	g.OnComplete()
}
