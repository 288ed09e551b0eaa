package rsocket

import "sync/atomic"

// Sink is the push-based, single-consumer callback set an application
// implements to receive the events of one stream (spec.md §4.6). After any
// terminal call (OnComplete, OnError, OnCancel) further calls on the same
// Sink are no-ops — guardedSink below enforces that so individual Sink
// implementations don't have to.
type Sink interface {
	OnNext(p Payload, isCompletion bool)
	OnComplete()
	OnError(err *RSocketError)
	OnCancel()
	OnRequestN(n uint32)
}

// NopSink discards every callback. Used where the application did not
// register a sink (e.g. responder-side request/response and request/stream
// entries, or a nil Sink passed to a Requester method).
type NopSink struct{}

func (NopSink) OnNext(Payload, bool)    {}
func (NopSink) OnComplete()             {}
func (NopSink) OnError(*RSocketError)   {}
func (NopSink) OnCancel()               {}
func (NopSink) OnRequestN(uint32)       {}

// guardedSink wraps a Sink so that at most one terminal event
// (OnComplete/OnError/OnCancel) is ever delivered — spec.md §8 testable
// property 4 — without requiring every Sink implementation to track that
// itself. Do not share a guardedSink, or the Sink it wraps, across
// streams (spec.md §4.6).
type guardedSink struct {
	inner    Sink
	terminal int32
}

func newGuardedSink(s Sink) *guardedSink {
	if s == nil {
		s = NopSink{}
	}
	return &guardedSink{inner: s}
}

func (g *guardedSink) isTerminal() bool {
	return atomic.LoadInt32(&g.terminal) != 0
}

func (g *guardedSink) markTerminal() bool {
	return atomic.CompareAndSwapInt32(&g.terminal, 0, 1)
}

func (g *guardedSink) OnNext(p Payload, isCompletion bool) {
	if g.isTerminal() {
		return
	}
	if isCompletion {
		if !g.markTerminal() {
			return
		}
	}
	g.inner.OnNext(p, isCompletion)
}

func (g *guardedSink) OnComplete() {
	if !g.markTerminal() {
		return
	}
	g.inner.OnComplete()
}

func (g *guardedSink) OnError(err *RSocketError) {
	if !g.markTerminal() {
		return
	}
	g.inner.OnError(err)
}

func (g *guardedSink) OnCancel() {
	if !g.markTerminal() {
		return
	}
	g.inner.OnCancel()
}

func (g *guardedSink) OnRequestN(n uint32) {
	if g.isTerminal() {
		return
	}
	g.inner.OnRequestN(n)
}
