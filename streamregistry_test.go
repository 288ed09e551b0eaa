package rsocket

import "testing"

func TestStreamRegistryInsertGetRemove(t *testing.T) {
	var r streamRegistry
	e1 := &streamEntry{id: 5}
	e2 := &streamEntry{id: 1}
	e3 := &streamEntry{id: 3}

	r.insert(e1)
	r.insert(e2)
	r.insert(e3)

	if r.len() != 3 {
		t.Fatalf("expected 3 entries, got %d", r.len())
	}
	for i := 1; i < len(r.list); i++ {
		if r.list[i-1].id >= r.list[i].id {
			t.Fatalf("registry not sorted: %+v", r.list)
		}
	}

	if got := r.get(3); got != e3 {
		t.Fatalf("get(3) returned %+v, want %+v", got, e3)
	}
	if r.get(99) != nil {
		t.Fatal("expected nil for missing ID")
	}

	removed := r.remove(1)
	if removed != e2 {
		t.Fatalf("remove(1) returned %+v, want %+v", removed, e2)
	}
	if r.has(1) {
		t.Fatal("expected ID 1 to be gone")
	}
	if r.len() != 2 {
		t.Fatalf("expected 2 entries after remove, got %d", r.len())
	}
}

func TestStreamRegistryReapIfTerminated(t *testing.T) {
	var r streamRegistry
	e := &streamEntry{id: 7, local: HalfClosed, remote: HalfOpen}
	r.insert(e)

	if r.reapIfTerminated(e) {
		t.Fatal("should not reap while one half is still open")
	}
	e.remote = HalfClosed
	if !r.reapIfTerminated(e) {
		t.Fatal("expected reap once both halves closed")
	}
	if r.has(7) {
		t.Fatal("expected entry gone after reap")
	}
}

func TestFragmentAssembly(t *testing.T) {
	fa := newFragmentAssembly(FrameRequestStream, 0)
	if err := fa.append(NewPayloadWithMetadata([]byte("ab"), []byte("m1"))); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := fa.append(NewPayload([]byte("cd"))); err != nil {
		t.Fatalf("append: %v", err)
	}
	p := fa.finish()
	if string(p.Data()) != "abcd" {
		t.Fatalf("unexpected reassembled data %q", p.Data())
	}
	meta, ok := p.Metadata()
	if !ok || string(meta) != "m1" {
		t.Fatalf("unexpected reassembled metadata %q ok=%v", meta, ok)
	}
}

func TestFragmentAssemblyCap(t *testing.T) {
	fa := newFragmentAssembly(FrameRequestStream, 3)
	if err := fa.append(NewPayload([]byte("ab"))); err != nil {
		t.Fatalf("unexpected error under cap: %v", err)
	}
	if err := fa.append(NewPayload([]byte("cd"))); err == nil {
		t.Fatal("expected cap-exceeded error")
	}
}
