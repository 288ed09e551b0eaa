package rsocket

import "sort"

// streamRegistry indexes live stream entries by ID in a sorted slice, the
// same shape as the teacher's Streams type — at the concurrency level this
// module runs at (single connection loop goroutine), a sorted slice with
// binary search beats a map on both memory and cache behavior for the
// typical handful-to-low-thousands of concurrent streams a connection
// carries.
type streamRegistry struct {
	list []*streamEntry
}

func (r *streamRegistry) search(id uint32) int {
	return sort.Search(len(r.list), func(i int) bool {
		return r.list[i].id >= id
	})
}

// get returns the entry for id, or nil if none exists.
func (r *streamRegistry) get(id uint32) *streamEntry {
	i := r.search(id)
	if i < len(r.list) && r.list[i].id == id {
		return r.list[i]
	}
	return nil
}

// has reports whether id is currently live — used by the stream ID
// allocator to skip IDs still in flight.
func (r *streamRegistry) has(id uint32) bool {
	return r.get(id) != nil
}

// insert adds e to the registry. e.id must not already be present.
func (r *streamRegistry) insert(e *streamEntry) {
	i := r.search(e.id)
	r.list = append(r.list, nil)
	copy(r.list[i+1:], r.list[i:])
	r.list[i] = e
}

// remove deletes and returns the entry for id, or nil if none existed.
func (r *streamRegistry) remove(id uint32) *streamEntry {
	i := r.search(id)
	if i < len(r.list) && r.list[i].id == id {
		e := r.list[i]
		r.list = append(r.list[:i], r.list[i+1:]...)
		return e
	}
	return nil
}

// len reports the number of live streams.
func (r *streamRegistry) len() int {
	return len(r.list)
}

// reapIfTerminated removes e from the registry once both halves are
// CLOSED (spec.md §3/§4.5), returning true if it was removed.
func (r *streamRegistry) reapIfTerminated(e *streamEntry) bool {
	if !e.bothClosed() {
		return false
	}
	r.remove(e.id)
	return true
}

// all returns every live entry; used only for connection-wide fan-out
// (e.g. synthetic onError on close).
func (r *streamRegistry) all() []*streamEntry {
	return r.list
}
