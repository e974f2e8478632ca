// Package arena implements the structure-of-arrays representation shared by
// the book, translation, and dictionary containers: a single backing vector
// per field plus SliceRef handles into it, instead of one allocation per
// element.
package arena

// SliceRef is a handle into a backing vector: the half-open range
// [Start, Start+Len).
type SliceRef[T any] struct {
	Start uint32
	Len   uint32
}

// End returns the exclusive end offset of the range.
func (r SliceRef[T]) End() uint32 {
	return r.Start + r.Len
}

// Empty reports whether the range has zero length.
func (r SliceRef[T]) Empty() bool {
	return r.Len == 0
}

// Push appends items to vector following the append rule: when the ref's
// range ends exactly at the current length of vector, the items are
// appended in place and the same backing ref is extended. Otherwise the
// referenced slice is copied to the tail of vector before appending, so the
// returned ref never aliases data another ref still points at. If
// ref.End() exceeds len(vector), the range is out of bounds and ok is false.
func Push[T any](vector []T, ref SliceRef[T], items ...T) (newVector []T, newRef SliceRef[T], ok bool) {
	n := uint32(len(vector))
	if ref.End() > n {
		return vector, SliceRef[T]{}, false
	}

	if ref.End() == n {
		vector = append(vector, items...)
		return vector, SliceRef[T]{Start: ref.Start, Len: ref.Len + uint32(len(items))}, true
	}

	tile := make([]T, ref.Len, ref.Len+uint32(len(items)))
	copy(tile, vector[ref.Start:ref.End()])
	tile = append(tile, items...)

	newStart := n
	vector = append(vector, tile...)
	return vector, SliceRef[T]{Start: newStart, Len: uint32(len(tile))}, true
}

// View resolves ref against vector. It panics if ref is out of bounds,
// mirroring a slice index out of range: callers must only view refs they
// know were produced against this vector.
func View[T any](vector []T, ref SliceRef[T]) []T {
	return vector[ref.Start:ref.End():ref.End()]
}

// PushString is Push specialized for byte-backed string arenas: it appends
// the UTF-8 bytes of s to arena following the same append rule.
func PushString(arenaBytes []byte, ref SliceRef[byte], s string) (newArena []byte, newRef SliceRef[byte], ok bool) {
	return Push(arenaBytes, ref, []byte(s)...)
}

// ViewString resolves ref against arenaBytes as a string.
func ViewString(arenaBytes []byte, ref SliceRef[byte]) string {
	return string(View(arenaBytes, ref))
}
