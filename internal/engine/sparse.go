package engine

import (
	"github.com/verse-server/backend/internal/protocol"
)

// sparse is a chunk-grown array of optional elements addressed by
// ElementID. hole is a hint: every index below it is known to be occupied
// as of the last scan. Scans advance it lazily and frees lower it eagerly.
type sparse[T any] struct {
	slots     []T
	used      []bool
	hole      int
	chunk     int
	maxGrowth int
}

func newSparse[T any](chunk, maxGrowth int) sparse[T] {
	return sparse[T]{chunk: chunk, maxGrowth: maxGrowth}
}

// alloc claims id, or the first free element for ElementAny. An explicit
// id that is already occupied is accepted as an overwrite.
func (s *sparse[T]) alloc(id protocol.ElementID) (protocol.ElementID, error) {
	if id == protocol.ElementAny {
		return s.allocAny()
	}
	if int64(id) >= int64(len(s.slots)) {
		if int64(id)-int64(len(s.slots)) >= int64(s.maxGrowth) {
			return protocol.ElementAny, errGrowthCap
		}
		s.grow(int(id) + 1)
	}
	s.used[id] = true
	return id, nil
}

func (s *sparse[T]) allocAny() (protocol.ElementID, error) {
	for i := s.hole; i < len(s.used); i++ {
		if !s.used[i] {
			s.used[i] = true
			s.hole = i + 1
			return protocol.ElementID(i), nil
		}
	}
	n := len(s.slots)
	if int64(n)+int64(s.chunk) >= int64(protocol.ElementAny) {
		return protocol.ElementAny, errCapacity
	}
	s.grow(n + 1)
	s.used[n] = true
	s.hole = n + 1
	return protocol.ElementID(n), nil
}

// grow extends capacity to at least n, rounded up to a whole chunk. New
// elements start out free.
func (s *sparse[T]) grow(n int) {
	size := len(s.slots)
	for size < n {
		size += s.chunk
	}
	slots := make([]T, size)
	copy(slots, s.slots)
	used := make([]bool, size)
	copy(used, s.used)
	s.slots, s.used = slots, used
}

// free tombstones id and lowers the hole cursor if id sits below it.
func (s *sparse[T]) free(id protocol.ElementID) bool {
	if !s.has(id) {
		return false
	}
	var zero T
	s.slots[id] = zero
	s.used[id] = false
	if int(id) < s.hole {
		s.hole = int(id)
	}
	return true
}

func (s *sparse[T]) has(id protocol.ElementID) bool {
	return int64(id) < int64(len(s.used)) && s.used[id]
}

// get returns the element at id. The pointer is invalidated by the next
// alloc.
func (s *sparse[T]) get(id protocol.ElementID) (*T, bool) {
	if !s.has(id) {
		return nil, false
	}
	return &s.slots[id], true
}

func (s *sparse[T]) set(id protocol.ElementID, v T) {
	s.slots[id] = v
}

func (s *sparse[T]) each(fn func(id protocol.ElementID, v *T)) {
	for i := range s.slots {
		if s.used[i] {
			fn(protocol.ElementID(i), &s.slots[i])
		}
	}
}

func (s *sparse[T]) count() int {
	n := 0
	for _, u := range s.used {
		if u {
			n++
		}
	}
	return n
}

func (s *sparse[T]) capacity() int { return len(s.slots) }
