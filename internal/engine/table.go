package engine

import (
	"github.com/verse-server/backend/internal/protocol"
	"github.com/verse-server/backend/internal/subscription"
)

// slot is an active entry of a table. An inactive entry is a nil pointer,
// so the name, payload and subscriber list always exist together.
type slot[T any] struct {
	name  string
	subs  *subscription.List
	value T
}

// table is a growable array of named resource slots addressed by small ids.
type table[T any] struct {
	slots []*slot[T]
	chunk int
}

func newTable[T any](chunk int) table[T] {
	return table[T]{chunk: chunk}
}

func (t *table[T]) get(id protocol.ResourceID) *slot[T] {
	if int(id) >= len(t.slots) {
		return nil
	}
	return t.slots[id]
}

// find returns the id of the slot called name. Names are case sensitive.
func (t *table[T]) find(name string) (protocol.ResourceID, bool) {
	for i, s := range t.slots {
		if s != nil && s.name == name {
			return protocol.ResourceID(i), true
		}
	}
	return 0, false
}

// resolve picks the slot a create request named name lands on. An in-bounds
// id is taken as is; anything else gets the first free slot, growing the
// table by one chunk if none is free. A name held by a different slot is a
// collision.
func (t *table[T]) resolve(id protocol.ResourceID, name string) (protocol.ResourceID, error) {
	if name == "" {
		return 0, errEmptyName
	}
	other, taken := t.find(name)
	if int(id) < len(t.slots) && id != protocol.ResourceAny {
		if taken && other != id {
			return 0, errNameCollision
		}
		return id, nil
	}
	if taken {
		return 0, errNameCollision
	}
	for i, s := range t.slots {
		if s == nil {
			return protocol.ResourceID(i), nil
		}
	}
	n := len(t.slots)
	if n+t.chunk > int(protocol.ResourceAny) {
		return 0, errTableFull
	}
	t.slots = append(t.slots, make([]*slot[T], t.chunk)...)
	return protocol.ResourceID(n), nil
}

// put installs a fresh slot at id, discarding any previous payload and
// subscribers.
func (t *table[T]) put(id protocol.ResourceID, name string, value T) *slot[T] {
	s := &slot[T]{name: name, subs: subscription.New(), value: value}
	t.slots[id] = s
	return s
}

// upsert creates or renames the slot for a create request. An existing slot
// keeps its payload and subscribers when same reports the declared type is
// unchanged; otherwise it is replaced with fresh().
func (t *table[T]) upsert(id protocol.ResourceID, name string, same func(T) bool, fresh func() T) (protocol.ResourceID, *slot[T], error) {
	id, err := t.resolve(id, name)
	if err != nil {
		return 0, nil, err
	}
	if s := t.slots[id]; s != nil && same(s.value) {
		s.name = name
		return id, s, nil
	}
	return id, t.put(id, name, fresh()), nil
}

// remove empties slot id and returns what it held.
func (t *table[T]) remove(id protocol.ResourceID) *slot[T] {
	s := t.get(id)
	if s != nil {
		t.slots[id] = nil
	}
	return s
}

func (t *table[T]) each(fn func(id protocol.ResourceID, s *slot[T])) {
	for i, s := range t.slots {
		if s != nil {
			fn(protocol.ResourceID(i), s)
		}
	}
}

// active counts occupied slots.
func (t *table[T]) active() int {
	n := 0
	for _, s := range t.slots {
		if s != nil {
			n++
		}
	}
	return n
}

func always[T any](T) bool { return true }
