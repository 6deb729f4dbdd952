package engine

import (
	"github.com/verse-server/backend/internal/protocol"
)

// handle names one incarnation of a node id. The generation is bumped every
// time the id is released, so a stale handle never matches a reused slot.
type handle struct {
	id  protocol.NodeID
	gen uint32
}

type arenaSlot struct {
	node Node
	gen  uint32
}

// arena is the node table. Free ids are found with a linear scan from the
// bottom so low ids are reused first.
type arena struct {
	slots []arenaSlot
	chunk int
	live  int
}

func newArena(chunk int) arena {
	return arena{chunk: chunk}
}

// alloc returns the lowest free id, growing the table by a chunk when the
// table is full. The slot stays free until put.
func (a *arena) alloc() (protocol.NodeID, error) {
	for i := range a.slots {
		if a.slots[i].node == nil {
			return protocol.NodeID(i), nil
		}
	}
	n := len(a.slots)
	if int64(n)+int64(a.chunk) >= int64(protocol.NodeAny) {
		return protocol.NodeAny, errCapacity
	}
	a.slots = append(a.slots, make([]arenaSlot, a.chunk)...)
	return protocol.NodeID(n), nil
}

func (a *arena) put(id protocol.NodeID, n Node) {
	a.slots[id].node = n
	a.live++
}

// release frees id and returns the node that held it.
func (a *arena) release(id protocol.NodeID) Node {
	n := a.get(id)
	if n == nil {
		return nil
	}
	a.slots[id].node = nil
	a.slots[id].gen++
	a.live--
	return n
}

func (a *arena) get(id protocol.NodeID) Node {
	if int64(id) >= int64(len(a.slots)) {
		return nil
	}
	return a.slots[id].node
}

func (a *arena) handle(id protocol.NodeID) handle {
	return handle{id: id, gen: a.slots[id].gen}
}

// valid reports whether h still names a live node.
func (a *arena) valid(h handle) bool {
	return a.get(h.id) != nil && a.slots[h.id].gen == h.gen
}

// each visits live nodes in id order.
func (a *arena) each(fn func(n Node)) {
	for _, s := range a.slots {
		if s.node != nil {
			fn(s.node)
		}
	}
}
