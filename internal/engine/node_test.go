package engine

import (
	"testing"

	"github.com/verse-server/backend/internal/protocol"
)

func TestNodeIDsAreReusedOnlyAfterDestroy(t *testing.T) {
	e, r := newTestEngine(t)
	a := connect(t, e, r, "a")

	live := map[protocol.NodeID]bool{a.Avatar: true}
	var order []protocol.NodeID
	// Deterministic mix of creates and destroys.
	for i := 0; i < 200; i++ {
		if i%3 == 2 && len(order) > 0 {
			victim := order[(i*7)%len(order)]
			e.NodeDestroy(victim)
			delete(live, victim)
			order = removeID(order, victim)
			continue
		}
		id := create(t, e, a, protocol.NodeType(i%int(protocol.NumNodeTypes)))
		if live[id] {
			t.Fatalf("step %d: id %d handed out while still live", i, id)
		}
		live[id] = true
		order = append(order, id)
	}
	if e.NodeCount() != len(live) {
		t.Errorf("NodeCount() = %d, want %d", e.NodeCount(), len(live))
	}
}

func removeID(ids []protocol.NodeID, id protocol.NodeID) []protocol.NodeID {
	for i, v := range ids {
		if v == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}

func TestNodeCreateReusesLowestFreeID(t *testing.T) {
	e, r := newTestEngine(t)
	a := connect(t, e, r, "a")
	n1 := create(t, e, a, protocol.NodeText)
	n2 := create(t, e, a, protocol.NodeText)
	create(t, e, a, protocol.NodeText)

	e.NodeDestroy(n2)
	e.NodeDestroy(n1)
	if got := create(t, e, a, protocol.NodeCurve); got != n1 {
		t.Errorf("create after destroy = %d, want %d", got, n1)
	}
	if got := create(t, e, a, protocol.NodeCurve); got != n2 {
		t.Errorf("second create = %d, want %d", got, n2)
	}
}

func TestStaleHandleIsInvalid(t *testing.T) {
	e, r := newTestEngine(t)
	a := connect(t, e, r, "a")
	id := create(t, e, a, protocol.NodeText)
	h := e.nodes.handle(id)

	e.NodeDestroy(id)
	if again := create(t, e, a, protocol.NodeText); again != id {
		t.Fatalf("id not reused: %d", again)
	}
	if e.nodes.valid(h) {
		t.Error("handle from a destroyed incarnation still valid")
	}
	if !e.nodes.valid(e.nodes.handle(id)) {
		t.Error("fresh handle invalid")
	}
}

func TestIndexSubscribe(t *testing.T) {
	e, r := newTestEngine(t)
	a := connect(t, e, r, "a")
	b := connect(t, e, r, "b")
	g1 := create(t, e, a, protocol.NodeGeometry)
	create(t, e, a, protocol.NodeText)
	g2 := create(t, e, b, protocol.NodeGeometry)

	e.Dispatch(b, protocol.NodeIndexSubscribe{Mask: protocol.NodeGeometry.Mask()})
	assertSent(t, r, b,
		protocol.NodeCreate{Node: g1, Type: protocol.NodeGeometry, Owner: protocol.OwnerOther},
		protocol.NodeCreate{Node: g2, Type: protocol.NodeGeometry, Owner: protocol.OwnerMine},
	)

	// Re-sending the same mask replays nothing.
	e.Dispatch(b, protocol.NodeIndexSubscribe{Mask: protocol.NodeGeometry.Mask()})
	assertSent(t, r, b)

	g3 := create(t, e, a, protocol.NodeGeometry)
	assertSent(t, r, b, protocol.NodeCreate{Node: g3, Type: protocol.NodeGeometry, Owner: protocol.OwnerOther})

	e.Dispatch(a, protocol.NodeDestroy{Node: g1})
	assertSent(t, r, b, protocol.NodeDestroy{Node: g1})

	e.Dispatch(b, protocol.NodeIndexSubscribe{Mask: 0})
	create(t, e, a, protocol.NodeGeometry)
	assertSent(t, r, b)
}

func TestNodeSubscribeSnapshotThenDeltas(t *testing.T) {
	e, r := newTestEngine(t)
	a := connect(t, e, r, "a")
	b := connect(t, e, r, "b")
	n := create(t, e, a, protocol.NodeText)

	e.Dispatch(a, protocol.NodeNameSet{Node: n, Name: "notes"})
	e.Dispatch(a, protocol.TagGroupCreate{Node: n, Group: protocol.ResourceAny, Name: "meta"})
	e.Dispatch(a, protocol.TextBufferCreate{Node: n, Buffer: protocol.ResourceAny, Name: "body"})
	e.Dispatch(a, protocol.TextSet{Node: n, Buffer: 0, Text: "hello"})

	e.Dispatch(b, protocol.NodeSubscribe{Node: n})
	assertSent(t, r, b,
		protocol.NodeNameSet{Node: n, Name: "notes"},
		protocol.TagGroupCreate{Node: n, Group: 0, Name: "meta"},
		protocol.TextBufferCreate{Node: n, Buffer: 0, Name: "body"},
	)
	e.Dispatch(b, protocol.NodeSubscribe{Node: n})
	assertSent(t, r, b)

	e.Dispatch(b, protocol.TextBufferSubscribe{Node: n, Buffer: 0})
	assertSent(t, r, b, protocol.TextSet{Node: n, Buffer: 0, Text: "hello"})

	e.Dispatch(a, protocol.TextSet{Node: n, Buffer: 0, Pos: 5, Text: " world"})
	e.Dispatch(a, protocol.NodeNameSet{Node: n, Name: "log"})
	assertSent(t, r, b,
		protocol.TextSet{Node: n, Buffer: 0, Pos: 5, Text: " world"},
		protocol.NodeNameSet{Node: n, Name: "log"},
	)

	e.Dispatch(b, protocol.NodeUnsubscribe{Node: n})
	e.Dispatch(a, protocol.TextSet{Node: n, Buffer: 0, Text: ">"})
	e.Dispatch(a, protocol.NodeNameSet{Node: n, Name: "x"})
	assertSent(t, r, b)
}

func TestNameCollisionIsRejected(t *testing.T) {
	e, r := newTestEngine(t)
	a := connect(t, e, r, "a")
	b := connect(t, e, r, "b")
	n := create(t, e, a, protocol.NodeText)
	e.Dispatch(b, protocol.NodeSubscribe{Node: n})

	e.Dispatch(a, protocol.TagGroupCreate{Node: n, Group: protocol.ResourceAny, Name: "first"})
	e.Dispatch(a, protocol.TagGroupCreate{Node: n, Group: protocol.ResourceAny, Name: "second"})
	r.take(b)

	// Renaming group 1 to the name group 0 holds.
	e.Dispatch(a, protocol.TagGroupCreate{Node: n, Group: 1, Name: "first"})
	// A new group reusing a taken name.
	e.Dispatch(a, protocol.TagGroupCreate{Node: n, Group: protocol.ResourceAny, Name: "second"})
	// Empty names never create anything.
	e.Dispatch(a, protocol.TagGroupCreate{Node: n, Group: protocol.ResourceAny})
	assertSent(t, r, b)

	h := e.Node(n).(*textNode).head()
	if h.groups.active() != 2 {
		t.Fatalf("active groups = %d, want 2", h.groups.active())
	}
	if got := h.groups.get(1).name; got != "second" {
		t.Errorf("group 1 name = %q, want second", got)
	}
}

func TestTagGroups(t *testing.T) {
	e, r := newTestEngine(t)
	a := connect(t, e, r, "a")
	b := connect(t, e, r, "b")
	n := create(t, e, a, protocol.NodeMaterial)

	e.Dispatch(a, protocol.TagGroupCreate{Node: n, Group: protocol.ResourceAny, Name: "info"})
	e.Dispatch(a, protocol.TagCreate{Node: n, Group: 0, Tag: protocol.ResourceAny, Name: "author",
		Value: protocol.TagValue{Type: protocol.TagString, String: "ada", Uint32: 7}})
	e.Dispatch(a, protocol.TagCreate{Node: n, Group: 0, Tag: protocol.ResourceAny, Name: "weight",
		Value: protocol.TagValue{Type: protocol.TagReal64, Real64: 2.5}})

	e.Dispatch(b, protocol.TagGroupSubscribe{Node: n, Group: 0})
	assertSent(t, r, b,
		protocol.TagCreate{Node: n, Group: 0, Tag: 0, Name: "author", Value: protocol.TagValue{Type: protocol.TagString, String: "ada"}},
		protocol.TagCreate{Node: n, Group: 0, Tag: 1, Name: "weight", Value: protocol.TagValue{Type: protocol.TagReal64, Real64: 2.5}},
	)

	// Retyping a tag replaces its payload.
	e.Dispatch(a, protocol.TagCreate{Node: n, Group: 0, Tag: 0, Name: "author",
		Value: protocol.TagValue{Type: protocol.TagUint32, Uint32: 42}})
	e.Dispatch(a, protocol.TagDestroy{Node: n, Group: 0, Tag: 1})
	e.Dispatch(a, protocol.TagCreate{Node: n, Group: 0, Tag: protocol.ResourceAny, Name: "bad",
		Value: protocol.TagValue{Type: protocol.TagType(99)}})
	assertSent(t, r, b,
		protocol.TagCreate{Node: n, Group: 0, Tag: 0, Name: "author", Value: protocol.TagValue{Type: protocol.TagUint32, Uint32: 42}},
		protocol.TagDestroy{Node: n, Group: 0, Tag: 1},
	)

	e.Dispatch(b, protocol.TagGroupUnsubscribe{Node: n, Group: 0})
	e.Dispatch(a, protocol.TagDestroy{Node: n, Group: 0, Tag: 0})
	assertSent(t, r, b)
}

func TestTagGroupDestroyDropsSubscribers(t *testing.T) {
	e, r := newTestEngine(t)
	a := connect(t, e, r, "a")
	b := connect(t, e, r, "b")
	n := create(t, e, a, protocol.NodeCurve)

	e.Dispatch(a, protocol.TagGroupCreate{Node: n, Group: protocol.ResourceAny, Name: "g"})
	e.Dispatch(b, protocol.TagGroupSubscribe{Node: n, Group: 0})
	e.Dispatch(a, protocol.TagGroupDestroy{Node: n, Group: 0})
	e.Dispatch(a, protocol.TagGroupCreate{Node: n, Group: protocol.ResourceAny, Name: "g"})
	e.Dispatch(a, protocol.TagCreate{Node: n, Group: 0, Tag: protocol.ResourceAny, Name: "t",
		Value: protocol.TagValue{Type: protocol.TagBoolean, Bool: true}})

	assertSent(t, r, b)
}
