package engine

import (
	"testing"

	"github.com/verse-server/backend/internal/protocol"
	"github.com/verse-server/backend/internal/session"
)

func TestFanoutSkipsConversionForEmptyLists(t *testing.T) {
	e, r := newTestEngine(t)
	a := connect(t, e, r, "a")
	sub := connect(t, e, r, "sub")
	g := create(t, e, a, protocol.NodeGeometry)

	set := func(p protocol.Precision, v float64) {
		e.Dispatch(a, protocol.GeometryVertexSetXYZ{Node: g, Layer: layerVertex, Vertex: 0, Precision: p, Value: protocol.Vec3{v, v, v}})
	}

	for i := 0; i < 10; i++ {
		set(protocol.Real32, 1)
		set(protocol.Real64, 2)
	}
	if got := e.Conversions(); got != 0 {
		t.Fatalf("conversions with no subscribers = %d, want 0", got)
	}

	e.Dispatch(sub, protocol.GeometryLayerSubscribe{Node: g, Layer: layerVertex, Precision: protocol.Real64})
	r.take(sub)
	before := e.Conversions()
	for i := 0; i < 5; i++ {
		set(protocol.Real64, 3)
	}
	if got := e.Conversions() - before; got != 0 {
		t.Errorf("64-bit writes to a 64-bit subscriber converted %d times", got)
	}
	set(protocol.Real32, 4)
	if got := e.Conversions() - before; got != 1 {
		t.Errorf("32-bit write to a 64-bit subscriber converted %d times, want 1", got)
	}
}

func TestFanoutPerPrecision(t *testing.T) {
	e, r := newTestEngine(t)
	a := connect(t, e, r, "a")
	wide := connect(t, e, r, "wide")
	narrowSub := connect(t, e, r, "narrow")
	n := create(t, e, a, protocol.NodeObject)

	e.Dispatch(wide, protocol.ObjectTransformSubscribe{Node: n, Kind: protocol.TransformScale, Precision: protocol.Real64})
	e.Dispatch(narrowSub, protocol.ObjectTransformSubscribe{Node: n, Kind: protocol.TransformScale, Precision: protocol.Real32})
	assertSent(t, r, wide, protocol.ObjectTransformScale{Node: n, Precision: protocol.Real64, Scale: protocol.Vec3{1, 1, 1}})
	assertSent(t, r, narrowSub, protocol.ObjectTransformScale{Node: n, Precision: protocol.Real32, Scale: protocol.Vec3{1, 1, 1}})

	before := e.Conversions()
	e.Dispatch(a, protocol.ObjectTransformScale{Node: n, Precision: protocol.Real64, Scale: protocol.Vec3{0.1, 2, 3}})

	assertSent(t, r, wide, protocol.ObjectTransformScale{Node: n, Precision: protocol.Real64, Scale: protocol.Vec3{0.1, 2, 3}})
	assertSent(t, r, narrowSub, protocol.ObjectTransformScale{Node: n, Precision: protocol.Real32,
		Scale: protocol.Vec3{float64(float32(0.1)), 2, 3}})
	if got := e.Conversions() - before; got != 1 {
		t.Errorf("conversions = %d, want 1", got)
	}
}

func TestSubscribeMovesBetweenPrecisions(t *testing.T) {
	d := newDual()
	s := session.New("s")

	if !d.add(s, protocol.Real32) {
		t.Fatal("first add returned false")
	}
	if d.add(s, protocol.Real32) {
		t.Error("repeat add at the same precision returned true")
	}
	if !d.add(s, protocol.Real64) {
		t.Fatal("add at the other precision returned false")
	}
	if d.r32.Len() != 0 || d.r64.Len() != 1 {
		t.Errorf("lists = %d/%d, want 0/1", d.r32.Len(), d.r64.Len())
	}
	if !d.remove(s) || d.remove(s) {
		t.Error("remove should succeed exactly once")
	}
}

func TestIngestRoundsNarrowValues(t *testing.T) {
	e, r := newTestEngine(t)
	a := connect(t, e, r, "a")
	sub := connect(t, e, r, "sub")
	n := create(t, e, a, protocol.NodeObject)
	e.Dispatch(sub, protocol.ObjectTransformSubscribe{Node: n, Kind: protocol.TransformPos, Precision: protocol.Real64})
	r.take(sub)

	e.Dispatch(a, protocol.ObjectTransformPos{Node: n, Precision: protocol.Real32, Pos: protocol.Vec3{0.1, 0, 0}})
	got := r.take(sub)
	if len(got) != 1 {
		t.Fatalf("got %d commands, want 1", len(got))
	}
	pos := got[0].(protocol.ObjectTransformPos)
	if pos.Pos[0] != float64(float32(0.1)) || pos.Precision != protocol.Real64 {
		t.Errorf("pos = %+v", pos)
	}
}
