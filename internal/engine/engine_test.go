package engine

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/verse-server/backend/internal/logging"
	"github.com/verse-server/backend/internal/protocol"
	"github.com/verse-server/backend/internal/session"
)

// recorder is a Sink that keeps outbound traffic per target session.
type recorder struct {
	out map[*session.Session][]protocol.Command
}

func (r *recorder) Send(to *session.Session, cmd protocol.Command) {
	r.out[to] = append(r.out[to], cmd)
}

// take returns and forgets everything sent to s.
func (r *recorder) take(s *session.Session) []protocol.Command {
	cmds := r.out[s]
	delete(r.out, s)
	return cmds
}

func newTestEngine(t *testing.T) (*Engine, *recorder) {
	t.Helper()
	r := &recorder{out: make(map[*session.Session][]protocol.Command)}
	return New(DefaultOptions(), r, logging.Noop()), r
}

// connect attaches and handshakes a session, discarding the accept.
func connect(t *testing.T, e *Engine, r *recorder, name string) *session.Session {
	t.Helper()
	s := session.New(name)
	e.Attach(s)
	e.Dispatch(s, protocol.Connect{Name: name})
	if !s.IsAccepted() {
		t.Fatalf("session %s not accepted", name)
	}
	r.take(s)
	return s
}

// create makes a node owned by s without going through the index.
func create(t *testing.T, e *Engine, s *session.Session, typ protocol.NodeType) protocol.NodeID {
	t.Helper()
	id := e.NodeCreate(s, typ)
	if id == protocol.NodeAny {
		t.Fatalf("NodeCreate(%s) failed", typ)
	}
	return id
}

func assertSent(t *testing.T, r *recorder, s *session.Session, want ...protocol.Command) {
	t.Helper()
	got := r.take(s)
	if len(want) == 0 {
		if len(got) != 0 {
			t.Fatalf("%s received %d commands, want none: %v", s.Name, len(got), got)
		}
		return
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("%s traffic mismatch (-want +got):\n%s", s.Name, diff)
	}
}

func TestConnectCreatesAvatar(t *testing.T) {
	e, r := newTestEngine(t)
	s := session.New("127.0.0.1:1")
	e.Attach(s)
	e.Dispatch(s, protocol.Connect{Name: "alice", Credential: "secret"})

	assertSent(t, r, s, protocol.ConnectAccept{Avatar: 0, Session: s.ID, Host: "verse"})
	if s.Avatar != 0 || s.Name != "alice" || s.Credential != "secret" {
		t.Errorf("session = %+v", s)
	}
	n := e.Node(s.Avatar)
	if n == nil || n.Type() != protocol.NodeObject || n.Owner() != s {
		t.Fatalf("avatar node = %v", n)
	}
	if got := e.Sessions().AcceptedCount(); got != 1 {
		t.Errorf("AcceptedCount() = %d, want 1", got)
	}
}

func TestConnectTwiceIsDropped(t *testing.T) {
	e, r := newTestEngine(t)
	s := connect(t, e, r, "alice")

	e.Dispatch(s, protocol.Connect{Name: "again"})
	assertSent(t, r, s)
	if e.NodeCount() != 1 {
		t.Errorf("NodeCount() = %d, want 1", e.NodeCount())
	}
}

func TestCommandsBeforeConnectAreDropped(t *testing.T) {
	e, r := newTestEngine(t)
	s := session.New("a")
	e.Attach(s)

	e.Dispatch(s, protocol.NodeCreate{Type: protocol.NodeText})
	e.Dispatch(s, protocol.NodeIndexSubscribe{Mask: ^uint32(0)})

	assertSent(t, r, s)
	if e.NodeCount() != 0 {
		t.Errorf("NodeCount() = %d, want 0", e.NodeCount())
	}
}

func TestUnknownNodeIsSilent(t *testing.T) {
	e, r := newTestEngine(t)
	a := connect(t, e, r, "a")
	text := create(t, e, a, protocol.NodeText)

	cmds := []protocol.Command{
		protocol.NodeSubscribe{Node: 99},
		protocol.NodeNameSet{Node: 99, Name: "x"},
		// wrong type for the node
		protocol.GeometryLayerCreate{Node: text, Layer: protocol.ResourceAny, Name: "x", Type: protocol.LayerVertexReal},
		protocol.TextBufferSubscribe{Node: text, Buffer: 3},
	}
	for _, c := range cmds {
		e.Dispatch(a, c)
	}
	assertSent(t, r, a)
}

// Two sessions A and B plus a bystander C: a value B sets on a layer A
// watches reaches A only.
func TestLayerValueReachesSubscribersOnly(t *testing.T) {
	e, r := newTestEngine(t)
	a := connect(t, e, r, "a")
	b := connect(t, e, r, "b")
	c := connect(t, e, r, "c")
	n := create(t, e, b, protocol.NodeGeometry)

	e.Dispatch(a, protocol.GeometryLayerSubscribe{Node: n, Layer: layerVertex, Precision: protocol.Real64})
	assertSent(t, r, a)

	e.Dispatch(b, protocol.GeometryVertexSetXYZ{
		Node: n, Layer: layerVertex, Vertex: protocol.ElementAny, Precision: protocol.Real64, Value: protocol.Vec3{1, 2, 3},
	})

	assertSent(t, r, a, protocol.GeometryVertexSetXYZ{
		Node: n, Layer: layerVertex, Vertex: 0, Precision: protocol.Real64, Value: protocol.Vec3{1, 2, 3},
	})
	assertSent(t, r, b)
	assertSent(t, r, c)
}

func TestDetachCleansUp(t *testing.T) {
	e, r := newTestEngine(t)
	a := connect(t, e, r, "a")
	b := connect(t, e, r, "b")
	avatar := a.Avatar

	e.Dispatch(b, protocol.NodeIndexSubscribe{Mask: protocol.NodeObject.Mask()})
	r.take(b)
	g := create(t, e, a, protocol.NodeGeometry)
	e.Dispatch(a, protocol.NodeSubscribe{Node: g})
	e.Dispatch(a, protocol.GeometryLayerSubscribe{Node: g, Layer: layerVertex})
	r.take(a)

	e.Detach(a)

	assertSent(t, r, b, protocol.NodeDestroy{Node: avatar})
	if e.Node(avatar) != nil {
		t.Error("avatar survived detach")
	}
	gn := e.Node(g).(*geometryNode)
	if gn.Owner() != nil {
		t.Error("geometry node still owned by detached session")
	}
	if gn.Subscribers() != 0 || layerDual(gn.layers.get(layerVertex)).list(protocol.Real64).Len() != 0 {
		t.Error("detached session left in subscriber lists")
	}
	if a.State != session.Closed {
		t.Errorf("State = %v, want closed", a.State)
	}
	if _, ok := e.Sessions().Get(a.ID); ok {
		t.Error("detached session still registered")
	}

	// Later mutations must not reach the detached session.
	e.Dispatch(b, protocol.GeometryVertexSetXYZ{Node: g, Layer: layerVertex, Vertex: protocol.ElementAny, Precision: protocol.Real64})
	assertSent(t, r, a)
}

func TestDetachUnknownSessionIsNoop(t *testing.T) {
	e, _ := newTestEngine(t)
	s := session.New("x")
	e.Detach(s)
	if s.State != session.Pending {
		t.Errorf("State = %v, want pending", s.State)
	}
}

func TestSinkFunc(t *testing.T) {
	var got []protocol.Command
	e := New(DefaultOptions(), SinkFunc(func(_ *session.Session, c protocol.Command) {
		got = append(got, c)
	}), logging.Noop())

	s := session.New("a")
	e.Attach(s)
	e.Dispatch(s, protocol.Connect{Name: "a"})
	if len(got) != 1 {
		t.Fatalf("sink saw %d commands, want 1", len(got))
	}
	if _, ok := got[0].(protocol.ConnectAccept); !ok {
		t.Errorf("sink saw %T, want ConnectAccept", got[0])
	}
}
