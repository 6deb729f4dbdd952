// Package engine implements the node and resource replication engine: the
// node arena, per-type resource tables and the subscription lists that
// decide which sessions see which mutations.
//
// An Engine is not safe for concurrent use. Exactly one goroutine feeds it
// commands; every command runs to completion, fan-out included, before the
// next one starts.
package engine

import (
	"github.com/verse-server/backend/internal/logging"
	"github.com/verse-server/backend/internal/protocol"
	"github.com/verse-server/backend/internal/session"
	"github.com/verse-server/backend/internal/subscription"
)

// Sink receives every command the engine sends. The target session is
// always explicit.
type Sink interface {
	Send(to *session.Session, cmd protocol.Command)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(to *session.Session, cmd protocol.Command)

func (f SinkFunc) Send(to *session.Session, cmd protocol.Command) { f(to, cmd) }

// Options size the engine's growth steps.
type Options struct {
	HostName    string
	NodeChunk   int
	TableChunk  int
	SparseChunk int
	// MaxGrowth bounds how far past its capacity an explicit element id may
	// push a sparse array.
	MaxGrowth int
	// MaxBitmapBytes bounds the tile storage of one bitmap node summed over
	// its layers.
	MaxBitmapBytes int64
}

func DefaultOptions() Options {
	return Options{
		HostName:       "verse",
		NodeChunk:      16,
		TableChunk:     16,
		SparseChunk:    64,
		MaxGrowth:      4096,
		MaxBitmapBytes: 64 << 20,
	}
}

type Engine struct {
	opts     Options
	log      logging.Logger
	sink     Sink
	sessions *session.Registry
	nodes    arena
	index    [protocol.NumNodeTypes]*subscription.List
	avatars  map[*session.Session]handle
	metrics  metrics

	conversions int
}

func New(opts Options, sink Sink, log logging.Logger) *Engine {
	e := &Engine{
		opts:     opts,
		log:      log,
		sink:     sink,
		sessions: session.NewRegistry(),
		nodes:    newArena(opts.NodeChunk),
		avatars:  make(map[*session.Session]handle),
		metrics:  newMetrics(),
	}
	for i := range e.index {
		e.index[i] = subscription.New()
	}
	return e
}

// Sessions is the connection registry. Callers must stay on the engine's
// goroutine.
func (e *Engine) Sessions() *session.Registry {
	return e.sessions
}

// Conversions reports how many precision conversions fan-out has performed.
func (e *Engine) Conversions() int {
	return e.conversions
}

// NodeCount returns the number of live nodes.
func (e *Engine) NodeCount() int {
	return e.nodes.live
}

// Node returns the live node with the given id, or nil.
func (e *Engine) Node(id protocol.NodeID) Node {
	return e.nodes.get(id)
}

func (e *Engine) send(to *session.Session, cmd protocol.Command) {
	e.sink.Send(to, cmd)
	e.metrics.EventsSent.Inc()
}

func (e *Engine) fanout(l *subscription.List, cmd protocol.Command) {
	l.Each(func(s *session.Session) {
		e.send(s, cmd)
	})
}

func (e *Engine) drop(s *session.Session, cmd protocol.Command, err error) {
	e.metrics.DroppedCommands.WithLabelValues(err.Error()).Inc()
	e.log.Debugf("dropped %s from %s: %v", cmd.CommandName(), s, err)
}

// Attach registers a session for a newly accepted transport connection. The
// session may only send Connect until the handshake completes.
func (e *Engine) Attach(s *session.Session) {
	if e.sessions.Add(s) {
		e.log.Debugf("session %s attached from %s", s.ID, s.Address)
	}
}

// connect completes the handshake: the session gets an avatar object node
// it owns and is told its id.
func (e *Engine) connect(s *session.Session, c protocol.Connect) error {
	if s.State != session.Pending {
		return errAlreadyConnected
	}
	s.Name = c.Name
	s.Credential = c.Credential

	avatar, err := e.nodeCreate(s, protocol.NodeObject)
	if err != nil {
		e.send(s, protocol.ConnectTerminate{Reason: "server full"})
		return err
	}
	s.Avatar = avatar
	s.State = session.Accepted
	e.avatars[s] = e.nodes.handle(avatar)
	e.metrics.Sessions.Inc()

	e.send(s, protocol.ConnectAccept{Avatar: avatar, Session: s.ID, Host: e.opts.HostName})
	e.log.Infof("session %s connected as %q, avatar %d", s.ID, s.Name, avatar)
	return nil
}

// Detach tears a session down: it leaves every subscription list, its
// avatar is destroyed and the other nodes it owned become ownerless.
func (e *Engine) Detach(s *session.Session) {
	if _, ok := e.sessions.Get(s.ID); !ok {
		return
	}

	for _, l := range e.index {
		l.Remove(s)
	}
	e.nodes.each(func(n Node) {
		n.head().leave(s)
		n.unsubscribe(s)
	})

	if h, ok := e.avatars[s]; ok {
		if e.nodes.valid(h) {
			_ = e.nodeDestroy(h.id)
		}
		delete(e.avatars, s)
	}
	e.nodes.each(func(n Node) {
		if h := n.head(); h.owner == s {
			h.owner = nil
		}
	})

	if s.State == session.Accepted {
		e.metrics.Sessions.Dec()
	}
	s.State = session.Closed
	e.sessions.Remove(s)
	e.log.Debugf("session %s detached", s.ID)
}

// Dispatch runs one inbound command from s. Commands that fail a guard are
// dropped without a reply.
func (e *Engine) Dispatch(s *session.Session, cmd protocol.Command) {
	e.metrics.Commands.WithLabelValues(cmd.CommandName()).Inc()

	if c, ok := cmd.(protocol.Connect); ok {
		if err := e.connect(s, c); err != nil {
			e.drop(s, cmd, err)
		}
		return
	}
	if !s.IsAccepted() {
		e.drop(s, cmd, errNotConnected)
		return
	}
	if err := e.dispatch(s, cmd); err != nil {
		e.drop(s, cmd, err)
	}
}

func (e *Engine) dispatch(s *session.Session, cmd protocol.Command) error {
	switch c := cmd.(type) {
	// node head
	case protocol.NodeCreate:
		_, err := e.nodeCreate(s, c.Type)
		return err
	case protocol.NodeDestroy:
		return e.nodeDestroy(c.Node)
	case protocol.NodeSubscribe:
		return e.nodeSubscribe(s, c.Node)
	case protocol.NodeUnsubscribe:
		return e.nodeUnsubscribe(s, c.Node)
	case protocol.NodeIndexSubscribe:
		e.IndexSubscribe(s, c.Mask)
		return nil
	case protocol.NodeNameSet:
		return e.nodeNameSet(c)
	case protocol.TagGroupCreate:
		return e.tagGroupCreate(c)
	case protocol.TagGroupDestroy:
		return e.tagGroupDestroy(c)
	case protocol.TagGroupSubscribe:
		return e.tagGroupSubscribe(s, c)
	case protocol.TagGroupUnsubscribe:
		return e.tagGroupUnsubscribe(s, c)
	case protocol.TagCreate:
		return e.tagCreate(c)
	case protocol.TagDestroy:
		return e.tagDestroy(c)

	// object
	case protocol.ObjectTransformPos:
		return e.objectTransformPos(c)
	case protocol.ObjectTransformRot:
		return e.objectTransformRot(c)
	case protocol.ObjectTransformScale:
		return e.objectTransformScale(c)
	case protocol.ObjectTransformSubscribe:
		return e.objectTransformSubscribe(s, c)
	case protocol.ObjectTransformUnsubscribe:
		return e.objectTransformUnsubscribe(s, c)
	case protocol.ObjectLightSet:
		return e.objectLightSet(c)
	case protocol.ObjectLinkSet:
		return e.objectLinkSet(c)
	case protocol.ObjectLinkDestroy:
		return e.objectLinkDestroy(c)
	case protocol.ObjectMethodGroupCreate:
		return e.objectMethodGroupCreate(c)
	case protocol.ObjectMethodGroupDestroy:
		return e.objectMethodGroupDestroy(c)
	case protocol.ObjectMethodGroupSubscribe:
		return e.objectMethodGroupSubscribe(s, c)
	case protocol.ObjectMethodGroupUnsubscribe:
		return e.objectMethodGroupUnsubscribe(s, c)
	case protocol.ObjectMethodCreate:
		return e.objectMethodCreate(c)
	case protocol.ObjectMethodDestroy:
		return e.objectMethodDestroy(c)
	case protocol.ObjectMethodCall:
		return e.objectMethodCall(s, c)
	case protocol.ObjectHide:
		return e.objectHide(c)

	// geometry
	case protocol.GeometryLayerCreate:
		return e.geometryLayerCreate(c)
	case protocol.GeometryLayerDestroy:
		return e.geometryLayerDestroy(c)
	case protocol.GeometryLayerSubscribe:
		return e.geometryLayerSubscribe(s, c)
	case protocol.GeometryLayerUnsubscribe:
		return e.geometryLayerUnsubscribe(s, c)
	case protocol.GeometryVertexSetXYZ:
		return e.geometryVertexSetXYZ(c)
	case protocol.GeometryVertexDelete:
		return e.geometryVertexDelete(c)
	case protocol.GeometryVertexSetUint32:
		return e.geometryVertexSetUint32(c)
	case protocol.GeometryVertexSetReal:
		return e.geometryVertexSetReal(c)
	case protocol.GeometryPolygonSetCornerUint32:
		return e.geometryPolygonSetCornerUint32(c)
	case protocol.GeometryPolygonDelete:
		return e.geometryPolygonDelete(c)
	case protocol.GeometryPolygonSetCornerReal:
		return e.geometryPolygonSetCornerReal(c)
	case protocol.GeometryPolygonSetFaceUint8:
		return e.geometryPolygonSetFaceUint8(c)
	case protocol.GeometryPolygonSetFaceUint32:
		return e.geometryPolygonSetFaceUint32(c)
	case protocol.GeometryPolygonSetFaceReal:
		return e.geometryPolygonSetFaceReal(c)
	case protocol.GeometryCreaseSetVertex:
		return e.geometryCreaseSetVertex(c)
	case protocol.GeometryCreaseSetEdge:
		return e.geometryCreaseSetEdge(c)
	case protocol.GeometryBoneCreate:
		return e.geometryBoneCreate(c)
	case protocol.GeometryBoneDestroy:
		return e.geometryBoneDestroy(c)

	// material
	case protocol.MaterialFragmentCreate:
		return e.materialFragmentCreate(c)
	case protocol.MaterialFragmentDestroy:
		return e.materialFragmentDestroy(c)

	// bitmap
	case protocol.BitmapDimensionsSet:
		return e.bitmapDimensionsSet(c)
	case protocol.BitmapLayerCreate:
		return e.bitmapLayerCreate(c)
	case protocol.BitmapLayerDestroy:
		return e.bitmapLayerDestroy(c)
	case protocol.BitmapLayerSubscribe:
		return e.bitmapLayerSubscribe(s, c)
	case protocol.BitmapLayerUnsubscribe:
		return e.bitmapLayerUnsubscribe(s, c)
	case protocol.BitmapTileSet:
		return e.bitmapTileSet(c)

	// text
	case protocol.TextLanguageSet:
		return e.textLanguageSet(c)
	case protocol.TextBufferCreate:
		return e.textBufferCreate(c)
	case protocol.TextBufferDestroy:
		return e.textBufferDestroy(c)
	case protocol.TextBufferSubscribe:
		return e.textBufferSubscribe(s, c)
	case protocol.TextBufferUnsubscribe:
		return e.textBufferUnsubscribe(s, c)
	case protocol.TextSet:
		return e.textSet(c)

	// curve
	case protocol.CurveCreate:
		return e.curveCreate(c)
	case protocol.CurveDestroy:
		return e.curveDestroy(c)
	case protocol.CurveSubscribe:
		return e.curveSubscribe(s, c)
	case protocol.CurveUnsubscribe:
		return e.curveUnsubscribe(s, c)
	case protocol.CurveKeySet:
		return e.curveKeySet(c)
	case protocol.CurveKeyDestroy:
		return e.curveKeyDestroy(c)

	// audio
	case protocol.AudioBufferCreate:
		return e.audioBufferCreate(c)
	case protocol.AudioBufferDestroy:
		return e.audioBufferDestroy(c)
	case protocol.AudioBufferSubscribe:
		return e.audioBufferSubscribe(s, c)
	case protocol.AudioBufferUnsubscribe:
		return e.audioBufferUnsubscribe(s, c)
	case protocol.AudioBlockSet:
		return e.audioBlockSet(c)
	case protocol.AudioBlockClear:
		return e.audioBlockClear(c)
	case protocol.AudioStreamCreate:
		return e.audioStreamCreate(c)
	case protocol.AudioStreamDestroy:
		return e.audioStreamDestroy(c)
	case protocol.AudioStreamSubscribe:
		return e.audioStreamSubscribe(s, c)
	case protocol.AudioStreamUnsubscribe:
		return e.audioStreamUnsubscribe(s, c)
	case protocol.AudioStream:
		return e.audioStream(c)
	}
	return errUnhandled
}
