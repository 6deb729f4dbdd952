package engine

import (
	"github.com/verse-server/backend/internal/protocol"
	"github.com/verse-server/backend/internal/session"
	"github.com/verse-server/backend/internal/subscription"
)

// Node is implemented by every node kind. The common header is shared by
// embedding Head.
type Node interface {
	ID() protocol.NodeID
	Type() protocol.NodeType
	Owner() *session.Session
	Name() string

	head() *Head
	// describe sends the kind specific part of a node snapshot to s.
	describe(e *Engine, s *session.Session)
	// unsubscribe removes s from every list below the node head.
	unsubscribe(s *session.Session)
}

// Head is the part of a node every kind has: identity, owner, name, tag
// groups and the node level subscriber list.
type Head struct {
	id     protocol.NodeID
	typ    protocol.NodeType
	owner  *session.Session
	name   string
	groups table[*tagGroup]
	subs   *subscription.List
}

type tagGroup struct {
	tags table[protocol.TagValue]
}

func newHead(id protocol.NodeID, typ protocol.NodeType, owner *session.Session, chunk int) Head {
	return Head{
		id:     id,
		typ:    typ,
		owner:  owner,
		groups: newTable[*tagGroup](chunk),
		subs:   subscription.New(),
	}
}

func (h *Head) ID() protocol.NodeID     { return h.id }
func (h *Head) Type() protocol.NodeType { return h.typ }
func (h *Head) Owner() *session.Session { return h.owner }
func (h *Head) Name() string            { return h.name }
func (h *Head) head() *Head             { return h }

// Subscribers returns the node level subscriber count.
func (h *Head) Subscribers() int { return h.subs.Len() }

func (h *Head) leave(s *session.Session) {
	h.subs.Remove(s)
	h.groups.each(func(_ protocol.ResourceID, g *slot[*tagGroup]) {
		g.subs.Remove(s)
	})
}

func ownerFor(n Node, s *session.Session) protocol.Owner {
	if o := n.Owner(); o != nil && o == s {
		return protocol.OwnerMine
	}
	return protocol.OwnerOther
}

// lookup is the entry guard of every typed callback: an unknown id or a
// node of another kind is a reference error.
func lookup[T Node](e *Engine, id protocol.NodeID, typ protocol.NodeType) (T, error) {
	var zero T
	n := e.nodes.get(id)
	if n == nil || n.Type() != typ {
		return zero, errUnknownNode
	}
	t, ok := n.(T)
	if !ok {
		return zero, errUnknownNode
	}
	return t, nil
}

func (e *Engine) node(id protocol.NodeID) (Node, error) {
	n := e.nodes.get(id)
	if n == nil {
		return nil, errUnknownNode
	}
	return n, nil
}

// NodeCreate creates a node of type typ owned by owner and announces it to
// the type's index subscribers. It returns NodeAny when the node cannot be
// created.
func (e *Engine) NodeCreate(owner *session.Session, typ protocol.NodeType) protocol.NodeID {
	id, err := e.nodeCreate(owner, typ)
	if err != nil {
		return protocol.NodeAny
	}
	return id
}

func (e *Engine) nodeCreate(owner *session.Session, typ protocol.NodeType) (protocol.NodeID, error) {
	if !typ.Valid() {
		return protocol.NodeAny, errBadType
	}
	id, err := e.nodes.alloc()
	if err != nil {
		return protocol.NodeAny, err
	}

	h := newHead(id, typ, owner, e.opts.TableChunk)
	var n Node
	switch typ {
	case protocol.NodeObject:
		n = newObjectNode(e, h)
	case protocol.NodeGeometry:
		n = newGeometryNode(e, h)
	case protocol.NodeMaterial:
		n = newMaterialNode(e, h)
	case protocol.NodeBitmap:
		n = newBitmapNode(e, h)
	case protocol.NodeText:
		n = newTextNode(e, h)
	case protocol.NodeCurve:
		n = newCurveNode(e, h)
	case protocol.NodeAudio:
		n = newAudioNode(e, h)
	}
	e.nodes.put(id, n)
	e.metrics.Nodes.Inc()

	e.index[typ].Each(func(s *session.Session) {
		e.send(s, protocol.NodeCreate{Node: id, Type: typ, Owner: ownerFor(n, s)})
	})
	return id, nil
}

// NodeDestroy destroys a node, frees its id for reuse and announces the
// destruction to the type's index subscribers. Unknown ids are ignored.
func (e *Engine) NodeDestroy(id protocol.NodeID) {
	_ = e.nodeDestroy(id)
}

func (e *Engine) nodeDestroy(id protocol.NodeID) error {
	n := e.nodes.release(id)
	if n == nil {
		return errUnknownNode
	}
	for s, h := range e.avatars {
		if h.id == id {
			s.Avatar = protocol.NodeAny
			delete(e.avatars, s)
		}
	}
	e.metrics.Nodes.Dec()
	e.fanout(e.index[n.Type()], protocol.NodeDestroy{Node: id})
	return nil
}

// IndexSubscribe makes mask the set of node types s watches. Newly set
// types replay a creation notice for every live node of that type; cleared
// types stop notifications.
func (e *Engine) IndexSubscribe(s *session.Session, mask uint32) {
	for t := protocol.NodeType(0); t < protocol.NumNodeTypes; t++ {
		if mask&t.Mask() == 0 {
			e.index[t].Remove(s)
			continue
		}
		if !e.index[t].Add(s) {
			continue
		}
		e.nodes.each(func(n Node) {
			if n.Type() == t {
				e.send(s, protocol.NodeCreate{Node: n.ID(), Type: t, Owner: ownerFor(n, s)})
			}
		})
	}
}

// NodeSubscribe adds s to the node's subscribers and sends it a snapshot.
// Subscribing twice sends nothing the second time.
func (e *Engine) NodeSubscribe(s *session.Session, id protocol.NodeID) {
	_ = e.nodeSubscribe(s, id)
}

func (e *Engine) nodeSubscribe(s *session.Session, id protocol.NodeID) error {
	n, err := e.node(id)
	if err != nil {
		return err
	}
	h := n.head()
	if !h.subs.Add(s) {
		return nil
	}
	if h.name != "" {
		e.send(s, protocol.NodeNameSet{Node: id, Name: h.name})
	}
	h.groups.each(func(gid protocol.ResourceID, g *slot[*tagGroup]) {
		e.send(s, protocol.TagGroupCreate{Node: id, Group: gid, Name: g.name})
	})
	n.describe(e, s)
	return nil
}

// NodeUnsubscribe removes s from the node and from every resource of it.
func (e *Engine) NodeUnsubscribe(s *session.Session, id protocol.NodeID) {
	_ = e.nodeUnsubscribe(s, id)
}

func (e *Engine) nodeUnsubscribe(s *session.Session, id protocol.NodeID) error {
	n, err := e.node(id)
	if err != nil {
		return err
	}
	n.head().leave(s)
	n.unsubscribe(s)
	return nil
}

func (e *Engine) nodeNameSet(c protocol.NodeNameSet) error {
	n, err := e.node(c.Node)
	if err != nil {
		return err
	}
	h := n.head()
	h.name = c.Name
	e.fanout(h.subs, c)
	return nil
}

func (e *Engine) tagGroup(node protocol.NodeID, group protocol.ResourceID) (*Head, *slot[*tagGroup], error) {
	n, err := e.node(node)
	if err != nil {
		return nil, nil, err
	}
	h := n.head()
	g := h.groups.get(group)
	if g == nil {
		return nil, nil, errUnknownResource
	}
	return h, g, nil
}

func (e *Engine) tagGroupCreate(c protocol.TagGroupCreate) error {
	n, err := e.node(c.Node)
	if err != nil {
		return err
	}
	h := n.head()
	id, _, err := h.groups.upsert(c.Group, c.Name, always[*tagGroup], func() *tagGroup {
		return &tagGroup{tags: newTable[protocol.TagValue](e.opts.TableChunk)}
	})
	if err != nil {
		return err
	}
	c.Group = id
	e.fanout(h.subs, c)
	return nil
}

func (e *Engine) tagGroupDestroy(c protocol.TagGroupDestroy) error {
	n, err := e.node(c.Node)
	if err != nil {
		return err
	}
	h := n.head()
	if h.groups.remove(c.Group) == nil {
		return errUnknownResource
	}
	e.fanout(h.subs, c)
	return nil
}

func (e *Engine) tagGroupSubscribe(s *session.Session, c protocol.TagGroupSubscribe) error {
	_, g, err := e.tagGroup(c.Node, c.Group)
	if err != nil {
		return err
	}
	if !g.subs.Add(s) {
		return nil
	}
	g.value.tags.each(func(tid protocol.ResourceID, t *slot[protocol.TagValue]) {
		e.send(s, protocol.TagCreate{Node: c.Node, Group: c.Group, Tag: tid, Name: t.name, Value: t.value})
	})
	return nil
}

func (e *Engine) tagGroupUnsubscribe(s *session.Session, c protocol.TagGroupUnsubscribe) error {
	_, g, err := e.tagGroup(c.Node, c.Group)
	if err != nil {
		return err
	}
	g.subs.Remove(s)
	return nil
}

func (e *Engine) tagCreate(c protocol.TagCreate) error {
	if !c.Value.Type.Valid() {
		return errBadType
	}
	_, g, err := e.tagGroup(c.Node, c.Group)
	if err != nil {
		return err
	}
	id, t, err := g.value.tags.upsert(c.Tag, c.Name,
		func(v protocol.TagValue) bool { return v.Type == c.Value.Type },
		func() protocol.TagValue { return protocol.TagValue{} })
	if err != nil {
		return err
	}
	t.value = normalizeTag(c.Value)
	c.Tag = id
	c.Value = t.value
	e.fanout(g.subs, c)
	return nil
}

// normalizeTag keeps only the field selected by the tag type so a retyped
// tag never carries a stale payload.
func normalizeTag(v protocol.TagValue) protocol.TagValue {
	out := protocol.TagValue{Type: v.Type}
	switch v.Type {
	case protocol.TagBoolean:
		out.Bool = v.Bool
	case protocol.TagUint32:
		out.Uint32 = v.Uint32
	case protocol.TagReal64:
		out.Real64 = v.Real64
	case protocol.TagString:
		out.String = v.String
	case protocol.TagReal64Vec3:
		out.Vec3 = v.Vec3
	case protocol.TagLink:
		out.Link = v.Link
	case protocol.TagAnimation:
		out.Anim = v.Anim
	case protocol.TagBlob:
		out.Blob = append([]byte(nil), v.Blob...)
	}
	return out
}

func (e *Engine) tagDestroy(c protocol.TagDestroy) error {
	_, g, err := e.tagGroup(c.Node, c.Group)
	if err != nil {
		return err
	}
	if g.value.tags.remove(c.Tag) == nil {
		return errUnknownResource
	}
	e.fanout(g.subs, c)
	return nil
}
