package engine

import (
	"github.com/verse-server/backend/internal/protocol"
	"github.com/verse-server/backend/internal/session"
)

type objectNode struct {
	Head

	pos   protocol.ObjectTransformPos
	rot   protocol.ObjectTransformRot
	scale protocol.ObjectTransformScale
	// precision is the highest precision a transform was ever set at.
	precision protocol.Precision
	transform [protocol.NumTransformKinds]dual

	light        protocol.Vec3
	hidden       bool
	links        sparse[protocol.ObjectLinkSet]
	methodGroups table[*methodGroup]
}

type methodGroup struct {
	methods table[[]protocol.MethodParam]
}

func newObjectNode(e *Engine, h Head) *objectNode {
	o := &objectNode{
		Head:         h,
		links:        newSparse[protocol.ObjectLinkSet](e.opts.SparseChunk, e.opts.MaxGrowth),
		methodGroups: newTable[*methodGroup](e.opts.TableChunk),
	}
	o.pos.Node, o.rot.Node, o.scale.Node = h.id, h.id, h.id
	o.rot.Rot = protocol.Quat{0, 0, 0, 1}
	o.scale.Scale = protocol.Vec3{1, 1, 1}
	for i := range o.transform {
		o.transform[i] = newDual()
	}
	return o
}

func (o *objectNode) describe(e *Engine, s *session.Session) {
	e.send(s, protocol.ObjectLightSet{Node: o.id, Light: o.light})
	if o.hidden {
		e.send(s, protocol.ObjectHide{Node: o.id, Hidden: true})
	}
	o.links.each(func(_ protocol.ElementID, l *protocol.ObjectLinkSet) {
		e.send(s, *l)
	})
	o.methodGroups.each(func(gid protocol.ResourceID, g *slot[*methodGroup]) {
		e.send(s, protocol.ObjectMethodGroupCreate{Node: o.id, Group: gid, Name: g.name})
	})
}

func (o *objectNode) unsubscribe(s *session.Session) {
	for _, d := range o.transform {
		d.remove(s)
	}
	o.methodGroups.each(func(_ protocol.ResourceID, g *slot[*methodGroup]) {
		g.subs.Remove(s)
	})
}

// Transforms. The canonical copy is stored at float64; each fan-out
// converts only for the precision lists that have members.

func posAt(c protocol.ObjectTransformPos, p protocol.Precision, conv convert) protocol.ObjectTransformPos {
	c.Precision = p
	c.Pos = conv.vec3(c.Pos)
	c.Speed = conv.vec3(c.Speed)
	c.Accel = conv.vec3(c.Accel)
	c.DragNormal = conv.vec3(c.DragNormal)
	c.Drag = conv(c.Drag)
	return c
}

func rotAt(c protocol.ObjectTransformRot, p protocol.Precision, conv convert) protocol.ObjectTransformRot {
	c.Precision = p
	c.Rot = conv.quat(c.Rot)
	c.Speed = conv.quat(c.Speed)
	c.Accel = conv.quat(c.Accel)
	c.DragNormal = conv.quat(c.DragNormal)
	c.Drag = conv(c.Drag)
	return c
}

func scaleAt(c protocol.ObjectTransformScale, p protocol.Precision, conv convert) protocol.ObjectTransformScale {
	c.Precision = p
	c.Scale = conv.vec3(c.Scale)
	return c
}

func (e *Engine) objectTransformPos(c protocol.ObjectTransformPos) error {
	o, err := lookup[*objectNode](e, c.Node, protocol.NodeObject)
	if err != nil {
		return err
	}
	if !c.Precision.Valid() {
		return errBadType
	}
	o.pos = posAt(c, c.Precision, ingest(c.Precision))
	o.precision = maxPrecision(o.precision, c.Precision)
	e.fanoutReal(o.transform[protocol.TransformPos], c.Precision, func(p protocol.Precision, conv convert) protocol.Command {
		return posAt(o.pos, p, conv)
	})
	return nil
}

func (e *Engine) objectTransformRot(c protocol.ObjectTransformRot) error {
	o, err := lookup[*objectNode](e, c.Node, protocol.NodeObject)
	if err != nil {
		return err
	}
	if !c.Precision.Valid() {
		return errBadType
	}
	o.rot = rotAt(c, c.Precision, ingest(c.Precision))
	o.precision = maxPrecision(o.precision, c.Precision)
	e.fanoutReal(o.transform[protocol.TransformRot], c.Precision, func(p protocol.Precision, conv convert) protocol.Command {
		return rotAt(o.rot, p, conv)
	})
	return nil
}

func (e *Engine) objectTransformScale(c protocol.ObjectTransformScale) error {
	o, err := lookup[*objectNode](e, c.Node, protocol.NodeObject)
	if err != nil {
		return err
	}
	if !c.Precision.Valid() {
		return errBadType
	}
	o.scale = scaleAt(c, c.Precision, ingest(c.Precision))
	o.precision = maxPrecision(o.precision, c.Precision)
	e.fanoutReal(o.transform[protocol.TransformScale], c.Precision, func(p protocol.Precision, conv convert) protocol.Command {
		return scaleAt(o.scale, p, conv)
	})
	return nil
}

func (e *Engine) objectTransformSubscribe(s *session.Session, c protocol.ObjectTransformSubscribe) error {
	o, err := lookup[*objectNode](e, c.Node, protocol.NodeObject)
	if err != nil {
		return err
	}
	if c.Kind >= protocol.NumTransformKinds || !c.Precision.Valid() {
		return errBadType
	}
	if !o.transform[c.Kind].add(s, c.Precision) {
		return nil
	}
	conv := e.converter(o.precision, c.Precision)
	switch c.Kind {
	case protocol.TransformPos:
		e.send(s, posAt(o.pos, c.Precision, conv))
	case protocol.TransformRot:
		e.send(s, rotAt(o.rot, c.Precision, conv))
	case protocol.TransformScale:
		e.send(s, scaleAt(o.scale, c.Precision, conv))
	}
	return nil
}

func (e *Engine) objectTransformUnsubscribe(s *session.Session, c protocol.ObjectTransformUnsubscribe) error {
	o, err := lookup[*objectNode](e, c.Node, protocol.NodeObject)
	if err != nil {
		return err
	}
	if c.Kind >= protocol.NumTransformKinds {
		return errBadType
	}
	o.transform[c.Kind].remove(s)
	return nil
}

func (e *Engine) objectLightSet(c protocol.ObjectLightSet) error {
	o, err := lookup[*objectNode](e, c.Node, protocol.NodeObject)
	if err != nil {
		return err
	}
	o.light = c.Light
	e.fanout(o.subs, c)
	return nil
}

func (e *Engine) objectHide(c protocol.ObjectHide) error {
	o, err := lookup[*objectNode](e, c.Node, protocol.NodeObject)
	if err != nil {
		return err
	}
	o.hidden = c.Hidden
	e.fanout(o.subs, c)
	return nil
}

func (e *Engine) objectLinkSet(c protocol.ObjectLinkSet) error {
	o, err := lookup[*objectNode](e, c.Node, protocol.NodeObject)
	if err != nil {
		return err
	}
	id, err := o.links.alloc(c.Link)
	if err != nil {
		return err
	}
	c.Link = id
	o.links.set(id, c)
	e.fanout(o.subs, c)
	return nil
}

func (e *Engine) objectLinkDestroy(c protocol.ObjectLinkDestroy) error {
	o, err := lookup[*objectNode](e, c.Node, protocol.NodeObject)
	if err != nil {
		return err
	}
	if !o.links.free(c.Link) {
		return errUnknownElement
	}
	e.fanout(o.subs, c)
	return nil
}

// Method groups.

func (e *Engine) methodGroup(node protocol.NodeID, group protocol.ResourceID) (*objectNode, *slot[*methodGroup], error) {
	o, err := lookup[*objectNode](e, node, protocol.NodeObject)
	if err != nil {
		return nil, nil, err
	}
	g := o.methodGroups.get(group)
	if g == nil {
		return nil, nil, errUnknownResource
	}
	return o, g, nil
}

func (e *Engine) objectMethodGroupCreate(c protocol.ObjectMethodGroupCreate) error {
	o, err := lookup[*objectNode](e, c.Node, protocol.NodeObject)
	if err != nil {
		return err
	}
	id, _, err := o.methodGroups.upsert(c.Group, c.Name, always[*methodGroup], func() *methodGroup {
		return &methodGroup{methods: newTable[[]protocol.MethodParam](e.opts.TableChunk)}
	})
	if err != nil {
		return err
	}
	c.Group = id
	e.fanout(o.subs, c)
	return nil
}

func (e *Engine) objectMethodGroupDestroy(c protocol.ObjectMethodGroupDestroy) error {
	o, err := lookup[*objectNode](e, c.Node, protocol.NodeObject)
	if err != nil {
		return err
	}
	if o.methodGroups.remove(c.Group) == nil {
		return errUnknownResource
	}
	e.fanout(o.subs, c)
	return nil
}

func (e *Engine) objectMethodGroupSubscribe(s *session.Session, c protocol.ObjectMethodGroupSubscribe) error {
	_, g, err := e.methodGroup(c.Node, c.Group)
	if err != nil {
		return err
	}
	if !g.subs.Add(s) {
		return nil
	}
	g.value.methods.each(func(mid protocol.ResourceID, m *slot[[]protocol.MethodParam]) {
		e.send(s, protocol.ObjectMethodCreate{Node: c.Node, Group: c.Group, Method: mid, Name: m.name, Params: m.value})
	})
	return nil
}

func (e *Engine) objectMethodGroupUnsubscribe(s *session.Session, c protocol.ObjectMethodGroupUnsubscribe) error {
	_, g, err := e.methodGroup(c.Node, c.Group)
	if err != nil {
		return err
	}
	g.subs.Remove(s)
	return nil
}

func (e *Engine) objectMethodCreate(c protocol.ObjectMethodCreate) error {
	_, g, err := e.methodGroup(c.Node, c.Group)
	if err != nil {
		return err
	}
	params := append([]protocol.MethodParam(nil), c.Params...)
	id, m, err := g.value.methods.upsert(c.Method, c.Name, always[[]protocol.MethodParam], func() []protocol.MethodParam {
		return nil
	})
	if err != nil {
		return err
	}
	m.value = params
	c.Method = id
	c.Params = params
	e.fanout(g.subs, c)
	return nil
}

func (e *Engine) objectMethodDestroy(c protocol.ObjectMethodDestroy) error {
	_, g, err := e.methodGroup(c.Node, c.Group)
	if err != nil {
		return err
	}
	if g.value.methods.remove(c.Method) == nil {
		return errUnknownResource
	}
	e.fanout(g.subs, c)
	return nil
}

// objectMethodCall forwards a call to the group's subscribers. The sender
// is always the calling session's avatar.
func (e *Engine) objectMethodCall(s *session.Session, c protocol.ObjectMethodCall) error {
	_, g, err := e.methodGroup(c.Node, c.Group)
	if err != nil {
		return err
	}
	if g.value.methods.get(c.Method) == nil {
		return errUnknownResource
	}
	c.Sender = s.Avatar
	e.fanout(g.subs, c)
	return nil
}
