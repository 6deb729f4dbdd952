package engine

import (
	"github.com/verse-server/backend/internal/protocol"
	"github.com/verse-server/backend/internal/session"
)

const maxCurveDimensions = 4

type curveNode struct {
	Head
	curves table[*curve]
}

type curve struct {
	dimensions uint8
	keys       sparse[protocol.CurveKeySet]
}

func newCurveNode(e *Engine, h Head) *curveNode {
	return &curveNode{Head: h, curves: newTable[*curve](e.opts.TableChunk)}
}

func (n *curveNode) describe(e *Engine, s *session.Session) {
	n.curves.each(func(id protocol.ResourceID, c *slot[*curve]) {
		e.send(s, protocol.CurveCreate{Node: n.id, Curve: id, Name: c.name, Dimensions: c.value.dimensions})
	})
}

func (n *curveNode) unsubscribe(s *session.Session) {
	n.curves.each(func(_ protocol.ResourceID, c *slot[*curve]) {
		c.subs.Remove(s)
	})
}

func (e *Engine) curve(node protocol.NodeID, id protocol.ResourceID) (*slot[*curve], error) {
	n, err := lookup[*curveNode](e, node, protocol.NodeCurve)
	if err != nil {
		return nil, err
	}
	c := n.curves.get(id)
	if c == nil {
		return nil, errUnknownResource
	}
	return c, nil
}

// curveCreate keeps the keys of an existing curve when only its name
// changes; a new dimension count starts from an empty key set.
func (e *Engine) curveCreate(c protocol.CurveCreate) error {
	n, err := lookup[*curveNode](e, c.Node, protocol.NodeCurve)
	if err != nil {
		return err
	}
	if c.Dimensions == 0 || c.Dimensions > maxCurveDimensions {
		return errBadType
	}
	id, _, err := n.curves.upsert(c.Curve, c.Name,
		func(cv *curve) bool { return cv.dimensions == c.Dimensions },
		func() *curve {
			return &curve{dimensions: c.Dimensions, keys: newSparse[protocol.CurveKeySet](e.opts.SparseChunk, e.opts.MaxGrowth)}
		})
	if err != nil {
		return err
	}
	c.Curve = id
	e.fanout(n.subs, c)
	return nil
}

func (e *Engine) curveDestroy(c protocol.CurveDestroy) error {
	n, err := lookup[*curveNode](e, c.Node, protocol.NodeCurve)
	if err != nil {
		return err
	}
	if n.curves.remove(c.Curve) == nil {
		return errUnknownResource
	}
	e.fanout(n.subs, c)
	return nil
}

func (e *Engine) curveSubscribe(s *session.Session, c protocol.CurveSubscribe) error {
	cv, err := e.curve(c.Node, c.Curve)
	if err != nil {
		return err
	}
	if !cv.subs.Add(s) {
		return nil
	}
	cv.value.keys.each(func(_ protocol.ElementID, k *protocol.CurveKeySet) {
		e.send(s, *k)
	})
	return nil
}

func (e *Engine) curveUnsubscribe(s *session.Session, c protocol.CurveUnsubscribe) error {
	cv, err := e.curve(c.Node, c.Curve)
	if err != nil {
		return err
	}
	cv.subs.Remove(s)
	return nil
}

func (e *Engine) curveKeySet(c protocol.CurveKeySet) error {
	cv, err := e.curve(c.Node, c.Curve)
	if err != nil {
		return err
	}
	if c.Dimensions != cv.value.dimensions {
		return errBadType
	}
	id, err := cv.value.keys.alloc(c.Key)
	if err != nil {
		return err
	}
	c.Key = id
	cv.value.keys.set(id, c)
	e.fanout(cv.subs, c)
	return nil
}

func (e *Engine) curveKeyDestroy(c protocol.CurveKeyDestroy) error {
	cv, err := e.curve(c.Node, c.Curve)
	if err != nil {
		return err
	}
	if !cv.value.keys.free(c.Key) {
		return errUnknownElement
	}
	e.fanout(cv.subs, c)
	return nil
}
