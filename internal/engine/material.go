package engine

import (
	"github.com/verse-server/backend/internal/protocol"
	"github.com/verse-server/backend/internal/session"
)

// materialNode holds shading fragments. Their payload is opaque here.
type materialNode struct {
	Head
	fragments sparse[protocol.MaterialFragmentCreate]
}

func newMaterialNode(e *Engine, h Head) *materialNode {
	return &materialNode{
		Head:      h,
		fragments: newSparse[protocol.MaterialFragmentCreate](e.opts.SparseChunk, e.opts.MaxGrowth),
	}
}

func (m *materialNode) describe(e *Engine, s *session.Session) {
	m.fragments.each(func(_ protocol.ElementID, f *protocol.MaterialFragmentCreate) {
		e.send(s, *f)
	})
}

func (m *materialNode) unsubscribe(*session.Session) {}

func (e *Engine) materialFragmentCreate(c protocol.MaterialFragmentCreate) error {
	m, err := lookup[*materialNode](e, c.Node, protocol.NodeMaterial)
	if err != nil {
		return err
	}
	id, err := m.fragments.alloc(c.Fragment)
	if err != nil {
		return err
	}
	c.Fragment = id
	c.Value = append([]byte(nil), c.Value...)
	m.fragments.set(id, c)
	e.fanout(m.subs, c)
	return nil
}

func (e *Engine) materialFragmentDestroy(c protocol.MaterialFragmentDestroy) error {
	m, err := lookup[*materialNode](e, c.Node, protocol.NodeMaterial)
	if err != nil {
		return err
	}
	if !m.fragments.free(c.Fragment) {
		return errUnknownElement
	}
	e.fanout(m.subs, c)
	return nil
}
