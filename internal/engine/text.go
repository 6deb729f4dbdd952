package engine

import (
	"github.com/verse-server/backend/internal/protocol"
	"github.com/verse-server/backend/internal/session"
)

type textNode struct {
	Head
	language string
	buffers  table[[]byte]
}

func newTextNode(e *Engine, h Head) *textNode {
	return &textNode{Head: h, buffers: newTable[[]byte](e.opts.TableChunk)}
}

func (t *textNode) describe(e *Engine, s *session.Session) {
	if t.language != "" {
		e.send(s, protocol.TextLanguageSet{Node: t.id, Language: t.language})
	}
	t.buffers.each(func(id protocol.ResourceID, b *slot[[]byte]) {
		e.send(s, protocol.TextBufferCreate{Node: t.id, Buffer: id, Name: b.name})
	})
}

func (t *textNode) unsubscribe(s *session.Session) {
	t.buffers.each(func(_ protocol.ResourceID, b *slot[[]byte]) {
		b.subs.Remove(s)
	})
}

func (e *Engine) textBuffer(node protocol.NodeID, buffer protocol.ResourceID) (*textNode, *slot[[]byte], error) {
	t, err := lookup[*textNode](e, node, protocol.NodeText)
	if err != nil {
		return nil, nil, err
	}
	b := t.buffers.get(buffer)
	if b == nil {
		return nil, nil, errUnknownResource
	}
	return t, b, nil
}

func (e *Engine) textLanguageSet(c protocol.TextLanguageSet) error {
	t, err := lookup[*textNode](e, c.Node, protocol.NodeText)
	if err != nil {
		return err
	}
	t.language = c.Language
	e.fanout(t.subs, c)
	return nil
}

func (e *Engine) textBufferCreate(c protocol.TextBufferCreate) error {
	t, err := lookup[*textNode](e, c.Node, protocol.NodeText)
	if err != nil {
		return err
	}
	id, _, err := t.buffers.upsert(c.Buffer, c.Name, always[[]byte], func() []byte { return nil })
	if err != nil {
		return err
	}
	c.Buffer = id
	e.fanout(t.subs, c)
	return nil
}

func (e *Engine) textBufferDestroy(c protocol.TextBufferDestroy) error {
	t, err := lookup[*textNode](e, c.Node, protocol.NodeText)
	if err != nil {
		return err
	}
	if t.buffers.remove(c.Buffer) == nil {
		return errUnknownResource
	}
	e.fanout(t.subs, c)
	return nil
}

// textBufferSubscribe sends the whole buffer as one replacement of the
// empty range at 0.
func (e *Engine) textBufferSubscribe(s *session.Session, c protocol.TextBufferSubscribe) error {
	_, b, err := e.textBuffer(c.Node, c.Buffer)
	if err != nil {
		return err
	}
	if !b.subs.Add(s) {
		return nil
	}
	if len(b.value) > 0 {
		e.send(s, protocol.TextSet{Node: c.Node, Buffer: c.Buffer, Text: string(b.value)})
	}
	return nil
}

func (e *Engine) textBufferUnsubscribe(s *session.Session, c protocol.TextBufferUnsubscribe) error {
	_, b, err := e.textBuffer(c.Node, c.Buffer)
	if err != nil {
		return err
	}
	b.subs.Remove(s)
	return nil
}

// textSet replaces Length bytes at Pos. Both are clamped to the buffer so
// subscribers apply exactly the edit the server applied.
func (e *Engine) textSet(c protocol.TextSet) error {
	_, b, err := e.textBuffer(c.Node, c.Buffer)
	if err != nil {
		return err
	}
	size := uint32(len(b.value))
	if c.Pos > size {
		c.Pos = size
	}
	if c.Length > size-c.Pos {
		c.Length = size - c.Pos
	}
	buf := make([]byte, 0, int(size-c.Length)+len(c.Text))
	buf = append(buf, b.value[:c.Pos]...)
	buf = append(buf, c.Text...)
	buf = append(buf, b.value[c.Pos+c.Length:]...)
	b.value = buf
	e.fanout(b.subs, c)
	return nil
}
