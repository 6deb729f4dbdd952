package engine

import (
	"sort"

	"github.com/verse-server/backend/internal/protocol"
	"github.com/verse-server/backend/internal/session"
)

type audioNode struct {
	Head
	buffers table[*audioBuffer]
	// streams carry no payload; samples are forwarded as they arrive.
	streams table[struct{}]
}

type audioBuffer struct {
	typ       protocol.SampleType
	frequency float64
	blocks    map[uint32][]byte
}

func newAudioNode(e *Engine, h Head) *audioNode {
	return &audioNode{
		Head:    h,
		buffers: newTable[*audioBuffer](e.opts.TableChunk),
		streams: newTable[struct{}](e.opts.TableChunk),
	}
}

func (a *audioNode) describe(e *Engine, s *session.Session) {
	a.buffers.each(func(id protocol.ResourceID, b *slot[*audioBuffer]) {
		e.send(s, protocol.AudioBufferCreate{Node: a.id, Buffer: id, Name: b.name, Type: b.value.typ, Frequency: b.value.frequency})
	})
	a.streams.each(func(id protocol.ResourceID, st *slot[struct{}]) {
		e.send(s, protocol.AudioStreamCreate{Node: a.id, Stream: id, Name: st.name})
	})
}

func (a *audioNode) unsubscribe(s *session.Session) {
	a.buffers.each(func(_ protocol.ResourceID, b *slot[*audioBuffer]) {
		b.subs.Remove(s)
	})
	a.streams.each(func(_ protocol.ResourceID, st *slot[struct{}]) {
		st.subs.Remove(s)
	})
}

func (e *Engine) audioBuffer(node protocol.NodeID, buffer protocol.ResourceID) (*slot[*audioBuffer], error) {
	a, err := lookup[*audioNode](e, node, protocol.NodeAudio)
	if err != nil {
		return nil, err
	}
	b := a.buffers.get(buffer)
	if b == nil {
		return nil, errUnknownResource
	}
	return b, nil
}

func (e *Engine) audioStreamSlot(node protocol.NodeID, stream protocol.ResourceID) (*slot[struct{}], error) {
	a, err := lookup[*audioNode](e, node, protocol.NodeAudio)
	if err != nil {
		return nil, err
	}
	st := a.streams.get(stream)
	if st == nil {
		return nil, errUnknownResource
	}
	return st, nil
}

func (e *Engine) audioBufferCreate(c protocol.AudioBufferCreate) error {
	a, err := lookup[*audioNode](e, c.Node, protocol.NodeAudio)
	if err != nil {
		return err
	}
	if !c.Type.Valid() {
		return errBadType
	}
	id, b, err := a.buffers.upsert(c.Buffer, c.Name,
		func(b *audioBuffer) bool { return b.typ == c.Type },
		func() *audioBuffer { return &audioBuffer{typ: c.Type, blocks: make(map[uint32][]byte)} })
	if err != nil {
		return err
	}
	b.value.frequency = c.Frequency
	c.Buffer = id
	e.fanout(a.subs, c)
	return nil
}

func (e *Engine) audioBufferDestroy(c protocol.AudioBufferDestroy) error {
	a, err := lookup[*audioNode](e, c.Node, protocol.NodeAudio)
	if err != nil {
		return err
	}
	if a.buffers.remove(c.Buffer) == nil {
		return errUnknownResource
	}
	e.fanout(a.subs, c)
	return nil
}

// audioBufferSubscribe replays stored blocks in index order.
func (e *Engine) audioBufferSubscribe(s *session.Session, c protocol.AudioBufferSubscribe) error {
	b, err := e.audioBuffer(c.Node, c.Buffer)
	if err != nil {
		return err
	}
	if !b.subs.Add(s) {
		return nil
	}
	idx := make([]uint32, 0, len(b.value.blocks))
	for i := range b.value.blocks {
		idx = append(idx, i)
	}
	sort.Slice(idx, func(i, j int) bool { return idx[i] < idx[j] })
	for _, i := range idx {
		e.send(s, protocol.AudioBlockSet{Node: c.Node, Buffer: c.Buffer, Block: i, Type: b.value.typ, Data: b.value.blocks[i]})
	}
	return nil
}

func (e *Engine) audioBufferUnsubscribe(s *session.Session, c protocol.AudioBufferUnsubscribe) error {
	b, err := e.audioBuffer(c.Node, c.Buffer)
	if err != nil {
		return err
	}
	b.subs.Remove(s)
	return nil
}

// audioBlockSet stores one full block. The sample type must match the
// buffer and the payload must be exactly one block long.
func (e *Engine) audioBlockSet(c protocol.AudioBlockSet) error {
	b, err := e.audioBuffer(c.Node, c.Buffer)
	if err != nil {
		return err
	}
	if c.Type != b.value.typ {
		return errBadType
	}
	if len(c.Data) != c.Type.BlockBytes() {
		return errBadPayload
	}
	c.Data = append([]byte(nil), c.Data...)
	b.value.blocks[c.Block] = c.Data
	e.fanout(b.subs, c)
	return nil
}

func (e *Engine) audioBlockClear(c protocol.AudioBlockClear) error {
	b, err := e.audioBuffer(c.Node, c.Buffer)
	if err != nil {
		return err
	}
	if _, ok := b.value.blocks[c.Block]; !ok {
		return errUnknownElement
	}
	delete(b.value.blocks, c.Block)
	e.fanout(b.subs, c)
	return nil
}

func (e *Engine) audioStreamCreate(c protocol.AudioStreamCreate) error {
	a, err := lookup[*audioNode](e, c.Node, protocol.NodeAudio)
	if err != nil {
		return err
	}
	id, _, err := a.streams.upsert(c.Stream, c.Name, always[struct{}], func() struct{} { return struct{}{} })
	if err != nil {
		return err
	}
	c.Stream = id
	e.fanout(a.subs, c)
	return nil
}

func (e *Engine) audioStreamDestroy(c protocol.AudioStreamDestroy) error {
	a, err := lookup[*audioNode](e, c.Node, protocol.NodeAudio)
	if err != nil {
		return err
	}
	if a.streams.remove(c.Stream) == nil {
		return errUnknownResource
	}
	e.fanout(a.subs, c)
	return nil
}

func (e *Engine) audioStreamSubscribe(s *session.Session, c protocol.AudioStreamSubscribe) error {
	st, err := e.audioStreamSlot(c.Node, c.Stream)
	if err != nil {
		return err
	}
	st.subs.Add(s)
	return nil
}

func (e *Engine) audioStreamUnsubscribe(s *session.Session, c protocol.AudioStreamUnsubscribe) error {
	st, err := e.audioStreamSlot(c.Node, c.Stream)
	if err != nil {
		return err
	}
	st.subs.Remove(s)
	return nil
}

func (e *Engine) audioStream(c protocol.AudioStream) error {
	st, err := e.audioStreamSlot(c.Node, c.Stream)
	if err != nil {
		return err
	}
	if !c.Type.Valid() {
		return errBadType
	}
	e.fanout(st.subs, c)
	return nil
}
