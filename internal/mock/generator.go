// Package mock drives a running server with scripted peers so the scene
// graph has live content without any real client attached.
package mock

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/verse-server/backend/internal/logging"
	"github.com/verse-server/backend/internal/protocol"
)

const dialRetry = 100 * time.Millisecond

var errClosed = errors.New("peer connection closed")

type mockPeer struct {
	name    string
	pattern string
	typ     protocol.NodeType

	conn    *websocket.Conn
	msgType int
	avatar  protocol.NodeID
	node    protocol.NodeID
	inbox   chan protocol.Command
}

var words = strings.Fields("the quick brown fox jumps over the lazy dog")

func NewGenerator(url string, codec protocol.Codec, log logging.Logger) *MockGenerator {
	return &MockGenerator{
		url:      url,
		codec:    codec,
		log:      log,
		Interval: 500 * time.Millisecond,
	}
}

type MockGenerator struct {
	url   string
	codec protocol.Codec
	log   logging.Logger
	peers []*mockPeer

	Interval time.Duration
}

// Start connects every peer and launches the tick loop. It returns once the
// peers own their nodes.
func (g *MockGenerator) Start(ctx context.Context) error {
	g.peers = []*mockPeer{
		{name: "orbit", pattern: "orbit", typ: protocol.NodeObject},
		{name: "typist", pattern: "typist", typ: protocol.NodeText},
		{name: "painter", pattern: "painter", typ: protocol.NodeBitmap},
		{name: "sculptor", pattern: "sculptor", typ: protocol.NodeGeometry},
	}

	for _, p := range g.peers {
		if err := g.join(ctx, p); err != nil {
			g.Close()
			return fmt.Errorf("mock peer %s: %w", p.name, err)
		}
		g.setup(p)
	}

	go g.run(ctx)
	return nil
}

func (g *MockGenerator) Close() {
	for _, p := range g.peers {
		if p.conn != nil {
			p.conn.Close()
		}
	}
}

func (g *MockGenerator) dial(ctx context.Context) (*websocket.Conn, error) {
	for {
		conn, _, err := websocket.DefaultDialer.DialContext(ctx, g.url, nil)
		if err == nil {
			return conn, nil
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(dialRetry):
		}
	}
}

// join connects p and waits for its avatar and, for peers that need one,
// the node it creates.
func (g *MockGenerator) join(ctx context.Context, p *mockPeer) error {
	conn, err := g.dial(ctx)
	if err != nil {
		return err
	}
	p.conn = conn
	p.msgType = websocket.TextMessage
	if g.codec.Binary() {
		p.msgType = websocket.BinaryMessage
	}
	p.inbox = make(chan protocol.Command, 64)
	go g.read(p)

	g.send(p, protocol.Connect{Name: "mock-" + p.name})
	accept, err := waitFor[protocol.ConnectAccept](ctx, p, func(protocol.ConnectAccept) bool { return true })
	if err != nil {
		return err
	}
	p.avatar = accept.Avatar
	if p.typ == protocol.NodeObject {
		p.node = p.avatar
		return nil
	}

	g.send(p, protocol.NodeIndexSubscribe{Mask: p.typ.Mask()})
	g.send(p, protocol.NodeCreate{Type: p.typ})
	created, err := waitFor[protocol.NodeCreate](ctx, p, func(c protocol.NodeCreate) bool {
		return c.Type == p.typ && c.Owner == protocol.OwnerMine
	})
	if err != nil {
		return err
	}
	p.node = created.Node
	g.send(p, protocol.NodeIndexSubscribe{})
	return nil
}

func waitFor[T protocol.Command](ctx context.Context, p *mockPeer, match func(T) bool) (T, error) {
	var zero T
	for {
		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case cmd, ok := <-p.inbox:
			if !ok {
				return zero, errClosed
			}
			if c, ok := cmd.(T); ok && match(c) {
				return c, nil
			}
		}
	}
}

// read drains everything the server sends so the peer never counts as slow.
func (g *MockGenerator) read(p *mockPeer) {
	defer close(p.inbox)
	for {
		_, data, err := p.conn.ReadMessage()
		if err != nil {
			return
		}
		cmd, err := g.codec.Decode(data)
		if err != nil {
			g.log.Debugf("mock %s: %v", p.name, err)
			continue
		}
		select {
		case p.inbox <- cmd:
		default:
		}
	}
}

func (g *MockGenerator) send(p *mockPeer, cmd protocol.Command) {
	data, err := g.codec.Encode(cmd)
	if err != nil {
		g.log.Warningf("mock %s: %v", p.name, err)
		return
	}
	if err := p.conn.WriteMessage(p.msgType, data); err != nil {
		g.log.Debugf("mock %s: write: %v", p.name, err)
	}
}

// setup names the node and creates the resources the pattern writes to.
// Fresh nodes hand out resource id 0 first.
func (g *MockGenerator) setup(p *mockPeer) {
	g.send(p, protocol.NodeNameSet{Node: p.node, Name: "mock-" + p.name})
	switch p.pattern {
	case "typist":
		g.send(p, protocol.TextLanguageSet{Node: p.node, Language: "en"})
		g.send(p, protocol.TextBufferCreate{Node: p.node, Buffer: protocol.ResourceAny, Name: "body"})
	case "painter":
		g.send(p, protocol.BitmapDimensionsSet{Node: p.node, Width: 32, Height: 32, Depth: 1})
		g.send(p, protocol.BitmapLayerCreate{Node: p.node, Layer: protocol.ResourceAny, Name: "color", Type: protocol.BitmapUint8})
	}
}

func (g *MockGenerator) run(ctx context.Context) {
	ticker := time.NewTicker(g.Interval)
	defer ticker.Stop()
	defer g.Close()

	tick := 0
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			tick++
			for _, p := range g.peers {
				g.advance(p, tick)
			}
		}
	}
}

func (g *MockGenerator) advance(p *mockPeer, tick int) {
	switch p.pattern {
	case "orbit":
		g.advanceOrbit(p, tick)
	case "typist":
		g.advanceTypist(p, tick)
	case "painter":
		g.advancePainter(p, tick)
	case "sculptor":
		g.advanceSculptor(p, tick)
	}
}

func (g *MockGenerator) advanceOrbit(p *mockPeer, tick int) {
	a := float64(tick) * math.Pi / 16
	g.send(p, protocol.ObjectTransformPos{
		Node:      p.node,
		Precision: protocol.Real64,
		Pos:       protocol.Vec3{4 * math.Cos(a), 4 * math.Sin(a), 0},
	})
	half := a / 2
	g.send(p, protocol.ObjectTransformRot{
		Node:      p.node,
		Precision: protocol.Real32,
		Rot:       protocol.Quat{0, 0, math.Sin(half), math.Cos(half)},
	})
}

// advanceTypist appends a word; the position clamps to the end of the buffer.
func (g *MockGenerator) advanceTypist(p *mockPeer, tick int) {
	g.send(p, protocol.TextSet{
		Node:   p.node,
		Buffer: 0,
		Pos:    math.MaxUint32,
		Text:   words[tick%len(words)] + " ",
	})
}

func (g *MockGenerator) advancePainter(p *mockPeer, tick int) {
	const tiles = 4
	tx, ty := tick%tiles, (tick/tiles)%tiles
	data := make([]byte, protocol.BitmapUint8.TileBytes())
	for i := range data {
		data[i] = byte(tick*16 + i)
	}
	g.send(p, protocol.BitmapTileSet{
		Node:  p.node,
		Layer: 0,
		TileX: uint16(tx),
		TileY: uint16(ty),
		Type:  protocol.BitmapUint8,
		Data:  data,
	})
}

// advanceSculptor grows a spiral strip: one vertex per tick and a triangle
// once three vertices exist.
func (g *MockGenerator) advanceSculptor(p *mockPeer, tick int) {
	v := uint32(tick - 1)
	a := float64(v) * math.Pi / 8
	g.send(p, protocol.GeometryVertexSetXYZ{
		Node:      p.node,
		Layer:     0,
		Vertex:    protocol.ElementID(v),
		Precision: protocol.Real64,
		Value:     protocol.Vec3{math.Cos(a), math.Sin(a), float64(v) * 0.1},
	})
	if v < 2 {
		return
	}
	g.send(p, protocol.GeometryPolygonSetCornerUint32{
		Node:    p.node,
		Layer:   1,
		Polygon: protocol.ElementID(v - 2),
		Corners: [4]uint32{v - 2, v - 1, v, uint32(protocol.ElementAny)},
	})
}
