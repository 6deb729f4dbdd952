package engine

import (
	"bytes"
	"testing"

	"github.com/verse-server/backend/internal/logging"
	"github.com/verse-server/backend/internal/protocol"
	"github.com/verse-server/backend/internal/session"
)

func pixelValue(x, y int) byte { return byte(1 + x + 16*y) }

// paintBitmap creates a bitmap node of the given size with one UINT8 layer
// and writes pixelValue into every tile.
func paintBitmap(t *testing.T, e *Engine, s *session.Session, w, h uint16) (protocol.NodeID, *bitmapNode) {
	t.Helper()
	id := create(t, e, s, protocol.NodeBitmap)
	e.Dispatch(s, protocol.BitmapDimensionsSet{Node: id, Width: w, Height: h, Depth: 1})
	e.Dispatch(s, protocol.BitmapLayerCreate{Node: id, Layer: protocol.ResourceAny, Name: "color", Type: protocol.BitmapUint8})

	b := e.Node(id).(*bitmapNode)
	for ty := 0; ty < b.tilesY; ty++ {
		for tx := 0; tx < b.tilesX; tx++ {
			data := make([]byte, protocol.BitmapUint8.TileBytes())
			for r := 0; r < protocol.TileSize; r++ {
				for c := 0; c < protocol.TileSize; c++ {
					data[r*protocol.TileSize+c] = pixelValue(tx*protocol.TileSize+c, ty*protocol.TileSize+r)
				}
			}
			e.Dispatch(s, protocol.BitmapTileSet{Node: id, Layer: 0, TileX: uint16(tx), TileY: uint16(ty), Type: protocol.BitmapUint8, Data: data})
		}
	}
	return id, b
}

func pixel(b *bitmapNode, l *bitmapLayer, x, y int) byte {
	tile := b.tile(l, x/protocol.TileSize, y/protocol.TileSize, 0)
	return tile[(y%protocol.TileSize)*protocol.TileSize+x%protocol.TileSize]
}

// checkPixels verifies every pixel of the tile grid against want.
func checkPixels(t *testing.T, b *bitmapNode, l *bitmapLayer, want func(x, y int) byte) {
	t.Helper()
	for y := 0; y < b.tilesY*protocol.TileSize; y++ {
		for x := 0; x < b.tilesX*protocol.TileSize; x++ {
			if got := pixel(b, l, x, y); got != want(x, y) {
				t.Fatalf("pixel (%d,%d) = %d, want %d", x, y, got, want(x, y))
			}
		}
	}
}

func TestBitmapTileSetMasksPartialTiles(t *testing.T) {
	e, r := newTestEngine(t)
	a := connect(t, e, r, "a")
	_, b := paintBitmap(t, e, a, 10, 10)
	l := b.layers.get(0).value

	if b.partialX != 1 || b.partialY != 1 {
		t.Fatalf("partial = (%d,%d), want (1,1)", b.partialX, b.partialY)
	}
	checkPixels(t, b, l, func(x, y int) byte {
		if x < 10 && y < 10 {
			return pixelValue(x, y)
		}
		return 0
	})
}

func TestBitmapResizeScenario(t *testing.T) {
	e, r := newTestEngine(t)
	a := connect(t, e, r, "a")
	id, b := paintBitmap(t, e, a, 10, 10)

	e.Dispatch(a, protocol.BitmapDimensionsSet{Node: id, Width: 20, Height: 5, Depth: 1})

	if b.tilesX != 3 || b.tilesY != 1 || b.tilesZ != 1 {
		t.Fatalf("tiles = %dx%dx%d, want 3x1x1", b.tilesX, b.tilesY, b.tilesZ)
	}
	if b.partialX != 2 || b.partialY != 0 {
		t.Fatalf("partial = (%d,%d), want (2,0)", b.partialX, b.partialY)
	}
	l := b.layers.get(0).value
	if len(l.tiles) != 3*protocol.BitmapUint8.TileBytes() {
		t.Fatalf("layer holds %d bytes", len(l.tiles))
	}
	// The old 10x10 region survives where it is still inside the canvas;
	// the rest, including the rows that held pixel (9,9), is zero.
	checkPixels(t, b, l, func(x, y int) byte {
		if x < 10 && y < 5 {
			return pixelValue(x, y)
		}
		return 0
	})
}

func TestBitmapResizeSameSizeIsIdempotent(t *testing.T) {
	e, r := newTestEngine(t)
	a := connect(t, e, r, "a")
	b2 := connect(t, e, r, "b")
	id, b := paintBitmap(t, e, a, 13, 21)
	l := b.layers.get(0).value
	before := append([]byte(nil), l.tiles...)

	e.Dispatch(b2, protocol.NodeSubscribe{Node: id})
	r.take(b2)
	e.Dispatch(a, protocol.BitmapDimensionsSet{Node: id, Width: 13, Height: 21, Depth: 1})
	assertSent(t, r, b2)

	b.reflow(13, 21, 1)
	if !bytes.Equal(before, l.tiles) {
		t.Error("reflow to the same size changed the grid")
	}
}

func TestBitmapGrowPreservesAndZeroFills(t *testing.T) {
	e, r := newTestEngine(t)
	a := connect(t, e, r, "a")
	id, b := paintBitmap(t, e, a, 10, 10)

	e.Dispatch(a, protocol.BitmapDimensionsSet{Node: id, Width: 17, Height: 24, Depth: 2})
	if b.partialX != 2 || b.partialY != noPartial {
		t.Fatalf("partial = (%d,%d), want (2,%d)", b.partialX, b.partialY, noPartial)
	}
	l := b.layers.get(0).value
	checkPixels(t, b, l, func(x, y int) byte {
		if x < 10 && y < 10 {
			return pixelValue(x, y)
		}
		return 0
	})
	if !isZero(l.tiles[b.offset(l.typ, 0, 0, 1):]) {
		t.Error("new z slice not zero")
	}
}

func TestBitmapUint1Masking(t *testing.T) {
	e, r := newTestEngine(t)
	a := connect(t, e, r, "a")
	sub := connect(t, e, r, "sub")
	id := create(t, e, a, protocol.NodeBitmap)
	e.Dispatch(a, protocol.BitmapDimensionsSet{Node: id, Width: 3, Height: 10, Depth: 1})
	e.Dispatch(a, protocol.BitmapLayerCreate{Node: id, Layer: protocol.ResourceAny, Name: "mask", Type: protocol.BitmapUint1})
	e.Dispatch(sub, protocol.BitmapLayerSubscribe{Node: id, Layer: 0})

	full := bytes.Repeat([]byte{0xFF}, protocol.TileSize)
	e.Dispatch(a, protocol.BitmapTileSet{Node: id, Layer: 0, TileX: 0, TileY: 0, Type: protocol.BitmapUint1, Data: full})
	e.Dispatch(a, protocol.BitmapTileSet{Node: id, Layer: 0, TileX: 0, TileY: 1, Type: protocol.BitmapUint1, Data: full})

	assertSent(t, r, sub,
		protocol.BitmapTileSet{Node: id, Layer: 0, TileX: 0, TileY: 0, Type: protocol.BitmapUint1,
			Data: []byte{0xE0, 0xE0, 0xE0, 0xE0, 0xE0, 0xE0, 0xE0, 0xE0}},
		protocol.BitmapTileSet{Node: id, Layer: 0, TileX: 0, TileY: 1, Type: protocol.BitmapUint1,
			Data: []byte{0xE0, 0xE0, 0, 0, 0, 0, 0, 0}},
	)
	if full[7] != 0xFF {
		t.Error("caller's tile buffer was modified")
	}
}

func TestBitmapMaskWideSamples(t *testing.T) {
	data := bytes.Repeat([]byte{0xAB}, protocol.BitmapReal64.TileBytes())
	maskTile(protocol.BitmapReal64, data, 1, 2)
	for r := 0; r < protocol.TileSize; r++ {
		for c := 0; c < protocol.TileSize; c++ {
			off := (r*protocol.TileSize + c) * 8
			want := byte(0)
			if c < 1 && r < 2 {
				want = 0xAB
			}
			for i := 0; i < 8; i++ {
				if data[off+i] != want {
					t.Fatalf("sample (%d,%d) byte %d = %#x, want %#x", c, r, i, data[off+i], want)
				}
			}
		}
	}
}

func TestBitmapTileSetGuards(t *testing.T) {
	e, r := newTestEngine(t)
	a := connect(t, e, r, "a")
	sub := connect(t, e, r, "sub")
	id := create(t, e, a, protocol.NodeBitmap)
	e.Dispatch(a, protocol.BitmapDimensionsSet{Node: id, Width: 8, Height: 8, Depth: 1})
	e.Dispatch(a, protocol.BitmapLayerCreate{Node: id, Layer: protocol.ResourceAny, Name: "c", Type: protocol.BitmapUint16})
	e.Dispatch(sub, protocol.BitmapLayerSubscribe{Node: id, Layer: 0})

	tile := make([]byte, protocol.BitmapUint16.TileBytes())
	for _, c := range []protocol.BitmapTileSet{
		{Node: id, Layer: 0, TileX: 1, Type: protocol.BitmapUint16, Data: tile},
		{Node: id, Layer: 0, Z: 1, Type: protocol.BitmapUint16, Data: tile},
		{Node: id, Layer: 0, Type: protocol.BitmapUint8, Data: tile[:64]},
		{Node: id, Layer: 0, Type: protocol.BitmapUint16, Data: tile[:10]},
		{Node: id, Layer: 1, Type: protocol.BitmapUint16, Data: tile},
	} {
		e.Dispatch(a, c)
	}
	assertSent(t, r, sub)
}

func TestBitmapSnapshot(t *testing.T) {
	e, r := newTestEngine(t)
	a := connect(t, e, r, "a")
	sub := connect(t, e, r, "sub")
	id := create(t, e, a, protocol.NodeBitmap)
	e.Dispatch(a, protocol.BitmapDimensionsSet{Node: id, Width: 16, Height: 8, Depth: 1})
	e.Dispatch(a, protocol.BitmapLayerCreate{Node: id, Layer: protocol.ResourceAny, Name: "c", Type: protocol.BitmapUint8})
	tile := bytes.Repeat([]byte{7}, protocol.BitmapUint8.TileBytes())
	e.Dispatch(a, protocol.BitmapTileSet{Node: id, Layer: 0, TileX: 1, Type: protocol.BitmapUint8, Data: tile})

	e.Dispatch(sub, protocol.NodeSubscribe{Node: id})
	e.Dispatch(sub, protocol.BitmapLayerSubscribe{Node: id, Layer: 0})
	assertSent(t, r, sub,
		protocol.BitmapDimensionsSet{Node: id, Width: 16, Height: 8, Depth: 1},
		protocol.BitmapLayerCreate{Node: id, Layer: 0, Name: "c", Type: protocol.BitmapUint8},
		protocol.BitmapTileSet{Node: id, Layer: 0, TileX: 1, Type: protocol.BitmapUint8, Data: tile},
	)
}

func TestBitmapDimensionsOverCapDropped(t *testing.T) {
	e, r := newTestEngine(t)
	a := connect(t, e, r, "a")
	sub := connect(t, e, r, "sub")
	id := create(t, e, a, protocol.NodeBitmap)
	e.Dispatch(a, protocol.BitmapDimensionsSet{Node: id, Width: 16, Height: 16, Depth: 1})
	e.Dispatch(a, protocol.BitmapLayerCreate{Node: id, Layer: protocol.ResourceAny, Name: "hdr", Type: protocol.BitmapReal64})
	e.Dispatch(sub, protocol.NodeSubscribe{Node: id})
	r.take(sub)

	for _, c := range []protocol.BitmapDimensionsSet{
		{Node: id, Width: 65535, Height: 65535, Depth: 65535},
		{Node: id, Width: 4096, Height: 4096, Depth: 64},
	} {
		e.Dispatch(a, c)
	}
	assertSent(t, r, sub)

	b := e.Node(id).(*bitmapNode)
	if b.width != 16 || b.height != 16 || b.depth != 1 || b.tileCount() != 4 {
		t.Errorf("dimensions = %dx%dx%d after rejected resize", b.width, b.height, b.depth)
	}
	if got := len(b.layers.get(0).value.tiles); got != 4*protocol.BitmapReal64.TileBytes() {
		t.Errorf("layer holds %d bytes", got)
	}
}

func TestBitmapStorageCap(t *testing.T) {
	opts := DefaultOptions()
	opts.MaxBitmapBytes = 4096
	r := &recorder{out: make(map[*session.Session][]protocol.Command)}
	e := New(opts, r, logging.Noop())
	a := connect(t, e, r, "a")
	id := create(t, e, a, protocol.NodeBitmap)
	b := e.Node(id).(*bitmapNode)

	// 64x64 is 64 tiles: one UINT8 layer fills the cap exactly.
	e.Dispatch(a, protocol.BitmapDimensionsSet{Node: id, Width: 64, Height: 64, Depth: 1})
	e.Dispatch(a, protocol.BitmapLayerCreate{Node: id, Layer: protocol.ResourceAny, Name: "c", Type: protocol.BitmapUint8})
	if b.layers.active() != 1 {
		t.Fatal("layer at the cap was refused")
	}

	e.Dispatch(a, protocol.BitmapLayerCreate{Node: id, Layer: protocol.ResourceAny, Name: "d", Type: protocol.BitmapUint8})
	e.Dispatch(a, protocol.BitmapLayerCreate{Node: id, Layer: 0, Name: "c", Type: protocol.BitmapReal64})
	e.Dispatch(a, protocol.BitmapDimensionsSet{Node: id, Width: 65, Height: 64, Depth: 1})

	if n := b.layers.active(); n != 1 {
		t.Errorf("layers = %d, want 1", n)
	}
	if typ := b.layers.get(0).value.typ; typ != protocol.BitmapUint8 {
		t.Errorf("layer type = %v, want UINT8", typ)
	}
	if b.width != 64 {
		t.Errorf("width = %d after over-cap resize", b.width)
	}

	// Shrinking frees room for a second layer.
	e.Dispatch(a, protocol.BitmapDimensionsSet{Node: id, Width: 32, Height: 32, Depth: 1})
	e.Dispatch(a, protocol.BitmapLayerCreate{Node: id, Layer: protocol.ResourceAny, Name: "d", Type: protocol.BitmapUint8})
	if n := b.layers.active(); n != 2 {
		t.Errorf("layers after shrink = %d, want 2", n)
	}
}

func TestBitmapLayerSubscribeRejectsMipLevels(t *testing.T) {
	e, r := newTestEngine(t)
	a := connect(t, e, r, "a")
	sub := connect(t, e, r, "sub")
	id := create(t, e, a, protocol.NodeBitmap)
	e.Dispatch(a, protocol.BitmapDimensionsSet{Node: id, Width: 8, Height: 8, Depth: 1})
	e.Dispatch(a, protocol.BitmapLayerCreate{Node: id, Layer: protocol.ResourceAny, Name: "c", Type: protocol.BitmapUint8})
	tile := bytes.Repeat([]byte{3}, protocol.BitmapUint8.TileBytes())
	e.Dispatch(a, protocol.BitmapTileSet{Node: id, Layer: 0, Type: protocol.BitmapUint8, Data: tile})

	e.Dispatch(sub, protocol.BitmapLayerSubscribe{Node: id, Layer: 0, Level: 1})
	e.Dispatch(a, protocol.BitmapTileSet{Node: id, Layer: 0, Type: protocol.BitmapUint8, Data: tile})
	assertSent(t, r, sub)

	if e.Node(id).(*bitmapNode).layers.get(0).subs.Len() != 0 {
		t.Error("level 1 subscribe joined the layer")
	}
}
