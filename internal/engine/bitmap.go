package engine

import (
	"github.com/verse-server/backend/internal/protocol"
	"github.com/verse-server/backend/internal/session"
)

// noPartial marks an axis whose last tile is fully inside the canvas.
const noPartial = -1

// bitmapNode stores every layer as one flat tile grid laid out z major,
// then tile row, then tile column.
type bitmapNode struct {
	Head

	width, height, depth   uint16
	tilesX, tilesY, tilesZ int
	partialX, partialY     int

	layers table[*bitmapLayer]
}

type bitmapLayer struct {
	typ   protocol.BitmapLayerType
	tiles []byte
}

func newBitmapNode(e *Engine, h Head) *bitmapNode {
	return &bitmapNode{
		Head:     h,
		partialX: noPartial,
		partialY: noPartial,
		layers:   newTable[*bitmapLayer](e.opts.TableChunk),
	}
}

func (b *bitmapNode) describe(e *Engine, s *session.Session) {
	if b.width != 0 || b.height != 0 || b.depth != 0 {
		e.send(s, protocol.BitmapDimensionsSet{Node: b.id, Width: b.width, Height: b.height, Depth: b.depth})
	}
	b.layers.each(func(id protocol.ResourceID, l *slot[*bitmapLayer]) {
		e.send(s, protocol.BitmapLayerCreate{Node: b.id, Layer: id, Name: l.name, Type: l.value.typ})
	})
}

func (b *bitmapNode) unsubscribe(s *session.Session) {
	b.layers.each(func(_ protocol.ResourceID, l *slot[*bitmapLayer]) {
		l.subs.Remove(s)
	})
}

func tilesFor(dim uint16) int {
	return (int(dim) + protocol.TileSize - 1) / protocol.TileSize
}

func partialFor(dim uint16) int {
	if dim%protocol.TileSize == 0 {
		return noPartial
	}
	return tilesFor(dim) - 1
}

func (b *bitmapNode) tileCount() int {
	return b.tilesX * b.tilesY * b.tilesZ
}

// footprint returns the bytes every layer except skip would hold with tiles
// tiles each. It stops summing once limit is passed.
func (b *bitmapNode) footprint(tiles int64, skip *slot[*bitmapLayer], limit int64) int64 {
	var total int64
	b.layers.each(func(_ protocol.ResourceID, sl *slot[*bitmapLayer]) {
		if sl == skip || total > limit {
			return
		}
		total += tiles * int64(sl.value.typ.TileBytes())
	})
	return total
}

// offset is the byte offset of a tile inside a layer buffer.
func (b *bitmapNode) offset(typ protocol.BitmapLayerType, tx, ty, z int) int {
	return ((z*b.tilesY+ty)*b.tilesX + tx) * typ.TileBytes()
}

func (b *bitmapNode) tile(l *bitmapLayer, tx, ty, z int) []byte {
	off := b.offset(l.typ, tx, ty, z)
	return l.tiles[off : off+l.typ.TileBytes()]
}

// visible returns how many columns and rows of tile (tx, ty) lie inside
// the canvas.
func (b *bitmapNode) visible(tx, ty int) (int, int) {
	vx, vy := protocol.TileSize, protocol.TileSize
	if tx == b.partialX {
		vx = int(b.width) - tx*protocol.TileSize
	}
	if ty == b.partialY {
		vy = int(b.height) - ty*protocol.TileSize
	}
	return vx, vy
}

// maskTile zeroes every sample of data outside the first vx columns and vy
// rows. Bit tiles use one byte per row, most significant bit first.
func maskTile(typ protocol.BitmapLayerType, data []byte, vx, vy int) {
	if vx >= protocol.TileSize && vy >= protocol.TileSize {
		return
	}
	if typ == protocol.BitmapUint1 {
		keep := byte(0xFF << uint(protocol.TileSize-vx))
		for r := 0; r < protocol.TileSize; r++ {
			if r >= vy {
				data[r] = 0
			} else {
				data[r] &= keep
			}
		}
		return
	}
	sb := typ.SampleBytes()
	for r := 0; r < protocol.TileSize; r++ {
		for c := 0; c < protocol.TileSize; c++ {
			if c < vx && r < vy {
				continue
			}
			off := (r*protocol.TileSize + c) * sb
			for i := 0; i < sb; i++ {
				data[off+i] = 0
			}
		}
	}
}

// maskPartials clears the out-of-canvas area of every tile in the partial
// column and row of l.
func (b *bitmapNode) maskPartials(l *bitmapLayer) {
	if b.partialX == noPartial && b.partialY == noPartial {
		return
	}
	for z := 0; z < b.tilesZ; z++ {
		for ty := 0; ty < b.tilesY; ty++ {
			for tx := 0; tx < b.tilesX; tx++ {
				if tx != b.partialX && ty != b.partialY {
					continue
				}
				vx, vy := b.visible(tx, ty)
				maskTile(l.typ, b.tile(l, tx, ty, z), vx, vy)
			}
		}
	}
}

// reflow resizes every layer to the new canvas. Overlapping tile rows are
// copied at the new stride; everything else starts out zero.
func (b *bitmapNode) reflow(width, height, depth uint16) {
	ox, oy, oz := b.tilesX, b.tilesY, b.tilesZ
	nx, ny, nz := tilesFor(width), tilesFor(height), int(depth)

	b.layers.each(func(_ protocol.ResourceID, sl *slot[*bitmapLayer]) {
		l := sl.value
		tb := l.typ.TileBytes()
		tiles := make([]byte, nx*ny*nz*tb)
		cols := min(ox, nx) * tb
		for z := 0; z < min(oz, nz); z++ {
			for ty := 0; ty < min(oy, ny); ty++ {
				src := (z*oy + ty) * ox * tb
				dst := (z*ny + ty) * nx * tb
				copy(tiles[dst:dst+cols], l.tiles[src:src+cols])
			}
		}
		l.tiles = tiles
	})

	b.width, b.height, b.depth = width, height, depth
	b.tilesX, b.tilesY, b.tilesZ = nx, ny, nz
	b.partialX, b.partialY = partialFor(width), partialFor(height)

	b.layers.each(func(_ protocol.ResourceID, sl *slot[*bitmapLayer]) {
		b.maskPartials(sl.value)
	})
}

func (e *Engine) bitmapLayer(node protocol.NodeID, layer protocol.ResourceID) (*bitmapNode, *slot[*bitmapLayer], error) {
	b, err := lookup[*bitmapNode](e, node, protocol.NodeBitmap)
	if err != nil {
		return nil, nil, err
	}
	l := b.layers.get(layer)
	if l == nil {
		return nil, nil, errUnknownResource
	}
	return b, l, nil
}

func (e *Engine) bitmapDimensionsSet(c protocol.BitmapDimensionsSet) error {
	b, err := lookup[*bitmapNode](e, c.Node, protocol.NodeBitmap)
	if err != nil {
		return err
	}
	if c.Width == b.width && c.Height == b.height && c.Depth == b.depth {
		return nil
	}
	tiles := int64(tilesFor(c.Width)) * int64(tilesFor(c.Height)) * int64(c.Depth)
	if limit := e.opts.MaxBitmapBytes; b.footprint(tiles, nil, limit) > limit {
		return errOutOfRange
	}
	b.reflow(c.Width, c.Height, c.Depth)
	e.fanout(b.subs, c)
	return nil
}

func (e *Engine) bitmapLayerCreate(c protocol.BitmapLayerCreate) error {
	b, err := lookup[*bitmapNode](e, c.Node, protocol.NodeBitmap)
	if err != nil {
		return err
	}
	if !c.Type.Valid() {
		return errBadType
	}
	tiles := int64(b.tileCount())
	limit := e.opts.MaxBitmapBytes
	if b.footprint(tiles, b.layers.get(c.Layer), limit)+tiles*int64(c.Type.TileBytes()) > limit {
		return errOutOfRange
	}
	id, _, err := b.layers.upsert(c.Layer, c.Name,
		func(l *bitmapLayer) bool { return l.typ == c.Type },
		func() *bitmapLayer {
			return &bitmapLayer{typ: c.Type, tiles: make([]byte, b.tileCount()*c.Type.TileBytes())}
		})
	if err != nil {
		return err
	}
	c.Layer = id
	e.fanout(b.subs, c)
	return nil
}

func (e *Engine) bitmapLayerDestroy(c protocol.BitmapLayerDestroy) error {
	b, err := lookup[*bitmapNode](e, c.Node, protocol.NodeBitmap)
	if err != nil {
		return err
	}
	if b.layers.remove(c.Layer) == nil {
		return errUnknownResource
	}
	e.fanout(b.subs, c)
	return nil
}

// bitmapLayerSubscribe sends every tile holding a non-zero byte. Tiles a
// subscriber never receives are zero on both ends.
func (e *Engine) bitmapLayerSubscribe(s *session.Session, c protocol.BitmapLayerSubscribe) error {
	b, l, err := e.bitmapLayer(c.Node, c.Layer)
	if err != nil {
		return err
	}
	if c.Level != 0 {
		return errOutOfRange
	}
	if !l.subs.Add(s) {
		return nil
	}
	for z := 0; z < b.tilesZ; z++ {
		for ty := 0; ty < b.tilesY; ty++ {
			for tx := 0; tx < b.tilesX; tx++ {
				data := b.tile(l.value, tx, ty, z)
				if isZero(data) {
					continue
				}
				e.send(s, protocol.BitmapTileSet{
					Node: c.Node, Layer: c.Layer, TileX: uint16(tx), TileY: uint16(ty), Z: uint16(z),
					Type: l.value.typ, Data: append([]byte(nil), data...),
				})
			}
		}
	}
	return nil
}

func isZero(data []byte) bool {
	for _, v := range data {
		if v != 0 {
			return false
		}
	}
	return true
}

func (e *Engine) bitmapLayerUnsubscribe(s *session.Session, c protocol.BitmapLayerUnsubscribe) error {
	_, l, err := e.bitmapLayer(c.Node, c.Layer)
	if err != nil {
		return err
	}
	l.subs.Remove(s)
	return nil
}

// bitmapTileSet stores one tile. Tiles in the partial column or row are
// masked before they are stored and fanned out.
func (e *Engine) bitmapTileSet(c protocol.BitmapTileSet) error {
	b, l, err := e.bitmapLayer(c.Node, c.Layer)
	if err != nil {
		return err
	}
	if c.Type != l.value.typ {
		return errBadType
	}
	tx, ty, z := int(c.TileX), int(c.TileY), int(c.Z)
	if tx >= b.tilesX || ty >= b.tilesY || z >= b.tilesZ {
		return errOutOfRange
	}
	if len(c.Data) != c.Type.TileBytes() {
		return errBadPayload
	}
	dst := b.tile(l.value, tx, ty, z)
	copy(dst, c.Data)
	vx, vy := b.visible(tx, ty)
	maskTile(c.Type, dst, vx, vy)
	c.Data = append([]byte(nil), dst...)
	e.fanout(l.subs, c)
	return nil
}
