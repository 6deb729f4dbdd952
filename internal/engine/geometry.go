package engine

import (
	"github.com/verse-server/backend/internal/protocol"
	"github.com/verse-server/backend/internal/session"
	"github.com/verse-server/backend/internal/subscription"
)

// Base layers exist on every geometry node and cannot be created or
// destroyed by clients.
const (
	layerVertex  protocol.ResourceID = 0
	layerPolygon protocol.ResourceID = 1
)

type geometryNode struct {
	Head

	vertices sparse[struct{}]
	polygons sparse[struct{}]
	layers   table[*geometryLayer]
	bones    sparse[protocol.GeometryBoneCreate]

	creaseVertex protocol.GeometryCreaseSetVertex
	creaseEdge   protocol.GeometryCreaseSetEdge
}

// geometryLayer stores Width() scalars per element. Values past the end of
// the slices read as the layer default. The slot's own list carries the
// 64-bit subscribers of real layers and every subscriber of integer layers.
type geometryLayer struct {
	typ         protocol.GeometryLayerType
	defaultUint uint32
	defaultReal float64
	precision   protocol.Precision

	reals []float64
	uints []uint32
	r32   *subscription.List
}

func newGeometryLayer(typ protocol.GeometryLayerType, defUint uint32, defReal float64) *geometryLayer {
	return &geometryLayer{typ: typ, defaultUint: defUint, defaultReal: defReal, r32: subscription.New()}
}

func layerDual(sl *slot[*geometryLayer]) dual {
	return dual{r32: sl.value.r32, r64: sl.subs}
}

func (l *geometryLayer) ensure(elem protocol.ElementID) {
	w := l.typ.Width()
	need := (int(elem) + 1) * w
	if l.typ.IsReal() {
		for len(l.reals) < need {
			l.reals = append(l.reals, l.defaultReal)
		}
		return
	}
	for len(l.uints) < need {
		l.uints = append(l.uints, l.defaultUint)
	}
}

func (l *geometryLayer) real(elem protocol.ElementID, i int) float64 {
	k := int(elem)*l.typ.Width() + i
	if k < len(l.reals) {
		return l.reals[k]
	}
	return l.defaultReal
}

func (l *geometryLayer) uint(elem protocol.ElementID, i int) uint32 {
	k := int(elem)*l.typ.Width() + i
	if k < len(l.uints) {
		return l.uints[k]
	}
	return l.defaultUint
}

// reset puts elem back to the layer default.
func (l *geometryLayer) reset(elem protocol.ElementID) {
	w := l.typ.Width()
	for i := 0; i < w; i++ {
		k := int(elem)*w + i
		if l.typ.IsReal() {
			if k < len(l.reals) {
				l.reals[k] = l.defaultReal
			}
		} else if k < len(l.uints) {
			l.uints[k] = l.defaultUint
		}
	}
}

func (l *geometryLayer) isDefault(elem protocol.ElementID) bool {
	for i := 0; i < l.typ.Width(); i++ {
		if l.typ.IsReal() {
			if l.real(elem, i) != l.defaultReal {
				return false
			}
		} else if l.uint(elem, i) != l.defaultUint {
			return false
		}
	}
	return true
}

func newGeometryNode(e *Engine, h Head) *geometryNode {
	g := &geometryNode{
		Head:     h,
		vertices: newSparse[struct{}](e.opts.SparseChunk, e.opts.MaxGrowth),
		polygons: newSparse[struct{}](e.opts.SparseChunk, e.opts.MaxGrowth),
		layers:   newTable[*geometryLayer](e.opts.TableChunk),
		bones:    newSparse[protocol.GeometryBoneCreate](e.opts.SparseChunk, e.opts.MaxGrowth),
	}
	g.creaseVertex.Node = h.id
	g.creaseEdge.Node = h.id
	id, _ := g.layers.resolve(layerVertex, "vertex")
	g.layers.put(id, "vertex", newGeometryLayer(protocol.LayerVertexXYZ, 0, 0))
	id, _ = g.layers.resolve(layerPolygon, "polygon")
	g.layers.put(id, "polygon", newGeometryLayer(protocol.LayerPolygonCornerUint32, uint32(protocol.ElementAny), 0))
	return g
}

func (g *geometryNode) describe(e *Engine, s *session.Session) {
	g.layers.each(func(id protocol.ResourceID, sl *slot[*geometryLayer]) {
		l := sl.value
		e.send(s, protocol.GeometryLayerCreate{
			Node: g.id, Layer: id, Name: sl.name, Type: l.typ,
			DefaultUint: l.defaultUint, DefaultReal: l.defaultReal,
		})
	})
	if g.creaseVertex.Layer != "" || g.creaseVertex.Default != 0 {
		e.send(s, g.creaseVertex)
	}
	if g.creaseEdge.Layer != "" || g.creaseEdge.Default != 0 {
		e.send(s, g.creaseEdge)
	}
	g.bones.each(func(_ protocol.ElementID, b *protocol.GeometryBoneCreate) {
		e.send(s, *b)
	})
}

func (g *geometryNode) unsubscribe(s *session.Session) {
	g.layers.each(func(_ protocol.ResourceID, sl *slot[*geometryLayer]) {
		layerDual(sl).remove(s)
	})
}

// elements returns the sparse array a layer type is indexed by.
func (g *geometryNode) elements(t protocol.GeometryLayerType) *sparse[struct{}] {
	if t.IsVertex() {
		return &g.vertices
	}
	return &g.polygons
}

// geometryLayer resolves a layer and checks its declared type.
func (e *Engine) geometryLayer(node protocol.NodeID, layer protocol.ResourceID, typ protocol.GeometryLayerType) (*geometryNode, *slot[*geometryLayer], error) {
	g, err := lookup[*geometryNode](e, node, protocol.NodeGeometry)
	if err != nil {
		return nil, nil, err
	}
	sl := g.layers.get(layer)
	if sl == nil {
		return nil, nil, errUnknownResource
	}
	if sl.value.typ != typ {
		return nil, nil, errBadType
	}
	return g, sl, nil
}

func (e *Engine) geometryLayerCreate(c protocol.GeometryLayerCreate) error {
	g, err := lookup[*geometryNode](e, c.Node, protocol.NodeGeometry)
	if err != nil {
		return err
	}
	if c.Layer == layerVertex || c.Layer == layerPolygon {
		return errBaseLayer
	}
	if !c.Type.Valid() {
		return errBadType
	}
	id, sl, err := g.layers.upsert(c.Layer, c.Name,
		func(l *geometryLayer) bool { return l.typ == c.Type },
		func() *geometryLayer { return newGeometryLayer(c.Type, c.DefaultUint, c.DefaultReal) })
	if err != nil {
		return err
	}
	sl.value.defaultUint = c.DefaultUint
	sl.value.defaultReal = c.DefaultReal
	c.Layer = id
	e.fanout(g.subs, c)
	return nil
}

func (e *Engine) geometryLayerDestroy(c protocol.GeometryLayerDestroy) error {
	g, err := lookup[*geometryNode](e, c.Node, protocol.NodeGeometry)
	if err != nil {
		return err
	}
	if c.Layer == layerVertex || c.Layer == layerPolygon {
		return errBaseLayer
	}
	if g.layers.remove(c.Layer) == nil {
		return errUnknownResource
	}
	e.fanout(g.subs, c)
	return nil
}

func (e *Engine) geometryLayerSubscribe(s *session.Session, c protocol.GeometryLayerSubscribe) error {
	g, err := lookup[*geometryNode](e, c.Node, protocol.NodeGeometry)
	if err != nil {
		return err
	}
	sl := g.layers.get(c.Layer)
	if sl == nil {
		return errUnknownResource
	}
	if !c.Precision.Valid() {
		return errBadType
	}
	l := sl.value
	if !l.typ.IsReal() {
		if sl.subs.Add(s) {
			g.layerSnapshot(e, s, c.Layer, l, c.Precision, identity)
		}
		return nil
	}
	if layerDual(sl).add(s, c.Precision) {
		g.layerSnapshot(e, s, c.Layer, l, c.Precision, e.converter(l.precision, c.Precision))
	}
	return nil
}

// layerSnapshot sends the value of every live element. Base layers send
// every element since they define geometry; other layers skip defaults.
func (g *geometryNode) layerSnapshot(e *Engine, s *session.Session, id protocol.ResourceID, l *geometryLayer, p protocol.Precision, conv convert) {
	base := id == layerVertex || id == layerPolygon
	g.elements(l.typ).each(func(elem protocol.ElementID, _ *struct{}) {
		if !base && l.isDefault(elem) {
			return
		}
		e.send(s, g.layerValue(id, l, elem, p, conv))
	})
}

// layerValue builds the set command carrying elem's current value.
func (g *geometryNode) layerValue(id protocol.ResourceID, l *geometryLayer, elem protocol.ElementID, p protocol.Precision, conv convert) protocol.Command {
	switch l.typ {
	case protocol.LayerVertexXYZ:
		return protocol.GeometryVertexSetXYZ{Node: g.id, Layer: id, Vertex: elem, Precision: p,
			Value: conv.vec3(protocol.Vec3{l.real(elem, 0), l.real(elem, 1), l.real(elem, 2)})}
	case protocol.LayerVertexUint32:
		return protocol.GeometryVertexSetUint32{Node: g.id, Layer: id, Vertex: elem, Value: l.uint(elem, 0)}
	case protocol.LayerVertexReal:
		return protocol.GeometryVertexSetReal{Node: g.id, Layer: id, Vertex: elem, Precision: p, Value: conv(l.real(elem, 0))}
	case protocol.LayerPolygonCornerUint32:
		return protocol.GeometryPolygonSetCornerUint32{Node: g.id, Layer: id, Polygon: elem,
			Corners: [4]uint32{l.uint(elem, 0), l.uint(elem, 1), l.uint(elem, 2), l.uint(elem, 3)}}
	case protocol.LayerPolygonCornerReal:
		return protocol.GeometryPolygonSetCornerReal{Node: g.id, Layer: id, Polygon: elem, Precision: p,
			Corners: conv.quat(protocol.Quat{l.real(elem, 0), l.real(elem, 1), l.real(elem, 2), l.real(elem, 3)})}
	case protocol.LayerPolygonFaceUint8:
		return protocol.GeometryPolygonSetFaceUint8{Node: g.id, Layer: id, Polygon: elem, Value: uint8(l.uint(elem, 0))}
	case protocol.LayerPolygonFaceUint32:
		return protocol.GeometryPolygonSetFaceUint32{Node: g.id, Layer: id, Polygon: elem, Value: l.uint(elem, 0)}
	default:
		return protocol.GeometryPolygonSetFaceReal{Node: g.id, Layer: id, Polygon: elem, Precision: p, Value: conv(l.real(elem, 0))}
	}
}

func (e *Engine) geometryLayerUnsubscribe(s *session.Session, c protocol.GeometryLayerUnsubscribe) error {
	g, err := lookup[*geometryNode](e, c.Node, protocol.NodeGeometry)
	if err != nil {
		return err
	}
	sl := g.layers.get(c.Layer)
	if sl == nil {
		return errUnknownResource
	}
	layerDual(sl).remove(s)
	return nil
}

// setReal stores a real value and fans it out at both precisions.
func (e *Engine) setReal(g *geometryNode, id protocol.ResourceID, sl *slot[*geometryLayer], elem protocol.ElementID, p protocol.Precision, vals ...float64) error {
	if !p.Valid() {
		return errBadType
	}
	l := sl.value
	l.ensure(elem)
	in := ingest(p)
	w := l.typ.Width()
	for i, v := range vals {
		l.reals[int(elem)*w+i] = in(v)
	}
	l.precision = maxPrecision(l.precision, p)
	e.fanoutReal(layerDual(sl), p, func(p protocol.Precision, conv convert) protocol.Command {
		return g.layerValue(id, l, elem, p, conv)
	})
	return nil
}

// setUint stores an integer value and fans it out to the layer list.
func (e *Engine) setUint(g *geometryNode, id protocol.ResourceID, sl *slot[*geometryLayer], elem protocol.ElementID, vals ...uint32) {
	l := sl.value
	l.ensure(elem)
	w := l.typ.Width()
	for i, v := range vals {
		l.uints[int(elem)*w+i] = v
	}
	layerDual(sl).each(func(s *session.Session) {
		e.send(s, g.layerValue(id, l, elem, protocol.Real64, identity))
	})
}

func (e *Engine) geometryVertexSetXYZ(c protocol.GeometryVertexSetXYZ) error {
	g, sl, err := e.geometryLayer(c.Node, c.Layer, protocol.LayerVertexXYZ)
	if err != nil {
		return err
	}
	if !c.Precision.Valid() {
		return errBadType
	}
	vertex := c.Vertex
	if c.Layer == layerVertex {
		if vertex, err = g.vertices.alloc(c.Vertex); err != nil {
			return err
		}
	} else if !g.vertices.has(vertex) {
		return errUnknownElement
	}
	return e.setReal(g, c.Layer, sl, vertex, c.Precision, c.Value[0], c.Value[1], c.Value[2])
}

// geometryVertexDelete removes a vertex and resets it on every vertex layer.
func (e *Engine) geometryVertexDelete(c protocol.GeometryVertexDelete) error {
	g, err := lookup[*geometryNode](e, c.Node, protocol.NodeGeometry)
	if err != nil {
		return err
	}
	if !g.vertices.free(c.Vertex) {
		return errUnknownElement
	}
	g.layers.each(func(_ protocol.ResourceID, sl *slot[*geometryLayer]) {
		if sl.value.typ.IsVertex() {
			sl.value.reset(c.Vertex)
		}
	})
	layerDual(g.layers.get(layerVertex)).each(func(s *session.Session) {
		e.send(s, c)
	})
	return nil
}

func (e *Engine) geometryVertexSetUint32(c protocol.GeometryVertexSetUint32) error {
	g, sl, err := e.geometryLayer(c.Node, c.Layer, protocol.LayerVertexUint32)
	if err != nil {
		return err
	}
	if !g.vertices.has(c.Vertex) {
		return errUnknownElement
	}
	e.setUint(g, c.Layer, sl, c.Vertex, c.Value)
	return nil
}

func (e *Engine) geometryVertexSetReal(c protocol.GeometryVertexSetReal) error {
	g, sl, err := e.geometryLayer(c.Node, c.Layer, protocol.LayerVertexReal)
	if err != nil {
		return err
	}
	if !g.vertices.has(c.Vertex) {
		return errUnknownElement
	}
	return e.setReal(g, c.Layer, sl, c.Vertex, c.Precision, c.Value)
}

// degenerate reports whether corners repeat a vertex. The fourth corner is
// ElementAny for triangles.
func degenerate(v [4]uint32) bool {
	none := uint32(protocol.ElementAny)
	if v[0] == none || v[1] == none || v[2] == none {
		return true
	}
	if v[0] == v[1] || v[1] == v[2] || v[0] == v[2] {
		return true
	}
	if v[3] != none && (v[3] == v[0] || v[3] == v[1] || v[3] == v[2]) {
		return true
	}
	return false
}

func (e *Engine) geometryPolygonSetCornerUint32(c protocol.GeometryPolygonSetCornerUint32) error {
	g, sl, err := e.geometryLayer(c.Node, c.Layer, protocol.LayerPolygonCornerUint32)
	if err != nil {
		return err
	}
	polygon := c.Polygon
	if c.Layer == layerPolygon {
		if degenerate(c.Corners) {
			return errDegeneratePolygon
		}
		if polygon, err = g.polygons.alloc(c.Polygon); err != nil {
			return err
		}
	} else if !g.polygons.has(polygon) {
		return errUnknownElement
	}
	e.setUint(g, c.Layer, sl, polygon, c.Corners[:]...)
	return nil
}

func (e *Engine) geometryPolygonDelete(c protocol.GeometryPolygonDelete) error {
	g, err := lookup[*geometryNode](e, c.Node, protocol.NodeGeometry)
	if err != nil {
		return err
	}
	if !g.polygons.free(c.Polygon) {
		return errUnknownElement
	}
	g.layers.each(func(_ protocol.ResourceID, sl *slot[*geometryLayer]) {
		if !sl.value.typ.IsVertex() {
			sl.value.reset(c.Polygon)
		}
	})
	layerDual(g.layers.get(layerPolygon)).each(func(s *session.Session) {
		e.send(s, c)
	})
	return nil
}

func (e *Engine) geometryPolygonSetCornerReal(c protocol.GeometryPolygonSetCornerReal) error {
	g, sl, err := e.geometryLayer(c.Node, c.Layer, protocol.LayerPolygonCornerReal)
	if err != nil {
		return err
	}
	if !g.polygons.has(c.Polygon) {
		return errUnknownElement
	}
	return e.setReal(g, c.Layer, sl, c.Polygon, c.Precision, c.Corners[:]...)
}

func (e *Engine) geometryPolygonSetFaceUint8(c protocol.GeometryPolygonSetFaceUint8) error {
	g, sl, err := e.geometryLayer(c.Node, c.Layer, protocol.LayerPolygonFaceUint8)
	if err != nil {
		return err
	}
	if !g.polygons.has(c.Polygon) {
		return errUnknownElement
	}
	e.setUint(g, c.Layer, sl, c.Polygon, uint32(c.Value))
	return nil
}

func (e *Engine) geometryPolygonSetFaceUint32(c protocol.GeometryPolygonSetFaceUint32) error {
	g, sl, err := e.geometryLayer(c.Node, c.Layer, protocol.LayerPolygonFaceUint32)
	if err != nil {
		return err
	}
	if !g.polygons.has(c.Polygon) {
		return errUnknownElement
	}
	e.setUint(g, c.Layer, sl, c.Polygon, c.Value)
	return nil
}

func (e *Engine) geometryPolygonSetFaceReal(c protocol.GeometryPolygonSetFaceReal) error {
	g, sl, err := e.geometryLayer(c.Node, c.Layer, protocol.LayerPolygonFaceReal)
	if err != nil {
		return err
	}
	if !g.polygons.has(c.Polygon) {
		return errUnknownElement
	}
	return e.setReal(g, c.Layer, sl, c.Polygon, c.Precision, c.Value)
}

func (e *Engine) geometryCreaseSetVertex(c protocol.GeometryCreaseSetVertex) error {
	g, err := lookup[*geometryNode](e, c.Node, protocol.NodeGeometry)
	if err != nil {
		return err
	}
	g.creaseVertex = c
	e.fanout(g.subs, c)
	return nil
}

func (e *Engine) geometryCreaseSetEdge(c protocol.GeometryCreaseSetEdge) error {
	g, err := lookup[*geometryNode](e, c.Node, protocol.NodeGeometry)
	if err != nil {
		return err
	}
	g.creaseEdge = c
	e.fanout(g.subs, c)
	return nil
}

func (e *Engine) geometryBoneCreate(c protocol.GeometryBoneCreate) error {
	g, err := lookup[*geometryNode](e, c.Node, protocol.NodeGeometry)
	if err != nil {
		return err
	}
	id, err := g.bones.alloc(c.Bone)
	if err != nil {
		return err
	}
	c.Bone = id
	g.bones.set(id, c)
	e.fanout(g.subs, c)
	return nil
}

func (e *Engine) geometryBoneDestroy(c protocol.GeometryBoneDestroy) error {
	g, err := lookup[*geometryNode](e, c.Node, protocol.NodeGeometry)
	if err != nil {
		return err
	}
	if !g.bones.free(c.Bone) {
		return errUnknownElement
	}
	e.fanout(g.subs, c)
	return nil
}
