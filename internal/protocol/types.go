package protocol

import "fmt"

// NodeID identifies a live node. Ids are reused after the node is destroyed.
type NodeID uint32

// ResourceID indexes a named slot inside a per-node table (layers, buffers,
// tag groups, tags, streams, curves, method groups, methods).
type ResourceID uint16

// ElementID indexes a sparse element (vertices, polygons, keys, bones,
// links, fragments).
type ElementID uint32

const (
	// NodeAny asks the server to pick the id; it is also the failed result.
	NodeAny NodeID = ^NodeID(0)
	// ResourceAny asks the server to pick the slot.
	ResourceAny ResourceID = ^ResourceID(0)
	// ElementAny asks the server to pick the element id; it is also the
	// failed result of an auto assignment.
	ElementAny ElementID = ^ElementID(0)
)

type NodeType uint8

const (
	NodeObject NodeType = iota
	NodeGeometry
	NodeMaterial
	NodeBitmap
	NodeText
	NodeCurve
	NodeAudio
	NumNodeTypes
)

var nodeTypeNames = [NumNodeTypes]string{
	NodeObject:   "object",
	NodeGeometry: "geometry",
	NodeMaterial: "material",
	NodeBitmap:   "bitmap",
	NodeText:     "text",
	NodeCurve:    "curve",
	NodeAudio:    "audio",
}

func (t NodeType) String() string {
	if t < NumNodeTypes {
		return nodeTypeNames[t]
	}
	return fmt.Sprintf("nodetype(%d)", uint8(t))
}

func (t NodeType) Valid() bool { return t < NumNodeTypes }

// Mask returns the index-subscribe bit for t.
func (t NodeType) Mask() uint32 { return 1 << uint32(t) }

// Owner is reported relative to the receiving session.
type Owner uint8

const (
	OwnerOther Owner = iota
	OwnerMine
)

// Precision selects the wire width of real-valued quantities.
type Precision uint8

const (
	Real32 Precision = iota
	Real64
)

func (p Precision) Valid() bool { return p == Real32 || p == Real64 }

func (p Precision) String() string {
	if p == Real32 {
		return "real32"
	}
	return "real64"
}

// Time is a seconds + 1/2^32 fraction timestamp.
type Time struct {
	Seconds  uint32 `json:"s"`
	Fraction uint32 `json:"f"`
}

type (
	Vec3 [3]float64
	Quat [4]float64
)

type TagType uint8

const (
	TagBoolean TagType = iota
	TagUint32
	TagReal64
	TagString
	TagReal64Vec3
	TagLink
	TagAnimation
	TagBlob
	numTagTypes
)

func (t TagType) Valid() bool { return t < numTagTypes }

// TagAnim points a tag at a curve range.
type TagAnim struct {
	Curve NodeID `json:"curve"`
	ID    uint32 `json:"id"`
	Start uint32 `json:"start"`
	End   uint32 `json:"end"`
}

// TagValue is a tagged union; only the field selected by Type is meaningful.
type TagValue struct {
	Type   TagType `json:"type"`
	Bool   bool    `json:"bool,omitempty"`
	Uint32 uint32  `json:"uint32,omitempty"`
	Real64 float64 `json:"real64,omitempty"`
	String string  `json:"string,omitempty"`
	Vec3   Vec3    `json:"vec3"`
	Link   NodeID  `json:"link,omitempty"`
	Anim   TagAnim `json:"anim"`
	Blob   []byte  `json:"blob,omitempty"`
}

// TransformKind selects one of the object transform channels.
type TransformKind uint8

const (
	TransformPos TransformKind = iota
	TransformRot
	TransformScale
	NumTransformKinds
)

// GeometryLayerType classifies geometry layers. Vertex layers sort below
// polygon layers.
type GeometryLayerType uint8

const (
	LayerVertexXYZ GeometryLayerType = iota
	LayerVertexUint32
	LayerVertexReal
	LayerPolygonCornerUint32 GeometryLayerType = 128 + iota - 3
	LayerPolygonCornerReal
	LayerPolygonFaceUint8
	LayerPolygonFaceUint32
	LayerPolygonFaceReal
)

func (t GeometryLayerType) Valid() bool {
	return t <= LayerVertexReal || (t >= LayerPolygonCornerUint32 && t <= LayerPolygonFaceReal)
}

func (t GeometryLayerType) IsVertex() bool { return t < LayerPolygonCornerUint32 }

// Width is the number of scalars stored per element.
func (t GeometryLayerType) Width() int {
	switch t {
	case LayerVertexXYZ:
		return 3
	case LayerPolygonCornerUint32, LayerPolygonCornerReal:
		return 4
	}
	return 1
}

// IsReal reports whether the layer carries real values and therefore
// replicates at two precisions.
func (t GeometryLayerType) IsReal() bool {
	switch t {
	case LayerVertexXYZ, LayerVertexReal, LayerPolygonCornerReal, LayerPolygonFaceReal:
		return true
	}
	return false
}

// BitmapLayerType is the element type of a bitmap layer.
type BitmapLayerType uint8

const (
	BitmapUint1 BitmapLayerType = iota
	BitmapUint8
	BitmapUint16
	BitmapReal32
	BitmapReal64
	numBitmapLayerTypes
)

func (t BitmapLayerType) Valid() bool { return t < numBitmapLayerTypes }

// TileSize is the edge length of a bitmap tile in pixels.
const TileSize = 8

// SampleBytes is the byte size of one sample, or 0 for the bit-packed type.
func (t BitmapLayerType) SampleBytes() int {
	switch t {
	case BitmapUint8:
		return 1
	case BitmapUint16:
		return 2
	case BitmapReal32:
		return 4
	case BitmapReal64:
		return 8
	}
	return 0
}

// TileBytes is the encoded size of one tile. Bit-packed tiles use one byte
// per row, most significant bit first.
func (t BitmapLayerType) TileBytes() int {
	if t == BitmapUint1 {
		return TileSize
	}
	return TileSize * TileSize * t.SampleBytes()
}

// SampleType is the element type of audio buffers and streams.
type SampleType uint8

const (
	SampleInt8 SampleType = iota
	SampleInt16
	SampleInt24
	SampleInt32
	SampleReal32
	SampleReal64
	numSampleTypes
)

func (t SampleType) Valid() bool { return t < numSampleTypes }

// BlockSamples is the number of samples carried by one audio block.
const BlockSamples = 1024

func (t SampleType) SampleBytes() int {
	switch t {
	case SampleInt8:
		return 1
	case SampleInt16:
		return 2
	case SampleInt24:
		return 3
	case SampleInt32, SampleReal32:
		return 4
	}
	return 8
}

// BlockBytes is the encoded size of one full audio block of type t.
func (t SampleType) BlockBytes() int { return BlockSamples * t.SampleBytes() }

// MethodParam describes one parameter of an object method.
type MethodParam struct {
	Type uint8  `json:"type"`
	Name string `json:"name"`
}
