package protocol

// Command is one protocol message. Every command is symmetric: a client
// sends it to request a mutation and the server fans the same shape out to
// subscribers once the mutation has been applied.
type Command interface {
	CommandName() string
}

// Session handshake.

type Connect struct {
	Name       string `json:"name"`
	Credential string `json:"credential,omitempty"`
}

type ConnectAccept struct {
	Avatar  NodeID `json:"avatar"`
	Session string `json:"session"`
	Host    string `json:"host"`
}

type ConnectTerminate struct {
	Reason string `json:"reason"`
}

// Node head.

type NodeCreate struct {
	Node  NodeID   `json:"node"`
	Type  NodeType `json:"type"`
	Owner Owner    `json:"owner"`
}

type NodeDestroy struct {
	Node NodeID `json:"node"`
}

type NodeSubscribe struct {
	Node NodeID `json:"node"`
}

type NodeUnsubscribe struct {
	Node NodeID `json:"node"`
}

// NodeIndexSubscribe replaces the set of node types the session watches for
// creation and destruction.
type NodeIndexSubscribe struct {
	Mask uint32 `json:"mask"`
}

type NodeNameSet struct {
	Node NodeID `json:"node"`
	Name string `json:"name"`
}

type TagGroupCreate struct {
	Node  NodeID     `json:"node"`
	Group ResourceID `json:"group"`
	Name  string     `json:"name"`
}

type TagGroupDestroy struct {
	Node  NodeID     `json:"node"`
	Group ResourceID `json:"group"`
}

type TagGroupSubscribe struct {
	Node  NodeID     `json:"node"`
	Group ResourceID `json:"group"`
}

type TagGroupUnsubscribe struct {
	Node  NodeID     `json:"node"`
	Group ResourceID `json:"group"`
}

type TagCreate struct {
	Node  NodeID     `json:"node"`
	Group ResourceID `json:"group"`
	Tag   ResourceID `json:"tag"`
	Name  string     `json:"name"`
	Value TagValue   `json:"value"`
}

type TagDestroy struct {
	Node  NodeID     `json:"node"`
	Group ResourceID `json:"group"`
	Tag   ResourceID `json:"tag"`
}

// Object nodes.

type ObjectTransformPos struct {
	Node       NodeID    `json:"node"`
	Precision  Precision `json:"precision"`
	Time       Time      `json:"time"`
	Pos        Vec3      `json:"pos"`
	Speed      Vec3      `json:"speed"`
	Accel      Vec3      `json:"accel"`
	DragNormal Vec3      `json:"dragNormal"`
	Drag       float64   `json:"drag"`
}

type ObjectTransformRot struct {
	Node       NodeID    `json:"node"`
	Precision  Precision `json:"precision"`
	Time       Time      `json:"time"`
	Rot        Quat      `json:"rot"`
	Speed      Quat      `json:"speed"`
	Accel      Quat      `json:"accel"`
	DragNormal Quat      `json:"dragNormal"`
	Drag       float64   `json:"drag"`
}

type ObjectTransformScale struct {
	Node      NodeID    `json:"node"`
	Precision Precision `json:"precision"`
	Scale     Vec3      `json:"scale"`
}

type ObjectTransformSubscribe struct {
	Node      NodeID        `json:"node"`
	Kind      TransformKind `json:"kind"`
	Precision Precision     `json:"precision"`
}

type ObjectTransformUnsubscribe struct {
	Node NodeID        `json:"node"`
	Kind TransformKind `json:"kind"`
}

type ObjectLightSet struct {
	Node  NodeID `json:"node"`
	Light Vec3   `json:"light"`
}

type ObjectLinkSet struct {
	Node     NodeID    `json:"node"`
	Link     ElementID `json:"link"`
	Target   NodeID    `json:"target"`
	Label    string    `json:"label"`
	TargetID uint32    `json:"targetId"`
}

type ObjectLinkDestroy struct {
	Node NodeID    `json:"node"`
	Link ElementID `json:"link"`
}

type ObjectMethodGroupCreate struct {
	Node  NodeID     `json:"node"`
	Group ResourceID `json:"group"`
	Name  string     `json:"name"`
}

type ObjectMethodGroupDestroy struct {
	Node  NodeID     `json:"node"`
	Group ResourceID `json:"group"`
}

type ObjectMethodGroupSubscribe struct {
	Node  NodeID     `json:"node"`
	Group ResourceID `json:"group"`
}

type ObjectMethodGroupUnsubscribe struct {
	Node  NodeID     `json:"node"`
	Group ResourceID `json:"group"`
}

type ObjectMethodCreate struct {
	Node   NodeID        `json:"node"`
	Group  ResourceID    `json:"group"`
	Method ResourceID    `json:"method"`
	Name   string        `json:"name"`
	Params []MethodParam `json:"params,omitempty"`
}

type ObjectMethodDestroy struct {
	Node   NodeID     `json:"node"`
	Group  ResourceID `json:"group"`
	Method ResourceID `json:"method"`
}

// ObjectMethodCall is forwarded to the group's subscribers with Sender set
// to the caller's avatar. The argument payload is opaque to the server.
type ObjectMethodCall struct {
	Node   NodeID     `json:"node"`
	Group  ResourceID `json:"group"`
	Method ResourceID `json:"method"`
	Sender NodeID     `json:"sender"`
	Args   []byte     `json:"args,omitempty"`
}

type ObjectHide struct {
	Node   NodeID `json:"node"`
	Hidden bool   `json:"hidden"`
}

// Geometry nodes.

type GeometryLayerCreate struct {
	Node        NodeID            `json:"node"`
	Layer       ResourceID        `json:"layer"`
	Name        string            `json:"name"`
	Type        GeometryLayerType `json:"type"`
	DefaultUint uint32            `json:"defaultUint"`
	DefaultReal float64           `json:"defaultReal"`
}

type GeometryLayerDestroy struct {
	Node  NodeID     `json:"node"`
	Layer ResourceID `json:"layer"`
}

type GeometryLayerSubscribe struct {
	Node      NodeID     `json:"node"`
	Layer     ResourceID `json:"layer"`
	Precision Precision  `json:"precision"`
}

type GeometryLayerUnsubscribe struct {
	Node  NodeID     `json:"node"`
	Layer ResourceID `json:"layer"`
}

type GeometryVertexSetXYZ struct {
	Node      NodeID     `json:"node"`
	Layer     ResourceID `json:"layer"`
	Vertex    ElementID  `json:"vertex"`
	Precision Precision  `json:"precision"`
	Value     Vec3       `json:"value"`
}

type GeometryVertexDelete struct {
	Node   NodeID    `json:"node"`
	Vertex ElementID `json:"vertex"`
}

type GeometryVertexSetUint32 struct {
	Node   NodeID     `json:"node"`
	Layer  ResourceID `json:"layer"`
	Vertex ElementID  `json:"vertex"`
	Value  uint32     `json:"value"`
}

type GeometryVertexSetReal struct {
	Node      NodeID     `json:"node"`
	Layer     ResourceID `json:"layer"`
	Vertex    ElementID  `json:"vertex"`
	Precision Precision  `json:"precision"`
	Value     float64    `json:"value"`
}

// GeometryPolygonSetCornerUint32 on the base polygon layer defines a polygon
// from vertex references. Corner 3 is ElementAny for triangles.
type GeometryPolygonSetCornerUint32 struct {
	Node    NodeID     `json:"node"`
	Layer   ResourceID `json:"layer"`
	Polygon ElementID  `json:"polygon"`
	Corners [4]uint32  `json:"corners"`
}

type GeometryPolygonDelete struct {
	Node    NodeID    `json:"node"`
	Polygon ElementID `json:"polygon"`
}

type GeometryPolygonSetCornerReal struct {
	Node      NodeID     `json:"node"`
	Layer     ResourceID `json:"layer"`
	Polygon   ElementID  `json:"polygon"`
	Precision Precision  `json:"precision"`
	Corners   Quat       `json:"corners"`
}

type GeometryPolygonSetFaceUint8 struct {
	Node    NodeID     `json:"node"`
	Layer   ResourceID `json:"layer"`
	Polygon ElementID  `json:"polygon"`
	Value   uint8      `json:"value"`
}

type GeometryPolygonSetFaceUint32 struct {
	Node    NodeID     `json:"node"`
	Layer   ResourceID `json:"layer"`
	Polygon ElementID  `json:"polygon"`
	Value   uint32     `json:"value"`
}

type GeometryPolygonSetFaceReal struct {
	Node      NodeID     `json:"node"`
	Layer     ResourceID `json:"layer"`
	Polygon   ElementID  `json:"polygon"`
	Precision Precision  `json:"precision"`
	Value     float64    `json:"value"`
}

type GeometryCreaseSetVertex struct {
	Node    NodeID `json:"node"`
	Layer   string `json:"layer"`
	Default uint32 `json:"default"`
}

type GeometryCreaseSetEdge struct {
	Node    NodeID `json:"node"`
	Layer   string `json:"layer"`
	Default uint32 `json:"default"`
}

type GeometryBoneCreate struct {
	Node      NodeID    `json:"node"`
	Bone      ElementID `json:"bone"`
	Weight    string    `json:"weight"`
	Reference string    `json:"reference"`
	Parent    ElementID `json:"parent"`
	Pos       Vec3      `json:"pos"`
	PosLabel  string    `json:"posLabel,omitempty"`
	Rot       Quat      `json:"rot"`
	RotLabel  string    `json:"rotLabel,omitempty"`
}

type GeometryBoneDestroy struct {
	Node NodeID    `json:"node"`
	Bone ElementID `json:"bone"`
}

// Material nodes. Fragment payloads are opaque to the server.

type MaterialFragmentCreate struct {
	Node     NodeID    `json:"node"`
	Fragment ElementID `json:"fragment"`
	Type     uint8     `json:"type"`
	Value    []byte    `json:"value,omitempty"`
}

type MaterialFragmentDestroy struct {
	Node     NodeID    `json:"node"`
	Fragment ElementID `json:"fragment"`
}

// Bitmap nodes.

type BitmapDimensionsSet struct {
	Node   NodeID `json:"node"`
	Width  uint16 `json:"width"`
	Height uint16 `json:"height"`
	Depth  uint16 `json:"depth"`
}

type BitmapLayerCreate struct {
	Node  NodeID          `json:"node"`
	Layer ResourceID      `json:"layer"`
	Name  string          `json:"name"`
	Type  BitmapLayerType `json:"type"`
}

type BitmapLayerDestroy struct {
	Node  NodeID     `json:"node"`
	Layer ResourceID `json:"layer"`
}

type BitmapLayerSubscribe struct {
	Node  NodeID     `json:"node"`
	Layer ResourceID `json:"layer"`
	Level uint8      `json:"level"`
}

type BitmapLayerUnsubscribe struct {
	Node  NodeID     `json:"node"`
	Layer ResourceID `json:"layer"`
}

type BitmapTileSet struct {
	Node  NodeID          `json:"node"`
	Layer ResourceID      `json:"layer"`
	TileX uint16          `json:"tileX"`
	TileY uint16          `json:"tileY"`
	Z     uint16          `json:"z"`
	Type  BitmapLayerType `json:"type"`
	Data  []byte          `json:"data"`
}

// Text nodes.

type TextLanguageSet struct {
	Node     NodeID `json:"node"`
	Language string `json:"language"`
}

type TextBufferCreate struct {
	Node   NodeID     `json:"node"`
	Buffer ResourceID `json:"buffer"`
	Name   string     `json:"name"`
}

type TextBufferDestroy struct {
	Node   NodeID     `json:"node"`
	Buffer ResourceID `json:"buffer"`
}

type TextBufferSubscribe struct {
	Node   NodeID     `json:"node"`
	Buffer ResourceID `json:"buffer"`
}

type TextBufferUnsubscribe struct {
	Node   NodeID     `json:"node"`
	Buffer ResourceID `json:"buffer"`
}

// TextSet replaces Length bytes at Pos with Text.
type TextSet struct {
	Node   NodeID     `json:"node"`
	Buffer ResourceID `json:"buffer"`
	Pos    uint32     `json:"pos"`
	Length uint32     `json:"length"`
	Text   string     `json:"text"`
}

// Curve nodes.

type CurveCreate struct {
	Node       NodeID     `json:"node"`
	Curve      ResourceID `json:"curve"`
	Name       string     `json:"name"`
	Dimensions uint8      `json:"dimensions"`
}

type CurveDestroy struct {
	Node  NodeID     `json:"node"`
	Curve ResourceID `json:"curve"`
}

type CurveSubscribe struct {
	Node  NodeID     `json:"node"`
	Curve ResourceID `json:"curve"`
}

type CurveUnsubscribe struct {
	Node  NodeID     `json:"node"`
	Curve ResourceID `json:"curve"`
}

type CurveKeySet struct {
	Node       NodeID     `json:"node"`
	Curve      ResourceID `json:"curve"`
	Key        ElementID  `json:"key"`
	Dimensions uint8      `json:"dimensions"`
	PreValue   Quat       `json:"preValue"`
	PrePos     [4]uint32  `json:"prePos"`
	Value      Quat       `json:"value"`
	Pos        float64    `json:"pos"`
	PostValue  Quat       `json:"postValue"`
	PostPos    [4]uint32  `json:"postPos"`
}

type CurveKeyDestroy struct {
	Node  NodeID     `json:"node"`
	Curve ResourceID `json:"curve"`
	Key   ElementID  `json:"key"`
}

// Audio nodes.

type AudioBufferCreate struct {
	Node      NodeID     `json:"node"`
	Buffer    ResourceID `json:"buffer"`
	Name      string     `json:"name"`
	Type      SampleType `json:"type"`
	Frequency float64    `json:"frequency"`
}

type AudioBufferDestroy struct {
	Node   NodeID     `json:"node"`
	Buffer ResourceID `json:"buffer"`
}

type AudioBufferSubscribe struct {
	Node   NodeID     `json:"node"`
	Buffer ResourceID `json:"buffer"`
}

type AudioBufferUnsubscribe struct {
	Node   NodeID     `json:"node"`
	Buffer ResourceID `json:"buffer"`
}

type AudioBlockSet struct {
	Node   NodeID     `json:"node"`
	Buffer ResourceID `json:"buffer"`
	Block  uint32     `json:"block"`
	Type   SampleType `json:"type"`
	Data   []byte     `json:"data"`
}

type AudioBlockClear struct {
	Node   NodeID     `json:"node"`
	Buffer ResourceID `json:"buffer"`
	Block  uint32     `json:"block"`
}

type AudioStreamCreate struct {
	Node   NodeID     `json:"node"`
	Stream ResourceID `json:"stream"`
	Name   string     `json:"name"`
}

type AudioStreamDestroy struct {
	Node   NodeID     `json:"node"`
	Stream ResourceID `json:"stream"`
}

type AudioStreamSubscribe struct {
	Node   NodeID     `json:"node"`
	Stream ResourceID `json:"stream"`
}

type AudioStreamUnsubscribe struct {
	Node   NodeID     `json:"node"`
	Stream ResourceID `json:"stream"`
}

// AudioStream is live sample data; it is forwarded, never stored.
type AudioStream struct {
	Node      NodeID     `json:"node"`
	Stream    ResourceID `json:"stream"`
	Time      Time       `json:"time"`
	Type      SampleType `json:"type"`
	Frequency float64    `json:"frequency"`
	Data      []byte     `json:"data"`
}
