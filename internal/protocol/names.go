package protocol

const (
	CmdConnect                        = "connect"
	CmdConnectAccept                  = "connect_accept"
	CmdConnectTerminate               = "connect_terminate"
	CmdNodeCreate                     = "node_create"
	CmdNodeDestroy                    = "node_destroy"
	CmdNodeSubscribe                  = "node_subscribe"
	CmdNodeUnsubscribe                = "node_unsubscribe"
	CmdNodeIndexSubscribe             = "node_index_subscribe"
	CmdNodeNameSet                    = "node_name_set"
	CmdTagGroupCreate                 = "tag_group_create"
	CmdTagGroupDestroy                = "tag_group_destroy"
	CmdTagGroupSubscribe              = "tag_group_subscribe"
	CmdTagGroupUnsubscribe            = "tag_group_unsubscribe"
	CmdTagCreate                      = "tag_create"
	CmdTagDestroy                     = "tag_destroy"
	CmdObjectTransformPos             = "object_transform_pos"
	CmdObjectTransformRot             = "object_transform_rot"
	CmdObjectTransformScale           = "object_transform_scale"
	CmdObjectTransformSubscribe       = "object_transform_subscribe"
	CmdObjectTransformUnsubscribe     = "object_transform_unsubscribe"
	CmdObjectLightSet                 = "object_light_set"
	CmdObjectLinkSet                  = "object_link_set"
	CmdObjectLinkDestroy              = "object_link_destroy"
	CmdObjectMethodGroupCreate        = "object_method_group_create"
	CmdObjectMethodGroupDestroy       = "object_method_group_destroy"
	CmdObjectMethodGroupSubscribe     = "object_method_group_subscribe"
	CmdObjectMethodGroupUnsubscribe   = "object_method_group_unsubscribe"
	CmdObjectMethodCreate             = "object_method_create"
	CmdObjectMethodDestroy            = "object_method_destroy"
	CmdObjectMethodCall               = "object_method_call"
	CmdObjectHide                     = "object_hide"
	CmdGeometryLayerCreate            = "geometry_layer_create"
	CmdGeometryLayerDestroy           = "geometry_layer_destroy"
	CmdGeometryLayerSubscribe         = "geometry_layer_subscribe"
	CmdGeometryLayerUnsubscribe       = "geometry_layer_unsubscribe"
	CmdGeometryVertexSetXYZ           = "geometry_vertex_set_xyz"
	CmdGeometryVertexDelete           = "geometry_vertex_delete"
	CmdGeometryVertexSetUint32        = "geometry_vertex_set_uint32"
	CmdGeometryVertexSetReal          = "geometry_vertex_set_real"
	CmdGeometryPolygonSetCornerUint32 = "geometry_polygon_set_corner_uint32"
	CmdGeometryPolygonDelete          = "geometry_polygon_delete"
	CmdGeometryPolygonSetCornerReal   = "geometry_polygon_set_corner_real"
	CmdGeometryPolygonSetFaceUint8    = "geometry_polygon_set_face_uint8"
	CmdGeometryPolygonSetFaceUint32   = "geometry_polygon_set_face_uint32"
	CmdGeometryPolygonSetFaceReal     = "geometry_polygon_set_face_real"
	CmdGeometryCreaseSetVertex        = "geometry_crease_set_vertex"
	CmdGeometryCreaseSetEdge          = "geometry_crease_set_edge"
	CmdGeometryBoneCreate             = "geometry_bone_create"
	CmdGeometryBoneDestroy            = "geometry_bone_destroy"
	CmdMaterialFragmentCreate         = "material_fragment_create"
	CmdMaterialFragmentDestroy        = "material_fragment_destroy"
	CmdBitmapDimensionsSet            = "bitmap_dimensions_set"
	CmdBitmapLayerCreate              = "bitmap_layer_create"
	CmdBitmapLayerDestroy             = "bitmap_layer_destroy"
	CmdBitmapLayerSubscribe           = "bitmap_layer_subscribe"
	CmdBitmapLayerUnsubscribe         = "bitmap_layer_unsubscribe"
	CmdBitmapTileSet                  = "bitmap_tile_set"
	CmdTextLanguageSet                = "text_language_set"
	CmdTextBufferCreate               = "text_buffer_create"
	CmdTextBufferDestroy              = "text_buffer_destroy"
	CmdTextBufferSubscribe            = "text_buffer_subscribe"
	CmdTextBufferUnsubscribe          = "text_buffer_unsubscribe"
	CmdTextSet                        = "text_set"
	CmdCurveCreate                    = "curve_create"
	CmdCurveDestroy                   = "curve_destroy"
	CmdCurveSubscribe                 = "curve_subscribe"
	CmdCurveUnsubscribe               = "curve_unsubscribe"
	CmdCurveKeySet                    = "curve_key_set"
	CmdCurveKeyDestroy                = "curve_key_destroy"
	CmdAudioBufferCreate              = "audio_buffer_create"
	CmdAudioBufferDestroy             = "audio_buffer_destroy"
	CmdAudioBufferSubscribe           = "audio_buffer_subscribe"
	CmdAudioBufferUnsubscribe         = "audio_buffer_unsubscribe"
	CmdAudioBlockSet                  = "audio_block_set"
	CmdAudioBlockClear                = "audio_block_clear"
	CmdAudioStreamCreate              = "audio_stream_create"
	CmdAudioStreamDestroy             = "audio_stream_destroy"
	CmdAudioStreamSubscribe           = "audio_stream_subscribe"
	CmdAudioStreamUnsubscribe         = "audio_stream_unsubscribe"
	CmdAudioStream                    = "audio_stream"
)

func (Connect) CommandName() string { return CmdConnect }
func (ConnectAccept) CommandName() string { return CmdConnectAccept }
func (ConnectTerminate) CommandName() string { return CmdConnectTerminate }
func (NodeCreate) CommandName() string { return CmdNodeCreate }
func (NodeDestroy) CommandName() string { return CmdNodeDestroy }
func (NodeSubscribe) CommandName() string { return CmdNodeSubscribe }
func (NodeUnsubscribe) CommandName() string { return CmdNodeUnsubscribe }
func (NodeIndexSubscribe) CommandName() string { return CmdNodeIndexSubscribe }
func (NodeNameSet) CommandName() string { return CmdNodeNameSet }
func (TagGroupCreate) CommandName() string { return CmdTagGroupCreate }
func (TagGroupDestroy) CommandName() string { return CmdTagGroupDestroy }
func (TagGroupSubscribe) CommandName() string { return CmdTagGroupSubscribe }
func (TagGroupUnsubscribe) CommandName() string { return CmdTagGroupUnsubscribe }
func (TagCreate) CommandName() string { return CmdTagCreate }
func (TagDestroy) CommandName() string { return CmdTagDestroy }
func (ObjectTransformPos) CommandName() string { return CmdObjectTransformPos }
func (ObjectTransformRot) CommandName() string { return CmdObjectTransformRot }
func (ObjectTransformScale) CommandName() string { return CmdObjectTransformScale }
func (ObjectTransformSubscribe) CommandName() string { return CmdObjectTransformSubscribe }
func (ObjectTransformUnsubscribe) CommandName() string { return CmdObjectTransformUnsubscribe }
func (ObjectLightSet) CommandName() string { return CmdObjectLightSet }
func (ObjectLinkSet) CommandName() string { return CmdObjectLinkSet }
func (ObjectLinkDestroy) CommandName() string { return CmdObjectLinkDestroy }
func (ObjectMethodGroupCreate) CommandName() string { return CmdObjectMethodGroupCreate }
func (ObjectMethodGroupDestroy) CommandName() string { return CmdObjectMethodGroupDestroy }
func (ObjectMethodGroupSubscribe) CommandName() string { return CmdObjectMethodGroupSubscribe }
func (ObjectMethodGroupUnsubscribe) CommandName() string { return CmdObjectMethodGroupUnsubscribe }
func (ObjectMethodCreate) CommandName() string { return CmdObjectMethodCreate }
func (ObjectMethodDestroy) CommandName() string { return CmdObjectMethodDestroy }
func (ObjectMethodCall) CommandName() string { return CmdObjectMethodCall }
func (ObjectHide) CommandName() string { return CmdObjectHide }
func (GeometryLayerCreate) CommandName() string { return CmdGeometryLayerCreate }
func (GeometryLayerDestroy) CommandName() string { return CmdGeometryLayerDestroy }
func (GeometryLayerSubscribe) CommandName() string { return CmdGeometryLayerSubscribe }
func (GeometryLayerUnsubscribe) CommandName() string { return CmdGeometryLayerUnsubscribe }
func (GeometryVertexSetXYZ) CommandName() string { return CmdGeometryVertexSetXYZ }
func (GeometryVertexDelete) CommandName() string { return CmdGeometryVertexDelete }
func (GeometryVertexSetUint32) CommandName() string { return CmdGeometryVertexSetUint32 }
func (GeometryVertexSetReal) CommandName() string { return CmdGeometryVertexSetReal }
func (GeometryPolygonSetCornerUint32) CommandName() string { return CmdGeometryPolygonSetCornerUint32 }
func (GeometryPolygonDelete) CommandName() string { return CmdGeometryPolygonDelete }
func (GeometryPolygonSetCornerReal) CommandName() string { return CmdGeometryPolygonSetCornerReal }
func (GeometryPolygonSetFaceUint8) CommandName() string { return CmdGeometryPolygonSetFaceUint8 }
func (GeometryPolygonSetFaceUint32) CommandName() string { return CmdGeometryPolygonSetFaceUint32 }
func (GeometryPolygonSetFaceReal) CommandName() string { return CmdGeometryPolygonSetFaceReal }
func (GeometryCreaseSetVertex) CommandName() string { return CmdGeometryCreaseSetVertex }
func (GeometryCreaseSetEdge) CommandName() string { return CmdGeometryCreaseSetEdge }
func (GeometryBoneCreate) CommandName() string { return CmdGeometryBoneCreate }
func (GeometryBoneDestroy) CommandName() string { return CmdGeometryBoneDestroy }
func (MaterialFragmentCreate) CommandName() string { return CmdMaterialFragmentCreate }
func (MaterialFragmentDestroy) CommandName() string { return CmdMaterialFragmentDestroy }
func (BitmapDimensionsSet) CommandName() string { return CmdBitmapDimensionsSet }
func (BitmapLayerCreate) CommandName() string { return CmdBitmapLayerCreate }
func (BitmapLayerDestroy) CommandName() string { return CmdBitmapLayerDestroy }
func (BitmapLayerSubscribe) CommandName() string { return CmdBitmapLayerSubscribe }
func (BitmapLayerUnsubscribe) CommandName() string { return CmdBitmapLayerUnsubscribe }
func (BitmapTileSet) CommandName() string { return CmdBitmapTileSet }
func (TextLanguageSet) CommandName() string { return CmdTextLanguageSet }
func (TextBufferCreate) CommandName() string { return CmdTextBufferCreate }
func (TextBufferDestroy) CommandName() string { return CmdTextBufferDestroy }
func (TextBufferSubscribe) CommandName() string { return CmdTextBufferSubscribe }
func (TextBufferUnsubscribe) CommandName() string { return CmdTextBufferUnsubscribe }
func (TextSet) CommandName() string { return CmdTextSet }
func (CurveCreate) CommandName() string { return CmdCurveCreate }
func (CurveDestroy) CommandName() string { return CmdCurveDestroy }
func (CurveSubscribe) CommandName() string { return CmdCurveSubscribe }
func (CurveUnsubscribe) CommandName() string { return CmdCurveUnsubscribe }
func (CurveKeySet) CommandName() string { return CmdCurveKeySet }
func (CurveKeyDestroy) CommandName() string { return CmdCurveKeyDestroy }
func (AudioBufferCreate) CommandName() string { return CmdAudioBufferCreate }
func (AudioBufferDestroy) CommandName() string { return CmdAudioBufferDestroy }
func (AudioBufferSubscribe) CommandName() string { return CmdAudioBufferSubscribe }
func (AudioBufferUnsubscribe) CommandName() string { return CmdAudioBufferUnsubscribe }
func (AudioBlockSet) CommandName() string { return CmdAudioBlockSet }
func (AudioBlockClear) CommandName() string { return CmdAudioBlockClear }
func (AudioStreamCreate) CommandName() string { return CmdAudioStreamCreate }
func (AudioStreamDestroy) CommandName() string { return CmdAudioStreamDestroy }
func (AudioStreamSubscribe) CommandName() string { return CmdAudioStreamSubscribe }
func (AudioStreamUnsubscribe) CommandName() string { return CmdAudioStreamUnsubscribe }
func (AudioStream) CommandName() string { return CmdAudioStream }

// commandTypes maps wire names to constructors for decoding.
var commandTypes = map[string]func() Command{
	CmdConnect:                        func() Command { return &Connect{} },
	CmdConnectAccept:                  func() Command { return &ConnectAccept{} },
	CmdConnectTerminate:               func() Command { return &ConnectTerminate{} },
	CmdNodeCreate:                     func() Command { return &NodeCreate{} },
	CmdNodeDestroy:                    func() Command { return &NodeDestroy{} },
	CmdNodeSubscribe:                  func() Command { return &NodeSubscribe{} },
	CmdNodeUnsubscribe:                func() Command { return &NodeUnsubscribe{} },
	CmdNodeIndexSubscribe:             func() Command { return &NodeIndexSubscribe{} },
	CmdNodeNameSet:                    func() Command { return &NodeNameSet{} },
	CmdTagGroupCreate:                 func() Command { return &TagGroupCreate{} },
	CmdTagGroupDestroy:                func() Command { return &TagGroupDestroy{} },
	CmdTagGroupSubscribe:              func() Command { return &TagGroupSubscribe{} },
	CmdTagGroupUnsubscribe:            func() Command { return &TagGroupUnsubscribe{} },
	CmdTagCreate:                      func() Command { return &TagCreate{} },
	CmdTagDestroy:                     func() Command { return &TagDestroy{} },
	CmdObjectTransformPos:             func() Command { return &ObjectTransformPos{} },
	CmdObjectTransformRot:             func() Command { return &ObjectTransformRot{} },
	CmdObjectTransformScale:           func() Command { return &ObjectTransformScale{} },
	CmdObjectTransformSubscribe:       func() Command { return &ObjectTransformSubscribe{} },
	CmdObjectTransformUnsubscribe:     func() Command { return &ObjectTransformUnsubscribe{} },
	CmdObjectLightSet:                 func() Command { return &ObjectLightSet{} },
	CmdObjectLinkSet:                  func() Command { return &ObjectLinkSet{} },
	CmdObjectLinkDestroy:              func() Command { return &ObjectLinkDestroy{} },
	CmdObjectMethodGroupCreate:        func() Command { return &ObjectMethodGroupCreate{} },
	CmdObjectMethodGroupDestroy:       func() Command { return &ObjectMethodGroupDestroy{} },
	CmdObjectMethodGroupSubscribe:     func() Command { return &ObjectMethodGroupSubscribe{} },
	CmdObjectMethodGroupUnsubscribe:   func() Command { return &ObjectMethodGroupUnsubscribe{} },
	CmdObjectMethodCreate:             func() Command { return &ObjectMethodCreate{} },
	CmdObjectMethodDestroy:            func() Command { return &ObjectMethodDestroy{} },
	CmdObjectMethodCall:               func() Command { return &ObjectMethodCall{} },
	CmdObjectHide:                     func() Command { return &ObjectHide{} },
	CmdGeometryLayerCreate:            func() Command { return &GeometryLayerCreate{} },
	CmdGeometryLayerDestroy:           func() Command { return &GeometryLayerDestroy{} },
	CmdGeometryLayerSubscribe:         func() Command { return &GeometryLayerSubscribe{} },
	CmdGeometryLayerUnsubscribe:       func() Command { return &GeometryLayerUnsubscribe{} },
	CmdGeometryVertexSetXYZ:           func() Command { return &GeometryVertexSetXYZ{} },
	CmdGeometryVertexDelete:           func() Command { return &GeometryVertexDelete{} },
	CmdGeometryVertexSetUint32:        func() Command { return &GeometryVertexSetUint32{} },
	CmdGeometryVertexSetReal:          func() Command { return &GeometryVertexSetReal{} },
	CmdGeometryPolygonSetCornerUint32: func() Command { return &GeometryPolygonSetCornerUint32{} },
	CmdGeometryPolygonDelete:          func() Command { return &GeometryPolygonDelete{} },
	CmdGeometryPolygonSetCornerReal:   func() Command { return &GeometryPolygonSetCornerReal{} },
	CmdGeometryPolygonSetFaceUint8:    func() Command { return &GeometryPolygonSetFaceUint8{} },
	CmdGeometryPolygonSetFaceUint32:   func() Command { return &GeometryPolygonSetFaceUint32{} },
	CmdGeometryPolygonSetFaceReal:     func() Command { return &GeometryPolygonSetFaceReal{} },
	CmdGeometryCreaseSetVertex:        func() Command { return &GeometryCreaseSetVertex{} },
	CmdGeometryCreaseSetEdge:          func() Command { return &GeometryCreaseSetEdge{} },
	CmdGeometryBoneCreate:             func() Command { return &GeometryBoneCreate{} },
	CmdGeometryBoneDestroy:            func() Command { return &GeometryBoneDestroy{} },
	CmdMaterialFragmentCreate:         func() Command { return &MaterialFragmentCreate{} },
	CmdMaterialFragmentDestroy:        func() Command { return &MaterialFragmentDestroy{} },
	CmdBitmapDimensionsSet:            func() Command { return &BitmapDimensionsSet{} },
	CmdBitmapLayerCreate:              func() Command { return &BitmapLayerCreate{} },
	CmdBitmapLayerDestroy:             func() Command { return &BitmapLayerDestroy{} },
	CmdBitmapLayerSubscribe:           func() Command { return &BitmapLayerSubscribe{} },
	CmdBitmapLayerUnsubscribe:         func() Command { return &BitmapLayerUnsubscribe{} },
	CmdBitmapTileSet:                  func() Command { return &BitmapTileSet{} },
	CmdTextLanguageSet:                func() Command { return &TextLanguageSet{} },
	CmdTextBufferCreate:               func() Command { return &TextBufferCreate{} },
	CmdTextBufferDestroy:              func() Command { return &TextBufferDestroy{} },
	CmdTextBufferSubscribe:            func() Command { return &TextBufferSubscribe{} },
	CmdTextBufferUnsubscribe:          func() Command { return &TextBufferUnsubscribe{} },
	CmdTextSet:                        func() Command { return &TextSet{} },
	CmdCurveCreate:                    func() Command { return &CurveCreate{} },
	CmdCurveDestroy:                   func() Command { return &CurveDestroy{} },
	CmdCurveSubscribe:                 func() Command { return &CurveSubscribe{} },
	CmdCurveUnsubscribe:               func() Command { return &CurveUnsubscribe{} },
	CmdCurveKeySet:                    func() Command { return &CurveKeySet{} },
	CmdCurveKeyDestroy:                func() Command { return &CurveKeyDestroy{} },
	CmdAudioBufferCreate:              func() Command { return &AudioBufferCreate{} },
	CmdAudioBufferDestroy:             func() Command { return &AudioBufferDestroy{} },
	CmdAudioBufferSubscribe:           func() Command { return &AudioBufferSubscribe{} },
	CmdAudioBufferUnsubscribe:         func() Command { return &AudioBufferUnsubscribe{} },
	CmdAudioBlockSet:                  func() Command { return &AudioBlockSet{} },
	CmdAudioBlockClear:                func() Command { return &AudioBlockClear{} },
	CmdAudioStreamCreate:              func() Command { return &AudioStreamCreate{} },
	CmdAudioStreamDestroy:             func() Command { return &AudioStreamDestroy{} },
	CmdAudioStreamSubscribe:           func() Command { return &AudioStreamSubscribe{} },
	CmdAudioStreamUnsubscribe:         func() Command { return &AudioStreamUnsubscribe{} },
	CmdAudioStream:                    func() Command { return &AudioStream{} },
}
