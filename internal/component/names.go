package component

// Component kind names, used for store names and declared write sets.
const (
	KindClock             = "clock"
	KindTransform         = "transform"
	KindKinematics        = "kinematics"
	KindWindowState       = "window_state"
	KindAttachmentLink    = "attachment_link"
	KindMovementDisabled  = "movement_disabled"
	KindCamera            = "camera"
	KindTag               = "tag"
	KindPrimaryController = "primary_controller"
	KindMesh              = "mesh"
	KindVertexBuffer      = "vertex_buffer"
	KindIndexBuffer       = "index_buffer"
	KindProgram           = "program"
)
