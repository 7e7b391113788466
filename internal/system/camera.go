package system

import (
	"context"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/sgengine/sge/internal/component"
	"github.com/sgengine/sge/internal/core/ecs"
	coresys "github.com/sgengine/sge/internal/core/system"
	"github.com/sgengine/sge/internal/scene"
	"github.com/sgengine/sge/internal/world"
)

// Orthographic depth range of the viewport camera.
const (
	cameraNear = 0
	cameraFar  = 100
)

// ViewportCameraSystem keeps the camera's view and projection matrices
// current. The view is rebuilt only when the camera moved, the projection
// only when the viewport changed or the zoom did. Serial: it consumes the
// window's viewport flag.
type ViewportCameraSystem struct {
	store  *world.Store
	camera ecs.EntityID
	window ecs.EntityID

	haveView bool
	lastPos  mgl32.Vec3
	lastZoom float32
	ortho    mgl32.Mat4
	scale    mgl32.Mat4
}

func NewViewportCameraSystem() *ViewportCameraSystem {
	return &ViewportCameraSystem{ortho: mgl32.Ident4(), scale: mgl32.Ident4(), lastZoom: 1}
}

func (s *ViewportCameraSystem) Name() string         { return NameViewportCamera }
func (s *ViewportCameraSystem) Phase() coresys.Phase { return coresys.PhaseRunning }
func (s *ViewportCameraSystem) Mode() coresys.Mode   { return coresys.Serial }

func (s *ViewportCameraSystem) WriteSet() []string {
	return []string{component.KindCamera, component.KindTransform, component.KindWindowState}
}

// Configure binds the camera and window entities and forces a projection
// rebuild on the first tick.
func (s *ViewportCameraSystem) Configure(store *world.Store, b *scene.Bindings) error {
	camera, err := bindEntity(store, b, NameViewportCamera, "camera", false)
	if err != nil {
		return err
	}
	window, err := bindEntity(store, b, NameViewportCamera, "window", false)
	if err != nil {
		return err
	}
	s.store, s.camera, s.window = store, camera, window
	if w, ok := store.Windows.Get(window); ok {
		w.ViewportChanged = true
	}
	return nil
}

func (s *ViewportCameraSystem) Run(_ context.Context) error {
	cam, ok := s.store.Cameras.Get(s.camera)
	if !ok {
		return nil
	}

	pos := cam.Position
	tr, hasTransform := s.store.Transforms.Get(s.camera)
	if link, ok := s.store.Links.Get(s.camera); ok {
		if target, ok := s.store.Transforms.Get(link.Target); ok && s.store.Alive(link.Target) {
			pos = target.Position
			if hasTransform {
				tr.Position = pos
			}
		} else if hasTransform {
			pos = tr.Position
		}
	} else if hasTransform {
		pos = tr.Position
	}

	if !s.haveView || pos != s.lastPos {
		cam.Position = pos
		cam.View = viewMatrix(pos)
		s.lastPos, s.haveView = pos, true
	}

	rebuild := false
	if cam.Zoom != s.lastZoom {
		s.scale = mgl32.Scale3D(cam.Zoom, cam.Zoom, cam.Zoom)
		s.lastZoom = cam.Zoom
		rebuild = true
	}
	if w, ok := s.store.Windows.Get(s.window); ok && w.ViewportChanged {
		s.ortho = orthoFor(w.Width, w.Height)
		w.ViewportChanged = false
		rebuild = true
	}
	if rebuild {
		cam.Projection = s.ortho.Mul4(s.scale)
	}
	return nil
}

// viewMatrix is the inverse of the camera's placement.
func viewMatrix(pos mgl32.Vec3) mgl32.Mat4 {
	return mgl32.Translate3D(pos.X(), pos.Y(), pos.Z()).Inv()
}

// orthoFor centres an orthographic volume on the origin with one world unit
// per viewport unit.
func orthoFor(width, height int) mgl32.Mat4 {
	if width <= 0 || height <= 0 {
		return mgl32.Ident4()
	}
	halfH := float32(height) / 2
	halfW := halfH * float32(width) / float32(height)
	return mgl32.Ortho(-halfW, halfW, -halfH, halfH, cameraNear, cameraFar)
}
