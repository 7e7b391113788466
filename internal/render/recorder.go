package render

import (
	"fmt"
	"sync"

	"github.com/go-gl/mathgl/mgl32"
)

// Recorder is an in-memory Renderer. It keeps every live resource and the
// draw calls of the last completed frame. Used headless and in tests.
type Recorder struct {
	mu       sync.Mutex
	next     uint32
	buffers  map[BufferHandle]string
	programs map[ProgramHandle]ProgramSource

	vertexData map[BufferHandle][]mgl32.Vec3
	indexData  map[BufferHandle][]uint16

	inFrame bool
	view    mgl32.Mat4
	proj    mgl32.Mat4
	pending []DrawCall
	last    []DrawCall
	frames  int
}

func NewRecorder() *Recorder {
	return &Recorder{
		buffers:    make(map[BufferHandle]string),
		programs:   make(map[ProgramHandle]ProgramSource),
		vertexData: make(map[BufferHandle][]mgl32.Vec3),
		indexData:  make(map[BufferHandle][]uint16),
	}
}

func (r *Recorder) handle() uint32 {
	r.next++
	return r.next
}

func (r *Recorder) CreateVertexBuffer(name string, positions []mgl32.Vec3) (BufferHandle, error) {
	if len(positions) == 0 {
		return 0, fmt.Errorf("vertex buffer %q: no vertices", name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	h := BufferHandle(r.handle())
	r.buffers[h] = name
	r.vertexData[h] = append([]mgl32.Vec3(nil), positions...)
	return h, nil
}

func (r *Recorder) CreateIndexBuffer(name string, indices []uint16) (BufferHandle, error) {
	if len(indices) == 0 {
		return 0, fmt.Errorf("index buffer %q: no indices", name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	h := BufferHandle(r.handle())
	r.buffers[h] = name
	r.indexData[h] = append([]uint16(nil), indices...)
	return h, nil
}

func (r *Recorder) CreateProgram(src ProgramSource) (ProgramHandle, error) {
	if src.VertexShader == "" || src.FragmentShader == "" {
		return 0, fmt.Errorf("program %q: vertex and fragment shader required", src.Name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	h := ProgramHandle(r.handle())
	r.programs[h] = src
	return h, nil
}

func (r *Recorder) DestroyBuffer(h BufferHandle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.buffers, h)
	delete(r.vertexData, h)
	delete(r.indexData, h)
}

func (r *Recorder) DestroyProgram(h ProgramHandle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.programs, h)
}

func (r *Recorder) BeginFrame(view, projection mgl32.Mat4) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.inFrame = true
	r.view, r.proj = view, projection
	r.pending = r.pending[:0]
}

func (r *Recorder) Submit(dc DrawCall) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pending = append(r.pending, dc)
}

func (r *Recorder) EndFrame() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.inFrame {
		return fmt.Errorf("end frame without begin frame")
	}
	r.inFrame = false
	r.last = append(r.last[:0], r.pending...)
	r.frames++
	return nil
}

// LiveBuffers returns how many buffers have not been destroyed.
func (r *Recorder) LiveBuffers() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.buffers)
}

// LivePrograms returns how many programs have not been destroyed.
func (r *Recorder) LivePrograms() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.programs)
}

// LastFrame returns the draw calls of the last completed frame.
func (r *Recorder) LastFrame() []DrawCall {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]DrawCall(nil), r.last...)
}

// Frames returns how many frames were completed.
func (r *Recorder) Frames() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.frames
}

// Matrices returns the view and projection of the last BeginFrame.
func (r *Recorder) Matrices() (view, projection mgl32.Mat4) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.view, r.proj
}

// VertexData returns the positions uploaded for h.
func (r *Recorder) VertexData(h BufferHandle) []mgl32.Vec3 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.vertexData[h]
}

// IndexData returns the indices uploaded for h.
func (r *Recorder) IndexData(h BufferHandle) []uint16 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.indexData[h]
}
