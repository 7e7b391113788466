package scripting

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-gl/mathgl/mgl32"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/sgengine/sge/internal/core/ecs"
	"github.com/sgengine/sge/internal/world"
)

// APIVersion is exposed to scripts as the API_VERSION global.
const APIVersion = 1

// Engine wraps a single gopher-lua VM for gameplay scripts.
// Single-goroutine access only: the script system runs Serial.
//
// Scripts see a global `world` table:
//
//	world.dt()                      -> seconds since the previous tick
//	world.position(id)              -> x, y, z  (nil when id has no Transform)
//	world.velocity(id)              -> x, y, z  (nil when id has no Kinematics)
//	world.set_velocity(id, x, y, z) -> true when id has Kinematics
//	world.find(tag)                 -> id or nil
//	world.log(msg)
//
// Entity ids are pre-generated indices as written in entities.yml. A global
// function update(dt) is called once per tick when defined.
type Engine struct {
	vm    *lua.LState
	store *world.Store
	log   *zap.Logger
	dt    float64
}

// NewEngine creates a Lua engine and loads all scripts from the given directory.
func NewEngine(scriptsDir string, store *world.Store, log *zap.Logger) (*Engine, error) {
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})
	vm.SetGlobal("API_VERSION", lua.LNumber(APIVersion))

	e := &Engine{vm: vm, store: store, log: log}
	e.registerWorld()

	if err := e.loadDir(scriptsDir); err != nil {
		vm.Close()
		return nil, fmt.Errorf("load scripts: %w", err)
	}
	return e, nil
}

// loadDir loads all .lua files in a directory, in name order.
func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // no scripts is fine
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := e.vm.DoFile(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		e.log.Debug("loaded lua script", zap.String("file", path))
	}
	return nil
}

// DoString runs a chunk in the VM. Used by tests and the console.
func (e *Engine) DoString(src string) error {
	return e.vm.DoString(src)
}

// HasUpdate reports whether the scripts define update(dt).
func (e *Engine) HasUpdate() bool {
	_, ok := e.vm.GetGlobal("update").(*lua.LFunction)
	return ok
}

// Update calls the Lua update(dt) function. Scripts without one are a no-op.
func (e *Engine) Update(dt float64) error {
	fn, ok := e.vm.GetGlobal("update").(*lua.LFunction)
	if !ok {
		return nil
	}
	e.dt = dt
	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    0,
		Protect: true,
	}, lua.LNumber(dt)); err != nil {
		return fmt.Errorf("lua update: %w", err)
	}
	return nil
}

func (e *Engine) registerWorld() {
	t := e.vm.NewTable()
	e.vm.SetFuncs(t, map[string]lua.LGFunction{
		"dt":           e.luaDT,
		"position":     e.luaPosition,
		"velocity":     e.luaVelocity,
		"set_velocity": e.luaSetVelocity,
		"find":         e.luaFind,
		"log":          e.luaLog,
	})
	e.vm.SetGlobal("world", t)
}

// entity resolves argument n to a live handle.
func (e *Engine) entity(L *lua.LState, n int) (ecs.EntityID, bool) {
	idx := L.CheckInt(n)
	if idx <= 0 {
		return ecs.Null, false
	}
	return e.store.Lookup(uint32(idx))
}

func pushVec3(L *lua.LState, v mgl32.Vec3) int {
	L.Push(lua.LNumber(v.X()))
	L.Push(lua.LNumber(v.Y()))
	L.Push(lua.LNumber(v.Z()))
	return 3
}

func (e *Engine) luaDT(L *lua.LState) int {
	L.Push(lua.LNumber(e.dt))
	return 1
}

func (e *Engine) luaPosition(L *lua.LState) int {
	id, ok := e.entity(L, 1)
	if !ok {
		L.Push(lua.LNil)
		return 1
	}
	tr, ok := e.store.Transforms.Get(id)
	if !ok {
		L.Push(lua.LNil)
		return 1
	}
	return pushVec3(L, tr.Position)
}

func (e *Engine) luaVelocity(L *lua.LState) int {
	id, ok := e.entity(L, 1)
	if !ok {
		L.Push(lua.LNil)
		return 1
	}
	k, ok := e.store.Kinematics.Get(id)
	if !ok {
		L.Push(lua.LNil)
		return 1
	}
	return pushVec3(L, k.Velocity)
}

func (e *Engine) luaSetVelocity(L *lua.LState) int {
	id, ok := e.entity(L, 1)
	v := mgl32.Vec3{
		float32(L.CheckNumber(2)),
		float32(L.CheckNumber(3)),
		float32(L.CheckNumber(4)),
	}
	if !ok {
		L.Push(lua.LFalse)
		return 1
	}
	k, ok := e.store.Kinematics.Get(id)
	if !ok {
		L.Push(lua.LFalse)
		return 1
	}
	k.Velocity = v
	L.Push(lua.LTrue)
	return 1
}

func (e *Engine) luaFind(L *lua.LState) int {
	id, ok := e.store.FindByTag(L.CheckString(1))
	if !ok {
		L.Push(lua.LNil)
		return 1
	}
	L.Push(lua.LNumber(id.Index()))
	return 1
}

func (e *Engine) luaLog(L *lua.LState) int {
	e.log.Info("lua", zap.String("msg", L.CheckString(1)))
	return 0
}

// Close shuts down the Lua VM.
func (e *Engine) Close() {
	e.vm.Close()
}
