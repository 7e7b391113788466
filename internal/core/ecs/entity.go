package ecs

import "fmt"

// EntityID encodes a 32-bit index in the lower bits and a 32-bit generation
// in the upper bits. Generation increments on destroy to invalidate stale refs.
// Index 0 is never allocated, so the zero EntityID is the null handle.
type EntityID uint64

// Null is the "no entity" handle used by weak references.
const Null EntityID = 0

func NewEntityID(index uint32, generation uint32) EntityID {
	return EntityID(uint64(generation)<<32 | uint64(index))
}

func (id EntityID) Index() uint32      { return uint32(id) }
func (id EntityID) Generation() uint32 { return uint32(id >> 32) }
func (id EntityID) IsZero() bool       { return id == Null }

func (id EntityID) String() string {
	if id.IsZero() {
		return "null"
	}
	return fmt.Sprintf("%d.%d", id.Index(), id.Generation())
}

// EntityPool manages entity allocation with generational indices and a free list.
type EntityPool struct {
	generations []uint32
	alive       []bool
	freeList    []uint32
	nextIndex   uint32
}

func NewEntityPool() *EntityPool {
	return &EntityPool{
		generations: make([]uint32, 1, 1024),
		alive:       make([]bool, 1, 1024),
		freeList:    make([]uint32, 0, 256),
		nextIndex:   1,
	}
}

func (p *EntityPool) Create() EntityID {
	for len(p.freeList) > 0 {
		idx := p.freeList[len(p.freeList)-1]
		p.freeList = p.freeList[:len(p.freeList)-1]
		if p.alive[idx] {
			continue // claimed through CreateAt while on the free list
		}
		p.alive[idx] = true
		return NewEntityID(idx, p.generations[idx])
	}
	idx := p.nextIndex
	p.grow(idx)
	p.nextIndex++
	p.alive[idx] = true
	return NewEntityID(idx, p.generations[idx])
}

// CreateAt claims a specific index. Used for entities whose handle is fixed
// ahead of time by a scene descriptor.
func (p *EntityPool) CreateAt(idx uint32) (EntityID, error) {
	if idx == 0 {
		return Null, fmt.Errorf("entity index 0 is reserved")
	}
	if idx < p.nextIndex && p.alive[idx] {
		return Null, fmt.Errorf("entity index %d already alive", idx)
	}
	if idx >= p.nextIndex {
		for i := p.nextIndex; i < idx; i++ {
			p.grow(i)
			p.freeList = append(p.freeList, i)
		}
		p.grow(idx)
		p.nextIndex = idx + 1
	}
	p.alive[idx] = true
	return NewEntityID(idx, p.generations[idx]), nil
}

func (p *EntityPool) grow(idx uint32) {
	for int(idx) >= len(p.generations) {
		p.generations = append(p.generations, 0)
		p.alive = append(p.alive, false)
	}
}

func (p *EntityPool) Alive(id EntityID) bool {
	idx := id.Index()
	if idx == 0 || idx >= p.nextIndex {
		return false
	}
	return p.alive[idx] && p.generations[idx] == id.Generation()
}

// Lookup returns the live handle currently occupying idx.
func (p *EntityPool) Lookup(idx uint32) (EntityID, bool) {
	if idx == 0 || idx >= p.nextIndex || !p.alive[idx] {
		return Null, false
	}
	return NewEntityID(idx, p.generations[idx]), true
}

// Destroy releases the handle. Returns false for stale or unknown handles.
func (p *EntityPool) Destroy(id EntityID) bool {
	if !p.Alive(id) {
		return false
	}
	idx := id.Index()
	p.generations[idx]++
	p.alive[idx] = false
	p.freeList = append(p.freeList, idx)
	return true
}

// Count returns the number of live entities.
func (p *EntityPool) Count() int {
	n := 0
	for _, a := range p.alive {
		if a {
			n++
		}
	}
	return n
}
