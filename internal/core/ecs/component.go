package ecs

// Removable is implemented by all component stores so the Registry can
// bulk-remove an entity's data from every store on destroy.
type Removable interface {
	Remove(id EntityID)
	Has(id EntityID) bool
	Name() string
}

// PtrComponentStore is a generic typed map store for ECS components.
// At most one component per entity. No internal locking: concurrent
// mutation of component values is safe only when writers touch disjoint
// entities, and Set/Remove must not race with any other access.
type PtrComponentStore[T any] struct {
	name string
	data map[EntityID]*T
}

func NewPtrComponentStore[T any](name string) *PtrComponentStore[T] {
	return &PtrComponentStore[T]{
		name: name,
		data: make(map[EntityID]*T, 64),
	}
}

func (s *PtrComponentStore[T]) Name() string { return s.name }

func (s *PtrComponentStore[T]) Set(id EntityID, c *T) {
	s.data[id] = c
}

func (s *PtrComponentStore[T]) Get(id EntityID) (*T, bool) {
	c, ok := s.data[id]
	return c, ok
}

func (s *PtrComponentStore[T]) Remove(id EntityID) {
	delete(s.data, id)
}

func (s *PtrComponentStore[T]) Has(id EntityID) bool {
	_, ok := s.data[id]
	return ok
}

func (s *PtrComponentStore[T]) Len() int {
	return len(s.data)
}

func (s *PtrComponentStore[T]) Each(fn func(EntityID, *T)) {
	for id, c := range s.data {
		fn(id, c)
	}
}

// First returns any one entry, used for singleton components.
func (s *PtrComponentStore[T]) First() (EntityID, *T, bool) {
	for id, c := range s.data {
		return id, c, true
	}
	return Null, nil, false
}
