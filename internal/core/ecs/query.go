package ecs

// Each2 iterates over entities that have both component A and B.
// It walks the smaller store and probes the larger one.
func Each2[A, B any](sa *PtrComponentStore[A], sb *PtrComponentStore[B], fn func(EntityID, *A, *B)) {
	if sa.Len() <= sb.Len() {
		for id, a := range sa.data {
			if b, ok := sb.data[id]; ok {
				fn(id, a, b)
			}
		}
		return
	}
	for id, b := range sb.data {
		if a, ok := sa.data[id]; ok {
			fn(id, a, b)
		}
	}
}

// Each3 iterates over entities that have components A, B, and C.
func Each3[A, B, C any](sa *PtrComponentStore[A], sb *PtrComponentStore[B], sc *PtrComponentStore[C], fn func(EntityID, *A, *B, *C)) {
	if sc.Len() < sa.Len() && sc.Len() < sb.Len() {
		for id, c := range sc.data {
			a, okA := sa.data[id]
			b, okB := sb.data[id]
			if okA && okB {
				fn(id, a, b, c)
			}
		}
		return
	}
	Each2(sa, sb, func(id EntityID, a *A, b *B) {
		if c, ok := sc.data[id]; ok {
			fn(id, a, b, c)
		}
	})
}

// Count2 returns how many entities carry both A and B.
func Count2[A, B any](sa *PtrComponentStore[A], sb *PtrComponentStore[B]) int {
	n := 0
	Each2(sa, sb, func(EntityID, *A, *B) { n++ })
	return n
}
