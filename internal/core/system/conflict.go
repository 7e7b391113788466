package system

import "sort"

// Conflict names two systems of one Running band that both write the same
// component kinds.
type Conflict struct {
	Band       Priority
	A, B       string
	Components []string
}

// Conflicts checks every Running band for overlapping write sets. Systems
// that do not implement WriteSetter are not checked. Serial systems are
// checked too: they still overlap with the band's Parallel systems.
func (s *Scheduler) Conflicts() []Conflict {
	var out []Conflict
	for _, band := range s.Bands(PhaseRunning) {
		sets := make([]map[string]bool, len(band.Systems))
		for i, r := range band.Systems {
			ws, ok := r.System.(WriteSetter)
			if !ok {
				continue
			}
			sets[i] = make(map[string]bool)
			for _, c := range ws.WriteSet() {
				sets[i][c] = true
			}
		}
		for i := 0; i < len(sets); i++ {
			for j := i + 1; j < len(sets); j++ {
				if sets[i] == nil || sets[j] == nil {
					continue
				}
				if band.Systems[i].Mode == Serial && band.Systems[j].Mode == Serial {
					continue // serial systems of a band never overlap in time
				}
				var common []string
				for c := range sets[i] {
					if sets[j][c] {
						common = append(common, c)
					}
				}
				if len(common) == 0 {
					continue
				}
				sort.Strings(common)
				out = append(out, Conflict{
					Band:       band.Priority,
					A:          band.Systems[i].System.Name(),
					B:          band.Systems[j].System.Name(),
					Components: common,
				})
			}
		}
	}
	return out
}
