package component

// Clock holds frame timing in seconds. Written once per tick by the time
// system, read by everything that integrates over time.
type Clock struct {
	DT        float64
	LastFrame float64
}
