package component

// WindowState mirrors the window for systems. Running false ends the engine
// loop after the current tick.
type WindowState struct {
	Running         bool
	ViewportChanged bool
	Width           int
	Height          int
}
