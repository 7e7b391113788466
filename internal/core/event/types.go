package event

// Window events, emitted by the window pump and consumed on the engine goroutine.

// Resized reports a new viewport size in cells or pixels.
type Resized struct {
	Width  int
	Height int
}

// CloseRequested reports that the user asked the window to close.
type CloseRequested struct{}
