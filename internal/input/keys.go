package input

// Key is a device-independent key code.
type Key int

const (
	KeyUnknown Key = iota
	KeyW
	KeyA
	KeyS
	KeyD
	KeyQ
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeySpace
	KeyEnter
	KeyEscape
)

var keyNames = map[Key]string{
	KeyW: "W", KeyA: "A", KeyS: "S", KeyD: "D", KeyQ: "Q",
	KeyUp: "Up", KeyDown: "Down", KeyLeft: "Left", KeyRight: "Right",
	KeySpace: "Space", KeyEnter: "Enter", KeyEscape: "Escape",
}

func (k Key) String() string {
	if n, ok := keyNames[k]; ok {
		return n
	}
	return "Unknown"
}

// Button is a mouse button.
type Button int

const (
	ButtonLeft Button = iota + 1
	ButtonMiddle
	ButtonRight
)
