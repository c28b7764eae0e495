package input

// Key identifies a keyboard key the controls react to.
type Key int

const (
	KeyW Key = iota
	KeyA
	KeyS
	KeyD
	KeySpace
	KeyLeftControl
	KeyRightControl
	KeyLeftShift
	KeyRightShift
	KeyT
	KeyEscape
	KeyB
	KeyF1
)

// Button identifies a mouse button.
type Button int

const (
	MouseLeft Button = iota
	MouseRight
)

// Source is the window-side input state sampled once per frame.
type Source interface {
	KeyDown(k Key) bool
	MouseDown(b Button) bool
	CursorPos() (x, y float64)
	WindowSize() (width, height int)
	SetCursorCaptured(captured bool)
}
