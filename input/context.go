package input

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Defaults for the toggle debounce and the attractor placement.
const (
	DefaultDebounce          = 0.2
	DefaultAttractorDistance = 25
)

// Sample is what one frame of input produced.
type Sample struct {
	Attractor mgl32.Vec3
	Active    bool
	Running   bool

	// Edge-triggered requests, true only on the frame they fire.
	PauseToggled  bool
	CursorToggled bool
	ToggleBackend bool
	ToggleOverlay bool
}

// Context owns the camera and every piece of state that survives between
// frames: toggles, their debounce timestamps and cursor tracking.
type Context struct {
	Camera *Camera

	Running        bool
	CursorCaptured bool

	// Debounce is the minimum time in seconds between two toggles of the
	// same key.
	Debounce          float64
	AttractorDistance float32

	lastPauseToggle   float64
	lastCursorToggle  float64
	lastBackendToggle float64
	lastOverlayToggle float64

	firstMouse bool
	lastX      float64
	lastY      float64

	attractor mgl32.Vec3
}

// NewContext returns a running context with a free cursor.
func NewContext(camera *Camera) *Context {
	return &Context{
		Camera:            camera,
		Running:           true,
		Debounce:          DefaultDebounce,
		AttractorDistance: DefaultAttractorDistance,
		firstMouse:        true,
	}
}

// debounced reports whether a toggle held at now may fire, and records it.
func (c *Context) debounced(last *float64, now float64) bool {
	if now-*last <= c.Debounce {
		return false
	}
	*last = now
	return true
}

// Process samples src for one frame. view and proj are the matrices the
// frame renders with; the attractor ray is cast through them.
func (c *Context) Process(src Source, now float64, view, proj mgl32.Mat4) Sample {
	var s Sample

	if src.KeyDown(KeyEscape) && c.debounced(&c.lastCursorToggle, now) {
		c.CursorCaptured = !c.CursorCaptured
		c.firstMouse = true
		src.SetCursorCaptured(c.CursorCaptured)
		s.CursorToggled = true
	}

	boost := src.KeyDown(KeyLeftShift) || src.KeyDown(KeyRightShift)
	cam := c.Camera
	forward := src.KeyDown(KeyW)
	if forward {
		cam.Move(cam.Front, boost)
	}
	if src.KeyDown(KeyS) {
		cam.Move(cam.Front.Mul(-1), boost)
	}
	if src.KeyDown(KeyA) {
		cam.Move(cam.Right().Mul(-1), boost)
	}
	if src.KeyDown(KeyD) {
		cam.Move(cam.Right(), boost)
	}
	if src.KeyDown(KeySpace) {
		cam.Move(cam.Up, boost)
	}
	if (src.KeyDown(KeyLeftControl) || src.KeyDown(KeyRightControl)) && !forward {
		cam.Move(cam.Up.Mul(-1), boost)
	}

	if src.KeyDown(KeyT) && c.debounced(&c.lastPauseToggle, now) {
		c.Running = !c.Running
		s.PauseToggled = true
	}
	if src.KeyDown(KeyB) && c.debounced(&c.lastBackendToggle, now) {
		s.ToggleBackend = true
	}
	if src.KeyDown(KeyF1) && c.debounced(&c.lastOverlayToggle, now) {
		s.ToggleOverlay = true
	}

	if src.MouseDown(MouseLeft) {
		x, y := src.CursorPos()
		w, h := src.WindowSize()
		c.attractor = AttractorFromCursor(x, y, w, h, view, proj, cam.Position, c.AttractorDistance)
		s.Active = true
	}

	s.Attractor = c.attractor
	s.Running = c.Running
	return s
}

// OnCursor handles a cursor move event. The camera only turns while the
// cursor is captured by the window.
func (c *Context) OnCursor(x, y float64) {
	if !c.CursorCaptured {
		return
	}
	if c.firstMouse {
		c.lastX, c.lastY = x, y
		c.firstMouse = false
	}

	dx := x - c.lastX
	dy := c.lastY - y
	c.lastX, c.lastY = x, y

	c.Camera.Look(float32(dx), float32(dy))
}

// Controller binds a context to the window it samples.
type Controller struct {
	ctx *Context
	src Source
}

// NewController returns a controller sampling src into ctx.
func NewController(ctx *Context, src Source) *Controller {
	return &Controller{ctx: ctx, src: src}
}

// Context returns the bound context.
func (c *Controller) Context() *Context {
	return c.ctx
}

// Matrices returns the view and projection for the current camera pose.
func (c *Controller) Matrices(aspect float32) (view, proj mgl32.Mat4) {
	return c.ctx.Camera.View(), c.ctx.Camera.Projection(aspect)
}

// Process samples the bound source.
func (c *Controller) Process(now float64, view, proj mgl32.Mat4) Sample {
	return c.ctx.Process(c.src, now, view, proj)
}
