package opengl

import (
	"github.com/go-gl/glfw/v3.3/glfw"

	"particlesim/input"
)

var keyMap = map[input.Key]glfw.Key{
	input.KeyW:            glfw.KeyW,
	input.KeyA:            glfw.KeyA,
	input.KeyS:            glfw.KeyS,
	input.KeyD:            glfw.KeyD,
	input.KeySpace:        glfw.KeySpace,
	input.KeyLeftControl:  glfw.KeyLeftControl,
	input.KeyRightControl: glfw.KeyRightControl,
	input.KeyLeftShift:    glfw.KeyLeftShift,
	input.KeyRightShift:   glfw.KeyRightShift,
	input.KeyT:            glfw.KeyT,
	input.KeyEscape:       glfw.KeyEscape,
	input.KeyB:            glfw.KeyB,
	input.KeyF1:           glfw.KeyF1,
}

var buttonMap = map[input.Button]glfw.MouseButton{
	input.MouseLeft:  glfw.MouseButtonLeft,
	input.MouseRight: glfw.MouseButtonRight,
}

// GLFWInput reads input state from the renderer's window.
type GLFWInput struct {
	renderer *ParticleRenderer
}

// NewGLFWInput polls the renderer's window and forwards cursor movement to
// ctx.
func NewGLFWInput(r *ParticleRenderer, ctx *input.Context) *GLFWInput {
	r.window.SetCursorPosCallback(func(w *glfw.Window, xpos, ypos float64) {
		ctx.OnCursor(xpos, ypos)
	})
	return &GLFWInput{renderer: r}
}

func (in *GLFWInput) KeyDown(k input.Key) bool {
	key, ok := keyMap[k]
	return ok && in.renderer.window.GetKey(key) == glfw.Press
}

func (in *GLFWInput) MouseDown(b input.Button) bool {
	button, ok := buttonMap[b]
	return ok && in.renderer.window.GetMouseButton(button) == glfw.Press
}

func (in *GLFWInput) CursorPos() (float64, float64) {
	return in.renderer.window.GetCursorPos()
}

func (in *GLFWInput) WindowSize() (int, int) {
	return in.renderer.Size()
}

func (in *GLFWInput) SetCursorCaptured(captured bool) {
	in.renderer.SetCursorCaptured(captured)
}
