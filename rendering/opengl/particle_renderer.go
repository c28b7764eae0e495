package opengl

import (
	"fmt"
	"slices"

	"github.com/go-gl/gl/v4.3-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"particlesim/config"
	"particlesim/gpu"
	"particlesim/rendering/opengl/overlay"
	"particlesim/rendering/opengl/shaders"
	"particlesim/simulation"
)

// ParticleRenderer owns the window and GL context and draws the particle
// buffers as points. It must be used from the thread that created it.
type ParticleRenderer struct {
	window *glfw.Window
	logger *zap.Logger

	program  uint32
	modelLoc int32
	viewLoc  int32
	projLoc  int32

	buffers *gpu.ParticleBuffers
	overlay *overlay.TextOverlay

	width, height int
}

// NewParticleRenderer opens the window and creates a GL 4.3 core context.
func NewParticleRenderer(cfg config.WindowSettings, logger *zap.Logger) (*ParticleRenderer, error) {
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize GLFW: %w", err)
	}

	glfw.WindowHint(glfw.Resizable, glfw.True)
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 3)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)

	window, err := glfw.CreateWindow(cfg.Width, cfg.Height, cfg.Title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("failed to create window: %w", err)
	}
	window.MakeContextCurrent()

	if cfg.VSync {
		glfw.SwapInterval(1)
	} else {
		glfw.SwapInterval(0)
	}

	if err := gl.Init(); err != nil {
		window.Destroy()
		glfw.Terminate()
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	logger.Info("OpenGL context ready",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
		zap.Bool("vsync", cfg.VSync))

	r := &ParticleRenderer{
		window: window,
		logger: logger,
	}
	r.width, r.height = window.GetSize()

	program, err := shaders.CreateParticleProgram()
	if err != nil {
		r.Terminate()
		return nil, err
	}
	r.program = program
	r.modelLoc = gl.GetUniformLocation(program, gl.Str("model\x00"))
	r.viewLoc = gl.GetUniformLocation(program, gl.Str("view\x00"))
	r.projLoc = gl.GetUniformLocation(program, gl.Str("projection\x00"))

	r.overlay, err = overlay.NewTextOverlay(r.width, r.height)
	if err != nil {
		r.Terminate()
		return nil, err
	}

	gl.Enable(gl.PROGRAM_POINT_SIZE)
	gl.Enable(gl.DEPTH_TEST)
	gl.Enable(gl.BLEND)
	gl.ClearColor(0, 0, 0, 1)

	fbWidth, fbHeight := window.GetFramebufferSize()
	gl.Viewport(0, 0, int32(fbWidth), int32(fbHeight))

	window.SetFramebufferSizeCallback(func(w *glfw.Window, width, height int) {
		gl.Viewport(0, 0, int32(width), int32(height))
	})
	window.SetSizeCallback(func(w *glfw.Window, width, height int) {
		r.onResize(width, height)
	})

	return r, nil
}

// Window returns the GLFW window.
func (r *ParticleRenderer) Window() *glfw.Window {
	return r.window
}

// AttachBuffers sets the particle buffers drawn by Draw.
func (r *ParticleRenderer) AttachBuffers(buffers *gpu.ParticleBuffers) {
	r.buffers = buffers
}

func (r *ParticleRenderer) onResize(width, height int) {
	r.width = width
	r.height = height
	r.overlay.UpdateSize(width, height)
	r.logger.Debug("Window resized", zap.Int("width", width), zap.Int("height", height))
}

// Size returns the window size in screen coordinates.
func (r *ParticleRenderer) Size() (int, int) {
	return r.width, r.height
}

// Aspect returns width over height, or 1 for a minimized window.
func (r *ParticleRenderer) Aspect() float32 {
	if r.width <= 0 || r.height <= 0 {
		return 1
	}
	return float32(r.width) / float32(r.height)
}

// Time returns seconds since GLFW was initialized.
func (r *ParticleRenderer) Time() float64 {
	return glfw.GetTime()
}

// Clear clears color and depth.
func (r *ParticleRenderer) Clear() {
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

// Draw renders every particle as a point.
func (r *ParticleRenderer) Draw(view, proj mgl32.Mat4) {
	if r.buffers == nil || r.buffers.Count() == 0 {
		return
	}

	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	gl.UseProgram(r.program)

	model := mgl32.Ident4()
	gl.UniformMatrix4fv(r.modelLoc, 1, false, &model[0])
	gl.UniformMatrix4fv(r.viewLoc, 1, false, &view[0])
	gl.UniformMatrix4fv(r.projLoc, 1, false, &proj[0])

	r.buffers.BindVertex()
	gl.DrawArrays(gl.POINTS, 0, int32(r.buffers.Count()))
	r.buffers.UnbindVertex()
}

// DrawOverlay draws the instructions and the status line.
func (r *ParticleRenderer) DrawOverlay(stats simulation.Stats) {
	lines := append(slices.Clone(overlay.Instructions), stats.StatusLine())
	r.overlay.SetLines(lines)
	r.overlay.Render()
}

// SwapBuffers presents the frame.
func (r *ParticleRenderer) SwapBuffers() {
	r.window.SwapBuffers()
}

// PollEvents processes window events
func (r *ParticleRenderer) PollEvents() {
	glfw.PollEvents()
}

// ShouldClose returns true if the window should close
func (r *ParticleRenderer) ShouldClose() bool {
	return r.window.ShouldClose()
}

// SetCursorCaptured hides and locks the cursor to the window, or frees it.
func (r *ParticleRenderer) SetCursorCaptured(captured bool) {
	mode := glfw.CursorNormal
	if captured {
		mode = glfw.CursorDisabled
	}
	r.window.SetInputMode(glfw.CursorMode, mode)
}

// Terminate releases the program and overlay and closes the window. The
// particle buffers must be released before this.
func (r *ParticleRenderer) Terminate() {
	if r.overlay != nil {
		r.overlay.Release()
		r.overlay = nil
	}
	if r.program != 0 {
		gl.DeleteProgram(r.program)
		r.program = 0
	}
	r.window.Destroy()
	glfw.Terminate()
	r.logger.Info("Renderer terminated")
}
