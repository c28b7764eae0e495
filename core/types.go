package core

import "github.com/go-gl/mathgl/mgl32"

// Layout constants shared by the host code and the GLSL programs.
const (
	// WorkGroupSize is local_size_x of the integrator compute shader.
	WorkGroupSize = 256

	// Vec4Size is the std430 stride of one particle attribute.
	Vec4Size = 16

	// Vertex attribute slots read by the point shader.
	PositionAttrib = 0
	ColorAttrib    = 1

	// SSBO binding points used by the integrator.
	PositionBinding = 0
	VelocityBinding = 1
	ColorBinding    = 2
)

// FrameState holds the per-frame values handed from input sampling to the
// integrator and the renderer. It is rebuilt every frame.
type FrameState struct {
	DeltaTime  float32
	Attractor  mgl32.Vec3
	Active     bool
	Running    bool
	View       mgl32.Mat4
	Projection mgl32.Mat4
}

// Gate converts a flag to the 0/1 multiplier the integrator uses.
func Gate(b bool) float32 {
	if b {
		return 1
	}
	return 0
}
