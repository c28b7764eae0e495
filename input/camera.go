package input

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// MaxPitch bounds the camera pitch in degrees.
const MaxPitch = 89.0

// Camera is a free-fly camera driven by yaw and pitch in degrees.
type Camera struct {
	Position mgl32.Vec3
	Front    mgl32.Vec3
	Up       mgl32.Vec3

	Yaw   float32
	Pitch float32

	Fov         float32
	Near        float32
	Far         float32
	Speed       float32
	Sensitivity float32
}

// NewCamera returns the camera in its start pose, five units in front of
// the origin looking down -Z.
func NewCamera() *Camera {
	return &Camera{
		Position:    mgl32.Vec3{0, 0, 5},
		Front:       mgl32.Vec3{0, 0, -1},
		Up:          mgl32.Vec3{0, 1, 0},
		Yaw:         -90,
		Pitch:       0,
		Fov:         70,
		Near:        0.1,
		Far:         1000,
		Speed:       0.5,
		Sensitivity: 0.1,
	}
}

// View returns the look-at matrix for the current pose.
func (c *Camera) View() mgl32.Mat4 {
	return mgl32.LookAtV(c.Position, c.Position.Add(c.Front), c.Up)
}

// Projection returns the perspective matrix for the given aspect ratio.
func (c *Camera) Projection(aspect float32) mgl32.Mat4 {
	return mgl32.Perspective(mgl32.DegToRad(c.Fov), aspect, c.Near, c.Far)
}

// Right is the unit vector to the camera's right.
func (c *Camera) Right() mgl32.Vec3 {
	return c.Front.Cross(c.Up).Normalize()
}

// Look turns the camera by a cursor offset in pixels. dy is positive when
// the cursor moves up.
func (c *Camera) Look(dx, dy float32) {
	c.Yaw += dx * c.Sensitivity
	c.Pitch += dy * c.Sensitivity
	c.Pitch = mgl32.Clamp(c.Pitch, -MaxPitch, MaxPitch)

	yaw := float64(mgl32.DegToRad(c.Yaw))
	pitch := float64(mgl32.DegToRad(c.Pitch))
	c.Front = mgl32.Vec3{
		float32(math.Cos(yaw) * math.Cos(pitch)),
		float32(math.Sin(pitch)),
		float32(math.Sin(yaw) * math.Cos(pitch)),
	}.Normalize()
}

// Move translates the camera along dir scaled by the current speed.
func (c *Camera) Move(dir mgl32.Vec3, boost bool) {
	speed := c.Speed
	if boost {
		speed *= 2
	}
	c.Position = c.Position.Add(dir.Mul(speed))
}
