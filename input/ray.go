package input

import "github.com/go-gl/mathgl/mgl32"

// AttractorFromCursor casts a ray from the camera through the cursor
// position (window pixels, origin top-left) and returns the point dist
// units along it.
func AttractorFromCursor(x, y float64, width, height int, view, proj mgl32.Mat4, camPos mgl32.Vec3, dist float32) mgl32.Vec3 {
	if width <= 0 || height <= 0 {
		return camPos
	}

	ndcX := float32(2*x/float64(width) - 1)
	ndcY := float32(1 - 2*y/float64(height))

	clip := mgl32.Vec4{ndcX, ndcY, -1, 1}
	eye := proj.Inv().Mul4x1(clip)
	eye = mgl32.Vec4{eye.X(), eye.Y(), -1, 0}

	world := view.Inv().Mul4x1(eye).Vec3().Normalize()
	return camPos.Add(world.Mul(dist))
}
