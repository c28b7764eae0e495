package physics

import (
	"math"
	"math/rand"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"particlesim/core"
)

const tolerance = 1e-5

func TestForceScale(t *testing.T) {
	eps2 := Epsilon * Epsilon

	assert.Equal(t, AttractorMass/eps2, ForceScale(0), "distance zero is clamped to epsilon")
	assert.Equal(t, AttractorMass/eps2, ForceScale(eps2/2))
	assert.InDelta(t, 176.0/4.0, ForceScale(4), tolerance)
}

func TestAcceleration(t *testing.T) {
	tests := []struct {
		name     string
		distance float32
	}{
		{name: "unit distance", distance: 1},
		{name: "near", distance: 0.1},
		{name: "far", distance: 1000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pos := mgl32.Vec3{tt.distance, 0, 0}
			acc := Acceleration(pos, mgl32.Vec3{}, true, true)

			want := tt.distance * 176 / max(tt.distance*tt.distance, Epsilon*Epsilon)
			assert.InEpsilon(t, want, acc.Len(), 1e-4)
			assert.Less(t, acc.X(), float32(0), "points toward the attractor")
		})
	}

	t.Run("at the attractor", func(t *testing.T) {
		acc := Acceleration(mgl32.Vec3{2, 3, 4}, mgl32.Vec3{2, 3, 4}, true, true)
		assert.Equal(t, mgl32.Vec3{}, acc)
	})

	t.Run("vanishes with distance", func(t *testing.T) {
		near := Acceleration(mgl32.Vec3{100, 0, 0}, mgl32.Vec3{}, true, true).Len()
		far := Acceleration(mgl32.Vec3{1e5, 0, 0}, mgl32.Vec3{}, true, true).Len()
		assert.Less(t, far, near)
		assert.Less(t, far, float32(0.01))
	})

	t.Run("gated", func(t *testing.T) {
		pos := mgl32.Vec3{1, 2, 3}
		assert.Equal(t, mgl32.Vec3{}, Acceleration(pos, mgl32.Vec3{}, false, true))
		assert.Equal(t, mgl32.Vec3{}, Acceleration(pos, mgl32.Vec3{}, true, false))
		assert.Equal(t, mgl32.Vec3{}, Acceleration(pos, mgl32.Vec3{}, false, false))
	})
}

func TestDragFactor(t *testing.T) {
	assert.Equal(t, float32(1), DragFactor(0.016, false))
	assert.Equal(t, float32(1), DragFactor(0, true))

	want := float32(math.Exp(math.Log(0.998) * 176 * 0.016))
	assert.InDelta(t, want, DragFactor(0.016, true), tolerance)
	assert.Less(t, DragFactor(0.016, true), float32(1))
}

func TestSpeedColor(t *testing.T) {
	tests := []struct {
		name  string
		speed float32
		want  mgl32.Vec4
	}{
		{name: "at rest", speed: 0, want: mgl32.Vec4{0, 0.2, 0.7, 1}},
		{name: "green floor", speed: 1, want: mgl32.Vec4{0.045, 0.2, 0.655, 1}},
		{name: "mid", speed: 10, want: mgl32.Vec4{0.45, 0.8, 0.25, 1}},
		{name: "saturated", speed: 50, want: mgl32.Vec4{1, 1, 0, 1}},
		{name: "blue reaches zero", speed: 0.7 / 0.045, want: mgl32.Vec4{0.7, 1, 0, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SpeedColor(tt.speed)
			for k := 0; k < 4; k++ {
				assert.InDelta(t, tt.want[k], got[k], tolerance, "channel %d", k)
			}
		})
	}
}

func TestStepPausedKeepsPosition(t *testing.T) {
	p := Particle{
		Position: mgl32.Vec4{0.3, -0.2, 0.9, 1},
		Velocity: mgl32.Vec4{4, 5, 6, 0},
	}
	u := Uniforms{DeltaTime: 0.016, Attractor: mgl32.Vec3{5, 5, 5}, Active: true, Running: false}

	next := Step(p, u)
	assert.Equal(t, p.Position, next.Position)
	assert.Equal(t, p.Velocity, next.Velocity, "no drag and no acceleration while paused")
}

func TestStepInactiveOnlyDrag(t *testing.T) {
	p := Particle{
		Position: mgl32.Vec4{0.5, 0.5, 0.5, 1},
		Velocity: mgl32.Vec4{1, -2, 0.5, 0},
	}
	dt := float32(0.016)
	u := Uniforms{DeltaTime: dt, Attractor: mgl32.Vec3{}, Active: false, Running: true}

	decay := float32(math.Exp(math.Log(0.998) * 176 * float64(dt)))
	wantVel := p.Velocity.Vec3().Mul(decay)
	wantPos := p.Position.Vec3().Add(wantVel.Mul(dt))

	next := Step(p, u)
	for k := 0; k < 3; k++ {
		assert.InDelta(t, wantVel[k], next.Velocity[k], tolerance)
		assert.InDelta(t, wantPos[k], next.Position[k], tolerance)
	}
}

func TestStepZeroDeltaTime(t *testing.T) {
	store, err := core.NewParticleStore(512, rand.New(rand.NewSource(11)))
	require.NoError(t, err)

	for _, flags := range [][2]bool{{true, true}, {false, true}, {true, false}, {false, false}} {
		u := Uniforms{DeltaTime: 0, Attractor: mgl32.Vec3{0.1, 0.2, 0.3}, Active: flags[0], Running: flags[1]}
		for i := 0; i < store.Len(); i++ {
			p := Particle{Position: store.Positions[i], Velocity: store.Velocities[i]}
			next := Step(p, u)
			assert.Equal(t, p.Position, next.Position)
			assert.Equal(t, p.Velocity, next.Velocity)
		}
	}
}

func TestStepColorFromNewVelocity(t *testing.T) {
	p := Particle{Position: mgl32.Vec4{0, 0, 0, 1}, Velocity: mgl32.Vec4{30, 40, 0, 0}}
	next := Step(p, Uniforms{DeltaTime: 0.01, Running: true})
	assert.Equal(t, SpeedColor(next.Velocity.Vec3().Len()), next.Color)
	assert.Equal(t, float32(1), next.Position[3])
	assert.Equal(t, float32(0), next.Velocity[3])
}

func TestStepAttractsRadially(t *testing.T) {
	starts := []mgl32.Vec4{
		{1, 0, 0, 1},
		{0, 1, 0, 1},
		{0, 0, 1, 1},
		{-1, 0, 0, 1},
	}
	u := Uniforms{DeltaTime: 0.016, Attractor: mgl32.Vec3{}, Active: true, Running: true}

	for _, start := range starts {
		next := Step(Particle{Position: start}, u)

		before := start.Vec3()
		after := next.Position.Vec3()
		assert.Less(t, after.Len(), before.Len(), "moved closer to the origin")
		assert.Greater(t, after.Dot(before), float32(0), "did not overshoot")
		assert.InDelta(t, 0, after.Cross(before).Len(), tolerance, "stayed on the radial line")
	}
}

func TestWorkGroups(t *testing.T) {
	assert.Equal(t, 0, WorkGroups(0, 256))
	assert.Equal(t, 1, WorkGroups(1, 256))
	assert.Equal(t, 1, WorkGroups(256, 256))
	assert.Equal(t, 2, WorkGroups(257, 256))
	assert.Equal(t, 3907, WorkGroups(1_000_000, 256))
	assert.Equal(t, 0, WorkGroups(10, 0))
}
