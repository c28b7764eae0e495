package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"particlesim/core"
)

// Integrator constants. The attractor mass doubles as the drag scale; the
// compute shader in rendering/opengl/shaders must use the same values.
const (
	Epsilon       float32 = 0.001
	G             float32 = 1.0
	ParticleMass  float32 = 1.0
	AttractorMass float32 = 176.0
)

// DragCoefficient is ln(0.998) * 176. Velocity decays by exp(k*dt) per step.
var DragCoefficient = float32(math.Log(0.998) * 176.0)

// Speed-to-color heat map coefficients.
const (
	redPerSpeed   float32 = 0.045
	greenPerSpeed float32 = 0.08
	greenFloor    float32 = 0.2
	blueBase      float32 = 0.7
)

// Uniforms are the values shared by every invocation of one step.
type Uniforms struct {
	DeltaTime float32
	Attractor mgl32.Vec3
	Active    bool
	Running   bool
}

// UniformsFromFrame extracts the integrator inputs from a frame.
func UniformsFromFrame(f core.FrameState) Uniforms {
	return Uniforms{
		DeltaTime: f.DeltaTime,
		Attractor: f.Attractor,
		Active:    f.Active,
		Running:   f.Running,
	}
}

// Particle is one element of the store, as seen by a single invocation.
type Particle struct {
	Position mgl32.Vec4
	Velocity mgl32.Vec4
	Color    mgl32.Vec4
}

// ForceScale is G*m1*m2 / max(r^2, eps^2). Multiplying the unnormalized
// vector toward the attractor by it gives the force.
func ForceScale(rSquared float32) float32 {
	return G * (ParticleMass * AttractorMass) / max(rSquared, Epsilon*Epsilon)
}

// Acceleration toward the attractor. Zero unless both running and active;
// the flags gate by multiplication so there is no per-particle branch.
func Acceleration(position, attractor mgl32.Vec3, active, running bool) mgl32.Vec3 {
	toMass := attractor.Sub(position)
	force := toMass.Mul(ForceScale(toMass.Dot(toMass)))
	return force.Mul(core.Gate(running) * core.Gate(active) / ParticleMass)
}

// DragFactor is mix(1, exp(k*dt), running).
func DragFactor(dt float32, running bool) float32 {
	r := core.Gate(running)
	decay := float32(math.Exp(float64(DragCoefficient * dt)))
	return 1*(1-r) + decay*r
}

// SpeedColor maps a speed to the display color. Red rises with speed,
// green has a floor of 0.2, blue falls with speed and stops at 0.
func SpeedColor(speed float32) mgl32.Vec4 {
	red := mgl32.Clamp(speed*redPerSpeed, 0, 1)
	green := mgl32.Clamp(speed*greenPerSpeed, greenFloor, 1)
	blue := max(blueBase-red, 0)
	return mgl32.Vec4{red, green, blue, 1}
}

// Step advances one particle by dt. It is the host-side twin of the
// integrator compute shader:
//
//	v *= mix(1, exp(k*dt), running)
//	x += (dt*v + 0.5*a*dt^2) * running
//	v += a*dt
func Step(p Particle, u Uniforms) Particle {
	position := p.Position.Vec3()
	velocity := p.Velocity.Vec3()
	dt := u.DeltaTime
	running := core.Gate(u.Running)

	acceleration := Acceleration(position, u.Attractor, u.Active, u.Running)

	velocity = velocity.Mul(DragFactor(dt, u.Running))
	position = position.Add(velocity.Mul(dt).Add(acceleration.Mul(0.5 * dt * dt)).Mul(running))
	velocity = velocity.Add(acceleration.Mul(dt))

	return Particle{
		Position: position.Vec4(1),
		Velocity: velocity.Vec4(0),
		Color:    SpeedColor(velocity.Len()),
	}
}

// WorkGroups returns how many groups of size are needed to cover n items.
func WorkGroups(n, size int) int {
	if n <= 0 || size <= 0 {
		return 0
	}
	return (n + size - 1) / size
}
