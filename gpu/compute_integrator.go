package gpu

import (
	"github.com/go-gl/gl/v4.3-core/gl"
	"go.uber.org/zap"

	"particlesim/core"
	"particlesim/physics"
)

// ComputeIntegrator runs the integrator compute shader over the particle
// buffers, one invocation per particle.
type ComputeIntegrator struct {
	program uint32
	buffers *ParticleBuffers
	groups  uint32

	dtLoc           int32
	pointOfMassLoc  int32
	isActiveLoc     int32
	isRunningLoc    int32
	numParticlesLoc int32
}

// NewComputeIntegrator takes ownership of a linked integrator program.
func NewComputeIntegrator(program uint32, buffers *ParticleBuffers, log *zap.Logger) *ComputeIntegrator {
	c := &ComputeIntegrator{
		program:         program,
		buffers:         buffers,
		groups:          uint32(physics.WorkGroups(buffers.Count(), core.WorkGroupSize)),
		dtLoc:           gl.GetUniformLocation(program, gl.Str("dt\x00")),
		pointOfMassLoc:  gl.GetUniformLocation(program, gl.Str("pointOfMass\x00")),
		isActiveLoc:     gl.GetUniformLocation(program, gl.Str("isActive\x00")),
		isRunningLoc:    gl.GetUniformLocation(program, gl.Str("isRunning\x00")),
		numParticlesLoc: gl.GetUniformLocation(program, gl.Str("numParticles\x00")),
	}

	log.Info("Compute integrator ready",
		zap.Uint32("workGroups", c.groups),
		zap.Int("workGroupSize", core.WorkGroupSize),
		zap.Int("idleInvocations", int(c.groups)*core.WorkGroupSize-buffers.Count()))

	return c
}

// Name implements Integrator.
func (c *ComputeIntegrator) Name() string { return "gpu" }

// Dispatch uploads the frame uniforms and launches the compute work.
func (c *ComputeIntegrator) Dispatch(frame core.FrameState) error {
	gl.UseProgram(c.program)

	gl.Uniform1f(c.dtLoc, frame.DeltaTime)
	gl.Uniform3fv(c.pointOfMassLoc, 1, &frame.Attractor[0])
	gl.Uniform1f(c.isActiveLoc, core.Gate(frame.Active))
	gl.Uniform1f(c.isRunningLoc, core.Gate(frame.Running))
	gl.Uniform1ui(c.numParticlesLoc, uint32(c.buffers.Count()))

	c.buffers.BindCompute()
	if c.groups > 0 {
		gl.DispatchCompute(c.groups, 1, 1)
	}
	return nil
}

// Barrier makes the dispatch writes visible to vertex fetch and to the
// persistent mapping.
func (c *ComputeIntegrator) Barrier() {
	gl.MemoryBarrier(c.buffers.BarrierBits())
	c.buffers.Sync()
}

// Release deletes the compute program.
func (c *ComputeIntegrator) Release() {
	if c.program != 0 {
		gl.DeleteProgram(c.program)
		c.program = 0
	}
}
