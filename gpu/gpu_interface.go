package gpu

import "particlesim/core"

// Integrator advances the particle buffers by one frame. Dispatch starts
// the work; Barrier must be called before anything reads the buffers as
// vertex data.
type Integrator interface {
	Name() string
	Dispatch(frame core.FrameState) error
	Barrier()
}

// mappedStore is the part of ParticleBuffers the host-side paths need.
type mappedStore interface {
	WaitIdle() error
	ReadBack(dst *core.ParticleStore) error
	WriteFrom(src *core.ParticleStore) error
	ClientBarrier()
	Sync()
}
