package gpu

import (
	"fmt"

	"particlesim/core"
	"particlesim/physics"
)

// HostIntegrator steps a host copy of the particles on the CPU and
// publishes the result through the persistent mapping, so the renderer
// draws it from the same buffers the compute path uses.
type HostIntegrator struct {
	store   *core.ParticleStore
	buffers mappedStore
	cpu     *physics.CPUIntegrator
}

// NewHostIntegrator creates a CPU backend over store.
func NewHostIntegrator(store *core.ParticleStore, buffers *ParticleBuffers, cpu *physics.CPUIntegrator) *HostIntegrator {
	return &HostIntegrator{store: store, buffers: buffers, cpu: cpu}
}

// Name implements Integrator.
func (h *HostIntegrator) Name() string { return "cpu" }

// Store returns the host copy the integrator works on.
func (h *HostIntegrator) Store() *core.ParticleStore {
	return h.store
}

// Dispatch steps the host store and writes it to the device buffers once
// the device has finished with them.
func (h *HostIntegrator) Dispatch(frame core.FrameState) error {
	if err := h.cpu.Step(h.store, physics.UniformsFromFrame(frame)); err != nil {
		return fmt.Errorf("cpu step: %w", err)
	}
	if err := h.buffers.WaitIdle(); err != nil {
		return fmt.Errorf("cpu publish: %w", err)
	}
	return h.buffers.WriteFrom(h.store)
}

// Barrier implements Integrator. In copy mode the published storage is
// also copied into the vertex buffers.
func (h *HostIntegrator) Barrier() {
	h.buffers.ClientBarrier()
	h.buffers.Sync()
}
