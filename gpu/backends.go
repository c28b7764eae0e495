package gpu

import (
	"fmt"

	"go.uber.org/zap"

	"particlesim/core"
)

// Backends switches between the device integrator and the host integrator
// at runtime. Leaving the device path reads the current device state back
// into the host store first, so the simulation continues where it was.
type Backends struct {
	device Integrator
	host   Integrator
	active Integrator

	store   *core.ParticleStore
	buffers mappedStore
	log     *zap.Logger
}

// NewBackends creates a switcher starting on the named backend ("gpu" or
// "cpu"). store must be the host integrator's store.
func NewBackends(initial string, device, host Integrator, store *core.ParticleStore, buffers *ParticleBuffers, log *zap.Logger) (*Backends, error) {
	return newBackends(initial, device, host, store, buffers, log)
}

func newBackends(initial string, device, host Integrator, store *core.ParticleStore, buffers mappedStore, log *zap.Logger) (*Backends, error) {
	b := &Backends{
		device:  device,
		host:    host,
		store:   store,
		buffers: buffers,
		log:     log,
	}
	switch initial {
	case device.Name():
		b.active = device
	case host.Name():
		b.active = host
	default:
		return nil, fmt.Errorf("unknown backend %q", initial)
	}
	return b, nil
}

// Name returns the active backend name.
func (b *Backends) Name() string { return b.active.Name() }

// Dispatch implements Integrator.
func (b *Backends) Dispatch(frame core.FrameState) error {
	return b.active.Dispatch(frame)
}

// Barrier implements Integrator.
func (b *Backends) Barrier() {
	b.active.Barrier()
}

// Toggle switches to the other backend.
func (b *Backends) Toggle() error {
	if b.active == b.device {
		if err := b.buffers.ReadBack(b.store); err != nil {
			return fmt.Errorf("switch to %s: %w", b.host.Name(), err)
		}
		b.active = b.host
	} else {
		b.active = b.device
	}

	b.log.Info("Integrator backend switched", zap.String("backend", b.active.Name()))
	return nil
}
