package physics

import (
	"runtime"

	"golang.org/x/sync/errgroup"

	"particlesim/core"
)

// CPUIntegrator runs the integrator on the host. Work is split the way the
// GPU dispatch splits it: whole work groups of core.WorkGroupSize
// invocations, several groups per worker, with the last group padded past
// the particle count.
type CPUIntegrator struct {
	workers int
}

// NewCPUIntegrator creates a host integrator. workers <= 0 uses one worker
// per CPU.
func NewCPUIntegrator(workers int) *CPUIntegrator {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &CPUIntegrator{workers: workers}
}

// Workers returns the number of worker goroutines.
func (c *CPUIntegrator) Workers() int {
	return c.workers
}

// Invoke runs one invocation. Indices past the end of the store are a
// no-op and report false.
func (c *CPUIntegrator) Invoke(store *core.ParticleStore, id int, u Uniforms) bool {
	if id < 0 || id >= store.Len() {
		return false
	}

	next := Step(Particle{
		Position: store.Positions[id],
		Velocity: store.Velocities[id],
		Color:    store.Colors[id],
	}, u)

	store.Positions[id] = next.Position
	store.Velocities[id] = next.Velocity
	store.Colors[id] = next.Color
	return true
}

// Step advances every particle of the store by one frame.
func (c *CPUIntegrator) Step(store *core.ParticleStore, u Uniforms) error {
	if err := store.Validate(); err != nil {
		return err
	}

	groups := WorkGroups(store.Len(), core.WorkGroupSize)
	if groups == 0 {
		return nil
	}
	groupsPerWorker := WorkGroups(groups, c.workers)

	var g errgroup.Group
	g.SetLimit(c.workers)

	for first := 0; first < groups; first += groupsPerWorker {
		last := min(first+groupsPerWorker, groups)
		g.Go(func() error {
			for id := first * core.WorkGroupSize; id < last*core.WorkGroupSize; id++ {
				c.Invoke(store, id, u)
			}
			return nil
		})
	}

	return g.Wait()
}
