package core

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/go-gl/mathgl/mgl32"
)

// ErrNegativeCount is returned when a store is requested with N < 0.
var ErrNegativeCount = errors.New("particle count must not be negative")

// Initial distribution bounds.
const (
	PositionExtent = 1.0
	VelocityExtent = 0.05
)

// ParticleStore holds per-particle attributes as three parallel arrays.
// A particle is identified only by its index.
type ParticleStore struct {
	Positions  []mgl32.Vec4
	Velocities []mgl32.Vec4
	Colors     []mgl32.Vec4
}

// NewParticleStore generates n particles with positions uniform in
// [-1,1]^3, velocities uniform in [-0.05,0.05]^3 and colors mapped from the
// position cube to the unit color cube.
func NewParticleStore(n int, rng *rand.Rand) (*ParticleStore, error) {
	if n < 0 {
		return nil, fmt.Errorf("new particle store (n=%d): %w", n, ErrNegativeCount)
	}

	s := &ParticleStore{
		Positions:  make([]mgl32.Vec4, n),
		Velocities: make([]mgl32.Vec4, n),
		Colors:     make([]mgl32.Vec4, n),
	}

	for i := 0; i < n; i++ {
		pos := mgl32.Vec4{
			uniform(rng, PositionExtent),
			uniform(rng, PositionExtent),
			uniform(rng, PositionExtent),
			1.0,
		}
		vel := mgl32.Vec4{
			uniform(rng, VelocityExtent),
			uniform(rng, VelocityExtent),
			uniform(rng, VelocityExtent),
			0.0,
		}

		s.Positions[i] = pos
		s.Velocities[i] = vel
		s.Colors[i] = ColorFromPosition(pos)
	}

	return s, nil
}

// NewEmptyStore allocates n zeroed particles. Used as a readback target.
func NewEmptyStore(n int) *ParticleStore {
	return &ParticleStore{
		Positions:  make([]mgl32.Vec4, n),
		Velocities: make([]mgl32.Vec4, n),
		Colors:     make([]mgl32.Vec4, n),
	}
}

// ColorFromPosition maps a position in [-1,1]^3 to an RGBA color in [0,1].
func ColorFromPosition(p mgl32.Vec4) mgl32.Vec4 {
	return mgl32.Vec4{
		(p[0] + 1) / 2,
		(p[1] + 1) / 2,
		(p[2] + 1) / 2,
		1.0,
	}
}

// Len returns the particle count.
func (s *ParticleStore) Len() int {
	return len(s.Positions)
}

// Validate reports whether all three attribute arrays have the same length.
func (s *ParticleStore) Validate() error {
	n := len(s.Positions)
	if len(s.Velocities) != n || len(s.Colors) != n {
		return fmt.Errorf("particle store lengths differ: positions=%d velocities=%d colors=%d",
			n, len(s.Velocities), len(s.Colors))
	}
	return nil
}

// ByteSize is the size in bytes of one attribute array.
func (s *ParticleStore) ByteSize() int {
	return s.Len() * Vec4Size
}

// CopyFrom overwrites s with the contents of src. Both stores must have the
// same length.
func (s *ParticleStore) CopyFrom(src *ParticleStore) error {
	if s.Len() != src.Len() {
		return fmt.Errorf("copy particle store: length %d != %d", s.Len(), src.Len())
	}
	copy(s.Positions, src.Positions)
	copy(s.Velocities, src.Velocities)
	copy(s.Colors, src.Colors)
	return nil
}

// uniform draws from [-extent, extent].
func uniform(rng *rand.Rand, extent float32) float32 {
	return rng.Float32()*2*extent - extent
}
