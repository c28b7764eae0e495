package opengl

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"particlesim/input"
)

func TestEveryKeyIsMapped(t *testing.T) {
	for k := input.KeyW; k <= input.KeyF1; k++ {
		_, ok := keyMap[k]
		assert.True(t, ok, "key %d has no GLFW mapping", k)
	}
	_, ok := buttonMap[input.MouseLeft]
	assert.True(t, ok)
}

func TestMappedKeysAreDistinct(t *testing.T) {
	seen := map[int]input.Key{}
	for k, g := range keyMap {
		prev, dup := seen[int(g)]
		assert.False(t, dup, "keys %d and %d share a GLFW key", prev, k)
		seen[int(g)] = k
	}
}

func TestRendererAspectGuardsEmptyWindow(t *testing.T) {
	r := &ParticleRenderer{}
	assert.Equal(t, float32(1), r.Aspect())

	r.width, r.height = 1920, 1080
	assert.InDelta(t, 16.0/9.0, r.Aspect(), 1e-6)
}
