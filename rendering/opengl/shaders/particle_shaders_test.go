package shaders

import (
	"strings"
	"testing"

	"github.com/go-gl/gl/v4.3-core/gl"
	"github.com/stretchr/testify/assert"
)

func TestIntegratorComputeShader(t *testing.T) {
	src := IntegratorComputeShader

	assert.Contains(t, src, "local_size_x = 256")
	assert.Contains(t, src, "binding = 0) buffer Pos")
	assert.Contains(t, src, "binding = 1) buffer Vel")
	assert.Contains(t, src, "binding = 2) buffer Col")
	assert.Contains(t, src, "const float EPSILON = 0.001000;")
	assert.Contains(t, src, "const float ATTRACTOR_MASS = 176.000000;")

	guard := strings.Index(src, "if (id >= numParticles)")
	firstRead := strings.Index(src, "positions[id]")
	assert.NotEqual(t, -1, guard, "out-of-range invocations must return early")
	assert.Less(t, guard, firstRead, "guard runs before any buffer access")

	assert.Contains(t, src, "max(0.7 - red, 0.0)")
	assert.NotContains(t, src, "%!", "no formatting errors")
}

func TestParticleVertexShader(t *testing.T) {
	assert.Contains(t, ParticleVertexShader, "layout (location = 0) in vec4 position;")
	assert.Contains(t, ParticleVertexShader, "layout (location = 1) in vec4 color;")
	assert.Contains(t, ParticleVertexShader, "gl_PointSize = 1.10;")
	assert.NotContains(t, ParticleVertexShader, "%!")
}

func TestTerminate(t *testing.T) {
	assert.Equal(t, "abc\x00", terminate("abc"))
	assert.Equal(t, "abc\x00", terminate("abc\x00"))
}

func TestTextShaders(t *testing.T) {
	assert.Contains(t, TextVertexShader, "ndcPos.y = -ndcPos.y;")
	assert.Contains(t, textFragmentShader, "uniform sampler2D textTexture;")
}

func TestStageName(t *testing.T) {
	assert.Equal(t, "vertex", stageName(gl.VERTEX_SHADER))
	assert.Equal(t, "compute", stageName(gl.COMPUTE_SHADER))
	assert.Equal(t, "0x1", stageName(1))
}
