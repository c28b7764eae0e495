package shaders

import (
	"fmt"

	"github.com/go-gl/gl/v4.3-core/gl"

	"particlesim/core"
	"particlesim/physics"
)

// PointSize is the rasterized size of one particle in pixels.
const PointSize = 1.1

// ParticleVertexShader reads the SSBO-backed attributes at slots 0 and 1.
var ParticleVertexShader = fmt.Sprintf(`
#version 430 core
layout (location = %d) in vec4 position;
layout (location = %d) in vec4 color;

out vec4 fragColor;

uniform mat4 model;
uniform mat4 view;
uniform mat4 projection;

void main() {
    gl_Position = projection * view * model * position;
    fragColor = color;
    gl_PointSize = %.2f;
}
`, core.PositionAttrib, core.ColorAttrib, PointSize)

const particleFragmentShader = `
#version 430 core
in vec4 fragColor;
out vec4 color;

void main() {
    color = fragColor;
}
`

// IntegratorComputeShader advances one particle per invocation. It must
// stay in step with physics.Step.
var IntegratorComputeShader = fmt.Sprintf(`
#version 430 core
layout (local_size_x = %d, local_size_y = 1, local_size_z = 1) in;

layout (std430, binding = %d) buffer Pos {
    vec4 positions[];
};

layout (std430, binding = %d) buffer Vel {
    vec4 velocities[];
};

layout (std430, binding = %d) buffer Col {
    vec4 colors[];
};

uniform float dt;
uniform vec3 pointOfMass;
uniform float isActive;
uniform float isRunning;
uniform uint numParticles;

const float EPSILON = %.6f;
const float G = %.6f;
const float PARTICLE_MASS = %.6f;
const float ATTRACTOR_MASS = %.6f;
const float DRAG_COEF = log(0.998) * ATTRACTOR_MASS;

void main() {
    uint id = gl_GlobalInvocationID.x;
    if (id >= numParticles) {
        return;
    }

    vec3 position = positions[id].xyz;
    vec3 velocity = velocities[id].xyz;

    vec3 toMass = pointOfMass - position;
    float rSquared = max(dot(toMass, toMass), EPSILON * EPSILON);
    vec3 force = toMass * (G * ((PARTICLE_MASS * ATTRACTOR_MASS) / rSquared));
    vec3 acceleration = (force * isRunning * isActive) / PARTICLE_MASS;

    velocity *= mix(1.0, exp(DRAG_COEF * dt), isRunning);
    position += (dt * velocity + 0.5 * acceleration * dt * dt) * isRunning;
    velocity += acceleration * dt;

    positions[id] = vec4(position, 1.0);
    velocities[id] = vec4(velocity, 0.0);

    float speed = length(velocity);
    float red = clamp(speed * 0.045, 0.0, 1.0);
    colors[id] = vec4(red,
                      clamp(speed * 0.08, 0.2, 1.0),
                      max(0.7 - red, 0.0),
                      1.0);
}
`, core.WorkGroupSize,
	core.PositionBinding, core.VelocityBinding, core.ColorBinding,
	physics.Epsilon, physics.G, physics.ParticleMass, physics.AttractorMass)

// CreateParticleProgram builds the point rendering program.
func CreateParticleProgram() (uint32, error) {
	program, err := CreateProgram(ParticleVertexShader, particleFragmentShader)
	if err != nil {
		return 0, fmt.Errorf("particle program: %w", err)
	}
	return program, nil
}

// CreateIntegratorProgram builds the integrator compute program.
func CreateIntegratorProgram() (uint32, error) {
	computeShader, err := compileShader(IntegratorComputeShader, gl.COMPUTE_SHADER)
	if err != nil {
		return 0, fmt.Errorf("integrator program: %w", err)
	}

	program, err := linkProgram(computeShader)
	if err != nil {
		return 0, fmt.Errorf("integrator program: %w", err)
	}
	return program, nil
}
