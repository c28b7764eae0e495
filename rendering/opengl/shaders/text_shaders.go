package shaders

import "fmt"

// TextVertexShader places a textured quad in pixel coordinates with a
// top-left origin.
const TextVertexShader = `
#version 430 core

const vec2 positions[4] = vec2[](
    vec2(0.0, 0.0),
    vec2(1.0, 0.0),
    vec2(0.0, 1.0),
    vec2(1.0, 1.0)
);

uniform vec2 offset;
uniform vec2 size;
uniform vec2 screenSize;

out vec2 fragTexCoord;

void main() {
    vec2 pos = positions[gl_VertexID];
    vec2 pixelPos = offset + pos * size;
    vec2 ndcPos = (pixelPos / screenSize) * 2.0 - 1.0;
    ndcPos.y = -ndcPos.y;
    gl_Position = vec4(ndcPos, 0.0, 1.0);
    fragTexCoord = pos;
}
`

const textFragmentShader = `
#version 430 core

in vec2 fragTexCoord;
out vec4 outColor;

uniform sampler2D textTexture;

void main() {
    outColor = texture(textTexture, fragTexCoord);
}
`

// CreateTextProgram builds the overlay text program.
func CreateTextProgram() (uint32, error) {
	program, err := CreateProgram(TextVertexShader, textFragmentShader)
	if err != nil {
		return 0, fmt.Errorf("text program: %w", err)
	}
	return program, nil
}
