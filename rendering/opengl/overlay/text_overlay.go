package overlay

import (
	"fmt"
	"slices"

	"github.com/go-gl/gl/v4.3-core/gl"

	"particlesim/rendering/opengl/shaders"
)

// TextOverlay draws a block of text in the top-left corner of the window.
// The text is rasterized on the host and only re-uploaded when it changes.
type TextOverlay struct {
	program uint32
	vao     uint32
	texture uint32

	width  float32
	height float32

	texWidth  int
	texHeight int
	lines     []string

	offsetLoc     int32
	sizeLoc       int32
	screenSizeLoc int32
	textureLoc    int32
}

// NewTextOverlay creates the overlay for a window of the given size.
func NewTextOverlay(width, height int) (*TextOverlay, error) {
	program, err := shaders.CreateTextProgram()
	if err != nil {
		return nil, fmt.Errorf("text overlay: %w", err)
	}

	to := &TextOverlay{
		program:       program,
		width:         float32(width),
		height:        float32(height),
		offsetLoc:     gl.GetUniformLocation(program, gl.Str("offset\x00")),
		sizeLoc:       gl.GetUniformLocation(program, gl.Str("size\x00")),
		screenSizeLoc: gl.GetUniformLocation(program, gl.Str("screenSize\x00")),
		textureLoc:    gl.GetUniformLocation(program, gl.Str("textTexture\x00")),
	}

	// Quad corners come from gl_VertexID
	gl.GenVertexArrays(1, &to.vao)

	gl.GenTextures(1, &to.texture)
	gl.BindTexture(gl.TEXTURE_2D, to.texture)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.BindTexture(gl.TEXTURE_2D, 0)

	return to, nil
}

// SetLines replaces the text. It reports whether the texture was rebuilt.
func (to *TextOverlay) SetLines(lines []string) bool {
	if to.texWidth > 0 && slices.Equal(to.lines, lines) {
		return false
	}
	to.lines = slices.Clone(lines)

	img := RasterizeLines(lines)
	to.texWidth = img.Rect.Dx()
	to.texHeight = img.Rect.Dy()

	gl.BindTexture(gl.TEXTURE_2D, to.texture)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(to.texWidth), int32(to.texHeight), 0,
		gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(img.Pix))
	gl.BindTexture(gl.TEXTURE_2D, 0)
	return true
}

// UpdateSize updates viewport size
func (to *TextOverlay) UpdateSize(width, height int) {
	to.width = float32(width)
	to.height = float32(height)
}

// Render draws the current text over the scene.
func (to *TextOverlay) Render() {
	if to.texWidth == 0 || to.width == 0 || to.height == 0 {
		return
	}

	gl.Disable(gl.DEPTH_TEST)
	gl.Enable(gl.BLEND)
	// The texture holds premultiplied alpha
	gl.BlendFunc(gl.ONE, gl.ONE_MINUS_SRC_ALPHA)

	gl.UseProgram(to.program)
	gl.Uniform2f(to.offsetLoc, 10, 10)
	gl.Uniform2f(to.sizeLoc, float32(to.texWidth), float32(to.texHeight))
	gl.Uniform2f(to.screenSizeLoc, to.width, to.height)

	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, to.texture)
	gl.Uniform1i(to.textureLoc, 0)

	gl.BindVertexArray(to.vao)
	gl.DrawArrays(gl.TRIANGLE_STRIP, 0, 4)
	gl.BindVertexArray(0)
	gl.BindTexture(gl.TEXTURE_2D, 0)

	gl.Enable(gl.DEPTH_TEST)
}

// Release cleans up resources
func (to *TextOverlay) Release() {
	if to.program != 0 {
		gl.DeleteProgram(to.program)
		to.program = 0
	}
	if to.vao != 0 {
		gl.DeleteVertexArrays(1, &to.vao)
	}
	if to.texture != 0 {
		gl.DeleteTextures(1, &to.texture)
	}
}
