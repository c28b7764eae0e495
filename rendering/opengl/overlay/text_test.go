package overlay

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font/basicfont"
)

func countTextPixels(t *testing.T, lines []string) int {
	t.Helper()
	img := RasterizeLines(lines)
	n := 0
	for i := 0; i < len(img.Pix); i += 4 {
		if img.Pix[i] == textColor.R && img.Pix[i+1] == textColor.G && img.Pix[i+2] == textColor.B {
			n++
		}
	}
	return n
}

func TestRasterizeLinesSize(t *testing.T) {
	lines := []string{"FPS: 60.0", "Hit T to pause the simulation"}
	img := RasterizeLines(lines)

	advance := basicfont.Face7x13.Advance
	lineHeight := basicfont.Face7x13.Height + lineSpacing

	assert.Equal(t, len(lines[1])*advance+2*padding, img.Rect.Dx())
	assert.Equal(t, len(lines)*lineHeight+2*padding, img.Rect.Dy())
}

func TestRasterizeLinesDrawsText(t *testing.T) {
	assert.Zero(t, countTextPixels(t, []string{"   "}))
	assert.Positive(t, countTextPixels(t, []string{"Move around with WASD"}))
	assert.Greater(t,
		countTextPixels(t, []string{"WASD", "WASD"}),
		countTextPixels(t, []string{"WASD"}))
}

func TestRasterizeLinesBackground(t *testing.T) {
	img := RasterizeLines([]string{"x"})
	require.NotEmpty(t, img.Pix)
	assert.Equal(t, backgroundColor, img.RGBAAt(0, 0))
}

func TestRasterizeNoLines(t *testing.T) {
	img := RasterizeLines(nil)
	assert.Equal(t, 2*padding, img.Rect.Dx())
	assert.Equal(t, 2*padding, img.Rect.Dy())
}

func TestInstructions(t *testing.T) {
	require.Len(t, Instructions, 5)
	assert.Equal(t, "Hold left click to move particles towards the mouse", Instructions[0])
	assert.Equal(t, "Hit Escape to lock/hide the mouse", Instructions[3])
}
