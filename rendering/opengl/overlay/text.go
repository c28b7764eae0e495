package overlay

import (
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Instructions are the control hints shown above the status line.
var Instructions = []string{
	"Hold left click to move particles towards the mouse",
	"Hit T to pause the simulation",
	"Move around with WASD",
	"Hit Escape to lock/hide the mouse",
	"Hit B to switch between the GPU and CPU integrator, F1 to hide this text",
}

const (
	padding     = 8
	lineSpacing = 4
)

var (
	backgroundColor = color.RGBA{R: 26, G: 26, B: 77, A: 180}
	textColor       = color.RGBA{R: 230, G: 230, B: 230, A: 255}
)

// RasterizeLines draws lines of text top to bottom into an RGBA image with
// a translucent background.
func RasterizeLines(lines []string) *image.RGBA {
	face := basicfont.Face7x13
	metrics := face.Metrics()
	lineHeight := metrics.Height.Ceil() + lineSpacing

	width := 0
	for _, line := range lines {
		if w := font.MeasureString(face, line).Ceil(); w > width {
			width = w
		}
	}

	img := image.NewRGBA(image.Rect(0, 0, width+2*padding, len(lines)*lineHeight+2*padding))
	draw.Draw(img, img.Bounds(), image.NewUniform(backgroundColor), image.Point{}, draw.Src)

	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(textColor),
		Face: face,
	}
	for i, line := range lines {
		d.Dot = fixed.P(padding, padding+i*lineHeight+metrics.Ascent.Ceil())
		d.DrawString(line)
	}
	return img
}
