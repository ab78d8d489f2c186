package export

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"strconv"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/mymoto/themekit/internal/colour"
)

// SwatchSize is the edge length of one swatch tile in pixels.
const SwatchSize = 96

// Swatches renders the scale as a strip of labelled tiles, lightest first,
// and encodes it as PNG.
func Swatches(scale colour.Scale) ([]byte, error) {
	steps := scale.Steps()
	if len(steps) == 0 {
		return nil, fmt.Errorf("scale is empty")
	}

	img := image.NewNRGBA(image.Rect(0, 0, SwatchSize*len(steps), SwatchSize))
	face := basicfont.Face7x13

	for i, step := range steps {
		c := scale[step]
		tile := image.Rect(i*SwatchSize, 0, (i+1)*SwatchSize, SwatchSize)
		draw.Draw(img, tile, image.NewUniform(nrgba(c)), image.Point{}, draw.Src)

		ink := image.NewUniform(nrgba(colour.ReadableText(c)))
		drawLabel(img, face, ink, tile, strconv.Itoa(step), 16)
		drawLabel(img, face, ink, tile, c.Hex(), SwatchSize-10)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode swatches: %w", err)
	}
	return buf.Bytes(), nil
}

// drawLabel centres text horizontally in tile with its baseline at y.
func drawLabel(dst draw.Image, face font.Face, ink image.Image, tile image.Rectangle, text string, y int) {
	d := &font.Drawer{Dst: dst, Src: ink, Face: face}
	width := d.MeasureString(text).Round()
	x := tile.Min.X + (tile.Dx()-width)/2
	d.Dot = fixed.P(x, tile.Min.Y+y)
	d.DrawString(text)
}

func nrgba(c colour.RGB) color.NRGBA {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: 0xff}
}
