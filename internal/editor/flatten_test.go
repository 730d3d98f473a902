package editor

import (
	"image"
	"image/color"
	"image/draw"
	"testing"

	"github.com/stretchr/testify/assert"
)

func solid(r image.Rectangle, c color.Color) *image.RGBA {
	img := image.NewRGBA(r)
	draw.Draw(img, r, image.NewUniform(c), image.Point{}, draw.Src)
	return img
}

func TestFlatten(t *testing.T) {
	blue := color.RGBA{B: 255, A: 255}
	red := color.RGBA{R: 255, A: 255}

	t.Run("transparent drawing keeps the photo", func(t *testing.T) {
		photo := solid(image.Rect(0, 0, 8, 8), blue)
		drawing := image.NewRGBA(image.Rect(0, 0, 8, 8))
		drawing.Set(2, 3, red)

		out := Flatten(photo, drawing, Transform{})
		assert.Equal(t, image.Rect(0, 0, 8, 8), out.Bounds())
		assert.Equal(t, blue, out.RGBAAt(0, 0))
		assert.Equal(t, red, out.RGBAAt(2, 3))
	})

	t.Run("drawing is scaled to the photo", func(t *testing.T) {
		photo := solid(image.Rect(0, 0, 40, 20), blue)
		drawing := solid(image.Rect(0, 0, 4, 2), red)

		out := Flatten(photo, drawing, Transform{})
		assert.Equal(t, image.Rect(0, 0, 40, 20), out.Bounds())
		for _, p := range []image.Point{{20, 10}, {39, 19}, {0, 0}} {
			c := out.RGBAAt(p.X, p.Y)
			assert.Greater(t, c.R, uint8(240), "pixel %v", p)
			assert.Less(t, c.B, uint8(15), "pixel %v", p)
		}
	})

	t.Run("offset photo bounds are normalised", func(t *testing.T) {
		photo := solid(image.Rect(10, 10, 14, 14), blue)
		out := Flatten(photo, nil, Transform{})
		assert.Equal(t, image.Rect(0, 0, 4, 4), out.Bounds())
		assert.Equal(t, blue, out.RGBAAt(0, 0))
	})

	t.Run("no photo returns the drawing", func(t *testing.T) {
		drawing := solid(image.Rect(0, 0, 3, 3), red)
		out := Flatten(nil, drawing, Transform{})
		assert.Equal(t, image.Rect(0, 0, 3, 3), out.Bounds())
		assert.Equal(t, red, out.RGBAAt(1, 1))
	})
}

func TestFlatten_PhotoTransform(t *testing.T) {
	blue := color.RGBA{B: 255, A: 255}
	red := color.RGBA{R: 255, A: 255}

	t.Run("pan leaves the uncovered canvas transparent", func(t *testing.T) {
		photo := solid(image.Rect(0, 0, 8, 8), blue)

		out := Flatten(photo, nil, Transform{OffsetX: 4})
		assert.Equal(t, image.Rect(0, 0, 8, 8), out.Bounds())
		assert.Equal(t, uint8(0), out.RGBAAt(1, 1).A)
		assert.Equal(t, blue, out.RGBAAt(6, 1))
	})

	t.Run("zoom enlarges the photo from the top left corner", func(t *testing.T) {
		photo := solid(image.Rect(0, 0, 8, 8), blue)
		draw.Draw(photo, image.Rect(0, 0, 4, 8), image.NewUniform(red), image.Point{}, draw.Src)

		out := Flatten(photo, nil, Transform{Scale: 2})
		left := out.RGBAAt(2, 2)
		assert.Greater(t, left.R, uint8(200))
		mid := out.RGBAAt(5, 2)
		assert.Greater(t, mid.R, uint8(200), "the red half now spans most of the canvas")
	})

	t.Run("zero value is the identity", func(t *testing.T) {
		assert.True(t, Transform{}.IsIdentity())
		assert.True(t, Transform{Scale: 1}.IsIdentity())
		assert.False(t, Transform{OffsetY: -2}.IsIdentity())
	})
}
