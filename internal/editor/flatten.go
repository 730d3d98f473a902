package editor

import (
	"image"

	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
)

// Transform is the pan and zoom applied to the photo under the canvas. The
// zero value leaves the photo in place.
type Transform struct {
	OffsetX float64 `json:"offset_x"` // photo pixels
	OffsetY float64 `json:"offset_y"`
	Scale   float64 `json:"scale"` // <= 0 means 1
}

func (t Transform) scale() float64 {
	if t.Scale <= 0 {
		return 1
	}
	return t.Scale
}

// IsIdentity reports whether t leaves the photo untouched.
func (t Transform) IsIdentity() bool {
	return t.OffsetX == 0 && t.OffsetY == 0 && t.scale() == 1
}

// Flatten composites drawing over photo. The canvas has the photo's size;
// the photo is panned and zoomed by t underneath it and the drawing layer is
// stretched over the whole canvas. Without a photo the drawing is returned
// on its own.
func Flatten(photo, drawing image.Image, t Transform) *image.RGBA {
	if photo == nil {
		b := drawing.Bounds()
		dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(dst, dst.Bounds(), drawing, b.Min, draw.Src)
		return dst
	}

	pb := photo.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, pb.Dx(), pb.Dy()))
	if t.IsIdentity() {
		draw.Draw(dst, dst.Bounds(), photo, pb.Min, draw.Src)
	} else {
		s := t.scale()
		// Source point p lands on canvas point s*(p-min)+offset.
		s2d := f64.Aff3{
			s, 0, t.OffsetX - s*float64(pb.Min.X),
			0, s, t.OffsetY - s*float64(pb.Min.Y),
		}
		draw.CatmullRom.Transform(dst, s2d, photo, pb, draw.Src, nil)
	}

	if drawing == nil {
		return dst
	}
	db := drawing.Bounds()
	if db.Dx() == pb.Dx() && db.Dy() == pb.Dy() {
		draw.Draw(dst, dst.Bounds(), drawing, db.Min, draw.Over)
		return dst
	}
	draw.CatmullRom.Scale(dst, dst.Bounds(), drawing, db, draw.Over, nil)
	return dst
}
