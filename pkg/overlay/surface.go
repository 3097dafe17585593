// Package overlay draws detection geometry onto a 2-D surface.
package overlay

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
)

// Surface is a mutable pixel canvas addressed in frame coordinates.
type Surface interface {
	Size() (w, h int)
	ClearRect(x, y, w, h float64)
	SetFillStyle(c color.Color)
	FillRect(x, y, w, h float64)
}

// Canvas is an in-memory Surface backed by an RGBA image. Fills composite
// source-over; negative extents draw toward the opposite side like a 2-D
// canvas; everything is clipped to the bounds.
type Canvas struct {
	img  *image.RGBA
	fill *image.Uniform
}

// NewCanvas creates a transparent canvas of w x h pixels.
func NewCanvas(w, h int) *Canvas {
	return &Canvas{
		img:  image.NewRGBA(image.Rect(0, 0, w, h)),
		fill: image.NewUniform(color.Black),
	}
}

// Size returns the canvas dimensions.
func (c *Canvas) Size() (int, int) {
	b := c.img.Bounds()
	return b.Dx(), b.Dy()
}

// ClearRect resets the region to fully transparent.
func (c *Canvas) ClearRect(x, y, w, h float64) {
	r := c.rect(x, y, w, h)
	if r.Empty() {
		return
	}
	draw.Draw(c.img, r, image.Transparent, image.Point{}, draw.Src)
}

// SetFillStyle sets the color used by FillRect.
func (c *Canvas) SetFillStyle(col color.Color) {
	c.fill = image.NewUniform(col)
}

// FillRect paints the region with the current fill style.
func (c *Canvas) FillRect(x, y, w, h float64) {
	r := c.rect(x, y, w, h)
	if r.Empty() {
		return
	}
	draw.Draw(c.img, r, c.fill, image.Point{}, draw.Over)
}

// Image exposes the backing pixels. Callers must not retain it across ticks.
func (c *Canvas) Image() *image.RGBA {
	return c.img
}

// rect converts canvas-style (x, y, w, h) into a clipped pixel rectangle.
// image.Rect canonicalizes inverted extents.
func (c *Canvas) rect(x, y, w, h float64) image.Rectangle {
	if !finite(x, y, w, h) {
		return image.Rectangle{}
	}
	r := image.Rect(
		int(math.Round(x)), int(math.Round(y)),
		int(math.Round(x+w)), int(math.Round(y+h)),
	)
	return r.Intersect(c.img.Bounds())
}

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Composite draws overlay on top of a horizontally mirrored copy of frame
// into dst, allocating dst when it is nil or the wrong size. Detections are
// flipped to match a front-facing camera, so the frame is shown the same way
// a mirror would show it. The frame itself is never modified.
func Composite(dst *image.RGBA, frame image.Image, overlay image.Image) *image.RGBA {
	b := frame.Bounds()
	if dst == nil || dst.Bounds() != b {
		dst = image.NewRGBA(b)
	}
	draw.NearestNeighbor.Transform(dst, mirror(b), frame, b, draw.Src, nil)
	if overlay != nil {
		draw.Draw(dst, b, overlay, overlay.Bounds().Min, draw.Over)
	}
	return dst
}

// mirror maps source x to Min.X+Max.X-x, so pixel column x lands on
// column Min.X+Max.X-1-x.
func mirror(b image.Rectangle) f64.Aff3 {
	return f64.Aff3{
		-1, 0, float64(b.Min.X + b.Max.X),
		0, 1, 0,
	}
}
