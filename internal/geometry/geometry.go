// Package geometry models a canvas image's stored rectangle and the three
// interactive gestures (drag, corner resize, edge crop) that mutate it. It
// is shared between the SVG editor front end (via the editor state machine)
// and the API's server-side crop validation.
package geometry

import "math"

const (
	// MinScale and MaxScale bound the size factor of a placed image.
	MinScale = 0.1
	MaxScale = 5.0

	// DropFraction: an image dropped onto a canvas starts out with its
	// display width at this fraction of the canvas width.
	DropFraction = 0.3

	// DefaultScale is used when the canvas has no width to derive from.
	DefaultScale = 0.25

	// FallbackWidth/FallbackHeight stand in for the natural dimensions of
	// an asset whose dimension probe failed.
	FallbackWidth  = 800
	FallbackHeight = 600
)

// Placement is the working copy of a canvas image's stored rectangle.
// X/Y are canvas units (top-left, may be negative), Width/Height the
// unscaled source dimensions, Size the scale factor, and the four insets
// source-pixel crop amounts.
type Placement struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
	Size   float64

	Left   float64
	Right  float64
	Top    float64
	Bottom float64
}

// Rect is an axis-aligned rectangle in canvas units.
type Rect struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// Display returns the scaled, pre-crop rectangle the image element is
// positioned and sized at.
func Display(p Placement) Rect {
	return Rect{
		X:      p.X,
		Y:      p.Y,
		Width:  p.Width * p.Size,
		Height: p.Height * p.Size,
	}
}

// Visible returns the post-crop clip rectangle. Cropping is realized purely
// as a clip over the display rectangle; the source asset is untouched.
func Visible(p Placement) Rect {
	return Rect{
		X:      p.X + p.Left*p.Size,
		Y:      p.Y + p.Top*p.Size,
		Width:  (p.Width - p.Left - p.Right) * p.Size,
		Height: (p.Height - p.Top - p.Bottom) * p.Size,
	}
}

// ValidCrop reports whether the insets leave a non-degenerate visible
// rectangle: left+right < width and top+bottom < height.
func ValidCrop(width, height, left, right, top, bottom int) bool {
	return left+right < width && top+bottom < height
}

// ClampScale clamps a scale factor to [MinScale, MaxScale].
func ClampScale(s float64) float64 {
	return math.Min(MaxScale, math.Max(MinScale, s))
}

// DropScale derives the initial scale for an image of natural width imgWidth
// dropped onto a canvas of width canvasWidth, so that its display width is
// DropFraction of the canvas. The result is clamped to the legal range.
func DropScale(canvasWidth, imgWidth int) float64 {
	if canvasWidth <= 0 || imgWidth <= 0 {
		return DefaultScale
	}
	return ClampScale(float64(canvasWidth) * DropFraction / float64(imgWidth))
}

func round(v float64) int {
	return int(math.Round(v))
}
