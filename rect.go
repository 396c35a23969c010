package platedetect

import (
	"math"
)

// Rect is an axis-aligned rectangle in source image pixel coordinates using
// Tlwh (top-left x, top-left y, width, height) format
type Rect struct {
	X      float32
	Y      float32
	Width  float32
	Height float32
}

// NewRect creates a new Rect with given coordinates
func NewRect(x, y, width, height float32) Rect {
	return Rect{X: x, Y: y, Width: width, Height: height}
}

// BRX returns the bottom-right x coordinate of the rectangle
func (r Rect) BRX() float32 {
	return r.X + r.Width
}

// BRY returns the bottom-right y coordinate of the rectangle
func (r Rect) BRY() float32 {
	return r.Y + r.Height
}

// CenterX returns the x coordinate of the rectangle center
func (r Rect) CenterX() float32 {
	return r.X + r.Width/2
}

// CenterY returns the y coordinate of the rectangle center
func (r Rect) CenterY() float32 {
	return r.Y + r.Height/2
}

// Area returns the rectangle area in square pixels
func (r Rect) Area() float32 {
	if r.Width <= 0 || r.Height <= 0 {
		return 0
	}
	return r.Width * r.Height
}

// AspectRatio returns width divided by height
func (r Rect) AspectRatio() float32 {
	if r.Height <= 0 {
		return 0
	}
	return r.Width / r.Height
}

// Diagonal returns the length of the rectangle diagonal
func (r Rect) Diagonal() float32 {
	return float32(math.Sqrt(float64(r.Width*r.Width + r.Height*r.Height)))
}

// Intersect returns the intersection of two rectangles.  A rectangle with
// zero width and height is returned when they do not overlap
func (r Rect) Intersect(other Rect) Rect {

	x1 := maxF32(r.X, other.X)
	y1 := maxF32(r.Y, other.Y)
	x2 := minF32(r.BRX(), other.BRX())
	y2 := minF32(r.BRY(), other.BRY())

	if x2 <= x1 || y2 <= y1 {
		return Rect{}
	}

	return Rect{X: x1, Y: y1, Width: x2 - x1, Height: y2 - y1}
}

// Union returns the smallest rectangle enclosing both rectangles
func (r Rect) Union(other Rect) Rect {

	x1 := minF32(r.X, other.X)
	y1 := minF32(r.Y, other.Y)
	x2 := maxF32(r.BRX(), other.BRX())
	y2 := maxF32(r.BRY(), other.BRY())

	return Rect{X: x1, Y: y1, Width: x2 - x1, Height: y2 - y1}
}

// CalcIoU calculates the Intersection over Union (IoU) with another
// rectangle.  Identical rectangles return 1.0 and non-overlapping
// rectangles return 0.0
func (r Rect) CalcIoU(other Rect) float32 {

	inter := r.Intersect(other).Area()

	if inter <= 0 {
		return 0
	}

	union := r.Area() + other.Area() - inter

	if union <= 0 {
		return 0
	}

	return inter / union
}

// CenterDistance returns the euclidean distance between the centers of the
// two rectangles
func (r Rect) CenterDistance(other Rect) float32 {

	dx := r.CenterX() - other.CenterX()
	dy := r.CenterY() - other.CenterY()

	return float32(math.Sqrt(float64(dx*dx + dy*dy)))
}

// ClampTo restricts the rectangle to lie within an image of the given pixel
// dimensions
func (r Rect) ClampTo(width, height int) Rect {

	x1 := clampF32(r.X, 0, float32(width))
	y1 := clampF32(r.Y, 0, float32(height))
	x2 := clampF32(r.BRX(), 0, float32(width))
	y2 := clampF32(r.BRY(), 0, float32(height))

	return Rect{X: x1, Y: y1, Width: x2 - x1, Height: y2 - y1}
}

// RotatedRect is a rotated rectangle alternative for perspective skewed
// plates defined by its center point, size and rotation angle in degrees
type RotatedRect struct {
	CenterX float32
	CenterY float32
	Width   float32
	Height  float32
	Angle   float32
}

// AspectRatio returns the long side divided by the short side so the ratio
// is independent of the fitted rectangle orientation
func (r RotatedRect) AspectRatio() float32 {

	w, h := r.Width, r.Height

	if h > w {
		w, h = h, w
	}

	if h <= 0 {
		return 0
	}

	return w / h
}

// BoundingRect returns the axis-aligned rectangle enclosing the rotated
// rectangle
func (r RotatedRect) BoundingRect() Rect {

	rad := float64(r.Angle) * math.Pi / 180.0
	cos := math.Abs(math.Cos(rad))
	sin := math.Abs(math.Sin(rad))

	w := float32(float64(r.Width)*cos + float64(r.Height)*sin)
	h := float32(float64(r.Width)*sin + float64(r.Height)*cos)

	return Rect{
		X:      r.CenterX - w/2,
		Y:      r.CenterY - h/2,
		Width:  w,
		Height: h,
	}
}

// minF32 returns the minimum of two values
func minF32(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

// maxF32 returns the maximum of two values
func maxF32(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}

// clampF32 restricts a value between a minimum and maximum
func clampF32(x, min, max float32) float32 {

	if x < min {
		return min
	} else if x > max {
		return max
	}

	return x
}
