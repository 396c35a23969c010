// Package primitive defines the contract for the pixel level image
// operations consumed by the candidate generators.  Any implementation
// satisfying the Engine interface is interchangeable, an OpenCV backed
// engine lives in primitive/opencv and a pure Go engine in primitive/pure.
package primitive

import (
	"image"

	"github.com/plateguard/go-platedetect"
)

// ColorSpace identifies a target color space for conversion
type ColorSpace int

const (
	// Gray is single channel luminance
	Gray ColorSpace = iota
	// HSV is hue-saturation-value with OpenCV channel scaling, hue in
	// 0-179 and saturation/value in 0-255
	HSV
	// Lab is the perceptual CIE L*a*b* space with OpenCV channel scaling,
	// L in 0-255 and a/b offset by 128
	Lab
)

// String returns the color space name
func (c ColorSpace) String() string {

	switch c {
	case Gray:
		return "gray"
	case HSV:
		return "hsv"
	case Lab:
		return "lab"
	}

	return "unknown"
}

// MorphOp identifies a morphological operation
type MorphOp int

const (
	// Erode shrinks mask regions by the kernel
	Erode MorphOp = iota
	// Dilate grows mask regions by the kernel
	Dilate
	// Open is an erosion followed by a dilation, removing small specks
	Open
	// Close is a dilation followed by an erosion, bridging small gaps
	Close
)

// Engine is the set of pixel level primitives the pipeline requires.  All
// operations are read-only over their inputs and allocate their own output
// buffers so implementations may be shared across goroutines
type Engine interface {
	// Edges computes a binary edge map using hysteresis thresholds
	Edges(img *platedetect.Image, lowThresh, highThresh float32) (*EdgeMap, error)
	// Contours extracts the boundary polygons of connected edge regions
	Contours(edges *EdgeMap) ([]Polygon, error)
	// ConvertColorSpace converts the image to the given color space
	ConvertColorSpace(img *platedetect.Image, space ColorSpace) (*platedetect.Image, error)
	// OrientedTextureResponse applies an oriented band-pass filter at the
	// given angle in degrees and spatial frequency in cycles per pixel
	OrientedTextureResponse(img *platedetect.Image, angleDeg, frequency float32) (*ResponseMap, error)
	// Morphology applies a morphological operation with a rectangular
	// kernel of the given size
	Morphology(mask *Mask, op MorphOp, kernelW, kernelH int) (*Mask, error)
}

// EdgeMap is a binary plane where 255 marks an edge pixel
type EdgeMap struct {
	// Data is the plane in row-major order, one byte per pixel
	Data []uint8
	// Width of the plane in pixels
	Width int
	// Height of the plane in pixels
	Height int
}

// DensityIn returns the fraction of edge pixels inside the given rectangle
func (e *EdgeMap) DensityIn(r platedetect.Rect) float32 {

	x1, y1, x2, y2 := clipRect(r, e.Width, e.Height)

	total := (x2 - x1) * (y2 - y1)

	if total <= 0 {
		return 0
	}

	count := 0

	for y := y1; y < y2; y++ {
		row := e.Data[y*e.Width : (y+1)*e.Width]
		for x := x1; x < x2; x++ {
			if row[x] != 0 {
				count++
			}
		}
	}

	return float32(count) / float32(total)
}

// Mask is a binary plane where 255 marks a set pixel
type Mask struct {
	// Data is the plane in row-major order, one byte per pixel
	Data []uint8
	// Width of the plane in pixels
	Width int
	// Height of the plane in pixels
	Height int
}

// NewMask returns an empty mask of the given size
func NewMask(width, height int) *Mask {
	return &Mask{
		Data:   make([]uint8, width*height),
		Width:  width,
		Height: height,
	}
}

// At reports whether the pixel at x, y is set
func (m *Mask) At(x, y int) bool {
	return m.Data[y*m.Width+x] != 0
}

// Set marks the pixel at x, y
func (m *Mask) Set(x, y int) {
	m.Data[y*m.Width+x] = 255
}

// CoverageIn returns the fraction of set pixels inside the given rectangle
func (m *Mask) CoverageIn(r platedetect.Rect) float32 {
	e := EdgeMap{Data: m.Data, Width: m.Width, Height: m.Height}
	return e.DensityIn(r)
}

// Blobs extracts the bounding rectangles of 8-connected components of set
// pixels.  Components smaller than minArea pixels are discarded.  Blobs are
// returned in scan order of their first pixel so output is deterministic
func (m *Mask) Blobs(minArea int) []platedetect.Rect {

	visited := make([]bool, len(m.Data))
	var blobs []platedetect.Rect

	// reusable flood fill stack
	stack := make([]int, 0, 256)

	for i, v := range m.Data {

		if v == 0 || visited[i] {
			continue
		}

		// flood fill this component tracking its extent and pixel count
		minX, minY := m.Width, m.Height
		maxX, maxY := 0, 0
		area := 0

		stack = stack[:0]
		stack = append(stack, i)
		visited[i] = true

		for len(stack) > 0 {

			p := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			px := p % m.Width
			py := p / m.Width
			area++

			if px < minX {
				minX = px
			}
			if px > maxX {
				maxX = px
			}
			if py < minY {
				minY = py
			}
			if py > maxY {
				maxY = py
			}

			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {

					nx, ny := px+dx, py+dy

					if nx < 0 || ny < 0 || nx >= m.Width || ny >= m.Height {
						continue
					}

					n := ny*m.Width + nx

					if m.Data[n] != 0 && !visited[n] {
						visited[n] = true
						stack = append(stack, n)
					}
				}
			}
		}

		if area < minArea {
			continue
		}

		blobs = append(blobs, platedetect.NewRect(
			float32(minX), float32(minY),
			float32(maxX-minX+1), float32(maxY-minY+1)))
	}

	return blobs
}

// ResponseMap is a float32 filter response plane
type ResponseMap struct {
	// Data is the plane in row-major order
	Data []float32
	// Width of the plane in pixels
	Width int
	// Height of the plane in pixels
	Height int
}

// Threshold returns a mask of pixels whose absolute response is at least t
func (r *ResponseMap) Threshold(t float32) *Mask {

	m := NewMask(r.Width, r.Height)

	for i, v := range r.Data {
		if v >= t || v <= -t {
			m.Data[i] = 255
		}
	}

	return m
}

// MeanIn returns the mean absolute response inside the given rectangle
func (r *ResponseMap) MeanIn(rect platedetect.Rect) float32 {

	x1, y1, x2, y2 := clipRect(rect, r.Width, r.Height)

	total := (x2 - x1) * (y2 - y1)

	if total <= 0 {
		return 0
	}

	sum := float32(0)

	for y := y1; y < y2; y++ {
		for x := x1; x < x2; x++ {
			v := r.Data[y*r.Width+x]
			if v < 0 {
				v = -v
			}
			sum += v
		}
	}

	return sum / float32(total)
}

// Polygon is a closed contour of pixel coordinates
type Polygon []image.Point

// BoundingRect returns the axis-aligned bounding rectangle of the polygon
func (p Polygon) BoundingRect() platedetect.Rect {

	if len(p) == 0 {
		return platedetect.Rect{}
	}

	minX, minY := p[0].X, p[0].Y
	maxX, maxY := p[0].X, p[0].Y

	for _, pt := range p[1:] {
		if pt.X < minX {
			minX = pt.X
		}
		if pt.X > maxX {
			maxX = pt.X
		}
		if pt.Y < minY {
			minY = pt.Y
		}
		if pt.Y > maxY {
			maxY = pt.Y
		}
	}

	return platedetect.NewRect(
		float32(minX), float32(minY),
		float32(maxX-minX+1), float32(maxY-minY+1))
}

// clipRect converts a float rectangle to integer pixel bounds clipped to the
// plane dimensions
func clipRect(r platedetect.Rect, width, height int) (x1, y1, x2, y2 int) {

	x1 = int(r.X)
	y1 = int(r.Y)
	x2 = int(r.BRX())
	y2 = int(r.BRY())

	if x1 < 0 {
		x1 = 0
	}
	if y1 < 0 {
		y1 = 0
	}
	if x2 > width {
		x2 = width
	}
	if y2 > height {
		y2 = height
	}

	return x1, y1, x2, y2
}
