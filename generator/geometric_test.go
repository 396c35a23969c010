package generator

import (
	"context"
	"errors"
	"image"
	"testing"

	"github.com/plateguard/go-platedetect"
	"github.com/plateguard/go-platedetect/primitive"
)

// rectContour walks the boundary of a rectangle clockwise in unit steps,
// the shape a contour trace produces
func rectContour(x, y, w, h int) primitive.Polygon {

	var p primitive.Polygon

	for i := 0; i <= w; i++ {
		p = append(p, image.Point{X: x + i, Y: y})
	}
	for i := 1; i <= h; i++ {
		p = append(p, image.Point{X: x + w, Y: y + i})
	}
	for i := w - 1; i >= 0; i-- {
		p = append(p, image.Point{X: x + i, Y: y + h})
	}
	for i := h - 1; i >= 1; i-- {
		p = append(p, image.Point{X: x, Y: y + i})
	}

	return p
}

// edgeMapFor returns an edge map with the contour pixels set
func edgeMapFor(width, height int, contours ...primitive.Polygon) *primitive.EdgeMap {

	e := &primitive.EdgeMap{
		Data:   make([]uint8, width*height),
		Width:  width,
		Height: height,
	}

	for _, c := range contours {
		for _, pt := range c {
			e.Data[pt.Y*width+pt.X] = 255
		}
	}

	return e
}

func TestGeometricFromContour(t *testing.T) {

	g := NewGeometric(GeometricDefaultParams())

	img := blankImage(640, 480)
	contour := rectContour(50, 100, 120, 30)
	edges := edgeMapFor(640, 480, contour)

	c, ok := g.fromContour(contour, edges, img)

	if !ok {
		t.Fatalf("expected plate shaped contour to produce a candidate")
	}

	if c.Strategy != platedetect.StrategyGeometric {
		t.Errorf("expected geometric strategy, got %v", c.Strategy)
	}

	m, isGeo := c.Metrics.(platedetect.GeometricMetrics)

	if !isGeo {
		t.Fatalf("expected geometric metrics, got %T", c.Metrics)
	}

	if m.Vertices != 4 {
		t.Errorf("expected 4 vertices after approximation, got %d", m.Vertices)
	}

	// unclipping grows the box, it must still contain the original outline
	original := platedetect.NewRect(50, 100, 121, 31)

	if c.Rect.Intersect(original) != original {
		t.Errorf("expected candidate %v to contain outline %v", c.Rect, original)
	}

	if m.EdgeDensity <= 0 {
		t.Errorf("expected positive edge density, got %f", m.EdgeDensity)
	}

	if c.RawScore <= 0 {
		t.Errorf("expected positive raw score, got %f", c.RawScore)
	}
}

func TestGeometricFromContourRejects(t *testing.T) {

	g := NewGeometric(GeometricDefaultParams())

	img := blankImage(640, 480)
	empty := edgeMapFor(640, 480)

	// too short to be a polygon
	short := primitive.Polygon{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}}

	if _, ok := g.fromContour(short, empty, img); ok {
		t.Errorf("expected short contour rejected")
	}

	// square, aspect 1.0 is outside the aspect band for both fits
	square := rectContour(100, 100, 60, 60)

	if _, ok := g.fromContour(square, empty, img); ok {
		t.Errorf("expected square contour rejected")
	}

	// plate shaped but far too small
	tiny := rectContour(100, 100, 12, 4)

	if _, ok := g.fromContour(tiny, empty, img); ok {
		t.Errorf("expected tiny contour rejected")
	}
}

func TestGeometricGenerate(t *testing.T) {

	params := GeometricDefaultParams()
	params.EdgeScales = []EdgeThresholds{{Low: 50, High: 150}}

	g := NewGeometric(params)

	img := blankImage(640, 480)
	contour := rectContour(50, 100, 120, 30)

	eng := &stubEngine{
		edges:    edgeMapFor(640, 480, contour),
		contours: []primitive.Polygon{contour, rectContour(300, 50, 20, 20)},
	}

	candidates, err := g.Generate(context.Background(), img, eng)

	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}

	// the square contour is filtered, the plate shaped one survives
	if len(candidates) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(candidates))
	}
}

func TestGeometricGenerateDegrades(t *testing.T) {

	g := NewGeometric(GeometricDefaultParams())

	eng := &stubEngine{err: errors.New("backend failure")}

	if _, err := g.Generate(context.Background(), blankImage(64, 48), eng); err == nil {
		t.Errorf("expected error from failing engine")
	}

	// a canceled context stops scale iteration
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := g.Generate(ctx, blankImage(64, 48), &stubEngine{}); err == nil {
		t.Errorf("expected context error")
	}
}
