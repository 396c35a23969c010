package primitive

import (
	"image"
	"math"
	"testing"
)

// rectContour walks the boundary of an axis-aligned rectangle clockwise in
// unit steps, the shape a contour trace produces
func rectContour(x, y, w, h int) Polygon {

	var p Polygon

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

func TestApproxDP(t *testing.T) {

	contour := rectContour(0, 0, 40, 20)

	approx := contour.ApproxDP(2.0)

	if len(approx) != 4 {
		t.Fatalf("expected 4 vertices, got %d: %v", len(approx), approx)
	}

	corners := map[image.Point]bool{
		{X: 0, Y: 0}: true, {X: 40, Y: 0}: true,
		{X: 40, Y: 20}: true, {X: 0, Y: 20}: true,
	}

	for _, pt := range approx {
		if !corners[pt] {
			t.Errorf("unexpected vertex %v", pt)
		}
	}
}

func TestApproxDPShortPolygon(t *testing.T) {

	p := Polygon{{X: 0, Y: 0}, {X: 10, Y: 0}}

	// too short to simplify, returned as is
	if got := p.ApproxDP(1.0); len(got) != 2 {
		t.Errorf("expected 2 vertices, got %d", len(got))
	}
}

func TestArcLength(t *testing.T) {

	p := Polygon{{X: 0, Y: 0}, {X: 40, Y: 0}, {X: 40, Y: 20}, {X: 0, Y: 20}}

	if got := p.ArcLength(); got != 120 {
		t.Errorf("expected perimeter 120, got %f", got)
	}

	if got := (Polygon{{X: 5, Y: 5}}).ArcLength(); got != 0 {
		t.Errorf("expected zero perimeter, got %f", got)
	}
}

func TestMinAreaRectAxisAligned(t *testing.T) {

	p := Polygon{{X: 0, Y: 0}, {X: 40, Y: 0}, {X: 40, Y: 20}, {X: 0, Y: 20}}

	r := p.MinAreaRect()

	if math.Abs(float64(r.Width*r.Height)-800) > 1e-3 {
		t.Errorf("expected area 800, got %f", r.Width*r.Height)
	}

	if math.Abs(float64(r.AspectRatio())-2.0) > 1e-3 {
		t.Errorf("expected aspect ratio 2.0, got %f", r.AspectRatio())
	}

	if math.Abs(float64(r.CenterX)-20) > 1e-3 || math.Abs(float64(r.CenterY)-10) > 1e-3 {
		t.Errorf("expected center 20,10, got %f,%f", r.CenterX, r.CenterY)
	}
}

func TestMinAreaRectRotated(t *testing.T) {

	// diamond, a square rotated 45 degrees with diagonal 20
	p := Polygon{{X: 10, Y: 0}, {X: 20, Y: 10}, {X: 10, Y: 20}, {X: 0, Y: 10}}

	r := p.MinAreaRect()

	if math.Abs(float64(r.Width*r.Height)-200) > 1e-2 {
		t.Errorf("expected area 200, got %f", r.Width*r.Height)
	}

	if math.Abs(float64(r.AspectRatio())-1.0) > 1e-3 {
		t.Errorf("expected square fit, got aspect %f", r.AspectRatio())
	}

	if math.Abs(float64(r.CenterX)-10) > 1e-3 || math.Abs(float64(r.CenterY)-10) > 1e-3 {
		t.Errorf("expected center 10,10, got %f,%f", r.CenterX, r.CenterY)
	}
}

func TestMinAreaRectDegenerate(t *testing.T) {

	if got := (Polygon{}).MinAreaRect(); got.Width != 0 || got.Height != 0 {
		t.Errorf("expected zero rect for empty polygon, got %v", got)
	}

	// collinear points fall back to the bounding rectangle
	p := Polygon{{X: 0, Y: 5}, {X: 10, Y: 5}}
	r := p.MinAreaRect()

	if r.Width != 11 || r.Height != 1 {
		t.Errorf("expected 11x1 fallback, got %fx%f", r.Width, r.Height)
	}
}
