package primitive

import (
	"image"
	"math"
	"sort"

	"github.com/plateguard/go-platedetect"
)

// ApproxDP approximates the polygon with the Douglas-Peucker algorithm
// keeping only vertices further than epsilon from the simplified outline.
// The polygon is treated as closed
func (p Polygon) ApproxDP(epsilon float64) Polygon {

	if len(p) < 3 || epsilon <= 0 {
		return p
	}

	// split the closed contour at the two points furthest apart so both
	// halves can be simplified as open polylines
	a, b := farthestPair(p)

	if a > b {
		a, b = b, a
	}

	first := simplifyDP(p[a:b+1], epsilon)

	// second half wraps around the end of the slice
	second := make(Polygon, 0, len(p)-b+a+1)
	second = append(second, p[b:]...)
	second = append(second, p[:a+1]...)
	second = simplifyDP(second, epsilon)

	// join halves dropping the duplicated split points
	out := make(Polygon, 0, len(first)+len(second)-2)
	out = append(out, first...)

	if len(second) > 2 {
		out = append(out, second[1:len(second)-1]...)
	}

	return out
}

// ArcLength returns the perimeter of the closed polygon
func (p Polygon) ArcLength() float64 {

	if len(p) < 2 {
		return 0
	}

	length := 0.0

	for i := range p {
		j := (i + 1) % len(p)
		dx := float64(p[j].X - p[i].X)
		dy := float64(p[j].Y - p[i].Y)
		length += math.Sqrt(dx*dx + dy*dy)
	}

	return length
}

// MinAreaRect fits the minimum area rotated rectangle around the polygon
// using rotating calipers over its convex hull
func (p Polygon) MinAreaRect() platedetect.RotatedRect {

	hull := convexHull(p)

	if len(hull) == 0 {
		return platedetect.RotatedRect{}
	}

	if len(hull) <= 2 {
		r := Polygon(hull).BoundingRect()
		return platedetect.RotatedRect{
			CenterX: r.CenterX(),
			CenterY: r.CenterY(),
			Width:   r.Width,
			Height:  r.Height,
		}
	}

	best := platedetect.RotatedRect{}
	bestArea := math.Inf(1)

	// try each hull edge as the rectangle orientation
	for i := range hull {

		j := (i + 1) % len(hull)
		ex := float64(hull[j].X - hull[i].X)
		ey := float64(hull[j].Y - hull[i].Y)
		elen := math.Sqrt(ex*ex + ey*ey)

		if elen == 0 {
			continue
		}

		ex /= elen
		ey /= elen

		// project all hull points onto the edge direction and its normal
		minU, maxU := math.Inf(1), math.Inf(-1)
		minV, maxV := math.Inf(1), math.Inf(-1)

		for _, pt := range hull {

			u := float64(pt.X)*ex + float64(pt.Y)*ey
			v := -float64(pt.X)*ey + float64(pt.Y)*ex

			minU = math.Min(minU, u)
			maxU = math.Max(maxU, u)
			minV = math.Min(minV, v)
			maxV = math.Max(maxV, v)
		}

		w := maxU - minU
		h := maxV - minV
		area := w * h

		if area < bestArea {

			bestArea = area

			// rectangle center back in image coordinates
			cu := (minU + maxU) / 2
			cv := (minV + maxV) / 2

			best = platedetect.RotatedRect{
				CenterX: float32(cu*ex - cv*ey),
				CenterY: float32(cu*ey + cv*ex),
				Width:   float32(w),
				Height:  float32(h),
				Angle:   float32(math.Atan2(ey, ex) * 180.0 / math.Pi),
			}
		}
	}

	return best
}

// simplifyDP runs Douglas-Peucker on an open polyline keeping both endpoints
func simplifyDP(pts Polygon, epsilon float64) Polygon {

	if len(pts) < 3 {
		return append(Polygon{}, pts...)
	}

	maxDist := 0.0
	maxIdx := 0

	for i := 1; i < len(pts)-1; i++ {
		d := perpendicularDistance(pts[i], pts[0], pts[len(pts)-1])
		if d > maxDist {
			maxDist = d
			maxIdx = i
		}
	}

	if maxDist <= epsilon {
		return Polygon{pts[0], pts[len(pts)-1]}
	}

	left := simplifyDP(pts[:maxIdx+1], epsilon)
	right := simplifyDP(pts[maxIdx:], epsilon)

	return append(left[:len(left)-1], right...)
}

// perpendicularDistance returns the distance of point p from the line
// through a and b
func perpendicularDistance(p, a, b image.Point) float64 {

	dx := float64(b.X - a.X)
	dy := float64(b.Y - a.Y)
	length := math.Sqrt(dx*dx + dy*dy)

	if length == 0 {
		ddx := float64(p.X - a.X)
		ddy := float64(p.Y - a.Y)
		return math.Sqrt(ddx*ddx + ddy*ddy)
	}

	return math.Abs(dy*float64(p.X)-dx*float64(p.Y)+
		float64(b.X)*float64(a.Y)-float64(b.Y)*float64(a.X)) / length
}

// farthestPair returns the indices of the two polygon points with the
// greatest separation
func farthestPair(p Polygon) (int, int) {

	a, b := 0, len(p)/2
	maxDist := -1.0

	for i := 0; i < len(p); i++ {
		for j := i + 1; j < len(p); j++ {

			dx := float64(p[j].X - p[i].X)
			dy := float64(p[j].Y - p[i].Y)
			d := dx*dx + dy*dy

			if d > maxDist {
				maxDist = d
				a, b = i, j
			}
		}
	}

	return a, b
}

// convexHull computes the convex hull of the points using the Andrew
// monotone chain algorithm, returned in counter-clockwise order
func convexHull(p Polygon) Polygon {

	if len(p) < 3 {
		return append(Polygon{}, p...)
	}

	pts := append(Polygon{}, p...)

	sort.Slice(pts, func(i, j int) bool {
		if pts[i].X != pts[j].X {
			return pts[i].X < pts[j].X
		}
		return pts[i].Y < pts[j].Y
	})

	cross := func(o, a, b image.Point) int {
		return (a.X-o.X)*(b.Y-o.Y) - (a.Y-o.Y)*(b.X-o.X)
	}

	var hull Polygon

	// lower hull
	for _, pt := range pts {
		for len(hull) >= 2 && cross(hull[len(hull)-2], hull[len(hull)-1], pt) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, pt)
	}

	// upper hull
	lower := len(hull) + 1

	for i := len(pts) - 2; i >= 0; i-- {
		pt := pts[i]
		for len(hull) >= lower && cross(hull[len(hull)-2], hull[len(hull)-1], pt) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, pt)
	}

	return hull[:len(hull)-1]
}
