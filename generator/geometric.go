package generator

import (
	"context"
	"image"

	clipper "github.com/ctessum/go.clipper"
	"github.com/plateguard/go-platedetect"
	"github.com/plateguard/go-platedetect/primitive"
)

// EdgeThresholds is one Canny hysteresis threshold pair
type EdgeThresholds struct {
	Low  float32
	High float32
}

// GeometricParams defines the parameters of the geometric generator
type GeometricParams struct {
	// EdgeScales are the edge detection parameter sets tried in turn so a
	// single exposure or contrast level cannot hide the plate outline
	EdgeScales []EdgeThresholds
	// ApproxEpsilonFrac is the polygon approximation tolerance as a
	// fraction of the contour perimeter
	ApproxEpsilonFrac float64
	// VertexBand is the accepted polygon vertex count after approximation.
	// A clean plate outline approximates to 4 vertices, oblique or
	// partially occluded ones to a few more
	VertexBand platedetect.Band
	// AspectBand is the accepted width/height range.  Wide to tolerate
	// oblique viewing angles
	AspectBand platedetect.Band
	// IdealAspectBand is the range scoring 1.0
	IdealAspectBand platedetect.Band
	// UnclipRatio expands the approximated polygon before rectangle
	// fitting to recover outline pixels eaten by edge thinning
	UnclipRatio float32
	// MinArea is the minimum candidate area in square pixels
	MinArea float32
}

// GeometricDefaultParams returns an instance of GeometricParams configured
// with default values featuring:
//   - Edge Scales: (50, 150), (30, 90), (80, 200)
//   - Approximation Epsilon: 0.02 of contour perimeter
//   - Vertex Band: 4 - 8
//   - Aspect Band: 1.5 - 8.0 with ideal range 3.0 - 4.0
//   - Unclip Ratio: 1.5
func GeometricDefaultParams() GeometricParams {
	return GeometricParams{
		EdgeScales: []EdgeThresholds{
			{Low: 50, High: 150},
			{Low: 30, High: 90},
			{Low: 80, High: 200},
		},
		ApproxEpsilonFrac: 0.02,
		VertexBand:        platedetect.Band{Min: 4, Max: 8},
		AspectBand:        platedetect.Band{Min: 1.5, Max: 8.0},
		IdealAspectBand:   platedetect.Band{Min: 3.0, Max: 4.0},
		UnclipRatio:       1.5,
		MinArea:           400,
	}
}

// Geometric proposes candidates by extracting contours from multi-scale
// edge maps and keeping those approximating to plate shaped polygons
type Geometric struct {
	// Params are the generator configuration parameters
	Params GeometricParams
}

// NewGeometric returns an instance of the geometric generator
func NewGeometric(p GeometricParams) *Geometric {
	return &Geometric{Params: p}
}

// Strategy returns the geometric strategy tag
func (g *Geometric) Strategy() platedetect.Strategy {
	return platedetect.StrategyGeometric
}

// Generate runs edge detection at each configured scale, extracts contours
// and emits a candidate for every polygon consistent with a plate outline
func (g *Geometric) Generate(ctx context.Context, img *platedetect.Image,
	eng primitive.Engine) ([]platedetect.Candidate, error) {

	var candidates []platedetect.Candidate

	for _, scale := range g.Params.EdgeScales {

		if err := ctx.Err(); err != nil {
			return candidates, err
		}

		edges, err := eng.Edges(img, scale.Low, scale.High)

		if err != nil {
			// degrade this scale only, keep candidates found so far
			return candidates, err
		}

		contours, err := eng.Contours(edges)

		if err != nil {
			return candidates, err
		}

		for _, contour := range contours {

			c, ok := g.fromContour(contour, edges, img)

			if ok {
				candidates = append(candidates, c)
			}
		}
	}

	return candidates, nil
}

// fromContour approximates a contour to a polygon and fits both rectangle
// variants, emitting a candidate when either fits the plate shape bands
func (g *Geometric) fromContour(contour primitive.Polygon,
	edges *primitive.EdgeMap, img *platedetect.Image) (platedetect.Candidate, bool) {

	if len(contour) < 4 {
		return platedetect.Candidate{}, false
	}

	epsilon := g.Params.ApproxEpsilonFrac * contour.ArcLength()
	poly := contour.ApproxDP(epsilon)

	if !g.Params.VertexBand.Contains(float32(len(poly))) {
		return platedetect.Candidate{}, false
	}

	// expand the polygon before fitting so edge thinning does not shave
	// the plate border off the rectangle
	expanded := g.unclip(poly)

	rect := expanded.BoundingRect().ClampTo(img.Width, img.Height)

	if rect.Area() < g.Params.MinArea {
		return platedetect.Candidate{}, false
	}

	rotated := expanded.MinAreaRect()

	axisAspect := rect.AspectRatio()
	rotAspect := rotated.AspectRatio()

	axisScore := triangularScore(axisAspect, g.Params.AspectBand, g.Params.IdealAspectBand)
	rotScore := triangularScore(rotAspect, g.Params.AspectBand, g.Params.IdealAspectBand)

	if axisScore == 0 && rotScore == 0 {
		return platedetect.Candidate{}, false
	}

	rotatedFit := rotScore > axisScore
	aspect := axisAspect
	score := axisScore

	if rotatedFit {
		aspect = rotAspect
		score = rotScore
	}

	density := edges.DensityIn(rect)

	c := platedetect.Candidate{
		Rect:     rect,
		Rotated:  &rotated,
		Strategy: platedetect.StrategyGeometric,
		RawScore: score,
		Metrics: platedetect.GeometricMetrics{
			Vertices:    len(poly),
			AspectRatio: aspect,
			Angle:       rotated.Angle,
			RotatedFit:  rotatedFit,
			EdgeDensity: density,
		},
	}

	return c, true
}

// unclip offsets the polygon outward by a distance derived from its area
// and perimeter scaled by the unclip ratio
func (g *Geometric) unclip(poly primitive.Polygon) primitive.Polygon {

	perimeter := poly.ArcLength()

	if perimeter == 0 {
		return poly
	}

	// shoelace area
	area := 0.0

	for i := range poly {
		j := (i + 1) % len(poly)
		area += float64(poly[i].X)*float64(poly[j].Y) -
			float64(poly[j].X)*float64(poly[i].Y)
	}

	if area < 0 {
		area = -area
	}

	area /= 2

	distance := area * float64(g.Params.UnclipRatio) / perimeter

	var path clipper.Path

	for _, pt := range poly {
		path = append(path, &clipper.IntPoint{
			X: clipper.CInt(pt.X),
			Y: clipper.CInt(pt.Y),
		})
	}

	co := clipper.NewClipperOffset()
	co.AddPath(path, clipper.JtRound, clipper.EtClosedPolygon)

	solution := co.Execute(distance)

	var out primitive.Polygon

	for _, sol := range solution {
		for _, pt := range sol {
			out = append(out, image.Pt(int(pt.X), int(pt.Y)))
		}
	}

	if len(out) == 0 {
		return poly
	}

	return out
}
