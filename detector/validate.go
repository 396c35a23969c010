package detector

import (
	"github.com/plateguard/go-platedetect"
)

// check names used in CheckResult entries and rejection reasons
const (
	checkPosition = "position"
	checkGeometry = "geometry"
	checkContent  = "content"
	checkColor    = "color"
)

// neutralScore is used for a sub-score whose metrics the candidate's
// strategy does not compute.  Contributing the midpoint keeps the weighted
// combination comparable across strategies without rewarding or punishing
// missing evidence
const neutralScore = 0.5

// validate scores a candidate against the four criteria and produces the
// accept/reject decision.  Rejected candidates keep their failure reason
func validate(cfg *platedetect.Config, img *platedetect.Image,
	c platedetect.Candidate) platedetect.ValidatedCandidate {

	v := platedetect.ValidatedCandidate{Candidate: c}

	position := positionCheck(cfg, img, c)
	geometry := geometryCheck(cfg, img, c)
	content := contentCheck(cfg, c)
	color := colorCheck(c)

	v.Checks = []platedetect.CheckResult{position, geometry, content, color}

	for _, check := range v.Checks {
		if !check.Passed {
			v.RejectReason = check.Name
			return v
		}
	}

	w := cfg.Weights
	v.Confidence = (position.Score*w.Position + geometry.Score*w.Geometry +
		content.Score*w.Content + color.Score*w.Color) / w.Sum()

	if v.Confidence < cfg.AcceptanceThreshold {
		v.RejectReason = "confidence"
		return v
	}

	v.Accepted = true

	return v
}

// positionCheck scores the vertical center of the candidate against the
// plausible plate band.  Centers above the band (sky) are hard rejected
// regardless of the other scores
func positionCheck(cfg *platedetect.Config, img *platedetect.Image,
	c platedetect.Candidate) platedetect.CheckResult {

	relY := c.Rect.CenterY() / float32(img.Height)

	if relY < cfg.PositionBand.Min {
		return platedetect.CheckResult{Name: checkPosition, Passed: false}
	}

	score := float32(1.0)

	if relY > cfg.PositionBand.Max {
		// bottom edge of frame, unusual but not impossible
		score = cfg.PositionBand.Max / relY
	}

	return platedetect.CheckResult{Name: checkPosition, Passed: true, Score: score}
}

// geometryCheck hard rejects candidates outside the configured aspect and
// size bounds, scoring the survivors by how close their aspect ratio is to
// the ideal plate shape
func geometryCheck(cfg *platedetect.Config, img *platedetect.Image,
	c platedetect.Candidate) platedetect.CheckResult {

	aspect := c.Rect.AspectRatio()

	// prefer the rotated rectangle aspect when the generator found it the
	// tighter fit
	if m, ok := c.Metrics.(platedetect.GeometricMetrics); ok && m.RotatedFit {
		aspect = m.AspectRatio
	}

	if !cfg.AspectRatioBand.Contains(aspect) {
		return platedetect.CheckResult{Name: checkGeometry, Passed: false}
	}

	area := c.Rect.Area()
	maxArea := cfg.MaxBoxAreaFrac * float32(img.Width) * float32(img.Height)

	if area < cfg.MinBoxArea || area > maxArea {
		return platedetect.CheckResult{Name: checkGeometry, Passed: false}
	}

	score := triangular(aspect, cfg.AspectRatioBand, cfg.IdealAspectBand)

	return platedetect.CheckResult{Name: checkGeometry, Passed: true, Score: score}
}

// contentCheck validates the character like content of the box.  The
// sub-metrics available depend on the strategy, reading them is an
// exhaustive switch so a strategy gaining or losing a metric is a compile
// time visible change here
func contentCheck(cfg *platedetect.Config,
	c platedetect.Candidate) platedetect.CheckResult {

	var scores []float32

	switch m := c.Metrics.(type) {

	case platedetect.GeometricMetrics:
		if !cfg.EdgeDensityBand.Contains(m.EdgeDensity) {
			return platedetect.CheckResult{Name: checkContent, Passed: false}
		}
		scores = append(scores, densityScore(m.EdgeDensity, cfg.EdgeDensityBand))

	case platedetect.ColorMetrics:
		// the color strategy computes no character content metrics

	case platedetect.TextureMetrics:
		// below 2 blobs is uniform background, above 10 is textured
		// clutter
		if float32(m.BlobCount) < cfg.CharBlobBand.Min || m.BlobCount > 10 {
			return platedetect.CheckResult{Name: checkContent, Passed: false}
		}
		scores = append(scores, blobCountScore(m.BlobCount, cfg.CharBlobBand))

	case platedetect.GradientMetrics:
		if !cfg.EdgeDensityBand.Contains(m.EdgeDensity) {
			return platedetect.CheckResult{Name: checkContent, Passed: false}
		}
		scores = append(scores, densityScore(m.EdgeDensity, cfg.EdgeDensityBand))
	}

	if len(scores) == 0 {
		return platedetect.CheckResult{Name: checkContent, Passed: true, Score: neutralScore}
	}

	sum := float32(0)

	for _, s := range scores {
		sum += s
	}

	return platedetect.CheckResult{
		Name:   checkContent,
		Passed: true,
		Score:  sum / float32(len(scores)),
	}
}

// colorCheck scores color consistency, one dominant plate color inside the
// box scores higher than multi-colored clutter
func colorCheck(c platedetect.Candidate) platedetect.CheckResult {

	switch m := c.Metrics.(type) {

	case platedetect.ColorMetrics:
		// variance of hue and saturation mapped to [0,1], monotone
		// decreasing in both
		hue := 1.0 / (1.0 + m.HueVariance/400)
		sat := 1.0 / (1.0 + m.SatVariance/1600)

		return platedetect.CheckResult{
			Name:   checkColor,
			Passed: true,
			Score:  (hue + sat) / 2,
		}

	case platedetect.GeometricMetrics, platedetect.TextureMetrics,
		platedetect.GradientMetrics:
		// these strategies compute no color metrics
	}

	return platedetect.CheckResult{Name: checkColor, Passed: true, Score: neutralScore}
}

// densityScore maps an in-band edge density to [0,1] peaking at the band
// center
func densityScore(density float32, band platedetect.Band) float32 {

	mid := (band.Min + band.Max) / 2

	return triangular(density, band, platedetect.Band{Min: mid, Max: mid})
}

// blobCountScore maps an accepted blob count to [0,1] peaking at the band
// center
func blobCountScore(count int, band platedetect.Band) float32 {

	mid := (band.Min + band.Max) / 2
	v := float32(count)

	if v > band.Max {
		// tolerated overflow between the band edge and the hard limit
		return 0.25
	}

	return triangular(v, band, platedetect.Band{Min: mid, Max: mid})
}

// triangular maps v to [0,1] with 1.0 inside the ideal band, falling off
// linearly to 0 at the outer band edges
func triangular(v float32, outer, ideal platedetect.Band) float32 {

	if v < outer.Min || v > outer.Max {
		return 0
	}

	if v >= ideal.Min && v <= ideal.Max {
		return 1
	}

	if v < ideal.Min {
		if ideal.Min == outer.Min {
			return 1
		}
		return (v - outer.Min) / (ideal.Min - outer.Min)
	}

	if ideal.Max == outer.Max {
		return 1
	}

	return (outer.Max - v) / (outer.Max - ideal.Max)
}
