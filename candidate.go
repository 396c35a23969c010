package platedetect

// Strategy identifies the analysis method that proposed a candidate
type Strategy int

const (
	// StrategyGeometric proposes candidates from edge maps and contour
	// polygon approximation
	StrategyGeometric Strategy = iota
	// StrategyColor proposes candidates from plate color profile masks
	StrategyColor
	// StrategyTexture proposes candidates from oriented band-pass texture
	// responses
	StrategyTexture
	// StrategyGradient proposes candidates from gradient magnitude analysis
	StrategyGradient
)

// String returns the strategy tag name
func (s Strategy) String() string {

	switch s {
	case StrategyGeometric:
		return "geometric"
	case StrategyColor:
		return "color"
	case StrategyTexture:
		return "texture"
	case StrategyGradient:
		return "gradient"
	}

	return "unknown"
}

// StrategyMetrics is the sealed set of per-strategy sub-metric records.  Each
// generator attaches only the metrics it actually computes and validation
// reads them with an exhaustive type switch, so a missing sub-metric is a
// visible switch case rather than a zero value read out of a map
type StrategyMetrics interface {
	strategyMetrics()
}

// GeometricMetrics are the sub-metrics computed by the geometric generator
type GeometricMetrics struct {
	// Vertices is the polygon vertex count after approximation
	Vertices int
	// AspectRatio of the best fitting rectangle variant
	AspectRatio float32
	// Angle is the rotation angle in degrees of the minimum area rectangle
	Angle float32
	// RotatedFit is true when the rotated rectangle fit the contour tighter
	// than the axis-aligned one
	RotatedFit bool
	// EdgeDensity is the fraction of edge pixels inside the box
	EdgeDensity float32
}

func (GeometricMetrics) strategyMetrics() {}

// ColorMetrics are the sub-metrics computed by the color generator
type ColorMetrics struct {
	// Profile is the name of the matched plate color profile
	Profile string
	// HueVariance is the variance of hue inside the box
	HueVariance float32
	// SatVariance is the variance of saturation inside the box
	SatVariance float32
	// Coverage is the fraction of box pixels matching the profile mask
	Coverage float32
}

func (ColorMetrics) strategyMetrics() {}

// TextureMetrics are the sub-metrics computed by the texture generator
type TextureMetrics struct {
	// BlobCount is the number of character like blobs grouped into the box
	BlobCount int
	// MeanSpacing is the mean horizontal gap between neighbouring blobs in
	// pixels
	MeanSpacing float32
	// ResponseMean is the mean oriented filter response inside the box
	ResponseMean float32
}

func (TextureMetrics) strategyMetrics() {}

// GradientMetrics are the sub-metrics computed by the gradient generator
type GradientMetrics struct {
	// MagnitudeMean is the mean gradient magnitude inside the box
	MagnitudeMean float32
	// MagnitudeVariance is the variance of gradient magnitude inside the box
	MagnitudeVariance float32
	// EdgeDensity is the fraction of above threshold gradient pixels inside
	// the box
	EdgeDensity float32
}

func (GradientMetrics) strategyMetrics() {}

// Candidate is an unvalidated rectangular region proposed by one generator
// strategy.  Candidates are immutable value objects created fresh for each
// pipeline run
type Candidate struct {
	// Rect is the axis-aligned bounding box in source image coordinates
	Rect Rect
	// Rotated is the optional rotated rectangle alternative for perspective
	// skewed plates
	Rotated *RotatedRect
	// Strategy tags the generator that produced this candidate
	Strategy Strategy
	// RawScore is the strategy-local score before validation
	RawScore float32
	// Metrics holds the strategy specific sub-metrics used by validation
	Metrics StrategyMetrics
}

// CheckResult records the outcome of a single validation criterion
type CheckResult struct {
	// Name of the criterion
	Name string
	// Passed is false when the criterion hard rejected the candidate
	Passed bool
	// Score is the criterion sub-score in [0,1]
	Score float32
}

// ValidatedCandidate is a Candidate augmented with its validation outcome.
// Confidence is only meaningful when Accepted is true.  Rejected candidates
// retain their failure reason for observability and are never silently
// dropped before logging
type ValidatedCandidate struct {
	Candidate
	// Confidence is the combined sub-score in [0,1]
	Confidence float32
	// Checks is the ordered list of criteria evaluated, used by the debug
	// overlay highlight mode
	Checks []CheckResult
	// Accepted is true when no hard constraint was violated and Confidence
	// reached the acceptance threshold
	Accepted bool
	// RejectReason names the first failed criterion for rejected candidates
	RejectReason string
}
