package platedetect

import (
	"fmt"
)

// Band is an inclusive range of normalized values
type Band struct {
	Min float32
	Max float32
}

// Contains reports whether v falls inside the band
func (b Band) Contains(v float32) bool {
	return v >= b.Min && v <= b.Max
}

// ScoreWeights are the relative weights of the four validation sub-scores
// used when combining them into a final confidence.  The combination is a
// weighted mean so improving any one sub-score can never lower the final
// confidence
type ScoreWeights struct {
	Position float32
	Geometry float32
	Content  float32
	Color    float32
}

// Sum returns the total of all weights
func (w ScoreWeights) Sum() float32 {
	return w.Position + w.Geometry + w.Content + w.Color
}

// Config holds the pipeline configuration.  It is constructed once per call,
// passed by pointer through every stage, and never mutated mid-pipeline
type Config struct {
	// GroupingIoUThreshold is the minimum Intersection over Union (IoU)
	// between two accepted candidates for both to be collapsed into the
	// same detection group
	GroupingIoUThreshold float32
	// AcceptanceThreshold is the minimum final confidence required for a
	// candidate to survive validation
	AcceptanceThreshold float32
	// MaxDetections is the maximum number of detections returned.  This cap
	// is a policy decision, most images contain at most one or two plates
	// of interest
	MaxDetections int
	// PositionBand is the plausible vertical band for a plate center as a
	// fraction of image height.  Candidates centered above the band (sky)
	// are hard rejected regardless of other scores
	PositionBand Band
	// AspectRatioBand is the accepted width/height range.  The wide default
	// tolerates oblique viewing angles
	AspectRatioBand Band
	// IdealAspectBand is the aspect range scoring 1.0 on the geometry
	// sub-score, falling off linearly towards AspectRatioBand edges
	IdealAspectBand Band
	// MinBoxArea is the minimum candidate area in square pixels
	MinBoxArea float32
	// MaxBoxAreaFrac is the maximum candidate area as a fraction of the
	// image area
	MaxBoxAreaFrac float32
	// CharBlobBand is the accepted count of character like sub blobs inside
	// a candidate box
	CharBlobBand Band
	// EdgeDensityBand is the accepted interior edge density window.  Flat
	// regions fall below it and overly busy regions exceed it
	EdgeDensityBand Band
	// Weights are the sub-score combination weights
	Weights ScoreWeights
	// MergeGeometry enables the area weighted average rectangle when fusing
	// a multi-member group instead of taking the best member's rectangle
	MergeGeometry bool
	// RevalidateSingletons enables a final validation pass over single
	// member groups to catch single generator false positives
	RevalidateSingletons bool
}

// DefaultConfig returns a Config populated with the empirically tuned
// default values:
//   - Grouping IoU Threshold: 0.3
//   - Acceptance Threshold: 0.45
//   - Max Detections: 2
//   - Position Band: 0.15 - 0.92 of image height
//   - Aspect Ratio Band: 1.5 - 8.0 with ideal range 3.0 - 4.0
//   - Character Blob Band: 2 - 8 blobs
func DefaultConfig() *Config {
	return &Config{
		GroupingIoUThreshold: 0.3,
		AcceptanceThreshold:  0.45,
		MaxDetections:        2,
		PositionBand:         Band{Min: 0.15, Max: 0.92},
		AspectRatioBand:      Band{Min: 1.5, Max: 8.0},
		IdealAspectBand:      Band{Min: 3.0, Max: 4.0},
		MinBoxArea:           400,
		MaxBoxAreaFrac:       0.35,
		CharBlobBand:         Band{Min: 2, Max: 8},
		EdgeDensityBand:      Band{Min: 0.04, Max: 0.65},
		Weights: ScoreWeights{
			Position: 1.0,
			Geometry: 1.0,
			Content:  1.0,
			Color:    1.0,
		},
		MergeGeometry:        false,
		RevalidateSingletons: true,
	}
}

// Validate checks the configuration values are in range.  Out of range
// values are rejected with an error, never clamped silently
func (c *Config) Validate() error {

	if c == nil {
		return fmt.Errorf("config is nil")
	}

	if c.GroupingIoUThreshold < 0 || c.GroupingIoUThreshold > 1 {
		return fmt.Errorf("grouping IoU threshold %f out of range [0,1]", c.GroupingIoUThreshold)
	}

	if c.AcceptanceThreshold < 0 || c.AcceptanceThreshold > 1 {
		return fmt.Errorf("acceptance threshold %f out of range [0,1]", c.AcceptanceThreshold)
	}

	if c.MaxDetections < 1 {
		return fmt.Errorf("max detections %d must be at least 1", c.MaxDetections)
	}

	if err := validBand("position band", c.PositionBand, 0, 1); err != nil {
		return err
	}

	if c.AspectRatioBand.Min <= 0 || c.AspectRatioBand.Max < c.AspectRatioBand.Min {
		return fmt.Errorf("aspect ratio band [%f,%f] is invalid",
			c.AspectRatioBand.Min, c.AspectRatioBand.Max)
	}

	if !c.AspectRatioBand.Contains(c.IdealAspectBand.Min) ||
		!c.AspectRatioBand.Contains(c.IdealAspectBand.Max) {
		return fmt.Errorf("ideal aspect band [%f,%f] must lie inside aspect ratio band [%f,%f]",
			c.IdealAspectBand.Min, c.IdealAspectBand.Max,
			c.AspectRatioBand.Min, c.AspectRatioBand.Max)
	}

	if c.MinBoxArea < 0 {
		return fmt.Errorf("min box area %f must not be negative", c.MinBoxArea)
	}

	if c.MaxBoxAreaFrac <= 0 || c.MaxBoxAreaFrac > 1 {
		return fmt.Errorf("max box area fraction %f out of range (0,1]", c.MaxBoxAreaFrac)
	}

	if c.CharBlobBand.Min < 0 || c.CharBlobBand.Max < c.CharBlobBand.Min {
		return fmt.Errorf("character blob band [%f,%f] is invalid",
			c.CharBlobBand.Min, c.CharBlobBand.Max)
	}

	if err := validBand("edge density band", c.EdgeDensityBand, 0, 1); err != nil {
		return err
	}

	if c.Weights.Position < 0 || c.Weights.Geometry < 0 ||
		c.Weights.Content < 0 || c.Weights.Color < 0 {
		return fmt.Errorf("score weights must not be negative")
	}

	if c.Weights.Sum() <= 0 {
		return fmt.Errorf("score weights must not all be zero")
	}

	return nil
}

// validBand checks a band has ordered edges within the given limits
func validBand(name string, b Band, lo, hi float32) error {

	if b.Min < lo || b.Max > hi || b.Max < b.Min {
		return fmt.Errorf("%s [%f,%f] is invalid", name, b.Min, b.Max)
	}

	return nil
}
