// Package generator contains the four independent candidate generation
// strategies.  Each generator is a pure function over the input image and a
// primitive engine, never observing another generator's output, so their
// candidate sets can be fused as independent evidence.
package generator

import (
	"context"

	"github.com/plateguard/go-platedetect"
	"github.com/plateguard/go-platedetect/primitive"
)

// Generator proposes unvalidated plate candidates from one analysis
// strategy.
//
// Generate may return candidates together with a non-nil error when a
// primitive operation failed partway through.  The candidates computed
// before the failure are still valid evidence, the caller decides whether
// to log the degradation
type Generator interface {
	// Strategy returns the tag identifying this generator
	Strategy() platedetect.Strategy
	// Generate scans the image and returns candidate regions
	Generate(ctx context.Context, img *platedetect.Image,
		eng primitive.Engine) ([]platedetect.Candidate, error)
}

// All returns the four standard generators with default parameters
func All() []Generator {
	return []Generator{
		NewGeometric(GeometricDefaultParams()),
		NewColor(ColorDefaultParams()),
		NewTexture(TextureDefaultParams()),
		NewGradient(GradientDefaultParams()),
	}
}

// triangularScore maps v to [0,1] with 1.0 inside the ideal band, falling
// off linearly to 0 at the outer band edges
func triangularScore(v float32, outer, ideal platedetect.Band) float32 {

	if v < outer.Min || v > outer.Max {
		return 0
	}

	if v >= ideal.Min && v <= ideal.Max {
		return 1
	}

	if v < ideal.Min {
		return (v - outer.Min) / (ideal.Min - outer.Min)
	}

	return (outer.Max - v) / (outer.Max - ideal.Max)
}
