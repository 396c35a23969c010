package generator

import (
	"context"
	"math"

	"github.com/plateguard/go-platedetect"
	"github.com/plateguard/go-platedetect/primitive"
	"gonum.org/v1/gonum/stat"
)

// GradientParams defines the parameters of the gradient generator
type GradientParams struct {
	// MagnitudeThreshold is the minimum gradient magnitude for a pixel to
	// count as a stroke edge
	MagnitudeThreshold float32
	// DilateKernelW and DilateKernelH size the dilation kernel used to
	// connect character strokes into one region
	DilateKernelW int
	DilateKernelH int
	// MinBlobArea is the minimum connected region area in square pixels
	MinBlobArea int
	// AspectBand is a loose width/height prefilter on region boxes
	AspectBand platedetect.Band
	// MeanBand is the gradient magnitude mean range indicating text like
	// content.  Near zero mean is sky or flat background
	MeanBand platedetect.Band
	// IdealVariance is the gradient variance scoring 1.0, text has
	// moderate variance where uniform regions have almost none
	IdealVariance float32
}

// GradientDefaultParams returns an instance of GradientParams configured
// with default values
func GradientDefaultParams() GradientParams {
	return GradientParams{
		MagnitudeThreshold: 60,
		DilateKernelW:      11,
		DilateKernelH:      3,
		MinBlobArea:        300,
		AspectBand:         platedetect.Band{Min: 1.2, Max: 10.0},
		MeanBand:           platedetect.Band{Min: 20, Max: 200},
		IdealVariance:      2500,
	}
}

// Gradient proposes candidates from regions of connected high gradient
// strokes whose magnitude statistics look like printed characters
type Gradient struct {
	// Params are the generator configuration parameters
	Params GradientParams
}

// NewGradient returns an instance of the gradient generator
func NewGradient(p GradientParams) *Gradient {
	return &Gradient{Params: p}
}

// Strategy returns the gradient strategy tag
func (g *Gradient) Strategy() platedetect.Strategy {
	return platedetect.StrategyGradient
}

// Generate computes the gradient magnitude plane, connects strokes by
// dilation and scores the resulting region boxes by their magnitude
// statistics
func (g *Gradient) Generate(ctx context.Context, img *platedetect.Image,
	eng primitive.Engine) ([]platedetect.Candidate, error) {

	gray, err := eng.ConvertColorSpace(img, primitive.Gray)

	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	mag := magnitudePlane(gray)

	mask := primitive.NewMask(gray.Width, gray.Height)

	for i, v := range mag {
		if v >= g.Params.MagnitudeThreshold {
			mask.Data[i] = 255
		}
	}

	dilated, err := eng.Morphology(mask, primitive.Dilate,
		g.Params.DilateKernelW, g.Params.DilateKernelH)

	if err != nil {
		return nil, err
	}

	var candidates []platedetect.Candidate

	for _, rect := range dilated.Blobs(g.Params.MinBlobArea) {

		if err := ctx.Err(); err != nil {
			return candidates, err
		}

		if !g.Params.AspectBand.Contains(rect.AspectRatio()) {
			continue
		}

		mean, variance, density := g.boxStats(mag, mask, gray.Width, gray.Height, rect)

		if !g.Params.MeanBand.Contains(mean) {
			// uniform or near zero gradient is sky or background
			continue
		}

		candidates = append(candidates, platedetect.Candidate{
			Rect:     rect,
			Strategy: platedetect.StrategyGradient,
			RawScore: g.varianceScore(variance),
			Metrics: platedetect.GradientMetrics{
				MagnitudeMean:     mean,
				MagnitudeVariance: variance,
				EdgeDensity:       density,
			},
		})
	}

	return candidates, nil
}

// boxStats returns the mean and variance of gradient magnitude and the
// fraction of above threshold pixels inside the rectangle
func (g *Gradient) boxStats(mag []float32, mask *primitive.Mask,
	width, height int, rect platedetect.Rect) (float32, float32, float32) {

	x1 := int(rect.X)
	y1 := int(rect.Y)
	x2 := int(rect.BRX())
	y2 := int(rect.BRY())

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

	total := (x2 - x1) * (y2 - y1)

	if total <= 1 {
		return 0, 0, 0
	}

	samples := make([]float64, 0, total)
	above := 0

	for y := y1; y < y2; y++ {
		for x := x1; x < x2; x++ {

			samples = append(samples, float64(mag[y*width+x]))

			if mask.Data[y*width+x] != 0 {
				above++
			}
		}
	}

	mean, variance := stat.MeanVariance(samples, nil)

	return float32(mean), float32(variance), float32(above) / float32(total)
}

// varianceScore peaks at the ideal variance and falls off as the region
// becomes either uniform or cluttered
func (g *Gradient) varianceScore(variance float32) float32 {

	if g.Params.IdealVariance <= 0 {
		return 0
	}

	ratio := variance / g.Params.IdealVariance

	if ratio <= 0 {
		return 0
	}

	if ratio > 1 {
		ratio = 1 / ratio
	}

	return ratio
}

// magnitudePlane computes the gradient magnitude of a grayscale image with
// central differences
func magnitudePlane(gray *platedetect.Image) []float32 {

	w, h := gray.Width, gray.Height
	out := make([]float32, w*h)

	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {

			gx := float64(gray.Data[y*w+x+1]) - float64(gray.Data[y*w+x-1])
			gy := float64(gray.Data[(y+1)*w+x]) - float64(gray.Data[(y-1)*w+x])

			out[y*w+x] = float32(math.Sqrt(gx*gx + gy*gy))
		}
	}

	return out
}
