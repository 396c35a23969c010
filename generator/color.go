package generator

import (
	"context"
	"math"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/plateguard/go-platedetect"
	"github.com/plateguard/go-platedetect/primitive"
)

// ColorProfile describes one known plate coloring as an HSV band plus a
// reference color for perceptual distance checking in Lab space
type ColorProfile struct {
	// Name tags the profile in candidate metrics
	Name string
	// HueBand is the accepted hue range on the OpenCV 0-179 scale.  A band
	// with Min > Max wraps around red
	HueBand platedetect.Band
	// SatBand is the accepted saturation range 0-255
	SatBand platedetect.Band
	// ValBand is the accepted value range 0-255
	ValBand platedetect.Band
	// Reference is the nominal plate color used for the Lab distance check
	Reference colorful.Color
	// MaxLabDistance is the maximum euclidean distance from the reference
	// in scaled Lab space for a pixel to match
	MaxLabDistance float32
}

// ColorParams defines the parameters of the color generator
type ColorParams struct {
	// Profiles is the table of known plate colorings matched against
	Profiles []ColorProfile
	// CloseKernelW and CloseKernelH size the morphological closing kernel
	// used to bridge the gaps between plate characters
	CloseKernelW int
	CloseKernelH int
	// MinBlobArea is the minimum mask blob area in square pixels
	MinBlobArea int
	// AspectBand is a loose width/height prefilter on blob boxes
	AspectBand platedetect.Band
}

// ColorDefaultParams returns an instance of ColorParams configured with
// default values covering the common plate colorings:
//   - white plate, dark characters on light background
//   - black plate, light characters on dark background
//   - yellow plate
func ColorDefaultParams() ColorParams {
	return ColorParams{
		Profiles: []ColorProfile{
			{
				Name:           "dark-on-light",
				HueBand:        platedetect.Band{Min: 0, Max: 179},
				SatBand:        platedetect.Band{Min: 0, Max: 60},
				ValBand:        platedetect.Band{Min: 140, Max: 255},
				Reference:      colorful.Color{R: 0.92, G: 0.92, B: 0.92},
				MaxLabDistance: 90,
			},
			{
				Name:           "light-on-dark",
				HueBand:        platedetect.Band{Min: 0, Max: 179},
				SatBand:        platedetect.Band{Min: 0, Max: 90},
				ValBand:        platedetect.Band{Min: 0, Max: 80},
				Reference:      colorful.Color{R: 0.08, G: 0.08, B: 0.08},
				MaxLabDistance: 90,
			},
			{
				Name:           "yellow",
				HueBand:        platedetect.Band{Min: 10, Max: 35},
				SatBand:        platedetect.Band{Min: 90, Max: 255},
				ValBand:        platedetect.Band{Min: 100, Max: 255},
				Reference:      colorful.Color{R: 0.95, G: 0.78, B: 0.12},
				MaxLabDistance: 80,
			},
		},
		CloseKernelW: 9,
		CloseKernelH: 3,
		MinBlobArea:  300,
		AspectBand:   platedetect.Band{Min: 1.2, Max: 10.0},
	}
}

// Color proposes candidates by matching pixels against known plate color
// profiles and extracting the connected regions of each profile mask
type Color struct {
	// Params are the generator configuration parameters
	Params ColorParams
}

// NewColor returns an instance of the color generator
func NewColor(p ColorParams) *Color {
	return &Color{Params: p}
}

// Strategy returns the color strategy tag
func (c *Color) Strategy() platedetect.Strategy {
	return platedetect.StrategyColor
}

// Generate converts the image to HSV and Lab, builds a binary mask per
// color profile, closes character gaps and emits the resulting blob boxes
func (c *Color) Generate(ctx context.Context, img *platedetect.Image,
	eng primitive.Engine) ([]platedetect.Candidate, error) {

	hsv, err := eng.ConvertColorSpace(img, primitive.HSV)

	if err != nil {
		return nil, err
	}

	lab, err := eng.ConvertColorSpace(img, primitive.Lab)

	if err != nil {
		return nil, err
	}

	var candidates []platedetect.Candidate

	for _, profile := range c.Params.Profiles {

		if err := ctx.Err(); err != nil {
			return candidates, err
		}

		mask := c.profileMask(hsv, lab, profile)

		closed, err := eng.Morphology(mask, primitive.Close,
			c.Params.CloseKernelW, c.Params.CloseKernelH)

		if err != nil {
			// degrade this profile only
			return candidates, err
		}

		for _, rect := range closed.Blobs(c.Params.MinBlobArea) {

			if !c.Params.AspectBand.Contains(rect.AspectRatio()) {
				continue
			}

			hueVar, satVar := hueSatVariance(hsv, rect)
			coverage := mask.CoverageIn(rect)

			candidates = append(candidates, platedetect.Candidate{
				Rect:     rect,
				Strategy: platedetect.StrategyColor,
				RawScore: coverage,
				Metrics: platedetect.ColorMetrics{
					Profile:     profile.Name,
					HueVariance: hueVar,
					SatVariance: satVar,
					Coverage:    coverage,
				},
			})
		}
	}

	return candidates, nil
}

// profileMask marks pixels matching the profile in both HSV band terms and
// Lab distance to the reference color
func (c *Color) profileMask(hsv, lab *platedetect.Image,
	profile ColorProfile) *primitive.Mask {

	mask := primitive.NewMask(hsv.Width, hsv.Height)

	// reference in the same scaled Lab space as the converted image
	refL, refA, refB := profile.Reference.Lab()
	refL *= 255
	refA = refA*127 + 128
	refB = refB*127 + 128

	maxDistSq := float64(profile.MaxLabDistance) * float64(profile.MaxLabDistance)

	for y := 0; y < hsv.Height; y++ {
		for x := 0; x < hsv.Width; x++ {

			px := hsv.At(x, y)
			h, s, v := float32(px[0]), float32(px[1]), float32(px[2])

			if !hueMatch(h, profile.HueBand) ||
				!profile.SatBand.Contains(s) || !profile.ValBand.Contains(v) {
				continue
			}

			lpx := lab.At(x, y)
			dL := float64(lpx[0]) - refL
			dA := float64(lpx[1]) - refA
			dB := float64(lpx[2]) - refB

			if dL*dL+dA*dA+dB*dB > maxDistSq {
				continue
			}

			mask.Set(x, y)
		}
	}

	return mask
}

// hueMatch checks a hue value against a band, supporting bands wrapping
// around the red end of the scale
func hueMatch(h float32, band platedetect.Band) bool {

	if band.Min <= band.Max {
		return band.Contains(h)
	}

	return h >= band.Min || h <= band.Max
}

// hueSatVariance returns the variance of hue and saturation inside the box.
// One dominant plate color produces low variance on both channels
func hueSatVariance(hsv *platedetect.Image, rect platedetect.Rect) (float32, float32) {

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
	if x2 > hsv.Width {
		x2 = hsv.Width
	}
	if y2 > hsv.Height {
		y2 = hsv.Height
	}

	n := float64((x2 - x1) * (y2 - y1))

	if n <= 1 {
		return 0, 0
	}

	var sumH, sumH2, sumS, sumS2 float64

	for y := y1; y < y2; y++ {
		for x := x1; x < x2; x++ {

			px := hsv.At(x, y)
			h := float64(px[0])
			s := float64(px[1])

			sumH += h
			sumH2 += h * h
			sumS += s
			sumS2 += s * s
		}
	}

	hueVar := sumH2/n - (sumH/n)*(sumH/n)
	satVar := sumS2/n - (sumS/n)*(sumS/n)

	return float32(math.Max(hueVar, 0)), float32(math.Max(satVar, 0))
}
