package render

import (
	"image/color"

	"github.com/plateguard/go-platedetect"
)

var (
	// strategyColors paint candidate boxes per generator strategy in the
	// highlight mode overlay
	strategyColors = map[platedetect.Strategy]color.RGBA{
		platedetect.StrategyGeometric: {R: 0, G: 194, B: 255, A: 255}, // #00C2FF
		platedetect.StrategyColor:     {R: 255, G: 178, B: 29, A: 255}, // #FFB21D
		platedetect.StrategyTexture:   {R: 203, G: 56, B: 255, A: 255}, // #CB38FF
		platedetect.StrategyGradient:  {R: 72, G: 249, B: 10, A: 255},  // #48F90A
	}

	// detectionColor outlines final fused detections
	detectionColor = color.RGBA{R: 255, G: 56, B: 56, A: 255} // #FF3838

	// rejectColor outlines rejected candidates in highlight mode
	rejectColor = color.RGBA{R: 96, G: 96, B: 96, A: 255} // #606060

	Black = color.RGBA{R: 0, G: 0, B: 0, A: 255}
	White = color.RGBA{R: 255, G: 255, B: 255, A: 255}
)

// StrategyColor returns the overlay color for a generator strategy
func StrategyColor(s platedetect.Strategy) color.RGBA {

	if c, ok := strategyColors[s]; ok {
		return c
	}

	return White
}
