package generator

import (
	"context"
	"sort"

	"github.com/plateguard/go-platedetect"
	"github.com/plateguard/go-platedetect/primitive"
)

// TextureParams defines the parameters of the texture generator
type TextureParams struct {
	// Angles are the filter orientations in degrees.  Plate characters
	// produce strong near vertical stroke texture so orientations around
	// the horizontal modulation axis dominate
	Angles []float32
	// Frequencies are the spatial frequencies in cycles per pixel tried at
	// each angle, covering plates at different distances
	Frequencies []float32
	// ResponseThreshold is the minimum absolute filter response for a
	// pixel to count as textured
	ResponseThreshold float32
	// MinBlobArea is the minimum character blob area in square pixels
	MinBlobArea int
	// BlobCountBand is the accepted number of character blobs per line
	BlobCountBand platedetect.Band
	// MaxVerticalDrift is the maximum vertical center offset between
	// neighbouring blobs as a fraction of blob height for the blobs to be
	// considered one line
	MaxVerticalDrift float32
	// MaxSpacingFactor is the maximum horizontal gap between neighbouring
	// blobs as a multiple of mean blob width
	MaxSpacingFactor float32
}

// TextureDefaultParams returns an instance of TextureParams configured with
// default values featuring:
//   - Angles: 0, 30, 150 degrees
//   - Frequencies: 0.20, 0.10 cycles per pixel
//   - Blob Count Band: 2 - 8 blobs per line
func TextureDefaultParams() TextureParams {
	return TextureParams{
		Angles:            []float32{0, 30, 150},
		Frequencies:       []float32{0.20, 0.10},
		ResponseThreshold: 45,
		MinBlobArea:       20,
		BlobCountBand:     platedetect.Band{Min: 2, Max: 8},
		MaxVerticalDrift:  0.8,
		MaxSpacingFactor:  2.5,
	}
}

// Texture proposes candidates by finding periodic character like texture
// with oriented band-pass filters and grouping the responding blobs into
// horizontal lines
type Texture struct {
	// Params are the generator configuration parameters
	Params TextureParams
}

// NewTexture returns an instance of the texture generator
func NewTexture(p TextureParams) *Texture {
	return &Texture{Params: p}
}

// Strategy returns the texture strategy tag
func (t *Texture) Strategy() platedetect.Strategy {
	return platedetect.StrategyTexture
}

// Generate applies the oriented filter bank and emits one candidate per
// consistent line of character blobs
func (t *Texture) Generate(ctx context.Context, img *platedetect.Image,
	eng primitive.Engine) ([]platedetect.Candidate, error) {

	var candidates []platedetect.Candidate

	for _, angle := range t.Params.Angles {
		for _, freq := range t.Params.Frequencies {

			if err := ctx.Err(); err != nil {
				return candidates, err
			}

			resp, err := eng.OrientedTextureResponse(img, angle, freq)

			if err != nil {
				// degrade this angle/frequency only
				return candidates, err
			}

			mask := resp.Threshold(t.Params.ResponseThreshold)

			// drop single pixel speckle before blob extraction
			opened, err := eng.Morphology(mask, primitive.Open, 3, 3)

			if err != nil {
				return candidates, err
			}

			blobs := opened.Blobs(t.Params.MinBlobArea)

			for _, line := range t.groupLines(blobs) {
				candidates = append(candidates, t.fromLine(line, resp, img))
			}
		}
	}

	return candidates, nil
}

// groupLines clusters blobs into roughly horizontal lines with plate like
// count and spacing.  Blobs are processed left to right so the grouping is
// deterministic
func (t *Texture) groupLines(blobs []platedetect.Rect) [][]platedetect.Rect {

	if len(blobs) == 0 {
		return nil
	}

	sorted := make([]platedetect.Rect, len(blobs))
	copy(sorted, blobs)

	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].X < sorted[j].X
	})

	used := make([]bool, len(sorted))
	var lines [][]platedetect.Rect

	for i := range sorted {

		if used[i] {
			continue
		}

		line := []platedetect.Rect{sorted[i]}
		used[i] = true

		for j := i + 1; j < len(sorted); j++ {

			if used[j] {
				continue
			}

			last := line[len(line)-1]
			next := sorted[j]

			meanH := (last.Height + next.Height) / 2
			meanW := (last.Width + next.Width) / 2

			drift := next.CenterY() - last.CenterY()

			if drift < 0 {
				drift = -drift
			}

			gap := next.X - last.BRX()

			if drift <= meanH*t.Params.MaxVerticalDrift &&
				gap <= meanW*t.Params.MaxSpacingFactor {
				line = append(line, next)
				used[j] = true
			}
		}

		if t.Params.BlobCountBand.Contains(float32(len(line))) {
			lines = append(lines, line)
		}
	}

	return lines
}

// fromLine builds a candidate from one line of character blobs
func (t *Texture) fromLine(line []platedetect.Rect, resp *primitive.ResponseMap,
	img *platedetect.Image) platedetect.Candidate {

	enclosing := line[0]
	spacingSum := float32(0)

	for i := 1; i < len(line); i++ {
		enclosing = enclosing.Union(line[i])
		spacingSum += line[i].X - line[i-1].BRX()
	}

	meanSpacing := float32(0)

	if len(line) > 1 {
		meanSpacing = spacingSum / float32(len(line)-1)
	}

	// pad the enclosing box slightly, character blobs sit inside the
	// plate border
	pad := enclosing.Height * 0.15
	enclosing = platedetect.NewRect(
		enclosing.X-pad, enclosing.Y-pad,
		enclosing.Width+2*pad, enclosing.Height+2*pad,
	).ClampTo(img.Width, img.Height)

	respMean := resp.MeanIn(enclosing)

	// score by how central the blob count sits in the accepted band
	countScore := triangularScore(float32(len(line)),
		t.Params.BlobCountBand,
		platedetect.Band{
			Min: (t.Params.BlobCountBand.Min + t.Params.BlobCountBand.Max) / 2,
			Max: (t.Params.BlobCountBand.Min + t.Params.BlobCountBand.Max) / 2,
		})

	return platedetect.Candidate{
		Rect:     enclosing,
		Strategy: platedetect.StrategyTexture,
		RawScore: countScore,
		Metrics: platedetect.TextureMetrics{
			BlobCount:    len(line),
			MeanSpacing:  meanSpacing,
			ResponseMean: respMean,
		},
	}
}
