package detector

import (
	"sort"

	"github.com/plateguard/go-platedetect"
)

// rankDetections sorts detections by confidence descending, merges near
// duplicate centers the IoU grouping missed, and truncates the result to
// the configured cap
func rankDetections(cfg *platedetect.Config,
	detections []platedetect.Detection) []platedetect.Detection {

	if len(detections) == 0 {
		return nil
	}

	sort.SliceStable(detections, func(i, j int) bool {
		if detections[i].Confidence != detections[j].Confidence {
			return detections[i].Confidence > detections[j].Confidence
		}
		// stable tie-break on creation order
		return detections[i].ID < detections[j].ID
	})

	merged := dedupeByCenter(detections)

	if len(merged) > cfg.MaxDetections {
		merged = merged[:cfg.MaxDetections]
	}

	return merged
}

// dedupeByCenter merges detections whose centers lie closer than half the
// average detection size.  This is a secondary distance based pass,
// independent of the IoU grouping, to catch near miss boxes from highly
// anisotropic aspect ratios that overlap too little to group
func dedupeByCenter(detections []platedetect.Detection) []platedetect.Detection {

	if len(detections) < 2 {
		return detections
	}

	// average detection size as the mean of width/height midpoints
	sizeSum := float32(0)

	for _, d := range detections {
		sizeSum += (d.Rect.Width + d.Rect.Height) / 2
	}

	minDist := sizeSum / float32(len(detections)) / 2

	// input is sorted by confidence, keep the first of each near pair and
	// absorb the weaker one's strategies
	dropped := make([]bool, len(detections))

	for i := 0; i < len(detections); i++ {

		if dropped[i] {
			continue
		}

		for j := i + 1; j < len(detections); j++ {

			if dropped[j] {
				continue
			}

			if detections[i].Rect.CenterDistance(detections[j].Rect) < minDist {
				detections[i].Strategies = mergeStrategies(
					detections[i].Strategies, detections[j].Strategies)
				dropped[j] = true
			}
		}
	}

	out := make([]platedetect.Detection, 0, len(detections))

	for i, d := range detections {
		if !dropped[i] {
			out = append(out, d)
		}
	}

	return out
}

// mergeStrategies unions two strategy lists preserving declaration order
func mergeStrategies(a, b []platedetect.Strategy) []platedetect.Strategy {

	var seen [4]bool

	for _, s := range a {
		seen[s] = true
	}

	for _, s := range b {
		seen[s] = true
	}

	out := make([]platedetect.Strategy, 0, 4)

	for s := platedetect.StrategyGeometric; s <= platedetect.StrategyGradient; s++ {
		if seen[s] {
			out = append(out, s)
		}
	}

	return out
}
