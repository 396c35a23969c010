package detector

import (
	"github.com/plateguard/go-platedetect"
)

// groupCandidates partitions the accepted candidates into detection groups
// by single-linkage clustering over the pairwise IoU relation.  Two
// candidates join the same group when their IoU meets the grouping
// threshold, directly or through a chain of other members
func groupCandidates(accepted []platedetect.ValidatedCandidate,
	iouThreshold float32) []platedetect.DetectionGroup {

	if len(accepted) == 0 {
		return nil
	}

	// union-find over candidate indices
	parent := make([]int, len(accepted))

	for i := range parent {
		parent[i] = i
	}

	var find func(int) int

	find = func(i int) int {
		if parent[i] != i {
			parent[i] = find(parent[i])
		}
		return parent[i]
	}

	union := func(a, b int) {
		ra, rb := find(a), find(b)
		if ra != rb {
			// attach the higher root to the lower so grouping order is
			// stable
			if ra < rb {
				parent[rb] = ra
			} else {
				parent[ra] = rb
			}
		}
	}

	for i := 0; i < len(accepted); i++ {
		for j := i + 1; j < len(accepted); j++ {
			if accepted[i].Rect.CalcIoU(accepted[j].Rect) >= iouThreshold {
				union(i, j)
			}
		}
	}

	// collect members per root preserving candidate order
	byRoot := make(map[int]int)
	var groups []platedetect.DetectionGroup

	for i := range accepted {

		root := find(i)
		gi, ok := byRoot[root]

		if !ok {
			gi = len(groups)
			byRoot[root] = gi
			groups = append(groups, platedetect.DetectionGroup{})
		}

		groups[gi].Members = append(groups[gi].Members, accepted[i])
	}

	return groups
}

// fuseGroup collapses a detection group into one detection.  The fused
// confidence is the maximum member confidence, never an average, so a
// confident detection is not diluted by weaker corroborating members
func fuseGroup(cfg *platedetect.Config, img *platedetect.Image,
	group platedetect.DetectionGroup, idGen *platedetect.IDGenerator) platedetect.Detection {

	best := group.Best()
	rect := group.Members[best].Rect

	if cfg.MergeGeometry && len(group.Members) > 1 {
		rect = areaWeightedRect(group.Members)
	}

	return platedetect.Detection{
		ID:         idGen.GetNext(),
		Rect:       rect.ClampTo(img.Width, img.Height),
		Confidence: group.Members[best].Confidence,
		Strategies: group.Strategies(),
	}
}

// areaWeightedRect averages the member rectangles weighted by area to
// reduce localization noise across corroborating candidates
func areaWeightedRect(members []platedetect.ValidatedCandidate) platedetect.Rect {

	var sumW, x, y, w, h float32

	for _, m := range members {

		weight := m.Rect.Area()

		sumW += weight
		x += m.Rect.X * weight
		y += m.Rect.Y * weight
		w += m.Rect.Width * weight
		h += m.Rect.Height * weight
	}

	if sumW == 0 {
		return members[0].Rect
	}

	return platedetect.Rect{
		X:      x / sumW,
		Y:      y / sumW,
		Width:  w / sumW,
		Height: h / sumW,
	}
}

// revalidateSingleton rescores a single member group against the pooled
// metadata of every validated candidate overlapping it, regardless of that
// candidate's own accept decision.  A neutral sub-score is replaced by the
// overlapping strategy's real score for the same criterion, which catches
// single generator false positives that no other strategy corroborates
// favourably.  Returns false when the recomputed confidence falls below the
// acceptance threshold
func revalidateSingleton(cfg *platedetect.Config,
	member platedetect.ValidatedCandidate,
	all []platedetect.ValidatedCandidate) (float32, bool) {

	// start from the member's own checks
	scores := make(map[string]float32, len(member.Checks))
	neutral := make(map[string]bool, len(member.Checks))

	for _, check := range member.Checks {
		scores[check.Name] = check.Score
		neutral[check.Name] = check.Score == neutralScore
	}

	// pool overlapping metadata from other strategies
	var pooled map[string][]float32

	for _, other := range all {

		if other.Strategy == member.Strategy {
			continue
		}

		if member.Rect.CalcIoU(other.Rect) < cfg.GroupingIoUThreshold {
			continue
		}

		for _, check := range other.Checks {

			if !check.Passed || check.Score == neutralScore {
				continue
			}

			if !neutral[check.Name] {
				continue
			}

			if pooled == nil {
				pooled = make(map[string][]float32)
			}

			pooled[check.Name] = append(pooled[check.Name], check.Score)
		}
	}

	for name, vals := range pooled {

		sum := float32(0)

		for _, v := range vals {
			sum += v
		}

		scores[name] = sum / float32(len(vals))
	}

	w := cfg.Weights
	confidence := (scores[checkPosition]*w.Position +
		scores[checkGeometry]*w.Geometry +
		scores[checkContent]*w.Content +
		scores[checkColor]*w.Color) / w.Sum()

	return confidence, confidence >= cfg.AcceptanceThreshold
}
