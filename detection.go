package platedetect

// DetectionGroup is a set of accepted candidates whose pairwise IoU linked
// them into one cluster.  Groups partition the accepted candidate set, no
// candidate belongs to two groups, and singleton groups are valid
type DetectionGroup struct {
	// Members are the validated candidates in this group
	Members []ValidatedCandidate
}

// Best returns the index of the highest confidence member.  Ties resolve to
// the earliest member so grouping stays deterministic
func (g *DetectionGroup) Best() int {

	best := 0

	for i := 1; i < len(g.Members); i++ {
		if g.Members[i].Confidence > g.Members[best].Confidence {
			best = i
		}
	}

	return best
}

// Strategies returns the deduplicated list of strategies contributing to the
// group in strategy declaration order
func (g *DetectionGroup) Strategies() []Strategy {

	var seen [4]bool

	for _, m := range g.Members {
		seen[m.Strategy] = true
	}

	out := make([]Strategy, 0, 4)

	for s := StrategyGeometric; s <= StrategyGradient; s++ {
		if seen[s] {
			out = append(out, s)
		}
	}

	return out
}

// Detection is a final fused output region.  Its rectangle lies within image
// bounds and its confidence is the maximum of its group's member confidences
type Detection struct {
	// ID is a unique ID assigned to the detection within a pipeline run
	ID int64
	// Rect is the fused bounding box
	Rect Rect
	// Confidence is the fused confidence score
	Confidence float32
	// Strategies lists the generator strategies that contributed evidence
	Strategies []Strategy
}

// StrategyTags returns the contributing strategies as their string tags for
// the output contract
func (d Detection) StrategyTags() []string {

	tags := make([]string, len(d.Strategies))

	for i, s := range d.Strategies {
		tags[i] = s.String()
	}

	return tags
}

// Annotation is an externally supplied ground truth rectangle used only for
// IoU comparison by the evaluation harness.  It never mutates pipeline state
type Annotation struct {
	// ID identifies the annotation, typically the source image filename
	ID string
	// Rect is the ground truth bounding box
	Rect Rect
}
