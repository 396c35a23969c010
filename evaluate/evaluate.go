// Package evaluate compares pipeline detections against externally supplied
// ground truth boxes by IoU.  It is strictly observational, nothing here
// feeds back into the pipeline or mutates the detection set.
package evaluate

import (
	"github.com/plateguard/go-platedetect"
)

// Match pairs one detection with its best overlapping annotation
type Match struct {
	// Detection is the pipeline output being evaluated
	Detection platedetect.Detection
	// AnnotationID is the matched ground truth box, empty when unmatched
	AnnotationID string
	// IoU is the overlap with the matched annotation, 0 when unmatched
	IoU float32
	// Matched is true when IoU reached the match threshold
	Matched bool
}

// Report summarises an evaluation run over one detection set
type Report struct {
	// Matches holds one entry per detection in ranking order
	Matches []Match
	// MissedAnnotations are ground truth boxes no detection matched
	MissedAnnotations []platedetect.Annotation
	// MatchedCount is the number of detections that matched an annotation
	MatchedCount int
	// MeanIoU is the mean overlap across matched detections
	MeanIoU float32
}

// Precision returns the fraction of detections that matched ground truth
func (r *Report) Precision() float32 {

	if len(r.Matches) == 0 {
		return 0
	}

	return float32(r.MatchedCount) / float32(len(r.Matches))
}

// Recall returns the fraction of ground truth boxes found
func (r *Report) Recall() float32 {

	total := len(r.MissedAnnotations) + r.MatchedCount

	if total == 0 {
		return 0
	}

	return float32(r.MatchedCount) / float32(total)
}

// Evaluate computes the best matching annotation for each detection by IoU.
// An annotation matches at most one detection, detections are considered in
// ranking order so the most confident detection claims its annotation first
func Evaluate(detections []platedetect.Detection,
	annotations []platedetect.Annotation, iouThreshold float32) *Report {

	report := &Report{
		Matches: make([]Match, 0, len(detections)),
	}

	claimed := make([]bool, len(annotations))
	iouSum := float32(0)

	for _, det := range detections {

		best := -1
		bestIoU := float32(0)

		for i, ann := range annotations {

			if claimed[i] {
				continue
			}

			iou := det.Rect.CalcIoU(ann.Rect)

			if iou > bestIoU {
				best = i
				bestIoU = iou
			}
		}

		m := Match{Detection: det, IoU: bestIoU}

		if best >= 0 && bestIoU >= iouThreshold {
			claimed[best] = true
			m.AnnotationID = annotations[best].ID
			m.Matched = true
			report.MatchedCount++
			iouSum += bestIoU
		}

		report.Matches = append(report.Matches, m)
	}

	for i, ann := range annotations {
		if !claimed[i] {
			report.MissedAnnotations = append(report.MissedAnnotations, ann)
		}
	}

	if report.MatchedCount > 0 {
		report.MeanIoU = iouSum / float32(report.MatchedCount)
	}

	return report
}
