package render

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/plateguard/go-platedetect"
	"gocv.io/x/gocv"
)

// DetectionBoxes renders the bounding boxes of the final fused detections
// with their confidence and contributing strategies
func DetectionBoxes(img *gocv.Mat, detections []platedetect.Detection,
	font Font, lineThickness int) {

	for _, det := range detections {

		rect := image.Rect(
			int(det.Rect.X), int(det.Rect.Y),
			int(det.Rect.BRX()), int(det.Rect.BRY()))

		gocv.Rectangle(img, rect, detectionColor, lineThickness)

		text := fmt.Sprintf("plate %.2f [%s]", det.Confidence,
			strings.Join(det.StrategyTags(), ","))

		drawLabel(img, rect, text, font, lineThickness, detectionColor)
	}
}

// CandidateBoxes renders every validated candidate color coded by strategy
// for the highlight mode debug overlay.  Rejected candidates are drawn
// dimmed with their failure reason so a run can be diagnosed from the
// output image alone
func CandidateBoxes(img *gocv.Mat, candidates []platedetect.ValidatedCandidate,
	font Font, lineThickness int) {

	for _, c := range candidates {

		rect := image.Rect(
			int(c.Rect.X), int(c.Rect.Y),
			int(c.Rect.BRX()), int(c.Rect.BRY()))

		useClr := StrategyColor(c.Strategy)
		text := fmt.Sprintf("%s %.2f", c.Strategy, c.Confidence)

		if !c.Accepted {
			useClr = rejectColor
			text = fmt.Sprintf("%s !%s", c.Strategy, c.RejectReason)
		}

		gocv.Rectangle(img, rect, useClr, lineThickness)
		drawLabel(img, rect, text, font, lineThickness, useClr)
	}
}

// drawLabel writes a text label on a filled box above the bounding box so
// it stays readable over busy image content
func drawLabel(img *gocv.Mat, box image.Rectangle, text string, font Font,
	lineThickness int, clr color.RGBA) {

	textSize := gocv.GetTextSize(text, font.Face, font.Scale, font.Thickness)

	// calculate the alignment of the text label
	var centerX int

	switch font.Alignment {
	case Center:
		centerX = (box.Min.X + box.Max.X) / 2

	case Right:
		centerX = box.Max.X - (textSize.X / 2) - font.RightPad + (lineThickness / 2)

	case Left:
		fallthrough
	default:
		centerX = box.Min.X + (textSize.X / 2) + font.LeftPad - (lineThickness / 2)
	}

	labelPosition := image.Pt(centerX-textSize.X/2, box.Min.Y-font.BottomPad)

	bRect := image.Rect(centerX-textSize.X/2-font.LeftPad,
		box.Min.Y-textSize.Y-font.TopPad-font.BottomPad,
		centerX+textSize.X/2+font.RightPad, box.Min.Y)

	// draw box text gets written on
	gocv.Rectangle(img, bRect, clr, -1)

	// draw the label over the box
	gocv.PutTextWithParams(img, text, labelPosition,
		font.Face, font.Scale, font.Color, font.Thickness,
		font.LineType, false)
}
