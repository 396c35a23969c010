package evaluate

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/plateguard/go-platedetect"
)

// viaProject is the subset of a VGG Image Annotator project file needed to
// recover rectangle annotations
type viaProject struct {
	ImgMetadata map[string]viaImage `json:"_via_img_metadata"`
}

type viaImage struct {
	Filename string      `json:"filename"`
	Regions  []viaRegion `json:"regions"`
}

type viaRegion struct {
	ShapeAttributes viaShape `json:"shape_attributes"`
}

type viaShape struct {
	Name   string  `json:"name"`
	X      float32 `json:"x"`
	Y      float32 `json:"y"`
	Width  float32 `json:"width"`
	Height float32 `json:"height"`
}

// LoadVIA parses a VGG Image Annotator (VIA) project JSON export into
// ground truth annotations grouped by image filename.  Only rectangle
// regions are kept, other shape types are skipped.  Annotation IDs are the
// filename with a per-image region index suffix
func LoadVIA(r io.Reader) (map[string][]platedetect.Annotation, error) {

	var project viaProject

	if err := json.NewDecoder(r).Decode(&project); err != nil {
		return nil, fmt.Errorf("error decoding VIA project: %w", err)
	}

	if len(project.ImgMetadata) == 0 {
		return nil, fmt.Errorf("VIA project contains no image metadata")
	}

	out := make(map[string][]platedetect.Annotation)

	// image keys are iterated in sorted order so region indices are stable
	// across loads
	keys := make([]string, 0, len(project.ImgMetadata))

	for k := range project.ImgMetadata {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	for _, k := range keys {

		img := project.ImgMetadata[k]

		if img.Filename == "" {
			continue
		}

		for i, region := range img.Regions {

			if region.ShapeAttributes.Name != "rect" {
				continue
			}

			out[img.Filename] = append(out[img.Filename], platedetect.Annotation{
				ID: fmt.Sprintf("%s#%d", img.Filename, i),
				Rect: platedetect.NewRect(
					region.ShapeAttributes.X,
					region.ShapeAttributes.Y,
					region.ShapeAttributes.Width,
					region.ShapeAttributes.Height,
				),
			})
		}
	}

	return out, nil
}
