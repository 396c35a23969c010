package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"os"

	"gocv.io/x/gocv"
	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// TTFFont renders overlay labels with a TrueType face instead of the Hershey
// vector fonts.  It is slower than PutText but supports non Latin glyphs in
// plate region labels
type TTFFont struct {
	face font.Face
}

// LoadTTFFont loads a TrueType font file and prepares a face at the given
// point size
func LoadTTFFont(path string, size float64) (*TTFFont, error) {

	fontBytes, err := os.ReadFile(path)

	if err != nil {
		return nil, fmt.Errorf("failed to load font: %w", err)
	}

	f, err := opentype.Parse(fontBytes)

	if err != nil {
		return nil, fmt.Errorf("failed to parse font: %w", err)
	}

	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})

	if err != nil {
		return nil, fmt.Errorf("failed to create font face: %w", err)
	}

	return &TTFFont{face: face}, nil
}

// PutText writes text at the given baseline position by compositing a
// rendered text layer over the image
func (t *TTFFont) PutText(img *gocv.Mat, text string, x, y int,
	clr color.RGBA) error {

	// render the text onto a transparent layer the size of the target
	rgba := image.NewRGBA(image.Rect(0, 0, img.Cols(), img.Rows()))
	draw.Draw(rgba, rgba.Bounds(), image.NewUniform(color.RGBA{}), image.Point{}, draw.Src)

	dr := &font.Drawer{
		Dst:  rgba,
		Src:  image.NewUniform(clr),
		Face: t.face,
		Dot: fixed.Point26_6{
			X: fixed.Int26_6(x * 64),
			Y: fixed.Int26_6(y * 64),
		},
	}
	dr.DrawString(text)

	layer, err := gocv.NewMatFromBytes(rgba.Bounds().Dy(), rgba.Bounds().Dx(),
		gocv.MatTypeCV8UC4, rgba.Pix)

	if layer.Empty() || err != nil {
		return fmt.Errorf("error creating Mat from text layer")
	}

	defer layer.Close()

	gocv.CvtColor(layer, &layer, gocv.ColorRGBAToBGR)
	gocv.AddWeighted(*img, 1.0, layer, 1.0, 0, img)

	return nil
}
