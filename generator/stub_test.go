package generator

import (
	"github.com/plateguard/go-platedetect"
	"github.com/plateguard/go-platedetect/primitive"
)

// stubEngine is a canned primitive engine so generator logic can be tested
// against known planes without a real image backend
type stubEngine struct {
	edges    *primitive.EdgeMap
	contours []primitive.Polygon
	convert  map[primitive.ColorSpace]*platedetect.Image
	response *primitive.ResponseMap
	morphed  *primitive.Mask
	err      error
}

func (s *stubEngine) Edges(img *platedetect.Image, lowThresh,
	highThresh float32) (*primitive.EdgeMap, error) {

	if s.err != nil {
		return nil, s.err
	}

	return s.edges, nil
}

func (s *stubEngine) Contours(edges *primitive.EdgeMap) ([]primitive.Polygon, error) {

	if s.err != nil {
		return nil, s.err
	}

	return s.contours, nil
}

func (s *stubEngine) ConvertColorSpace(img *platedetect.Image,
	space primitive.ColorSpace) (*platedetect.Image, error) {

	if s.err != nil {
		return nil, s.err
	}

	return s.convert[space], nil
}

func (s *stubEngine) OrientedTextureResponse(img *platedetect.Image, angleDeg,
	frequency float32) (*primitive.ResponseMap, error) {

	if s.err != nil {
		return nil, s.err
	}

	return s.response, nil
}

func (s *stubEngine) Morphology(mask *primitive.Mask, op primitive.MorphOp,
	kernelW, kernelH int) (*primitive.Mask, error) {

	if s.err != nil {
		return nil, s.err
	}

	// canned output when provided, otherwise pass the mask through
	if s.morphed != nil {
		return s.morphed, nil
	}

	return mask, nil
}

// blankImage returns a zeroed BGR image of the given size
func blankImage(width, height int) *platedetect.Image {
	return &platedetect.Image{
		Data:     make([]uint8, width*height*3),
		Width:    width,
		Height:   height,
		Channels: platedetect.ChannelsBGR,
	}
}
