// Package opencv implements the primitive.Engine contract on top of OpenCV
// via gocv.  This is the production engine.
package opencv

import (
	"fmt"
	"image"

	"github.com/plateguard/go-platedetect"
	"github.com/plateguard/go-platedetect/primitive"
	"gocv.io/x/gocv"
)

// Engine is the OpenCV backed primitive implementation.  It holds no state
// and is safe for concurrent use
type Engine struct{}

// NewEngine returns an OpenCV backed primitive engine
func NewEngine() *Engine {
	return &Engine{}
}

// Edges computes a Canny edge map using the given hysteresis thresholds
func (e *Engine) Edges(img *platedetect.Image, lowThresh,
	highThresh float32) (*primitive.EdgeMap, error) {

	gray, err := grayMat(img)

	if err != nil {
		return nil, err
	}

	defer gray.Close()

	edges := gocv.NewMat()
	defer edges.Close()

	gocv.Canny(gray, &edges, lowThresh, highThresh)

	data, err := edges.DataPtrUint8()

	if err != nil {
		return nil, fmt.Errorf("error getting edge map data pointer: %w", err)
	}

	out := &primitive.EdgeMap{
		Data:   make([]uint8, len(data)),
		Width:  img.Width,
		Height: img.Height,
	}
	copy(out.Data, data)

	return out, nil
}

// Contours extracts the boundary polygons of connected edge regions
func (e *Engine) Contours(edges *primitive.EdgeMap) ([]primitive.Polygon, error) {

	mat, err := gocv.NewMatFromBytes(edges.Height, edges.Width,
		gocv.MatTypeCV8UC1, edges.Data)

	if err != nil {
		return nil, fmt.Errorf("error creating Mat from edge map: %w", err)
	}

	defer mat.Close()

	contours := gocv.FindContours(mat, gocv.RetrievalList, gocv.ChainApproxSimple)
	defer contours.Close()

	out := make([]primitive.Polygon, 0, contours.Size())

	for i := 0; i < contours.Size(); i++ {
		contour := contours.At(i)
		out = append(out, primitive.Polygon(contour.ToPoints()))
	}

	return out, nil
}

// ConvertColorSpace converts the image to the given color space
func (e *Engine) ConvertColorSpace(img *platedetect.Image,
	space primitive.ColorSpace) (*platedetect.Image, error) {

	src, err := bgrMat(img)

	if err != nil {
		return nil, err
	}

	defer src.Close()

	dst := gocv.NewMat()
	defer dst.Close()

	var channels int

	switch space {
	case primitive.Gray:
		gocv.CvtColor(src, &dst, gocv.ColorBGRToGray)
		channels = 1
	case primitive.HSV:
		gocv.CvtColor(src, &dst, gocv.ColorBGRToHSV)
		channels = 3
	case primitive.Lab:
		gocv.CvtColor(src, &dst, gocv.ColorBGRToLab)
		channels = 3
	default:
		return nil, fmt.Errorf("unsupported color space %d", space)
	}

	data, err := dst.DataPtrUint8()

	if err != nil {
		return nil, fmt.Errorf("error getting converted image data pointer: %w", err)
	}

	out := &platedetect.Image{
		Data:     make([]uint8, len(data)),
		Width:    img.Width,
		Height:   img.Height,
		Channels: channels,
	}
	copy(out.Data, data)

	return out, nil
}

// OrientedTextureResponse applies a Gabor band-pass filter at the given
// angle and spatial frequency
func (e *Engine) OrientedTextureResponse(img *platedetect.Image, angleDeg,
	frequency float32) (*primitive.ResponseMap, error) {

	if frequency <= 0 {
		return nil, fmt.Errorf("texture frequency %f must be positive", frequency)
	}

	gray, err := grayMat(img)

	if err != nil {
		return nil, err
	}

	defer gray.Close()

	grayF := gocv.NewMat()
	defer grayF.Close()

	gray.ConvertTo(&grayF, gocv.MatTypeCV32F)

	// wavelength is the inverse of the spatial frequency
	lambda := 1.0 / float64(frequency)
	sigma := 0.56 * lambda
	theta := float64(angleDeg) * 3.14159265358979 / 180.0

	ksize := int(2*sigma)*2 + 3

	kernel := gocv.GetGaborKernel(ksize, sigma, theta, lambda, 0.5, 0,
		gocv.MatTypeCV32F)
	defer kernel.Close()

	resp := gocv.NewMat()
	defer resp.Close()

	gocv.Filter2D(grayF, &resp, gocv.MatTypeCV32F, kernel,
		image.Pt(-1, -1), 0, gocv.BorderDefault)

	data, err := resp.DataPtrFloat32()

	if err != nil {
		return nil, fmt.Errorf("error getting response map data pointer: %w", err)
	}

	out := &primitive.ResponseMap{
		Data:   make([]float32, len(data)),
		Width:  img.Width,
		Height: img.Height,
	}
	copy(out.Data, data)

	return out, nil
}

// Morphology applies a morphological operation with a rectangular kernel
func (e *Engine) Morphology(mask *primitive.Mask, op primitive.MorphOp,
	kernelW, kernelH int) (*primitive.Mask, error) {

	if kernelW < 1 || kernelH < 1 {
		return nil, fmt.Errorf("invalid morphology kernel %dx%d", kernelW, kernelH)
	}

	src, err := gocv.NewMatFromBytes(mask.Height, mask.Width,
		gocv.MatTypeCV8UC1, mask.Data)

	if err != nil {
		return nil, fmt.Errorf("error creating Mat from mask: %w", err)
	}

	defer src.Close()

	var morphType gocv.MorphType

	switch op {
	case primitive.Erode:
		morphType = gocv.MorphErode
	case primitive.Dilate:
		morphType = gocv.MorphDilate
	case primitive.Open:
		morphType = gocv.MorphOpen
	case primitive.Close:
		morphType = gocv.MorphClose
	default:
		return nil, fmt.Errorf("unsupported morphology op %d", op)
	}

	kernel := gocv.GetStructuringElement(gocv.MorphRect, image.Pt(kernelW, kernelH))
	defer kernel.Close()

	dst := gocv.NewMat()
	defer dst.Close()

	gocv.MorphologyEx(src, &dst, morphType, kernel)

	data, err := dst.DataPtrUint8()

	if err != nil {
		return nil, fmt.Errorf("error getting morphology data pointer: %w", err)
	}

	out := primitive.NewMask(mask.Width, mask.Height)
	copy(out.Data, data)

	return out, nil
}

// grayMat converts the raster to a single channel gocv Mat
func grayMat(img *platedetect.Image) (gocv.Mat, error) {

	src, err := bgrMat(img)

	if err != nil {
		return gocv.Mat{}, err
	}

	defer src.Close()

	gray := gocv.NewMat()
	gocv.CvtColor(src, &gray, gocv.ColorBGRToGray)

	return gray, nil
}

// bgrMat converts the raster to a 3 channel BGR gocv Mat
func bgrMat(img *platedetect.Image) (gocv.Mat, error) {

	if err := img.Validate(); err != nil {
		return gocv.Mat{}, err
	}

	var matType gocv.MatType

	switch img.Channels {
	case platedetect.ChannelsGray:
		matType = gocv.MatTypeCV8UC1
	case platedetect.ChannelsBGR:
		matType = gocv.MatTypeCV8UC3
	case platedetect.ChannelsBGRA:
		matType = gocv.MatTypeCV8UC4
	}

	src, err := gocv.NewMatFromBytes(img.Height, img.Width, matType, img.Data)

	if err != nil {
		return gocv.Mat{}, fmt.Errorf("error creating Mat from image: %w", err)
	}

	if img.Channels == platedetect.ChannelsBGR {
		return src, nil
	}

	defer src.Close()

	bgr := gocv.NewMat()

	switch img.Channels {
	case platedetect.ChannelsGray:
		gocv.CvtColor(src, &bgr, gocv.ColorGrayToBGR)
	case platedetect.ChannelsBGRA:
		gocv.CvtColor(src, &bgr, gocv.ColorBGRAToBGR)
	}

	return bgr, nil
}
