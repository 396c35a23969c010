// Package pure implements the primitive.Engine contract in pure Go so the
// pipeline can run and be tested without an OpenCV installation.  Outputs
// follow the same channel scaling conventions as the OpenCV engine.
package pure

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/plateguard/go-platedetect"
	"github.com/plateguard/go-platedetect/primitive"
)

// Engine is the pure Go primitive implementation.  It holds no state and is
// safe for concurrent use
type Engine struct{}

// NewEngine returns a pure Go primitive engine
func NewEngine() *Engine {
	return &Engine{}
}

// ConvertColorSpace converts the image to the given color space using per
// pixel colorimetric conversion
func (e *Engine) ConvertColorSpace(img *platedetect.Image,
	space primitive.ColorSpace) (*platedetect.Image, error) {

	if err := img.Validate(); err != nil {
		return nil, err
	}

	switch space {
	case primitive.Gray:
		return e.toGray(img), nil
	case primitive.HSV:
		return e.convertPixels(img, func(c colorful.Color) (uint8, uint8, uint8) {
			h, s, v := c.Hsv()
			return uint8(h / 2), uint8(s * 255), uint8(v * 255)
		}), nil
	case primitive.Lab:
		return e.convertPixels(img, func(c colorful.Color) (uint8, uint8, uint8) {
			l, a, b := c.Lab()
			return clamp8(l * 255), clamp8(a*127 + 128), clamp8(b*127 + 128)
		}), nil
	}

	return nil, fmt.Errorf("unsupported color space %d", space)
}

// toGray converts the raster to a single channel luminance image
func (e *Engine) toGray(img *platedetect.Image) *platedetect.Image {

	out := &platedetect.Image{
		Data:     make([]uint8, img.Width*img.Height),
		Width:    img.Width,
		Height:   img.Height,
		Channels: platedetect.ChannelsGray,
	}

	i := 0

	for y := 0; y < img.Height; y++ {
		for x := 0; x < img.Width; x++ {
			out.Data[i] = img.GrayAt(x, y)
			i++
		}
	}

	return out
}

// convertPixels maps every pixel through the given colorimetric conversion
// producing a 3 channel output
func (e *Engine) convertPixels(img *platedetect.Image,
	conv func(colorful.Color) (uint8, uint8, uint8)) *platedetect.Image {

	out := &platedetect.Image{
		Data:     make([]uint8, img.Width*img.Height*3),
		Width:    img.Width,
		Height:   img.Height,
		Channels: 3,
	}

	i := 0

	for y := 0; y < img.Height; y++ {
		for x := 0; x < img.Width; x++ {

			px := img.At(x, y)

			var c colorful.Color

			if img.Channels == platedetect.ChannelsGray {
				v := float64(px[0]) / 255.0
				c = colorful.Color{R: v, G: v, B: v}
			} else {
				// BGR channel order
				c = colorful.Color{
					R: float64(px[2]) / 255.0,
					G: float64(px[1]) / 255.0,
					B: float64(px[0]) / 255.0,
				}
			}

			c0, c1, c2 := conv(c)
			out.Data[i] = c0
			out.Data[i+1] = c1
			out.Data[i+2] = c2
			i += 3
		}
	}

	return out
}

// Morphology applies a morphological operation with a rectangular kernel
func (e *Engine) Morphology(mask *primitive.Mask, op primitive.MorphOp,
	kernelW, kernelH int) (*primitive.Mask, error) {

	if kernelW < 1 || kernelH < 1 {
		return nil, fmt.Errorf("invalid morphology kernel %dx%d", kernelW, kernelH)
	}

	switch op {
	case primitive.Erode:
		return erode(mask, kernelW, kernelH), nil
	case primitive.Dilate:
		return dilate(mask, kernelW, kernelH), nil
	case primitive.Open:
		return dilate(erode(mask, kernelW, kernelH), kernelW, kernelH), nil
	case primitive.Close:
		return erode(dilate(mask, kernelW, kernelH), kernelW, kernelH), nil
	}

	return nil, fmt.Errorf("unsupported morphology op %d", op)
}

// dilate grows set regions by the rectangular kernel
func dilate(m *primitive.Mask, kw, kh int) *primitive.Mask {

	out := primitive.NewMask(m.Width, m.Height)
	rx, ry := kw/2, kh/2

	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {

			if m.Data[y*m.Width+x] == 0 {
				continue
			}

			y1, y2 := maxInt(y-ry, 0), minInt(y+ry, m.Height-1)
			x1, x2 := maxInt(x-rx, 0), minInt(x+rx, m.Width-1)

			for yy := y1; yy <= y2; yy++ {
				for xx := x1; xx <= x2; xx++ {
					out.Data[yy*m.Width+xx] = 255
				}
			}
		}
	}

	return out
}

// erode shrinks set regions by the rectangular kernel
func erode(m *primitive.Mask, kw, kh int) *primitive.Mask {

	out := primitive.NewMask(m.Width, m.Height)
	rx, ry := kw/2, kh/2

	for y := 0; y < m.Height; y++ {
	pixel:
		for x := 0; x < m.Width; x++ {

			for yy := y - ry; yy <= y+ry; yy++ {
				for xx := x - rx; xx <= x+rx; xx++ {

					if yy < 0 || xx < 0 || yy >= m.Height || xx >= m.Width {
						continue pixel
					}

					if m.Data[yy*m.Width+xx] == 0 {
						continue pixel
					}
				}
			}

			out.Data[y*m.Width+x] = 255
		}
	}

	return out
}

// toNRGBA converts the raster to a standard library image for use with the
// imaging and bild packages
func toNRGBA(img *platedetect.Image) *image.NRGBA {

	out := image.NewNRGBA(image.Rect(0, 0, img.Width, img.Height))

	for y := 0; y < img.Height; y++ {
		for x := 0; x < img.Width; x++ {

			px := img.At(x, y)
			i := out.PixOffset(x, y)

			switch img.Channels {
			case platedetect.ChannelsGray:
				out.Pix[i] = px[0]
				out.Pix[i+1] = px[0]
				out.Pix[i+2] = px[0]
			default:
				out.Pix[i] = px[2]
				out.Pix[i+1] = px[1]
				out.Pix[i+2] = px[0]
			}

			out.Pix[i+3] = 255
		}
	}

	return out
}

// grayPlane converts a standard library image to a float32 luminance plane
func grayPlane(src image.Image, width, height int) []float32 {

	gray := imaging.Grayscale(src)
	out := make([]float32, width*height)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			out[y*width+x] = float32(gray.Pix[gray.PixOffset(x, y)])
		}
	}

	return out
}

// clamp8 restricts a float value to the uint8 range
func clamp8(v float64) uint8 {

	if v < 0 {
		return 0
	} else if v > 255 {
		return 255
	}

	return uint8(v)
}

// minInt returns the minimum Int from two values
func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// maxInt returns the maximum Int from two values
func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
