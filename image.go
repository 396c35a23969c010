package platedetect

import (
	"fmt"
	"image"
)

// Channel counts supported for input rasters
const (
	ChannelsGray = 1
	ChannelsBGR  = 3
	ChannelsBGRA = 4
)

// Image is a decoded raster holding the pixel buffer in row-major order with
// interleaved channels.  Supported layouts are 1 channel grayscale, 3
// channel BGR, and 4 channel BGRA
type Image struct {
	// Data is the pixel buffer of length Width*Height*Channels
	Data []uint8
	// Width is the image width in pixels
	Width int
	// Height is the image height in pixels
	Height int
	// Channels is the number of interleaved channels per pixel
	Channels int
}

// NewImage creates an Image from a raw pixel buffer.  The buffer length must
// equal width*height*channels
func NewImage(data []uint8, width, height, channels int) (*Image, error) {

	img := &Image{
		Data:     data,
		Width:    width,
		Height:   height,
		Channels: channels,
	}

	if err := img.Validate(); err != nil {
		return nil, err
	}

	return img, nil
}

// FromImage converts a standard library image.Image into a 3 channel BGR
// Image
func FromImage(src image.Image) *Image {

	bounds := src.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	dst := &Image{
		Data:     make([]uint8, width*height*ChannelsBGR),
		Width:    width,
		Height:   height,
		Channels: ChannelsBGR,
	}

	i := 0

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := src.At(x, y).RGBA()
			dst.Data[i] = uint8(b >> 8)
			dst.Data[i+1] = uint8(g >> 8)
			dst.Data[i+2] = uint8(r >> 8)
			i += 3
		}
	}

	return dst
}

// Validate checks the raster satisfies the input contract.  A zero sized
// image or unsupported channel count fails fast so the caller can
// distinguish malformed input from an image containing no plates
func (m *Image) Validate() error {

	if m == nil {
		return fmt.Errorf("image is nil")
	}

	if m.Width <= 0 || m.Height <= 0 {
		return fmt.Errorf("image has invalid dimensions %dx%d", m.Width, m.Height)
	}

	switch m.Channels {
	case ChannelsGray, ChannelsBGR, ChannelsBGRA:
		// supported
	default:
		return fmt.Errorf("image has unsupported channel count %d", m.Channels)
	}

	if want := m.Width * m.Height * m.Channels; len(m.Data) != want {
		return fmt.Errorf("image buffer length %d does not match %dx%dx%d",
			len(m.Data), m.Width, m.Height, m.Channels)
	}

	return nil
}

// Bounds returns the image dimensions as a Rect anchored at the origin
func (m *Image) Bounds() Rect {
	return Rect{Width: float32(m.Width), Height: float32(m.Height)}
}

// At returns the channel values of the pixel at x, y.  The returned slice
// aliases the pixel buffer and must not be modified
func (m *Image) At(x, y int) []uint8 {
	i := (y*m.Width + x) * m.Channels
	return m.Data[i : i+m.Channels]
}

// GrayAt returns the luminance of the pixel at x, y using ITU-R BT.601
// weights for color images
func (m *Image) GrayAt(x, y int) uint8 {

	px := m.At(x, y)

	switch m.Channels {
	case ChannelsGray:
		return px[0]
	default:
		// BGR channel order
		return uint8((299*uint32(px[2]) + 587*uint32(px[1]) + 114*uint32(px[0])) / 1000)
	}
}
