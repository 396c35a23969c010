package platedetect

import (
	"image"
	"image/color"
	"testing"
)

func TestImageValidate(t *testing.T) {

	tests := []struct {
		name    string
		img     *Image
		wantErr bool
	}{
		{
			name: "valid bgr",
			img:  &Image{Data: make([]uint8, 4*2*3), Width: 4, Height: 2, Channels: 3},
		},
		{
			name: "valid gray",
			img:  &Image{Data: make([]uint8, 4*2), Width: 4, Height: 2, Channels: 1},
		},
		{
			name:    "nil image",
			img:     nil,
			wantErr: true,
		},
		{
			name:    "zero width",
			img:     &Image{Data: nil, Width: 0, Height: 2, Channels: 3},
			wantErr: true,
		},
		{
			name:    "unsupported channels",
			img:     &Image{Data: make([]uint8, 4*2*2), Width: 4, Height: 2, Channels: 2},
			wantErr: true,
		},
		{
			name:    "short buffer",
			img:     &Image{Data: make([]uint8, 5), Width: 4, Height: 2, Channels: 3},
			wantErr: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {

			err := tc.img.Validate()

			if tc.wantErr && err == nil {
				t.Errorf("expected validation error")
			} else if !tc.wantErr && err != nil {
				t.Errorf("unexpected validation error %v", err)
			}
		})
	}
}

func TestNewImageRejectsBadBuffer(t *testing.T) {

	if _, err := NewImage(make([]uint8, 10), 4, 2, 3); err == nil {
		t.Errorf("expected error for mismatched buffer length")
	}
}

func TestFromImage(t *testing.T) {

	src := image.NewRGBA(image.Rect(0, 0, 2, 1))
	src.Set(0, 0, color.RGBA{R: 255, G: 128, B: 64, A: 255})
	src.Set(1, 0, color.RGBA{R: 0, G: 0, B: 0, A: 255})

	img := FromImage(src)

	if img.Width != 2 || img.Height != 1 || img.Channels != ChannelsBGR {
		t.Fatalf("expected 2x1 BGR image, got %dx%d with %d channels",
			img.Width, img.Height, img.Channels)
	}

	// pixel buffer is BGR ordered
	px := img.At(0, 0)

	if px[0] != 64 || px[1] != 128 || px[2] != 255 {
		t.Errorf("expected BGR 64,128,255, got %d,%d,%d", px[0], px[1], px[2])
	}
}

func TestGrayAt(t *testing.T) {

	// BT.601 luminance of pure green
	img := &Image{Data: []uint8{0, 255, 0}, Width: 1, Height: 1, Channels: 3}

	want := uint8(587 * 255 / 1000)

	if got := img.GrayAt(0, 0); got != want {
		t.Errorf("expected luminance %d, got %d", want, got)
	}

	// grayscale images return the pixel value directly
	gray := &Image{Data: []uint8{42}, Width: 1, Height: 1, Channels: 1}

	if got := gray.GrayAt(0, 0); got != 42 {
		t.Errorf("expected luminance 42, got %d", got)
	}
}
