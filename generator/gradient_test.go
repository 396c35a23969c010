package generator

import (
	"context"
	"testing"

	"github.com/plateguard/go-platedetect"
	"github.com/plateguard/go-platedetect/primitive"
)

func TestMagnitudePlane(t *testing.T) {

	// vertical step from black to white at x=5
	gray := &platedetect.Image{
		Data:     make([]uint8, 10*5),
		Width:    10,
		Height:   5,
		Channels: platedetect.ChannelsGray,
	}

	for y := 0; y < 5; y++ {
		for x := 5; x < 10; x++ {
			gray.Data[y*10+x] = 255
		}
	}

	mag := magnitudePlane(gray)

	// central difference spans the step at the two columns beside it
	if mag[2*10+4] != 255 || mag[2*10+5] != 255 {
		t.Errorf("expected magnitude 255 beside the step, got %f and %f",
			mag[2*10+4], mag[2*10+5])
	}

	// flat regions have zero magnitude
	if mag[2*10+2] != 0 || mag[2*10+8] != 0 {
		t.Errorf("expected zero magnitude in flat regions, got %f and %f",
			mag[2*10+2], mag[2*10+8])
	}
}

func TestVarianceScore(t *testing.T) {

	g := NewGradient(GradientDefaultParams())
	ideal := g.Params.IdealVariance

	tests := []struct {
		variance float32
		want     float32
	}{
		{variance: ideal, want: 1.0},
		{variance: ideal / 2, want: 0.5},
		{variance: ideal * 2, want: 0.5},
		{variance: 0, want: 0},
	}

	for _, tc := range tests {
		if got := g.varianceScore(tc.variance); got != tc.want {
			t.Errorf("expected score %f for variance %f, got %f",
				tc.want, tc.variance, got)
		}
	}
}

func TestGradientGenerate(t *testing.T) {

	g := NewGradient(GradientDefaultParams())

	// text like stripes inside a region, flat background elsewhere
	gray := &platedetect.Image{
		Data:     make([]uint8, 200*100),
		Width:    200,
		Height:   100,
		Channels: platedetect.ChannelsGray,
	}

	for y := 40; y < 60; y++ {
		for x := 50; x < 110; x++ {
			if (x/3)%2 == 0 {
				gray.Data[y*200+x] = 255
			}
		}
	}

	// the dilated stroke mask is canned as the connected region box
	morphed := primitive.NewMask(200, 100)

	for y := 40; y < 60; y++ {
		for x := 50; x < 110; x++ {
			morphed.Set(x, y)
		}
	}

	eng := &stubEngine{
		convert: map[primitive.ColorSpace]*platedetect.Image{
			primitive.Gray: gray,
		},
		morphed: morphed,
	}

	candidates, err := g.Generate(context.Background(), blankImage(200, 100), eng)

	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}

	if len(candidates) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(candidates))
	}

	got := candidates[0]

	if got.Strategy != platedetect.StrategyGradient {
		t.Errorf("expected gradient strategy, got %v", got.Strategy)
	}

	if got.Rect != platedetect.NewRect(50, 40, 60, 20) {
		t.Errorf("expected candidate box 50,40,60,20, got %v", got.Rect)
	}

	m, isGrad := got.Metrics.(platedetect.GradientMetrics)

	if !isGrad {
		t.Fatalf("expected gradient metrics, got %T", got.Metrics)
	}

	if !g.Params.MeanBand.Contains(m.MagnitudeMean) {
		t.Errorf("expected in band magnitude mean, got %f", m.MagnitudeMean)
	}

	if m.EdgeDensity <= 0 {
		t.Errorf("expected positive edge density, got %f", m.EdgeDensity)
	}
}

func TestGradientGenerateEmptyOnFlatImage(t *testing.T) {

	g := NewGradient(GradientDefaultParams())

	gray := &platedetect.Image{
		Data:     make([]uint8, 100*50),
		Width:    100,
		Height:   50,
		Channels: platedetect.ChannelsGray,
	}

	eng := &stubEngine{
		convert: map[primitive.ColorSpace]*platedetect.Image{
			primitive.Gray: gray,
		},
	}

	candidates, err := g.Generate(context.Background(), blankImage(100, 50), eng)

	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}

	if len(candidates) != 0 {
		t.Errorf("expected no candidates on a flat image, got %d", len(candidates))
	}
}
