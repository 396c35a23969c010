package detector

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/plateguard/go-platedetect"
	"github.com/plateguard/go-platedetect/generator"
	"github.com/plateguard/go-platedetect/primitive"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// nopEngine satisfies the primitive contract for tests whose generators never
// touch the engine
type nopEngine struct{}

func (nopEngine) Edges(*platedetect.Image, float32, float32) (*primitive.EdgeMap, error) {
	return &primitive.EdgeMap{}, nil
}

func (nopEngine) Contours(*primitive.EdgeMap) ([]primitive.Polygon, error) {
	return nil, nil
}

func (nopEngine) ConvertColorSpace(img *platedetect.Image,
	space primitive.ColorSpace) (*platedetect.Image, error) {
	return img, nil
}

func (nopEngine) OrientedTextureResponse(*platedetect.Image, float32, float32) (*primitive.ResponseMap, error) {
	return &primitive.ResponseMap{}, nil
}

func (nopEngine) Morphology(mask *primitive.Mask, op primitive.MorphOp,
	kernelW, kernelH int) (*primitive.Mask, error) {
	return mask, nil
}

// stubGen emits a fixed candidate set, optionally with an error or blocking
// until the context expires
type stubGen struct {
	strategy   platedetect.Strategy
	candidates []platedetect.Candidate
	err        error
	block      bool
}

func (s *stubGen) Strategy() platedetect.Strategy {
	return s.strategy
}

func (s *stubGen) Generate(ctx context.Context, img *platedetect.Image,
	eng primitive.Engine) ([]platedetect.Candidate, error) {

	if s.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}

	return s.candidates, s.err
}

// countingObserver tallies pipeline events under a mutex
type countingObserver struct {
	platedetect.NopObserver

	mu       sync.Mutex
	failed   int
	scored   int
	finished int
}

func (o *countingObserver) GeneratorFailed(string, platedetect.Strategy, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.failed++
}

func (o *countingObserver) CandidateScored(string, platedetect.ValidatedCandidate) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.scored++
}

func (o *countingObserver) PipelineFinished(string, int, time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.finished++
}

// pixelImage returns a valid BGR raster
func pixelImage(width, height int) *platedetect.Image {
	return &platedetect.Image{
		Data:     make([]uint8, width*height*3),
		Width:    width,
		Height:   height,
		Channels: platedetect.ChannelsBGR,
	}
}

// plateCandidate builds a candidate with ideal metrics for its strategy
func plateCandidate(strategy platedetect.Strategy, rect platedetect.Rect) platedetect.Candidate {

	c := platedetect.Candidate{Rect: rect, Strategy: strategy, RawScore: 0.9}

	switch strategy {
	case platedetect.StrategyGeometric:
		c.Metrics = platedetect.GeometricMetrics{
			Vertices:    4,
			AspectRatio: rect.AspectRatio(),
			EdgeDensity: 0.345,
		}
	case platedetect.StrategyColor:
		c.Metrics = platedetect.ColorMetrics{
			Profile:  "dark-on-light",
			Coverage: 0.9,
		}
	case platedetect.StrategyTexture:
		c.Metrics = platedetect.TextureMetrics{
			BlobCount:    5,
			MeanSpacing:  6,
			ResponseMean: 80,
		}
	case platedetect.StrategyGradient:
		c.Metrics = platedetect.GradientMetrics{
			MagnitudeMean:     100,
			MagnitudeVariance: 2500,
			EdgeDensity:       0.345,
		}
	}

	return c
}

func newTestDetector(t *testing.T, gens []generator.Generator) *Detector {

	t.Helper()

	d, err := NewDetector(platedetect.DefaultConfig(), nopEngine{})
	require.NoError(t, err)

	d.SetGenerators(gens)

	return d
}

func TestNewDetectorValidatesInput(t *testing.T) {

	cfg := platedetect.DefaultConfig()
	cfg.MaxDetections = 0

	_, err := NewDetector(cfg, nopEngine{})
	assert.Error(t, err)

	_, err = NewDetector(platedetect.DefaultConfig(), nil)
	assert.Error(t, err)
}

// TestDetectSinglePlate covers the central scenario, all four strategies
// agree on one region so the fused detection is confident and carries every
// strategy tag
func TestDetectSinglePlate(t *testing.T) {

	plate := platedetect.NewRect(200, 300, 120, 35)

	d := newTestDetector(t, []generator.Generator{
		&stubGen{strategy: platedetect.StrategyGeometric,
			candidates: []platedetect.Candidate{plateCandidate(platedetect.StrategyGeometric, plate)}},
		&stubGen{strategy: platedetect.StrategyColor,
			candidates: []platedetect.Candidate{plateCandidate(platedetect.StrategyColor, plate)}},
		&stubGen{strategy: platedetect.StrategyTexture,
			candidates: []platedetect.Candidate{plateCandidate(platedetect.StrategyTexture, plate)}},
		&stubGen{strategy: platedetect.StrategyGradient,
			candidates: []platedetect.Candidate{plateCandidate(platedetect.StrategyGradient, plate)}},
	})

	detections, err := d.Detect(context.Background(), pixelImage(640, 480))

	require.NoError(t, err)
	require.Len(t, detections, 1)

	got := detections[0]

	assert.GreaterOrEqual(t, got.Confidence, float32(0.7))
	assert.Len(t, got.Strategies, 4)
	assert.Equal(t, plate, got.Rect)
}

// TestDetectSkyRejected checks regions in the upper image band never survive
// validation however strong their other scores are
func TestDetectSkyRejected(t *testing.T) {

	sky := platedetect.NewRect(200, 20, 120, 35)

	d := newTestDetector(t, []generator.Generator{
		&stubGen{strategy: platedetect.StrategyGeometric,
			candidates: []platedetect.Candidate{plateCandidate(platedetect.StrategyGeometric, sky)}},
		&stubGen{strategy: platedetect.StrategyGradient,
			candidates: []platedetect.Candidate{plateCandidate(platedetect.StrategyGradient, sky)}},
	})

	detections, err := d.Detect(context.Background(), pixelImage(640, 480))

	require.NoError(t, err)
	assert.Empty(t, detections)
}

func TestDetectTwoPlates(t *testing.T) {

	plateA := platedetect.NewRect(100, 300, 120, 35)
	plateB := platedetect.NewRect(400, 360, 120, 35)

	weakColorB := plateCandidate(platedetect.StrategyColor, plateB)
	weakColorB.Metrics = platedetect.ColorMetrics{
		Profile:     "yellow",
		HueVariance: 400,
		SatVariance: 1600,
	}

	weakTextureB := plateCandidate(platedetect.StrategyTexture, plateB)
	weakTextureB.Metrics = platedetect.TextureMetrics{
		BlobCount:    3,
		MeanSpacing:  9,
		ResponseMean: 60,
	}

	d := newTestDetector(t, []generator.Generator{
		&stubGen{strategy: platedetect.StrategyGeometric,
			candidates: []platedetect.Candidate{plateCandidate(platedetect.StrategyGeometric, plateA)}},
		&stubGen{strategy: platedetect.StrategyGradient,
			candidates: []platedetect.Candidate{plateCandidate(platedetect.StrategyGradient, plateA)}},
		&stubGen{strategy: platedetect.StrategyColor,
			candidates: []platedetect.Candidate{weakColorB}},
		&stubGen{strategy: platedetect.StrategyTexture,
			candidates: []platedetect.Candidate{weakTextureB}},
	})

	detections, err := d.Detect(context.Background(), pixelImage(640, 480))

	require.NoError(t, err)
	require.Len(t, detections, 2)

	// sorted by confidence, the corroborated plate first
	assert.Equal(t, plateA, detections[0].Rect)
	assert.Equal(t, plateB, detections[1].Rect)
	assert.Greater(t, detections[0].Confidence, detections[1].Confidence)
}

func TestDetectEmptyImage(t *testing.T) {

	d := newTestDetector(t, []generator.Generator{
		&stubGen{strategy: platedetect.StrategyGeometric},
		&stubGen{strategy: platedetect.StrategyColor},
	})

	// no candidates anywhere is a normal empty result, not an error
	detections, err := d.Detect(context.Background(), pixelImage(640, 480))

	require.NoError(t, err)
	assert.Empty(t, detections)
}

func TestDetectRejectsInvalidImage(t *testing.T) {

	d := newTestDetector(t, []generator.Generator{
		&stubGen{strategy: platedetect.StrategyGeometric},
	})

	_, err := d.Detect(context.Background(), &platedetect.Image{Width: 10, Height: 10, Channels: 2})

	assert.Error(t, err)
}

func TestDetectHonorsMaxDetections(t *testing.T) {

	// three well separated plate regions, cap is two
	rects := []platedetect.Rect{
		platedetect.NewRect(50, 300, 120, 35),
		platedetect.NewRect(260, 360, 120, 35),
		platedetect.NewRect(470, 420, 120, 35),
	}

	var candidates []platedetect.Candidate

	for _, r := range rects {
		candidates = append(candidates, plateCandidate(platedetect.StrategyGradient, r))
	}

	d := newTestDetector(t, []generator.Generator{
		&stubGen{strategy: platedetect.StrategyGradient, candidates: candidates},
	})

	detections, err := d.Detect(context.Background(), pixelImage(640, 480))

	require.NoError(t, err)
	assert.Len(t, detections, platedetect.DefaultConfig().MaxDetections)
}

// TestDetectDeterministic runs the pipeline twice over identical input and
// requires byte identical output despite the parallel generator fan-out
func TestDetectDeterministic(t *testing.T) {

	plateA := platedetect.NewRect(100, 300, 120, 35)
	plateB := platedetect.NewRect(400, 360, 120, 35)

	d := newTestDetector(t, []generator.Generator{
		&stubGen{strategy: platedetect.StrategyGeometric,
			candidates: []platedetect.Candidate{plateCandidate(platedetect.StrategyGeometric, plateA)}},
		&stubGen{strategy: platedetect.StrategyColor,
			candidates: []platedetect.Candidate{plateCandidate(platedetect.StrategyColor, plateB)}},
		&stubGen{strategy: platedetect.StrategyTexture,
			candidates: []platedetect.Candidate{plateCandidate(platedetect.StrategyTexture, plateA)}},
		&stubGen{strategy: platedetect.StrategyGradient,
			candidates: []platedetect.Candidate{plateCandidate(platedetect.StrategyGradient, plateB)}},
	})

	img := pixelImage(640, 480)

	first, err := d.Detect(context.Background(), img)
	require.NoError(t, err)

	second, err := d.Detect(context.Background(), img)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

// TestDetectPartialGeneratorFailure checks one degraded generator neither
// fails the run nor discards the candidates it produced before failing
func TestDetectPartialGeneratorFailure(t *testing.T) {

	plate := platedetect.NewRect(200, 300, 120, 35)

	obs := &countingObserver{}

	d := newTestDetector(t, []generator.Generator{
		&stubGen{strategy: platedetect.StrategyGeometric,
			candidates: []platedetect.Candidate{plateCandidate(platedetect.StrategyGeometric, plate)},
			err:        errors.New("edge backend failure")},
		&stubGen{strategy: platedetect.StrategyGradient,
			candidates: []platedetect.Candidate{plateCandidate(platedetect.StrategyGradient, plate)}},
	})
	d.SetObserver(obs)

	detections, err := d.Detect(context.Background(), pixelImage(640, 480))

	require.NoError(t, err)
	require.Len(t, detections, 1)

	// both strategies contributed despite the failure
	assert.Len(t, detections[0].Strategies, 2)

	obs.mu.Lock()
	defer obs.mu.Unlock()
	assert.Equal(t, 1, obs.failed)
	assert.Equal(t, 2, obs.scored)
	assert.Equal(t, 1, obs.finished)
}

// TestDetectDeadlineDegrades checks an expired deadline abandons unfinished
// generators and returns detections built from the completed ones
func TestDetectDeadlineDegrades(t *testing.T) {

	plate := platedetect.NewRect(200, 300, 120, 35)

	d := newTestDetector(t, []generator.Generator{
		&stubGen{strategy: platedetect.StrategyGradient,
			candidates: []platedetect.Candidate{plateCandidate(platedetect.StrategyGradient, plate)}},
		&stubGen{strategy: platedetect.StrategyTexture, block: true},
	})

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	detections, err := d.Detect(ctx, pixelImage(640, 480))

	require.NoError(t, err)
	assert.Less(t, time.Since(start), 5*time.Second)
	require.Len(t, detections, 1)
	assert.Equal(t, []platedetect.Strategy{platedetect.StrategyGradient},
		detections[0].Strategies)
}
