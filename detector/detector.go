// Package detector runs the full plate detection pipeline: parallel
// candidate generation, per-candidate validation, overlap grouping, fusion,
// and final ranking.
package detector

import (
	"context"
	"fmt"
	"time"

	"github.com/plateguard/go-platedetect"
	"github.com/plateguard/go-platedetect/generator"
	"github.com/plateguard/go-platedetect/primitive"
)

// Detector fuses the candidate sets of the four generator strategies into a
// ranked list of plate detections.  A Detector is safe for concurrent use,
// every Detect call allocates its own working state
type Detector struct {
	cfg        *platedetect.Config
	engine     primitive.Engine
	generators []generator.Generator
	observer   platedetect.Observer
	metrics    *platedetect.Metrics
}

// NewDetector returns a Detector using the given configuration and
// primitive engine with the four standard generators.  The configuration is
// validated up front, out of range values are an error, never clamped
func NewDetector(cfg *platedetect.Config, eng primitive.Engine) (*Detector, error) {

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	if eng == nil {
		return nil, fmt.Errorf("primitive engine is nil")
	}

	return &Detector{
		cfg:        cfg,
		engine:     eng,
		generators: generator.All(),
		observer:   platedetect.NopObserver{},
	}, nil
}

// SetGenerators replaces the candidate generators, for custom parameters or
// additional candidate sources
func (d *Detector) SetGenerators(gens []generator.Generator) {
	d.generators = gens
}

// SetObserver sets the debug/telemetry sink receiving per-candidate scoring
// events
func (d *Detector) SetObserver(obs platedetect.Observer) {
	if obs == nil {
		obs = platedetect.NopObserver{}
	}
	d.observer = obs
}

// SetMetrics attaches Prometheus instrumentation to the pipeline
func (d *Detector) SetMetrics(m *platedetect.Metrics) {
	d.metrics = m
}

// genResult carries one generator's output across the fan-out barrier
type genResult struct {
	index      int
	candidates []platedetect.Candidate
	err        error
}

// Detect runs the full pipeline over one image and returns the fused
// detections sorted by confidence descending, at most MaxDetections long.
//
// An empty result with a nil error means no plate was found, which is a
// normal outcome.  A non-nil error means the input was malformed and no
// generator ran.  When ctx carries a deadline and it expires mid
// generation, the pipeline degrades to the candidates collected so far
// instead of failing
func (d *Detector) Detect(ctx context.Context, img *platedetect.Image) ([]platedetect.Detection, error) {

	if err := img.Validate(); err != nil {
		return nil, fmt.Errorf("invalid input image: %w", err)
	}

	runID := platedetect.NewRunID()
	start := time.Now()

	// per run so identical inputs yield identical detection IDs
	idGen := platedetect.NewIDGenerator()

	candidates := d.generate(ctx, runID, img)

	// validation is a pure function per candidate, order follows the
	// deterministic generator order
	var accepted []platedetect.ValidatedCandidate
	var all []platedetect.ValidatedCandidate

	for _, c := range candidates {

		v := validate(d.cfg, img, c)
		all = append(all, v)

		d.observer.CandidateScored(runID, v)

		if v.Accepted {
			accepted = append(accepted, v)
			d.metrics.CandidateAccepted(v.Strategy)
		} else {
			d.metrics.CandidateRejected(v.RejectReason)
		}
	}

	// barrier: grouping requires the complete accepted set
	groups := groupCandidates(accepted, d.cfg.GroupingIoUThreshold)

	var detections []platedetect.Detection

	for _, group := range groups {

		if d.cfg.RevalidateSingletons && len(group.Members) == 1 {

			confidence, ok := revalidateSingleton(d.cfg, group.Members[0], all)

			if !ok {
				continue
			}

			group.Members[0].Confidence = confidence
		}

		detections = append(detections, fuseGroup(d.cfg, img, group, idGen))
	}

	detections = rankDetections(d.cfg, detections)

	took := time.Since(start)
	d.observer.PipelineFinished(runID, len(detections), took)
	d.metrics.PipelineFinished(len(detections), took)

	return detections, nil
}

// generate fans the generators out onto goroutines and gathers their
// candidates.  Output order is by generator index then generation order so
// two runs over identical input produce identical candidate sequences
// regardless of goroutine scheduling
func (d *Detector) generate(ctx context.Context, runID string,
	img *platedetect.Image) []platedetect.Candidate {

	results := make(chan genResult, len(d.generators))

	for i, gen := range d.generators {

		d.observer.GeneratorStarted(runID, gen.Strategy())

		go func(index int, gen generator.Generator) {

			genStart := time.Now()
			candidates, err := gen.Generate(ctx, img, d.engine)

			results <- genResult{index: index, candidates: candidates, err: err}

			d.observer.GeneratorFinished(runID, gen.Strategy(),
				len(candidates), time.Since(genStart))
		}(i, gen)
	}

	// gather with a slot per generator so concatenation order is stable
	slots := make([][]platedetect.Candidate, len(d.generators))
	remaining := len(d.generators)

	for remaining > 0 {

		select {

		case res := <-results:

			remaining--

			if res.err != nil {
				// the generator degraded, its partial candidates still
				// count as evidence
				d.observer.GeneratorFailed(runID, d.generators[res.index].Strategy(), res.err)
				d.metrics.GeneratorFailed(d.generators[res.index].Strategy())
			}

			slots[res.index] = res.candidates

		case <-ctx.Done():
			// deadline hit, proceed with whatever completed.  The
			// abandoned goroutines observe ctx themselves and drain into
			// the buffered channel
			remaining = 0
		}
	}

	var out []platedetect.Candidate

	for i, slot := range slots {
		d.metrics.CandidatesGenerated(d.generators[i].Strategy(), len(slot))
		out = append(out, slot...)
	}

	return out
}
