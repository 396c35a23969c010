package platedetect

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Observer is the injected debug and telemetry sink.  The pipeline calls it
// from whichever goroutine produced the event, implementations must be safe
// for concurrent use.  The default is NopObserver so the core pipeline has
// no I/O dependency of its own
type Observer interface {
	// GeneratorStarted is emitted when a generator begins scanning
	GeneratorStarted(runID string, strategy Strategy)
	// GeneratorFinished is emitted when a generator returns, with the
	// number of candidates it produced
	GeneratorFinished(runID string, strategy Strategy, candidates int, took time.Duration)
	// GeneratorFailed is emitted when a generator degraded due to a
	// primitive operation failure.  The generator still contributes any
	// candidates computed before the failure
	GeneratorFailed(runID string, strategy Strategy, err error)
	// CandidateScored is emitted once per candidate after validation with
	// its sub-scores and accept/reject decision
	CandidateScored(runID string, c ValidatedCandidate)
	// PipelineFinished is emitted once per run with the final detection
	// count
	PipelineFinished(runID string, detections int, took time.Duration)
}

// NewRunID returns a unique identifier correlating the observer events of a
// single pipeline run
func NewRunID() string {
	return uuid.NewString()
}

// NopObserver discards all events
type NopObserver struct{}

func (NopObserver) GeneratorStarted(string, Strategy)                      {}
func (NopObserver) GeneratorFinished(string, Strategy, int, time.Duration) {}
func (NopObserver) GeneratorFailed(string, Strategy, error)                {}
func (NopObserver) CandidateScored(string, ValidatedCandidate)             {}
func (NopObserver) PipelineFinished(string, int, time.Duration)            {}

// SlogObserver emits structured log records for each pipeline event
type SlogObserver struct {
	// Log is the logger records are written to
	Log *slog.Logger
}

// NewSlogObserver returns an observer writing to the given logger, or the
// default logger when nil
func NewSlogObserver(log *slog.Logger) *SlogObserver {

	if log == nil {
		log = slog.Default()
	}

	return &SlogObserver{Log: log}
}

func (o *SlogObserver) GeneratorStarted(runID string, strategy Strategy) {
	o.Log.Debug("generator started",
		"run", runID,
		"strategy", strategy.String(),
	)
}

func (o *SlogObserver) GeneratorFinished(runID string, strategy Strategy,
	candidates int, took time.Duration) {

	o.Log.Debug("generator finished",
		"run", runID,
		"strategy", strategy.String(),
		"candidates", candidates,
		"took", took,
	)
}

func (o *SlogObserver) GeneratorFailed(runID string, strategy Strategy, err error) {
	o.Log.Warn("generator degraded",
		"run", runID,
		"strategy", strategy.String(),
		"error", err,
	)
}

func (o *SlogObserver) CandidateScored(runID string, c ValidatedCandidate) {

	attrs := []any{
		"run", runID,
		"strategy", c.Strategy.String(),
		"rect", c.Rect,
		"confidence", c.Confidence,
		"accepted", c.Accepted,
	}

	if !c.Accepted {
		attrs = append(attrs, "reason", c.RejectReason)
	}

	for _, check := range c.Checks {
		attrs = append(attrs, "score_"+check.Name, check.Score)
	}

	o.Log.Debug("candidate scored", attrs...)
}

func (o *SlogObserver) PipelineFinished(runID string, detections int,
	took time.Duration) {

	o.Log.Info("pipeline finished",
		"run", runID,
		"detections", detections,
		"took", took,
	)
}
