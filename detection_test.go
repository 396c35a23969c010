package platedetect

import (
	"reflect"
	"testing"
)

func TestStrategyString(t *testing.T) {

	tests := []struct {
		strategy Strategy
		want     string
	}{
		{StrategyGeometric, "geometric"},
		{StrategyColor, "color"},
		{StrategyTexture, "texture"},
		{StrategyGradient, "gradient"},
		{Strategy(99), "unknown"},
	}

	for _, tc := range tests {
		if got := tc.strategy.String(); got != tc.want {
			t.Errorf("expected %s, got %s", tc.want, got)
		}
	}
}

func TestDetectionGroupBest(t *testing.T) {

	group := DetectionGroup{
		Members: []ValidatedCandidate{
			{Confidence: 0.6},
			{Confidence: 0.9},
			{Confidence: 0.9},
			{Confidence: 0.7},
		},
	}

	// ties resolve to the earliest member
	if got := group.Best(); got != 1 {
		t.Errorf("expected best member 1, got %d", got)
	}
}

func TestDetectionGroupStrategies(t *testing.T) {

	group := DetectionGroup{
		Members: []ValidatedCandidate{
			{Candidate: Candidate{Strategy: StrategyGradient}},
			{Candidate: Candidate{Strategy: StrategyGeometric}},
			{Candidate: Candidate{Strategy: StrategyGradient}},
			{Candidate: Candidate{Strategy: StrategyTexture}},
		},
	}

	// deduplicated, in declaration order regardless of member order
	want := []Strategy{StrategyGeometric, StrategyTexture, StrategyGradient}

	if got := group.Strategies(); !reflect.DeepEqual(got, want) {
		t.Errorf("expected strategies %v, got %v", want, got)
	}
}

func TestDetectionStrategyTags(t *testing.T) {

	d := Detection{Strategies: []Strategy{StrategyGeometric, StrategyColor}}

	want := []string{"geometric", "color"}

	if got := d.StrategyTags(); !reflect.DeepEqual(got, want) {
		t.Errorf("expected tags %v, got %v", want, got)
	}
}

func TestIDGeneratorSequence(t *testing.T) {

	gen := NewIDGenerator()

	for want := int64(1); want <= 3; want++ {
		if got := gen.GetNext(); got != want {
			t.Errorf("expected id %d, got %d", want, got)
		}
	}
}
