// ABOUTME: Quality scoring contracts for document content
// ABOUTME: Defines Metrics, the Scorer interface, and degradation defaults

package quality

import (
	"context"
	"fmt"
)

// Metrics holds the five dimension scores plus the aggregate, each in [0,1].
type Metrics struct {
	Completeness  float64 `json:"completeness"`
	Clarity       float64 `json:"clarity"`
	Accuracy      float64 `json:"accuracy"`
	Structure     float64 `json:"structure"`
	Accessibility float64 `json:"accessibility"`
	Overall       float64 `json:"overall"`
}

// ScoreContext carries caller context for a scoring request.
type ScoreContext struct {
	SessionID string
	Domain    string
}

// Scorer scores a text blob. Implementations should degrade internally
// rather than fail; callers still treat any error or panic as Neutral().
type Scorer interface {
	Score(ctx context.Context, text string, sc ScoreContext) (Metrics, error)
}

// NeutralScore is the per-dimension fallback applied when scoring fails.
const NeutralScore = 0.5

// Neutral returns the fallback metrics used when scoring fails or times out.
func Neutral() Metrics {
	return Metrics{
		Completeness:  NeutralScore,
		Clarity:       NeutralScore,
		Accuracy:      NeutralScore,
		Structure:     NeutralScore,
		Accessibility: NeutralScore,
		Overall:       NeutralScore,
	}
}

// Clamp forces every dimension into [0,1].
func Clamp(m Metrics) Metrics {
	m.Completeness = clamp01(m.Completeness)
	m.Clarity = clamp01(m.Clarity)
	m.Accuracy = clamp01(m.Accuracy)
	m.Structure = clamp01(m.Structure)
	m.Accessibility = clamp01(m.Accessibility)
	m.Overall = clamp01(m.Overall)
	return m
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// SafeScore invokes s and converts any error or panic into Neutral().
// The second return value reports whether a real score was obtained.
func SafeScore(ctx context.Context, s Scorer, text string, sc ScoreContext) (m Metrics, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			m, ok = Neutral(), false
		}
	}()

	if s == nil {
		return Neutral(), false
	}

	m, err := s.Score(ctx, text, sc)
	if err != nil {
		return Neutral(), false
	}
	return Clamp(m), true
}

// ScorerFunc adapts a plain function to the Scorer interface.
type ScorerFunc func(ctx context.Context, text string, sc ScoreContext) (Metrics, error)

// Score implements Scorer.
func (f ScorerFunc) Score(ctx context.Context, text string, sc ScoreContext) (Metrics, error) {
	return f(ctx, text, sc)
}

// String returns a compact representation, useful in logs.
func (m Metrics) String() string {
	return fmt.Sprintf("overall=%.2f (comp=%.2f clar=%.2f acc=%.2f struct=%.2f access=%.2f)",
		m.Overall, m.Completeness, m.Clarity, m.Accuracy, m.Structure, m.Accessibility)
}
