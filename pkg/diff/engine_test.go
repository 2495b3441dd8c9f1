package diff

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nainya/revstore/pkg/document"
	"github.com/nainya/revstore/pkg/quality"
)

func constScorer(overall float64) quality.Scorer {
	return quality.ScorerFunc(func(context.Context, string, quality.ScoreContext) (quality.Metrics, error) {
		return quality.Metrics{Overall: overall}, nil
	})
}

func oldVersion(content string, overall float64) *document.Version {
	return &document.Version{
		ID:         "v-old",
		DocumentID: "doc-1",
		Version:    "1.0.0",
		Content:    content,
		Quality:    quality.Metrics{Overall: overall},
	}
}

func TestCalculateIdenticalContent(t *testing.T) {
	e := NewEngine(constScorer(0.6))
	old := oldVersion("line one\nline two", 0.6)

	d := e.Calculate(context.Background(), old, "line one\nline two", nil)
	require.NotNil(t, d)
	assert.Zero(t, d.Additions)
	assert.Zero(t, d.Deletions)
	assert.Zero(t, d.Modifications)
	assert.Equal(t, 0.0, d.QualityChange.Improvement)
	assert.Contains(t, d.Summary, "0 total changes")
	assert.Contains(t, d.Summary, "unchanged")
}

func TestCalculateCounts(t *testing.T) {
	cases := []struct {
		name          string
		old           string
		new           string
		additions     int
		deletions     int
		modifications int
	}{
		{"pure addition", "a\nb", "a\nb\nc\nd", 2, 0, 0},
		{"pure deletion", "a\nb\nc", "a", 0, 2, 0},
		{"pure modification", "a\nb\nc", "a\nB\nC", 0, 0, 2},
		{"mixed", "a\nb", "a\nB\nc", 1, 0, 1},
		{"empty old", "", "a\nb", 2, 0, 0},
		{"empty new", "a\nb", "", 0, 2, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := NewEngine(constScorer(0.5))
			d := e.Calculate(context.Background(), oldVersion(tc.old, 0.5), tc.new, nil)
			assert.Equal(t, tc.additions, d.Additions)
			assert.Equal(t, tc.deletions, d.Deletions)
			assert.Equal(t, tc.modifications, d.Modifications)
		})
	}
}

// A positional diff attributes an early insertion to every following line.
func TestCalculatePositionalCascade(t *testing.T) {
	e := NewEngine(constScorer(0.5))
	old := oldVersion("a\nb\nc", 0.5)

	d := e.Calculate(context.Background(), old, "x\na\nb\nc", nil)
	assert.Equal(t, 1, d.Additions)
	assert.Equal(t, 3, d.Modifications)
}

func TestCalculateQualityDelta(t *testing.T) {
	e := NewEngine(constScorer(0.8))
	old := oldVersion("content", 0.6)

	d := e.Calculate(context.Background(), old, "better content", nil)
	assert.Equal(t, 0.6, d.QualityChange.Before.Overall)
	assert.Equal(t, 0.8, d.QualityChange.After.Overall)
	assert.InDelta(t, 0.2, d.QualityChange.Improvement, 1e-9)
	assert.Contains(t, d.Summary, "improved by 0.20")
}

func TestCalculateDegradedQuality(t *testing.T) {
	e := NewEngine(constScorer(0.3))
	old := oldVersion("content", 0.6)

	d := e.Calculate(context.Background(), old, "worse content", nil)
	assert.InDelta(t, -0.3, d.QualityChange.Improvement, 1e-9)
	assert.Contains(t, d.Summary, "degraded by 0.30")
}

// Scorer failure never propagates; the diff degrades to zero counts with the
// old metrics pinned on both sides.
func TestCalculateScorerFailureFallback(t *testing.T) {
	failing := quality.ScorerFunc(func(context.Context, string, quality.ScoreContext) (quality.Metrics, error) {
		return quality.Metrics{}, errors.New("scorer down")
	})
	e := NewEngine(failing)
	old := oldVersion("a\nb", 0.6)

	d := e.Calculate(context.Background(), old, "totally different\ncontent\nhere", nil)
	require.NotNil(t, d)
	assert.Zero(t, d.Additions)
	assert.Zero(t, d.Deletions)
	assert.Zero(t, d.Modifications)
	assert.Equal(t, 0.6, d.QualityChange.Before.Overall)
	assert.Equal(t, 0.6, d.QualityChange.After.Overall)
	assert.Zero(t, d.QualityChange.Improvement)
	assert.Contains(t, d.Summary, "diff unavailable")
}

func TestCalculatePanickingScorerFallback(t *testing.T) {
	panicking := quality.ScorerFunc(func(context.Context, string, quality.ScoreContext) (quality.Metrics, error) {
		panic("scorer bug")
	})
	e := NewEngine(panicking)
	old := oldVersion("a", 0.5)

	assert.NotPanics(t, func() {
		d := e.Calculate(context.Background(), old, "b", nil)
		assert.Contains(t, d.Summary, "diff unavailable")
	})
}
