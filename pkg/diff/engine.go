// ABOUTME: Positional line diff with quality delta between two content blobs
// ABOUTME: Total over well-formed input; scorer failures degrade to a zero diff

package diff

import (
	"context"
	"fmt"
	"strings"

	"github.com/nainya/revstore/pkg/document"
	"github.com/nainya/revstore/pkg/quality"
)

// Engine computes change-volume summaries between an existing version and a
// new content blob.
//
// The comparison is positional: line i of the old content is compared with
// line i of the new content, extra trailing lines count as additions or
// deletions. Inserting a single line near the start of a large document will
// therefore cascade into modification counts for every later line. That
// tradeoff buys speed and simplicity; a caller needing accurate attribution
// should swap in an LCS-based differ.
type Engine struct {
	scorer quality.Scorer
}

// NewEngine builds a diff engine over the given scorer.
func NewEngine(scorer quality.Scorer) *Engine {
	return &Engine{scorer: scorer}
}

// Calculate diffs old.Content against newContent and re-scores newContent
// for the quality delta. It never fails: scorer errors produce a zero diff
// whose summary notes the degradation.
//
// The caller-supplied changes are threaded through for section attribution
// by future segmentation-aware diffing; this baseline performs none, so
// SectionsChanged stays empty.
func (e *Engine) Calculate(ctx context.Context, old *document.Version, newContent string, changes []document.Change) *document.Diff {
	_ = changes

	after, ok := quality.SafeScore(ctx, e.scorer, newContent, quality.ScoreContext{
		SessionID: old.Metadata.SessionID,
		Domain:    old.Metadata.Domain,
	})
	if !ok {
		return fallbackDiff(old)
	}

	additions, deletions, modifications := countLineChanges(old.Content, newContent)
	improvement := after.Overall - old.Quality.Overall

	return &document.Diff{
		Additions:       additions,
		Deletions:       deletions,
		Modifications:   modifications,
		SectionsChanged: []string{},
		QualityChange: document.QualityChange{
			Before:      old.Quality,
			After:       after,
			Improvement: improvement,
		},
		Summary: summarize(additions, deletions, modifications, improvement),
	}
}

// countLineChanges compares the two blobs position by position.
func countLineChanges(oldContent, newContent string) (additions, deletions, modifications int) {
	oldLines := splitLines(oldContent)
	newLines := splitLines(newContent)

	max := len(oldLines)
	if len(newLines) > max {
		max = len(newLines)
	}

	for i := 0; i < max; i++ {
		switch {
		case i >= len(oldLines):
			additions++
		case i >= len(newLines):
			deletions++
		case oldLines[i] != newLines[i]:
			modifications++
		}
	}
	return additions, deletions, modifications
}

func splitLines(content string) []string {
	if content == "" {
		return nil
	}
	return strings.Split(content, "\n")
}

func summarize(additions, deletions, modifications int, improvement float64) string {
	total := additions + deletions + modifications
	return fmt.Sprintf("%d total changes: %d additions, %d deletions, %d modifications; quality %s by %.2f",
		total, additions, deletions, modifications, qualitativeDescriptor(improvement), abs(improvement))
}

func qualitativeDescriptor(improvement float64) string {
	switch {
	case improvement > 0:
		return "improved"
	case improvement < 0:
		return "degraded"
	default:
		return "unchanged"
	}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// fallbackDiff is the documented degradation: zero counts, quality pinned to
// the old version's metrics, and a summary noting the failure.
func fallbackDiff(old *document.Version) *document.Diff {
	return &document.Diff{
		SectionsChanged: []string{},
		QualityChange: document.QualityChange{
			Before:      old.Quality,
			After:       old.Quality,
			Improvement: 0,
		},
		Summary: "diff unavailable: quality scoring failed, change counts omitted",
	}
}
