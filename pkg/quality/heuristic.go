// ABOUTME: Reference scorer built on cheap text statistics
// ABOUTME: Deterministic and total; production callers supply their own Scorer

package quality

import (
	"context"
	"strings"
	"unicode"
)

// HeuristicScorer maps simple text statistics onto the five quality
// dimensions. It exists so the engine can run without an external scoring
// service; the numbers are coarse but stable for identical input.
type HeuristicScorer struct{}

// NewHeuristicScorer returns a ready-to-use heuristic scorer.
func NewHeuristicScorer() *HeuristicScorer {
	return &HeuristicScorer{}
}

// Score implements Scorer. It never returns an error.
func (h *HeuristicScorer) Score(_ context.Context, text string, _ ScoreContext) (Metrics, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return Metrics{Overall: 0}, nil
	}

	words := strings.Fields(trimmed)
	sentences := countSentences(trimmed)
	paragraphs := countParagraphs(trimmed)

	m := Metrics{
		Completeness:  completenessScore(len(words)),
		Clarity:       clarityScore(len(words), sentences),
		Accuracy:      accuracyScore(trimmed),
		Structure:     structureScore(paragraphs, trimmed),
		Accessibility: accessibilityScore(words),
	}
	m.Overall = (m.Completeness + m.Clarity + m.Accuracy + m.Structure + m.Accessibility) / 5
	return Clamp(m), nil
}

// completenessScore rewards longer documents up to ~200 words.
func completenessScore(words int) float64 {
	return clamp01(0.25 + float64(words)/200)
}

// clarityScore peaks near a 17-word average sentence length.
func clarityScore(words, sentences int) float64 {
	if sentences == 0 {
		sentences = 1
	}
	avg := float64(words) / float64(sentences)
	deviation := avg - 17
	if deviation < 0 {
		deviation = -deviation
	}
	return clamp01(1 - deviation/25)
}

// accuracyScore is mostly neutral; concrete figures nudge it upward.
func accuracyScore(text string) float64 {
	score := NeutralScore
	if strings.IndexFunc(text, unicode.IsDigit) >= 0 {
		score += 0.15
	}
	return clamp01(score)
}

// structureScore rewards paragraph breaks and markdown headings.
func structureScore(paragraphs int, text string) float64 {
	score := 0.35 + 0.1*float64(paragraphs)
	for _, line := range strings.Split(text, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "#") {
			score += 0.05
		}
	}
	return clamp01(score)
}

// accessibilityScore penalizes long average word length.
func accessibilityScore(words []string) float64 {
	if len(words) == 0 {
		return 0
	}
	total := 0
	for _, w := range words {
		total += len(w)
	}
	avg := float64(total) / float64(len(words))
	return clamp01(1 - (avg-4)/8)
}

func countSentences(text string) int {
	count := 0
	for _, r := range text {
		if r == '.' || r == '!' || r == '?' {
			count++
		}
	}
	return count
}

func countParagraphs(text string) int {
	count := 0
	for _, block := range strings.Split(text, "\n\n") {
		if strings.TrimSpace(block) != "" {
			count++
		}
	}
	return count
}
