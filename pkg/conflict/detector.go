// ABOUTME: Field-level conflict detection between two document versions
// ABOUTME: Conflict identity is derived deterministically from the version pair

package conflict

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/nainya/revstore/pkg/document"
)

// Type classifies a detected conflict.
type Type string

const (
	TypeContent   Type = "content"
	TypeStructure Type = "structure"
	TypeMetadata  Type = "metadata"
	TypeQuality   Type = "quality"
)

// Conflict is a detected, typed disagreement between two versions.
// Resolution fields stay zero until a resolution step fills them in.
type Conflict struct {
	ID          string     `json:"id"`
	Type        Type       `json:"type"`
	Section     string     `json:"section"`
	Description string     `json:"description"`
	ValueA      string     `json:"valueA"`
	ValueB      string     `json:"valueB"`
	Resolution  string     `json:"resolution,omitempty"`
	ResolvedBy  string     `json:"resolvedBy,omitempty"`
	ResolvedAt  *time.Time `json:"resolvedAt,omitempty"`
}

// Resolve records a resolution on the conflict.
func (c *Conflict) Resolve(text, by string, at time.Time) {
	c.Resolution = text
	c.ResolvedBy = by
	c.ResolvedAt = &at
}

// Resolved reports whether a resolution has been recorded.
func (c *Conflict) Resolved() bool {
	return c.ResolvedAt != nil
}

// DefaultQualityThreshold is the overall-score gap treated as a conflict.
const DefaultQualityThreshold = 0.2

// Detector compares two versions field by field. Every check runs
// independently; all matching conflicts are returned. No section-level
// structural detection is performed: that needs section-aware diffing the
// diff engine does not do.
type Detector struct {
	qualityThreshold float64
}

// NewDetector returns a detector with the default quality threshold.
func NewDetector() *Detector {
	return NewDetectorWithThreshold(DefaultQualityThreshold)
}

// NewDetectorWithThreshold overrides the quality-gap threshold. Non-positive
// values fall back to the default.
func NewDetectorWithThreshold(threshold float64) *Detector {
	if threshold <= 0 {
		threshold = DefaultQualityThreshold
	}
	return &Detector{qualityThreshold: threshold}
}

// Identify runs all checks between a and b and returns every conflict found.
func (d *Detector) Identify(a, b *document.Version) []Conflict {
	conflicts := make([]Conflict, 0, 3)

	if a.Title != b.Title {
		conflicts = append(conflicts, Conflict{
			ID:          deterministicID(a.ID, b.ID, TypeContent, "title"),
			Type:        TypeContent,
			Section:     "title",
			Description: "titles differ between versions",
			ValueA:      a.Title,
			ValueB:      b.Title,
		})
	}

	if a.Metadata.Status != b.Metadata.Status {
		conflicts = append(conflicts, Conflict{
			ID:          deterministicID(a.ID, b.ID, TypeMetadata, "status"),
			Type:        TypeMetadata,
			Section:     "status",
			Description: "statuses differ between versions",
			ValueA:      string(a.Metadata.Status),
			ValueB:      string(b.Metadata.Status),
		})
	}

	gap := a.Quality.Overall - b.Quality.Overall
	if gap < 0 {
		gap = -gap
	}
	if gap > d.qualityThreshold {
		conflicts = append(conflicts, Conflict{
			ID:          deterministicID(a.ID, b.ID, TypeQuality, "overall"),
			Type:        TypeQuality,
			Section:     "overall",
			Description: fmt.Sprintf("overall quality scores differ by %.2f", gap),
			ValueA:      fmt.Sprintf("%.2f", a.Quality.Overall),
			ValueB:      fmt.Sprintf("%.2f", b.Quality.Overall),
		})
	}

	return conflicts
}

// deterministicID hashes the version pair, type, and section so repeated
// comparisons of the same versions yield stable conflict ids.
func deterministicID(idA, idB string, t Type, section string) string {
	h := sha256.New()
	for _, part := range []string{idA, idB, string(t), section} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))[:16]
}
