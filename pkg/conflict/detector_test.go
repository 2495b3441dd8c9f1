package conflict

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nainya/revstore/pkg/document"
	"github.com/nainya/revstore/pkg/quality"
)

func version(id, title string, status document.Status, overall float64) *document.Version {
	return &document.Version{
		ID:         id,
		DocumentID: "doc-1",
		Title:      title,
		Quality:    quality.Metrics{Overall: overall},
		Metadata:   document.Metadata{Status: status},
	}
}

func TestIdentifyNoConflicts(t *testing.T) {
	d := NewDetector()
	a := version("v-a", "Policy", document.StatusDraft, 0.7)
	b := version("v-b", "Policy", document.StatusDraft, 0.7)

	assert.Empty(t, d.Identify(a, b))
}

func TestIdentifyTitleConflict(t *testing.T) {
	d := NewDetector()
	a := version("v-a", "Policy", document.StatusDraft, 0.7)
	b := version("v-b", "Policy (rewritten)", document.StatusDraft, 0.7)

	conflicts := d.Identify(a, b)
	require.Len(t, conflicts, 1)
	assert.Equal(t, TypeContent, conflicts[0].Type)
	assert.Equal(t, "title", conflicts[0].Section)
	assert.Equal(t, "Policy", conflicts[0].ValueA)
	assert.Equal(t, "Policy (rewritten)", conflicts[0].ValueB)
}

func TestIdentifyStatusConflict(t *testing.T) {
	d := NewDetector()
	a := version("v-a", "Policy", document.StatusDraft, 0.7)
	b := version("v-b", "Policy", document.StatusApproved, 0.7)

	conflicts := d.Identify(a, b)
	require.Len(t, conflicts, 1)
	assert.Equal(t, TypeMetadata, conflicts[0].Type)
	assert.Equal(t, "status", conflicts[0].Section)
}

func TestIdentifyQualityConflict(t *testing.T) {
	d := NewDetector()

	// Gap of exactly the threshold is not a conflict; it must exceed it.
	a := version("v-a", "Policy", document.StatusDraft, 0.7)
	b := version("v-b", "Policy", document.StatusDraft, 0.5)
	assert.Empty(t, d.Identify(a, b))

	b.Quality.Overall = 0.45
	conflicts := d.Identify(a, b)
	require.Len(t, conflicts, 1)
	assert.Equal(t, TypeQuality, conflicts[0].Type)
	assert.Equal(t, "overall", conflicts[0].Section)
	assert.Equal(t, "0.70", conflicts[0].ValueA)
	assert.Equal(t, "0.45", conflicts[0].ValueB)
}

func TestIdentifyQualityGapIsSymmetric(t *testing.T) {
	d := NewDetector()
	a := version("v-a", "Policy", document.StatusDraft, 0.4)
	b := version("v-b", "Policy", document.StatusDraft, 0.9)

	conflicts := d.Identify(a, b)
	require.Len(t, conflicts, 1)
	assert.Equal(t, TypeQuality, conflicts[0].Type)
}

func TestIdentifyAllChecksIndependent(t *testing.T) {
	d := NewDetector()
	a := version("v-a", "Policy", document.StatusDraft, 0.9)
	b := version("v-b", "Policy v2", document.StatusReview, 0.4)

	conflicts := d.Identify(a, b)
	require.Len(t, conflicts, 3)

	types := make(map[Type]bool, 3)
	for _, c := range conflicts {
		types[c.Type] = true
	}
	assert.True(t, types[TypeContent])
	assert.True(t, types[TypeMetadata])
	assert.True(t, types[TypeQuality])
}

func TestCustomThreshold(t *testing.T) {
	d := NewDetectorWithThreshold(0.4)
	a := version("v-a", "Policy", document.StatusDraft, 0.9)
	b := version("v-b", "Policy", document.StatusDraft, 0.6)

	assert.Empty(t, d.Identify(a, b))

	b.Quality.Overall = 0.4
	assert.Len(t, d.Identify(a, b), 1)
}

func TestDeterministicIDs(t *testing.T) {
	d := NewDetector()
	a := version("v-a", "Policy", document.StatusDraft, 0.9)
	b := version("v-b", "Policy v2", document.StatusDraft, 0.9)

	first := d.Identify(a, b)
	second := d.Identify(a, b)
	require.Len(t, first, 1)
	require.Len(t, second, 1)
	assert.Equal(t, first[0].ID, second[0].ID)
	assert.Len(t, first[0].ID, 16)

	// Order matters: comparing (b, a) is a different pair.
	reversed := d.Identify(b, a)
	require.Len(t, reversed, 1)
	assert.NotEqual(t, first[0].ID, reversed[0].ID)
}

func TestConflictResolve(t *testing.T) {
	c := Conflict{ID: "abc", Type: TypeContent}
	assert.False(t, c.Resolved())

	at := time.Now()
	c.Resolve("kept version A title", "reviewer", at)
	assert.True(t, c.Resolved())
	assert.Equal(t, "kept version A title", c.Resolution)
	assert.Equal(t, "reviewer", c.ResolvedBy)
	require.NotNil(t, c.ResolvedAt)
	assert.Equal(t, at, *c.ResolvedAt)
}
