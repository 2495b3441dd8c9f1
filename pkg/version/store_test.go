// ABOUTME: Tests for the version store
// ABOUTME: Covers numbering, history ordering, validation, concurrency, and persistence hand-off

package version

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nainya/revstore/pkg/document"
	"github.com/nainya/revstore/pkg/quality"
)

// fixedScorer returns a configured overall score for every call.
type fixedScorer struct {
	overall float64
}

func (f fixedScorer) Score(context.Context, string, quality.ScoreContext) (quality.Metrics, error) {
	return quality.Metrics{
		Completeness:  f.overall,
		Clarity:       f.overall,
		Accuracy:      f.overall,
		Structure:     f.overall,
		Accessibility: f.overall,
		Overall:       f.overall,
	}, nil
}

// memPersister collects persisted versions for assertions.
type memPersister struct {
	mu       sync.Mutex
	versions []*document.Version
	fail     bool
}

func (m *memPersister) PutVersion(v *document.Version) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return errors.New("disk full")
	}
	m.versions = append(m.versions, v)
	return nil
}

func (m *memPersister) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.versions)
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s := NewStore(StoreConfig{Scorer: fixedScorer{overall: 0.7}})
	t.Cleanup(s.Close)
	return s
}

func mustCreate(t *testing.T, s *Store, documentID, content string) *document.Version {
	t.Helper()
	v, err := s.Create(context.Background(), documentID, content, CreateContext{
		Title:  "Security Policy",
		Author: "policy-agent",
	}, CreateOptions{})
	require.NoError(t, err)
	return v
}

func TestFirstVersionIsOneZeroZero(t *testing.T) {
	s := newTestStore(t)

	v := mustCreate(t, s, "doc-1", "Initial content.")
	assert.Equal(t, "1.0.0", v.Version)
	assert.True(t, v.IsRoot())
	assert.Nil(t, v.Diff)
	assert.NotEmpty(t, v.ID)
}

func TestSuccessiveVersionsIncrementPatch(t *testing.T) {
	s := newTestStore(t)

	mustCreate(t, s, "doc-1", "First.")
	v2 := mustCreate(t, s, "doc-1", "Second.")
	v3 := mustCreate(t, s, "doc-1", "Third.")

	assert.Equal(t, "1.0.1", v2.Version)
	assert.Equal(t, "1.0.2", v3.Version)
	require.NotNil(t, v3.Diff)
}

func TestDocumentsNumberedIndependently(t *testing.T) {
	s := newTestStore(t)

	mustCreate(t, s, "doc-a", "A content.")
	va := mustCreate(t, s, "doc-a", "A content, revised.")
	vb := mustCreate(t, s, "doc-b", "B content.")

	assert.Equal(t, "1.0.1", va.Version)
	assert.Equal(t, "1.0.0", vb.Version)
}

func TestCreateValidation(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	cases := []struct {
		name       string
		documentID string
		content    string
		cc         CreateContext
	}{
		{"missing document id", "", "content", CreateContext{Title: "T", Author: "a"}},
		{"missing content", "doc", "", CreateContext{Title: "T", Author: "a"}},
		{"missing title", "doc", "content", CreateContext{Author: "a"}},
		{"missing author", "doc", "content", CreateContext{Title: "T"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := s.Create(ctx, tc.documentID, tc.content, tc.cc, CreateOptions{})
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestCreateDefaults(t *testing.T) {
	s := newTestStore(t)

	v, err := s.Create(context.Background(), "doc-1", "content", CreateContext{
		Title:  "T",
		Author: "someone",
	}, CreateOptions{})
	require.NoError(t, err)

	assert.Equal(t, document.AuthorHuman, v.AuthorType)
	assert.Equal(t, document.StatusDraft, v.Metadata.Status)
}

func TestHistoryNewestFirst(t *testing.T) {
	s := newTestStore(t)

	for i := 0; i < 4; i++ {
		mustCreate(t, s, "doc-1", fmt.Sprintf("Revision %d.", i))
	}

	history := s.History("doc-1")
	require.Len(t, history, 4)
	assert.Equal(t, "1.0.3", history[0].Version)
	assert.Equal(t, "1.0.2", history[1].Version)
	assert.Equal(t, "1.0.1", history[2].Version)
	assert.Equal(t, "1.0.0", history[3].Version)
}

func TestHistoryUnknownDocumentEmpty(t *testing.T) {
	s := newTestStore(t)
	assert.Empty(t, s.History("nope"))
}

func TestLatest(t *testing.T) {
	s := newTestStore(t)

	_, ok := s.Latest("doc-1")
	assert.False(t, ok)

	mustCreate(t, s, "doc-1", "First.")
	mustCreate(t, s, "doc-1", "Second.")

	latest, ok := s.Latest("doc-1")
	require.True(t, ok)
	assert.Equal(t, "1.0.1", latest.Version)
	assert.Equal(t, "Second.", latest.Content)
}

func TestGet(t *testing.T) {
	s := newTestStore(t)

	v := mustCreate(t, s, "doc-1", "Content.")

	got, err := s.Get(v.ID)
	require.NoError(t, err)
	assert.Equal(t, v.ID, got.ID)

	_, err = s.Get("missing-id")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReturnedVersionsAreCopies(t *testing.T) {
	s := newTestStore(t)

	v := mustCreate(t, s, "doc-1", "Content.")
	v.Title = "mutated"
	v.Metadata.Tags = append(v.Metadata.Tags, "mutated")

	stored, err := s.Get(v.ID)
	require.NoError(t, err)
	assert.Equal(t, "Security Policy", stored.Title)
	assert.NotContains(t, stored.Metadata.Tags, "mutated")
}

func TestConcurrentCreatesSameDocument(t *testing.T) {
	s := newTestStore(t)

	const n = 25
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			mustCreate(t, s, "doc-1", fmt.Sprintf("Revision %d.", i))
		}(i)
	}
	wg.Wait()

	history := s.History("doc-1")
	require.Len(t, history, n)

	// Serialized writes mean every version number is distinct and the
	// patch sequence is contiguous from 0 to n-1 newest first.
	seen := make(map[string]bool, n)
	for _, v := range history {
		assert.False(t, seen[v.Version], "duplicate version %s", v.Version)
		seen[v.Version] = true
	}
	assert.Equal(t, fmt.Sprintf("1.0.%d", n-1), history[0].Version)
}

func TestPersisterReceivesVersions(t *testing.T) {
	p := &memPersister{}
	s := NewStore(StoreConfig{Scorer: fixedScorer{overall: 0.7}, Persister: p})

	mustCreate(t, s, "doc-1", "First.")
	mustCreate(t, s, "doc-1", "Second.")
	s.Close() // drains the persist queue

	assert.Equal(t, 2, p.count())
}

func TestPersisterFailureDoesNotAbortCreate(t *testing.T) {
	p := &memPersister{fail: true}
	s := NewStore(StoreConfig{Scorer: fixedScorer{overall: 0.7}, Persister: p})

	v := mustCreate(t, s, "doc-1", "First.")
	s.Close()

	assert.Equal(t, "1.0.0", v.Version)
	latest, ok := s.Latest("doc-1")
	require.True(t, ok)
	assert.Equal(t, v.ID, latest.ID)
}

func TestCreateAfterClose(t *testing.T) {
	s := NewStore(StoreConfig{Scorer: fixedScorer{overall: 0.7}})
	s.Close()

	_, err := s.Create(context.Background(), "doc-1", "content", CreateContext{
		Title:  "T",
		Author: "a",
	}, CreateOptions{})
	assert.ErrorIs(t, err, ErrClosed)
}

func TestScorerFailureFallsBackToNeutral(t *testing.T) {
	failing := quality.ScorerFunc(func(context.Context, string, quality.ScoreContext) (quality.Metrics, error) {
		return quality.Metrics{}, errors.New("scorer down")
	})
	s := NewStore(StoreConfig{Scorer: failing})
	t.Cleanup(s.Close)

	v := mustCreate(t, s, "doc-1", "Content.")
	assert.Equal(t, quality.Neutral(), v.Quality)
}

// A revision that rewrites the first line and adds a second is counted as one
// modification plus one addition, with the quality baseline taken from the
// prior version.
func TestRevisionDiffBaseline(t *testing.T) {
	scores := map[string]float64{
		"Hello world.":                         0.50,
		"Hello there, world!\nExtra sentence.": 0.65,
	}
	scorer := quality.ScorerFunc(func(_ context.Context, text string, _ quality.ScoreContext) (quality.Metrics, error) {
		return quality.Metrics{Overall: scores[text]}, nil
	})
	s := NewStore(StoreConfig{Scorer: scorer})
	t.Cleanup(s.Close)

	v1 := mustCreate(t, s, "doc-d", "Hello world.")
	require.Equal(t, "1.0.0", v1.Version)
	require.Equal(t, 0.50, v1.Quality.Overall)

	v2, err := s.Create(context.Background(), "doc-d", "Hello there, world!\nExtra sentence.", CreateContext{
		Title:  "Security Policy",
		Author: "policy-agent",
	}, CreateOptions{})
	require.NoError(t, err)

	assert.Equal(t, "1.0.1", v2.Version)
	require.NotNil(t, v2.Diff)
	assert.GreaterOrEqual(t, v2.Diff.Additions, 1)
	assert.GreaterOrEqual(t, v2.Diff.Modifications, 1)
	assert.Equal(t, 0.50, v2.Diff.QualityChange.Before.Overall)
	assert.InDelta(t, 0.15, v2.Diff.QualityChange.Improvement, 1e-9)
}

// Agent publishes twice, history shows both, story matches end to end.
func TestRevisionLifecycle(t *testing.T) {
	s := NewStore(StoreConfig{Scorer: quality.NewHeuristicScorer()})
	t.Cleanup(s.Close)
	ctx := context.Background()

	v1, err := s.Create(ctx, "policy-001", "Hello world.", CreateContext{
		Title:      "Greeting Policy",
		Author:     "archival-agent",
		AuthorType: document.AuthorArchivalAgent,
	}, CreateOptions{})
	require.NoError(t, err)
	assert.Equal(t, "1.0.0", v1.Version)

	v2, err := s.Create(ctx, "policy-001", "Hello world.\nA second line with more substance.", CreateContext{
		Title:      "Greeting Policy",
		Author:     "archival-agent",
		AuthorType: document.AuthorArchivalAgent,
	}, CreateOptions{ParentVersion: v1.ID})
	require.NoError(t, err)
	assert.Equal(t, "1.0.1", v2.Version)
	require.NotNil(t, v2.Diff)
	assert.Equal(t, 1, v2.Diff.Additions)
	assert.Equal(t, v1.ID, v2.Metadata.ParentVersion)

	history := s.History("policy-001")
	require.Len(t, history, 2)
	assert.Equal(t, v2.ID, history[0].ID)
	assert.Equal(t, v1.ID, history[1].ID)
}
