// ABOUTME: Version comparison and three-strategy merge engine
// ABOUTME: Merges never trust a caller-supplied comparison; they recompute

package merge

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nainya/revstore/internal/logger"
	"github.com/nainya/revstore/internal/metrics"
	"github.com/nainya/revstore/pkg/conflict"
	"github.com/nainya/revstore/pkg/diff"
	"github.com/nainya/revstore/pkg/document"
	"github.com/nainya/revstore/pkg/notify"
	"github.com/nainya/revstore/pkg/version"
)

// Strategy selects how two versions are merged.
type Strategy string

const (
	// StrategyAuto is winner-take-all by overall quality score.
	StrategyAuto Strategy = "auto"
	// StrategyManual applies caller-supplied resolutions; without bespoke
	// merge logic it falls back to the source version's content.
	StrategyManual Strategy = "manual"
	// StrategyHybrid delegates to auto when quality conflicts are the
	// majority, otherwise to manual.
	StrategyHybrid Strategy = "hybrid"
)

// ErrUnknownStrategy indicates a strategy outside the closed set.
var ErrUnknownStrategy = errors.New("merge: unknown strategy")

// ParseStrategy validates a strategy string.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case StrategyAuto, StrategyManual, StrategyHybrid:
		return Strategy(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownStrategy, s)
	}
}

// Policy holds the tunable thresholds behind recommendations and strategy
// selection. These are policy, not contractual constants.
type Policy struct {
	// ManualConflictThreshold: more conflicts than this forces manual.
	ManualConflictThreshold int
	// ManualModificationThreshold: more modifications than this forces manual.
	ManualModificationThreshold int
	// ImprovementNote: |improvement| above this earns a recommendation line.
	ImprovementNote float64
	// ModificationNote: modifications above this earn a consistency note.
	ModificationNote int
}

// DefaultPolicy returns the baseline thresholds.
func DefaultPolicy() Policy {
	return Policy{
		ManualConflictThreshold:     5,
		ManualModificationThreshold: 20,
		ImprovementNote:             0.1,
		ModificationNote:            10,
	}
}

// Comparison is the ephemeral product of comparing two versions. Conflict
// ids are deterministic per version pair, so repeated comparisons of the
// same pair agree.
type Comparison struct {
	VersionA        *document.Version   `json:"versionA"`
	VersionB        *document.Version   `json:"versionB"`
	Diff            *document.Diff      `json:"diff"`
	Conflicts       []conflict.Conflict `json:"conflicts"`
	Recommendations []string            `json:"recommendations"`
	Strategy        Strategy            `json:"mergeStrategy"`
}

// Request describes a merge invocation.
type Request struct {
	MergedBy string
	Strategy Strategy
	// Resolution maps conflict id → resolution text. Applied to the
	// comparison recomputed inside Merge.
	Resolution map[string]string
}

// Result is the outcome of a merge: the committed version plus the
// comparison whose conflicts carry any applied resolutions.
type Result struct {
	Version    *document.Version
	Comparison *Comparison
	Resolved   int
}

// EngineConfig wires an Engine's collaborators. Store is required; Differ
// and Detector get defaults when nil.
type EngineConfig struct {
	Store    *version.Store
	Differ   *diff.Engine
	Detector *conflict.Detector
	Bus      *notify.Bus
	Logger   *logger.Logger
	Metrics  *metrics.Metrics
	Policy   Policy
}

// Engine compares versions and merges them under a strategy.
type Engine struct {
	store    *version.Store
	differ   *diff.Engine
	detector *conflict.Detector
	bus      *notify.Bus
	log      *logger.Logger
	metrics  *metrics.Metrics
	policy   Policy
}

// NewEngine creates a merge engine from the given configuration.
func NewEngine(cfg EngineConfig) *Engine {
	log := cfg.Logger
	if log == nil {
		log = logger.Nop()
	}
	detector := cfg.Detector
	if detector == nil {
		detector = conflict.NewDetector()
	}
	differ := cfg.Differ
	if differ == nil && cfg.Store != nil {
		differ = cfg.Store.Differ()
	}
	policy := cfg.Policy
	if policy == (Policy{}) {
		policy = DefaultPolicy()
	}
	return &Engine{
		store:    cfg.Store,
		differ:   differ,
		detector: detector,
		bus:      cfg.Bus,
		log:      log,
		metrics:  cfg.Metrics,
		policy:   policy,
	}
}

// Compare diffs versionA against versionB's content, detects conflicts, and
// recommends a merge strategy. Fails with version.ErrNotFound when either id
// is unknown.
func (e *Engine) Compare(ctx context.Context, idA, idB string) (*Comparison, error) {
	a, err := e.store.Get(idA)
	if err != nil {
		return nil, err
	}
	b, err := e.store.Get(idB)
	if err != nil {
		return nil, err
	}

	d := e.differ.Calculate(ctx, a, b.Content, b.Changes)
	conflicts := e.detector.Identify(a, b)

	if e.metrics != nil {
		e.metrics.ComparisonsTotal.Inc()
		counts := make(map[string]int)
		for _, c := range conflicts {
			counts[string(c.Type)]++
		}
		e.metrics.RecordConflicts(counts)
	}

	return &Comparison{
		VersionA:        a,
		VersionB:        b,
		Diff:            d,
		Conflicts:       conflicts,
		Recommendations: e.recommend(d, conflicts),
		Strategy:        e.selectStrategy(d, conflicts),
	}, nil
}

// recommend produces every applicable heuristic note.
func (e *Engine) recommend(d *document.Diff, conflicts []conflict.Conflict) []string {
	recs := make([]string, 0, 4)

	improvement := d.QualityChange.Improvement
	if improvement > e.policy.ImprovementNote {
		recs = append(recs, fmt.Sprintf("quality improved by %.2f; prefer the newer content", improvement))
	}
	if improvement < -e.policy.ImprovementNote {
		recs = append(recs, fmt.Sprintf("quality degraded by %.2f; review before merging", -improvement))
	}
	if d.Additions > 2*d.Deletions {
		recs = append(recs, "substantial additions; verify completeness of the merged result")
	}
	if d.Modifications > e.policy.ModificationNote {
		recs = append(recs, "many modifications; ensure terminology and style stay consistent")
	}
	if len(conflicts) > 0 {
		recs = append(recs, fmt.Sprintf("%d conflicts require attention", len(conflicts)))
	}

	return recs
}

// selectStrategy: auto when conflict-free, manual when heavy, hybrid between.
func (e *Engine) selectStrategy(d *document.Diff, conflicts []conflict.Conflict) Strategy {
	switch {
	case len(conflicts) == 0:
		return StrategyAuto
	case len(conflicts) > e.policy.ManualConflictThreshold ||
		d.Modifications > e.policy.ManualModificationThreshold:
		return StrategyManual
	default:
		return StrategyHybrid
	}
}

// Merge merges source into target under the requested strategy and commits
// the result as a new version of the source document. The comparison is
// recomputed internally; a caller-supplied one would risk staleness.
func (e *Engine) Merge(ctx context.Context, sourceID, targetID string, req Request) (*Result, error) {
	start := time.Now()

	if _, err := ParseStrategy(string(req.Strategy)); err != nil {
		e.recordMerge(string(req.Strategy), "rejected", start)
		return nil, err
	}
	if req.MergedBy == "" {
		return nil, fmt.Errorf("%w: mergedBy is required", version.ErrInvalidInput)
	}

	cmp, err := e.Compare(ctx, sourceID, targetID)
	if err != nil {
		e.recordMerge(string(req.Strategy), "error", start)
		return nil, err
	}

	source, target := cmp.VersionA, cmp.VersionB
	content, changes := e.resolveContent(req.Strategy, cmp)

	merged, err := e.store.Create(ctx, source.DocumentID, content, version.CreateContext{
		Title:       source.Title + " (Merged)",
		Description: fmt.Sprintf("Merge of versions %s and %s", source.Version, target.Version),
		Author:      req.MergedBy,
		AuthorType:  document.AuthorHuman,
		SessionID:   source.Metadata.SessionID,
		Domain:      source.Metadata.Domain,
		Changes:     changes,
	}, version.CreateOptions{
		ParentVersion: source.ID,
		Tags:          append(append([]string(nil), source.Metadata.Tags...), "merged"),
	})
	if err != nil {
		e.recordMerge(string(req.Strategy), "error", start)
		e.log.LogMerge(string(req.Strategy), sourceID, targetID, time.Since(start), err)
		return nil, err
	}

	resolved := applyResolutions(cmp.Conflicts, req)

	if e.bus != nil {
		e.bus.Publish(notify.Event{
			Kind:       notify.KindVersionsMerged,
			DocumentID: source.DocumentID,
			VersionID:  merged.ID,
			Merged:     merged.Version,
			Source:     source.Version,
			Target:     target.Version,
		})
		if e.metrics != nil {
			e.metrics.RecordEvent(string(notify.KindVersionsMerged))
		}
	}

	e.recordMerge(string(req.Strategy), "success", start)
	e.log.LogMerge(string(req.Strategy), sourceID, targetID, time.Since(start), nil)

	return &Result{Version: merged, Comparison: cmp, Resolved: resolved}, nil
}

// resolveContent picks the merged content and change list per strategy.
func (e *Engine) resolveContent(strategy Strategy, cmp *Comparison) (string, []document.Change) {
	switch strategy {
	case StrategyAuto:
		return autoResolve(cmp)
	case StrategyHybrid:
		if qualityMajority(cmp.Conflicts) {
			return autoResolve(cmp)
		}
		return manualResolve(cmp)
	default:
		return manualResolve(cmp)
	}
}

// autoResolve is winner-take-all: the version with the strictly higher
// overall score wins; ties prefer the target so the outcome is
// deterministic.
func autoResolve(cmp *Comparison) (string, []document.Change) {
	if cmp.VersionA.Quality.Overall > cmp.VersionB.Quality.Overall {
		return cmp.VersionA.Content, cmp.VersionA.Changes
	}
	return cmp.VersionB.Content, cmp.VersionB.Changes
}

// manualResolve falls back to the source version's content when no bespoke
// merge logic is supplied. Callers needing strict behavior should inspect
// Comparison.Conflicts and supply a complete Resolution map.
func manualResolve(cmp *Comparison) (string, []document.Change) {
	return cmp.VersionA.Content, cmp.VersionA.Changes
}

// qualityMajority reports whether quality conflicts strictly outnumber all
// other conflict types combined.
func qualityMajority(conflicts []conflict.Conflict) bool {
	quality := 0
	for _, c := range conflicts {
		if c.Type == conflict.TypeQuality {
			quality++
		}
	}
	return quality*2 > len(conflicts)
}

// applyResolutions annotates the freshly computed conflicts with the
// caller's resolution map and returns the number applied. Conflict ids are
// deterministic per version pair, so a map built from an earlier comparison
// of the same pair still applies.
func applyResolutions(conflicts []conflict.Conflict, req Request) int {
	if len(req.Resolution) == 0 {
		return 0
	}

	now := time.Now()
	applied := 0
	for i := range conflicts {
		if text, ok := req.Resolution[conflicts[i].ID]; ok {
			conflicts[i].Resolve(text, req.MergedBy, now)
			applied++
		}
	}
	return applied
}

func (e *Engine) recordMerge(strategy, status string, start time.Time) {
	if e.metrics != nil {
		e.metrics.RecordMerge(strategy, status, time.Since(start))
	}
}
