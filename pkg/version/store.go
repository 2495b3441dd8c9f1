// ABOUTME: Version store with per-document write serialization
// ABOUTME: Owns version numbering, quality scoring, diffing, and persistence hand-off

package version

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nainya/revstore/internal/logger"
	"github.com/nainya/revstore/internal/metrics"
	"github.com/nainya/revstore/pkg/diff"
	"github.com/nainya/revstore/pkg/document"
	"github.com/nainya/revstore/pkg/notify"
	"github.com/nainya/revstore/pkg/quality"
)

// Persister receives committed versions for durable storage. Puts are
// idempotent upserts by id. Failures are logged and swallowed: the in-memory
// commit is authoritative for the process lifetime.
type Persister interface {
	PutVersion(v *document.Version) error
}

// persistQueueSize bounds the asynchronous hand-off to the Persister.
const persistQueueSize = 256

// StoreConfig wires a Store's collaborators. Scorer is required; everything
// else defaults to a no-op.
type StoreConfig struct {
	Scorer    quality.Scorer
	Differ    *diff.Engine // built from Scorer when nil
	Persister Persister
	Bus       *notify.Bus
	Logger    *logger.Logger
	Metrics   *metrics.Metrics
}

// Store owns the per-document version lists. Writes to one document are
// serialized through a per-document lock so version numbers never race;
// different documents proceed fully in parallel.
type Store struct {
	mu       sync.RWMutex
	versions map[string][]*document.Version // documentID → creation order
	byID     map[string]*document.Version

	lockMu   sync.Mutex
	docLocks map[string]*sync.Mutex

	scorer  quality.Scorer
	differ  *diff.Engine
	persist Persister
	bus     *notify.Bus
	log     *logger.Logger
	metrics *metrics.Metrics

	persistCh chan *document.Version
	closeOnce sync.Once
	closedMu  sync.RWMutex
	closed    bool
	wg        sync.WaitGroup
}

// NewStore creates a version store from the given configuration.
func NewStore(cfg StoreConfig) *Store {
	log := cfg.Logger
	if log == nil {
		log = logger.Nop()
	}
	differ := cfg.Differ
	if differ == nil {
		differ = diff.NewEngine(cfg.Scorer)
	}

	s := &Store{
		versions: make(map[string][]*document.Version),
		byID:     make(map[string]*document.Version),
		docLocks: make(map[string]*sync.Mutex),
		scorer:   cfg.Scorer,
		differ:   differ,
		persist:  cfg.Persister,
		bus:      cfg.Bus,
		log:      log,
		metrics:  cfg.Metrics,
	}

	if s.persist != nil {
		s.persistCh = make(chan *document.Version, persistQueueSize)
		s.wg.Add(1)
		go s.persistLoop()
	}

	return s
}

// CreateContext carries the caller-supplied description of a new version.
type CreateContext struct {
	Title       string
	Description string
	Author      string
	AuthorType  document.AuthorType
	SessionID   string
	Domain      string
	Changes     []document.Change
}

// CreateOptions carries optional attributes of a new version.
type CreateOptions struct {
	ParentVersion string
	BranchName    string
	Tags          []string
	Status        document.Status
}

// Create commits a new version of the document. It determines the next
// version number from the current latest, scores the content, diffs against
// the prior version when one exists, stores the result, hands it off to the
// durable persister, and emits a versionCreated notification.
//
// Quality-scoring and diff failures never abort creation; they degrade to
// the documented defaults. Create fails only on caller precondition
// violations (ErrInvalidInput) or after Close (ErrClosed).
func (s *Store) Create(ctx context.Context, documentID, content string, cc CreateContext, opts CreateOptions) (*document.Version, error) {
	if err := validateCreate(documentID, content, cc); err != nil {
		return nil, err
	}
	if s.isClosed() {
		return nil, ErrClosed
	}

	start := time.Now()

	if cc.AuthorType == "" {
		cc.AuthorType = document.AuthorHuman
	}
	if opts.Status == "" {
		opts.Status = document.StatusDraft
	}

	lock := s.lockFor(documentID)
	lock.Lock()
	defer lock.Unlock()

	prev, _ := s.Latest(documentID)
	next := FirstVersion
	if prev != nil {
		next = nextVersionNumber(prev.Version)
	}

	scoreStart := time.Now()
	qm, scored := quality.SafeScore(ctx, s.scorer, content, quality.ScoreContext{
		SessionID: cc.SessionID,
		Domain:    cc.Domain,
	})
	if s.metrics != nil {
		s.metrics.RecordScore(time.Since(scoreStart), !scored)
	}
	if !scored {
		s.log.LogScorerDegraded(documentID, nil)
	}

	var d *document.Diff
	if prev != nil {
		diffStart := time.Now()
		d = s.differ.Calculate(ctx, prev, content, cc.Changes)
		if s.metrics != nil {
			s.metrics.RecordDiff(time.Since(diffStart))
		}
	}

	v := &document.Version{
		ID:          uuid.NewString(),
		DocumentID:  documentID,
		Version:     next,
		Content:     content,
		Title:       cc.Title,
		Description: cc.Description,
		Author:      cc.Author,
		AuthorType:  cc.AuthorType,
		Changes:     append([]document.Change(nil), cc.Changes...),
		Quality:     qm,
		Metadata: document.Metadata{
			Created:       time.Now(),
			CreatedBy:     cc.Author,
			SessionID:     cc.SessionID,
			Domain:        cc.Domain,
			Tags:          document.NormalizeTags(opts.Tags),
			Status:        opts.Status,
			ParentVersion: opts.ParentVersion,
			BranchName:    opts.BranchName,
		},
		Diff: d,
	}

	s.mu.Lock()
	s.versions[documentID] = append(s.versions[documentID], v)
	s.byID[v.ID] = v
	s.mu.Unlock()

	s.enqueuePersist(v.Clone())
	s.publishCreated(v)

	elapsed := time.Since(start)
	if s.metrics != nil {
		s.metrics.RecordVersionCreate(string(v.AuthorType), elapsed)
	}
	s.log.LogVersionCreated(documentID, v.ID, v.Version, elapsed)

	return v.Clone(), nil
}

// History returns every version of the document, newest first. Unknown
// documents yield an empty slice.
func (s *Store) History(documentID string) []*document.Version {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored := s.versions[documentID]
	out := make([]*document.Version, 0, len(stored))
	// Writes to one document are serialized, so append order is creation
	// order; newest-first is a reversal.
	for i := len(stored) - 1; i >= 0; i-- {
		out = append(out, stored[i].Clone())
	}
	return out
}

// Latest returns the most recently created version of the document, or nil
// and false when none exists.
func (s *Store) Latest(documentID string) (*document.Version, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored := s.versions[documentID]
	if len(stored) == 0 {
		return nil, false
	}
	return stored[len(stored)-1].Clone(), true
}

// Differ exposes the store's diff engine so downstream engines reuse the
// same scorer-backed configuration.
func (s *Store) Differ() *diff.Engine {
	return s.differ
}

// Get returns the version with the given id, or ErrNotFound.
func (s *Store) Get(id string) (*document.Version, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: version %s", ErrNotFound, id)
	}
	return v.Clone(), nil
}

// Documents returns the ids of all documents with at least one version.
func (s *Store) Documents() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, 0, len(s.versions))
	for id := range s.versions {
		out = append(out, id)
	}
	return out
}

// Close stops the background persistence worker after draining its queue.
// The in-memory state stays readable.
func (s *Store) Close() {
	s.closeOnce.Do(func() {
		s.closedMu.Lock()
		s.closed = true
		s.closedMu.Unlock()

		if s.persistCh != nil {
			close(s.persistCh)
			s.wg.Wait()
		}
	})
}

func validateCreate(documentID, content string, cc CreateContext) error {
	switch {
	case documentID == "":
		return fmt.Errorf("%w: documentID is required", ErrInvalidInput)
	case content == "":
		return fmt.Errorf("%w: content is required", ErrInvalidInput)
	case cc.Title == "":
		return fmt.Errorf("%w: title is required", ErrInvalidInput)
	case cc.Author == "":
		return fmt.Errorf("%w: author is required", ErrInvalidInput)
	}
	return nil
}

func (s *Store) lockFor(documentID string) *sync.Mutex {
	s.lockMu.Lock()
	defer s.lockMu.Unlock()

	l, ok := s.docLocks[documentID]
	if !ok {
		l = &sync.Mutex{}
		s.docLocks[documentID] = l
	}
	return l
}

func (s *Store) isClosed() bool {
	s.closedMu.RLock()
	defer s.closedMu.RUnlock()
	return s.closed
}

// enqueuePersist hands the version to the background writer without ever
// blocking the caller.
func (s *Store) enqueuePersist(v *document.Version) {
	// Holding the read lock for the send keeps Close from closing the
	// channel mid-send.
	s.closedMu.RLock()
	defer s.closedMu.RUnlock()
	if s.persistCh == nil || s.closed {
		return
	}

	select {
	case s.persistCh <- v:
	default:
		s.log.Warn("Persist queue full, dropping durable write").
			Str("version_id", v.ID).
			Msg("persistence degraded")
	}
}

func (s *Store) persistLoop() {
	defer s.wg.Done()
	for v := range s.persistCh {
		err := s.persist.PutVersion(v)
		if s.metrics != nil {
			s.metrics.RecordJournalAppend("version", err)
		}
		if err != nil {
			s.log.LogPersistFailure("version", v.ID, err)
		}
	}
}

func (s *Store) publishCreated(v *document.Version) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(notify.Event{
		Kind:       notify.KindVersionCreated,
		DocumentID: v.DocumentID,
		VersionID:  v.ID,
		Version:    v.Version,
	})
	if s.metrics != nil {
		s.metrics.RecordEvent(string(notify.KindVersionCreated))
	}
}
