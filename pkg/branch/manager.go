// ABOUTME: Named parallel development lines forked from a base version
// ABOUTME: Branch state transitions are explicit; nothing advances a branch automatically

package branch

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nainya/revstore/internal/logger"
	"github.com/nainya/revstore/internal/metrics"
	"github.com/nainya/revstore/pkg/document"
	"github.com/nainya/revstore/pkg/notify"
	"github.com/nainya/revstore/pkg/version"
)

// Status is the lifecycle state of a branch.
type Status string

const (
	StatusActive    Status = "active"
	StatusMerged    Status = "merged"
	StatusAbandoned Status = "abandoned"
)

var (
	// ErrInvalidInput indicates a caller violated a createBranch precondition
	ErrInvalidInput = errors.New("branch: invalid input")

	// ErrNotFound indicates an unknown branch or base version id
	ErrNotFound = errors.New("branch: not found")

	// ErrNotActive indicates a commit or transition on a finished branch
	ErrNotActive = errors.New("branch: not active")
)

// Metadata carries the branch's owning document and descriptive fields.
type Metadata struct {
	DocumentID     string `json:"documentId"`
	Domain         string `json:"domain,omitempty"`
	Purpose        string `json:"purpose,omitempty"`
	TargetAudience string `json:"targetAudience,omitempty"`
}

// Branch is a named parallel line of development. BaseVersion and
// CurrentVersion start equal; only Commit advances CurrentVersion.
type Branch struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Description    string    `json:"description,omitempty"`
	BaseVersion    string    `json:"baseVersion"`
	CurrentVersion string    `json:"currentVersion"`
	Status         Status    `json:"status"`
	Created        time.Time `json:"created"`
	CreatedBy      string    `json:"createdBy"`
	Metadata       Metadata  `json:"metadata"`
}

// Clone returns a copy so stored branches cannot be mutated through returned
// pointers.
func (b *Branch) Clone() *Branch {
	clone := *b
	return &clone
}

// Persister receives branch snapshots for durable storage, upsert by id.
type Persister interface {
	PutBranch(b *Branch) error
}

// CreateContext carries the caller-supplied description of a new branch.
type CreateContext struct {
	Name           string
	Description    string
	Purpose        string
	CreatedBy      string
	SessionID      string
	Domain         string
	TargetAudience string
}

// ManagerConfig wires a Manager's collaborators. Store is required.
type ManagerConfig struct {
	Store     *version.Store
	Persister Persister
	Bus       *notify.Bus
	Logger    *logger.Logger
	Metrics   *metrics.Metrics
}

// Manager tracks branches per document.
type Manager struct {
	mu       sync.RWMutex
	branches map[string]*Branch

	store   *version.Store
	persist Persister
	bus     *notify.Bus
	log     *logger.Logger
	metrics *metrics.Metrics
}

// NewManager creates a branch manager over the given version store.
func NewManager(cfg ManagerConfig) *Manager {
	log := cfg.Logger
	if log == nil {
		log = logger.Nop()
	}
	return &Manager{
		branches: make(map[string]*Branch),
		store:    cfg.Store,
		persist:  cfg.Persister,
		bus:      cfg.Bus,
		log:      log,
		metrics:  cfg.Metrics,
	}
}

// Create forks a branch from baseVersionID. The new branch starts active
// with BaseVersion == CurrentVersion == baseVersionID.
func (m *Manager) Create(documentID, baseVersionID string, cc CreateContext) (*Branch, error) {
	switch {
	case documentID == "":
		return nil, fmt.Errorf("%w: documentID is required", ErrInvalidInput)
	case cc.Name == "":
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	case cc.CreatedBy == "":
		return nil, fmt.Errorf("%w: createdBy is required", ErrInvalidInput)
	}

	base, err := m.store.Get(baseVersionID)
	if err != nil {
		return nil, fmt.Errorf("%w: base version %s", ErrNotFound, baseVersionID)
	}
	if base.DocumentID != documentID {
		return nil, fmt.Errorf("%w: base version %s belongs to document %s, not %s",
			ErrInvalidInput, baseVersionID, base.DocumentID, documentID)
	}

	b := &Branch{
		ID:             uuid.NewString(),
		Name:           cc.Name,
		Description:    cc.Description,
		BaseVersion:    baseVersionID,
		CurrentVersion: baseVersionID,
		Status:         StatusActive,
		Created:        time.Now(),
		CreatedBy:      cc.CreatedBy,
		Metadata: Metadata{
			DocumentID:     documentID,
			Domain:         cc.Domain,
			Purpose:        cc.Purpose,
			TargetAudience: cc.TargetAudience,
		},
	}

	m.mu.Lock()
	m.branches[b.ID] = b
	m.mu.Unlock()

	m.persistBranch(b)
	if m.bus != nil {
		m.bus.Publish(notify.Event{
			Kind:       notify.KindBranchCreated,
			DocumentID: documentID,
			BranchID:   b.ID,
			BranchName: b.Name,
		})
		if m.metrics != nil {
			m.metrics.RecordEvent(string(notify.KindBranchCreated))
		}
	}
	if m.metrics != nil {
		m.metrics.BranchesCreatedTotal.Inc()
	}

	return b.Clone(), nil
}

// Get returns the branch with the given id, or ErrNotFound.
func (m *Manager) Get(id string) (*Branch, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	b, ok := m.branches[id]
	if !ok {
		return nil, fmt.Errorf("%w: branch %s", ErrNotFound, id)
	}
	return b.Clone(), nil
}

// ForDocument returns all branches owned by documentID, oldest first.
// Filtering is by document id: branches group parallel lines of one logical
// document, not of one session.
func (m *Manager) ForDocument(documentID string) []*Branch {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*Branch, 0)
	for _, b := range m.branches {
		if b.Metadata.DocumentID == documentID {
			out = append(out, b.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Created.Equal(out[j].Created) {
			return out[i].ID < out[j].ID
		}
		return out[i].Created.Before(out[j].Created)
	})
	return out
}

// Commit creates a version on the branch and advances CurrentVersion.
// The committed version records the branch name and the branch's previous
// head as its parent.
func (m *Manager) Commit(ctx context.Context, branchID, content string, cc version.CreateContext) (*document.Version, error) {
	m.mu.RLock()
	b, ok := m.branches[branchID]
	if !ok {
		m.mu.RUnlock()
		return nil, fmt.Errorf("%w: branch %s", ErrNotFound, branchID)
	}
	if b.Status != StatusActive {
		status := b.Status
		m.mu.RUnlock()
		return nil, fmt.Errorf("%w: branch %s is %s", ErrNotActive, branchID, status)
	}
	documentID := b.Metadata.DocumentID
	parent := b.CurrentVersion
	name := b.Name
	m.mu.RUnlock()

	v, err := m.store.Create(ctx, documentID, content, cc, version.CreateOptions{
		ParentVersion: parent,
		BranchName:    name,
	})
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	if current, ok := m.branches[branchID]; ok {
		current.CurrentVersion = v.ID
		b = current.Clone()
	}
	m.mu.Unlock()

	m.persistBranch(b)
	if m.metrics != nil {
		m.metrics.BranchCommitsTotal.Inc()
	}

	return v, nil
}

// MarkMerged transitions an active branch to merged.
func (m *Manager) MarkMerged(id string) error {
	return m.transition(id, StatusMerged)
}

// Abandon transitions an active branch to abandoned.
func (m *Manager) Abandon(id string) error {
	return m.transition(id, StatusAbandoned)
}

func (m *Manager) transition(id string, to Status) error {
	m.mu.Lock()
	b, ok := m.branches[id]
	if !ok {
		m.mu.Unlock()
		return fmt.Errorf("%w: branch %s", ErrNotFound, id)
	}
	if b.Status != StatusActive {
		status := b.Status
		m.mu.Unlock()
		return fmt.Errorf("%w: branch %s is %s", ErrNotActive, id, status)
	}
	b.Status = to
	snapshot := b.Clone()
	m.mu.Unlock()

	m.persistBranch(snapshot)
	m.log.BranchLogger("transition").Info("Branch state changed").
		Str("branch_id", id).
		Str("status", string(to)).
		Msg("branch updated")
	return nil
}

// persistBranch hands the branch snapshot to the durable store; failures are
// logged and swallowed.
func (m *Manager) persistBranch(b *Branch) {
	if m.persist == nil || b == nil {
		return
	}
	err := m.persist.PutBranch(b.Clone())
	if m.metrics != nil {
		m.metrics.RecordJournalAppend("branch", err)
	}
	if err != nil {
		m.log.LogPersistFailure("branch", b.ID, err)
	}
}
