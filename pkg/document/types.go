// ABOUTME: Document version data model
// ABOUTME: Immutable snapshots with change lists, quality metrics, and diffs

package document

import (
	"sort"
	"time"

	"github.com/nainya/revstore/pkg/quality"
)

// AuthorType identifies what kind of author produced a version.
type AuthorType string

const (
	AuthorArchivalAgent   AuthorType = "archival-agent"
	AuthorPolicyAgent     AuthorType = "policy-agent"
	AuthorDiscussionAgent AuthorType = "discussion-agent"
	AuthorHuman           AuthorType = "human"
)

// Status is the review state of a version.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusReview    Status = "review"
	StatusApproved  Status = "approved"
	StatusPublished Status = "published"
	StatusArchived  Status = "archived"
)

// ChangeType classifies a caller-supplied change entry.
type ChangeType string

const (
	ChangeAddition       ChangeType = "addition"
	ChangeDeletion       ChangeType = "deletion"
	ChangeModification   ChangeType = "modification"
	ChangeReorganization ChangeType = "reorganization"
)

// Impact grades how disruptive a change is.
type Impact string

const (
	ImpactLow    Impact = "low"
	ImpactMedium Impact = "medium"
	ImpactHigh   Impact = "high"
)

// Change records one edit supplied by the caller at version creation.
type Change struct {
	Type      ChangeType `json:"type"`
	Section   string     `json:"section"`
	OldText   string     `json:"oldText,omitempty"`
	NewText   string     `json:"newText,omitempty"`
	Impact    Impact     `json:"impact"`
	Author    string     `json:"author"`
	Timestamp time.Time  `json:"timestamp"`
}

// Metadata carries bookkeeping attached to a version at creation.
// ParentVersion is a weak reference: an id to look up, never an ownership
// edge.
type Metadata struct {
	Created       time.Time `json:"created"`
	CreatedBy     string    `json:"createdBy"`
	SessionID     string    `json:"sessionId,omitempty"`
	Domain        string    `json:"domain,omitempty"`
	Tags          []string  `json:"tags,omitempty"`
	Status        Status    `json:"status"`
	ParentVersion string    `json:"parentVersion,omitempty"`
	BranchName    string    `json:"branchName,omitempty"`
}

// QualityChange is the quality delta side of a diff.
type QualityChange struct {
	Before      quality.Metrics `json:"before"`
	After       quality.Metrics `json:"after"`
	Improvement float64         `json:"improvement"`
}

// Diff summarizes line-level change volume and the quality delta between two
// content blobs. Diffs are ephemeral: computed on demand and never mutated.
type Diff struct {
	Additions       int           `json:"additions"`
	Deletions       int           `json:"deletions"`
	Modifications   int           `json:"modifications"`
	SectionsChanged []string      `json:"sectionsChanged"`
	QualityChange   QualityChange `json:"qualityChange"`
	Summary         string        `json:"summary"`
}

// Version is one immutable snapshot of a document. Content, Quality, and
// Diff never change after creation.
type Version struct {
	ID          string          `json:"id"`
	DocumentID  string          `json:"documentId"`
	Version     string          `json:"version"`
	Content     string          `json:"content"`
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	Author      string          `json:"author"`
	AuthorType  AuthorType      `json:"authorType"`
	Changes     []Change        `json:"changes,omitempty"`
	Quality     quality.Metrics `json:"qualityMetrics"`
	Metadata    Metadata        `json:"metadata"`
	Diff        *Diff           `json:"diff,omitempty"`
}

// Clone returns a deep copy so stored versions cannot be mutated through
// returned pointers.
func (v *Version) Clone() *Version {
	clone := *v
	clone.Changes = cloneChanges(v.Changes)
	clone.Metadata.Tags = cloneStrings(v.Metadata.Tags)
	if v.Diff != nil {
		d := *v.Diff
		d.SectionsChanged = cloneStrings(v.Diff.SectionsChanged)
		clone.Diff = &d
	}
	return &clone
}

// IsRoot reports whether the version has no recorded parent.
func (v *Version) IsRoot() bool {
	return v.Metadata.ParentVersion == ""
}

// HasTag reports whether tag is present in the metadata tag set.
func (v *Version) HasTag(tag string) bool {
	for _, t := range v.Metadata.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// NormalizeTags deduplicates and sorts a tag list, treating it as a set.
func NormalizeTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	sort.Strings(out)
	if len(out) == 0 {
		return nil
	}
	return out
}

func cloneChanges(changes []Change) []Change {
	if changes == nil {
		return nil
	}
	out := make([]Change, len(changes))
	copy(out, changes)
	return out
}

func cloneStrings(values []string) []string {
	if values == nil {
		return nil
	}
	out := make([]string, len(values))
	copy(out, values)
	return out
}
