// Package schema defines the shared data model for all evotrack components.
package schema

import (
	"strconv"
	"strings"
	"time"
)

// ChangeType classifies a per-file change within a commit.
type ChangeType string

// Known change types.
const (
	ChangeAdd    ChangeType = "add"
	ChangeModify ChangeType = "modify"
	ChangeDelete ChangeType = "delete"
	ChangeRename ChangeType = "rename"
)

// FileChange is a single file-level diff entry of a raw commit.
type FileChange struct {
	Path       string     `json:"path"`
	Insertions int        `json:"insertions"`
	Deletions  int        `json:"deletions"`
	Type       ChangeType `json:"type"`
	Binary     bool       `json:"binary"` // Binary files carry no line counts
}

// RawCommit is a commit exactly as read from the commit graph.
// It is immutable once produced by the reader.
type RawCommit struct {
	Hash        string       `json:"hash"`
	Parents     []string     `json:"parents"`
	AuthorName  string       `json:"author_name"`
	AuthorEmail string       `json:"author_email"`
	CommittedAt time.Time    `json:"committed_at"` // Original timezone offset preserved
	Message     string       `json:"message"`
	Changes     []FileChange `json:"changes"`
}

// IsMerge reports whether the commit has more than one parent.
func (c *RawCommit) IsMerge() bool {
	return len(c.Parents) > 1
}

// PrimaryParent returns the parent used for line-stat attribution, or ""
// for a root commit. The first parent is the primary one, so merge stats
// reflect only what the merge itself introduced.
func (c *RawCommit) PrimaryParent() string {
	if len(c.Parents) == 0 {
		return ""
	}
	return c.Parents[0]
}

// Subject returns the first line of the commit message.
func (c *RawCommit) Subject() string {
	subject, _, _ := strings.Cut(c.Message, "\n")
	return strings.TrimSpace(subject)
}

// Alias is one observed (name, email) author spelling.
type Alias struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// ContributorIdentity is the canonical representation of an author across
// multiple observed spellings. Aliases are only ever added, never removed.
type ContributorIdentity struct {
	ID          string  `json:"id"`
	DisplayName string  `json:"display_name"`
	Aliases     []Alias `json:"aliases"`

	// Seq orders identities by creation. When two pre-existing identities
	// collide during a merge, the lower sequence wins.
	Seq int64 `json:"seq"`
}

// NormalizedCommit is the cleaned, storage-ready record of a commit.
// (RepoID, Hash) is unique within the store.
type NormalizedCommit struct {
	RepoID       string    `json:"repo_id"`
	Hash         string    `json:"hash"`
	AuthorID     string    `json:"author_id"`
	Timestamp    time.Time `json:"timestamp"` // Always UTC
	Subject      string    `json:"subject"`
	Insertions   int       `json:"insertions"`
	Deletions    int       `json:"deletions"`
	FilesChanged int       `json:"files_changed"`
	IsMerge      bool      `json:"is_merge"`
}

// Churn returns insertions plus deletions.
func (c *NormalizedCommit) Churn() int {
	return c.Insertions + c.Deletions
}

// Repository identifies an extracted repository. ID is the normalized
// locator (filesystem path or clone URL); Name is a display name.
type Repository struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ExtractionState is the per-repository extraction watermark. The full set
// of persisted hashes lives in the commit table; this row carries the tip
// reached by the last completed batch plus a count, which together form the
// cache invalidation key for derived analytics.
type ExtractionState struct {
	RepoID      string    `json:"repo_id"`
	TipHash     string    `json:"tip_hash"`
	CommitCount int64     `json:"commit_count"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Watermark returns a stable token identifying this extraction state.
// Any change in persisted data changes the token.
func (s *ExtractionState) Watermark() string {
	if s == nil {
		return "empty"
	}
	return s.TipHash + ":" + strconv.FormatInt(s.CommitCount, 10)
}
