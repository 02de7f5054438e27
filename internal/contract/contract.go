// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"context"

	"github.com/Dhyanesh27/evotrack/schema"
)

// CommitGraph is a readable handle over a cloned repository's commit graph.
// It supports ancestor traversal from the default branch tip, per-commit
// metadata access, and file-level diff stats against a designated parent.
// Implementations must tolerate concurrent readers.
type CommitGraph interface {
	// Tip returns the hash of the default branch tip.
	Tip(ctx context.Context) (string, error)

	// Commit returns metadata and parent hashes for the given commit.
	// The returned RawCommit has no Changes; callers obtain those via
	// DiffStats so merge attribution stays explicit.
	Commit(ctx context.Context, hash string) (*schema.RawCommit, error)

	// DiffStats returns the file-level changes of commit relative to
	// parent. An empty parent means the diff against the empty tree
	// (root commits).
	DiffStats(ctx context.Context, hash, parent string) ([]schema.FileChange, error)

	// Shallow reports whether the clone has truncated history.
	Shallow() bool

	// Close releases the handle.
	Close() error
}

// GraphOpener yields CommitGraph handles for repository locators.
type GraphOpener interface {
	// Open opens an existing clone at a filesystem path.
	Open(ctx context.Context, path string) (CommitGraph, error)

	// Clone clones url into a temporary directory and opens it. The
	// returned cleanup removes the temporary clone and must always be
	// called, even on later errors.
	Clone(ctx context.Context, url string) (graph CommitGraph, cleanup func(), err error)
}

// CommitStore is the narrow read/write interface over the relational store.
// All writes are idempotent on their unique keys so retried batches are
// no-ops rather than errors.
type CommitStore interface {
	// UpsertRepository registers or refreshes a repository row.
	UpsertRepository(ctx context.Context, repo schema.Repository) error

	// UpsertCommits writes a batch idempotently on (repo, hash) and
	// returns how many rows were actually inserted.
	UpsertCommits(ctx context.Context, commits []schema.NormalizedCommit) (int, error)

	// UpsertIdentities writes contributor identities idempotently on
	// (repo, id), replacing alias lists of existing rows.
	UpsertIdentities(ctx context.Context, repoID string, identities []schema.ContributorIdentity) error

	// MergeIdentities re-points persisted commits from one author id to
	// another and removes the absorbed identity row. Called when a
	// heuristic merge joins identities after commits attributed to the
	// absorbed one were already written.
	MergeIdentities(ctx context.Context, repoID, fromID, toID string) error

	// ListCommitHashes returns the set of persisted hashes for a repository.
	ListCommitHashes(ctx context.Context, repoID string) (map[string]struct{}, error)

	// ListIdentities returns all identities for a repository.
	ListIdentities(ctx context.Context, repoID string) ([]schema.ContributorIdentity, error)

	// GetExtractionState returns the watermark row, or nil if the
	// repository has never been extracted.
	GetExtractionState(ctx context.Context, repoID string) (*schema.ExtractionState, error)

	// SetExtractionState replaces the watermark row.
	SetExtractionState(ctx context.Context, state schema.ExtractionState) error

	// QueryCommits returns normalized commits matching the filter,
	// ordered by timestamp then hash for deterministic consumption.
	QueryCommits(ctx context.Context, repoID string, filter schema.AnalyticsFilter) ([]schema.NormalizedCommit, error)

	// GetStatus returns status information about the store.
	GetStatus(ctx context.Context) (schema.StoreStatus, error)

	// Close closes the underlying connection.
	Close() error
}

// CacheStore is a small key/value cache for derived analytics, keyed by
// the extraction watermark so staleness is never ambiguous.
type CacheStore interface {
	Get(ctx context.Context, key string) (value []byte, version int, timestamp int64, err error)
	Set(ctx context.Context, key string, value []byte, version int, timestamp int64) error
}
