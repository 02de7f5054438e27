package schema

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors for the extraction pipeline. Callers match these with
// errors.Is; wrapped variants carry per-occurrence detail.
var (
	// ErrRepositoryUnreadable means the clone is corrupt or inaccessible.
	// Fatal to an extraction; no state is modified.
	ErrRepositoryUnreadable = errors.New("repository unreadable")

	// ErrHistoryTruncated means a shallow clone cut off ancestor traversal.
	// Non-fatal; extraction proceeds with partial history.
	ErrHistoryTruncated = errors.New("history truncated")

	// ErrMalformedCommit means a commit is missing required fields.
	// Non-fatal; the commit is skipped and counted.
	ErrMalformedCommit = errors.New("malformed commit")

	// ErrExtractionInProgress means another extraction holds the
	// repository lock. Callers should retry later.
	ErrExtractionInProgress = errors.New("extraction already in progress")
)

// ExtractionInProgressError reports lock contention on a repository,
// with a hint for when to retry.
type ExtractionInProgressError struct {
	RepoID     string
	RetryAfter time.Duration
}

func (e *ExtractionInProgressError) Error() string {
	return fmt.Sprintf("extraction already in progress for %s (retry after %s)", e.RepoID, e.RetryAfter)
}

// Is lets errors.Is(err, ErrExtractionInProgress) match.
func (e *ExtractionInProgressError) Is(target error) bool {
	return target == ErrExtractionInProgress
}

// MalformedCommitError identifies which commit was skipped and why.
type MalformedCommitError struct {
	Hash   string
	Reason string
}

func (e *MalformedCommitError) Error() string {
	hash := e.Hash
	if hash == "" {
		hash = "<no hash>"
	}
	return fmt.Sprintf("malformed commit %s: %s", hash, e.Reason)
}

// Is lets errors.Is(err, ErrMalformedCommit) match.
func (e *MalformedCommitError) Is(target error) bool {
	return target == ErrMalformedCommit
}
