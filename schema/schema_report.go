package schema

import "time"

// ExtractionPhase is the lifecycle phase of an extraction run.
type ExtractionPhase string

// Extraction run phases.
const (
	ExtractionPending   ExtractionPhase = "pending"
	ExtractionRunning   ExtractionPhase = "running"
	ExtractionCompleted ExtractionPhase = "completed"
	ExtractionFailed    ExtractionPhase = "failed"
)

// ExtractionReport summarizes one extraction run. Recoverable conditions
// (malformed commits, truncated history, cancellation) are absorbed here;
// only conditions that prevented any progress surface as errors.
type ExtractionReport struct {
	RepoID           string        `json:"repo_id"`
	CommitsRead      int           `json:"commits_read"`
	CommitsPersisted int           `json:"commits_persisted"`
	CommitsSkipped   int           `json:"commits_skipped"`
	NewIdentities    int           `json:"new_identities"`
	Truncated        bool          `json:"truncated"`
	Cancelled        bool          `json:"cancelled"`
	Warnings         []string      `json:"warnings,omitempty"`
	StartedAt        time.Time     `json:"started_at"`
	Elapsed          time.Duration `json:"elapsed"`
}

// ExtractionStatus is the consumer-facing view of an extraction run.
// It always reflects the most recent report, including partial success.
type ExtractionStatus struct {
	Handle string            `json:"handle"`
	Repo   Repository        `json:"repo"`
	Phase  ExtractionPhase   `json:"phase"`
	Report *ExtractionReport `json:"report,omitempty"`
	Error  string            `json:"error,omitempty"`
}

// StoreStatus carries status information about the persistence store.
type StoreStatus struct {
	Backend      string    `json:"backend"`
	Connected    bool      `json:"connected"`
	Repositories int64     `json:"repositories"`
	Commits      int64     `json:"commits"`
	Identities   int64     `json:"identities"`
	CacheEntries int64     `json:"cache_entries"`
	LastUpdated  time.Time `json:"last_updated,omitzero"`
}
