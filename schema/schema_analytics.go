package schema

import "time"

// AnalyticsFilter scopes an analytics query. Zero values mean "no bound".
type AnalyticsFilter struct {
	Since    time.Time `json:"since,omitzero"`
	Until    time.Time `json:"until,omitzero"`
	AuthorID string    `json:"author_id,omitempty"`
	Period   Period    `json:"period"`
	Window   int       `json:"window"` // Rolling window size in buckets
}

// ActivityBucket is one fixed-width time bucket of repository activity.
// Buckets with no commits are emitted as zeros, never omitted.
type ActivityBucket struct {
	Start      time.Time `json:"start"`
	Commits    int       `json:"commits"`
	Insertions int       `json:"insertions"`
	Deletions  int       `json:"deletions"`
	Churn      int       `json:"churn"`
}

// ActivitySeries is a gap-free commit/churn time series.
type ActivitySeries struct {
	Period  Period           `json:"period"`
	Buckets []ActivityBucket `json:"buckets"`
}

// AuthorTotals aggregates one contributor's activity, ranked descending by
// commit count with a stable tie-break on AuthorID.
type AuthorTotals struct {
	AuthorID    string    `json:"author_id"`
	DisplayName string    `json:"display_name"`
	Commits     int       `json:"commits"`
	Insertions  int       `json:"insertions"`
	Deletions   int       `json:"deletions"`
	FirstSeen   time.Time `json:"first_seen"`
	LastSeen    time.Time `json:"last_seen"`
}

// ChurnPoint is one bucket of the churn trend with its rolling sum.
type ChurnPoint struct {
	Start   time.Time `json:"start"`
	Churn   int       `json:"churn"`
	Rolling int       `json:"rolling"` // Moving sum over the trailing window
}

// ChurnTrend is a rolling churn aggregate for spike detection.
type ChurnTrend struct {
	Period Period       `json:"period"`
	Window int          `json:"window"`
	Points []ChurnPoint `json:"points"`
}

// AnalyticsResult bundles all read-side aggregates for one repository.
// Deterministic given the same underlying commit set.
type AnalyticsResult struct {
	RepoID    string          `json:"repo_id"`
	Watermark string          `json:"watermark"`
	Activity  *ActivitySeries `json:"activity,omitempty"`
	Authors   []AuthorTotals  `json:"authors,omitempty"`
	Churn     *ChurnTrend     `json:"churn,omitempty"`
}
