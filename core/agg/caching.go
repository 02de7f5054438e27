package agg

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Dhyanesh27/evotrack/internal/contract"
	"github.com/Dhyanesh27/evotrack/schema"
)

// currentCacheVersion defines the version of the cached analytics layout.
const currentCacheVersion = 1

// Query computes the full analytics result for a repository, reading only
// already-persisted immutable rows. Safe for arbitrary concurrent callers.
func Query(ctx context.Context, store contract.CommitStore, repoID string, filter schema.AnalyticsFilter) (*schema.AnalyticsResult, error) {
	commits, err := store.QueryCommits(ctx, repoID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to query commits: %w", err)
	}

	identities, err := store.ListIdentities(ctx, repoID)
	if err != nil {
		return nil, fmt.Errorf("failed to list identities: %w", err)
	}
	names := make(map[string]string, len(identities))
	for _, id := range identities {
		names[id.ID] = id.DisplayName
	}

	state, err := store.GetExtractionState(ctx, repoID)
	if err != nil {
		return nil, fmt.Errorf("failed to read extraction state: %w", err)
	}

	activity := Activity(commits, filter.Period, filter.Since, filter.Until)
	return &schema.AnalyticsResult{
		RepoID:    repoID,
		Watermark: state.Watermark(),
		Activity:  activity,
		Authors:   AuthorTotals(commits, names),
		Churn:     ChurnTrend(activity, filter.Window),
	}, nil
}

// CachedQuery wraps Query with a cache keyed by the extraction watermark,
// so a stale entry can never be served after new commits are persisted.
func CachedQuery(ctx context.Context, store contract.CommitStore, cache contract.CacheStore, repoID string, filter schema.AnalyticsFilter) (*schema.AnalyticsResult, error) {
	if cache == nil {
		return Query(ctx, store, repoID, filter)
	}

	state, err := store.GetExtractionState(ctx, repoID)
	if err != nil {
		return nil, fmt.Errorf("failed to read extraction state: %w", err)
	}
	key := cacheKey(repoID, filter, state.Watermark())

	if data, version, _, err := cache.Get(ctx, key); err == nil && version == currentCacheVersion {
		var result schema.AnalyticsResult
		if err := json.Unmarshal(data, &result); err == nil {
			return &result, nil
		}
	}

	result, err := Query(ctx, store, repoID, filter)
	if err != nil {
		return nil, err
	}
	if data, err := json.Marshal(result); err == nil {
		_ = cache.Set(ctx, key, data, currentCacheVersion, time.Now().Unix())
	}
	return result, nil
}

// cacheKey derives a stable key from repository, filter and watermark.
func cacheKey(repoID string, filter schema.AnalyticsFilter, watermark string) string {
	raw := fmt.Sprintf("%s|%s|%s|%s|%s|%d|%s",
		repoID,
		filter.Period,
		filter.Since.UTC().Format(time.RFC3339),
		filter.Until.UTC().Format(time.RFC3339),
		filter.AuthorID,
		filter.Window,
		watermark,
	)
	return fmt.Sprintf("analytics:%x", sha256.Sum256([]byte(raw)))
}
