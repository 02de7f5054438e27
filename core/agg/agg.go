// Package agg computes read-side analytics over normalized commits.
// All outputs are deterministic for a given commit set: grouping always
// sorts before emitting, and empty buckets are materialized as zeros.
package agg

import (
	"sort"
	"time"

	"github.com/Dhyanesh27/evotrack/schema"
)

// bucketStart floors t to the start of its bucket in UTC. Weeks start on
// Monday (ISO convention).
func bucketStart(t time.Time, period schema.Period) time.Time {
	t = t.UTC()
	switch period {
	case schema.PeriodDay:
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	case schema.PeriodWeek:
		day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		offset := (int(day.Weekday()) + 6) % 7
		return day.AddDate(0, 0, -offset)
	default: // Month
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	}
}

// nextBucket advances start by one period.
func nextBucket(start time.Time, period schema.Period) time.Time {
	switch period {
	case schema.PeriodDay:
		return start.AddDate(0, 0, 1)
	case schema.PeriodWeek:
		return start.AddDate(0, 0, 7)
	default: // Month
		return start.AddDate(0, 1, 0)
	}
}

// Activity buckets commit count and churn by period over [since, until].
// Buckets with zero commits are included as zeros, never omitted, so
// consumers can plot continuous series. Zero bounds default to the first
// and last commit timestamps.
func Activity(commits []schema.NormalizedCommit, period schema.Period, since, until time.Time) *schema.ActivitySeries {
	series := &schema.ActivitySeries{Period: period}
	if len(commits) == 0 && (since.IsZero() || until.IsZero()) {
		return series
	}

	if since.IsZero() {
		since = commits[0].Timestamp
		for _, c := range commits {
			if c.Timestamp.Before(since) {
				since = c.Timestamp
			}
		}
	}
	if until.IsZero() {
		until = commits[0].Timestamp
		for _, c := range commits {
			if c.Timestamp.After(until) {
				until = c.Timestamp
			}
		}
	}

	start := bucketStart(since, period)
	end := bucketStart(until, period)

	index := make(map[time.Time]int)
	for cursor := start; !cursor.After(end); cursor = nextBucket(cursor, period) {
		index[cursor] = len(series.Buckets)
		series.Buckets = append(series.Buckets, schema.ActivityBucket{Start: cursor})
	}

	for _, c := range commits {
		i, ok := index[bucketStart(c.Timestamp, period)]
		if !ok {
			continue // Outside the requested range
		}
		bucket := &series.Buckets[i]
		bucket.Commits++
		bucket.Insertions += c.Insertions
		bucket.Deletions += c.Deletions
		bucket.Churn += c.Churn()
	}
	return series
}

// AuthorTotals aggregates per-contributor totals, ranked descending by
// commit count with a stable tie-break on canonical id.
func AuthorTotals(commits []schema.NormalizedCommit, names map[string]string) []schema.AuthorTotals {
	byAuthor := make(map[string]*schema.AuthorTotals)
	for _, c := range commits {
		totals, ok := byAuthor[c.AuthorID]
		if !ok {
			totals = &schema.AuthorTotals{
				AuthorID:    c.AuthorID,
				DisplayName: names[c.AuthorID],
				FirstSeen:   c.Timestamp,
				LastSeen:    c.Timestamp,
			}
			byAuthor[c.AuthorID] = totals
		}
		totals.Commits++
		totals.Insertions += c.Insertions
		totals.Deletions += c.Deletions
		if c.Timestamp.Before(totals.FirstSeen) {
			totals.FirstSeen = c.Timestamp
		}
		if c.Timestamp.After(totals.LastSeen) {
			totals.LastSeen = c.Timestamp
		}
	}

	out := make([]schema.AuthorTotals, 0, len(byAuthor))
	for _, totals := range byAuthor {
		out = append(out, *totals)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Commits != out[j].Commits {
			return out[i].Commits > out[j].Commits
		}
		return out[i].AuthorID < out[j].AuthorID
	})
	return out
}

// ChurnTrend computes a moving churn sum over the trailing window of
// buckets, suitable for spike detection. Window policy is configuration.
func ChurnTrend(series *schema.ActivitySeries, window int) *schema.ChurnTrend {
	if window <= 0 {
		window = 1
	}
	trend := &schema.ChurnTrend{Period: series.Period, Window: window}
	rolling := 0
	for i, bucket := range series.Buckets {
		rolling += bucket.Churn
		if i >= window {
			rolling -= series.Buckets[i-window].Churn
		}
		trend.Points = append(trend.Points, schema.ChurnPoint{
			Start:   bucket.Start,
			Churn:   bucket.Churn,
			Rolling: rolling,
		})
	}
	return trend
}
