// Package parquet exports analytics results to Parquet files using
// github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"os"
	"time"

	"github.com/Dhyanesh27/evotrack/schema"
	"github.com/parquet-go/parquet-go"
)

// ActivityRow is one activity bucket as stored in a Parquet export.
type ActivityRow struct {
	// RepoID identifies the repository this row belongs to
	RepoID string `parquet:"repo_id,snappy"`

	// Watermark is the extraction watermark the row was computed at
	Watermark string `parquet:"watermark,snappy"`

	// BucketStart is the inclusive start of the bucket (UTC)
	BucketStart time.Time `parquet:"bucket_start,snappy"`

	// Commits is the number of commits in the bucket
	Commits int32 `parquet:"commits,snappy"`

	// Insertions is the number of inserted lines in the bucket
	Insertions int32 `parquet:"insertions,snappy"`

	// Deletions is the number of deleted lines in the bucket
	Deletions int32 `parquet:"deletions,snappy"`

	// Churn is insertions plus deletions
	Churn int32 `parquet:"churn,snappy"`

	// RollingChurn is the trailing-window churn sum (nullable, only
	// populated when a churn trend was computed)
	RollingChurn *int32 `parquet:"rolling_churn,optional,snappy"`
}

// AuthorRow is one contributor's totals as stored in a Parquet export.
type AuthorRow struct {
	// RepoID identifies the repository this row belongs to
	RepoID string `parquet:"repo_id,snappy"`

	// Watermark is the extraction watermark the row was computed at
	Watermark string `parquet:"watermark,snappy"`

	// Rank is the 1-based position in the commit-count ranking
	Rank int32 `parquet:"rank,snappy"`

	// AuthorID is the stable resolved identity id
	AuthorID string `parquet:"author_id,snappy"`

	// DisplayName is the identity's canonical display name
	DisplayName string `parquet:"display_name,snappy"`

	// Commits is the total commit count
	Commits int32 `parquet:"commits,snappy"`

	// Insertions is the total inserted line count
	Insertions int32 `parquet:"insertions,snappy"`

	// Deletions is the total deleted line count
	Deletions int32 `parquet:"deletions,snappy"`

	// FirstSeen is the timestamp of the contributor's earliest commit
	FirstSeen time.Time `parquet:"first_seen,snappy"`

	// LastSeen is the timestamp of the contributor's latest commit
	LastSeen time.Time `parquet:"last_seen,snappy"`
}

// WriteAnalytics writes whichever aggregates the result carries to
// outputPath. Activity rows and author rows never appear in the same
// file, so exactly one aggregate must be populated.
func WriteAnalytics(result *schema.AnalyticsResult, outputPath string) error {
	if outputPath == "" {
		return fmt.Errorf("parquet output requires an output file path")
	}
	switch {
	case result.Activity != nil:
		return writeRows(convertActivity(result), outputPath)
	case len(result.Authors) > 0:
		return writeRows(convertAuthors(result), outputPath)
	case result.Churn != nil:
		return writeRows(convertChurn(result), outputPath)
	default:
		return fmt.Errorf("analytics result has no rows to export")
	}
}

// writeRows writes a slice of row structs to a Parquet file.
func writeRows[T any](data []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	// Schema is inferred from the row struct tags
	writer := parquet.NewGenericWriter[T](file)
	defer func() { _ = writer.Close() }()

	if _, err := writer.Write(data); err != nil {
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	return nil
}

// convertActivity converts an activity series to Parquet rows.
func convertActivity(result *schema.AnalyticsResult) []ActivityRow {
	buckets := result.Activity.Buckets
	rows := make([]ActivityRow, len(buckets))
	for i, b := range buckets {
		rows[i] = ActivityRow{
			RepoID:      result.RepoID,
			Watermark:   result.Watermark,
			BucketStart: b.Start,
			Commits:     int32(b.Commits),
			Insertions:  int32(b.Insertions),
			Deletions:   int32(b.Deletions),
			Churn:       int32(b.Churn),
		}
	}
	return rows
}

// convertAuthors converts ranked contributor totals to Parquet rows.
func convertAuthors(result *schema.AnalyticsResult) []AuthorRow {
	rows := make([]AuthorRow, len(result.Authors))
	for i, a := range result.Authors {
		rows[i] = AuthorRow{
			RepoID:      result.RepoID,
			Watermark:   result.Watermark,
			Rank:        int32(i + 1),
			AuthorID:    a.AuthorID,
			DisplayName: a.DisplayName,
			Commits:     int32(a.Commits),
			Insertions:  int32(a.Insertions),
			Deletions:   int32(a.Deletions),
			FirstSeen:   a.FirstSeen,
			LastSeen:    a.LastSeen,
		}
	}
	return rows
}

// convertChurn converts a churn trend to activity rows carrying the
// rolling sum.
func convertChurn(result *schema.AnalyticsResult) []ActivityRow {
	points := result.Churn.Points
	rows := make([]ActivityRow, len(points))
	for i, p := range points {
		rolling := int32(p.Rolling)
		rows[i] = ActivityRow{
			RepoID:       result.RepoID,
			Watermark:    result.Watermark,
			BucketStart:  p.Start,
			Churn:        int32(p.Churn),
			RollingChurn: &rolling,
		}
	}
	return rows
}
