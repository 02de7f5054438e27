package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/Dhyanesh27/evotrack/internal/contract"
	"github.com/Dhyanesh27/evotrack/schema"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// Bucket label layouts per aggregation period.
const (
	dayLabelFormat   = "2006-01-02"
	monthLabelFormat = "2006-01"
)

// printActivity outputs the activity time series, dispatching on format.
func printActivity(result *schema.AnalyticsResult, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, result)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeActivityCSV(w, result.Activity)
		}, "Wrote CSV")
	case schema.ParquetOut:
		return writeParquet(result, cfg)
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeActivityTable(w, result, cfg)
		}, "Wrote table")
	}
}

// bucketLabel formats a bucket start for display. ISO weeks render as
// e.g. 2024-W07 so adjacent weeks sort and read naturally.
func bucketLabel(series *schema.ActivitySeries, bucket schema.ActivityBucket) string {
	switch series.Period {
	case schema.PeriodWeek:
		year, week := bucket.Start.ISOWeek()
		return fmt.Sprintf("%d-W%02d", year, week)
	case schema.PeriodMonth:
		return bucket.Start.Format(monthLabelFormat)
	default:
		return bucket.Start.Format(dayLabelFormat)
	}
}

// sparkline renders per-bucket commit counts as a compact bar.
func sparkline(commits, maxCommits int) string {
	if maxCommits <= 0 {
		return ""
	}
	const barWidth = 20
	filled := commits * barWidth / maxCommits
	if commits > 0 && filled == 0 {
		filled = 1
	}
	return strings.Repeat("█", filled)
}

// writeActivityTable generates the human-readable activity table.
func writeActivityTable(w io.Writer, result *schema.AnalyticsResult, cfg *contract.Config) error {
	series := result.Activity
	if series == nil || len(series.Buckets) == 0 {
		_, err := fmt.Fprintf(w, "No commits found for %s\n", result.RepoID)
		return err
	}

	maxCommits := 0
	for _, b := range series.Buckets {
		if b.Commits > maxCommits {
			maxCommits = b.Commits
		}
	}

	table := tablewriter.NewWriter(w)
	table.Header([]string{"Bucket", "Commits", "Insertions", "Deletions", "Churn", ""})
	table.Configure(func(tcfg *tablewriter.Config) {
		tcfg.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	for _, b := range series.Buckets {
		data = append(data, []string{
			bucketLabel(series, b),
			strconv.Itoa(b.Commits),
			strconv.Itoa(b.Insertions),
			strconv.Itoa(b.Deletions),
			strconv.Itoa(b.Churn),
			sparkline(b.Commits, maxCommits),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	totalCommits := 0
	totalChurn := 0
	for _, b := range series.Buckets {
		totalCommits += b.Commits
		totalChurn += b.Churn
	}
	_, err := fmt.Fprintf(w, "%d buckets per %s (total commits: %d, total churn: %d)\n",
		len(series.Buckets), series.Period, totalCommits, totalChurn)
	return err
}

// writeActivityCSV writes the activity series in CSV format.
func writeActivityCSV(w io.Writer, series *schema.ActivitySeries) error {
	header := []string{"bucket_start", "commits", "insertions", "deletions", "churn"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		if series == nil {
			return nil
		}
		for _, b := range series.Buckets {
			rec := []string{
				b.Start.Format(contract.DateTimeFormat),
				strconv.Itoa(b.Commits),
				strconv.Itoa(b.Insertions),
				strconv.Itoa(b.Deletions),
				strconv.Itoa(b.Churn),
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}
