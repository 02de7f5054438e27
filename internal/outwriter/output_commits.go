package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/Dhyanesh27/evotrack/internal/contract"
	"github.com/Dhyanesh27/evotrack/schema"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

const shortHashLen = 8

// WriteCommits prints a normalized commit listing using the configured format.
func (ow *OutWriter) WriteCommits(commits []schema.NormalizedCommit, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, commits)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCommitsCSV(w, commits)
		}, "Wrote CSV")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCommitsTable(w, commits, cfg)
		}, "Wrote table")
	}
}

// writeCommitsTable generates the human-readable commit listing.
func writeCommitsTable(w io.Writer, commits []schema.NormalizedCommit, cfg *contract.Config) error {
	if len(commits) == 0 {
		_, err := fmt.Fprintln(w, "No commits found")
		return err
	}

	maxSubjectWidth := terminalWidth(cfg) / 2

	table := tablewriter.NewWriter(w)
	table.Header([]string{"Hash", "Date", "Author", "Subject", "+", "-"})
	table.Configure(func(tcfg *tablewriter.Config) {
		tcfg.Row.Alignment.Global = tw.AlignLeft
	})

	var data [][]string
	for _, c := range commits {
		hash := c.Hash
		if len(hash) > shortHashLen {
			hash = hash[:shortHashLen]
		}
		// Truncate on runes so multi-byte subjects are never split.
		subject := c.Subject
		if runes := []rune(subject); len(runes) > maxSubjectWidth {
			subject = string(runes[:maxSubjectWidth-3]) + "..."
		}
		data = append(data, []string{
			hash,
			c.Timestamp.Format(dayLabelFormat),
			c.AuthorID,
			subject,
			strconv.Itoa(c.Insertions),
			strconv.Itoa(c.Deletions),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Showing %d commits\n", len(commits))
	return err
}

// writeCommitsCSV writes the commit listing in CSV format.
func writeCommitsCSV(w io.Writer, commits []schema.NormalizedCommit) error {
	header := []string{
		"hash",
		"timestamp",
		"author_id",
		"subject",
		"insertions",
		"deletions",
		"files_changed",
		"is_merge",
	}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, c := range commits {
			rec := []string{
				c.Hash,
				c.Timestamp.Format(contract.DateTimeFormat),
				c.AuthorID,
				c.Subject,
				strconv.Itoa(c.Insertions),
				strconv.Itoa(c.Deletions),
				strconv.Itoa(c.FilesChanged),
				strconv.FormatBool(c.IsMerge),
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}
