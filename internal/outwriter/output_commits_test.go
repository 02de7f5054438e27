package outwriter

import (
	"bytes"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/Dhyanesh27/evotrack/internal/contract"
	"github.com/Dhyanesh27/evotrack/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleCommits() []schema.NormalizedCommit {
	return []schema.NormalizedCommit{
		{
			RepoID:       "/repos/demo",
			Hash:         "deadbeefcafe0123",
			AuthorID:     "id-alice",
			Timestamp:    time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC),
			Subject:      "Fix off-by-one in bucket rollover",
			Insertions:   12,
			Deletions:    4,
			FilesChanged: 2,
		},
		{
			RepoID:       "/repos/demo",
			Hash:         "0123456789abcdef",
			AuthorID:     "id-bob",
			Timestamp:    time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC),
			Subject:      "Merge branch 'feature'",
			FilesChanged: 0,
			IsMerge:      true,
		},
	}
}

func TestWriteCommitsTable(t *testing.T) {
	cfg := &contract.Config{Output: schema.TextOut, Width: 120}

	var buf bytes.Buffer
	err := writeCommitsTable(&buf, sampleCommits(), cfg)
	require.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, "deadbeef")             // Short hash
	assert.NotContains(t, output, "deadbeefcafe0123") // Full hash never shown
	assert.Contains(t, output, "id-alice")
	assert.Contains(t, output, "2024-03-05")
	assert.Contains(t, output, "Fix off-by-one in bucket rollover")
	assert.Contains(t, output, "Showing 2 commits")
}

func TestWriteCommitsTableTruncatesSubject(t *testing.T) {
	commits := sampleCommits()
	commits[0].Subject = strings.Repeat("x", 200)
	cfg := &contract.Config{Output: schema.TextOut, Width: 80}

	var buf bytes.Buffer
	err := writeCommitsTable(&buf, commits, cfg)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "...")
	assert.NotContains(t, buf.String(), strings.Repeat("x", 50))
}

func TestWriteCommitsTableTruncatesOnRunes(t *testing.T) {
	commits := sampleCommits()
	commits[0].Subject = strings.Repeat("ü", 200)
	cfg := &contract.Config{Output: schema.TextOut, Width: 80}

	var buf bytes.Buffer
	err := writeCommitsTable(&buf, commits, cfg)
	require.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, "ü...")
	assert.True(t, utf8.ValidString(output), "truncation must not split a rune")
}

func TestWriteCommitsTableEmpty(t *testing.T) {
	cfg := &contract.Config{Output: schema.TextOut, Width: 120}

	var buf bytes.Buffer
	err := writeCommitsTable(&buf, nil, cfg)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "No commits found")
}

func TestWriteCommitsCSV(t *testing.T) {
	var buf bytes.Buffer
	err := writeCommitsCSV(&buf, sampleCommits())
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "hash,timestamp,author_id,subject,insertions,deletions,files_changed,is_merge", lines[0])
	assert.Contains(t, lines[1], "deadbeefcafe0123")
	assert.Contains(t, lines[1], ",12,4,2,false")
	assert.Contains(t, lines[2], ",0,0,0,true")
}
