package core

import (
	"errors"
	"testing"
	"time"

	"github.com/Dhyanesh27/evotrack/core/identity"
	"github.com/Dhyanesh27/evotrack/internal/contract"
	"github.com/Dhyanesh27/evotrack/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestResolver() *identity.Resolver {
	return identity.NewResolver(contract.DefaultIdentityPolicy(), nil)
}

func TestNormalizeCommitBasics(t *testing.T) {
	est := time.FixedZone("EST", -5*3600)
	raw := &schema.RawCommit{
		Hash:        "abc123",
		Parents:     []string{"parent1"},
		AuthorName:  "Jane Doe",
		AuthorEmail: "jane@example.com",
		CommittedAt: time.Date(2024, 3, 1, 9, 30, 0, 0, est),
		Message:     "Add parser\n\nLonger body here.",
		Changes: []schema.FileChange{
			{Path: "parser.go", Insertions: 12, Deletions: 3},
			{Path: "parser_test.go", Insertions: 20, Deletions: 0},
		},
	}

	got, err := normalizeCommit("repo-1", raw, newTestResolver())
	require.NoError(t, err)

	assert.Equal(t, "repo-1", got.RepoID)
	assert.Equal(t, "abc123", got.Hash)
	assert.NotEmpty(t, got.AuthorID)
	assert.Equal(t, "Add parser", got.Subject)
	assert.False(t, got.IsMerge)
	assert.Equal(t, 32, got.Insertions)
	assert.Equal(t, 3, got.Deletions)
	assert.Equal(t, 2, got.FilesChanged)
	assert.Equal(t, 35, got.Churn())
}

func TestNormalizeCommitUTCConversion(t *testing.T) {
	est := time.FixedZone("EST", -5*3600)
	instant := time.Date(2024, 3, 1, 9, 30, 0, 0, est)
	raw := &schema.RawCommit{
		Hash:        "abc123",
		AuthorName:  "Jane Doe",
		AuthorEmail: "jane@example.com",
		CommittedAt: instant,
	}

	got, err := normalizeCommit("repo-1", raw, newTestResolver())
	require.NoError(t, err)

	assert.Equal(t, time.UTC, got.Timestamp.Location())
	assert.True(t, got.Timestamp.Equal(instant), "conversion must preserve the instant")
	assert.Equal(t, 14, got.Timestamp.Hour())
}

func TestNormalizeCommitBinaryFiles(t *testing.T) {
	raw := &schema.RawCommit{
		Hash:        "abc123",
		AuthorName:  "Jane Doe",
		AuthorEmail: "jane@example.com",
		CommittedAt: time.Now(),
		Changes: []schema.FileChange{
			{Path: "logo.png", Insertions: 99, Deletions: 99, Binary: true},
			{Path: "main.go", Insertions: 5, Deletions: 1},
		},
	}

	got, err := normalizeCommit("repo-1", raw, newTestResolver())
	require.NoError(t, err)

	assert.Equal(t, 2, got.FilesChanged, "binary files count as changed")
	assert.Equal(t, 5, got.Insertions, "binary files carry no line stats")
	assert.Equal(t, 1, got.Deletions)
}

func TestNormalizeCommitMergeFlag(t *testing.T) {
	raw := &schema.RawCommit{
		Hash:        "abc123",
		Parents:     []string{"p1", "p2"},
		AuthorName:  "Jane Doe",
		AuthorEmail: "jane@example.com",
		CommittedAt: time.Now(),
	}

	got, err := normalizeCommit("repo-1", raw, newTestResolver())
	require.NoError(t, err)
	assert.True(t, got.IsMerge)
}

func TestNormalizeCommitMalformed(t *testing.T) {
	now := time.Now()
	tests := []struct {
		name string
		raw  schema.RawCommit
	}{
		{
			name: "missing hash",
			raw:  schema.RawCommit{AuthorName: "Jane", AuthorEmail: "jane@x.io", CommittedAt: now},
		},
		{
			name: "missing timestamp",
			raw:  schema.RawCommit{Hash: "abc", AuthorName: "Jane", AuthorEmail: "jane@x.io"},
		},
		{
			name: "missing author entirely",
			raw:  schema.RawCommit{Hash: "abc", CommittedAt: now, AuthorName: "  ", AuthorEmail: ""},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := normalizeCommit("repo-1", &tt.raw, newTestResolver())
			require.Error(t, err)
			assert.True(t, errors.Is(err, schema.ErrMalformedCommit))

			var malformed *schema.MalformedCommitError
			assert.True(t, errors.As(err, &malformed))
		})
	}
}

func TestNormalizeCommitAuthorWithOnlyEmail(t *testing.T) {
	raw := &schema.RawCommit{
		Hash:        "abc123",
		AuthorEmail: "jane@example.com",
		CommittedAt: time.Now(),
	}

	got, err := normalizeCommit("repo-1", raw, newTestResolver())
	require.NoError(t, err)
	assert.NotEmpty(t, got.AuthorID)
}
