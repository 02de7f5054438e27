package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/Dhyanesh27/evotrack/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSQLiteStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(schema.SQLiteBackend, filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func testCommit(hash string, ts time.Time) schema.NormalizedCommit {
	return schema.NormalizedCommit{
		RepoID:       "repo-1",
		Hash:         hash,
		AuthorID:     "author-1",
		Timestamp:    ts,
		Subject:      "change " + hash,
		Insertions:   3,
		Deletions:    1,
		FilesChanged: 1,
	}
}

func TestQuoteTableName(t *testing.T) {
	assert.Equal(t, "`evotrack_commits`", quoteTableName(commitsTable, schema.MySQLBackend))
	assert.Equal(t, `"evotrack_commits"`, quoteTableName(commitsTable, schema.SQLiteBackend))
	assert.Equal(t, `"evotrack_commits"`, quoteTableName(commitsTable, schema.PostgreSQLBackend))
}

func TestRebind(t *testing.T) {
	query := "SELECT * FROM t WHERE a = ? AND b = ?"

	assert.Equal(t, query, rebind(query, schema.SQLiteBackend))
	assert.Equal(t, query, rebind(query, schema.MySQLBackend))
	assert.Equal(t, "SELECT * FROM t WHERE a = $1 AND b = $2", rebind(query, schema.PostgreSQLBackend))
}

func TestDDLStatementsPerBackend(t *testing.T) {
	for _, backend := range []schema.DatabaseBackend{schema.SQLiteBackend, schema.MySQLBackend, schema.PostgreSQLBackend} {
		stmts := ddlStatements(backend)
		assert.Len(t, stmts, 5, "one statement per table for %s", backend)
	}

	for _, stmt := range ddlStatements(schema.PostgreSQLBackend) {
		assert.NotContains(t, stmt, "BLOB", "PostgreSQL uses BYTEA")
	}
}

func TestNewRejectsUnknownBackend(t *testing.T) {
	_, err := New("oracle", "")
	assert.Error(t, err)
}

func TestUpsertCommitsIdempotent(t *testing.T) {
	s := newSQLiteStore(t)
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	batch := []schema.NormalizedCommit{
		testCommit("h1", base),
		testCommit("h2", base.Add(time.Hour)),
	}

	inserted, err := s.UpsertCommits(ctx, batch)
	require.NoError(t, err)
	assert.Equal(t, 2, inserted)

	// Retrying the same batch inserts nothing and returns no error.
	inserted, err = s.UpsertCommits(ctx, batch)
	require.NoError(t, err)
	assert.Equal(t, 0, inserted)

	hashes, err := s.ListCommitHashes(ctx, "repo-1")
	require.NoError(t, err)
	assert.Len(t, hashes, 2)
}

func TestQueryCommitsFiltersAndOrder(t *testing.T) {
	s := newSQLiteStore(t)
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	commits := []schema.NormalizedCommit{
		testCommit("h3", base.Add(2*time.Hour)),
		testCommit("h1", base),
		testCommit("h2", base.Add(time.Hour)),
	}
	other := testCommit("h9", base)
	other.AuthorID = "author-9"
	commits = append(commits, other)

	_, err := s.UpsertCommits(ctx, commits)
	require.NoError(t, err)

	got, err := s.QueryCommits(ctx, "repo-1", schema.AnalyticsFilter{})
	require.NoError(t, err)
	require.Len(t, got, 4)
	for i := 1; i < len(got); i++ {
		prev, cur := got[i-1], got[i]
		ordered := prev.Timestamp.Before(cur.Timestamp) ||
			(prev.Timestamp.Equal(cur.Timestamp) && prev.Hash < cur.Hash)
		assert.True(t, ordered, "results must order by ts then hash")
	}

	got, err = s.QueryCommits(ctx, "repo-1", schema.AnalyticsFilter{AuthorID: "author-9"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "h9", got[0].Hash)

	got, err = s.QueryCommits(ctx, "repo-1", schema.AnalyticsFilter{
		Since: base.Add(30 * time.Minute),
		Until: base.Add(90 * time.Minute),
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "h2", got[0].Hash)
}

func TestQueryCommitsRoundTripsFields(t *testing.T) {
	s := newSQLiteStore(t)
	ctx := context.Background()

	want := schema.NormalizedCommit{
		RepoID:       "repo-1",
		Hash:         "deadbeef",
		AuthorID:     "author-1",
		Timestamp:    time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		Subject:      "Merge branch 'feature'",
		Insertions:   10,
		Deletions:    5,
		FilesChanged: 3,
		IsMerge:      true,
	}
	_, err := s.UpsertCommits(ctx, []schema.NormalizedCommit{want})
	require.NoError(t, err)

	got, err := s.QueryCommits(ctx, "repo-1", schema.AnalyticsFilter{})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, want, got[0])
}

func TestUpsertIdentitiesReplacesAliases(t *testing.T) {
	s := newSQLiteStore(t)
	ctx := context.Background()

	id := schema.ContributorIdentity{
		ID:          "id-1",
		DisplayName: "Jane Doe",
		Seq:         1,
		Aliases:     []schema.Alias{{Name: "Jane Doe", Email: "jane@corp.com"}},
	}
	require.NoError(t, s.UpsertIdentities(ctx, "repo-1", []schema.ContributorIdentity{id}))

	id.Aliases = append(id.Aliases, schema.Alias{Name: "J Doe", Email: "jane@other.org"})
	require.NoError(t, s.UpsertIdentities(ctx, "repo-1", []schema.ContributorIdentity{id}))

	got, err := s.ListIdentities(ctx, "repo-1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "id-1", got[0].ID)
	assert.Len(t, got[0].Aliases, 2)
	assert.Equal(t, int64(1), got[0].Seq)
}

func TestMergeIdentitiesRepointsCommits(t *testing.T) {
	s := newSQLiteStore(t)
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	c1 := testCommit("aaa", base)
	c2 := testCommit("bbb", base.Add(time.Hour))
	c2.AuthorID = "author-2"
	_, err := s.UpsertCommits(ctx, []schema.NormalizedCommit{c1, c2})
	require.NoError(t, err)

	require.NoError(t, s.UpsertIdentities(ctx, "repo-1", []schema.ContributorIdentity{
		{ID: "author-1", DisplayName: "Jane", Seq: 1},
		{ID: "author-2", DisplayName: "Jane Smith", Seq: 2},
	}))

	require.NoError(t, s.MergeIdentities(ctx, "repo-1", "author-2", "author-1"))

	got, err := s.ListIdentities(ctx, "repo-1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "author-1", got[0].ID)

	commits, err := s.QueryCommits(ctx, "repo-1", schema.AnalyticsFilter{})
	require.NoError(t, err)
	require.Len(t, commits, 2)
	for _, c := range commits {
		assert.Equal(t, "author-1", c.AuthorID)
	}

	// Unrelated repositories are untouched.
	other := testCommit("ccc", base)
	other.RepoID = "repo-2"
	other.AuthorID = "author-2"
	_, err = s.UpsertCommits(ctx, []schema.NormalizedCommit{other})
	require.NoError(t, err)
	require.NoError(t, s.MergeIdentities(ctx, "repo-1", "author-2", "author-1"))
	commits, err = s.QueryCommits(ctx, "repo-2", schema.AnalyticsFilter{})
	require.NoError(t, err)
	require.Len(t, commits, 1)
	assert.Equal(t, "author-2", commits[0].AuthorID)
}

func TestExtractionStateRoundTrip(t *testing.T) {
	s := newSQLiteStore(t)
	ctx := context.Background()

	state, err := s.GetExtractionState(ctx, "repo-1")
	require.NoError(t, err)
	assert.Nil(t, state, "never-extracted repository has no state")

	want := schema.ExtractionState{
		RepoID:      "repo-1",
		TipHash:     "abc",
		CommitCount: 42,
		UpdatedAt:   time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	require.NoError(t, s.SetExtractionState(ctx, want))

	state, err = s.GetExtractionState(ctx, "repo-1")
	require.NoError(t, err)
	require.NotNil(t, state)
	assert.Equal(t, want, *state)

	// Overwrite advances the watermark in place.
	want.TipHash = "def"
	want.CommitCount = 50
	require.NoError(t, s.SetExtractionState(ctx, want))
	state, err = s.GetExtractionState(ctx, "repo-1")
	require.NoError(t, err)
	assert.Equal(t, "def", state.TipHash)
	assert.Equal(t, "def:50", state.Watermark())
}

func TestCacheRoundTrip(t *testing.T) {
	s := newSQLiteStore(t)
	ctx := context.Background()

	_, _, _, err := s.Get(ctx, "missing")
	assert.Error(t, err, "missing key is an error, not empty data")

	require.NoError(t, s.Set(ctx, "k", []byte("v1"), 1, 100))
	value, version, ts, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v1"), value)
	assert.Equal(t, 1, version)
	assert.Equal(t, int64(100), ts)

	// Set on an existing key overwrites.
	require.NoError(t, s.Set(ctx, "k", []byte("v2"), 2, 200))
	value, version, _, err = s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), value)
	assert.Equal(t, 2, version)
}

func TestGetStatusAndClear(t *testing.T) {
	s := newSQLiteStore(t)
	ctx := context.Background()

	require.NoError(t, s.UpsertRepository(ctx, schema.Repository{ID: "repo-1", Name: "repo"}))
	_, err := s.UpsertCommits(ctx, []schema.NormalizedCommit{testCommit("h1", time.Now())})
	require.NoError(t, err)
	require.NoError(t, s.SetExtractionState(ctx, schema.ExtractionState{
		RepoID: "repo-1", TipHash: "h1", CommitCount: 1, UpdatedAt: time.Now(),
	}))

	status, err := s.GetStatus(ctx)
	require.NoError(t, err)
	assert.True(t, status.Connected)
	assert.Equal(t, int64(1), status.Repositories)
	assert.Equal(t, int64(1), status.Commits)
	assert.False(t, status.LastUpdated.IsZero())

	require.NoError(t, s.Clear(ctx))
	status, err = s.GetStatus(ctx)
	require.NoError(t, err)
	assert.Zero(t, status.Repositories)
	assert.Zero(t, status.Commits)
}
