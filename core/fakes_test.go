package core

import (
	"context"
	"sync"
	"time"

	"github.com/Dhyanesh27/evotrack/internal/contract"
	"github.com/Dhyanesh27/evotrack/schema"
)

// fakeGraph is an in-memory commit graph for pipeline tests. Commits
// absent from the map behave like history beyond a shallow boundary.
type fakeGraph struct {
	tip     string
	commits map[string]schema.RawCommit
	diffs   map[string][]schema.FileChange
	shallow bool
}

var _ contract.CommitGraph = &fakeGraph{} // Compile-time check

func (g *fakeGraph) Tip(_ context.Context) (string, error) {
	return g.tip, nil
}

func (g *fakeGraph) Commit(_ context.Context, hash string) (*schema.RawCommit, error) {
	commit, ok := g.commits[hash]
	if !ok {
		return nil, schema.ErrHistoryTruncated
	}
	dup := commit
	dup.Parents = append([]string(nil), commit.Parents...)
	return &dup, nil
}

func (g *fakeGraph) DiffStats(_ context.Context, hash, parent string) ([]schema.FileChange, error) {
	if parent != "" {
		if _, ok := g.commits[parent]; !ok {
			return nil, schema.ErrHistoryTruncated
		}
	}
	return g.diffs[hash], nil
}

func (g *fakeGraph) Shallow() bool { return g.shallow }

func (g *fakeGraph) Close() error { return nil }

// memStore is an in-memory CommitStore for coordinator tests.
type memStore struct {
	mu         sync.Mutex
	repos      map[string]schema.Repository
	commits    map[string]map[string]schema.NormalizedCommit // repoID -> hash -> commit
	identities map[string]map[string]schema.ContributorIdentity
	states     map[string]schema.ExtractionState

	upsertBatches int    // Number of UpsertCommits calls with rows
	onUpsert      func() // Called after each UpsertCommits, when set
}

var _ contract.CommitStore = &memStore{} // Compile-time check

func newMemStore() *memStore {
	return &memStore{
		repos:      make(map[string]schema.Repository),
		commits:    make(map[string]map[string]schema.NormalizedCommit),
		identities: make(map[string]map[string]schema.ContributorIdentity),
		states:     make(map[string]schema.ExtractionState),
	}
}

func (s *memStore) UpsertRepository(_ context.Context, repo schema.Repository) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.repos[repo.ID] = repo
	return nil
}

func (s *memStore) UpsertCommits(_ context.Context, commits []schema.NormalizedCommit) (int, error) {
	s.mu.Lock()
	inserted := 0
	for _, c := range commits {
		if s.commits[c.RepoID] == nil {
			s.commits[c.RepoID] = make(map[string]schema.NormalizedCommit)
		}
		if _, ok := s.commits[c.RepoID][c.Hash]; !ok {
			inserted++
		}
		s.commits[c.RepoID][c.Hash] = c
	}
	if len(commits) > 0 {
		s.upsertBatches++
	}
	hook := s.onUpsert
	s.mu.Unlock()
	if hook != nil {
		hook()
	}
	return inserted, nil
}

func (s *memStore) UpsertIdentities(_ context.Context, repoID string, identities []schema.ContributorIdentity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.identities[repoID] == nil {
		s.identities[repoID] = make(map[string]schema.ContributorIdentity)
	}
	for _, id := range identities {
		s.identities[repoID][id.ID] = id
	}
	return nil
}

func (s *memStore) MergeIdentities(_ context.Context, repoID, fromID, toID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for hash, c := range s.commits[repoID] {
		if c.AuthorID == fromID {
			c.AuthorID = toID
			s.commits[repoID][hash] = c
		}
	}
	delete(s.identities[repoID], fromID)
	return nil
}

func (s *memStore) ListCommitHashes(_ context.Context, repoID string) (map[string]struct{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]struct{}, len(s.commits[repoID]))
	for hash := range s.commits[repoID] {
		out[hash] = struct{}{}
	}
	return out, nil
}

func (s *memStore) ListIdentities(_ context.Context, repoID string) ([]schema.ContributorIdentity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]schema.ContributorIdentity, 0, len(s.identities[repoID]))
	for _, id := range s.identities[repoID] {
		out = append(out, id)
	}
	return out, nil
}

func (s *memStore) GetExtractionState(_ context.Context, repoID string) (*schema.ExtractionState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, ok := s.states[repoID]
	if !ok {
		return nil, nil
	}
	return &state, nil
}

func (s *memStore) SetExtractionState(_ context.Context, state schema.ExtractionState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[state.RepoID] = state
	return nil
}

func (s *memStore) QueryCommits(_ context.Context, repoID string, filter schema.AnalyticsFilter) ([]schema.NormalizedCommit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []schema.NormalizedCommit
	for _, c := range s.commits[repoID] {
		if !filter.Since.IsZero() && c.Timestamp.Before(filter.Since) {
			continue
		}
		if !filter.Until.IsZero() && c.Timestamp.After(filter.Until) {
			continue
		}
		if filter.AuthorID != "" && c.AuthorID != filter.AuthorID {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func (s *memStore) GetStatus(_ context.Context) (schema.StoreStatus, error) {
	return schema.StoreStatus{Backend: "memory", Connected: true}, nil
}

func (s *memStore) Close() error { return nil }

// linearGraph builds hashes c1..cN, each committed a minute apart, each
// touching one file with one insertion and no deletions.
func linearGraph(n int) *fakeGraph {
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	g := &fakeGraph{
		commits: make(map[string]schema.RawCommit),
		diffs:   make(map[string][]schema.FileChange),
	}
	prev := ""
	for i := 1; i <= n; i++ {
		hash := hashName(i)
		var parents []string
		if prev != "" {
			parents = []string{prev}
		}
		g.commits[hash] = schema.RawCommit{
			Hash:        hash,
			Parents:     parents,
			AuthorName:  "Jane Doe",
			AuthorEmail: "jane@example.com",
			CommittedAt: base.Add(time.Duration(i) * time.Minute),
			Message:     "change " + hash,
		}
		g.diffs[hash] = []schema.FileChange{{Path: "main.go", Insertions: 1}}
		prev = hash
	}
	g.tip = prev
	return g
}

func hashName(i int) string {
	return string(rune('a'+i-1)) + "1"
}

func testConfig() *contract.Config {
	return &contract.Config{
		BatchSize:  contract.DefaultBatchSize,
		Identity:   contract.DefaultIdentityPolicy(),
		RetryAfter: contract.DefaultRetryAfter,
	}
}
