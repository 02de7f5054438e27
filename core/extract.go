package core

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/Dhyanesh27/evotrack/core/identity"
	"github.com/Dhyanesh27/evotrack/internal/contract"
	"github.com/Dhyanesh27/evotrack/schema"
)

// repoLocks grants at-most-one extraction per repository while leaving
// different repositories fully independent.
type repoLocks struct {
	mu   sync.Mutex
	held map[string]bool
}

func newRepoLocks() *repoLocks {
	return &repoLocks{held: make(map[string]bool)}
}

// tryAcquire takes the lock for repoID, reporting false on contention.
func (l *repoLocks) tryAcquire(repoID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[repoID] {
		return false
	}
	l.held[repoID] = true
	return true
}

func (l *repoLocks) release(repoID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.held, repoID)
}

// pendingCommit keeps the raw author spelling next to the normalized
// record so the author id can be resolved again when the batch flushes.
type pendingCommit struct {
	commit      schema.NormalizedCommit
	authorName  string
	authorEmail string
}

// Coordinator orchestrates reader, resolver and normalizer, deduplicates
// against already-stored commits, and persists new records in batches.
type Coordinator struct {
	store  contract.CommitStore
	opener contract.GraphOpener
	cfg    *contract.Config
	locks  *repoLocks
}

// NewCoordinator creates an extraction coordinator.
func NewCoordinator(store contract.CommitStore, opener contract.GraphOpener, cfg *contract.Config) *Coordinator {
	return &Coordinator{
		store:  store,
		opener: opener,
		cfg:    cfg,
		locks:  newRepoLocks(),
	}
}

// RepositoryFromLocator derives the repository record for a path or URL.
func RepositoryFromLocator(locator string) schema.Repository {
	name := strings.TrimSuffix(path.Base(strings.TrimRight(locator, "/")), ".git")
	return schema.Repository{ID: locator, Name: name}
}

// Extract runs one extraction for the repository identified by locator.
// Contention policy: a request arriving while an extraction is in flight
// is rejected with ExtractionInProgress and a retry-after hint, keeping
// callers responsive. Persistence is idempotent on (repo, hash) and the
// watermark advances only after each batch is durably written, so a crash
// or cancellation mid-run leaves state consistent with exactly the batches
// that completed.
func (c *Coordinator) Extract(ctx context.Context, repo schema.Repository) (*schema.ExtractionReport, error) {
	if !c.locks.tryAcquire(repo.ID) {
		return nil, &schema.ExtractionInProgressError{RepoID: repo.ID, RetryAfter: c.cfg.RetryAfter}
	}
	defer c.locks.release(repo.ID)

	report := &schema.ExtractionReport{RepoID: repo.ID, StartedAt: time.Now()}
	defer func() { report.Elapsed = time.Since(report.StartedAt) }()

	graph, cleanup, err := c.openGraph(ctx, repo.ID)
	if err != nil {
		return nil, err // Unreadable repository: no state touched
	}
	defer cleanup()
	defer func() { _ = graph.Close() }()

	if err := c.store.UpsertRepository(ctx, repo); err != nil {
		return nil, fmt.Errorf("failed to register repository: %w", err)
	}

	seen, err := c.store.ListCommitHashes(ctx, repo.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load extraction state: %w", err)
	}
	seeded, err := c.store.ListIdentities(ctx, repo.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load identity table: %w", err)
	}
	resolver := identity.NewResolver(c.cfg.Identity, seeded)

	batch := make([]pendingCommit, 0, c.cfg.BatchSize)
	var tip string
	repaired := 0

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		// Author ids are re-resolved at write time: a merge triggered by
		// a later commit in the same batch may have retired the id the
		// commit was first normalized with.
		rows := make([]schema.NormalizedCommit, len(batch))
		for i, pending := range batch {
			pending.commit.AuthorID = resolver.Resolve(pending.authorName, pending.authorEmail)
			rows[i] = pending.commit
		}
		inserted, err := c.store.UpsertCommits(ctx, rows)
		if err != nil {
			return fmt.Errorf("failed to persist batch: %w", err)
		}
		report.CommitsPersisted += inserted
		if err := c.store.UpsertIdentities(ctx, repo.ID, resolver.Identities()); err != nil {
			return fmt.Errorf("failed to persist identities: %w", err)
		}
		// Merges that collapsed identities already written by earlier
		// batches (or a previous run) leave commit rows pointing at the
		// absorbed id; re-point them now so the table stays referentially
		// whole. Conflicts in a batch that never flushes (cancellation)
		// are not durable and replay on the next run.
		conflicts := resolver.Conflicts()
		for _, conflict := range conflicts[repaired:] {
			if err := c.store.MergeIdentities(ctx, repo.ID, conflict.Loser.ID, conflict.Winner.ID); err != nil {
				return fmt.Errorf("failed to repair merged identity: %w", err)
			}
		}
		repaired = len(conflicts)
		for _, row := range rows {
			seen[row.Hash] = struct{}{}
		}
		batch = batch[:0]
		// Watermark advances only once the batch is durably written.
		state := schema.ExtractionState{
			RepoID:      repo.ID,
			TipHash:     tip,
			CommitCount: int64(len(seen)),
			UpdatedAt:   time.Now().UTC(),
		}
		if err := c.store.SetExtractionState(ctx, state); err != nil {
			return fmt.Errorf("failed to advance watermark: %w", err)
		}
		return nil
	}

	if tip, err = graph.Tip(ctx); err != nil {
		return nil, err
	}

	res, walkErr := walkCommits(ctx, graph, seen, func(raw *schema.RawCommit) error {
		if _, ok := seen[raw.Hash]; ok {
			return nil // Reached by another path since the stop set was built
		}
		normalized, err := normalizeCommit(repo.ID, raw, resolver)
		if err != nil {
			if errors.Is(err, schema.ErrMalformedCommit) {
				report.CommitsSkipped++
				report.Warnings = append(report.Warnings, err.Error())
				return nil
			}
			return err
		}
		batch = append(batch, pendingCommit{
			commit:      normalized,
			authorName:  raw.AuthorName,
			authorEmail: raw.AuthorEmail,
		})
		if len(batch) >= c.cfg.BatchSize {
			if err := flush(); err != nil {
				return err
			}
			// Batch boundary is the only safe cancellation point.
			if err := ctx.Err(); err != nil {
				report.Cancelled = true
				return stopWalk
			}
		}
		return nil
	})
	report.CommitsRead = res.read
	report.Truncated = res.truncated

	if walkErr != nil {
		if errors.Is(walkErr, context.Canceled) || errors.Is(walkErr, context.DeadlineExceeded) {
			report.Cancelled = true
		} else {
			return report, walkErr
		}
	}

	if !report.Cancelled {
		if err := flush(); err != nil {
			return report, err
		}
	}

	for _, conflict := range resolver.Conflicts() {
		contract.LogWarn(conflict.String(), nil)
		report.Warnings = append(report.Warnings, conflict.String())
	}
	if report.Truncated {
		report.Warnings = append(report.Warnings, "shallow clone: history truncated, extraction covered partial history")
	}
	if report.Cancelled {
		report.Warnings = append(report.Warnings, "extraction cancelled; watermark reflects completed batches only")
	}
	report.NewIdentities = resolver.Created()
	return report, nil
}

// openGraph opens a local path directly and clones remote URLs to a
// temporary directory, mirroring how the dashboard's extract endpoint
// accepts either form.
func (c *Coordinator) openGraph(ctx context.Context, locator string) (contract.CommitGraph, func(), error) {
	if isRemote(locator) {
		return c.opener.Clone(ctx, locator)
	}
	graph, err := c.opener.Open(ctx, locator)
	return graph, func() {}, err
}

func isRemote(locator string) bool {
	for _, prefix := range []string{"http://", "https://", "git://", "ssh://", "git@"} {
		if strings.HasPrefix(locator, prefix) {
			return true
		}
	}
	return false
}
