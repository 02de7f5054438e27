// Package core implements the commit extraction pipeline: graph walk,
// normalization, identity resolution and incremental persistence.
package core

import (
	"container/heap"
	"context"
	"errors"
	"fmt"

	"github.com/Dhyanesh27/evotrack/internal/contract"
	"github.com/Dhyanesh27/evotrack/schema"
)

// commitFrontier is a max-heap of unvisited commits ordered by committer
// time, so the walk emits commits in reverse-chronological order without
// loading the whole graph up front.
type commitFrontier []*schema.RawCommit

func (f commitFrontier) Len() int { return len(f) }

func (f commitFrontier) Less(i, j int) bool {
	if !f[i].CommittedAt.Equal(f[j].CommittedAt) {
		return f[i].CommittedAt.After(f[j].CommittedAt)
	}
	return f[i].Hash < f[j].Hash // Stable order for identical timestamps
}

func (f commitFrontier) Swap(i, j int) { f[i], f[j] = f[j], f[i] }

func (f *commitFrontier) Push(x any) { *f = append(*f, x.(*schema.RawCommit)) }

func (f *commitFrontier) Pop() any {
	old := *f
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*f = old[:n-1]
	return item
}

// walkResult carries the non-fatal outcome of a graph walk.
type walkResult struct {
	read      int
	truncated bool
}

// stopWalk is returned by an emit callback to end the walk cleanly.
var stopWalk = errors.New("stop walk")

// walkCommits traverses all reachable ancestors of the default branch tip,
// visiting each commit exactly once even when multiple paths reach it, and
// emits each RawCommit with diff stats attributed to its primary parent.
// Hashes in stop bound the walk: they and their ancestors are not entered
// (an incremental walk when a prior watermark exists). The traversal uses
// an explicit frontier rather than recursion, so deep histories cannot
// exhaust the stack.
func walkCommits(ctx context.Context, graph contract.CommitGraph, stop map[string]struct{}, emit func(*schema.RawCommit) error) (walkResult, error) {
	var res walkResult

	tip, err := graph.Tip(ctx)
	if err != nil {
		return res, err
	}
	if _, ok := stop[tip]; ok {
		return res, nil // Nothing new since last extraction
	}

	visited := map[string]struct{}{tip: {}}
	frontier := &commitFrontier{}
	heap.Init(frontier)

	load := func(hash string) error {
		commit, err := graph.Commit(ctx, hash)
		if err != nil {
			if errors.Is(err, schema.ErrHistoryTruncated) {
				res.truncated = true // Shallow boundary, walk what we have
				return nil
			}
			return err
		}
		heap.Push(frontier, commit)
		return nil
	}

	if err := load(tip); err != nil {
		return res, err
	}

	for frontier.Len() > 0 {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		commit := heap.Pop(frontier).(*schema.RawCommit)

		changes, err := graph.DiffStats(ctx, commit.Hash, commit.PrimaryParent())
		if err != nil {
			if errors.Is(err, schema.ErrHistoryTruncated) {
				// Primary parent beyond a shallow boundary: keep the
				// commit but attribute no line stats to it.
				res.truncated = true
			} else {
				return res, err
			}
		}
		commit.Changes = changes

		res.read++
		if err := emit(commit); err != nil {
			if errors.Is(err, stopWalk) {
				return res, nil
			}
			return res, err
		}

		for _, parent := range commit.Parents {
			if _, ok := visited[parent]; ok {
				continue
			}
			visited[parent] = struct{}{}
			if _, ok := stop[parent]; ok {
				continue
			}
			if err := load(parent); err != nil {
				return res, err
			}
		}
	}

	if graph.Shallow() {
		res.truncated = true
	}
	return res, nil
}

// readAll is a convenience wrapper that collects a full walk, used by
// tests and small repositories.
func readAll(ctx context.Context, graph contract.CommitGraph, stop map[string]struct{}) ([]*schema.RawCommit, walkResult, error) {
	var commits []*schema.RawCommit
	res, err := walkCommits(ctx, graph, stop, func(c *schema.RawCommit) error {
		commits = append(commits, c)
		return nil
	})
	if err != nil {
		return nil, res, fmt.Errorf("commit walk failed: %w", err)
	}
	return commits, res, nil
}
