package core

import (
	"context"
	"testing"
	"time"

	"github.com/Dhyanesh27/evotrack/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWalkLinearHistoryReverseChronological(t *testing.T) {
	g := linearGraph(4)

	commits, res, err := readAll(context.Background(), g, nil)
	require.NoError(t, err)
	assert.Equal(t, 4, res.read)
	assert.False(t, res.truncated)

	require.Len(t, commits, 4)
	for i := 1; i < len(commits); i++ {
		assert.True(t, commits[i].CommittedAt.Before(commits[i-1].CommittedAt),
			"commits must come out newest first")
	}
	assert.Equal(t, g.tip, commits[0].Hash)
}

func TestWalkDiamondVisitsOnce(t *testing.T) {
	// root <- left, root <- right, merge(left, right)
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	g := &fakeGraph{
		tip: "merge",
		commits: map[string]schema.RawCommit{
			"root":  {Hash: "root", AuthorName: "A", AuthorEmail: "a@x.io", CommittedAt: base},
			"left":  {Hash: "left", Parents: []string{"root"}, AuthorName: "A", AuthorEmail: "a@x.io", CommittedAt: base.Add(time.Minute)},
			"right": {Hash: "right", Parents: []string{"root"}, AuthorName: "B", AuthorEmail: "b@x.io", CommittedAt: base.Add(2 * time.Minute)},
			"merge": {Hash: "merge", Parents: []string{"left", "right"}, AuthorName: "A", AuthorEmail: "a@x.io", CommittedAt: base.Add(3 * time.Minute)},
		},
		diffs: map[string][]schema.FileChange{},
	}

	commits, res, err := readAll(context.Background(), g, nil)
	require.NoError(t, err)
	assert.Equal(t, 4, res.read)

	seen := make(map[string]int)
	for _, c := range commits {
		seen[c.Hash]++
	}
	for hash, count := range seen {
		assert.Equal(t, 1, count, "commit %s emitted more than once", hash)
	}
	assert.Len(t, seen, 4)
}

func TestWalkStopSetBoundsTraversal(t *testing.T) {
	g := linearGraph(5)

	// Pretend the first three commits were extracted previously.
	stop := map[string]struct{}{
		hashName(1): {},
		hashName(2): {},
		hashName(3): {},
	}

	commits, res, err := readAll(context.Background(), g, stop)
	require.NoError(t, err)
	assert.Equal(t, 2, res.read)

	hashes := make([]string, 0, len(commits))
	for _, c := range commits {
		hashes = append(hashes, c.Hash)
	}
	assert.ElementsMatch(t, []string{hashName(4), hashName(5)}, hashes)
}

func TestWalkTipAlreadySeen(t *testing.T) {
	g := linearGraph(3)

	stop := map[string]struct{}{g.tip: {}}
	commits, res, err := readAll(context.Background(), g, stop)
	require.NoError(t, err)
	assert.Empty(t, commits)
	assert.Equal(t, 0, res.read)
}

func TestWalkShallowHistoryTruncated(t *testing.T) {
	g := linearGraph(4)
	// Drop the two oldest commits, as a shallow clone would.
	delete(g.commits, hashName(1))
	delete(g.commits, hashName(2))
	g.shallow = true

	commits, res, err := readAll(context.Background(), g, nil)
	require.NoError(t, err)
	assert.True(t, res.truncated)
	assert.Equal(t, 2, res.read, "only reachable commits are read")

	// The commit at the boundary keeps no line stats: its parent's tree
	// is unavailable.
	last := commits[len(commits)-1]
	assert.Equal(t, hashName(3), last.Hash)
	assert.Empty(t, last.Changes)
}

func TestWalkMergeAttributesPrimaryParent(t *testing.T) {
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	g := &fakeGraph{
		tip: "merge",
		commits: map[string]schema.RawCommit{
			"root":  {Hash: "root", AuthorName: "A", AuthorEmail: "a@x.io", CommittedAt: base},
			"side":  {Hash: "side", Parents: []string{"root"}, AuthorName: "B", AuthorEmail: "b@x.io", CommittedAt: base.Add(time.Minute)},
			"merge": {Hash: "merge", Parents: []string{"root", "side"}, AuthorName: "A", AuthorEmail: "a@x.io", CommittedAt: base.Add(2 * time.Minute)},
		},
		diffs: map[string][]schema.FileChange{
			// Diff of the merge against its first parent only.
			"merge": {{Path: "feature.go", Insertions: 10, Deletions: 5}},
		},
	}

	var merge *schema.RawCommit
	_, err := walkCommits(context.Background(), g, nil, func(c *schema.RawCommit) error {
		if c.Hash == "merge" {
			merge = c
		}
		return nil
	})
	require.NoError(t, err)
	require.NotNil(t, merge)
	assert.Equal(t, "root", merge.PrimaryParent())
	require.Len(t, merge.Changes, 1)
	assert.Equal(t, 10, merge.Changes[0].Insertions)
}

func TestWalkEmitStop(t *testing.T) {
	g := linearGraph(5)

	emitted := 0
	res, err := walkCommits(context.Background(), g, nil, func(*schema.RawCommit) error {
		emitted++
		if emitted == 2 {
			return stopWalk
		}
		return nil
	})
	require.NoError(t, err, "stopWalk is a clean stop, not an error")
	assert.Equal(t, 2, emitted)
	assert.Equal(t, 2, res.read)
}

func TestWalkContextCancellation(t *testing.T) {
	g := linearGraph(5)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := walkCommits(ctx, g, nil, func(*schema.RawCommit) error { return nil })
	assert.ErrorIs(t, err, context.Canceled)
}
