// Package gitclient implements the commit graph capability on top of go-git.
package gitclient

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/Dhyanesh27/evotrack/internal/contract"
	"github.com/Dhyanesh27/evotrack/schema"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/utils/merkletrie"
)

// Graph is a CommitGraph over an on-disk clone.
type Graph struct {
	repo    *git.Repository
	shallow bool
}

var _ contract.CommitGraph = &Graph{} // Compile-time check

// Opener opens and clones repositories.
type Opener struct{}

var _ contract.GraphOpener = &Opener{} // Compile-time check

// NewOpener creates a new repository opener.
func NewOpener() *Opener {
	return &Opener{}
}

// Open implements the GraphOpener interface.
func (o *Opener) Open(_ context.Context, path string) (contract.CommitGraph, error) {
	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("%w: cannot open %q: %v", schema.ErrRepositoryUnreadable, path, err)
	}
	return newGraph(repo)
}

// Clone implements the GraphOpener interface. The clone lands in a
// temporary directory which the returned cleanup removes.
func (o *Opener) Clone(ctx context.Context, url string) (contract.CommitGraph, func(), error) {
	dir, err := os.MkdirTemp("", "evotrack-clone-*")
	if err != nil {
		return nil, func() {}, fmt.Errorf("failed to create temp clone dir: %w", err)
	}
	cleanup := func() { _ = os.RemoveAll(dir) }

	repo, err := git.PlainCloneContext(ctx, dir, false, &git.CloneOptions{URL: url})
	if err != nil {
		cleanup()
		return nil, func() {}, fmt.Errorf("%w: cannot clone %q: %v", schema.ErrRepositoryUnreadable, url, err)
	}
	graph, err := newGraph(repo)
	if err != nil {
		cleanup()
		return nil, func() {}, err
	}
	return graph, cleanup, nil
}

func newGraph(repo *git.Repository) (*Graph, error) {
	shallowHashes, err := repo.Storer.Shallow()
	if err != nil {
		return nil, fmt.Errorf("%w: cannot read shallow state: %v", schema.ErrRepositoryUnreadable, err)
	}
	return &Graph{repo: repo, shallow: len(shallowHashes) > 0}, nil
}

// Tip implements the CommitGraph interface using HEAD of the clone, which
// tracks the default branch for fresh clones.
func (g *Graph) Tip(_ context.Context) (string, error) {
	head, err := g.repo.Head()
	if err != nil {
		return "", fmt.Errorf("%w: cannot resolve HEAD: %v", schema.ErrRepositoryUnreadable, err)
	}
	return head.Hash().String(), nil
}

// Commit implements the CommitGraph interface.
func (g *Graph) Commit(_ context.Context, hash string) (*schema.RawCommit, error) {
	commit, err := g.repo.CommitObject(plumbing.NewHash(hash))
	if err != nil {
		if errors.Is(err, plumbing.ErrObjectNotFound) {
			return nil, fmt.Errorf("%w: commit %s not in clone", schema.ErrHistoryTruncated, hash)
		}
		return nil, fmt.Errorf("%w: cannot read commit %s: %v", schema.ErrRepositoryUnreadable, hash, err)
	}

	parents := make([]string, 0, commit.NumParents())
	for _, parent := range commit.ParentHashes {
		parents = append(parents, parent.String())
	}

	return &schema.RawCommit{
		Hash:        commit.Hash.String(),
		Parents:     parents,
		AuthorName:  commit.Author.Name,
		AuthorEmail: commit.Author.Email,
		CommittedAt: commit.Committer.When,
		Message:     commit.Message,
	}, nil
}

// DiffStats implements the CommitGraph interface. Stats are computed
// against the designated parent only, so merge commits are attributed to
// their primary parent and changes are never double-counted across
// branches. An empty parent diffs against the empty tree.
func (g *Graph) DiffStats(ctx context.Context, hash, parent string) ([]schema.FileChange, error) {
	tree, err := g.commitTree(hash)
	if err != nil {
		return nil, err
	}

	var parentTree *object.Tree
	if parent != "" {
		if parentTree, err = g.commitTree(parent); err != nil {
			return nil, err
		}
	}

	changes, err := object.DiffTreeWithOptions(ctx, parentTree, tree, object.DefaultDiffTreeOptions)
	if err != nil {
		return nil, fmt.Errorf("%w: cannot diff %s against %q: %v", schema.ErrRepositoryUnreadable, hash, parent, err)
	}

	out := make([]schema.FileChange, 0, len(changes))
	for _, change := range changes {
		fc, err := fileChange(ctx, change)
		if err != nil {
			return nil, err
		}
		out = append(out, fc)
	}
	return out, nil
}

// Shallow implements the CommitGraph interface.
func (g *Graph) Shallow() bool {
	return g.shallow
}

// Close implements the CommitGraph interface. go-git handles need no
// explicit teardown for filesystem storers.
func (g *Graph) Close() error {
	return nil
}

func (g *Graph) commitTree(hash string) (*object.Tree, error) {
	commit, err := g.repo.CommitObject(plumbing.NewHash(hash))
	if err != nil {
		if errors.Is(err, plumbing.ErrObjectNotFound) {
			return nil, fmt.Errorf("%w: commit %s not in clone", schema.ErrHistoryTruncated, hash)
		}
		return nil, fmt.Errorf("%w: cannot read commit %s: %v", schema.ErrRepositoryUnreadable, hash, err)
	}
	tree, err := commit.Tree()
	if err != nil {
		return nil, fmt.Errorf("%w: cannot read tree of %s: %v", schema.ErrRepositoryUnreadable, hash, err)
	}
	return tree, nil
}

// fileChange converts a go-git tree change into a FileChange record.
func fileChange(ctx context.Context, change *object.Change) (schema.FileChange, error) {
	action, err := change.Action()
	if err != nil {
		return schema.FileChange{}, fmt.Errorf("cannot classify change: %w", err)
	}

	fc := schema.FileChange{Path: change.To.Name}
	switch action {
	case merkletrie.Insert:
		fc.Type = schema.ChangeAdd
	case merkletrie.Delete:
		fc.Type = schema.ChangeDelete
		fc.Path = change.From.Name
	default:
		fc.Type = schema.ChangeModify
		if change.From.Name != change.To.Name {
			fc.Type = schema.ChangeRename
		}
	}

	patch, err := change.PatchContext(ctx)
	if err != nil {
		return schema.FileChange{}, fmt.Errorf("cannot compute patch for %s: %w", fc.Path, err)
	}
	for _, fp := range patch.FilePatches() {
		if fp.IsBinary() {
			fc.Binary = true
		}
	}
	for _, stat := range patch.Stats() {
		fc.Insertions += stat.Addition
		fc.Deletions += stat.Deletion
	}
	return fc, nil
}
