package contract

import (
	"context"

	"github.com/Dhyanesh27/evotrack/schema"
	"github.com/stretchr/testify/mock"
)

// MockCommitGraph is a testify mock for the CommitGraph interface.
type MockCommitGraph struct {
	mock.Mock
}

var _ CommitGraph = &MockCommitGraph{} // Compile-time check

// Tip mocks the CommitGraph interface.
func (m *MockCommitGraph) Tip(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

// Commit mocks the CommitGraph interface.
func (m *MockCommitGraph) Commit(ctx context.Context, hash string) (*schema.RawCommit, error) {
	args := m.Called(ctx, hash)
	if commit := args.Get(0); commit != nil {
		return commit.(*schema.RawCommit), args.Error(1)
	}
	return nil, args.Error(1)
}

// DiffStats mocks the CommitGraph interface.
func (m *MockCommitGraph) DiffStats(ctx context.Context, hash, parent string) ([]schema.FileChange, error) {
	args := m.Called(ctx, hash, parent)
	if changes := args.Get(0); changes != nil {
		return changes.([]schema.FileChange), args.Error(1)
	}
	return nil, args.Error(1)
}

// Shallow mocks the CommitGraph interface.
func (m *MockCommitGraph) Shallow() bool {
	return m.Called().Bool(0)
}

// Close mocks the CommitGraph interface.
func (m *MockCommitGraph) Close() error {
	return m.Called().Error(0)
}

// MockGraphOpener is a testify mock for the GraphOpener interface.
type MockGraphOpener struct {
	mock.Mock
}

var _ GraphOpener = &MockGraphOpener{} // Compile-time check

// Open mocks the GraphOpener interface.
func (m *MockGraphOpener) Open(ctx context.Context, path string) (CommitGraph, error) {
	args := m.Called(ctx, path)
	if graph := args.Get(0); graph != nil {
		return graph.(CommitGraph), args.Error(1)
	}
	return nil, args.Error(1)
}

// Clone mocks the GraphOpener interface.
func (m *MockGraphOpener) Clone(ctx context.Context, url string) (CommitGraph, func(), error) {
	args := m.Called(ctx, url)
	cleanup := func() {}
	if fn := args.Get(1); fn != nil {
		cleanup = fn.(func())
	}
	if graph := args.Get(0); graph != nil {
		return graph.(CommitGraph), cleanup, args.Error(2)
	}
	return nil, cleanup, args.Error(2)
}
