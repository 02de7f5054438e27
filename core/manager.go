package core

import (
	"context"
	"sync"

	"github.com/Dhyanesh27/evotrack/schema"
	"github.com/google/uuid"
)

// run tracks one background extraction.
type run struct {
	handle string
	repo   schema.Repository
	cancel context.CancelFunc
	done   chan struct{}

	mu     sync.Mutex
	phase  schema.ExtractionPhase
	report *schema.ExtractionReport
	err    error
}

func (r *run) snapshot() schema.ExtractionStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	status := schema.ExtractionStatus{
		Handle: r.handle,
		Repo:   r.repo,
		Phase:  r.phase,
		Report: r.report,
	}
	if r.err != nil {
		status.Error = r.err.Error()
	}
	return status
}

// Manager is the consumer-facing surface of the extraction pipeline: it
// kicks off extractions in the background and answers status queries, so
// the request/response boundary never blocks on a full graph walk.
type Manager struct {
	coord *Coordinator

	mu   sync.Mutex
	runs map[string]*run
}

// NewManager creates an extraction manager around a coordinator.
func NewManager(coord *Coordinator) *Manager {
	return &Manager{coord: coord, runs: make(map[string]*run)}
}

// StartExtraction launches an extraction for the repository locator and
// returns an opaque handle immediately. Lock contention is still reported
// through the handle's status, not here: the goroutine observes it.
func (m *Manager) StartExtraction(ctx context.Context, locator string) string {
	repo := RepositoryFromLocator(locator)
	runCtx, cancel := context.WithCancel(ctx)

	r := &run{
		handle: uuid.NewString(),
		repo:   repo,
		cancel: cancel,
		done:   make(chan struct{}),
		phase:  schema.ExtractionPending,
	}

	m.mu.Lock()
	m.runs[r.handle] = r
	m.mu.Unlock()

	go func() {
		defer close(r.done)
		defer cancel()

		r.mu.Lock()
		r.phase = schema.ExtractionRunning
		r.mu.Unlock()

		report, err := m.coord.Extract(runCtx, repo)

		r.mu.Lock()
		defer r.mu.Unlock()
		r.report = report // May carry a partial-success report on failure
		if err != nil {
			r.phase = schema.ExtractionFailed
			r.err = err
			return
		}
		r.phase = schema.ExtractionCompleted
	}()

	return r.handle
}

// Status returns the most recent status for a handle, including partial
// results, or false for an unknown handle.
func (m *Manager) Status(handle string) (schema.ExtractionStatus, bool) {
	m.mu.Lock()
	r, ok := m.runs[handle]
	m.mu.Unlock()
	if !ok {
		return schema.ExtractionStatus{}, false
	}
	return r.snapshot(), true
}

// Cancel requests cancellation of an in-flight extraction. The run stops
// at the next batch boundary; completed batches stay persisted.
func (m *Manager) Cancel(handle string) bool {
	m.mu.Lock()
	r, ok := m.runs[handle]
	m.mu.Unlock()
	if !ok {
		return false
	}
	r.cancel()
	return true
}

// Wait blocks until the extraction behind handle finishes and returns its
// final status. Used by the CLI, which starts a run and then polls.
func (m *Manager) Wait(handle string) (schema.ExtractionStatus, bool) {
	m.mu.Lock()
	r, ok := m.runs[handle]
	m.mu.Unlock()
	if !ok {
		return schema.ExtractionStatus{}, false
	}
	<-r.done
	return r.snapshot(), true
}
