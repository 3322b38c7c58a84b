package services

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/manthysbr/scribe/internal/core/domain"
)

// completion is published once per job; result and timestamp become visible together.
type completion struct {
	result domain.Payload
	at     time.Time
}

type jobEntry struct {
	createdAt time.Time
	done      atomic.Pointer[completion]
}

func (e *jobEntry) status() domain.JobStatus {
	if e.done.Load() != nil {
		return domain.JobStatusCompleted
	}
	return domain.JobStatusPending
}

// JobRegistry is the in-memory source of truth for job state.
// The map lock is only taken exclusively to insert or evict entries. Completions
// hold it shared so an eviction can never slip between lookup and publish.
type JobRegistry struct {
	mu   sync.RWMutex
	jobs map[domain.JobID]*jobEntry
	now  func() time.Time
}

func NewJobRegistry() *JobRegistry {
	return &JobRegistry{
		jobs: make(map[domain.JobID]*jobEntry),
		now:  time.Now,
	}
}

// Create registers a pending job. Ids must be fresh.
func (r *JobRegistry) Create(id domain.JobID) error {
	if id == "" {
		return fmt.Errorf("%w: empty job id", domain.ErrInvalidInput)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.jobs[id]; exists {
		return fmt.Errorf("%w: %s", domain.ErrDuplicateJob, id)
	}
	r.jobs[id] = &jobEntry{createdAt: r.now().UTC()}
	return nil
}

// Complete marks a pending job done with result. The first completion wins;
// unknown ids are ignored.
func (r *JobRegistry) Complete(id domain.JobID, result domain.Payload) domain.CompletionOutcome {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry := r.jobs[id]
	if entry == nil {
		return domain.CompletionUnknown
	}

	c := &completion{result: result, at: r.now().UTC()}
	if !entry.done.CompareAndSwap(nil, c) {
		return domain.CompletionDuplicate
	}
	return domain.CompletionApplied
}

// Get returns the current snapshot for id.
func (r *JobRegistry) Get(id domain.JobID) domain.JobView {
	entry := r.lookup(id)
	if entry == nil {
		return domain.JobView{ID: id}
	}

	view := domain.JobView{
		ID:        id,
		Exists:    true,
		CreatedAt: entry.createdAt,
	}
	if c := entry.done.Load(); c != nil {
		at := c.at
		view.Complete = true
		view.Result = c.result
		view.CompletedAt = &at
	}
	return view
}

// Len reports how many jobs are currently held.
func (r *JobRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.jobs)
}

// Counts reports how many held jobs are in each status.
func (r *JobRegistry) Counts() map[domain.JobStatus]int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	counts := map[domain.JobStatus]int{
		domain.JobStatusPending:   0,
		domain.JobStatusCompleted: 0,
	}
	for _, entry := range r.jobs {
		counts[entry.status()]++
	}
	return counts
}

// Reap evicts completed jobs whose completion happened before cutoff and
// returns how many were evicted. Pending jobs are kept however old they are,
// since their callback may still arrive.
func (r *JobRegistry) Reap(cutoff time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	evicted := 0
	for id, entry := range r.jobs {
		c := entry.done.Load()
		if c != nil && c.at.Before(cutoff) {
			delete(r.jobs, id)
			evicted++
		}
	}
	return evicted
}

func (r *JobRegistry) lookup(id domain.JobID) *jobEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.jobs[id]
}
