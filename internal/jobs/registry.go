// Package jobs tracks in-flight generation jobs in process memory.
//
// A job is mutated from at most two places: the background task driving it
// and its timeout callback. Both run on separate goroutines, so every
// mutation is mutex-guarded and terminal transitions are compare-and-set
// on status — whichever of the two fires first wins and the loser's write
// is a no-op.
package jobs

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"server/internal/domain"
)

type entry struct {
	job   domain.Job
	timer *time.Timer
}

// Registry is a process-local job table. Nothing in it survives a restart.
type Registry struct {
	mu   sync.Mutex
	jobs map[string]*entry
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{jobs: make(map[string]*entry)}
}

// Create registers a new processing job and returns its ID.
func (r *Registry) Create(kind domain.GenerationKind) string {
	id := uuid.NewString()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.jobs[id] = &entry{job: domain.Job{
		ID:        id,
		Kind:      kind,
		Status:    domain.StatusProcessing,
		CreatedAt: time.Now(),
	}}
	return id
}

// Get returns a copy of the job, or false if the ID is unknown.
func (r *Registry) Get(id string) (domain.Job, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.jobs[id]
	if !ok {
		return domain.Job{}, false
	}
	return e.job, true
}

// ArmTimeout schedules a failure with the given reason unless the job
// reaches a terminal state first. Completing or failing the job stops the
// timer; a timer that fires against an already-terminal job does nothing.
func (r *Registry) ArmTimeout(id string, d time.Duration, reason string) {
	timer := time.AfterFunc(d, func() {
		r.Fail(id, reason)
	})
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.jobs[id]
	if !ok || e.job.Status.Terminal() {
		timer.Stop()
		return
	}
	e.timer = timer
}

// SetInvocation records the provider handle. The handle is write-once;
// later calls are ignored.
func (r *Registry) SetInvocation(id, invocationARN string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.jobs[id]; ok && e.job.InvocationARN == "" {
		e.job.InvocationARN = invocationARN
	}
}

// SetProgress raises the job's progress estimate. Progress never moves
// backwards and terminal jobs are left untouched.
func (r *Registry) SetProgress(id string, progress int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.jobs[id]
	if !ok || e.job.Status.Terminal() {
		return
	}
	if progress > e.job.Progress {
		e.job.Progress = progress
	}
}

// Complete transitions the job to completed with its media result. Returns
// false if the job is unknown or already terminal.
func (r *Registry) Complete(id, mediaURL, mediaType string, metadata map[string]any) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.jobs[id]
	if !ok || e.job.Status != domain.StatusProcessing {
		return false
	}
	e.job.Status = domain.StatusCompleted
	e.job.Progress = 100
	e.job.MediaURL = mediaURL
	e.job.MediaType = mediaType
	e.job.Metadata = metadata
	stopTimer(e)
	return true
}

// Fail transitions the job to failed with the given reason. Returns false
// if the job is unknown or already terminal.
func (r *Registry) Fail(id, reason string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.jobs[id]
	if !ok || e.job.Status != domain.StatusProcessing {
		return false
	}
	e.job.Status = domain.StatusFailed
	e.job.Error = reason
	stopTimer(e)
	return true
}

// Sweep removes jobs older than maxAge and returns how many were dropped.
// Pending timers of removed jobs are stopped.
func (r *Registry) Sweep(maxAge time.Duration) int {
	cutoff := time.Now().Add(-maxAge)
	r.mu.Lock()
	defer r.mu.Unlock()
	removed := 0
	for id, e := range r.jobs {
		if e.job.CreatedAt.Before(cutoff) {
			stopTimer(e)
			delete(r.jobs, id)
			removed++
		}
	}
	return removed
}

// Len reports the number of tracked jobs.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.jobs)
}

func stopTimer(e *entry) {
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
}
