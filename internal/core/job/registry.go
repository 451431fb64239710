package job

import (
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

var (
	ErrNotFound  = errors.New("job not found")
	ErrTerminal  = errors.New("job already finished")
	ErrNotReview = errors.New("job is not awaiting review")
)

// Registry is the in-memory job table. Records live for the process lifetime;
// there is no eviction, matching the single-operator deployment model.
type Registry struct {
	mu   sync.RWMutex
	jobs map[string]*Record
}

func NewRegistry() *Registry {
	return &Registry{jobs: make(map[string]*Record)}
}

// Create registers a new queued job and returns a snapshot of it.
func (r *Registry) Create(id string) Record {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec := &Record{
		ID:         id,
		Status:     StatusQueued,
		Step:       "대기 중",
		Logs:       []string{},
		StartedAt:  time.Now(),
		reviewWake: make(chan struct{}, 1),
	}
	r.jobs[id] = rec
	return snapshot(rec)
}

// Get returns a copy of the job's current state.
func (r *Registry) Get(id string) (Record, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.jobs[id]
	if !ok {
		return Record{}, false
	}
	return snapshot(rec), true
}

// Update applies fn to the job's record under the registry lock. It refuses
// to touch jobs in a terminal state; transitions INTO a terminal state are
// applied normally.
func (r *Registry) Update(id string, fn func(*Record)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.jobs[id]
	if !ok {
		return ErrNotFound
	}
	if rec.Status.Terminal() {
		return ErrTerminal
	}
	fn(rec)
	rec.Elapsed = int(time.Since(rec.StartedAt).Seconds())
	return nil
}

// IsCancelling reports whether a cancellation has been requested.
func (r *Registry) IsCancelling(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.jobs[id]
	return ok && rec.Status == StatusCancelling
}

// RequestCancel flags a running job for cancellation. Repeat requests and
// requests against finished jobs are no-ops.
func (r *Registry) RequestCancel(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.jobs[id]
	if !ok {
		return ErrNotFound
	}
	if rec.Status.Terminal() || rec.Status == StatusCancelling {
		return nil
	}
	rec.Status = StatusCancelling
	rec.Detail = "취소 요청됨"
	rec.AppendLog("취소 요청 수신")
	wake(rec)
	log.Info().Str("job_id", id).Msg("cancellation requested")
	return nil
}

// Confirm stores the reviewer's edits and releases the job from the review
// hold. Only jobs currently in review accept a confirmation.
func (r *Registry) Confirm(id string, edit ReviewEdit) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.jobs[id]
	if !ok {
		return ErrNotFound
	}
	if rec.Status != StatusReview {
		return ErrNotReview
	}
	rec.Status = StatusConfirmed
	rec.Edited = &edit
	rec.AppendLog("검토 완료, 노트 생성 시작")
	wake(rec)
	return nil
}

// ReviewWake returns the job's wake channel. The worker selects on it while
// parked in review; Confirm and RequestCancel both signal it.
func (r *Registry) ReviewWake(id string) <-chan struct{} {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.jobs[id]
	if !ok {
		return nil
	}
	return rec.reviewWake
}

func wake(rec *Record) {
	select {
	case rec.reviewWake <- struct{}{}:
	default:
	}
}

func snapshot(rec *Record) Record {
	cp := *rec
	cp.Logs = append([]string(nil), rec.Logs...)
	cp.Speakers = append([]string(nil), rec.Speakers...)
	return cp
}
