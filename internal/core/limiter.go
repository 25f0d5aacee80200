package core

// limiter.go bounds how many files are analyzed at once.
//
// Parsing a large log holds the whole decoded file plus its columns in
// memory, so the service admits at most maxConcurrent analyses. When every
// slot is taken a caller waits up to maxWait before failing with
// ErrTooManyAnalyses. WaitForDrain lets shutdown wait for in-flight work.

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrTooManyAnalyses is returned when all analysis slots stay occupied for
// the whole wait period. Clients should retry after a short delay.
var ErrTooManyAnalyses = errors.New("too many analyses in progress, please try again later")

// DefaultMaxConcurrent is the default limit for parallel analyses.
const DefaultMaxConcurrent = 4

// DefaultMaxWaitTime is how long to wait for a slot before rejecting.
const DefaultMaxWaitTime = 30 * time.Second

// AnalysisLimiter is a counting semaphore over analysis slots.
type AnalysisLimiter struct {
	semaphore chan struct{}
	maxWait   time.Duration

	mu       sync.Mutex
	active   int
	idle     chan struct{} // closed while active == 0
	onChange func(active int)
}

// NewAnalysisLimiter creates a limiter that admits at most maxConcurrent
// analyses. Callers that cannot get a slot within maxWait receive
// ErrTooManyAnalyses.
func NewAnalysisLimiter(maxConcurrent int, maxWait time.Duration) *AnalysisLimiter {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrent
	}
	if maxWait <= 0 {
		maxWait = DefaultMaxWaitTime
	}

	idle := make(chan struct{})
	close(idle)
	return &AnalysisLimiter{
		semaphore: make(chan struct{}, maxConcurrent),
		maxWait:   maxWait,
		idle:      idle,
	}
}

// OnChange registers fn to be called with the active count after every
// acquire and release. It must be set before the limiter is shared.
func (l *AnalysisLimiter) OnChange(fn func(active int)) {
	l.onChange = fn
}

// Acquire blocks until a slot is free, maxWait elapses or ctx is done.
// The caller must call Release after a nil return.
func (l *AnalysisLimiter) Acquire(ctx context.Context) error {
	timer := time.NewTimer(l.maxWait)
	defer timer.Stop()

	select {
	case l.semaphore <- struct{}{}:
		l.adjust(1)
		return nil
	case <-timer.C:
		return ErrTooManyAnalyses
	case <-ctx.Done():
		return ctx.Err()
	}
}

// TryAcquire takes a slot only if one is free right now.
func (l *AnalysisLimiter) TryAcquire() bool {
	select {
	case l.semaphore <- struct{}{}:
		l.adjust(1)
		return true
	default:
		return false
	}
}

// Release frees a slot taken by Acquire or TryAcquire.
func (l *AnalysisLimiter) Release() {
	l.adjust(-1)
	<-l.semaphore
}

func (l *AnalysisLimiter) adjust(delta int) {
	l.mu.Lock()
	l.active += delta
	active := l.active
	switch {
	case active == 0:
		close(l.idle)
	case active == 1 && delta > 0:
		l.idle = make(chan struct{})
	}
	fn := l.onChange
	l.mu.Unlock()

	if fn != nil {
		fn(active)
	}
}

// ActiveCount returns the number of analyses holding a slot.
func (l *AnalysisLimiter) ActiveCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.active
}

// MaxConcurrent returns the slot count.
func (l *AnalysisLimiter) MaxConcurrent() int {
	return cap(l.semaphore)
}

// Available returns the number of free slots.
func (l *AnalysisLimiter) Available() int {
	return cap(l.semaphore) - len(l.semaphore)
}

// WaitForDrain blocks until no analysis holds a slot or ctx is done.
func (l *AnalysisLimiter) WaitForDrain(ctx context.Context) error {
	for {
		l.mu.Lock()
		idle := l.idle
		active := l.active
		l.mu.Unlock()

		if active == 0 {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-idle:
		}
	}
}

// LimiterStatus is a snapshot of the limiter's state.
type LimiterStatus struct {
	Active        int `json:"active"`
	Available     int `json:"available"`
	MaxConcurrent int `json:"max_concurrent"`
}

// Status returns the current limiter state for monitoring.
func (l *AnalysisLimiter) Status() LimiterStatus {
	return LimiterStatus{
		Active:        l.ActiveCount(),
		Available:     l.Available(),
		MaxConcurrent: cap(l.semaphore),
	}
}
