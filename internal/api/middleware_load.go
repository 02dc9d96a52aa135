package api

import (
	"context"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"ladderscope/internal/errors"
)

// ScanLimiter bounds how many rank and group requests scan the history at
// once. Each such request runs up to one matcher scan per (size,
// transform) pair, so an unbounded burst multiplies CPU use. Requests
// beyond the cap wait up to queueTimeout for a slot and are then shed.
type ScanLimiter struct {
	slots        chan struct{}
	queueTimeout time.Duration

	inFlight  int64
	waiting   int64
	totalShed uint64
	lastShed  atomic.Value // time.Time
}

// ScanLimiterStats is reported on /ready
type ScanLimiterStats struct {
	InFlight      int64     `json:"inFlight"`
	Waiting       int64     `json:"waiting"`
	MaxConcurrent int       `json:"maxConcurrent"`
	TotalShed     uint64    `json:"totalShed"`
	LastShedTime  time.Time `json:"lastShedTime,omitempty"`
}

// NewScanLimiter returns nil when max <= 0; a nil limiter admits everything.
func NewScanLimiter(max int, queueTimeout time.Duration) *ScanLimiter {
	if max <= 0 {
		return nil
	}
	l := &ScanLimiter{
		slots:        make(chan struct{}, max),
		queueTimeout: queueTimeout,
	}
	l.lastShed.Store(time.Time{})
	return l
}

// Acquire waits for a slot until the queue timeout or ctx ends.
func (l *ScanLimiter) Acquire(ctx context.Context) bool {
	if l == nil {
		return true
	}

	select {
	case l.slots <- struct{}{}:
		atomic.AddInt64(&l.inFlight, 1)
		return true
	default:
	}

	atomic.AddInt64(&l.waiting, 1)
	defer atomic.AddInt64(&l.waiting, -1)

	timer := time.NewTimer(l.queueTimeout)
	defer timer.Stop()

	select {
	case l.slots <- struct{}{}:
		atomic.AddInt64(&l.inFlight, 1)
		return true
	case <-timer.C:
	case <-ctx.Done():
	}
	atomic.AddUint64(&l.totalShed, 1)
	l.lastShed.Store(time.Now())
	return false
}

// Release frees a slot taken by Acquire.
func (l *ScanLimiter) Release() {
	if l == nil {
		return
	}
	select {
	case <-l.slots:
		atomic.AddInt64(&l.inFlight, -1)
	default:
	}
}

// Stats returns a snapshot; nil for a nil limiter.
func (l *ScanLimiter) Stats() *ScanLimiterStats {
	if l == nil {
		return nil
	}
	last, _ := l.lastShed.Load().(time.Time)
	return &ScanLimiterStats{
		InFlight:      atomic.LoadInt64(&l.inFlight),
		Waiting:       atomic.LoadInt64(&l.waiting),
		MaxConcurrent: cap(l.slots),
		TotalShed:     atomic.LoadUint64(&l.totalShed),
		LastShedTime:  last,
	}
}

// Wrap guards a handler with the limiter.
func (l *ScanLimiter) Wrap(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !l.Acquire(r.Context()) {
			retry := int(l.queueTimeout / time.Second)
			if retry < 1 {
				retry = 1
			}
			w.Header().Set("Retry-After", strconv.Itoa(retry))
			WriteLadderError(w, errors.NewLadderError(errors.Overloaded, "all scan slots are busy, retry shortly", nil, nil))
			return
		}
		defer l.Release()
		next(w, r)
	}
}
