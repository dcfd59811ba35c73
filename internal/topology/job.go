package topology

import (
	"context"
	"sync"
	"time"

	"github.com/banshee-data/roomscan/internal/monitoring"
)

// Job runs one analysis at a time in the background. A started analysis
// always runs to completion; there is no in-flight cancel.
type Job struct {
	mu      sync.Mutex
	running bool
	doneCh  chan struct{}
	result  *Topology
}

// NewJob returns an idle job.
func NewJob() *Job {
	done := make(chan struct{})
	close(done)
	return &Job{doneCh: done}
}

// Start copies the board and launches the analysis. It returns ErrBusy
// while a previous analysis is in flight, ErrNoBoard without a board, and
// the context error if ctx is already done. The context only guards start.
func (j *Job) Start(ctx context.Context, in Input, cfg Config) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if in.Board == nil {
		return ErrNoBoard
	}

	j.mu.Lock()
	if j.running {
		j.mu.Unlock()
		return ErrBusy
	}
	j.running = true
	j.doneCh = make(chan struct{})
	done := j.doneCh
	j.mu.Unlock()

	b := in.Board.Clone()
	go func() {
		start := time.Now()
		t := analyzeOwned(b, in, cfg)
		monitoring.Logf("topology: background analysis finished in %v", time.Since(start))

		j.mu.Lock()
		j.result = t
		j.running = false
		j.mu.Unlock()
		close(done)
	}()
	return nil
}

// Poll reports whether no analysis is in flight.
func (j *Job) Poll() bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	return !j.running
}

// Wait blocks until the analysis in flight, if any, completes.
func (j *Job) Wait() {
	j.mu.Lock()
	done := j.doneCh
	j.mu.Unlock()
	<-done
}

// Result returns the last completed topology. It returns ErrNotAnalyzed
// before the first analysis completes; while a newer one is in flight the
// previous snapshot is returned.
func (j *Job) Result() (*Topology, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.result == nil {
		return nil, ErrNotAnalyzed
	}
	return j.result, nil
}
