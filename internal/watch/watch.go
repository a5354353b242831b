// Package watch follows a single job from the command line until it ends.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/turkosaurus/cion/internal/api"
	"github.com/turkosaurus/cion/internal/poll"
	"github.com/turkosaurus/cion/internal/types"
)

// Phase is the state of a job watch.
type Phase int

const (
	Polling Phase = iota
	Settled
)

func (p Phase) String() string {
	if p == Settled {
		return "settled"
	}
	return "polling"
}

// Watcher polls one job until it reaches a terminal state.
type Watcher struct {
	client   api.Client
	key      types.JobKey
	interval time.Duration

	// OnUpdate, if set, is called for every job response whose status
	// differs from the previous one.
	OnUpdate func(types.Job)

	phase    Phase
	job      *types.Job
	polls    int
	settled  chan struct{}
	lastSeen types.JobStatus
	err      error
}

func New(client api.Client, key types.JobKey, interval time.Duration) *Watcher {
	return &Watcher{
		client:   client,
		key:      key,
		interval: interval,
		settled:  make(chan struct{}),
	}
}

// Run blocks until the job is terminal or ctx is done and returns the last
// job seen. Failed polls are logged and retried on the next tick, except a
// missing job, which ends the watch with the API error.
func (w *Watcher) Run(ctx context.Context) (*types.Job, error) {
	h := poll.Start(ctx, w.interval, w.refresh)
	select {
	case <-w.settled:
	case <-h.Done():
	}
	h.Stop()
	h.Wait()

	if w.err != nil {
		return nil, fmt.Errorf("watch %s: %w", w.key, w.err)
	}
	if w.phase != Settled {
		return w.job, fmt.Errorf("watch %s: %w", w.key, context.Cause(ctx))
	}
	return w.job, nil
}

// Phase returns the current state. Only meaningful once Run has returned.
func (w *Watcher) Phase() Phase { return w.phase }

// Polls returns how many job requests were issued.
func (w *Watcher) Polls() int { return w.polls }

// refresh runs on the poll goroutine; calls never overlap.
func (w *Watcher) refresh(ctx context.Context) {
	if w.phase == Settled || w.err != nil {
		return
	}
	w.polls++
	job, err := w.client.GetJob(ctx, w.key.Owner, w.key.Repo, w.key.Number)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		if api.IsNotFound(err) {
			w.err = err
			close(w.settled)
			return
		}
		slog.Error("poll failed",
			"path", api.JobPath(w.key.Owner, w.key.Repo, w.key.Number),
			"error", err,
		)
		return
	}
	w.job = job

	if status := job.Status(); status != w.lastSeen {
		w.lastSeen = status
		slog.Info("job status", "job", w.key.String(), "status", string(status))
		if w.OnUpdate != nil {
			w.OnUpdate(*job)
		}
	}

	if job.Terminal() {
		w.phase = Settled
		close(w.settled)
	}
}
