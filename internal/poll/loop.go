package poll

import (
	"context"
	"sync"
	"time"
)

// Handle controls a goroutine-based polling loop started with Start.
type Handle struct {
	cancel context.CancelFunc
	done   chan struct{}

	mu      sync.Mutex
	stopped bool
}

// Start calls action immediately and then every interval until ctx is done
// or Stop is called. action receives a context that is cancelled on Stop, so
// an in-flight request can observe cancellation, but Start never interrupts
// it. Start panics if interval is not positive.
func Start(ctx context.Context, interval time.Duration, action func(context.Context)) *Handle {
	if interval <= 0 {
		panic("poll: non-positive interval")
	}
	ctx, cancel := context.WithCancel(ctx)
	h := &Handle{cancel: cancel, done: make(chan struct{})}

	go func() {
		defer close(h.done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		if !h.invoke(ctx, action) {
			return
		}
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if !h.invoke(ctx, action) {
					return
				}
			}
		}
	}()
	return h
}

// invoke runs action unless the loop was stopped. A call that passed the
// check just before Stop may still run; callers that need a hard boundary
// call Wait after Stop.
func (h *Handle) invoke(ctx context.Context, action func(context.Context)) bool {
	h.mu.Lock()
	if h.stopped || ctx.Err() != nil {
		h.mu.Unlock()
		return false
	}
	h.mu.Unlock()

	action(ctx)
	return true
}

// Stop cancels future invocations. It is safe to call more than once, on a
// nil Handle, and from inside the action itself.
func (h *Handle) Stop() {
	if h == nil {
		return
	}
	h.mu.Lock()
	h.stopped = true
	h.mu.Unlock()
	h.cancel()
}

// Wait blocks until the loop has exited.
func (h *Handle) Wait() {
	if h == nil {
		return
	}
	<-h.done
}

// Done is closed when the loop has exited.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}
