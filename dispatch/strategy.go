package dispatch

import (
	"context"
	"time"
)

// Capabilities describes what the hosting runtime can do for the
// fire-and-forget path. Leave a field nil when the runtime lacks the
// primitive.
type Capabilities struct {
	// FinishResponse flushes the caller's own HTTP response to its client
	// so the batch can run inside the now-detached request lifecycle. Must
	// be idempotent.
	FinishResponse func() error
	// OffloadTask hands fn to a background execution path.
	OffloadTask func(fn func())
}

// strategy decides how FireAndForget returns control before the batch's
// network I/O completes. The bool reports whether background execution was
// initiated; it says nothing about delivery of individual requests.
type strategy interface {
	fire(d *Dispatcher, ctx context.Context) bool
}

func selectStrategy(caps Capabilities) strategy {
	switch {
	case caps.FinishResponse != nil:
		return flushThenRun{finish: caps.FinishResponse}
	case caps.OffloadTask != nil:
		return offloadThenRun{offload: caps.OffloadTask}
	default:
		return clampThenRun{}
	}
}

// FireAndForget executes the queued batch without making the caller wait
// for its results, as far as the runtime capabilities allow. Failures of
// the background delivery never reach the caller's control flow.
func (d *Dispatcher) FireAndForget(ctx context.Context) (started bool) {
	defer func() {
		if r := recover(); r != nil {
			log.Errorf("fire-and-forget batch panicked: %v", r)
			started = false
		}
	}()
	return d.strategy.fire(d, ctx)
}

// flushThenRun flushes the caller's response first, then runs the batch
// synchronously in the detached lifecycle. The original client is not
// blocked because it already received its response.
type flushThenRun struct {
	finish func() error
}

func (s flushThenRun) fire(d *Dispatcher, ctx context.Context) bool {
	if err := s.finish(); err != nil {
		log.Warnf("finishing response early failed, batch will run attached: %v", err)
	}
	d.ExecuteAll(ctx)
	return true
}

// offloadThenRun hands the batch to the runtime's background task path.
// The batch keeps running after the caller's context ends.
type offloadThenRun struct {
	offload func(fn func())
}

func (s offloadThenRun) fire(d *Dispatcher, ctx context.Context) bool {
	background := context.WithoutCancel(ctx)
	s.offload(func() {
		defer func() {
			if r := recover(); r != nil {
				log.Errorf("offloaded batch panicked: %v", r)
			}
		}()
		d.ExecuteAll(background)
	})
	return true
}

// clampThenRun is the fallback for runtimes with no detach primitive at
// all: both timeouts are clamped to one second and the batch runs
// synchronously, so a slow endpoint times out instead of blocking the
// caller indefinitely. The configured timeouts are restored afterwards.
type clampThenRun struct{}

func (clampThenRun) fire(d *Dispatcher, ctx context.Context) bool {
	d.mu.Lock()
	saved := d.settings
	d.settings.ConnectTimeout = time.Second
	d.settings.TotalTimeout = time.Second
	d.mu.Unlock()

	d.ExecuteAll(ctx)

	d.mu.Lock()
	d.settings = saved
	d.mu.Unlock()
	return false
}
