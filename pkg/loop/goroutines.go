package loop

import (
	"context"
	"sync"
)

// Goroutines runs every scheduled task on its own goroutine. Execution order
// across tasks is unspecified. Schedule and Drain may be called concurrently.
type Goroutines struct {
	mu       sync.Mutex
	cond     *sync.Cond
	inflight int
	opts     options
}

// NewGoroutines returns a goroutine-per-task scheduler.
func NewGoroutines(opts ...Option) *Goroutines {
	g := &Goroutines{opts: buildOptions(opts)}
	g.cond = sync.NewCond(&g.mu)
	return g
}

// Schedule starts fn on a new goroutine.
func (g *Goroutines) Schedule(fn func()) {
	g.mu.Lock()
	g.inflight++
	g.mu.Unlock()
	go func() {
		defer g.done()
		runTask(fn, g.opts)
	}()
}

func (g *Goroutines) done() {
	g.mu.Lock()
	g.inflight--
	if g.inflight == 0 {
		g.cond.Broadcast()
	}
	g.mu.Unlock()
}

// Drain waits until no task is running, including tasks started by tasks,
// or ctx is done.
func (g *Goroutines) Drain(ctx context.Context) error {
	stop := context.AfterFunc(ctx, func() {
		g.mu.Lock()
		g.cond.Broadcast()
		g.mu.Unlock()
	})
	defer stop()

	g.mu.Lock()
	defer g.mu.Unlock()
	for g.inflight > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}
		g.cond.Wait()
	}
	return nil
}
