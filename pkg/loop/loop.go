package loop

import (
	"context"
	"sync"

	logpkg "github.com/rzbill/relay/pkg/log"
)

// Option configures a Loop or Goroutines scheduler.
type Option func(*options)

type options struct {
	logger  logpkg.Logger
	onPanic func(any)
}

// WithLogger sets the logger used to report recovered panics.
func WithLogger(l logpkg.Logger) Option {
	return func(o *options) { o.logger = l }
}

// OnPanic registers a hook invoked with the value of every recovered panic.
func OnPanic(fn func(any)) Option {
	return func(o *options) { o.onPanic = fn }
}

func buildOptions(opts []Option) options {
	o := options{logger: logpkg.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Loop runs scheduled tasks sequentially on a single goroutine.
type Loop struct {
	mu     sync.Mutex
	cond   *sync.Cond
	queue  []func()
	busy   bool
	closed bool
	done   chan struct{}
	opts   options
}

// New starts a loop. Call Close to stop it.
func New(opts ...Option) *Loop {
	l := &Loop{done: make(chan struct{}), opts: buildOptions(opts)}
	l.cond = sync.NewCond(&l.mu)
	go l.run()
	return l
}

// Schedule enqueues fn and returns immediately. Tasks scheduled after Close
// are dropped.
func (l *Loop) Schedule(fn func()) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		l.opts.logger.Debug("task dropped on closed loop")
		return
	}
	l.queue = append(l.queue, fn)
	l.cond.Broadcast()
}

// Pending returns the number of queued tasks not yet started.
func (l *Loop) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.queue)
}

// Drain blocks until the queue is empty and no task is running, including
// tasks scheduled by running tasks, or until ctx is done. It must not be
// called from a task.
func (l *Loop) Drain(ctx context.Context) error {
	stop := context.AfterFunc(ctx, func() {
		l.mu.Lock()
		l.cond.Broadcast()
		l.mu.Unlock()
	})
	defer stop()

	l.mu.Lock()
	defer l.mu.Unlock()
	for (len(l.queue) > 0 || l.busy) && !l.closed {
		if err := ctx.Err(); err != nil {
			return err
		}
		l.cond.Wait()
	}
	return nil
}

// Close stops the loop, discarding queued tasks, and waits for the running
// task to return. It reports how many tasks were discarded.
func (l *Loop) Close() int {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		<-l.done
		return 0
	}
	l.closed = true
	dropped := len(l.queue)
	l.queue = nil
	l.cond.Broadcast()
	l.mu.Unlock()
	<-l.done
	if dropped > 0 {
		l.opts.logger.Debug("loop closed with pending tasks", logpkg.Int("dropped", dropped))
	}
	return dropped
}

func (l *Loop) run() {
	defer close(l.done)
	for {
		l.mu.Lock()
		for len(l.queue) == 0 && !l.closed {
			l.cond.Wait()
		}
		if l.closed {
			l.mu.Unlock()
			return
		}
		task := l.queue[0]
		l.queue[0] = nil
		l.queue = l.queue[1:]
		l.busy = true
		l.mu.Unlock()

		runTask(task, l.opts)

		l.mu.Lock()
		l.busy = false
		l.cond.Broadcast()
		l.mu.Unlock()
	}
}

func runTask(task func(), o options) {
	defer func() {
		if r := recover(); r != nil {
			o.logger.Error("listener panicked", logpkg.Any("panic", r))
			if o.onPanic != nil {
				o.onPanic(r)
			}
		}
	}()
	task()
}
