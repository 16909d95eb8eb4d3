package runtime

import (
	"context"
	"os"

	"github.com/pkg/errors"

	cfgpkg "github.com/rzbill/relay/internal/config"
	"github.com/rzbill/relay/internal/filter"
	"github.com/rzbill/relay/internal/journal"
	"github.com/rzbill/relay/pkg/channels"
	logpkg "github.com/rzbill/relay/pkg/log"
	"github.com/rzbill/relay/pkg/loop"
	"github.com/rzbill/relay/pkg/store"
)

// Options for building the Runtime.
type Options struct {
	Config cfgpkg.Config
	// Logger overrides the logger built from Config.
	Logger logpkg.Logger
	// InitialState is what listeners receive while the store holds no state.
	InitialState any
}

type scheduler interface {
	channels.Scheduler
	Drain(ctx context.Context) error
}

// Runtime is one wired relay instance.
type Runtime struct {
	config   cfgpkg.Config
	logger   logpkg.Logger
	sched    scheduler
	loop     *loop.Loop
	registry *channels.Registry
	journal  *journal.Journal
	store    *store.Store
	attached *channels.Attachment
}

// NewLogger builds the process logger described by cfg.
func NewLogger(cfg cfgpkg.Config) logpkg.Logger {
	level, err := logpkg.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logpkg.InfoLevel
	}
	return logpkg.NewLogger(
		logpkg.WithLevel(level),
		logpkg.WithFormat(logpkg.Format(cfg.LogFormat)),
		logpkg.WithWriter(os.Stderr),
	)
}

// Open validates the configuration and wires all components.
func Open(opts Options) (*Runtime, error) {
	if err := opts.Config.Validate(); err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = NewLogger(opts.Config)
	}
	rt := &Runtime{config: opts.Config, logger: logger}

	switch opts.Config.Scheduler {
	case cfgpkg.SchedulerGoroutine:
		rt.sched = loop.NewGoroutines(loop.WithLogger(logger))
	default:
		rt.loop = loop.New(loop.WithLogger(logger))
		rt.sched = rt.loop
	}

	compiler, err := filter.NewCompiler(opts.Config.Filters.CacheSize, opts.Config.Filters.CacheTTL())
	if err != nil {
		rt.closeLoop()
		return nil, errors.Wrap(err, "runtime: filters")
	}
	rt.registry = channels.NewRegistry(
		channels.WithScheduler(rt.sched),
		channels.WithLogger(logger),
		channels.WithFilterCompiler(compiler),
	)

	storeOpts := []store.Option{store.WithLogger(logger)}
	if opts.Config.Journal.Enabled {
		j, err := journal.Open(journal.Options{Limit: opts.Config.Journal.Limit})
		if err != nil {
			rt.closeLoop()
			return nil, errors.Wrap(err, "runtime: journal")
		}
		rt.journal = j
		storeOpts = append(storeOpts, store.WithMiddleware(journal.Middleware(j, logger)))
	}

	att, err := rt.registry.Attach(func(r channels.Reducer) channels.Store {
		rt.store = store.New(r, storeOpts...)
		return rt.store
	}, opts.InitialState)
	if err != nil {
		_ = rt.Close()
		return nil, err
	}
	rt.attached = att

	logger.Debug("runtime opened",
		logpkg.Str("scheduler", opts.Config.Scheduler),
		logpkg.Any("journal", opts.Config.Journal.Enabled),
	)
	return rt, nil
}

// Channel creates or reuses a channel bound to the runtime's store.
func (r *Runtime) Channel(name string) (*channels.Handle, error) {
	return r.attached.CreateChannel(name)
}

// Registry returns the live channel registry.
func (r *Runtime) Registry() *channels.Registry { return r.registry }

// Store returns the attached store.
func (r *Runtime) Store() *store.Store { return r.store }

// Journal returns the action journal, or nil when disabled.
func (r *Runtime) Journal() *journal.Journal { return r.journal }

// Config returns the runtime configuration.
func (r *Runtime) Config() cfgpkg.Config { return r.config }

// Drain waits for every scheduled listener invocation to finish.
func (r *Runtime) Drain(ctx context.Context) error { return r.sched.Drain(ctx) }

// Close stops the scheduler, dropping pending deliveries, and releases the
// journal.
func (r *Runtime) Close() error {
	r.closeLoop()
	if r.journal != nil {
		return r.journal.Close()
	}
	return nil
}

func (r *Runtime) closeLoop() {
	if r.loop == nil {
		return
	}
	if dropped := r.loop.Close(); dropped > 0 {
		r.logger.Warn("pending deliveries dropped on close", logpkg.Int("dropped", dropped))
	}
}
