package channels

import (
	"sort"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/rzbill/relay/internal/filter"
	"github.com/rzbill/relay/pkg/loop"
	logpkg "github.com/rzbill/relay/pkg/log"
)

// Option configures a Registry.
type Option func(*Registry)

// WithScheduler sets where emissions are deferred to. Defaults to a
// goroutine per listener invocation.
func WithScheduler(s Scheduler) Option {
	return func(r *Registry) { r.scheduler = s }
}

// WithLogger sets the registry logger.
func WithLogger(l logpkg.Logger) Option {
	return func(r *Registry) { r.logger = l }
}

// WithFilterCompiler shares a compiler for SubscribeWhere expressions.
func WithFilterCompiler(c *filter.Compiler) Option {
	return func(r *Registry) { r.compiler = c }
}

// Registry maps channel names to channels. It is safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	channels map[string]*channel

	scheduler Scheduler
	logger    logpkg.Logger

	compilerOnce sync.Once
	compiler     *filter.Compiler
	compilerErr  error
}

// NewRegistry returns an empty registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{channels: make(map[string]*channel)}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = logpkg.NewNop()
	}
	r.logger = r.logger.WithComponent("channels")
	if r.scheduler == nil {
		r.scheduler = loop.NewGoroutines(loop.WithLogger(r.logger))
	}
	return r
}

// CreateChannel returns the handle for name, creating the channel bound to
// d if none exists. When the channel already exists d is ignored and the
// existing channel, with its original dispatcher, is returned.
func (r *Registry) CreateChannel(d Dispatcher, name string) (*Handle, error) {
	if d == nil {
		return nil, errors.Wrap(ErrInvalidArguments, "dispatcher is nil")
	}
	if !validName(name) {
		return nil, errors.Wrapf(ErrInvalidArguments, "channel name %q", name)
	}

	r.mu.Lock()
	ch, ok := r.channels[name]
	if !ok {
		ch = newChannel(name, d, r.scheduler, r.logger)
		r.channels[name] = ch
	}
	r.mu.Unlock()

	if ok {
		r.logger.Debug("channel exists; dispatcher ignored", logpkg.Str("channel", name))
	} else {
		r.logger.Debug("channel created", logpkg.Str("channel", name))
	}
	return &Handle{ch: ch, reg: r}, nil
}

// Lookup returns the live channel registered under name.
func (r *Registry) Lookup(name string) (Emitter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ch, ok := r.channels[name]
	if !ok {
		return nil, false
	}
	return ch, true
}

// Names returns the registered channel names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	names := make([]string, 0, len(r.channels))
	for n := range r.channels {
		names = append(names, n)
	}
	r.mu.RUnlock()
	sort.Strings(names)
	return names
}

// Len returns the number of channels.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.channels)
}

// Reducer returns a transition function over this registry's channels.
func (r *Registry) Reducer(initialState any) Reducer {
	return NewReducer(r, initialState)
}

func (r *Registry) filters() (*filter.Compiler, error) {
	r.compilerOnce.Do(func() {
		if r.compiler != nil {
			return
		}
		r.compiler, r.compilerErr = filter.NewCompiler(128, 10*time.Minute)
	})
	return r.compiler, r.compilerErr
}
