// Package store is a minimal unidirectional state store: one state value
// advanced by a reducer in response to dispatched actions.
package store

import (
	"sync"

	"github.com/google/uuid"

	"github.com/rzbill/relay/pkg/channels"
	logpkg "github.com/rzbill/relay/pkg/log"
)

// Middleware wraps the dispatch chain.
type Middleware func(next channels.Dispatcher) channels.Dispatcher

// Option configures a Store.
type Option func(*Store)

// WithState sets the state held before the first dispatch.
func WithState(state any) Option {
	return func(s *Store) { s.state = state }
}

// WithMiddleware appends middleware. The first one given sees actions first.
func WithMiddleware(mw ...Middleware) Option {
	return func(s *Store) { s.middleware = append(s.middleware, mw...) }
}

// WithLogger sets the store logger.
func WithLogger(l logpkg.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// Store holds a single state value.
type Store struct {
	id         uuid.UUID
	reducer    channels.Reducer
	middleware []Middleware
	logger     logpkg.Logger
	dispatch   channels.Dispatcher

	mu    sync.Mutex
	state any
}

// New builds a store around reducer.
func New(reducer channels.Reducer, opts ...Option) *Store {
	s := &Store{id: uuid.New(), reducer: reducer}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logpkg.NewNop()
	}
	s.logger = s.logger.With(logpkg.Component("store"), logpkg.Str("store", s.id.String()))

	d := channels.Dispatcher(s.reduce)
	for i := len(s.middleware) - 1; i >= 0; i-- {
		d = s.middleware[i](d)
	}
	s.dispatch = d
	return s
}

// Constructor adapts New to channels.StoreConstructor.
func Constructor(opts ...Option) channels.StoreConstructor {
	return func(reducer channels.Reducer) channels.Store {
		return New(reducer, opts...)
	}
}

// ID identifies the store in logs.
func (s *Store) ID() uuid.UUID { return s.id }

// Dispatch runs action through the middleware chain and the reducer and
// returns the chain's result, which is the action itself unless a
// middleware substitutes something else.
func (s *Store) Dispatch(action channels.Action) any {
	return s.dispatch(action)
}

// State returns the current state. The reducer's result replaces it as is,
// including nil.
func (s *Store) State() any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Store) reduce(action channels.Action) any {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = s.reducer(s.state, action)
	s.logger.Debug("action reduced", logpkg.Str("type", action.Type()))
	return action
}
