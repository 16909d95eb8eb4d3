package channels

import "github.com/pkg/errors"

// TypeKey is the action field carrying the channel name.
const TypeKey = "type"

var (
	// ErrInvalidArguments reports a nil dispatcher or store constructor, a
	// blank channel name, or an unusable filter expression.
	ErrInvalidArguments = errors.New("invalid arguments")
	// ErrInvalidChannelName reports a dispatch through a channel whose name is
	// not a usable token.
	ErrInvalidChannelName = errors.New("invalid channel name")
)

// Action is the record handed to a store's dispatcher.
type Action map[string]any

// Type returns the action's "type" field, or "" when absent or not a string.
func (a Action) Type() string {
	s, _ := a[TypeKey].(string)
	return s
}

// Dispatcher is the store's entry point for actions.
type Dispatcher func(action Action) any

// Listener receives a channel's emitted value.
type Listener func(data any)

// UnsubscribeFunc removes the subscription it was returned for. It returns
// the removed listener, or nil if the subscription was already removed.
type UnsubscribeFunc func() []Listener

// Reducer is a store transition function.
type Reducer func(state any, action Action) any

// Scheduler defers work to a later turn. Schedule must not block.
type Scheduler interface {
	Schedule(task func())
}

// Emitter fans a value out to a channel's listeners.
type Emitter interface {
	Emit(data any)
}

// Channels resolves channel names to emitters.
type Channels interface {
	Lookup(name string) (Emitter, bool)
}

// Store is the part of an external store the attachment layer uses.
type Store interface {
	Dispatch(action Action) any
}

// StoreConstructor builds a store around a reducer.
type StoreConstructor func(reducer Reducer) Store
