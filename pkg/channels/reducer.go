package channels

import (
	"reflect"

	"github.com/pkg/errors"
)

// NewReducer returns a transition function that emits the current state to
// the channel named by the action type. A nil state is replaced with
// initialState before emission; a nil initialState means an empty map.
//
// The result is nil for every action: on a match it is what Emit produces
// (nothing), otherwise there is no defined next state. Stores applying it
// directly lose their state on each action; listeners are the delivery path.
func NewReducer(set Channels, initialState any) Reducer {
	if initialState == nil {
		initialState = map[string]any{}
	}
	return func(state any, action Action) any {
		if state == nil {
			state = initialState
		}
		if ch, ok := set.Lookup(action.Type()); ok {
			ch.Emit(state)
		}
		return nil
	}
}

// Attachment is the result of attaching a registry to a store.
type Attachment struct {
	// Store is the store built by the constructor.
	Store Store
	// Channels is the live registry the store's reducer reads.
	Channels *Registry
}

// CreateChannel creates or reuses the channel name bound to the store's
// dispatcher.
func (a *Attachment) CreateChannel(name string) (*Handle, error) {
	return a.Channels.CreateChannel(a.Store.Dispatch, name)
}

// Attach builds a store around this registry's reducer.
func (r *Registry) Attach(newStore StoreConstructor, initialState any) (*Attachment, error) {
	if newStore == nil {
		return nil, errors.Wrap(ErrInvalidArguments, "store constructor is nil")
	}
	s := newStore(r.Reducer(initialState))
	if isNil(s) {
		return nil, errors.Wrap(ErrInvalidArguments, "store constructor returned nil")
	}
	return &Attachment{Store: s, Channels: r}, nil
}

func isNil(s Store) bool {
	if s == nil {
		return true
	}
	v := reflect.ValueOf(s)
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Func, reflect.Slice, reflect.Chan, reflect.Interface:
		return v.IsNil()
	}
	return false
}
