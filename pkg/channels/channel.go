package channels

import (
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/rzbill/relay/internal/filter"
	logpkg "github.com/rzbill/relay/pkg/log"
)

type subscription struct {
	token    uuid.UUID
	listener Listener
	where    filter.Predicate
}

// channel is the unit of pub/sub. Listener order is subscription order;
// removal is by token so later subscriptions never shift identity.
type channel struct {
	name       string
	dispatcher Dispatcher
	scheduler  Scheduler
	logger     logpkg.Logger

	mu   sync.Mutex
	subs []*subscription
}

func newChannel(name string, d Dispatcher, s Scheduler, l logpkg.Logger) *channel {
	if l == nil {
		l = logpkg.NewNop()
	}
	return &channel{name: name, dispatcher: d, scheduler: s, logger: l}
}

func validName(name string) bool {
	return strings.TrimSpace(name) != ""
}

func (c *channel) subscribe(l Listener, where filter.Predicate) UnsubscribeFunc {
	sub := &subscription{token: uuid.New(), listener: l, where: where}
	c.mu.Lock()
	c.subs = append(c.subs, sub)
	c.mu.Unlock()
	return func() []Listener { return c.unsubscribe(sub.token) }
}

func (c *channel) unsubscribe(token uuid.UUID) []Listener {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, s := range c.subs {
		if s.token == token {
			c.subs = slices.Delete(c.subs, i, i+1)
			return []Listener{s.listener}
		}
	}
	return nil
}

func (c *channel) dispatch(data map[string]any) (any, error) {
	if !validName(c.name) {
		return nil, errors.Wrapf(ErrInvalidChannelName, "%q", c.name)
	}
	action := make(Action, len(data)+1)
	for k, v := range data {
		action[k] = v
	}
	action[TypeKey] = c.name
	return c.dispatcher(action), nil
}

// Emit schedules one task per listener subscribed at the time of the call
// and returns without waiting. Listeners added later, including from inside
// a listener, are not part of this emission; removing a listener does not
// retract a task already scheduled for it.
func (c *channel) Emit(data any) {
	c.mu.Lock()
	subs := slices.Clone(c.subs)
	c.mu.Unlock()
	c.logger.Debug("emit", logpkg.Str("channel", c.name), logpkg.Int("listeners", len(subs)))

	for _, s := range subs {
		c.scheduler.Schedule(func() {
			if !s.where.Match(c.name, data) {
				return
			}
			s.listener(data)
		})
	}
}

func (c *channel) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.subs)
}

// Handle is a channel's public surface. It does not expose Emit, which is
// reserved for the reducer.
type Handle struct {
	ch  *channel
	reg *Registry
}

// Name returns the channel name.
func (h *Handle) Name() string { return h.ch.name }

// Subscribe appends l to the channel's listeners. A nil listener is accepted
// and fails only when an emission invokes it.
func (h *Handle) Subscribe(l Listener) UnsubscribeFunc {
	return h.ch.subscribe(l, filter.Predicate{})
}

// SubscribeWhere subscribes l behind a CEL predicate over `state` and
// `channel`. The predicate is evaluated inside the deferred task.
func (h *Handle) SubscribeWhere(expr string, l Listener) (UnsubscribeFunc, error) {
	c, err := h.reg.filters()
	if err != nil {
		return nil, err
	}
	p, err := c.Compile(expr)
	if err != nil {
		return nil, errors.Wrap(ErrInvalidArguments, err.Error())
	}
	return h.ch.subscribe(l, p), nil
}

// Dispatch sends data to the bound dispatcher with "type" set to the
// channel name, overwriting any caller-supplied type, and returns the
// dispatcher's result. data is not modified.
func (h *Handle) Dispatch(data map[string]any) (any, error) {
	return h.ch.dispatch(data)
}

// Listeners returns the number of current subscriptions.
func (h *Handle) Listeners() int { return h.ch.len() }
