// Package filter compiles CEL predicates used to gate listener delivery.
//
// Expressions see two variables: `state`, the emitted value (dyn), and
// `channel`, the channel name. They must evaluate to a bool. Compiled
// programs are cached by expression text in an expiring LRU.
//
// Example:
//
//	c := filter.NewCompiler(128, 10*time.Minute)
//	p, err := c.Compile(`channel == "PING" && state.count > 2`)
//	ok := p.Match("PING", map[string]any{"count": 3})
package filter
