// Package channels routes named events between a unidirectional state store
// and independent listeners.
//
// A Registry owns at most one channel per name. CreateChannel returns a Handle
// exposing Subscribe and Dispatch; Dispatch tags the payload with the channel
// name as its "type" and hands it to the store's dispatcher. The store runs
// the Reducer produced by the registry, which looks the channel up by the
// action type and emits the current state to every listener. Emission is
// deferred: each listener is scheduled as an independent task and Emit
// returns before any of them runs.
//
// The reducer returns nil for every action. State travels to listeners
// through emission, not through the store, so composing this reducer with
// state-bearing reducers needs explicit merging by the caller.
//
// Example:
//
//	reg := channels.NewRegistry(channels.WithScheduler(loop.New()))
//	att, _ := reg.Attach(store.Constructor(), map[string]any{})
//	ping, _ := att.CreateChannel("PING")
//	unsubscribe := ping.Subscribe(func(state any) { fmt.Println(state) })
//	defer unsubscribe()
//	_, _ = ping.Dispatch(map[string]any{"from": "cli"})
package channels
