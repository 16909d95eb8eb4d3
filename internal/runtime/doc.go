// Package runtime wires configuration, logging, scheduling, the channel
// registry, the action journal and a store into a single relay instance.
//
// Example:
//
//	rt, _ := runtime.Open(runtime.Options{Config: config.Default(), Logger: logger})
//	defer rt.Close()
//	ping, _ := rt.Channel("PING")
//	ping.Subscribe(func(state any) { fmt.Println(state) })
//	_, _ = ping.Dispatch(map[string]any{"from": "cli"})
//	_ = rt.Drain(ctx)
package runtime
