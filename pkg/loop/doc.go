// Package loop provides deferred execution for listener fan-out.
//
// A Loop is a single goroutine draining an unbounded FIFO of tasks, the
// moral equivalent of a host event queue: Schedule never blocks, tasks run
// one at a time in the order they were scheduled, and a panicking task is
// recovered and logged without affecting the tasks queued behind it.
// Goroutines is the fire-and-forget alternative that runs every task on its
// own goroutine.
//
// Example:
//
//	l := loop.New(loop.WithLogger(logger))
//	defer l.Close()
//	l.Schedule(func() { fmt.Println("later") })
//	_ = l.Drain(ctx)
package loop
