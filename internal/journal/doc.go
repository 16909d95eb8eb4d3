// Package journal keeps a bounded, in-memory history of dispatched actions.
//
// Entries are keyed by an 8-byte big-endian sequence in a memory-backed
// Pebble store. Values are an 8-byte unix-nano timestamp header followed by
// the action encoded as a protobuf Struct. The journal is an inspection aid;
// it never outlives the process.
//
// Example:
//
//	j, _ := journal.Open(journal.Options{Limit: 1000})
//	defer j.Close()
//	st := store.New(reducer, store.WithMiddleware(journal.Middleware(j, logger)))
//	entries, _ := j.List(journal.ListOptions{Type: "PING", Limit: 10})
package journal
