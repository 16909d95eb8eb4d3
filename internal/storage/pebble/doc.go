// Package pebblestore wraps Pebble for relay's in-process stores.
//
// Stores are memory-backed; nothing outlives the process. Writes go through
// batches so multi-key updates commit atomically.
//
// Usage:
//
//	db, err := pebblestore.Open(pebblestore.Options{})
//	if err != nil { /* handle */ }
//	defer db.Close()
//
//	b := db.NewBatch()
//	_ = b.Set([]byte("k"), []byte("v"), nil)
//	_ = db.CommitBatch(b)
//	b.Close()
//
//	v, _ := db.Get([]byte("k"))
package pebblestore
