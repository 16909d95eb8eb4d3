package pebblestore

import (
	"testing"

	"github.com/cockroachdb/pebble"
	"github.com/pkg/errors"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(Options{})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func commit(t *testing.T, db *DB, fill func(b *pebble.Batch) error) {
	t.Helper()
	b := db.NewBatch()
	defer b.Close()
	if err := fill(b); err != nil {
		t.Fatalf("batch: %v", err)
	}
	if err := db.CommitBatch(b); err != nil {
		t.Fatalf("commit: %v", err)
	}
}

func TestBatchGet(t *testing.T) {
	db := newTestDB(t)
	commit(t, db, func(b *pebble.Batch) error {
		return b.Set([]byte("k1"), []byte("v1"), nil)
	})
	got, err := db.Get([]byte("k1"))
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(got) != "v1" {
		t.Fatalf("got %q want %q", got, "v1")
	}
	if _, err := db.Get([]byte("missing")); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestBatchSetAndRangeDeleteTogether(t *testing.T) {
	db := newTestDB(t)
	commit(t, db, func(b *pebble.Batch) error {
		for _, k := range []string{"a", "b", "c"} {
			if err := b.Set([]byte(k), []byte(k), nil); err != nil {
				return err
			}
		}
		return nil
	})
	commit(t, db, func(b *pebble.Batch) error {
		if err := b.Set([]byte("d"), []byte("d"), nil); err != nil {
			return err
		}
		return b.DeleteRange([]byte("a"), []byte("c"), nil)
	})

	it, err := db.NewIter(&pebble.IterOptions{})
	if err != nil {
		t.Fatalf("iter: %v", err)
	}
	defer it.Close()
	var keys []string
	for it.First(); it.Valid(); it.Next() {
		keys = append(keys, string(it.Key()))
	}
	if len(keys) != 2 || keys[0] != "c" || keys[1] != "d" {
		t.Fatalf("unexpected keys after range delete: %v", keys)
	}
}

func TestCommitNilBatch(t *testing.T) {
	db := newTestDB(t)
	if err := db.CommitBatch(nil); err == nil {
		t.Fatalf("expected error for nil batch")
	}
}
