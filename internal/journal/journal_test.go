package journal

import (
	"reflect"
	"testing"

	"github.com/pkg/errors"

	"github.com/rzbill/relay/pkg/channels"
	"github.com/rzbill/relay/pkg/store"
)

func newJournal(t *testing.T, limit int) *Journal {
	t.Helper()
	j, err := Open(Options{Limit: limit})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = j.Close() })
	return j
}

func TestRecordAndList(t *testing.T) {
	j := newJournal(t, 0)
	for _, a := range []channels.Action{
		{"type": "PING", "n": 1},
		{"type": "PONG"},
		{"type": "PING", "n": 2, "tags": []any{"a", "b"}},
	} {
		if _, err := j.Record(a); err != nil {
			t.Fatalf("record: %v", err)
		}
	}
	if j.Len() != 3 {
		t.Fatalf("len: %d", j.Len())
	}

	all, err := j.List(ListOptions{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 3 || all[0].Seq != 1 || all[2].Seq != 3 {
		t.Fatalf("unexpected entries: %+v", all)
	}
	// Numbers come back as float64 through structpb.
	want := channels.Action{"type": "PING", "n": float64(2), "tags": []any{"a", "b"}}
	if !reflect.DeepEqual(all[2].Action, want) {
		t.Fatalf("got %v want %v", all[2].Action, want)
	}

	pings, err := j.List(ListOptions{Type: "PING", Limit: 1})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(pings) != 1 || pings[0].Seq != 3 {
		t.Fatalf("expected newest PING, got %+v", pings)
	}
}

func TestLimitTrimsOldest(t *testing.T) {
	j := newJournal(t, 2)
	for i := 0; i < 5; i++ {
		if _, err := j.Record(channels.Action{"type": "T", "i": i}); err != nil {
			t.Fatalf("record: %v", err)
		}
	}
	entries, err := j.List(ListOptions{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 2 || entries[0].Seq != 4 || entries[1].Seq != 5 {
		t.Fatalf("unexpected retained entries: %+v", entries)
	}
	if j.Len() != 2 {
		t.Fatalf("len: %d", j.Len())
	}
}

func TestLenNeverExceedsLimit(t *testing.T) {
	j := newJournal(t, 3)
	for i := 0; i < 10; i++ {
		if _, err := j.Record(channels.Action{"type": "T", "i": i}); err != nil {
			t.Fatalf("record: %v", err)
		}
		if j.Len() > 3 {
			t.Fatalf("len %d exceeds limit after record %d", j.Len(), i)
		}
		entries, err := j.List(ListOptions{})
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(entries) != j.Len() {
			t.Fatalf("stored %d entries, len reports %d", len(entries), j.Len())
		}
	}
}

func TestGetBySeq(t *testing.T) {
	j := newJournal(t, 2)
	for i := 0; i < 3; i++ {
		if _, err := j.Record(channels.Action{"type": "T", "i": i}); err != nil {
			t.Fatalf("record: %v", err)
		}
	}
	e, err := j.Get(3)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if e.Seq != 3 || e.Action["i"] != float64(2) {
		t.Fatalf("unexpected entry: %+v", e)
	}
	if _, err := j.Get(1); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected trimmed entry to be gone, got %v", err)
	}
	if _, err := j.Get(99); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUnencodableValueStoredAsString(t *testing.T) {
	j := newJournal(t, 0)
	type point struct{ X, Y int }
	if _, err := j.Record(channels.Action{"type": "P", "p": point{1, 2}}); err != nil {
		t.Fatalf("record: %v", err)
	}
	entries, _ := j.List(ListOptions{})
	if entries[0].Action["p"] != "{1 2}" {
		t.Fatalf("got %v", entries[0].Action["p"])
	}
}

func TestMiddlewareRecordsDispatches(t *testing.T) {
	j := newJournal(t, 0)
	s := store.New(func(state any, _ channels.Action) any { return state }, store.WithMiddleware(Middleware(j, nil)))
	s.Dispatch(channels.Action{"type": "A"})
	s.Dispatch(channels.Action{"type": "B"})
	entries, err := j.List(ListOptions{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 2 || entries[0].Action.Type() != "A" || entries[1].Action.Type() != "B" {
		t.Fatalf("unexpected entries: %+v", entries)
	}
}
