package journal

import (
	"encoding/binary"
	"fmt"
	"sync"
	"time"

	"github.com/cockroachdb/pebble"
	"github.com/pkg/errors"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	pebblestore "github.com/rzbill/relay/internal/storage/pebble"
	"github.com/rzbill/relay/pkg/channels"
	logpkg "github.com/rzbill/relay/pkg/log"
	"github.com/rzbill/relay/pkg/store"
)

// ErrNotFound is returned by Get for sequence numbers never recorded or
// already trimmed.
var ErrNotFound = errors.New("journal: entry not found")

// Entry is one recorded action.
type Entry struct {
	Seq    uint64
	At     time.Time
	Action channels.Action
}

// Options configures a Journal.
type Options struct {
	// Limit caps retained entries; older ones are trimmed. Zero means no cap.
	Limit int
}

// ListOptions filters List results.
type ListOptions struct {
	// Type keeps only actions of this type when set.
	Type string
	// Limit returns at most this many of the newest matches. Zero means all.
	Limit int
}

// Journal records actions in sequence order.
type Journal struct {
	db    *pebblestore.DB
	limit int

	mu    sync.Mutex
	first uint64
	next  uint64
}

// Open creates an empty journal.
func Open(opts Options) (*Journal, error) {
	db, err := pebblestore.Open(pebblestore.Options{})
	if err != nil {
		return nil, err
	}
	return &Journal{db: db, limit: opts.Limit, first: 1, next: 1}, nil
}

// Close releases the backing store.
func (j *Journal) Close() error { return j.db.Close() }

// Len returns the number of retained entries.
func (j *Journal) Len() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return int(j.next - j.first)
}

// Record appends action and returns its sequence number. The write and any
// trim beyond Limit commit in one batch.
func (j *Journal) Record(action channels.Action) (uint64, error) {
	value, err := encode(time.Now(), action)
	if err != nil {
		return 0, err
	}

	j.mu.Lock()
	defer j.mu.Unlock()
	seq := j.next
	first := j.first

	b := j.db.NewBatch()
	defer b.Close()
	if err := b.Set(seqKey(seq), value, nil); err != nil {
		return 0, errors.Wrapf(err, "journal: record %d", seq)
	}
	if j.limit > 0 && int(seq+1-first) > j.limit {
		cut := seq + 1 - uint64(j.limit)
		if err := b.DeleteRange(seqKey(first), seqKey(cut), nil); err != nil {
			return 0, errors.Wrap(err, "journal: trim")
		}
		first = cut
	}
	if err := j.db.CommitBatch(b); err != nil {
		return 0, errors.Wrapf(err, "journal: record %d", seq)
	}
	j.next = seq + 1
	j.first = first
	return seq, nil
}

// Get returns the entry recorded under seq.
func (j *Journal) Get(seq uint64) (Entry, error) {
	value, err := j.db.Get(seqKey(seq))
	if errors.Is(err, pebblestore.ErrNotFound) {
		return Entry{}, errors.Wrapf(ErrNotFound, "seq %d", seq)
	}
	if err != nil {
		return Entry{}, errors.Wrapf(err, "journal: get %d", seq)
	}
	return decode(seqKey(seq), value)
}

// List returns matching entries oldest first.
func (j *Journal) List(opts ListOptions) ([]Entry, error) {
	it, err := j.db.NewIter(&pebble.IterOptions{})
	if err != nil {
		return nil, errors.Wrap(err, "journal: iterate")
	}
	defer it.Close()

	var out []Entry
	for valid := it.Last(); valid; valid = it.Prev() {
		if opts.Limit > 0 && len(out) >= opts.Limit {
			break
		}
		e, err := decode(it.Key(), it.Value())
		if err != nil {
			return nil, err
		}
		if opts.Type != "" && e.Action.Type() != opts.Type {
			continue
		}
		out = append(out, e)
	}
	for i, k := 0, len(out)-1; i < k; i, k = i+1, k-1 {
		out[i], out[k] = out[k], out[i]
	}
	return out, nil
}

// Middleware records every action before passing it on. Recording failures
// are logged and never block the dispatch.
func Middleware(j *Journal, logger logpkg.Logger) store.Middleware {
	if logger == nil {
		logger = logpkg.NewNop()
	}
	logger = logger.WithComponent("journal")
	return func(next channels.Dispatcher) channels.Dispatcher {
		return func(action channels.Action) any {
			if _, err := j.Record(action); err != nil {
				logger.Warn("failed to record action", logpkg.Str("type", action.Type()), logpkg.Err(err))
			}
			return next(action)
		}
	}
}

func seqKey(seq uint64) []byte {
	var k [8]byte
	binary.BigEndian.PutUint64(k[:], seq)
	return k[:]
}

func encode(at time.Time, action channels.Action) ([]byte, error) {
	fields := make(map[string]*structpb.Value, len(action))
	for k, v := range action {
		pv, err := structpb.NewValue(v)
		if err != nil {
			pv = structpb.NewStringValue(fmt.Sprintf("%v", v))
		}
		fields[k] = pv
	}
	body, err := proto.Marshal(&structpb.Struct{Fields: fields})
	if err != nil {
		return nil, errors.Wrap(err, "journal: encode")
	}
	out := make([]byte, 8, 8+len(body))
	binary.BigEndian.PutUint64(out, uint64(at.UnixNano()))
	return append(out, body...), nil
}

func decode(key, value []byte) (Entry, error) {
	if len(key) != 8 || len(value) < 8 {
		return Entry{}, errors.New("journal: corrupt entry")
	}
	var s structpb.Struct
	if err := proto.Unmarshal(value[8:], &s); err != nil {
		return Entry{}, errors.Wrap(err, "journal: decode")
	}
	return Entry{
		Seq:    binary.BigEndian.Uint64(key),
		At:     time.Unix(0, int64(binary.BigEndian.Uint64(value[:8]))),
		Action: channels.Action(s.AsMap()),
	}, nil
}
