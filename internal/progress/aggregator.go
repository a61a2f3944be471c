// Package progress tracks per-artifact byte counts for a model pull and
// publishes them as immutable snapshots.
package progress

import (
	"maps"
	"slices"
	"sync"
	"sync/atomic"
)

// Entry is the byte progress of a single artifact.
type Entry struct {
	Total     int64
	Completed int64
}

// Percent returns completion in [0, 100] when Total is known. Completed
// beyond Total is reported as-is; callers clamp for display.
func (e Entry) Percent() (float64, bool) {
	if e.Total <= 0 {
		return 0, false
	}
	return float64(e.Completed) / float64(e.Total) * 100, true
}

// Done reports whether the artifact has been fully transferred.
func (e Entry) Done() bool {
	return e.Total > 0 && e.Completed >= e.Total
}

// Snapshot is a read-only view of all artifacts seen so far, in the order
// they first appeared. The zero value is an empty snapshot.
type Snapshot struct {
	order   []string
	entries map[string]Entry
}

func (s Snapshot) Len() int {
	return len(s.order)
}

// Digests returns artifact digests in first-seen order.
func (s Snapshot) Digests() []string {
	return slices.Clone(s.order)
}

func (s Snapshot) Get(digest string) (Entry, bool) {
	e, ok := s.entries[digest]
	return e, ok
}

// All iterates entries in first-seen order.
func (s Snapshot) All(yield func(string, Entry) bool) {
	for _, d := range s.order {
		if !yield(d, s.entries[d]) {
			return
		}
	}
}

// Equal reports whether both snapshots hold the same digests in the same
// order with the same values.
func (s Snapshot) Equal(other Snapshot) bool {
	return slices.Equal(s.order, other.order) && maps.Equal(s.entries, other.entries)
}

// Summary is the rollup across every artifact in a snapshot.
type Summary struct {
	Total     int64
	Completed int64
	Artifacts int
	Finished  int
}

// Percent returns overall completion, false while no artifact has a size.
func (s Summary) Percent() (float64, bool) {
	return Entry{Total: s.Total, Completed: s.Completed}.Percent()
}

func (s Snapshot) Summary() Summary {
	sum := Summary{Artifacts: len(s.order)}
	for _, e := range s.entries {
		sum.Total += e.Total
		sum.Completed += min(e.Completed, max(e.Total, 0))
		if e.Done() {
			sum.Finished++
		}
	}
	return sum
}

// Update describes the effect of one Apply call.
type Update struct {
	Digest   string
	Inserted bool
	// Regressed is set when the new completed value is lower than the
	// previous one. The new value is stored regardless.
	Regressed bool
	Previous  Entry
	Current   Entry
}

// Aggregator folds progress events into per-digest entries. Apply and Reset
// are serialized internally; Snapshot may be called from any goroutine and
// never observes a partially applied update.
type Aggregator struct {
	mu   sync.Mutex
	snap atomic.Pointer[Snapshot]
}

func NewAggregator() *Aggregator {
	a := &Aggregator{}
	a.snap.Store(&Snapshot{})
	return a
}

// Apply records progress for digest. The first event for a digest fixes its
// total; later events replace completed only (last write wins).
func (a *Aggregator) Apply(digest string, total, completed int64) Update {
	a.mu.Lock()
	defer a.mu.Unlock()

	cur := a.load()
	prev, seen := cur.entries[digest]

	next := Entry{Total: total, Completed: completed}
	if seen {
		next.Total = prev.Total
	}

	u := Update{
		Digest:    digest,
		Inserted:  !seen,
		Regressed: seen && completed < prev.Completed,
		Previous:  prev,
		Current:   next,
	}

	if seen && next == prev {
		return u
	}

	entries := make(map[string]Entry, len(cur.entries)+1)
	maps.Copy(entries, cur.entries)
	entries[digest] = next

	order := cur.order
	if !seen {
		order = append(slices.Clip(cur.order), digest)
	}

	a.snap.Store(&Snapshot{order: order, entries: entries})
	return u
}

// Snapshot returns the current state. The returned value is never mutated.
func (a *Aggregator) Snapshot() Snapshot {
	return *a.load()
}

// Reset discards all entries.
func (a *Aggregator) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.snap.Store(&Snapshot{})
}

func (a *Aggregator) load() *Snapshot {
	if s := a.snap.Load(); s != nil {
		return s
	}
	return &Snapshot{}
}
