package progress

import (
	"slices"
	"sync"
	"testing"
)

func TestApplyInsertsThenUpdates(t *testing.T) {
	a := NewAggregator()

	u := a.Apply("sha256:aa", 100, 10)
	if !u.Inserted || u.Regressed {
		t.Errorf("first Apply = %+v, want inserted", u)
	}

	u = a.Apply("sha256:aa", 100, 60)
	if u.Inserted || u.Regressed {
		t.Errorf("second Apply = %+v, want plain update", u)
	}

	e, ok := a.Snapshot().Get("sha256:aa")
	if !ok || e != (Entry{Total: 100, Completed: 60}) {
		t.Errorf("entry = %+v, %v", e, ok)
	}
}

func TestApplyKeepsFirstTotal(t *testing.T) {
	a := NewAggregator()
	a.Apply("sha256:aa", 100, 10)
	a.Apply("sha256:aa", 999, 20)

	e, _ := a.Snapshot().Get("sha256:aa")
	if e.Total != 100 || e.Completed != 20 {
		t.Errorf("entry = %+v, want total fixed at 100", e)
	}
}

func TestApplyLastWriteWins(t *testing.T) {
	a := NewAggregator()
	a.Apply("sha256:aa", 100, 80)

	u := a.Apply("sha256:aa", 100, 30)
	if !u.Regressed {
		t.Error("lower completed should be reported as a regression")
	}
	if u.Previous.Completed != 80 || u.Current.Completed != 30 {
		t.Errorf("update = %+v", u)
	}

	e, _ := a.Snapshot().Get("sha256:aa")
	if e.Completed != 30 {
		t.Errorf("Completed = %d, want 30 (last write wins)", e.Completed)
	}
}

func TestApplyIdempotent(t *testing.T) {
	a := NewAggregator()
	a.Apply("sha256:aa", 100, 10)
	a.Apply("sha256:bb", 50, 5)
	before := a.Snapshot()

	a.Apply("sha256:bb", 50, 5)
	after := a.Snapshot()

	if !before.Equal(after) {
		t.Error("applying the same event twice changed the snapshot")
	}
}

func TestSnapshotIsImmutable(t *testing.T) {
	a := NewAggregator()
	a.Apply("sha256:aa", 100, 10)
	snap := a.Snapshot()

	a.Apply("sha256:aa", 100, 90)
	a.Apply("sha256:bb", 10, 1)

	e, _ := snap.Get("sha256:aa")
	if e.Completed != 10 {
		t.Errorf("held snapshot changed: %+v", e)
	}
	if snap.Len() != 1 {
		t.Errorf("held snapshot Len() = %d, want 1", snap.Len())
	}

	digests := snap.Digests()
	digests[0] = "mutated"
	if snap.Digests()[0] != "sha256:aa" {
		t.Error("Digests() exposed internal order")
	}
}

func TestSnapshotOrder(t *testing.T) {
	a := NewAggregator()
	a.Apply("sha256:cc", 1, 0)
	a.Apply("sha256:aa", 1, 0)
	a.Apply("sha256:bb", 1, 0)
	a.Apply("sha256:aa", 1, 1)

	want := []string{"sha256:cc", "sha256:aa", "sha256:bb"}
	if got := a.Snapshot().Digests(); !slices.Equal(got, want) {
		t.Errorf("Digests() = %v, want %v", got, want)
	}

	var seen []string
	for d := range a.Snapshot().All {
		seen = append(seen, d)
	}
	if !slices.Equal(seen, want) {
		t.Errorf("All order = %v, want %v", seen, want)
	}
}

func TestPercent(t *testing.T) {
	tests := []struct {
		name   string
		entry  Entry
		want   float64
		wantOK bool
	}{
		{"zero total", Entry{Total: 0, Completed: 0}, 0, false},
		{"zero total with bytes", Entry{Total: 0, Completed: 10}, 0, false},
		{"half", Entry{Total: 200, Completed: 100}, 50, true},
		{"complete", Entry{Total: 100, Completed: 100}, 100, true},
		{"nothing yet", Entry{Total: 100}, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.entry.Percent()
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("Percent() = %v, %v; want %v, %v", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestSummary(t *testing.T) {
	a := NewAggregator()
	a.Apply("sha256:aa", 100, 100)
	a.Apply("sha256:bb", 300, 50)
	a.Apply("sha256:cc", 0, 0)

	sum := a.Snapshot().Summary()
	if sum.Artifacts != 3 || sum.Finished != 1 {
		t.Errorf("Summary() = %+v", sum)
	}
	if sum.Total != 400 || sum.Completed != 150 {
		t.Errorf("bytes = %d/%d, want 150/400", sum.Completed, sum.Total)
	}
	if pct, ok := sum.Percent(); !ok || pct != 37.5 {
		t.Errorf("Percent() = %v, %v", pct, ok)
	}

	if _, ok := (Snapshot{}).Summary().Percent(); ok {
		t.Error("empty snapshot should have no percent")
	}
}

func TestReset(t *testing.T) {
	a := NewAggregator()
	a.Apply("sha256:aa", 100, 10)
	held := a.Snapshot()

	a.Reset()
	if a.Snapshot().Len() != 0 {
		t.Errorf("Len() after Reset = %d", a.Snapshot().Len())
	}
	if held.Len() != 1 {
		t.Error("Reset changed a previously taken snapshot")
	}

	u := a.Apply("sha256:aa", 100, 5)
	if !u.Inserted {
		t.Error("digest should be new after Reset")
	}
}

func TestZeroValueAggregator(t *testing.T) {
	var a Aggregator
	if a.Snapshot().Len() != 0 {
		t.Error("zero value should be empty")
	}
	a.Apply("sha256:aa", 1, 1)
	if a.Snapshot().Len() != 1 {
		t.Error("zero value should accept updates")
	}
}

func TestConcurrentReaders(t *testing.T) {
	a := NewAggregator()
	done := make(chan struct{})

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-done:
					return
				default:
				}
				snap := a.Snapshot()
				// Every digest in the order must have an entry.
				for _, d := range snap.Digests() {
					if _, ok := snap.Get(d); !ok {
						t.Errorf("digest %s missing from entries", d)
						return
					}
				}
			}
		}()
	}

	digests := []string{"sha256:aa", "sha256:bb", "sha256:cc", "sha256:dd"}
	for i := int64(0); i <= 1000; i++ {
		a.Apply(digests[i%4], 1000, i)
	}
	close(done)
	wg.Wait()
}
