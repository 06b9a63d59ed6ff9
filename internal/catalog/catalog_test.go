package catalog

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func TestStaticReturnsSortedCopy(t *testing.T) {
	s := &Static{Entries: []Entry{
		{ID: "ZZ-LAST", Group: GroupAirMover, Name: "Last", AirflowCFM: 100, DailyRateCents: 100},
		{ID: "AA-FIRST", Group: GroupDehumidifier, Name: "First", CapacityLPD: 10, DailyRateCents: 100},
	}}

	entries, err := s.All(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if entries[0].ID != "AA-FIRST" || entries[1].ID != "ZZ-LAST" {
		t.Errorf("entries not sorted by ID: %+v", entries)
	}

	// Mutating the returned slice must not reach the repository.
	entries[0].DailyRateCents = 999999
	again, _ := s.All(context.Background())
	if again[0].DailyRateCents == 999999 {
		t.Error("All must return a copy, not the backing slice")
	}
}

func TestReferenceEntriesGroups(t *testing.T) {
	var dehus, movers, scrubbers int
	for _, e := range ReferenceEntries() {
		switch e.Group {
		case GroupDehumidifier:
			dehus++
			if e.CapacityLPD <= 0 {
				t.Errorf("%s: dehumidifier must have a capacity rating", e.ID)
			}
		case GroupAirMover:
			movers++
			if e.AirflowCFM <= 0 {
				t.Errorf("%s: air mover must have an airflow rating", e.ID)
			}
		case GroupAirScrubber:
			scrubbers++
		default:
			t.Errorf("%s: unknown group %q", e.ID, e.Group)
		}
		if e.DailyRateCents <= 0 {
			t.Errorf("%s: daily rate must be positive", e.ID)
		}
	}
	if dehus == 0 || movers == 0 || scrubbers == 0 {
		t.Errorf("reference catalog must span all groups: %d/%d/%d", dehus, movers, scrubbers)
	}
}

func TestSeedAndSQLiteRoundTrip(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "catalog.db")

	if err := Seed(dbPath, ReferenceEntries()); err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	// Seeding twice must replace, not duplicate.
	if err := Seed(dbPath, ReferenceEntries()); err != nil {
		t.Fatalf("reseed failed: %v", err)
	}

	repo, err := NewSQLiteRepository(dbPath)
	if err != nil {
		t.Fatal(err)
	}
	defer repo.Close()

	entries, err := repo.All(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	want := ReferenceEntries()
	if len(entries) != len(want) {
		t.Fatalf("got %d entries, want %d", len(entries), len(want))
	}
	byID := make(map[string]Entry, len(entries))
	for _, e := range entries {
		byID[e.ID] = e
	}
	for _, w := range want {
		got, ok := byID[w.ID]
		if !ok {
			t.Errorf("entry %s missing after round trip", w.ID)
			continue
		}
		if got != w {
			t.Errorf("entry %s changed in round trip:\n got %+v\nwant %+v", w.ID, got, w)
		}
	}
}

type failingRepo struct {
	entries []Entry
	fail    bool
}

func (f *failingRepo) All(_ context.Context) ([]Entry, error) {
	if f.fail {
		return nil, context.DeadlineExceeded
	}
	return f.entries, nil
}

func (f *failingRepo) Close() error { return nil }

func TestStoreKeepsSnapshotOnRefreshFailure(t *testing.T) {
	repo := &failingRepo{entries: ReferenceEntries()}

	store, err := NewStore(context.Background(), repo, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	if len(store.Snapshot()) != len(ReferenceEntries()) {
		t.Fatalf("initial load returned %d entries", len(store.Snapshot()))
	}

	repo.fail = true
	if err := store.refresh(context.Background()); err == nil {
		t.Fatal("expected refresh to fail")
	}
	if len(store.Snapshot()) != len(ReferenceEntries()) {
		t.Error("failed refresh must keep the previous snapshot")
	}
}

func TestStoreInitialLoadFailure(t *testing.T) {
	repo := &failingRepo{fail: true}
	if _, err := NewStore(context.Background(), repo, time.Hour); err == nil {
		t.Fatal("store must not start without a catalog")
	}
}

func TestStoreRunStopsOnCancel(t *testing.T) {
	repo := &failingRepo{entries: ReferenceEntries()}
	store, err := NewStore(context.Background(), repo, time.Millisecond)
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	store.Run(ctx, &wg)
	cancel()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("refresh goroutine did not stop on context cancellation")
	}
}
