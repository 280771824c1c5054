package beacon

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ghi-core/backend/internal/storage/memory"
)

type stubFetcher struct {
	doc string
	err error
}

func (s *stubFetcher) Fetch(ctx context.Context) (string, error) {
	return s.doc, s.err
}

const singleEventFeed = `* * *
[MERS, Saudi Arabia](http://x?eventid=42)
Fri 30 Jan 2026
15 cases 3 deaths
* * *
`

func TestRunOnceEndToEnd(t *testing.T) {
	store := memory.NewStore()
	collector := NewCollector(store, &stubFetcher{doc: singleEventFeed}, nil, "http://x").
		WithClock(func() time.Time { return collectedAt })

	inserted := collector.RunOnce(context.Background())
	if inserted != 1 {
		t.Fatalf("expected 1 insert, got %d", inserted)
	}

	signal, err := store.GetSignalByEventID(context.Background(), "42")
	if err != nil {
		t.Fatalf("signal not stored: %v", err)
	}

	if signal.Disease != "MERS" || signal.Country != "Saudi Arabia" {
		t.Errorf("unexpected signal: %q / %q", signal.Disease, signal.Country)
	}
	if signal.Cases != 15 || signal.Deaths != 3 {
		t.Errorf("expected 15 cases / 3 deaths, got %d / %d", signal.Cases, signal.Deaths)
	}
	// 50 base + 40 mers + 20 saudi + 0 (cases <= 50), capped at 100.
	if signal.PriorityScore != 100 {
		t.Errorf("expected priority 100, got %.0f", signal.PriorityScore)
	}
	if signal.TriageStatus != "Pending Triage" {
		t.Errorf("expected pending triage, got %q", signal.TriageStatus)
	}
	want := time.Date(2026, 1, 30, 0, 0, 0, 0, time.UTC)
	if !signal.DateReported.Equal(want) {
		t.Errorf("expected reported date %v, got %v", want, signal.DateReported)
	}
}

func TestRunOnceIdempotent(t *testing.T) {
	store := memory.NewStore()
	collector := NewCollector(store, &stubFetcher{doc: singleEventFeed}, nil, "http://x")

	first := collector.RunOnce(context.Background())
	second := collector.RunOnce(context.Background())

	if first != 1 {
		t.Errorf("expected 1 insert on first run, got %d", first)
	}
	if second != 0 {
		t.Errorf("expected 0 inserts on second run, got %d", second)
	}

	signals, _ := store.ListSignals(context.Background(), 10)
	if len(signals) != 1 {
		t.Errorf("expected a single signal row, got %d", len(signals))
	}
}

func TestRunOnceFetchFailure(t *testing.T) {
	store := memory.NewStore()
	collector := NewCollector(store, &stubFetcher{err: errors.New("upstream down")}, nil, "http://x")

	if inserted := collector.RunOnce(context.Background()); inserted != 0 {
		t.Errorf("expected 0 inserts on fetch failure, got %d", inserted)
	}

	signals, _ := store.ListSignals(context.Background(), 10)
	if len(signals) != 0 {
		t.Errorf("failed cycle must not write signals, got %d", len(signals))
	}
}

type fakeCache struct {
	snapshots map[string]string
}

func (f *fakeCache) GetSnapshot(ctx context.Context, source string) (string, error) {
	return f.snapshots[source], nil
}

func (f *fakeCache) SetSnapshot(ctx context.Context, source, hash string) error {
	f.snapshots[source] = hash
	return nil
}

func TestRunOnceUnchangedDocumentSkipsParse(t *testing.T) {
	store := memory.NewStore()
	cache := &fakeCache{snapshots: make(map[string]string)}
	collector := NewCollector(store, &stubFetcher{doc: singleEventFeed}, cache, "http://x")

	if inserted := collector.RunOnce(context.Background()); inserted != 1 {
		t.Fatal("first run should insert")
	}
	if inserted := collector.RunOnce(context.Background()); inserted != 0 {
		t.Error("unchanged document should short-circuit")
	}
}
