package metrics

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"studiolinks/internal/models"
)

type fakeLookupStore struct {
	mu      sync.Mutex
	counts  map[string]int64
	written chan struct{}
}

func newFakeLookupStore() *fakeLookupStore {
	return &fakeLookupStore{counts: map[string]int64{}, written: make(chan struct{}, 16)}
}

func (f *fakeLookupStore) IncrementSlugLookup(_ context.Context, slug, outcome string) error {
	f.mu.Lock()
	f.counts[slug+"/"+outcome]++
	f.mu.Unlock()
	f.written <- struct{}{}
	return nil
}

func (f *fakeLookupStore) GetAllSlugLookups(context.Context) ([]models.SlugLookup, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.SlugLookup
	for key, n := range f.counts {
		slug, outcome, _ := strings.Cut(key, "/")
		out = append(out, models.SlugLookup{Slug: slug, Outcome: outcome, Count: n})
	}
	return out, nil
}

func TestRecordLookup_CountsByRouteAndOutcome(t *testing.T) {
	before := testutil.ToFloat64(Lookups.WithLabelValues("redirect", models.OutcomeResolved))

	RecordLookup("redirect", "kudzu", models.OutcomeResolved)
	RecordLookup("redirect", "kudzu", models.OutcomeResolved)

	got := testutil.ToFloat64(Lookups.WithLabelValues("redirect", models.OutcomeResolved))
	if got-before != 2 {
		t.Errorf("lookups delta = %v, want 2", got-before)
	}
}

func TestRecordLookup_PersistsResolvedOnly(t *testing.T) {
	fake := newFakeLookupStore()
	store = fake
	t.Cleanup(func() { store = nil })

	RecordLookup("qr", "kudzu", models.OutcomeResolved)
	RecordLookup("qr", "../etc", models.OutcomeInvalid)
	RecordLookup("qr", "kudzu", models.OutcomeError)
	RecordLookup("redirect", "made-up-slug", models.OutcomeNotFound)

	select {
	case <-fake.written:
	case <-time.After(time.Second):
		t.Fatal("lookup was not persisted")
	}

	// Give any stray write for the other outcomes a chance to land.
	select {
	case <-fake.written:
		t.Fatal("a non-resolved lookup was persisted")
	case <-time.After(50 * time.Millisecond):
	}

	lookups, _ := fake.GetAllSlugLookups(context.Background())
	if len(lookups) != 1 {
		t.Fatalf("persisted %d lookups, want 1: %+v", len(lookups), lookups)
	}
	if lookups[0].Slug != "kudzu" || lookups[0].Outcome != models.OutcomeResolved {
		t.Errorf("persisted %+v, want kudzu/resolved", lookups[0])
	}
}

func TestSlugCollector(t *testing.T) {
	fake := newFakeLookupStore()
	fake.counts["kudzu/resolved"] = 3
	fake.counts["album/resolved"] = 1

	reg := prometheus.NewRegistry()
	reg.MustRegister(&SlugCollector{store: fake})

	if n := testutil.CollectAndCount(reg, "studiolinks_slug_lookups_total"); n != 2 {
		t.Errorf("collected %d series, want 2", n)
	}
}

func TestObserveRefresh(t *testing.T) {
	before := testutil.ToFloat64(Refreshes.WithLabelValues("fetched"))

	ObserveRefresh("fetched", 120*time.Millisecond, 7)

	if got := testutil.ToFloat64(Refreshes.WithLabelValues("fetched")); got-before != 1 {
		t.Errorf("fetched refreshes delta = %v, want 1", got-before)
	}
	if got := testutil.ToFloat64(DirectorySize); got != 7 {
		t.Errorf("directory size = %v, want 7", got)
	}

	ObserveRefresh("error", 0, 0)
	if got := testutil.ToFloat64(DirectorySize); got != 7 {
		t.Errorf("directory size after error = %v, want unchanged 7", got)
	}
}
