package directory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

// memoryStore is an in-process SnapshotStore honouring expirations.
type memoryStore struct {
	mu      sync.Mutex
	data    map[string][]byte
	expires map[string]time.Time
	now     func() time.Time
	getErr  error
	sets    int
}

func newMemoryStore(now func() time.Time) *memoryStore {
	return &memoryStore{data: map[string][]byte{}, expires: map[string]time.Time{}, now: now}
}

func (m *memoryStore) GetWithContext(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	if exp, ok := m.expires[key]; ok && !m.now().Before(exp) {
		return nil, nil
	}
	return m.data[key], nil
}

func (m *memoryStore) SetWithContext(_ context.Context, key string, val []byte, exp time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = val
	m.expires[key] = m.now().Add(exp)
	m.sets++
	return nil
}

func TestSharedStore_SecondInstanceAdoptsSnapshot(t *testing.T) {
	clock := newFakeClock()
	store := newMemoryStore(clock.Now)
	ctx := context.Background()

	srcA := &countingSource{rows: sampleRows}
	a := New(srcA, Options{Store: store, Now: clock.Now})
	if _, err := a.Resolve(ctx, "kudzu"); err != nil {
		t.Fatalf("instance A Resolve() error = %v", err)
	}
	if store.sets != 1 {
		t.Fatalf("store written %d times, want 1", store.sets)
	}

	srcB := &countingSource{rows: sampleRows}
	b := New(srcB, Options{Store: store, Now: clock.Now})
	clock.Advance(10 * time.Second)

	url, err := b.Resolve(ctx, "kudzu")
	if err != nil {
		t.Fatalf("instance B Resolve() error = %v", err)
	}
	if url != "https://example.com/x" {
		t.Errorf("instance B Resolve() = %q", url)
	}
	if calls := srcB.calls.Load(); calls != 0 {
		t.Errorf("instance B fetched %d times, want 0", calls)
	}

	// The adopted snapshot keeps instance A's expiry, not a fresh window.
	if got, want := b.Stats().ExpiresAt, a.Stats().ExpiresAt; !got.Equal(want) {
		t.Errorf("adopted ExpiresAt = %v, want %v", got, want)
	}
}

func TestSharedStore_ExpiredSnapshotIsIgnored(t *testing.T) {
	clock := newFakeClock()
	store := newMemoryStore(clock.Now)
	ctx := context.Background()

	a := New(&countingSource{rows: sampleRows}, Options{Store: store, Now: clock.Now})
	if _, err := a.Resolve(ctx, "kudzu"); err != nil {
		t.Fatal(err)
	}

	clock.Advance(61 * time.Second)
	srcB := &countingSource{rows: sampleRows}
	b := New(srcB, Options{Store: store, Now: clock.Now})
	if _, err := b.Resolve(ctx, "kudzu"); err != nil {
		t.Fatal(err)
	}
	if calls := srcB.calls.Load(); calls != 1 {
		t.Errorf("instance B fetched %d times, want 1", calls)
	}
}

func TestSharedStore_FailureFallsThroughToSource(t *testing.T) {
	clock := newFakeClock()
	store := newMemoryStore(clock.Now)
	store.getErr = errors.New("redis: connection refused")

	src := &countingSource{rows: sampleRows}
	d := New(src, Options{Store: store, Now: clock.Now})

	if _, err := d.Resolve(context.Background(), "kudzu"); err != nil {
		t.Fatalf("Resolve() error = %v, want store failure to be ignored", err)
	}
	if calls := src.calls.Load(); calls != 1 {
		t.Errorf("source called %d times, want 1", calls)
	}
}

func TestSharedStore_CorruptPayload(t *testing.T) {
	store := newMemoryStore(time.Now)
	store.data[SharedSnapshotKey] = []byte("{not json")

	if _, err := readSnapshot(context.Background(), store); err == nil {
		t.Error("readSnapshot() error = nil, want decode error")
	}
}
