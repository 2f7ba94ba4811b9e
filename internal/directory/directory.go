// Package directory keeps a time-bounded, in-memory snapshot of the
// slug-to-URL mapping held in a remote tabular source.
package directory

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"studiolinks/internal/metrics"
	"studiolinks/internal/validation"
)

// DefaultTTL is how long a snapshot is served before the next lookup refreshes it.
const DefaultTTL = 60 * time.Second

// DefaultFetchTimeout bounds a single remote fetch.
const DefaultFetchTimeout = 8 * time.Second

// headerSlug is the literal header cell skipped when building a snapshot.
const headerSlug = "slug"

// Source fetches every row of the link table in one round trip.
// Each row holds the slug in column 0 and the destination in column 1.
type Source interface {
	FetchRows(ctx context.Context) ([][]string, error)
}

// SourceFunc adapts a function to the Source interface.
type SourceFunc func(ctx context.Context) ([][]string, error)

// FetchRows calls f(ctx).
func (f SourceFunc) FetchRows(ctx context.Context) ([][]string, error) {
	return f(ctx)
}

// Snapshot is an immutable slug-to-URL mapping and the time it stops being fresh.
type Snapshot struct {
	Links     map[string]string `json:"links"`
	ExpiresAt time.Time         `json:"expires_at"`
}

// Lookup returns the destination for slug.
func (s *Snapshot) Lookup(slug string) (string, bool) {
	url, ok := s.Links[slug]
	return url, ok
}

// FreshAt reports whether the snapshot may still be served at t.
func (s *Snapshot) FreshAt(t time.Time) bool {
	return s != nil && t.Before(s.ExpiresAt)
}

// BuildLinks converts raw rows into a slug-to-URL map. Rows missing a slug
// or URL and the literal "slug" header row are skipped; slugs are trimmed
// and lowercased. When a slug repeats, the later row wins.
func BuildLinks(rows [][]string) map[string]string {
	links := make(map[string]string, len(rows))
	for _, row := range rows {
		if len(row) < 2 {
			continue
		}
		slug := validation.NormalizeSlug(row[0])
		url := strings.TrimSpace(row[1])
		if slug == "" || url == "" || slug == headerSlug {
			continue
		}
		links[slug] = url
	}
	return links
}

// Options configures a Directory.
type Options struct {
	TTL          time.Duration    // Snapshot freshness window, DefaultTTL when zero
	FetchTimeout time.Duration    // Per-fetch timeout, DefaultFetchTimeout when zero
	Store        SnapshotStore    // Optional store shared between instances
	Now          func() time.Time // Clock, time.Now when nil
}

// Directory serves slug lookups from the current snapshot and refreshes it
// from the Source once it expires.
//
// Thread Safety:
//
//	Directory is safe for concurrent use. The snapshot is swapped atomically
//	so readers never observe a partially built map. Concurrent refreshes are
//	collapsed into a single remote fetch.
type Directory struct {
	source  Source
	store   SnapshotStore
	ttl     time.Duration
	timeout time.Duration
	now     func() time.Time

	current atomic.Pointer[Snapshot]
	flight  singleflight.Group
	fetches atomic.Int64
}

// New creates a Directory reading from source.
func New(source Source, opts Options) *Directory {
	d := &Directory{
		source:  source,
		store:   opts.Store,
		ttl:     opts.TTL,
		timeout: opts.FetchTimeout,
		now:     opts.Now,
	}
	if d.ttl <= 0 {
		d.ttl = DefaultTTL
	}
	if d.timeout <= 0 {
		d.timeout = DefaultFetchTimeout
	}
	if d.now == nil {
		d.now = time.Now
	}
	return d
}

// Resolve returns the destination URL for an already-normalized slug.
// It returns ErrNotFound when the slug is absent and a *FetchError when the
// snapshot is stale and the source cannot be read. A stale snapshot is never
// served in place of a failed refresh.
func (d *Directory) Resolve(ctx context.Context, slug string) (string, error) {
	snap, err := d.Snapshot(ctx)
	if err != nil {
		return "", err
	}
	url, ok := snap.Lookup(slug)
	if !ok {
		return "", ErrNotFound
	}
	return url, nil
}

// Snapshot returns the current snapshot, refreshing it first if it has expired.
func (d *Directory) Snapshot(ctx context.Context) (*Snapshot, error) {
	if snap := d.current.Load(); snap.FreshAt(d.now()) {
		return snap, nil
	}
	return d.refresh(ctx, false)
}

// Refresh rebuilds the snapshot from the source even if the current one is fresh.
func (d *Directory) Refresh(ctx context.Context) (*Snapshot, error) {
	return d.refresh(ctx, true)
}

// Stats describes the snapshot currently held in memory.
type Stats struct {
	Links     int
	ExpiresAt time.Time
	Fetches   int64
}

// Stats returns the size and expiry of the current snapshot and the number
// of remote fetches performed so far.
func (d *Directory) Stats() Stats {
	st := Stats{Fetches: d.fetches.Load()}
	if snap := d.current.Load(); snap != nil {
		st.Links = len(snap.Links)
		st.ExpiresAt = snap.ExpiresAt
	}
	return st
}

func (d *Directory) refresh(ctx context.Context, force bool) (*Snapshot, error) {
	key := "refresh"
	if force {
		key = "force"
	}

	// The shared fetch must not die with the first caller's request, so it
	// runs detached with its own timeout while each caller waits on its own ctx.
	ch := d.flight.DoChan(key, func() (any, error) {
		if !force {
			if snap := d.current.Load(); snap.FreshAt(d.now()) {
				return snap, nil
			}
		}
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.timeout)
		defer cancel()
		return d.load(fetchCtx, force)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Snapshot), nil
	case <-ctx.Done():
		return nil, &FetchError{Err: ctx.Err()}
	}
}

// load builds a new snapshot, preferring a fresh one published by another
// instance, and swaps it in.
func (d *Directory) load(ctx context.Context, force bool) (*Snapshot, error) {
	if d.store != nil && !force {
		if snap := d.loadShared(ctx); snap != nil {
			d.current.Store(snap)
			metrics.ObserveRefresh("shared", 0, len(snap.Links))
			return snap, nil
		}
	}

	start := time.Now()
	d.fetches.Add(1)
	rows, err := d.source.FetchRows(ctx)
	if err != nil {
		metrics.ObserveRefresh("error", 0, 0)
		slog.Error("link directory fetch failed", "error", err)
		return nil, &FetchError{Err: err}
	}

	snap := &Snapshot{
		Links:     BuildLinks(rows),
		ExpiresAt: d.now().Add(d.ttl),
	}
	d.current.Store(snap)
	metrics.ObserveRefresh("fetched", time.Since(start), len(snap.Links))
	slog.Debug("link directory refreshed", "links", len(snap.Links), "rows", len(rows))

	if d.store != nil {
		d.publishShared(ctx, snap)
	}
	return snap, nil
}

func (d *Directory) loadShared(ctx context.Context) *Snapshot {
	snap, err := readSnapshot(ctx, d.store)
	if err != nil {
		if !errors.Is(err, errNoSharedSnapshot) {
			slog.Warn("shared snapshot read failed", "error", err)
		}
		return nil
	}
	if !snap.FreshAt(d.now()) {
		return nil
	}
	return snap
}

func (d *Directory) publishShared(ctx context.Context, snap *Snapshot) {
	if err := writeSnapshot(ctx, d.store, snap, d.ttl); err != nil {
		slog.Warn("shared snapshot write failed", "error", err)
	}
}
