package metrics

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"studiolinks/internal/models"
)

var (
	// Lookups counts slug lookups by route ("redirect", "qr", "api") and outcome.
	Lookups = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "studiolinks_lookups_total",
		Help: "Total slug lookups by route and outcome",
	}, []string{"route", "outcome"})

	// Refreshes counts directory refreshes by result ("fetched", "shared", "error").
	Refreshes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "studiolinks_directory_refreshes_total",
		Help: "Total link directory refreshes by result",
	}, []string{"result"})

	// RefreshDuration observes how long a remote directory fetch takes.
	RefreshDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "studiolinks_directory_refresh_seconds",
		Help:    "Duration of remote link directory fetches",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	})

	// DirectorySize is the number of links in the current snapshot.
	DirectorySize = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "studiolinks_directory_links",
		Help: "Number of links in the current directory snapshot",
	})

	// QRRenders counts rendered QR images by encoded target ("short", "long").
	QRRenders = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "studiolinks_qr_renders_total",
		Help: "Total QR images rendered by target",
	}, []string{"target"})
)

var slugLookupDesc = prometheus.NewDesc(
	"studiolinks_slug_lookups_total",
	"Persisted slug lookup count by outcome",
	[]string{"slug", "outcome"},
	nil,
)

// LookupStore persists per-slug lookup counts.
type LookupStore interface {
	IncrementSlugLookup(ctx context.Context, slug, outcome string) error
	GetAllSlugLookups(ctx context.Context) ([]models.SlugLookup, error)
}

// SlugCollector is a custom Prometheus collector that reads persisted slug
// lookup counts from the store on each scrape.
type SlugCollector struct {
	store LookupStore
}

// Describe sends the metric descriptor to the channel.
func (c *SlugCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- slugLookupDesc
}

// Collect queries the store for all slug lookups and emits them as counters.
func (c *SlugCollector) Collect(ch chan<- prometheus.Metric) {
	lookups, err := c.store.GetAllSlugLookups(context.Background())
	if err != nil {
		slog.Error("failed to collect slug lookup metrics", "error", err)
		return
	}
	for _, l := range lookups {
		ch <- prometheus.MustNewConstMetric(
			slugLookupDesc,
			prometheus.CounterValue,
			float64(l.Count),
			l.Slug,
			l.Outcome,
		)
	}
}

var (
	store    LookupStore
	initOnce sync.Once
)

// Init registers the collectors with the default registry. When lookups is
// non-nil, per-slug counts are also persisted and exported. Must be called
// once at startup.
func Init(lookups LookupStore) {
	initOnce.Do(func() {
		prometheus.MustRegister(Lookups, Refreshes, RefreshDuration, DirectorySize, QRRenders)
		if lookups != nil {
			store = lookups
			prometheus.MustRegister(&SlugCollector{store: lookups})
		}
	})
}

// RecordLookup counts a lookup outcome and, when a store is configured,
// asynchronously persists the per-slug count. Only resolved lookups are
// persisted: other slugs are client-controlled and would grow the table and
// the exported series without bound.
func RecordLookup(route, slug, outcome string) {
	Lookups.WithLabelValues(route, outcome).Inc()

	s := store
	if s == nil || outcome != models.OutcomeResolved {
		return
	}
	go func() {
		if err := s.IncrementSlugLookup(context.Background(), slug, outcome); err != nil {
			slog.Error("failed to record slug lookup", "slug", slug, "outcome", outcome, "error", err)
		}
	}()
}

// ObserveRefresh records the result of a directory refresh.
func ObserveRefresh(result string, took time.Duration, size int) {
	Refreshes.WithLabelValues(result).Inc()
	if result == "error" {
		return
	}
	if result == "fetched" {
		RefreshDuration.Observe(took.Seconds())
	}
	DirectorySize.Set(float64(size))
}
