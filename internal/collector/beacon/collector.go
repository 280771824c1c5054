package beacon

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ghi-core/backend/internal/metrics"
	"github.com/ghi-core/backend/internal/scoring"
	"github.com/ghi-core/backend/internal/storage"
	"github.com/ghi-core/backend/internal/storage/models"
	"github.com/ghi-core/backend/pkg/logger"
	"github.com/ghi-core/backend/pkg/utils"
)

// DocumentFetcher retrieves the rendered feed. The HTTP fetcher is the
// production implementation; tests substitute a literal document.
type DocumentFetcher interface {
	Fetch(ctx context.Context) (string, error)
}

// SnapshotCache remembers the hash of the last collected document so an
// unchanged feed short-circuits the cycle. Optional.
type SnapshotCache interface {
	GetSnapshot(ctx context.Context, source string) (string, error)
	SetSnapshot(ctx context.Context, source string, hash string) error
}

// Collector runs one best-effort collection cycle against the feed.
// It holds no state between runs beyond the signal table itself, so
// overlapping invocations are safe: idempotence comes from the unique
// beacon event id, not from locking.
type Collector struct {
	store   storage.Store
	fetcher DocumentFetcher
	cache   SnapshotCache
	baseURL string
	now     func() time.Time
}

func NewCollector(store storage.Store, fetcher DocumentFetcher, cache SnapshotCache, baseURL string) *Collector {
	return &Collector{
		store:   store,
		fetcher: fetcher,
		cache:   cache,
		baseURL: baseURL,
		now:     time.Now,
	}
}

// WithClock fixes the collector's clock. Test hook.
func (c *Collector) WithClock(now func() time.Time) *Collector {
	c.now = now
	return c
}

// RunOnce fetches, parses, scores, and upserts one cycle's worth of
// events, returning the number of new signals. Errors are absorbed here:
// a failed cycle logs and inserts nothing, it never propagates.
func (c *Collector) RunOnce(ctx context.Context) int {
	started := c.now()
	defer func() {
		metrics.CollectionDuration.WithLabelValues("beacon").Observe(time.Since(started).Seconds())
	}()

	doc, err := c.fetcher.Fetch(ctx)
	if err != nil {
		logger.Warn("Beacon collection aborted", zap.Error(err))
		metrics.CollectionRuns.WithLabelValues("beacon", "error").Inc()
		return 0
	}

	if c.unchanged(ctx, doc) {
		logger.Debug("Beacon document unchanged since last cycle")
		metrics.CollectionRuns.WithLabelValues("beacon", "unchanged").Inc()
		return 0
	}

	events := ParseDocument(doc, c.baseURL, c.now())
	logger.Info("Beacon feed parsed", zap.Int("events", len(events)))

	inserted := 0
	for i := range events {
		ok, err := c.upsert(ctx, &events[i])
		if err != nil {
			// Each block is independently best-effort.
			logger.Warn("Failed to store beacon event",
				zap.String("event_id", events[i].EventID),
				zap.Error(err),
			)
			continue
		}
		if ok {
			inserted++
			logger.Info("Inserted new signal",
				zap.String("disease", events[i].Disease),
				zap.String("country", events[i].Country),
			)
		}
	}

	metrics.CollectionRuns.WithLabelValues("beacon", "ok").Inc()
	metrics.SignalsInserted.WithLabelValues("beacon").Add(float64(inserted))

	logger.Info("Beacon collection cycle finished",
		zap.Int("parsed", len(events)),
		zap.Int("inserted", inserted),
	)
	return inserted
}

func (c *Collector) upsert(ctx context.Context, e *Event) (bool, error) {
	raw, _ := json.Marshal(e)
	now := c.now()

	var cfr float64
	if e.Cases > 0 {
		cfr = float64(e.Deaths) / float64(e.Cases) * 100
	}

	signal := &models.Signal{
		ID:            uuid.NewString(),
		BeaconEventID: e.EventID,
		SourceURL:     e.SourceURL,
		RawData:       string(raw),
		Disease:       e.Disease,
		Country:       e.Country,
		Location:      e.Country,
		DateReported:  e.DateReported,
		Cases:         e.Cases,
		Deaths:        e.Deaths,
		CaseFatalityRate: cfr,
		Description:   e.Description,
		TriageStatus:  models.TriagePending,
		PriorityScore: float64(scoring.BeaconPriority(e.Disease, e.Country, e.Cases)),
		CurrentStatus: models.StatusNew,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	return c.store.InsertSignalIfNew(ctx, signal)
}

func (c *Collector) unchanged(ctx context.Context, doc string) bool {
	if c.cache == nil {
		return false
	}

	hash := utils.HashString(doc)
	prev, err := c.cache.GetSnapshot(ctx, "beacon")
	if err != nil {
		logger.Debug("Snapshot cache unavailable", zap.Error(err))
		return false
	}
	if prev == hash {
		return true
	}
	if err := c.cache.SetSnapshot(ctx, "beacon", hash); err != nil {
		logger.Debug("Failed to store snapshot hash", zap.Error(err))
	}
	return false
}
