package social

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ghi-core/backend/internal/metrics"
	"github.com/ghi-core/backend/internal/scoring"
	"github.com/ghi-core/backend/internal/storage"
	"github.com/ghi-core/backend/internal/storage/models"
	"github.com/ghi-core/backend/pkg/logger"
)

// Collector polls a social source, scores each post, and persists new ones.
// Posts already seen (same platform post id) are skipped, so a cycle can be
// re-run safely.
type Collector struct {
	store  storage.Store
	source Source
	now    func() time.Time
}

func NewCollector(store storage.Store, source Source) *Collector {
	return &Collector{store: store, source: source, now: time.Now}
}

// WithClock fixes the collector's clock. Test hook.
func (c *Collector) WithClock(now func() time.Time) *Collector {
	c.now = now
	return c
}

// RunOnce executes one listening cycle and returns the number of posts
// persisted. Failures are logged and absorbed; a broken cycle never takes
// the caller down.
func (c *Collector) RunOnce(ctx context.Context) int {
	started := time.Now()
	defer func() {
		metrics.CollectionDuration.WithLabelValues("social").Observe(time.Since(started).Seconds())
	}()

	batch, err := c.source.NextBatch(ctx)
	if err != nil {
		logger.Error("Social listening cycle failed", zap.Error(err))
		metrics.CollectionRuns.WithLabelValues("social", "error").Inc()
		return 0
	}

	directory := scoring.NewDirectory()
	if accounts, err := c.store.ListMonitoredAccounts(ctx); err != nil {
		logger.Warn("Monitored account overrides unavailable, using built-in tiers", zap.Error(err))
	} else {
		directory.ApplyOverrides(accounts)
	}

	now := c.now()
	inserted := 0
	for _, candidate := range batch {
		keywords := scoring.Detect(candidate.Content)
		tier := directory.PriorityOf(candidate.AuthorHandle)
		relevance := scoring.Relevance(scoring.PostInput{
			Content:    candidate.Content,
			Location:   candidate.Location,
			Engagement: candidate.Engagement,
			PostedAt:   candidate.PostedAt,
		}, tier, keywords, now)

		signal := &models.SocialSignal{
			ID:                 uuid.NewString(),
			Platform:           candidate.Platform,
			PostID:             candidate.PostID,
			Author:             candidate.Author,
			AuthorHandle:       candidate.AuthorHandle,
			Content:            candidate.Content,
			Language:           candidate.Language,
			Location:           candidate.Location,
			Hashtags:           candidate.Hashtags,
			Mentions:           candidate.Mentions,
			URLs:               candidate.URLs,
			Engagement:         candidate.Engagement,
			DetectedKeywords:   keywords,
			RelevanceScore:     relevance,
			VerificationStatus: models.VerificationPending,
			PostedAt:           candidate.PostedAt,
			CreatedAt:          now,
			UpdatedAt:          now,
		}

		isNew, err := c.store.InsertSocialSignalIfNew(ctx, signal)
		if err != nil {
			logger.Error("Failed to persist social signal",
				zap.String("post_id", candidate.PostID), zap.Error(err))
			continue
		}
		if !isNew {
			continue
		}

		inserted++
		metrics.RelevanceScore.Observe(relevance)
		logger.Debug("Social signal captured",
			zap.String("post_id", candidate.PostID),
			zap.String("handle", candidate.AuthorHandle),
			zap.Float64("relevance", relevance))
	}

	metrics.CollectionRuns.WithLabelValues("social", "ok").Inc()
	metrics.SignalsInserted.WithLabelValues("social").Add(float64(inserted))
	logger.Info("Social listening cycle complete",
		zap.Int("batch", len(batch)), zap.Int("inserted", inserted))
	return inserted
}
