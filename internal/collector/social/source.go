package social

import (
	"context"
	"time"

	"github.com/ghi-core/backend/internal/storage/models"
)

// Candidate is a raw post pulled from a social platform before scoring.
type Candidate struct {
	PostID       string
	Platform     string
	Author       string
	AuthorHandle string
	Content      string
	Language     string
	Location     string
	Hashtags     []string
	Mentions     []string
	URLs         []string
	Engagement   models.Engagement
	PostedAt     time.Time
}

// Source yields the next batch of candidate posts. Implementations are
// expected to be idempotent at the PostID level so repeated polls of the
// same window do not produce new rows downstream.
type Source interface {
	NextBatch(ctx context.Context) ([]Candidate, error)
}
