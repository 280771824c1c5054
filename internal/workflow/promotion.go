package workflow

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ghi-core/backend/internal/auth"
	"github.com/ghi-core/backend/internal/metrics"
	"github.com/ghi-core/backend/internal/storage"
	"github.com/ghi-core/backend/internal/storage/models"
	"github.com/ghi-core/backend/pkg/logger"
)

// PromotionBridge is the manual path from a reviewed social signal into the
// triage pool. Promoting creates a brand new signal; the social row keeps a
// link back so the pairing is visible from both sides.
type PromotionBridge struct {
	store   storage.Store
	checker auth.Checker
	now     func() time.Time
}

func NewPromotionBridge(store storage.Store, checker auth.Checker) *PromotionBridge {
	return &PromotionBridge{store: store, checker: checker, now: time.Now}
}

// WithClock fixes the bridge's clock. Test hook.
func (b *PromotionBridge) WithClock(now func() time.Time) *PromotionBridge {
	b.now = now
	return b
}

// provenance is the rawData payload stored on a promoted signal.
type provenance struct {
	Platform   string            `json:"platform"`
	PostID     string            `json:"post_id"`
	Author     string            `json:"author"`
	Handle     string            `json:"handle"`
	Content    string            `json:"content"`
	Language   string            `json:"language"`
	Engagement models.Engagement `json:"engagement"`
	PostedAt   time.Time         `json:"posted_at"`
}

// Promote turns a social signal into a pending-triage signal and returns
// the new signal id. A social signal promotes at most once; a repeat call
// fails with ErrAlreadyPromoted and changes nothing. The reported date is
// the promotion time, not the original post time.
func (b *PromotionBridge) Promote(ctx context.Context, socialSignalID, disease, country string, actor auth.Actor) (string, error) {
	if !b.checker.CanEdit(actor, auth.DomainTriage) {
		return "", fmt.Errorf("actor %s cannot edit triage: %w", actor.ID, ErrPermissionDenied)
	}

	now := b.now()
	signalID := uuid.NewString()

	err := b.store.InTx(ctx, func(tx storage.Store) error {
		social, err := tx.GetSocialSignal(ctx, socialSignalID)
		if err != nil {
			return err
		}
		if social.VerificationStatus == models.VerificationPromoted || social.RelatedSignalID != "" {
			return fmt.Errorf("social signal %s: %w", socialSignalID, ErrAlreadyPromoted)
		}
		if social.IsDismissed {
			return fmt.Errorf("social signal %s is dismissed: %w", socialSignalID, ErrInvalidTransition)
		}

		raw, err := json.Marshal(provenance{
			Platform:   social.Platform,
			PostID:     social.PostID,
			Author:     social.Author,
			Handle:     social.AuthorHandle,
			Content:    social.Content,
			Language:   social.Language,
			Engagement: social.Engagement,
			PostedAt:   social.PostedAt,
		})
		if err != nil {
			return fmt.Errorf("failed to marshal provenance: %w", err)
		}

		signal := &models.Signal{
			ID:            signalID,
			SourceURL:     sourceURL(social),
			RawData:       string(raw),
			Disease:       disease,
			Country:       country,
			Location:      social.Location,
			DateReported:  now,
			Description:   social.Content,
			TriageStatus:  models.TriagePending,
			PriorityScore: social.RelevanceScore,
			CurrentStatus: models.StatusNew,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if err := tx.InsertSignal(ctx, signal); err != nil {
			return err
		}

		social.VerificationStatus = models.VerificationPromoted
		social.RelatedSignalID = signalID
		social.PromotedAt = &now
		social.PromotedBy = actor.ID
		social.UpdatedAt = now
		return tx.UpdateSocialSignal(ctx, social)
	})
	if err != nil {
		return "", err
	}

	metrics.SocialPromotions.WithLabelValues("promoted").Inc()
	logger.Info("Social signal promoted",
		zap.String("social_signal_id", socialSignalID),
		zap.String("signal_id", signalID),
		zap.String("actor", actor.ID))
	return signalID, nil
}

// Dismiss marks a social signal as reviewed and uninteresting. Terminal;
// there is no un-dismiss. Dismissing an already-dismissed signal is a
// no-op, dismissing a promoted one is rejected.
func (b *PromotionBridge) Dismiss(ctx context.Context, socialSignalID string, actor auth.Actor) error {
	if !b.checker.CanEdit(actor, auth.DomainTriage) {
		return fmt.Errorf("actor %s cannot edit triage: %w", actor.ID, ErrPermissionDenied)
	}

	social, err := b.store.GetSocialSignal(ctx, socialSignalID)
	if err != nil {
		return err
	}
	if social.IsDismissed {
		return nil
	}
	if social.VerificationStatus == models.VerificationPromoted {
		return fmt.Errorf("social signal %s is promoted: %w", socialSignalID, ErrInvalidTransition)
	}

	social.IsDismissed = true
	social.VerificationStatus = models.VerificationDismissed
	social.UpdatedAt = b.now()
	if err := b.store.UpdateSocialSignal(ctx, social); err != nil {
		return err
	}

	metrics.SocialPromotions.WithLabelValues("dismissed").Inc()
	logger.Debug("Social signal dismissed", zap.String("social_signal_id", socialSignalID))
	return nil
}

// sourceURL prefers the post's first link; without one it synthesizes the
// canonical platform permalink.
func sourceURL(social *models.SocialSignal) string {
	if len(social.URLs) > 0 {
		return social.URLs[0]
	}
	handle := strings.TrimPrefix(social.AuthorHandle, "@")
	return fmt.Sprintf("https://twitter.com/%s/status/%s", handle, social.PostID)
}
