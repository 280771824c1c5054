package workflow

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ghi-core/backend/internal/auth"
	"github.com/ghi-core/backend/internal/metrics"
	"github.com/ghi-core/backend/internal/storage"
	"github.com/ghi-core/backend/internal/storage/models"
	"github.com/ghi-core/backend/pkg/logger"
)

// EscalationLedger records director review over escalated assessments. An
// escalation is resolved at most once.
type EscalationLedger struct {
	store   storage.Store
	checker auth.Checker
	now     func() time.Time
}

func NewEscalationLedger(store storage.Store, checker auth.Checker) *EscalationLedger {
	return &EscalationLedger{store: store, checker: checker, now: time.Now}
}

// WithClock fixes the ledger's clock. Test hook.
func (l *EscalationLedger) WithClock(now func() time.Time) *EscalationLedger {
	l.now = now
	return l
}

// Resolve records the director's decision. The decision must be Approved
// or Rejected; both are terminal and stamp resolvedAt.
func (l *EscalationLedger) Resolve(ctx context.Context, escalationID, decision, notes string, actor auth.Actor) (*models.Escalation, error) {
	if !l.checker.CanEdit(actor, auth.DomainEscalation) {
		return nil, fmt.Errorf("actor %s cannot review escalations: %w", actor.ID, ErrPermissionDenied)
	}
	if decision != models.EscalationApproved && decision != models.EscalationRejected {
		return nil, fmt.Errorf("decision %q is not Approved or Rejected: %w", decision, ErrInvalidTransition)
	}

	now := l.now()
	var resolved *models.Escalation
	err := l.store.InTx(ctx, func(tx storage.Store) error {
		escalation, err := tx.GetEscalation(ctx, escalationID)
		if err != nil {
			return err
		}
		if escalation.DirectorStatus != models.EscalationPendingReview {
			return fmt.Errorf("escalation %s is already %s: %w", escalationID, escalation.DirectorStatus, ErrInvalidTransition)
		}

		escalation.DirectorStatus = decision
		escalation.DirectorDecision = decision
		escalation.DirectorNotes = notes
		escalation.ReviewedBy = actor.ID
		escalation.ReviewedAt = &now
		escalation.ResolvedAt = &now
		escalation.UpdatedAt = now
		if err := tx.UpdateEscalation(ctx, escalation); err != nil {
			return err
		}
		resolved = escalation
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.EscalationResolutions.WithLabelValues(decision).Inc()
	logger.Info("Escalation resolved",
		zap.String("escalation_id", escalationID),
		zap.String("decision", decision),
		zap.String("actor", actor.ID))
	return resolved, nil
}
