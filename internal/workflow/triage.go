package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ghi-core/backend/internal/auth"
	"github.com/ghi-core/backend/internal/metrics"
	"github.com/ghi-core/backend/internal/storage"
	"github.com/ghi-core/backend/internal/storage/models"
	"github.com/ghi-core/backend/pkg/logger"
)

// TriageGate is the one-shot state machine over Signal.TriageStatus. A
// signal is triaged exactly once; there is no un-accept or un-reject.
type TriageGate struct {
	store   storage.Store
	checker auth.Checker
	now     func() time.Time
}

func NewTriageGate(store storage.Store, checker auth.Checker) *TriageGate {
	return &TriageGate{store: store, checker: checker, now: time.Now}
}

// WithClock fixes the gate's clock. Test hook.
func (g *TriageGate) WithClock(now func() time.Time) *TriageGate {
	g.now = now
	return g
}

// Accept moves a pending signal into assessment. It marks the signal
// Accepted, mirrors CurrentStatus to Under Assessment, and opens a Draft
// assessment assigned to the actor. The signal update and the assessment
// insert land in one transaction.
func (g *TriageGate) Accept(ctx context.Context, signalID, notes string, actor auth.Actor) (*models.Assessment, error) {
	if !g.checker.CanEdit(actor, auth.DomainTriage) {
		return nil, fmt.Errorf("actor %s cannot edit triage: %w", actor.ID, ErrPermissionDenied)
	}

	now := g.now()
	assessment := &models.Assessment{
		ID:             uuid.NewString(),
		AssessmentType: "Rapid Risk Assessment",
		Status:         models.AssessmentDraft,
		AssignedTo:     actor.ID,
		CreatedAt:      now,
		StartedAt:      &now,
		UpdatedAt:      now,
	}

	err := g.store.InTx(ctx, func(tx storage.Store) error {
		signal, err := tx.GetSignal(ctx, signalID)
		if err != nil {
			return err
		}
		if signal.TriageStatus != models.TriagePending {
			return fmt.Errorf("signal %s is already %s: %w", signalID, signal.TriageStatus, ErrInvalidTransition)
		}

		signal.TriageStatus = models.TriageAccepted
		signal.CurrentStatus = models.StatusUnderAssessment
		signal.TriagedBy = actor.ID
		signal.TriagedAt = &now
		signal.TriageNotes = notes
		signal.UpdatedAt = now
		if err := tx.UpdateSignal(ctx, signal); err != nil {
			return err
		}

		assessment.SignalID = signalID
		return tx.InsertAssessment(ctx, assessment)
	})
	if err != nil {
		return nil, err
	}

	metrics.TriageDecisions.WithLabelValues("accepted").Inc()
	logger.Info("Signal accepted into assessment",
		zap.String("signal_id", signalID),
		zap.String("assessment_id", assessment.ID),
		zap.String("actor", actor.ID))
	return assessment, nil
}

// Reject closes out a pending signal. The reason is recorded for the
// reviewer trail and the signal is archived.
func (g *TriageGate) Reject(ctx context.Context, signalID, reason string, actor auth.Actor) error {
	if !g.checker.CanEdit(actor, auth.DomainTriage) {
		return fmt.Errorf("actor %s cannot edit triage: %w", actor.ID, ErrPermissionDenied)
	}

	now := g.now()
	err := g.store.InTx(ctx, func(tx storage.Store) error {
		signal, err := tx.GetSignal(ctx, signalID)
		if err != nil {
			return err
		}
		if signal.TriageStatus != models.TriagePending {
			return fmt.Errorf("signal %s is already %s: %w", signalID, signal.TriageStatus, ErrInvalidTransition)
		}

		signal.TriageStatus = models.TriageRejected
		signal.CurrentStatus = models.StatusArchived
		signal.TriagedBy = actor.ID
		signal.TriagedAt = &now
		signal.RejectionReason = reason
		signal.UpdatedAt = now
		return tx.UpdateSignal(ctx, signal)
	})
	if err != nil {
		return err
	}

	metrics.TriageDecisions.WithLabelValues("rejected").Inc()
	logger.Info("Signal rejected at triage",
		zap.String("signal_id", signalID),
		zap.String("actor", actor.ID))
	return nil
}
