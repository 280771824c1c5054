package workflow

import (
	"context"
	"errors"
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

// Two or more yes answers on the four IHR Annex-2 questions mean the event
// is notification-eligible. Fixed design constant.
const ihrYesThreshold = 2

// Answers carries one reviewer pass over the IHR questionnaire and the RRA
// narrative sections.
type Answers struct {
	Q1      bool
	Q1Notes string
	Q2      bool
	Q2Notes string
	Q3      bool
	Q3Notes string
	Q4      bool
	Q4Notes string

	Hazard      string
	Exposure    string
	Context     string
	OverallRisk string
	Confidence  string
}

// IHRDecision maps a yes count onto the Annex-2 classification.
func IHRDecision(yesCount int) string {
	if yesCount >= ihrYesThreshold {
		return models.DecisionMandatoryNotification
	}
	return models.DecisionLocalMonitoring
}

// AssessmentWorkflow drives an assessment from Draft through escalation or
// completion, mirroring milestone states onto the owning signal.
type AssessmentWorkflow struct {
	store   storage.Store
	checker auth.Checker
	now     func() time.Time
}

func NewAssessmentWorkflow(store storage.Store, checker auth.Checker) *AssessmentWorkflow {
	return &AssessmentWorkflow{store: store, checker: checker, now: time.Now}
}

// WithClock fixes the workflow's clock. Test hook.
func (w *AssessmentWorkflow) WithClock(now func() time.Time) *AssessmentWorkflow {
	w.now = now
	return w
}

// Save persists a questionnaire pass. Allowed while the assessment is still
// open (Draft or Under Assessment); saving never changes the status, only
// the answers and the derived IHR decision.
func (w *AssessmentWorkflow) Save(ctx context.Context, assessmentID string, answers Answers, actor auth.Actor) (*models.Assessment, error) {
	if !w.checker.CanEdit(actor, auth.DomainAssessment) {
		return nil, fmt.Errorf("actor %s cannot edit assessments: %w", actor.ID, ErrPermissionDenied)
	}

	assessment, err := w.store.GetAssessment(ctx, assessmentID)
	if err != nil {
		return nil, err
	}
	if !assessmentOpen(assessment.Status) {
		return nil, fmt.Errorf("assessment %s is %s: %w", assessmentID, assessment.Status, ErrInvalidTransition)
	}

	assessment.IHRQuestion1 = answers.Q1
	assessment.IHRQuestion1Notes = answers.Q1Notes
	assessment.IHRQuestion2 = answers.Q2
	assessment.IHRQuestion2Notes = answers.Q2Notes
	assessment.IHRQuestion3 = answers.Q3
	assessment.IHRQuestion3Notes = answers.Q3Notes
	assessment.IHRQuestion4 = answers.Q4
	assessment.IHRQuestion4Notes = answers.Q4Notes
	assessment.IHRDecision = IHRDecision(assessment.YesCount())

	assessment.RRAHazard = answers.Hazard
	assessment.RRAExposure = answers.Exposure
	assessment.RRAContext = answers.Context
	assessment.RRAOverallRisk = answers.OverallRisk
	assessment.RRAConfidence = answers.Confidence
	assessment.UpdatedAt = w.now()

	if err := w.store.UpdateAssessment(ctx, assessment); err != nil {
		return nil, err
	}

	metrics.AssessmentTransitions.WithLabelValues("saved").Inc()
	logger.Debug("Assessment answers saved",
		zap.String("assessment_id", assessmentID),
		zap.String("ihr_decision", assessment.IHRDecision))
	return assessment, nil
}

// Escalate raises the assessment for director review. Permitted only when
// the IHR rule holds (two or more yes answers) or the reviewer rated the
// overall risk Critical; otherwise the call fails with no state change.
// The assessment update, signal mirror, and escalation insert are one
// transaction.
func (w *AssessmentWorkflow) Escalate(ctx context.Context, assessmentID, reason, priority string, actor auth.Actor) (*models.Escalation, error) {
	if !w.checker.CanEdit(actor, auth.DomainAssessment) {
		return nil, fmt.Errorf("actor %s cannot edit assessments: %w", actor.ID, ErrPermissionDenied)
	}

	now := w.now()
	escalation := &models.Escalation{
		ID:              uuid.NewString(),
		EscalationLevel: "Director",
		Priority:        priority,
		Reason:          reason,
		DirectorStatus:  models.EscalationPendingReview,
		EscalatedBy:     actor.ID,
		EscalatedAt:     now,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	err := w.store.InTx(ctx, func(tx storage.Store) error {
		assessment, err := tx.GetAssessment(ctx, assessmentID)
		if err != nil {
			return err
		}
		if !assessmentOpen(assessment.Status) {
			return fmt.Errorf("assessment %s is %s: %w", assessmentID, assessment.Status, ErrInvalidTransition)
		}
		if assessment.YesCount() < ihrYesThreshold && assessment.RRAOverallRisk != models.RiskCritical {
			return fmt.Errorf("assessment %s has %d yes answers and risk %q: %w",
				assessmentID, assessment.YesCount(), assessment.RRAOverallRisk, ErrPreconditionFailed)
		}
		if _, err := tx.GetPendingEscalation(ctx, assessmentID); err == nil {
			return fmt.Errorf("assessment %s: %w", assessmentID, ErrEscalationPending)
		} else if !errors.Is(err, storage.ErrNotFound) {
			return err
		}

		assessment.Status = models.AssessmentEscalated
		assessment.ReviewedBy = actor.ID
		assessment.UpdatedAt = now
		if err := tx.UpdateAssessment(ctx, assessment); err != nil {
			return err
		}

		signal, err := tx.GetSignal(ctx, assessment.SignalID)
		if err != nil {
			return err
		}
		signal.CurrentStatus = models.StatusEscalated
		signal.UpdatedAt = now
		if err := tx.UpdateSignal(ctx, signal); err != nil {
			return err
		}

		escalation.SignalID = assessment.SignalID
		escalation.AssessmentID = assessmentID
		return tx.InsertEscalation(ctx, escalation)
	})
	if err != nil {
		return nil, err
	}

	metrics.AssessmentTransitions.WithLabelValues("escalated").Inc()
	logger.Info("Assessment escalated for director review",
		zap.String("assessment_id", assessmentID),
		zap.String("escalation_id", escalation.ID),
		zap.String("priority", priority))
	return escalation, nil
}

// Complete closes an assessment that was not escalated. Terminal; the
// owning signal is archived alongside.
func (w *AssessmentWorkflow) Complete(ctx context.Context, assessmentID, outcomeDecision, justification string, actor auth.Actor) error {
	if !w.checker.CanEdit(actor, auth.DomainAssessment) {
		return fmt.Errorf("actor %s cannot edit assessments: %w", actor.ID, ErrPermissionDenied)
	}

	now := w.now()
	err := w.store.InTx(ctx, func(tx storage.Store) error {
		assessment, err := tx.GetAssessment(ctx, assessmentID)
		if err != nil {
			return err
		}
		if !assessmentOpen(assessment.Status) {
			return fmt.Errorf("assessment %s is %s: %w", assessmentID, assessment.Status, ErrInvalidTransition)
		}

		assessment.Status = models.AssessmentCompleted
		assessment.ReviewedBy = actor.ID
		assessment.OutcomeDecision = outcomeDecision
		assessment.OutcomeJustification = justification
		assessment.CompletedAt = &now
		assessment.UpdatedAt = now
		if err := tx.UpdateAssessment(ctx, assessment); err != nil {
			return err
		}

		signal, err := tx.GetSignal(ctx, assessment.SignalID)
		if err != nil {
			return err
		}
		signal.CurrentStatus = models.StatusArchived
		signal.UpdatedAt = now
		return tx.UpdateSignal(ctx, signal)
	})
	if err != nil {
		return err
	}

	metrics.AssessmentTransitions.WithLabelValues("completed").Inc()
	logger.Info("Assessment completed",
		zap.String("assessment_id", assessmentID),
		zap.String("decision", outcomeDecision))
	return nil
}

func assessmentOpen(status string) bool {
	return status == models.AssessmentDraft || status == models.AssessmentUnderway
}
