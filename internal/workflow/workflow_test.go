package workflow

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ghi-core/backend/internal/auth"
	"github.com/ghi-core/backend/internal/storage"
	"github.com/ghi-core/backend/internal/storage/memory"
	"github.com/ghi-core/backend/internal/storage/models"
)

var (
	reviewedAt = time.Date(2026, 4, 1, 10, 30, 0, 0, time.UTC)
	analyst    = auth.Actor{ID: "user-analyst", Role: auth.RoleAnalyst}
	director   = auth.Actor{ID: "user-director", Role: auth.RoleDirector}
	viewer     = auth.Actor{ID: "user-viewer", Role: auth.RoleViewer}
)

func fixedClock() time.Time { return reviewedAt }

func seedSignal(t *testing.T, store storage.Store) *models.Signal {
	t.Helper()
	signal := &models.Signal{
		ID:            "sig-1",
		BeaconEventID: "evt-1",
		Disease:       "MERS",
		Country:       "Saudi Arabia",
		DateReported:  reviewedAt.Add(-24 * time.Hour),
		Cases:         15,
		Deaths:        3,
		TriageStatus:  models.TriagePending,
		CurrentStatus: models.StatusNew,
		PriorityScore: 100,
	}
	if err := store.InsertSignal(context.Background(), signal); err != nil {
		t.Fatal(err)
	}
	return signal
}

func acceptSignal(t *testing.T, store storage.Store) *models.Assessment {
	t.Helper()
	seedSignal(t, store)
	gate := NewTriageGate(store, auth.RoleChecker{}).WithClock(fixedClock)
	assessment, err := gate.Accept(context.Background(), "sig-1", "looks real", analyst)
	if err != nil {
		t.Fatal(err)
	}
	return assessment
}

func TestTriageAccept(t *testing.T) {
	store := memory.NewStore()
	assessment := acceptSignal(t, store)

	signal, err := store.GetSignal(context.Background(), "sig-1")
	if err != nil {
		t.Fatal(err)
	}
	if signal.TriageStatus != models.TriageAccepted {
		t.Errorf("expected Accepted, got %q", signal.TriageStatus)
	}
	if signal.CurrentStatus != models.StatusUnderAssessment {
		t.Errorf("expected Under Assessment mirror, got %q", signal.CurrentStatus)
	}
	if signal.TriagedBy != analyst.ID || signal.TriagedAt == nil {
		t.Error("triage attribution missing")
	}

	if assessment.SignalID != "sig-1" {
		t.Errorf("assessment not linked: %q", assessment.SignalID)
	}
	if assessment.Status != models.AssessmentDraft {
		t.Errorf("expected Draft, got %q", assessment.Status)
	}
	stored, err := store.GetAssessment(context.Background(), assessment.ID)
	if err != nil {
		t.Fatalf("assessment row missing: %v", err)
	}
	if stored.AssignedTo != analyst.ID {
		t.Errorf("expected assignment to %s, got %q", analyst.ID, stored.AssignedTo)
	}
}

func TestTriageAcceptAfterReject(t *testing.T) {
	store := memory.NewStore()
	seedSignal(t, store)
	gate := NewTriageGate(store, auth.RoleChecker{}).WithClock(fixedClock)
	ctx := context.Background()

	if err := gate.Reject(ctx, "sig-1", "duplicate report", analyst); err != nil {
		t.Fatal(err)
	}

	_, err := gate.Accept(ctx, "sig-1", "", analyst)
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}

	signal, _ := store.GetSignal(ctx, "sig-1")
	if signal.TriageStatus != models.TriageRejected {
		t.Errorf("rejected signal modified: %q", signal.TriageStatus)
	}
	if signal.CurrentStatus != models.StatusArchived {
		t.Errorf("expected Archived, got %q", signal.CurrentStatus)
	}
	if signal.RejectionReason != "duplicate report" {
		t.Errorf("reason not recorded: %q", signal.RejectionReason)
	}
	assessments, _ := store.ListAssessments(ctx, 10)
	if len(assessments) != 0 {
		t.Errorf("failed accept must not create assessments, got %d", len(assessments))
	}
}

func TestTriagePermissionDenied(t *testing.T) {
	store := memory.NewStore()
	seedSignal(t, store)
	gate := NewTriageGate(store, auth.RoleChecker{})
	ctx := context.Background()

	_, err := gate.Accept(ctx, "sig-1", "", viewer)
	if !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied, got %v", err)
	}

	signal, _ := store.GetSignal(ctx, "sig-1")
	if signal.TriageStatus != models.TriagePending {
		t.Error("denied call must not change state")
	}
}

func TestTriageUnknownSignal(t *testing.T) {
	store := memory.NewStore()
	gate := NewTriageGate(store, auth.RoleChecker{})

	_, err := gate.Accept(context.Background(), "missing", "", analyst)
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestIHRDecisionRule(t *testing.T) {
	store := memory.NewStore()
	assessment := acceptSignal(t, store)
	wf := NewAssessmentWorkflow(store, auth.RoleChecker{}).WithClock(fixedClock)
	ctx := context.Background()

	saved, err := wf.Save(ctx, assessment.ID, Answers{Q1: true, Q2: true}, analyst)
	if err != nil {
		t.Fatal(err)
	}
	if saved.IHRDecision != models.DecisionMandatoryNotification {
		t.Errorf("two yes answers should be mandatory notification, got %q", saved.IHRDecision)
	}
	if saved.Status != models.AssessmentDraft {
		t.Errorf("save must not change status, got %q", saved.Status)
	}

	saved, err = wf.Save(ctx, assessment.ID, Answers{Q1: true}, analyst)
	if err != nil {
		t.Fatal(err)
	}
	if saved.IHRDecision != models.DecisionLocalMonitoring {
		t.Errorf("one yes answer should be local monitoring, got %q", saved.IHRDecision)
	}
}

func TestEscalatePreconditionFailed(t *testing.T) {
	store := memory.NewStore()
	assessment := acceptSignal(t, store)
	wf := NewAssessmentWorkflow(store, auth.RoleChecker{}).WithClock(fixedClock)
	ctx := context.Background()

	if _, err := wf.Save(ctx, assessment.ID, Answers{Q1: true, OverallRisk: models.RiskModerate}, analyst); err != nil {
		t.Fatal(err)
	}

	_, err := wf.Escalate(ctx, assessment.ID, "gut feeling", "High", analyst)
	if !errors.Is(err, ErrPreconditionFailed) {
		t.Fatalf("expected ErrPreconditionFailed, got %v", err)
	}

	escalations, _ := store.ListEscalations(ctx, 10)
	if len(escalations) != 0 {
		t.Errorf("failed escalate must not create escalations, got %d", len(escalations))
	}
	stored, _ := store.GetAssessment(ctx, assessment.ID)
	if stored.Status != models.AssessmentDraft {
		t.Errorf("failed escalate must not change status, got %q", stored.Status)
	}
}

func TestEscalateOnYesCount(t *testing.T) {
	store := memory.NewStore()
	assessment := acceptSignal(t, store)
	wf := NewAssessmentWorkflow(store, auth.RoleChecker{}).WithClock(fixedClock)
	ctx := context.Background()

	if _, err := wf.Save(ctx, assessment.ID, Answers{Q1: true, Q3: true}, analyst); err != nil {
		t.Fatal(err)
	}

	escalation, err := wf.Escalate(ctx, assessment.ID, "meets notification rule", "High", analyst)
	if err != nil {
		t.Fatal(err)
	}
	if escalation.DirectorStatus != models.EscalationPendingReview {
		t.Errorf("expected Pending Review, got %q", escalation.DirectorStatus)
	}
	if escalation.SignalID != "sig-1" || escalation.AssessmentID != assessment.ID {
		t.Error("escalation links wrong")
	}
	if escalation.EscalatedBy != analyst.ID {
		t.Errorf("expected escalated by %s, got %q", analyst.ID, escalation.EscalatedBy)
	}

	stored, _ := store.GetAssessment(ctx, assessment.ID)
	if stored.Status != models.AssessmentEscalated {
		t.Errorf("expected Escalated, got %q", stored.Status)
	}
	signal, _ := store.GetSignal(ctx, "sig-1")
	if signal.CurrentStatus != models.StatusEscalated {
		t.Errorf("expected signal mirror Escalated, got %q", signal.CurrentStatus)
	}

	// The assessment left the open set, so a second escalate is an invalid
	// transition rather than a second pending row.
	_, err = wf.Escalate(ctx, assessment.ID, "again", "High", analyst)
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
	escalations, _ := store.ListEscalations(ctx, 10)
	if len(escalations) != 1 {
		t.Errorf("expected a single escalation, got %d", len(escalations))
	}
}

func TestEscalateOnCriticalRisk(t *testing.T) {
	store := memory.NewStore()
	assessment := acceptSignal(t, store)
	wf := NewAssessmentWorkflow(store, auth.RoleChecker{}).WithClock(fixedClock)
	ctx := context.Background()

	// Zero yes answers but reviewer-rated Critical risk still qualifies.
	if _, err := wf.Save(ctx, assessment.ID, Answers{OverallRisk: models.RiskCritical}, analyst); err != nil {
		t.Fatal(err)
	}
	if _, err := wf.Escalate(ctx, assessment.ID, "critical risk", "Critical", analyst); err != nil {
		t.Fatalf("critical risk should escalate: %v", err)
	}
}

func TestCompleteArchivesSignal(t *testing.T) {
	store := memory.NewStore()
	assessment := acceptSignal(t, store)
	wf := NewAssessmentWorkflow(store, auth.RoleChecker{}).WithClock(fixedClock)
	ctx := context.Background()

	err := wf.Complete(ctx, assessment.ID, models.DecisionLocalMonitoring, "no regional spread", analyst)
	if err != nil {
		t.Fatal(err)
	}

	stored, _ := store.GetAssessment(ctx, assessment.ID)
	if stored.Status != models.AssessmentCompleted {
		t.Errorf("expected Completed, got %q", stored.Status)
	}
	if stored.CompletedAt == nil {
		t.Error("completedAt not stamped")
	}
	signal, _ := store.GetSignal(ctx, "sig-1")
	if signal.CurrentStatus != models.StatusArchived {
		t.Errorf("expected Archived, got %q", signal.CurrentStatus)
	}

	// Terminal: neither saving nor escalating is allowed anymore.
	if _, err := wf.Save(ctx, assessment.ID, Answers{Q1: true}, analyst); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("expected ErrInvalidTransition on save, got %v", err)
	}
	if err := wf.Complete(ctx, assessment.ID, models.DecisionLocalMonitoring, "", analyst); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("expected ErrInvalidTransition on repeat complete, got %v", err)
	}
}

func TestCompleteAfterEscalateRejected(t *testing.T) {
	store := memory.NewStore()
	assessment := acceptSignal(t, store)
	wf := NewAssessmentWorkflow(store, auth.RoleChecker{}).WithClock(fixedClock)
	ctx := context.Background()

	if _, err := wf.Save(ctx, assessment.ID, Answers{Q1: true, Q2: true}, analyst); err != nil {
		t.Fatal(err)
	}
	if _, err := wf.Escalate(ctx, assessment.ID, "rule met", "High", analyst); err != nil {
		t.Fatal(err)
	}

	err := wf.Complete(ctx, assessment.ID, models.DecisionMandatoryNotification, "", analyst)
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestResolveEscalation(t *testing.T) {
	store := memory.NewStore()
	assessment := acceptSignal(t, store)
	wf := NewAssessmentWorkflow(store, auth.RoleChecker{}).WithClock(fixedClock)
	ledger := NewEscalationLedger(store, auth.RoleChecker{}).WithClock(fixedClock)
	ctx := context.Background()

	if _, err := wf.Save(ctx, assessment.ID, Answers{Q1: true, Q2: true}, analyst); err != nil {
		t.Fatal(err)
	}
	escalation, err := wf.Escalate(ctx, assessment.ID, "rule met", "High", analyst)
	if err != nil {
		t.Fatal(err)
	}

	resolved, err := ledger.Resolve(ctx, escalation.ID, models.EscalationApproved, "notify WHO", director)
	if err != nil {
		t.Fatal(err)
	}
	if resolved.DirectorStatus != models.EscalationApproved {
		t.Errorf("expected Approved, got %q", resolved.DirectorStatus)
	}
	if resolved.ReviewedBy != director.ID || resolved.ReviewedAt == nil || resolved.ResolvedAt == nil {
		t.Error("review attribution incomplete")
	}

	// Resolution is one-shot.
	_, err = ledger.Resolve(ctx, escalation.ID, models.EscalationRejected, "", director)
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition on repeat resolve, got %v", err)
	}
}

func TestResolveRejectsBadDecision(t *testing.T) {
	store := memory.NewStore()
	ledger := NewEscalationLedger(store, auth.RoleChecker{})

	_, err := ledger.Resolve(context.Background(), "esc-1", "Maybe", "", director)
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestResolvePermissionDenied(t *testing.T) {
	store := memory.NewStore()
	ledger := NewEscalationLedger(store, auth.RoleChecker{})

	_, err := ledger.Resolve(context.Background(), "esc-1", models.EscalationApproved, "", analyst)
	if !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("analysts must not resolve escalations, got %v", err)
	}
}

func seedSocialSignal(t *testing.T, store storage.Store, urls []string) *models.SocialSignal {
	t.Helper()
	social := &models.SocialSignal{
		ID:                 "soc-1",
		Platform:           "twitter",
		PostID:             "post-99",
		Author:             "WHO EMRO",
		AuthorHandle:       "@WHOEMRO",
		Content:            "cholera outbreak in Yemen",
		URLs:               urls,
		Engagement:         models.Engagement{Likes: 10, Reposts: 4, Replies: 1},
		RelevanceScore:     87.5,
		VerificationStatus: models.VerificationPending,
		PostedAt:           reviewedAt.Add(-2 * time.Hour),
	}
	isNew, err := store.InsertSocialSignalIfNew(context.Background(), social)
	if err != nil || !isNew {
		t.Fatalf("seed failed: new=%v err=%v", isNew, err)
	}
	return social
}

func TestPromote(t *testing.T) {
	store := memory.NewStore()
	seedSocialSignal(t, store, []string{"https://who.int/emro/cholera-yemen-2026"})
	bridge := NewPromotionBridge(store, auth.RoleChecker{}).WithClock(fixedClock)
	ctx := context.Background()

	signalID, err := bridge.Promote(ctx, "soc-1", "Cholera", "Yemen", analyst)
	if err != nil {
		t.Fatal(err)
	}

	signal, err := store.GetSignal(ctx, signalID)
	if err != nil {
		t.Fatal(err)
	}
	if signal.TriageStatus != models.TriagePending {
		t.Errorf("promoted signal must await triage, got %q", signal.TriageStatus)
	}
	if signal.PriorityScore != 87.5 {
		t.Errorf("priority must copy relevance, got %.2f", signal.PriorityScore)
	}
	if signal.SourceURL != "https://who.int/emro/cholera-yemen-2026" {
		t.Errorf("expected first post URL, got %q", signal.SourceURL)
	}
	if !signal.DateReported.Equal(reviewedAt) {
		t.Errorf("reported date must be promotion time, got %v", signal.DateReported)
	}
	if signal.RawData == "" {
		t.Error("provenance payload missing")
	}

	social, _ := store.GetSocialSignal(ctx, "soc-1")
	if social.VerificationStatus != models.VerificationPromoted {
		t.Errorf("expected Promoted, got %q", social.VerificationStatus)
	}
	if social.RelatedSignalID != signalID {
		t.Errorf("promotion link wrong: %q", social.RelatedSignalID)
	}
	if social.PromotedBy != analyst.ID || social.PromotedAt == nil {
		t.Error("promotion attribution missing")
	}
}

func TestPromoteTwice(t *testing.T) {
	store := memory.NewStore()
	seedSocialSignal(t, store, nil)
	bridge := NewPromotionBridge(store, auth.RoleChecker{}).WithClock(fixedClock)
	ctx := context.Background()

	first, err := bridge.Promote(ctx, "soc-1", "Cholera", "Yemen", analyst)
	if err != nil {
		t.Fatal(err)
	}

	_, err = bridge.Promote(ctx, "soc-1", "Cholera", "Yemen", analyst)
	if !errors.Is(err, ErrAlreadyPromoted) {
		t.Fatalf("expected ErrAlreadyPromoted, got %v", err)
	}

	signals, _ := store.ListSignals(ctx, 10)
	if len(signals) != 1 {
		t.Errorf("repeat promote must not create a second signal, got %d", len(signals))
	}
	social, _ := store.GetSocialSignal(ctx, "soc-1")
	if social.RelatedSignalID != first {
		t.Errorf("promotion link changed: %q", social.RelatedSignalID)
	}
}

func TestPromoteSynthesizesSourceURL(t *testing.T) {
	store := memory.NewStore()
	seedSocialSignal(t, store, nil)
	bridge := NewPromotionBridge(store, auth.RoleChecker{}).WithClock(fixedClock)

	signalID, err := bridge.Promote(context.Background(), "soc-1", "Cholera", "Yemen", analyst)
	if err != nil {
		t.Fatal(err)
	}
	signal, _ := store.GetSignal(context.Background(), signalID)
	if signal.SourceURL != "https://twitter.com/WHOEMRO/status/post-99" {
		t.Errorf("unexpected synthesized URL %q", signal.SourceURL)
	}
}

func TestDismiss(t *testing.T) {
	store := memory.NewStore()
	seedSocialSignal(t, store, nil)
	bridge := NewPromotionBridge(store, auth.RoleChecker{}).WithClock(fixedClock)
	ctx := context.Background()

	if err := bridge.Dismiss(ctx, "soc-1", analyst); err != nil {
		t.Fatal(err)
	}

	social, _ := store.GetSocialSignal(ctx, "soc-1")
	if !social.IsDismissed || social.VerificationStatus != models.VerificationDismissed {
		t.Errorf("dismissal not recorded: dismissed=%v status=%q", social.IsDismissed, social.VerificationStatus)
	}

	// Repeat dismiss is a quiet no-op.
	if err := bridge.Dismiss(ctx, "soc-1", analyst); err != nil {
		t.Errorf("repeat dismiss should be a no-op, got %v", err)
	}

	// A dismissed signal never promotes.
	_, err := bridge.Promote(ctx, "soc-1", "Cholera", "Yemen", analyst)
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestDismissPromoted(t *testing.T) {
	store := memory.NewStore()
	seedSocialSignal(t, store, nil)
	bridge := NewPromotionBridge(store, auth.RoleChecker{}).WithClock(fixedClock)
	ctx := context.Background()

	if _, err := bridge.Promote(ctx, "soc-1", "Cholera", "Yemen", analyst); err != nil {
		t.Fatal(err)
	}
	if err := bridge.Dismiss(ctx, "soc-1", analyst); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}
