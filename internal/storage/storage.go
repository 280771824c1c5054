// Package storage defines the persistence contracts the collectors and
// workflows depend on. The sqlite package provides the production
// implementation; the memory package provides an implementation used by
// tests and throwaway deployments.
package storage

import (
	"context"
	"errors"

	"github.com/ghi-core/backend/internal/storage/models"
)

var (
	// ErrNotFound is returned by point lookups for unknown ids.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when an insert violates a uniqueness
	// constraint other than the idempotency keys (those are no-ops).
	ErrDuplicate = errors.New("duplicate record")
)

// Store is the capability set the core requires: point lookup by id and
// by external id, insert-if-absent, update-by-id, ordered listing, and
// transactional multi-row writes via InTx.
type Store interface {
	// Signals.
	InsertSignal(ctx context.Context, s *models.Signal) error
	// InsertSignalIfNew inserts keyed by BeaconEventID and reports whether
	// a row was written. A duplicate external id is a no-op, not an error.
	InsertSignalIfNew(ctx context.Context, s *models.Signal) (bool, error)
	GetSignal(ctx context.Context, id string) (*models.Signal, error)
	GetSignalByEventID(ctx context.Context, eventID string) (*models.Signal, error)
	UpdateSignal(ctx context.Context, s *models.Signal) error
	ListSignals(ctx context.Context, limit int) ([]models.Signal, error)

	// Assessments.
	InsertAssessment(ctx context.Context, a *models.Assessment) error
	GetAssessment(ctx context.Context, id string) (*models.Assessment, error)
	UpdateAssessment(ctx context.Context, a *models.Assessment) error
	ListAssessments(ctx context.Context, limit int) ([]models.Assessment, error)
	ListAssessmentsBySignal(ctx context.Context, signalID string) ([]models.Assessment, error)

	// Escalations.
	InsertEscalation(ctx context.Context, e *models.Escalation) error
	GetEscalation(ctx context.Context, id string) (*models.Escalation, error)
	// GetPendingEscalation returns the escalation currently pending review
	// for an assessment, or ErrNotFound.
	GetPendingEscalation(ctx context.Context, assessmentID string) (*models.Escalation, error)
	UpdateEscalation(ctx context.Context, e *models.Escalation) error
	ListEscalations(ctx context.Context, limit int) ([]models.Escalation, error)

	// Social signals.
	InsertSocialSignalIfNew(ctx context.Context, s *models.SocialSignal) (bool, error)
	GetSocialSignal(ctx context.Context, id string) (*models.SocialSignal, error)
	UpdateSocialSignal(ctx context.Context, s *models.SocialSignal) error
	ListSocialSignals(ctx context.Context, includeDismissed bool, limit int) ([]models.SocialSignal, error)

	// Reference data.
	UpsertMonitoredAccount(ctx context.Context, a *models.MonitoredAccount) error
	ListMonitoredAccounts(ctx context.Context) ([]models.MonitoredAccount, error)
	UpsertListenerKeyword(ctx context.Context, k *models.ListenerKeyword) error
	ListListenerKeywords(ctx context.Context) ([]models.ListenerKeyword, error)

	// InTx runs fn against a transactional view of the store. All writes
	// made by fn land together or not at all.
	InTx(ctx context.Context, fn func(Store) error) error
}
