// Package memory implements storage.Store in process memory. It backs the
// workflow and collector tests and is handy for throwaway deployments.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/ghi-core/backend/internal/storage"
	"github.com/ghi-core/backend/internal/storage/models"
)

type dataset struct {
	signals       map[string]models.Signal
	assessments   map[string]models.Assessment
	escalations   map[string]models.Escalation
	socialSignals map[string]models.SocialSignal
	accounts      map[string]models.MonitoredAccount
	keywords      map[string]models.ListenerKeyword

	signalByEventID map[string]string
	socialByPostID  map[string]string
}

func newDataset() *dataset {
	return &dataset{
		signals:         make(map[string]models.Signal),
		assessments:     make(map[string]models.Assessment),
		escalations:     make(map[string]models.Escalation),
		socialSignals:   make(map[string]models.SocialSignal),
		accounts:        make(map[string]models.MonitoredAccount),
		keywords:        make(map[string]models.ListenerKeyword),
		signalByEventID: make(map[string]string),
		socialByPostID:  make(map[string]string),
	}
}

func (d *dataset) clone() *dataset {
	c := newDataset()
	for k, v := range d.signals {
		c.signals[k] = v
	}
	for k, v := range d.assessments {
		c.assessments[k] = v
	}
	for k, v := range d.escalations {
		c.escalations[k] = v
	}
	for k, v := range d.socialSignals {
		c.socialSignals[k] = v
	}
	for k, v := range d.accounts {
		c.accounts[k] = v
	}
	for k, v := range d.keywords {
		c.keywords[k] = v
	}
	for k, v := range d.signalByEventID {
		c.signalByEventID[k] = v
	}
	for k, v := range d.socialByPostID {
		c.socialByPostID[k] = v
	}
	return c
}

type Store struct {
	mu   sync.Mutex
	data *dataset
	inTx bool
}

var _ storage.Store = (*Store)(nil)

func NewStore() *Store {
	return &Store{data: newDataset()}
}

func (s *Store) lock() func() {
	if s.inTx {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

// InTx serializes the transaction under the store mutex and restores a
// snapshot of the dataset if fn fails, matching the all-or-nothing
// semantics of the SQLite implementation.
func (s *Store) InTx(ctx context.Context, fn func(storage.Store) error) error {
	if s.inTx {
		return fn(s)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.data.clone()
	tx := &Store{data: s.data, inTx: true}
	if err := fn(tx); err != nil {
		s.data = snapshot
		return err
	}
	return nil
}

// --- Signals ---

func (s *Store) InsertSignal(ctx context.Context, sig *models.Signal) error {
	defer s.lock()()

	if _, ok := s.data.signals[sig.ID]; ok {
		return storage.ErrDuplicate
	}
	if sig.BeaconEventID != "" {
		if _, ok := s.data.signalByEventID[sig.BeaconEventID]; ok {
			return storage.ErrDuplicate
		}
		s.data.signalByEventID[sig.BeaconEventID] = sig.ID
	}
	s.data.signals[sig.ID] = *sig
	return nil
}

func (s *Store) InsertSignalIfNew(ctx context.Context, sig *models.Signal) (bool, error) {
	defer s.lock()()

	if sig.BeaconEventID != "" {
		if _, ok := s.data.signalByEventID[sig.BeaconEventID]; ok {
			return false, nil
		}
		s.data.signalByEventID[sig.BeaconEventID] = sig.ID
	}
	s.data.signals[sig.ID] = *sig
	return true, nil
}

func (s *Store) GetSignal(ctx context.Context, id string) (*models.Signal, error) {
	defer s.lock()()

	sig, ok := s.data.signals[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &sig, nil
}

func (s *Store) GetSignalByEventID(ctx context.Context, eventID string) (*models.Signal, error) {
	defer s.lock()()

	id, ok := s.data.signalByEventID[eventID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	sig := s.data.signals[id]
	return &sig, nil
}

func (s *Store) UpdateSignal(ctx context.Context, sig *models.Signal) error {
	defer s.lock()()

	if _, ok := s.data.signals[sig.ID]; !ok {
		return storage.ErrNotFound
	}
	s.data.signals[sig.ID] = *sig
	return nil
}

func (s *Store) ListSignals(ctx context.Context, limit int) ([]models.Signal, error) {
	defer s.lock()()

	signals := make([]models.Signal, 0, len(s.data.signals))
	for _, sig := range s.data.signals {
		signals = append(signals, sig)
	}
	sort.Slice(signals, func(i, j int) bool {
		if !signals[i].CreatedAt.Equal(signals[j].CreatedAt) {
			return signals[i].CreatedAt.After(signals[j].CreatedAt)
		}
		return signals[i].ID < signals[j].ID
	})
	if limit > 0 && len(signals) > limit {
		signals = signals[:limit]
	}
	return signals, nil
}

// --- Assessments ---

func (s *Store) InsertAssessment(ctx context.Context, a *models.Assessment) error {
	defer s.lock()()

	if _, ok := s.data.assessments[a.ID]; ok {
		return storage.ErrDuplicate
	}
	s.data.assessments[a.ID] = *a
	return nil
}

func (s *Store) GetAssessment(ctx context.Context, id string) (*models.Assessment, error) {
	defer s.lock()()

	a, ok := s.data.assessments[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &a, nil
}

func (s *Store) UpdateAssessment(ctx context.Context, a *models.Assessment) error {
	defer s.lock()()

	if _, ok := s.data.assessments[a.ID]; !ok {
		return storage.ErrNotFound
	}
	s.data.assessments[a.ID] = *a
	return nil
}

func (s *Store) listAssessments(filter func(models.Assessment) bool, limit int) []models.Assessment {
	var assessments []models.Assessment
	for _, a := range s.data.assessments {
		if filter == nil || filter(a) {
			assessments = append(assessments, a)
		}
	}
	sort.Slice(assessments, func(i, j int) bool {
		if !assessments[i].CreatedAt.Equal(assessments[j].CreatedAt) {
			return assessments[i].CreatedAt.After(assessments[j].CreatedAt)
		}
		return assessments[i].ID < assessments[j].ID
	})
	if limit > 0 && len(assessments) > limit {
		assessments = assessments[:limit]
	}
	return assessments
}

func (s *Store) ListAssessments(ctx context.Context, limit int) ([]models.Assessment, error) {
	defer s.lock()()
	return s.listAssessments(nil, limit), nil
}

func (s *Store) ListAssessmentsBySignal(ctx context.Context, signalID string) ([]models.Assessment, error) {
	defer s.lock()()
	return s.listAssessments(func(a models.Assessment) bool {
		return a.SignalID == signalID
	}, 0), nil
}

// --- Escalations ---

func (s *Store) InsertEscalation(ctx context.Context, e *models.Escalation) error {
	defer s.lock()()

	if _, ok := s.data.escalations[e.ID]; ok {
		return storage.ErrDuplicate
	}
	s.data.escalations[e.ID] = *e
	return nil
}

func (s *Store) GetEscalation(ctx context.Context, id string) (*models.Escalation, error) {
	defer s.lock()()

	e, ok := s.data.escalations[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &e, nil
}

func (s *Store) GetPendingEscalation(ctx context.Context, assessmentID string) (*models.Escalation, error) {
	defer s.lock()()

	for _, e := range s.data.escalations {
		if e.AssessmentID == assessmentID && e.DirectorStatus == models.EscalationPendingReview {
			return &e, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (s *Store) UpdateEscalation(ctx context.Context, e *models.Escalation) error {
	defer s.lock()()

	if _, ok := s.data.escalations[e.ID]; !ok {
		return storage.ErrNotFound
	}
	s.data.escalations[e.ID] = *e
	return nil
}

func (s *Store) ListEscalations(ctx context.Context, limit int) ([]models.Escalation, error) {
	defer s.lock()()

	escalations := make([]models.Escalation, 0, len(s.data.escalations))
	for _, e := range s.data.escalations {
		escalations = append(escalations, e)
	}
	sort.Slice(escalations, func(i, j int) bool {
		if !escalations[i].EscalatedAt.Equal(escalations[j].EscalatedAt) {
			return escalations[i].EscalatedAt.After(escalations[j].EscalatedAt)
		}
		return escalations[i].ID < escalations[j].ID
	})
	if limit > 0 && len(escalations) > limit {
		escalations = escalations[:limit]
	}
	return escalations, nil
}

// --- Social signals ---

func (s *Store) InsertSocialSignalIfNew(ctx context.Context, sig *models.SocialSignal) (bool, error) {
	defer s.lock()()

	if _, ok := s.data.socialByPostID[sig.PostID]; ok {
		return false, nil
	}
	s.data.socialByPostID[sig.PostID] = sig.ID
	s.data.socialSignals[sig.ID] = *sig
	return true, nil
}

func (s *Store) GetSocialSignal(ctx context.Context, id string) (*models.SocialSignal, error) {
	defer s.lock()()

	sig, ok := s.data.socialSignals[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &sig, nil
}

func (s *Store) UpdateSocialSignal(ctx context.Context, sig *models.SocialSignal) error {
	defer s.lock()()

	if _, ok := s.data.socialSignals[sig.ID]; !ok {
		return storage.ErrNotFound
	}
	s.data.socialSignals[sig.ID] = *sig
	return nil
}

func (s *Store) ListSocialSignals(ctx context.Context, includeDismissed bool, limit int) ([]models.SocialSignal, error) {
	defer s.lock()()

	var signals []models.SocialSignal
	for _, sig := range s.data.socialSignals {
		if !includeDismissed && sig.IsDismissed {
			continue
		}
		signals = append(signals, sig)
	}
	sort.Slice(signals, func(i, j int) bool {
		if !signals[i].PostedAt.Equal(signals[j].PostedAt) {
			return signals[i].PostedAt.After(signals[j].PostedAt)
		}
		return signals[i].ID < signals[j].ID
	})
	if limit > 0 && len(signals) > limit {
		signals = signals[:limit]
	}
	return signals, nil
}

// --- Reference data ---

func (s *Store) UpsertMonitoredAccount(ctx context.Context, a *models.MonitoredAccount) error {
	defer s.lock()()

	for id, existing := range s.data.accounts {
		if existing.Handle == a.Handle {
			updated := *a
			updated.ID = id
			s.data.accounts[id] = updated
			return nil
		}
	}
	s.data.accounts[a.ID] = *a
	return nil
}

func (s *Store) ListMonitoredAccounts(ctx context.Context) ([]models.MonitoredAccount, error) {
	defer s.lock()()

	var accounts []models.MonitoredAccount
	for _, a := range s.data.accounts {
		if a.IsActive {
			accounts = append(accounts, a)
		}
	}
	sort.Slice(accounts, func(i, j int) bool {
		if accounts[i].Priority != accounts[j].Priority {
			return accounts[i].Priority < accounts[j].Priority
		}
		return accounts[i].Handle < accounts[j].Handle
	})
	return accounts, nil
}

func (s *Store) UpsertListenerKeyword(ctx context.Context, k *models.ListenerKeyword) error {
	defer s.lock()()

	for id, existing := range s.data.keywords {
		if existing.Keyword == k.Keyword {
			updated := *k
			updated.ID = id
			s.data.keywords[id] = updated
			return nil
		}
	}
	s.data.keywords[k.ID] = *k
	return nil
}

func (s *Store) ListListenerKeywords(ctx context.Context) ([]models.ListenerKeyword, error) {
	defer s.lock()()

	var keywords []models.ListenerKeyword
	for _, k := range s.data.keywords {
		if k.IsActive {
			keywords = append(keywords, k)
		}
	}
	sort.Slice(keywords, func(i, j int) bool {
		if keywords[i].Priority != keywords[j].Priority {
			return keywords[i].Priority < keywords[j].Priority
		}
		return keywords[i].Keyword < keywords[j].Keyword
	})
	return keywords, nil
}
