package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/ghi-core/backend/internal/storage"
	"github.com/ghi-core/backend/internal/storage/models"
	"github.com/ghi-core/backend/pkg/logger"
)

// querier is satisfied by both *sql.DB and *sql.Tx so the same client
// code serves plain and transactional access.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

type Client struct {
	db *sql.DB
	q  querier
}

var _ storage.Store = (*Client)(nil)

func NewClient(dbPath string) (*Client, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	logger.Info("SQLite client initialized", zap.String("path", dbPath))

	return &Client{db: db, q: db}, nil
}

func (c *Client) Close() error {
	return c.db.Close()
}

func (c *Client) InitSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS signals (
		id TEXT PRIMARY KEY,
		beacon_event_id TEXT UNIQUE,
		source_url TEXT NOT NULL,
		raw_data TEXT,
		disease TEXT NOT NULL,
		country TEXT NOT NULL,
		location TEXT,
		date_reported INTEGER NOT NULL,
		date_onset INTEGER,
		cases INTEGER NOT NULL DEFAULT 0,
		deaths INTEGER NOT NULL DEFAULT 0,
		case_fatality_rate REAL NOT NULL DEFAULT 0,
		description TEXT,
		triage_status TEXT NOT NULL DEFAULT 'Pending Triage',
		triaged_by TEXT,
		triaged_at INTEGER,
		triage_notes TEXT,
		rejection_reason TEXT,
		priority_score REAL NOT NULL DEFAULT 0,
		current_status TEXT NOT NULL DEFAULT 'New',
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_signals_triage ON signals(triage_status);
	CREATE INDEX IF NOT EXISTS idx_signals_created ON signals(created_at);

	CREATE TABLE IF NOT EXISTS assessments (
		id TEXT PRIMARY KEY,
		signal_id TEXT NOT NULL,
		assessment_type TEXT NOT NULL DEFAULT 'IHR/RRA',
		ihr_q1 INTEGER NOT NULL DEFAULT 0,
		ihr_q1_notes TEXT,
		ihr_q2 INTEGER NOT NULL DEFAULT 0,
		ihr_q2_notes TEXT,
		ihr_q3 INTEGER NOT NULL DEFAULT 0,
		ihr_q3_notes TEXT,
		ihr_q4 INTEGER NOT NULL DEFAULT 0,
		ihr_q4_notes TEXT,
		ihr_decision TEXT,
		rra_hazard TEXT,
		rra_exposure TEXT,
		rra_context TEXT,
		rra_overall_risk TEXT,
		rra_confidence TEXT,
		status TEXT NOT NULL DEFAULT 'Draft',
		assigned_to TEXT NOT NULL,
		reviewed_by TEXT,
		outcome_decision TEXT,
		outcome_justification TEXT,
		created_at INTEGER NOT NULL,
		started_at INTEGER,
		completed_at INTEGER,
		updated_at INTEGER NOT NULL,
		FOREIGN KEY (signal_id) REFERENCES signals(id) ON DELETE CASCADE
	);
	CREATE INDEX IF NOT EXISTS idx_assessments_signal ON assessments(signal_id);
	CREATE INDEX IF NOT EXISTS idx_assessments_status ON assessments(status);

	CREATE TABLE IF NOT EXISTS escalations (
		id TEXT PRIMARY KEY,
		signal_id TEXT NOT NULL,
		assessment_id TEXT NOT NULL,
		escalation_level TEXT NOT NULL DEFAULT 'Director',
		priority TEXT NOT NULL,
		reason TEXT NOT NULL,
		recommended_actions TEXT,
		director_status TEXT NOT NULL DEFAULT 'Pending Review',
		director_decision TEXT,
		director_notes TEXT,
		reviewed_by TEXT,
		reviewed_at INTEGER,
		escalated_by TEXT NOT NULL,
		escalated_at INTEGER NOT NULL,
		resolved_at INTEGER,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL,
		FOREIGN KEY (signal_id) REFERENCES signals(id),
		FOREIGN KEY (assessment_id) REFERENCES assessments(id)
	);
	CREATE INDEX IF NOT EXISTS idx_escalations_assessment ON escalations(assessment_id);
	CREATE INDEX IF NOT EXISTS idx_escalations_status ON escalations(director_status);

	CREATE TABLE IF NOT EXISTS social_signals (
		id TEXT PRIMARY KEY,
		platform TEXT NOT NULL DEFAULT 'twitter',
		post_id TEXT UNIQUE NOT NULL,
		author TEXT NOT NULL,
		author_handle TEXT NOT NULL,
		content TEXT NOT NULL,
		language TEXT NOT NULL DEFAULT 'en',
		location TEXT,
		hashtags TEXT,
		mentions TEXT,
		urls TEXT,
		engagement TEXT,
		detected_keywords TEXT,
		relevance_score REAL NOT NULL DEFAULT 0,
		sentiment_score REAL,
		verification_status TEXT NOT NULL DEFAULT 'Pending',
		related_signal_id TEXT,
		promoted_at INTEGER,
		promoted_by TEXT,
		is_dismissed INTEGER NOT NULL DEFAULT 0,
		posted_at INTEGER NOT NULL,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL,
		FOREIGN KEY (related_signal_id) REFERENCES signals(id) ON DELETE SET NULL
	);
	CREATE INDEX IF NOT EXISTS idx_social_posted ON social_signals(posted_at);
	CREATE INDEX IF NOT EXISTS idx_social_status ON social_signals(verification_status);

	CREATE TABLE IF NOT EXISTS monitored_accounts (
		id TEXT PRIMARY KEY,
		platform TEXT NOT NULL DEFAULT 'twitter',
		handle TEXT UNIQUE NOT NULL,
		name TEXT NOT NULL,
		account_type TEXT NOT NULL,
		region TEXT,
		priority INTEGER NOT NULL DEFAULT 2,
		is_active INTEGER NOT NULL DEFAULT 1,
		description TEXT
	);

	CREATE TABLE IF NOT EXISTS listener_keywords (
		id TEXT PRIMARY KEY,
		keyword TEXT UNIQUE NOT NULL,
		category TEXT NOT NULL,
		language TEXT NOT NULL DEFAULT 'en',
		priority INTEGER NOT NULL DEFAULT 2,
		is_active INTEGER NOT NULL DEFAULT 1
	);
	`

	if _, err := c.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	logger.Info("SQLite schema initialized")
	return nil
}

// InTx runs fn against a client bound to a single transaction. Nested
// calls reuse the outer transaction.
func (c *Client) InTx(ctx context.Context, fn func(storage.Store) error) error {
	if _, ok := c.q.(*sql.Tx); ok {
		return fn(c)
	}

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(&Client{db: c.db, q: tx}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("Transaction rollback failed", zap.Error(rbErr))
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func nullTime(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.Unix()
}

func scanTime(v sql.NullInt64) *time.Time {
	if !v.Valid {
		return nil
	}
	t := time.Unix(v.Int64, 0).UTC()
	return &t
}

func marshalList(v []string) string {
	if v == nil {
		v = []string{}
	}
	data, _ := json.Marshal(v)
	return string(data)
}

func unmarshalList(data string) []string {
	var v []string
	if data != "" {
		json.Unmarshal([]byte(data), &v)
	}
	return v
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// --- Signals ---

const signalColumns = `id, beacon_event_id, source_url, raw_data, disease, country, location,
	date_reported, date_onset, cases, deaths, case_fatality_rate, description,
	triage_status, triaged_by, triaged_at, triage_notes, rejection_reason,
	priority_score, current_status, created_at, updated_at`

func (c *Client) signalArgs(s *models.Signal) []interface{} {
	var eventID interface{}
	if s.BeaconEventID != "" {
		eventID = s.BeaconEventID
	}
	return []interface{}{
		s.ID, eventID, s.SourceURL, s.RawData, s.Disease, s.Country, s.Location,
		s.DateReported.Unix(), nullTime(s.DateOnset), s.Cases, s.Deaths,
		s.CaseFatalityRate, s.Description, s.TriageStatus, s.TriagedBy,
		nullTime(s.TriagedAt), s.TriageNotes, s.RejectionReason,
		s.PriorityScore, s.CurrentStatus, s.CreatedAt.Unix(), s.UpdatedAt.Unix(),
	}
}

func (c *Client) InsertSignal(ctx context.Context, s *models.Signal) error {
	query := `INSERT INTO signals (` + signalColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	if _, err := c.q.ExecContext(ctx, query, c.signalArgs(s)...); err != nil {
		if isUniqueViolation(err) {
			return storage.ErrDuplicate
		}
		return fmt.Errorf("failed to insert signal: %w", err)
	}

	logger.Debug("Signal inserted", zap.String("signal_id", s.ID), zap.String("disease", s.Disease))
	return nil
}

func (c *Client) InsertSignalIfNew(ctx context.Context, s *models.Signal) (bool, error) {
	query := `INSERT INTO signals (` + signalColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(beacon_event_id) DO NOTHING`

	res, err := c.q.ExecContext(ctx, query, c.signalArgs(s)...)
	if err != nil {
		return false, fmt.Errorf("failed to upsert signal: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return affected > 0, nil
}

func (c *Client) scanSignal(row interface{ Scan(...interface{}) error }) (*models.Signal, error) {
	var s models.Signal
	var eventID, location, rawData, triagedBy, notes, rejection, description sql.NullString
	var dateReported, createdAt, updatedAt int64
	var dateOnset, triagedAt sql.NullInt64

	err := row.Scan(
		&s.ID, &eventID, &s.SourceURL, &rawData, &s.Disease, &s.Country, &location,
		&dateReported, &dateOnset, &s.Cases, &s.Deaths, &s.CaseFatalityRate,
		&description, &s.TriageStatus, &triagedBy, &triagedAt, &notes, &rejection,
		&s.PriorityScore, &s.CurrentStatus, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	s.BeaconEventID = eventID.String
	s.Location = location.String
	s.RawData = rawData.String
	s.TriagedBy = triagedBy.String
	s.TriageNotes = notes.String
	s.RejectionReason = rejection.String
	s.Description = description.String
	s.DateReported = time.Unix(dateReported, 0).UTC()
	s.DateOnset = scanTime(dateOnset)
	s.TriagedAt = scanTime(triagedAt)
	s.CreatedAt = time.Unix(createdAt, 0).UTC()
	s.UpdatedAt = time.Unix(updatedAt, 0).UTC()

	return &s, nil
}

func (c *Client) GetSignal(ctx context.Context, id string) (*models.Signal, error) {
	row := c.q.QueryRowContext(ctx, `SELECT `+signalColumns+` FROM signals WHERE id = ?`, id)
	s, err := c.scanSignal(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get signal: %w", err)
	}
	return s, nil
}

func (c *Client) GetSignalByEventID(ctx context.Context, eventID string) (*models.Signal, error) {
	row := c.q.QueryRowContext(ctx, `SELECT `+signalColumns+` FROM signals WHERE beacon_event_id = ?`, eventID)
	s, err := c.scanSignal(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get signal by event id: %w", err)
	}
	return s, nil
}

func (c *Client) UpdateSignal(ctx context.Context, s *models.Signal) error {
	query := `UPDATE signals SET
		source_url = ?, raw_data = ?, disease = ?, country = ?, location = ?,
		date_reported = ?, date_onset = ?, cases = ?, deaths = ?, case_fatality_rate = ?,
		description = ?, triage_status = ?, triaged_by = ?, triaged_at = ?,
		triage_notes = ?, rejection_reason = ?, priority_score = ?, current_status = ?,
		updated_at = ?
		WHERE id = ?`

	res, err := c.q.ExecContext(ctx, query,
		s.SourceURL, s.RawData, s.Disease, s.Country, s.Location,
		s.DateReported.Unix(), nullTime(s.DateOnset), s.Cases, s.Deaths, s.CaseFatalityRate,
		s.Description, s.TriageStatus, s.TriagedBy, nullTime(s.TriagedAt),
		s.TriageNotes, s.RejectionReason, s.PriorityScore, s.CurrentStatus,
		s.UpdatedAt.Unix(), s.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update signal: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (c *Client) ListSignals(ctx context.Context, limit int) ([]models.Signal, error) {
	rows, err := c.q.QueryContext(ctx,
		`SELECT `+signalColumns+` FROM signals ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list signals: %w", err)
	}
	defer rows.Close()

	var signals []models.Signal
	for rows.Next() {
		s, err := c.scanSignal(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan signal row: %w", err)
		}
		signals = append(signals, *s)
	}
	return signals, rows.Err()
}

// --- Assessments ---

const assessmentColumns = `id, signal_id, assessment_type,
	ihr_q1, ihr_q1_notes, ihr_q2, ihr_q2_notes, ihr_q3, ihr_q3_notes, ihr_q4, ihr_q4_notes,
	ihr_decision, rra_hazard, rra_exposure, rra_context, rra_overall_risk, rra_confidence,
	status, assigned_to, reviewed_by, outcome_decision, outcome_justification,
	created_at, started_at, completed_at, updated_at`

func (c *Client) InsertAssessment(ctx context.Context, a *models.Assessment) error {
	query := `INSERT INTO assessments (` + assessmentColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := c.q.ExecContext(ctx, query,
		a.ID, a.SignalID, a.AssessmentType,
		a.IHRQuestion1, a.IHRQuestion1Notes, a.IHRQuestion2, a.IHRQuestion2Notes,
		a.IHRQuestion3, a.IHRQuestion3Notes, a.IHRQuestion4, a.IHRQuestion4Notes,
		a.IHRDecision, a.RRAHazard, a.RRAExposure, a.RRAContext, a.RRAOverallRisk,
		a.RRAConfidence, a.Status, a.AssignedTo, a.ReviewedBy, a.OutcomeDecision,
		a.OutcomeJustification, a.CreatedAt.Unix(), nullTime(a.StartedAt),
		nullTime(a.CompletedAt), a.UpdatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert assessment: %w", err)
	}

	logger.Debug("Assessment inserted",
		zap.String("assessment_id", a.ID),
		zap.String("signal_id", a.SignalID),
	)
	return nil
}

func (c *Client) scanAssessment(row interface{ Scan(...interface{}) error }) (*models.Assessment, error) {
	var a models.Assessment
	var q1n, q2n, q3n, q4n, decision, hazard, exposure, contextSec sql.NullString
	var risk, confidence, reviewedBy, outcome, justification sql.NullString
	var createdAt, updatedAt int64
	var startedAt, completedAt sql.NullInt64

	err := row.Scan(
		&a.ID, &a.SignalID, &a.AssessmentType,
		&a.IHRQuestion1, &q1n, &a.IHRQuestion2, &q2n, &a.IHRQuestion3, &q3n,
		&a.IHRQuestion4, &q4n, &decision, &hazard, &exposure, &contextSec,
		&risk, &confidence, &a.Status, &a.AssignedTo, &reviewedBy, &outcome,
		&justification, &createdAt, &startedAt, &completedAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	a.IHRQuestion1Notes = q1n.String
	a.IHRQuestion2Notes = q2n.String
	a.IHRQuestion3Notes = q3n.String
	a.IHRQuestion4Notes = q4n.String
	a.IHRDecision = decision.String
	a.RRAHazard = hazard.String
	a.RRAExposure = exposure.String
	a.RRAContext = contextSec.String
	a.RRAOverallRisk = risk.String
	a.RRAConfidence = confidence.String
	a.ReviewedBy = reviewedBy.String
	a.OutcomeDecision = outcome.String
	a.OutcomeJustification = justification.String
	a.CreatedAt = time.Unix(createdAt, 0).UTC()
	a.StartedAt = scanTime(startedAt)
	a.CompletedAt = scanTime(completedAt)
	a.UpdatedAt = time.Unix(updatedAt, 0).UTC()

	return &a, nil
}

func (c *Client) GetAssessment(ctx context.Context, id string) (*models.Assessment, error) {
	row := c.q.QueryRowContext(ctx, `SELECT `+assessmentColumns+` FROM assessments WHERE id = ?`, id)
	a, err := c.scanAssessment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get assessment: %w", err)
	}
	return a, nil
}

func (c *Client) UpdateAssessment(ctx context.Context, a *models.Assessment) error {
	query := `UPDATE assessments SET
		ihr_q1 = ?, ihr_q1_notes = ?, ihr_q2 = ?, ihr_q2_notes = ?,
		ihr_q3 = ?, ihr_q3_notes = ?, ihr_q4 = ?, ihr_q4_notes = ?,
		ihr_decision = ?, rra_hazard = ?, rra_exposure = ?, rra_context = ?,
		rra_overall_risk = ?, rra_confidence = ?, status = ?, reviewed_by = ?,
		outcome_decision = ?, outcome_justification = ?, started_at = ?,
		completed_at = ?, updated_at = ?
		WHERE id = ?`

	res, err := c.q.ExecContext(ctx, query,
		a.IHRQuestion1, a.IHRQuestion1Notes, a.IHRQuestion2, a.IHRQuestion2Notes,
		a.IHRQuestion3, a.IHRQuestion3Notes, a.IHRQuestion4, a.IHRQuestion4Notes,
		a.IHRDecision, a.RRAHazard, a.RRAExposure, a.RRAContext,
		a.RRAOverallRisk, a.RRAConfidence, a.Status, a.ReviewedBy,
		a.OutcomeDecision, a.OutcomeJustification, nullTime(a.StartedAt),
		nullTime(a.CompletedAt), a.UpdatedAt.Unix(), a.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update assessment: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (c *Client) listAssessments(ctx context.Context, query string, args ...interface{}) ([]models.Assessment, error) {
	rows, err := c.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list assessments: %w", err)
	}
	defer rows.Close()

	var assessments []models.Assessment
	for rows.Next() {
		a, err := c.scanAssessment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan assessment row: %w", err)
		}
		assessments = append(assessments, *a)
	}
	return assessments, rows.Err()
}

func (c *Client) ListAssessments(ctx context.Context, limit int) ([]models.Assessment, error) {
	return c.listAssessments(ctx,
		`SELECT `+assessmentColumns+` FROM assessments ORDER BY created_at DESC LIMIT ?`, limit)
}

func (c *Client) ListAssessmentsBySignal(ctx context.Context, signalID string) ([]models.Assessment, error) {
	return c.listAssessments(ctx,
		`SELECT `+assessmentColumns+` FROM assessments WHERE signal_id = ? ORDER BY created_at DESC`, signalID)
}

// --- Escalations ---

const escalationColumns = `id, signal_id, assessment_id, escalation_level, priority, reason,
	recommended_actions, director_status, director_decision, director_notes,
	reviewed_by, reviewed_at, escalated_by, escalated_at, resolved_at, created_at, updated_at`

func (c *Client) InsertEscalation(ctx context.Context, e *models.Escalation) error {
	query := `INSERT INTO escalations (` + escalationColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := c.q.ExecContext(ctx, query,
		e.ID, e.SignalID, e.AssessmentID, e.EscalationLevel, e.Priority, e.Reason,
		e.RecommendedActions, e.DirectorStatus, e.DirectorDecision, e.DirectorNotes,
		e.ReviewedBy, nullTime(e.ReviewedAt), e.EscalatedBy, e.EscalatedAt.Unix(),
		nullTime(e.ResolvedAt), e.CreatedAt.Unix(), e.UpdatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert escalation: %w", err)
	}

	logger.Debug("Escalation inserted",
		zap.String("escalation_id", e.ID),
		zap.String("assessment_id", e.AssessmentID),
	)
	return nil
}

func (c *Client) scanEscalation(row interface{ Scan(...interface{}) error }) (*models.Escalation, error) {
	var e models.Escalation
	var actions, decision, notes, reviewedBy sql.NullString
	var escalatedAt, createdAt, updatedAt int64
	var reviewedAt, resolvedAt sql.NullInt64

	err := row.Scan(
		&e.ID, &e.SignalID, &e.AssessmentID, &e.EscalationLevel, &e.Priority,
		&e.Reason, &actions, &e.DirectorStatus, &decision, &notes,
		&reviewedBy, &reviewedAt, &e.EscalatedBy, &escalatedAt, &resolvedAt,
		&createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	e.RecommendedActions = actions.String
	e.DirectorDecision = decision.String
	e.DirectorNotes = notes.String
	e.ReviewedBy = reviewedBy.String
	e.ReviewedAt = scanTime(reviewedAt)
	e.EscalatedAt = time.Unix(escalatedAt, 0).UTC()
	e.ResolvedAt = scanTime(resolvedAt)
	e.CreatedAt = time.Unix(createdAt, 0).UTC()
	e.UpdatedAt = time.Unix(updatedAt, 0).UTC()

	return &e, nil
}

func (c *Client) GetEscalation(ctx context.Context, id string) (*models.Escalation, error) {
	row := c.q.QueryRowContext(ctx, `SELECT `+escalationColumns+` FROM escalations WHERE id = ?`, id)
	e, err := c.scanEscalation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get escalation: %w", err)
	}
	return e, nil
}

func (c *Client) GetPendingEscalation(ctx context.Context, assessmentID string) (*models.Escalation, error) {
	row := c.q.QueryRowContext(ctx,
		`SELECT `+escalationColumns+` FROM escalations WHERE assessment_id = ? AND director_status = ?`,
		assessmentID, models.EscalationPendingReview)
	e, err := c.scanEscalation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get pending escalation: %w", err)
	}
	return e, nil
}

func (c *Client) UpdateEscalation(ctx context.Context, e *models.Escalation) error {
	query := `UPDATE escalations SET
		priority = ?, reason = ?, recommended_actions = ?, director_status = ?,
		director_decision = ?, director_notes = ?, reviewed_by = ?, reviewed_at = ?,
		resolved_at = ?, updated_at = ?
		WHERE id = ?`

	res, err := c.q.ExecContext(ctx, query,
		e.Priority, e.Reason, e.RecommendedActions, e.DirectorStatus,
		e.DirectorDecision, e.DirectorNotes, e.ReviewedBy, nullTime(e.ReviewedAt),
		nullTime(e.ResolvedAt), e.UpdatedAt.Unix(), e.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update escalation: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (c *Client) ListEscalations(ctx context.Context, limit int) ([]models.Escalation, error) {
	rows, err := c.q.QueryContext(ctx,
		`SELECT `+escalationColumns+` FROM escalations ORDER BY escalated_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list escalations: %w", err)
	}
	defer rows.Close()

	var escalations []models.Escalation
	for rows.Next() {
		e, err := c.scanEscalation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan escalation row: %w", err)
		}
		escalations = append(escalations, *e)
	}
	return escalations, rows.Err()
}

// --- Social signals ---

const socialColumns = `id, platform, post_id, author, author_handle, content, language, location,
	hashtags, mentions, urls, engagement, detected_keywords, relevance_score, sentiment_score,
	verification_status, related_signal_id, promoted_at, promoted_by, is_dismissed,
	posted_at, created_at, updated_at`

func (c *Client) InsertSocialSignalIfNew(ctx context.Context, s *models.SocialSignal) (bool, error) {
	engagement, _ := json.Marshal(s.Engagement)

	query := `INSERT INTO social_signals (` + socialColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(post_id) DO NOTHING`

	res, err := c.q.ExecContext(ctx, query,
		s.ID, s.Platform, s.PostID, s.Author, s.AuthorHandle, s.Content,
		s.Language, s.Location, marshalList(s.Hashtags), marshalList(s.Mentions),
		marshalList(s.URLs), string(engagement), marshalList(s.DetectedKeywords),
		s.RelevanceScore, s.SentimentScore, s.VerificationStatus,
		nullString(s.RelatedSignalID), nullTime(s.PromotedAt), s.PromotedBy,
		s.IsDismissed, s.PostedAt.Unix(), s.CreatedAt.Unix(), s.UpdatedAt.Unix(),
	)
	if err != nil {
		return false, fmt.Errorf("failed to upsert social signal: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return affected > 0, nil
}

func nullString(v string) interface{} {
	if v == "" {
		return nil
	}
	return v
}

func (c *Client) scanSocialSignal(row interface{ Scan(...interface{}) error }) (*models.SocialSignal, error) {
	var s models.SocialSignal
	var location, hashtags, mentions, urls, engagement, keywords sql.NullString
	var relatedID, promotedBy sql.NullString
	var sentiment sql.NullFloat64
	var postedAt, createdAt, updatedAt int64
	var promotedAt sql.NullInt64

	err := row.Scan(
		&s.ID, &s.Platform, &s.PostID, &s.Author, &s.AuthorHandle, &s.Content,
		&s.Language, &location, &hashtags, &mentions, &urls, &engagement,
		&keywords, &s.RelevanceScore, &sentiment, &s.VerificationStatus,
		&relatedID, &promotedAt, &promotedBy, &s.IsDismissed,
		&postedAt, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	s.Location = location.String
	s.Hashtags = unmarshalList(hashtags.String)
	s.Mentions = unmarshalList(mentions.String)
	s.URLs = unmarshalList(urls.String)
	s.DetectedKeywords = unmarshalList(keywords.String)
	if engagement.Valid {
		json.Unmarshal([]byte(engagement.String), &s.Engagement)
	}
	if sentiment.Valid {
		s.SentimentScore = &sentiment.Float64
	}
	s.RelatedSignalID = relatedID.String
	s.PromotedBy = promotedBy.String
	s.PromotedAt = scanTime(promotedAt)
	s.PostedAt = time.Unix(postedAt, 0).UTC()
	s.CreatedAt = time.Unix(createdAt, 0).UTC()
	s.UpdatedAt = time.Unix(updatedAt, 0).UTC()

	return &s, nil
}

func (c *Client) GetSocialSignal(ctx context.Context, id string) (*models.SocialSignal, error) {
	row := c.q.QueryRowContext(ctx, `SELECT `+socialColumns+` FROM social_signals WHERE id = ?`, id)
	s, err := c.scanSocialSignal(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get social signal: %w", err)
	}
	return s, nil
}

func (c *Client) UpdateSocialSignal(ctx context.Context, s *models.SocialSignal) error {
	engagement, _ := json.Marshal(s.Engagement)

	query := `UPDATE social_signals SET
		content = ?, language = ?, location = ?, hashtags = ?, mentions = ?, urls = ?,
		engagement = ?, detected_keywords = ?, relevance_score = ?, sentiment_score = ?,
		verification_status = ?, related_signal_id = ?, promoted_at = ?, promoted_by = ?,
		is_dismissed = ?, updated_at = ?
		WHERE id = ?`

	res, err := c.q.ExecContext(ctx, query,
		s.Content, s.Language, s.Location, marshalList(s.Hashtags),
		marshalList(s.Mentions), marshalList(s.URLs), string(engagement),
		marshalList(s.DetectedKeywords), s.RelevanceScore, s.SentimentScore,
		s.VerificationStatus, nullString(s.RelatedSignalID), nullTime(s.PromotedAt),
		s.PromotedBy, s.IsDismissed, s.UpdatedAt.Unix(), s.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update social signal: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (c *Client) ListSocialSignals(ctx context.Context, includeDismissed bool, limit int) ([]models.SocialSignal, error) {
	query := `SELECT ` + socialColumns + ` FROM social_signals`
	if !includeDismissed {
		query += ` WHERE is_dismissed = 0`
	}
	query += ` ORDER BY posted_at DESC LIMIT ?`

	rows, err := c.q.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list social signals: %w", err)
	}
	defer rows.Close()

	var signals []models.SocialSignal
	for rows.Next() {
		s, err := c.scanSocialSignal(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan social signal row: %w", err)
		}
		signals = append(signals, *s)
	}
	return signals, rows.Err()
}

// --- Reference data ---

func (c *Client) UpsertMonitoredAccount(ctx context.Context, a *models.MonitoredAccount) error {
	query := `INSERT INTO monitored_accounts (id, platform, handle, name, account_type, region, priority, is_active, description)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(handle) DO UPDATE SET
			name = excluded.name,
			account_type = excluded.account_type,
			region = excluded.region,
			priority = excluded.priority,
			is_active = excluded.is_active,
			description = excluded.description`

	_, err := c.q.ExecContext(ctx, query,
		a.ID, a.Platform, a.Handle, a.Name, a.AccountType, a.Region,
		a.Priority, a.IsActive, a.Description,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert monitored account: %w", err)
	}
	return nil
}

func (c *Client) ListMonitoredAccounts(ctx context.Context) ([]models.MonitoredAccount, error) {
	rows, err := c.q.QueryContext(ctx,
		`SELECT id, platform, handle, name, account_type, region, priority, is_active, description
		 FROM monitored_accounts WHERE is_active = 1 ORDER BY priority, handle`)
	if err != nil {
		return nil, fmt.Errorf("failed to list monitored accounts: %w", err)
	}
	defer rows.Close()

	var accounts []models.MonitoredAccount
	for rows.Next() {
		var a models.MonitoredAccount
		var region, description sql.NullString
		if err := rows.Scan(&a.ID, &a.Platform, &a.Handle, &a.Name, &a.AccountType,
			&region, &a.Priority, &a.IsActive, &description); err != nil {
			return nil, fmt.Errorf("failed to scan monitored account row: %w", err)
		}
		a.Region = region.String
		a.Description = description.String
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

func (c *Client) UpsertListenerKeyword(ctx context.Context, k *models.ListenerKeyword) error {
	query := `INSERT INTO listener_keywords (id, keyword, category, language, priority, is_active)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(keyword) DO UPDATE SET
			category = excluded.category,
			language = excluded.language,
			priority = excluded.priority,
			is_active = excluded.is_active`

	_, err := c.q.ExecContext(ctx, query,
		k.ID, k.Keyword, k.Category, k.Language, k.Priority, k.IsActive,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert listener keyword: %w", err)
	}
	return nil
}

func (c *Client) ListListenerKeywords(ctx context.Context) ([]models.ListenerKeyword, error) {
	rows, err := c.q.QueryContext(ctx,
		`SELECT id, keyword, category, language, priority, is_active
		 FROM listener_keywords WHERE is_active = 1 ORDER BY priority, keyword`)
	if err != nil {
		return nil, fmt.Errorf("failed to list listener keywords: %w", err)
	}
	defer rows.Close()

	var keywords []models.ListenerKeyword
	for rows.Next() {
		var k models.ListenerKeyword
		if err := rows.Scan(&k.ID, &k.Keyword, &k.Category, &k.Language, &k.Priority, &k.IsActive); err != nil {
			return nil, fmt.Errorf("failed to scan listener keyword row: %w", err)
		}
		keywords = append(keywords, k)
	}
	return keywords, rows.Err()
}
