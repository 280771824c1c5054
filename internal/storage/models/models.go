package models

import "time"

// Triage states for a Signal. The gate is one-shot: once accepted or
// rejected a signal is never re-triaged.
const (
	TriagePending  = "Pending Triage"
	TriageAccepted = "Accepted"
	TriageRejected = "Rejected"
)

// Denormalized current status mirrored onto the Signal by workflow writes.
const (
	StatusNew             = "New"
	StatusUnderAssessment = "Under Assessment"
	StatusEscalated       = "Escalated"
	StatusArchived        = "Archived"
)

// Assessment lifecycle.
const (
	AssessmentDraft     = "Draft"
	AssessmentUnderway  = "Under Assessment"
	AssessmentEscalated = "Escalated"
	AssessmentCompleted = "Completed"
)

// IHR Annex-2 derived decisions.
const (
	DecisionMandatoryNotification = "Mandatory Notification"
	DecisionLocalMonitoring       = "Local Monitoring"
)

// Director review states for an Escalation.
const (
	EscalationPendingReview = "Pending Review"
	EscalationApproved      = "Approved"
	EscalationRejected      = "Rejected"
)

// Verification states for a SocialSignal.
const (
	VerificationPending   = "Pending"
	VerificationPromoted  = "Promoted"
	VerificationDismissed = "Dismissed"
)

// Risk levels shared by assessments and escalations.
const (
	RiskLow      = "Low"
	RiskModerate = "Moderate"
	RiskHigh     = "High"
	RiskCritical = "Critical"
)

// Signal is a tracked candidate outbreak event under review.
type Signal struct {
	ID              string
	BeaconEventID   string // idempotency key, empty for promoted signals
	SourceURL       string
	RawData         string // JSON provenance payload
	Disease         string
	Country         string
	Location        string
	DateReported    time.Time
	DateOnset       *time.Time
	Cases           int
	Deaths          int
	CaseFatalityRate float64
	Description     string
	TriageStatus    string
	TriagedBy       string
	TriagedAt       *time.Time
	TriageNotes     string
	RejectionReason string
	PriorityScore   float64
	CurrentStatus   string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Assessment is one reviewer's structured IHR/RRA analysis of a Signal.
type Assessment struct {
	ID             string
	SignalID       string
	AssessmentType string

	IHRQuestion1      bool
	IHRQuestion1Notes string
	IHRQuestion2      bool
	IHRQuestion2Notes string
	IHRQuestion3      bool
	IHRQuestion3Notes string
	IHRQuestion4      bool
	IHRQuestion4Notes string
	IHRDecision       string

	RRAHazard      string
	RRAExposure    string
	RRAContext     string
	RRAOverallRisk string
	RRAConfidence  string

	Status               string
	AssignedTo           string
	ReviewedBy           string
	OutcomeDecision      string
	OutcomeJustification string

	CreatedAt   time.Time
	StartedAt   *time.Time
	CompletedAt *time.Time
	UpdatedAt   time.Time
}

// YesCount returns how many of the four IHR questions are answered yes.
func (a *Assessment) YesCount() int {
	n := 0
	for _, q := range []bool{a.IHRQuestion1, a.IHRQuestion2, a.IHRQuestion3, a.IHRQuestion4} {
		if q {
			n++
		}
	}
	return n
}

// Escalation is a director-facing review package raised from one Assessment.
type Escalation struct {
	ID                 string
	SignalID           string
	AssessmentID       string
	EscalationLevel    string
	Priority           string
	Reason             string
	RecommendedActions string
	DirectorStatus     string
	DirectorDecision   string
	DirectorNotes      string
	ReviewedBy         string
	ReviewedAt         *time.Time
	EscalatedBy        string
	EscalatedAt        time.Time
	ResolvedAt         *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Engagement counters carried by a social post.
type Engagement struct {
	Likes    int `json:"likes"`
	Reposts  int `json:"retweets"`
	Replies  int `json:"replies"`
}

// SocialSignal is an unverified candidate drawn from the social layer.
type SocialSignal struct {
	ID               string
	Platform         string
	PostID           string // idempotency key
	Author           string
	AuthorHandle     string
	Content          string
	Language         string
	Location         string
	Hashtags         []string
	Mentions         []string
	URLs             []string
	Engagement       Engagement
	DetectedKeywords []string
	RelevanceScore   float64
	SentimentScore   *float64
	VerificationStatus string
	RelatedSignalID  string
	PromotedAt       *time.Time
	PromotedBy       string
	IsDismissed      bool
	PostedAt         time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// MonitoredAccount is reference data mapping a source handle to a
// priority tier (1 = official, 2 = expert/influencer, 3 = unknown).
type MonitoredAccount struct {
	ID          string
	Platform    string
	Handle      string
	Name        string
	AccountType string
	Region      string
	Priority    int
	IsActive    bool
	Description string
}

// ListenerKeyword is reference data read by the keyword matcher.
type ListenerKeyword struct {
	ID       string
	Keyword  string
	Category string
	Language string
	Priority int
	IsActive bool
}
