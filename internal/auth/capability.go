package auth

// Review domains gated by edit capability.
const (
	DomainDashboard  = "dashboard"
	DomainTriage     = "triage"
	DomainAssessment = "assessment"
	DomainEscalation = "escalation"
)

const (
	RoleAdmin    = "Admin"
	RoleDirector = "Director"
	RoleAnalyst  = "Analyst"
	RoleViewer   = "Viewer"
)

// Actor identifies the human performing a workflow transition.
type Actor struct {
	ID   string
	Role string
}

// Checker answers whether an actor may mutate records in a domain.
type Checker interface {
	CanEdit(actor Actor, domain string) bool
}

// RoleChecker derives edit capability from the actor's role alone. Admins
// edit everything, directors additionally own escalation review, analysts
// work triage and assessment, viewers edit nothing.
type RoleChecker struct{}

var editable = map[string]map[string]bool{
	RoleAdmin: {
		DomainDashboard:  true,
		DomainTriage:     true,
		DomainAssessment: true,
		DomainEscalation: true,
	},
	RoleDirector: {
		DomainDashboard:  true,
		DomainTriage:     true,
		DomainAssessment: true,
		DomainEscalation: true,
	},
	RoleAnalyst: {
		DomainDashboard:  true,
		DomainTriage:     true,
		DomainAssessment: true,
	},
	RoleViewer: {},
}

func (RoleChecker) CanEdit(actor Actor, domain string) bool {
	domains, ok := editable[actor.Role]
	if !ok {
		return false
	}
	return domains[domain]
}
