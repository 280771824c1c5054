package workflow

import "errors"

// Typed workflow failures. Callers (the HTTP layer) map these onto
// response statuses; the message carried alongside identifies which
// precondition failed.
var (
	// ErrInvalidTransition means the record is not in a state the requested
	// operation accepts.
	ErrInvalidTransition = errors.New("invalid transition")
	// ErrPreconditionFailed means the decision rule for the operation does
	// not hold (e.g. escalation without a qualifying assessment).
	ErrPreconditionFailed = errors.New("precondition failed")
	// ErrPermissionDenied means the capability check rejected the actor. No
	// state is changed.
	ErrPermissionDenied = errors.New("permission denied")
	// ErrAlreadyPromoted means the social signal already produced a signal.
	ErrAlreadyPromoted = errors.New("social signal already promoted")
	// ErrEscalationPending means the assessment already has an escalation
	// awaiting director review.
	ErrEscalationPending = errors.New("escalation already pending review")
)
