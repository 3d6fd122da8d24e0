package models

import (
	"fmt"
	"time"
)

// Lifecycle states. REGISTERED carries an orthogonal email-error flag when the
// verification mail could not be delivered.
const (
	StatusRegistered    = "REGISTERED"
	StatusEmailVerified = "EMAIL_VERIFIED"
	StatusAccepted      = "ACCEPTED"
	StatusConfirmed     = "CONFIRMED"
	StatusRejected      = "REJECTED"
)

var lifecycleTransitions = map[string][]string{
	StatusRegistered:    {StatusEmailVerified},
	StatusEmailVerified: {StatusAccepted},
	StatusAccepted:      {StatusConfirmed, StatusRejected},
	StatusConfirmed:     {},
	StatusRejected:      {},
}

// CanTransition reports whether the lifecycle allows moving from one state to
// another.
func CanTransition(from, to string) bool {
	for _, next := range lifecycleTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Finalized reports whether the person has confirmed or rejected their seat.
func (p *Person) Finalized() bool {
	return p.ConfirmedAt != nil || p.RejectedAt != nil
}

// EmailError reports whether the last verification mail failed to deliver and
// the person is still waiting to verify.
func (p *Person) EmailError() bool {
	return p.EmailErrorReason != "" && p.EmailVerifiedAt == nil
}

// Transition validates the move against the transition table and applies it,
// setting the status column and the matching audit timestamp together.
func (p *Person) Transition(to string, now time.Time) error {
	if !CanTransition(p.Status, to) {
		return fmt.Errorf("illegal lifecycle transition %s -> %s", p.Status, to)
	}

	switch to {
	case StatusEmailVerified:
		p.EmailVerifiedAt = &now
	case StatusAccepted:
		p.AcceptedAt = &now
	case StatusConfirmed:
		p.ConfirmedAt = &now
	case StatusRejected:
		p.RejectedAt = &now
	default:
		return fmt.Errorf("unknown lifecycle state %q", to)
	}

	p.Status = to
	return nil
}

// DerivedStatus recomputes the lifecycle state from the audit timestamps. It
// exists for consistency checks and imports of legacy rows; the status column
// is authoritative.
func (p *Person) DerivedStatus() string {
	switch {
	case p.RejectedAt != nil:
		return StatusRejected
	case p.ConfirmedAt != nil:
		return StatusConfirmed
	case p.AcceptedAt != nil:
		return StatusAccepted
	case p.EmailVerifiedAt != nil:
		return StatusEmailVerified
	default:
		return StatusRegistered
	}
}
