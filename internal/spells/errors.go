package spells

import (
	"fmt"
	"time"
)

// Reason says why an action could not be performed.
type Reason int

const (
	ReasonOnCooldown Reason = iota + 1
	ReasonAnimationLocked
	ReasonGCDLocked
	ReasonInsufficientResource
	ReasonNotUsable
)

func (r Reason) String() string {
	switch r {
	case ReasonOnCooldown:
		return "on cooldown"
	case ReasonAnimationLocked:
		return "animation locked"
	case ReasonGCDLocked:
		return "gcd locked"
	case ReasonInsufficientResource:
		return "insufficient resource"
	case ReasonNotUsable:
		return "not usable"
	}
	return "unknown"
}

// IllegalActionError is returned when an action is attempted while one of
// its preconditions does not hold. Callers treat it as "try the next
// candidate".
type IllegalActionError struct {
	Action    string
	Reason    Reason
	Remaining time.Duration
}

func (e *IllegalActionError) Error() string {
	if e.Remaining > 0 {
		return fmt.Sprintf("%s: %s for %v", e.Action, e.Reason, e.Remaining)
	}
	return fmt.Sprintf("%s: %s", e.Action, e.Reason)
}
