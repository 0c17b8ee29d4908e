// Package status defines the hiring pipeline state machine for applications.
//
// Valid status graph:
//
//	Applied ──► ATS ──► HR ──► Manager ──► Hired
//	   │         │       │        │
//	   └─────────┴───────┴────────┴──► Rejected
//
// Hired and Rejected are terminal states.
package status

import (
	"errors"
	"fmt"
)

// Status mirrors the application_status column in PostgreSQL.
type Status string

const (
	Applied  Status = "Applied"
	ATS      Status = "ATS"
	HR       Status = "HR"
	Manager  Status = "Manager"
	Hired    Status = "Hired"
	Rejected Status = "Rejected"
)

// pipeline is the ordered non-terminal sequence ending in Hired.
var pipeline = []Status{Applied, ATS, HR, Manager, Hired}

// ErrIllegalTransition is matched by every *IllegalTransitionError.
var ErrIllegalTransition = errors.New("illegal status transition")

// IllegalTransitionError reports a rejected status change.
type IllegalTransitionError struct {
	From Status
	To   Status
}

func (e *IllegalTransitionError) Error() string {
	return fmt.Sprintf("transition %s → %s is not allowed", e.From, e.To)
}

// Is lets errors.Is(err, ErrIllegalTransition) succeed.
func (e *IllegalTransitionError) Is(target error) bool {
	return target == ErrIllegalTransition
}

// ParseStatus converts a raw string to a Status, returning an error for
// unknown values. Matching is exact.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	switch st {
	case Applied, ATS, HR, Manager, Hired, Rejected:
		return st, nil
	}
	return "", fmt.Errorf("unknown application status %q", s)
}

// All returns every status, pipeline order first, Rejected last.
func All() []Status {
	out := make([]Status, 0, len(pipeline)+1)
	out = append(out, pipeline...)
	return append(out, Rejected)
}

// Order returns the position of s in the pipeline, or -1 for Rejected and
// unknown values.
func Order(s Status) int {
	for i, p := range pipeline {
		if p == s {
			return i
		}
	}
	return -1
}

// IsTerminal reports whether no transition may leave s.
func IsTerminal(s Status) bool { return s == Hired || s == Rejected }

// Next returns the stage directly after s.
func Next(s Status) (Status, bool) {
	i := Order(s)
	if i < 0 || i+1 >= len(pipeline) {
		return "", false
	}
	return pipeline[i+1], true
}

// CheckTransition returns nil when moving current → requested is legal:
// current is non-terminal and requested is either Rejected or exactly one
// step further along the pipeline.
func CheckTransition(current, requested Status) error {
	if Order(current) < 0 || IsTerminal(current) {
		return &IllegalTransitionError{From: current, To: requested}
	}
	if requested == Rejected {
		return nil
	}
	if next, ok := Next(current); ok && next == requested {
		return nil
	}
	return &IllegalTransitionError{From: current, To: requested}
}

// IsTransitionAllowed is the boolean form of CheckTransition.
func IsTransitionAllowed(from, to Status) bool {
	return CheckTransition(from, to) == nil
}
