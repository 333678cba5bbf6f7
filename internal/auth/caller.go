// Package auth carries the caller identity resolved at the HTTP boundary
// into the service layer, so every mutating operation checks role and
// ownership explicitly instead of trusting ambient session state.
package auth

import "errors"

// Roles recognised by the authorization guard.
const (
	RoleTeacher = "teacher"
	RoleStudent = "student"
)

// ErrForbidden is returned whenever a caller lacks the role or ownership
// required by an operation. Handlers map it to HTTP 403.
var ErrForbidden = errors.New("forbidden")

// Caller identifies the authenticated user behind a request. It is built
// once from the verified JWT claims and passed into every service call.
type Caller struct {
	ID   uint
	Role string
	Name string
	NIM  string
}

// IsTeacher reports whether the caller holds the teacher role.
func (c Caller) IsTeacher() bool {
	return c.Role == RoleTeacher
}

// IsStudent reports whether the caller holds the student role.
func (c Caller) IsStudent() bool {
	return c.Role == RoleStudent
}

// EnsureRole fails with ErrForbidden unless the caller holds the required
// role. It runs before any lookup or mutation in a service operation.
func EnsureRole(caller Caller, required string) error {
	if caller.ID == 0 || caller.Role != required {
		return ErrForbidden
	}
	return nil
}
