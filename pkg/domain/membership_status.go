package domain

import dErrors "memberport/pkg/domain-errors"

// MembershipStatus is the lifecycle state of a member account.
// Invariant: the value must be one of the supported statuses.
//
// Usage: construct via ParseMembershipStatus at trust boundaries to enforce
// the allowlist; direct casting bypasses validation.
type MembershipStatus string

const (
	MembershipPending   MembershipStatus = "pending"
	MembershipActive    MembershipStatus = "active"
	MembershipSuspended MembershipStatus = "suspended"
	MembershipExpired   MembershipStatus = "expired"
)

// validMembershipStatuses is the single source of truth for valid statuses.
var validMembershipStatuses = map[MembershipStatus]bool{
	MembershipPending:   true,
	MembershipActive:    true,
	MembershipSuspended: true,
	MembershipExpired:   true,
}

// ParseMembershipStatus constructs a MembershipStatus from external input.
//
// Errors: returns CodeInvalidInput when the value is empty or unsupported.
func ParseMembershipStatus(s string) (MembershipStatus, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "membership status cannot be empty")
	}
	st := MembershipStatus(s)
	if !st.IsValid() {
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid membership status")
	}
	return st, nil
}

// IsValid checks if the status is one of the supported enum values.
func (s MembershipStatus) IsValid() bool {
	return validMembershipStatuses[s]
}

func (s MembershipStatus) String() string { return string(s) }

// Role distinguishes ordinary members from staff and administrators.
type Role string

const (
	RoleMember Role = "member"
	RoleStaff  Role = "staff"
	RoleAdmin  Role = "admin"
)

// IsStaff reports whether the role can receive data subject requests.
func (r Role) IsStaff() bool { return r == RoleStaff || r == RoleAdmin }

// IsAdmin reports whether the role may use the admin surface.
func (r Role) IsAdmin() bool { return r == RoleAdmin }
