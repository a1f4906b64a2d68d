package models

import "time"

// Role is a member's role inside a company workspace
type Role string

const (
	RoleOwner Role = "owner"
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// CanInvite reports whether the role may add users to the company.
func (r Role) CanInvite() bool {
	return r == RoleOwner || r == RoleAdmin
}

// Invitable reports whether the role may be granted through an invitation.
// Ownership is never handed out by invite.
func (r Role) Invitable() bool {
	return r == RoleAdmin || r == RoleUser
}

type MembershipStatus string

const (
	MembershipPending MembershipStatus = "pending"
	MembershipActive  MembershipStatus = "active"
)

// CompanyMembership relates a user (or an invited email) to a company.
// UserID stays empty until the invitation is accepted.
type CompanyMembership struct {
	ID              string           `json:"id" db:"id"`
	UserID          *string          `json:"user_id,omitempty" db:"user_id"`
	Email           string           `json:"email" db:"email"`
	FullName        string           `json:"full_name" db:"full_name"`
	CompanyName     string           `json:"company_name" db:"company_name"`
	Role            Role             `json:"role" db:"role"`
	CanViewAllTasks bool             `json:"can_view_all_tasks" db:"can_view_all_tasks"`
	Status          MembershipStatus `json:"status" db:"status"`
	InvitedBy       *string          `json:"invited_by,omitempty" db:"invited_by"`
	CreatedAt       time.Time        `json:"created_at" db:"created_at"`
}

// MembershipSummary is the directory view of a membership
type MembershipSummary struct {
	UserID          *string `json:"user_id" db:"user_id"`
	Email           string  `json:"email" db:"email"`
	FullName        string  `json:"full_name" db:"full_name"`
	Role            Role    `json:"role" db:"role"`
	CanViewAllTasks bool    `json:"can_view_all_tasks" db:"can_view_all_tasks"`
}

// MembershipPatch carries the optional fields of a role update.
// Nil fields are left untouched.
type MembershipPatch struct {
	Role            *Role `json:"role,omitempty"`
	CanViewAllTasks *bool `json:"can_view_all_tasks,omitempty"`
}

// Empty reports whether the patch changes nothing.
func (p MembershipPatch) Empty() bool {
	return p.Role == nil && p.CanViewAllTasks == nil
}
