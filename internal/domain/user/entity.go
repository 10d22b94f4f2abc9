package user

import "context"

type Role string

const (
	RoleOwner    Role = "owner"    // Company owner - full access
	RoleManager  Role = "manager"  // Can approve and correct attendance
	RoleEmployee Role = "employee" // Regular employee
	RolePending  Role = "pending"  // Still in onboarding
)

// Actor is the authenticated caller acting inside one company.
type Actor struct {
	UserID     string
	EmployeeID *string
	CompanyID  string
	Role       Role
}

// Authorizer resolves the acting user for a company-scoped operation.
// It fails with ErrAccessDenied when the caller lacks the permission or
// is not a member of companyID.
type Authorizer interface {
	Authorize(ctx context.Context, companyID string, permission Permission) (Actor, error)
}
