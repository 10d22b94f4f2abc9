package authz

import (
	"context"
	"log/slog"

	"github.com/cmlabs-hris/dtr-backend-go/internal/domain/user"
	"github.com/go-chi/jwtauth/v5"
)

// ClaimsAuthorizer resolves the actor from the verified access token that
// jwtauth.Verifier placed on the request context.
type ClaimsAuthorizer struct{}

func NewClaimsAuthorizer() *ClaimsAuthorizer {
	return &ClaimsAuthorizer{}
}

// Authorize implements user.Authorizer.
func (a *ClaimsAuthorizer) Authorize(ctx context.Context, companyID string, permission user.Permission) (user.Actor, error) {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil || claims == nil {
		return user.Actor{}, user.ErrAccessDenied
	}

	userID, _ := claims["user_id"].(string)
	roleStr, _ := claims["role"].(string)
	claimCompanyID, _ := claims["company_id"].(string)
	if userID == "" || claimCompanyID == "" {
		return user.Actor{}, user.ErrAccessDenied
	}

	if claimCompanyID != companyID {
		slog.Warn("Cross-company access attempt",
			"user_id", userID,
			"token_company_id", claimCompanyID,
			"requested_company_id", companyID,
		)
		return user.Actor{}, user.ErrAccessDenied
	}

	role := user.Role(roleStr)
	if !user.HasPermission(role, permission) {
		slog.Debug("Permission denied", "user_id", userID, "role", role, "permission", permission)
		return user.Actor{}, user.ErrAccessDenied
	}

	actor := user.Actor{
		UserID:    userID,
		CompanyID: claimCompanyID,
		Role:      role,
	}
	if employeeID, ok := claims["employee_id"].(string); ok && employeeID != "" {
		actor.EmployeeID = &employeeID
	}

	return actor, nil
}
