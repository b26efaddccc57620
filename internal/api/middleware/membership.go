package middleware

import (
	"context"
	"net/http"

	"github.com/julienschmidt/httprouter"

	apiContext "burnstop/internal/api/context"
	"burnstop/internal/pkg/errors"
	"burnstop/internal/platform/auth"
	"burnstop/internal/platform/models"
	"burnstop/internal/platform/repositories"
)

// OrgContext is injected for org-scoped routes after the membership check
// passed. Role is the caller's role in the organization.
type OrgContext struct {
	Org  *models.Organization
	Role models.Role
}

// MembershipMiddleware is the one place org authorization happens for
// org-scoped routes: it loads the organization from the :org_id path param,
// derives the caller's role, and rejects callers below the required role.
type MembershipMiddleware struct {
	orgRepo *repositories.OrganizationRepository
}

func NewMembershipMiddleware(orgRepo *repositories.OrganizationRepository) *MembershipMiddleware {
	return &MembershipMiddleware{orgRepo: orgRepo}
}

func (m *MembershipMiddleware) Require(required models.Role) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			claims, ok := r.Context().Value(apiContext.Claims).(*auth.Claims)
			if !ok {
				errors.WriteError(w, http.StatusUnauthorized, errors.ErrCodeUnauthorized, "No authentication claims found", nil)
				return
			}

			params, _ := r.Context().Value(apiContext.Params).(httprouter.Params)
			orgID := params.ByName("org_id")
			if orgID == "" {
				errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Missing organization id", nil)
				return
			}

			org, err := m.orgRepo.GetByID(r.Context(), orgID)
			if err != nil {
				errors.WriteFromError(w, err)
				return
			}
			if org == nil {
				errors.WriteError(w, http.StatusNotFound, errors.ErrCodeNotFound, "Organization not found", nil)
				return
			}

			role := org.RoleOf(claims.UserID)
			if role < required {
				errors.WriteError(w, http.StatusForbidden, errors.ErrCodeForbidden, "Insufficient permissions", nil)
				return
			}

			ctx := context.WithValue(r.Context(), apiContext.Org, &OrgContext{Org: org, Role: role})
			next(w, r.WithContext(ctx))
		}
	}
}
