package api

import (
	"context"
	"net/http"

	"github.com/julienschmidt/httprouter"

	apiContext "burnstop/internal/api/context"
	"burnstop/internal/api/handlers"
	"burnstop/internal/api/middleware"
	"burnstop/internal/platform/models"
)

type Dependencies struct {
	AuthHandler        *handlers.AuthHandler
	OrgHandler         *handlers.OrgHandler
	ServiceHandler     *handlers.ServiceHandler
	ReminderHandler    *handlers.ReminderHandler
	IntegrationHandler *handlers.IntegrationHandler
	HealthHandler      *handlers.HealthHandler

	AuthMiddleware       *middleware.AuthMiddleware
	MembershipMiddleware *middleware.MembershipMiddleware
	RateLimiter          *middleware.RateLimiter
}

func NewRouter(deps *Dependencies) *httprouter.Router {
	router := httprouter.New()

	authMid := deps.AuthMiddleware
	member := deps.MembershipMiddleware.Require(models.RoleMember)
	moderator := deps.MembershipMiddleware.Require(models.RoleModerator)
	owner := deps.MembershipMiddleware.Require(models.RoleOwner)
	limited := deps.RateLimiter.Handle

	router.GET("/health", wrap(deps.HealthHandler.Check))

	// Authentication routes
	router.POST("/api/v1/auth/signup", chain(deps.AuthHandler.Signup, limited))
	router.POST("/api/v1/auth/login", chain(deps.AuthHandler.Login, limited))
	router.GET("/api/v1/auth/me", chain(deps.AuthHandler.Me, authMid.Handle))

	// Organization management
	router.POST("/api/v1/organizations",
		chain(deps.OrgHandler.Create, authMid.Handle, limited))
	router.GET("/api/v1/organizations",
		chain(deps.OrgHandler.List, authMid.Handle))
	router.GET("/api/v1/organizations/:org_id",
		chain(deps.OrgHandler.Get, authMid.Handle, member))
	router.DELETE("/api/v1/organizations/:org_id",
		chain(deps.OrgHandler.Delete, authMid.Handle, owner, limited))
	router.PUT("/api/v1/organizations/:org_id/budget",
		chain(deps.OrgHandler.UpdateBudget, authMid.Handle, moderator, limited))

	// Membership management
	router.GET("/api/v1/organizations/:org_id/members",
		chain(deps.OrgHandler.Members, authMid.Handle, member))
	router.POST("/api/v1/organizations/:org_id/members",
		chain(deps.OrgHandler.AddUser, authMid.Handle, moderator, limited))
	router.DELETE("/api/v1/organizations/:org_id/members/:user_id",
		chain(deps.OrgHandler.RemoveUser, authMid.Handle, moderator, limited))
	router.GET("/api/v1/organizations/:org_id/moderators",
		chain(deps.OrgHandler.Moderators, authMid.Handle, member))
	router.POST("/api/v1/organizations/:org_id/moderators",
		chain(deps.OrgHandler.AddModerator, authMid.Handle, owner, limited))
	router.DELETE("/api/v1/organizations/:org_id/moderators/:user_id",
		chain(deps.OrgHandler.RemoveModerator, authMid.Handle, owner, limited))

	// Service tracking
	router.POST("/api/v1/organizations/:org_id/services",
		chain(deps.ServiceHandler.Create, authMid.Handle, member, limited))
	router.GET("/api/v1/organizations/:org_id/services",
		chain(deps.ServiceHandler.List, authMid.Handle, member))
	router.GET("/api/v1/organizations/:org_id/services/:service_id",
		chain(deps.ServiceHandler.Get, authMid.Handle, member))
	router.PUT("/api/v1/organizations/:org_id/services/:service_id",
		chain(deps.ServiceHandler.Update, authMid.Handle, member, limited))
	router.DELETE("/api/v1/organizations/:org_id/services/:service_id",
		chain(deps.ServiceHandler.Delete, authMid.Handle, member, limited))

	// Cost analytics
	router.GET("/api/v1/organizations/:org_id/analytics",
		chain(deps.ServiceHandler.Analytics, authMid.Handle, member))

	// Renewal reminders
	router.GET("/api/v1/organizations/:org_id/reminders",
		chain(deps.ReminderHandler.Upcoming, authMid.Handle, member))
	router.POST("/api/v1/organizations/:org_id/reminders/:reminder_id/acknowledge",
		chain(deps.ReminderHandler.Acknowledge, authMid.Handle, member, limited))

	// Notification integrations, owner only
	router.GET("/api/v1/organizations/:org_id/integrations",
		chain(deps.IntegrationHandler.List, authMid.Handle, owner))
	router.POST("/api/v1/organizations/:org_id/integrations",
		chain(deps.IntegrationHandler.Create, authMid.Handle, owner, limited))
	router.GET("/api/v1/organizations/:org_id/integrations/:type",
		chain(deps.IntegrationHandler.Get, authMid.Handle, owner))
	router.PUT("/api/v1/organizations/:org_id/integrations/:type",
		chain(deps.IntegrationHandler.Update, authMid.Handle, owner, limited))
	router.DELETE("/api/v1/organizations/:org_id/integrations/:type",
		chain(deps.IntegrationHandler.Delete, authMid.Handle, owner, limited))
	router.POST("/api/v1/organizations/:org_id/integrations/:type/test",
		chain(deps.IntegrationHandler.Test, authMid.Handle, owner))

	// Manual alerts and integration smoke-testing
	router.POST("/api/v1/organizations/:org_id/alerts",
		chain(deps.IntegrationHandler.SendAlert, authMid.Handle, owner, limited))
	router.POST("/api/v1/organizations/:org_id/alerts/test",
		chain(deps.IntegrationHandler.TestAll, authMid.Handle, owner))
	router.GET("/api/v1/organizations/:org_id/test-integrations",
		chain(deps.IntegrationHandler.TestConfigurations, authMid.Handle, owner))
	router.POST("/api/v1/organizations/:org_id/test-integrations",
		chain(deps.IntegrationHandler.SetupTestIntegrations, authMid.Handle, owner, limited))

	return router
}

// Helper function to chain middlewares
func chain(handler http.HandlerFunc, middlewares ...func(http.HandlerFunc) http.HandlerFunc) httprouter.Handle {
	for i := len(middlewares) - 1; i >= 0; i-- {
		handler = middlewares[i](handler)
	}
	return wrap(handler)
}

// Convert http.HandlerFunc to httprouter.Handle
func wrap(handler http.HandlerFunc) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		// Inject params into context
		ctx := context.WithValue(r.Context(), apiContext.Params, ps)
		handler(w, r.WithContext(ctx))
	}
}
