package main

import (
	"fmt"
	"log"
	"net/http"

	"burnstop/internal/api"
	"burnstop/internal/api/handlers"
	"burnstop/internal/api/middleware"
	"burnstop/internal/engine/analytics"
	"burnstop/internal/engine/notify"
	"burnstop/internal/engine/reminders"
	"burnstop/internal/pkg/logger"
	"burnstop/internal/platform/auth"
	"burnstop/internal/platform/config"
	"burnstop/internal/platform/repositories"
	"burnstop/internal/platform/store"
)

func main() {
	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Init(cfg.Logging)

	kv := store.New(cfg.Redis)
	defer kv.Close()

	// Repositories
	userRepo := repositories.NewUserRepository(kv)
	orgRepo := repositories.NewOrganizationRepository(kv)
	serviceRepo := repositories.NewServiceRepository(kv)
	integrationRepo := repositories.NewIntegrationRepository(kv)

	// Services
	tokenSvc := auth.NewTokenService(cfg.JWT)
	reminderIndex := reminders.NewIndex(kv)
	reminderSvc := reminders.NewService(reminderIndex, kv, serviceRepo)
	fanout := notify.NewFanout(userRepo, integrationRepo, cfg.Notify.SinkTimeout)
	analyticsSvc := analytics.NewService(serviceRepo)

	// Handlers
	authHandler := handlers.NewAuthHandler(userRepo, tokenSvc)
	orgHandler := handlers.NewOrgHandler(orgRepo, userRepo, serviceRepo, integrationRepo, reminderIndex)
	serviceHandler := handlers.NewServiceHandler(serviceRepo, reminderIndex, fanout, analyticsSvc)
	reminderHandler := handlers.NewReminderHandler(reminderSvc)
	integrationHandler := handlers.NewIntegrationHandler(integrationRepo, fanout)
	healthHandler := handlers.NewHealthHandler(kv)

	// Middleware
	authMiddleware := middleware.NewAuthMiddleware(tokenSvc)
	membershipMiddleware := middleware.NewMembershipMiddleware(orgRepo)
	rateLimiter := middleware.NewRateLimiter(cfg.RateLimit.WritePerMinute)
	defer rateLimiter.Close()

	// Router
	deps := &api.Dependencies{
		AuthHandler:          authHandler,
		OrgHandler:           orgHandler,
		ServiceHandler:       serviceHandler,
		ReminderHandler:      reminderHandler,
		IntegrationHandler:   integrationHandler,
		HealthHandler:        healthHandler,
		AuthMiddleware:       authMiddleware,
		MembershipMiddleware: membershipMiddleware,
		RateLimiter:          rateLimiter,
	}
	router := api.NewRouter(deps)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	log.Printf("Server starting on %s", addr)
	if err := server.ListenAndServe(); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
