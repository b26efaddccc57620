package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"burnstop/internal/engine/notify"
	"burnstop/internal/engine/reminders"
	"burnstop/internal/pkg/logger"
	"burnstop/internal/platform/config"
	"burnstop/internal/platform/repositories"
	"burnstop/internal/platform/store"
	"burnstop/internal/workers"
)

func main() {
	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Init(cfg.Logging)

	kv := store.New(cfg.Redis)
	defer kv.Close()

	userRepo := repositories.NewUserRepository(kv)
	orgRepo := repositories.NewOrganizationRepository(kv)
	serviceRepo := repositories.NewServiceRepository(kv)
	integrationRepo := repositories.NewIntegrationRepository(kv)

	reminderIndex := reminders.NewIndex(kv)
	fanout := notify.NewFanout(userRepo, integrationRepo, cfg.Notify.SinkTimeout)

	scanner := workers.NewReminderScanner(
		kv, orgRepo, serviceRepo, reminderIndex, fanout,
		cfg.Worker.ScanInterval, cfg.Worker.LeadWindow,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Println("Starting BurnStop reminder worker...")
	scanner.Run(ctx)
	log.Println("Worker stopped")
}
