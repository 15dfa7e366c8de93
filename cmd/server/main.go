package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"rottencompany/internal/config"
	"rottencompany/internal/db"
	"rottencompany/internal/email"
	"rottencompany/internal/jobs"
	"rottencompany/internal/metrics"
	"rottencompany/internal/moderation"
	"rottencompany/internal/score"
	"rottencompany/internal/server"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := config.Load()

	yamlCfg, err := config.LoadYAMLConfig()
	if err != nil {
		log.Fatalf("Failed to load config file: %v", err)
	}

	mode, err := score.ParseMode(cfg.NormalizationMode)
	if err != nil {
		log.Fatalf("Invalid NORMALIZATION_MODE: %v", err)
	}

	// Initialize database
	database, err := db.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	// Run migrations
	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Migrations completed successfully")

	if cfg.IsDev() {
		if err := database.SeedDevEntities(ctx); err != nil {
			log.Printf("Warning: Failed to seed dev entities: %v", err)
		}
	}

	// Notifications
	mailer := email.NewService(cfg)
	notifier := email.NewNotifier(cfg, database, mailer, yamlCfg.ExtraModeratorRecipients())

	// Moderation workflow
	gate := moderation.NewGate(database, cfg.GateBlockThreshold, cfg.GateAttentionLimit)
	workflow := moderation.NewService(database, notifier, gate)
	flavorer := score.NewFlavorer(yamlCfg.FlavorOverrides())

	metrics.Init(database)

	// Outbox jobs wait in the table until SMTP is configured
	if cfg.UsesOutbox() && mailer.IsEnabled() {
		worker := jobs.NewNotificationWorker(database, notifier, cfg.NotifyWorkerInterval, cfg.NotifyMaxAttempts)
		go worker.Start(ctx)
	}

	srv := server.New(cfg)
	if err := srv.RegisterRoutes(ctx, database, workflow, flavorer, mode); err != nil {
		log.Fatalf("Failed to register routes: %v", err)
	}

	// Graceful shutdown
	go func() {
		if err := srv.Start(); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Printf("Server started on %s (normalization: %s, delivery: %s)", cfg.ServerAddr, mode, cfg.EmailDelivery)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	cancel()
	if err := srv.Shutdown(); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}
	log.Println("Server exited")
}
