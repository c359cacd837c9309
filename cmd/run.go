package cmd

import (
	"context"
	"fmt"
	"log"
	"time"

	"tipster/api"
	"tipster/bot"
	"tipster/config"
	"tipster/database"
	"tipster/events"
	"tipster/repository"
	"tipster/scheduler"
	"tipster/service"
)

// Run initializes and starts the application
func Run(ctx context.Context) error {
	log.Println("Starting tipster bot...")

	// Load configuration
	cfg := config.Get()

	// Initialize database connection
	log.Println("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Println("Database connection established successfully")

	// Initialize event bus
	eventBus := events.NewBus()

	// Initialize unit of work factory
	uowFactory := repository.NewUnitOfWorkFactory(db, eventBus)

	// Initialize services
	log.Println("Initializing services...")
	userService := service.NewUserService(uowFactory)
	predictionService := service.NewPredictionService(uowFactory)
	matchService := service.NewMatchService(uowFactory)
	settlementService := service.NewSettlementService(uowFactory, eventBus)
	seasonService := service.NewSeasonService(uowFactory)
	pointsService := service.NewPointsService(uowFactory)
	statsService := service.NewStatsService(uowFactory)
	adminService := service.NewAdminService(uowFactory)
	log.Println("Services initialized successfully")

	// Seed super admins from configuration
	if err := adminService.EnsureSuperAdmins(ctx, cfg.SuperAdminIDs); err != nil {
		return fmt.Errorf("failed to ensure super admins: %w", err)
	}

	// Initialize Telegram bot
	log.Println("Initializing Telegram bot...")
	botConfig := bot.Config{
		Token:           cfg.TelegramToken,
		LeaderboardSize: cfg.LeaderboardSize,
	}
	services := bot.Services{
		Users:       userService,
		Predictions: predictionService,
		Matches:     matchService,
		Settlement:  settlementService,
		Seasons:     seasonService,
		Points:      pointsService,
		Stats:       statsService,
		Admins:      adminService,
	}
	telegramBot, err := bot.New(botConfig, services, eventBus)
	if err != nil {
		return fmt.Errorf("failed to initialize Telegram bot: %w", err)
	}
	log.Println("Telegram bot initialized successfully")

	// Kickoff reminders run on a schedule and deliver through the bot
	notificationService := service.NewNotificationService(uowFactory, telegramBot, cfg.ReminderMinLead, cfg.ReminderMaxLead)
	jobs, err := scheduler.New(notificationService)
	if err != nil {
		return fmt.Errorf("failed to create scheduler: %w", err)
	}
	if err := jobs.Start(ctx); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}

	// Status API
	statusServer := api.NewServer(cfg.HTTPAddr, db, seasonService, matchService)
	go func() {
		if err := statusServer.Start(); err != nil {
			log.Printf("Status API error: %v", err)
		}
	}()

	botErr := make(chan error, 1)
	go func() {
		botErr <- telegramBot.Run(ctx)
	}()

	log.Printf("Bot is running in %s mode...", cfg.Environment)

	select {
	case <-ctx.Done():
	case err := <-botErr:
		if err != nil {
			log.Printf("Bot stopped with error: %v", err)
		}
	}

	// Cleanup resources
	log.Println("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := jobs.Stop(); err != nil {
		log.Printf("Error stopping scheduler: %v", err)
	}
	if err := statusServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error stopping status API: %v", err)
	}

	log.Println("Closing database connection...")
	db.Close()

	log.Println("Shutdown completed")
	return nil
}
