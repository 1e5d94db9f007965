package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"budgetlink/internal/api"
	"budgetlink/internal/api/handlers"
	"budgetlink/internal/events"
	"budgetlink/internal/repository"
	"budgetlink/internal/service"
	"budgetlink/pkg/auth"
	"budgetlink/pkg/codegen"
	"budgetlink/pkg/config"
	"budgetlink/pkg/logger"
	"budgetlink/pkg/postgres"

	"go.uber.org/zap"
)

// @title BudgetLink API
// @version 1.0
// @description Shared-budget expense tracking backend

// @contact.name API Support

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /

// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize global logger
	if err := logger.Init(cfg.Logger.Level); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	appLogger := logger.Get()
	appLogger.Info("Starting BudgetLink service")

	// Initialize database
	ctx := context.Background()
	db, err := postgres.NewPool(ctx, &cfg.Database, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Apply schema migrations
	if err := postgres.RunMigrations(&cfg.Database); err != nil {
		appLogger.Fatal("Failed to run migrations", zap.Error(err))
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(db, appLogger)
	budgetRepo := repository.NewBudgetRepository(db, appLogger)
	historyRepo := repository.NewBudgetHistoryRepository(db, appLogger)
	expenseRepo := repository.NewExpenseRepository(db, appLogger)

	// Initialize ledger event publisher
	var publisher events.Publisher
	if cfg.AMQP.URL != "" {
		amqpPublisher, err := events.NewAMQPPublisher(cfg.AMQP.URL, cfg.AMQP.Exchange, cfg.AMQP.Queue, appLogger)
		if err != nil {
			appLogger.Fatal("Failed to connect to message broker", zap.Error(err))
		}
		publisher = amqpPublisher
	} else {
		appLogger.Info("AMQP URL not configured, ledger events disabled")
		publisher = events.NewNoopPublisher()
	}
	defer publisher.Close()

	// Initialize JWT manager
	jwtManager := auth.NewJWTManager(cfg.JWT.SecretKey, cfg.JWT.Expiration)

	// Initialize services
	userService := service.NewUserService(userRepo, codegen.New(), jwtManager, cfg.Codes.MaxAttempts, appLogger)
	budgetService := service.NewBudgetService(budgetRepo, historyRepo, expenseRepo, appLogger)
	expenseService := service.NewExpenseService(expenseRepo, publisher, appLogger)

	// Initialize handlers
	userHandler := handlers.NewUserHandler(userService, appLogger)
	budgetHandler := handlers.NewBudgetHandler(budgetService, appLogger)
	expenseHandler := handlers.NewExpenseHandler(expenseService, appLogger)

	// Setup router
	app := api.SetupRouter(userHandler, budgetHandler, expenseHandler, jwtManager, appLogger)

	// Start server
	go func() {
		addr := ":" + cfg.Server.Port
		appLogger.Info("Server starting", zap.String("address", addr))
		if err := app.Listen(addr); err != nil {
			appLogger.Fatal("Server failed", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server")
	if err := app.Shutdown(); err != nil {
		appLogger.Error("Server shutdown error", zap.Error(err))
	}
}
