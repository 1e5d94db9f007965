package main

import (
	"context"
	"errors"
	"log"
	"time"

	"budgetlink/internal/dto"
	"budgetlink/internal/events"
	"budgetlink/internal/models"
	"budgetlink/internal/repository"
	"budgetlink/internal/service"
	"budgetlink/pkg/auth"
	"budgetlink/pkg/codegen"
	"budgetlink/pkg/config"
	"budgetlink/pkg/logger"
	"budgetlink/pkg/postgres"

	"go.uber.org/zap"
)

// Seeds a demo admin/consumer pair, links a budget between them and records a
// few expenses. Everything goes through the service layer so the history
// snapshot totals stay consistent with the expense rows.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Init(cfg.Logger.Level); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()
	appLogger := logger.Get()

	ctx := context.Background()
	db, err := postgres.NewPool(ctx, &cfg.Database, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := postgres.RunMigrations(&cfg.Database); err != nil {
		appLogger.Fatal("Failed to run migrations", zap.Error(err))
	}

	userRepo := repository.NewUserRepository(db, appLogger)
	budgetRepo := repository.NewBudgetRepository(db, appLogger)
	historyRepo := repository.NewBudgetHistoryRepository(db, appLogger)
	expenseRepo := repository.NewExpenseRepository(db, appLogger)

	jwtManager := auth.NewJWTManager(cfg.JWT.SecretKey, cfg.JWT.Expiration)
	userService := service.NewUserService(userRepo, codegen.New(), jwtManager, cfg.Codes.MaxAttempts, appLogger)
	budgetService := service.NewBudgetService(budgetRepo, historyRepo, expenseRepo, appLogger)
	expenseService := service.NewExpenseService(expenseRepo, events.NewNoopPublisher(), appLogger)

	appLogger.Info("Starting database seeding...")

	admin, err := userService.Create(ctx, &dto.CreateUserRequest{
		Name:     "Demo Admin",
		Email:    "admin@budgetlink.local",
		Password: "admin-password",
		Role:     string(models.RoleAdmin),
	})
	if err != nil {
		if errors.Is(err, service.ErrUserExists) {
			appLogger.Info("Demo users already exist, nothing to do")
			return
		}
		appLogger.Fatal("Failed to create admin", zap.Error(err))
	}

	consumer, err := userService.Create(ctx, &dto.CreateUserRequest{
		Name:     "Demo Consumer",
		Email:    "consumer@budgetlink.local",
		Password: "consumer-password",
		Role:     string(models.RoleConsumer),
	})
	if err != nil {
		appLogger.Fatal("Failed to create consumer", zap.Error(err))
	}
	if consumer.Code != nil {
		appLogger.Info("Consumer linking code", zap.String("code", *consumer.Code))
	}

	budget, err := budgetService.Create(ctx, &dto.CreateBudgetRequest{
		AdminID:          admin.ID,
		ConsumerID:       consumer.ID,
		AdminNickname:    "Household",
		ConsumerNickname: "Household",
	})
	if err != nil {
		appLogger.Fatal("Failed to create budget", zap.Error(err))
	}

	linked := string(models.StatusLinked)
	if _, err := budgetService.Update(ctx, &dto.UpdateBudgetRequest{
		ID:     budget.ID,
		Status: &linked,
	}); err != nil {
		appLogger.Fatal("Failed to link budget", zap.Error(err))
	}

	today := time.Now().Truncate(24 * time.Hour)
	expenses := []dto.CreateExpenseRequest{
		{Description: "Weekly groceries", Value: 84.50, ExpenseDate: today.AddDate(0, 0, -3), CategoryID: int(models.CategoryFood), BudgetID: budget.ID},
		{Description: "Metro pass", Value: 30.00, ExpenseDate: today.AddDate(0, 0, -2), CategoryID: int(models.CategoryTransport), BudgetID: budget.ID},
		{Description: "Cinema tickets", Value: 22.00, ExpenseDate: today.AddDate(0, 0, -1), CategoryID: int(models.CategoryLeisure), BudgetID: budget.ID},
		{Description: "Light bulbs", Value: 14.75, ExpenseDate: today, CategoryID: int(models.CategoryHome), BudgetID: budget.ID},
	}

	for i := range expenses {
		entry, err := expenseService.Record(ctx, &expenses[i])
		if err != nil {
			appLogger.Fatal("Failed to record expense", zap.String("description", expenses[i].Description), zap.Error(err))
		}
		appLogger.Info("Recorded expense",
			zap.String("description", entry.Expense.Description),
			zap.Float64("running_total", entry.CurrentConsumption),
		)
	}

	appLogger.Info("Database seeding completed successfully!")
}
