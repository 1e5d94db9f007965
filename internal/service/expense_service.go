package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"budgetlink/internal/dto"
	"budgetlink/internal/events"
	"budgetlink/internal/models"
	"budgetlink/internal/repository"
	"budgetlink/pkg/metrics"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// LedgerRepo is the transactional slice of the expense repository: every
// write is paired with its ledger adjustment inside one store transaction.
type LedgerRepo interface {
	CreateWithLedger(ctx context.Context, expense *models.Expense) (float64, error)
	UpdateWithLedger(ctx context.Context, expense *models.Expense) (float64, error)
	DeleteWithLedger(ctx context.Context, id uuid.UUID) (*models.Expense, float64, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Expense, error)
	ListByBudget(ctx context.Context, budgetID uuid.UUID) ([]*models.Expense, error)
	ConsumptionReport(ctx context.Context, budgetID uuid.UUID, start, end time.Time) ([]models.DateTotal, error)
	CategoryReport(ctx context.Context, budgetID uuid.UUID, start, end time.Time) ([]models.CategoryCount, error)
}

// ExpenseService is the consumption ledger and report generator.
type ExpenseService struct {
	expenses  LedgerRepo
	publisher events.Publisher
	logger    *zap.Logger
}

func NewExpenseService(expenses LedgerRepo, publisher events.Publisher, logger *zap.Logger) *ExpenseService {
	return &ExpenseService{
		expenses:  expenses,
		publisher: publisher,
		logger:    logger,
	}
}

// Record validates the expense and writes it through the ledger: the active
// snapshot's running total and the expense row change together or not at
// all.
func (s *ExpenseService) Record(ctx context.Context, req *dto.CreateExpenseRequest) (*dto.LedgerEntryResponse, error) {
	budgetID, err := uuid.Parse(req.BudgetID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid budget id", ErrValidation)
	}
	if err := validateExpenseFields(req.Description, req.Value, req.CategoryID); err != nil {
		return nil, err
	}

	now := time.Now()
	expenseDate := req.ExpenseDate
	if expenseDate.IsZero() {
		expenseDate = now
	}

	expense := &models.Expense{
		ID:          uuid.New(),
		Description: req.Description,
		Value:       req.Value,
		FileName:    req.FileName,
		FileData:    req.FileData,
		ExpenseDate: expenseDate,
		CategoryID:  req.CategoryID,
		BudgetID:    budgetID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	total, err := s.expenses.CreateWithLedger(ctx, expense)
	if err != nil {
		if errors.Is(err, repository.ErrNoActiveSnapshot) {
			return nil, ErrBudgetHistoryNotFound
		}
		return nil, fmt.Errorf("record expense: %w", err)
	}

	metrics.ExpensesRecorded.Inc()
	metrics.ConsumptionTotal.Add(expense.Value)
	s.publish(ctx, events.KindExpenseRecorded, expense.ID, budgetID, expense.Value, total)

	s.logger.Info("Expense recorded",
		zap.String("expense_id", expense.ID.String()),
		zap.String("budget_id", budgetID.String()),
		zap.Float64("value", expense.Value),
		zap.Float64("current_consumption", total),
	)

	return &dto.LedgerEntryResponse{
		Expense:            *expenseToResponse(expense),
		CurrentConsumption: total,
	}, nil
}

// Update replaces the expense's mutable fields. The active snapshot is
// delta-adjusted by the value change in the same transaction so the running
// total keeps matching the stored rows.
func (s *ExpenseService) Update(ctx context.Context, req *dto.UpdateExpenseRequest) (*dto.LedgerEntryResponse, error) {
	id, err := uuid.Parse(req.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid expense id", ErrValidation)
	}
	if err := validateExpenseFields(req.Description, req.Value, req.CategoryID); err != nil {
		return nil, err
	}

	expense := &models.Expense{
		ID:          id,
		Description: req.Description,
		Value:       req.Value,
		FileName:    req.FileName,
		FileData:    req.FileData,
		ExpenseDate: req.ExpenseDate,
		CategoryID:  req.CategoryID,
		UpdatedAt:   time.Now(),
	}
	if expense.ExpenseDate.IsZero() {
		expense.ExpenseDate = expense.UpdatedAt
	}

	total, err := s.expenses.UpdateWithLedger(ctx, expense)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrExpenseNotFound
		case errors.Is(err, repository.ErrNoActiveSnapshot):
			return nil, ErrBudgetHistoryNotFound
		}
		return nil, fmt.Errorf("update expense: %w", err)
	}

	metrics.ExpensesUpdated.Inc()
	s.publish(ctx, events.KindExpenseUpdated, expense.ID, expense.BudgetID, expense.Value, total)

	return &dto.LedgerEntryResponse{
		Expense:            *expenseToResponse(expense),
		CurrentConsumption: total,
	}, nil
}

// Delete removes the expense and subtracts its value from the active
// snapshot in the same transaction.
func (s *ExpenseService) Delete(ctx context.Context, id uuid.UUID) (*dto.LedgerEntryResponse, error) {
	expense, total, err := s.expenses.DeleteWithLedger(ctx, id)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrExpenseNotFound
		case errors.Is(err, repository.ErrNoActiveSnapshot):
			return nil, ErrBudgetHistoryNotFound
		}
		return nil, fmt.Errorf("delete expense: %w", err)
	}

	metrics.ExpensesDeleted.Inc()
	s.publish(ctx, events.KindExpenseDeleted, expense.ID, expense.BudgetID, -expense.Value, total)

	return &dto.LedgerEntryResponse{
		Expense:            *expenseToResponse(expense),
		CurrentConsumption: total,
	}, nil
}

func (s *ExpenseService) Get(ctx context.Context, id uuid.UUID) (*dto.ExpenseResponse, error) {
	expense, err := s.expenses.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrExpenseNotFound
		}
		return nil, fmt.Errorf("get expense: %w", err)
	}
	return expenseToResponse(expense), nil
}

func (s *ExpenseService) ListByBudget(ctx context.Context, budgetID uuid.UUID) ([]*dto.ExpenseResponse, error) {
	expenses, err := s.expenses.ListByBudget(ctx, budgetID)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}

	resp := make([]*dto.ExpenseResponse, 0, len(expenses))
	for _, expense := range expenses {
		resp = append(resp, expenseToResponse(expense))
	}
	return resp, nil
}

// ConsumptionReport sums the budget's expenses over the inclusive window
// [start, end], grouped by exact expense_date value.
func (s *ExpenseService) ConsumptionReport(ctx context.Context, req *dto.ReportRequest) ([]dto.ConsumptionReportRow, error) {
	budgetID, start, end, err := parseReportRequest(req)
	if err != nil {
		return nil, err
	}

	totals, err := s.expenses.ConsumptionReport(ctx, budgetID, start, end)
	if err != nil {
		return nil, fmt.Errorf("consumption report: %w", err)
	}

	metrics.ReportRequests.WithLabelValues("consumption").Inc()

	rows := make([]dto.ConsumptionReportRow, 0, len(totals))
	for _, total := range totals {
		rows = append(rows, dto.ConsumptionReportRow{
			ExpenseDate: total.ExpenseDate.Format(time.RFC3339),
			TotalValue:  total.Total,
		})
	}
	return rows, nil
}

// CategoryReport counts the budget's expenses per category over the same
// inclusive window.
func (s *ExpenseService) CategoryReport(ctx context.Context, req *dto.ReportRequest) ([]dto.CategoryReportRow, error) {
	budgetID, start, end, err := parseReportRequest(req)
	if err != nil {
		return nil, err
	}

	counts, err := s.expenses.CategoryReport(ctx, budgetID, start, end)
	if err != nil {
		return nil, fmt.Errorf("category report: %w", err)
	}

	metrics.ReportRequests.WithLabelValues("category").Inc()

	rows := make([]dto.CategoryReportRow, 0, len(counts))
	for _, count := range counts {
		rows = append(rows, dto.CategoryReportRow{
			CategoryID: count.CategoryID,
			Count:      count.Count,
		})
	}
	return rows, nil
}

func (s *ExpenseService) publish(ctx context.Context, kind string, expenseID, budgetID uuid.UUID, delta, total float64) {
	event := events.NewLedgerEvent(kind, expenseID, budgetID, delta, total)
	if err := s.publisher.PublishLedgerEvent(ctx, event); err != nil {
		s.logger.Warn("Failed to publish ledger event",
			zap.String("kind", kind),
			zap.Error(err),
		)
	}
}

func validateExpenseFields(description string, value float64, categoryID int) error {
	if description == "" {
		return fmt.Errorf("%w: description is required", ErrValidation)
	}
	if value <= 0 {
		return fmt.Errorf("%w: value must be positive", ErrValidation)
	}
	if !models.ValidCategory(categoryID) {
		return fmt.Errorf("%w: unknown category %d", ErrValidation, categoryID)
	}
	return nil
}

func parseReportRequest(req *dto.ReportRequest) (uuid.UUID, time.Time, time.Time, error) {
	budgetID, err := uuid.Parse(req.BudgetID)
	if err != nil {
		return uuid.Nil, time.Time{}, time.Time{}, fmt.Errorf("%w: invalid budget id", ErrValidation)
	}
	start, err := parseReportDate(req.StartDate)
	if err != nil {
		return uuid.Nil, time.Time{}, time.Time{}, fmt.Errorf("%w: invalid start_date", ErrValidation)
	}
	end, err := parseReportDate(req.EndDate)
	if err != nil {
		return uuid.Nil, time.Time{}, time.Time{}, fmt.Errorf("%w: invalid end_date", ErrValidation)
	}
	if end.Before(start) {
		return uuid.Nil, time.Time{}, time.Time{}, fmt.Errorf("%w: end_date before start_date", ErrValidation)
	}
	return budgetID, start, end, nil
}

func parseReportDate(value string) (time.Time, error) {
	if t, err := time.Parse(time.DateOnly, value); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, value)
}

func expenseToResponse(expense *models.Expense) *dto.ExpenseResponse {
	return &dto.ExpenseResponse{
		ID:          expense.ID.String(),
		Description: expense.Description,
		Value:       expense.Value,
		FileName:    expense.FileName,
		ExpenseDate: expense.ExpenseDate.Format(time.RFC3339),
		CategoryID:  expense.CategoryID,
		BudgetID:    expense.BudgetID.String(),
		CreatedAt:   expense.CreatedAt.Format(time.RFC3339),
	}
}
