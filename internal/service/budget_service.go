package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"budgetlink/internal/dto"
	"budgetlink/internal/models"
	"budgetlink/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type BudgetRepo interface {
	Create(ctx context.Context, budget *models.Budget) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Budget, error)
	ListForUser(ctx context.Context, userID uuid.UUID, status models.BudgetStatus) ([]*models.Budget, error)
	Update(ctx context.Context, budget *models.Budget) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type SnapshotRepo interface {
	Create(ctx context.Context, history *models.BudgetHistory) error
	GetActive(ctx context.Context, budgetID uuid.UUID) (*models.BudgetHistory, error)
	ListByBudget(ctx context.Context, budgetID uuid.UUID) ([]*models.BudgetHistory, error)
}

// CategoryAggregator supplies the grouped expense sums the percentage
// computation divides against the running total.
type CategoryAggregator interface {
	SumByCategory(ctx context.Context, budgetID uuid.UUID) ([]models.CategorySum, error)
}

// BudgetService is the budget registry and percentage aggregator.
type BudgetService struct {
	budgets   BudgetRepo
	snapshots SnapshotRepo
	expenses  CategoryAggregator
	logger    *zap.Logger
}

func NewBudgetService(budgets BudgetRepo, snapshots SnapshotRepo, expenses CategoryAggregator, logger *zap.Logger) *BudgetService {
	return &BudgetService{
		budgets:   budgets,
		snapshots: snapshots,
		expenses:  expenses,
		logger:    logger,
	}
}

// Create registers a new PENDING budget. No history snapshot exists until
// the budget transitions to LINKED.
func (s *BudgetService) Create(ctx context.Context, req *dto.CreateBudgetRequest) (*dto.BudgetResponse, error) {
	adminID, err := uuid.Parse(req.AdminID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid admin id", ErrValidation)
	}
	consumerID, err := uuid.Parse(req.ConsumerID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid consumer id", ErrValidation)
	}
	if adminID == consumerID {
		return nil, fmt.Errorf("%w: admin and consumer must be distinct users", ErrValidation)
	}

	budget := &models.Budget{
		ID:               uuid.New(),
		AdminID:          adminID,
		ConsumerID:       consumerID,
		AdminNickname:    req.AdminNickname,
		ConsumerNickname: req.ConsumerNickname,
		Status:           models.StatusPending,
		CreatedAt:        time.Now(),
	}

	if err := s.budgets.Create(ctx, budget); err != nil {
		return nil, fmt.Errorf("create budget: %w", err)
	}

	s.logger.Info("Budget created",
		zap.String("budget_id", budget.ID.String()),
		zap.String("admin_id", adminID.String()),
		zap.String("consumer_id", consumerID.String()),
	)

	return budgetToResponse(budget), nil
}

func (s *BudgetService) Get(ctx context.Context, id uuid.UUID) (*dto.BudgetResponse, error) {
	budget, err := s.budgets.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrBudgetNotFound
		}
		return nil, fmt.Errorf("get budget: %w", err)
	}
	return budgetToResponse(budget), nil
}

// Update mutates nicknames and status. A transition into LINKED opens the
// budget's first history snapshot at zero consumption; re-linking never
// creates a second one.
func (s *BudgetService) Update(ctx context.Context, req *dto.UpdateBudgetRequest) (*dto.BudgetResponse, error) {
	id, err := uuid.Parse(req.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid budget id", ErrValidation)
	}

	budget, err := s.budgets.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrBudgetNotFound
		}
		return nil, fmt.Errorf("get budget: %w", err)
	}

	linked := false
	if req.Status != nil {
		next := models.BudgetStatus(*req.Status)
		if !next.Valid() {
			return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, *req.Status)
		}
		if !budget.Status.CanTransitionTo(next) {
			return nil, fmt.Errorf("%w: cannot transition from %s to %s", ErrValidation, budget.Status, next)
		}
		linked = next == models.StatusLinked && budget.Status != models.StatusLinked
		budget.Status = next
	}
	if req.AdminNickname != nil {
		budget.AdminNickname = *req.AdminNickname
	}
	if req.ConsumerNickname != nil {
		budget.ConsumerNickname = *req.ConsumerNickname
	}

	if err := s.budgets.Update(ctx, budget); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrBudgetNotFound
		}
		return nil, fmt.Errorf("update budget: %w", err)
	}

	if linked {
		if err := s.ensureSnapshot(ctx, budget.ID); err != nil {
			return nil, err
		}
	}

	return budgetToResponse(budget), nil
}

func (s *BudgetService) ensureSnapshot(ctx context.Context, budgetID uuid.UUID) error {
	_, err := s.snapshots.GetActive(ctx, budgetID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("get active snapshot: %w", err)
	}

	history := &models.BudgetHistory{
		ID:                 uuid.New(),
		BudgetID:           budgetID,
		CurrentConsumption: 0,
		IsActive:           true,
		CreatedAt:          time.Now(),
	}
	if err := s.snapshots.Create(ctx, history); err != nil {
		return fmt.Errorf("create snapshot: %w", err)
	}

	s.logger.Info("Budget history snapshot opened",
		zap.String("budget_id", budgetID.String()),
		zap.String("snapshot_id", history.ID.String()),
	)
	return nil
}

func (s *BudgetService) Delete(ctx context.Context, id uuid.UUID) (*dto.BudgetResponse, error) {
	budget, err := s.budgets.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrBudgetNotFound
		}
		return nil, fmt.Errorf("get budget: %w", err)
	}

	if err := s.budgets.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrBudgetNotFound
		}
		return nil, fmt.Errorf("delete budget: %w", err)
	}

	return budgetToResponse(budget), nil
}

// ListForUser returns budgets where the user participates as admin or
// consumer, optionally filtered by status.
func (s *BudgetService) ListForUser(ctx context.Context, userID uuid.UUID, status string) ([]*dto.BudgetResponse, error) {
	st := models.BudgetStatus(status)
	if status != "" && !st.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, status)
	}

	budgets, err := s.budgets.ListForUser(ctx, userID, st)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}

	resp := make([]*dto.BudgetResponse, 0, len(budgets))
	for _, budget := range budgets {
		resp = append(resp, budgetToResponse(budget))
	}
	return resp, nil
}

// ActiveBudgets returns the user's LINKED budgets, each with its active
// snapshot and the per-category consumption percentages.
func (s *BudgetService) ActiveBudgets(ctx context.Context, userID uuid.UUID) ([]*dto.ActiveBudgetResponse, error) {
	budgets, err := s.budgets.ListForUser(ctx, userID, models.StatusLinked)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}

	resp := make([]*dto.ActiveBudgetResponse, 0, len(budgets))
	for _, budget := range budgets {
		active := &dto.ActiveBudgetResponse{
			BudgetResponse: *budgetToResponse(budget),
			Percentages:    []dto.CategoryPercentage{},
		}

		snapshot, err := s.snapshots.GetActive(ctx, budget.ID)
		if err != nil {
			if !errors.Is(err, repository.ErrNotFound) {
				return nil, fmt.Errorf("get active snapshot: %w", err)
			}
			// never linked through the registry; leave the snapshot marker empty
			resp = append(resp, active)
			continue
		}

		percentages, err := s.Percentages(ctx, snapshot)
		if err != nil {
			return nil, err
		}

		active.Snapshot = &dto.SnapshotResponse{
			ID:                 snapshot.ID.String(),
			BudgetID:           snapshot.BudgetID.String(),
			CurrentConsumption: snapshot.CurrentConsumption,
			CreatedAt:          snapshot.CreatedAt.Format(time.RFC3339),
		}
		active.Percentages = percentages
		resp = append(resp, active)
	}

	return resp, nil
}

// Percentages derives each category's share of the snapshot's running total.
// A zero total yields an empty result: nothing has been consumed, so there
// is nothing to apportion and no division takes place. Categories without
// expenses are omitted.
func (s *BudgetService) Percentages(ctx context.Context, snapshot *models.BudgetHistory) ([]dto.CategoryPercentage, error) {
	if snapshot.CurrentConsumption == 0 {
		return []dto.CategoryPercentage{}, nil
	}

	sums, err := s.expenses.SumByCategory(ctx, snapshot.BudgetID)
	if err != nil {
		return nil, fmt.Errorf("sum expenses by category: %w", err)
	}

	percentages := make([]dto.CategoryPercentage, 0, len(sums))
	for _, sum := range sums {
		percentages = append(percentages, dto.CategoryPercentage{
			CategoryID: sum.CategoryID,
			Percentage: sum.Total / snapshot.CurrentConsumption * 100,
		})
	}
	return percentages, nil
}

// History returns all of the budget's snapshots, newest first, the active
// one included.
func (s *BudgetService) History(ctx context.Context, budgetID uuid.UUID) ([]*dto.SnapshotResponse, error) {
	if _, err := s.budgets.GetByID(ctx, budgetID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrBudgetNotFound
		}
		return nil, fmt.Errorf("get budget: %w", err)
	}

	snapshots, err := s.snapshots.ListByBudget(ctx, budgetID)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}

	resp := make([]*dto.SnapshotResponse, 0, len(snapshots))
	for _, snapshot := range snapshots {
		resp = append(resp, &dto.SnapshotResponse{
			ID:                 snapshot.ID.String(),
			BudgetID:           snapshot.BudgetID.String(),
			CurrentConsumption: snapshot.CurrentConsumption,
			CreatedAt:          snapshot.CreatedAt.Format(time.RFC3339),
		})
	}
	return resp, nil
}

func budgetToResponse(budget *models.Budget) *dto.BudgetResponse {
	return &dto.BudgetResponse{
		ID:               budget.ID.String(),
		AdminID:          budget.AdminID.String(),
		ConsumerID:       budget.ConsumerID.String(),
		AdminNickname:    budget.AdminNickname,
		ConsumerNickname: budget.ConsumerNickname,
		Status:           string(budget.Status),
		CreatedAt:        budget.CreatedAt.Format(time.RFC3339),
	}
}
