package repository

import (
	"context"
	"errors"

	"budgetlink/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const historyColumns = "id, budget_id, current_consumption, is_active, created_at"

type BudgetHistoryRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewBudgetHistoryRepository(db *pgxpool.Pool, logger *zap.Logger) *BudgetHistoryRepository {
	return &BudgetHistoryRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a new snapshot as the budget's active one. Any previously
// active snapshot is deactivated in the same transaction so the partial
// unique index on (budget_id) WHERE is_active holds.
func (r *BudgetHistoryRepository) Create(ctx context.Context, history *models.BudgetHistory) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	deactivate := squirrel.Update("budget_history").
		Set("is_active", false).
		Where(squirrel.Eq{"budget_id": history.BudgetID, "is_active": true}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := deactivate.ToSql()
	if err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, sql, args...); err != nil {
		return err
	}

	insert := squirrel.Insert("budget_history").
		Columns("id", "budget_id", "current_consumption", "is_active", "created_at").
		Values(history.ID, history.BudgetID, history.CurrentConsumption, true, history.CreatedAt).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err = insert.ToSql()
	if err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, sql, args...); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *BudgetHistoryRepository) GetActive(ctx context.Context, budgetID uuid.UUID) (*models.BudgetHistory, error) {
	query := squirrel.Select(historyColumns).
		From("budget_history").
		Where(squirrel.Eq{"budget_id": budgetID, "is_active": true}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	var history models.BudgetHistory
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&history.ID, &history.BudgetID, &history.CurrentConsumption, &history.IsActive, &history.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return &history, nil
}

func (r *BudgetHistoryRepository) ListByBudget(ctx context.Context, budgetID uuid.UUID) ([]*models.BudgetHistory, error) {
	query := squirrel.Select(historyColumns).
		From("budget_history").
		Where(squirrel.Eq{"budget_id": budgetID}).
		OrderBy("created_at DESC").
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var histories []*models.BudgetHistory
	for rows.Next() {
		var history models.BudgetHistory
		if err := rows.Scan(
			&history.ID, &history.BudgetID, &history.CurrentConsumption, &history.IsActive, &history.CreatedAt,
		); err != nil {
			return nil, err
		}
		histories = append(histories, &history)
	}

	return histories, rows.Err()
}
