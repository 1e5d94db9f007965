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

const budgetColumns = "id, admin_id, consumer_id, admin_nickname, consumer_nickname, status, created_at"

type BudgetRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewBudgetRepository(db *pgxpool.Pool, logger *zap.Logger) *BudgetRepository {
	return &BudgetRepository{
		db:     db,
		logger: logger,
	}
}

func (r *BudgetRepository) Create(ctx context.Context, budget *models.Budget) error {
	query := squirrel.Insert("budgets").
		Columns("id", "admin_id", "consumer_id", "admin_nickname", "consumer_nickname", "status", "created_at").
		Values(budget.ID, budget.AdminID, budget.ConsumerID, budget.AdminNickname, budget.ConsumerNickname, budget.Status, budget.CreatedAt).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

func (r *BudgetRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Budget, error) {
	query := squirrel.Select(budgetColumns).
		From("budgets").
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	var budget models.Budget
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&budget.ID, &budget.AdminID, &budget.ConsumerID, &budget.AdminNickname, &budget.ConsumerNickname, &budget.Status, &budget.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return &budget, nil
}

// ListForUser returns budgets where the user is admin or consumer. An empty
// status matches all statuses.
func (r *BudgetRepository) ListForUser(ctx context.Context, userID uuid.UUID, status models.BudgetStatus) ([]*models.Budget, error) {
	query := squirrel.Select(budgetColumns).
		From("budgets").
		Where(squirrel.Or{
			squirrel.Eq{"admin_id": userID},
			squirrel.Eq{"consumer_id": userID},
		}).
		OrderBy("created_at ASC").
		PlaceholderFormat(squirrel.Dollar)

	if status != "" {
		query = query.Where(squirrel.Eq{"status": status})
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var budgets []*models.Budget
	for rows.Next() {
		var budget models.Budget
		if err := rows.Scan(
			&budget.ID, &budget.AdminID, &budget.ConsumerID, &budget.AdminNickname, &budget.ConsumerNickname, &budget.Status, &budget.CreatedAt,
		); err != nil {
			return nil, err
		}
		budgets = append(budgets, &budget)
	}

	return budgets, rows.Err()
}

func (r *BudgetRepository) Update(ctx context.Context, budget *models.Budget) error {
	query := squirrel.Update("budgets").
		Set("admin_nickname", budget.AdminNickname).
		Set("consumer_nickname", budget.ConsumerNickname).
		Set("status", budget.Status).
		Where(squirrel.Eq{"id": budget.ID}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the budget; history snapshots and expenses go with it via
// ON DELETE CASCADE.
func (r *BudgetRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := squirrel.Delete("budgets").
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
