package repository

import (
	"context"
	"errors"
	"time"

	"budgetlink/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const expenseColumns = "id, description, value, file_name, file_data, expense_date, category_id, budget_id, created_at, updated_at"

type ExpenseRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewExpenseRepository(db *pgxpool.Pool, logger *zap.Logger) *ExpenseRepository {
	return &ExpenseRepository{
		db:     db,
		logger: logger,
	}
}

// CreateWithLedger inserts the expense and adds its value to the budget's
// active history snapshot in one transaction. The increment runs as a single
// SQL UPDATE so concurrent recordings against the same snapshot cannot lose
// updates. Returns the snapshot's new running total.
func (r *ExpenseRepository) CreateWithLedger(ctx context.Context, expense *models.Expense) (float64, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	total, err := incrementActiveSnapshot(ctx, tx, expense.BudgetID, expense.Value)
	if err != nil {
		return 0, err
	}

	insert := squirrel.Insert("expenses").
		Columns("id", "description", "value", "file_name", "file_data", "expense_date", "category_id", "budget_id", "created_at", "updated_at").
		Values(expense.ID, expense.Description, expense.Value, expense.FileName, expense.FileData, expense.ExpenseDate, expense.CategoryID, expense.BudgetID, expense.CreatedAt, expense.UpdatedAt).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := insert.ToSql()
	if err != nil {
		return 0, err
	}
	if _, err := tx.Exec(ctx, sql, args...); err != nil {
		return 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return total, nil
}

// UpdateWithLedger replaces the expense's mutable fields and applies the
// value delta to the active snapshot in the same transaction, keeping the
// running total consistent with the stored rows.
func (r *ExpenseRepository) UpdateWithLedger(ctx context.Context, expense *models.Expense) (float64, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	lock := squirrel.Select("value", "budget_id", "created_at").
		From("expenses").
		Where(squirrel.Eq{"id": expense.ID}).
		Suffix("FOR UPDATE").
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := lock.ToSql()
	if err != nil {
		return 0, err
	}

	var oldValue float64
	if err := tx.QueryRow(ctx, sql, args...).Scan(&oldValue, &expense.BudgetID, &expense.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrNotFound
		}
		return 0, err
	}

	total, err := incrementActiveSnapshot(ctx, tx, expense.BudgetID, expense.Value-oldValue)
	if err != nil {
		return 0, err
	}

	update := squirrel.Update("expenses").
		Set("description", expense.Description).
		Set("value", expense.Value).
		Set("file_name", expense.FileName).
		Set("file_data", expense.FileData).
		Set("expense_date", expense.ExpenseDate).
		Set("category_id", expense.CategoryID).
		Set("updated_at", expense.UpdatedAt).
		Where(squirrel.Eq{"id": expense.ID}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err = update.ToSql()
	if err != nil {
		return 0, err
	}
	if _, err := tx.Exec(ctx, sql, args...); err != nil {
		return 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return total, nil
}

// DeleteWithLedger removes the expense and subtracts its value from the
// active snapshot in the same transaction. Returns the deleted row and the
// snapshot's new running total.
func (r *ExpenseRepository) DeleteWithLedger(ctx context.Context, id uuid.UUID) (*models.Expense, float64, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, 0, err
	}
	defer tx.Rollback(ctx)

	lock := squirrel.Select(expenseColumns).
		From("expenses").
		Where(squirrel.Eq{"id": id}).
		Suffix("FOR UPDATE").
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := lock.ToSql()
	if err != nil {
		return nil, 0, err
	}

	var expense models.Expense
	err = tx.QueryRow(ctx, sql, args...).Scan(
		&expense.ID, &expense.Description, &expense.Value, &expense.FileName, &expense.FileData,
		&expense.ExpenseDate, &expense.CategoryID, &expense.BudgetID, &expense.CreatedAt, &expense.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, 0, ErrNotFound
		}
		return nil, 0, err
	}

	total, err := incrementActiveSnapshot(ctx, tx, expense.BudgetID, -expense.Value)
	if err != nil {
		return nil, 0, err
	}

	del := squirrel.Delete("expenses").
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err = del.ToSql()
	if err != nil {
		return nil, 0, err
	}
	if _, err := tx.Exec(ctx, sql, args...); err != nil {
		return nil, 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, 0, err
	}
	return &expense, total, nil
}

// incrementActiveSnapshot applies delta to the budget's active snapshot and
// returns the new running total. No active snapshot means the budget was
// never linked; callers map that to the ledger's not-found error.
func incrementActiveSnapshot(ctx context.Context, tx pgx.Tx, budgetID uuid.UUID, delta float64) (float64, error) {
	update := squirrel.Update("budget_history").
		Set("current_consumption", squirrel.Expr("current_consumption + ?", delta)).
		Where(squirrel.Eq{"budget_id": budgetID, "is_active": true}).
		Suffix("RETURNING current_consumption").
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := update.ToSql()
	if err != nil {
		return 0, err
	}

	var total float64
	if err := tx.QueryRow(ctx, sql, args...).Scan(&total); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrNoActiveSnapshot
		}
		return 0, err
	}
	return total, nil
}

func (r *ExpenseRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Expense, error) {
	query := squirrel.Select(expenseColumns).
		From("expenses").
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	var expense models.Expense
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&expense.ID, &expense.Description, &expense.Value, &expense.FileName, &expense.FileData,
		&expense.ExpenseDate, &expense.CategoryID, &expense.BudgetID, &expense.CreatedAt, &expense.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return &expense, nil
}

func (r *ExpenseRepository) ListByBudget(ctx context.Context, budgetID uuid.UUID) ([]*models.Expense, error) {
	query := squirrel.Select(expenseColumns).
		From("expenses").
		Where(squirrel.Eq{"budget_id": budgetID}).
		OrderBy("expense_date DESC").
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

	var expenses []*models.Expense
	for rows.Next() {
		var expense models.Expense
		if err := rows.Scan(
			&expense.ID, &expense.Description, &expense.Value, &expense.FileName, &expense.FileData,
			&expense.ExpenseDate, &expense.CategoryID, &expense.BudgetID, &expense.CreatedAt, &expense.UpdatedAt,
		); err != nil {
			return nil, err
		}
		expenses = append(expenses, &expense)
	}

	return expenses, rows.Err()
}

// SumByCategory groups the budget's expenses by category with summed values,
// feeding the percentage aggregation.
func (r *ExpenseRepository) SumByCategory(ctx context.Context, budgetID uuid.UUID) ([]models.CategorySum, error) {
	query := squirrel.Select("category_id", "SUM(value) AS total_value").
		From("expenses").
		Where(squirrel.Eq{"budget_id": budgetID}).
		GroupBy("category_id").
		OrderBy("category_id ASC").
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

	var sums []models.CategorySum
	for rows.Next() {
		var sum models.CategorySum
		if err := rows.Scan(&sum.CategoryID, &sum.Total); err != nil {
			return nil, err
		}
		sums = append(sums, sum)
	}

	return sums, rows.Err()
}

// ConsumptionReport sums expense values within the inclusive date window,
// grouped by the raw expense_date value.
func (r *ExpenseRepository) ConsumptionReport(ctx context.Context, budgetID uuid.UUID, start, end time.Time) ([]models.DateTotal, error) {
	query := squirrel.Select("expense_date", "SUM(value) AS total_value").
		From("expenses").
		Where(squirrel.Eq{"budget_id": budgetID}).
		Where(squirrel.GtOrEq{"expense_date": start}).
		Where(squirrel.LtOrEq{"expense_date": end}).
		GroupBy("expense_date").
		OrderBy("expense_date ASC").
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

	var totals []models.DateTotal
	for rows.Next() {
		var total models.DateTotal
		if err := rows.Scan(&total.ExpenseDate, &total.Total); err != nil {
			return nil, err
		}
		totals = append(totals, total)
	}

	return totals, rows.Err()
}

// CategoryReport counts expenses per category within the inclusive date
// window.
func (r *ExpenseRepository) CategoryReport(ctx context.Context, budgetID uuid.UUID, start, end time.Time) ([]models.CategoryCount, error) {
	query := squirrel.Select("category_id", "COUNT(*) AS expense_count").
		From("expenses").
		Where(squirrel.Eq{"budget_id": budgetID}).
		Where(squirrel.GtOrEq{"expense_date": start}).
		Where(squirrel.LtOrEq{"expense_date": end}).
		GroupBy("category_id").
		OrderBy("category_id ASC").
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

	var counts []models.CategoryCount
	for rows.Next() {
		var count models.CategoryCount
		if err := rows.Scan(&count.CategoryID, &count.Count); err != nil {
			return nil, err
		}
		counts = append(counts, count)
	}

	return counts, rows.Err()
}
