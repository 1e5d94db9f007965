package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"budgetlink/internal/models"
	"budgetlink/internal/repository"

	"github.com/google/uuid"
)

// memDB is a shared in-memory store the repository fakes operate on, so one
// test can exercise several services against the same state.
type memDB struct {
	users     map[uuid.UUID]*models.User
	budgets   map[uuid.UUID]*models.Budget
	snapshots map[uuid.UUID]*models.BudgetHistory
	expenses  map[uuid.UUID]*models.Expense

	// failLedger makes every ledger write fail before mutating anything.
	failLedger bool
}

func newMemDB() *memDB {
	return &memDB{
		users:     make(map[uuid.UUID]*models.User),
		budgets:   make(map[uuid.UUID]*models.Budget),
		snapshots: make(map[uuid.UUID]*models.BudgetHistory),
		expenses:  make(map[uuid.UUID]*models.Expense),
	}
}

func (db *memDB) activeSnapshot(budgetID uuid.UUID) *models.BudgetHistory {
	for _, snap := range db.snapshots {
		if snap.IsActive && snap.BudgetID == budgetID {
			return snap
		}
	}
	return nil
}

type memUsers struct{ db *memDB }

func (m *memUsers) Create(_ context.Context, user *models.User) error {
	cp := *user
	m.db.users[user.ID] = &cp
	return nil
}

func (m *memUsers) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	user, ok := m.db.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *user
	return &cp, nil
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	for _, user := range m.db.users {
		if user.Email == email {
			cp := *user
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memUsers) GetByCode(_ context.Context, code string) (*models.User, error) {
	for _, user := range m.db.users {
		if user.Code != nil && *user.Code == code {
			cp := *user
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memUsers) List(_ context.Context, nameFilter string, role models.Role) ([]*models.User, error) {
	var out []*models.User
	for _, user := range m.db.users {
		if role != "" && user.Role != role {
			continue
		}
		if nameFilter != "" && !strings.Contains(strings.ToLower(user.Name), strings.ToLower(nameFilter)) {
			continue
		}
		cp := *user
		out = append(out, &cp)
	}
	return out, nil
}

func (m *memUsers) Update(_ context.Context, user *models.User) error {
	if _, ok := m.db.users[user.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *user
	m.db.users[user.ID] = &cp
	return nil
}

func (m *memUsers) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.db.users[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.db.users, id)
	return nil
}

type memBudgets struct{ db *memDB }

func (m *memBudgets) Create(_ context.Context, budget *models.Budget) error {
	cp := *budget
	m.db.budgets[budget.ID] = &cp
	return nil
}

func (m *memBudgets) GetByID(_ context.Context, id uuid.UUID) (*models.Budget, error) {
	budget, ok := m.db.budgets[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *budget
	return &cp, nil
}

func (m *memBudgets) ListForUser(_ context.Context, userID uuid.UUID, status models.BudgetStatus) ([]*models.Budget, error) {
	var out []*models.Budget
	for _, budget := range m.db.budgets {
		if budget.AdminID != userID && budget.ConsumerID != userID {
			continue
		}
		if status != "" && budget.Status != status {
			continue
		}
		cp := *budget
		out = append(out, &cp)
	}
	return out, nil
}

func (m *memBudgets) Update(_ context.Context, budget *models.Budget) error {
	if _, ok := m.db.budgets[budget.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *budget
	m.db.budgets[budget.ID] = &cp
	return nil
}

func (m *memBudgets) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.db.budgets[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.db.budgets, id)
	return nil
}

type memSnapshots struct{ db *memDB }

func (m *memSnapshots) Create(_ context.Context, history *models.BudgetHistory) error {
	for _, snap := range m.db.snapshots {
		if snap.BudgetID == history.BudgetID {
			snap.IsActive = false
		}
	}
	cp := *history
	m.db.snapshots[history.ID] = &cp
	return nil
}

func (m *memSnapshots) GetActive(_ context.Context, budgetID uuid.UUID) (*models.BudgetHistory, error) {
	if snap := m.db.activeSnapshot(budgetID); snap != nil {
		cp := *snap
		return &cp, nil
	}
	return nil, repository.ErrNotFound
}

func (m *memSnapshots) ListByBudget(_ context.Context, budgetID uuid.UUID) ([]*models.BudgetHistory, error) {
	var out []*models.BudgetHistory
	for _, snap := range m.db.snapshots {
		if snap.BudgetID == budgetID {
			cp := *snap
			out = append(out, &cp)
		}
	}
	return out, nil
}

// memLedger mirrors the transactional contract of the expense repository:
// the expense row and the snapshot total change together or not at all.
type memLedger struct{ db *memDB }

func (m *memLedger) CreateWithLedger(_ context.Context, expense *models.Expense) (float64, error) {
	if m.db.failLedger {
		return 0, errors.New("ledger unavailable")
	}
	snap := m.db.activeSnapshot(expense.BudgetID)
	if snap == nil {
		return 0, repository.ErrNoActiveSnapshot
	}
	snap.CurrentConsumption += expense.Value
	cp := *expense
	m.db.expenses[expense.ID] = &cp
	return snap.CurrentConsumption, nil
}

func (m *memLedger) UpdateWithLedger(_ context.Context, expense *models.Expense) (float64, error) {
	if m.db.failLedger {
		return 0, errors.New("ledger unavailable")
	}
	old, ok := m.db.expenses[expense.ID]
	if !ok {
		return 0, repository.ErrNotFound
	}
	snap := m.db.activeSnapshot(old.BudgetID)
	if snap == nil {
		return 0, repository.ErrNoActiveSnapshot
	}
	snap.CurrentConsumption += expense.Value - old.Value
	expense.BudgetID = old.BudgetID
	expense.CreatedAt = old.CreatedAt
	cp := *expense
	m.db.expenses[expense.ID] = &cp
	return snap.CurrentConsumption, nil
}

func (m *memLedger) DeleteWithLedger(_ context.Context, id uuid.UUID) (*models.Expense, float64, error) {
	if m.db.failLedger {
		return nil, 0, errors.New("ledger unavailable")
	}
	old, ok := m.db.expenses[id]
	if !ok {
		return nil, 0, repository.ErrNotFound
	}
	snap := m.db.activeSnapshot(old.BudgetID)
	if snap == nil {
		return nil, 0, repository.ErrNoActiveSnapshot
	}
	snap.CurrentConsumption -= old.Value
	delete(m.db.expenses, id)
	cp := *old
	return &cp, snap.CurrentConsumption, nil
}

func (m *memLedger) GetByID(_ context.Context, id uuid.UUID) (*models.Expense, error) {
	expense, ok := m.db.expenses[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *expense
	return &cp, nil
}

func (m *memLedger) ListByBudget(_ context.Context, budgetID uuid.UUID) ([]*models.Expense, error) {
	var out []*models.Expense
	for _, expense := range m.db.expenses {
		if expense.BudgetID == budgetID {
			cp := *expense
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memLedger) SumByCategory(_ context.Context, budgetID uuid.UUID) ([]models.CategorySum, error) {
	totals := make(map[int]float64)
	for _, expense := range m.db.expenses {
		if expense.BudgetID == budgetID {
			totals[expense.CategoryID] += expense.Value
		}
	}
	var out []models.CategorySum
	for categoryID, total := range totals {
		out = append(out, models.CategorySum{CategoryID: categoryID, Total: total})
	}
	return out, nil
}

func (m *memLedger) ConsumptionReport(_ context.Context, budgetID uuid.UUID, start, end time.Time) ([]models.DateTotal, error) {
	totals := make(map[time.Time]float64)
	for _, expense := range m.db.expenses {
		if expense.BudgetID != budgetID {
			continue
		}
		d := expense.ExpenseDate
		if d.Before(start) || d.After(end) {
			continue
		}
		totals[d] += expense.Value
	}
	var out []models.DateTotal
	for d, total := range totals {
		out = append(out, models.DateTotal{ExpenseDate: d, Total: total})
	}
	return out, nil
}

func (m *memLedger) CategoryReport(_ context.Context, budgetID uuid.UUID, start, end time.Time) ([]models.CategoryCount, error) {
	counts := make(map[int]int64)
	for _, expense := range m.db.expenses {
		if expense.BudgetID != budgetID {
			continue
		}
		d := expense.ExpenseDate
		if d.Before(start) || d.After(end) {
			continue
		}
		counts[expense.CategoryID]++
	}
	var out []models.CategoryCount
	for categoryID, count := range counts {
		out = append(out, models.CategoryCount{CategoryID: categoryID, Count: count})
	}
	return out, nil
}

// stubCodes returns canned codes in order, then keeps repeating the last one.
type stubCodes struct {
	codes []string
	next  int
}

func (s *stubCodes) Generate() string {
	if s.next < len(s.codes)-1 {
		code := s.codes[s.next]
		s.next++
		return code
	}
	return s.codes[len(s.codes)-1]
}
