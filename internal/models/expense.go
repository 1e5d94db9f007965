package models

import (
	"time"

	"github.com/google/uuid"
)

// Expense categories are a fixed enumeration; the persistence layer enforces
// the same range with a CHECK constraint.
const (
	CategoryFood      = 1
	CategoryTransport = 2
	CategoryHome      = 3
	CategoryLeisure   = 4
	CategoryOther     = 5
)

func ValidCategory(id int) bool {
	return id >= CategoryFood && id <= CategoryOther
}

type Expense struct {
	ID          uuid.UUID `db:"id"`
	Description string    `db:"description"`
	Value       float64   `db:"value"`
	FileName    string    `db:"file_name"`
	FileData    []byte    `db:"file_data"` // optional evidence blob
	ExpenseDate time.Time `db:"expense_date"`
	CategoryID  int       `db:"category_id"`
	BudgetID    uuid.UUID `db:"budget_id"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}
