package models

import (
	"time"

	"github.com/google/uuid"
)

// BudgetHistory is a running-total snapshot of a budget's consumption.
// Exactly one snapshot per budget carries IsActive; the ledger increments
// only that row. CurrentConsumption equals the sum of expense values
// recorded through the ledger while the snapshot was active.
type BudgetHistory struct {
	ID                 uuid.UUID `db:"id"`
	BudgetID           uuid.UUID `db:"budget_id"`
	CurrentConsumption float64   `db:"current_consumption"`
	IsActive           bool      `db:"is_active"`
	CreatedAt          time.Time `db:"created_at"`
}
