// Package events publishes ledger activity to AMQP for downstream
// consumers. Publishing is best-effort; a failed publish never fails the
// request that produced it.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const (
	KindExpenseRecorded = "expense.recorded"
	KindExpenseUpdated  = "expense.updated"
	KindExpenseDeleted  = "expense.deleted"
)

// LedgerEvent describes one change to a budget's running consumption total.
type LedgerEvent struct {
	Kind       string    `json:"kind"`
	ExpenseID  uuid.UUID `json:"expense_id"`
	BudgetID   uuid.UUID `json:"budget_id"`
	Delta      float64   `json:"delta"`
	Total      float64   `json:"total"`
	OccurredAt time.Time `json:"occurred_at"`
}

func NewLedgerEvent(kind string, expenseID, budgetID uuid.UUID, delta, total float64) *LedgerEvent {
	return &LedgerEvent{
		Kind:       kind,
		ExpenseID:  expenseID,
		BudgetID:   budgetID,
		Delta:      delta,
		Total:      total,
		OccurredAt: time.Now(),
	}
}

func (e *LedgerEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

func LedgerEventFromJSON(data []byte) (*LedgerEvent, error) {
	var event LedgerEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return nil, err
	}
	return &event, nil
}

// Publisher is satisfied by the AMQP client and the no-op used when no
// broker is configured.
type Publisher interface {
	PublishLedgerEvent(ctx context.Context, event *LedgerEvent) error
	Close() error
}

type NoopPublisher struct{}

func NewNoopPublisher() *NoopPublisher {
	return &NoopPublisher{}
}

func (*NoopPublisher) PublishLedgerEvent(context.Context, *LedgerEvent) error {
	return nil
}

func (*NoopPublisher) Close() error {
	return nil
}
