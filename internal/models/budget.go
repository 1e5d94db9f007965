package models

import (
	"time"

	"github.com/google/uuid"
)

type BudgetStatus string

const (
	StatusPending  BudgetStatus = "PENDING"
	StatusLinked   BudgetStatus = "LINKED"
	StatusCanceled BudgetStatus = "CANCELED"
)

// statusOrder encodes the linear lifecycle PENDING -> LINKED -> CANCELED.
var statusOrder = map[BudgetStatus]int{
	StatusPending:  0,
	StatusLinked:   1,
	StatusCanceled: 2,
}

func (s BudgetStatus) Valid() bool {
	_, ok := statusOrder[s]
	return ok
}

// CanTransitionTo reports whether next is reachable from s. The lifecycle
// only moves forward; there is no reverse transition.
func (s BudgetStatus) CanTransitionTo(next BudgetStatus) bool {
	from, ok := statusOrder[s]
	if !ok {
		return false
	}
	to, ok := statusOrder[next]
	if !ok {
		return false
	}
	return to >= from
}

// Budget pairs one admin user with one consumer user for shared expense
// tracking.
type Budget struct {
	ID               uuid.UUID    `db:"id"`
	AdminID          uuid.UUID    `db:"admin_id"`
	ConsumerID       uuid.UUID    `db:"consumer_id"`
	AdminNickname    string       `db:"admin_nickname"`
	ConsumerNickname string       `db:"consumer_nickname"`
	Status           BudgetStatus `db:"status"`
	CreatedAt        time.Time    `db:"created_at"`
}
