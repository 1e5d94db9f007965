package models

import "time"

// Aggregation rows produced by the reporting queries.

type CategorySum struct {
	CategoryID int     `db:"category_id"`
	Total      float64 `db:"total_value"`
}

type CategoryCount struct {
	CategoryID int   `db:"category_id"`
	Count      int64 `db:"expense_count"`
}

type DateTotal struct {
	ExpenseDate time.Time `db:"expense_date"`
	Total       float64   `db:"total_value"`
}
