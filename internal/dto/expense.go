package dto

import "time"

type CreateExpenseRequest struct {
	Description string    `json:"description"`
	Value       float64   `json:"value"`
	FileName    string    `json:"file_name,omitempty"`
	FileData    []byte    `json:"file_data,omitempty"`
	ExpenseDate time.Time `json:"expense_date"`
	CategoryID  int       `json:"category_id"`
	BudgetID    string    `json:"budget_id"`
}

type UpdateExpenseRequest struct {
	ID          string    `json:"id"`
	Description string    `json:"description"`
	Value       float64   `json:"value"`
	FileName    string    `json:"file_name,omitempty"`
	FileData    []byte    `json:"file_data,omitempty"`
	ExpenseDate time.Time `json:"expense_date"`
	CategoryID  int       `json:"category_id"`
}

type ExpenseResponse struct {
	ID          string  `json:"id"`
	Description string  `json:"description"`
	Value       float64 `json:"value"`
	FileName    string  `json:"file_name,omitempty"`
	ExpenseDate string  `json:"expense_date"`
	CategoryID  int     `json:"category_id"`
	BudgetID    string  `json:"budget_id"`
	CreatedAt   string  `json:"created_at"`
}

// LedgerEntryResponse pairs a written expense with the budget's running
// total after the write.
type LedgerEntryResponse struct {
	Expense            ExpenseResponse `json:"expense"`
	CurrentConsumption float64         `json:"current_consumption"`
}
