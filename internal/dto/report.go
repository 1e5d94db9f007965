package dto

type ReportRequest struct {
	BudgetID  string `json:"budget_id"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

type ConsumptionReportRow struct {
	ExpenseDate string  `json:"expense_date"`
	TotalValue  float64 `json:"total_value"`
}

type CategoryReportRow struct {
	CategoryID int   `json:"category_id"`
	Count      int64 `json:"count"`
}
