package dto

type CreateBudgetRequest struct {
	AdminID          string `json:"admin_id"`
	ConsumerID       string `json:"consumer_id"`
	AdminNickname    string `json:"admin_nickname"`
	ConsumerNickname string `json:"consumer_nickname"`
}

type UpdateBudgetRequest struct {
	ID               string  `json:"id"`
	AdminNickname    *string `json:"admin_nickname,omitempty"`
	ConsumerNickname *string `json:"consumer_nickname,omitempty"`
	Status           *string `json:"status,omitempty"`
}

type BudgetResponse struct {
	ID               string `json:"id"`
	AdminID          string `json:"admin_id"`
	ConsumerID       string `json:"consumer_id"`
	AdminNickname    string `json:"admin_nickname"`
	ConsumerNickname string `json:"consumer_nickname"`
	Status           string `json:"status"`
	CreatedAt        string `json:"created_at"`
}

type SnapshotResponse struct {
	ID                 string  `json:"id"`
	BudgetID           string  `json:"budget_id"`
	CurrentConsumption float64 `json:"current_consumption"`
	CreatedAt          string  `json:"created_at"`
}

type CategoryPercentage struct {
	CategoryID int     `json:"category_id"`
	Percentage float64 `json:"percentage"`
}

// ActiveBudgetResponse is a LINKED budget augmented with its latest history
// snapshot (absent when the budget never got one) and the per-category
// consumption percentages for that snapshot.
type ActiveBudgetResponse struct {
	BudgetResponse
	Snapshot    *SnapshotResponse    `json:"budget_history,omitempty"`
	Percentages []CategoryPercentage `json:"percentages"`
}
