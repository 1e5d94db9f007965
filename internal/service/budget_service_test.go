package service

import (
	"context"
	"testing"

	"budgetlink/internal/dto"
	"budgetlink/internal/events"
	"budgetlink/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newBudgetService(db *memDB) *BudgetService {
	return NewBudgetService(&memBudgets{db: db}, &memSnapshots{db: db}, &memLedger{db: db}, zap.NewNop())
}

func createBudget(t *testing.T, svc *BudgetService) *dto.BudgetResponse {
	t.Helper()
	resp, err := svc.Create(context.Background(), &dto.CreateBudgetRequest{
		AdminID:          uuid.NewString(),
		ConsumerID:       uuid.NewString(),
		AdminNickname:    "Family",
		ConsumerNickname: "Family",
	})
	require.NoError(t, err)
	return resp
}

func linkBudget(t *testing.T, svc *BudgetService, id string) {
	t.Helper()
	linked := string(models.StatusLinked)
	_, err := svc.Update(context.Background(), &dto.UpdateBudgetRequest{ID: id, Status: &linked})
	require.NoError(t, err)
}

func TestBudgetService_CreateStartsPending(t *testing.T) {
	db := newMemDB()
	svc := newBudgetService(db)

	budget := createBudget(t, svc)
	assert.Equal(t, string(models.StatusPending), budget.Status)
	assert.Empty(t, db.snapshots, "no history snapshot before linking")
}

func TestBudgetService_CreateValidation(t *testing.T) {
	svc := newBudgetService(newMemDB())
	ctx := context.Background()
	sameID := uuid.NewString()

	tests := []struct {
		name string
		req  dto.CreateBudgetRequest
	}{
		{"bad admin id", dto.CreateBudgetRequest{AdminID: "nope", ConsumerID: uuid.NewString()}},
		{"bad consumer id", dto.CreateBudgetRequest{AdminID: uuid.NewString(), ConsumerID: "nope"}},
		{"same user on both sides", dto.CreateBudgetRequest{AdminID: sameID, ConsumerID: sameID}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, &tt.req)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestBudgetService_LinkOpensZeroSnapshot(t *testing.T) {
	db := newMemDB()
	svc := newBudgetService(db)
	budget := createBudget(t, svc)

	linkBudget(t, svc, budget.ID)

	snap := db.activeSnapshot(uuid.MustParse(budget.ID))
	require.NotNil(t, snap)
	assert.Zero(t, snap.CurrentConsumption)

	// Re-linking an already linked budget must not open a second snapshot.
	linkBudget(t, svc, budget.ID)
	assert.Len(t, db.snapshots, 1)
}

func TestBudgetService_NoReverseTransition(t *testing.T) {
	svc := newBudgetService(newMemDB())
	budget := createBudget(t, svc)
	linkBudget(t, svc, budget.ID)

	pending := string(models.StatusPending)
	_, err := svc.Update(context.Background(), &dto.UpdateBudgetRequest{ID: budget.ID, Status: &pending})
	assert.ErrorIs(t, err, ErrValidation)

	canceled := string(models.StatusCanceled)
	_, err = svc.Update(context.Background(), &dto.UpdateBudgetRequest{ID: budget.ID, Status: &canceled})
	require.NoError(t, err)

	linked := string(models.StatusLinked)
	_, err = svc.Update(context.Background(), &dto.UpdateBudgetRequest{ID: budget.ID, Status: &linked})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestBudgetService_UpdateNicknames(t *testing.T) {
	svc := newBudgetService(newMemDB())
	budget := createBudget(t, svc)

	nick := "Household"
	resp, err := svc.Update(context.Background(), &dto.UpdateBudgetRequest{ID: budget.ID, AdminNickname: &nick})
	require.NoError(t, err)
	assert.Equal(t, "Household", resp.AdminNickname)
	assert.Equal(t, budget.ConsumerNickname, resp.ConsumerNickname)
	assert.Equal(t, budget.Status, resp.Status)
}

func TestBudgetService_ListForUser(t *testing.T) {
	db := newMemDB()
	svc := newBudgetService(db)
	userID := uuid.New()

	first, err := svc.Create(context.Background(), &dto.CreateBudgetRequest{
		AdminID:    userID.String(),
		ConsumerID: uuid.NewString(),
	})
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), &dto.CreateBudgetRequest{
		AdminID:    uuid.NewString(),
		ConsumerID: userID.String(),
	})
	require.NoError(t, err)
	createBudget(t, svc) // unrelated pair

	budgets, err := svc.ListForUser(context.Background(), userID, "")
	require.NoError(t, err)
	assert.Len(t, budgets, 2, "admin and consumer roles both count as participation")

	linkBudget(t, svc, first.ID)
	linkedOnly, err := svc.ListForUser(context.Background(), userID, string(models.StatusLinked))
	require.NoError(t, err)
	require.Len(t, linkedOnly, 1)
	assert.Equal(t, first.ID, linkedOnly[0].ID)

	_, err = svc.ListForUser(context.Background(), userID, "ARCHIVED")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestBudgetService_PercentagesSingleCategory(t *testing.T) {
	db := newMemDB()
	budgetSvc := newBudgetService(db)
	expenseSvc := NewExpenseService(&memLedger{db: db}, events.NewNoopPublisher(), zap.NewNop())

	adminID := uuid.New()
	budget, err := budgetSvc.Create(context.Background(), &dto.CreateBudgetRequest{
		AdminID:    adminID.String(),
		ConsumerID: uuid.NewString(),
	})
	require.NoError(t, err)
	linkBudget(t, budgetSvc, budget.ID)

	_, err = expenseSvc.Record(context.Background(), &dto.CreateExpenseRequest{
		Description: "groceries",
		Value:       40,
		CategoryID:  models.CategoryFood,
		BudgetID:    budget.ID,
	})
	require.NoError(t, err)

	active, err := budgetSvc.ActiveBudgets(context.Background(), adminID)
	require.NoError(t, err)
	require.Len(t, active, 1)
	require.NotNil(t, active[0].Snapshot)
	assert.Equal(t, 40.0, active[0].Snapshot.CurrentConsumption)
	require.Len(t, active[0].Percentages, 1)
	assert.Equal(t, models.CategoryFood, active[0].Percentages[0].CategoryID)
	assert.InDelta(t, 100.0, active[0].Percentages[0].Percentage, 1e-9)
}

func TestBudgetService_PercentagesSplit(t *testing.T) {
	db := newMemDB()
	budgetSvc := newBudgetService(db)
	expenseSvc := NewExpenseService(&memLedger{db: db}, events.NewNoopPublisher(), zap.NewNop())

	adminID := uuid.New()
	budget, err := budgetSvc.Create(context.Background(), &dto.CreateBudgetRequest{
		AdminID:    adminID.String(),
		ConsumerID: uuid.NewString(),
	})
	require.NoError(t, err)
	linkBudget(t, budgetSvc, budget.ID)

	for _, e := range []struct {
		value    float64
		category int
	}{
		{30, models.CategoryFood},
		{30, models.CategoryFood},
		{20, models.CategoryTransport},
		{20, models.CategoryLeisure},
	} {
		_, err := expenseSvc.Record(context.Background(), &dto.CreateExpenseRequest{
			Description: "item",
			Value:       e.value,
			CategoryID:  e.category,
			BudgetID:    budget.ID,
		})
		require.NoError(t, err)
	}

	active, err := budgetSvc.ActiveBudgets(context.Background(), adminID)
	require.NoError(t, err)
	require.Len(t, active, 1)

	byCategory := make(map[int]float64)
	sum := 0.0
	for _, p := range active[0].Percentages {
		byCategory[p.CategoryID] = p.Percentage
		sum += p.Percentage
	}
	assert.InDelta(t, 60.0, byCategory[models.CategoryFood], 1e-9)
	assert.InDelta(t, 20.0, byCategory[models.CategoryTransport], 1e-9)
	assert.InDelta(t, 20.0, byCategory[models.CategoryLeisure], 1e-9)
	assert.InDelta(t, 100.0, sum, 1e-9)
}

func TestBudgetService_PercentagesZeroConsumption(t *testing.T) {
	db := newMemDB()
	svc := newBudgetService(db)

	adminID := uuid.New()
	budget, err := svc.Create(context.Background(), &dto.CreateBudgetRequest{
		AdminID:    adminID.String(),
		ConsumerID: uuid.NewString(),
	})
	require.NoError(t, err)
	linkBudget(t, svc, budget.ID)

	active, err := svc.ActiveBudgets(context.Background(), adminID)
	require.NoError(t, err)
	require.Len(t, active, 1)
	require.NotNil(t, active[0].Snapshot)
	assert.Empty(t, active[0].Percentages, "nothing consumed means nothing to apportion")
}

func TestBudgetService_History(t *testing.T) {
	db := newMemDB()
	svc := newBudgetService(db)
	budget := createBudget(t, svc)
	budgetID := uuid.MustParse(budget.ID)

	history, err := svc.History(context.Background(), budgetID)
	require.NoError(t, err)
	assert.Empty(t, history, "no snapshots before linking")

	linkBudget(t, svc, budget.ID)
	history, err = svc.History(context.Background(), budgetID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Zero(t, history[0].CurrentConsumption)

	_, err = svc.History(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrBudgetNotFound)
}

func TestBudgetService_Delete(t *testing.T) {
	svc := newBudgetService(newMemDB())
	budget := createBudget(t, svc)
	id := uuid.MustParse(budget.ID)

	resp, err := svc.Delete(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, budget.ID, resp.ID)

	_, err = svc.Get(context.Background(), id)
	assert.ErrorIs(t, err, ErrBudgetNotFound)
}
