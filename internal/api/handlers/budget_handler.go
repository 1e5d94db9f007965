package handlers

import (
	"budgetlink/internal/dto"
	"budgetlink/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type BudgetHandler struct {
	budgetService *service.BudgetService
	logger        *zap.Logger
}

func NewBudgetHandler(budgetService *service.BudgetService, logger *zap.Logger) *BudgetHandler {
	return &BudgetHandler{
		budgetService: budgetService,
		logger:        logger,
	}
}

// Create godoc
// @Summary Create a budget
// @Description Pair an admin and a consumer user into a PENDING budget
// @Tags budgets
// @Accept json
// @Produce json
// @Param request body dto.CreateBudgetRequest true "Budget to create"
// @Security Bearer
// @Success 201 {object} dto.BudgetResponse
// @Failure 400 {object} map[string]string
// @Router /api/budgets [post]
func (h *BudgetHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateBudgetRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	resp, err := h.budgetService.Create(c.Context(), &req)
	if err != nil {
		h.logger.Warn("Budget creation failed", zap.Error(err))
		return serviceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(resp)
}

// Update godoc
// @Summary Update a budget
// @Description Update nicknames and status; linking opens the first history snapshot
// @Tags budgets
// @Accept json
// @Produce json
// @Param request body dto.UpdateBudgetRequest true "Fields to update"
// @Security Bearer
// @Success 200 {object} dto.BudgetResponse
// @Failure 404 {object} map[string]string
// @Router /api/budgets [put]
func (h *BudgetHandler) Update(c *fiber.Ctx) error {
	var req dto.UpdateBudgetRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	resp, err := h.budgetService.Update(c.Context(), &req)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(resp)
}

// Delete godoc
// @Summary Delete a budget
// @Description Delete a budget with its history snapshots and expenses
// @Tags budgets
// @Produce json
// @Param id path string true "Budget id"
// @Security Bearer
// @Success 200 {object} dto.BudgetResponse
// @Failure 404 {object} map[string]string
// @Router /api/budgets/{id} [delete]
func (h *BudgetHandler) Delete(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid budget id",
		})
	}

	resp, err := h.budgetService.Delete(c.Context(), id)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(resp)
}

// Get godoc
// @Summary Get a budget
// @Tags budgets
// @Produce json
// @Param id path string true "Budget id"
// @Security Bearer
// @Success 200 {object} dto.BudgetResponse
// @Failure 404 {object} map[string]string
// @Router /api/budgets/{id} [get]
func (h *BudgetHandler) Get(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid budget id",
		})
	}

	resp, err := h.budgetService.Get(c.Context(), id)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(resp)
}

// ListForUser godoc
// @Summary List a user's budgets
// @Description Budgets where the user is admin or consumer, optionally filtered by status
// @Tags budgets
// @Produce json
// @Param user_id path string true "User id"
// @Param status query string false "Status filter (PENDING, LINKED, CANCELED)"
// @Security Bearer
// @Success 200 {array} dto.BudgetResponse
// @Router /api/budgets/all/{user_id} [get]
func (h *BudgetHandler) ListForUser(c *fiber.Ctx) error {
	userID, err := parseIDParam(c, "user_id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid user id",
		})
	}

	resp, err := h.budgetService.ListForUser(c.Context(), userID, c.Query("status"))
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(resp)
}

// History godoc
// @Summary List a budget's history snapshots
// @Description All snapshots for the budget, newest first, active one included
// @Tags budgets
// @Produce json
// @Param budget_id path string true "Budget id"
// @Security Bearer
// @Success 200 {array} dto.SnapshotResponse
// @Failure 404 {object} map[string]string
// @Router /api/budgets/history/{budget_id} [get]
func (h *BudgetHandler) History(c *fiber.Ctx) error {
	budgetID, err := parseIDParam(c, "budget_id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid budget id",
		})
	}

	resp, err := h.budgetService.History(c.Context(), budgetID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(resp)
}

// Active godoc
// @Summary List a user's linked budgets with consumption
// @Description LINKED budgets with the active history snapshot and per-category percentages
// @Tags budgets
// @Produce json
// @Param user_id path string true "User id"
// @Security Bearer
// @Success 200 {array} dto.ActiveBudgetResponse
// @Router /api/budgets/current/{user_id} [get]
func (h *BudgetHandler) Active(c *fiber.Ctx) error {
	userID, err := parseIDParam(c, "user_id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid user id",
		})
	}

	resp, err := h.budgetService.ActiveBudgets(c.Context(), userID)
	if err != nil {
		h.logger.Error("Active budget listing failed", zap.Error(err))
		return serviceError(c, err)
	}
	return c.JSON(resp)
}
