package handlers

import (
	"budgetlink/internal/dto"
	"budgetlink/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type ExpenseHandler struct {
	expenseService *service.ExpenseService
	logger         *zap.Logger
}

func NewExpenseHandler(expenseService *service.ExpenseService, logger *zap.Logger) *ExpenseHandler {
	return &ExpenseHandler{
		expenseService: expenseService,
		logger:         logger,
	}
}

// Record godoc
// @Summary Record an expense
// @Description Insert the expense and increment the budget's active history snapshot atomically
// @Tags expenses
// @Accept json
// @Produce json
// @Param request body dto.CreateExpenseRequest true "Expense to record"
// @Security Bearer
// @Success 201 {object} dto.LedgerEntryResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/expenses [post]
func (h *ExpenseHandler) Record(c *fiber.Ctx) error {
	var req dto.CreateExpenseRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	resp, err := h.expenseService.Record(c.Context(), &req)
	if err != nil {
		h.logger.Warn("Expense recording failed", zap.Error(err))
		return serviceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(resp)
}

// Update godoc
// @Summary Update an expense
// @Description Replace the expense's fields; the snapshot total is delta-adjusted
// @Tags expenses
// @Accept json
// @Produce json
// @Param request body dto.UpdateExpenseRequest true "Fields to update"
// @Security Bearer
// @Success 200 {object} dto.LedgerEntryResponse
// @Failure 404 {object} map[string]string
// @Router /api/expenses [put]
func (h *ExpenseHandler) Update(c *fiber.Ctx) error {
	var req dto.UpdateExpenseRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	resp, err := h.expenseService.Update(c.Context(), &req)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(resp)
}

// Delete godoc
// @Summary Delete an expense
// @Description Remove the expense; its value is subtracted from the snapshot total
// @Tags expenses
// @Produce json
// @Param id path string true "Expense id"
// @Security Bearer
// @Success 200 {object} dto.LedgerEntryResponse
// @Failure 404 {object} map[string]string
// @Router /api/expenses/{id} [delete]
func (h *ExpenseHandler) Delete(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid expense id",
		})
	}

	resp, err := h.expenseService.Delete(c.Context(), id)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(resp)
}

// Get godoc
// @Summary Get an expense
// @Tags expenses
// @Produce json
// @Param id path string true "Expense id"
// @Security Bearer
// @Success 200 {object} dto.ExpenseResponse
// @Failure 404 {object} map[string]string
// @Router /api/expenses/{id} [get]
func (h *ExpenseHandler) Get(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid expense id",
		})
	}

	resp, err := h.expenseService.Get(c.Context(), id)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(resp)
}

// ListByBudget godoc
// @Summary List a budget's expenses
// @Tags expenses
// @Produce json
// @Param budget_id path string true "Budget id"
// @Security Bearer
// @Success 200 {array} dto.ExpenseResponse
// @Router /api/expenses/all/{budget_id} [get]
func (h *ExpenseHandler) ListByBudget(c *fiber.Ctx) error {
	budgetID, err := parseIDParam(c, "budget_id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid budget id",
		})
	}

	resp, err := h.expenseService.ListByBudget(c.Context(), budgetID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(resp)
}

// ConsumptionReport godoc
// @Summary Consumption report
// @Description Sum of expense values per expense_date inside the inclusive window, scoped to one budget
// @Tags expenses
// @Accept json
// @Produce json
// @Param request body dto.ReportRequest true "Budget and date window"
// @Security Bearer
// @Success 200 {array} dto.ConsumptionReportRow
// @Failure 400 {object} map[string]string
// @Router /api/expenses/consumptionReport [post]
func (h *ExpenseHandler) ConsumptionReport(c *fiber.Ctx) error {
	var req dto.ReportRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	resp, err := h.expenseService.ConsumptionReport(c.Context(), &req)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(resp)
}

// CategoryReport godoc
// @Summary Category report
// @Description Count of expenses per category inside the inclusive window, scoped to one budget
// @Tags expenses
// @Accept json
// @Produce json
// @Param request body dto.ReportRequest true "Budget and date window"
// @Security Bearer
// @Success 200 {array} dto.CategoryReportRow
// @Failure 400 {object} map[string]string
// @Router /api/expenses/categoriesExpensesReport [post]
func (h *ExpenseHandler) CategoryReport(c *fiber.Ctx) error {
	var req dto.ReportRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	resp, err := h.expenseService.CategoryReport(c.Context(), &req)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(resp)
}
