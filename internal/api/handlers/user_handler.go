package handlers

import (
	"budgetlink/internal/dto"
	"budgetlink/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type UserHandler struct {
	userService *service.UserService
	logger      *zap.Logger
}

func NewUserHandler(userService *service.UserService, logger *zap.Logger) *UserHandler {
	return &UserHandler{
		userService: userService,
		logger:      logger,
	}
}

// Create godoc
// @Summary Create a user
// @Description Create an admin or consumer user; consumers receive a unique linking code
// @Tags users
// @Accept json
// @Produce json
// @Param request body dto.CreateUserRequest true "User to create"
// @Success 201 {object} dto.UserResponse
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /api/users [post]
func (h *UserHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	resp, err := h.userService.Create(c.Context(), &req)
	if err != nil {
		h.logger.Warn("User creation failed", zap.Error(err))
		return serviceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(resp)
}

// Authenticate godoc
// @Summary Authenticate a user
// @Description Verify email and password of an active user, returns a bearer token
// @Tags users
// @Accept json
// @Produce json
// @Param request body dto.AuthRequest true "Credentials"
// @Success 200 {object} dto.AuthResponse
// @Failure 401 {object} map[string]string
// @Router /api/users/auth [post]
func (h *UserHandler) Authenticate(c *fiber.Ctx) error {
	var req dto.AuthRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	resp, err := h.userService.Authenticate(c.Context(), &req)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(resp)
}

// List godoc
// @Summary List users
// @Description List users, optionally filtered by name substring and role
// @Tags users
// @Produce json
// @Param name query string false "Name filter"
// @Param role query string false "Role filter (admin or consumer)"
// @Security Bearer
// @Success 200 {array} dto.UserResponse
// @Router /api/users [get]
func (h *UserHandler) List(c *fiber.Ctx) error {
	resp, err := h.userService.List(c.Context(), c.Query("name"), c.Query("role"))
	if err != nil {
		h.logger.Error("User listing failed", zap.Error(err))
		return serviceError(c, err)
	}
	return c.JSON(resp)
}

// Get godoc
// @Summary Get a user
// @Tags users
// @Produce json
// @Param id path string true "User id"
// @Security Bearer
// @Success 200 {object} dto.UserResponse
// @Failure 404 {object} map[string]string
// @Router /api/users/{id} [get]
func (h *UserHandler) Get(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid user id",
		})
	}

	resp, err := h.userService.Get(c.Context(), id)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(resp)
}

// Update godoc
// @Summary Update a user
// @Tags users
// @Accept json
// @Produce json
// @Param request body dto.UpdateUserRequest true "Fields to update"
// @Security Bearer
// @Success 200 {object} dto.UserResponse
// @Failure 404 {object} map[string]string
// @Router /api/users [put]
func (h *UserHandler) Update(c *fiber.Ctx) error {
	var req dto.UpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	resp, err := h.userService.Update(c.Context(), &req)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(resp)
}

// Delete godoc
// @Summary Delete a user
// @Tags users
// @Produce json
// @Param id path string true "User id"
// @Security Bearer
// @Success 200 {object} dto.UserResponse
// @Failure 404 {object} map[string]string
// @Router /api/users/{id} [delete]
func (h *UserHandler) Delete(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid user id",
		})
	}

	resp, err := h.userService.Delete(c.Context(), id)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(resp)
}
