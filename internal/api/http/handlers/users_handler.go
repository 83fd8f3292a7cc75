package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/subscription-service/internal/api/dto"
	"github.com/spec-kit/subscription-service/internal/service"
	apperrors "github.com/spec-kit/subscription-service/pkg/util/errorutil"
)

// UsersHandler exposes user CRUD endpoints.
type UsersHandler struct {
	users *service.UserService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(userService *service.UserService) *UsersHandler {
	return &UsersHandler{users: userService}
}

// Create handles POST /users.
func (h *UsersHandler) Create(c *fiber.Ctx) error {
	var req dto.UserRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	user, err := h.users.CreateUser(c.UserContext(), req.Name, req.Email)
	if err != nil {
		return err
	}
	return c.Status(http.StatusOK).JSON(dto.UserFromDomain(user))
}

// Get handles GET /users/:id.
func (h *UsersHandler) Get(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	user, err := h.users.GetUserByID(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(dto.UserFromDomain(user))
}

// Update handles PUT /users/:id.
func (h *UsersHandler) Update(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req dto.UserRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	user, err := h.users.UpdateUser(c.UserContext(), id, req.Name, req.Email)
	if err != nil {
		return err
	}
	return c.JSON(dto.UserFromDomain(user))
}

// Delete handles DELETE /users/:id.
func (h *UsersHandler) Delete(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	if err := h.users.DeleteUser(c.UserContext(), id); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}
