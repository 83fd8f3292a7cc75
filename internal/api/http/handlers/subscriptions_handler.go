package handlers

import (
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/subscription-service/internal/api/dto"
	"github.com/spec-kit/subscription-service/internal/service"
	apperrors "github.com/spec-kit/subscription-service/pkg/util/errorutil"
)

// SubscriptionsHandler manages the subscription endpoints nested under /users.
type SubscriptionsHandler struct {
	subscriptions *service.SubscriptionService
	validate      *validator.Validate
}

// NewSubscriptionsHandler constructs handler.
func NewSubscriptionsHandler(subscriptionService *service.SubscriptionService) *SubscriptionsHandler {
	validate := validator.New()
	validate.RegisterTagNameFunc(jsonFieldName)
	return &SubscriptionsHandler{subscriptions: subscriptionService, validate: validate}
}

// Add handles POST /users/:id/subscriptions.
func (h *SubscriptionsHandler) Add(c *fiber.Ctx) error {
	userID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req dto.SubscriptionRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := h.validate.Struct(req); err != nil {
		return validationError(err)
	}
	data, err := req.ToDomain()
	if err != nil {
		return apperrors.NewValidationError(err.Error(), nil)
	}

	sub, err := h.subscriptions.AddSubscription(c.UserContext(), userID, data)
	if err != nil {
		return err
	}
	return c.Status(http.StatusOK).JSON(dto.SubscriptionFromDomain(sub))
}

// List handles GET /users/:id/subscriptions.
func (h *SubscriptionsHandler) List(c *fiber.Ctx) error {
	userID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	subs, err := h.subscriptions.GetUserSubscriptions(c.UserContext(), userID)
	if err != nil {
		return err
	}
	return c.JSON(dto.SubscriptionsFromDomain(subs))
}

// Delete handles DELETE /users/:userId/subscriptions/:subId. The user id is
// parsed for shape only; ownership is not enforced.
func (h *SubscriptionsHandler) Delete(c *fiber.Ctx) error {
	if _, err := parseID(c, "userId"); err != nil {
		return err
	}
	subID, err := parseID(c, "subId")
	if err != nil {
		return err
	}

	if err := h.subscriptions.DeleteSubscription(c.UserContext(), subID); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// Top handles GET /users/subscriptions/top.
func (h *SubscriptionsHandler) Top(c *fiber.Ctx) error {
	subs, err := h.subscriptions.GetTopSubscriptions(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(dto.SubscriptionsFromDomain(subs))
}

func validationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	details := make(map[string]any, len(fieldErrs))
	names := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		details[fe.Field()] = fe.Tag()
		names = append(names, fe.Field())
	}
	return apperrors.NewValidationError("invalid fields: "+strings.Join(names, ", "), details)
}

func jsonFieldName(field reflect.StructField) string {
	name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	return name
}
