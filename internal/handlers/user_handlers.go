package handlers

import (
	"net/http"

	"rentledger/internal/common"
	"rentledger/internal/services"

	"github.com/labstack/echo/v4"
)

// UserHandlers handles profile requests for the authenticated account.
type UserHandlers struct {
	authService services.AuthService
}

func NewUserHandlers(authService services.AuthService) *UserHandlers {
	return &UserHandlers{authService: authService}
}

func (h *UserHandlers) GetProfile(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendError(c, common.NewAuthError("User not authenticated"))
	}

	user, err := h.authService.GetProfile(ctx, userID)
	if err != nil {
		return common.SendError(c, err)
	}

	return common.SendSuccess(c, http.StatusOK, "Profile fetched", user)
}

func (h *UserHandlers) UpdateProfile(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendError(c, common.NewAuthError("User not authenticated"))
	}

	var req services.UpdateProfileRequest
	if err := c.Bind(&req); err != nil {
		return common.SendError(c, common.NewValidationError("", "Invalid request format"))
	}

	user, err := h.authService.UpdateProfile(ctx, userID, &req)
	if err != nil {
		return common.SendError(c, err)
	}

	return common.SendSuccess(c, http.StatusOK, "Profile updated", user)
}
