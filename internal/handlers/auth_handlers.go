package handlers

import (
	"net/http"
	"time"

	"rentledger/internal/caching"
	"rentledger/internal/common"
	"rentledger/internal/services"

	"github.com/labstack/echo/v4"
)

const (
	forgotPasswordLimit  = 5
	forgotPasswordWindow = time.Hour
)

// AuthHandlers handles authentication-related HTTP requests
type AuthHandlers struct {
	authService services.AuthService
	cache       caching.CacheService
}

func NewAuthHandlers(authService services.AuthService, cache caching.CacheService) *AuthHandlers {
	return &AuthHandlers{
		authService: authService,
		cache:       cache,
	}
}

// LoginRequest represents the login request payload
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

type ResetPasswordRequest struct {
	Email       string `json:"email"`
	ResetCode   string `json:"resetCode"`
	NewPassword string `json:"newPassword"`
}

// Register creates a new landlord account and returns the user with a
// signed token.
func (h *AuthHandlers) Register(c echo.Context) error {
	ctx := c.Request().Context()

	var req services.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return common.SendError(c, common.NewValidationError("", "Invalid request format"))
	}

	result, err := h.authService.Register(ctx, &req)
	if err != nil {
		return common.SendError(c, err)
	}

	return common.SendSuccess(c, http.StatusCreated, "Registration successful", echo.Map{
		"user":  result.User,
		"token": result.Token,
	})
}

// Login authenticates with email and password.
func (h *AuthHandlers) Login(c echo.Context) error {
	ctx := c.Request().Context()

	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return common.SendError(c, common.NewValidationError("", "Invalid request format"))
	}
	if req.Email == "" || req.Password == "" {
		return common.SendError(c, common.NewValidationError("", "Email and password are required"))
	}

	result, err := h.authService.Login(ctx, req.Email, req.Password)
	if err != nil {
		return common.SendError(c, err)
	}

	return common.SendSuccess(c, http.StatusOK, "Login successful", echo.Map{
		"user":  result.User,
		"token": result.Token,
	})
}

// Logout acknowledges the logout. Tokens are stateless so the client
// simply discards its copy.
func (h *AuthHandlers) Logout(c echo.Context) error {
	return common.SendSuccess(c, http.StatusOK, "Logged out successfully", nil)
}

// ForgotPassword issues a reset code to the account's email address.
// Rate limited per client IP to keep the mailer from being farmed.
func (h *AuthHandlers) ForgotPassword(c echo.Context) error {
	ctx := c.Request().Context()

	var req ForgotPasswordRequest
	if err := c.Bind(&req); err != nil {
		return common.SendError(c, common.NewValidationError("", "Invalid request format"))
	}

	limited, err := h.cache.IsRateLimited(ctx, "forgot-password:"+c.RealIP(), forgotPasswordLimit, forgotPasswordWindow)
	if err == nil && limited {
		return common.SendError(c, common.NewValidationError("", "Too many reset requests, try again later"))
	}

	if err := h.authService.ForgotPassword(ctx, req.Email); err != nil {
		return common.SendError(c, err)
	}

	return common.SendSuccess(c, http.StatusOK, "Password reset code sent to your email", nil)
}

// ResetPassword exchanges a valid reset code for a new password.
func (h *AuthHandlers) ResetPassword(c echo.Context) error {
	ctx := c.Request().Context()

	var req ResetPasswordRequest
	if err := c.Bind(&req); err != nil {
		return common.SendError(c, common.NewValidationError("", "Invalid request format"))
	}

	if err := h.authService.ResetPassword(ctx, req.Email, req.ResetCode, req.NewPassword); err != nil {
		return common.SendError(c, err)
	}

	return common.SendSuccess(c, http.StatusOK, "Password reset successful", nil)
}
