package middleware

import (
	"context"
	"strings"

	"rentledger/internal/common"
	"rentledger/internal/repositories"
	"rentledger/internal/services"

	"github.com/labstack/echo/v4"
)

// Authenticate validates the bearer token, confirms the account still
// exists and is active, and attaches the caller's identity to the
// request context.
func Authenticate(tokens services.TokenService, userRepo repositories.UserRepository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return common.SendError(c, common.NewAuthError("Not authorized, no token"))
			}

			tokenString := strings.TrimPrefix(authHeader, "Bearer ")
			if tokenString == authHeader {
				return common.SendError(c, common.NewAuthError("Not authorized, no token"))
			}

			claims, err := tokens.Verify(tokenString)
			if err != nil {
				return common.SendError(c, err)
			}

			userID, err := claims.UserID()
			if err != nil {
				return common.SendError(c, common.NewAuthError("Invalid token"))
			}

			user, err := userRepo.GetByID(c.Request().Context(), userID)
			if err != nil {
				if repositories.IsNoRows(err) {
					return common.SendError(c, common.NewAuthError("User not found"))
				}
				return common.SendError(c, common.NewDependencyError("Error loading user", err))
			}
			if !user.IsActive {
				return common.SendError(c, common.NewAuthError("Account has been deactivated"))
			}

			ctx := context.WithValue(c.Request().Context(), common.UserIDKey, user.ID)
			ctx = context.WithValue(ctx, common.UserRoleKey, user.Role)
			c.SetRequest(c.Request().WithContext(ctx))

			return next(c)
		}
	}
}

// RequireRole gates a route to callers holding one of the given roles.
// Must run after Authenticate.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, ok := common.GetUserRoleFromContext(c.Request().Context())
			if !ok {
				return common.SendError(c, common.NewAuthError("User not authenticated"))
			}
			for _, allowed := range roles {
				if role == allowed {
					return next(c)
				}
			}
			return common.SendError(c, common.NewForbiddenError("Insufficient permissions"))
		}
	}
}
