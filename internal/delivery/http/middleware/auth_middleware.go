// Package middleware contains the HTTP middleware for the API server.
package middleware

import (
	"strings"

	deliverycontext "jobtrack/internal/delivery/context"
	"jobtrack/internal/delivery/http/response"
	"jobtrack/internal/domain/service"

	"github.com/labstack/echo/v4"
)

// AuthMiddleware validates the session access token on protected routes.
type AuthMiddleware struct {
	tokenSvc service.TokenService
}

// NewAuthMiddleware is the constructor for AuthMiddleware.
func NewAuthMiddleware(tokenSvc service.TokenService) *AuthMiddleware {
	return &AuthMiddleware{tokenSvc: tokenSvc}
}

// Authenticate checks the Bearer access token. Refresh tokens are rejected
// here by their kind claim even though they carry a valid signature.
func (m *AuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		authHeader := c.Request().Header.Get("Authorization")
		if authHeader == "" {
			return response.Unauthorized(c, "TOKEN_INVALID", "Authorization header is missing")
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			return response.Unauthorized(c, "TOKEN_INVALID", "Invalid token format, must be Bearer token")
		}

		claims, err := m.tokenSvc.ValidateAccess(tokenString)
		if err != nil {
			return response.Unauthorized(c, "TOKEN_INVALID", "Invalid or expired token")
		}

		// Set user info on the context for handlers to use
		deliverycontext.SetUserID(c, claims.UserID)

		return next(c)
	}
}
