package auth

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const (
	tokenHeader = "Authorization"
	tokenPrefix = "Bearer "

	// ContextUserIDKey is where Middleware stores the authenticated user id.
	ContextUserIDKey = "user_id"
	// ContextClaimsKey is where Middleware stores the full token claims.
	ContextClaimsKey = "user_claims"
)

// Middleware returns an echo middleware that rejects requests without a
// valid bearer token and stores the caller's identity on the context.
func Middleware(signer *Signer) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(tokenHeader)
			if header == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}
			if !strings.HasPrefix(header, tokenPrefix) {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header format")
			}

			claims, err := signer.ValidateToken(strings.TrimPrefix(header, tokenPrefix))
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
			}

			userID, err := claims.UserID()
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid subject claim")
			}

			c.Set(ContextUserIDKey, userID)
			c.Set(ContextClaimsKey, claims)
			return next(c)
		}
	}
}

// UserID retrieves the authenticated user id stored by Middleware.
func UserID(c echo.Context) (uuid.UUID, bool) {
	id, ok := c.Get(ContextUserIDKey).(uuid.UUID)
	return id, ok
}

// GetClaims retrieves the full token claims stored by Middleware.
func GetClaims(c echo.Context) (*Claims, bool) {
	claims, ok := c.Get(ContextClaimsKey).(*Claims)
	return claims, ok
}
