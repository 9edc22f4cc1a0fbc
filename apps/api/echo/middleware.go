package echoapi

import (
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// requireRole lets through sessions with the given role only; it must run after the JWT middleware.
func requireRole(role string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context claims")
			}
			if claims.Role != role {
				return errHttpForbidden
			}
			return next(ctx)
		}
	}
}
