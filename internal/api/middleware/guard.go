package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/kodihomes/rental-platform/internal/core/domain"
	"github.com/kodihomes/rental-platform/internal/core/ports"
)

// Guard protects a route as screen. With no roles given, the access matrix
// entry for screen is the allow-list. Denied requests get 303 See Other
// with the redirect target in Location and the decision as the body.
func Guard(guard ports.AccessGuard, screen domain.Screen, roles ...domain.Role) echo.MiddlewareFunc {
	if len(roles) == 0 {
		roles, _ = domain.ScreenRoles(screen)
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			d := guard.Evaluate(c.Request().Context(), ports.AuthState{
				Identity:   IdentityFrom(c),
				Capability: CapabilityFrom(c),
			}, ports.Requirement{
				Screen:        screen,
				AllowedRoles:  roles,
				RequestedPath: c.Request().URL.RequestURI(),
			})

			if !d.Allowed() {
				if d.RedirectTo != "" {
					c.Response().Header().Set(echo.HeaderLocation, d.RedirectTo)
				}
				return c.JSON(http.StatusSeeOther, d)
			}

			c.Set(ctxRole, d.Role)
			return next(c)
		}
	}
}
