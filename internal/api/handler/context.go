package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/kodihomes/rental-platform/internal/api/middleware"
	"github.com/kodihomes/rental-platform/internal/core/domain"
)

// ctxIdentity extracts the identity injected by the Auth middleware. Guarded
// routes always carry one; its absence means the route was mounted without
// the guard and is rejected with 401.
func ctxIdentity(c echo.Context) (domain.Identity, error) {
	id := middleware.IdentityFrom(c)
	if id == nil || id.ID == "" {
		return domain.Identity{}, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return *id, nil
}
