package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/kodihomes/rental-platform/internal/api/middleware"
	"github.com/kodihomes/rental-platform/internal/core/domain"
	"github.com/kodihomes/rental-platform/internal/core/ports"
)

// AccessHandler lets UI clients ask the guard about a screen before
// navigating to it.
type AccessHandler struct {
	guard ports.AccessGuard
}

func NewAccessHandler(guard ports.AccessGuard) *AccessHandler {
	return &AccessHandler{guard: guard}
}

type screenEntry struct {
	Screen domain.Screen `json:"screen"`
	Roles  []domain.Role `json:"roles"`
}

// Matrix handles GET /v1/access and lists every protected screen with the
// roles allowed on it, for building navigation menus.
//
// @Summary      List the access matrix
// @Tags         access
// @Produce      json
// @Success      200  {array}  screenEntry
// @Router       /v1/access [get]
func (h *AccessHandler) Matrix(c echo.Context) error {
	screens := domain.Screens()
	out := make([]screenEntry, 0, len(screens))
	for _, s := range screens {
		roles, _ := domain.ScreenRoles(s)
		out = append(out, screenEntry{Screen: s, Roles: roles})
	}
	return c.JSON(http.StatusOK, out)
}

// Check handles GET /v1/access/:screen. The decision is always returned
// with 200; following a redirect is left to the client. Screens without a
// matrix entry are evaluated too and come back redirecting.
//
// @Summary      Evaluate access to a screen
// @Tags         access
// @Produce      json
// @Param        screen  path      string  true   "Screen id (e.g. tenant_dashboard)"
// @Param        path    query     string  false  "Path the user asked for, echoed into the sign-in redirect"
// @Success      200     {object}  ports.Decision
// @Router       /v1/access/{screen} [get]
func (h *AccessHandler) Check(c echo.Context) error {
	screen := domain.Screen(c.Param("screen"))
	roles, _ := domain.ScreenRoles(screen)

	d := h.guard.Evaluate(c.Request().Context(), ports.AuthState{
		Identity:   middleware.IdentityFrom(c),
		Capability: middleware.CapabilityFrom(c),
	}, ports.Requirement{
		Screen:        screen,
		AllowedRoles:  roles,
		RequestedPath: c.QueryParam("path"),
	})
	return c.JSON(http.StatusOK, d)
}
