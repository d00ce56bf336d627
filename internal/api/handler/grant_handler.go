package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/kodihomes/rental-platform/internal/core/domain"
	"github.com/kodihomes/rental-platform/internal/core/ports"
)

// GrantHandler exposes administrative role grants and capabilities.
type GrantHandler struct {
	service ports.GrantService
}

func NewGrantHandler(service ports.GrantService) *GrantHandler {
	return &GrantHandler{service: service}
}

type createGrantRequest struct {
	SubjectKind string     `json:"subject_kind" validate:"required,oneof=email user_id"`
	Subject     string     `json:"subject"      validate:"required"`
	Role        string     `json:"role"         validate:"required,oneof=tenant landlord manager admin"`
	Mode        string     `json:"mode"         validate:"required,oneof=override fallback"`
	Reason      string     `json:"reason"`
	ExpiresAt   *time.Time `json:"expires_at"`
}

type issueCapabilityRequest struct {
	SubjectID string `json:"subject_id" validate:"required"`
}

type grantListResponse struct {
	Items []domain.RoleGrant `json:"items"`
	Total int                `json:"total"`
}

// Create handles POST /v1/admin/grants.
//
// @Summary      Create a role grant
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createGrantRequest  true  "Grant"
// @Success      201   {object}  domain.RoleGrant
// @Failure      400   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/admin/grants [post]
func (h *GrantHandler) Create(c echo.Context) error {
	actor, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	var req createGrantRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	g, err := h.service.CreateGrant(c.Request().Context(), actor, ports.CreateGrantInput{
		SubjectKind: domain.GrantSubjectKind(req.SubjectKind),
		Subject:     req.Subject,
		Role:        domain.Role(req.Role),
		Mode:        domain.GrantMode(req.Mode),
		Reason:      req.Reason,
		ExpiresAt:   req.ExpiresAt,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, g)
}

// List handles GET /v1/admin/grants.
//
// @Summary      List active role grants
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  grantListResponse
// @Router       /v1/admin/grants [get]
func (h *GrantHandler) List(c echo.Context) error {
	grants, err := h.service.ListGrants(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, grantListResponse{Items: grants, Total: len(grants)})
}

// Revoke handles DELETE /v1/admin/grants/:id.
//
// @Summary      Revoke a role grant
// @Tags         admin
// @Security     BearerAuth
// @Param        id   path  string  true  "Grant id"
// @Success      204
// @Failure      404  {object}  errorResponse
// @Router       /v1/admin/grants/{id} [delete]
func (h *GrantHandler) Revoke(c echo.Context) error {
	actor, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	if err := h.service.RevokeGrant(c.Request().Context(), actor, c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// IssueCapability handles POST /v1/admin/capabilities.
//
// @Summary      Issue a one-shot admin-mode capability
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      issueCapabilityRequest  true  "Target identity"
// @Success      201   {object}  ports.IssuedCapability
// @Failure      422   {object}  errorResponse
// @Router       /v1/admin/capabilities [post]
func (h *GrantHandler) IssueCapability(c echo.Context) error {
	actor, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	var req issueCapabilityRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	issued, err := h.service.IssueCapability(c.Request().Context(), actor, req.SubjectID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, issued)
}
