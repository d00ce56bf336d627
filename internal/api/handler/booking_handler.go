package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/kodihomes/rental-platform/internal/core/domain"
	"github.com/kodihomes/rental-platform/internal/core/ports"
)

// BookingHandler exposes the tenant booking workflow.
type BookingHandler struct {
	service ports.BookingService
}

func NewBookingHandler(service ports.BookingService) *BookingHandler {
	return &BookingHandler{service: service}
}

// Open handles POST /v1/bookings/drafts.
//
// @Summary      Start a booking for a listing
// @Tags         bookings
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      openDraftRequest  true  "Listing to book"
// @Success      201   {object}  draftResponse
// @Failure      400   {object}  errorResponse
// @Failure      303   {object}  ports.Decision
// @Failure      422   {object}  errorResponse
// @Router       /v1/bookings/drafts [post]
func (h *BookingHandler) Open(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	var req openDraftRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	d, err := h.service.OpenDraft(c.Request().Context(), ports.OpenDraftInput{
		Identity:     id,
		PropertyID:   req.PropertyID,
		PriceDisplay: req.PriceDisplay,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toDraftResponse(d))
}

// Get handles GET /v1/bookings/drafts/:id.
//
// @Summary      Get a booking draft
// @Tags         bookings
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Draft id"
// @Success      200  {object}  draftResponse
// @Failure      404  {object}  errorResponse
// @Router       /v1/bookings/drafts/{id} [get]
func (h *BookingHandler) Get(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	d, err := h.service.GetDraft(c.Request().Context(), id.ID, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toDraftResponse(d))
}

// SetDates handles PUT /v1/bookings/drafts/:id/dates.
//
// @Summary      Select check-in and check-out dates
// @Tags         bookings
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string           true  "Draft id"
// @Param        body  body      setDatesRequest  true  "Dates as YYYY-MM-DD"
// @Success      200   {object}  draftResponse
// @Failure      404   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/bookings/drafts/{id}/dates [put]
func (h *BookingHandler) SetDates(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	var req setDatesRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}
	checkIn, err := time.Parse(domain.DateLayout, req.CheckIn)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "check_in must be a date (YYYY-MM-DD)")
	}
	checkOut, err := time.Parse(domain.DateLayout, req.CheckOut)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "check_out must be a date (YYYY-MM-DD)")
	}

	d, err := h.service.SetDates(c.Request().Context(), id.ID, c.Param("id"), checkIn, checkOut)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toDraftResponse(d))
}

// SelectPaymentMethod handles PUT /v1/bookings/drafts/:id/payment-method.
//
// @Summary      Choose a payment method
// @Tags         bookings
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                true  "Draft id"
// @Param        body  body      selectPaymentRequest  true  "Payment method"
// @Success      200   {object}  draftResponse
// @Failure      404   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/bookings/drafts/{id}/payment-method [put]
func (h *BookingHandler) SelectPaymentMethod(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	var req selectPaymentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	d, err := h.service.SelectPaymentMethod(c.Request().Context(), id.ID, c.Param("id"), domain.PaymentMethod(req.Method))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toDraftResponse(d))
}

// Advance handles POST /v1/bookings/drafts/:id/advance.
//
// @Summary      Move to the next booking step
// @Tags         bookings
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Draft id"
// @Success      200  {object}  draftResponse
// @Failure      404  {object}  errorResponse
// @Failure      409  {object}  errorResponse
// @Failure      422  {object}  errorResponse
// @Router       /v1/bookings/drafts/{id}/advance [post]
func (h *BookingHandler) Advance(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	d, err := h.service.Advance(c.Request().Context(), id.ID, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toDraftResponse(d))
}

// Back handles POST /v1/bookings/drafts/:id/back.
//
// @Summary      Return to the previous booking step
// @Tags         bookings
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Draft id"
// @Success      200  {object}  draftResponse
// @Failure      404  {object}  errorResponse
// @Failure      409  {object}  errorResponse
// @Failure      422  {object}  errorResponse
// @Router       /v1/bookings/drafts/{id}/back [post]
func (h *BookingHandler) Back(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	d, err := h.service.Back(c.Request().Context(), id.ID, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toDraftResponse(d))
}

// Confirm handles POST /v1/bookings/drafts/:id/confirm and returns 202
// once the payment attempt is queued. Poll Get for progress.
//
// @Summary      Confirm and pay
// @Tags         bookings
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string          true   "Draft id"
// @Param        body  body      confirmRequest  false  "Mobile money phone number override"
// @Success      202   {object}  draftResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Failure      503   {object}  errorResponse
// @Router       /v1/bookings/drafts/{id}/confirm [post]
func (h *BookingHandler) Confirm(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	var req confirmRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	d, err := h.service.Confirm(c.Request().Context(), id.ID, c.Param("id"), req.Phone)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusAccepted, toDraftResponse(d))
}

// Close handles DELETE /v1/bookings/drafts/:id.
//
// @Summary      Abandon a booking draft
// @Tags         bookings
// @Security     BearerAuth
// @Param        id   path  string  true  "Draft id"
// @Success      204
// @Failure      404  {object}  errorResponse
// @Router       /v1/bookings/drafts/{id} [delete]
func (h *BookingHandler) Close(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	if err := h.service.Close(c.Request().Context(), id.ID, c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
