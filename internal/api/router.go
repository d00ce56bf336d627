package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/kodihomes/rental-platform/docs"
	"github.com/kodihomes/rental-platform/internal/api/handler"
	"github.com/kodihomes/rental-platform/internal/api/middleware"
	"github.com/kodihomes/rental-platform/internal/core/domain"
	"github.com/kodihomes/rental-platform/internal/core/ports"
)

// Dependencies carries everything the router wires into handlers.
type Dependencies struct {
	JWTSecret string
	Logger    zerolog.Logger
	Guard     ports.AccessGuard
	Bookings  ports.BookingService
	Grants    ports.GrantService
	// Health maps a dependency name to its readiness check.
	Health map[string]handler.Pinger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(deps.Logger))
	e.Use(echoprometheus.NewMiddleware("rentals"))

	// --- Health probes, metrics and docs (no auth required) ---
	healthHandler := handler.NewHealthHandler(deps.Health)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	v1 := e.Group("/v1", middleware.Auth(deps.JWTSecret))

	// --- Access ---
	accessHandler := handler.NewAccessHandler(deps.Guard)
	v1.GET("/access", accessHandler.Matrix)
	v1.GET("/access/:screen", accessHandler.Check)

	// --- Booking workflow (tenants) ---
	bookingHandler := handler.NewBookingHandler(deps.Bookings)
	bookings := v1.Group("/bookings/drafts", middleware.Guard(deps.Guard, domain.ScreenBookingRequest, domain.RoleTenant))
	bookings.POST("", bookingHandler.Open)
	bookings.GET("/:id", bookingHandler.Get)
	bookings.DELETE("/:id", bookingHandler.Close)
	bookings.PUT("/:id/dates", bookingHandler.SetDates)
	bookings.PUT("/:id/payment-method", bookingHandler.SelectPaymentMethod)
	bookings.POST("/:id/advance", bookingHandler.Advance)
	bookings.POST("/:id/back", bookingHandler.Back)
	bookings.POST("/:id/confirm", bookingHandler.Confirm)

	// --- Administration ---
	grantHandler := handler.NewGrantHandler(deps.Grants)
	admin := v1.Group("/admin", middleware.Guard(deps.Guard, domain.ScreenAdminGrants, domain.RoleAdmin))
	admin.POST("/grants", grantHandler.Create)
	admin.GET("/grants", grantHandler.List)
	admin.DELETE("/grants/:id", grantHandler.Revoke)
	admin.POST("/capabilities", grantHandler.IssueCapability)

	return e
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogURI:       true,
		LogMethod:    true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Error != nil || v.Status >= 500 {
				ev = log.Error().Err(v.Error)
			}
			if role := middleware.RoleFrom(c); role != "" {
				ev = ev.Str("role", string(role))
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
