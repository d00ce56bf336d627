package middleware

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/kodihomes/rental-platform/internal/core/domain"
)

// Context keys set by Auth and Guard.
const (
	ctxIdentity   = "identity"
	ctxCapability = "capability"
	ctxRole       = "role"
)

// CapabilityHeader carries an optional one-shot admin-mode token.
const CapabilityHeader = "X-Admin-Capability"

type identityClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Auth validates the identity JWT when one is presented and injects the
// identity into context. Requests without an Authorization header pass
// through anonymously; the route guard decides what they may see.
func Auth(jwtSecret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if token := strings.TrimSpace(c.Request().Header.Get(CapabilityHeader)); token != "" {
				c.Set(ctxCapability, token)
			}

			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return next(c)
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
			}

			claims := &identityClaims{}
			tkn, err := jwt.ParseWithClaims(parts[1], claims, func(token *jwt.Token) (interface{}, error) {
				if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
					return nil, jwt.ErrTokenSignatureInvalid
				}
				return []byte(jwtSecret), nil
			})
			if err != nil || !tkn.Valid || claims.Subject == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			SetIdentity(c, &domain.Identity{ID: claims.Subject, Email: claims.Email})
			return next(c)
		}
	}
}

// SetIdentity stores the authenticated identity on c.
func SetIdentity(c echo.Context, id *domain.Identity) {
	c.Set(ctxIdentity, id)
}

// IdentityFrom returns the identity injected by Auth, or nil.
func IdentityFrom(c echo.Context) *domain.Identity {
	id, _ := c.Get(ctxIdentity).(*domain.Identity)
	return id
}

// CapabilityFrom returns the admin-mode token presented with the request.
func CapabilityFrom(c echo.Context) string {
	s, _ := c.Get(ctxCapability).(string)
	return s
}

// RoleFrom returns the role resolved by Guard.
func RoleFrom(c echo.Context) domain.Role {
	r, _ := c.Get(ctxRole).(domain.Role)
	return r
}
