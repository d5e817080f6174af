package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// HomePath returns the landing route for a role.
func HomePath(role string) string {
	switch role {
	case RoleAdmin:
		return "/admin"
	case RoleDoctor:
		return "/doctor"
	case RolePatient:
		return "/patient"
	}
	return "/login"
}

// RoleGuard protects role-scoped page routes. Browser navigations are
// redirected with 303 See Other: unauthenticated visitors to /login,
// wrong-role visitors to their own home. Non-browser clients get the
// usual 401/403 instead. Admins may enter every section.
func RoleGuard(issuer *Issuer, role string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, err := issuer.Verify(tokenFromRequest(c))
			if err != nil {
				if wantsHTML(c) {
					return c.Redirect(http.StatusSeeOther, "/login")
				}
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization")
			}

			if claims.Role != role && claims.Role != RoleAdmin {
				if wantsHTML(c) {
					return c.Redirect(http.StatusSeeOther, HomePath(claims.Role))
				}
				return echo.NewHTTPError(http.StatusForbidden, "wrong role for this section")
			}

			ctx := c.Request().Context()
			ctx = context.WithValue(ctx, UserIDKey, claims.Subject)
			ctx = context.WithValue(ctx, UserNameKey, claims.Name)
			ctx = context.WithValue(ctx, UserRoleKey, claims.Role)
			c.SetRequest(c.Request().WithContext(ctx))

			return next(c)
		}
	}
}

// wantsHTML reports whether the request is a browser navigation rather
// than an API call.
func wantsHTML(c echo.Context) bool {
	accept := c.Request().Header.Get("Accept")
	return strings.Contains(accept, "text/html")
}
