package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func requestWithRole(t *testing.T, mw echo.MiddlewareFunc, role string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	setRole := func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := context.WithValue(c.Request().Context(), UserRoleKey, role)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
	e.GET("/x", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}, setRole, mw)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
	return rec
}

func TestRequireRole_Matching(t *testing.T) {
	rec := requestWithRole(t, RequireRole(RoleDoctor), RoleDoctor)
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestRequireRole_AdminPassesEverywhere(t *testing.T) {
	rec := requestWithRole(t, RequireRole(RolePatient), RoleAdmin)
	if rec.Code != http.StatusOK {
		t.Errorf("expected admin to pass patient check, got %d", rec.Code)
	}
}

func TestRequireRole_WrongRole(t *testing.T) {
	rec := requestWithRole(t, RequireRole(RoleDoctor), RolePatient)
	if rec.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", rec.Code)
	}
}

func TestRequireRole_NoRoleOnContext(t *testing.T) {
	rec := requestWithRole(t, RequireRole(RoleDoctor), "")
	if rec.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", rec.Code)
	}
}

func TestRequireRole_MultipleAccepted(t *testing.T) {
	rec := requestWithRole(t, RequireRole(RoleDoctor, RolePatient), RolePatient)
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}
