package admin

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/carebridge/portal/internal/platform/auth"
	"github.com/carebridge/portal/internal/platform/envelope"
	"github.com/carebridge/portal/internal/platform/session"
	"github.com/carebridge/portal/pkg/listquery"
	"github.com/carebridge/portal/pkg/pagination"
)

type Handler struct {
	svc      *Service
	issuer   *auth.Issuer
	sessions *session.Manager
}

func NewHandler(svc *Service, issuer *auth.Issuer, sessions *session.Manager) *Handler {
	return &Handler{svc: svc, issuer: issuer, sessions: sessions}
}

// RegisterPublicRoutes mounts the unauthenticated sign-in endpoints.
func (h *Handler) RegisterPublicRoutes(g *echo.Group) {
	g.POST("/auth/register", h.Register)
	g.POST("/auth/login", h.Login)
}

// RegisterRoutes mounts the authenticated endpoints: logout for every
// role, user management and the audit trail for admins.
func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/auth/logout", h.Logout, auth.RequireRole(auth.RoleDoctor, auth.RolePatient))

	users := api.Group("/users", auth.RequireRole(auth.RoleAdmin))
	users.GET("", h.ListUsers)
	users.GET("/:id", h.GetUser)
	users.PATCH("/:id/status", h.SetUserStatus)
	users.DELETE("/:id", h.DeleteUser)

	api.GET("/audit", h.ListAudit, auth.RequireRole(auth.RoleAdmin))
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

func (h *Handler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	// Self-service registration only creates patient accounts; staff
	// accounts are provisioned by an admin.
	if req.Role != "" && req.Role != auth.RolePatient {
		return echo.NewHTTPError(http.StatusForbidden, "only patient accounts can self-register")
	}
	u, err := h.svc.Register(c.Request().Context(), req.Name, req.Email, req.Password, auth.RolePatient)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, envelope.OKWithMessage(u, "account created, please sign in"))
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string      `json:"token"`
	User  *SystemUser `json:"user"`
}

func (h *Handler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	ctx := c.Request().Context()

	u, err := h.svc.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	}

	token, err := h.issuer.Issue(u.ID.String(), u.Name, u.Email, u.Role)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "could not sign you in")
	}
	if err := h.svc.TouchLogin(ctx, u); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "could not sign you in")
	}
	if err := h.sessions.Persist(ctx, session.Session{
		Token:  token,
		UserID: u.ID.String(),
		Name:   u.Name,
		Email:  u.Email,
		Role:   u.Role,
	}); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "could not sign you in")
	}

	c.SetCookie(&http.Cookie{
		Name:     auth.TokenCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return c.JSON(http.StatusOK, envelope.OK(loginResponse{Token: token, User: u}))
}

func (h *Handler) Logout(c echo.Context) error {
	ctx := c.Request().Context()
	if uid := auth.UserIDFromContext(ctx); uid != "" {
		if err := h.sessions.Clear(ctx, uid); err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "could not sign you out")
		}
	}
	c.SetCookie(&http.Cookie{
		Name:     auth.TokenCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
	})
	return c.JSON(http.StatusOK, envelope.OKWithMessage(nil, "signed out"))
}

func (h *Handler) ListUsers(c echo.Context) error {
	state := listquery.StateFromContext(c, Query.DefaultSort)
	pg := pagination.FromContext(c)

	res, err := h.svc.ListUsers(c.Request().Context(), state, pg)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, envelope.Paged(res.Items, res.Cursor, res.Totals))
}

func (h *Handler) GetUser(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	u, err := h.svc.GetUser(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "user not found")
	}
	return c.JSON(http.StatusOK, envelope.OK(u))
}

type statusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) SetUserStatus(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req statusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	u, err := h.svc.SetUserStatus(c.Request().Context(), id, req.Status)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, envelope.OK(u))
}

func (h *Handler) DeleteUser(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.DeleteUser(c.Request().Context(), id); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) ListAudit(c echo.Context) error {
	state := listquery.StateFromContext(c, AuditQuery.DefaultSort)
	pg := pagination.FromContext(c)

	res, err := h.svc.ListAudit(c.Request().Context(), state, pg)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, envelope.Paged(res.Items, res.Cursor, res.Totals))
}
