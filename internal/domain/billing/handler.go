package billing

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/carebridge/portal/internal/platform/auth"
	"github.com/carebridge/portal/internal/platform/envelope"
	"github.com/carebridge/portal/pkg/listquery"
	"github.com/carebridge/portal/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("/invoices")

	read := g.Group("", auth.RequireRole(auth.RolePatient))
	read.GET("", h.List)
	read.GET("/:id", h.Get)
	read.POST("/:id/pay", h.Pay)

	write := g.Group("", auth.RequireRole(auth.RoleAdmin))
	write.POST("", h.Create)
	write.PUT("/:id", h.Update)
	write.DELETE("/:id", h.Delete)
}

// List returns an invoice page. Patients see their own invoices,
// admins see everything.
func (h *Handler) List(c echo.Context) error {
	ctx := c.Request().Context()
	state := listquery.StateFromContext(c, Query.DefaultSort)
	pg := pagination.FromContext(c)

	var (
		res *ListResult
		err error
	)
	if auth.RoleFromContext(ctx) == auth.RolePatient {
		pid, perr := uuid.Parse(auth.UserIDFromContext(ctx))
		if perr != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid user identity")
		}
		res, err = h.svc.ListForPatient(ctx, pid, state, pg)
	} else {
		res, err = h.svc.List(ctx, state, pg)
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, envelope.Paged(res.Items, res.Cursor, res.Totals))
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	inv, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "invoice not found")
	}
	if !canSee(c, inv) {
		return echo.NewHTTPError(http.StatusForbidden, "not your invoice")
	}
	return c.JSON(http.StatusOK, envelope.OK(inv))
}

// Pay settles the caller's invoice.
func (h *Handler) Pay(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	ctx := c.Request().Context()
	inv, err := h.svc.Get(ctx, id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "invoice not found")
	}
	if !canSee(c, inv) {
		return echo.NewHTTPError(http.StatusForbidden, "not your invoice")
	}
	inv, err = h.svc.MarkPaid(ctx, id)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, envelope.OKWithMessage(inv, "invoice paid"))
}

func (h *Handler) Create(c echo.Context) error {
	var inv Invoice
	if err := c.Bind(&inv); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.Create(c.Request().Context(), &inv); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, envelope.OK(inv))
}

func (h *Handler) Update(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var inv Invoice
	if err := c.Bind(&inv); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	inv.ID = id
	if err := h.svc.Update(c.Request().Context(), &inv); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, envelope.OK(inv))
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

// canSee reports whether the caller may read the invoice: admins
// always, patients only for their own.
func canSee(c echo.Context, inv *Invoice) bool {
	ctx := c.Request().Context()
	if auth.RoleFromContext(ctx) == auth.RoleAdmin {
		return true
	}
	return inv.PatientID.String() == auth.UserIDFromContext(ctx)
}
