package appointments

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
	g := api.Group("/appointments", auth.RequireRole(auth.RoleDoctor, auth.RolePatient))
	g.GET("", h.List)
	g.GET("/:id", h.Get)
	g.POST("", h.Create)
	g.PUT("/:id", h.Update)
	g.PATCH("/:id/status", h.SetStatus)
	g.DELETE("/:id", h.Delete, auth.RequireRole(auth.RoleAdmin))
}

// List returns the caller's appointment page with the query selections
// applied. Patients and doctors see their own appointments; admins see
// everything.
func (h *Handler) List(c echo.Context) error {
	ctx := c.Request().Context()
	state := listquery.StateFromContext(c, Query.DefaultSort)
	pg := pagination.FromContext(c)

	var (
		res *ListResult
		err error
	)
	switch auth.RoleFromContext(ctx) {
	case auth.RolePatient:
		pid, perr := uuid.Parse(auth.UserIDFromContext(ctx))
		if perr != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid user identity")
		}
		res, err = h.svc.ListForPatient(ctx, pid, state, pg)
	case auth.RoleDoctor:
		did, perr := uuid.Parse(auth.UserIDFromContext(ctx))
		if perr != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid user identity")
		}
		res, err = h.svc.ListForDoctor(ctx, did, state, pg)
	default:
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
	a, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "appointment not found")
	}
	if !canSee(c, a) {
		return echo.NewHTTPError(http.StatusForbidden, "not your appointment")
	}
	return c.JSON(http.StatusOK, envelope.OK(a))
}

func (h *Handler) Create(c echo.Context) error {
	var a Appointment
	if err := c.Bind(&a); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	// Patients book for themselves regardless of the submitted id.
	ctx := c.Request().Context()
	if auth.RoleFromContext(ctx) == auth.RolePatient {
		if pid, err := uuid.Parse(auth.UserIDFromContext(ctx)); err == nil {
			a.PatientID = pid
			a.PatientName = auth.UserNameFromContext(ctx)
		}
	}

	if err := h.svc.Create(ctx, &a); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, envelope.OKWithMessage(a, "appointment booked"))
}

func (h *Handler) Update(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	existing, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "appointment not found")
	}
	if !canSee(c, existing) {
		return echo.NewHTTPError(http.StatusForbidden, "not your appointment")
	}
	var a Appointment
	if err := c.Bind(&a); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	a.ID = id
	if err := h.svc.Update(c.Request().Context(), &a); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, envelope.OK(a))
}

type statusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) SetStatus(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	existing, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "appointment not found")
	}
	if !canSee(c, existing) {
		return echo.NewHTTPError(http.StatusForbidden, "not your appointment")
	}
	var req statusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	a, err := h.svc.SetStatus(c.Request().Context(), id, req.Status)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, envelope.OK(a))
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

// canSee reports whether the caller may touch the appointment: admins
// always, patients only their own bookings, doctors only their own
// schedule.
func canSee(c echo.Context, a *Appointment) bool {
	ctx := c.Request().Context()
	switch auth.RoleFromContext(ctx) {
	case auth.RolePatient:
		return a.PatientID.String() == auth.UserIDFromContext(ctx)
	case auth.RoleDoctor:
		return a.DoctorID.String() == auth.UserIDFromContext(ctx)
	}
	return true
}
