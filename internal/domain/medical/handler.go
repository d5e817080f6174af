package medical

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/carebridge/portal/internal/platform/auth"
	"github.com/carebridge/portal/internal/platform/envelope"
	"github.com/carebridge/portal/pkg/listquery"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts the patient chart endpoints. Patients see their
// own chart; doctors and admins address a chart via the patient_id
// query parameter.
func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("/medical", auth.RequireRole(auth.RoleDoctor, auth.RolePatient))
	g.GET("/history", h.History)
	g.GET("/medications", h.Medications)
	g.POST("/medications", h.AddMedication)
	g.DELETE("/medications/:id", h.RemoveMedication)
	g.GET("/allergies", h.Allergies)
	g.POST("/allergies", h.AddAllergy)
	g.DELETE("/allergies/:id", h.RemoveAllergy)
}

// chartPatientID resolves which patient's chart the caller may read.
func chartPatientID(c echo.Context) (string, error) {
	if auth.RoleFromContext(c.Request().Context()) == auth.RolePatient {
		return auth.UserIDFromContext(c.Request().Context()), nil
	}
	pid := c.QueryParam("patient_id")
	if pid == "" {
		return "", echo.NewHTTPError(http.StatusBadRequest, "patient_id is required")
	}
	return pid, nil
}

func (h *Handler) History(c echo.Context) error {
	pid, err := chartPatientID(c)
	if err != nil {
		return err
	}
	state := listquery.StateFromContext(c, HistoryQuery.DefaultSort)

	res, err := h.svc.History(c.Request().Context(), pid, state)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, envelope.Response{
		Success:    true,
		Data:       res.Items,
		Aggregates: &res.Totals,
		Message:    res.Notice,
	})
}

func (h *Handler) Medications(c echo.Context) error {
	pid, err := chartPatientID(c)
	if err != nil {
		return err
	}
	state := listquery.StateFromContext(c, MedicationQuery.DefaultSort)

	res, err := h.svc.Medications(c.Request().Context(), pid, state)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, envelope.Response{
		Success: true, Data: res.Items, Aggregates: &res.Totals,
	})
}

func (h *Handler) AddMedication(c echo.Context) error {
	pid, err := chartPatientID(c)
	if err != nil {
		return err
	}
	var m Medication
	if err := c.Bind(&m); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	created, err := h.svc.AddMedication(c.Request().Context(), pid, &m)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, envelope.OK(created))
}

func (h *Handler) RemoveMedication(c echo.Context) error {
	pid, err := chartPatientID(c)
	if err != nil {
		return err
	}
	if err := h.svc.RemoveMedication(c.Request().Context(), pid, c.Param("id")); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) Allergies(c echo.Context) error {
	pid, err := chartPatientID(c)
	if err != nil {
		return err
	}
	state := listquery.StateFromContext(c, AllergyQuery.DefaultSort)

	res, err := h.svc.Allergies(c.Request().Context(), pid, state)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, envelope.Response{
		Success: true, Data: res.Items, Aggregates: &res.Totals,
	})
}

func (h *Handler) AddAllergy(c echo.Context) error {
	pid, err := chartPatientID(c)
	if err != nil {
		return err
	}
	var a Allergy
	if err := c.Bind(&a); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	created, err := h.svc.AddAllergy(c.Request().Context(), pid, &a)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, envelope.OK(created))
}

func (h *Handler) RemoveAllergy(c echo.Context) error {
	pid, err := chartPatientID(c)
	if err != nil {
		return err
	}
	if err := h.svc.RemoveAllergy(c.Request().Context(), pid, c.Param("id")); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}
