package medicalrecord

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/safetynet/safetynet/internal/platform/apierror"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/medicalRecord", h.GetMedicalRecord)
	api.GET("/medicalRecords", h.ListMedicalRecords)
	api.POST("/medicalRecord", h.CreateMedicalRecord)
	api.PUT("/medicalRecord", h.UpdateMedicalRecord)
	api.DELETE("/medicalRecord", h.DeleteMedicalRecord)
}

func (h *Handler) GetMedicalRecord(c echo.Context) error {
	id := Identity{FirstName: c.QueryParam("firstName"), LastName: c.QueryParam("lastName")}
	if err := id.Validate(); err != nil {
		return apierror.FromError(err)
	}
	m, err := h.svc.GetMedicalRecord(c.Request().Context(), id)
	if err != nil {
		return apierror.FromError(err)
	}
	return c.JSON(http.StatusOK, m)
}

func (h *Handler) ListMedicalRecords(c echo.Context) error {
	items, err := h.svc.ListMedicalRecords(c.Request().Context())
	if err != nil {
		return apierror.FromError(err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) CreateMedicalRecord(c echo.Context) error {
	var m MedicalRecord
	if err := c.Bind(&m); err != nil {
		return apierror.FromBindError(err)
	}
	if err := m.Validate(); err != nil {
		return apierror.FromError(err)
	}
	if err := h.svc.CreateMedicalRecord(c.Request().Context(), &m); err != nil {
		return apierror.FromError(err)
	}
	return c.JSON(http.StatusCreated, clone(m))
}

func (h *Handler) UpdateMedicalRecord(c echo.Context) error {
	var m MedicalRecord
	if err := c.Bind(&m); err != nil {
		return apierror.FromBindError(err)
	}
	if err := m.Validate(); err != nil {
		return apierror.FromError(err)
	}
	if err := h.svc.UpdateMedicalRecord(c.Request().Context(), &m); err != nil {
		return apierror.FromError(err)
	}
	return c.JSON(http.StatusOK, clone(m))
}

func (h *Handler) DeleteMedicalRecord(c echo.Context) error {
	var id Identity
	if err := c.Bind(&id); err != nil {
		return apierror.FromBindError(err)
	}
	if err := id.Validate(); err != nil {
		return apierror.FromError(err)
	}
	if err := h.svc.DeleteMedicalRecord(c.Request().Context(), id); err != nil {
		return apierror.FromError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
