package firestation

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/safetynet/safetynet/internal/platform/apierror"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes wires the CRUD endpoints. GET /firestation itself is the
// coverage view and is registered by the alert handler.
func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/firestations", h.ListFireStations)
	api.GET("/firestation/address", h.GetFireStation)
	api.POST("/firestation", h.CreateFireStation)
	api.PUT("/firestation", h.UpdateFireStation)
	api.DELETE("/firestation", h.DeleteFireStation)
}

func (h *Handler) GetFireStation(c echo.Context) error {
	address := c.QueryParam("address")
	if address == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "address is required")
	}
	f, err := h.svc.GetFireStation(c.Request().Context(), address)
	if err != nil {
		return apierror.FromError(err)
	}
	return c.JSON(http.StatusOK, f)
}

// ListFireStations returns every mapping, or those of ?stationNumber= when
// given.
func (h *Handler) ListFireStations(c echo.Context) error {
	ctx := c.Request().Context()
	raw := c.QueryParam("stationNumber")
	if raw == "" {
		items, err := h.svc.ListFireStations(ctx)
		if err != nil {
			return apierror.FromError(err)
		}
		return c.JSON(http.StatusOK, items)
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid stationNumber")
	}
	items, err := h.svc.ListByStationNumber(ctx, n)
	if err != nil {
		return apierror.FromError(err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) CreateFireStation(c echo.Context) error {
	var f FireStation
	if err := c.Bind(&f); err != nil {
		return apierror.FromBindError(err)
	}
	if err := f.Validate(); err != nil {
		return apierror.FromError(err)
	}
	if err := h.svc.CreateFireStation(c.Request().Context(), &f); err != nil {
		return apierror.FromError(err)
	}
	return c.JSON(http.StatusCreated, f)
}

func (h *Handler) UpdateFireStation(c echo.Context) error {
	var f FireStation
	if err := c.Bind(&f); err != nil {
		return apierror.FromBindError(err)
	}
	if err := f.Validate(); err != nil {
		return apierror.FromError(err)
	}
	if err := h.svc.UpdateFireStation(c.Request().Context(), &f); err != nil {
		return apierror.FromError(err)
	}
	return c.JSON(http.StatusOK, f)
}

func (h *Handler) DeleteFireStation(c echo.Context) error {
	var req AddressRequest
	if err := c.Bind(&req); err != nil {
		return apierror.FromBindError(err)
	}
	var v apierror.Validator
	v.NotBlank("address", req.Address, "address cannot be blank")
	if err := v.Err(); err != nil {
		return apierror.FromError(err)
	}
	if err := h.svc.DeleteFireStation(c.Request().Context(), req.Address); err != nil {
		return apierror.FromError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
