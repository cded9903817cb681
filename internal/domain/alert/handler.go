package alert

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/safetynet/safetynet/internal/platform/agecalc"
	"github.com/safetynet/safetynet/internal/platform/apierror"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/firestation", h.StationCoverage)
	api.GET("/childAlert", h.ChildAlert)
}

// StationCoverage answers 204 when nobody lives in the station's area.
func (h *Handler) StationCoverage(c echo.Context) error {
	n, err := strconv.Atoi(c.QueryParam("stationNumber"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "stationNumber must be an integer")
	}
	cov, err := h.svc.CoverageByStation(c.Request().Context(), n)
	if err != nil {
		return apierror.FromError(err)
	}
	if len(cov.Persons) == 0 {
		return c.NoContent(http.StatusNoContent)
	}
	return c.JSON(http.StatusOK, cov)
}

func (h *Handler) ChildAlert(c echo.Context) error {
	address := c.QueryParam("address")
	if address == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "address is required")
	}
	household, err := h.svc.HouseholdAtAddress(c.Request().Context(), address)
	switch {
	case errors.Is(err, ErrNoChildren):
		return c.NoContent(http.StatusNoContent)
	case errors.Is(err, agecalc.ErrInvalidDateFormat):
		// The stored data is bad, not the request.
		return echo.NewHTTPError(http.StatusUnprocessableEntity, apierror.Body{Message: err.Error()})
	case err != nil:
		return apierror.FromError(err)
	}
	return c.JSON(http.StatusOK, household)
}
