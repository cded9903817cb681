package person

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
	api.GET("/person", h.GetPerson)
	api.GET("/persons", h.ListPersons)
	api.POST("/person", h.CreatePerson)
	api.PUT("/person", h.UpdatePerson)
	api.DELETE("/person", h.DeletePerson)
}

func (h *Handler) GetPerson(c echo.Context) error {
	id := Identity{FirstName: c.QueryParam("firstName"), LastName: c.QueryParam("lastName")}
	if err := id.Validate(); err != nil {
		return apierror.FromError(err)
	}
	p, err := h.svc.GetPerson(c.Request().Context(), id)
	if err != nil {
		return apierror.FromError(err)
	}
	return c.JSON(http.StatusOK, p)
}

// ListPersons returns every person, or only those at ?address= when given.
func (h *Handler) ListPersons(c echo.Context) error {
	ctx := c.Request().Context()
	var (
		items []*Person
		err   error
	)
	if address := c.QueryParam("address"); address != "" {
		items, err = h.svc.ListPersonsByAddress(ctx, address)
	} else {
		items, err = h.svc.ListPersons(ctx)
	}
	if err != nil {
		return apierror.FromError(err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) CreatePerson(c echo.Context) error {
	var p Person
	if err := c.Bind(&p); err != nil {
		return apierror.FromBindError(err)
	}
	if err := p.Validate(); err != nil {
		return apierror.FromError(err)
	}
	if err := h.svc.CreatePerson(c.Request().Context(), &p); err != nil {
		return apierror.FromError(err)
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *Handler) UpdatePerson(c echo.Context) error {
	var p Person
	if err := c.Bind(&p); err != nil {
		return apierror.FromBindError(err)
	}
	if err := p.Validate(); err != nil {
		return apierror.FromError(err)
	}
	if err := h.svc.UpdatePerson(c.Request().Context(), &p); err != nil {
		return apierror.FromError(err)
	}
	return c.JSON(http.StatusOK, p)
}

// DeletePerson takes the identity either as a JSON body or as query
// parameters.
func (h *Handler) DeletePerson(c echo.Context) error {
	var id Identity
	if err := c.Bind(&id); err != nil {
		return apierror.FromBindError(err)
	}
	if err := id.Validate(); err != nil {
		return apierror.FromError(err)
	}
	if err := h.svc.DeletePerson(c.Request().Context(), id); err != nil {
		return apierror.FromError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
