package medication

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"

	"github.com/cigali/cigali/internal/platform/auth"
	"github.com/cigali/cigali/internal/platform/db"
	"github.com/cigali/cigali/pkg/pagination"
)

type Handler struct {
	svc   *Service
	guard *auth.Guard
}

func NewHandler(svc *Service, guard *auth.Guard) *Handler {
	return &Handler{svc: svc, guard: guard}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	meds := api.Group("/medications", auth.RequireRole(h.guard, auth.RolePharmacy, auth.RoleAdmin))
	meds.GET("", h.List)
	meds.POST("", h.Create)
	meds.GET("/:id", h.Get)
	meds.PUT("/:id", h.Update)
	meds.DELETE("/:id", h.Delete)
	meds.GET("/:id/inventory", h.InventoryForMedication)

	inv := api.Group("/inventory", auth.RequireRole(h.guard, auth.RolePharmacy, auth.RoleAdmin))
	inv.GET("", h.ListInventory)
	inv.POST("", h.UpsertInventory)
}

func mapErr(err error, notFound string) error {
	switch {
	case errors.Is(err, db.ErrStoreUnavailable):
		return echo.NewHTTPError(http.StatusServiceUnavailable, "service temporarily unavailable")
	case errors.Is(err, pgx.ErrNoRows):
		return echo.NewHTTPError(http.StatusNotFound, notFound)
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}

func (h *Handler) Create(c echo.Context) error {
	p := auth.PrincipalFromContext(c.Request().Context())

	var m Medication
	if err := c.Bind(&m); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	m.ProviderID = p.ProviderID

	if err := m.Validate(); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.Create(c.Request().Context(), &m); err != nil {
		return mapErr(err, "medication not found")
	}
	return c.JSON(http.StatusCreated, m)
}

func (h *Handler) Get(c echo.Context) error {
	p := auth.PrincipalFromContext(c.Request().Context())

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	m, err := h.svc.Get(c.Request().Context(), p.ProviderID, id)
	if err != nil {
		return mapErr(err, "medication not found")
	}
	return c.JSON(http.StatusOK, m)
}

func (h *Handler) Update(c echo.Context) error {
	p := auth.PrincipalFromContext(c.Request().Context())

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var m Medication
	if err := c.Bind(&m); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	m.ID = id
	m.ProviderID = p.ProviderID

	if err := m.Validate(); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.Update(c.Request().Context(), &m); err != nil {
		return mapErr(err, "medication not found")
	}
	return c.JSON(http.StatusOK, m)
}

func (h *Handler) Delete(c echo.Context) error {
	p := auth.PrincipalFromContext(c.Request().Context())

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.Delete(c.Request().Context(), p.ProviderID, id); err != nil {
		return mapErr(err, "medication not found")
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) List(c echo.Context) error {
	p := auth.PrincipalFromContext(c.Request().Context())
	pg := pagination.FromContext(c)

	items, total, err := h.svc.List(c.Request().Context(), p.ProviderID, pg.Limit, pg.Offset)
	if err != nil {
		return mapErr(err, "medications not found")
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) InventoryForMedication(c echo.Context) error {
	p := auth.PrincipalFromContext(c.Request().Context())

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	items, err := h.svc.InventoryForMedication(c.Request().Context(), p.ProviderID, id)
	if err != nil {
		return mapErr(err, "medication not found")
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) UpsertInventory(c echo.Context) error {
	p := auth.PrincipalFromContext(c.Request().Context())

	var item InventoryItem
	if err := c.Bind(&item); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	item.ProviderID = p.ProviderID

	if err := item.Validate(); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.UpsertInventory(c.Request().Context(), &item); err != nil {
		return mapErr(err, "medication not found")
	}
	return c.JSON(http.StatusOK, item)
}

func (h *Handler) ListInventory(c echo.Context) error {
	p := auth.PrincipalFromContext(c.Request().Context())
	pg := pagination.FromContext(c)

	items, total, err := h.svc.ListInventory(c.Request().Context(), p.ProviderID, pg.Limit, pg.Offset)
	if err != nil {
		return mapErr(err, "inventory not found")
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}
