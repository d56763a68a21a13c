package patient

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
	g := api.Group("/patients", auth.RequireRole(h.guard, auth.RoleDoctor, auth.RoleAdmin))
	g.POST("", h.Create)
	g.GET("", h.List)
	g.GET("/:id", h.Get)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
}

// mapErr translates service errors to HTTP errors. Cross-tenant lookups
// come back as pgx.ErrNoRows from the repository, so they map to 404 like
// any other missing record.
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

	var pat Patient
	if err := c.Bind(&pat); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	pat.ProviderID = p.ProviderID

	if err := pat.Validate(); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.Create(c.Request().Context(), &pat); err != nil {
		return mapErr(err, "patient not found")
	}
	return c.JSON(http.StatusCreated, pat)
}

func (h *Handler) Get(c echo.Context) error {
	p := auth.PrincipalFromContext(c.Request().Context())

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	pat, err := h.svc.Get(c.Request().Context(), p.ProviderID, id)
	if err != nil {
		return mapErr(err, "patient not found")
	}
	return c.JSON(http.StatusOK, pat)
}

func (h *Handler) List(c echo.Context) error {
	p := auth.PrincipalFromContext(c.Request().Context())
	pg := pagination.FromContext(c)

	items, total, err := h.svc.List(c.Request().Context(), p.ProviderID, pg.Limit, pg.Offset)
	if err != nil {
		return mapErr(err, "patients not found")
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) Update(c echo.Context) error {
	p := auth.PrincipalFromContext(c.Request().Context())

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var pat Patient
	if err := c.Bind(&pat); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	pat.ID = id
	pat.ProviderID = p.ProviderID

	if err := pat.Validate(); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.Update(c.Request().Context(), &pat); err != nil {
		return mapErr(err, "patient not found")
	}
	return c.JSON(http.StatusOK, pat)
}

func (h *Handler) Delete(c echo.Context) error {
	p := auth.PrincipalFromContext(c.Request().Context())

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.Delete(c.Request().Context(), p.ProviderID, id); err != nil {
		return mapErr(err, "patient not found")
	}
	return c.NoContent(http.StatusNoContent)
}
