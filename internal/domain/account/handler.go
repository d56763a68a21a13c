package account

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"

	"github.com/cigali/cigali/internal/platform/auth"
	"github.com/cigali/cigali/internal/platform/db"
)

type Handler struct {
	svc   *Service
	guard *auth.Guard
}

func NewHandler(svc *Service, guard *auth.Guard) *Handler {
	return &Handler{svc: svc, guard: guard}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/auth/register", h.Register)
	api.POST("/auth/login", h.Login)
	api.POST("/auth/demo-login", h.DemoLogin)
	api.GET("/auth/me", h.Me)

	api.GET("/providers/:id/public-profile", h.PublicProfile)
	api.GET("/providers/me/profile", h.GetProviderProfile)
	api.PUT("/providers/me/profile", h.UpdateProviderProfile,
		auth.RequireRole(h.guard, auth.RoleAdmin))
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) Register(c echo.Context) error {
	var in RegisterInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	result, err := h.svc.Register(c.Request().Context(), in)
	if err != nil {
		switch {
		case errors.Is(err, db.ErrStoreUnavailable):
			return echo.NewHTTPError(http.StatusServiceUnavailable, "registration requires the store; try again later")
		case errors.Is(err, ErrEmailTaken):
			return echo.NewHTTPError(http.StatusConflict, "email already registered")
		default:
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
	}
	return c.JSON(http.StatusCreated, result)
}

func (h *Handler) Login(c echo.Context) error {
	var creds credentials
	if err := c.Bind(&creds); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	result, err := h.svc.Login(c.Request().Context(), creds.Email, creds.Password)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidCredentials):
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid credentials")
		case errors.Is(err, db.ErrStoreUnavailable):
			return echo.NewHTTPError(http.StatusServiceUnavailable, "login temporarily unavailable")
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, "login failed")
		}
	}
	return c.JSON(http.StatusOK, result)
}

func (h *Handler) DemoLogin(c echo.Context) error {
	var creds credentials
	if err := c.Bind(&creds); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	result, err := h.svc.DemoLogin(c.Request().Context(), creds.Email, creds.Password)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid credentials")
	}
	return c.JSON(http.StatusOK, result)
}

// Me returns the authenticated user. During a store outage the handler
// falls back to the principal itself, which is all the claims can vouch for.
func (h *Handler) Me(c echo.Context) error {
	p := auth.PrincipalFromContext(c.Request().Context())
	if p == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing authentication")
	}

	user, err := h.svc.GetUser(c.Request().Context(), p.UserID)
	if err != nil {
		if errors.Is(err, db.ErrStoreUnavailable) {
			return c.JSON(http.StatusOK, map[string]interface{}{
				"id":          p.UserID,
				"provider_id": p.ProviderID,
				"role":        p.Role,
			})
		}
		return echo.NewHTTPError(http.StatusNotFound, "user not found")
	}
	return c.JSON(http.StatusOK, user)
}

func (h *Handler) PublicProfile(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	provider, err := h.svc.GetProvider(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, db.ErrStoreUnavailable) {
			return echo.NewHTTPError(http.StatusServiceUnavailable, "service temporarily unavailable")
		}
		return echo.NewHTTPError(http.StatusNotFound, "provider not found")
	}
	return c.JSON(http.StatusOK, provider.Public())
}

func (h *Handler) GetProviderProfile(c echo.Context) error {
	p := auth.PrincipalFromContext(c.Request().Context())
	if p == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing authentication")
	}

	provider, err := h.svc.GetProvider(c.Request().Context(), p.ProviderID)
	if err != nil {
		if errors.Is(err, db.ErrStoreUnavailable) {
			return echo.NewHTTPError(http.StatusServiceUnavailable, "service temporarily unavailable")
		}
		return echo.NewHTTPError(http.StatusNotFound, "provider not found")
	}
	return c.JSON(http.StatusOK, provider)
}

func (h *Handler) UpdateProviderProfile(c echo.Context) error {
	p := auth.PrincipalFromContext(c.Request().Context())
	if p == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing authentication")
	}

	provider, err := h.svc.GetProvider(c.Request().Context(), p.ProviderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return echo.NewHTTPError(http.StatusNotFound, "provider not found")
		}
		return echo.NewHTTPError(http.StatusServiceUnavailable, "service temporarily unavailable")
	}

	var in Provider
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	provider.Name = in.Name
	provider.Phone = in.Phone
	provider.LogoURL = in.LogoURL
	if in.SubscriptionPlan != "" {
		provider.SubscriptionPlan = in.SubscriptionPlan
	}

	if err := h.svc.UpdateProvider(c.Request().Context(), provider); err != nil {
		if errors.Is(err, db.ErrStoreUnavailable) {
			return echo.NewHTTPError(http.StatusServiceUnavailable, "service temporarily unavailable")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, provider)
}
