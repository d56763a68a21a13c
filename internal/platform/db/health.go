package db

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// HealthReport is the payload returned by the health endpoint.
type HealthReport struct {
	Status         string `json:"status"`
	Store          Status `json:"store"`
	ActiveEndpoint string `json:"active_endpoint,omitempty"`
	Error          string `json:"error,omitempty"`
}

// HealthHandler returns a handler reporting connector state. The service
// stays up through store outages, so a disconnected store reports 200 with a
// degraded status rather than failing the whole check.
func HealthHandler(connector *Connector) echo.HandlerFunc {
	return func(c echo.Context) error {
		st := connector.State()
		report := HealthReport{
			Status:         "ok",
			Store:          st.Status,
			ActiveEndpoint: st.ActiveEndpoint,
		}

		if st.Status != StatusConnected {
			report.Status = "degraded"
			return c.JSON(http.StatusOK, report)
		}

		ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
		defer cancel()

		if err := connector.Ping(ctx); err != nil {
			report.Status = "degraded"
			report.Error = err.Error()
		}
		return c.JSON(http.StatusOK, report)
	}
}
