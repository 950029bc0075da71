package routes

import (
	"net/http"

	"graphkb/internal/server/middleware"

	"github.com/labstack/echo/v4"
)

// HealthHandler reports liveness. The database is probed on every call;
// the embedding service state comes from the cached availability probe.
func HealthHandler(c echo.Context) error {
	type healthResponse struct {
		Status           string `json:"status"`
		Database         bool   `json:"database"`
		EmbeddingService bool   `json:"embedding_service"`
	}

	ctx := c.Request().Context()
	app := c.(*middleware.AppContext).App

	dbOK := app.DBConn.Ping(ctx) == nil
	resp := healthResponse{
		Status:           "ok",
		Database:         dbOK,
		EmbeddingService: app.Bridge.Available(ctx),
	}
	if !dbOK {
		resp.Status = "degraded"
		return c.JSON(http.StatusServiceUnavailable, resp)
	}
	return c.JSON(http.StatusOK, resp)
}
