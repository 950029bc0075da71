package routes

import (
	"net/http"

	"graphkb/internal/server/middleware"
	"graphkb/pkg/common"
	"graphkb/pkg/logger"

	_ "github.com/go-playground/validator"
	"github.com/labstack/echo/v4"
)

// GetGraphStatsHandler reports the size of the stored graph and whether
// the embedding service is currently answering.
func GetGraphStatsHandler(c echo.Context) error {
	type graphStatsResponse struct {
		Message          string             `json:"message"`
		Stats            *common.GraphStats `json:"stats,omitempty"`
		EmbeddingService bool               `json:"embedding_service"`
	}

	ctx := c.Request().Context()
	app := c.(*middleware.AppContext).App

	stats, err := app.Storage.Stats(ctx)
	if err != nil {
		logger.Error("Failed to load graph stats", "err", err)
		return c.JSON(http.StatusInternalServerError, graphStatsResponse{
			Message: "Internal server error",
		})
	}

	return c.JSON(http.StatusOK, graphStatsResponse{
		Message:          "OK",
		Stats:            stats,
		EmbeddingService: app.Bridge.Available(ctx),
	})
}

// GetNeighborhoodHandler returns the entities reachable from one entity
// within a bounded number of hops.
func GetNeighborhoodHandler(c echo.Context) error {
	type neighborhoodParams struct {
		ID    string `param:"id" validate:"required"`
		Hops  int    `query:"hops"`
		Limit int    `query:"limit"`
	}

	type neighborhoodResponse struct {
		Message  string          `json:"message"`
		Entities []common.Entity `json:"entities"`
	}

	params := new(neighborhoodParams)
	if err := c.Bind(params); err != nil {
		return c.JSON(http.StatusBadRequest, neighborhoodResponse{
			Message: "Invalid request params",
		})
	}
	if err := c.Validate(params); err != nil {
		return c.JSON(http.StatusBadRequest, neighborhoodResponse{
			Message: "Invalid request params",
		})
	}
	if params.Hops <= 0 {
		params.Hops = 1
	}
	if params.Limit <= 0 || params.Limit > 100 {
		params.Limit = 25
	}

	ctx := c.Request().Context()
	app := c.(*middleware.AppContext).App

	entities, err := app.Storage.Neighborhood(ctx, params.ID, params.Hops, params.Limit)
	if err != nil {
		logger.Error("Failed to load neighborhood", "err", err)
		return c.JSON(http.StatusInternalServerError, neighborhoodResponse{
			Message: "Internal server error",
		})
	}
	if entities == nil {
		entities = []common.Entity{}
	}

	return c.JSON(http.StatusOK, neighborhoodResponse{
		Message:  "OK",
		Entities: entities,
	})
}
