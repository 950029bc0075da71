package routes

import (
	"net/http"

	"graphkb/internal/server/middleware"
	"graphkb/pkg/logger"
	"graphkb/pkg/retrieval"

	_ "github.com/go-playground/validator"
	"github.com/labstack/echo/v4"
)

// QueryHandler answers a natural-language question with chunk evidence
// from the knowledge graph.
func QueryHandler(c echo.Context) error {
	type queryBody struct {
		Query string `json:"query" validate:"required"`
	}

	type queryResponse struct {
		Message string            `json:"message"`
		Result  *retrieval.Result `json:"result,omitempty"`
	}

	data := new(queryBody)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, queryResponse{
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, queryResponse{
			Message: "Invalid request body",
		})
	}

	ctx := c.Request().Context()
	app := c.(*middleware.AppContext).App

	result, err := app.Retriever.Retrieve(ctx, data.Query)
	if err != nil {
		logger.Error("[Query] retrieval error", "err", err)
		return c.JSON(http.StatusInternalServerError, queryResponse{
			Message: "Internal server error",
		})
	}

	return c.JSON(http.StatusOK, queryResponse{
		Message: "OK",
		Result:  result,
	})
}
