package middleware

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/rabbitmq/amqp091-go"

	"graphkb/pkg/retrieval"
	"graphkb/pkg/rgcn"
	"graphkb/pkg/store"
)

// App bundles the shared clients every handler needs: the database pool,
// the message channel for the worker queues, the graph storage built on
// the pool, the retrieval engine, and the optional embedding service
// client. Bridge is nil when no embedding service is configured.
type App struct {
	DBConn    *pgxpool.Pool
	Queue     *amqp091.Channel
	Storage   store.GraphStorage
	Retriever *retrieval.Retriever
	Bridge    *rgcn.Client
}

type AppContext struct {
	echo.Context
	App *App
}

func AppContextMiddleware(app *App) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cc := &AppContext{c, app}
			return next(cc)
		}
	}
}
