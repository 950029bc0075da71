package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"graphkb/internal/queue"
	mid "graphkb/internal/server/middleware"
	"graphkb/internal/util"
	"graphkb/pkg/logger"
	"graphkb/pkg/retrieval"
	"graphkb/pkg/rgcn"
	pgxstore "graphkb/pkg/store/pgx"

	"github.com/go-playground/validator"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	pgxvec "github.com/pgvector/pgvector-go/pgx"
)

type CustomValidator struct {
	validator *validator.Validate
}

func (cv *CustomValidator) Validate(i any) error {
	if err := cv.validator.Struct(i); err != nil {
		return err
	}
	return nil
}

func Init() {
	e := echo.New()
	e.Validator = &CustomValidator{validator: validator.New()}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runMigrations()

	poolConfig, err := pgxpool.ParseConfig(util.GetEnv("DATABASE_URL"))
	if err != nil {
		logger.Fatal("Invalid database URL", "err", err)
	}
	poolConfig.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return pgxvec.RegisterTypes(ctx, conn)
	}
	conn, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		logger.Fatal("Failed to connect to database", "err", err)
	}
	defer conn.Close()

	que := queue.Init()
	defer que.Close()
	ch, err := que.Channel()
	if err != nil {
		logger.Fatal("Failed to open channel", "err", err)
	}
	if err := queue.SetupQueues(ch, queue.Queues); err != nil {
		logger.Fatal("Failed to set up queues", "err", err)
	}

	storage := pgxstore.NewGraphDBStorageWithConnection(conn)

	var bridge *rgcn.Client
	if url := util.GetEnv("RGCN_URL"); url != "" {
		bridge = rgcn.NewClient(rgcn.NewClientParams{
			BaseURL:  url,
			Cooldown: time.Duration(util.GetEnvNumeric("RGCN_COOLDOWN_SEC", 30)) * time.Second,
		})
	}

	retrieverParams := retrieval.NewRetrieverParams{
		Store:           storage,
		RowCap:          int(util.GetEnvNumeric("RETRIEVAL_ROW_CAP", 10)),
		CandidateFloor:  int(util.GetEnvNumeric("RETRIEVAL_CANDIDATE_FLOOR", 10)),
		SparseFloor:     int(util.GetEnvNumeric("RETRIEVAL_SPARSE_FLOOR", 3)),
		SampleSize:      int(util.GetEnvNumeric("RETRIEVAL_SAMPLE_SIZE", 200)),
		MaxDistance:     int(util.GetEnvNumeric("RETRIEVAL_MAX_DISTANCE", 2)),
		StrategyTimeout: time.Duration(util.GetEnvNumeric("RETRIEVAL_STRATEGY_TIMEOUT_MS", 2000)) * time.Millisecond,
	}
	if bridge != nil {
		retrieverParams.Bridge = bridge
	}
	retriever := retrieval.NewRetriever(retrieverParams)

	app := &mid.App{
		DBConn:    conn,
		Queue:     ch,
		Storage:   storage,
		Retriever: retriever,
		Bridge:    bridge,
	}

	e.Use(mid.AppContextMiddleware(app))
	e.Use(middleware.CORS())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:  true,
		LogURI:     true,
		LogMethod:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			logger.Info("Request",
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency", v.Latency,
			)
			return nil
		},
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit("64M"))

	RegisterRoutes(e)

	go func() {
		port := util.GetEnv("PORT")
		if port == "" {
			port = "8080"
		}
		logger.Info("Starting server", "port", port)
		if err := e.Start(":" + port); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed shutting down server", "err", err)
		}
	}()

	<-ctx.Done()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		logger.Error("Failed to shutdown server", "err", err)
	}
}

func runMigrations() {
	path := util.GetEnvString("MIGRATIONS_PATH", "sql/migrations")
	m, err := migrate.New("file://"+path, util.GetEnv("DATABASE_URL"))
	if err != nil {
		logger.Fatal("Failed to load migrations", "err", err)
	}
	defer m.Close()
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		logger.Fatal("Failed to run migrations", "err", err)
	}
}
