package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/bookwise-discovery-api/internal/cache"
	"github.com/bookwise-discovery-api/internal/completion"
	"github.com/bookwise-discovery-api/internal/config"
	"github.com/bookwise-discovery-api/internal/handlers"
	"github.com/bookwise-discovery-api/internal/middleware"
	"github.com/bookwise-discovery-api/internal/repository"
	bleverepo "github.com/bookwise-discovery-api/internal/repository/bleve"
	"github.com/bookwise-discovery-api/internal/repository/postgres"
	sqliterepo "github.com/bookwise-discovery-api/internal/repository/sqlite"
	"github.com/bookwise-discovery-api/internal/services"
	"github.com/bookwise-discovery-api/pkg/schema/db"
)

func main() {
	// Load .env file if present
	_ = godotenv.Load()

	cfg := config.Load()

	logger, err := newLogger(cfg.Debug)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	ctx := context.Background()

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.Recover())
	e.Use(middleware.CORSMiddleware(cfg.CORSOrigins))

	// Catalog backend
	var (
		catalogRepo repository.CatalogRepository
		borrowRepo  repository.BorrowRepository
		pinger      handlers.Pinger
		closers     []func() error
	)
	switch cfg.CatalogBackend {
	case "postgres":
		logger.Info("using PostgreSQL catalog backend")
		conn, err := db.ConnectPostgres(ctx, cfg.PostgresURI)
		if err != nil {
			logger.Fatal("failed to connect to PostgreSQL", zap.Error(err))
		}
		catalogRepo = postgres.NewCatalogRepository(conn)
		borrowRepo = postgres.NewBorrowRepository(conn)
		pinger = conn
		closers = append(closers, conn.Close)
	case "bleve":
		logger.Info("using embedded bleve catalog backend", zap.String("file", cfg.CatalogFile))
		repo, err := bleverepo.NewCatalogRepository()
		if err != nil {
			logger.Fatal("failed to create bleve catalog", zap.Error(err))
		}
		if cfg.CatalogFile != "" {
			n, err := repo.LoadFile(ctx, cfg.CatalogFile)
			if err != nil {
				logger.Fatal("failed to load catalog file", zap.Error(err))
			}
			logger.Info("catalog loaded", zap.Int("books", n))
		}
		catalogRepo = repo
		borrowRepo = bleverepo.NewBorrowRepository(repo)
		closers = append(closers, repo.Close)
	default:
		logger.Info("using SQLite catalog backend", zap.String("path", cfg.SQLitePath))
		conn, err := db.ConnectSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			logger.Fatal("failed to open SQLite catalog", zap.Error(err))
		}
		catalogRepo = sqliterepo.NewCatalogRepository(conn)
		borrowRepo = sqliterepo.NewBorrowRepository(conn)
		pinger = conn
		closers = append(closers, conn.Close)
	}

	// Cache store
	var store cache.Store
	switch cfg.CacheBackend {
	case "badger":
		logger.Info("using badger cache store", zap.String("path", cfg.CachePath))
		badgerStore, err := cache.NewBadgerStore(cfg.CachePath)
		if err != nil {
			logger.Fatal("failed to open badger cache", zap.Error(err))
		}
		store = badgerStore
	default:
		logger.Info("using in-memory cache store")
		store = cache.NewMemoryStore()
	}
	closers = append(closers, store.Close)

	// Completion backend
	var completionClient completion.Client
	switch cfg.CompletionProvider {
	case "vertex":
		logger.Info("using Vertex AI completion backend")
		vertexClient, err := completion.NewVertexClient(ctx, completion.VertexConfig{
			ProjectID: cfg.GCPProjectID,
			Location:  cfg.GCPLocation,
			Model:     cfg.VertexModel,
		})
		if err != nil {
			logger.Fatal("failed to create Vertex AI completion client", zap.Error(err))
		}
		completionClient = vertexClient
		closers = append(closers, vertexClient.Close)
	default:
		logger.Info("using HTTP completion backend", zap.String("url", cfg.CompletionBaseURL))
		completionClient = completion.NewHTTPClient(cfg.CompletionBaseURL, cfg.CompletionAPIKey, cfg.CompletionModel)
	}

	// Services
	searchSvc := services.NewSearchService(catalogRepo, logger)
	recommendSvc := services.NewRecommendService(searchSvc, completionClient, logger)
	catalogSvc := services.NewCatalogService(catalogRepo, logger)
	borrowSvc := services.NewBorrowService(borrowRepo, catalogRepo, logger)
	cachedSvc := services.NewCachedService(store, searchSvc, recommendSvc, catalogSvc, logger)

	// Routes
	api := e.Group(cfg.APIPrefix)
	handlers.NewHealthHandler(cfg.CatalogBackend, pinger).RegisterRoutes(api)
	handlers.NewSearchHandler(cachedSvc).RegisterRoutes(api)
	handlers.NewBookHandler(cachedSvc, catalogSvc, recommendSvc).RegisterRoutes(api)
	handlers.NewBorrowHandler(borrowSvc).RegisterRoutes(api)
	handlers.NewStatsHandler(cachedSvc).RegisterRoutes(api)

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/", func(c echo.Context) error {
		return c.JSON(200, map[string]string{
			"name":    cfg.APITitle,
			"version": cfg.APIVersion,
			"status":  "running",
		})
	})

	// Start server
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Port)
		logger.Info("starting server",
			zap.String("name", cfg.APITitle),
			zap.String("version", cfg.APIVersion),
			zap.String("addr", addr))
		if err := e.Start(addr); err != nil {
			logger.Info("server stopped", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("error shutting down server", zap.Error(err))
	}

	for _, closeFn := range closers {
		if err := closeFn(); err != nil {
			logger.Error("error closing resource", zap.Error(err))
		}
	}

	logger.Info("server stopped")
}

// newLogger returns a development logger when debug is set, a production
// logger otherwise.
func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
