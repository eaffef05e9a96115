package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"route66-trip-service/internal/adapters/cache"
	"route66-trip-service/internal/adapters/distance"
	"route66-trip-service/internal/adapters/repositories"
	"route66-trip-service/internal/api"
	"route66-trip-service/internal/config"
	"route66-trip-service/internal/platform/db"
	"route66-trip-service/internal/ports"
	"route66-trip-service/internal/services"
)

// main is the application composition root.
// It wires concrete adapters (SQLite or Postgres, ORS, Redis) behind ports
// and starts the HTTP server.
func main() {
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", slog.Any("err", err))
		os.Exit(1)
	}

	logger := newLogger(cfg)
	slog.SetDefault(logger)
	if envErr != nil {
		logger.Info("no .env file found (using environment variables)")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server stopped", slog.Any("err", err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	repo, sqlDB, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	provider, closeProvider, err := openProvider(ctx, cfg, sqlDB, logger)
	if err != nil {
		return err
	}
	defer closeProvider()

	planner := services.NewTripPlanner(repo, provider, cfg.Planner, logger)
	router := api.NewRouter(api.RouterDeps{
		Repo:        repo,
		Planner:     planner,
		Logger:      logger,
		CORSOrigins: cfg.CORSOrigins,
	})

	// Timeouts allow for cold-cache live distance lookups.
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       60 * time.Second,
		ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelWarn),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", slog.String("addr", srv.Addr), slog.Bool("live_distances", provider != nil))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// openStore returns the stop repository and, when the store is SQL-backed,
// the handle the provider caches share.
func openStore(ctx context.Context, cfg config.Config, logger *slog.Logger) (ports.StopRepository, *sql.DB, func(), error) {
	if cfg.UsePostgres() {
		pool, err := db.OpenPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, nil, err
		}
		sqlDB, err := db.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			pool.Close()
			return nil, nil, nil, err
		}
		closeFn := func() {
			pool.Close()
			_ = sqlDB.Close()
		}

		repo := repositories.NewPostgresStopRepository(pool, logger)
		if cfg.SeedOnStart {
			if err := seedPostgres(ctx, pool, repo, cfg.SeedPath); err != nil {
				closeFn()
				return nil, nil, nil, err
			}
		}
		logger.Info("stop store ready", slog.String("driver", "postgres"))
		return repo, sqlDB, closeFn, nil
	}

	sqlDB, err := db.OpenSQLite(ctx, cfg.DBPath)
	if err != nil {
		return nil, nil, nil, err
	}
	closeFn := func() { _ = sqlDB.Close() }

	// Initialize schema and seed demo data on startup for local runs.
	if err := repositories.InitSchema(ctx, sqlDB); err != nil {
		closeFn()
		return nil, nil, nil, fmt.Errorf("init and seed: %w", err)
	}
	if cfg.SeedOnStart {
		if err := repositories.SeedFromJSON(ctx, sqlDB, cfg.SeedPath); err != nil {
			closeFn()
			return nil, nil, nil, fmt.Errorf("init and seed: %w", err)
		}
	}
	logger.Info("stop store ready", slog.String("driver", "sqlite"), slog.String("path", cfg.DBPath))
	return repositories.NewSqliteStopRepository(sqlDB), sqlDB, closeFn, nil
}

func seedPostgres(ctx context.Context, pool repositories.PgxPool, repo *repositories.PostgresStopRepository, seedPath string) error {
	if err := repositories.PgInitSchema(ctx, pool); err != nil {
		return fmt.Errorf("init and seed: %w", err)
	}
	stops, err := repositories.LoadStopSeeds(seedPath)
	if err != nil {
		return fmt.Errorf("init and seed: %w", err)
	}
	if err := repo.UpsertStops(ctx, stops); err != nil {
		return fmt.Errorf("init and seed: %w", err)
	}
	return nil
}

// openProvider returns nil when no ORS key is configured; the planner then
// runs on geometry alone.
func openProvider(ctx context.Context, cfg config.Config, sqlDB *sql.DB, logger *slog.Logger) (ports.DistanceProvider, func(), error) {
	noop := func() {}
	if cfg.ORSAPIKey == "" {
		logger.Info("ORS_API_KEY not set; live distance refinement disabled")
		return nil, noop, nil
	}

	var (
		distanceCache ports.DistanceCache
		geocodeCache  ports.GeocodeCache
		closeFn       = noop
	)
	switch {
	case cfg.RedisAddr != "":
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("connect redis %q: %w", cfg.RedisAddr, err)
		}
		distanceCache = cache.NewRedisDistanceCache(client, cfg.RedisCacheTTL, logger)
		geocodeCache = cache.NewRedisGeocodeCache(client, cfg.RedisCacheTTL, logger)
		closeFn = func() { _ = client.Close() }
	case cfg.UsePostgres():
		distanceCache = cache.NewSQLDistanceCache(sqlDB, logger)
		geocodeCache = cache.NewSQLGeocodeCache(sqlDB, logger)
	default:
		distanceCache = cache.NewSqliteDistanceCache(sqlDB, logger)
		geocodeCache = cache.NewSqliteGeocodeCache(sqlDB, logger)
	}

	provider, err := distance.NewORSDistanceProvider(distance.ORSOptions{
		APIKey:  cfg.ORSAPIKey,
		BaseURL: cfg.ORSBaseURL,
	}, distanceCache, geocodeCache, logger)
	if err != nil {
		closeFn()
		return nil, nil, err
	}
	return provider, closeFn, nil
}

func newLogger(cfg config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.LogLevel}
	if cfg.LogFormat == "text" {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}
