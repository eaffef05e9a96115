package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	"route66-trip-service/internal/adapters/repositories"
	"route66-trip-service/internal/config"
	"route66-trip-service/internal/platform/db"
)

// dbtool initializes the schema and seeds the stop pool into Postgres when
// DATABASE_URL is set, otherwise into the SQLite file at DB_PATH.
func main() {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found (using environment variables)")
	}

	seedPath := flag.String("seed", config.Get("SEED_PATH", "data/seeds/stops.json"), "stop seed JSON file")
	schemaOnly := flag.Bool("schema-only", false, "create tables without seeding")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	databaseURL := config.Get("DATABASE_URL", "")
	var err error
	if databaseURL != "" {
		err = seedPostgres(ctx, databaseURL, *seedPath, *schemaOnly)
	} else {
		err = seedSqlite(ctx, config.Get("DB_PATH", "data/app.db"), *seedPath, *schemaOnly)
	}
	if err != nil {
		slog.Error("dbtool failed", slog.Any("err", err))
		os.Exit(1)
	}
}

func seedPostgres(ctx context.Context, databaseURL, seedPath string, schemaOnly bool) error {
	pool, err := db.OpenPool(ctx, databaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()

	slog.Info("initializing postgres schema")
	if err := repositories.PgInitSchema(ctx, pool); err != nil {
		return err
	}
	if schemaOnly {
		return nil
	}

	stops, err := repositories.LoadStopSeeds(seedPath)
	if err != nil {
		return err
	}
	slog.Info("seeding stops", slog.Int("count", len(stops)), slog.String("path", seedPath))
	if err := repositories.NewPostgresStopRepository(pool, slog.Default()).UpsertStops(ctx, stops); err != nil {
		return err
	}
	slog.Info("seeding complete")
	return nil
}

func seedSqlite(ctx context.Context, dbPath, seedPath string, schemaOnly bool) error {
	sqlDB, err := db.OpenSQLite(ctx, dbPath)
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	slog.Info("initializing sqlite schema", slog.String("path", dbPath))
	if err := repositories.InitSchema(ctx, sqlDB); err != nil {
		return err
	}
	if schemaOnly {
		return nil
	}

	slog.Info("seeding stops", slog.String("path", seedPath))
	if err := repositories.SeedFromJSON(ctx, sqlDB, seedPath); err != nil {
		return err
	}
	slog.Info("seeding complete")
	return nil
}
