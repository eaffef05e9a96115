package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"route66-trip-service/internal/domain"
)

// Initialize the SQLite database schema.
func InitSchema(ctx context.Context, db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createStopsQuery := `
	CREATE TABLE IF NOT EXISTS stops (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		latitude REAL NOT NULL,
		longitude REAL NOT NULL,
		category TEXT NOT NULL,
		state TEXT NOT NULL DEFAULT '',
		city_name TEXT NOT NULL DEFAULT '',
		image_url TEXT NOT NULL DEFAULT '',
		is_major_stop INTEGER NOT NULL DEFAULT 0,
		is_official_destination INTEGER NOT NULL DEFAULT 0,
		featured INTEGER NOT NULL DEFAULT 0
	);
	`

	createStopsCategoryIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_stops_category
	ON stops(category);
	`

	createDistanceCacheQuery := `
	CREATE TABLE IF NOT EXISTS distance_cache (
        origin TEXT NOT NULL,
        destination TEXT NOT NULL,
        distance_miles REAL NOT NULL,
        duration_hours REAL NOT NULL,
        PRIMARY KEY (origin, destination)
    );
	`

	createGeocodeCacheQuery := `
	CREATE TABLE IF NOT EXISTS geocode_cache (
        label TEXT PRIMARY KEY,
        lon REAL NOT NULL,
        lat REAL NOT NULL
    );
	`

	createIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_distance_cache_destination_origin
    ON distance_cache(destination, origin);
	`

	statements := []string{
		createStopsQuery,
		createStopsCategoryIndexQuery,
		createDistanceCacheQuery,
		createGeocodeCacheQuery,
		createIndexQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}

// Populate the stops table from a JSON seed file.
func SeedFromJSON(ctx context.Context, db *sql.DB, jsonPath string) error {
	stops, err := LoadStopSeeds(jsonPath)
	if err != nil {
		return err
	}
	return InsertStops(ctx, db, stops)
}

// InsertStops upserts stops in a single transaction.
func InsertStops(ctx context.Context, db *sql.DB, stops []domain.Stop) error {
	if db == nil {
		return errors.New("seed stops: DB is nil")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("seed stops: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := `
	INSERT OR REPLACE INTO stops (
		id,
		name,
		description,
		latitude,
		longitude,
		category,
		state,
		city_name,
		image_url,
		is_major_stop,
		is_official_destination,
		featured
	)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);
	`
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("seed stops: prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, s := range stops {
		if _, err := stmt.ExecContext(ctx,
			s.ID, s.Name, s.Description, s.Latitude, s.Longitude, string(s.Category),
			s.State, s.CityName, s.ImageURL, s.IsMajorStop, s.IsOfficialDestination, s.Featured,
		); err != nil {
			return fmt.Errorf("seed stops: insert id=%q: %w", s.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed stops: commit tx: %w", err)
	}

	return nil
}
