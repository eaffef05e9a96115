package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"route66-trip-service/internal/domain"
	"route66-trip-service/internal/platform/obs"
	"route66-trip-service/internal/ports"
)

// Postgres-backed cache mapping place labels ("Tulsa, OK") to coordinates.
// Labels are expected to be normalized by the caller.
type SQLGeocodeCache struct {
	DB     *sql.DB
	logger *slog.Logger
}

var _ ports.GeocodeCache = (*SQLGeocodeCache)(nil)

func NewSQLGeocodeCache(db *sql.DB, logger *slog.Logger) *SQLGeocodeCache {
	return &SQLGeocodeCache{DB: db, logger: orDiscard(logger)}
}

func (s *SQLGeocodeCache) GetMany(ctx context.Context, labels []string) (_ map[string]domain.Coordinates, err error) {
	defer obs.Time(ctx, s.logger, "geocode.cache.GetMany")(&err)

	if s.DB == nil {
		return nil, errors.New("geocode cache: db is nil")
	}

	uniq := uniqueKeys(labels)
	if len(uniq) == 0 {
		return map[string]domain.Coordinates{}, nil
	}

	rows, err := s.DB.QueryContext(ctx, `
	SELECT label, lon, lat
	FROM geocode_cache
	WHERE label = ANY($1::text[]);
	`, uniq)
	if err != nil {
		return nil, fmt.Errorf("get geocode cache: query geocode_cache table: %w", err)
	}
	defer rows.Close()

	return scanCoordinateRows(rows, len(uniq))
}

func (s *SQLGeocodeCache) PutMany(ctx context.Context, coords map[string]domain.Coordinates) (err error) {
	defer obs.Time(ctx, s.logger, "geocode.cache.PutMany")(&err)

	if s.DB == nil {
		return errors.New("geocode cache: db is nil")
	}
	if len(coords) == 0 {
		return nil
	}

	return putCoordinates(ctx, s.DB, coords, `
	INSERT INTO geocode_cache (label, lon, lat)
	VALUES ($1, $2, $3)
	ON CONFLICT (label) DO UPDATE
	SET lon = EXCLUDED.lon,
		lat = EXCLUDED.lat;
	`)
}

func scanCoordinateRows(rows *sql.Rows, capacity int) (map[string]domain.Coordinates, error) {
	out := make(map[string]domain.Coordinates, capacity)
	for rows.Next() {
		var label string
		var lon, lat float64
		if err := rows.Scan(&label, &lon, &lat); err != nil {
			return nil, fmt.Errorf("get geocode cache: scan rows: %w", err)
		}
		out[label] = domain.Coordinates{Lon: lon, Lat: lat}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get geocode cache: row iteration: %w", err)
	}
	return out, nil
}

func putCoordinates(ctx context.Context, db *sql.DB, coords map[string]domain.Coordinates, upsert string) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("insert geocode cache: db begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, upsert)
	if err != nil {
		return fmt.Errorf("insert geocode cache: db prepare: %w", err)
	}
	defer stmt.Close()

	for label, c := range coords {
		if strings.TrimSpace(label) == "" {
			return errors.New("insert geocode cache: empty label key")
		}
		if _, err := stmt.ExecContext(ctx, label, c.Lon, c.Lat); err != nil {
			return fmt.Errorf("insert geocode cache label=%q: %w", label, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("insert geocode cache commit: %w", err)
	}
	return nil
}
