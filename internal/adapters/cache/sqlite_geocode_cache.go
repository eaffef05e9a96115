package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"route66-trip-service/internal/domain"
	"route66-trip-service/internal/platform/obs"
	"route66-trip-service/internal/ports"
)

// SQLite-backed cache mapping place labels to coordinates.
type SqliteGeocodeCache struct {
	DB     *sql.DB
	logger *slog.Logger
}

var _ ports.GeocodeCache = (*SqliteGeocodeCache)(nil)

func NewSqliteGeocodeCache(db *sql.DB, logger *slog.Logger) *SqliteGeocodeCache {
	return &SqliteGeocodeCache{DB: db, logger: orDiscard(logger)}
}

func (s *SqliteGeocodeCache) GetMany(ctx context.Context, labels []string) (_ map[string]domain.Coordinates, err error) {
	defer obs.Time(ctx, s.logger, "geocode.sqlite.GetMany")(&err)

	if s.DB == nil {
		return nil, errors.New("geocode cache: db is nil")
	}

	uniq := uniqueKeys(labels)
	if len(uniq) == 0 {
		return map[string]domain.Coordinates{}, nil
	}

	args := make([]any, 0, len(uniq))
	for _, l := range uniq {
		args = append(args, l)
	}

	q := fmt.Sprintf(`
	SELECT label, lon, lat
	FROM geocode_cache
	WHERE label IN (%s);
	`, placeholders(len(uniq)))

	rows, err := s.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("get geocode cache: query geocode_cache table: %w", err)
	}
	defer rows.Close()

	return scanCoordinateRows(rows, len(uniq))
}

func (s *SqliteGeocodeCache) PutMany(ctx context.Context, coords map[string]domain.Coordinates) (err error) {
	defer obs.Time(ctx, s.logger, "geocode.sqlite.PutMany")(&err)

	if s.DB == nil {
		return errors.New("geocode cache: db is nil")
	}
	if len(coords) == 0 {
		return nil
	}

	return putCoordinates(ctx, s.DB, coords, `
	INSERT OR REPLACE INTO geocode_cache (label, lon, lat)
	VALUES (?, ?, ?);
	`)
}
