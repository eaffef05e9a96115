package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"route66-trip-service/internal/platform/obs"
	"route66-trip-service/internal/ports"
)

// SQLite-backed cache for origin->destination road distances.
type SqliteDistanceCache struct {
	DB     *sql.DB
	logger *slog.Logger
}

var _ ports.DistanceCache = (*SqliteDistanceCache)(nil)

func NewSqliteDistanceCache(db *sql.DB, logger *slog.Logger) *SqliteDistanceCache {
	return &SqliteDistanceCache{DB: db, logger: orDiscard(logger)}
}

func (s *SqliteDistanceCache) GetMany(
	ctx context.Context,
	origin string,
	destinations []string,
) (_ map[string]ports.DistanceResult, err error) {
	defer obs.Time(ctx, s.logger, "distance.sqlite.GetMany")(&err)

	if s.DB == nil {
		return nil, errors.New("distance cache: db is nil")
	}
	if origin == "" {
		return nil, errors.New("get distance cache: origin must not be empty")
	}

	uniq := uniqueKeys(destinations)
	if len(uniq) == 0 {
		return map[string]ports.DistanceResult{}, nil
	}

	args := make([]any, 0, len(uniq)+1)
	args = append(args, origin)
	for _, d := range uniq {
		args = append(args, d)
	}

	// SQLite cannot bind a slice to IN (...); only placeholders are interpolated.
	q := fmt.Sprintf(`
	SELECT destination, distance_miles, duration_hours
	FROM distance_cache
	WHERE origin = ?
		AND destination IN (%s);
	`, placeholders(len(uniq)))

	rows, err := s.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("get distance cache: query distance_cache table: %w", err)
	}
	defer rows.Close()

	return scanDistanceRows(rows, len(uniq))
}

func (s *SqliteDistanceCache) PutMany(
	ctx context.Context,
	origin string,
	results map[string]ports.DistanceResult,
) (err error) {
	defer obs.Time(ctx, s.logger, "distance.sqlite.PutMany")(&err)

	if s.DB == nil {
		return errors.New("distance cache: db is nil")
	}
	if origin == "" {
		return errors.New("insert distance cache: origin must not be empty")
	}
	if len(results) == 0 {
		return nil
	}

	return putDistances(ctx, s.DB, origin, results, `
	INSERT OR REPLACE INTO distance_cache (origin, destination, distance_miles, duration_hours)
	VALUES (?, ?, ?, ?);
	`)
}
