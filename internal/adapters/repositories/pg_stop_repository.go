package repositories

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"route66-trip-service/internal/domain"
	"route66-trip-service/internal/ports"
)

// PgxPool is the subset of *pgxpool.Pool used by the Postgres repository.
type PgxPool interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Begin(ctx context.Context) (pgx.Tx, error)
}

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

var stopColumnList = []string{
	"id",
	"name",
	"description",
	"latitude",
	"longitude",
	"category",
	"state",
	"city_name",
	"image_url",
	"is_major_stop",
	"is_official_destination",
	"featured",
}

// upsertBatchSize bounds the number of rows in one multi-row INSERT.
const upsertBatchSize = 100

type PostgresStopRepository struct {
	pool   PgxPool
	logger *slog.Logger
}

func NewPostgresStopRepository(pool PgxPool, logger *slog.Logger) *PostgresStopRepository {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &PostgresStopRepository{pool: pool, logger: logger}
}

func (r *PostgresStopRepository) ListStops(ctx context.Context) ([]domain.Stop, error) {
	query, args, err := psql.Select(stopColumnList...).From("stops").OrderBy("id").ToSql()
	if err != nil {
		return nil, fmt.Errorf("list stops: build query: %w", err)
	}
	return r.queryStops(ctx, query, args...)
}

func (r *PostgresStopRepository) ListStopsByCategory(ctx context.Context, category domain.Category) ([]domain.Stop, error) {
	query, args, err := psql.Select(stopColumnList...).
		From("stops").
		Where(sq.Eq{"category": string(category)}).
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("list stops by category: build query: %w", err)
	}
	return r.queryStops(ctx, query, args...)
}

func (r *PostgresStopRepository) GetStop(ctx context.Context, id string) (domain.Stop, error) {
	query, args, err := psql.Select(stopColumnList...).From("stops").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return domain.Stop{}, fmt.Errorf("get stop: build query: %w", err)
	}

	stop, err := scanStop(r.pool.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Stop{}, fmt.Errorf("get stop %q: %w", id, ports.ErrNotFound)
	}
	if err != nil {
		return domain.Stop{}, fmt.Errorf("get stop %q: %w", id, err)
	}
	return stop, nil
}

func (r *PostgresStopRepository) queryStops(ctx context.Context, query string, args ...any) ([]domain.Stop, error) {
	r.logger.DebugContext(ctx, "querying stops", slog.String("query", query), slog.Int("arg_count", len(args)))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list stops: query stops table: %w", err)
	}
	defer rows.Close()

	stops := make([]domain.Stop, 0, 64)
	for rows.Next() {
		s, err := scanStop(rows)
		if err != nil {
			return nil, fmt.Errorf("list stops: scan row: %w", err)
		}
		stops = append(stops, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list stops: row iteration: %w", err)
	}
	return stops, nil
}

// UpsertStops writes stops inside one transaction, updating rows whose id
// already exists.
func (r *PostgresStopRepository) UpsertStops(ctx context.Context, stops []domain.Stop) (err error) {
	if len(stops) == 0 {
		return nil
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("upsert stops: begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
				r.logger.WarnContext(ctx, "upsert stops: rollback failed", slog.Any("error", rbErr))
			}
		}
	}()

	for start := 0; start < len(stops); start += upsertBatchSize {
		end := min(start+upsertBatchSize, len(stops))

		builder := psql.Insert("stops").Columns(stopColumnList...)
		for _, s := range stops[start:end] {
			builder = builder.Values(
				s.ID, s.Name, s.Description, s.Latitude, s.Longitude, string(s.Category),
				s.State, s.CityName, s.ImageURL, s.IsMajorStop, s.IsOfficialDestination, s.Featured,
			)
		}
		query, args, buildErr := builder.Suffix(`ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			latitude = EXCLUDED.latitude,
			longitude = EXCLUDED.longitude,
			category = EXCLUDED.category,
			state = EXCLUDED.state,
			city_name = EXCLUDED.city_name,
			image_url = EXCLUDED.image_url,
			is_major_stop = EXCLUDED.is_major_stop,
			is_official_destination = EXCLUDED.is_official_destination,
			featured = EXCLUDED.featured`).ToSql()
		if buildErr != nil {
			return fmt.Errorf("upsert stops: build query: %w", buildErr)
		}

		tag, execErr := tx.Exec(ctx, query, args...)
		if execErr != nil {
			return fmt.Errorf("upsert stops: exec batch at %d: %w", start, execErr)
		}
		r.logger.DebugContext(ctx, "upserted stop batch", slog.Int("offset", start), slog.Int64("rows", tag.RowsAffected()))
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("upsert stops: commit tx: %w", err)
	}
	return nil
}

// PgInitSchema creates the Postgres tables used by the service.
func PgInitSchema(ctx context.Context, pool PgxPool) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS stops (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			latitude DOUBLE PRECISION NOT NULL,
			longitude DOUBLE PRECISION NOT NULL,
			category TEXT NOT NULL,
			state TEXT NOT NULL DEFAULT '',
			city_name TEXT NOT NULL DEFAULT '',
			image_url TEXT NOT NULL DEFAULT '',
			is_major_stop BOOLEAN NOT NULL DEFAULT FALSE,
			is_official_destination BOOLEAN NOT NULL DEFAULT FALSE,
			featured BOOLEAN NOT NULL DEFAULT FALSE
		)`,
		`CREATE INDEX IF NOT EXISTS idx_stops_category ON stops(category)`,
		`CREATE TABLE IF NOT EXISTS distance_cache (
			origin TEXT NOT NULL,
			destination TEXT NOT NULL,
			distance_miles DOUBLE PRECISION NOT NULL,
			duration_hours DOUBLE PRECISION NOT NULL,
			PRIMARY KEY (origin, destination)
		)`,
		`CREATE TABLE IF NOT EXISTS geocode_cache (
			label TEXT PRIMARY KEY,
			lon DOUBLE PRECISION NOT NULL,
			lat DOUBLE PRECISION NOT NULL
		)`,
	}

	for i, stmt := range statements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init postgres schema: exec statement #%d: %w", i+1, err)
		}
	}
	return nil
}
