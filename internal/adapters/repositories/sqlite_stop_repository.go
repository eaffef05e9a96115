package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"route66-trip-service/internal/domain"
	"route66-trip-service/internal/ports"
)

const stopColumns = `
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
		featured`

// SQLite-backed implementation of the StopRepository port.
type SqliteStopRepository struct{ DB *sql.DB }

func NewSqliteStopRepository(db *sql.DB) *SqliteStopRepository {
	return &SqliteStopRepository{DB: db}
}

// Return all stops stored in the database.
func (s *SqliteStopRepository) ListStops(ctx context.Context) ([]domain.Stop, error) {
	if s.DB == nil {
		return nil, errors.New("sqlite stop repository: DB is nil")
	}

	query := `SELECT` + stopColumns + `
	FROM stops
	ORDER BY id;
	`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list stops: query stops table: %w", err)
	}
	defer rows.Close()

	return scanStops(rows)
}

func (s *SqliteStopRepository) ListStopsByCategory(ctx context.Context, category domain.Category) ([]domain.Stop, error) {
	if s.DB == nil {
		return nil, errors.New("sqlite stop repository: DB is nil")
	}

	query := `SELECT` + stopColumns + `
	FROM stops
	WHERE category = ?
	ORDER BY id;
	`
	rows, err := s.DB.QueryContext(ctx, query, string(category))
	if err != nil {
		return nil, fmt.Errorf("list stops by category %q: query stops table: %w", category, err)
	}
	defer rows.Close()

	return scanStops(rows)
}

func (s *SqliteStopRepository) GetStop(ctx context.Context, id string) (domain.Stop, error) {
	if s.DB == nil {
		return domain.Stop{}, errors.New("sqlite stop repository: DB is nil")
	}

	query := `SELECT` + stopColumns + `
	FROM stops
	WHERE id = ?;
	`
	stop, err := scanStop(s.DB.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Stop{}, fmt.Errorf("get stop %q: %w", id, ports.ErrNotFound)
	}
	if err != nil {
		return domain.Stop{}, fmt.Errorf("get stop %q: %w", id, err)
	}
	return stop, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanStop(row rowScanner) (domain.Stop, error) {
	var s domain.Stop
	var category string
	err := row.Scan(
		&s.ID, &s.Name, &s.Description, &s.Latitude, &s.Longitude, &category,
		&s.State, &s.CityName, &s.ImageURL, &s.IsMajorStop, &s.IsOfficialDestination, &s.Featured,
	)
	s.Category = domain.Category(category)
	return s, err
}

func scanStops(rows *sql.Rows) ([]domain.Stop, error) {
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
