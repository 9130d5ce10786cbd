package stops

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"strings"

	"github.com/quadroute/quadroute/internal/geo"
)

// SQLiteRepository reads the stop dataset produced by the loader. All
// methods degrade to empty results when the dataset tables are missing, so
// the API can run before any data has been loaded.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a stop repository over db.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// EnsureSchema creates the stops table and its position index.
func (r *SQLiteRepository) EnsureSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS stops (
			id TEXT PRIMARY KEY,
			code TEXT NOT NULL DEFAULT '',
			name TEXT NOT NULL,
			lat REAL NOT NULL,
			lng REAL NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_stops_lat_lng ON stops (lat, lng);
	`)
	return err
}

// Get retrieves a stop by ID.
func (r *SQLiteRepository) Get(ctx context.Context, id string) (*Stop, error) {
	var s Stop
	err := r.db.QueryRowContext(ctx,
		`SELECT id, code, name, lat, lng FROM stops WHERE id = ?`, id,
	).Scan(&s.ID, &s.Code, &s.Name, &s.Lat, &s.Lng)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || isMissingTable(err) {
			return nil, ErrStopNotFound
		}
		return nil, err
	}

	return &s, nil
}

// Nearby returns up to limit stops within radiusM meters of the point,
// nearest first. A bounding box on the indexed (lat, lng) columns prefilters
// candidates before the exact great-circle distance check.
func (r *SQLiteRepository) Nearby(ctx context.Context, lat, lng, radiusM float64, limit int) ([]Stop, error) {
	if limit <= 0 {
		limit = 10
	}

	dLat, dLng := geo.BoundingBox(lat, lng, radiusM)

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, code, name, lat, lng
		FROM stops
		WHERE lat BETWEEN ? AND ? AND lng BETWEEN ? AND ?
	`, lat-dLat, lat+dLat, lng-dLng, lng+dLng)
	if err != nil {
		if isMissingTable(err) {
			return nil, nil
		}
		return nil, err
	}
	defer rows.Close()

	var stops []Stop
	for rows.Next() {
		var s Stop
		if err := rows.Scan(&s.ID, &s.Code, &s.Name, &s.Lat, &s.Lng); err != nil {
			return nil, err
		}
		s.DistanceM = geo.DistanceMeters(lat, lng, s.Lat, s.Lng)
		if s.DistanceM <= radiusM {
			stops = append(stops, s)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.Slice(stops, func(i, j int) bool {
		if stops[i].DistanceM != stops[j].DistanceM {
			return stops[i].DistanceM < stops[j].DistanceM
		}
		return stops[i].ID < stops[j].ID
	})
	if len(stops) > limit {
		stops = stops[:limit]
	}

	return stops, nil
}

// ReplaceAll atomically replaces the whole dataset. Used by the loader.
func (r *SQLiteRepository) ReplaceAll(ctx context.Context, stops []Stop) error {
	if err := r.EnsureSchema(ctx); err != nil {
		return err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	if _, err := tx.ExecContext(ctx, `DELETE FROM stops`); err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO stops (id, code, name, lat, lng) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, s := range stops {
		if _, err := stmt.ExecContext(ctx, s.ID, s.Code, s.Name, s.Lat, s.Lng); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// Count returns the number of stops in the dataset, 0 when absent.
func (r *SQLiteRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM stops`).Scan(&count)
	if err != nil {
		if isMissingTable(err) {
			return 0, nil
		}
		return 0, err
	}
	return count, nil
}

// isMissingTable reports whether err is SQLite's "no such table", which we
// treat as an empty dataset.
func isMissingTable(err error) bool {
	return err != nil && strings.Contains(err.Error(), "no such table")
}
