package building

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository is a PostgreSQL implementation of Repository.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL building repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Get retrieves a building by ID.
func (r *PostgresRepository) Get(ctx context.Context, id string) (*Building, error) {
	query := `
		SELECT id, name, aliases, lat, lng, created_at, updated_at
		FROM buildings
		WHERE id = $1
	`

	var b Building
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&b.ID,
		&b.Name,
		&b.Aliases,
		&b.Lat,
		&b.Lng,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBuildingNotFound
		}
		return nil, err
	}

	return &b, nil
}

// All retrieves every building, ordered by name.
func (r *PostgresRepository) All(ctx context.Context) ([]*Building, error) {
	query := `
		SELECT id, name, aliases, lat, lng, created_at, updated_at
		FROM buildings
		ORDER BY name
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var buildings []*Building
	for rows.Next() {
		var b Building
		err := rows.Scan(
			&b.ID,
			&b.Name,
			&b.Aliases,
			&b.Lat,
			&b.Lng,
			&b.CreatedAt,
			&b.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		buildings = append(buildings, &b)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return buildings, nil
}

// Upsert inserts or replaces a building.
func (r *PostgresRepository) Upsert(ctx context.Context, b *Building) error {
	query := `
		INSERT INTO buildings (id, name, aliases, lat, lng, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			aliases = EXCLUDED.aliases,
			lat = EXCLUDED.lat,
			lng = EXCLUDED.lng,
			updated_at = EXCLUDED.updated_at
	`

	now := time.Now()
	createdAt := b.CreatedAt
	if createdAt.IsZero() {
		createdAt = now
	}

	_, err := r.pool.Exec(ctx, query,
		b.ID,
		b.Name,
		b.Aliases,
		b.Lat,
		b.Lng,
		createdAt,
		now,
	)
	return err
}

// Count returns the number of buildings in the directory.
func (r *PostgresRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM buildings`).Scan(&count)
	return count, err
}

// Ensure PostgresRepository implements Repository interface.
var _ Repository = (*PostgresRepository)(nil)
