package schedule

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository is a PostgreSQL implementation of Repository.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL schedule repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const classColumns = `
	id, user_id, title, days, start_time, end_time,
	building_id, custom_lat, custom_lng, custom_name,
	created_at, updated_at
`

// Get retrieves a class by user ID and class ID.
func (r *PostgresRepository) Get(ctx context.Context, userID, classID string) (*Class, error) {
	query := `SELECT ` + classColumns + ` FROM classes WHERE id = $1 AND user_id = $2`

	var c Class
	err := r.pool.QueryRow(ctx, query, classID, userID).Scan(
		&c.ID,
		&c.UserID,
		&c.Title,
		&c.Days,
		&c.StartTime,
		&c.EndTime,
		&c.BuildingID,
		&c.CustomLat,
		&c.CustomLng,
		&c.CustomName,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrClassNotFound
		}
		return nil, err
	}

	return &c, nil
}

// List retrieves all classes for a user, ordered by creation time.
func (r *PostgresRepository) List(ctx context.Context, userID string) ([]*Class, error) {
	query := `SELECT ` + classColumns + ` FROM classes WHERE user_id = $1 ORDER BY created_at`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var classes []*Class
	for rows.Next() {
		var c Class
		err := rows.Scan(
			&c.ID,
			&c.UserID,
			&c.Title,
			&c.Days,
			&c.StartTime,
			&c.EndTime,
			&c.BuildingID,
			&c.CustomLat,
			&c.CustomLng,
			&c.CustomName,
			&c.CreatedAt,
			&c.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		classes = append(classes, &c)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return classes, nil
}

// Create creates a new class.
func (r *PostgresRepository) Create(ctx context.Context, c *Class) error {
	query := `
		INSERT INTO classes (
			id, user_id, title, days, start_time, end_time,
			building_id, custom_lat, custom_lng, custom_name,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := r.pool.Exec(ctx, query,
		c.ID,
		c.UserID,
		c.Title,
		c.Days,
		c.StartTime,
		c.EndTime,
		c.BuildingID,
		c.CustomLat,
		c.CustomLng,
		c.CustomName,
		c.CreatedAt,
		c.UpdatedAt,
	)
	return err
}

// Delete deletes a class by user ID and class ID.
func (r *PostgresRepository) Delete(ctx context.Context, userID, classID string) error {
	result, err := r.pool.Exec(ctx,
		`DELETE FROM classes WHERE id = $1 AND user_id = $2`, classID, userID)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return ErrClassNotFound
	}

	return nil
}

// Ensure PostgresRepository implements Repository interface.
var _ Repository = (*PostgresRepository)(nil)
