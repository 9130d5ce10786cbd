package gtfs

import (
	"context"
	"database/sql"
	"strings"
)

// SQLiteRepository reads the GTFS dataset produced by the loader. Queries
// degrade to empty results when the dataset tables are missing.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a GTFS repository over db.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// EnsureSchema creates the GTFS tables and indexes.
func (r *SQLiteRepository) EnsureSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS gtfs_routes (
			id TEXT PRIMARY KEY,
			short_name TEXT NOT NULL DEFAULT '',
			long_name TEXT NOT NULL DEFAULT '',
			color TEXT NOT NULL DEFAULT ''
		);
		CREATE TABLE IF NOT EXISTS gtfs_trips (
			id TEXT PRIMARY KEY,
			route_id TEXT NOT NULL,
			headsign TEXT NOT NULL DEFAULT '',
			shape_id TEXT NOT NULL DEFAULT ''
		);
		CREATE INDEX IF NOT EXISTS idx_gtfs_trips_route ON gtfs_trips (route_id);
		CREATE TABLE IF NOT EXISTS gtfs_stop_times (
			trip_id TEXT NOT NULL,
			stop_id TEXT NOT NULL,
			stop_sequence INTEGER NOT NULL,
			arrival_time TEXT NOT NULL,
			departure_time TEXT NOT NULL,
			PRIMARY KEY (trip_id, stop_sequence)
		);
		CREATE INDEX IF NOT EXISTS idx_gtfs_stop_times_stop ON gtfs_stop_times (stop_id, departure_time);
		CREATE TABLE IF NOT EXISTS gtfs_shapes (
			shape_id TEXT NOT NULL,
			lat REAL NOT NULL,
			lng REAL NOT NULL,
			sequence INTEGER NOT NULL,
			PRIMARY KEY (shape_id, sequence)
		);
	`)
	return err
}

// ConnectingTrips finds trips that depart fromStopID at or after afterTime
// and later visit toStopID, earliest departure first. routeID narrows the
// search when non-empty.
func (r *SQLiteRepository) ConnectingTrips(ctx context.Context, routeID, fromStopID, toStopID, afterTime string, limit int) ([]Connection, error) {
	if limit <= 0 {
		limit = 5
	}

	query := `
		SELECT t.id, t.route_id, r.short_name, t.headsign,
			dep.departure_time, arr.arrival_time,
			dep.stop_sequence, arr.stop_sequence
		FROM gtfs_stop_times dep
		JOIN gtfs_stop_times arr
			ON arr.trip_id = dep.trip_id AND arr.stop_sequence > dep.stop_sequence
		JOIN gtfs_trips t ON t.id = dep.trip_id
		LEFT JOIN gtfs_routes r ON r.id = t.route_id
		WHERE dep.stop_id = ? AND arr.stop_id = ? AND dep.departure_time >= ?
	`
	args := []any{fromStopID, toStopID, afterTime}
	if routeID != "" {
		query += ` AND t.route_id = ?`
		args = append(args, routeID)
	}
	query += ` ORDER BY dep.departure_time LIMIT ?`
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		if isMissingTable(err) {
			return nil, nil
		}
		return nil, err
	}
	defer rows.Close()

	var conns []Connection
	for rows.Next() {
		var c Connection
		var routeName sql.NullString
		err := rows.Scan(&c.TripID, &c.RouteID, &routeName, &c.Headsign,
			&c.DepartTime, &c.ArriveTime, &c.FromSeq, &c.ToSeq)
		if err != nil {
			return nil, err
		}
		c.RouteName = routeName.String
		conns = append(conns, c)
	}

	return conns, rows.Err()
}

// TripStopsBetween returns the stops a trip visits between two sequence
// numbers inclusive, joined against the stop dataset for names and
// positions.
func (r *SQLiteRepository) TripStopsBetween(ctx context.Context, tripID string, fromSeq, toSeq int) ([]TripStop, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT st.stop_id, COALESCE(s.name, ''), COALESCE(s.lat, 0), COALESCE(s.lng, 0),
			st.stop_sequence, st.arrival_time
		FROM gtfs_stop_times st
		LEFT JOIN stops s ON s.id = st.stop_id
		WHERE st.trip_id = ? AND st.stop_sequence BETWEEN ? AND ?
		ORDER BY st.stop_sequence
	`, tripID, fromSeq, toSeq)
	if err != nil {
		if isMissingTable(err) {
			return nil, nil
		}
		return nil, err
	}
	defer rows.Close()

	var stops []TripStop
	for rows.Next() {
		var s TripStop
		if err := rows.Scan(&s.StopID, &s.Name, &s.Lat, &s.Lng, &s.Sequence, &s.ArrivalTime); err != nil {
			return nil, err
		}
		stops = append(stops, s)
	}

	return stops, rows.Err()
}

// ShapeForTrip returns the shape points of a trip in sequence order.
func (r *SQLiteRepository) ShapeForTrip(ctx context.Context, tripID string) ([]ShapePoint, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT sh.shape_id, sh.lat, sh.lng, sh.sequence
		FROM gtfs_shapes sh
		JOIN gtfs_trips t ON t.shape_id = sh.shape_id
		WHERE t.id = ?
		ORDER BY sh.sequence
	`, tripID)
	if err != nil {
		if isMissingTable(err) {
			return nil, nil
		}
		return nil, err
	}
	defer rows.Close()

	var points []ShapePoint
	for rows.Next() {
		var p ShapePoint
		if err := rows.Scan(&p.ShapeID, &p.Lat, &p.Lng, &p.Sequence); err != nil {
			return nil, err
		}
		points = append(points, p)
	}

	return points, rows.Err()
}

// ReplaceDataset atomically replaces the GTFS tables. Used by the loader.
func (r *SQLiteRepository) ReplaceDataset(ctx context.Context, routes []Route, trips []Trip, stopTimes []StopTime, shapes []ShapePoint) error {
	if err := r.EnsureSchema(ctx); err != nil {
		return err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	for _, table := range []string{"gtfs_routes", "gtfs_trips", "gtfs_stop_times", "gtfs_shapes"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table); err != nil {
			return err
		}
	}

	for _, rt := range routes {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO gtfs_routes (id, short_name, long_name, color) VALUES (?, ?, ?, ?)`,
			rt.ID, rt.ShortName, rt.LongName, rt.Color)
		if err != nil {
			return err
		}
	}
	for _, t := range trips {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO gtfs_trips (id, route_id, headsign, shape_id) VALUES (?, ?, ?, ?)`,
			t.ID, t.RouteID, t.Headsign, t.ShapeID)
		if err != nil {
			return err
		}
	}

	stStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO gtfs_stop_times (trip_id, stop_id, stop_sequence, arrival_time, departure_time)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stStmt.Close()
	for _, st := range stopTimes {
		if _, err := stStmt.ExecContext(ctx, st.TripID, st.StopID, st.StopSequence, st.ArrivalTime, st.DepartureTime); err != nil {
			return err
		}
	}

	shStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO gtfs_shapes (shape_id, lat, lng, sequence) VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer shStmt.Close()
	for _, p := range shapes {
		if _, err := shStmt.ExecContext(ctx, p.ShapeID, p.Lat, p.Lng, p.Sequence); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// TripCount returns the number of trips in the dataset, 0 when absent.
func (r *SQLiteRepository) TripCount(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM gtfs_trips`).Scan(&count)
	if err != nil {
		if isMissingTable(err) {
			return 0, nil
		}
		return 0, err
	}
	return count, nil
}

func isMissingTable(err error) bool {
	return err != nil && strings.Contains(err.Error(), "no such table")
}
