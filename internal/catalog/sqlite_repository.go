package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

// SQLiteRepository is a file-backed catalog for local development and
// offline demos. It implements Repository and can be seeded.
type SQLiteRepository struct {
	db *sql.DB
}

// OpenSQLiteRepository opens (and if needed creates) a catalog database file.
func OpenSQLiteRepository(path string) (*SQLiteRepository, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("create catalog directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open catalog database: %w", err)
	}
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("set pragma %s: %w", pragma, err)
		}
	}

	r := &SQLiteRepository{db: db}
	if err := r.createSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return r, nil
}

func (r *SQLiteRepository) createSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS locations (
		id                TEXT PRIMARY KEY,
		name              TEXT NOT NULL,
		city              TEXT NOT NULL,
		city_key          TEXT NOT NULL,
		lat               REAL NOT NULL,
		lon               REAL NOT NULL,
		category          TEXT NOT NULL,
		tags              TEXT NOT NULL DEFAULT '[]',
		price_tier        INTEGER NOT NULL,
		rating            REAL NOT NULL,
		avg_duration_mins INTEGER NOT NULL,
		opening_hours     TEXT NOT NULL,
		verified          INTEGER NOT NULL DEFAULT 0,
		popular           INTEGER NOT NULL DEFAULT 0,
		hidden_gem        INTEGER NOT NULL DEFAULT 0
	);
	CREATE INDEX IF NOT EXISTS idx_locations_city_key ON locations(city_key);
	`
	if _, err := r.db.Exec(schema); err != nil {
		return fmt.Errorf("create catalog schema: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

// Ping checks the database is reachable.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Count returns the number of locations stored.
func (r *SQLiteRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM locations`).Scan(&n)
	return n, err
}

// Upsert inserts or replaces locations in a single transaction.
func (r *SQLiteRepository) Upsert(ctx context.Context, locations []*Location) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO locations (
			id, name, city, city_key, lat, lon, category, tags,
			price_tier, rating, avg_duration_mins, opening_hours,
			verified, popular, hidden_gem
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, l := range locations {
		tags, err := json.Marshal(l.Tags)
		if err != nil {
			return err
		}
		hours, err := json.Marshal(l.Hours)
		if err != nil {
			return err
		}
		_, err = stmt.ExecContext(ctx,
			l.ID, l.Name, l.City, CityKey(l.City), l.Point.Lat, l.Point.Lon,
			l.Category, string(tags), l.PriceTier, l.Rating, l.AvgDurationMins,
			string(hours), l.Verified, l.Popular, l.HiddenGem,
		)
		if err != nil {
			return fmt.Errorf("upsert location %s: %w", l.ID, err)
		}
	}

	return tx.Commit()
}

const sqliteLocationColumns = `
	id, name, city, lat, lon, category, tags,
	price_tier, rating, avg_duration_mins, opening_hours,
	verified, popular, hidden_gem
`

// ListByCity returns all locations in a city ordered by ID.
func (r *SQLiteRepository) ListByCity(ctx context.Context, city string) ([]*Location, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+sqliteLocationColumns+` FROM locations WHERE city_key = ? ORDER BY id`,
		CityKey(city),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var locations []*Location
	for rows.Next() {
		l, err := scanSQLiteLocation(rows)
		if err != nil {
			return nil, err
		}
		locations = append(locations, l)
	}
	return locations, rows.Err()
}

// Get retrieves a location by ID.
func (r *SQLiteRepository) Get(ctx context.Context, id string) (*Location, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+sqliteLocationColumns+` FROM locations WHERE id = ?`, id)

	l, err := scanSQLiteLocation(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrLocationNotFound
		}
		return nil, err
	}
	return l, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteLocation(row rowScanner) (*Location, error) {
	var (
		l           Location
		tags, hours string
	)

	err := row.Scan(
		&l.ID, &l.Name, &l.City, &l.Point.Lat, &l.Point.Lon, &l.Category, &tags,
		&l.PriceTier, &l.Rating, &l.AvgDurationMins, &hours,
		&l.Verified, &l.Popular, &l.HiddenGem,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(tags), &l.Tags); err != nil {
		return nil, fmt.Errorf("decode tags for %s: %w", l.ID, err)
	}
	if err := json.Unmarshal([]byte(hours), &l.Hours); err != nil {
		return nil, fmt.Errorf("decode opening hours for %s: %w", l.ID, err)
	}

	return &l, nil
}

// Ensure SQLiteRepository implements Repository interface.
var _ Repository = (*SQLiteRepository)(nil)
