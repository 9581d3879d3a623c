package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository is a PostgreSQL implementation of Repository.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL catalog repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const locationColumns = `
	id, name, city, lat, lon, category, tags,
	price_tier, rating, avg_duration_mins, opening_hours,
	verified, popular, hidden_gem
`

// ListByCity returns all locations in a city ordered by ID.
func (r *PostgresRepository) ListByCity(ctx context.Context, city string) ([]*Location, error) {
	query := `SELECT ` + locationColumns + `
		FROM locations
		WHERE city_key = $1
		ORDER BY id
	`

	rows, err := r.pool.Query(ctx, query, CityKey(city))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var locations []*Location
	for rows.Next() {
		l, err := scanLocation(rows)
		if err != nil {
			return nil, err
		}
		locations = append(locations, l)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return locations, nil
}

// Get retrieves a location by ID.
func (r *PostgresRepository) Get(ctx context.Context, id string) (*Location, error) {
	query := `SELECT ` + locationColumns + `
		FROM locations
		WHERE id = $1
	`

	l, err := scanLocation(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrLocationNotFound
		}
		return nil, err
	}
	return l, nil
}

// Upsert inserts or updates locations in one batch. Used to seed a fresh
// database.
func (r *PostgresRepository) Upsert(ctx context.Context, locations []*Location) error {
	batch := &pgx.Batch{}
	for _, l := range locations {
		hours, err := json.Marshal(l.Hours)
		if err != nil {
			return err
		}
		batch.Queue(`
			INSERT INTO locations (
				id, name, city, city_key, lat, lon, category, tags,
				price_tier, rating, avg_duration_mins, opening_hours,
				verified, popular, hidden_gem
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
			ON CONFLICT (id) DO UPDATE SET
				name = EXCLUDED.name,
				city = EXCLUDED.city,
				city_key = EXCLUDED.city_key,
				lat = EXCLUDED.lat,
				lon = EXCLUDED.lon,
				category = EXCLUDED.category,
				tags = EXCLUDED.tags,
				price_tier = EXCLUDED.price_tier,
				rating = EXCLUDED.rating,
				avg_duration_mins = EXCLUDED.avg_duration_mins,
				opening_hours = EXCLUDED.opening_hours,
				verified = EXCLUDED.verified,
				popular = EXCLUDED.popular,
				hidden_gem = EXCLUDED.hidden_gem
		`,
			l.ID, l.Name, l.City, CityKey(l.City), l.Point.Lat, l.Point.Lon,
			l.Category, l.Tags, l.PriceTier, l.Rating, l.AvgDurationMins,
			hours, l.Verified, l.Popular, l.HiddenGem,
		)
	}

	if err := r.pool.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("upsert locations: %w", err)
	}
	return nil
}

// scanLocation scans a location row.
func scanLocation(row pgx.Row) (*Location, error) {
	var (
		l     Location
		hours []byte
	)

	err := row.Scan(
		&l.ID,
		&l.Name,
		&l.City,
		&l.Point.Lat,
		&l.Point.Lon,
		&l.Category,
		&l.Tags,
		&l.PriceTier,
		&l.Rating,
		&l.AvgDurationMins,
		&hours,
		&l.Verified,
		&l.Popular,
		&l.HiddenGem,
	)
	if err != nil {
		return nil, err
	}

	if len(hours) > 0 {
		if err := json.Unmarshal(hours, &l.Hours); err != nil {
			return nil, fmt.Errorf("decode opening hours for %s: %w", l.ID, err)
		}
	}

	return &l, nil
}

// Ensure PostgresRepository implements Repository interface.
var _ Repository = (*PostgresRepository)(nil)
