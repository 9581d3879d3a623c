package itinerary

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository is a PostgreSQL implementation of Repository.
//
// Items, spec, stats and diagnostics are stored as JSONB documents:
//
//	CREATE TABLE itineraries (
//	    id            TEXT PRIMARY KEY,
//	    user_id       TEXT NOT NULL,
//	    title         TEXT NOT NULL,
//	    variant       TEXT NOT NULL,
//	    city          TEXT NOT NULL,
//	    duration_days INT  NOT NULL,
//	    spec          JSONB NOT NULL,
//	    items         JSONB NOT NULL,
//	    stats         JSONB NOT NULL,
//	    diagnostics   JSONB NOT NULL DEFAULT '[]',
//	    version       INT  NOT NULL DEFAULT 1,
//	    created_at    TIMESTAMPTZ NOT NULL,
//	    updated_at    TIMESTAMPTZ NOT NULL
//	);
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL itinerary repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const itineraryColumns = `
	id, user_id, title, variant, spec, items, stats, diagnostics,
	version, created_at, updated_at
`

// Get retrieves an itinerary by ID.
func (r *PostgresRepository) Get(ctx context.Context, id string) (*Itinerary, error) {
	query := `SELECT ` + itineraryColumns + ` FROM itineraries WHERE id = $1`
	return r.scanOne(r.pool.QueryRow(ctx, query, id))
}

// GetByUserAndID retrieves an itinerary owned by a user.
func (r *PostgresRepository) GetByUserAndID(ctx context.Context, userID, id string) (*Itinerary, error) {
	query := `SELECT ` + itineraryColumns + ` FROM itineraries WHERE id = $1 AND user_id = $2`
	return r.scanOne(r.pool.QueryRow(ctx, query, id, userID))
}

func (r *PostgresRepository) scanOne(row pgx.Row) (*Itinerary, error) {
	it, err := scanItinerary(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrItineraryNotFound
		}
		return nil, err
	}
	return it, nil
}

// List retrieves a user's itineraries, newest first.
func (r *PostgresRepository) List(ctx context.Context, userID string, opts ListOptions) (*ListResult, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}
	// Fetch one extra to determine if there are more results
	fetchLimit := limit + 1

	query := `
		SELECT ` + itineraryColumns + `
		FROM itineraries
		WHERE user_id = $1
		  AND ($2 = '' OR (created_at, id) < (
		      SELECT created_at, id FROM itineraries WHERE id = $2
		  ))
		ORDER BY created_at DESC, id DESC
		LIMIT $3
	`

	rows, err := r.pool.Query(ctx, query, userID, opts.Cursor, fetchLimit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*Itinerary
	for rows.Next() {
		it, err := scanItinerary(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	result := &ListResult{Items: items}
	if len(items) > limit {
		result.Items = items[:limit]
		result.NextCursor = items[limit-1].ID
	}
	return result, nil
}

// Create stores a new itinerary.
func (r *PostgresRepository) Create(ctx context.Context, it *Itinerary) error {
	doc, err := encodeDocuments(it)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO itineraries (
			id, user_id, title, variant, city, duration_days,
			spec, items, stats, diagnostics, version, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err = r.pool.Exec(ctx, query,
		it.ID, it.UserID, it.Title, it.Variant, it.Spec.City, it.Spec.DurationDays,
		doc.spec, doc.items, doc.stats, doc.diagnostics,
		it.Version, it.CreatedAt, it.UpdatedAt,
	)
	return err
}

// Update replaces a stored itinerary using optimistic versioning.
func (r *PostgresRepository) Update(ctx context.Context, it *Itinerary) error {
	doc, err := encodeDocuments(it)
	if err != nil {
		return err
	}

	query := `
		UPDATE itineraries SET
			title = $2, items = $3, stats = $4, diagnostics = $5,
			version = $6, updated_at = $7
		WHERE id = $1 AND version = $6 - 1
	`

	tag, err := r.pool.Exec(ctx, query,
		it.ID, it.Title, doc.items, doc.stats, doc.diagnostics, it.Version, it.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM itineraries WHERE id = $1)`, it.ID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return ErrItineraryNotFound
		}
		return ErrVersionConflict
	}
	return nil
}

// Delete deletes an itinerary by ID.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM itineraries WHERE id = $1`, id)
	return err
}

type documents struct {
	spec, items, stats, diagnostics []byte
}

func encodeDocuments(it *Itinerary) (documents, error) {
	var (
		doc documents
		err error
	)
	if doc.spec, err = json.Marshal(it.Spec); err != nil {
		return doc, fmt.Errorf("encode spec: %w", err)
	}
	if doc.items, err = json.Marshal(it.Items); err != nil {
		return doc, fmt.Errorf("encode items: %w", err)
	}
	if doc.stats, err = json.Marshal(it.Stats); err != nil {
		return doc, fmt.Errorf("encode stats: %w", err)
	}
	diagnostics := it.Diagnostics
	if diagnostics == nil {
		diagnostics = []Diagnostic{}
	}
	if doc.diagnostics, err = json.Marshal(diagnostics); err != nil {
		return doc, fmt.Errorf("encode diagnostics: %w", err)
	}
	return doc, nil
}

func scanItinerary(row pgx.Row) (*Itinerary, error) {
	var (
		it  Itinerary
		doc documents
	)

	err := row.Scan(
		&it.ID,
		&it.UserID,
		&it.Title,
		&it.Variant,
		&doc.spec,
		&doc.items,
		&doc.stats,
		&doc.diagnostics,
		&it.Version,
		&it.CreatedAt,
		&it.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(doc.spec, &it.Spec); err != nil {
		return nil, fmt.Errorf("decode spec for %s: %w", it.ID, err)
	}
	if err := json.Unmarshal(doc.items, &it.Items); err != nil {
		return nil, fmt.Errorf("decode items for %s: %w", it.ID, err)
	}
	if err := json.Unmarshal(doc.stats, &it.Stats); err != nil {
		return nil, fmt.Errorf("decode stats for %s: %w", it.ID, err)
	}
	if err := json.Unmarshal(doc.diagnostics, &it.Diagnostics); err != nil {
		return nil, fmt.Errorf("decode diagnostics for %s: %w", it.ID, err)
	}

	return &it, nil
}

// Ensure PostgresRepository implements Repository interface.
var _ Repository = (*PostgresRepository)(nil)
