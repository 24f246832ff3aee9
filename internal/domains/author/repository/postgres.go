package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"bloghub-backend/internal/domains/author"
)

// postgresRepository implements author.Repository
// Uses pgxpool for PostgreSQL connection management
type postgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new author repository instance
// Dependency injection pattern - receives pool from container
func NewPostgresRepository(pool *pgxpool.Pool) author.Repository {
	return &postgresRepository{pool: pool}
}

// Upsert performs an atomic insert-or-refresh keyed on external_id.
// The single statement replaces the old lookup-then-create flow, which could
// race two first-time actions by the same identity into duplicate rows.
func (r *postgresRepository) Upsert(ctx context.Context, a *author.Author) (*author.Author, error) {
	query := `
        INSERT INTO authors (external_id, name, email, profile_image_url)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (external_id) DO UPDATE
        SET name              = EXCLUDED.name,
            email             = EXCLUDED.email,
            profile_image_url = EXCLUDED.profile_image_url,
            updated_at        = now()
        RETURNING id, external_id, name, email, profile_image_url, created_at, updated_at
    `

	var saved author.Author
	err := r.pool.QueryRow(
		ctx,
		query,
		a.ExternalID,
		a.Name,
		a.Email,
		a.ProfileImageURL,
	).Scan(
		&saved.ID,
		&saved.ExternalID,
		&saved.Name,
		&saved.Email,
		&saved.ProfileImageURL,
		&saved.CreatedAt,
		&saved.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert author: %w", err)
	}

	return &saved, nil
}

// GetByExternalID retrieves an author by their external identity ID
func (r *postgresRepository) GetByExternalID(ctx context.Context, externalID string) (*author.Author, error) {
	query := `
        SELECT id, external_id, name, email, profile_image_url, created_at, updated_at
        FROM authors
        WHERE external_id = $1
    `

	var a author.Author
	err := r.pool.QueryRow(ctx, query, externalID).Scan(
		&a.ID,
		&a.ExternalID,
		&a.Name,
		&a.Email,
		&a.ProfileImageURL,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, author.ErrAuthorNotFound
		}
		return nil, fmt.Errorf("failed to get author: %w", err)
	}

	return &a, nil
}
