package database

import (
	"context"
	"fmt"
)

// Schema is applied at startup. Idempotent: every statement is IF NOT EXISTS.
const schema = `
CREATE TABLE IF NOT EXISTS authors (
    id                UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    external_id       TEXT NOT NULL UNIQUE,
    name              TEXT NOT NULL DEFAULT '',
    email             TEXT NOT NULL DEFAULT '',
    profile_image_url TEXT NOT NULL DEFAULT '',
    created_at        TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at        TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS posts (
    id              UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    title           TEXT NOT NULL,
    slug            TEXT NOT NULL,
    category        TEXT NOT NULL,
    cover_image_url TEXT,
    cover_image_key TEXT,
    body            JSONB NOT NULL DEFAULT '[]'::jsonb,
    published_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
    author_id       UUID NOT NULL REFERENCES authors(id),
    created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_posts_slug ON posts (slug);
CREATE INDEX IF NOT EXISTS idx_posts_category ON posts (category);
CREATE INDEX IF NOT EXISTS idx_posts_published_at ON posts (published_at DESC);
CREATE INDEX IF NOT EXISTS idx_posts_author_id ON posts (author_id);
`

// Migrate applies the schema. Slug is deliberately not unique: the product
// derives it from the title without a collision check, and lookups take the
// most recently published match.
func (db *PostgresDB) Migrate(ctx context.Context) error {
	if db.Pool == nil {
		return fmt.Errorf("database pool is not initialized")
	}

	if _, err := db.Pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}
