package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"bloghub-backend/internal/domains/post/model"
	"bloghub-backend/pkg/cache"
)

// postgresRepository implements PostRepository.
// Raw SQL with pgxpool; reads are cache-aside over Redis.
type postgresRepository struct {
	pool  *pgxpool.Pool
	cache cache.Cache
}

// NewPostgresRepository creates a new post repository instance
// Dependency injection pattern - receives pool and cache from container
func NewPostgresRepository(pool *pgxpool.Pool, cache cache.Cache) PostRepository {
	return &postgresRepository{
		pool:  pool,
		cache: cache,
	}
}

// Cache key constants. The short TTL is the read-side revalidation window:
// listings may serve content up to cacheTTL stale.
const (
	postSlugKeyPrefix = "post:slug:"
	postListKeyPrefix = "posts:list:"
	cacheTTL          = 30 * time.Second
)

const postColumns = `
        p.id, p.title, p.slug, p.category,
        COALESCE(p.cover_image_url, ''), COALESCE(p.cover_image_key, ''),
        p.body, p.published_at, p.author_id, p.created_at, p.updated_at,
        a.name, a.email, a.profile_image_url`

const summaryColumns = `
        p.id, p.title, p.slug, p.category,
        COALESCE(p.cover_image_url, ''), p.published_at,
        a.name, a.email, a.profile_image_url`

// ========================= WRITE SIDE =====================

// Create inserts a new post and returns the persisted document.
func (r *postgresRepository) Create(ctx context.Context, p *model.Post) (*model.Post, error) {
	query := `
        INSERT INTO posts (title, slug, category, cover_image_url, cover_image_key, body, published_at, author_id)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        RETURNING id, created_at, updated_at
    `

	created := *p
	err := r.pool.QueryRow(
		ctx,
		query,
		p.Title,
		p.Slug,
		p.Category,
		nullIfEmpty(p.CoverImageURL),
		nullIfEmpty(p.CoverImageKey),
		p.Body,
		p.PublishedAt,
		p.AuthorID,
	).Scan(
		&created.ID,
		&created.CreatedAt,
		&created.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create post: %w", err)
	}

	r.invalidate(ctx, created.Slug)
	return &created, nil
}

// Patch applies an update. Title/category/body always overwrite; cover image
// fields only when set. Slug is intentionally never touched.
func (r *postgresRepository) Patch(ctx context.Context, id uuid.UUID, patch model.PostPatch) (*model.Post, error) {
	sets := []string{"title = $1", "category = $2", "body = $3", "updated_at = now()"}
	args := []interface{}{patch.Title, patch.Category, patch.Body}
	argIndex := 4

	if patch.CoverImageURL != nil {
		sets = append(sets, fmt.Sprintf("cover_image_url = $%d", argIndex))
		args = append(args, *patch.CoverImageURL)
		argIndex++
	}
	if patch.CoverImageKey != nil {
		sets = append(sets, fmt.Sprintf("cover_image_key = $%d", argIndex))
		args = append(args, *patch.CoverImageKey)
		argIndex++
	}

	query := fmt.Sprintf(`
        UPDATE posts
        SET %s
        WHERE id = $%d
        RETURNING slug
    `, strings.Join(sets, ", "), argIndex)
	args = append(args, id)

	var slug string
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&slug); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrPostNotFound
		}
		return nil, fmt.Errorf("failed to patch post: %w", err)
	}

	r.invalidate(ctx, slug)
	return r.GetByID(ctx, id)
}

// Delete hard-deletes a post document. No soft-delete, no versioning.
func (r *postgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	var slug string
	err := r.pool.QueryRow(ctx, `DELETE FROM posts WHERE id = $1 RETURNING slug`, id).Scan(&slug)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.ErrPostNotFound
		}
		return fmt.Errorf("failed to delete post: %w", err)
	}

	r.invalidate(ctx, slug)
	return nil
}

// ========================= READ SIDE =====================

func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Post, error) {
	query := fmt.Sprintf(`
        SELECT %s
        FROM posts p
        JOIN authors a ON p.author_id = a.id
        WHERE p.id = $1
    `, postColumns)

	return r.scanPost(r.pool.QueryRow(ctx, query, id))
}

// GetBySlug returns the newest post carrying the slug (slugs are not unique).
func (r *postgresRepository) GetBySlug(ctx context.Context, slug string) (*model.Post, error) {
	cacheKey := postSlugKeyPrefix + slug

	var cached model.Post
	if found, err := r.cache.Get(ctx, cacheKey, &cached); err == nil && found {
		return &cached, nil
	}

	query := fmt.Sprintf(`
        SELECT %s
        FROM posts p
        JOIN authors a ON p.author_id = a.id
        WHERE p.slug = $1
        ORDER BY p.published_at DESC
        LIMIT 1
    `, postColumns)

	p, err := r.scanPost(r.pool.QueryRow(ctx, query, slug))
	if err != nil {
		return nil, err
	}

	if err := r.cache.Set(ctx, cacheKey, p, cacheTTL); err != nil {
		log.Warn().Err(err).Str("key", cacheKey).Msg("Failed to cache post")
	}
	return p, nil
}

func (r *postgresRepository) GetOwner(ctx context.Context, id uuid.UUID) (*model.PostOwner, error) {
	query := `
        SELECT p.id, p.author_id, a.external_id, p.slug, COALESCE(p.cover_image_key, '')
        FROM posts p
        JOIN authors a ON p.author_id = a.id
        WHERE p.id = $1
    `

	var owner model.PostOwner
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&owner.PostID,
		&owner.AuthorID,
		&owner.AuthorExternalID,
		&owner.Slug,
		&owner.CoverImageKey,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrPostNotFound
		}
		return nil, fmt.Errorf("failed to get post owner: %w", err)
	}

	return &owner, nil
}

// List returns filtered summaries ordered by published timestamp descending.
// Search is a case-insensitive substring match over title and block text.
func (r *postgresRepository) List(ctx context.Context, q model.ListPostsQuery) ([]model.PostSummary, error) {
	cats := q.Categories
	if cats == nil {
		cats = []string{}
	}

	cacheKey := listCacheKey(q.Search, cats)

	var cached []model.PostSummary
	if found, err := r.cache.Get(ctx, cacheKey, &cached); err == nil && found {
		return cached, nil
	}

	query := fmt.Sprintf(`
        SELECT %s
        FROM posts p
        JOIN authors a ON p.author_id = a.id
        WHERE ($1 = ''
               OR p.title ILIKE '%%' || $1 || '%%'
               OR EXISTS (
                   SELECT 1 FROM jsonb_array_elements(p.body) blk
                   WHERE blk->>'text' ILIKE '%%' || $1 || '%%'
               ))
          AND (cardinality($2::text[]) = 0 OR p.category = ANY($2::text[]))
        ORDER BY p.published_at DESC
    `, summaryColumns)

	summaries, err := r.querySummaries(ctx, query, q.Search, cats)
	if err != nil {
		return nil, err
	}

	if err := r.cache.Set(ctx, cacheKey, summaries, cacheTTL); err != nil {
		log.Warn().Err(err).Str("key", cacheKey).Msg("Failed to cache post listing")
	}
	return summaries, nil
}

// ListRelated returns up to limit posts in the same category, excluding the
// current post. Ordering follows the listing default.
func (r *postgresRepository) ListRelated(ctx context.Context, category string, excludeID uuid.UUID, limit int) ([]model.PostSummary, error) {
	query := fmt.Sprintf(`
        SELECT %s
        FROM posts p
        JOIN authors a ON p.author_id = a.id
        WHERE p.category = $1 AND p.id != $2
        ORDER BY p.published_at DESC
        LIMIT $3
    `, summaryColumns)

	return r.querySummaries(ctx, query, category, excludeID, limit)
}

func (r *postgresRepository) ListByAuthorExternalID(ctx context.Context, externalID string) ([]model.PostSummary, error) {
	query := fmt.Sprintf(`
        SELECT %s
        FROM posts p
        JOIN authors a ON p.author_id = a.id
        WHERE a.external_id = $1
        ORDER BY p.published_at DESC
    `, summaryColumns)

	return r.querySummaries(ctx, query, externalID)
}

func (r *postgresRepository) ListCoverImageKeys(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, `
        SELECT cover_image_key FROM posts
        WHERE cover_image_key IS NOT NULL AND cover_image_key != ''
    `)
	if err != nil {
		return nil, fmt.Errorf("failed to list cover image keys: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("failed to scan cover image key: %w", err)
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}

// ========================= HELPERS =====================

func (r *postgresRepository) scanPost(row pgx.Row) (*model.Post, error) {
	var p model.Post
	var info model.AuthorInfo

	err := row.Scan(
		&p.ID,
		&p.Title,
		&p.Slug,
		&p.Category,
		&p.CoverImageURL,
		&p.CoverImageKey,
		&p.Body,
		&p.PublishedAt,
		&p.AuthorID,
		&p.CreatedAt,
		&p.UpdatedAt,
		&info.Name,
		&info.Email,
		&info.ProfileImageURL,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrPostNotFound
		}
		return nil, fmt.Errorf("failed to scan post: %w", err)
	}

	p.Author = &info
	return &p, nil
}

func (r *postgresRepository) querySummaries(ctx context.Context, query string, args ...interface{}) ([]model.PostSummary, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query posts: %w", err)
	}
	defer rows.Close()

	summaries := []model.PostSummary{}
	for rows.Next() {
		var s model.PostSummary
		err := rows.Scan(
			&s.ID,
			&s.Title,
			&s.Slug,
			&s.Category,
			&s.CoverImageURL,
			&s.PublishedAt,
			&s.Author.Name,
			&s.Author.Email,
			&s.Author.ProfileImageURL,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan post summary: %w", err)
		}
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}

// listCacheKey encodes the listing filter into a cache key. Every component
// is length-prefixed so distinct filters can never alias one key, whatever
// characters the search term or category values contain.
func listCacheKey(search string, cats []string) string {
	var b strings.Builder
	b.WriteString(postListKeyPrefix)
	fmt.Fprintf(&b, "%d:%s", len(search), search)
	for _, c := range cats {
		fmt.Fprintf(&b, "|%d:%s", len(c), c)
	}
	return b.String()
}

// invalidate drops the slug entry and every cached listing after a mutation.
func (r *postgresRepository) invalidate(ctx context.Context, slug string) {
	if err := r.cache.Delete(ctx, postSlugKeyPrefix+slug); err != nil {
		log.Warn().Err(err).Str("slug", slug).Msg("Failed to invalidate post cache")
	}
	if err := r.cache.DeletePattern(ctx, postListKeyPrefix+"*"); err != nil {
		log.Warn().Err(err).Msg("Failed to invalidate post listing cache")
	}
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
