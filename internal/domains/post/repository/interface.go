package repository

import (
	"context"

	"github.com/google/uuid"

	"bloghub-backend/internal/domains/post/model"
)

// PostRepository is the post data access contract.
// The write side returns the persisted document so callers can redirect to
// the stored slug without a second read.
type PostRepository interface {
	Create(ctx context.Context, p *model.Post) (*model.Post, error)
	Patch(ctx context.Context, id uuid.UUID, patch model.PostPatch) (*model.Post, error)
	Delete(ctx context.Context, id uuid.UUID) error

	GetByID(ctx context.Context, id uuid.UUID) (*model.Post, error)
	GetBySlug(ctx context.Context, slug string) (*model.Post, error)

	// GetOwner resolves the owning author's external identity ID for the
	// ownership check, plus the slug and cover key needed for cleanup.
	GetOwner(ctx context.Context, id uuid.UUID) (*model.PostOwner, error)

	List(ctx context.Context, q model.ListPostsQuery) ([]model.PostSummary, error)
	ListRelated(ctx context.Context, category string, excludeID uuid.UUID, limit int) ([]model.PostSummary, error)
	ListByAuthorExternalID(ctx context.Context, externalID string) ([]model.PostSummary, error)

	// ListCoverImageKeys returns every referenced cover object key.
	// Used by the orphaned-asset reconciliation job.
	ListCoverImageKeys(ctx context.Context) ([]string, error)
}
