package service

import (
	"context"

	"github.com/google/uuid"

	"bloghub-backend/internal/domains/identity"
	"bloghub-backend/internal/domains/post/model"
)

// ServiceInterface is the post mutation service plus the read-side gateway.
// Every mutation requires a resolved acting identity and enforces ownership
// before any side effect.
type ServiceInterface interface {
	Create(ctx context.Context, ident identity.Identity, req model.CreatePostRequest, image *model.ImageUpload) (*model.Post, error)
	Update(ctx context.Context, ident identity.Identity, postID uuid.UUID, req model.UpdatePostRequest, image *model.ImageUpload) (*model.Post, error)
	Delete(ctx context.Context, ident identity.Identity, postID uuid.UUID) error

	List(ctx context.Context, q model.ListPostsQuery) ([]model.PostSummary, error)
	GetBySlug(ctx context.Context, slug string) (*model.Post, []model.PostSummary, error)
	ListMine(ctx context.Context, ident identity.Identity) ([]model.PostSummary, error)
}
