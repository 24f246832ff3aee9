package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"bloghub-backend/internal/domains/author"
	"bloghub-backend/internal/domains/identity"
	"bloghub-backend/internal/domains/post/model"
	"bloghub-backend/internal/domains/post/repository"
	"bloghub-backend/internal/infrastructure/storage"
	"bloghub-backend/internal/shared/utils"
)

const relatedPostsLimit = 3

type postService struct {
	repo    repository.PostRepository
	authors author.Service
	storage storage.ObjectStorage
	images  *storage.ImageProcessor
}

func NewPostService(
	repo repository.PostRepository,
	authors author.Service,
	objects storage.ObjectStorage,
	images *storage.ImageProcessor,
) ServiceInterface {
	return &postService{
		repo:    repo,
		authors: authors,
		storage: objects,
		images:  images,
	}
}

// =====================================================
// CREATE POST
// =====================================================

func (s *postService) Create(ctx context.Context, ident identity.Identity, req model.CreatePostRequest, image *model.ImageUpload) (*model.Post, error) {
	// Step 1: Require a resolved identity before any side effect
	if ident.ExternalID == "" {
		return nil, identity.ErrUnauthenticated
	}

	// Step 2: Validate request server-side
	if err := req.Validate(); err != nil {
		return nil, err
	}

	// Step 3: Resolve (or lazily create) the author record
	authorID, err := s.authors.GetOrCreate(ctx, ident)
	if err != nil {
		return nil, err
	}

	// Step 4: Upload cover image if one was supplied
	coverURL, coverKey, err := s.uploadCover(ctx, image)
	if err != nil {
		return nil, err
	}

	// Step 5: Derive slug and parse body into blocks.
	// Slug is fixed here for the lifetime of the post.
	post := &model.Post{
		Title:         req.Title,
		Slug:          utils.GenerateSlug(req.Title),
		Category:      req.Category,
		CoverImageURL: coverURL,
		CoverImageKey: coverKey,
		Body:          model.BodyFromText(req.Body),
		PublishedAt:   time.Now().UTC(),
		AuthorID:      authorID,
	}

	// Step 6: Persist and return the stored document
	created, err := s.repo.Create(ctx, post)
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("post_id", created.ID.String()).
		Str("slug", created.Slug).
		Str("author", ident.ExternalID).
		Msg("Post created")

	return created, nil
}

// =====================================================
// UPDATE POST
// =====================================================

func (s *postService) Update(ctx context.Context, ident identity.Identity, postID uuid.UUID, req model.UpdatePostRequest, image *model.ImageUpload) (*model.Post, error) {
	// Step 1: Identity + ownership gate before any write
	owner, err := s.requireOwner(ctx, ident, postID)
	if err != nil {
		return nil, err
	}

	// Step 2: Validate request
	if err := req.Validate(); err != nil {
		return nil, err
	}

	// Step 3: Title, category and body always overwrite.
	// Slug stays as created: title edits must not silently rename the URL.
	patch := model.PostPatch{
		Title:    req.Title,
		Category: req.Category,
		Body:     model.BodyFromText(req.Body),
	}

	// Step 4: Replace the cover only when a new image arrives;
	// an omitted image leaves the existing reference untouched.
	replacedKey := ""
	if coverURL, coverKey, err := s.uploadCover(ctx, image); err != nil {
		return nil, err
	} else if coverKey != "" {
		patch.CoverImageURL = &coverURL
		patch.CoverImageKey = &coverKey
		replacedKey = owner.CoverImageKey
	}

	// Step 5: Apply patch
	updated, err := s.repo.Patch(ctx, postID, patch)
	if err != nil {
		return nil, err
	}

	// Step 6: Drop the replaced object. Best effort: a failure leaves an
	// orphan for the reconciliation job, never a broken post.
	s.deleteObject(ctx, replacedKey)

	log.Info().
		Str("post_id", postID.String()).
		Str("author", ident.ExternalID).
		Msg("Post updated")

	return updated, nil
}

// =====================================================
// DELETE POST
// =====================================================

func (s *postService) Delete(ctx context.Context, ident identity.Identity, postID uuid.UUID) error {
	owner, err := s.requireOwner(ctx, ident, postID)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, postID); err != nil {
		return err
	}

	s.deleteObject(ctx, owner.CoverImageKey)

	log.Info().
		Str("post_id", postID.String()).
		Str("author", ident.ExternalID).
		Msg("Post deleted")

	return nil
}

// =====================================================
// READ SIDE
// =====================================================

func (s *postService) List(ctx context.Context, q model.ListPostsQuery) ([]model.PostSummary, error) {
	return s.repo.List(ctx, q)
}

// GetBySlug returns the post and up to 3 related posts from the same category.
func (s *postService) GetBySlug(ctx context.Context, slug string) (*model.Post, []model.PostSummary, error) {
	post, err := s.repo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, nil, err
	}

	related, err := s.repo.ListRelated(ctx, post.Category, post.ID, relatedPostsLimit)
	if err != nil {
		// Related posts are decoration; the post page must still render.
		log.Warn().Err(err).Str("slug", slug).Msg("Failed to load related posts")
		related = []model.PostSummary{}
	}

	return post, related, nil
}

func (s *postService) ListMine(ctx context.Context, ident identity.Identity) ([]model.PostSummary, error) {
	if ident.ExternalID == "" {
		return nil, identity.ErrUnauthenticated
	}
	return s.repo.ListByAuthorExternalID(ctx, ident.ExternalID)
}

// =====================================================
// HELPERS
// =====================================================

// requireOwner verifies the session and that the acting identity owns the
// post. The comparison is against the owning author's external identity ID.
func (s *postService) requireOwner(ctx context.Context, ident identity.Identity, postID uuid.UUID) (*model.PostOwner, error) {
	if ident.ExternalID == "" {
		return nil, identity.ErrUnauthenticated
	}

	owner, err := s.repo.GetOwner(ctx, postID)
	if err != nil {
		return nil, err
	}

	if owner.AuthorExternalID != ident.ExternalID {
		return nil, model.ErrNotPostOwner
	}

	return owner, nil
}

// uploadCover validates, normalizes and stores a cover image.
// A nil or empty upload is the valid no-image state: ("", "", nil).
func (s *postService) uploadCover(ctx context.Context, image *model.ImageUpload) (url, key string, err error) {
	if image == nil || len(image.Data) == 0 {
		return "", "", nil
	}

	if err := s.images.Validate(image.Data); err != nil {
		return "", "", fmt.Errorf("%w: %v", model.ErrUploadFailed, err)
	}

	normalized, err := s.images.Normalize(image.Data)
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", model.ErrUploadFailed, err)
	}

	key = fmt.Sprintf("covers/%s.jpg", uuid.New().String())
	url, err = s.storage.Upload(ctx, key, normalized, "image/jpeg")
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", model.ErrUploadFailed, err)
	}

	return url, key, nil
}

// deleteObject removes a stored object, logging instead of failing.
func (s *postService) deleteObject(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := s.storage.Delete(ctx, key); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Failed to delete cover object, leaving orphan for reconciliation")
	}
}
