package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"bloghub-backend/internal/domains/author"
	"bloghub-backend/internal/domains/identity"
)

type authorService struct {
	repo author.Repository
}

func NewAuthorService(repo author.Repository) author.Service {
	return &authorService{repo: repo}
}

// GetOrCreate resolves the acting identity to an internal author ID.
// The profile fields are refreshed on every call, so a renamed user or a new
// avatar propagates the next time they touch their content.
func (s *authorService) GetOrCreate(ctx context.Context, ident identity.Identity) (uuid.UUID, error) {
	if ident.ExternalID == "" {
		return uuid.Nil, identity.ErrUnauthenticated
	}

	saved, err := s.repo.Upsert(ctx, &author.Author{
		ExternalID:      ident.ExternalID,
		Name:            ident.Name,
		Email:           ident.Email,
		ProfileImageURL: ident.AvatarURL,
	})
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to resolve author: %w", err)
	}

	return saved.ID, nil
}
