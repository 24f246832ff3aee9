package author

import (
	"context"

	"github.com/google/uuid"

	"bloghub-backend/internal/domains/identity"
)

// Service is the author registry: it guarantees the one-author-per-identity
// invariant for the post mutation paths.
type Service interface {
	// GetOrCreate resolves the internal author ID for an acting identity,
	// creating the record on first use.
	GetOrCreate(ctx context.Context, ident identity.Identity) (uuid.UUID, error)
}
