package author

import (
	"context"
)

// Repository is the author data access contract.
type Repository interface {
	// Upsert inserts the author or, when the external ID already exists,
	// refreshes the profile fields. Atomic: concurrent first-time calls for
	// the same external ID converge on a single row.
	Upsert(ctx context.Context, a *Author) (*Author, error)

	// GetByExternalID returns ErrAuthorNotFound when no record exists.
	GetByExternalID(ctx context.Context, externalID string) (*Author, error)
}
