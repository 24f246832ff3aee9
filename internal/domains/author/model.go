package author

import (
	"time"

	"github.com/google/uuid"
)

// Author links an external identity to attributable content.
// Exactly one Author exists per external identity ID; the record is created
// lazily on the identity's first content action and never deleted.
type Author struct {
	ID              uuid.UUID `json:"id"`
	ExternalID      string    `json:"external_id"`
	Name            string    `json:"name"`
	Email           string    `json:"email"`
	ProfileImageURL string    `json:"profile_image_url"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}
