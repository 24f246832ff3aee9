package identity

import (
	"errors"

	"github.com/gin-gonic/gin"

	"bloghub-backend/pkg/auth"
)

// ErrUnauthenticated means no valid session was presented.
// Mutation entry points treat this as a hard stop, never a retryable condition.
var ErrUnauthenticated = errors.New("you must be logged in to perform this action")

const contextKey = "identity"

// Identity is the resolved acting user: the stable external ID assigned by the
// identity provider plus the profile fields used to build Author records.
type Identity struct {
	ExternalID string `json:"external_id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	AvatarURL  string `json:"avatar_url"`
}

// FromClaims maps verified session claims into an Identity.
func FromClaims(claims *auth.SessionClaims) Identity {
	return Identity{
		ExternalID: claims.Subject,
		Name:       claims.Name,
		Email:      claims.Email,
		AvatarURL:  claims.AvatarURL,
	}
}

// IntoContext stores the identity on the request context.
// Called by the auth middleware after token verification.
func IntoContext(c *gin.Context, ident Identity) {
	c.Set(contextKey, ident)
}

// FromContext resolves the acting identity from the request context.
func FromContext(c *gin.Context) (Identity, error) {
	v, ok := c.Get(contextKey)
	if !ok {
		return Identity{}, ErrUnauthenticated
	}

	ident, ok := v.(Identity)
	if !ok || ident.ExternalID == "" {
		return Identity{}, ErrUnauthenticated
	}
	return ident, nil
}
