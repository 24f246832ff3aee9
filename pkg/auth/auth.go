package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionClaims is the claim set carried by identity-provider session tokens.
// Subject holds the stable external user ID; the profile fields travel with it
// so we never have to call back into the provider on the hot path.
type SessionClaims struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatar_url"`
	jwt.RegisteredClaims
}

// Manager verifies session tokens issued by the identity provider.
type Manager struct {
	secret string
}

// NewManager creates a new session token manager
func NewManager(secret string) *Manager {
	return &Manager{secret: secret}
}

// Verify validates a session token and returns its claims.
func (m *Manager) Verify(tokenString string) (*SessionClaims, error) {
	claims := &SessionClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		// Verify signing method
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(m.secret), nil
	})
	if err != nil {
		return nil, err
	}

	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	if claims.Subject == "" {
		return nil, fmt.Errorf("token has no subject")
	}

	return claims, nil
}

// Issue signs a session token for the given user. The real tokens come from the
// identity provider; this is used by local tooling and tests.
func (m *Manager) Issue(externalID, name, email, avatarURL string, ttl time.Duration) (string, error) {
	claims := SessionClaims{
		Name:      name,
		Email:     email,
		AvatarURL: avatarURL,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   externalID,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(m.secret))
}
