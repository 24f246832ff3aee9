package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndVerify(t *testing.T) {
	mgr := NewManager("test-secret")

	token, err := mgr.Issue("user_abc", "Ada", "ada@example.com", "https://img.test/ada.png", time.Hour)
	require.NoError(t, err)

	claims, err := mgr.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "user_abc", claims.Subject)
	assert.Equal(t, "Ada", claims.Name)
	assert.Equal(t, "ada@example.com", claims.Email)
	assert.Equal(t, "https://img.test/ada.png", claims.AvatarURL)
}

func TestVerifyWrongSecret(t *testing.T) {
	token, err := NewManager("secret-a").Issue("user_abc", "Ada", "", "", time.Hour)
	require.NoError(t, err)

	_, err = NewManager("secret-b").Verify(token)
	assert.Error(t, err)
}

func TestVerifyExpiredToken(t *testing.T) {
	mgr := NewManager("test-secret")

	token, err := mgr.Issue("user_abc", "Ada", "", "", -time.Minute)
	require.NoError(t, err)

	_, err = mgr.Verify(token)
	assert.Error(t, err)
}

func TestVerifyRejectsMissingSubject(t *testing.T) {
	mgr := NewManager("test-secret")

	token, err := mgr.Issue("", "Ada", "", "", time.Hour)
	require.NoError(t, err)

	_, err = mgr.Verify(token)
	assert.Error(t, err)
}

func TestVerifyGarbage(t *testing.T) {
	mgr := NewManager("test-secret")

	_, err := mgr.Verify("not-a-jwt")
	assert.Error(t, err)
}
