package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newTestSigner(t *testing.T, ttl time.Duration) *Signer {
	t.Helper()
	signer, err := NewSigner([]byte(testSecret), "asta-test", ttl)
	require.NoError(t, err)
	return signer
}

func TestNewSigner_RejectsShortSecret(t *testing.T) {
	_, err := NewSigner([]byte("too-short"), "asta-test", time.Minute)
	assert.Error(t, err)
}

func TestSigner_GenerateAndValidate(t *testing.T) {
	signer := newTestSigner(t, 15*time.Minute)
	userID := uuid.New()

	token, expiry, err := signer.GenerateToken(userID, "mario@example.com", "Mario Rossi")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), expiry, 5*time.Second)

	claims, err := signer.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID.String(), claims.Subject)
	assert.Equal(t, "mario@example.com", claims.Email)
	assert.Equal(t, "Mario Rossi", claims.FullName)

	parsedID, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, userID, parsedID)
}

func TestSigner_RejectsExpiredToken(t *testing.T) {
	signer := newTestSigner(t, -time.Minute)

	token, _, err := signer.GenerateToken(uuid.New(), "mario@example.com", "Mario Rossi")
	require.NoError(t, err)

	_, err = signer.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestSigner_RejectsWrongSecret(t *testing.T) {
	signer := newTestSigner(t, time.Minute)

	other, err := NewSigner([]byte("ffffffffffffffffffffffffffffffff"), "asta-test", time.Minute)
	require.NoError(t, err)

	token, _, err := other.GenerateToken(uuid.New(), "mario@example.com", "Mario Rossi")
	require.NoError(t, err)

	_, err = signer.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestSigner_RejectsWrongIssuer(t *testing.T) {
	signer := newTestSigner(t, time.Minute)

	other, err := NewSigner([]byte(testSecret), "someone-else", time.Minute)
	require.NoError(t, err)

	token, _, err := other.GenerateToken(uuid.New(), "mario@example.com", "Mario Rossi")
	require.NoError(t, err)

	_, err = signer.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestSigner_RejectsGarbage(t *testing.T) {
	signer := newTestSigner(t, time.Minute)

	_, err := signer.ValidateToken("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
