package auth

import (
	"testing"
	"time"

	"github.com/YouSangSon/reports-service/internal/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPassword(t *testing.T) {
	hash, err := HashPassword("correct horse")

	require.NoError(t, err)
	assert.NotEqual(t, "correct horse", hash)
	assert.True(t, CheckPassword(hash, "correct horse"))
	assert.False(t, CheckPassword(hash, "battery staple"))
}

func TestIssuer_RoundTrip(t *testing.T) {
	issuer, err := NewIssuer("secret", "reports-service", time.Hour, 24*time.Hour)
	require.NoError(t, err)

	token, err := issuer.Issue("64b7f0c2a1b2c3d4e5f60718", "alice")
	require.NoError(t, err)

	claims, err := issuer.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "64b7f0c2a1b2c3d4e5f60718", claims.Subject)
	assert.Equal(t, "alice", claims.Username)
}

func TestIssuer_Expired(t *testing.T) {
	issuer, err := NewIssuer("secret", "reports-service", time.Minute, time.Hour)
	require.NoError(t, err)
	issuer.now = func() time.Time { return time.Now().Add(-time.Hour) }
	token, err := issuer.Issue("id", "alice")
	require.NoError(t, err)
	issuer.now = time.Now

	_, err = issuer.Parse(token)

	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeUnauthorized))
}

func TestIssuer_WrongSecret(t *testing.T) {
	signer, err := NewIssuer("secret", "reports-service", time.Hour, 24*time.Hour)
	require.NoError(t, err)
	verifier, err := NewIssuer("other", "reports-service", time.Hour, 24*time.Hour)
	require.NoError(t, err)
	token, err := signer.Issue("id", "alice")
	require.NoError(t, err)

	_, err = verifier.Parse(token)

	assert.True(t, errors.Is(err, errors.ErrCodeUnauthorized))
}

func TestIssuer_RefreshToken(t *testing.T) {
	issuer, err := NewIssuer("secret", "reports-service", time.Minute, time.Hour)
	require.NoError(t, err)
	issuer.now = func() time.Time { return time.Now().Add(-10 * time.Minute) }
	access, err := issuer.Issue("id", "alice")
	require.NoError(t, err)
	refresh, err := issuer.IssueRefresh("id", "alice")
	require.NoError(t, err)
	issuer.now = time.Now

	// 액세스 토큰은 만료됐지만 리프레시 토큰은 아직 유효합니다
	_, err = issuer.Parse(access)
	assert.True(t, errors.Is(err, errors.ErrCodeUnauthorized))

	claims, err := issuer.ParseRefresh(refresh)
	require.NoError(t, err)
	assert.Equal(t, "id", claims.Subject)
	assert.Equal(t, UseRefresh, claims.Use)
}

func TestIssuer_TokenUseIsEnforced(t *testing.T) {
	issuer, err := NewIssuer("secret", "reports-service", time.Hour, 24*time.Hour)
	require.NoError(t, err)
	access, err := issuer.Issue("id", "alice")
	require.NoError(t, err)
	refresh, err := issuer.IssueRefresh("id", "alice")
	require.NoError(t, err)

	_, err = issuer.Parse(refresh)
	assert.True(t, errors.Is(err, errors.ErrCodeUnauthorized))

	_, err = issuer.ParseRefresh(access)
	assert.True(t, errors.Is(err, errors.ErrCodeUnauthorized))

	assert.NoError(t, issuer.Verify(access))
	assert.NoError(t, issuer.Verify(refresh))
	assert.Error(t, issuer.Verify(access+"x"))
}

func TestNewIssuer_Validation(t *testing.T) {
	_, err := NewIssuer("", "x", time.Hour, 24*time.Hour)
	assert.Error(t, err)

	_, err = NewIssuer("secret", "x", 0, 24*time.Hour)
	assert.Error(t, err)

	_, err = NewIssuer("secret", "x", time.Hour, time.Hour)
	assert.Error(t, err)
}
