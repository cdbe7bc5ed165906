package token

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chote-app/chote/internal/models"
)

const testSecret = "test-signing-secret"

func newTestService(t *testing.T) *Service {
	t.Helper()

	svc, err := New([]byte(testSecret), "HS256", 10*time.Minute)
	require.NoError(t, err)

	return svc
}

func TestNewRejectsNonHMACAlgorithms(t *testing.T) {
	for _, alg := range []string{"RS256", "ES256", "none", "bogus"} {
		_, err := New([]byte(testSecret), alg, time.Minute)
		assert.Error(t, err, alg)
	}

	for _, alg := range []string{"HS256", "HS384", "HS512"} {
		_, err := New([]byte(testSecret), alg, time.Minute)
		assert.NoError(t, err, alg)
	}
}

func TestIssueAndVerify(t *testing.T) {
	svc := newTestService(t)

	tokenString, err := svc.IssueDefault("a@gmail.com")
	require.NoError(t, err)
	require.NotEmpty(t, tokenString)

	subject, err := svc.Verify(tokenString)
	require.NoError(t, err)
	assert.Equal(t, "a@gmail.com", subject)
}

func TestVerifyExpiredToken(t *testing.T) {
	svc := newTestService(t)

	tokenString, err := svc.Issue("a@gmail.com", 50*time.Millisecond)
	require.NoError(t, err)

	subject, err := svc.Verify(tokenString)
	require.NoError(t, err)
	assert.Equal(t, "a@gmail.com", subject)

	time.Sleep(100 * time.Millisecond)

	_, err = svc.Verify(tokenString)
	assert.ErrorIs(t, err, models.ErrUnauthorized)
}

func TestVerifyFailsUniformly(t *testing.T) {
	svc := newTestService(t)

	otherSvc, err := New([]byte("a different secret"), "HS256", time.Minute)
	require.NoError(t, err)
	forged, err := otherSvc.IssueDefault("a@gmail.com")
	require.NoError(t, err)

	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "a@gmail.com",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		},
	})
	noneToken, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	for name, tokenString := range map[string]string{
		"empty":            "",
		"garbage":          "not.a.jwt",
		"forged signature": forged,
		"alg none":         noneToken,
	} {
		_, err := svc.Verify(tokenString)
		assert.ErrorIs(t, err, models.ErrUnauthorized, name)
	}
}
