package token

import (
	"errors"
	"testing"
	"time"

	"docs-portal/internal/domain"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testBrowserSecret = "this-is-a-valid-browser-token-secret-32-chars-long"

func newTestIssuer(t *testing.T, ttl time.Duration) *BrowserTokenIssuer {
	t.Helper()
	issuer, err := NewBrowserTokenIssuer(BrowserConfig{
		Secret: testBrowserSecret,
		Issuer: "docs-portal",
		TTL:    ttl,
	})
	require.NoError(t, err)
	return issuer
}

func TestBrowserTokenIssuer_IssueAndParse(t *testing.T) {
	issuer := newTestIssuer(t, time.Hour)

	tokenStr, err := issuer.Issue("browser-123")
	require.NoError(t, err)
	assert.NotEmpty(t, tokenStr)

	// Parse and validate
	parsed, err := jwt.ParseWithClaims(tokenStr, &browserClaims{}, func(token *jwt.Token) (any, error) {
		return []byte(testBrowserSecret), nil
	})
	require.NoError(t, err)
	claims := parsed.Claims.(*browserClaims)
	assert.Equal(t, "browser-123", claims.Bid)
	assert.Equal(t, "docs-portal", claims.Issuer)

	browserID, err := issuer.Parse(tokenStr)
	require.NoError(t, err)
	assert.Equal(t, "browser-123", browserID)
}

func TestBrowserTokenIssuer_ExpiredToken(t *testing.T) {
	issuer := newTestIssuer(t, -1*time.Minute)

	tokenStr, err := issuer.Issue("browser-123")
	require.NoError(t, err)

	_, err = issuer.Parse(tokenStr)
	assert.True(t, errors.Is(err, domain.ErrBrowserTokenInvalid))
}

func TestBrowserTokenIssuer_RejectsForeignSignature(t *testing.T) {
	issuer := newTestIssuer(t, time.Hour)
	other, err := NewBrowserTokenIssuer(BrowserConfig{
		Secret: "another-secret-that-is-also-at-least-32-chars",
		Issuer: "docs-portal",
		TTL:    time.Hour,
	})
	require.NoError(t, err)

	tokenStr, err := other.Issue("browser-123")
	require.NoError(t, err)

	_, err = issuer.Parse(tokenStr)
	assert.True(t, errors.Is(err, domain.ErrBrowserTokenInvalid))
}

func TestBrowserTokenIssuer_RejectsGarbage(t *testing.T) {
	issuer := newTestIssuer(t, time.Hour)

	_, err := issuer.Parse("not-a-jwt")
	assert.True(t, errors.Is(err, domain.ErrBrowserTokenInvalid))
}

func TestBrowserTokenIssuer_RejectsNoneAlgorithm(t *testing.T) {
	issuer := newTestIssuer(t, time.Hour)

	claims := browserClaims{
		Bid: "browser-123",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "docs-portal",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	tokenStr, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = issuer.Parse(tokenStr)
	assert.True(t, errors.Is(err, domain.ErrBrowserTokenInvalid))
}

func TestNewBrowserTokenIssuer_WeakSecret(t *testing.T) {
	_, err := NewBrowserTokenIssuer(BrowserConfig{Secret: "short", TTL: time.Hour})
	assert.True(t, errors.Is(err, domain.ErrBrowserSecretWeak))
}
