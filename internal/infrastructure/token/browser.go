package token

import (
	"errors"
	"fmt"
	"time"

	"docs-portal/internal/domain"

	"github.com/golang-jwt/jwt/v5"
)

// minSecretLength is the shortest HS256 secret accepted for browser cookies.
const minSecretLength = 32

// BrowserConfig holds browser cookie signing configuration.
type BrowserConfig struct {
	Secret string
	Issuer string
	TTL    time.Duration
}

// browserClaims identify one browser. They carry no user identity; that
// lives with the identity provider.
type browserClaims struct {
	Bid string `json:"bid"`
	jwt.RegisteredClaims
}

// BrowserTokenIssuer signs and verifies the browser cookie.
// Implements domain.BrowserTokenIssuer.
type BrowserTokenIssuer struct {
	cfg BrowserConfig
}

// NewBrowserTokenIssuer creates an issuer, rejecting secrets shorter than
// 32 bytes.
func NewBrowserTokenIssuer(cfg BrowserConfig) (*BrowserTokenIssuer, error) {
	if len(cfg.Secret) < minSecretLength {
		return nil, fmt.Errorf("%w: need at least %d characters", domain.ErrBrowserSecretWeak, minSecretLength)
	}
	return &BrowserTokenIssuer{cfg: cfg}, nil
}

// Issue returns a signed token for browserID.
func (i *BrowserTokenIssuer) Issue(browserID string) (string, error) {
	now := time.Now()
	claims := browserClaims{
		Bid: browserID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    i.cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.cfg.TTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(i.cfg.Secret))
}

// Parse verifies tokenStr and returns the browser ID it carries.
func (i *BrowserTokenIssuer) Parse(tokenStr string) (string, error) {
	claims := &browserClaims{}
	parsed, err := jwt.ParseWithClaims(tokenStr, claims,
		func(token *jwt.Token) (any, error) {
			return []byte(i.cfg.Secret), nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(i.cfg.Issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", fmt.Errorf("%w: expired", domain.ErrBrowserTokenInvalid)
		}
		return "", fmt.Errorf("%w: %v", domain.ErrBrowserTokenInvalid, err)
	}
	if !parsed.Valid || claims.Bid == "" {
		return "", domain.ErrBrowserTokenInvalid
	}
	return claims.Bid, nil
}
