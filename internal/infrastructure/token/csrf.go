package token

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"

	"docs-portal/internal/domain"
)

// HMACCSRFGenerator generates CSRF tokens using HMAC-SHA256.
// Implements domain.CSRFTokenGenerator.
type HMACCSRFGenerator struct {
	secret []byte
}

// NewHMACCSRFGenerator creates a new CSRF token generator.
func NewHMACCSRFGenerator(secret string) *HMACCSRFGenerator {
	return &HMACCSRFGenerator{secret: []byte(secret)}
}

// Generate creates a deterministic CSRF token bound to a browser ID.
func (g *HMACCSRFGenerator) Generate(browserID string) (string, error) {
	if len(g.secret) == 0 {
		return "", domain.ErrCSRFSecretMissing
	}
	return base64.URLEncoding.EncodeToString(g.sum(browserID)), nil
}

// Verify checks that token was generated for browserID.
func (g *HMACCSRFGenerator) Verify(browserID, token string) error {
	if len(g.secret) == 0 {
		return domain.ErrCSRFSecretMissing
	}
	got, err := base64.URLEncoding.DecodeString(token)
	if err != nil || !hmac.Equal(got, g.sum(browserID)) {
		return domain.ErrCSRFMismatch
	}
	return nil
}

func (g *HMACCSRFGenerator) sum(browserID string) []byte {
	mac := hmac.New(sha256.New, g.secret)
	mac.Write([]byte(browserID))
	return mac.Sum(nil)
}
