package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"docs-portal/internal/domain"
)

// GenerateCSRF issues the CSRF token embedded in a browser's forms.
type GenerateCSRF struct {
	csrf   domain.CSRFTokenGenerator
	logger *slog.Logger
}

// NewGenerateCSRF creates a new GenerateCSRF usecase.
func NewGenerateCSRF(csrf domain.CSRFTokenGenerator, l *slog.Logger) *GenerateCSRF {
	return &GenerateCSRF{csrf: csrf, logger: l}
}

// Execute generates the CSRF token bound to browserID.
func (uc *GenerateCSRF) Execute(ctx context.Context, browserID string) (string, error) {
	if browserID == "" {
		return "", domain.ErrBrowserTokenInvalid
	}

	token, err := uc.csrf.Generate(browserID)
	if err != nil {
		uc.logger.ErrorContext(ctx, "failed to generate CSRF token", "error", err)
		return "", fmt.Errorf("%w: %w", domain.ErrCSRFSecretMissing, err)
	}
	return token, nil
}

// VerifyCSRF checks the CSRF token a form post carries.
type VerifyCSRF struct {
	csrf   domain.CSRFTokenGenerator
	logger *slog.Logger
}

// NewVerifyCSRF creates a new VerifyCSRF usecase.
func NewVerifyCSRF(csrf domain.CSRFTokenGenerator, l *slog.Logger) *VerifyCSRF {
	return &VerifyCSRF{csrf: csrf, logger: l}
}

// Execute returns domain.ErrCSRFMismatch unless token belongs to browserID.
func (uc *VerifyCSRF) Execute(ctx context.Context, browserID, token string) error {
	if browserID == "" || token == "" {
		return domain.ErrCSRFMismatch
	}
	if err := uc.csrf.Verify(browserID, token); err != nil {
		uc.logger.WarnContext(ctx, "CSRF verification failed", "browser_id", browserID, "error", err)
		return err
	}
	return nil
}
