package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"docs-portal/internal/domain"
)

const minSecretLength = 32

// Content locates the site config and docs. Both fall back to the built-in
// copies when empty.
type Content struct {
	SiteConfig string // Path to the site YAML
	DocsDir    string // Directory of <doc-id>.md files
}

// Config holds the application configuration
type Config struct {
	Port                string                // Service port
	Identity            domain.IdentityConfig // Identity provider record
	IdentityCallTimeout time.Duration         // Bound on every identity call
	BrowserSessionTTL   time.Duration         // Browser cookie lifetime and binding idle TTL
	BrowserSessionMax   int                   // Live bindings kept in memory
	BrowserTokenSecret  string                // HS256 secret for the browser cookie
	CSRFSecret          string                // HMAC secret for form CSRF tokens
	MetricsSharedSecret string                // Protects /internal when set
	CookieSecure        bool                  // Secure flag on cookies
	Content
}

// LoadContent reads only the content locations. The prerender command
// needs nothing else.
func LoadContent() Content {
	return Content{
		SiteConfig: getEnv("SITE_CONFIG", ""),
		DocsDir:    getEnv("DOCS_DIR", ""),
	}
}

// Load reads configuration from environment variables with sensible defaults
func Load() (*Config, error) {
	config := &Config{
		Port: getEnv("PORT", "8080"),
		Identity: domain.IdentityConfig{
			APIKey:            getEnv("IDENTITY_API_KEY", ""),
			AuthDomain:        getEnv("IDENTITY_AUTH_DOMAIN", ""),
			ProjectID:         getEnv("IDENTITY_PROJECT_ID", ""),
			StorageBucket:     getEnv("IDENTITY_STORAGE_BUCKET", ""),
			MessagingSenderID: getEnv("IDENTITY_MESSAGING_SENDER_ID", ""),
			AppID:             getEnv("IDENTITY_APP_ID", ""),
		},
		IdentityCallTimeout: 10 * time.Second,
		BrowserSessionTTL:   24 * time.Hour,
		BrowserSessionMax:   10000,
		BrowserTokenSecret:  getEnv("BROWSER_TOKEN_SECRET", ""),
		CSRFSecret:          getEnv("CSRF_SECRET", ""),
		MetricsSharedSecret: getEnv("METRICS_SHARED_SECRET", ""),
		CookieSecure:        true,
		Content:             LoadContent(),
	}

	var errs []error
	parseDuration("IDENTITY_CALL_TIMEOUT", &config.IdentityCallTimeout, &errs)
	parseDuration("BROWSER_SESSION_TTL", &config.BrowserSessionTTL, &errs)

	if v := os.Getenv("BROWSER_SESSION_MAX"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("invalid BROWSER_SESSION_MAX: %w", err))
		} else {
			config.BrowserSessionMax = n
		}
	}

	if v := os.Getenv("COOKIE_SECURE"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("invalid COOKIE_SECURE: %w", err))
		} else {
			config.CookieSecure = b
		}
	}

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	// Validate configuration
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}

	if c.Identity.AuthDomain == "" && c.Identity.ProjectID == "" {
		return fmt.Errorf("IDENTITY_AUTH_DOMAIN or IDENTITY_PROJECT_ID must be set")
	}

	if c.IdentityCallTimeout <= 0 {
		return fmt.Errorf("IDENTITY_CALL_TIMEOUT must be positive")
	}

	if c.BrowserSessionTTL <= 0 {
		return fmt.Errorf("BROWSER_SESSION_TTL must be positive")
	}

	if c.BrowserSessionMax <= 0 {
		return fmt.Errorf("BROWSER_SESSION_MAX must be positive")
	}

	if len(c.BrowserTokenSecret) < minSecretLength {
		return fmt.Errorf("BROWSER_TOKEN_SECRET: %w: need at least %d characters", domain.ErrBrowserSecretWeak, minSecretLength)
	}

	if c.CSRFSecret == "" {
		return fmt.Errorf("CSRF_SECRET: %w", domain.ErrCSRFSecretMissing)
	}

	return nil
}

func parseDuration(key string, dst *time.Duration, errs *[]error) {
	v := os.Getenv(key)
	if v == "" {
		return
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("invalid %s format: %w", key, err))
		return
	}
	*dst = d
}

// getEnv retrieves an environment variable or returns a fallback value
func getEnv(key, fallback string) string {
	// Check for _FILE suffix
	if fileValue := os.Getenv(key + "_FILE"); fileValue != "" {
		content, err := os.ReadFile(fileValue)
		if err == nil {
			return strings.TrimSpace(string(content))
		}
	}

	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
