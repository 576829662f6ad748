package wiki

import (
	"errors"
	"os"
	"time"
)

// Config holds MediaWiki connection settings
type Config struct {
	// BaseURL is the wiki API endpoint (e.g., https://wiki.example.com/api.php)
	BaseURL string

	// Username for bot password authentication
	Username string

	// Password for bot password authentication
	Password string

	// Timeout for API requests
	Timeout time.Duration

	// UserAgent identifies the client to the wiki
	UserAgent string

	// EditDelay is the courtesy pause between items of a batch mutation
	EditDelay time.Duration
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	baseURL := os.Getenv("WIKIBOT_URL")
	if baseURL == "" {
		return nil, errors.New("WIKIBOT_URL environment variable is required")
	}

	timeout := 30 * time.Second
	if t := os.Getenv("WIKIBOT_TIMEOUT"); t != "" {
		if d, err := time.ParseDuration(t); err == nil {
			timeout = d
		}
	}

	editDelay := 500 * time.Millisecond
	if t := os.Getenv("WIKIBOT_EDIT_DELAY"); t != "" {
		if d, err := time.ParseDuration(t); err == nil && d >= 0 {
			editDelay = d
		}
	}

	userAgent := os.Getenv("WIKIBOT_USER_AGENT")
	if userAgent == "" {
		userAgent = "wikibot/1.0 (https://github.com/olgasafonova/wikibot)"
	}

	return &Config{
		BaseURL:   baseURL,
		Username:  os.Getenv("WIKIBOT_USERNAME"),
		Password:  os.Getenv("WIKIBOT_PASSWORD"),
		Timeout:   timeout,
		UserAgent: userAgent,
		EditDelay: editDelay,
	}, nil
}

// HasCredentials returns true if authentication credentials are configured
func (c *Config) HasCredentials() bool {
	return c.Username != "" && c.Password != ""
}
