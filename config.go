package pubtheme

import (
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/eringen/pubtheme/theme"
)

// SiteConfig holds all configuration for a pubtheme site.
type SiteConfig struct {
	Name        string `validate:"required"`     // Site name (default "Blog")
	URL         string `validate:"required,url"` // Canonical URL (default "http://localhost:3000")
	Description string // Tagline for the header and RSS

	Addr         string `validate:"required"` // Listen address (default ":3000")
	DatabasePath string `validate:"required"` // SQLite path (default "data/site.db")
	ThemePath    string // Optional theme.yaml

	AdminPassword string `validate:"required"`        // Required: admin login password
	SessionSecret string `validate:"required,min=16"` // Required: session encryption secret
	CookieSecure  bool   // Set true for HTTPS

	CacheTTL time.Duration `validate:"gte=0"` // Content cache TTL (default 5min)

	// Login attempts allowed per client IP, refilled over LoginWindow
	// (default 5 per minute).
	LoginBurst  int           `validate:"gte=1"`
	LoginWindow time.Duration `validate:"gt=0"`
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "Blog"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.DatabasePath == "" {
		c.DatabasePath = "data/site.db"
	}
	if c.CacheTTL == 0 {
		c.CacheTTL = 5 * time.Minute
	}
	if c.LoginBurst == 0 {
		c.LoginBurst = 5
	}
	if c.LoginWindow == 0 {
		c.LoginWindow = time.Minute
	}
}

var (
	validatorOnce sync.Once
	validate      *validator.Validate
)

func validatorInstance() *validator.Validate {
	validatorOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// Validate reports the first missing or malformed setting.
func (c SiteConfig) Validate() error {
	if err := validatorInstance().Struct(c); err != nil {
		if errs, ok := err.(validator.ValidationErrors); ok && len(errs) > 0 {
			return fmt.Errorf("pubtheme: invalid config field %s (%s)", errs[0].Field(), errs[0].Tag())
		}
		return fmt.Errorf("pubtheme: %w", err)
	}
	return nil
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback receives the App before the server starts.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithStaticDir sets the directory for user-owned static assets and
// uploads (default "public").
func WithStaticDir(dir string) Option {
	return func(a *App) {
		a.staticDir = dir
	}
}

// WithLogger replaces the default logger.
func WithLogger(l zerolog.Logger) Option {
	return func(a *App) {
		a.Log = l
	}
}

// WithTheme sets the theme settings instead of loading ThemePath.
func WithTheme(t theme.Config) Option {
	return func(a *App) {
		a.Theme = t
		a.themeSet = true
	}
}

// WithHooks lets the caller adjust the registration table after the
// theme defaults are installed.
func WithHooks(fn func(*Hooks)) Option {
	return func(a *App) {
		a.hookFuncs = append(a.hookFuncs, fn)
	}
}
