package main

import (
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/eringen/pubtheme"
	"github.com/eringen/pubtheme/logging"
)

type rootFlags struct {
	logLevel string
	human    bool
	database string
	theme    string
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:           "pubtheme",
		Short:         "pubtheme serves a themed site with galleries, breadcrumbs and widget areas",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", pubtheme.EnvOr("LOG_LEVEL", "info"), "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().BoolVar(&flags.human, "pretty", false, "Human-readable console logs")
	cmd.PersistentFlags().StringVar(&flags.database, "db", pubtheme.EnvOr("DATABASE_PATH", "data/site.db"), "SQLite database path")
	cmd.PersistentFlags().StringVar(&flags.theme, "theme", pubtheme.EnvOr("THEME_PATH", "theme.yaml"), "Theme settings file")

	cmd.AddCommand(newServeCmd(flags))
	cmd.AddCommand(newImportCmd(flags))
	cmd.AddCommand(newVersionCmd())

	return cmd
}

func (f *rootFlags) logger() (zerolog.Logger, error) {
	return logging.New(logging.Options{Level: f.logLevel, HumanReadable: f.human, Writer: os.Stderr})
}

// siteConfig reads the site settings from the environment. Secrets have
// no default.
func (f *rootFlags) siteConfig() (pubtheme.SiteConfig, error) {
	password, err := pubtheme.MustEnv("ADMIN_PASSWORD")
	if err != nil {
		return pubtheme.SiteConfig{}, err
	}
	secret, err := pubtheme.MustEnv("ADMIN_SESSION_SECRET")
	if err != nil {
		return pubtheme.SiteConfig{}, err
	}
	return pubtheme.SiteConfig{
		Name:          pubtheme.EnvOr("SITE_NAME", "Blog"),
		URL:           pubtheme.EnvOr("SITE_URL", "http://localhost:3000"),
		Description:   os.Getenv("SITE_DESCRIPTION"),
		Addr:          pubtheme.EnvOr("ADDR", ":3000"),
		DatabasePath:  f.database,
		ThemePath:     f.theme,
		AdminPassword: password,
		SessionSecret: secret,
		CookieSecure:  strings.EqualFold(os.Getenv("COOKIE_SECURE"), "true"),
	}, nil
}
