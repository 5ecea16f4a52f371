package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/eringen/pubtheme"
	"github.com/eringen/pubtheme/views"
)

func newServeCmd(flags *rootFlags) *cobra.Command {
	var static string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := flags.logger()
			if err != nil {
				return err
			}
			cfg, err := flags.siteConfig()
			if err != nil {
				return err
			}

			app := pubtheme.New(cfg, views.Default(),
				pubtheme.WithLogger(log),
				pubtheme.WithStaticDir(static),
			)
			defer app.Close()

			errc := make(chan error, 1)
			go func() { errc <- app.Start() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			select {
			case err := <-errc:
				return err
			case <-ctx.Done():
			}
			log.Info().Msg("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := app.Echo.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&static, "static", pubtheme.EnvOr("STATIC_DIR", "public"), "Directory served under /public")

	return cmd
}
