package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/guregu/null.v3"

	"github.com/retracehq/retrace/api"
	v1 "github.com/retracehq/retrace/api/v1"
	"github.com/retracehq/retrace/errext"
	"github.com/retracehq/retrace/errext/exitcodes"
	"github.com/retracehq/retrace/lib/fsext"
	"github.com/retracehq/retrace/sourcemaps"
)

const serverShutdownTimeout = 5 * time.Second

func getCmdServe(c *rootCommand) *cobra.Command {
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the client error report endpoint",
		Long: `Start the client error report endpoint.

The source map matching main.<hash>.js.map is loaded from the maps directory
once, before the first request is served; failing to load it aborts startup.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.serve(cmd)
		},
	}
	serveCmd.Flags().String("maps-dir", "", "directory holding the built frontend bundle and its source map")
	return serveCmd
}

func (c *rootCommand) serve(cmd *cobra.Command) error {
	cfg, err := c.getServeConfig(cmd)
	if err != nil {
		return errext.WithExitCodeIfNone(err, exitcodes.InvalidConfig)
	}

	store, err := sourcemaps.Load(fsext.NewOsFs(), c.logger, cfg.MapsDir.String)
	if err != nil {
		return errext.WithExitCodeIfNone(err, exitcodes.SourceMapsUnavailable)
	}

	cs, err := v1.NewControlSurface(c.logger, store)
	if err != nil {
		return errext.WithExitCodeIfNone(err, exitcodes.InvalidConfig)
	}

	server := api.GetServer(cfg.Address.String, c.logger, cs)
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()
	c.logger.WithField("addr", cfg.Address.String).Info("Serving client error reports")

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errext.WithExitCodeIfNone(err, exitcodes.CannotStartRESTAPI)
		}
		return nil
	case <-ctx.Done():
		c.logger.Debug("Shutting down the REST API server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), serverShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return errext.WithExitCodeIfNone(err, exitcodes.ExternalAbort)
		}
		return nil
	}
}

// getServeConfig consolidates the service config from defaults, the
// environment and the CLI flags, in that order of precedence.
func (c *rootCommand) getServeConfig(cmd *cobra.Command) (Config, error) {
	cfg, err := readEnvConfig(os.Environ())
	if err != nil {
		return Config{}, err
	}

	if cmd.Flags().Changed("address") {
		cfg.Address = null.StringFrom(c.flags.Address)
	}
	if cmd.Flags().Changed("maps-dir") {
		dir, err := cmd.Flags().GetString("maps-dir")
		if err != nil {
			return Config{}, err
		}
		cfg.MapsDir = null.StringFrom(dir)
	}

	if !cfg.MapsDir.Valid || cfg.MapsDir.String == "" {
		return Config{}, errext.WithHint(
			errors.New("no source map directory configured"),
			"set --maps-dir or the RETRACE_MAPS_DIR environment variable",
		)
	}
	return cfg, nil
}
