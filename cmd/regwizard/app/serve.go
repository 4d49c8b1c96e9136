package app

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	regwizard "github.com/goliatone/go-regwizard"
	"github.com/goliatone/go-regwizard/internal/config"
	"github.com/goliatone/go-regwizard/internal/logging"
	"github.com/goliatone/go-regwizard/internal/server"
	"github.com/goliatone/go-regwizard/pkg/openapi"
)

const compressLevel = 5

func (c *cli) newServeCmd() *cobra.Command {
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the registration server",
		Long: `Start the registration server.

The server accepts completed registrations on POST /registration, serves the
wizard steps as HTML under /registration and publishes its OpenAPI contract
on /openapi.json. Accepted registrations are answered after --submit-delay.`,
		Args: cobra.NoArgs,
		RunE: c.runServe,
	}

	flags := serveCmd.Flags()
	flags.String("addr", config.DefaultAddr, "Address to listen on")
	flags.Duration("submit-delay", config.DefaultSubmitDelay, "Delay before an accepted registration is answered")
	flags.Duration("shutdown-grace", config.DefaultShutdownGrace, "Time allowed for in-flight requests on shutdown")
	c.bind(serveCmd, config.KeyAddr, "addr")
	c.bind(serveCmd, config.KeySubmitDelay, "submit-delay")
	c.bind(serveCmd, config.KeyShutdownGrace, "shutdown-grace")

	return serveCmd
}

func (c *cli) runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := c.loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := newLogger(cmd, cfg, logging.FormatJSON)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), c.signals...)
	defer stop()

	handler, err := buildHandler(ctx, cfg, logger)
	if err != nil {
		return err
	}

	srv := server.NewHTTPServer(cfg.Addr, handler, cfg.SubmitDelay)
	logger.Info("starting registration server",
		zap.String("addr", cfg.Addr),
		zap.Duration("submit_delay", cfg.SubmitDelay),
		zap.String("steps_dir", cfg.StepsDir))
	return server.ListenAndServe(ctx, srv, cfg.ShutdownGrace, logger)
}

// buildHandler wires the router with the middleware stack used in
// production.
func buildHandler(ctx context.Context, cfg *config.Config, logger *zap.Logger) (http.Handler, error) {
	def, err := regwizard.LoadDefinition(cfg.StepsDir)
	if err != nil {
		return nil, err
	}
	opts, err := renderOptions(cfg)
	if err != nil {
		return nil, err
	}
	contract, err := openapi.Default(ctx)
	if err != nil {
		return nil, fmt.Errorf("load contract: %w", err)
	}

	router, err := server.New(
		server.WithLogger(logger),
		server.WithSubmitDelay(cfg.SubmitDelay),
		server.WithContract(contract),
		server.WithDefinition(def),
		server.WithRenderOptions(opts),
		server.WithMetrics(server.NewMetrics()),
		server.WithMiddlewares(
			middleware.RequestID,
			middleware.RealIP,
			middleware.Recoverer,
			middleware.Compress(compressLevel),
			server.CORSMiddleware(),
			server.LoggingMiddleware(logger),
		),
	)
	if err != nil {
		return nil, err
	}
	return router, nil
}
