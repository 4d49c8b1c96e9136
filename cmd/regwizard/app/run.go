package app

import (
	"errors"
	"fmt"
	"os/signal"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	regwizard "github.com/goliatone/go-regwizard"
	"github.com/goliatone/go-regwizard/internal/config"
	"github.com/goliatone/go-regwizard/internal/logging"
	"github.com/goliatone/go-regwizard/pkg/renderers/tui"
	"github.com/goliatone/go-regwizard/pkg/submission"
)

// MessageCancelled is printed when the user leaves the wizard early.
const MessageCancelled = "Cadastro cancelado."

func (c *cli) newRunCmd() *cobra.Command {
	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Fill in the registration wizard in the terminal",
		Long: `Run the registration wizard interactively.

Each step is prompted field by field. The review step submits the
registration to the backend at --endpoint.`,
		Args: cobra.NoArgs,
		RunE: c.runWizard,
	}

	runCmd.Flags().String("endpoint", config.DefaultEndpoint, "Base URL of the registration backend")
	c.bind(runCmd, config.KeyEndpoint, "endpoint")

	return runCmd
}

func (c *cli) runWizard(cmd *cobra.Command, _ []string) error {
	cfg, err := c.loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := newLogger(cmd, cfg, logging.FormatConsole)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	def, err := regwizard.LoadDefinition(cfg.StepsDir)
	if err != nil {
		return err
	}
	client, err := submission.NewHTTPClient(cfg.Endpoint)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	accepted := func(resp submission.Response) {
		logger.Info("registration accepted",
			zap.String("endpoint", client.Endpoint()),
			zap.String("registration_id", resp.RegistrationID))
		_, _ = fmt.Fprintln(out, resp.Message)
	}

	fl, err := regwizard.NewFlow(def, submission.Func(client, accepted))
	if err != nil {
		return err
	}
	defer fl.Close()

	renderer, err := tui.New(tui.WithPromptDriver(c.newDriver(out)))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), c.signals...)
	defer stop()

	logger.Debug("starting wizard", zap.String("endpoint", client.Endpoint()))
	err = renderer.Run(ctx, fl)
	if errors.Is(err, tui.ErrAborted) {
		_, _ = fmt.Fprintln(cmd.ErrOrStderr(), MessageCancelled)
		return nil
	}
	return err
}
