// Package app provides the entry point for the regwizard command line.
package app

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/goliatone/go-regwizard/internal/config"
	"github.com/goliatone/go-regwizard/internal/logging"
	"github.com/goliatone/go-regwizard/internal/versions"
	"github.com/goliatone/go-regwizard/pkg/render"
	"github.com/goliatone/go-regwizard/pkg/renderers/tui"
)

const (
	flagConfig  = "config"
	flagEnvFile = "env-file"

	defaultEnvFile = ".env"
)

// cli holds the state shared by the subcommands of one root command.
type cli struct {
	v         *viper.Viper
	newDriver func(out io.Writer) tui.PromptDriver
	signals   []os.Signal
}

// NewRootCmd creates a new root command for regwizard.
func NewRootCmd() *cobra.Command {
	return newRootCmd(&cli{
		v:         config.NewViper(),
		newDriver: tui.NewSurveyDriver,
		signals:   []os.Signal{os.Interrupt, syscall.SIGTERM},
	})
}

func newRootCmd(c *cli) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:               "regwizard",
		DisableAutoGenTag: true,
		SilenceUsage:      true,
		Short:             "Multi-step registration wizard",
		Long: `regwizard collects a registration through a multi-step wizard.

It serves the registration backend and the HTML steps (serve), drives the
wizard interactively in the terminal (run) and renders single steps for
inspection (render).`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.String(flagConfig, "", "Path to a YAML configuration file")
	flags.String(flagEnvFile, defaultEnvFile, "Dotenv file loaded before reading the environment")
	flags.String("log-level", config.DefaultLogLevel, "Log level (debug, info, warn, error)")
	flags.String("steps-dir", "", "Directory holding a registration.yaml step definition")
	flags.String("locale", "", "Locale used to translate step text")
	flags.String("messages-file", "", "YAML catalog of translations keyed by locale")
	c.bind(rootCmd, config.KeyLogLevel, "log-level")
	c.bind(rootCmd, config.KeyStepsDir, "steps-dir")
	c.bind(rootCmd, config.KeyLocale, "locale")
	c.bind(rootCmd, config.KeyMessagesFile, "messages-file")

	rootCmd.AddCommand(c.newServeCmd())
	rootCmd.AddCommand(c.newRunCmd())
	rootCmd.AddCommand(c.newRenderCmd())
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

// bind ties a flag of cmd to a configuration key. Persistent flags are
// looked up before local ones.
func (c *cli) bind(cmd *cobra.Command, key, name string) {
	flag := cmd.PersistentFlags().Lookup(name)
	if flag == nil {
		flag = cmd.Flags().Lookup(name)
	}
	if flag == nil {
		panic(fmt.Sprintf("regwizard: flag %q not defined", name))
	}
	if err := c.v.BindPFlag(key, flag); err != nil {
		panic(fmt.Sprintf("regwizard: bind flag %q: %v", name, err))
	}
}

// loadConfig resolves the configuration of one command invocation.
func (c *cli) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	opts := []config.Option{config.WithViper(c.v)}

	envFile, err := cmd.Flags().GetString(flagEnvFile)
	if err != nil {
		return nil, err
	}
	if envFile != "" {
		opts = append(opts, config.WithDotEnv(envFile))
	}

	path, err := cmd.Flags().GetString(flagConfig)
	if err != nil {
		return nil, err
	}
	if path != "" {
		opts = append(opts, config.WithConfigPath(path))
	}

	return config.Load(opts...)
}

// newLogger writes to the command's error stream so stdout stays clean for
// rendered output.
func newLogger(cmd *cobra.Command, cfg *config.Config, format logging.Format) (*zap.Logger, error) {
	return logging.New(cfg.LogLevel,
		logging.WithOutput(cmd.ErrOrStderr()),
		logging.WithFormat(format),
	)
}

// renderOptions carries the configured locale and, when a messages file is
// set, its catalog.
func renderOptions(cfg *config.Config) (render.RenderOptions, error) {
	opts := render.RenderOptions{Locale: cfg.Locale}
	if cfg.MessagesFile == "" {
		return opts, nil
	}
	data, err := os.ReadFile(cfg.MessagesFile)
	if err != nil {
		return opts, fmt.Errorf("read messages: %w", err)
	}
	catalog, err := render.ParseCatalog(data)
	if err != nil {
		return opts, err
	}
	opts.Translator = catalog
	return opts, nil
}

func newVersionCmd() *cobra.Command {
	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, _ []string) error {
			info := versions.GetVersionInfo()
			format, err := cmd.Flags().GetString("format")
			if err != nil {
				return fmt.Errorf("retrieve format flag: %w", err)
			}

			out := cmd.OutOrStdout()
			if format == "json" {
				output, err := json.MarshalIndent(info, "", "  ")
				if err != nil {
					return fmt.Errorf("format version info as JSON: %w", err)
				}
				_, err = fmt.Fprintln(out, string(output))
				return err
			}
			_, err = fmt.Fprintf(out, "regwizard %s (commit %s, built %s, %s, %s)\n",
				info.Version, info.Commit, info.BuildDate, info.GoVersion, info.Platform)
			return err
		},
	}
	versionCmd.Flags().String("format", "", "Output format (json)")
	return versionCmd
}
