package app

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	regwizard "github.com/goliatone/go-regwizard"
	"github.com/goliatone/go-regwizard/internal/logging"
	"github.com/goliatone/go-regwizard/pkg/model"
	"github.com/goliatone/go-regwizard/pkg/orchestrator"
	"github.com/goliatone/go-regwizard/pkg/render"
	"github.com/goliatone/go-regwizard/pkg/renderers/html"
	"github.com/goliatone/go-regwizard/pkg/renderers/tui"
)

type renderFlags struct {
	format   string
	step     int
	userType string
	set      []string
	validate bool
	page     bool
	output   string
}

func (c *cli) newRenderCmd() *cobra.Command {
	rf := &renderFlags{}
	renderCmd := &cobra.Command{
		Use:   "render",
		Short: "Render one wizard step",
		Long: `Render one wizard step to stdout or a file.

Steps are zero-based. The identity and review steps depend on --user-type.
Values are prefilled with --set NAME=VALUE, repeated per field.`,
		Example: `  regwizard render --step 1 --user-type CNPJ --set NAME=Ana
  regwizard render --step 3 --user-type CPF --format tui --validate`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.runRender(cmd, rf)
		},
	}

	flags := renderCmd.Flags()
	flags.StringVar(&rf.format, "format", html.Name, "Output format (html, tui)")
	flags.IntVar(&rf.step, "step", 0, "Zero-based step index")
	flags.StringVar(&rf.userType, "user-type", "", "User type branch (CPF, CNPJ)")
	flags.StringArrayVar(&rf.set, "set", nil, "Prefill a field as NAME=VALUE")
	flags.BoolVar(&rf.validate, "validate", false, "Show validation errors for the prefilled values")
	flags.BoolVar(&rf.page, "page", false, "Wrap HTML output in a full document")
	flags.StringVarP(&rf.output, "output", "o", "", "Output file (stdout if empty)")

	return renderCmd
}

func (c *cli) runRender(cmd *cobra.Command, rf *renderFlags) error {
	cfg, err := c.loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := newLogger(cmd, cfg, logging.FormatConsole)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	userType, err := parseUserType(rf.userType)
	if err != nil {
		return err
	}
	values, err := parseAssignments(rf.set)
	if err != nil {
		return err
	}
	opts, err := renderOptions(cfg)
	if err != nil {
		return err
	}
	def, err := regwizard.LoadDefinition(cfg.StepsDir)
	if err != nil {
		return err
	}

	htmlRenderer, err := html.New(html.WithPage(rf.page))
	if err != nil {
		return err
	}
	tuiRenderer, err := tui.New()
	if err != nil {
		return err
	}

	gen := regwizard.NewOrchestrator(
		orchestrator.WithDefinition(def),
		orchestrator.WithRegistry(render.NewRegistry(htmlRenderer, tuiRenderer)),
		orchestrator.WithDefaultRenderer(html.Name),
	)
	if _, err := gen.Renderer(rf.format); err != nil {
		return err
	}

	output, err := gen.Generate(cmd.Context(), regwizard.Request{
		StepIndex:     rf.step,
		UserType:      userType,
		Values:        values,
		Validate:      rf.validate,
		Renderer:      rf.format,
		RenderOptions: opts,
	})
	if err != nil {
		return err
	}

	if rf.output == "" {
		_, err = cmd.OutOrStdout().Write(output)
		return err
	}
	if err := os.WriteFile(rf.output, output, 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	logger.Info("step written", zap.String("path", rf.output), zap.Int("step", rf.step))
	return nil
}

func parseUserType(raw string) (model.UserType, error) {
	if strings.TrimSpace(raw) == "" {
		return "", nil
	}
	return model.ParseUserType(raw)
}

func parseAssignments(pairs []string) (map[string]string, error) {
	values := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid --set %q, want NAME=VALUE", pair)
		}
		values[name] = value
	}
	return values, nil
}
