// Package tui drives the registration wizard in a terminal. Run walks a
// wizard.Flow through prompts; Render prints a plain-text snapshot of a step.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-regwizard/pkg/form"
	"github.com/goliatone/go-regwizard/pkg/render"
)

// Name is the registry name of the renderer.
const Name = "tui"

// Renderer implements render.Renderer for terminal output and runs
// interactive sessions over a PromptDriver.
type Renderer struct {
	driver PromptDriver
	theme  Theme
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs a TUI renderer with defaults (survey driver on stdout).
func New(options ...Option) (*Renderer, error) {
	r := &Renderer{theme: DefaultTheme}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}
	if r.driver == nil {
		r.driver = NewSurveyDriver(nil)
	}
	return r, nil
}

// Name reports the renderer identifier.
func (r *Renderer) Name() string {
	return Name
}

// ContentType reports the media type of Render output.
func (r *Renderer) ContentType() string {
	return "text/plain; charset=utf-8"
}

// Render prints view without prompting. Secret values are masked.
func (r *Renderer) Render(ctx context.Context, view form.View, opts render.RenderOptions) ([]byte, error) {
	if ctx == nil {
		return nil, errors.New("tui: context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if len(opts.Errors) > 0 {
		mapped := render.MapErrorPayload(view, opts.Errors)
		fields := make([]form.FieldView, len(view.Fields))
		copy(fields, view.Fields)
		for i := range fields {
			fields[i].Errors = render.MergeFormErrors(fields[i].Errors, mapped.Fields[fields[i].Name]...)
		}
		view.Fields = fields
		view.FormErrors = render.MergeFormErrors(view.FormErrors, mapped.Form...)
	}
	render.LocalizeView(&view, opts)

	var b strings.Builder
	b.WriteString(r.header(view))
	b.WriteByte('\n')
	for _, field := range view.Fields {
		fmt.Fprintf(&b, "  %s: %s\n", field.Label, r.displayValue(field))
		for _, msg := range field.Errors {
			fmt.Fprintf(&b, "    %s%s\n", r.theme.ErrorPrefix, msg)
		}
	}
	for _, msg := range view.FormErrors {
		fmt.Fprintf(&b, "%s%s\n", r.theme.ErrorPrefix, msg)
	}
	if view.ShowBack {
		fmt.Fprintf(&b, "[%s] ", view.BackLabel)
	}
	fmt.Fprintf(&b, "[%s]\n", view.SubmitLabel)
	if view.Status != "" {
		b.WriteString(view.Status)
		b.WriteByte('\n')
	}
	return []byte(b.String()), nil
}

func (r *Renderer) header(view form.View) string {
	return fmt.Sprintf("%s[%d/%d] %s", r.theme.InfoPrefix, view.StepNumber, view.StepCount, view.Title)
}

// displayValue renders a field value for summaries: the selected option label
// for choices, the mask for secrets.
func (r *Renderer) displayValue(field form.FieldView) string {
	switch {
	case field.Strategy == form.StrategyChoice:
		for _, opt := range field.Options {
			if opt.Selected {
				return opt.Label
			}
		}
		return ""
	case isSecret(field) && field.Value != "":
		return r.theme.SecretMask
	default:
		return field.Value
	}
}

func isSecret(field form.FieldView) bool {
	return field.InputType == "password"
}
