// Package html renders wizard steps as HTML forms using pongo2 templates.
package html

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/goliatone/go-regwizard/pkg/form"
	"github.com/goliatone/go-regwizard/pkg/render"
	rendertemplate "github.com/goliatone/go-regwizard/pkg/render/template"
	"github.com/goliatone/go-regwizard/pkg/render/template/pongo"
	"github.com/goliatone/go-regwizard/pkg/submission"
)

// Name is the registry name of the renderer.
const Name = "html"

// Option configures the renderer.
type Option func(*config)

type config struct {
	templateFS       fs.FS
	templateRenderer rendertemplate.TemplateRenderer
	templateFuncs    map[string]any
	action           string
	page             bool
}

// WithTemplatesFS supplies an alternate template bundle via fs.FS. The bundle
// must provide every template under templates/.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templateFS = files
	}
}

// WithTemplatesDir loads templates from a directory on disk.
func WithTemplatesDir(path string) Option {
	return func(cfg *config) {
		if path == "" {
			return
		}
		cfg.templateFS = os.DirFS(path)
	}
}

// WithTemplateRenderer injects a custom template renderer implementation.
func WithTemplateRenderer(renderer rendertemplate.TemplateRenderer) Option {
	return func(cfg *config) {
		if renderer != nil {
			cfg.templateRenderer = renderer
		}
	}
}

// WithTemplateFuncs exposes helpers to the templates. Ignored with
// WithTemplateRenderer.
func WithTemplateFuncs(funcs map[string]any) Option {
	return func(cfg *config) {
		if len(funcs) == 0 {
			return
		}
		if cfg.templateFuncs == nil {
			cfg.templateFuncs = make(map[string]any, len(funcs))
		}
		for name, fn := range funcs {
			cfg.templateFuncs[name] = fn
		}
	}
}

// WithAction sets the default form action. It defaults to the registration
// endpoint path.
func WithAction(action string) Option {
	return func(cfg *config) {
		if trimmed := strings.TrimSpace(action); trimmed != "" {
			cfg.action = trimmed
		}
	}
}

// WithPage wraps every rendered step in a complete HTML document.
func WithPage(page bool) Option {
	return func(cfg *config) {
		cfg.page = page
	}
}

// Renderer implements render.Renderer for HTML output.
type Renderer struct {
	templates rendertemplate.TemplateRenderer
	action    string
	page      bool
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs the HTML renderer applying any provided options.
func New(options ...Option) (*Renderer, error) {
	cfg := config{
		templateFS: TemplatesFS(),
		action:     submission.DefaultPath,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	if cfg.templateFS == nil {
		cfg.templateFS = TemplatesFS()
	}

	renderer := cfg.templateRenderer
	if renderer == nil {
		engine, err := pongo.New(
			pongo.WithFS(cfg.templateFS),
			pongo.WithExtension(".tmpl"),
			pongo.WithTemplateFunc(cfg.templateFuncs),
		)
		if err != nil {
			return nil, fmt.Errorf("html renderer: configure template renderer: %w", err)
		}
		renderer = engine
	}

	return &Renderer{templates: renderer, action: cfg.action, page: cfg.page}, nil
}

// Name reports the renderer identifier.
func (r *Renderer) Name() string {
	return Name
}

// ContentType reports the media type of Render output.
func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

// Render produces the step form. opts.Errors are mapped onto the view's
// fields; messages for fields the step does not render are shown above the
// form.
func (r *Renderer) Render(ctx context.Context, view form.View, opts render.RenderOptions) ([]byte, error) {
	if r.templates == nil {
		return nil, fmt.Errorf("html renderer: template renderer is nil")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	view = applyErrors(view, opts.Errors)
	render.LocalizeView(&view, opts)

	action := opts.Action
	if action == "" {
		action = r.action
	}

	name := StepTemplate
	if r.page {
		name = PageTemplate
	}
	result, err := r.templates.RenderTemplate(name, map[string]any{
		"view":   view,
		"action": action,
		"hidden": render.SortedHiddenFields(opts.Hidden),
		"locale": opts.Locale,
	})
	if err != nil {
		return nil, fmt.Errorf("html renderer: render template: %w", err)
	}
	return []byte(result), nil
}

func applyErrors(view form.View, errs map[string][]string) form.View {
	if len(errs) == 0 {
		return view
	}
	mapped := render.MapErrorPayload(view, errs)

	fields := make([]form.FieldView, len(view.Fields))
	copy(fields, view.Fields)
	for i := range fields {
		if msgs, ok := mapped.Fields[fields[i].Name]; ok {
			fields[i].Errors = render.MergeFormErrors(fields[i].Errors, msgs...)
		}
	}
	view.Fields = fields
	view.FormErrors = render.MergeFormErrors(view.FormErrors, mapped.Form...)
	return view
}
