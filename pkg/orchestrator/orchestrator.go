package orchestrator

import (
	"context"
	"errors"
	"fmt"

	"github.com/goliatone/go-regwizard/pkg/form"
	"github.com/goliatone/go-regwizard/pkg/mask"
	"github.com/goliatone/go-regwizard/pkg/model"
	"github.com/goliatone/go-regwizard/pkg/render"
	"github.com/goliatone/go-regwizard/pkg/renderers/html"
	"github.com/goliatone/go-regwizard/pkg/stepdef"
	"github.com/goliatone/go-regwizard/pkg/validation"
	"github.com/goliatone/go-regwizard/pkg/wizard"
)

const defaultRendererName = html.Name

var (
	// ErrStepNotFound is returned when the index is outside the step list of
	// the requested user type.
	ErrStepNotFound = errors.New("orchestrator: step not found")
	// ErrInvalidStepIndex is returned for negative indices.
	ErrInvalidStepIndex = errors.New("orchestrator: invalid step index")
)

// Option customises the orchestrator configuration.
type Option func(*Orchestrator)

// WithDefinition replaces the embedded step definitions.
func WithDefinition(def stepdef.Definition) Option {
	return func(o *Orchestrator) {
		clone := def.Clone()
		o.definition = &clone
	}
}

// WithRegistry injects a renderer registry.
func WithRegistry(registry *render.Registry) Option {
	return func(o *Orchestrator) {
		o.registry = registry
	}
}

// WithDefaultRenderer overrides the renderer used when a request omits an
// explicit Renderer field.
func WithDefaultRenderer(name string) Option {
	return func(o *Orchestrator) {
		o.defaultRenderer = name
	}
}

// WithValidator sets the validator used by Request.Validate.
func WithValidator(v *validation.Validator) Option {
	return func(o *Orchestrator) {
		o.validator = v
	}
}

// Orchestrator builds and renders step views. Missing dependencies are
// initialised with the built-in implementations (embedded definitions, the
// HTML renderer) so callers can start with a single constructor call.
type Orchestrator struct {
	definition      *stepdef.Definition
	registry        *render.Registry
	validator       *validation.Validator
	defaultRenderer string
	initialiseErr   error
}

// New constructs an Orchestrator applying any provided options.
func New(options ...Option) *Orchestrator {
	o := &Orchestrator{
		defaultRenderer: defaultRendererName,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(o)
	}
	o.applyDefaults()
	return o
}

// Request describes the step to render.
type Request struct {
	// StepIndex is zero-based.
	StepIndex int

	// UserType selects the branch. Empty renders the undivided flow.
	UserType model.UserType

	// Values prefill the step. Keys outside the step are used only for
	// validation of the terminal step.
	Values map[string]string

	// Validate runs the step rules against Values and shows their errors
	// inline.
	Validate bool

	// Renderer names the renderer to use. If empty, the orchestrator falls back
	// to the configured default renderer.
	Renderer string

	// Carry emits the Values the step does not render as hidden inputs, so a
	// stateless server receives every answer again with the next post. The
	// password is never carried.
	Carry bool

	// RenderOptions carries locale, translator and server-side errors. The
	// step hidden inputs are merged into RenderOptions.Hidden.
	RenderOptions render.RenderOptions
}

// Definition returns a copy of the step definitions in use.
func (o *Orchestrator) Definition() stepdef.Definition {
	return o.definition.Clone()
}

// Steps returns the derived step list for userType.
func (o *Orchestrator) Steps(userType model.UserType) ([]model.Step, error) {
	nav, err := o.navigator(userType)
	if err != nil {
		return nil, err
	}
	return nav.Steps(), nil
}

// View builds the render-ready view of the requested step.
func (o *Orchestrator) View(ctx context.Context, req Request) (form.View, error) {
	view, _, err := o.build(ctx, req)
	return view, err
}

// StepErrors runs the rules of the requested step against req.Values, all
// rules on the terminal step, without rendering anything.
func (o *Orchestrator) StepErrors(ctx context.Context, req Request) (validation.Errors, error) {
	p, err := o.prepare(ctx, req)
	if err != nil {
		return nil, err
	}
	return p.validate(o.validator), nil
}

// Generate builds the step view and renders it.
func (o *Orchestrator) Generate(ctx context.Context, req Request) ([]byte, error) {
	view, values, err := o.build(ctx, req)
	if err != nil {
		return nil, err
	}

	renderer, err := o.Renderer(req.Renderer)
	if err != nil {
		return nil, err
	}

	opts := req.RenderOptions
	hidden := render.StepFields(view, req.UserType)
	if req.Carry {
		hidden = append(render.CarriedFields(view, values, model.FieldPassword, model.FieldUserType), hidden...)
	}
	opts.Hidden = render.MergeHiddenFields(opts.Hidden, hidden...)

	output, err := renderer.Render(ctx, view, opts)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: render output: %w", err)
	}
	return output, nil
}

// prepared is a resolved request: the step, its position and the normalised
// values.
type prepared struct {
	step     model.Step
	index    int
	count    int
	terminal bool
	values   map[string]string
}

func (p prepared) validate(v *validation.Validator) validation.Errors {
	if p.terminal {
		return v.All(p.values)
	}
	return v.Step(p.step.ID, p.values)
}

func (o *Orchestrator) prepare(ctx context.Context, req Request) (prepared, error) {
	if ctx == nil {
		return prepared{}, errors.New("orchestrator: context is required")
	}
	if err := ctx.Err(); err != nil {
		return prepared{}, err
	}
	if err := o.initialiseErr; err != nil {
		return prepared{}, err
	}
	if req.StepIndex < 0 {
		return prepared{}, fmt.Errorf("%w: %d", ErrInvalidStepIndex, req.StepIndex)
	}

	nav, err := o.navigator(req.UserType)
	if err != nil {
		return prepared{}, err
	}
	steps := nav.Steps()
	if req.StepIndex >= len(steps) {
		return prepared{}, fmt.Errorf("%w: %d of %d", ErrStepNotFound, req.StepIndex, len(steps))
	}

	values := make(map[string]string, len(req.Values)+1)
	for key, value := range req.Values {
		values[key] = value
	}
	if req.UserType != "" {
		values[model.FieldUserType] = string(req.UserType)
	}
	maskDates(steps, values)

	return prepared{
		step:     steps[req.StepIndex],
		index:    req.StepIndex,
		count:    len(steps),
		terminal: req.StepIndex == len(steps)-1,
		values:   values,
	}, nil
}

func (o *Orchestrator) build(ctx context.Context, req Request) (form.View, map[string]string, error) {
	p, err := o.prepare(ctx, req)
	if err != nil {
		return form.View{}, nil, err
	}

	options := []form.Option{
		form.WithValidator(o.validator),
		form.WithPosition(p.index, p.count),
		form.WithTerminal(p.terminal),
	}
	if p.index > 0 {
		// Rendering only; the click is handled by whoever receives the post.
		options = append(options, form.WithBackHandler(func() {}))
	}
	f := form.New(p.step, p.values, options...)

	if req.Validate {
		f.SetFieldErrors(p.validate(o.validator))
	}
	return f.View(), p.values, nil
}

// maskDates formats the date fields of steps the way the interactive form
// does on change, so raw digits posted by a plain HTML form validate.
func maskDates(steps []model.Step, values map[string]string) {
	for _, step := range steps {
		for _, field := range step.Fields {
			if field.EffectiveKind() != model.FieldKindDate {
				continue
			}
			if raw, ok := values[field.Name]; ok && raw != "" {
				values[field.Name] = mask.Date(raw)
			}
		}
	}
}

// Renderer resolves name, falling back to the default renderer and then to
// the first registered one when name is empty.
func (o *Orchestrator) Renderer(name string) (render.Renderer, error) {
	if o.registry == nil {
		return nil, errors.New("orchestrator: renderer registry is nil")
	}

	target := name
	if target == "" {
		target = o.defaultRenderer
	}

	if target != "" {
		renderer, err := o.registry.Get(target)
		if err == nil {
			return renderer, nil
		}
		if name != "" {
			return nil, fmt.Errorf("orchestrator: renderer %q: %w", name, err)
		}
	}

	names := o.registry.List()
	if len(names) == 0 {
		return nil, errors.New("orchestrator: no renderers registered")
	}

	renderer, err := o.registry.Get(names[0])
	if err != nil {
		return nil, fmt.Errorf("orchestrator: renderer %q: %w", names[0], err)
	}
	return renderer, nil
}

// RendererFor returns the registered renderer producing contentType.
func (o *Orchestrator) RendererFor(contentType string) (render.Renderer, bool) {
	if o.registry == nil {
		return nil, false
	}
	return o.registry.ByContentType(contentType)
}

func (o *Orchestrator) navigator(userType model.UserType) (*wizard.Navigator, error) {
	if o.definition == nil {
		return nil, errors.New("orchestrator: step definition is nil")
	}
	nav, err := wizard.New(*o.definition)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: %w", err)
	}
	if userType != "" {
		if err := nav.SetUserType(userType); err != nil {
			return nil, fmt.Errorf("orchestrator: %w", err)
		}
	}
	return nav, nil
}

func (o *Orchestrator) applyDefaults() {
	if o.definition == nil {
		def := stepdef.Default()
		o.definition = &def
	}
	if o.validator == nil {
		o.validator = validation.New()
	}
	if o.registry == nil {
		o.registry = render.NewRegistry()
		renderer, err := html.New()
		if err != nil {
			o.initialiseErr = fmt.Errorf("orchestrator: default renderer: %w", err)
		} else {
			o.registry.MustRegister(renderer)
		}
	}
	if o.defaultRenderer == "" {
		o.defaultRenderer = defaultRendererName
	}
}
