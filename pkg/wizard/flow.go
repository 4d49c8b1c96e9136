package wizard

import (
	"context"
	"errors"

	"github.com/goliatone/go-regwizard/pkg/form"
	"github.com/goliatone/go-regwizard/pkg/model"
	"github.com/goliatone/go-regwizard/pkg/validation"
)

// SubmitFunc delivers the complete accumulated answers at the end of the
// flow.
type SubmitFunc func(ctx context.Context, data model.FormData) error

// FlowOption configures a Flow.
type FlowOption func(*Flow)

// WithFlowValidator shares a validator between every step form.
func WithFlowValidator(v *validation.Validator) FlowOption {
	return func(fl *Flow) {
		if v != nil {
			fl.validator = v
		}
	}
}

// WithStepListener observes every form the flow builds, after it is built.
func WithStepListener(fn func(*form.Form)) FlowOption {
	return func(fl *Flow) {
		fl.onStep = fn
	}
}

// Flow binds a Navigator to the form controller of its current step.
type Flow struct {
	nav         *Navigator
	validator   *validation.Validator
	submit      SubmitFunc
	current     *form.Form
	onStep      func(*form.Form)
	unsubscribe func()
}

// NewFlow builds the form for the navigator's current step and keeps it in
// sync with navigation.
func NewFlow(nav *Navigator, submit SubmitFunc, options ...FlowOption) (*Flow, error) {
	if nav == nil {
		return nil, errors.New("wizard: navigator is nil")
	}
	if submit == nil {
		return nil, errors.New("wizard: submit func is nil")
	}
	fl := &Flow{nav: nav, submit: submit}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(fl)
	}
	if fl.validator == nil {
		fl.validator = validation.New()
	}
	if err := fl.rebuild(); err != nil {
		return nil, err
	}
	fl.unsubscribe = nav.Subscribe(func(evt Event) {
		if evt.Kind == EventStepChanged {
			// The index invariant holds, so rebuild cannot fail here.
			_ = fl.rebuild()
		}
	})
	return fl, nil
}

// Navigator returns the underlying navigator.
func (fl *Flow) Navigator() *Navigator {
	return fl.nav
}

// Form returns the controller of the current step. The value changes after
// every step transition.
func (fl *Flow) Form() *form.Form {
	return fl.current
}

// View returns the current form view.
func (fl *Flow) View() form.View {
	return fl.current.View()
}

// Submit submits the current step.
func (fl *Flow) Submit(ctx context.Context) (form.Outcome, error) {
	return fl.current.Submit(ctx)
}

// Back navigates to the previous step if the current one allows it.
func (fl *Flow) Back() bool {
	return fl.current.Back()
}

// Close detaches the flow from its navigator.
func (fl *Flow) Close() {
	if fl.unsubscribe != nil {
		fl.unsubscribe()
		fl.unsubscribe = nil
	}
}

func (fl *Flow) rebuild() error {
	step, err := fl.nav.CurrentStep()
	if err != nil {
		return err
	}
	options := []form.Option{
		form.WithValidator(fl.validator),
		form.WithTerminal(fl.nav.IsLastStep()),
		form.WithPosition(fl.nav.CurrentIndex(), fl.nav.StepCount()),
		form.WithAdvanceHandler(fl.advance),
		form.WithSubmitHandler(fl.finish),
		form.WithUserTypeHandler(fl.userTypeChanged),
	}
	if !fl.nav.IsFirstStep() {
		options = append(options, form.WithBackHandler(fl.nav.Previous))
	}
	fl.current = form.New(step, fl.nav.FormData(), options...)
	if fl.onStep != nil {
		fl.onStep(fl.current)
	}
	return nil
}

func (fl *Flow) advance(values model.FormData) {
	if raw, ok := values[model.FieldUserType]; ok && model.UserType(raw) != fl.nav.UserType() {
		// Values prefilled without a change event still select the branch.
		_ = fl.nav.SetUserType(model.UserType(raw))
	}
	fl.nav.UpdateFormData(values)
	fl.nav.Next()
}

func (fl *Flow) finish(ctx context.Context, values model.FormData) error {
	fl.nav.UpdateFormData(values)
	return fl.submit(ctx, fl.nav.FormData())
}

func (fl *Flow) userTypeChanged(userType model.UserType) {
	_ = fl.nav.SetUserType(userType)
}
