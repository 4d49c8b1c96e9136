// Package form implements the per-step form controller of the wizard. A Form
// is built from a step's fields and the answers collected so far, reacts to
// change, blur and submit events, and reports a render-ready View. It never
// moves between steps itself: successful submissions are handed to the
// advance or submit callbacks supplied by the caller.
package form

import (
	"context"
	"errors"
	"fmt"

	"github.com/goliatone/go-regwizard/pkg/model"
	"github.com/goliatone/go-regwizard/pkg/validation"
)

var (
	// ErrUnknownField is returned when an event names a field the step does
	// not define.
	ErrUnknownField = errors.New("form: unknown field")
	// ErrSubmitInFlight is returned when Submit is called while a previous
	// submission has not settled.
	ErrSubmitInFlight = errors.New("form: submission in flight")
	// ErrNoSubmitHandler is returned when a terminal step is submitted
	// without a submit handler.
	ErrNoSubmitHandler = errors.New("form: no submit handler configured")
)

// Outcome describes what a Submit call did.
type Outcome int

const (
	// OutcomeInvalid means validation failed; nothing was emitted.
	OutcomeInvalid Outcome = iota
	// OutcomeAdvanced means values were handed to the advance handler.
	OutcomeAdvanced
	// OutcomeSubmitted means the submit handler accepted the values.
	OutcomeSubmitted
	// OutcomeFailed means the submit handler returned an error.
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeInvalid:
		return "invalid"
	case OutcomeAdvanced:
		return "advanced"
	case OutcomeSubmitted:
		return "submitted"
	case OutcomeFailed:
		return "failed"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// SubmitFunc receives the values of a terminal step.
type SubmitFunc func(ctx context.Context, values model.FormData) error

// AdvanceFunc receives the values of a non-terminal step.
type AdvanceFunc func(values model.FormData)

// UserTypeFunc is notified whenever the choice group changes selection.
type UserTypeFunc func(model.UserType)

// Form is the controller for a single step. It is not safe for concurrent
// use.
type Form struct {
	step      model.Step
	terminal  bool
	index     int
	count     int
	validator *validation.Validator

	values  model.FormData
	touched map[string]bool
	errors  validation.Errors

	submitting bool
	submitted  bool
	hasError   bool

	onSubmit   SubmitFunc
	onAdvance  AdvanceFunc
	onBack     func()
	onUserType UserTypeFunc
}

// New builds a Form for step, seeding values from defaults.
func New(step model.Step, defaults map[string]string, options ...Option) *Form {
	f := &Form{
		step:    step.Clone(),
		count:   1,
		values:  model.FormData(defaults).Clone(),
		touched: make(map[string]bool),
		errors:  make(validation.Errors),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(f)
	}
	if f.validator == nil {
		f.validator = validation.New()
	}
	return f
}

// Step returns the step the form was built for.
func (f *Form) Step() model.Step {
	return f.step.Clone()
}

// Terminal reports whether Submit hands values to the submit handler.
func (f *Form) Terminal() bool {
	return f.terminal
}

// Value returns the current value of name.
func (f *Form) Value(name string) string {
	return f.values[name]
}

// Values returns a copy of every value known to the form, defaults included.
func (f *Form) Values() model.FormData {
	return f.values.Clone()
}

// Errors returns a copy of the current inline errors.
func (f *Form) Errors() validation.Errors {
	return f.errors.Clone()
}

// FieldErrors returns the inline errors of name.
func (f *Form) FieldErrors(name string) []string {
	return append([]string(nil), f.errors[name]...)
}

// Touched reports whether name has been blurred or submitted.
func (f *Form) Touched(name string) bool {
	return f.touched[name]
}

// Submitting reports whether a terminal submission is outstanding.
func (f *Form) Submitting() bool {
	return f.submitting
}

// Submitted reports whether the last terminal submission succeeded.
func (f *Form) Submitted() bool {
	return f.submitted
}

// HasError reports whether the last terminal submission failed.
func (f *Form) HasError() bool {
	return f.hasError
}

// ErrorMessage returns the static failure message when HasError is true.
func (f *Form) ErrorMessage() string {
	if !f.hasError {
		return ""
	}
	return StatusError
}

// Change stores raw for name after applying the field's input strategy and
// returns the displayed value. A touched field is validated again right away.
func (f *Form) Change(name, raw string) (string, error) {
	field, ok := f.field(name)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownField, name)
	}
	handler := handlerFor(field)
	value := handler.format(field, raw)
	f.values[name] = value

	if handler.changed != nil {
		handler.changed(f, field, value)
	}
	if f.touched[name] {
		f.validateField(name)
	}
	return value, nil
}

// Blur marks name as touched and runs its first validation pass.
func (f *Form) Blur(name string) error {
	if _, ok := f.field(name); !ok {
		return fmt.Errorf("%w: %s", ErrUnknownField, name)
	}
	f.touched[name] = true
	f.validateField(name)
	return nil
}

// Back invokes the back handler. It reports false when none is configured.
func (f *Form) Back() bool {
	if f.onBack == nil {
		return false
	}
	f.onBack()
	return true
}

// Submit validates the step and, on success, emits its values. Terminal steps
// validate every rule and call the submit handler; others call the advance
// handler. Validation failures return OutcomeInvalid with a nil error.
func (f *Form) Submit(ctx context.Context) (Outcome, error) {
	if f.submitting {
		return OutcomeInvalid, ErrSubmitInFlight
	}
	for _, field := range f.step.Fields {
		f.touched[field.Name] = true
	}

	if f.terminal {
		f.errors = f.validator.All(f.values)
	} else {
		f.errors = f.validator.Step(f.step.ID, f.values)
	}
	if !f.errors.Empty() {
		return OutcomeInvalid, nil
	}

	values := f.stepValues()
	if !f.terminal {
		if f.onAdvance != nil {
			f.onAdvance(values)
		}
		return OutcomeAdvanced, nil
	}

	if f.onSubmit == nil {
		return OutcomeFailed, ErrNoSubmitHandler
	}
	if ctx == nil {
		ctx = context.Background()
	}

	f.submitting = true
	f.hasError = false
	f.submitted = false
	err := f.onSubmit(ctx, values)
	f.submitting = false

	if err != nil {
		f.hasError = true
		return OutcomeFailed, err
	}
	f.submitted = true
	return OutcomeSubmitted, nil
}

// SetFieldErrors attaches externally produced messages, for example a
// backend rejection mapped onto field names.
func (f *Form) SetFieldErrors(errs map[string][]string) {
	for name, msgs := range errs {
		for _, msg := range msgs {
			f.errors.Add(name, msg)
		}
	}
}

func (f *Form) field(name string) (model.Field, bool) {
	for _, field := range f.step.Fields {
		if field.Name == name {
			return field, true
		}
	}
	return model.Field{}, false
}

func (f *Form) validateField(name string) {
	msgs := f.validator.Field(f.step.ID, f.terminal, name, f.values)
	if len(msgs) == 0 {
		delete(f.errors, name)
		return
	}
	f.errors[name] = msgs
}

// stepValues returns the values of the step's own fields. Fields never
// changed and absent from the defaults are emitted empty.
func (f *Form) stepValues() model.FormData {
	out := make(model.FormData, len(f.step.Fields))
	for _, field := range f.step.Fields {
		out[field.Name] = f.values[field.Name]
	}
	return out
}
