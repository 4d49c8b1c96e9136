package form

import "github.com/goliatone/go-regwizard/pkg/validation"

// Option configures a Form.
type Option func(*Form)

// WithValidator supplies the rulesets. A default validator is used when
// omitted.
func WithValidator(v *validation.Validator) Option {
	return func(f *Form) {
		if v != nil {
			f.validator = v
		}
	}
}

// WithTerminal marks the step as the last one of the flow.
func WithTerminal(terminal bool) Option {
	return func(f *Form) {
		f.terminal = terminal
	}
}

// WithPosition records where the step sits in the flow for display.
func WithPosition(index, count int) Option {
	return func(f *Form) {
		if index >= 0 && count > 0 && index < count {
			f.index = index
			f.count = count
		}
	}
}

// WithSubmitHandler sets the callback invoked by Submit on a terminal step.
func WithSubmitHandler(fn SubmitFunc) Option {
	return func(f *Form) {
		f.onSubmit = fn
	}
}

// WithAdvanceHandler sets the callback invoked by Submit on other steps.
func WithAdvanceHandler(fn AdvanceFunc) Option {
	return func(f *Form) {
		f.onAdvance = fn
	}
}

// WithBackHandler sets the callback invoked by Back. Forms without one do not
// offer back navigation.
func WithBackHandler(fn func()) Option {
	return func(f *Form) {
		f.onBack = fn
	}
}

// WithUserTypeHandler sets the callback notified when the choice group
// changes selection.
func WithUserTypeHandler(fn UserTypeFunc) Option {
	return func(f *Form) {
		f.onUserType = fn
	}
}
