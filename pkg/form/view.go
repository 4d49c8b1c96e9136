package form

import (
	"sort"

	"github.com/goliatone/go-regwizard/pkg/model"
	"github.com/goliatone/go-regwizard/pkg/validation"
)

// Labels shown on the step actions and the submission status line.
const (
	LabelNext   = "Continuar"
	LabelBack   = "Voltar"
	LabelSubmit = "Cadastrar"

	StatusSubmitting = "Enviando..."
	StatusSubmitted  = "Enviado com sucesso!"
	StatusError      = "Erro ao enviar, tente novamente!"

	DatePlaceholder = "DD/MM/AAAA"
)

// OptionView is a choice as presented to the user.
type OptionView struct {
	Value    string `json:"value"`
	Label    string `json:"label"`
	Selected bool   `json:"selected"`
}

// FieldView is a field with its current value and inline errors.
type FieldView struct {
	Name        string       `json:"name"`
	Label       string       `json:"label"`
	Strategy    Strategy     `json:"strategy"`
	InputType   string       `json:"inputType"`
	Placeholder string       `json:"placeholder,omitempty"`
	MaxLength   int          `json:"maxLength,omitempty"`
	Required    bool         `json:"required"`
	Value       string       `json:"value"`
	Options     []OptionView `json:"options,omitempty"`
	Errors      []string     `json:"errors,omitempty"`
}

// View is a snapshot of a Form for renderers.
type View struct {
	StepID      model.StepID `json:"stepId"`
	Title       string       `json:"title"`
	StepNumber  int          `json:"stepNumber"`
	StepCount   int          `json:"stepCount"`
	Fields      []FieldView  `json:"fields"`
	FormErrors  []string     `json:"formErrors,omitempty"`
	Terminal    bool         `json:"terminal"`
	ShowBack    bool         `json:"showBack"`
	SubmitLabel string       `json:"submitLabel"`
	BackLabel   string       `json:"backLabel"`
	Submitting  bool         `json:"submitting"`
	HasError    bool         `json:"hasError"`
	Status      string       `json:"status,omitempty"`
}

// View snapshots the form. Errors on names the step does not render are
// reported as form-level messages.
func (f *Form) View() View {
	view := View{
		StepID:      f.step.ID,
		Title:       f.step.Title,
		StepNumber:  f.index + 1,
		StepCount:   f.count,
		Fields:      make([]FieldView, 0, len(f.step.Fields)),
		Terminal:    f.terminal,
		ShowBack:    f.onBack != nil,
		SubmitLabel: LabelNext,
		BackLabel:   LabelBack,
		Submitting:  f.submitting,
		HasError:    f.hasError,
	}
	if f.terminal {
		view.SubmitLabel = LabelSubmit
	}
	switch {
	case f.submitting:
		view.Status = StatusSubmitting
	case f.hasError:
		view.Status = StatusError
	case f.submitted:
		view.Status = StatusSubmitted
	}

	rendered := make(map[string]struct{}, len(f.step.Fields))
	for _, field := range f.step.Fields {
		rendered[field.Name] = struct{}{}
		view.Fields = append(view.Fields, f.fieldView(field))
	}
	for _, name := range sortedKeys(f.errors) {
		if _, ok := rendered[name]; ok {
			continue
		}
		view.FormErrors = append(view.FormErrors, f.errors[name]...)
	}
	return view
}

func (f *Form) fieldView(field model.Field) FieldView {
	handler := handlerFor(field)
	value := f.values[field.Name]
	fv := FieldView{
		Name:        field.Name,
		Label:       field.Label,
		Strategy:    handler.strategy,
		InputType:   handler.inputType,
		Placeholder: field.Placeholder,
		MaxLength:   handler.maxLength,
		Required:    field.Required,
		Value:       value,
		Errors:      append([]string(nil), f.errors[field.Name]...),
	}
	if handler.strategy == StrategyDate && fv.Placeholder == "" {
		fv.Placeholder = DatePlaceholder
	}
	for _, opt := range field.Options {
		fv.Options = append(fv.Options, OptionView{
			Value:    opt.Value,
			Label:    opt.Label,
			Selected: opt.Value == value,
		})
	}
	return fv
}

func sortedKeys(errs validation.Errors) []string {
	keys := make([]string, 0, len(errs))
	for key := range errs {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
