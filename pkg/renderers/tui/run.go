package tui

import (
	"context"
	"errors"
	"fmt"

	"github.com/goliatone/go-regwizard/pkg/form"
	"github.com/goliatone/go-regwizard/pkg/render"
	"github.com/goliatone/go-regwizard/pkg/submission"
	"github.com/goliatone/go-regwizard/pkg/wizard"
)

// Prompt texts of the interactive session.
const (
	LabelEdit      = "Editar campo"
	MessageAction  = "O que deseja fazer?"
	MessageField   = "Qual campo?"
	MessageRetry   = "Tentar novamente?"
	MessageMissing = "Campo obrigatório não recebido pelo servidor"
)

// Run drives fl until the terminal step is submitted successfully. Each field
// is prompted with its current answer as default and re-prompted while it has
// inline errors. A failed submission offers a retry; declining returns the
// submission error.
func (r *Renderer) Run(ctx context.Context, fl *wizard.Flow) error {
	if fl == nil {
		return errors.New("tui: flow is nil")
	}
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		view := fl.View()
		if err := r.driver.Info(ctx, r.header(view)); err != nil {
			return err
		}

		if view.Terminal {
			done, err := r.review(ctx, fl)
			if err != nil || done {
				return err
			}
			continue
		}

		if err := r.promptFields(ctx, fl.Form()); err != nil {
			return err
		}
		if view.ShowBack {
			back, err := r.chooseBack(ctx, view)
			if err != nil {
				return err
			}
			if back {
				fl.Back()
				continue
			}
		}

		outcome, err := fl.Submit(ctx)
		if err != nil {
			return err
		}
		if outcome == form.OutcomeInvalid {
			if err := r.showErrors(ctx, fl.Form()); err != nil {
				return err
			}
		}
	}
}

func (r *Renderer) promptFields(ctx context.Context, f *form.Form) error {
	for _, field := range f.View().Fields {
		if err := r.promptField(ctx, f, field.Name); err != nil {
			return err
		}
	}
	return nil
}

// promptField asks for name until its value passes validation.
func (r *Renderer) promptField(ctx context.Context, f *form.Form, name string) error {
	for {
		field, ok := fieldView(f.View(), name)
		if !ok {
			return fmt.Errorf("%w: %s", form.ErrUnknownField, name)
		}
		value, err := r.ask(ctx, field)
		if err != nil {
			return err
		}
		if _, err := f.Change(name, value); err != nil {
			return err
		}
		if err := f.Blur(name); err != nil {
			return err
		}
		msgs := f.FieldErrors(name)
		if len(msgs) == 0 {
			return nil
		}
		for _, msg := range msgs {
			if err := r.driver.Info(ctx, r.theme.ErrorPrefix+msg); err != nil {
				return err
			}
		}
	}
}

// ask dispatches on the field strategy.
func (r *Renderer) ask(ctx context.Context, field form.FieldView) (string, error) {
	switch {
	case field.Strategy == form.StrategyChoice:
		labels := make([]string, 0, len(field.Options))
		selected := 0
		for i, opt := range field.Options {
			labels = append(labels, opt.Label)
			if opt.Selected {
				selected = i
			}
		}
		idx, err := r.driver.Select(ctx, SelectConfig{Message: field.Label, Options: labels, DefaultIndex: selected})
		if err != nil {
			return "", err
		}
		if idx < 0 || idx >= len(field.Options) {
			return "", ErrNoSelection
		}
		return field.Options[idx].Value, nil
	case isSecret(field):
		return r.driver.Password(ctx, InputConfig{Message: field.Label})
	default:
		return r.driver.Input(ctx, InputConfig{
			Message: field.Label,
			Default: field.Value,
			Help:    field.Placeholder,
		})
	}
}

func (r *Renderer) chooseBack(ctx context.Context, view form.View) (bool, error) {
	idx, err := r.driver.Select(ctx, SelectConfig{
		Message: MessageAction,
		Options: []string{view.SubmitLabel, view.BackLabel},
	})
	if err != nil {
		return false, err
	}
	return idx == 1, nil
}

// review summarises the answers and offers submit, edit and back. It reports
// true once the registration is accepted.
func (r *Renderer) review(ctx context.Context, fl *wizard.Flow) (bool, error) {
	view := fl.View()
	summary, err := r.Render(ctx, view, render.RenderOptions{})
	if err != nil {
		return false, err
	}
	if err := r.driver.Info(ctx, string(summary)); err != nil {
		return false, err
	}

	options := []string{view.SubmitLabel, LabelEdit}
	if view.ShowBack {
		options = append(options, view.BackLabel)
	}
	idx, err := r.driver.Select(ctx, SelectConfig{Message: MessageAction, Options: options})
	if err != nil {
		return false, err
	}

	switch idx {
	case 0:
		return r.submit(ctx, fl)
	case 1:
		return false, r.edit(ctx, fl.Form(), view)
	case 2:
		fl.Back()
		return false, nil
	default:
		return false, ErrNoSelection
	}
}

func (r *Renderer) edit(ctx context.Context, f *form.Form, view form.View) error {
	labels := make([]string, 0, len(view.Fields))
	for _, field := range view.Fields {
		labels = append(labels, field.Label)
	}
	idx, err := r.driver.Select(ctx, SelectConfig{Message: MessageField, Options: labels})
	if err != nil {
		return err
	}
	if idx < 0 || idx >= len(view.Fields) {
		return ErrNoSelection
	}
	return r.promptField(ctx, f, view.Fields[idx].Name)
}

func (r *Renderer) submit(ctx context.Context, fl *wizard.Flow) (bool, error) {
	if err := r.driver.Info(ctx, form.StatusSubmitting); err != nil {
		return false, err
	}
	outcome, err := fl.Submit(ctx)
	switch outcome {
	case form.OutcomeSubmitted:
		return true, r.driver.Info(ctx, fl.View().Status)
	case form.OutcomeInvalid:
		if err != nil {
			return false, err
		}
		return false, r.showErrors(ctx, fl.Form())
	}

	var rejected *submission.RejectedError
	if errors.As(err, &rejected) && len(rejected.Missing) > 0 {
		fl.Form().SetFieldErrors(render.MissingFieldsPayload(rejected.Missing, MessageMissing))
		if showErr := r.showErrors(ctx, fl.Form()); showErr != nil {
			return false, showErr
		}
	}
	if infoErr := r.driver.Info(ctx, r.theme.ErrorPrefix+fl.Form().ErrorMessage()); infoErr != nil {
		return false, infoErr
	}
	retry, confirmErr := r.driver.Confirm(ctx, ConfirmConfig{Message: MessageRetry, Default: true})
	if confirmErr != nil {
		return false, confirmErr
	}
	if retry {
		return false, nil
	}
	return true, err
}

func (r *Renderer) showErrors(ctx context.Context, f *form.Form) error {
	view := f.View()
	for _, field := range view.Fields {
		for _, msg := range field.Errors {
			if err := r.driver.Info(ctx, fmt.Sprintf("%s%s: %s", r.theme.ErrorPrefix, field.Label, msg)); err != nil {
				return err
			}
		}
	}
	for _, msg := range view.FormErrors {
		if err := r.driver.Info(ctx, r.theme.ErrorPrefix+msg); err != nil {
			return err
		}
	}
	return nil
}

func fieldView(view form.View, name string) (form.FieldView, bool) {
	for _, field := range view.Fields {
		if field.Name == name {
			return field, true
		}
	}
	return form.FieldView{}, false
}
