package render

import (
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-regwizard/pkg/form"
)

// ErrMissingTranslator is passed to MissingTranslationHandler when no
// Translator is configured.
var ErrMissingTranslator = errors.New("render: translator not configured")

// Translator resolves a message key for locale.
type Translator interface {
	Translate(locale, key string, args ...any) (string, error)
}

// MissingTranslationHandler decides the text used when key cannot be
// translated. args carries a map with the "default" text as its first entry
// when one exists.
type MissingTranslationHandler func(locale, key string, args []any, err error) string

// Catalog is an in-memory Translator keyed by locale, then message key.
type Catalog map[string]map[string]string

// Translate implements Translator. Region suffixes fall back to the base
// language ("pt-BR" resolves through "pt").
func (c Catalog) Translate(locale, key string, _ ...any) (string, error) {
	for _, candidate := range localeChain(locale) {
		if msg, ok := c[candidate][key]; ok {
			return msg, nil
		}
	}
	return "", errors.New("render: missing translation for " + key)
}

// ParseCatalog decodes a YAML (or JSON) document mapping locales to message
// keys:
//
//	en:
//	  steps.STEP_1.title: Welcome
//	  actions.next: Next
func ParseCatalog(data []byte) (Catalog, error) {
	var catalog Catalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("render: decode catalog: %w", err)
	}
	if len(catalog) == 0 {
		return nil, errors.New("render: catalog has no locales")
	}
	return catalog, nil
}

// StepTitleKey is the message key of a step title.
func StepTitleKey(stepID string) string {
	return "steps." + stepID + ".title"
}

// FieldLabelKey is the message key of a field label.
func FieldLabelKey(name string) string {
	return "fields." + name + ".label"
}

// OptionLabelKey is the message key of a choice option label.
func OptionLabelKey(name, value string) string {
	return "fields." + name + ".options." + value
}

// Message keys of the step actions and the submission status line.
const (
	ActionNextKey    = "actions.next"
	ActionBackKey    = "actions.back"
	ActionSubmitKey  = "actions.submit"
	StatusSendingKey = "status.submitting"
	StatusSentKey    = "status.submitted"
	StatusErrorKey   = "status.error"
)

// LocalizeView translates the titles, labels, action text and status line of
// view in place. This is best-effort: untranslated keys keep the text already
// on the view, routed through opts.OnMissing when set.
func LocalizeView(view *form.View, opts RenderOptions) {
	if view == nil || (opts.Translator == nil && opts.OnMissing == nil) {
		return
	}
	tr := func(key, fallback string) string {
		return translate(opts.Locale, key, fallback, opts.Translator, opts.OnMissing)
	}

	view.Title = tr(StepTitleKey(string(view.StepID)), view.Title)
	view.SubmitLabel = tr(submitKey(view.Terminal), view.SubmitLabel)
	view.BackLabel = tr(ActionBackKey, view.BackLabel)
	if view.Status != "" {
		view.Status = tr(statusKey(*view), view.Status)
	}
	for i := range view.Fields {
		field := &view.Fields[i]
		field.Label = tr(FieldLabelKey(field.Name), field.Label)
		for j := range field.Options {
			opt := &field.Options[j]
			opt.Label = tr(OptionLabelKey(field.Name, opt.Value), opt.Label)
		}
	}
}

func submitKey(terminal bool) string {
	if terminal {
		return ActionSubmitKey
	}
	return ActionNextKey
}

func statusKey(view form.View) string {
	switch {
	case view.Submitting:
		return StatusSendingKey
	case view.HasError:
		return StatusErrorKey
	default:
		return StatusSentKey
	}
}

func translate(locale, key, fallback string, t Translator, onMissing MissingTranslationHandler) string {
	key = strings.TrimSpace(key)
	if key == "" {
		return fallback
	}

	if t == nil {
		if onMissing != nil {
			return onMissing(locale, key, []any{map[string]any{"default": fallback}}, ErrMissingTranslator)
		}
		return fallbackOrKey(fallback, key)
	}

	result, err := t.Translate(locale, key)
	if err == nil && strings.TrimSpace(result) != "" {
		return result
	}

	if onMissing != nil {
		return onMissing(locale, key, []any{map[string]any{"default": fallback}}, err)
	}
	return fallbackOrKey(fallback, key)
}

func fallbackOrKey(fallback, key string) string {
	if strings.TrimSpace(fallback) != "" {
		return fallback
	}
	return key
}

func localeChain(locale string) []string {
	locale = strings.TrimSpace(locale)
	if locale == "" {
		return nil
	}
	chain := []string{locale}
	if idx := strings.IndexAny(locale, "-_"); idx > 0 {
		chain = append(chain, locale[:idx])
	}
	return chain
}
