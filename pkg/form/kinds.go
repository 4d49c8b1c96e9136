package form

import (
	"github.com/goliatone/go-regwizard/pkg/mask"
	"github.com/goliatone/go-regwizard/pkg/model"
)

// Strategy is the rendering and input strategy selected by a field's kind.
type Strategy string

const (
	// StrategyText covers text, password and every unrecognised kind.
	StrategyText Strategy = "text"
	// StrategyDate is a text input masked to DD/MM/YYYY while typing.
	StrategyDate Strategy = "date"
	// StrategyChoice is a mutually exclusive option group.
	StrategyChoice Strategy = "choice"
)

// kindHandler is one variant of the field-kind union.
type kindHandler struct {
	strategy  Strategy
	inputType string
	maxLength int
	// format turns raw input into the displayed (and stored) value.
	format func(field model.Field, raw string) string
	// changed runs after the value is stored and before validation.
	changed func(f *Form, field model.Field, value string)
}

var (
	textHandler = kindHandler{
		strategy:  StrategyText,
		inputType: "text",
		format:    keepRaw,
	}
	passwordHandler = kindHandler{
		strategy:  StrategyText,
		inputType: "password",
		format:    keepRaw,
	}
	dateHandler = kindHandler{
		strategy:  StrategyDate,
		inputType: "text",
		maxLength: 10,
		format: func(_ model.Field, raw string) string {
			return mask.Date(raw)
		},
	}
	choiceHandler = kindHandler{
		strategy:  StrategyChoice,
		inputType: "radio",
		format:    keepRaw,
		changed:   notifyUserType,
	}
)

// handlerFor dispatches on the field kind. Unknown kinds use the text
// handler.
func handlerFor(field model.Field) kindHandler {
	switch field.EffectiveKind() {
	case model.FieldKindDate:
		return dateHandler
	case model.FieldKindSelector:
		return choiceHandler
	case model.FieldKindPassword:
		return passwordHandler
	default:
		return textHandler
	}
}

func keepRaw(_ model.Field, raw string) string {
	return raw
}

func notifyUserType(f *Form, field model.Field, value string) {
	if f.onUserType == nil || !hasOption(field, value) {
		return
	}
	f.onUserType(model.UserType(value))
}

func hasOption(field model.Field, value string) bool {
	for _, opt := range field.Options {
		if opt.Value == value {
			return true
		}
	}
	return false
}
