// Package validation implements the per-step rulesets of the registration
// wizard. Each step owns an ordered list of field checks; the review step
// validates the union of every step. A field reports its first failing check
// only, so a message always describes the most basic problem with the value.
package validation

import (
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"github.com/goliatone/go-regwizard/pkg/model"
)

// MinPasswordLength is the shortest accepted password, counted in runes.
const MinPasswordLength = 8

// Messages shown next to failing inputs.
const (
	MsgEmailRequired    = "Email é obrigatório"
	MsgEmailInvalid     = "Email inválido"
	MsgUserTypeRequired = "Tipo de usuário é obrigatório"
	MsgUserTypeInvalid  = "Selecione um tipo de usuário"
	MsgNameRequired     = "Nome é obrigatório"
	MsgDocumentRequired = "Documento é obrigatório"
	MsgCPFInvalid       = "CPF inválido"
	MsgCNPJInvalid      = "CNPJ inválido"
	MsgDocumentNoType   = "Tipo de usuário inválido"
	MsgDateRequired     = "Data é obrigatória"
	MsgDateFormat       = "Data inválida. Use o formato DD/MM/AAAA"
	MsgDateInvalid      = "Data inválida"
	MsgPhoneRequired    = "Telefone é obrigatório"
	MsgPhoneInvalid     = "Telefone inválido"
	MsgPasswordRequired = "Senha é obrigatória"
	MsgPasswordShort    = "Senha deve ter pelo menos 8 caracteres"
)

var (
	datePattern  = regexp.MustCompile(`^(0[1-9]|[12][0-9]|3[01])/(0[1-9]|1[012])/(19|20)\d\d$`)
	phonePattern = regexp.MustCompile(`^\d{10,11}$`)
	cpfPattern   = regexp.MustCompile(`^\d{11}$`)
	cnpjPattern  = regexp.MustCompile(`^\d{14}$`)
)

// check inspects value (with access to sibling values) and returns a message
// when it fails.
type check func(value string, values map[string]string) string

type rule struct {
	field  string
	checks []check
}

// Option configures a Validator.
type Option func(*Validator)

// WithClock overrides the time source used by the not-in-the-future date
// check.
func WithClock(now func() time.Time) Option {
	return func(v *Validator) {
		if now != nil {
			v.now = now
		}
	}
}

// Validator evaluates step rulesets. The zero value is not usable; call New.
type Validator struct {
	now      func() time.Time
	validate *validator.Validate
	order    []model.StepID
	rules    map[model.StepID][]rule
}

// New constructs a Validator with the registration rulesets.
func New(options ...Option) *Validator {
	v := &Validator{
		now:      time.Now,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(v)
	}
	v.registerRules()
	return v
}

func (v *Validator) registerRules() {
	v.order = []model.StepID{model.StepAccount, model.StepIdentity, model.StepPassword}
	v.rules = map[model.StepID][]rule{
		model.StepAccount: {
			{field: model.FieldEmail, checks: []check{required(MsgEmailRequired), v.tag("email", MsgEmailInvalid)}},
			{field: model.FieldUserType, checks: []check{required(MsgUserTypeRequired), v.tag("oneof=CPF CNPJ", MsgUserTypeInvalid)}},
		},
		model.StepIdentity: {
			{field: model.FieldName, checks: []check{required(MsgNameRequired)}},
			{field: model.FieldDocument, checks: []check{required(MsgDocumentRequired), document}},
			{field: model.FieldBirth, checks: []check{required(MsgDateRequired), matches(datePattern, MsgDateFormat), v.pastDate}},
			{field: model.FieldPhone, checks: []check{required(MsgPhoneRequired), matches(phonePattern, MsgPhoneInvalid)}},
		},
		model.StepPassword: {
			{field: model.FieldPassword, checks: []check{required(MsgPasswordRequired), minRunes(MinPasswordLength, MsgPasswordShort)}},
		},
	}
}

// Step validates the fields owned by step id. Steps without rules, including
// the review step, always pass; use All for the review step.
func (v *Validator) Step(id model.StepID, values map[string]string) Errors {
	return v.run(v.rules[id], values)
}

// All validates the union of every step's rules.
func (v *Validator) All(values map[string]string) Errors {
	var all []rule
	for _, id := range v.order {
		all = append(all, v.rules[id]...)
	}
	return v.run(all, values)
}

// Field validates a single field using the ruleset of step id, or the union
// when all is true. Unknown fields pass.
func (v *Validator) Field(id model.StepID, all bool, name string, values map[string]string) []string {
	ids := []model.StepID{id}
	if all {
		ids = v.order
	}
	for _, stepID := range ids {
		for _, r := range v.rules[stepID] {
			if r.field != name {
				continue
			}
			if msg := firstFailure(r, values); msg != "" {
				return []string{msg}
			}
			return nil
		}
	}
	return nil
}

// Covers reports whether any ruleset, or the ruleset of id when all is false,
// validates name.
func (v *Validator) Covers(id model.StepID, all bool, name string) bool {
	ids := []model.StepID{id}
	if all {
		ids = v.order
	}
	for _, stepID := range ids {
		for _, r := range v.rules[stepID] {
			if r.field == name {
				return true
			}
		}
	}
	return false
}

func (v *Validator) run(rules []rule, values map[string]string) Errors {
	errs := make(Errors)
	for _, r := range rules {
		if msg := firstFailure(r, values); msg != "" {
			errs.Add(r.field, msg)
		}
	}
	return errs
}

func firstFailure(r rule, values map[string]string) string {
	value := values[r.field]
	for _, c := range r.checks {
		if msg := c(value, values); msg != "" {
			return msg
		}
	}
	return ""
}

func required(message string) check {
	return func(value string, _ map[string]string) string {
		if strings.TrimSpace(value) == "" {
			return message
		}
		return ""
	}
}

func matches(re *regexp.Regexp, message string) check {
	return func(value string, _ map[string]string) string {
		if !re.MatchString(value) {
			return message
		}
		return ""
	}
}

func minRunes(n int, message string) check {
	return func(value string, _ map[string]string) string {
		if utf8.RuneCountInString(value) < n {
			return message
		}
		return ""
	}
}

func (v *Validator) tag(tag, message string) check {
	return func(value string, _ map[string]string) string {
		if err := v.validate.Var(value, tag); err != nil {
			return message
		}
		return ""
	}
}

// document applies the document shape selected by the user type held in the
// same value set.
func document(value string, values map[string]string) string {
	switch model.UserType(values[model.FieldUserType]) {
	case model.UserTypeCPF:
		if !cpfPattern.MatchString(value) {
			return MsgCPFInvalid
		}
	case model.UserTypeCNPJ:
		if !cnpjPattern.MatchString(value) {
			return MsgCNPJInvalid
		}
	default:
		return MsgDocumentNoType
	}
	return ""
}

// pastDate accepts a DD/MM/YYYY value denoting a real calendar day that is
// not after now.
func (v *Validator) pastDate(value string, _ map[string]string) string {
	day, month, year, ok := splitDate(value)
	if !ok {
		return MsgDateInvalid
	}
	now := v.now()
	date := time.Date(year, time.Month(month), day, 0, 0, 0, 0, now.Location())
	if date.Day() != day || int(date.Month()) != month || date.Year() != year {
		return MsgDateInvalid
	}
	if date.After(now) {
		return MsgDateInvalid
	}
	return ""
}

func splitDate(value string) (day, month, year int, ok bool) {
	parts := strings.Split(value, "/")
	if len(parts) != 3 {
		return 0, 0, 0, false
	}
	var err error
	if day, err = strconv.Atoi(parts[0]); err != nil {
		return 0, 0, 0, false
	}
	if month, err = strconv.Atoi(parts[1]); err != nil {
		return 0, 0, 0, false
	}
	if year, err = strconv.Atoi(parts[2]); err != nil {
		return 0, 0, 0, false
	}
	return day, month, year, true
}
