package model

import (
	"fmt"
	"strings"
)

// StepID identifies one screen of the wizard.
type StepID string

const (
	StepAccount  StepID = "STEP_1"
	StepIdentity StepID = "STEP_2"
	StepPassword StepID = "STEP_3"
	StepReview   StepID = "STEP_4"
)

// FieldKind is the closed enumeration of input kinds. Anything outside the
// enumeration renders and validates as FieldKindText.
type FieldKind string

const (
	FieldKindText     FieldKind = "text"
	FieldKindDate     FieldKind = "date"
	FieldKindPassword FieldKind = "password"
	FieldKindSelector FieldKind = "userTypeSelection"
)

// Known reports whether k is part of the enumeration.
func (k FieldKind) Known() bool {
	switch k {
	case FieldKindText, FieldKindDate, FieldKindPassword, FieldKindSelector:
		return true
	default:
		return false
	}
}

// Field names shared with the submission endpoint.
const (
	FieldEmail    = "EMAIL"
	FieldUserType = "userType"
	FieldName     = "NAME"
	FieldDocument = "DOCUMENT"
	FieldBirth    = "BIRTH"
	FieldPhone    = "PHONE"
	FieldPassword = "PASSWORD"
)

// RequiredSubmissionFields lists the keys the endpoint refuses to accept
// empty, in the order they are reported back.
var RequiredSubmissionFields = []string{
	FieldEmail,
	FieldName,
	FieldDocument,
	FieldBirth,
	FieldPhone,
	FieldPassword,
}

// UserType is the branching selector captured on the first step.
type UserType string

const (
	UserTypeCPF  UserType = "CPF"
	UserTypeCNPJ UserType = "CNPJ"
)

// UserTypes returns the supported user types in display order.
func UserTypes() []UserType {
	return []UserType{UserTypeCPF, UserTypeCNPJ}
}

// ParseUserType converts raw input into a UserType.
func ParseUserType(raw string) (UserType, error) {
	switch UserType(strings.TrimSpace(raw)) {
	case UserTypeCPF:
		return UserTypeCPF, nil
	case UserTypeCNPJ:
		return UserTypeCNPJ, nil
	default:
		return "", fmt.Errorf("model: unknown user type %q", raw)
	}
}

// Option is a selectable (value, label) pair for selector fields.
type Option struct {
	Value string `json:"value" yaml:"value"`
	Label string `json:"label" yaml:"label"`
}

// Field describes a single input. Values are treated as immutable; use Clone
// before handing a field to code that may retain it.
type Field struct {
	Name        string    `json:"name" yaml:"name"`
	Label       string    `json:"label" yaml:"label"`
	Kind        FieldKind `json:"type" yaml:"type"`
	Required    bool      `json:"required" yaml:"required"`
	Placeholder string    `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
	Options     []Option  `json:"options,omitempty" yaml:"options,omitempty"`
}

// Clone returns a deep copy of the field.
func (f Field) Clone() Field {
	out := f
	if len(f.Options) > 0 {
		out.Options = append([]Option(nil), f.Options...)
	}
	return out
}

// EffectiveKind resolves the kind used for rendering and validation,
// collapsing unknown kinds to FieldKindText.
func (f Field) EffectiveKind() FieldKind {
	if f.Kind.Known() {
		return f.Kind
	}
	return FieldKindText
}

// IsSelector reports whether the field is the user-type choice group.
func (f Field) IsSelector() bool {
	return f.Kind == FieldKindSelector
}

// Step is one screen's worth of fields.
type Step struct {
	ID     StepID  `json:"id" yaml:"id"`
	Title  string  `json:"title,omitempty" yaml:"title,omitempty"`
	Fields []Field `json:"fields" yaml:"fields"`
}

// Clone returns a deep copy of the step.
func (s Step) Clone() Step {
	out := s
	out.Fields = CloneFields(s.Fields)
	return out
}

// CloneFields deep copies a field list. The result is never nil.
func CloneFields(fields []Field) []Field {
	out := make([]Field, 0, len(fields))
	for _, field := range fields {
		out = append(out, field.Clone())
	}
	return out
}

// FormData maps field names to their current value.
type FormData map[string]string

// Clone returns a copy of the map. The result is never nil.
func (d FormData) Clone() FormData {
	out := make(FormData, len(d))
	for key, value := range d {
		out[key] = value
	}
	return out
}

// Merge applies partial onto d, last write wins per key.
func (d FormData) Merge(partial map[string]string) {
	for key, value := range partial {
		d[key] = value
	}
}
