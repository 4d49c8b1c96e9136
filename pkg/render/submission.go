package render

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/goliatone/go-regwizard/pkg/form"
	"github.com/goliatone/go-regwizard/pkg/model"
)

// Hidden input names emitted with every rendered step.
const (
	HiddenStep     = "_step"
	HiddenUserType = model.FieldUserType
)

// HiddenField represents a hidden form input emitted alongside the visible
// fields.
type HiddenField struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Hidden returns a HiddenField for an arbitrary name/value pair.
func Hidden(name string, value any) HiddenField {
	return HiddenField{
		Name:  strings.TrimSpace(name),
		Value: fmt.Sprint(value),
	}
}

// CarriedFields returns hidden inputs for the non-empty values the view does
// not render, sorted by name. Names starting with "_" and the skipped names
// are left out.
func CarriedFields(view form.View, values map[string]string, skip ...string) []HiddenField {
	rendered := make(map[string]struct{}, len(view.Fields)+len(skip))
	for _, field := range view.Fields {
		rendered[field.Name] = struct{}{}
	}
	for _, name := range skip {
		rendered[name] = struct{}{}
	}

	names := make([]string, 0, len(values))
	for name, value := range values {
		if value == "" || strings.HasPrefix(name, "_") {
			continue
		}
		if _, ok := rendered[name]; ok {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	fields := make([]HiddenField, 0, len(names))
	for _, name := range names {
		fields = append(fields, Hidden(name, values[name]))
	}
	return fields
}

// StepFields returns the hidden inputs that let a stateless server resume the
// wizard: the zero-based step index and, once known, the selected user type.
// The user type is omitted when the step renders its own selector.
func StepFields(view form.View, userType model.UserType) []HiddenField {
	fields := []HiddenField{Hidden(HiddenStep, strconv.Itoa(view.StepNumber-1))}
	if userType == "" {
		return fields
	}
	for _, field := range view.Fields {
		if field.Name == HiddenUserType {
			return fields
		}
	}
	return append(fields, Hidden(HiddenUserType, userType))
}

// MergeHiddenFields returns a copy of base with the provided fields applied.
// Empty names are ignored; later fields win on name collisions.
func MergeHiddenFields(base map[string]string, fields ...HiddenField) map[string]string {
	if len(base) == 0 && len(fields) == 0 {
		return nil
	}
	out := make(map[string]string, len(base)+len(fields))
	for key, value := range base {
		if trimmed := strings.TrimSpace(key); trimmed != "" {
			out[trimmed] = value
		}
	}
	for _, field := range fields {
		name := strings.TrimSpace(field.Name)
		if name == "" {
			continue
		}
		out[name] = field.Value
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// SortedHiddenFields normalises and sorts hidden fields for deterministic
// rendering. Empty names are dropped.
func SortedHiddenFields(fields map[string]string) []HiddenField {
	if len(fields) == 0 {
		return nil
	}

	names := make([]string, 0, len(fields))
	clean := make(map[string]string, len(fields))
	for name, value := range fields {
		key := strings.TrimSpace(name)
		if key == "" {
			continue
		}
		if _, exists := clean[key]; !exists {
			names = append(names, key)
		}
		clean[key] = value
	}
	if len(names) == 0 {
		return nil
	}
	sort.Strings(names)

	result := make([]HiddenField, 0, len(names))
	for _, name := range names {
		result = append(result, HiddenField{Name: name, Value: clean[name]})
	}
	return result
}
