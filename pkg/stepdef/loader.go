package stepdef

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-regwizard/pkg/model"
)

// DefaultFile is the file name looked up by LoadFS when no name is given.
const DefaultFile = "registration.yaml"

// ErrNoDefinition is returned by LoadFS when the filesystem holds no
// definition file.
var ErrNoDefinition = errors.New("stepdef: no step definition found")

// Variant is the type-specific replacement applied to the branching step.
type Variant struct {
	Title  string
	Fields []model.Field
}

// Definition is the static description of a registration flow.
type Definition struct {
	Source      string
	Steps       []model.Step
	VariantStep model.StepID
	Variants    map[model.UserType]Variant
	Review      model.Step
}

// VariantIndex returns the position of the branching step in Steps.
func (d Definition) VariantIndex() int {
	for idx, step := range d.Steps {
		if step.ID == d.VariantStep {
			return idx
		}
	}
	return -1
}

// Variant returns the replacement for the supplied user type.
func (d Definition) Variant(userType model.UserType) (Variant, bool) {
	v, ok := d.Variants[userType]
	if !ok {
		return Variant{}, false
	}
	return Variant{Title: v.Title, Fields: model.CloneFields(v.Fields)}, true
}

// Clone returns a deep copy of the definition.
func (d Definition) Clone() Definition {
	out := Definition{
		Source:      d.Source,
		VariantStep: d.VariantStep,
		Review:      d.Review.Clone(),
	}
	out.Steps = make([]model.Step, 0, len(d.Steps))
	for _, step := range d.Steps {
		out.Steps = append(out.Steps, step.Clone())
	}
	if len(d.Variants) > 0 {
		out.Variants = make(map[model.UserType]Variant, len(d.Variants))
		for key, v := range d.Variants {
			out.Variants[key] = Variant{Title: v.Title, Fields: model.CloneFields(v.Fields)}
		}
	}
	return out
}

type documentFile struct {
	Steps    []model.Step `json:"steps" yaml:"steps"`
	Variants variantsFile `json:"variants" yaml:"variants"`
	Review   model.Step   `json:"review" yaml:"review"`
}

type variantsFile struct {
	Step  model.StepID           `json:"step" yaml:"step"`
	Types map[string]variantFile `json:"types" yaml:"types"`
}

type variantFile struct {
	Title  string        `json:"title" yaml:"title"`
	Fields []model.Field `json:"fields" yaml:"fields"`
}

// LoadFS reads a definition file from fsys. An empty name falls back to
// DefaultFile.
func LoadFS(fsys fs.FS, name string) (Definition, error) {
	if fsys == nil {
		return Definition{}, ErrNoDefinition
	}
	if strings.TrimSpace(name) == "" {
		name = DefaultFile
	}
	if !isDefinitionFile(name) {
		return Definition{}, fmt.Errorf("stepdef: unsupported file %s", name)
	}

	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Definition{}, fmt.Errorf("%w: %s", ErrNoDefinition, name)
		}
		return Definition{}, fmt.Errorf("stepdef: read %s: %w", name, err)
	}
	return Parse(data, name)
}

// Parse decodes a JSON or YAML document and validates it.
func Parse(data []byte, source string) (Definition, error) {
	doc, err := parseDocument(data, source)
	if err != nil {
		return Definition{}, err
	}
	return normaliseDocument(doc, source)
}

func parseDocument(data []byte, source string) (documentFile, error) {
	var doc documentFile
	if len(strings.TrimSpace(string(data))) == 0 {
		return documentFile{}, fmt.Errorf("stepdef: file %s is empty", source)
	}

	if err := json.Unmarshal(data, &doc); err == nil {
		return doc, nil
	}

	doc = documentFile{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return documentFile{}, fmt.Errorf("stepdef: parse %s: %w", source, err)
	}
	return doc, nil
}

func normaliseDocument(doc documentFile, source string) (Definition, error) {
	if len(doc.Steps) == 0 {
		return Definition{}, fmt.Errorf("stepdef: file %s defines no steps", source)
	}

	def := Definition{
		Source:      source,
		Steps:       make([]model.Step, 0, len(doc.Steps)),
		VariantStep: model.StepID(strings.TrimSpace(string(doc.Variants.Step))),
		Variants:    make(map[model.UserType]Variant, len(doc.Variants.Types)),
	}

	seenSteps := make(map[model.StepID]struct{}, len(doc.Steps)+1)
	for idx, raw := range doc.Steps {
		step, err := normaliseStep(raw, source)
		if err != nil {
			return Definition{}, err
		}
		if step.ID == "" {
			return Definition{}, fmt.Errorf("stepdef: file %s step %d has an empty id", source, idx)
		}
		if _, exists := seenSteps[step.ID]; exists {
			return Definition{}, fmt.Errorf("stepdef: file %s defines duplicate step %q", source, step.ID)
		}
		seenSteps[step.ID] = struct{}{}
		def.Steps = append(def.Steps, step)
	}

	if def.VariantStep == "" {
		return Definition{}, fmt.Errorf("stepdef: file %s does not name the variant step", source)
	}
	if _, ok := seenSteps[def.VariantStep]; !ok {
		return Definition{}, fmt.Errorf("stepdef: file %s variant step %q is not defined", source, def.VariantStep)
	}

	for rawType, raw := range doc.Variants.Types {
		userType, err := model.ParseUserType(rawType)
		if err != nil {
			return Definition{}, fmt.Errorf("stepdef: file %s: %w", source, err)
		}
		fields, err := normaliseFields(raw.Fields, string(def.VariantStep)+"/"+rawType, source)
		if err != nil {
			return Definition{}, err
		}
		def.Variants[userType] = Variant{Title: sanitizeText(raw.Title), Fields: fields}
	}
	if missing := missingVariants(def.Variants); len(missing) > 0 {
		return Definition{}, fmt.Errorf("stepdef: file %s is missing variants for %s", source, strings.Join(missing, ", "))
	}

	def.Review = model.Step{
		ID:    model.StepID(strings.TrimSpace(string(doc.Review.ID))),
		Title: sanitizeText(doc.Review.Title),
	}
	if def.Review.ID == "" {
		def.Review.ID = model.StepReview
	}
	if _, exists := seenSteps[def.Review.ID]; exists {
		return Definition{}, fmt.Errorf("stepdef: file %s review step %q collides with a regular step", source, def.Review.ID)
	}

	return def, nil
}

func normaliseStep(raw model.Step, source string) (model.Step, error) {
	step := model.Step{
		ID:    model.StepID(strings.TrimSpace(string(raw.ID))),
		Title: sanitizeText(raw.Title),
	}
	fields, err := normaliseFields(raw.Fields, string(step.ID), source)
	if err != nil {
		return model.Step{}, err
	}
	step.Fields = fields
	return step, nil
}

func normaliseFields(raw []model.Field, scope, source string) ([]model.Field, error) {
	out := make([]model.Field, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))
	for idx, field := range raw {
		name := strings.TrimSpace(field.Name)
		if name == "" {
			return nil, fmt.Errorf("stepdef: file %s %s field %d has an empty name", source, scope, idx)
		}
		if _, exists := seen[name]; exists {
			return nil, fmt.Errorf("stepdef: file %s %s defines duplicate field %q", source, scope, name)
		}
		seen[name] = struct{}{}

		cleaned := model.Field{
			Name:        name,
			Label:       sanitizeText(field.Label),
			Kind:        model.FieldKind(strings.TrimSpace(string(field.Kind))),
			Required:    field.Required,
			Placeholder: sanitizeText(field.Placeholder),
		}
		if cleaned.Kind == "" {
			cleaned.Kind = model.FieldKindText
		}
		for _, opt := range field.Options {
			value := strings.TrimSpace(opt.Value)
			if value == "" {
				return nil, fmt.Errorf("stepdef: file %s %s field %q has an option without value", source, scope, name)
			}
			cleaned.Options = append(cleaned.Options, model.Option{Value: value, Label: sanitizeText(opt.Label)})
		}
		if cleaned.IsSelector() && len(cleaned.Options) == 0 {
			return nil, fmt.Errorf("stepdef: file %s %s selector %q has no options", source, scope, name)
		}
		out = append(out, cleaned)
	}
	return out, nil
}

func missingVariants(variants map[model.UserType]Variant) []string {
	var missing []string
	for _, userType := range model.UserTypes() {
		if _, ok := variants[userType]; !ok {
			missing = append(missing, string(userType))
		}
	}
	sort.Strings(missing)
	return missing
}

func isDefinitionFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return true
	default:
		return false
	}
}
