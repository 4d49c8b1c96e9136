package stepdef_test

import (
	"errors"
	"os"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-regwizard/pkg/model"
	"github.com/goliatone/go-regwizard/pkg/stepdef"
)

func TestDefault_RegistrationFlow(t *testing.T) {
	def := stepdef.Default()

	var ids []model.StepID
	for _, step := range def.Steps {
		ids = append(ids, step.ID)
	}
	want := []model.StepID{model.StepAccount, model.StepIdentity, model.StepPassword}
	if diff := cmp.Diff(want, ids); diff != "" {
		t.Fatalf("step ids mismatch (-want +got):\n%s", diff)
	}

	if def.VariantStep != model.StepIdentity || def.VariantIndex() != 1 {
		t.Fatalf("variant step mismatch: %q at %d", def.VariantStep, def.VariantIndex())
	}
	if def.Review.ID != model.StepReview {
		t.Fatalf("review id mismatch: %q", def.Review.ID)
	}

	cnpj, ok := def.Variant(model.UserTypeCNPJ)
	if !ok {
		t.Fatalf("CNPJ variant missing")
	}
	if cnpj.Title != "Pessoa jurídica" {
		t.Fatalf("CNPJ title mismatch: %q", cnpj.Title)
	}
	if got := cnpj.Fields[1].Label; got != "CNPJ" {
		t.Fatalf("CNPJ document label mismatch: %q", got)
	}
	if got := cnpj.Fields[2].Kind; got != model.FieldKindDate {
		t.Fatalf("expected date kind for BIRTH, got %q", got)
	}

	selector := def.Steps[0].Fields[1]
	if !selector.IsSelector() || len(selector.Options) != 2 {
		t.Fatalf("selector field malformed: %#v", selector)
	}
}

func TestDefault_ReturnsIndependentCopies(t *testing.T) {
	first := stepdef.Default()
	first.Steps[0].Fields[0].Label = "mutated"
	first.Steps[0].Fields[1].Options[0].Label = "mutated"

	second := stepdef.Default()
	if second.Steps[0].Fields[0].Label == "mutated" || second.Steps[0].Fields[1].Options[0].Label == "mutated" {
		t.Fatalf("default definition shares state between calls")
	}
}

func TestLoadFS_JSONSanitisesText(t *testing.T) {
	def, err := stepdef.LoadFS(os.DirFS("testdata"), "custom.json")
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if got := def.Steps[0].Title; got != "Welcome" {
		t.Fatalf("title not sanitised: %q", got)
	}
	if got := def.Steps[0].Fields[0].Label; got != "E-mail" {
		t.Fatalf("label not sanitised: %q", got)
	}
	unknown := def.Steps[0].Fields[1]
	if unknown.Kind != "color" || unknown.EffectiveKind() != model.FieldKindText {
		t.Fatalf("unknown kind should be kept and fall back to text: %#v", unknown)
	}
	if def.Review.ID != "CONFIRM" {
		t.Fatalf("review id mismatch: %q", def.Review.ID)
	}
	if got := def.Variants[model.UserTypeCPF].Fields[0].Kind; got != model.FieldKindText {
		t.Fatalf("missing kind should default to text, got %q", got)
	}
}

func TestLoadFS_Errors(t *testing.T) {
	cases := []struct {
		name    string
		files   fstest.MapFS
		file    string
		wantErr string
	}{
		{
			name:    "missing file",
			files:   fstest.MapFS{},
			file:    "registration.yaml",
			wantErr: "no step definition",
		},
		{
			name:    "unsupported extension",
			files:   fstest.MapFS{"steps.txt": {Data: []byte("steps: []")}},
			file:    "steps.txt",
			wantErr: "unsupported file",
		},
		{
			name:    "empty",
			files:   fstest.MapFS{"registration.yaml": {Data: []byte("  \n")}},
			wantErr: "is empty",
		},
		{
			name: "duplicate step",
			files: fstest.MapFS{"registration.yaml": {Data: []byte(`
steps:
  - id: STEP_1
  - id: STEP_1
`)}},
			wantErr: `duplicate step "STEP_1"`,
		},
		{
			name: "duplicate field",
			files: fstest.MapFS{"registration.yaml": {Data: []byte(`
steps:
  - id: STEP_1
    fields:
      - {name: EMAIL}
      - {name: EMAIL}
`)}},
			wantErr: `duplicate field "EMAIL"`,
		},
		{
			name: "selector without options",
			files: fstest.MapFS{"registration.yaml": {Data: []byte(`
steps:
  - id: STEP_1
    fields:
      - {name: userType, type: userTypeSelection}
`)}},
			wantErr: "has no options",
		},
		{
			name: "unknown variant step",
			files: fstest.MapFS{"registration.yaml": {Data: []byte(`
steps:
  - id: STEP_1
variants:
  step: STEP_9
`)}},
			wantErr: `variant step "STEP_9" is not defined`,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := stepdef.LoadFS(tc.files, tc.file)
			if err == nil {
				t.Fatalf("expected error containing %q", tc.wantErr)
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("error %q does not contain %q", err, tc.wantErr)
			}
		})
	}
}

func TestLoadFS_MissingVariant(t *testing.T) {
	_, err := stepdef.LoadFS(os.DirFS("testdata"), "missing_variant.yaml")
	if err == nil || !strings.Contains(err.Error(), "missing variants for CNPJ") {
		t.Fatalf("expected missing CNPJ variant error, got %v", err)
	}
}

func TestLoadFS_NilFS(t *testing.T) {
	if _, err := stepdef.LoadFS(nil, ""); !errors.Is(err, stepdef.ErrNoDefinition) {
		t.Fatalf("expected ErrNoDefinition, got %v", err)
	}
}
