package wizard_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-regwizard/pkg/model"
	"github.com/goliatone/go-regwizard/pkg/stepdef"
	"github.com/goliatone/go-regwizard/pkg/wizard"
)

func fieldNames(fields []model.Field) []string {
	names := make([]string, 0, len(fields))
	for _, field := range fields {
		names = append(names, field.Name)
	}
	return names
}

func TestNavigator_InitialState(t *testing.T) {
	nav := wizard.NewDefault()

	if nav.StepCount() != 3 || nav.CurrentIndex() != 0 {
		t.Fatalf("unexpected initial position %d of %d", nav.CurrentIndex(), nav.StepCount())
	}
	if !nav.IsFirstStep() || nav.IsLastStep() {
		t.Fatalf("initial predicates mismatch")
	}
	if nav.UserType() != "" {
		t.Fatalf("user type should be unset, got %q", nav.UserType())
	}
	step, err := nav.CurrentStep()
	if err != nil {
		t.Fatalf("current step: %v", err)
	}
	if step.ID != model.StepAccount {
		t.Fatalf("expected %s, got %s", model.StepAccount, step.ID)
	}
	if len(nav.FormData()) != 0 {
		t.Fatalf("form data should start empty")
	}
}

func TestNavigator_FieldsForStepIsStable(t *testing.T) {
	nav := wizard.NewDefault()
	if err := nav.SetUserType(model.UserTypeCPF); err != nil {
		t.Fatalf("set user type: %v", err)
	}

	for i := 0; i < nav.StepCount(); i++ {
		first := nav.FieldsForStep(i)
		if first == nil || len(first) == 0 {
			t.Fatalf("step %d returned no fields", i)
		}
		first[0].Label = "mutated"
		if diff := cmp.Diff(fieldNames(first), fieldNames(nav.FieldsForStep(i))); diff != "" {
			t.Fatalf("step %d fields unstable (-first +second):\n%s", i, diff)
		}
		if nav.FieldsForStep(i)[0].Label == "mutated" {
			t.Fatalf("step %d exposes internal state", i)
		}
	}

	for _, idx := range []int{-1, nav.StepCount(), 99} {
		got := nav.FieldsForStep(idx)
		if got == nil || len(got) != 0 {
			t.Fatalf("invalid index %d should return an empty list, got %#v", idx, got)
		}
	}
}

func TestNavigator_NextAndPreviousClamp(t *testing.T) {
	nav := wizard.NewDefault()

	nav.Previous()
	if nav.CurrentIndex() != 0 {
		t.Fatalf("previous on first step moved to %d", nav.CurrentIndex())
	}

	for i := 0; i < 10; i++ {
		nav.Next()
	}
	if nav.CurrentIndex() != 2 || !nav.IsLastStep() {
		t.Fatalf("next should clamp at the last index, got %d", nav.CurrentIndex())
	}

	nav.Next()
	if nav.CurrentIndex() != 2 {
		t.Fatalf("next on last step moved to %d", nav.CurrentIndex())
	}

	nav.Previous()
	if nav.CurrentIndex() != 1 || nav.IsFirstStep() || nav.IsLastStep() {
		t.Fatalf("previous mismatch at %d", nav.CurrentIndex())
	}
}

func TestNavigator_SetUserTypeDerivesSteps(t *testing.T) {
	cases := []struct {
		userType model.UserType
		label    string
		birth    string
		title    string
	}{
		{model.UserTypeCPF, "CPF", "Data de nascimento", "Pessoa física"},
		{model.UserTypeCNPJ, "CNPJ", "Data de abertura", "Pessoa jurídica"},
	}

	for _, tc := range cases {
		t.Run(string(tc.userType), func(t *testing.T) {
			nav := wizard.NewDefault()
			if err := nav.SetUserType(tc.userType); err != nil {
				t.Fatalf("set user type: %v", err)
			}

			if nav.StepCount() != 4 {
				t.Fatalf("expected review step appended, got %d steps", nav.StepCount())
			}
			identity := nav.FieldsForStep(1)
			if identity[1].Label != tc.label || identity[2].Label != tc.birth {
				t.Fatalf("identity fields not replaced: %#v", identity)
			}
			if got := nav.Steps()[1].Title; got != tc.title {
				t.Fatalf("identity title mismatch: %q", got)
			}

			review := nav.Steps()[3]
			if review.ID != model.StepReview {
				t.Fatalf("review id mismatch: %s", review.ID)
			}
			want := []string{
				model.FieldEmail,
				model.FieldName, model.FieldDocument, model.FieldBirth, model.FieldPhone,
				model.FieldPassword,
			}
			if diff := cmp.Diff(want, fieldNames(review.Fields)); diff != "" {
				t.Fatalf("review fields mismatch (-want +got):\n%s", diff)
			}
			if review.Fields[2].Label != tc.label {
				t.Fatalf("review should reflect the derived identity fields")
			}
		})
	}
}

func TestNavigator_SwitchingUserTypeKeepsSingleReview(t *testing.T) {
	nav := wizard.NewDefault()

	var derived int
	nav.Subscribe(func(evt wizard.Event) {
		if evt.Kind == wizard.EventStepsDerived {
			derived++
		}
	})

	for _, ut := range []model.UserType{model.UserTypeCPF, model.UserTypeCPF, model.UserTypeCNPJ, model.UserTypeCPF} {
		if err := nav.SetUserType(ut); err != nil {
			t.Fatalf("set %s: %v", ut, err)
		}
	}

	if nav.StepCount() != 4 {
		t.Fatalf("expected exactly one review step, got %d steps", nav.StepCount())
	}
	if derived != 3 {
		t.Fatalf("repeating the same type should not re-derive; derived %d times", derived)
	}
	if nav.UserType() != model.UserTypeCPF {
		t.Fatalf("user type mismatch: %s", nav.UserType())
	}
	if got := nav.Steps()[3].Fields[2].Label; got != "CPF" {
		t.Fatalf("review step is stale: document label %q", got)
	}
}

func TestNavigator_SetUserTypeRejectsUnknown(t *testing.T) {
	nav := wizard.NewDefault()
	if err := nav.SetUserType("RG"); !errors.Is(err, wizard.ErrUnknownUserType) {
		t.Fatalf("expected ErrUnknownUserType, got %v", err)
	}
	if nav.StepCount() != 3 || nav.UserType() != "" {
		t.Fatalf("rejected type must not change state")
	}
}

func TestNavigator_UpdateFormDataMerges(t *testing.T) {
	nav := wizard.NewDefault()

	var keys [][]string
	unsubscribe := nav.Subscribe(func(evt wizard.Event) {
		if evt.Kind == wizard.EventDataUpdated {
			keys = append(keys, evt.Keys)
		}
	})

	nav.UpdateFormData(map[string]string{model.FieldEmail: "a@example.com", model.FieldName: "Ana"})
	nav.UpdateFormData(map[string]string{model.FieldName: "Bia"})
	nav.UpdateFormData(nil)

	want := model.FormData{model.FieldEmail: "a@example.com", model.FieldName: "Bia"}
	if diff := cmp.Diff(want, nav.FormData()); diff != "" {
		t.Fatalf("form data mismatch (-want +got):\n%s", diff)
	}
	wantKeys := [][]string{{model.FieldEmail, model.FieldName}, {model.FieldName}}
	if diff := cmp.Diff(wantKeys, keys); diff != "" {
		t.Fatalf("event keys mismatch (-want +got):\n%s", diff)
	}

	unsubscribe()
	nav.UpdateFormData(map[string]string{model.FieldPhone: "1199999999"})
	if len(keys) != 2 {
		t.Fatalf("unsubscribed listener still notified")
	}

	snapshot := nav.FormData()
	snapshot[model.FieldName] = "mutated"
	if nav.FormData()[model.FieldName] != "Bia" {
		t.Fatalf("FormData exposes internal state")
	}
}

func TestNavigator_StepEvents(t *testing.T) {
	nav := wizard.NewDefault()
	var got []wizard.Event
	nav.Subscribe(func(evt wizard.Event) {
		if evt.Kind == wizard.EventStepChanged {
			got = append(got, evt)
		}
	})

	nav.Previous()
	nav.Next()
	nav.Next()
	nav.Previous()

	want := []wizard.Event{
		{Kind: wizard.EventStepChanged, StepIndex: 1, StepID: model.StepIdentity},
		{Kind: wizard.EventStepChanged, StepIndex: 2, StepID: model.StepPassword},
		{Kind: wizard.EventStepChanged, StepIndex: 1, StepID: model.StepIdentity},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("events mismatch (-want +got):\n%s", diff)
	}
}

func TestNew_RejectsBrokenDefinitions(t *testing.T) {
	if _, err := wizard.New(stepdef.Definition{}); err == nil {
		t.Fatalf("expected error for empty definition")
	}
	def := stepdef.Default()
	def.VariantStep = "missing"
	if _, err := wizard.New(def); err == nil {
		t.Fatalf("expected error for unknown variant step")
	}
}
