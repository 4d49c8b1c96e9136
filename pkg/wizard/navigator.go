package wizard

import (
	"errors"
	"fmt"
	"sort"

	"github.com/goliatone/go-regwizard/pkg/model"
	"github.com/goliatone/go-regwizard/pkg/stepdef"
)

var (
	// ErrStepOutOfRange signals that the current index no longer addresses a
	// step. It is only reachable if the index invariant is broken.
	ErrStepOutOfRange = errors.New("wizard: step index out of range")
	// ErrUnknownUserType is returned by SetUserType for unsupported types.
	ErrUnknownUserType = errors.New("wizard: unknown user type")
)

// EventKind enumerates the notifications published by a Navigator.
type EventKind int

const (
	// EventStepChanged fires after Next or Previous moved the index.
	EventStepChanged EventKind = iota + 1
	// EventStepsDerived fires after SetUserType rebuilt the step list.
	EventStepsDerived
	// EventDataUpdated fires after UpdateFormData merged values.
	EventDataUpdated
)

// Event describes a state change.
type Event struct {
	Kind      EventKind
	StepIndex int
	StepID    model.StepID
	UserType  model.UserType
	Keys      []string
}

// Listener receives events synchronously, in subscription order.
type Listener func(Event)

// Navigator owns the ordered step list, the current position and the
// accumulated answers of one wizard session. It is not safe for concurrent
// use.
type Navigator struct {
	def       stepdef.Definition
	steps     []model.Step
	index     int
	data      model.FormData
	userType  model.UserType
	listeners map[int]Listener
	order     []int
	nextID    int
}

// New builds a Navigator positioned on the first step of def.
func New(def stepdef.Definition) (*Navigator, error) {
	if len(def.Steps) == 0 {
		return nil, errors.New("wizard: definition has no steps")
	}
	if def.VariantIndex() < 0 {
		return nil, fmt.Errorf("wizard: variant step %q not found", def.VariantStep)
	}
	def = def.Clone()
	steps := make([]model.Step, 0, len(def.Steps)+1)
	for _, step := range def.Steps {
		steps = append(steps, step.Clone())
	}
	return &Navigator{
		def:       def,
		steps:     steps,
		data:      make(model.FormData),
		listeners: make(map[int]Listener),
	}, nil
}

// NewDefault builds a Navigator over the bundled registration flow.
func NewDefault() *Navigator {
	nav, err := New(stepdef.Default())
	if err != nil {
		// The bundled definition is validated by its loader.
		panic(err)
	}
	return nav
}

// Subscribe registers fn and returns a function that removes it.
func (n *Navigator) Subscribe(fn Listener) func() {
	if fn == nil {
		return func() {}
	}
	id := n.nextID
	n.nextID++
	n.listeners[id] = fn
	n.order = append(n.order, id)
	return func() {
		delete(n.listeners, id)
		for i, existing := range n.order {
			if existing == id {
				n.order = append(n.order[:i], n.order[i+1:]...)
				break
			}
		}
	}
}

func (n *Navigator) publish(evt Event) {
	ids := append([]int(nil), n.order...)
	for _, id := range ids {
		if fn, ok := n.listeners[id]; ok {
			fn(evt)
		}
	}
}

// Steps returns a copy of the current step list.
func (n *Navigator) Steps() []model.Step {
	out := make([]model.Step, 0, len(n.steps))
	for _, step := range n.steps {
		out = append(out, step.Clone())
	}
	return out
}

// StepCount reports the number of steps, including the review step once
// derived.
func (n *Navigator) StepCount() int {
	return len(n.steps)
}

// CurrentIndex reports the 0-based position.
func (n *Navigator) CurrentIndex() int {
	return n.index
}

// CurrentStep returns the step at the current index.
func (n *Navigator) CurrentStep() (model.Step, error) {
	if n.index < 0 || n.index >= len(n.steps) {
		return model.Step{}, fmt.Errorf("%w: %d of %d", ErrStepOutOfRange, n.index, len(n.steps))
	}
	return n.steps[n.index].Clone(), nil
}

// FieldsForStep returns the fields of step index, or an empty list when the
// index is invalid.
func (n *Navigator) FieldsForStep(index int) []model.Field {
	if index < 0 || index >= len(n.steps) {
		return []model.Field{}
	}
	return model.CloneFields(n.steps[index].Fields)
}

// Next advances one step; it is a no-op on the last step.
func (n *Navigator) Next() {
	if n.index >= len(n.steps)-1 {
		return
	}
	n.index++
	n.publish(n.stepEvent(EventStepChanged))
}

// Previous moves back one step; it is a no-op on the first step.
func (n *Navigator) Previous() {
	if n.index <= 0 {
		return
	}
	n.index--
	n.publish(n.stepEvent(EventStepChanged))
}

// IsFirstStep reports whether the index is 0.
func (n *Navigator) IsFirstStep() bool {
	return n.index == 0
}

// IsLastStep reports whether the index addresses the final step.
func (n *Navigator) IsLastStep() bool {
	return n.index == len(n.steps)-1
}

// UserType returns the recorded selection, or "" before one is made.
func (n *Navigator) UserType() model.UserType {
	return n.userType
}

// SetUserType records the selection. The first call replaces the branching
// step's fields with the type-specific set and appends the review step.
// Repeating the current type is a no-op; switching type re-derives the
// branching step and replaces the review step, so at most one review step
// ever exists.
func (n *Navigator) SetUserType(userType model.UserType) error {
	variant, ok := n.def.Variant(userType)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownUserType, userType)
	}
	if n.userType == userType && n.hasReview() {
		return nil
	}

	n.userType = userType

	steps := make([]model.Step, 0, len(n.def.Steps)+1)
	for _, step := range n.def.Steps {
		steps = append(steps, step.Clone())
	}
	branch := n.def.VariantIndex()
	steps[branch].Fields = variant.Fields
	if variant.Title != "" {
		steps[branch].Title = variant.Title
	}

	review := n.def.Review.Clone()
	review.Fields = reviewFields(steps)
	n.steps = append(steps, review)

	if n.index >= len(n.steps) {
		n.index = len(n.steps) - 1
	}
	n.publish(Event{
		Kind:      EventStepsDerived,
		StepIndex: n.index,
		StepID:    n.steps[n.index].ID,
		UserType:  userType,
	})
	return nil
}

// FormData returns a copy of the accumulated answers.
func (n *Navigator) FormData() model.FormData {
	return n.data.Clone()
}

// UpdateFormData shallow-merges partial into the accumulated answers.
func (n *Navigator) UpdateFormData(partial map[string]string) {
	if len(partial) == 0 {
		return
	}
	n.data.Merge(partial)
	keys := make([]string, 0, len(partial))
	for key := range partial {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	n.publish(Event{
		Kind:      EventDataUpdated,
		StepIndex: n.index,
		StepID:    n.steps[n.index].ID,
		UserType:  n.userType,
		Keys:      keys,
	})
}

func (n *Navigator) hasReview() bool {
	return len(n.steps) > len(n.def.Steps)
}

func (n *Navigator) stepEvent(kind EventKind) Event {
	return Event{
		Kind:      kind,
		StepIndex: n.index,
		StepID:    n.steps[n.index].ID,
		UserType:  n.userType,
	}
}

// reviewFields flattens every non-selector field of steps, in order.
func reviewFields(steps []model.Step) []model.Field {
	var out []model.Field
	for _, step := range steps {
		for _, field := range step.Fields {
			if field.IsSelector() {
				continue
			}
			out = append(out, field.Clone())
		}
	}
	if out == nil {
		out = []model.Field{}
	}
	return out
}
