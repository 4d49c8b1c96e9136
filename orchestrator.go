package regwizard

import (
	"context"

	"github.com/goliatone/go-regwizard/pkg/model"
	"github.com/goliatone/go-regwizard/pkg/orchestrator"
	"github.com/goliatone/go-regwizard/pkg/render"
	"github.com/goliatone/go-regwizard/pkg/renderers/html"
	"github.com/goliatone/go-regwizard/pkg/stepdef"
	"github.com/goliatone/go-regwizard/pkg/wizard"
)

// RenderOptions describes per-request overrides that renderers can use to
// localise text or surface server-side validation errors.
type RenderOptions = render.RenderOptions

// Request aliases orchestrator.Request for callers rendering single steps.
type Request = orchestrator.Request

// NewOrchestrator exposes the orchestrator constructor from the top-level
// module.
func NewOrchestrator(options ...orchestrator.Option) *orchestrator.Orchestrator {
	return orchestrator.New(options...)
}

// GenerateHTML renders the step at index of the userType branch as an HTML
// fragment, prefilled with values. It is the simplest entry point for callers
// that just want markup.
func GenerateHTML(ctx context.Context, index int, userType model.UserType, values map[string]string, options ...orchestrator.Option) ([]byte, error) {
	gen := orchestrator.New(options...)
	return gen.Generate(ctx, orchestrator.Request{
		StepIndex: index,
		UserType:  userType,
		Values:    values,
		Renderer:  html.Name,
	})
}

// NewFlow builds a navigator over def and the flow that drives it, handing
// the completed registration to submit.
func NewFlow(def stepdef.Definition, submit wizard.SubmitFunc, options ...wizard.FlowOption) (*wizard.Flow, error) {
	nav, err := wizard.New(def)
	if err != nil {
		return nil, err
	}
	return wizard.NewFlow(nav, submit, options...)
}
