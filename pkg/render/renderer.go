package render

import (
	"context"

	"github.com/goliatone/go-regwizard/pkg/form"
)

// Renderer converts a step view into a byte representation (HTML, terminal
// text, etc.).
type Renderer interface {
	Name() string
	ContentType() string
	Render(ctx context.Context, view form.View, options RenderOptions) ([]byte, error)
}
