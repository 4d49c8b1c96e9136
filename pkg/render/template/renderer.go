package template

import (
	"io"
)

// TemplateRenderer is the seam renderers rely on to execute templates. Every
// render method returns the output and also writes it to each supplied
// writer.
type TemplateRenderer interface {
	Render(name string, data any, out ...io.Writer) (string, error)
	RenderTemplate(name string, data any, out ...io.Writer) (string, error)
	RenderString(templateContent string, data any, out ...io.Writer) (string, error)
	RegisterFilter(name string, fn func(input any, param any) (any, error)) error
	GlobalContext(data any) error
}
