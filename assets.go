// Package regwizard is the top-level entry point of the registration wizard:
// step definitions, the HTML templates and the backend contract are exposed
// here so applications can embed them without importing every subpackage.
package regwizard

import (
	"io/fs"

	"github.com/goliatone/go-regwizard/pkg/openapi"
	"github.com/goliatone/go-regwizard/pkg/renderers/html"
	"github.com/goliatone/go-regwizard/pkg/stepdef"
)

// EmbeddedTemplates exposes the built-in HTML renderer templates so callers
// can reuse or extend them without importing the renderer package directly.
func EmbeddedTemplates() fs.FS {
	return html.TemplatesFS()
}

// DefinitionsFS exposes the embedded step definitions.
//
// Typical use, copying the defaults as a starting point:
//
//	data, _ := fs.ReadFile(regwizard.DefinitionsFS(), "registration.yaml")
func DefinitionsFS() fs.FS {
	return stepdef.EmbeddedFS()
}

// Contract returns the OpenAPI document of the registration backend.
func Contract() []byte {
	return openapi.Raw()
}
