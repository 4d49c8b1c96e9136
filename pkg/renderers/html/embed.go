package html

import (
	"embed"
	"io/fs"
)

//go:embed templates/*.tmpl templates/fields/*.tmpl
var embeddedTemplates embed.FS

// Template names, relative to the template bundle root.
const (
	StepTemplate = "templates/step.tmpl"
	PageTemplate = "templates/page.tmpl"
)

// TemplatesFS exposes the embedded template bundle so callers can copy it as
// a starting point for WithTemplatesDir overrides.
func TemplatesFS() fs.FS {
	return embeddedTemplates
}
