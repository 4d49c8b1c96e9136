package pongo_test

import (
	"embed"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goliatone/go-regwizard/pkg/render/template/pongo"
	"github.com/goliatone/go-regwizard/pkg/testsupport"
)

//go:embed testdata/templates/*.tmpl
var embeddedTemplates embed.FS

func TestEngine_RenderTemplate(t *testing.T) {
	engine := newEngine(t)

	result, written := testsupport.CaptureTemplateOutput(t, func(w io.Writer) (string, error) {
		return engine.RenderTemplate("hello", map[string]any{"name": "  Ana "}, w)
	})

	want := testsupport.MustReadGoldenString(t, filepath.Join("testdata", "hello.golden"))
	if result != want {
		t.Fatalf("render template mismatch result\nwant: %q\n got: %q", want, result)
	}
	if written != want {
		t.Fatalf("render template mismatch writer\nwant: %q\n got: %q", want, written)
	}
}

func TestEngine_GlobalContextAndFuncs(t *testing.T) {
	engine, err := pongo.New(
		pongo.WithFS(templatesFS(t)),
		pongo.WithGlobalData(map[string]any{"settings": map[string]any{"env": "staging"}}),
		pongo.WithTemplateFunc(map[string]any{
			"label": func(s string) string { return "[" + s + "]" },
		}),
	)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}

	result, err := engine.RenderTemplate("use-global.tmpl", nil)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if result != "staging:[x]\n" {
		t.Fatalf("unexpected output %q", result)
	}
}

func TestEngine_RegisterFilter(t *testing.T) {
	engine := newEngine(t)
	err := engine.RegisterFilter("shout", func(input any, _ any) (any, error) {
		return fmt.Sprintf("%s!", strings.ToUpper(fmt.Sprint(input))), nil
	})
	if err != nil {
		t.Fatalf("register filter: %v", err)
	}
	if err := engine.RegisterFilter("shout", func(any, any) (any, error) { return nil, nil }); err == nil {
		t.Fatalf("expected duplicate filter error")
	}

	result, err := engine.Render("use-filter", map[string]any{"name": "userType"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	want := "<label for=\"field-usertype\">USERTYPE!</label>\n"
	if result != want {
		t.Fatalf("render mismatch\nwant: %q\n got: %q", want, result)
	}
}

func TestEngine_RenderStringEscapes(t *testing.T) {
	engine := newEngine(t)

	type payload struct {
		Label string `json:"label"`
	}
	result, err := engine.Render("<b>{{ label }}</b>", payload{Label: "<i>x</i>"})
	if err != nil {
		t.Fatalf("render string: %v", err)
	}
	if result != "<b>&lt;i&gt;x&lt;/i&gt;</b>" {
		t.Fatalf("expected autoescaped output, got %q", result)
	}

	if _, err := engine.RenderTemplate("missing", nil); err == nil {
		t.Fatalf("expected error for a missing template")
	}
}

func TestNew_RequiresSource(t *testing.T) {
	if _, err := pongo.New(); err == nil {
		t.Fatalf("expected error without a template source")
	}
}

func templatesFS(t *testing.T) fs.FS {
	t.Helper()
	sub, err := fs.Sub(embeddedTemplates, "testdata/templates")
	if err != nil {
		t.Fatalf("sub fs: %v", err)
	}
	return sub
}

func newEngine(t *testing.T) *pongo.Engine {
	t.Helper()

	engine, err := pongo.New(pongo.WithFS(templatesFS(t)))
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return engine
}
