package openapi

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

// Operation identifiers of the embedded contract.
const (
	OperationSubmitRegistration = "submitRegistration"
	OperationRenderStep         = "renderStep"
	OperationHealthz            = "healthz"
)

// DefaultSource names the embedded contract in error messages.
const DefaultSource = "registration.yaml"

//go:embed registration.yaml
var registrationContract []byte

var (
	// ErrEmptyDocument is returned when the raw payload is empty.
	ErrEmptyDocument = errors.New("openapi: raw document is empty")
	// ErrUnknownOperation is returned when an operationId is not declared.
	ErrUnknownOperation = errors.New("openapi: unknown operation")
)

// Operation is the subset of operation metadata the service reports.
type Operation struct {
	ID      string
	Method  string
	Path    string
	Summary string
}

// Document is a loaded and validated OpenAPI description.
type Document struct {
	source string
	raw    []byte
	spec   *openapi3.T
}

// Raw returns the embedded contract bytes.
func Raw() []byte {
	return append([]byte(nil), registrationContract...)
}

// Default loads the embedded registration contract.
func Default(ctx context.Context, options ...LoadOption) (*Document, error) {
	return Load(ctx, DefaultSource, registrationContract, options...)
}

// Load parses raw (JSON or YAML) and validates it unless validation is
// disabled through options. source labels the document in errors.
func Load(ctx context.Context, source string, raw []byte, options ...LoadOption) (*Document, error) {
	if len(raw) == 0 {
		return nil, ErrEmptyDocument
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cfg := newLoadOptions(options...)

	loader := openapi3.NewLoader()
	loader.Context = ctx
	loader.IsExternalRefsAllowed = cfg.externalRefs

	spec, err := loader.LoadFromData(raw)
	if err != nil {
		return nil, fmt.Errorf("openapi: load %s: %w", source, err)
	}
	if spec.Paths == nil || spec.Paths.Len() == 0 {
		return nil, fmt.Errorf("openapi: %s does not contain any paths", source)
	}

	if cfg.validate {
		var validation []openapi3.ValidationOption
		if !cfg.validateExamples {
			validation = append(validation, openapi3.DisableExamplesValidation())
		}
		if err := spec.Validate(ctx, validation...); err != nil {
			return nil, fmt.Errorf("openapi: validate %s: %w", source, err)
		}
	}

	return &Document{
		source: source,
		raw:    append([]byte(nil), raw...),
		spec:   spec,
	}, nil
}

// Source returns the label the document was loaded under.
func (d *Document) Source() string {
	return d.source
}

// Spec exposes the kin-openapi model.
func (d *Document) Spec() *openapi3.T {
	return d.spec
}

// Version is the info.version of the contract.
func (d *Document) Version() string {
	if d.spec.Info == nil {
		return ""
	}
	return d.spec.Info.Version
}

// JSON renders the resolved document.
func (d *Document) JSON() ([]byte, error) {
	return d.spec.MarshalJSON()
}

// Operations lists every declared operation sorted by path, then method.
func (d *Document) Operations() []Operation {
	var out []Operation
	for path, item := range d.spec.Paths.Map() {
		if item == nil {
			continue
		}
		for method, op := range item.Operations() {
			if op == nil {
				continue
			}
			out = append(out, Operation{
				ID:      op.OperationID,
				Method:  strings.ToUpper(method),
				Path:    path,
				Summary: op.Summary,
			})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Path != out[j].Path {
			return out[i].Path < out[j].Path
		}
		return out[i].Method < out[j].Method
	})
	return out
}

// Operation finds an operation by id.
func (d *Document) Operation(id string) (Operation, error) {
	for _, op := range d.Operations() {
		if op.ID == id {
			return op, nil
		}
	}
	return Operation{}, fmt.Errorf("%w: %s", ErrUnknownOperation, id)
}

// RequiredFields returns the required properties of the JSON request body
// of operation id, in declaration order.
func (d *Document) RequiredFields(id string) ([]string, error) {
	op, err := d.Operation(id)
	if err != nil {
		return nil, err
	}
	item := d.spec.Paths.Find(op.Path)
	if item == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownOperation, id)
	}
	operation := item.GetOperation(op.Method)
	if operation == nil || operation.RequestBody == nil || operation.RequestBody.Value == nil {
		return nil, nil
	}
	media := operation.RequestBody.Value.Content.Get("application/json")
	if media == nil || media.Schema == nil || media.Schema.Value == nil {
		return nil, nil
	}
	return slices.Clone(media.Schema.Value.Required), nil
}

// ValidateRequestBody checks body against the JSON request schema of
// operation id, reporting every violation.
func (d *Document) ValidateRequestBody(id string, body map[string]any) error {
	op, err := d.Operation(id)
	if err != nil {
		return err
	}
	if op.Method != http.MethodPost && op.Method != http.MethodPut && op.Method != http.MethodPatch {
		return fmt.Errorf("openapi: %s does not accept a body", id)
	}
	operation := d.spec.Paths.Find(op.Path).GetOperation(op.Method)
	if operation.RequestBody == nil || operation.RequestBody.Value == nil {
		return nil
	}
	media := operation.RequestBody.Value.Content.Get("application/json")
	if media == nil || media.Schema == nil || media.Schema.Value == nil {
		return nil
	}
	return media.Schema.Value.VisitJSON(body, openapi3.MultiErrors())
}
