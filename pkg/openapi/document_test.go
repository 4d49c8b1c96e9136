package openapi_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-regwizard/pkg/model"
	"github.com/goliatone/go-regwizard/pkg/openapi"
)

func TestDefault_LoadsAndValidates(t *testing.T) {
	doc, err := openapi.Default(context.Background())
	if err != nil {
		t.Fatalf("load contract: %v", err)
	}
	if doc.Source() != openapi.DefaultSource || doc.Version() != "1.0.0" {
		t.Fatalf("unexpected metadata %q %q", doc.Source(), doc.Version())
	}

	want := []openapi.Operation{
		{ID: openapi.OperationHealthz, Method: http.MethodGet, Path: "/healthz", Summary: "Liveness probe"},
		{ID: openapi.OperationSubmitRegistration, Method: http.MethodPost, Path: "/registration", Summary: "Accept a completed registration"},
		{ID: openapi.OperationRenderStep, Method: http.MethodGet, Path: "/registration/steps/{index}", Summary: "Render one wizard step as HTML"},
	}
	if diff := cmp.Diff(want, doc.Operations()); diff != "" {
		t.Fatalf("operations mismatch (-want +got):\n%s", diff)
	}
}

func TestRequiredFieldsMatchSubmissionKeys(t *testing.T) {
	doc, err := openapi.Default(context.Background())
	if err != nil {
		t.Fatalf("load contract: %v", err)
	}
	got, err := doc.RequiredFields(openapi.OperationSubmitRegistration)
	if err != nil {
		t.Fatalf("required fields: %v", err)
	}
	if diff := cmp.Diff(model.RequiredSubmissionFields, got); diff != "" {
		t.Fatalf("contract drifted from the endpoint keys (-want +got):\n%s", diff)
	}

	if fields, err := doc.RequiredFields(openapi.OperationHealthz); err != nil || fields != nil {
		t.Fatalf("healthz has no body, got %v %v", fields, err)
	}
	if _, err := doc.RequiredFields("nope"); !errors.Is(err, openapi.ErrUnknownOperation) {
		t.Fatalf("expected ErrUnknownOperation, got %v", err)
	}
}

func TestValidateRequestBody(t *testing.T) {
	doc, err := openapi.Default(context.Background())
	if err != nil {
		t.Fatalf("load contract: %v", err)
	}
	body := map[string]any{
		"EMAIL":    "ana@example.com",
		"userType": "CPF",
		"NAME":     "Ana",
		"DOCUMENT": "12345678901",
		"BIRTH":    "15/06/1990",
		"PHONE":    "11987654321",
		"PASSWORD": "supersecret",
	}
	if err := doc.ValidateRequestBody(openapi.OperationSubmitRegistration, body); err != nil {
		t.Fatalf("valid body rejected: %v", err)
	}

	delete(body, "PASSWORD")
	if err := doc.ValidateRequestBody(openapi.OperationSubmitRegistration, body); err == nil {
		t.Fatalf("expected missing PASSWORD to fail schema validation")
	}

	if err := doc.ValidateRequestBody(openapi.OperationHealthz, body); err == nil {
		t.Fatalf("expected GET operation to refuse a body")
	}
}

func TestJSON(t *testing.T) {
	doc, err := openapi.Default(context.Background())
	if err != nil {
		t.Fatalf("load contract: %v", err)
	}
	raw, err := doc.JSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded struct {
		OpenAPI string         `json:"openapi"`
		Paths   map[string]any `json:"paths"`
	}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded.OpenAPI != "3.0.3" || len(decoded.Paths) != 3 {
		t.Fatalf("unexpected document: %s", raw)
	}
}

func TestLoad_Errors(t *testing.T) {
	ctx := context.Background()
	if _, err := openapi.Load(ctx, "empty", nil); !errors.Is(err, openapi.ErrEmptyDocument) {
		t.Fatalf("expected ErrEmptyDocument, got %v", err)
	}
	if _, err := openapi.Load(ctx, "garbage", []byte("{not yaml")); err == nil {
		t.Fatalf("expected parse error")
	}

	noPaths := []byte("openapi: 3.0.3\ninfo: {title: x, version: '1'}\npaths: {}\n")
	if _, err := openapi.Load(ctx, "nopaths", noPaths); err == nil {
		t.Fatalf("expected error for a document without paths")
	}

	invalid := []byte(`openapi: 3.0.3
info: {title: x, version: '1'}
paths:
  /x:
    get:
      responses: {}
`)
	if _, err := openapi.Load(ctx, "invalid", invalid); err == nil {
		t.Fatalf("expected validation error for empty responses")
	}
	if _, err := openapi.Load(ctx, "invalid", invalid, openapi.WithoutValidation()); err != nil {
		t.Fatalf("validation should be skippable: %v", err)
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if _, err := openapi.Default(cancelled); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestRaw_ReturnsCopy(t *testing.T) {
	raw := openapi.Raw()
	raw[0] = 'X'
	if openapi.Raw()[0] == 'X' {
		t.Fatalf("Raw exposes the embedded bytes")
	}
}
