// Package testsupport holds fixtures shared by the package tests: golden file
// helpers, a fixed clock and complete registration answers.
package testsupport

import (
	"bytes"
	"context"
	"io"
	"os"
	"testing"
	"time"

	"github.com/goliatone/go-regwizard/pkg/model"
)

// Now is the instant returned by FixedClock.
var Now = time.Date(2024, time.March, 10, 12, 0, 0, 0, time.UTC)

// FixedClock returns Now. Pass it to validation.WithClock so date rules do
// not depend on the wall clock.
func FixedClock() time.Time {
	return Now
}

// Answers returns a complete, valid set of answers for userType, userType
// included.
func Answers(userType model.UserType) model.FormData {
	document := "12345678901"
	if userType == model.UserTypeCNPJ {
		document = "12345678000190"
	}
	return model.FormData{
		model.FieldEmail:    "ana@example.com",
		model.FieldUserType: string(userType),
		model.FieldName:     "Ana Souza",
		model.FieldDocument: document,
		model.FieldBirth:    "15/06/1990",
		model.FieldPhone:    "11987654321",
		model.FieldPassword: "supersecret",
	}
}

// MustReadGolden reads a golden file and returns its raw bytes.
func MustReadGolden(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read golden: %v", err)
	}
	return data
}

// MustReadGoldenString reads a golden file and returns its string content.
func MustReadGoldenString(t *testing.T, path string) string {
	t.Helper()
	return string(MustReadGolden(t, path))
}

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}

// CaptureTemplateOutput executes a render function that writes to an io.Writer,
// returning both the string result and the writer contents.
func CaptureTemplateOutput(t *testing.T, render func(io.Writer) (string, error)) (string, string) {
	t.Helper()

	var buf bytes.Buffer
	out, err := render(&buf)
	if err != nil {
		t.Fatalf("render template: %v", err)
	}

	return out, buf.String()
}
