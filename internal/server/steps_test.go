package server_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-regwizard/internal/server"
	"github.com/goliatone/go-regwizard/pkg/render"
)

func get(t *testing.T, router http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, target, nil))
	return rr
}

func TestEntryPageRendersFirstStep(t *testing.T) {
	t.Parallel()
	router := newServer(t)

	rr := get(t, router, "/registration")

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "text/html; charset=utf-8", rr.Header().Get("Content-Type"))
	body := rr.Body.String()
	assert.Contains(t, body, "<!DOCTYPE html>")
	assert.Contains(t, body, `<h1>Seja bem vindo(a)</h1>`)
	assert.Contains(t, body, `type="hidden" name="_step" value="0"`)
	assert.Contains(t, body, `name="userType" value="CNPJ"`)
	assert.NotContains(t, body, `value="back"`)
}

func TestStepEndpoint_Branch(t *testing.T) {
	t.Parallel()
	router := newServer(t)

	rr := get(t, router, "/registration/steps/1?userType=CNPJ&NAME=Ana")

	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, `<h1>Pessoa jurídica</h1>`)
	assert.Contains(t, body, "Data de abertura")
	assert.Contains(t, body, `2 / 4`)
	assert.Contains(t, body, `type="hidden" name="_step" value="1"`)
	assert.Contains(t, body, `type="hidden" name="userType" value="CNPJ"`)
	assert.Contains(t, body, `value="Ana"`)
	assert.Contains(t, body, `value="back"`)
}

func TestStepEndpoint_Review(t *testing.T) {
	t.Parallel()
	router := newServer(t)

	rr := get(t, router, "/registration/steps/3?userType=CPF&EMAIL=ana@example.com&PASSWORD=supersecret")

	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, `value="ana@example.com"`)
	assert.Contains(t, body, `value="submit"`)
	assert.NotContains(t, body, "supersecret")
}

func TestStepEndpoint_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		target string
		status int
	}{
		{"/registration/steps/abc", http.StatusBadRequest},
		{"/registration/steps/-1", http.StatusBadRequest},
		{"/registration/steps/0?userType=RG", http.StatusBadRequest},
		{"/registration/steps/3", http.StatusNotFound},
		{"/registration/steps/4?userType=CPF", http.StatusNotFound},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.target, func(t *testing.T) {
			t.Parallel()
			router := newServer(t)

			rr := get(t, router, tt.target)

			assert.Equal(t, tt.status, rr.Code)
			assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
			assert.NotEmpty(t, decodeError(t, rr))
		})
	}
}

func TestStepEndpoint_Localized(t *testing.T) {
	t.Parallel()
	catalog := render.Catalog{
		"en": {
			render.StepTitleKey("STEP_3"):    "Password",
			render.FieldLabelKey("PASSWORD"): "Your password",
		},
	}
	router := newServer(t, server.WithRenderOptions(render.RenderOptions{Translator: catalog}))

	rr := get(t, router, "/registration/steps/2?locale=en-US")

	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, `<h1>Password</h1>`)
	assert.Contains(t, body, `>Your password</label>`)
}

func TestStepEndpoint_Formats(t *testing.T) {
	t.Parallel()
	router := newServer(t)

	rr := get(t, router, "/registration/steps/1?userType=CPF&format=tui&NAME=Ana")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "text/plain; charset=utf-8", rr.Header().Get("Content-Type"))
	assert.Contains(t, rr.Body.String(), "[2/4] Pessoa física")
	assert.Contains(t, rr.Body.String(), "Nome: Ana")

	rr = get(t, router, "/registration/steps/0?format=pdf")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
