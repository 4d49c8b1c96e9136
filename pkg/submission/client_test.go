package submission_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-regwizard/pkg/model"
	"github.com/goliatone/go-regwizard/pkg/submission"
	"github.com/goliatone/go-regwizard/pkg/testsupport"
)

func TestHTTPClient_Accepted(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/registration", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set(submission.HeaderRegistrationID, "reg-1")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"message":"Cadastro recebido com sucesso!"}`))
	}))
	defer srv.Close()

	client, err := submission.NewHTTPClient(srv.URL+"/api", submission.WithHTTPClient(srv.Client()))
	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/api/registration", client.Endpoint())

	data := testsupport.Answers(model.UserTypeCPF)
	data["EXTRA"] = "dropped"

	resp, err := client.Submit(context.Background(), data)
	require.NoError(t, err)
	assert.Equal(t, "Cadastro recebido com sucesso!", resp.Message)
	assert.Equal(t, "reg-1", resp.RegistrationID)

	want := testsupport.Answers(model.UserTypeCPF)
	assert.Equal(t, map[string]string(want), got)
}

func TestHTTPClient_Rejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"Campos obrigatórios faltando: PHONE, PASSWORD"}`))
	}))
	defer srv.Close()

	client, err := submission.NewHTTPClient(srv.URL)
	require.NoError(t, err)

	_, err = client.Submit(context.Background(), model.FormData{})
	var rejected *submission.RejectedError
	require.True(t, errors.As(err, &rejected), "expected RejectedError, got %v", err)
	assert.Equal(t, "Campos obrigatórios faltando: PHONE, PASSWORD", rejected.Message)
	assert.Equal(t, []string{model.FieldPhone, model.FieldPassword}, rejected.Missing)
}

func TestHTTPClient_UnexpectedStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	client, err := submission.NewHTTPClient(srv.URL)
	require.NoError(t, err)

	_, err = client.Submit(context.Background(), testsupport.Answers(model.UserTypeCNPJ))
	var status *submission.StatusError
	require.True(t, errors.As(err, &status), "expected StatusError, got %v", err)
	assert.Equal(t, http.StatusBadGateway, status.StatusCode)
	assert.Equal(t, "boom", status.Body)
}

func TestHTTPClient_InvalidBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	client, err := submission.NewHTTPClient(srv.URL)
	require.NoError(t, err)

	_, err = client.Submit(context.Background(), model.FormData{})
	assert.ErrorIs(t, err, submission.ErrInvalidResponse)
}

func TestHTTPClient_HonoursContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client, err := submission.NewHTTPClient(srv.URL)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = client.Submit(ctx, model.FormData{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewHTTPClient_RequiresAbsoluteURL(t *testing.T) {
	_, err := submission.NewHTTPClient("localhost:3000")
	assert.Error(t, err)
	_, err = submission.NewHTTPClient("/registration")
	assert.Error(t, err)
}

func TestPayload(t *testing.T) {
	payload := submission.Payload(model.FormData{model.FieldEmail: "a@example.com"})
	assert.Len(t, payload, len(model.RequiredSubmissionFields))
	assert.Equal(t, "a@example.com", payload[model.FieldEmail])
	assert.Equal(t, "", payload[model.FieldPassword])
	_, hasUserType := payload[model.FieldUserType]
	assert.False(t, hasUserType)
}

type fakeSubmitter struct {
	resp submission.Response
	err  error
}

func (f fakeSubmitter) Submit(context.Context, model.FormData) (submission.Response, error) {
	return f.resp, f.err
}

func TestFunc(t *testing.T) {
	var seen []submission.Response
	fn := submission.Func(fakeSubmitter{resp: submission.Response{Message: "ok"}}, func(r submission.Response) {
		seen = append(seen, r)
	})
	require.NoError(t, fn(context.Background(), nil))
	assert.Equal(t, []submission.Response{{Message: "ok"}}, seen)

	fn = submission.Func(fakeSubmitter{err: errors.New("down")}, nil)
	assert.EqualError(t, fn(context.Background(), nil), "down")

	assert.Error(t, submission.Func(nil, nil)(context.Background(), nil))
}

func TestParseMissingFields(t *testing.T) {
	msg := submission.MissingFieldsMessage([]string{"EMAIL", "BIRTH"})
	assert.Equal(t, "Campos obrigatórios faltando: EMAIL, BIRTH", msg)
	assert.Equal(t, []string{"EMAIL", "BIRTH"}, submission.ParseMissingFields(msg))
	assert.Nil(t, submission.ParseMissingFields("JSON inválido"))
}
