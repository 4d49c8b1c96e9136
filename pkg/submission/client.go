// Package submission sends completed registrations to the backend endpoint.
package submission

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/goliatone/go-regwizard/pkg/model"
)

// DefaultPath is the registration endpoint relative to the base URL.
const DefaultPath = "/registration"

// HeaderRegistrationID carries the id the backend assigned to an accepted
// registration.
const HeaderRegistrationID = "X-Registration-ID"

// maxErrorBody bounds how much of an unexpected response is kept.
const maxErrorBody = 4 << 10

// Response is a 200 answer.
type Response struct {
	Message        string `json:"message"`
	RegistrationID string `json:"-"`
}

// Submitter delivers a completed registration.
type Submitter interface {
	Submit(ctx context.Context, data model.FormData) (Response, error)
}

// Option configures an HTTPClient.
type Option func(*HTTPClient)

// WithHTTPClient overrides http.DefaultClient. Timeouts and retries are the
// supplied client's concern.
func WithHTTPClient(client *http.Client) Option {
	return func(c *HTTPClient) {
		if client != nil {
			c.http = client
		}
	}
}

// WithPath overrides DefaultPath.
func WithPath(path string) Option {
	return func(c *HTTPClient) {
		if trimmed := strings.TrimSpace(path); trimmed != "" {
			c.path = trimmed
		}
	}
}

// HTTPClient posts registrations as JSON.
type HTTPClient struct {
	http     *http.Client
	endpoint string
	path     string
}

var _ Submitter = (*HTTPClient)(nil)

// NewHTTPClient builds a client for the backend at baseURL.
func NewHTTPClient(baseURL string, options ...Option) (*HTTPClient, error) {
	c := &HTTPClient{http: http.DefaultClient, path: DefaultPath}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(c)
	}

	base, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return nil, fmt.Errorf("submission: parse base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("submission: base url %q must be absolute", baseURL)
	}
	c.endpoint = base.JoinPath(c.path).String()
	return c, nil
}

// Endpoint returns the URL registrations are posted to.
func (c *HTTPClient) Endpoint() string {
	return c.endpoint
}

// Submit posts Payload(data). A 400 answer yields a *RejectedError and any
// other non-200 answer a *StatusError.
func (c *HTTPClient) Submit(ctx context.Context, data model.FormData) (Response, error) {
	body, err := json.Marshal(Payload(data))
	if err != nil {
		return Response{}, fmt.Errorf("submission: encode: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return Response{}, fmt.Errorf("submission: request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return Response{}, fmt.Errorf("submission: do request: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		var out Response
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			return Response{}, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
		}
		out.RegistrationID = resp.Header.Get(HeaderRegistrationID)
		return out, nil
	case http.StatusBadRequest:
		var payload struct {
			Error string `json:"error"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
			return Response{}, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
		}
		return Response{}, &RejectedError{
			Message: payload.Error,
			Missing: ParseMissingFields(payload.Error),
		}
	default:
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return Response{}, &StatusError{
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(raw)),
		}
	}
}

// Payload returns the keys the endpoint accepts: the required fields and the
// user type. Other keys in data are not sent.
func Payload(data model.FormData) map[string]string {
	out := make(map[string]string, len(model.RequiredSubmissionFields)+1)
	for _, name := range model.RequiredSubmissionFields {
		out[name] = data[name]
	}
	if userType, ok := data[model.FieldUserType]; ok {
		out[model.FieldUserType] = userType
	}
	return out
}

// Func adapts s to the submit callback of a wizard flow. onResponse, when
// set, receives every accepted registration.
func Func(s Submitter, onResponse func(Response)) func(context.Context, model.FormData) error {
	return func(ctx context.Context, data model.FormData) error {
		if s == nil {
			return errors.New("submission: submitter is nil")
		}
		resp, err := s.Submit(ctx, data)
		if err != nil {
			return err
		}
		if onResponse != nil {
			onResponse(resp)
		}
		return nil
	}
}
