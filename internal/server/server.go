// Package server provides the HTTP backend of the registration wizard: the
// submission endpoint, HTML step rendering, the OpenAPI contract, health and
// metrics.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/goliatone/go-regwizard/pkg/openapi"
	"github.com/goliatone/go-regwizard/pkg/orchestrator"
	"github.com/goliatone/go-regwizard/pkg/render"
	"github.com/goliatone/go-regwizard/pkg/renderers/html"
	"github.com/goliatone/go-regwizard/pkg/renderers/tui"
	"github.com/goliatone/go-regwizard/pkg/stepdef"
)

// MessageAccepted is the body message of a successful submission.
const MessageAccepted = "Cadastro recebido com sucesso!"

// MessageInvalidJSON is the error of a body that cannot be decoded.
const MessageInvalidJSON = "JSON inválido"

// HeaderRegistrationID carries the identifier assigned to an accepted
// registration.
const HeaderRegistrationID = "X-Registration-ID"

// Option configures the server.
type Option func(*serverConfig)

type serverConfig struct {
	middlewares   []func(http.Handler) http.Handler
	logger        *zap.Logger
	submitDelay   time.Duration
	contract      *openapi.Document
	definition    *stepdef.Definition
	orchestrator  *orchestrator.Orchestrator
	renderOptions render.RenderOptions
	metrics       *Metrics
	newID         func() string
}

// WithMiddlewares adds middleware to the router.
func WithMiddlewares(mw ...func(http.Handler) http.Handler) Option {
	return func(cfg *serverConfig) {
		cfg.middlewares = append(cfg.middlewares, mw...)
	}
}

// WithLogger sets the logger used by handlers.
func WithLogger(logger *zap.Logger) Option {
	return func(cfg *serverConfig) {
		if logger != nil {
			cfg.logger = logger
		}
	}
}

// WithSubmitDelay makes POST /registration wait d before answering.
func WithSubmitDelay(d time.Duration) Option {
	return func(cfg *serverConfig) {
		if d >= 0 {
			cfg.submitDelay = d
		}
	}
}

// WithContract serves doc on /openapi.json instead of the embedded contract.
func WithContract(doc *openapi.Document) Option {
	return func(cfg *serverConfig) {
		cfg.contract = doc
	}
}

// WithDefinition renders steps from def instead of the embedded flow.
func WithDefinition(def stepdef.Definition) Option {
	return func(cfg *serverConfig) {
		clone := def.Clone()
		cfg.definition = &clone
	}
}

// WithOrchestrator renders steps through o. WithDefinition is ignored when
// set.
func WithOrchestrator(o *orchestrator.Orchestrator) Option {
	return func(cfg *serverConfig) {
		if o != nil {
			cfg.orchestrator = o
		}
	}
}

// WithRenderOptions sets the locale and translator used for rendered steps.
func WithRenderOptions(opts render.RenderOptions) Option {
	return func(cfg *serverConfig) {
		cfg.renderOptions = opts
	}
}

// WithMetrics records request and registration metrics on m.
func WithMetrics(m *Metrics) Option {
	return func(cfg *serverConfig) {
		cfg.metrics = m
	}
}

// WithIDGenerator overrides how registration ids are assigned.
func WithIDGenerator(fn func() string) Option {
	return func(cfg *serverConfig) {
		if fn != nil {
			cfg.newID = fn
		}
	}
}

type server struct {
	logger        *zap.Logger
	submitDelay   time.Duration
	contractJSON  []byte
	orchestrator  *orchestrator.Orchestrator
	renderOptions render.RenderOptions
	metrics       *Metrics
	newID         func() string
}

// New creates the router with every endpoint mounted.
func New(opts ...Option) (*chi.Mux, error) {
	cfg := &serverConfig{
		logger: zap.NewNop(),
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}

	if cfg.contract == nil {
		doc, err := openapi.Default(context.Background())
		if err != nil {
			return nil, fmt.Errorf("server: load contract: %w", err)
		}
		cfg.contract = doc
	}
	contractJSON, err := cfg.contract.JSON()
	if err != nil {
		return nil, fmt.Errorf("server: encode contract: %w", err)
	}

	if cfg.orchestrator == nil {
		o, err := defaultOrchestrator(cfg.definition)
		if err != nil {
			return nil, err
		}
		cfg.orchestrator = o
	}

	s := &server{
		logger:        cfg.logger,
		submitDelay:   cfg.submitDelay,
		contractJSON:  contractJSON,
		orchestrator:  cfg.orchestrator,
		renderOptions: cfg.renderOptions,
		metrics:       cfg.metrics,
		newID:         cfg.newID,
	}

	r := chi.NewRouter()
	for _, mw := range cfg.middlewares {
		r.Use(mw)
	}
	if s.metrics != nil {
		r.Use(s.metrics.Middleware)
		r.Handle("/metrics", s.metrics.Handler())
	}

	r.Get("/healthz", healthHandler)
	r.Get("/openapi.json", s.openAPIHandler)

	r.Route("/registration", func(r chi.Router) {
		r.Get("/", s.entryHandler)
		r.Post("/", s.registrationHandler)
		r.Get("/steps/{index}", s.stepHandler)
	})

	return r, nil
}

// defaultOrchestrator serves full HTML pages and plain text summaries.
func defaultOrchestrator(def *stepdef.Definition) (*orchestrator.Orchestrator, error) {
	page, err := html.New(html.WithPage(true))
	if err != nil {
		return nil, fmt.Errorf("server: html renderer: %w", err)
	}
	text, err := tui.New()
	if err != nil {
		return nil, fmt.Errorf("server: text renderer: %w", err)
	}
	opts := []orchestrator.Option{
		orchestrator.WithRegistry(render.NewRegistry(page, text)),
		orchestrator.WithDefaultRenderer(html.Name),
	}
	if def != nil {
		if len(def.Steps) == 0 {
			return nil, errors.New("server: step definition has no steps")
		}
		opts = append(opts, orchestrator.WithDefinition(*def))
	}
	return orchestrator.New(opts...), nil
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	writeJSONResponse(w, map[string]string{"status": "ok"}, http.StatusOK)
}

func (s *server) openAPIHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(s.contractJSON)
}
