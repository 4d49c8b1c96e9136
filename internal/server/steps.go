package server

import (
	"errors"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/goliatone/go-regwizard/pkg/model"
	"github.com/goliatone/go-regwizard/pkg/orchestrator"
	"github.com/goliatone/go-regwizard/pkg/render"
)

// Query parameters understood by the step endpoints besides field names.
const (
	QueryFormat = "format"
	QueryLocale = "locale"
)

const (
	msgInvalidStepIndex = "índice de etapa inválido"
	msgStepNotFound     = "etapa não encontrada"
	msgInvalidUserType  = "tipo de usuário inválido: "
	msgUnknownFormat    = "formato desconhecido: "
)

func (s *server) entryHandler(w http.ResponseWriter, r *http.Request) {
	s.renderStep(w, r, 0)
}

func (s *server) stepHandler(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil || index < 0 {
		writeErrorResponse(w, msgInvalidStepIndex, http.StatusBadRequest)
		return
	}
	s.renderStep(w, r, index)
}

// renderStep renders step index. The userType query parameter selects the
// branch, query values named after fields prefill the step, and format or the
// Accept header picks a registered renderer.
func (s *server) renderStep(w http.ResponseWriter, r *http.Request, index int) {
	query := r.URL.Query()

	var userType model.UserType
	if raw := strings.TrimSpace(query.Get(model.FieldUserType)); raw != "" {
		ut, err := model.ParseUserType(raw)
		if err != nil {
			writeErrorResponse(w, msgInvalidUserType+raw, http.StatusBadRequest)
			return
		}
		userType = ut
	}

	values := make(map[string]string, len(query))
	for key := range query {
		values[key] = query.Get(key)
	}

	s.writeStep(w, r, orchestrator.Request{
		StepIndex: index,
		UserType:  userType,
		Values:    values,
	}, http.StatusOK)
}

// writeStep renders req with the negotiated renderer and writes it with
// status.
func (s *server) writeStep(w http.ResponseWriter, r *http.Request, req orchestrator.Request, status int) {
	renderer, err := s.negotiate(r)
	if err != nil {
		writeErrorResponse(w, msgUnknownFormat+r.URL.Query().Get(QueryFormat), http.StatusBadRequest)
		return
	}

	req.Renderer = renderer.Name()
	req.RenderOptions = s.renderOptions
	if locale := strings.TrimSpace(r.URL.Query().Get(QueryLocale)); locale != "" {
		req.RenderOptions.Locale = locale
	}

	body, err := s.orchestrator.Generate(r.Context(), req)
	if err != nil {
		if errors.Is(err, orchestrator.ErrStepNotFound) {
			writeErrorResponse(w, msgStepNotFound, http.StatusNotFound)
			return
		}
		s.logger.Error("render step", zap.Int("index", req.StepIndex), zap.Error(err))
		writeErrorResponse(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", renderer.ContentType())
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// negotiate picks the renderer named by the format query parameter, else the
// first Accept media type a renderer produces, else the default renderer.
// Wildcards fall through to the default.
func (s *server) negotiate(r *http.Request) (render.Renderer, error) {
	if format := r.URL.Query().Get(QueryFormat); format != "" {
		return s.orchestrator.Renderer(format)
	}
	for _, part := range strings.Split(r.Header.Get("Accept"), ",") {
		mt, _, err := mime.ParseMediaType(part)
		if err != nil || strings.HasSuffix(mt, "/*") {
			continue
		}
		if renderer, ok := s.orchestrator.RendererFor(mt); ok {
			return renderer, nil
		}
	}
	return s.orchestrator.Renderer("")
}
