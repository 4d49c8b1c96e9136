package server

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/goliatone/go-regwizard/pkg/model"
	"github.com/goliatone/go-regwizard/pkg/orchestrator"
	"github.com/goliatone/go-regwizard/pkg/render"
)

// FieldAction names the button pressed on an HTML step form.
const FieldAction = "_action"

// Values of FieldAction. Any other value, or none, is a final submission.
const (
	ActionNext   = "next"
	ActionBack   = "back"
	ActionSubmit = "submit"
)

// isTransition reports whether values move between steps instead of
// submitting the registration.
func isTransition(values map[string]string) bool {
	switch values[FieldAction] {
	case ActionNext, ActionBack:
		return true
	}
	return false
}

// stepTransition handles next and back posted by the HTML renderer. Next
// validates the posted step and re-renders it with errors, or renders the
// following step. Back renders the previous step without validating. Both
// carry every answer received so far as hidden inputs.
func (s *server) stepTransition(w http.ResponseWriter, r *http.Request, values map[string]string) {
	index, err := strconv.Atoi(strings.TrimSpace(values[render.HiddenStep]))
	if err != nil || index < 0 {
		writeErrorResponse(w, msgInvalidStepIndex, http.StatusBadRequest)
		return
	}

	var userType model.UserType
	if raw := strings.TrimSpace(values[model.FieldUserType]); raw != "" {
		ut, err := model.ParseUserType(raw)
		if err != nil {
			writeErrorResponse(w, msgInvalidUserType+raw, http.StatusBadRequest)
			return
		}
		userType = ut
	}

	answers := make(map[string]string, len(values))
	for key, value := range values {
		if !strings.HasPrefix(key, "_") {
			answers[key] = value
		}
	}
	req := orchestrator.Request{
		StepIndex: index,
		UserType:  userType,
		Values:    answers,
		Carry:     true,
	}

	action := values[FieldAction]
	if action == ActionBack {
		req.StepIndex = max(index-1, 0)
		s.logger.Debug("wizard step back", zap.Int("from", index), zap.Int("to", req.StepIndex))
		s.writeStep(w, r, req, http.StatusOK)
		return
	}

	errs, err := s.orchestrator.StepErrors(r.Context(), req)
	if err != nil {
		if errors.Is(err, orchestrator.ErrStepNotFound) {
			writeErrorResponse(w, msgStepNotFound, http.StatusNotFound)
			return
		}
		s.logger.Error("validate step", zap.Int("index", index), zap.Error(err))
		writeErrorResponse(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	if !errs.Empty() {
		s.logger.Debug("wizard step rejected", zap.Int("index", index), zap.Int("fields", len(errs)))
		req.Validate = true
		s.writeStep(w, r, req, http.StatusUnprocessableEntity)
		return
	}

	req.StepIndex = index + 1
	s.logger.Debug("wizard step accepted", zap.Int("from", index), zap.Int("to", req.StepIndex))
	s.writeStep(w, r, req, http.StatusOK)
}
