package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"slices"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/goliatone/go-regwizard/pkg/model"
	"github.com/goliatone/go-regwizard/pkg/submission"
)

const maxBodyBytes = 64 << 10

// RegistrationRequest is the accepted body of POST /registration.
type RegistrationRequest struct {
	Email    string `json:"EMAIL" validate:"required"`
	UserType string `json:"userType,omitempty"`
	Name     string `json:"NAME" validate:"required"`
	Document string `json:"DOCUMENT" validate:"required"`
	Birth    string `json:"BIRTH" validate:"required"`
	Phone    string `json:"PHONE" validate:"required"`
	Password string `json:"PASSWORD" validate:"required"`
}

// Missing lists the required keys that are empty, in contract order.
func (req RegistrationRequest) Missing() []string {
	err := getValidator().Struct(req)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return slices.Clone(model.RequiredSubmissionFields)
	}
	missing := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		missing = append(missing, fe.Field())
	}
	slices.SortStableFunc(missing, func(a, b string) int {
		return slices.Index(model.RequiredSubmissionFields, a) - slices.Index(model.RequiredSubmissionFields, b)
	})
	return missing
}

func requestFromValues(values map[string]string) RegistrationRequest {
	return RegistrationRequest{
		Email:    values[model.FieldEmail],
		UserType: values[model.FieldUserType],
		Name:     values[model.FieldName],
		Document: values[model.FieldDocument],
		Birth:    values[model.FieldBirth],
		Phone:    values[model.FieldPhone],
		Password: values[model.FieldPassword],
	}
}

func (s *server) registrationHandler(w http.ResponseWriter, r *http.Request) {
	values, err := decodeRegistration(w, r)
	if err != nil {
		s.logger.Debug("registration body rejected", zap.Error(err))
		s.metrics.observeRegistration(OutcomeInvalidBody)
		writeErrorResponse(w, MessageInvalidJSON, http.StatusBadRequest)
		return
	}
	if isTransition(values) {
		s.stepTransition(w, r, values)
		return
	}

	req := requestFromValues(values)
	if missing := req.Missing(); len(missing) > 0 {
		s.metrics.observeRegistration(OutcomeMissingFields)
		writeErrorResponse(w, submission.MissingFieldsMessage(missing), http.StatusBadRequest)
		return
	}

	id := s.newID()
	s.logger.Info("registration received",
		zap.String("registration_id", id),
		zap.String("email", req.Email),
		zap.String("user_type", req.UserType),
		zap.String("name", req.Name),
		zap.String("document", req.Document),
		zap.String("birth", req.Birth),
		zap.String("phone", req.Phone),
	)

	if s.submitDelay > 0 {
		timer := time.NewTimer(s.submitDelay)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-r.Context().Done():
			s.metrics.observeRegistration(OutcomeCancelled)
			s.logger.Info("registration abandoned by client",
				zap.String("registration_id", id),
				zap.Error(r.Context().Err()),
			)
			return
		}
	}

	s.metrics.observeRegistration(OutcomeAccepted)
	w.Header().Set(HeaderRegistrationID, id)
	writeJSONResponse(w, MessageResponse{Message: MessageAccepted}, http.StatusOK)
}

// decodeRegistration reads a JSON object, or a urlencoded form posted by the
// HTML renderer, into string values. Non-string JSON values keep their text,
// except false, null and numbers equal to zero which count as empty.
func decodeRegistration(w http.ResponseWriter, r *http.Request) (map[string]string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	if mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type")); err == nil && mediaType == "application/x-www-form-urlencoded" {
		if err := r.ParseForm(); err != nil {
			return nil, fmt.Errorf("parse form: %w", err)
		}
		values := make(map[string]string, len(r.PostForm))
		for key := range r.PostForm {
			values[key] = r.PostForm.Get(key)
		}
		return values, nil
	}

	decoder := json.NewDecoder(r.Body)
	decoder.UseNumber()
	var raw map[string]any
	if err := decoder.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode json: %w", err)
	}
	if raw == nil {
		return nil, errors.New("decode json: body is not an object")
	}

	values := make(map[string]string, len(raw))
	for key, value := range raw {
		switch v := value.(type) {
		case string:
			values[key] = v
		case json.Number:
			if f, err := v.Float64(); err == nil && f == 0 {
				continue
			}
			values[key] = v.String()
		case bool:
			if v {
				values[key] = strconv.FormatBool(v)
			}
		case nil:
		default:
			// Objects and arrays are present values.
			encoded, _ := json.Marshal(v)
			values[key] = string(encoded)
		}
	}
	return values, nil
}
