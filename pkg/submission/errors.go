package submission

import (
	"errors"
	"fmt"
	"strings"
)

// MissingFieldsPrefix starts the error message of a 400 response listing
// absent required fields, followed by their names joined with ", ".
const MissingFieldsPrefix = "Campos obrigatórios faltando: "

// ErrInvalidResponse is returned when the backend answers with a body the
// client cannot decode.
var ErrInvalidResponse = errors.New("submission: invalid response body")

// RejectedError is a 400 answer from the registration endpoint.
type RejectedError struct {
	Message string
	// Missing lists the required fields the backend reported absent, in the
	// order it reported them. Empty when the message has another shape.
	Missing []string
}

func (e *RejectedError) Error() string {
	return "submission: rejected: " + e.Message
}

// StatusError is any non-200, non-400 answer.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("submission: unexpected status %d", e.StatusCode)
	}
	return fmt.Sprintf("submission: unexpected status %d: %s", e.StatusCode, e.Body)
}

// MissingFieldsMessage formats the rejection message for names.
func MissingFieldsMessage(names []string) string {
	return MissingFieldsPrefix + strings.Join(names, ", ")
}

// ParseMissingFields extracts the field names from a message built by
// MissingFieldsMessage.
func ParseMissingFields(message string) []string {
	rest, ok := strings.CutPrefix(message, MissingFieldsPrefix)
	if !ok {
		return nil
	}
	var names []string
	for _, part := range strings.Split(rest, ",") {
		if name := strings.TrimSpace(part); name != "" {
			names = append(names, name)
		}
	}
	return names
}
