package validation

import "strings"

// Errors maps field names to ordered, de-duplicated messages. An empty map
// means the values passed.
type Errors map[string][]string

// Add appends a message for field, ignoring blanks and repeats.
func (e Errors) Add(field, message string) {
	message = strings.TrimSpace(message)
	if message == "" {
		return
	}
	for _, existing := range e[field] {
		if existing == message {
			return
		}
	}
	e[field] = append(e[field], message)
}

// Empty reports whether no field failed.
func (e Errors) Empty() bool {
	return len(e) == 0
}

// First returns the first message recorded for field.
func (e Errors) First(field string) string {
	if msgs := e[field]; len(msgs) > 0 {
		return msgs[0]
	}
	return ""
}

// Clone returns a deep copy. The result is never nil.
func (e Errors) Clone() Errors {
	out := make(Errors, len(e))
	for field, msgs := range e {
		out[field] = append([]string(nil), msgs...)
	}
	return out
}
