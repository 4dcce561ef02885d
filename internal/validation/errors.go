package validation

import (
	"errors"
	"strings"
)

// Kind identifies which rule a field failed.
type Kind string

const (
	// KindPresence is reported when a required field is blank.
	KindPresence Kind = "presence"
	// KindFormat is reported when a field does not match its expected pattern.
	KindFormat Kind = "format"
	// KindUniqueness is reported when another record already holds the value.
	KindUniqueness Kind = "uniqueness"
	// KindLength is reported when a field is shorter than its minimum length.
	KindLength Kind = "length"
)

// Messages reported for each rule.
const (
	MsgBlank    = "can't be blank"
	MsgInvalid  = "is invalid"
	MsgTaken    = "has already been taken"
	MsgTooShort = "is too short (minimum is %s characters)"
	// MsgNotDerived is reported on a slug that could not be folded from the name.
	MsgNotDerived = "can't be derived from the name; give one explicitly"
)

var (
	// ErrPresence is the sentinel every presence failure unwraps to.
	ErrPresence = errors.New("presence validation failed")
	// ErrFormat is the sentinel every format failure unwraps to.
	ErrFormat = errors.New("format validation failed")
	// ErrUniqueness is the sentinel every uniqueness failure unwraps to.
	ErrUniqueness = errors.New("uniqueness validation failed")
	// ErrLength is the sentinel every length failure unwraps to.
	ErrLength = errors.New("length validation failed")
)

// FieldError is a single field/message failure.
type FieldError struct {
	Field   string
	Kind    Kind
	Message string
}

// Error implements the error interface.
func (e FieldError) Error() string {
	return e.Field + " " + e.Message
}

// Unwrap returns the sentinel matching the failure kind.
func (e FieldError) Unwrap() error {
	switch e.Kind {
	case KindPresence:
		return ErrPresence
	case KindFormat:
		return ErrFormat
	case KindUniqueness:
		return ErrUniqueness
	case KindLength:
		return ErrLength
	default:
		return nil
	}
}

// Errors is the structured list of failures for one record.
// A record is valid iff its Errors list is empty.
type Errors []FieldError

// Error implements the error interface.
func (e Errors) Error() string {
	parts := make([]string, 0, len(e))
	for _, fe := range e {
		parts = append(parts, fe.Error())
	}

	return "validation failed: " + strings.Join(parts, ", ")
}

// Unwrap exposes every field error so errors.Is and errors.As see them.
func (e Errors) Unwrap() []error {
	out := make([]error, 0, len(e))
	for _, fe := range e {
		out = append(out, fe)
	}

	return out
}

// Add appends a failure.
func (e *Errors) Add(field string, kind Kind, message string) {
	*e = append(*e, FieldError{Field: field, Kind: kind, Message: message})
}

// Without returns the failures not reported on field.
func (e Errors) Without(field string) Errors {
	var out Errors

	for _, fe := range e {
		if fe.Field != field {
			out = append(out, fe)
		}
	}

	return out
}

// On returns the messages reported for field.
func (e Errors) On(field string) []string {
	var out []string

	for _, fe := range e {
		if fe.Field == field {
			out = append(out, fe.Message)
		}
	}

	return out
}

// Has reports whether field failed with the given kind.
func (e Errors) Has(field string, kind Kind) bool {
	for _, fe := range e {
		if fe.Field == field && fe.Kind == kind {
			return true
		}
	}

	return false
}

// OrNil returns nil for an empty list, so callers can return it as an error.
func (e Errors) OrNil() error {
	if len(e) == 0 {
		return nil
	}

	return e
}

// As extracts Errors from err.
func As(err error) (Errors, bool) {
	var verrs Errors
	if errors.As(err, &verrs) {
		return verrs, true
	}

	return nil, false
}
