package validation

import (
	"errors"
	"fmt"
)

// Kind classifies why a reservation was rejected.
type Kind string

const (
	KindMissingField     Kind = "missing_field"
	KindInvalidLength    Kind = "invalid_length"
	KindInvalidFormat    Kind = "invalid_format"
	KindNonPositiveCount Kind = "non_positive_count"
	KindUnknownTable     Kind = "unknown_table"
	KindPastDate         Kind = "past_date"
	KindOutOfHours       Kind = "out_of_hours"
	KindConflict         Kind = "conflict"
	KindNotFound         Kind = "not_found"
)

// ValidationError is a recoverable rejection meant to be shown to the user.
type ValidationError struct {
	Kind    Kind
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s (%s): %s", e.Kind, e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// KindOf returns the kind of a *ValidationError anywhere in err's chain,
// or the empty Kind.
func KindOf(err error) Kind {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Kind
	}
	return ""
}

func missing(field, msg string) *ValidationError {
	return &ValidationError{Kind: KindMissingField, Field: field, Message: msg}
}

func invalidLength(field, msg string) *ValidationError {
	return &ValidationError{Kind: KindInvalidLength, Field: field, Message: msg}
}

func invalidFormat(field, msg string) *ValidationError {
	return &ValidationError{Kind: KindInvalidFormat, Field: field, Message: msg}
}

// NotFound reports that the reservation being edited no longer exists.
func NotFound(id int64) *ValidationError {
	return &ValidationError{Kind: KindNotFound, Message: fmt.Sprintf("No se encontró la reserva %d", id)}
}
