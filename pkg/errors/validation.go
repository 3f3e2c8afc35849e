package errors

import "errors"

// ValidationError reports a rejected parameter or configuration field: a
// compression level out of range, window bits selecting no framing, a
// malformed config value. It keeps the field name and the rejected value so
// the caller can say exactly what to fix.
type ValidationError struct {
	Value any    `json:"value"` // The rejected value.
	Field string `json:"field"` // The parameter or config field that was rejected.
	Err   error  `json:"error"` // The constraint that was violated.
}

// NewValidationError builds a ValidationError for field carrying the
// rejected value.
func NewValidationError(field string, value any, err error) *ValidationError {
	return &ValidationError{
		Err:   err,
		Field: field,
		Value: value,
	}
}

// Error returns the violated constraint's message.
func (e *ValidationError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return "validation error"
}

// IsValidationError reports whether err wraps a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// AsValidationError unwraps err to its ValidationError, or nil when err
// does not carry one.
func AsValidationError(err error) *ValidationError {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve
	}
	return nil
}
