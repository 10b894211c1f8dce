package core

import "github.com/pkg/errors"

// FieldError attributes a validation failure to a single input field,
// addressed by the field's JSON name.
type FieldError struct {
	Field string
	Error string
}

// ValidationError is a user-correctable failure. Delivery layers render the
// Fields map as a 400 response when it is set; Err carries the summary text.
type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

// NewFieldValidationError reports a single-field failure; msg serves as both
// the summary text and the field's message.
func NewFieldValidationError(field, msg string) error {
	return NewValidationError(errors.New(msg), FieldError{Field: field, Error: msg})
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		return ""
	}
	return err.Err.Error()
}

// shutdown marks an infrastructure failure the gateway cannot work through,
// such as the session store going away. The HTTP error handler reacts to it
// by triggering a graceful shutdown.
type shutdown struct {
	message string
}

func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s shutdown) Error() string {
	return s.message
}

func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}
