package ledger

import "errors"

// ErrValidation is wrapped by every rejected mutation.
var ErrValidation = errors.New("ValidationFailed")

var (
	ErrBlankItem          = errors.New("item is blank")
	ErrNoConsumers        = errors.New("no consumers selected")
	ErrUnknownParticipant = errors.New("not a participant")
	ErrInvalidAmount      = errors.New("amount is not a valid number")
)

// ValidationError describes which field was refused.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return ErrValidation.Error() + ": " + e.Field + ": " + e.Err.Error()
}

func (e *ValidationError) Unwrap() []error {
	return []error{ErrValidation, e.Err}
}

func invalid(field string, err error) error {
	return &ValidationError{Field: field, Err: err}
}
