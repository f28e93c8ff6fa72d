package wizard

import "errors"

var (
	// ErrReadOnly is returned for edits and submissions in view mode.
	ErrReadOnly = errors.New("wizard is read-only")
	// ErrNotFinalStep is returned when submitting before the features step.
	ErrNotFinalStep = errors.New("submission is only available from the features step")
	// ErrSubmitInFlight is returned while a submission is pending.
	ErrSubmitInFlight = errors.New("a submission is already in progress")
	// ErrClosed is returned once the wizard has been closed or has submitted.
	ErrClosed = errors.New("wizard is closed")
	// ErrUnknownField is returned for edits to undeclared fields or flags.
	ErrUnknownField = errors.New("unknown field")
)

// DefaultSubmissionMessage is shown when a remote failure carries no message.
const DefaultSubmissionMessage = "Failed to save the vehicle variant. Please try again."

// SubmissionError is a failure reported by the backing store. The wizard
// keeps its state so the user can retry.
type SubmissionError struct {
	Message string
	Err     error
}

func (e *SubmissionError) Error() string { return e.Message }

func (e *SubmissionError) Unwrap() error { return e.Err }

func newSubmissionError(err error) *SubmissionError {
	msg := DefaultSubmissionMessage
	if s := err.Error(); s != "" {
		msg = s
	}
	return &SubmissionError{Message: msg, Err: err}
}
