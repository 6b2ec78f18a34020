package verifier

import "fmt"

// StageError represents a verification stage that reported failure. Subject
// carries the diagnostic context (stack name, parameter name, endpoint URL)
// so the failure can be understood without re-running.
type StageError struct {
	Stage   string
	Subject string
	Cause   error
}

func (e *StageError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s failed for %q: %v", e.Stage, e.Subject, e.Cause)
	}
	return fmt.Sprintf("%s failed for %q", e.Stage, e.Subject)
}

func (e *StageError) Unwrap() error {
	return e.Cause
}

// NewStageError creates a new stage error
func NewStageError(stage, subject string, cause error) *StageError {
	return &StageError{
		Stage:   stage,
		Subject: subject,
		Cause:   cause,
	}
}
