package aws

import (
	"context"
	"errors"
	"strings"

	"github.com/aws/smithy-go"
)

// ErrNotFound marks the documented absent-resource conditions (stack does
// not exist, parameter not found) so callers can treat them as clean check
// failures rather than faults.
var ErrNotFound = errors.New("resource not found")

// Error wraps AWS service faults with a coarse classification
type Error struct {
	Type    ErrorType
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

type ErrorType string

const (
	ErrorTypeNotFound   ErrorType = "NOT_FOUND"
	ErrorTypePermission ErrorType = "PERMISSION_DENIED"
	ErrorTypeRateLimit  ErrorType = "RATE_LIMIT"
	ErrorTypeNetwork    ErrorType = "NETWORK_ERROR"
	ErrorTypeUnknown    ErrorType = "UNKNOWN_ERROR"
)

// notFoundError builds an Error that satisfies errors.Is(err, ErrNotFound).
func notFoundError(message string, cause error) *Error {
	return &Error{
		Type:    ErrorTypeNotFound,
		Message: message,
		Cause:   errors.Join(ErrNotFound, cause),
	}
}

// IsNotFound reports whether err is one of the documented absence conditions.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// isStackMissing detects CloudFormation's absent-stack signal. DescribeStacks
// has no typed not-found error; it raises a ValidationError whose message
// contains "does not exist".
func isStackMissing(err error) bool {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode() == "ValidationError" &&
			strings.Contains(apiErr.ErrorMessage(), "does not exist")
	}
	return false
}

// classifyError converts AWS errors to our error types
func classifyError(err error, region string) error {
	if err == nil {
		return nil
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "AccessDenied", "AccessDeniedException", "UnauthorizedOperation":
			return &Error{
				Type:    ErrorTypePermission,
				Message: "insufficient AWS permissions",
				Cause:   err,
			}
		case "Throttling", "ThrottlingException", "RequestLimitExceeded", "TooManyRequestsException":
			return &Error{
				Type:    ErrorTypeRateLimit,
				Message: "AWS API rate limit exceeded",
				Cause:   err,
			}
		}
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return &Error{
			Type:    ErrorTypeNetwork,
			Message: "request timeout or cancelled",
			Cause:   err,
		}
	}

	errMsg := err.Error()
	if strings.Contains(errMsg, "no such host") ||
		strings.Contains(errMsg, "connection refused") ||
		strings.Contains(errMsg, "timeout") {
		return &Error{
			Type:    ErrorTypeNetwork,
			Message: "network connectivity issue in region " + region,
			Cause:   err,
		}
	}

	return &Error{
		Type:    ErrorTypeUnknown,
		Message: "AWS API error",
		Cause:   err,
	}
}
