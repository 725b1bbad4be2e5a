package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// GenericFailureMessage is shown when a failure carries no usable text.
const GenericFailureMessage = "Processing failed"

var (
	// ErrRefused marks a submission the state machine declined without side effects.
	ErrRefused = errors.New("submission refused")
	// ErrInFlight is returned while another execution is running.
	ErrInFlight = fmt.Errorf("%w: an execution is already running", ErrRefused)
	// ErrGateClosed is returned when no credential has been accepted.
	ErrGateClosed = fmt.Errorf("%w: credential required", ErrRefused)
	// ErrEmptySubmission is returned for blank input.
	ErrEmptySubmission = fmt.Errorf("%w: empty input", ErrRefused)
	// ErrExecutionNotFound means a ledger amendment targeted an unknown id.
	ErrExecutionNotFound = errors.New("execution not found")
	// ErrUnknownModel is returned when selecting an id missing from the catalog.
	ErrUnknownModel = errors.New("unknown model")
)

// FormatError rejects a malformed credential.
type FormatError struct {
	Reason string
}

func (e *FormatError) Error() string {
	return e.Reason
}

// BackendError is a non-2xx answer from the processing collaborator.
type BackendError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *BackendError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("unknown error (HTTP %d %s)", e.StatusCode, http.StatusText(e.StatusCode))
}

// TransportError means no response was received.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return "transport: " + e.Err.Error()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// DeserializationError means a response body could not be decoded.
type DeserializationError struct {
	Err error
}

func (e *DeserializationError) Error() string {
	return "decode response: " + e.Err.Error()
}

func (e *DeserializationError) Unwrap() error {
	return e.Err
}

// FailureMessage collapses any dispatch failure into the one line shown to the user.
func FailureMessage(err error) string {
	if err == nil {
		return GenericFailureMessage
	}
	var backendErr *BackendError
	if errors.As(err, &backendErr) && backendErr.Message != "" {
		return backendErr.Message
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return GenericFailureMessage
}
