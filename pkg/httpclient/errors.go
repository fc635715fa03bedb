package httpclient

import (
	"errors"
	"fmt"
	"net/http"
)

// Common errors returned by the client.
var (
	// ErrRetryExhausted is returned when all retry attempts are exhausted.
	ErrRetryExhausted = errors.New("retry attempts exhausted")
)

// ErrorClass represents a classification of failed calls.
type ErrorClass string

const (
	// ErrorClassClient represents 4xx client errors.
	ErrorClassClient ErrorClass = "client"

	// ErrorClassServer represents 5xx server errors.
	ErrorClassServer ErrorClass = "server"

	// ErrorClassNetwork represents network/timeout errors.
	ErrorClassNetwork ErrorClass = "network"

	// ErrorClassDecode represents a 2xx response whose body could not be decoded.
	ErrorClassDecode ErrorClass = "decode"
)

// UnknownErrorMessage is used when neither the upstream nor the transport supplied a message.
const UnknownErrorMessage = "Unknown error"

// UpstreamError represents a failed upstream call with additional context.
type UpstreamError struct {
	StatusCode int
	Class      ErrorClass
	Message    string
	Err        error
}

// Error implements the error interface.
func (e *UpstreamError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("upstream %s error (status %d): %s: %v",
			e.Class, e.StatusCode, e.Message, e.Err)
	}
	return fmt.Sprintf("upstream %s error (status %d): %s",
		e.Class, e.StatusCode, e.Message)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// classifyStatus maps an HTTP status code to an error class.
// Successful codes have no class.
func classifyStatus(statusCode int) ErrorClass {
	switch {
	case statusCode >= 400 && statusCode < 500:
		return ErrorClassClient
	case statusCode >= 500:
		return ErrorClassServer
	default:
		return ""
	}
}

// shouldRetry reports whether a failure of the given class goes around the retry loop again.
// Client errors are retried too.
func shouldRetry(errorClass ErrorClass) bool {
	switch errorClass {
	case ErrorClassClient, ErrorClassServer, ErrorClassNetwork:
		return true
	default:
		return false
	}
}

// toUpstreamError normalizes any error into an *UpstreamError.
// A missing status code defaults to 500 and a missing message to UnknownErrorMessage.
func toUpstreamError(err error) *UpstreamError {
	var upErr *UpstreamError
	if errors.As(err, &upErr) {
		out := *upErr
		if out.StatusCode == 0 {
			out.StatusCode = http.StatusInternalServerError
		}
		if out.Message == "" {
			out.Message = UnknownErrorMessage
		}
		return &out
	}

	msg := UnknownErrorMessage
	if err != nil && err.Error() != "" {
		msg = err.Error()
	}
	return &UpstreamError{
		StatusCode: http.StatusInternalServerError,
		Class:      ErrorClassNetwork,
		Message:    msg,
		Err:        err,
	}
}
