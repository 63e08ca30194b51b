package httpclient

import (
	"errors"
	"fmt"
	"net/http"

	"restpki-batch/internal/domain/entity"
)

// ErrUnreachable is returned when REST PKI could not be reached at all
var ErrUnreachable = errors.New("REST PKI unreachable")

// ValidationErrorCode is the REST PKI error code carrying validation results
const ValidationErrorCode = "ValidationError"

// RestError is a non-2xx answer from REST PKI.
type RestError struct {
	Method     string
	URL        string
	StatusCode int

	// Code and Detail are set when REST PKI reported its own error (HTTP 422)
	Code              string
	Detail            string
	Message           string
	ValidationResults *entity.ValidationResults
}

func (e *RestError) Error() string {
	switch {
	case e.ValidationResults != nil:
		return fmt.Sprintf("REST PKI action %s %s validation failed: %s", e.Method, e.URL, e.ValidationResults.Summary())
	case e.Code != "":
		msg := fmt.Sprintf("REST PKI action %s %s error: %s", e.Method, e.URL, e.Code)
		if e.Detail != "" {
			msg += " (" + e.Detail + ")"
		}
		return msg
	default:
		msg := fmt.Sprintf("REST action %s %s returned HTTP error %d", e.Method, e.URL, e.StatusCode)
		if e.Message != "" {
			msg += ": " + e.Message
		}
		return msg
	}
}

// IsValidationError reports whether REST PKI rejected the request after validating it
func (e *RestError) IsValidationError() bool {
	return e.ValidationResults != nil
}

// IsClientError reports whether the request itself was refused (4xx)
func (e *RestError) IsClientError() bool {
	return e.StatusCode >= 400 && e.StatusCode < 500
}

// AsRestError extracts a *RestError from err's chain.
func AsRestError(err error) (*RestError, bool) {
	var restErr *RestError
	if errors.As(err, &restErr) {
		return restErr, true
	}
	return nil, false
}

type errorBody struct {
	Code              string                    `json:"code"`
	Detail            string                    `json:"detail"`
	Message           string                    `json:"message"`
	ValidationResults *entity.ValidationResults `json:"validationResults"`
}

func newRestError(method, url string, statusCode int, body errorBody) *RestError {
	restErr := &RestError{
		Method:     method,
		URL:        url,
		StatusCode: statusCode,
		Message:    body.Message,
	}
	if statusCode == http.StatusUnprocessableEntity && body.Code != "" {
		restErr.Code = body.Code
		restErr.Detail = body.Detail
		if body.Code == ValidationErrorCode {
			restErr.ValidationResults = body.ValidationResults
			if restErr.ValidationResults == nil {
				restErr.ValidationResults = &entity.ValidationResults{}
			}
		}
	}
	return restErr
}
