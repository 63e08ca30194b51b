package apierrors

import (
	"errors"
	"net/http"
)

// Code is the error code reported to the batch signature page.
type Code string

const (
	CodeInvalidArgument             Code = "INVALID_ARGUMENT"
	CodeUnknownPreset               Code = "UNKNOWN_PRESET"
	CodeInvalidVisualRepresentation Code = "INVALID_VISUAL_REPRESENTATION"
	CodeDocumentNotFound            Code = "DOCUMENT_NOT_FOUND"
	CodeStampUnavailable            Code = "STAMP_UNAVAILABLE"
	CodeSignatureRejected           Code = "SIGNATURE_REJECTED"
	CodeTokenInvalid                Code = "TOKEN_INVALID"
	CodeServiceUnavailable          Code = "SIGNATURE_SERVICE_UNAVAILABLE"
	CodeOutputWriteFailed           Code = "OUTPUT_WRITE_FAILED"
	CodeInternal                    Code = "INTERNAL_ERROR"
)

var httpStatusMap = map[Code]int{
	CodeInvalidArgument:             http.StatusBadRequest,
	CodeUnknownPreset:               http.StatusBadRequest,
	CodeInvalidVisualRepresentation: http.StatusInternalServerError,
	CodeDocumentNotFound:            http.StatusNotFound,
	CodeStampUnavailable:            http.StatusInternalServerError,
	CodeSignatureRejected:           http.StatusUnprocessableEntity,
	CodeTokenInvalid:                http.StatusGone,
	CodeServiceUnavailable:          http.StatusBadGateway,
	CodeOutputWriteFailed:           http.StatusInternalServerError,
}

// Error carries a Code together with the underlying cause.
type Error struct {
	Code    Code
	Message string
	Err     error
}

// New creates an error without a cause.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap creates an error that unwraps to err.
func Wrap(code Code, message string, err error) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	msg := e.Message
	if msg == "" {
		msg = string(e.Code)
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// FromError extracts an *Error from err's chain.
func FromError(err error) (*Error, bool) {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// CodeOf returns the code carried by err, CodeInternal when there is none.
func CodeOf(err error) Code {
	if apiErr, ok := FromError(err); ok {
		return apiErr.Code
	}
	return CodeInternal
}

// HTTPStatus returns the status for code, 500 for unknown codes.
func HTTPStatus(code Code) int {
	if status, ok := httpStatusMap[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
