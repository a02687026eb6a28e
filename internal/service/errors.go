package service

import "net/http"

// Kind tags a pipeline failure with its class. Every kind except
// KindTransport is a client fault.
type Kind string

const (
	KindRateLimited      Kind = "RateLimited"
	KindUnauthenticated  Kind = "Unauthenticated"
	KindValidation       Kind = "Validation"
	KindTemplateNotFound Kind = "TemplateNotFound"
	KindTemplateInvalid  Kind = "TemplateProcessing"
	KindTransport        Kind = "Transport"
)

// Error is a tagged pipeline failure carrying the response status
// appropriate to its kind.
type Error struct {
	Kind    Kind
	Message string
	Status  int
}

func (e *Error) Error() string {
	return e.Message
}

// NewValidationError creates a 400 validation-class Error.
func NewValidationError(message string) *Error {
	return &Error{Kind: KindValidation, Message: message, Status: http.StatusBadRequest}
}

// NewTemplateNotFoundError creates a 400 Error for a missing template.
// A bad caller-supplied template reference is a client error, not a server fault.
func NewTemplateNotFoundError(name string) *Error {
	return &Error{
		Kind:    KindTemplateNotFound,
		Message: "Template file not found: " + name,
		Status:  http.StatusBadRequest,
	}
}

// NewTemplateInvalidError creates a 400 Error for a template that failed to
// parse or execute.
func NewTemplateInvalidError(name string) *Error {
	return &Error{
		Kind:    KindTemplateInvalid,
		Message: "Error processing template: " + name,
		Status:  http.StatusBadRequest,
	}
}
