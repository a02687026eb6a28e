package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/shineum/email-gateway/internal/service"
)

// validationErrorBody is the response for field-level validation failures:
// a generic message plus one entry per offending field.
type validationErrorBody struct {
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors"`
}

// writeBindingError translates a gin binding failure into a response.
// Declarative field violations are collected into a field→message map;
// anything else (malformed JSON, wrong types) is a simple 400.
func writeBindingError(c *gin.Context, err error) {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		errs := make(map[string]string, len(fieldErrs))
		for _, fe := range fieldErrs {
			errs[fe.Field()] = messageForTag(fe.Tag())
		}
		writeValidationErrors(c, errs)
		return
	}

	writeSimpleError(c, http.StatusBadRequest, "BadRequest", err.Error())
}

// writeValidationErrors writes the field-keyed 400 response.
func writeValidationErrors(c *gin.Context, errs map[string]string) {
	c.JSON(http.StatusBadRequest, validationErrorBody{
		Message: "Validation has failed on request",
		Errors:  errs,
	})
}

// writePipelineError writes a tagged pipeline failure. Unknown error values
// should not occur; they are surfaced as a 500 rather than swallowed.
func writePipelineError(c *gin.Context, err error) {
	var pipeErr *service.Error
	if errors.As(err, &pipeErr) {
		writeSimpleError(c, pipeErr.Status, string(pipeErr.Kind), pipeErr.Message)
		return
	}

	writeSimpleError(c, http.StatusInternalServerError, "Internal", err.Error())
}

// writeSimpleError writes the {"error": ..., "message": ...} shape.
func writeSimpleError(c *gin.Context, status int, errLabel, message string) {
	c.JSON(status, gin.H{
		"error":   errLabel,
		"message": message,
	})
}

// messageForTag maps a validation tag to its caller-facing message.
func messageForTag(tag string) string {
	switch tag {
	case "email":
		return "must be a well-formed email address"
	case "required", "notblank":
		return "must not be blank"
	default:
		return "is invalid"
	}
}
