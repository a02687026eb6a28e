// Package service implements the dispatch pipeline: it turns a validated
// send request into an outbound message, rendering the referenced template
// when one is set, and hands the message to the configured provider.
package service

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/shineum/email-gateway/internal/email"
	"github.com/shineum/email-gateway/internal/provider"
	"github.com/shineum/email-gateway/internal/render"
)

// fallbackFilename is attached when a file part carries no filename.
const fallbackFilename = "attachment"

// Request is an email-send request. Either Body (plain text) or Template
// (HTML, rendered with Data) supplies the content; Template wins when both
// are present.
type Request struct {
	To       string         `json:"to" binding:"required,email"`
	Subject  string         `json:"subject" binding:"required,notblank"`
	Body     string         `json:"body"`
	Template string         `json:"template"`
	Data     map[string]any `json:"data"`
}

// Result is the outcome of one send attempt.
type Result struct {
	Status  string `json:"status"`
	Message string `json:"message"`

	// HTTPStatus is the response code at the boundary, not part of the body.
	HTTPStatus int `json:"-"`
}

// Result statuses.
const (
	StatusSuccess = "SUCCESS"
	StatusFailed  = "FAILED"
)

// EmailService composes rendering and dispatch. It assumes the caller has
// already been rate-limited and authenticated.
type EmailService struct {
	provider provider.Provider
	renderer *render.Renderer
	sender   string
}

// NewEmailService creates an EmailService dispatching through the given
// provider, with sender as the fixed From address on every message.
func NewEmailService(p provider.Provider, r *render.Renderer, sender string) *EmailService {
	return &EmailService{
		provider: p,
		renderer: r,
		sender:   sender,
	}
}

// Send dispatches one email. Exactly one transport attempt is made; there is
// no retry. Validation and template failures come back as *Error. A transport
// failure is the only server-side fault: it is logged and reported as a
// FAILED result with the underlying description, not as an error.
func (s *EmailService) Send(ctx context.Context, req *Request, attachments []email.Attachment) (*Result, error) {
	// Re-checked here even though the validator runs first: Send is also
	// reachable without the HTTP layer.
	if req.Body == "" && req.Template == "" {
		return nil, NewValidationError("The request body or template must be filled!")
	}

	msg := &email.Message{
		From:    s.sender,
		To:      []string{req.To},
		Subject: req.Subject,
	}

	if req.Template != "" {
		html, err := s.Render(req)
		if err != nil {
			return nil, err
		}
		msg.HTMLBody = html
	} else {
		msg.TextBody = req.Body
	}

	for _, att := range attachments {
		if len(att.Content) == 0 {
			continue
		}
		if att.Filename == "" {
			att.Filename = fallbackFilename
		}
		msg.Attachments = append(msg.Attachments, att)
	}

	if err := s.provider.Send(ctx, msg); err != nil {
		slog.Error("email dispatch failed",
			"provider", s.provider.Name(),
			"to", req.To,
			"error", err,
		)
		return &Result{
			Status:     StatusFailed,
			Message:    err.Error(),
			HTTPStatus: http.StatusInternalServerError,
		}, nil
	}

	return &Result{
		Status:     StatusSuccess,
		Message:    "Email sent successfully",
		HTTPStatus: http.StatusOK,
	}, nil
}

// Render renders the request's template with its data and returns the HTML.
// Failures are normalized to *Error: an identifier rejected by the name
// grammar or a missing/broken template are all client faults.
func (s *EmailService) Render(req *Request) (string, error) {
	html, err := s.renderer.Render(req.Template, req.Data)
	if err == nil {
		return html, nil
	}

	var nameErr *render.InvalidNameError
	switch {
	case errors.As(err, &nameErr):
		return "", NewValidationError(nameErr.Error())
	case errors.Is(err, render.ErrNotFound):
		return "", NewTemplateNotFoundError(req.Template)
	default:
		return "", NewTemplateInvalidError(req.Template)
	}
}
