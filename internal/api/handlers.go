// Package api exposes the gateway's HTTP surface: routing, request binding,
// the rate-limit and API-key middleware, and the translation of pipeline
// errors into response bodies.
package api

import (
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/shineum/email-gateway/internal/email"
	"github.com/shineum/email-gateway/internal/service"
)

// Handlers holds the dependencies of the email endpoints.
type Handlers struct {
	svc *service.EmailService
}

// NewHandlers creates the endpoint set around the given service.
func NewHandlers(svc *service.EmailService) *Handlers {
	return &Handlers{svc: svc}
}

// Send handles POST /email: a JSON send request with a plain body or a
// template reference.
func (h *Handlers) Send(c *gin.Context) {
	var req service.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindingError(c, err)
		return
	}

	h.dispatch(c, &req, nil)
}

// SendWithAttachments handles POST /email/attach: a multipart form whose
// "request" part is the JSON send request and whose "files" parts are
// attachments.
func (h *Handlers) SendWithAttachments(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		writeSimpleError(c, http.StatusBadRequest, "BadRequest", "invalid multipart form: "+err.Error())
		return
	}

	req, err := requestFromForm(form)
	if err != nil {
		writeSimpleError(c, http.StatusBadRequest, "BadRequest", err.Error())
		return
	}

	if err := binding.Validator.ValidateStruct(req); err != nil {
		writeBindingError(c, err)
		return
	}

	attachments, err := attachmentsFromForm(form)
	if err != nil {
		writeSimpleError(c, http.StatusBadRequest, "BadRequest", err.Error())
		return
	}

	h.dispatch(c, req, attachments)
}

// Render handles POST /email/render: returns the rendered template HTML
// without sending anything.
func (h *Handlers) Render(c *gin.Context) {
	var req service.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindingError(c, err)
		return
	}

	if req.Template == "" {
		writePipelineError(c, service.NewValidationError("The request template must be filled!"))
		return
	}

	html, err := h.svc.Render(&req)
	if err != nil {
		writePipelineError(c, err)
		return
	}

	c.String(http.StatusOK, html)
}

// SendWebhook handles GET /email/send: a plain-text send driven entirely by
// query parameters, with no template path.
func (h *Handlers) SendWebhook(c *gin.Context) {
	req := &service.Request{
		To:      c.Query("to"),
		Subject: c.Query("subject"),
		Body:    c.Query("body"),
	}

	v := bindingValidator()
	fieldErrors := map[string]string{}
	if err := v.Var(req.To, "required,email"); err != nil {
		fieldErrors["to"] = "must be a well-formed email address"
	}
	if err := v.Var(req.Subject, "notblank"); err != nil {
		fieldErrors["subject"] = "must not be blank"
	}
	if err := v.Var(req.Body, "required"); err != nil {
		fieldErrors["body"] = "must not be blank"
	}
	if len(fieldErrors) > 0 {
		writeValidationErrors(c, fieldErrors)
		return
	}

	h.dispatch(c, req, nil)
}

// dispatch runs the send pipeline and writes a Result or a pipeline error.
func (h *Handlers) dispatch(c *gin.Context, req *service.Request, attachments []email.Attachment) {
	result, err := h.svc.Send(c.Request.Context(), req, attachments)
	if err != nil {
		writePipelineError(c, err)
		return
	}
	c.JSON(result.HTTPStatus, result)
}

// bindingValidator returns the engine behind gin's binding layer, so the
// query-parameter checks share its registered rules and tag names.
func bindingValidator() *validator.Validate {
	return binding.Validator.Engine().(*validator.Validate)
}

// requestFromForm decodes the "request" multipart part, accepting it either
// as a form value or as an uploaded file.
func requestFromForm(form *multipart.Form) (*service.Request, error) {
	var raw []byte

	switch {
	case len(form.Value["request"]) > 0:
		raw = []byte(form.Value["request"][0])
	case len(form.File["request"]) > 0:
		f, err := form.File["request"][0].Open()
		if err != nil {
			return nil, errors.New("failed to read request part")
		}
		defer f.Close()
		raw, err = io.ReadAll(f)
		if err != nil {
			return nil, errors.New("failed to read request part")
		}
	default:
		return nil, errors.New("missing request part")
	}

	req := &service.Request{}
	if err := json.Unmarshal(raw, req); err != nil {
		return nil, errors.New("request part is not valid JSON")
	}
	return req, nil
}

// attachmentsFromForm reads every "files" part into an Attachment.
func attachmentsFromForm(form *multipart.Form) ([]email.Attachment, error) {
	var attachments []email.Attachment
	for _, fh := range form.File["files"] {
		f, err := fh.Open()
		if err != nil {
			return nil, errors.New("failed to read file part: " + fh.Filename)
		}
		content, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return nil, errors.New("failed to read file part: " + fh.Filename)
		}

		attachments = append(attachments, email.Attachment{
			Filename:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Content:     content,
		})
	}
	return attachments, nil
}
