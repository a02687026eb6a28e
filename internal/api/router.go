package api

import (
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"

	"github.com/shineum/email-gateway/internal/auth"
	"github.com/shineum/email-gateway/internal/ratelimit"
	"github.com/shineum/email-gateway/internal/service"
)

// NewRouter builds the gin engine with the full middleware chain. Ordering
// matters: rate limiting runs first, then authentication, then the handlers
// with their own validation.
func NewRouter(svc *service.EmailService, authSvc *auth.Service, limiter *ratelimit.Limiter) *gin.Engine {
	configureValidator()

	engine := gin.New()
	engine.Use(gin.Recovery(), RequestLogger(), RateLimit(limiter), APIKeyAuth(authSvc))

	h := NewHandlers(svc)

	group := engine.Group("/email")
	group.POST("", h.Send)
	group.POST("/attach", h.SendWithAttachments)
	group.POST("/render", h.Render)
	group.GET("/send", h.SendWebhook)

	return engine
}

// configureValidator sets up gin's shared binding engine: errors report json
// field names ("to", "subject") instead of Go struct field names, and the
// notblank rule rejects whitespace-only values that required alone accepts.
func configureValidator() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	v.RegisterValidation("notblank", validators.NotBlank)
}
