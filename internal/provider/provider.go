// Package provider defines the interface for email delivery backends.
package provider

import (
	"context"

	"github.com/shineum/email-gateway/internal/email"
)

// Provider is the interface that email delivery backends must implement.
// Each provider hands a fully constructed message to the target service
// (e.g., AWS SES, an SMTP relay, stdout for development).
type Provider interface {
	// Send delivers an email message through this provider.
	// It returns an error if the delivery fails. The gateway never retries:
	// a failure is reported to the caller exactly once.
	Send(ctx context.Context, msg *email.Message) error

	// Name returns the human-readable name of this provider.
	Name() string
}
