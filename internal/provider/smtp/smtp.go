// Package smtp implements a Provider that relays emails through an SMTP server.
package smtp

import (
	"context"
	"fmt"
	"io"

	"gopkg.in/gomail.v2"

	"github.com/shineum/email-gateway/internal/email"
)

// Config holds the configuration for creating a Provider.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
}

// dialer abstracts gomail's DialAndSend for testing.
type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// Provider relays messages through an SMTP server using gomail. Each Send
// opens a connection, sends, and closes; the relay call is synchronous and
// uncancelled, matching the rest of the pipeline.
type Provider struct {
	dialer dialer
}

// New creates a new Provider for the given SMTP relay.
func New(cfg Config) *Provider {
	return &Provider{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
	}
}

// NewWithDialer creates a Provider with a custom dialer, used for testing.
func NewWithDialer(d dialer) *Provider {
	return &Provider{dialer: d}
}

// Send delivers an email message through the SMTP relay.
func (p *Provider) Send(_ context.Context, msg *email.Message) error {
	m := gomail.NewMessage()
	m.SetHeader("From", msg.From)
	m.SetHeader("To", msg.To...)
	m.SetHeader("Subject", msg.Subject)

	if msg.HTMLBody != "" {
		m.SetBody("text/html", msg.HTMLBody)
	} else {
		m.SetBody("text/plain", msg.TextBody)
	}

	for _, att := range msg.Attachments {
		content := att.Content
		settings := []gomail.FileSetting{
			gomail.SetCopyFunc(func(w io.Writer) error {
				_, err := w.Write(content)
				return err
			}),
		}
		if att.ContentType != "" {
			settings = append(settings, gomail.SetHeader(map[string][]string{
				"Content-Type": {att.ContentType},
			}))
		}
		m.Attach(att.Filename, settings...)
	}

	if err := p.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("SMTP send failed: %w", err)
	}

	return nil
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return "smtp"
}
