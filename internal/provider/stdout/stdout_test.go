package stdout

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/shineum/email-gateway/internal/email"
)

func TestName(t *testing.T) {
	t.Parallel()

	if got := New().Name(); got != "stdout" {
		t.Errorf("Name(): got %q, want %q", got, "stdout")
	}
}

func TestSend_PrintsMessage(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	p := NewWithWriter(&buf)

	msg := &email.Message{
		From:     "sender@example.com",
		To:       []string{"a@example.com", "b@example.com"},
		Subject:  "Test Subject",
		TextBody: "Hello, World!",
	}

	if err := p.Send(context.Background(), msg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "From: sender@example.com") {
		t.Error("output missing From line")
	}
	if !strings.Contains(out, "To: a@example.com, b@example.com") {
		t.Error("output missing To line")
	}
	if !strings.Contains(out, "Subject: Test Subject") {
		t.Error("output missing Subject line")
	}
	if !strings.Contains(out, "Hello, World!") {
		t.Error("output missing body")
	}
}

func TestSend_HTMLFallbackAndAttachments(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	p := NewWithWriter(&buf)

	msg := &email.Message{
		From:     "sender@example.com",
		To:       []string{"to@example.com"},
		Subject:  "Test",
		HTMLBody: "<html>Hi</html>",
		Attachments: []email.Attachment{
			{Filename: "report.pdf", Content: make([]byte, 2048)},
		},
	}

	if err := p.Send(context.Background(), msg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "<html>Hi</html>") {
		t.Error("output missing html body fallback")
	}
	if !strings.Contains(out, "report.pdf (2.0 KB)") {
		t.Errorf("output missing attachment summary: %q", out)
	}
}

func TestFormatSize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		bytes int
		want  string
	}{
		{bytes: 512, want: "512 B"},
		{bytes: 2048, want: "2.0 KB"},
		{bytes: 3 * 1024 * 1024, want: "3.0 MB"},
	}

	for _, tt := range tests {
		if got := formatSize(tt.bytes); got != tt.want {
			t.Errorf("formatSize(%d): got %q, want %q", tt.bytes, got, tt.want)
		}
	}
}
