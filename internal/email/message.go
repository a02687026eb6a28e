// Package email defines the outbound message data model used throughout the gateway.
package email

// Message represents a fully constructed outbound email, ready for dispatch
// through a provider. TextBody and HTMLBody are mutually exclusive: the
// dispatch service sets exactly one of them.
type Message struct {
	From        string
	To          []string
	Subject     string
	TextBody    string
	HTMLBody    string
	Attachments []Attachment
}

// Attachment represents a file attached to an outbound message.
type Attachment struct {
	Filename    string
	ContentType string
	Content     []byte
}
