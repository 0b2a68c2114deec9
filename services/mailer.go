package services

import (
	"fmt"
	"os"

	"github.com/resend/resend-go/v2"
)

// MailMessage is one outbound email.
type MailMessage struct {
	Subject  string
	To       []string
	TextBody string
	HTMLBody string
	Cc       []string
	Bcc      []string
}

// MailSender is the outbound mail transport. Implementations must be safe
// for concurrent use; callers treat failures as best-effort.
type MailSender interface {
	Send(msg MailMessage) error
}

// ResendMailer delivers mail through the Resend API.
type ResendMailer struct {
	client    *resend.Client
	fromName  string
	fromEmail string
}

// NewResendMailer builds a mailer from RESEND_API_KEY, MAIL_FROM_NAME and
// MAIL_FROM_EMAIL.
func NewResendMailer() (*ResendMailer, error) {
	apiKey := os.Getenv("RESEND_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("RESEND_API_KEY is required")
	}
	fromEmail := os.Getenv("MAIL_FROM_EMAIL")
	if fromEmail == "" {
		return nil, fmt.Errorf("MAIL_FROM_EMAIL is required")
	}
	fromName := os.Getenv("MAIL_FROM_NAME")
	if fromName == "" {
		fromName = "Visitor Management"
	}

	return &ResendMailer{
		client:    resend.NewClient(apiKey),
		fromName:  fromName,
		fromEmail: fromEmail,
	}, nil
}

func (m *ResendMailer) Send(msg MailMessage) error {
	params := &resend.SendEmailRequest{
		From:    fmt.Sprintf("%s <%s>", m.fromName, m.fromEmail),
		To:      msg.To,
		Subject: msg.Subject,
		Text:    msg.TextBody,
		Html:    msg.HTMLBody,
		Cc:      msg.Cc,
		Bcc:     msg.Bcc,
	}

	if _, err := m.client.Emails.Send(params); err != nil {
		return fmt.Errorf("resend: %w", err)
	}
	return nil
}
