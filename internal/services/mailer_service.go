package services

import (
	"bytes"
	"context"
	"fmt"
	"net/smtp"
	"text/template"
)

// Mailer delivers account emails. Delivery failures are reported to the
// caller; they must never corrupt domain state (the auth service rolls back
// reset fields on failure).
type Mailer interface {
	SendPasswordResetEmail(ctx context.Context, to, name, resetCode string) error
	SendWelcomeEmail(ctx context.Context, to, name string) error
}

// MailerConfig carries SMTP settings injected at startup.
type MailerConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

type smtpMailer struct {
	config        MailerConfig
	resetTemplate *template.Template
	welcomeTmpl   *template.Template
}

const resetEmailBody = `Subject: Password Reset Code - RentLedger
From: RentLedger <{{.From}}>
To: {{.To}}

Hello {{.Name}},

We received a request to reset your password for your RentLedger account.

Your reset code is: {{.ResetCode}}

Enter this code on the password reset page to create a new password.

Important:
- This code expires in 15 minutes
- Don't share this code with anyone
- If you didn't request this, ignore this email

Best regards,
RentLedger Team
`

const welcomeEmailBody = `Subject: Welcome to RentLedger!
From: RentLedger <{{.From}}>
To: {{.To}}

Hello {{.Name}},

Thank you for registering with RentLedger!

You can now:
- Manage tenant information
- Generate and track bills
- Monitor payment history

Get started by logging into your account.

Best regards,
RentLedger Team
`

// NewSMTPMailer creates a mailer that delivers over plain SMTP.
func NewSMTPMailer(config MailerConfig) Mailer {
	return &smtpMailer{
		config:        config,
		resetTemplate: template.Must(template.New("reset").Parse(resetEmailBody)),
		welcomeTmpl:   template.Must(template.New("welcome").Parse(welcomeEmailBody)),
	}
}

func (m *smtpMailer) send(to string, tmpl *template.Template, data map[string]string) error {
	var body bytes.Buffer
	if err := tmpl.Execute(&body, data); err != nil {
		return fmt.Errorf("render email template: %w", err)
	}

	addr := m.config.Host + ":" + m.config.Port
	var auth smtp.Auth
	if m.config.Username != "" {
		auth = smtp.PlainAuth("", m.config.Username, m.config.Password, m.config.Host)
	}

	if err := smtp.SendMail(addr, auth, m.config.From, []string{to}, body.Bytes()); err != nil {
		return fmt.Errorf("send email to %s: %w", to, err)
	}
	return nil
}

func (m *smtpMailer) SendPasswordResetEmail(ctx context.Context, to, name, resetCode string) error {
	if name == "" {
		name = "User"
	}
	return m.send(to, m.resetTemplate, map[string]string{
		"From":      m.config.From,
		"To":        to,
		"Name":      name,
		"ResetCode": resetCode,
	})
}

func (m *smtpMailer) SendWelcomeEmail(ctx context.Context, to, name string) error {
	if name == "" {
		name = "User"
	}
	return m.send(to, m.welcomeTmpl, map[string]string{
		"From": m.config.From,
		"To":   to,
		"Name": name,
	})
}
