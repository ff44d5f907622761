package notification

import (
	"crypto/tls"
	"fmt"
	"log/slog"

	"github.com/wneessen/go-mail"
)

// SMTPConfig holds the outbound mail server settings
type SMTPConfig struct {
	Host     string
	Port     int
	TLS      bool
	Username string
	Password string
	From     string
}

// EmailNotifier implements EmailSender over SMTP
type EmailNotifier struct {
	SMTPConfig SMTPConfig
	client     *mail.Client
}

// NewEmailNotifier creates a mail client for the configured server
func NewEmailNotifier(config SMTPConfig) (*EmailNotifier, error) {
	opts := []mail.Option{
		mail.WithPort(config.Port),
		mail.WithTimeout(30),
	}

	if config.Username != "" && config.Password != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthLogin),
			mail.WithUsername(config.Username),
			mail.WithPassword(config.Password),
		)
	}

	if !config.TLS {
		opts = append(opts,
			mail.WithTLSConfig(&tls.Config{InsecureSkipVerify: true}),
			mail.WithTLSPolicy(mail.NoTLS),
		)
	} else {
		opts = append(opts,
			mail.WithTLSConfig(&tls.Config{InsecureSkipVerify: true}),
			mail.WithTLSPolicy(mail.TLSMandatory),
		)
	}

	client, err := mail.NewClient(config.Host, opts...)
	if err != nil {
		slog.Error("Failed to create mail client", "err", err)
		return nil, err
	}

	return &EmailNotifier{SMTPConfig: config, client: client}, nil
}

// SendEmail dispatches one message
func (e *EmailNotifier) SendEmail(email Email) error {
	if email.To == "" {
		return fmt.Errorf("email notification requires 'To' address")
	}

	msg := mail.NewMsg()
	if err := msg.From(e.SMTPConfig.From); err != nil {
		return err
	}
	if err := msg.To(email.To); err != nil {
		return err
	}
	msg.Subject(email.Subject)

	if email.Text != "" {
		msg.SetBodyString(mail.TypeTextPlain, email.Text)
	}
	if email.Html != "" {
		if email.Text != "" {
			msg.AddAlternativeString(mail.TypeTextHTML, email.Html)
		} else {
			msg.SetBodyString(mail.TypeTextHTML, email.Html)
		}
	}

	if err := e.client.DialAndSend(msg); err != nil {
		slog.Error("Failed to send email", "err", err, "to", email.To)
		return err
	}

	slog.Info("Email sent successfully", "to", email.To, "host", e.SMTPConfig.Host)
	return nil
}

// NoopSender drops email, for tests and local development
type NoopSender struct{}

// SendEmail implements EmailSender by doing nothing
func (NoopSender) SendEmail(email Email) error {
	slog.Debug("Dropping email, no sender configured", "to", email.To, "subject", email.Subject)
	return nil
}
