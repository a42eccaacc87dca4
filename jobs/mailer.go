package jobs

import (
	"context"
	"fmt"

	"github.com/wneessen/go-mail"
)

// SMTPConfig holds outbound mail server settings.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTPMailer delivers messages through an authenticated SMTP server.
type SMTPMailer struct {
	cfg SMTPConfig
}

// NewSMTPMailer constructs an SMTPMailer. From defaults to the username.
func NewSMTPMailer(cfg SMTPConfig) *SMTPMailer {
	if cfg.From == "" {
		cfg.From = cfg.Username
	}
	if cfg.From == "" {
		cfg.From = "no-reply@club.local"
	}
	return &SMTPMailer{cfg: cfg}
}

// Message builds the outgoing message for payload.
func (m *SMTPMailer) Message(payload SendEmailPayload) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.From(m.cfg.From); err != nil {
		return nil, fmt.Errorf("mail from: %w", err)
	}
	if err := msg.To(payload.To); err != nil {
		return nil, fmt.Errorf("mail to: %w", err)
	}
	// An unparseable reply address is dropped rather than failing delivery.
	if payload.ReplyTo != "" {
		_ = msg.ReplyTo(payload.ReplyTo)
	}
	msg.Subject(payload.Subject)
	msg.SetBodyString(mail.TypeTextPlain, payload.Body)
	return msg, nil
}

// Send implements Mailer.
func (m *SMTPMailer) Send(ctx context.Context, payload SendEmailPayload) error {
	msg, err := m.Message(payload)
	if err != nil {
		return err
	}
	opts := []mail.Option{
		mail.WithPort(m.cfg.Port),
		mail.WithTLSPortPolicy(mail.TLSOpportunistic),
	}
	if m.cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(m.cfg.Username),
			mail.WithPassword(m.cfg.Password),
		)
	}
	client, err := mail.NewClient(m.cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("mail client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("mail send: %w", err)
	}
	return nil
}
