package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeSendEmail is the task type for sending transactional emails.
	TaskTypeSendEmail = "mail:send"
)

// SendEmailPayload describes the information required to send an email.
type SendEmailPayload struct {
	To      string `json:"to"`
	ReplyTo string `json:"reply_to,omitempty"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Validate reports payloads that can never be delivered.
func (p SendEmailPayload) Validate() error {
	if strings.TrimSpace(p.To) == "" {
		return errors.New("jobs: email recipient is required")
	}
	return nil
}

// Mailer delivers a single message.
type Mailer interface {
	Send(ctx context.Context, payload SendEmailPayload) error
}

// NewSendEmailTask constructs an Asynq task.
func NewSendEmailTask(payload SendEmailPayload) (*asynq.Task, error) {
	if err := payload.Validate(); err != nil {
		return nil, err
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeSendEmail, data, asynq.MaxRetry(5)), nil
}

// NewSendEmailHandler processes TaskTypeSendEmail tasks through mailer.
// Undecodable or undeliverable payloads are not retried.
func NewSendEmailHandler(mailer Mailer, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload SendEmailPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return fmt.Errorf("decode payload: %v: %w", err, asynq.SkipRetry)
		}
		if err := payload.Validate(); err != nil {
			return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
		}
		if err := mailer.Send(ctx, payload); err != nil {
			if logger != nil {
				logger.Warn("send email failed", slog.String("subject", payload.Subject), slog.Any("error", err))
			}
			return err
		}
		if logger != nil {
			logger.Info("email sent", slog.String("subject", payload.Subject))
		}
		return nil
	}
}
