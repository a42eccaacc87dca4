// Package contact accepts visitor messages and forwards them to the club inbox.
package contact

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/hibiken/asynq"

	"github.com/cpi-it-club/club-api/jobs"
)

// Enqueuer submits mail tasks; *jobs.Client satisfies it.
type Enqueuer interface {
	EnqueueSendEmail(ctx context.Context, payload jobs.SendEmailPayload) (*asynq.TaskInfo, error)
}

// Message is a contact form submission.
type Message struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// Notifier hands contact messages to the mail queue without blocking the
// request that produced them.
type Notifier struct {
	queue   Enqueuer
	inbox   string
	timeout time.Duration
	logger  *slog.Logger
	wg      sync.WaitGroup
}

// NewNotifier constructs a Notifier. A nil queue drops messages after logging them.
func NewNotifier(queue Enqueuer, inbox string, logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Notifier{queue: queue, inbox: inbox, timeout: 10 * time.Second, logger: logger}
}

// Notify forwards msg in the background. Failures are logged only.
func (n *Notifier) Notify(ctx context.Context, msg Message) {
	ctx = context.WithoutCancel(ctx)
	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		ctx, cancel := context.WithTimeout(ctx, n.timeout)
		defer cancel()
		if err := n.deliver(ctx, msg); err != nil {
			n.logger.Warn("contact notification failed", slog.String("from", msg.Email), slog.Any("error", err))
		}
	}()
}

// Wait blocks until pending notifications finish.
func (n *Notifier) Wait() {
	n.wg.Wait()
}

func (n *Notifier) deliver(ctx context.Context, msg Message) error {
	if n.queue == nil || n.inbox == "" {
		n.logger.Info("contact message received without mail queue", slog.String("from", msg.Email))
		return nil
	}
	info, err := n.queue.EnqueueSendEmail(ctx, Payload(n.inbox, msg))
	if err != nil {
		return err
	}
	if info != nil {
		n.logger.Debug("contact notification queued", slog.String("task_id", info.ID))
	}
	return nil
}

// Payload renders msg as an email to inbox, replying to the sender.
func Payload(inbox string, msg Message) jobs.SendEmailPayload {
	subject := strings.TrimSpace(msg.Subject)
	if subject == "" {
		subject = "New contact message"
	}
	var body strings.Builder
	fmt.Fprintf(&body, "Name: %s\n", msg.Name)
	fmt.Fprintf(&body, "Email: %s\n\n", msg.Email)
	body.WriteString(msg.Message)
	return jobs.SendEmailPayload{
		To:      inbox,
		ReplyTo: strings.TrimSpace(msg.Email),
		Subject: "[Contact] " + subject,
		Body:    body.String(),
	}
}
