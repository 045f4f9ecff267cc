package service

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kidscholars/ksis-api/pkg/config"
	"github.com/kidscholars/ksis-api/pkg/jobs"
	"github.com/kidscholars/ksis-api/pkg/mailer"
)

const mailJobType = "outbound_mail"

// MailService owns the outbound mail queue. Enqueued messages are
// delivered by background workers with retry; delivery failures stay in
// the logs and never reach the request that triggered them.
type MailService struct {
	queue  *jobs.Queue
	sender mailer.Sender
	logger *zap.Logger
}

// NewMailService constructs a MailService around the given sender.
func NewMailService(sender mailer.Sender, cfg config.MailConfig, logger *zap.Logger) *MailService {
	s := &MailService{sender: sender, logger: logger}
	s.queue = jobs.NewQueue("mail", s.deliver, jobs.QueueConfig{
		Workers:    cfg.QueueWorkers,
		MaxRetries: cfg.QueueRetries,
		RetryDelay: cfg.RetryDelay,
		Logger:     logger,
	})
	return s
}

// Start launches the delivery workers.
func (s *MailService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains the workers.
func (s *MailService) Stop() {
	s.queue.Stop()
}

// Enqueue schedules a message for delivery. It returns true when the
// message was accepted; a message without a recipient is dropped with a
// warning.
func (s *MailService) Enqueue(msg mailer.Message) bool {
	if !msg.HasRecipient() {
		s.logger.Warn("mail dropped: no recipient", zap.String("subject", msg.Subject))
		return false
	}
	err := s.queue.Enqueue(jobs.Job{
		ID:      uuid.NewString(),
		Type:    mailJobType,
		Payload: msg,
	})
	if err != nil {
		s.logger.Warn("mail enqueue failed", zap.String("subject", msg.Subject), zap.Error(err))
		return false
	}
	return true
}

func (s *MailService) deliver(ctx context.Context, job jobs.Job) error {
	msg, ok := job.Payload.(mailer.Message)
	if !ok {
		s.logger.Error("mail job has unexpected payload", zap.String("job_id", job.ID))
		return nil
	}
	return s.sender.Send(ctx, msg)
}
