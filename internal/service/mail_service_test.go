package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kidscholars/ksis-api/pkg/config"
	"github.com/kidscholars/ksis-api/pkg/mailer"
)

type recordingSender struct {
	mu       sync.Mutex
	sent     []mailer.Message
	failures int
}

func (s *recordingSender) Send(ctx context.Context, msg mailer.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failures > 0 {
		s.failures--
		return errors.New("smtp unavailable")
	}
	s.sent = append(s.sent, msg)
	return nil
}

func (s *recordingSender) sentCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sent)
}

func newMailFixture(t *testing.T, sender *recordingSender) *MailService {
	t.Helper()
	svc := NewMailService(sender, config.MailConfig{
		QueueWorkers: 2,
		QueueRetries: 3,
		RetryDelay:   5 * time.Millisecond,
	}, zap.NewNop())
	svc.Start(context.Background())
	t.Cleanup(svc.Stop)
	return svc
}

func TestMailServiceDeliversEnqueued(t *testing.T) {
	sender := &recordingSender{}
	svc := newMailFixture(t, sender)

	ok := svc.Enqueue(mailer.Message{
		ToName:    "Priya Kumar",
		ToAddress: "priya@example.com",
		Subject:   "Documents required",
		TextBody:  "Please upload the pending documents.",
	})
	require.True(t, ok)

	require.Eventually(t, func() bool { return sender.sentCount() == 1 }, time.Second, 5*time.Millisecond)
	sender.mu.Lock()
	defer sender.mu.Unlock()
	assert.Equal(t, "priya@example.com", sender.sent[0].ToAddress)
}

func TestMailServiceDropsWithoutRecipient(t *testing.T) {
	sender := &recordingSender{}
	svc := newMailFixture(t, sender)

	ok := svc.Enqueue(mailer.Message{Subject: "orphan"})
	assert.False(t, ok)

	time.Sleep(20 * time.Millisecond)
	assert.Zero(t, sender.sentCount())
}

func TestMailServiceRetriesFailedDelivery(t *testing.T) {
	sender := &recordingSender{failures: 2}
	svc := newMailFixture(t, sender)

	ok := svc.Enqueue(mailer.Message{
		ToAddress: "priya@example.com",
		Subject:   "Admission confirmed",
		TextBody:  "Welcome aboard.",
	})
	require.True(t, ok)

	require.Eventually(t, func() bool { return sender.sentCount() == 1 }, 2*time.Second, 5*time.Millisecond)
}

func TestMailServiceEnqueueBeforeStart(t *testing.T) {
	svc := NewMailService(&recordingSender{}, config.MailConfig{}, zap.NewNop())
	assert.False(t, svc.Enqueue(mailer.Message{ToAddress: "priya@example.com", Subject: "early"}))
}
