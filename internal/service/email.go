package service

import (
	"context"

	"github.com/ratulDIU/RentoVerse/internal/notify"
)

// queuedEmailService hands every notification to the async queue; delivery
// happens off the request path.
type queuedEmailService struct {
	queue *notify.Queue
}

func NewEmailService(queue *notify.Queue) EmailService {
	return &queuedEmailService{queue: queue}
}

func (s *queuedEmailService) Send(ctx context.Context, to, subject, body string) error {
	return s.queue.Enqueue(to, subject, body)
}
