package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ratulDIU/RentoVerse/internal/logger"
)

// Job is one email waiting for delivery.
type Job struct {
	To        string
	Subject   string
	Body      string
	Retries   int
	CreatedAt time.Time
}

// Queue delivers emails asynchronously so that a slow or failing mail
// transport never blocks or rolls back a state transition. Failed sends are
// retried with quadratic backoff, then dropped with a log line.
type Queue struct {
	mailer     Mailer
	jobs       chan Job
	maxRetries int
	workers    int
	wg         sync.WaitGroup
}

func NewQueue(mailer Mailer, workers, queueSize, maxRetries int) *Queue {
	return &Queue{
		mailer:     mailer,
		jobs:       make(chan Job, queueSize),
		maxRetries: maxRetries,
		workers:    workers,
	}
}

// Start launches the delivery workers. They stop when ctx is cancelled.
func (q *Queue) Start(ctx context.Context) {
	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.worker(ctx, i)
	}
}

// Wait blocks until all workers have stopped.
func (q *Queue) Wait() {
	q.wg.Wait()
}

func (q *Queue) worker(ctx context.Context, id int) {
	defer q.wg.Done()
	logger.Debug("Email worker started", "worker", id)

	for {
		select {
		case <-ctx.Done():
			logger.Debug("Email worker stopping", "worker", id)
			return
		case job := <-q.jobs:
			q.process(job)
		}
	}
}

func (q *Queue) process(job Job) {
	err := q.mailer.Send(job.To, job.Subject, job.Body)
	if err == nil {
		logger.Debug("Email sent", "to", job.To, "subject", job.Subject)
		return
	}

	logger.Error("Failed to send email", "to", job.To, "subject", job.Subject, "error", err)
	if job.Retries < q.maxRetries {
		job.Retries++
		backoff := time.Duration(job.Retries*job.Retries) * time.Second
		time.AfterFunc(backoff, func() {
			select {
			case q.jobs <- job:
			default:
				logger.Error("Email retry dropped, queue full", "to", job.To, "subject", job.Subject)
			}
		})
		return
	}
	logger.Error("Email dropped after retries", "to", job.To, "retries", job.Retries)
}

// Enqueue adds an email without blocking; a full queue is reported as an
// error for the caller to log and discard.
func (q *Queue) Enqueue(to, subject, body string) error {
	job := Job{
		To:        to,
		Subject:   subject,
		Body:      body,
		CreatedAt: time.Now(),
	}
	select {
	case q.jobs <- job:
		return nil
	default:
		return fmt.Errorf("email queue is full")
	}
}
