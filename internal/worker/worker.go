package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/tallerhub/backend/internal/webhook"
	"github.com/tallerhub/backend/pkg/queue"
)

// Jobs is the queue surface the worker needs. *queue.Queue satisfies it.
type Jobs interface {
	Dequeue(ctx context.Context) (*queue.Job, string, error)
	Retry(ctx context.Context, job *queue.Job) error
}

// WebhookRedeliverer drains the webhook dead-letter queue and re-attempts
// delivery of payloads whose inline attempts were exhausted.
type WebhookRedeliverer struct {
	notifier *webhook.Notifier
	jobs     Jobs
	logger   *zap.Logger
}

// NewWebhookRedeliverer creates a webhook redelivery processor.
func NewWebhookRedeliverer(notifier *webhook.Notifier, jobs Jobs, logger *zap.Logger) *WebhookRedeliverer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WebhookRedeliverer{notifier: notifier, jobs: jobs, logger: logger}
}

// Process executes one redelivery job: a single POST of the stored body.
func (p *WebhookRedeliverer) Process(ctx context.Context, job *queue.Job) error {
	if job.Type != queue.JobTypeWebhookDelivery {
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
	var payload queue.WebhookDeliveryPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}
	if err := p.notifier.Deliver(ctx, payload.Body); err != nil {
		return fmt.Errorf("redeliver webhook: %w", err)
	}
	p.logger.Info("webhook redelivered",
		zap.Int64("registration_id", payload.RegistrationID),
		zap.Int("attempt", job.Attempt))
	return nil
}

// Run is the worker loop: dequeue, process, requeue on failure. A failed job
// is re-enqueued before the backoff sleep so cancellation during the sleep
// cannot lose it; all waits stop immediately when ctx is cancelled.
func (p *WebhookRedeliverer) Run(ctx context.Context) {
	for {
		job, _, err := p.jobs.Dequeue(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			p.logger.Error("dequeue failed", zap.Error(err))
			if !sleep(ctx, 2*time.Second) {
				return
			}
			continue
		}
		if job == nil {
			if ctx.Err() != nil {
				return
			}
			continue
		}

		if err := p.Process(ctx, job); err != nil {
			p.logger.Warn("redelivery failed", zap.Error(err), zap.String("job_id", job.ID))
			if rerr := p.jobs.Retry(ctx, job); rerr != nil {
				p.logger.Error("requeue failed", zap.Error(rerr), zap.String("job_id", job.ID))
			}
			if !sleep(ctx, queue.RetryBackoff) {
				return
			}
		}
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
