package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	// QueueWebhookDLQ is the Redis list key for webhook payloads whose inline
	// delivery attempts were exhausted.
	QueueWebhookDLQ = "worker:webhook_dlq"
	// MaxRetries is the number of times the worker re-attempts a dead-lettered
	// delivery before dropping it.
	MaxRetries = 3
	// RetryBackoff is the delay between worker-level retries.
	RetryBackoff = 30 * time.Second
)

// JobType identifies the job kind.
type JobType string

const (
	JobTypeWebhookDelivery JobType = "webhook_delivery"
)

// WebhookDeliveryPayload is a dead-lettered webhook notification: the exact
// JSON body that failed inline delivery, kept so the worker can re-POST it
// without refetching rows.
type WebhookDeliveryPayload struct {
	RegistrationID int64           `json:"registration_id"`
	Body           json.RawMessage `json:"body"`
}

// Job is a generic job envelope.
type Job struct {
	ID        string          `json:"id"`
	Type      JobType         `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	Attempt   int             `json:"attempt"`
	CreatedAt time.Time       `json:"created_at"`
}

// Queue enqueues and dequeues jobs via Redis.
type Queue struct {
	client *redis.Client
	logger *zap.Logger
}

// NewQueue creates a new Redis-backed job queue.
func NewQueue(client *redis.Client, logger *zap.Logger) *Queue {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Queue{client: client, logger: logger}
}

// EnqueueWebhookDelivery enqueues a dead-lettered webhook delivery job.
func (q *Queue) EnqueueWebhookDelivery(ctx context.Context, payload WebhookDeliveryPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	job := Job{
		ID:        uuid.New().String(),
		Type:      JobTypeWebhookDelivery,
		Payload:   body,
		Attempt:   0,
		CreatedAt: time.Now(),
	}
	raw, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal job: %w", err)
	}
	if err := q.client.RPush(ctx, QueueWebhookDLQ, raw).Err(); err != nil {
		return fmt.Errorf("rpush: %w", err)
	}
	q.logger.Debug("enqueued webhook delivery job",
		zap.String("job_id", job.ID),
		zap.Int64("registration_id", payload.RegistrationID))
	return nil
}

// Dequeue blocks until a job is available or ctx is done. Returns job and key (queue name).
func (q *Queue) Dequeue(ctx context.Context) (*Job, string, error) {
	result, err := q.client.BLPop(ctx, 0, QueueWebhookDLQ).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, "", nil
		}
		return nil, "", err
	}
	if len(result) < 2 {
		return nil, "", nil
	}
	var job Job
	if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
		q.logger.Warn("invalid job payload", zap.String("raw", result[1]), zap.Error(err))
		return nil, "", nil
	}
	return &job, result[0], nil
}

// Retry re-enqueues a job with incremented attempt. After MaxRetries the job
// is dropped; the registration itself already succeeded so nothing is owed to
// the caller.
func (q *Queue) Retry(ctx context.Context, job *Job) error {
	job.Attempt++
	if job.Attempt >= MaxRetries {
		q.logger.Warn("webhook delivery abandoned after retries",
			zap.String("job_id", job.ID), zap.Int("attempt", job.Attempt))
		return nil
	}
	raw, err := json.Marshal(job)
	if err != nil {
		return err
	}
	if err := q.client.RPush(ctx, QueueWebhookDLQ, raw).Err(); err != nil {
		return err
	}
	q.logger.Info("job retried", zap.String("job_id", job.ID), zap.Int("attempt", job.Attempt))
	return nil
}
