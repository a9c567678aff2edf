package worker

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tallerhub/backend/config"
	"github.com/tallerhub/backend/internal/webhook"
	"github.com/tallerhub/backend/pkg/queue"
)

type fakeJobs struct {
	mu      sync.Mutex
	pending chan *queue.Job
	retried []*queue.Job
}

func (f *fakeJobs) Dequeue(ctx context.Context) (*queue.Job, string, error) {
	select {
	case <-ctx.Done():
		return nil, "", ctx.Err()
	case j := <-f.pending:
		return j, queue.QueueWebhookDLQ, nil
	}
}

func (f *fakeJobs) Retry(ctx context.Context, job *queue.Job) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.retried = append(f.retried, job)
	return nil
}

func (f *fakeJobs) retryCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.retried)
}

func failingNotifier() *webhook.Notifier {
	// Nothing listens on this port, so every delivery attempt fails fast.
	cfg := config.WebhookConfig{
		URL:            "http://127.0.0.1:1/webhook",
		MaxAttempts:    1,
		AttemptTimeout: 100 * time.Millisecond,
	}
	return webhook.NewNotifier(nil, nil, cfg, nil, zap.NewNop())
}

func TestProcessRejectsUnknownJobType(t *testing.T) {
	p := NewWebhookRedeliverer(failingNotifier(), &fakeJobs{}, nil)

	err := p.Process(context.Background(), &queue.Job{ID: "j1", Type: "email"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown job type")
}

func TestRunRequeuesBeforeBackoffAndStopsOnCancel(t *testing.T) {
	jobs := &fakeJobs{pending: make(chan *queue.Job, 1)}
	jobs.pending <- &queue.Job{
		ID:      "j1",
		Type:    queue.JobTypeWebhookDelivery,
		Payload: []byte(`{"registration_id":99,"body":{}}`),
	}

	p := NewWebhookRedeliverer(failingNotifier(), jobs, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(done)
	}()

	// The failed job must be back on the queue before the backoff sleep, so
	// cancelling mid-sleep cannot lose it.
	require.Eventually(t, func() bool { return jobs.retryCount() == 1 },
		2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop while sleeping between retries")
	}
}
